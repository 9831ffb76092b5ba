package graph

import (
	"time"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// innerStatsProvider is implemented by NestedWorkload so that Snapshot can
// substitute its full inner aggregate document in place of a flat
// stats.Stats record (§4.4: "its stats are queryable from the outer
// node"; §6's snapshot shape otherwise maps one node to one flat record).
type innerStatsProvider interface {
	InnerSnapshot(reset bool) value.Value
}

// Snapshot assembles the §6 statistics document: the workload's own
// aggregate keyed by its name, one entry per node keyed by node name, and
// a Date entry, grounded on the original workload::getStats building one
// bsoncxx document out of myStats plus every node's stats (workload.cpp,
// referenced from workloadNode.cpp's getStats passthrough).
func (g *Graph) Snapshot(ws *engctx.WorkloadState, reset bool) value.Value {
	entries := make([]value.DocEntry, 0, len(g.Nodes)+2)
	entries = append(entries, value.DocEntry{
		Key:   ws.Name,
		Value: ws.AggregateStats.SnapshotWithReset(reset).ToValue(),
	})
	for _, n := range g.Nodes {
		var v value.Value
		if provider, ok := n.(innerStatsProvider); ok {
			v = provider.InnerSnapshot(reset)
		} else {
			v = n.Stats().SnapshotWithReset(reset).ToValue()
		}
		entries = append(entries, value.DocEntry{Key: n.Name(), Value: v})
	}
	entries = append(entries, value.DocEntry{Key: "Date", Value: value.NewDateTime(time.Now())})
	return value.NewDocument(entries)
}
