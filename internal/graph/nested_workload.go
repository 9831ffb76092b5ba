package graph

import (
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// nestedOverride is one entry from a nested-workload node's "overrides"
// map: a generator, resolved against the parent context each time the
// node executes, plus which inner setting it feeds (spec.md §4.4).
type nestedOverride struct {
	key string
	gen genvalue.Generator
}

// NestedWorkload owns a full inner Graph and drives it to completion
// synchronously (spec.md §4.4, grounded on
// _examples/original_source/src/nodes/workloadNode.cpp). Unlike the
// original, which constructs a brand-new mongocxx connection for the
// inner workload from a URI override, inner workers here reuse the
// parent context's already-connected client — the driver's client is
// safe for concurrent use from multiple goroutines, so there is nothing
// an inner-only connection would buy.
type NestedWorkload struct {
	baseNode

	InnerGraph *Graph

	DefaultName       string
	DefaultDatabase   string
	DefaultCollection string
	DefaultThreads    int64
	DefaultRunLength  time.Duration

	// InitialWVariables and InitialTVariables are parsed once, at config
	// time, from the embedded workload's own "wvariables"/"tvariables"
	// keys (spec.md §6's schema, reused verbatim by §4.4's "full inner
	// Workload"). Every execution starts the inner workload/workers from
	// a fresh copy of these, the same way the top-level workload does.
	InitialWVariables map[string]value.Value
	InitialTVariables map[string]value.Value

	Overrides []nestedOverride

	mu        sync.Mutex
	lastStats value.Value
}

func (n *NestedWorkload) Execute(ctx *engctx.ThreadContext) {
	name := n.DefaultName
	db := n.DefaultDatabase
	coll := n.DefaultCollection
	threads := n.DefaultThreads
	runLength := n.DefaultRunLength
	extraShared := make(map[string]value.Value)
	extraTVariables := make(map[string]value.Value)

	for _, ov := range n.Overrides {
		v, err := ov.gen.Generate(ctx)
		if err != nil {
			n.stopOnFatal(ctx, err)
			return
		}
		switch ov.key {
		case "database":
			db = v.AsString()
		case "collection":
			coll = v.AsString()
		case "name":
			name = v.AsString()
		case "threads":
			iv, err := v.AsInt()
			if err != nil {
				n.stopOnFatal(ctx, err)
				return
			}
			threads = iv
		case "runLength":
			iv, err := v.AsInt()
			if err != nil {
				n.stopOnFatal(ctx, err)
				return
			}
			runLength = time.Duration(iv) * time.Second
		default:
			// Any other override name assigns into whichever of the
			// inner workload's two scopes already declares it; a name
			// declared nowhere defaults into tvariables (§4.4: "if the
			// name exists in the inner tvariables or wvariables, assigned
			// there; otherwise inserted into tvariables").
			switch {
			case hasValue(n.InitialTVariables, ov.key):
				extraTVariables[ov.key] = v
			case hasValue(n.InitialWVariables, ov.key):
				extraShared[ov.key] = v
			default:
				extraTVariables[ov.key] = v
			}
		}
	}
	if threads <= 0 {
		threads = 1
	}

	// The inner workload's own wvariables seed its shared scope first;
	// per-execution overrides (extraShared) are the more specific, dynamic
	// source and win on a name collision.
	initialShared := make(map[string]value.Value, len(n.InitialWVariables)+len(extraShared))
	for k, v := range n.InitialWVariables {
		initialShared[k] = v
	}
	for k, v := range extraShared {
		initialShared[k] = v
	}

	// Same precedence for the per-worker thread scope: the inner
	// workload's own tvariables seed first, overrides win on collision.
	workerTVariables := make(map[string]value.Value, len(n.InitialTVariables)+len(extraTVariables))
	for k, v := range n.InitialTVariables {
		workerTVariables[k] = v
	}
	for k, v := range extraTVariables {
		workerTVariables[k] = v
	}

	seed := uint64(ctx.Workload.SeedChildRNG().Int63())
	ws := engctx.NewWorkloadState(name, int(threads), runLength, ctx.Workload.URI, db, coll, seed, initialShared)

	wg := conc.NewWaitGroup()
	for i := int64(0); i < threads; i++ {
		workerCtx := engctx.NewThreadContext(ws, ws.SeedChildRNG(), nil)
		workerCtx.Client = ctx.Client
		workerCtx.CurrentNode = n.InnerGraph.Entry()
		for k, v := range workerTVariables {
			workerCtx.SetVariable(k, v)
		}
		ws.EnterThread()
		wg.Go(func() {
			defer ws.ExitThread()
			start := time.Now()
			RunThread(workerCtx, n.log)
			if workerCtx.CurrentNode == nil {
				ws.AggregateStats.Record(time.Since(start))
			}
		})
	}

	var timer *time.Timer
	if runLength > 0 {
		timer = time.AfterFunc(runLength, ws.Stop)
	}
	wg.Wait()
	if timer != nil {
		timer.Stop()
	}

	n.mu.Lock()
	n.lastStats = n.InnerGraph.Snapshot(ws, false)
	n.mu.Unlock()
}

// InnerSnapshot satisfies innerStatsProvider (stats_snapshot.go) so the
// outer graph's snapshot substitutes this node's full inner aggregate
// document instead of a flat per-node stats record.
func (n *NestedWorkload) InnerSnapshot(reset bool) value.Value {
	n.mu.Lock()
	defer n.mu.Unlock()
	snap := n.lastStats
	if reset {
		n.lastStats = value.Value{}
	}
	return snap
}

// hasValue reports whether m declares name, regardless of its value.
func hasValue(m map[string]value.Value, name string) bool {
	_, ok := m[name]
	return ok
}
