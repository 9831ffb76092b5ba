// Package wlrunner drives one workload instance: fans out its configured
// worker count over a built graph, arms the run-length deadline timer, and
// exposes the stop/snapshot/dot operations a caller needs once execution
// is underway (spec.md §4.5 Workload Runner).
package wlrunner

import (
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/graph"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// Runner owns one workload's shared state and its built node graph, and
// drives worker fan-out across them (grounded on the teacher's
// WorkloadManager lifecycle in concurrency/workload.go — Start spins up
// its worker pool and a background adjustment routine, Stop tears both
// down — generalized here from an adaptive job queue down to a fixed-N
// graph-traversal fan-out, since §4.5 has no notion of scaling workers up
// or down mid-run).
type Runner struct {
	ws    *engctx.WorkloadState
	graph *graph.Graph
	log   *zap.Logger

	// InitialTVariables seeds a copy into every worker's thread scope
	// before it starts traversal (§6's top-level "tvariables" key; the
	// workload-shared "wvariables" counterpart is applied earlier, at
	// WorkloadState construction time, since it needs no per-worker copy).
	InitialTVariables map[string]value.Value

	// Client is the database-client handle (§3: "owned, single-threaded
	// use" at the logical level) every fresh worker ThreadContext starts
	// from. Left nil in tests that never reach an Operation node.
	Client engctx.DBHandle

	mu        sync.Mutex
	timer     *time.Timer
	completed bool
}

// New builds a Runner over an already-constructed workload state and
// graph (internal/wlconfig is responsible for turning a decoded
// configuration into both), plus the database-client handle each worker
// starts from.
func New(ws *engctx.WorkloadState, g *graph.Graph, client engctx.DBHandle, log *zap.Logger) *Runner {
	return &Runner{ws: ws, graph: g, Client: client, log: log}
}

// Execute starts ws.Threads workers, each with its own RNG draw and a
// fresh traversal beginning at the graph's entry node, arms the
// run-length deadline timer if configured, and blocks until every worker
// has exited (spec.md §4.5 execute).
func (r *Runner) Execute() {
	wg := conc.NewWaitGroup()
	for i := 0; i < r.ws.Threads; i++ {
		ctx := engctx.NewThreadContext(r.ws, r.ws.SeedChildRNG(), nil)
		ctx.Client = r.Client
		ctx.CurrentNode = r.graph.Entry()
		for k, v := range r.InitialTVariables {
			ctx.SetVariable(k, v)
		}
		r.ws.EnterThread()
		wg.Go(func() {
			defer r.ws.ExitThread()
			start := time.Now()
			graph.RunThread(ctx, r.log)
			if ctx.CurrentNode == nil {
				r.ws.AggregateStats.Record(time.Since(start))
			}
		})
	}

	if r.ws.RunLength > 0 {
		r.mu.Lock()
		r.timer = time.AfterFunc(r.ws.RunLength, r.fireDeadline)
		r.mu.Unlock()
	}

	r.ws.WaitIdle()
	wg.Wait()

	r.mu.Lock()
	r.completed = true
	if r.timer != nil {
		r.timer.Stop()
	}
	r.mu.Unlock()
}

// fireDeadline is the deadline timer's callback: under the same mutex
// Execute uses to record completion, it checks execution hasn't already
// finished before calling Stop (spec.md §4.5: "acquires a mutex, checks
// that execution has not already completed, and calls stop()").
func (r *Runner) fireDeadline() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.completed {
		return
	}
	r.Stop()
}

// Stop sets the workload-wide stop flag and every graph node's own
// cooperative stop flag (spec.md §4.5 stop(): "sets the workload
// stop-flag and each node's stop-flag"). Idempotent, like
// WorkloadState.Stop.
func (r *Runner) Stop() {
	r.ws.Stop()
	for _, n := range r.graph.Nodes {
		n.RequestStop()
	}
}

// SnapshotStats returns the §6 statistics document for this workload.
func (r *Runner) SnapshotStats(reset bool) value.Value {
	return r.graph.Snapshot(r.ws, reset)
}

// RenderDot returns the dot-graph rendering of this workload's graph.
func (r *Runner) RenderDot() string {
	return r.graph.RenderDot()
}
