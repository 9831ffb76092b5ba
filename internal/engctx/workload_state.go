package engctx

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/mongodb-labs/mwgrunner/internal/stats"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// WorkloadState is the shared state of one running workload instance
// (spec.md §3): configured worker count, runtime budget, URI, the shared
// variable map and its mutex, the workload RNG, default DB/collection
// names, a stop-flag, the active-thread counter/condvar, and the
// aggregate statistics handle.
type WorkloadState struct {
	Name      string
	Threads   int
	RunLength time.Duration
	URI       string

	DefaultDatabase   string
	DefaultCollection string

	AggregateStats *stats.Stats

	wmu        sync.Mutex
	wvariables map[string]value.Value

	rngMu sync.Mutex
	rng   *rand.Rand

	stopped atomic.Bool

	activeMu    sync.Mutex
	activeCond  *sync.Cond
	activeCount int

	nameMu      sync.Mutex
	nameCounter int
}

// NewWorkloadState constructs a WorkloadState. seed is the configured
// top-level RNG seed (§6, "seed"); a zero seed still produces a
// deterministic rand.Rand (Go's rand.NewSource(0) is valid and
// deterministic), matching §8 property 3's determinism requirement.
func NewWorkloadState(name string, threads int, runLength time.Duration, uri, defaultDB, defaultCollection string, seed uint64, initialShared map[string]value.Value) *WorkloadState {
	ws := &WorkloadState{
		Name:              name,
		Threads:           threads,
		RunLength:         runLength,
		URI:               uri,
		DefaultDatabase:   defaultDB,
		DefaultCollection: defaultCollection,
		AggregateStats:    stats.New(),
		wvariables:        make(map[string]value.Value, len(initialShared)),
		rng:               rand.New(rand.NewSource(int64(seed))),
	}
	for k, v := range initialShared {
		ws.wvariables[k] = v
	}
	ws.activeCond = sync.NewCond(&ws.activeMu)
	return ws
}

// SeedChildRNG draws one value from the workload RNG under lock and uses
// it to seed a fresh, private RNG for a worker or child thread (§4.5,
// §9's "Deterministic RNG seeding").
func (ws *WorkloadState) SeedChildRNG() *rand.Rand {
	ws.rngMu.Lock()
	seed := ws.rng.Int63()
	ws.rngMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

// HasShared reports whether name currently exists in workload scope.
func (ws *WorkloadState) HasShared(name string) bool {
	ws.wmu.Lock()
	defer ws.wmu.Unlock()
	_, ok := ws.wvariables[name]
	return ok
}

// GetShared reads name from workload scope under the workload mutex,
// copying the value out (§3 invariant (a), §5 "Reads that return a value
// copy it out under the lock").
func (ws *WorkloadState) GetShared(name string) (value.Value, bool) {
	ws.wmu.Lock()
	defer ws.wmu.Unlock()
	v, ok := ws.wvariables[name]
	return v, ok
}

// SetShared writes name into workload scope under the workload mutex.
func (ws *WorkloadState) SetShared(name string, v value.Value) {
	ws.wmu.Lock()
	ws.wvariables[name] = v
	ws.wmu.Unlock()
}

// MutateShared reads the current value (zero Value if absent) and stores
// fn's result back, all under one critical section — the primitive the
// increment generator needs for workload-scoped counters (§4.1).
func (ws *WorkloadState) MutateShared(name string, fn func(cur value.Value, existed bool) value.Value) value.Value {
	ws.wmu.Lock()
	defer ws.wmu.Unlock()
	cur, existed := ws.wvariables[name]
	next := fn(cur, existed)
	ws.wvariables[name] = next
	return next
}

// Stop sets the workload-wide stop flag (§5, §4.5 "stop()"). Idempotent.
func (ws *WorkloadState) Stop() {
	ws.stopped.Store(true)
}

// Stopped reports the workload-wide stop flag.
func (ws *WorkloadState) Stopped() bool {
	return ws.stopped.Load()
}

// EnterThread increments the active-thread counter (§5: "incremented when
// a child or spawned worker starts").
func (ws *WorkloadState) EnterThread() {
	ws.activeMu.Lock()
	ws.activeCount++
	ws.activeMu.Unlock()
}

// ExitThread decrements the active-thread counter and signals waiters when
// it reaches zero (§5: "decrement-to-zero signals a condition variable
// used by execute to detect completion").
func (ws *WorkloadState) ExitThread() {
	ws.activeMu.Lock()
	ws.activeCount--
	if ws.activeCount <= 0 {
		ws.activeCond.Broadcast()
	}
	ws.activeMu.Unlock()
}

// WaitIdle blocks until the active-thread counter reaches zero.
func (ws *WorkloadState) WaitIdle() {
	ws.activeMu.Lock()
	for ws.activeCount > 0 {
		ws.activeCond.Wait()
	}
	ws.activeMu.Unlock()
}

// ActiveCount returns the current active-thread count (diagnostics only).
func (ws *WorkloadState) ActiveCount() int {
	ws.activeMu.Lock()
	defer ws.activeMu.Unlock()
	return ws.activeCount
}

// NextNodeName returns the next auto-generated node name for this
// workload. Replaces the source's process-wide "count++" name generator
// (§9 DESIGN NOTES: "replace with a per-workload counter owned by the
// workload") with a counter scoped to this WorkloadState instance.
func (ws *WorkloadState) NextNodeName() string {
	ws.nameMu.Lock()
	defer ws.nameMu.Unlock()
	ws.nameCounter++
	return fmt.Sprintf("node_%d", ws.nameCounter)
}
