package engctx

import (
	"math/rand"

	"github.com/sourcegraph/conc"
	"go.uber.org/atomic"

	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// DBHandle is the opaque per-thread database-client handle (§3: "owned,
// single-threaded use"). The engine never inspects it; internal/dbops type
// asserts it back to *mongo.Client when executing an operation. Keeping
// the type opaque here keeps engctx free of a driver import.
type DBHandle interface{}

// ThreadContext is one worker's (or child thread's) execution context
// (spec.md §3): its database-client handle, its own RNG, its thread-local
// variable map, a reference to the owning workload's shared state, the
// mutable current database/collection names, the last operation result,
// the graph node it is currently at, a stop-flag, a parent-context link,
// and the set of child contexts it has spawned or forked.
type ThreadContext struct {
	Client DBHandle
	RNG    *rand.Rand

	Workload *WorkloadState

	DBName         string
	CollectionName string

	// ReadPref and WriteConcern hold the per-thread collection-level
	// overrides set by a read_preference/write_concern operation (§13
	// SUPPLEMENTED FEATURES). Opaque here for the same reason Client is:
	// internal/dbops type-asserts them to *readpref.ReadPref /
	// *writeconcern.WriteConcern.
	ReadPref    interface{}
	WriteConcern interface{}

	LastResult  value.Value
	CurrentNode Node

	tvariables map[string]value.Value

	stopped atomic.Bool

	Parent   *ThreadContext
	Children []*ThreadContext

	// PendingJoin is set by a do-all node to the wait group tracking the
	// tracked children it just launched, and cleared by the matching join
	// node once every child has reached its own join (spec.md §4.3
	// Do-all/Join).
	PendingJoin *conc.WaitGroup

	// BackgroundWG and BackgroundChildren accumulate across every spawn
	// node executed at this scope (spec.md §4.3 Join: "signals all
	// background children from any prior spawn at this scope to stop and
	// waits for them"). A join reached with neither PendingJoin nor any
	// BackgroundChildren is the child branch of the rendezvous, not the
	// parent.
	BackgroundWG       *conc.WaitGroup
	BackgroundChildren []*ThreadContext
}

// NewThreadContext builds a root or child ThreadContext. rng should come
// from ws.SeedChildRNG() so every thread's randomness is deterministically
// derived from the workload seed (§8 property 3).
func NewThreadContext(ws *WorkloadState, rng *rand.Rand, parent *ThreadContext) *ThreadContext {
	return &ThreadContext{
		RNG:            rng,
		Workload:       ws,
		DBName:         ws.DefaultDatabase,
		CollectionName: ws.DefaultCollection,
		tvariables:     make(map[string]value.Value),
		Parent:         parent,
	}
}

// Fork creates a child ThreadContext sharing this context's Workload and
// database handle but with its own RNG stream and an independent
// tvariable map (spawn/do-all children per §4.3 each get a private
// thread scope; nothing in §3 says a child inherits the parent's
// variables, so it starts empty and falls through to workload scope like
// any other thread).
func (c *ThreadContext) Fork() *ThreadContext {
	child := NewThreadContext(c.Workload, c.Workload.SeedChildRNG(), c)
	child.Client = c.Client
	child.DBName = c.DBName
	child.CollectionName = c.CollectionName
	c.Children = append(c.Children, child)
	return child
}

// RequestStop sets this thread's cooperative stop flag (§5).
func (c *ThreadContext) RequestStop() {
	c.stopped.Store(true)
}

// Stopped reports whether either this thread or its workload has been
// asked to stop (§5). It does not look at any node's own stop flag; the
// core loop checks that separately.
func (c *ThreadContext) Stopped() bool {
	return c.stopped.Load() || c.Workload.Stopped()
}
