package engctx

import "github.com/mongodb-labs/mwgrunner/internal/stats"

// Node is the contract a graph node (internal/graph) fulfills so that a
// ThreadContext can hold "the node it is currently at" and the core loop
// (spec.md §4.3) can drive it without this package importing the graph
// package (which itself depends on ThreadContext). Defining the interface
// on the consumer side is the usual Go way to break that cycle.
type Node interface {
	// Name is the node's configured or auto-generated name.
	Name() string
	// Execute runs one step for ctx. Implementations that want custom
	// control flow (random-choice, if-node, join, finish, ...) set
	// ctx.CurrentNode themselves and the core loop will not overwrite it.
	Execute(ctx *ThreadContext)
	// Next is the statically resolved default successor, nil only for a
	// node with no configured or implicit next (should not occur after
	// graph construction resolves every next pointer, per §3).
	Next() Node
	// Stats is this node's own per-execution latency/exception record.
	Stats() *stats.Stats
	// PrintString returns the node's optional log line and whether one
	// was configured (§4.3: "if node has a print string: log it").
	PrintString() (string, bool)
	// RequestStop sets this node's cooperative stop flag (§5).
	RequestStop()
	// Stopped reports the node's cooperative stop flag.
	Stopped() bool
}
