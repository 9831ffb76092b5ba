// Package graph implements the node variants and the node arena of
// spec.md §4.3: the shared "every node has a name, a next name, an
// optional print string, a stop-flag, and a statistics record" contract
// plus each concrete node kind, and the two-pass construction (build
// every node, then resolve next/child-name pointers) used by the
// original's workload constructor.
package graph

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/stats"
)

// Node is engctx.Node, re-exported under this package's name for callers
// that only ever talk to internal/graph. Defined as an interface on the
// engctx side specifically to let this package depend on engctx without
// engctx depending back on graph (see engctx/node.go's doc comment).
type Node = engctx.Node

// linkable is satisfied by every concrete node type in this package; it
// is how Build resolves each node's next pointer in the wiring pass that
// follows construction, mirroring the original's two-argument
// setNextNode(nodes, vectornodes) (§4.3's "next name" plus the original's
// "next node in the list, else Finish" default rule).
type linkable interface {
	Node
	configuredNext() string
	setNext(Node)
}

// refResolver is implemented by node kinds that hold additional node-name
// references beyond "next" (for-N's inner entry, spawn/do-all's child
// lists, if-node's two branches) — these are resolved in a second pass
// once every node's name is known, the same way the original's forN,
// spawn, doAll, and ifNode override setNextNode to look up their own
// extra name fields.
type refResolver interface {
	resolveRefs(byName map[string]Node) error
}

// baseNode carries the fields and default method set every node kind in
// this package embeds (spec.md §4.3 "Common contract"). Concrete types
// add their own Execute and, where relevant, resolveRefs.
type baseNode struct {
	name     string
	nextName string
	next     Node

	print    string
	hasPrint bool

	stopFlag atomic.Bool
	stat     *stats.Stats

	log *zap.Logger
}

func newBaseNode(name, nextName, print string, log *zap.Logger) baseNode {
	b := baseNode{
		name:     name,
		nextName: nextName,
		stat:     stats.New(),
		log:      log,
	}
	if print != "" {
		b.print = print
		b.hasPrint = true
	}
	return b
}

func (b *baseNode) Name() string                 { return b.name }
func (b *baseNode) Next() Node                   { return b.next }
func (b *baseNode) Stats() *stats.Stats          { return b.stat }
func (b *baseNode) PrintString() (string, bool)  { return b.print, b.hasPrint }
func (b *baseNode) RequestStop()                 { b.stopFlag.Store(true) }
func (b *baseNode) Stopped() bool                { return b.stopFlag.Load() }
func (b *baseNode) configuredNext() string       { return b.nextName }
func (b *baseNode) setNext(n Node)               { b.next, b.nextName = n, n.Name() }

// stopOnFatal implements §4.1/§7's "any reference to a nonexistent
// variable is a fatal configuration error... log and stop" for the node
// kinds that call a generator directly in their own Execute method
// (sleep's duration, for-N's N, if-node's comparison variable) rather
// than through an Operation (whose errors, including generator and
// document errors raised while rendering the operation, are per-operation
// exceptions recorded by OpNode, §7's third bullet).
func (b *baseNode) stopOnFatal(ctx *engctx.ThreadContext, err error) {
	if b.log != nil {
		b.log.Error("fatal error, stopping workload", zap.String("node", b.name), zap.Error(err))
	}
	ctx.Workload.Stop()
}
