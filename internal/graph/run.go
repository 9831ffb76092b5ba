package graph

import (
	"time"

	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
)

// RunThread drives ctx's traversal from whatever node ctx.CurrentNode
// already points at through to completion (ctx.CurrentNode becoming nil)
// or a stop request, recording each node's latency and logging its print
// string along the way (spec.md §4.3's core loop, grounded on
// _examples/original_source/src/node.cpp's executeNode — translated from
// that function's self-recursion into an explicit loop since a single
// traversal can run arbitrarily many steps and Go gives up nothing by not
// recursing here).
//
// This lives in the graph package rather than the workload runner because
// For-N, Spawn, and Do-All all need to drive a sub-traversal with the
// identical loop: a worker's top-level run and a for-N body's per-iteration
// run are the same operation at different starting nodes.
func RunThread(ctx *engctx.ThreadContext, log *zap.Logger) {
	for ctx.CurrentNode != nil && !ctx.Stopped() && !ctx.CurrentNode.Stopped() {
		n := ctx.CurrentNode

		start := time.Now()
		n.Execute(ctx)
		n.Stats().Record(time.Since(start))

		if text, ok := n.PrintString(); ok && log != nil {
			log.Info(text)
		}

		// A node that wants custom control flow (random-choice, if-node,
		// for-N, join, finish, ...) sets ctx.CurrentNode itself; if
		// it's still pointing at the node that just ran, fall through to
		// its statically resolved next.
		if ctx.CurrentNode == n {
			ctx.CurrentNode = n.Next()
		}
	}
}
