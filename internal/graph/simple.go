package graph

import (
	"time"

	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
)

// NoOp does nothing and advances (spec.md §4.3 No-op).
type NoOp struct {
	baseNode
}

func newNoOp(name, nextName, print string, log *zap.Logger) *NoOp {
	return &NoOp{baseNode: newBaseNode(name, nextName, print, log)}
}

func (n *NoOp) Execute(ctx *engctx.ThreadContext) {}

// Sleep cooperatively suspends the worker for a configured duration in
// milliseconds (spec.md §4.3 Sleep, grounded on
// _examples/original_source/src/nodes/sleep.cpp's nanosleep call).
// Unlike the original's uninterruptible nanosleep, the wait is polled in
// small increments so a stop request (§4.5's "ε bounded by the longest
// non-cancellable node") lands promptly instead of blocking the deadline
// timer for the whole configured duration.
type Sleep struct {
	baseNode
	Millis genvalue.IntOrGenerator
}

const sleepPollInterval = 10 * time.Millisecond

func (n *Sleep) Execute(ctx *engctx.ThreadContext) {
	ms, err := n.Millis.Int(ctx)
	if err != nil {
		n.stopOnFatal(ctx, err)
		return
	}
	deadline := time.Now().Add(time.Duration(ms) * time.Millisecond)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 || ctx.Stopped() {
			return
		}
		wait := sleepPollInterval
		if remaining < wait {
			wait = remaining
		}
		time.Sleep(wait)
	}
}
