package graph

import (
	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
)

// Finish sets ctx.CurrentNode to nil, ending the worker's traversal
// (spec.md §4.3 Finish). Graph construction adds one implicitly under the
// name "Finish" when a config omits it, mirroring the original's
// always-present finishNode fallback.
type Finish struct {
	baseNode
}

func newFinish(log *zap.Logger) *Finish {
	f := &Finish{baseNode: newBaseNode("Finish", "Finish", "", log)}
	return f
}

func (f *Finish) Execute(ctx *engctx.ThreadContext) {
	ctx.CurrentNode = nil
}
