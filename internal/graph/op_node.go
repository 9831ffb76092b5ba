package graph

import (
	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/dbops"
	"github.com/mongodb-labs/mwgrunner/internal/engctx"
)

// OpNode holds one Operation and runs it (spec.md §4.3 "Operation node",
// grounded on _examples/original_source/mwg/src/nodes/opNode.cpp's
// op->execute(conn, *myState) delegation). Any error the operation
// returns — whether a genuine database round-trip failure or a
// generator/document error surfaced while rendering the operation's
// filter/update/document — is treated as a per-operation error (§7's
// third bullet: "the operation records the exception on its owning
// node's statistics... and returns normally"). The two are not told
// apart at the Operation boundary, so neither stops the workload.
type OpNode struct {
	baseNode
	Op dbops.Operation
}

func (n *OpNode) Execute(ctx *engctx.ThreadContext) {
	if err := n.Op.Execute(ctx); err != nil {
		n.stat.RecordException()
		if n.log != nil {
			n.log.Debug("operation failed", zap.String("node", n.name), zap.Error(err))
		}
	}
}
