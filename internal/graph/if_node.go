package graph

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// IfNode branches to IfBranch or ElseBranch depending on comparing a
// named variable (default ctx.lastResult) against a configured literal
// (spec.md §4.3 If-node, grounded on
// _examples/original_source/src/nodes/ifNode.cpp's resultView/compareView
// switch, generalized onto value.CompareOrdered instead of one case per
// bson type).
type IfNode struct {
	baseNode
	ifNodeName   string
	elseNodeName string
	ifBranch     Node
	elseBranch   Node

	Variable string // "" means ctx.lastResult
	Compare  value.Value
	Test     value.Comparison
}

func (n *IfNode) resolveRefs(byName map[string]Node) error {
	ifN, ok := byName[n.ifNodeName]
	if !ok {
		return fmt.Errorf("graph: if-node %q: ifNode %q not found", n.name, n.ifNodeName)
	}
	elseN, ok := byName[n.elseNodeName]
	if !ok {
		return fmt.Errorf("graph: if-node %q: elseNode %q not found", n.name, n.elseNodeName)
	}
	n.ifBranch, n.elseBranch = ifN, elseN
	return nil
}

func (n *IfNode) Execute(ctx *engctx.ThreadContext) {
	if ctx.Stopped() {
		ctx.CurrentNode = nil
		return
	}
	var subject value.Value
	if n.Variable == "" {
		subject = ctx.LastResult
	} else {
		v, ok := ctx.GetVariable(n.Variable)
		if !ok {
			n.stopOnFatal(ctx, fmt.Errorf("if-node %q: variable %q does not exist", n.name, n.Variable))
			return
		}
		subject = v
	}

	result, ok := value.CompareOrdered(subject, n.Test, n.Compare)
	if !ok {
		if n.log != nil {
			n.log.Error("if-node comparison type mismatch, taking else branch",
				zap.String("node", n.name))
		}
		ctx.CurrentNode = n.elseBranch
		return
	}
	if result {
		ctx.CurrentNode = n.ifBranch
	} else {
		ctx.CurrentNode = n.elseBranch
	}
}
