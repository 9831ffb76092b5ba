package graph

import (
	"fmt"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
)

// ForN drives N fresh traversals of a named inner entry node, then
// advances to its own next (spec.md §4.3 For-N, grounded on
// _examples/original_source/src/nodes/forN.cpp's execute loop — each
// iteration resets ctx.CurrentNode to the inner entry and runs it to
// completion before the next iteration).
type ForN struct {
	baseNode
	N            genvalue.IntOrGenerator
	innerName    string
	innerEntry   Node
}

func (n *ForN) resolveRefs(byName map[string]Node) error {
	inner, ok := byName[n.innerName]
	if !ok {
		return fmt.Errorf("graph: for-N %q: inner node %q not found", n.name, n.innerName)
	}
	n.innerEntry = inner
	return nil
}

func (n *ForN) Execute(ctx *engctx.ThreadContext) {
	count, err := n.N.Int(ctx)
	if err != nil {
		n.stopOnFatal(ctx, err)
		ctx.CurrentNode = nil
		return
	}
	for i := int64(0); i < count && !ctx.Stopped(); i++ {
		ctx.CurrentNode = n.innerEntry
		RunThread(ctx, n.log)
	}
	ctx.CurrentNode = n.next
}
