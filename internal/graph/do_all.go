package graph

import (
	"fmt"

	"github.com/sourcegraph/conc"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
)

// DoAll launches one tracked child traversal per configured child name and
// advances immediately to its own next without waiting (spec.md §4.3
// Do-all, grounded on
// _examples/original_source/src/nodes/doAll.cpp's execute, which starts a
// thread per child node and records it in the thread state's childThreads
// so a downstream join node can wait on them). The wait itself happens in
// the matching Join node, not here — mirroring the original's split
// between doAll::execute (start) and join::executeNode (wait).
type DoAll struct {
	baseNode
	childNames []string
	children   []Node
}

func (n *DoAll) resolveRefs(byName map[string]Node) error {
	n.children = make([]Node, len(n.childNames))
	for i, name := range n.childNames {
		target, ok := byName[name]
		if !ok {
			return fmt.Errorf("graph: do-all %q: child node %q not found", n.name, name)
		}
		n.children[i] = target
	}
	return nil
}

func (n *DoAll) Execute(ctx *engctx.ThreadContext) {
	wg := conc.NewWaitGroup()
	for _, child := range n.children {
		childCtx := ctx.Fork()
		childCtx.CurrentNode = child
		ctx.Workload.EnterThread()
		wg.Go(func() {
			defer ctx.Workload.ExitThread()
			RunThread(childCtx, n.log)
		})
	}
	ctx.PendingJoin = wg
}
