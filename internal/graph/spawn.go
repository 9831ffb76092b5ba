package graph

import (
	"fmt"

	"github.com/sourcegraph/conc"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
)

// Spawn starts one background worker per configured child name and
// advances immediately to its own next (spec.md §4.3 Spawn, grounded on
// _examples/original_source/src/nodes/spawn.cpp's per-name detached
// thread launch). Unlike the original's fire-and-forget detach(), each
// child is recorded on ctx.BackgroundChildren so that a join node reached
// later at this same scope can ask them to stop and wait for them (§4.3
// Join's "signals all background children from any prior spawn at this
// scope"); background workers are still counted in the workload's
// active-thread counter so execute() can detect overall completion (§5)
// independent of whether a join ever runs.
type Spawn struct {
	baseNode
	childNames []string
	children   []Node
}

func (n *Spawn) resolveRefs(byName map[string]Node) error {
	n.children = make([]Node, len(n.childNames))
	for i, name := range n.childNames {
		target, ok := byName[name]
		if !ok {
			return fmt.Errorf("graph: spawn %q: child node %q not found", n.name, name)
		}
		n.children[i] = target
	}
	return nil
}

func (n *Spawn) Execute(ctx *engctx.ThreadContext) {
	if ctx.BackgroundWG == nil {
		ctx.BackgroundWG = conc.NewWaitGroup()
	}
	for _, child := range n.children {
		childCtx := ctx.Fork()
		childCtx.CurrentNode = child
		ctx.BackgroundChildren = append(ctx.BackgroundChildren, childCtx)
		ctx.Workload.EnterThread()
		ctx.BackgroundWG.Go(func() {
			defer ctx.Workload.ExitThread()
			RunThread(childCtx, n.log)
		})
	}
}
