package graph

import (
	"github.com/mongodb-labs/mwgrunner/internal/engctx"
)

// Join is the rendezvous point for a preceding do-all and/or spawn node
// (spec.md §4.3 Join, grounded on
// _examples/original_source/src/nodes/join.cpp's executeNode override,
// extended per §4.3's own text to also reclaim background spawn children
// rather than only the original's do-all threads). Which branch runs
// depends on whether ctx recorded any children at this scope: a do-all's
// or spawn's own forked children start with neither PendingJoin nor
// BackgroundChildren set, so they reach Join empty-handed and end their
// traversal there; the context that ran the do-all/spawn is the parent
// and waits for everything it started before continuing to its own next.
type Join struct {
	baseNode
}

func (n *Join) Execute(ctx *engctx.ThreadContext) {
	if ctx.PendingJoin == nil && len(ctx.BackgroundChildren) == 0 {
		// Child branch: this traversal ends here.
		ctx.CurrentNode = nil
		return
	}

	if ctx.PendingJoin != nil {
		ctx.PendingJoin.Wait()
		ctx.PendingJoin = nil
	}

	for _, child := range ctx.BackgroundChildren {
		child.RequestStop()
	}
	if ctx.BackgroundWG != nil {
		ctx.BackgroundWG.Wait()
	}
	ctx.BackgroundChildren = nil
	ctx.BackgroundWG = nil
	// Parent branch: fall through to the core loop's default advance to next.
}
