package graph

import (
	"fmt"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
)

// weightedTarget is one (name, weight) entry from a random-choice node's
// configured "next" map, plus its resolved node once linking runs.
type weightedTarget struct {
	name   string
	weight float64
	node   Node
}

// RandomChoice draws uniformly from [0, totalWeight) and advances to the
// first target whose cumulative weight exceeds the draw (spec.md §4.3
// Random choice, grounded on
// _examples/original_source/src/nodes/random_choice.cpp's partial-sum
// walk — ported to draw directly in [0, total) rather than normalizing
// to [0,1) first, since both are equivalent and this avoids a division
// per target).
type RandomChoice struct {
	baseNode
	targets []weightedTarget
	total   float64
}

func (n *RandomChoice) resolveRefs(byName map[string]Node) error {
	for i, t := range n.targets {
		target, ok := byName[t.name]
		if !ok {
			return fmt.Errorf("graph: random-choice %q: next target %q not found", n.name, t.name)
		}
		n.targets[i].node = target
	}
	return nil
}

func (n *RandomChoice) Execute(ctx *engctx.ThreadContext) {
	if ctx.Stopped() {
		ctx.CurrentNode = nil
		return
	}
	draw := ctx.RNG.Float64() * n.total
	var cumulative float64
	for _, t := range n.targets {
		cumulative += t.weight
		if draw < cumulative {
			ctx.CurrentNode = t.node
			return
		}
	}
	// Floating point rounding can leave draw just past the last boundary;
	// fall back to the final target rather than stalling the traversal.
	if len(n.targets) > 0 {
		ctx.CurrentNode = n.targets[len(n.targets)-1].node
	}
}
