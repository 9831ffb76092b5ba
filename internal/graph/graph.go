package graph

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
)

// Graph is one workload's node arena: every constructed node, keyed by
// name, plus the ordered construction-list used to resolve an unconfigured
// "next" to "whatever came right after me" (spec.md §3/§4.3, grounded on
// _examples/original_source/src/nodes/node.cpp's vectornodes + nodes map
// pair — here a slice and a map rather than a shared_ptr arena, since Go
// nodes live exactly as long as the Graph that owns them).
type Graph struct {
	Name  string
	Nodes []Node

	byName map[string]Node
	entry  Node
}

// Entry returns the first constructed node, the traversal's starting
// point for a fresh worker (§4.5 execute: "starts traversal at graph node
// 0").
func (g *Graph) Entry() Node { return g.entry }

// ByName looks up a node by its configured or auto-generated name.
func (g *Graph) ByName(name string) (Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Build constructs every node in nodeConfigs, adds an implicit Finish node
// if the configuration didn't name one, then links every node's next
// pointer and resolves every node kind's extra name references — the
// original's two-pass "construct everything, then call setNextNode on
// everything" sequence (node.cpp's makeSharedNode loop followed by the
// setNextNode loop in workload's constructor), split here into a
// construction pass and a linking pass because Go has no forward
// reference equivalent to the original's unordered_map<string,
// shared_ptr<node>> being populated and consulted in the same loop.
func Build(name string, nodeConfigs []interface{}, ws *engctx.WorkloadState, log *zap.Logger) (*Graph, error) {
	g := &Graph{Name: name, byName: make(map[string]Node, len(nodeConfigs)+1)}

	for i, raw := range nodeConfigs {
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("graph: node %d is not a map", i)
		}
		n, err := nodeFromConfig(m, ws, log)
		if err != nil {
			return nil, fmt.Errorf("graph: node %d: %w", i, err)
		}
		if _, dup := g.byName[n.Name()]; dup {
			return nil, fmt.Errorf("graph: duplicate node name %q", n.Name())
		}
		g.Nodes = append(g.Nodes, n)
		g.byName[n.Name()] = n
	}

	if _, ok := g.byName["Finish"]; !ok {
		finish := newFinish(log)
		g.Nodes = append(g.Nodes, finish)
		g.byName["Finish"] = finish
	}

	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("graph: %q has no nodes", name)
	}
	g.entry = g.Nodes[0]

	for i, n := range g.Nodes {
		l, ok := n.(linkable)
		if !ok {
			continue
		}
		next := l.configuredNext()
		if next == "" {
			if i < len(g.Nodes)-1 {
				next = g.Nodes[i+1].Name()
			} else {
				next = "Finish"
			}
		}
		target, ok := g.byName[next]
		if !ok {
			return nil, fmt.Errorf("graph: node %q: next node %q not found", n.Name(), next)
		}
		l.setNext(target)
	}

	for _, n := range g.Nodes {
		r, ok := n.(refResolver)
		if !ok {
			continue
		}
		if err := r.resolveRefs(g.byName); err != nil {
			return nil, err
		}
	}

	return g, nil
}
