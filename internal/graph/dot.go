package graph

import (
	"fmt"
	"strings"
)

// dotFragment is implemented by node kinds whose dot rendering is more
// than "my name points at my next" — random-choice (one labeled edge per
// weighted target), if-node/spawn/do-all (one edge per named target), and
// nested-workload (a sub-graph block for its inner graph), mirroring each
// node type's own generateDotGraph override in the original (§4.3 "Each
// node type produces a local fragment... and, optionally, a sub-graph
// block").
type dotFragment interface {
	dotFragment() (edges string, subgraph string)
}

// dotFragment on baseNode is the default: one edge to the statically
// resolved next, grounded on
// _examples/original_source/src/node.cpp's node::generateDotGraph.
func (b *baseNode) dotFragment() (string, string) {
	return fmt.Sprintf("%s -> %s;\n", b.name, b.nextName), ""
}

func (f *Finish) dotFragment() (string, string) { return "", "" }

func (n *RandomChoice) dotFragment() (string, string) {
	var sb strings.Builder
	for _, t := range n.targets {
		fmt.Fprintf(&sb, "%s -> %s[label=\"%v\"];\n", n.name, t.name, t.weight)
	}
	return sb.String(), ""
}

func (n *IfNode) dotFragment() (string, string) {
	return fmt.Sprintf("%s -> %s;\n%s -> %s;\n", n.name, n.ifNodeName, n.name, n.elseNodeName), ""
}

func (n *Spawn) dotFragment() (string, string) {
	var sb strings.Builder
	for _, name := range n.childNames {
		fmt.Fprintf(&sb, "%s -> %s;\n", n.name, name)
	}
	fmt.Fprintf(&sb, "%s -> %s;\n", n.name, n.nextName)
	return sb.String(), ""
}

func (n *DoAll) dotFragment() (string, string) {
	var sb strings.Builder
	for _, name := range n.childNames {
		fmt.Fprintf(&sb, "%s -> %s;\n", n.name, name)
	}
	fmt.Fprintf(&sb, "%s -> %s;\n", n.name, n.nextName)
	return sb.String(), ""
}

func (n *NestedWorkload) dotFragment() (string, string) {
	edge := fmt.Sprintf("%s -> %s;\n", n.name, n.nextName)
	return edge, n.InnerGraph.RenderDot()
}

// RenderDot returns a `digraph <name> { ... }` rendering of g, followed by
// any sub-graph blocks contributed by nested-workload nodes (spec.md
// §4.5 renderDot, grounded on
// _examples/original_source/src/workload.cpp's generateDotGraph, which
// concatenates every node's edge fragment inside the digraph block and
// appends every node's sub-graph text after it).
func (g *Graph) RenderDot() string {
	var body, extra strings.Builder
	fmt.Fprintf(&body, "digraph %s {\n", g.Name)
	for _, n := range g.Nodes {
		df, ok := n.(dotFragment)
		if !ok {
			continue
		}
		edges, sub := df.dotFragment()
		body.WriteString(edges)
		extra.WriteString(sub)
	}
	body.WriteString("}\n")
	return body.String() + extra.String()
}
