// Package genvalue implements the Value Generators of spec.md §4.1: the
// leaf computations that produce a Value from a ThreadContext, from
// simple literal playback to random sampling and arithmetic over other
// generators.
package genvalue

import (
	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// Generator is the contract every generator kind satisfies (§4.1): a
// canonical Generate plus three coercion conveniences. The caller (an
// operation, a document view, another generator) propagates any error up
// to the graph node. A node that calls a generator directly (sleep,
// for-N, if-node, nested workload) logs the error and stops the workload;
// an error raised while an operation renders its generators or documents
// is only counted as an exception on the operation node, and the workload
// keeps running.
type Generator interface {
	Generate(ctx *engctx.ThreadContext) (value.Value, error)
	GenerateInt(ctx *engctx.ThreadContext) (int64, error)
	GenerateDouble(ctx *engctx.ThreadContext) (float64, error)
	GenerateString(ctx *engctx.ThreadContext) (string, error)
}

// defaultGenerateInt/Double/String implement §4.1's "default behavior is
// to call generate and coerce the single-element result" for generators
// that don't need a specialized fast path. Go has no method-override-via-
// embedding, so each generator's GenerateInt/Double/String explicitly
// calls the matching helper instead of inheriting it.
func defaultGenerateInt(g Generator, ctx *engctx.ThreadContext) (int64, error) {
	v, err := g.Generate(ctx)
	if err != nil {
		return 0, err
	}
	return v.AsInt()
}

func defaultGenerateDouble(g Generator, ctx *engctx.ThreadContext) (float64, error) {
	v, err := g.Generate(ctx)
	if err != nil {
		return 0, err
	}
	return v.AsFloat()
}

func defaultGenerateString(g Generator, ctx *engctx.ThreadContext) (string, error) {
	v, err := g.Generate(ctx)
	if err != nil {
		return "", err
	}
	return v.AsString(), nil
}

// IntOrGenerator is a value that is either a fixed int64 configured
// directly in YAML or a nested Generator — the role the original's
// IntOrValue plays for fields like random-int's min/max/t/k, increment's
// bounds, for-N's N, and sleep's duration (§4.1, §4.3).
type IntOrGenerator struct {
	fixed int64
	gen   Generator
}

// FixedInt wraps a literal configured integer.
func FixedInt(n int64) IntOrGenerator { return IntOrGenerator{fixed: n} }

// FromGenerator wraps a nested Generator that produces the integer.
func FromGenerator(g Generator) IntOrGenerator { return IntOrGenerator{gen: g} }

// Int resolves to an int64, running the nested generator if configured.
func (x IntOrGenerator) Int(ctx *engctx.ThreadContext) (int64, error) {
	if x.gen != nil {
		return x.gen.GenerateInt(ctx)
	}
	return x.fixed, nil
}
