package genvalue

import (
	"strings"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// Concatenate returns the string concatenation of each part's
// generateString (§4.1 concatenate).
type Concatenate struct {
	Parts []Generator
}

func (g *Concatenate) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	s, err := g.GenerateString(ctx)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewString(s), nil
}

func (g *Concatenate) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	var b strings.Builder
	for _, p := range g.Parts {
		s, err := p.GenerateString(ctx)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}
func (g *Concatenate) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	return defaultGenerateInt(g, ctx)
}
func (g *Concatenate) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	return defaultGenerateDouble(g, ctx)
}

// Add sums every addend as float64; int coercion truncates (§4.1 add).
type Add struct {
	Addends []Generator
}

func (g *Add) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	f, err := g.GenerateDouble(ctx)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewFloat(f), nil
}

func (g *Add) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	var total float64
	for _, a := range g.Addends {
		f, err := a.GenerateDouble(ctx)
		if err != nil {
			return 0, err
		}
		total += f
	}
	return total, nil
}
func (g *Add) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	f, err := g.GenerateDouble(ctx)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
func (g *Add) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	return defaultGenerateString(g, ctx)
}

// Multiply returns the product of every factor as float64 (§4.1 multiply).
type Multiply struct {
	Factors []Generator
}

func (g *Multiply) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	f, err := g.GenerateDouble(ctx)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewFloat(f), nil
}

func (g *Multiply) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	total := 1.0
	for _, f := range g.Factors {
		v, err := f.GenerateDouble(ctx)
		if err != nil {
			return 0, err
		}
		total *= v
	}
	return total, nil
}
func (g *Multiply) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	f, err := g.GenerateDouble(ctx)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
func (g *Multiply) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	return defaultGenerateString(g, ctx)
}
