package genvalue

import (
	"math"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// Increment atomically (within whichever scope owns Variable) returns the
// pre-increment value and advances it by Step, wrapping to Minimum +
// (overshoot) when it would exceed Maximum (§4.1 increment).
type Increment struct {
	Variable string
	Step     int64
	Minimum  int64
	Maximum  int64
}

// NewIncrement applies the spec's documented defaults: increment=1,
// minimum=MinInt64, maximum=MaxInt64.
func NewIncrement(variable string, step *int64, minimum, maximum *int64) *Increment {
	inc := &Increment{Variable: variable, Step: 1, Minimum: math.MinInt64, Maximum: math.MaxInt64}
	if step != nil {
		inc.Step = *step
	}
	if minimum != nil {
		inc.Minimum = *minimum
	}
	if maximum != nil {
		inc.Maximum = *maximum
	}
	return inc
}

func (g *Increment) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	// A reference to a variable that exists in neither scope is a fatal
	// configuration error at first access (§4.1) — increment never
	// auto-vivifies, it only ever advances something already declared.
	if _, ok := ctx.GetVariable(g.Variable); !ok {
		return value.Value{}, &errUnknownVariable{Name: g.Variable}
	}

	var pre int64
	var coerceErr error
	ctx.MutateVariable(g.Variable, func(cur value.Value, existed bool) value.Value {
		i, err := cur.AsInt()
		if err != nil {
			coerceErr = err
			return cur
		}
		pre = i
		next := pre + g.Step
		if next > g.Maximum {
			next = g.Minimum + (next - g.Maximum)
		}
		return value.NewInt(next)
	})
	if coerceErr != nil {
		return value.Value{}, coerceErr
	}
	return value.NewInt(pre), nil
}

func (g *Increment) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	return defaultGenerateInt(g, ctx)
}
func (g *Increment) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	return defaultGenerateDouble(g, ctx)
}
func (g *Increment) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	return defaultGenerateString(g, ctx)
}
