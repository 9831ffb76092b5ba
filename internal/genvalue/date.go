package genvalue

import (
	"time"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// Date returns the current wall-clock datetime (§4.1 date).
type Date struct{}

func (g *Date) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	return value.NewDateTime(time.Now()), nil
}
func (g *Date) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	return defaultGenerateInt(g, ctx)
}
func (g *Date) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	return defaultGenerateDouble(g, ctx)
}
func (g *Date) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	return defaultGenerateString(g, ctx)
}

// Choose returns one of Choices uniformly at random (§4.1 choose).
type Choose struct {
	Choices []value.Value
}

func (g *Choose) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	if len(g.Choices) == 0 {
		return value.Value{}, errEmptyChoices
	}
	return g.Choices[ctx.RNG.Intn(len(g.Choices))], nil
}
func (g *Choose) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	return defaultGenerateInt(g, ctx)
}
func (g *Choose) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	return defaultGenerateDouble(g, ctx)
}
func (g *Choose) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	return defaultGenerateString(g, ctx)
}

var errEmptyChoices = chooseError{}

type chooseError struct{}

func (chooseError) Error() string { return "choose: choices list is empty" }
