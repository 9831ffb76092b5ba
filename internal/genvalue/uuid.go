package genvalue

import (
	"github.com/google/uuid"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// UUID generates a random (version 4) UUID string on every draw, a
// supplemented generator kind beyond the original's fixed set of random
// primitives — document bodies commonly need a unique-looking string field
// (an external correlation id, an idempotency key) without wiring up a
// full increment/workload-scoped counter for it.
type UUID struct{}

func (g *UUID) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	return value.NewString(uuid.New().String()), nil
}

func (g *UUID) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	return uuid.New().String(), nil
}
func (g *UUID) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	return defaultGenerateInt(g, ctx)
}
func (g *UUID) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	return defaultGenerateDouble(g, ctx)
}
