package genvalue

import (
	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// UseValue returns a fixed literal every time (§4.1 use-value).
type UseValue struct {
	V value.Value
}

func (g *UseValue) Generate(ctx *engctx.ThreadContext) (value.Value, error) { return g.V, nil }
func (g *UseValue) GenerateInt(ctx *engctx.ThreadContext) (int64, error)    { return g.V.AsInt() }
func (g *UseValue) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	return g.V.AsFloat()
}
func (g *UseValue) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	return g.V.AsString(), nil
}

// UseVariable looks a name up per §3's scoping rules (§4.1 use-variable).
// DBName/CollectionName and workload-scoped reads are handled transparently
// by ThreadContext.GetVariable.
type UseVariable struct {
	Name string
}

func (g *UseVariable) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	v, ok := ctx.GetVariable(g.Name)
	if !ok {
		return value.Value{}, &errUnknownVariable{Name: g.Name}
	}
	return v, nil
}
func (g *UseVariable) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	return defaultGenerateInt(g, ctx)
}
func (g *UseVariable) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	return defaultGenerateDouble(g, ctx)
}
func (g *UseVariable) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	return defaultGenerateString(g, ctx)
}

// UseResult returns the last operation result recorded on the context
// (§4.1 use-result).
type UseResult struct{}

func (g *UseResult) Generate(ctx *engctx.ThreadContext) (value.Value, error) {
	return ctx.LastResult, nil
}
func (g *UseResult) GenerateInt(ctx *engctx.ThreadContext) (int64, error) {
	return defaultGenerateInt(g, ctx)
}
func (g *UseResult) GenerateDouble(ctx *engctx.ThreadContext) (float64, error) {
	return defaultGenerateDouble(g, ctx)
}
func (g *UseResult) GenerateString(ctx *engctx.ThreadContext) (string, error) {
	return defaultGenerateString(g, ctx)
}

// errUnknownVariable is a fatal configuration error (§4.1): a reference
// to a variable that exists in neither the thread nor workload scope.
type errUnknownVariable struct{ Name string }

func (e *errUnknownVariable) Error() string {
	return "use-variable: unknown variable " + e.Name
}
