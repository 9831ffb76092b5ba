package dbops

import (
	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
)

// SetVariable assigns Generator's output to Variable through the
// standard scoping rules (§10 set_variable, §3 invariant (b)) — the only
// operation kind that writes a variable instead of touching the database.
type SetVariable struct {
	Variable  string
	Generator genvalue.Generator
}

func (op *SetVariable) Execute(ctx *engctx.ThreadContext) error {
	v, err := op.Generator.Generate(ctx)
	if err != nil {
		return err
	}
	ctx.SetVariable(op.Variable, v)
	return nil
}
