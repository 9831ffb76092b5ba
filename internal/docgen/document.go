// Package docgen implements the Document Templates of spec.md §4.2:
// Static, Override, Append, and Template views over a base document, each
// producing a concrete Value on demand from a ThreadContext.
package docgen

import (
	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// Document is the contract every template kind satisfies (§4.2): view is
// non-mutating on the template itself. Unlike the original's
// scratchBuilder parameter (there to reuse a bsoncxx stream builder's
// backing storage across calls), our Value tree is plain Go data with no
// external builder to thread through — view allocates its own result
// tree per call, which is exactly what "per-call scratch" would have
// bought us anyway.
type Document interface {
	View(ctx *engctx.ThreadContext) (value.Value, error)
}

// Static returns a fixed, pre-parsed document every time (§4.2 Static).
type Static struct {
	V value.Value
}

func (d *Static) View(ctx *engctx.ThreadContext) (value.Value, error) {
	return d.V, nil
}

// AppendField is one (name, Generator) pair appended after an Append
// document's static base fields.
type AppendField struct {
	Name string
	Gen  genvalue.Generator
}

// Append emits Base's fields, then appends each Fields entry in order
// (§4.2 Append).
type Append struct {
	Base   value.Value
	Fields []AppendField
}

func (d *Append) View(ctx *engctx.ThreadContext) (value.Value, error) {
	base := d.Base.Document()
	entries := make([]value.DocEntry, 0, len(base)+len(d.Fields))
	entries = append(entries, base...)
	for _, f := range d.Fields {
		v, err := f.Gen.Generate(ctx)
		if err != nil {
			return value.Value{}, err
		}
		entries = append(entries, value.DocEntry{Key: f.Name, Value: v})
	}
	return value.NewDocument(entries), nil
}
