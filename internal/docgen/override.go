package docgen

import (
	"fmt"
	"strings"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// Override owns a static base document and a dotted-path → Generator map
// (§4.2 Override). On View it walks Base recursively, substituting each
// leaf whose full dotted path matches an override key, and recursing into
// subdocuments whose path prefixes an override key.
type Override struct {
	Base      value.Value
	Overrides map[string]genvalue.Generator
}

func (d *Override) View(ctx *engctx.ThreadContext) (value.Value, error) {
	return applyOverrideLevel(d.Base, "", d.Overrides, ctx)
}

// applyOverrideLevel is the Go rendering of the original's
// applyOverrideLevel: split the override set into keys that terminate at
// this level ("this level") and keys that continue past it ("lower
// level"), then walk the base document's fields, replacing, descending,
// or copying through as appropriate. Descending into an array is fatal
// (§4.2: "Arrays-as-intermediate are not supported").
func applyOverrideLevel(doc value.Value, prefix string, overrides map[string]genvalue.Generator, ctx *engctx.ThreadContext) (value.Value, error) {
	thisLevel := make(map[string]genvalue.Generator)
	lowerLevel := make(map[string]bool)
	for key, gen := range overrides {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		suffix := key[len(prefix):]
		if idx := strings.IndexByte(suffix, '.'); idx == -1 {
			thisLevel[suffix] = gen
		} else {
			lowerLevel[suffix[:idx]] = true
		}
	}

	base := doc.Document()
	out := make([]value.DocEntry, 0, len(base))
	for _, e := range base {
		if gen, ok := thisLevel[e.Key]; ok {
			v, err := gen.Generate(ctx)
			if err != nil {
				return value.Value{}, err
			}
			out = append(out, value.DocEntry{Key: e.Key, Value: v})
			continue
		}
		if lowerLevel[e.Key] {
			switch e.Value.Kind() {
			case value.Document:
				sub, err := applyOverrideLevel(e.Value, prefix+e.Key+".", overrides, ctx)
				if err != nil {
					return value.Value{}, err
				}
				out = append(out, value.DocEntry{Key: e.Key, Value: sub})
			case value.Array:
				return value.Value{}, fmt.Errorf("docgen: override path %q would have to descend into an array, which is not supported", prefix+e.Key)
			default:
				return value.Value{}, fmt.Errorf("docgen: override path %q expects %q to be a subdocument", prefix+e.Key, e.Key)
			}
			continue
		}
		out = append(out, e)
	}
	return value.NewDocument(out), nil
}
