package docgen

import (
	"fmt"

	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// FromConfig builds a Document from one decoded YAML/viper node (§4.2).
// The node's "type" key selects static/override/append/template; a node
// with no "type" key is shorthand for a Static document, the literal
// playback used by most operation bodies.
func FromConfig(raw interface{}) (Document, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return &Static{V: value.FromLiteral(raw)}, nil
	}
	kindRaw, hasType := m["type"]
	if !hasType {
		return &Static{V: value.FromLiteral(raw)}, nil
	}
	kind, _ := kindRaw.(string)
	switch kind {
	case "static":
		docRaw, ok := m["doc"]
		if !ok {
			return nil, fmt.Errorf("docgen: static document missing %q", "doc")
		}
		return &Static{V: value.FromLiteral(docRaw)}, nil
	case "override":
		return overrideFromConfig(m)
	case "append":
		return appendFromConfig(m)
	case "template":
		docRaw, ok := m["doc"]
		if !ok {
			return nil, fmt.Errorf("docgen: template document missing %q", "doc")
		}
		return NewTemplate(docRaw)
	default:
		return nil, fmt.Errorf("docgen: unknown document type %q", kind)
	}
}

func overrideFromConfig(m map[string]interface{}) (Document, error) {
	docRaw, ok := m["doc"]
	if !ok {
		return nil, fmt.Errorf("docgen: override document missing %q", "doc")
	}
	overridesRaw, ok := m["overrides"]
	if !ok {
		return nil, fmt.Errorf("docgen: override document missing %q", "overrides")
	}
	overridesMap, ok := overridesRaw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("docgen: %q must be a map of dotted-path to generator config", "overrides")
	}
	overrides := make(map[string]genvalue.Generator, len(overridesMap))
	for path, cfg := range overridesMap {
		gen, err := genvalue.FromConfig(cfg)
		if err != nil {
			return nil, err
		}
		overrides[path] = gen
	}
	return &Override{Base: value.FromLiteral(docRaw), Overrides: overrides}, nil
}

// appendFromConfig reads "appends" as an ordered list of single-key maps
// (`[{name: generatorConfig}, ...]`) rather than a single map, since the
// order fields are appended in is observable (§4.2: "appends each
// name→value in order") and a YAML/viper-decoded map does not preserve
// key order.
func appendFromConfig(m map[string]interface{}) (Document, error) {
	base := value.NewDocument(nil)
	if docRaw, ok := m["doc"]; ok {
		base = value.FromLiteral(docRaw)
	}
	var fields []AppendField
	if appendsRaw, ok := m["appends"]; ok {
		items, ok := appendsRaw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("docgen: %q must be an ordered list of single-field maps", "appends")
		}
		for _, item := range items {
			entry, ok := item.(map[string]interface{})
			if !ok || len(entry) != 1 {
				return nil, fmt.Errorf("docgen: each %q entry must be a single-field map", "appends")
			}
			for name, cfg := range entry {
				gen, err := genvalue.FromConfig(cfg)
				if err != nil {
					return nil, err
				}
				fields = append(fields, AppendField{Name: name, Gen: gen})
			}
		}
	}
	return &Append{Base: base, Fields: fields}, nil
}
