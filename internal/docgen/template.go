package docgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// NewTemplate scans raw at construction time (§4.2 Template): any map of
// the form {$<generatorName>: <config>} is replaced by a null sentinel in
// the base document, its dotted path is recorded, and a Generator is
// built from <config> with the generator's type taken from the marker
// key rather than a "type" field — mirroring the original's
// templateDocument, which records (path, "$type", node) triples while
// parsing and builds each override generator afterward. The result
// behaves as an Override at view time.
func NewTemplate(raw interface{}) (*Override, error) {
	overrides := make(map[string]genvalue.Generator)
	base, err := parseTemplateValue(raw, "", overrides)
	if err != nil {
		return nil, err
	}
	return &Override{Base: base, Overrides: overrides}, nil
}

func parseTemplateValue(raw interface{}, prefix string, overrides map[string]genvalue.Generator) (value.Value, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return value.FromLiteral(raw), nil
	}
	if genType, genRaw, isMarker := asMarker(m); isMarker {
		cfg, err := markerConfig(genType, genRaw)
		if err != nil {
			return value.Value{}, err
		}
		gen, err := genvalue.FromConfig(cfg)
		if err != nil {
			return value.Value{}, err
		}
		if prefix == "" {
			return value.Value{}, fmt.Errorf("docgen: template marker $%s cannot be the document root", genType)
		}
		overrides[strings.TrimSuffix(prefix, ".")] = gen
		return value.NewNull(), nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]value.DocEntry, 0, len(m))
	for _, k := range keys {
		childPrefix := prefix + k + "."
		v, err := parseTemplateValue(m[k], childPrefix, overrides)
		if err != nil {
			return value.Value{}, err
		}
		entries = append(entries, value.DocEntry{Key: k, Value: v})
	}
	return value.NewDocument(entries), nil
}

// asMarker reports whether m is a single-entry map whose only key is a
// "$<generatorName>" marker.
func asMarker(m map[string]interface{}) (genType string, config interface{}, ok bool) {
	if len(m) != 1 {
		return "", nil, false
	}
	for k, v := range m {
		if strings.HasPrefix(k, "$") && len(k) > 1 {
			return k[1:], v, true
		}
	}
	return "", nil, false
}

// markerConfig normalizes a marker's inline config into the map shape
// genvalue.FromConfig expects, injecting the "type" the marker key
// supplied.
func markerConfig(genType string, raw interface{}) (interface{}, error) {
	if raw == nil {
		return map[string]interface{}{"type": genType}, nil
	}
	if m, ok := raw.(map[string]interface{}); ok {
		merged := make(map[string]interface{}, len(m)+1)
		for k, v := range m {
			merged[k] = v
		}
		merged["type"] = genType
		return merged, nil
	}
	if genType == "use-value" {
		return map[string]interface{}{"type": "use-value", "value": raw}, nil
	}
	return nil, fmt.Errorf("docgen: template marker $%s needs a map of parameters, got %T", genType, raw)
}
