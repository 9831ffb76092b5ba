package genvalue

import (
	"fmt"
	"math"

	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// FromConfig builds a Generator from one decoded YAML/viper node (§4.1's
// "Recognized generator kinds and their configuration" table). A bare
// scalar or list (no "type" key) is shorthand for use-value, mirroring
// the original's "if it's a scalar, treat it as a value".
func FromConfig(raw interface{}) (Generator, error) {
	m, isMap := raw.(map[string]interface{})
	if !isMap {
		return &UseValue{V: value.FromLiteral(raw)}, nil
	}
	kindRaw, hasType := m["type"]
	if !hasType {
		return &UseValue{V: value.FromLiteral(raw)}, nil
	}
	kind, _ := kindRaw.(string)
	switch kind {
	case "use-value":
		v, ok := m["value"]
		if !ok {
			return nil, fmt.Errorf("genvalue: use-value missing %q", "value")
		}
		return &UseValue{V: value.FromLiteral(v)}, nil
	case "use-variable":
		name, _ := m["variable"].(string)
		if name == "" {
			return nil, fmt.Errorf("genvalue: use-variable missing %q", "variable")
		}
		return &UseVariable{Name: name}, nil
	case "use-result":
		return &UseResult{}, nil
	case "increment":
		return incrementFromConfig(m)
	case "random-int":
		return randomIntFromConfig(m)
	case "random-string":
		return randomStringFromConfig(m)
	case "fast-random-string":
		return fastRandomStringFromConfig(m)
	case "date":
		return &Date{}, nil
	case "uuid":
		return &UUID{}, nil
	case "choose":
		return chooseFromConfig(m)
	case "concatenate":
		parts, err := generatorListFromConfig(m, "parts")
		if err != nil {
			return nil, err
		}
		return &Concatenate{Parts: parts}, nil
	case "add":
		addends, err := generatorListFromConfig(m, "addends")
		if err != nil {
			return nil, err
		}
		return &Add{Addends: addends}, nil
	case "multiply":
		factors, err := generatorListFromConfig(m, "factors")
		if err != nil {
			return nil, err
		}
		return &Multiply{Factors: factors}, nil
	default:
		return nil, fmt.Errorf("genvalue: unknown generator type %q", kind)
	}
}

func generatorListFromConfig(m map[string]interface{}, key string) ([]Generator, error) {
	raw, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("genvalue: missing %q", key)
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("genvalue: %q must be a list", key)
	}
	out := make([]Generator, len(items))
	for i, item := range items {
		g, err := FromConfig(item)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// IntOrGeneratorFromConfig builds an IntOrGenerator from a decoded
// config value: a bare number becomes a fixed int, anything else is
// parsed as a nested generator. def is used when raw is nil. Exported
// for other packages (internal/dbops, internal/graph) that have their
// own int-or-generator configured fields (insert_many's times, for-N's
// N, sleep's duration).
func IntOrGeneratorFromConfig(raw interface{}, def int64) (IntOrGenerator, error) {
	return intOrGeneratorFromConfig(raw, def)
}

func intOrGeneratorFromConfig(raw interface{}, def int64) (IntOrGenerator, error) {
	if raw == nil {
		return FixedInt(def), nil
	}
	switch v := raw.(type) {
	case int:
		return FixedInt(int64(v)), nil
	case int32:
		return FixedInt(int64(v)), nil
	case int64:
		return FixedInt(v), nil
	case float64:
		return FixedInt(int64(v)), nil
	default:
		g, err := FromConfig(raw)
		if err != nil {
			return IntOrGenerator{}, err
		}
		return FromGenerator(g), nil
	}
}

func incrementFromConfig(m map[string]interface{}) (Generator, error) {
	name, _ := m["variable"].(string)
	if name == "" {
		return nil, fmt.Errorf("genvalue: increment missing %q", "variable")
	}
	step := int64(1)
	if raw, ok := m["increment"]; ok {
		v, err := asInt64(raw)
		if err != nil {
			return nil, err
		}
		step = v
	}
	minimum := int64(math.MinInt64)
	if raw, ok := m["minimum"]; ok {
		v, err := asInt64(raw)
		if err != nil {
			return nil, err
		}
		minimum = v
	}
	maximum := int64(math.MaxInt64)
	if raw, ok := m["maximum"]; ok {
		v, err := asInt64(raw)
		if err != nil {
			return nil, err
		}
		maximum = v
	}
	return &Increment{Variable: name, Step: step, Minimum: minimum, Maximum: maximum}, nil
}

func randomIntFromConfig(m map[string]interface{}) (Generator, error) {
	distStr, _ := m["distribution"].(string)
	dist, err := ParseDistribution(distStr)
	if err != nil {
		return nil, err
	}
	g := &RandomInt{Dist: dist}
	switch dist {
	case Uniform:
		g.Min, err = intOrGeneratorFromConfig(m["min"], 0)
		if err != nil {
			return nil, err
		}
		g.Max, err = intOrGeneratorFromConfig(m["max"], 100)
		if err != nil {
			return nil, err
		}
	case Binomial:
		g.Trials, err = intOrGeneratorFromConfig(m["t"], 0)
		if err != nil {
			return nil, err
		}
		g.P, err = requireGeneratorField(m, "p")
		if err != nil {
			return nil, err
		}
	case NegativeBinomial:
		g.Trials, err = intOrGeneratorFromConfig(m["k"], 0)
		if err != nil {
			return nil, err
		}
		g.P, err = requireGeneratorField(m, "p")
		if err != nil {
			return nil, err
		}
	case Geometric:
		g.P, err = requireGeneratorField(m, "p")
		if err != nil {
			return nil, err
		}
	case Poisson:
		g.Mean, err = requireGeneratorField(m, "mean")
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

func requireGeneratorField(m map[string]interface{}, key string) (Generator, error) {
	raw, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("genvalue: random-int missing %q", key)
	}
	return FromConfig(raw)
}

func randomStringFromConfig(m map[string]interface{}) (Generator, error) {
	length, err := intOrGeneratorFromConfig(m["length"], 10)
	if err != nil {
		return nil, err
	}
	alphabet := DefaultAlphabet
	if raw, ok := m["alphabet"]; ok {
		if s, ok := raw.(string); ok && s != "" {
			alphabet = s
		}
	}
	return &RandomString{Length: length, Alphabet: alphabet}, nil
}

func fastRandomStringFromConfig(m map[string]interface{}) (Generator, error) {
	length, err := intOrGeneratorFromConfig(m["length"], 10)
	if err != nil {
		return nil, err
	}
	return &FastRandomString{Length: length}, nil
}

func chooseFromConfig(m map[string]interface{}) (Generator, error) {
	raw, ok := m["choices"]
	if !ok {
		return nil, fmt.Errorf("genvalue: choose missing %q", "choices")
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("genvalue: %q must be a list", "choices")
	}
	choices := make([]value.Value, len(items))
	for i, item := range items {
		choices[i] = value.FromLiteral(item)
	}
	return &Choose{Choices: choices}, nil
}

func asInt64(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("genvalue: expected an integer, got %T", raw)
	}
}
