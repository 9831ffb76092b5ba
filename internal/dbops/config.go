package dbops

import (
	"fmt"
	"time"

	"github.com/mongodb-labs/mwgrunner/internal/docgen"
	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
)

// FromConfig builds an Operation from one decoded YAML/viper node, keyed
// on its "type" field (§10 DOMAIN STACK's concrete operations list).
func FromConfig(m map[string]interface{}) (Operation, error) {
	kind, _ := m["type"].(string)
	switch kind {
	case "insert_one":
		doc, err := requireDoc(m, "document")
		if err != nil {
			return nil, err
		}
		return &InsertOne{Doc: doc}, nil
	case "insert_many":
		doc, err := requireDoc(m, "document")
		if err != nil {
			return nil, err
		}
		times, err := genvalue.IntOrGeneratorFromConfig(m["times"], 1)
		if err != nil {
			return nil, err
		}
		return &InsertMany{Doc: doc, Times: times}, nil
	case "find_one":
		filter, err := requireDoc(m, "filter")
		if err != nil {
			return nil, err
		}
		return &FindOne{Filter: filter}, nil
	case "find":
		filter, err := requireDoc(m, "filter")
		if err != nil {
			return nil, err
		}
		return &Find{Filter: filter}, nil
	case "update_one":
		filter, update, err := requireFilterAndUpdate(m)
		if err != nil {
			return nil, err
		}
		return &UpdateOne{Filter: filter, Update: update}, nil
	case "update_many":
		filter, update, err := requireFilterAndUpdate(m)
		if err != nil {
			return nil, err
		}
		return &UpdateMany{Filter: filter, Update: update}, nil
	case "delete_one":
		filter, err := requireDoc(m, "filter")
		if err != nil {
			return nil, err
		}
		return &DeleteOne{Filter: filter}, nil
	case "delete_many":
		filter, err := requireDoc(m, "filter")
		if err != nil {
			return nil, err
		}
		return &DeleteMany{Filter: filter}, nil
	case "count":
		filter, err := requireDoc(m, "filter")
		if err != nil {
			return nil, err
		}
		op := &Count{Filter: filter}
		if raw, ok := m["assertEquals"]; ok {
			n, err := asInt64Field(raw)
			if err != nil {
				return nil, err
			}
			op.AssertEquals = &n
		}
		return op, nil
	case "distinct":
		fieldName, _ := m["distinct_name"].(string)
		if fieldName == "" {
			return nil, fmt.Errorf("dbops: distinct missing %q", "distinct_name")
		}
		filter, err := requireDoc(m, "filter")
		if err != nil {
			return nil, err
		}
		return &Distinct{FieldName: fieldName, Filter: filter}, nil
	case "create_index":
		keys, err := requireDoc(m, "keys")
		if err != nil {
			return nil, err
		}
		name, _ := m["name"].(string)
		return &CreateIndex{Keys: keys, Name: name}, nil
	case "list_indexes":
		return &ListIndexes{}, nil
	case "drop_collection":
		return &DropCollection{}, nil
	case "command":
		doc, err := requireDoc(m, "command")
		if err != nil {
			return nil, err
		}
		return &Command{Doc: doc}, nil
	case "set_variable":
		variable, _ := m["variable"].(string)
		if variable == "" {
			return nil, fmt.Errorf("dbops: set_variable missing %q", "variable")
		}
		valueRaw, ok := m["value"]
		if !ok {
			return nil, fmt.Errorf("dbops: set_variable missing %q", "value")
		}
		gen, err := genvalue.FromConfig(valueRaw)
		if err != nil {
			return nil, err
		}
		return &SetVariable{Variable: variable, Generator: gen}, nil
	case "read_preference":
		mode, _ := m["read_preference"].(string)
		pref, err := ParseReadPreferenceMode(mode)
		if err != nil {
			return nil, err
		}
		return &ReadPreference{Pref: pref}, nil
	case "write_concern":
		wcRaw, ok := m["write_concern"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("dbops: write_concern missing %q", "write_concern")
		}
		var journal *bool
		if j, ok := wcRaw["j"].(bool); ok {
			journal = &j
		}
		var timeout time.Duration
		if t, err := asInt64Field(wcRaw["wtimeoutMS"]); err == nil && t > 0 {
			timeout = time.Duration(t) * time.Millisecond
		}
		wc, err := BuildWriteConcern(wcRaw["w"], journal, timeout)
		if err != nil {
			return nil, err
		}
		return &WriteConcern{Concern: wc}, nil
	default:
		return nil, fmt.Errorf("dbops: unknown operation type %q", kind)
	}
}

func requireDoc(m map[string]interface{}, key string) (docgen.Document, error) {
	raw, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("dbops: operation missing %q", key)
	}
	return docgen.FromConfig(raw)
}

func requireFilterAndUpdate(m map[string]interface{}) (docgen.Document, docgen.Document, error) {
	filter, err := requireDoc(m, "filter")
	if err != nil {
		return nil, nil, err
	}
	update, err := requireDoc(m, "update")
	if err != nil {
		return nil, nil, err
	}
	return filter, update, nil
}

func asInt64Field(raw interface{}) (int64, error) {
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
		return 0, fmt.Errorf("dbops: expected an integer, got %T", raw)
	}
}
