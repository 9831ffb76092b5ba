// Package value defines the tagged-union Value type that flows through
// every layer of the workload engine: generator output, variable storage,
// document fields, and operation results are all Values.
package value

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind identifies which alternative of the tagged union is populated.
type Kind int

const (
	Null Kind = iota
	Int
	Float
	String
	Bool
	DateTime
	Array
	Document
)

// Value is a tagged union over the scalar and composite kinds a generator,
// variable, or operation result can hold.
type Value struct {
	kind Kind

	i    int64
	f    float64
	s    string
	b    bool
	t    time.Time
	arr  []Value
	doc  []DocEntry
}

// DocEntry is one key/value pair of a Document-kind Value. A slice (not a
// map) preserves field order for output documents and dot rendering.
type DocEntry struct {
	Key   string
	Value Value
}

func NewNull() Value               { return Value{kind: Null} }
func NewInt(i int64) Value         { return Value{kind: Int, i: i} }
func NewFloat(f float64) Value     { return Value{kind: Float, f: f} }
func NewString(s string) Value     { return Value{kind: String, s: s} }
func NewBool(b bool) Value         { return Value{kind: Bool, b: b} }
func NewDateTime(t time.Time) Value { return Value{kind: DateTime, t: t} }
func NewArray(items []Value) Value { return Value{kind: Array, arr: items} }
func NewDocument(entries []DocEntry) Value { return Value{kind: Document, doc: entries} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

func (v Value) Int() int64        { return v.i }
func (v Value) Float() float64    { return v.f }
func (v Value) String() string    { return v.s }
func (v Value) Bool() bool        { return v.b }
func (v Value) Time() time.Time   { return v.t }
func (v Value) Array() []Value    { return v.arr }
func (v Value) Document() []DocEntry { return v.doc }

// Get returns the value for a key of a Document-kind Value, and whether it
// was present.
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.doc {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// AsInt coerces the value to int64. Used by arithmetic generators (§4.1's
// add/multiply coerce via AsFloat, but increment and random-int need an
// int). A Float is truncated toward zero and a DateTime yields its Unix
// milliseconds; other kinds return an error.
func (v Value) AsInt() (int64, error) {
	switch v.kind {
	case Int:
		return v.i, nil
	case Float:
		return int64(v.f), nil
	case DateTime:
		return v.t.UnixMilli(), nil
	default:
		return 0, fmt.Errorf("value of kind %v cannot be coerced to int", v.kind)
	}
}

// AsFloat coerces an Int or Float value to float64 without loss of the
// fractional part; other kinds return an error. (Truncation to int is
// AsInt's job.)
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case Int:
		return float64(v.i), nil
	case Float:
		return v.f, nil
	default:
		return 0, fmt.Errorf("value of kind %v cannot be coerced to float", v.kind)
	}
}

// AsString coerces the value to its string representation. Every generator
// kind must support generateString (§4.1), so this never errors for
// scalars; composite kinds render via their BSON extended-JSON form.
func (v Value) AsString() string {
	switch v.kind {
	case Null:
		return ""
	case Int:
		return fmt.Sprintf("%d", v.i)
	case Float:
		return fmt.Sprintf("%g", v.f)
	case String:
		return v.s
	case Bool:
		return fmt.Sprintf("%t", v.b)
	case DateTime:
		return v.t.Format(time.RFC3339Nano)
	default:
		raw, err := bson.MarshalExtJSON(v.ToBSON(), false, false)
		if err != nil {
			return fmt.Sprintf("%v", v.ToBSON())
		}
		return string(raw)
	}
}

// ToBSON converts a Value into the nearest bson-library representation, so
// it can be handed to the driver as part of a document or filter.
func (v Value) ToBSON() interface{} {
	switch v.kind {
	case Null:
		return nil
	case Int:
		return v.i
	case Float:
		return v.f
	case String:
		return v.s
	case Bool:
		return v.b
	case DateTime:
		return primitive.NewDateTimeFromTime(v.t)
	case Array:
		out := make(bson.A, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.ToBSON()
		}
		return out
	case Document:
		out := bson.D{}
		for _, e := range v.doc {
			out = append(out, bson.E{Key: e.Key, Value: e.Value.ToBSON()})
		}
		return out
	default:
		return nil
	}
}

// FromBSON converts a driver-level value (as produced by decoding a
// bson.Raw into interface{}) into a Value. Used to populate ctx.lastResult
// from an operation's database reply.
func FromBSON(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return NewNull()
	case int32:
		return NewInt(int64(x))
	case int64:
		return NewInt(x)
	case int:
		return NewInt(int64(x))
	case float64:
		return NewFloat(x)
	case float32:
		return NewFloat(float64(x))
	case string:
		return NewString(x)
	case bool:
		return NewBool(x)
	case primitive.DateTime:
		return NewDateTime(x.Time())
	case time.Time:
		return NewDateTime(x)
	case primitive.ObjectID:
		return NewString(x.Hex())
	case primitive.A:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = FromBSON(e)
		}
		return NewArray(items)
	case bson.A:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = FromBSON(e)
		}
		return NewArray(items)
	case bson.D:
		entries := make([]DocEntry, len(x))
		for i, e := range x {
			entries[i] = DocEntry{Key: e.Key, Value: FromBSON(e.Value)}
		}
		return NewDocument(entries)
	case bson.M:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]DocEntry, 0, len(x))
		for _, k := range keys {
			entries = append(entries, DocEntry{Key: k, Value: FromBSON(x[k])})
		}
		return NewDocument(entries)
	case primitive.M:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]DocEntry, 0, len(x))
		for _, k := range keys {
			entries = append(entries, DocEntry{Key: k, Value: FromBSON(x[k])})
		}
		return NewDocument(entries)
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]DocEntry, 0, len(x))
		for _, k := range keys {
			entries = append(entries, DocEntry{Key: k, Value: FromBSON(x[k])})
		}
		return NewDocument(entries)
	case []interface{}:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = FromBSON(e)
		}
		return NewArray(items)
	default:
		return NewString(fmt.Sprintf("%v", x))
	}
}

// FromLiteral converts a plain Go literal as decoded out of YAML/viper
// (string, int, float64, bool, []interface{}, map[string]interface{}) into
// a Value. This is the use-value generator's config path (§4.1) and the
// static-document parser's leaf path (§4.2).
func FromLiteral(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return NewNull()
	case int:
		return NewInt(int64(x))
	case int32:
		return NewInt(int64(x))
	case int64:
		return NewInt(x)
	case float32:
		return NewFloat(float64(x))
	case float64:
		return NewFloat(x)
	case string:
		return NewString(x)
	case bool:
		return NewBool(x)
	case time.Time:
		return NewDateTime(x)
	case []interface{}:
		items := make([]Value, len(x))
		for i, e := range x {
			items[i] = FromLiteral(e)
		}
		return NewArray(items)
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]DocEntry, 0, len(x))
		for _, k := range keys {
			entries = append(entries, DocEntry{Key: k, Value: FromLiteral(x[k])})
		}
		return NewDocument(entries)
	default:
		return NewString(fmt.Sprintf("%v", x))
	}
}

// FromLiteralMap converts a decoded name->literal config map (§6's
// "wvariables"/"tvariables" shape) into name->Value, applying FromLiteral
// to each entry. Returns nil for a nil input so callers can pass the
// result straight through to something that treats nil as "no initial
// variables" without a separate empty check.
func FromLiteralMap(m map[string]interface{}) map[string]Value {
	if m == nil {
		return nil
	}
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = FromLiteral(v)
	}
	return out
}
