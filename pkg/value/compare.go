package value

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// Comparison identifies the ordered-comparison test an if-node can run
// (§4.3, ifNode comparison.test).
type Comparison int

const (
	Equals Comparison = iota
	Greater
	Less
	GreaterOrEqual
	LessOrEqual
)

// Equal implements §4.3's "equals is JSON-canonical equality on the entire
// Value" — two Values compare equal exactly when their canonical forms
// (as produced by canonicalize, then compared with go-cmp's structural
// equality) are equal, recursively for arrays and documents.
func Equal(a, b Value) bool {
	return cmp.Equal(canonicalize(a), canonicalize(b))
}

// canonicalize produces a structurally-comparable representation: int64
// and DateTime (per §4.3, "int64/date treated as the same integer kind")
// are normalized to the same shape so a literal 5 compares equal to a
// date whose millisecond value is 5.
func canonicalize(v Value) interface{} {
	switch v.kind {
	case Null:
		return nil
	case Int:
		return v.i
	case DateTime:
		return v.t.UnixMilli()
	case Float:
		return v.f
	case String:
		return v.s
	case Bool:
		return v.b
	case Array:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = canonicalize(e)
		}
		return out
	case Document:
		out := make(map[string]interface{}, len(v.doc))
		for _, e := range v.doc {
			out[e.Key] = canonicalize(e.Value)
		}
		return out
	default:
		return nil
	}
}

// orderedNumeric extracts a comparable numeric for ordered tests. §4.3:
// "Ordered comparisons require matching primitive types (int64/date
// treated as the same integer kind; int32 and float64 also supported);
// type mismatch logs an error and takes the else branch."
func orderedNumeric(v Value) (float64, bool) {
	switch v.kind {
	case Int:
		return float64(v.i), true
	case DateTime:
		return float64(v.t.UnixMilli()), true
	case Float:
		return float64(v.f), true
	default:
		return 0, false
	}
}

// numericClass groups Int and DateTime into one matching kind and Float
// into another, separate one — mirroring the original's exact-BSON-type
// equality check, which never lets an int compare ordered against a double.
type numericClass int

const (
	classIntLike numericClass = iota
	classFloat
)

func classify(v Value) (numericClass, bool) {
	switch v.kind {
	case Int, DateTime:
		return classIntLike, true
	case Float:
		return classFloat, true
	default:
		return 0, false
	}
}

// CompareOrdered evaluates an ordered comparison test. ok is false on type
// mismatch, per §4.3 — the caller takes the else branch and should log.
func CompareOrdered(a Value, test Comparison, b Value) (result bool, ok bool) {
	if test == Equals {
		return Equal(a, b), true
	}
	av, aok := orderedNumeric(a)
	bv, bok := orderedNumeric(b)
	if !aok || !bok {
		return false, false
	}
	aClass, _ := classify(a)
	bClass, _ := classify(b)
	if aClass != bClass {
		return false, false
	}
	switch test {
	case Greater:
		return av > bv, true
	case Less:
		return av < bv, true
	case GreaterOrEqual:
		return av >= bv, true
	case LessOrEqual:
		return av <= bv, true
	default:
		return false, false
	}
}

// ParseComparison maps a config string to a Comparison, per §4.3's test
// enum {equals, greater, less, greater_or_equal, less_or_equal}.
func ParseComparison(s string) (Comparison, error) {
	switch s {
	case "equals", "":
		return Equals, nil
	case "greater":
		return Greater, nil
	case "less":
		return Less, nil
	case "greater_or_equal":
		return GreaterOrEqual, nil
	case "less_or_equal":
		return LessOrEqual, nil
	default:
		return Equals, fmt.Errorf("unknown comparison test %q", s)
	}
}
