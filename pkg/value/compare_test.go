package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompareOrderedIntVsFloatIsTypeMismatch(t *testing.T) {
	result, ok := CompareOrdered(NewInt(5), Greater, NewFloat(4))
	assert.False(t, ok)
	assert.False(t, result)
}

func TestCompareOrderedIntVsDateTimeAreSameClass(t *testing.T) {
	result, ok := CompareOrdered(NewInt(5000), Less, NewDateTime(time.UnixMilli(6000)))
	assert.True(t, ok)
	assert.True(t, result)
}

func TestCompareOrderedMatchingFloatsCompare(t *testing.T) {
	result, ok := CompareOrdered(NewFloat(4.5), GreaterOrEqual, NewFloat(4.5))
	assert.True(t, ok)
	assert.True(t, result)
}

func TestCompareOrderedEqualsIgnoresClassMismatch(t *testing.T) {
	// Equals goes through Equal/canonicalize, not orderedNumeric/classify —
	// int64 and date are the same kind there regardless, but int vs float
	// is still never equal since canonicalize keeps their raw numeric form.
	result, ok := CompareOrdered(NewInt(5), Equals, NewFloat(5))
	assert.True(t, ok)
	assert.False(t, result)
}
