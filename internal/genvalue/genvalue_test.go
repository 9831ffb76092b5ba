package genvalue

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

func newTestContext(t *testing.T, seed int64) *engctx.ThreadContext {
	t.Helper()
	ws := engctx.NewWorkloadState("test", 1, 0, "", "db", "coll", uint64(seed), nil)
	return engctx.NewThreadContext(ws, rand.New(rand.NewSource(seed)), nil)
}

func TestUseValue(t *testing.T) {
	ctx := newTestContext(t, 1)
	g := &UseValue{V: value.NewInt(42)}
	v, err := g.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int())
}

func TestUseVariableUnknownIsFatal(t *testing.T) {
	ctx := newTestContext(t, 1)
	g := &UseVariable{Name: "nope"}
	_, err := g.Generate(ctx)
	assert.Error(t, err)
}

func TestUseVariableReservedFields(t *testing.T) {
	ctx := newTestContext(t, 1)
	ctx.DBName = "analytics"
	g := &UseVariable{Name: "DBName"}
	v, err := g.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "analytics", v.String())
}

func TestUseResult(t *testing.T) {
	ctx := newTestContext(t, 1)
	ctx.LastResult = value.NewBool(true)
	g := &UseResult{}
	v, err := g.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, v.Bool())
}

func TestIncrementWrapsAround(t *testing.T) {
	ctx := newTestContext(t, 1)
	g := &Increment{Variable: "counter", Step: 5, Minimum: 0, Maximum: 7}
	ctx.SetVariable("counter", value.NewInt(6))

	first, err := g.GenerateInt(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), first)

	v, ok := ctx.GetVariable("counter")
	require.True(t, ok)
	// 6 + 5 = 11 > 7, wraps to 0 + (11-7) = 4.
	assert.Equal(t, int64(4), v.Int())
}

func TestIncrementUnknownVariableIsFatal(t *testing.T) {
	ctx := newTestContext(t, 1)
	g := NewIncrement("fresh", nil, nil, nil)
	_, err := g.GenerateInt(ctx)
	assert.Error(t, err)
}

func TestIncrementAdvancesPreSeededVariable(t *testing.T) {
	ctx := newTestContext(t, 1)
	ctx.SetVariable("seeded", value.NewInt(math.MinInt64))
	g := NewIncrement("seeded", nil, nil, nil)

	first, err := g.GenerateInt(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), first)

	v, ok := ctx.GetVariable("seeded")
	require.True(t, ok)
	assert.Equal(t, int64(math.MinInt64+1), v.Int())
}

func TestRandomIntUniformBounds(t *testing.T) {
	ctx := newTestContext(t, 7)
	g := &RandomInt{Dist: Uniform, Min: FixedInt(5), Max: FixedInt(9)}
	for i := 0; i < 200; i++ {
		n, err := g.GenerateInt(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(5))
		assert.LessOrEqual(t, n, int64(9))
	}
}

func TestRandomIntPoissonNonNegative(t *testing.T) {
	ctx := newTestContext(t, 3)
	g := &RandomInt{Dist: Poisson, Mean: &UseValue{V: value.NewFloat(4)}}
	for i := 0; i < 50; i++ {
		n, err := g.GenerateInt(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(0))
	}
}

func TestFastRandomStringLength(t *testing.T) {
	ctx := newTestContext(t, 11)
	g := NewFastRandomString()
	g.Length = FixedInt(37)
	s, err := g.GenerateString(ctx)
	require.NoError(t, err)
	assert.Len(t, s, 37)
	for _, c := range s {
		assert.Contains(t, fastAlphabet, string(c))
	}
}

func TestRandomStringCustomAlphabet(t *testing.T) {
	ctx := newTestContext(t, 2)
	g := &RandomString{Length: FixedInt(20), Alphabet: "xy"}
	s, err := g.GenerateString(ctx)
	require.NoError(t, err)
	assert.Len(t, s, 20)
	for _, c := range s {
		assert.Contains(t, "xy", string(c))
	}
}

func TestChooseUniform(t *testing.T) {
	ctx := newTestContext(t, 5)
	g := &Choose{Choices: []value.Value{value.NewInt(1), value.NewInt(2)}}
	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		v, err := g.Generate(ctx)
		require.NoError(t, err)
		seen[v.Int()] = true
	}
	assert.True(t, seen[1] || seen[2])
}

func TestConcatenate(t *testing.T) {
	ctx := newTestContext(t, 1)
	g := &Concatenate{Parts: []Generator{
		&UseValue{V: value.NewString("foo")},
		&UseValue{V: value.NewString("bar")},
	}}
	s, err := g.GenerateString(ctx)
	require.NoError(t, err)
	assert.Equal(t, "foobar", s)
}

func TestAddAndMultiply(t *testing.T) {
	ctx := newTestContext(t, 1)
	add := &Add{Addends: []Generator{&UseValue{V: value.NewInt(2)}, &UseValue{V: value.NewFloat(1.5)}}}
	sum, err := add.GenerateDouble(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.5, sum)

	mul := &Multiply{Factors: []Generator{&UseValue{V: value.NewInt(3)}, &UseValue{V: value.NewInt(4)}}}
	prod, err := mul.GenerateDouble(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.0, prod)
}

func TestDateReturnsNow(t *testing.T) {
	ctx := newTestContext(t, 1)
	before := time.Now().Add(-time.Second)
	g := &Date{}
	v, err := g.Generate(ctx)
	require.NoError(t, err)
	assert.True(t, v.Time().After(before))
}

func TestFromConfigScalarIsUseValue(t *testing.T) {
	g, err := FromConfig("hello")
	require.NoError(t, err)
	ctx := newTestContext(t, 1)
	v, err := g.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", v.String())
}

func TestFromConfigRandomIntUniform(t *testing.T) {
	g, err := FromConfig(map[string]interface{}{
		"type": "random-int",
		"min":  1,
		"max":  3,
	})
	require.NoError(t, err)
	ctx := newTestContext(t, 9)
	n, err := g.GenerateInt(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
	assert.LessOrEqual(t, n, int64(3))
}

func TestFromConfigUnknownType(t *testing.T) {
	_, err := FromConfig(map[string]interface{}{"type": "bogus"})
	assert.Error(t, err)
}

func TestUUIDProducesDistinctValuesPerDraw(t *testing.T) {
	g, err := FromConfig(map[string]interface{}{"type": "uuid"})
	require.NoError(t, err)
	ctx := newTestContext(t, 1)

	a, err := g.GenerateString(ctx)
	require.NoError(t, err)
	b, err := g.GenerateString(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
