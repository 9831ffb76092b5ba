package dbops

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
)

func newTestContext(t *testing.T) *engctx.ThreadContext {
	t.Helper()
	ws := engctx.NewWorkloadState("test", 1, 0, "", "db", "coll", 1, nil)
	return engctx.NewThreadContext(ws, rand.New(rand.NewSource(1)), nil)
}

func TestSetVariableExecute(t *testing.T) {
	ctx := newTestContext(t)
	gen, err := genvalue.FromConfig(map[string]interface{}{"type": "use-value", "value": 42})
	require.NoError(t, err)
	op := &SetVariable{Variable: "x", Generator: gen}
	require.NoError(t, op.Execute(ctx))
	v, ok := ctx.GetVariable("x")
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Int())
}

func TestParseReadPreferenceMode(t *testing.T) {
	pref, err := ParseReadPreferenceMode("secondaryPreferred")
	require.NoError(t, err)
	assert.Equal(t, readpref.SecondaryPreferredMode, pref.Mode())

	_, err = ParseReadPreferenceMode("bogus")
	assert.Error(t, err)
}

func TestReadPreferenceExecuteSetsThreadOverride(t *testing.T) {
	ctx := newTestContext(t)
	pref, err := ParseReadPreferenceMode("nearest")
	require.NoError(t, err)
	op := &ReadPreference{Pref: pref}
	require.NoError(t, op.Execute(ctx))
	got, ok := ctx.ReadPref.(*readpref.ReadPref)
	require.True(t, ok)
	assert.Equal(t, readpref.NearestMode, got.Mode())
}

func TestBuildWriteConcernMajority(t *testing.T) {
	wc, err := BuildWriteConcern("majority", nil, 0)
	require.NoError(t, err)
	require.NotNil(t, wc)
}

func TestBuildWriteConcernUnsupportedValue(t *testing.T) {
	_, err := BuildWriteConcern("bogus", nil, 0)
	assert.Error(t, err)
}

func TestFromConfigInsertOne(t *testing.T) {
	op, err := FromConfig(map[string]interface{}{
		"type":     "insert_one",
		"document": map[string]interface{}{"type": "static", "doc": map[string]interface{}{"a": 1}},
	})
	require.NoError(t, err)
	_, ok := op.(*InsertOne)
	assert.True(t, ok)
}

func TestFromConfigInsertMany(t *testing.T) {
	op, err := FromConfig(map[string]interface{}{
		"type":     "insert_many",
		"document": map[string]interface{}{"type": "static", "doc": map[string]interface{}{"a": 1}},
		"times":    5,
	})
	require.NoError(t, err)
	many, ok := op.(*InsertMany)
	require.True(t, ok)
	ctx := newTestContext(t)
	n, err := many.Times.Int(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestFromConfigCountWithAssertion(t *testing.T) {
	op, err := FromConfig(map[string]interface{}{
		"type":         "count",
		"filter":       map[string]interface{}{"type": "static", "doc": map[string]interface{}{}},
		"assertEquals": 7,
	})
	require.NoError(t, err)
	count, ok := op.(*Count)
	require.True(t, ok)
	require.NotNil(t, count.AssertEquals)
	assert.Equal(t, int64(7), *count.AssertEquals)
}

func TestFromConfigUnknownType(t *testing.T) {
	_, err := FromConfig(map[string]interface{}{"type": "bogus"})
	assert.Error(t, err)
}

func TestFromConfigSetVariable(t *testing.T) {
	op, err := FromConfig(map[string]interface{}{
		"type":     "set_variable",
		"variable": "y",
		"value":    map[string]interface{}{"type": "use-value", "value": "hello"},
	})
	require.NoError(t, err)
	sv, ok := op.(*SetVariable)
	require.True(t, ok)
	ctx := newTestContext(t)
	require.NoError(t, sv.Execute(ctx))
	v, ok := ctx.GetVariable("y")
	require.True(t, ok)
	assert.Equal(t, "hello", v.String())
}
