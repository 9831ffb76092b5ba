package docgen

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

func newTestContext(t *testing.T) *engctx.ThreadContext {
	t.Helper()
	ws := engctx.NewWorkloadState("test", 1, 0, "", "db", "coll", 1, nil)
	return engctx.NewThreadContext(ws, rand.New(rand.NewSource(1)), nil)
}

func TestStaticView(t *testing.T) {
	ctx := newTestContext(t)
	doc := &Static{V: value.NewDocument([]value.DocEntry{{Key: "a", Value: value.NewInt(1)}})}
	v, err := doc.View(ctx)
	require.NoError(t, err)
	got, ok := v.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(1), got.Int())
}

func TestOverrideTopLevelAndNested(t *testing.T) {
	ctx := newTestContext(t)
	ctx.SetVariable("name", value.NewString("alice"))

	doc, err := FromConfig(map[string]interface{}{
		"type": "override",
		"doc": map[string]interface{}{
			"user": map[string]interface{}{
				"name": "placeholder",
				"age":  30,
			},
			"status": "active",
		},
		"overrides": map[string]interface{}{
			"user.name": map[string]interface{}{"type": "use-variable", "variable": "name"},
		},
	})
	require.NoError(t, err)

	v, err := doc.View(ctx)
	require.NoError(t, err)

	user, ok := v.Get("user")
	require.True(t, ok)
	name, ok := user.Get("name")
	require.True(t, ok)
	assert.Equal(t, "alice", name.String())
	age, ok := user.Get("age")
	require.True(t, ok)
	assert.Equal(t, int64(30), age.Int())

	status, ok := v.Get("status")
	require.True(t, ok)
	assert.Equal(t, "active", status.String())
}

func TestOverrideArrayDescentIsFatal(t *testing.T) {
	ctx := newTestContext(t)
	doc, err := FromConfig(map[string]interface{}{
		"type": "override",
		"doc": map[string]interface{}{
			"tags": []interface{}{"a", "b"},
		},
		"overrides": map[string]interface{}{
			"tags.0": map[string]interface{}{"type": "use-value", "value": "z"},
		},
	})
	require.NoError(t, err)
	_, err = doc.View(ctx)
	assert.Error(t, err)
}

func TestAppendOrdering(t *testing.T) {
	ctx := newTestContext(t)
	doc, err := FromConfig(map[string]interface{}{
		"type": "append",
		"doc": map[string]interface{}{
			"base": true,
		},
		"appends": []interface{}{
			map[string]interface{}{"first": "one"},
			map[string]interface{}{"second": "two"},
		},
	})
	require.NoError(t, err)
	v, err := doc.View(ctx)
	require.NoError(t, err)
	entries := v.Document()
	require.Len(t, entries, 3)
	assert.Equal(t, "base", entries[0].Key)
	assert.Equal(t, "first", entries[1].Key)
	assert.Equal(t, "second", entries[2].Key)
}

func TestTemplateMarkerSubstitution(t *testing.T) {
	ctx := newTestContext(t)
	doc, err := NewTemplate(map[string]interface{}{
		"name": "static",
		"id": map[string]interface{}{
			"$use-result": nil,
		},
	})
	require.NoError(t, err)
	ctx.LastResult = value.NewInt(99)

	v, err := doc.View(ctx)
	require.NoError(t, err)
	id, ok := v.Get("id")
	require.True(t, ok)
	assert.Equal(t, int64(99), id.Int())
	name, ok := v.Get("name")
	require.True(t, ok)
	assert.Equal(t, "static", name.String())
}
