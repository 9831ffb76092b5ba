package graph

import (
	"math/rand"
	"testing"
	"time"

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

func nodeConfigs(cfgs ...map[string]interface{}) []interface{} {
	out := make([]interface{}, len(cfgs))
	for i, c := range cfgs {
		out[i] = c
	}
	return out
}

func TestBuildLinksDefaultNextInListOrder(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "noop", "name": "a"},
		map[string]interface{}{"type": "noop", "name": "b"},
	), ws, nil)
	require.NoError(t, err)

	a, ok := g.ByName("a")
	require.True(t, ok)
	b, ok := g.ByName("b")
	require.True(t, ok)
	assert.Same(t, b, a.Next())

	finish, ok := g.ByName("Finish")
	require.True(t, ok)
	assert.Same(t, finish, b.Next())
	assert.Same(t, a, g.Entry())
}

func TestBuildAddsImplicitFinishOnlyWhenAbsent(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "finish", "name": "Finish"},
	), ws, nil)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 1)
}

func TestBuildRejectsDuplicateNames(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	_, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "noop", "name": "a"},
		map[string]interface{}{"type": "noop", "name": "a"},
	), ws, nil)
	assert.Error(t, err)
}

func TestBuildRejectsUnresolvedNext(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	_, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "noop", "name": "a", "next": "nowhere"},
	), ws, nil)
	assert.Error(t, err)
}

func TestRunThreadAdvancesThroughNodesToNil(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "noop", "name": "a"},
		map[string]interface{}{"type": "noop", "name": "b"},
	), ws, nil)
	require.NoError(t, err)

	ctx := engctx.NewThreadContext(ws, rand.New(rand.NewSource(1)), nil)
	ctx.CurrentNode = g.Entry()
	RunThread(ctx, nil)
	assert.Nil(t, ctx.CurrentNode)

	a, _ := g.ByName("a")
	b, _ := g.ByName("b")
	assert.Equal(t, int64(1), a.Stats().SnapshotWithReset(false).Count)
	assert.Equal(t, int64(1), b.Stats().SnapshotWithReset(false).Count)
}

func TestRunThreadStopsOnWorkloadStop(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "noop", "name": "a"},
	), ws, nil)
	require.NoError(t, err)

	ctx := engctx.NewThreadContext(ws, rand.New(rand.NewSource(1)), nil)
	ctx.CurrentNode = g.Entry()
	ws.Stop()
	RunThread(ctx, nil)
	assert.NotNil(t, ctx.CurrentNode, "a stopped workload should never even execute its first node")
}

func TestSleepWaitsConfiguredDuration(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "sleep", "name": "s", "sleepMs": 20},
	), ws, nil)
	require.NoError(t, err)

	ctx := newTestContext(t)
	start := time.Now()
	s, _ := g.ByName("s")
	s.Execute(ctx)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestRunThreadHaltsOnNodeLevelStopEvenIfWorkloadKeepsRunning(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "noop", "name": "a"},
		map[string]interface{}{"type": "noop", "name": "b"},
	), ws, nil)
	require.NoError(t, err)

	a, _ := g.ByName("a")
	a.RequestStop()

	ctx := newTestContext(t)
	ctx.CurrentNode = a
	RunThread(ctx, nil)

	assert.False(t, ws.Stopped(), "only the node's own stop-flag was set")
	assert.Equal(t, int64(0), a.Stats().SnapshotWithReset(false).Count, "a stopped node should never execute")
}

func TestSleepAcceptsLegacySleepKey(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "sleep", "name": "s", "sleep": 20},
	), ws, nil)
	require.NoError(t, err)

	ctx := newTestContext(t)
	start := time.Now()
	s, _ := g.ByName("s")
	s.Execute(ctx)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestSleepReturnsEarlyWhenStopped(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "sleep", "name": "s", "sleepMs": 5000},
	), ws, nil)
	require.NoError(t, err)

	ctx := newTestContext(t)
	ctx.RequestStop()
	start := time.Now()
	s, _ := g.ByName("s")
	s.Execute(ctx)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRandomChoicePicksAmongWeightedTargets(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{
			"type": "random_choice",
			"name": "rc",
			"next": map[string]interface{}{"a": 1, "b": 1},
		},
		map[string]interface{}{"type": "noop", "name": "a"},
		map[string]interface{}{"type": "noop", "name": "b"},
	), ws, nil)
	require.NoError(t, err)

	rc, _ := g.ByName("rc")
	a, _ := g.ByName("a")
	b, _ := g.ByName("b")

	seen := map[string]bool{}
	for seed := int64(0); seed < 50 && len(seen) < 2; seed++ {
		ctx := engctx.NewThreadContext(ws, rand.New(rand.NewSource(seed)), nil)
		rc.Execute(ctx)
		if ctx.CurrentNode == a {
			seen["a"] = true
		} else if ctx.CurrentNode == b {
			seen["b"] = true
		} else {
			t.Fatalf("random_choice landed on unexpected node")
		}
	}
	assert.Len(t, seen, 2, "expected both weighted targets to be reachable across draws")
}

func TestIfNodeBranchesOnComparison(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{
			"type":     "ifNode",
			"name":     "cond",
			"ifNode":   "yes",
			"elseNode": "no",
			"comparison": map[string]interface{}{
				"variable": "x",
				"test":     "equals",
				"value":    int64(5),
			},
		},
		map[string]interface{}{"type": "noop", "name": "yes"},
		map[string]interface{}{"type": "noop", "name": "no"},
	), ws, nil)
	require.NoError(t, err)

	cond, _ := g.ByName("cond")
	yes, _ := g.ByName("yes")
	no, _ := g.ByName("no")

	ctx := newTestContext(t)
	ctx.SetVariable("x", value.FromLiteral(int64(5)))
	cond.Execute(ctx)
	assert.Same(t, yes, ctx.CurrentNode)

	ctx2 := newTestContext(t)
	ctx2.SetVariable("x", value.FromLiteral(int64(9)))
	cond.Execute(ctx2)
	assert.Same(t, no, ctx2.CurrentNode)
}

func TestIfNodeMissingVariableStopsWorkload(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{
			"type":     "ifNode",
			"name":     "cond",
			"ifNode":   "yes",
			"elseNode": "no",
			"comparison": map[string]interface{}{
				"variable": "missing",
				"value":    int64(1),
			},
		},
		map[string]interface{}{"type": "noop", "name": "yes"},
		map[string]interface{}{"type": "noop", "name": "no"},
	), ws, nil)
	require.NoError(t, err)

	cond, _ := g.ByName("cond")
	ctx := newTestContext(t)
	cond.Execute(ctx)
	assert.True(t, ctx.Workload.Stopped())
}

func TestForNRunsInnerEntryNTimes(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "forN", "name": "loop", "N": int64(3), "node": "body", "next": "Finish"},
		map[string]interface{}{"type": "noop", "name": "body", "next": "Finish"},
	), ws, nil)
	require.NoError(t, err)

	loop, _ := g.ByName("loop")
	body, _ := g.ByName("body")
	ctx := engctx.NewThreadContext(ws, rand.New(rand.NewSource(1)), nil)
	ctx.CurrentNode = loop
	loop.Execute(ctx)

	assert.Equal(t, int64(3), body.Stats().SnapshotWithReset(false).Count)
	finish, _ := g.ByName("Finish")
	assert.Same(t, finish, ctx.CurrentNode)
}

func TestDoAllAndJoinRendezvous(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 3, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "doAll", "name": "fork", "childNodes": []interface{}{"c1", "c2"}},
		map[string]interface{}{"type": "join", "name": "rendezvous"},
		map[string]interface{}{"type": "noop", "name": "c1", "next": "rendezvous"},
		map[string]interface{}{"type": "noop", "name": "c2", "next": "rendezvous"},
	), ws, nil)
	require.NoError(t, err)

	fork, _ := g.ByName("fork")
	join, _ := g.ByName("rendezvous")
	c1, _ := g.ByName("c1")
	c2, _ := g.ByName("c2")

	ctx := engctx.NewThreadContext(ws, rand.New(rand.NewSource(1)), nil)
	ctx.CurrentNode = fork
	fork.Execute(ctx)
	require.NotNil(t, ctx.PendingJoin)

	join.Execute(ctx)
	assert.Nil(t, ctx.PendingJoin)
	assert.Equal(t, int64(1), c1.Stats().SnapshotWithReset(false).Count)
	assert.Equal(t, int64(1), c2.Stats().SnapshotWithReset(false).Count)
}

func TestJoinWithNoPendingWorkIsChildBranch(t *testing.T) {
	ctx := newTestContext(t)
	j := &Join{baseNode: newBaseNode("j", "next", "", nil)}
	ctx.CurrentNode = j
	j.Execute(ctx)
	assert.Nil(t, ctx.CurrentNode)
}

func TestSpawnedChildrenAreReclaimedByLaterJoin(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 3, 0, "", "db", "coll", 1, nil)
	g, err := Build("w", nodeConfigs(
		map[string]interface{}{"type": "spawn", "name": "bg", "spawn": []interface{}{"worker"}},
		map[string]interface{}{"type": "join", "name": "rendezvous"},
		map[string]interface{}{"type": "sleep", "name": "worker", "sleepMs": 5000, "next": "worker"},
	), ws, nil)
	require.NoError(t, err)

	bg, _ := g.ByName("bg")
	join, _ := g.ByName("rendezvous")

	ctx := engctx.NewThreadContext(ws, rand.New(rand.NewSource(1)), nil)
	ctx.CurrentNode = bg
	bg.Execute(ctx)
	require.Len(t, ctx.BackgroundChildren, 1)

	done := make(chan struct{})
	go func() {
		join.Execute(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("join did not reclaim background spawn children in time")
	}
	assert.Nil(t, ctx.BackgroundChildren)
	assert.Nil(t, ctx.BackgroundWG)
}

func TestNodeFromConfigDispatchesOperationNode(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	n, err := nodeFromConfig(map[string]interface{}{
		"type":     "insert_one",
		"name":     "ins",
		"document": map[string]interface{}{"a": int64(1)},
	}, ws, nil)
	require.NoError(t, err)
	_, ok := n.(*OpNode)
	assert.True(t, ok)
}

func TestRenderDotProducesDigraphBlock(t *testing.T) {
	ws := engctx.NewWorkloadState("w", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("dot_test", nodeConfigs(
		map[string]interface{}{"type": "noop", "name": "a"},
	), ws, nil)
	require.NoError(t, err)
	dot := g.RenderDot()
	assert.Contains(t, dot, "digraph dot_test {")
	assert.Contains(t, dot, "a -> Finish;")
}

func TestGraphSnapshotIncludesWorkloadAndNodeEntries(t *testing.T) {
	ws := engctx.NewWorkloadState("snap", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("snap", nodeConfigs(
		map[string]interface{}{"type": "noop", "name": "a"},
	), ws, nil)
	require.NoError(t, err)

	snap := g.Snapshot(ws, false)
	doc := snap.Document()

	keys := map[string]bool{}
	for _, e := range doc {
		keys[e.Key] = true
	}
	assert.True(t, keys["snap"])
	assert.True(t, keys["a"])
	assert.True(t, keys["Finish"])
	assert.True(t, keys["Date"])
}

func TestNestedWorkloadSeedsInnerTVariablesFromConfig(t *testing.T) {
	ws := engctx.NewWorkloadState("outer", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("outer", nodeConfigs(
		map[string]interface{}{
			"type": "workloadNode",
			"name": "inner",
			"workload": map[string]interface{}{
				"name":       "inner",
				"threads":    int64(1),
				"tvariables": map[string]interface{}{"x": int64(5)},
				"nodes": []interface{}{
					map[string]interface{}{
						"type":     "ifNode",
						"name":     "cond",
						"ifNode":   "yes",
						"elseNode": "no",
						"comparison": map[string]interface{}{
							"variable": "x",
							"test":     "equals",
							"value":    int64(5),
						},
					},
					map[string]interface{}{"type": "noop", "name": "yes"},
					map[string]interface{}{"type": "noop", "name": "no"},
				},
			},
		},
	), ws, nil)
	require.NoError(t, err)

	inner, ok := g.ByName("inner")
	require.True(t, ok)
	nw, ok := inner.(*NestedWorkload)
	require.True(t, ok)

	nw.Execute(newTestContext(t))

	doc := nw.InnerSnapshot(false).Document()
	var yesCount, noCount int64
	for _, e := range doc {
		if e.Key == "yes" {
			if c, ok := e.Value.Get("count"); ok {
				yesCount = c.Int()
			}
		}
		if e.Key == "no" {
			if c, ok := e.Value.Get("count"); ok {
				noCount = c.Int()
			}
		}
	}
	assert.Equal(t, int64(1), yesCount, "inner worker's tvariable x should have matched the equals(5) branch")
	assert.Equal(t, int64(0), noCount)
}

func TestNestedWorkloadOverrideWinsOverConfiguredWVariable(t *testing.T) {
	ws := engctx.NewWorkloadState("outer", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("outer", nodeConfigs(
		map[string]interface{}{
			"type": "workloadNode",
			"name": "inner",
			"workload": map[string]interface{}{
				"name":       "inner",
				"threads":    int64(1),
				"wvariables": map[string]interface{}{"shared": int64(1)},
				"nodes": []interface{}{
					map[string]interface{}{
						"type":     "ifNode",
						"name":     "cond",
						"ifNode":   "matched",
						"elseNode": "unmatched",
						"comparison": map[string]interface{}{
							"variable": "shared",
							"test":     "equals",
							"value":    int64(2),
						},
					},
					map[string]interface{}{"type": "noop", "name": "matched"},
					map[string]interface{}{"type": "noop", "name": "unmatched"},
				},
			},
			"overrides": map[string]interface{}{
				"shared": map[string]interface{}{"type": "use-value", "value": int64(2)},
			},
		},
	), ws, nil)
	require.NoError(t, err)

	inner, ok := g.ByName("inner")
	require.True(t, ok)
	nw, ok := inner.(*NestedWorkload)
	require.True(t, ok)
	assert.Equal(t, value.FromLiteral(int64(1)), nw.InitialWVariables["shared"])

	nw.Execute(newTestContext(t))

	doc := nw.InnerSnapshot(false).Document()
	var matchedCount int64
	for _, e := range doc {
		if e.Key == "matched" {
			if c, ok := e.Value.Get("count"); ok {
				matchedCount = c.Int()
			}
		}
	}
	assert.Equal(t, int64(1), matchedCount, "per-execution override should win over the configured wvariable")
}

func TestNestedWorkloadOverrideCollidingWithTVariableRoutesToThreadScope(t *testing.T) {
	ws := engctx.NewWorkloadState("outer", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("outer", nodeConfigs(
		map[string]interface{}{
			"type": "workloadNode",
			"name": "inner",
			"workload": map[string]interface{}{
				"name":       "inner",
				"threads":    int64(1),
				"tvariables": map[string]interface{}{"x": int64(5)},
				"nodes": []interface{}{
					map[string]interface{}{
						"type":     "ifNode",
						"name":     "cond",
						"ifNode":   "matched",
						"elseNode": "unmatched",
						"comparison": map[string]interface{}{
							"variable": "x",
							"test":     "equals",
							"value":    int64(9),
						},
					},
					map[string]interface{}{"type": "noop", "name": "matched"},
					map[string]interface{}{"type": "noop", "name": "unmatched"},
				},
			},
			"overrides": map[string]interface{}{
				"x": map[string]interface{}{"type": "use-value", "value": int64(9)},
			},
		},
	), ws, nil)
	require.NoError(t, err)

	inner, ok := g.ByName("inner")
	require.True(t, ok)
	nw, ok := inner.(*NestedWorkload)
	require.True(t, ok)

	nw.Execute(newTestContext(t))

	doc := nw.InnerSnapshot(false).Document()
	var matchedCount int64
	for _, e := range doc {
		if e.Key == "matched" {
			if c, ok := e.Value.Get("count"); ok {
				matchedCount = c.Int()
			}
		}
	}
	assert.Equal(t, int64(1), matchedCount, "override colliding with a configured tvariable should win, in thread scope")
}

func TestNestedWorkloadNewOverrideNameDefaultsToTVariables(t *testing.T) {
	ws := engctx.NewWorkloadState("outer", 1, 0, "", "db", "coll", 1, nil)
	g, err := Build("outer", nodeConfigs(
		map[string]interface{}{
			"type": "workloadNode",
			"name": "inner",
			"workload": map[string]interface{}{
				"name":    "inner",
				"threads": int64(1),
				"nodes": []interface{}{
					map[string]interface{}{
						"type":     "ifNode",
						"name":     "cond",
						"ifNode":   "matched",
						"elseNode": "unmatched",
						"comparison": map[string]interface{}{
							"variable": "fresh",
							"test":     "equals",
							"value":    int64(3),
						},
					},
					map[string]interface{}{"type": "noop", "name": "matched"},
					map[string]interface{}{"type": "noop", "name": "unmatched"},
				},
			},
			"overrides": map[string]interface{}{
				"fresh": map[string]interface{}{"type": "use-value", "value": int64(3)},
			},
		},
	), ws, nil)
	require.NoError(t, err)

	inner, ok := g.ByName("inner")
	require.True(t, ok)
	nw, ok := inner.(*NestedWorkload)
	require.True(t, ok)
	assert.Empty(t, nw.InitialWVariables)
	assert.Empty(t, nw.InitialTVariables)

	nw.Execute(newTestContext(t))

	doc := nw.InnerSnapshot(false).Document()
	var matchedCount int64
	for _, e := range doc {
		if e.Key == "matched" {
			if c, ok := e.Value.Get("count"); ok {
				matchedCount = c.Int()
			}
		}
	}
	assert.Equal(t, int64(1), matchedCount, "an override name declared nowhere should still reach workers via tvariables")
}
