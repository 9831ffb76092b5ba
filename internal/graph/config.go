package graph

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/dbops"
	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/genvalue"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// commonFields is the name/next/print triple every node kind accepts
// (spec.md §4.3 "Common contract", grounded on
// _examples/original_source/src/nodes/node.cpp's constructor). A missing
// name is auto-generated rather than the original's type+counter scheme —
// see WorkloadState.NextNodeName.
type commonFields struct {
	name  string
	next  string
	print string
}

func readCommonFields(m map[string]interface{}, ws *engctx.WorkloadState) commonFields {
	cf := commonFields{}
	if v, ok := m["name"].(string); ok && v != "" {
		cf.name = v
	} else {
		cf.name = ws.NextNodeName()
	}
	cf.next, _ = m["next"].(string)
	cf.print, _ = m["print"].(string)
	return cf
}

// nodeFromConfig builds one concrete node from a decoded YAML map (§4.3's
// per-kind field tables, grounded on
// _examples/original_source/src/nodes/node.cpp's makeNode dispatcher).
// Any "type" that isn't one of the control-flow keywords below is treated
// as an inline operation node, mirroring makeNode's "default: construct an
// opNode" fallback, which itself defaults to using the whole node map as
// the operation's own config when no "op" sub-map is present.
func nodeFromConfig(m map[string]interface{}, ws *engctx.WorkloadState, log *zap.Logger) (Node, error) {
	kind, _ := m["type"].(string)

	switch kind {
	case "noop", "no_op":
		cf := readCommonFields(m, ws)
		return newNoOp(cf.name, cf.next, cf.print, log), nil
	case "random_choice":
		return randomChoiceFromConfig(m, ws, log)
	case "sleep":
		return sleepFromConfig(m, ws, log)
	case "forN":
		return forNFromConfig(m, ws, log)
	case "ifNode":
		return ifNodeFromConfig(m, ws, log)
	case "spawn":
		return spawnFromConfig(m, ws, log)
	case "doAll":
		return doAllFromConfig(m, ws, log)
	case "join":
		cf := readCommonFields(m, ws)
		return &Join{baseNode: newBaseNode(cf.name, cf.next, cf.print, log)}, nil
	case "finish":
		cf := readCommonFields(m, ws)
		f := newFinish(log)
		f.name = cf.name
		if cf.next != "" {
			f.nextName = cf.next
		} else {
			f.nextName = f.name
		}
		f.print = cf.print
		f.hasPrint = cf.print != ""
		return f, nil
	case "load_file":
		return loadFromFileFromConfig(m, ws, log)
	case "system":
		return systemCommandFromConfig(m, ws, log)
	case "workloadNode":
		return nestedWorkloadFromConfig(m, ws, log)
	default:
		return opNodeFromConfig(m, ws, log)
	}
}

func opNodeFromConfig(m map[string]interface{}, ws *engctx.WorkloadState, log *zap.Logger) (Node, error) {
	cf := readCommonFields(m, ws)
	opConfig := m
	if sub, ok := m["op"].(map[string]interface{}); ok {
		opConfig = sub
	}
	op, err := dbops.FromConfig(opConfig)
	if err != nil {
		return nil, fmt.Errorf("opNode %q: %w", cf.name, err)
	}
	return &OpNode{baseNode: newBaseNode(cf.name, cf.next, cf.print, log), Op: op}, nil
}

func sleepFromConfig(m map[string]interface{}, ws *engctx.WorkloadState, log *zap.Logger) (Node, error) {
	cf := readCommonFields(m, ws)
	// The legacy sleep node reads "sleep"; the newer form reads "sleepMs" —
	// both are accepted as aliases of the same millisecond duration.
	raw, ok := m["sleep"]
	if !ok {
		raw = m["sleepMs"]
	}
	millis, err := genvalue.IntOrGeneratorFromConfig(raw, 0)
	if err != nil {
		return nil, fmt.Errorf("sleep %q: %w", cf.name, err)
	}
	return &Sleep{baseNode: newBaseNode(cf.name, cf.next, cf.print, log), Millis: millis}, nil
}

func randomChoiceFromConfig(m map[string]interface{}, ws *engctx.WorkloadState, log *zap.Logger) (Node, error) {
	cf := readCommonFields(m, ws)
	nextMap, ok := m["next"].(map[string]interface{})
	if !ok || len(nextMap) == 0 {
		return nil, fmt.Errorf("random_choice %q: \"next\" must be a non-empty map of name to weight", cf.name)
	}
	targets := make([]weightedTarget, 0, len(nextMap))
	var total float64
	for name, rawWeight := range nextMap {
		w, err := asFloat(rawWeight)
		if err != nil {
			return nil, fmt.Errorf("random_choice %q: weight for %q: %w", cf.name, name, err)
		}
		targets = append(targets, weightedTarget{name: name, weight: w})
		total += w
	}
	// random_choice's own "next" field is the weighted map itself, not a
	// single successor name, so this node kind never has a configured
	// default next — it always lands on one of its weighted targets.
	rc := &RandomChoice{baseNode: newBaseNode(cf.name, "", cf.print, log), targets: targets, total: total}
	return rc, nil
}

func asFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("not a number: %v", raw)
	}
}

func forNFromConfig(m map[string]interface{}, ws *engctx.WorkloadState, log *zap.Logger) (Node, error) {
	cf := readCommonFields(m, ws)
	n, err := genvalue.IntOrGeneratorFromConfig(m["N"], 0)
	if err != nil {
		return nil, fmt.Errorf("forN %q: %w", cf.name, err)
	}
	inner, ok := m["node"].(string)
	if !ok || inner == "" {
		return nil, fmt.Errorf("forN %q: missing %q", cf.name, "node")
	}
	return &ForN{baseNode: newBaseNode(cf.name, cf.next, cf.print, log), N: n, innerName: inner}, nil
}

func ifNodeFromConfig(m map[string]interface{}, ws *engctx.WorkloadState, log *zap.Logger) (Node, error) {
	cf := readCommonFields(m, ws)
	ifName, _ := m["ifNode"].(string)
	elseName, _ := m["elseNode"].(string)
	if ifName == "" || elseName == "" {
		return nil, fmt.Errorf("ifNode %q: requires both %q and %q", cf.name, "ifNode", "elseNode")
	}
	in := &IfNode{
		baseNode:     newBaseNode(cf.name, cf.next, cf.print, log),
		ifNodeName:   ifName,
		elseNodeName: elseName,
		Test:         value.Equals,
	}
	if comp, ok := m["comparison"].(map[string]interface{}); ok {
		rawValue, ok := comp["value"]
		if !ok {
			return nil, fmt.Errorf("ifNode %q: comparison missing %q", cf.name, "value")
		}
		in.Compare = value.FromLiteral(rawValue)
		if v, ok := comp["variable"].(string); ok {
			in.Variable = v
		}
		if t, ok := comp["test"].(string); ok {
			test, err := value.ParseComparison(t)
			if err != nil {
				return nil, fmt.Errorf("ifNode %q: %w", cf.name, err)
			}
			in.Test = test
		}
	}
	return in, nil
}

func spawnFromConfig(m map[string]interface{}, ws *engctx.WorkloadState, log *zap.Logger) (Node, error) {
	cf := readCommonFields(m, ws)
	names, err := stringOrStringList(m["spawn"])
	if err != nil || len(names) == 0 {
		return nil, fmt.Errorf("spawn %q: requires %q as a name or list of names", cf.name, "spawn")
	}
	return &Spawn{baseNode: newBaseNode(cf.name, cf.next, cf.print, log), childNames: names}, nil
}

func doAllFromConfig(m map[string]interface{}, ws *engctx.WorkloadState, log *zap.Logger) (Node, error) {
	cf := readCommonFields(m, ws)
	names, err := stringOrStringList(m["childNodes"])
	if err != nil || len(names) == 0 {
		return nil, fmt.Errorf("doAll %q: requires %q as a non-empty list of names", cf.name, "childNodes")
	}
	return &DoAll{baseNode: newBaseNode(cf.name, cf.next, cf.print, log), childNames: names}, nil
}

func stringOrStringList(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string in list, got %v", e)
			}
			out = append(out, s)
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("missing value")
	default:
		return nil, fmt.Errorf("expected a string or list of strings, got %v", raw)
	}
}

func loadFromFileFromConfig(m map[string]interface{}, ws *engctx.WorkloadState, log *zap.Logger) (Node, error) {
	cf := readCommonFields(m, ws)
	fileName, _ := m["file_name"].(string)
	if fileName == "" {
		return nil, fmt.Errorf("load_file %q: missing %q", cf.name, "file_name")
	}
	path := fileName
	if prefix, ok := m["path"].(string); ok && prefix != "" {
		path = prefix + "/" + fileName
	}
	return &LoadFromFile{baseNode: newBaseNode(cf.name, cf.next, cf.print, log), Path: path}, nil
}

func systemCommandFromConfig(m map[string]interface{}, ws *engctx.WorkloadState, log *zap.Logger) (Node, error) {
	cf := readCommonFields(m, ws)
	command, _ := m["command"].(string)
	if command == "" {
		return nil, fmt.Errorf("system %q: missing %q", cf.name, "command")
	}
	return &SystemCommand{baseNode: newBaseNode(cf.name, cf.next, cf.print, log), Command: command}, nil
}

// nestedWorkloadFromConfig builds a NestedWorkload node from an embedded
// "workload" config (the same top-level shape described in spec.md §6:
// name/database/collection/threads/runLength/nodes) plus an "overrides"
// map of per-execution generator overrides (§4.4, grounded on
// _examples/original_source/src/nodes/workloadNode.cpp's constructor).
// The inner graph is built once, at config time; only the inner
// WorkloadState is rebuilt fresh on every execution, since overrides can
// change threads/runLength/name/database/collection per run.
func nestedWorkloadFromConfig(m map[string]interface{}, ws *engctx.WorkloadState, log *zap.Logger) (Node, error) {
	cf := readCommonFields(m, ws)
	wlConfig, ok := m["workload"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("workloadNode %q: missing %q", cf.name, "workload")
	}

	innerName, _ := wlConfig["name"].(string)
	if innerName == "" {
		innerName = cf.name
	}
	innerDB, _ := wlConfig["database"].(string)
	innerColl, _ := wlConfig["collection"].(string)
	innerThreads := int64(1)
	if t, err := asInt64(wlConfig["threads"]); err == nil {
		innerThreads = t
	}
	var innerRunLength time.Duration
	if r, err := asInt64(wlConfig["runLength"]); err == nil && r > 0 {
		innerRunLength = time.Duration(r) * time.Second
	}

	nodesRaw, ok := wlConfig["nodes"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("workloadNode %q: inner workload missing %q", cf.name, "nodes")
	}
	// A throwaway WorkloadState supplies only the node-name counter at
	// config time; the workload this node actually drives is built fresh
	// in Execute, since overrides are resolved per run.
	namer := engctx.NewWorkloadState(innerName, int(innerThreads), innerRunLength, "", innerDB, innerColl, 0, nil)
	innerGraph, err := Build(innerName, nodesRaw, namer, log)
	if err != nil {
		return nil, fmt.Errorf("workloadNode %q: inner workload: %w", cf.name, err)
	}

	innerWVariables, _ := wlConfig["wvariables"].(map[string]interface{})
	innerTVariables, _ := wlConfig["tvariables"].(map[string]interface{})

	nw := &NestedWorkload{
		baseNode:          newBaseNode(cf.name, cf.next, cf.print, log),
		InnerGraph:        innerGraph,
		DefaultName:       innerName,
		DefaultDatabase:   innerDB,
		DefaultCollection: innerColl,
		DefaultThreads:    innerThreads,
		DefaultRunLength:  innerRunLength,
		InitialWVariables: value.FromLiteralMap(innerWVariables),
		InitialTVariables: value.FromLiteralMap(innerTVariables),
	}

	if overrides, ok := m["overrides"].(map[string]interface{}); ok {
		for key, raw := range overrides {
			gen, err := genvalue.FromConfig(raw)
			if err != nil {
				return nil, fmt.Errorf("workloadNode %q: override %q: %w", cf.name, key, err)
			}
			nw.Overrides = append(nw.Overrides, nestedOverride{key: key, gen: gen})
		}
	}
	return nw, nil
}

func asInt64(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("not a number: %v", raw)
	}
}
