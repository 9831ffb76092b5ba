package graph

import (
	"bufio"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/dbops"
	"github.com/mongodb-labs/mwgrunner/internal/docgen"
	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// LoadFromFile inserts one document per line of a newline-delimited
// extended-JSON file into the thread's current collection (spec.md §4.3
// "Load from file", grounded on
// _examples/original_source/src/nodes/load_file_node.cpp's execute, which
// streams the file with ifstream/getline and inserts each parsed line one
// at a time rather than batching). A line that fails to parse or insert
// records an exception on this node and the loop continues with the next
// line, matching the original's per-line try/catch.
type LoadFromFile struct {
	baseNode
	Path string // already joined with any configured directory prefix
}

func (n *LoadFromFile) Execute(ctx *engctx.ThreadContext) {
	f, err := os.Open(filepath.Clean(n.Path))
	if err != nil {
		n.stat.RecordException()
		if n.log != nil {
			n.log.Error("load_from_file: cannot open file", zap.String("node", n.name), zap.Error(err))
		}
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var raw bson.M
		if err := bson.UnmarshalExtJSON([]byte(line), false, &raw); err != nil {
			n.stat.RecordException()
			continue
		}
		op := dbops.InsertOne{Doc: &docgen.Static{V: value.FromBSON(raw)}}
		if err := op.Execute(ctx); err != nil {
			n.stat.RecordException()
		}
	}
}
