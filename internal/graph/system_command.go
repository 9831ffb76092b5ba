package graph

import (
	"os/exec"

	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
)

// SystemCommand runs a configured shell command to completion (spec.md
// §4.3 "System command", grounded on
// _examples/original_source/src/nodes/system_node.cpp's execute, which
// hands the configured string straight to std::system). A command that
// cannot start or exits non-zero is recorded as an exception on this
// node's statistics and logged at Debug; the traversal continues.
type SystemCommand struct {
	baseNode
	Command string
}

func (n *SystemCommand) Execute(ctx *engctx.ThreadContext) {
	cmd := exec.Command("/bin/sh", "-c", n.Command)
	if err := cmd.Run(); err != nil {
		n.stat.RecordException()
		if n.log != nil {
			n.log.Debug("system command failed", zap.String("node", n.name), zap.Error(err))
		}
	}
}
