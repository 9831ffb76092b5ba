// Package wlconfig loads a workload definition (spec.md §6's external
// configuration shape) from a YAML file and builds the runnable pieces —
// an engctx.WorkloadState and a graph.Graph — out of it. The flat,
// fully-typed fields decode straight through viper's mapstructure path and
// are checked with go-playground/validator/v10; the node/generator/document
// tree underneath "nodes" is left as a raw map[string]interface{} tree and
// handed to internal/graph.Build, which already knows how to walk it —
// mapstructure can't express a tree whose shape is chosen by each node's
// own "type" tag.
package wlconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
	"github.com/mongodb-labs/mwgrunner/internal/graph"
	"github.com/mongodb-labs/mwgrunner/internal/logging"
	"github.com/mongodb-labs/mwgrunner/pkg/value"
)

// Config is the decoded shape of §6's "Configuration (input)" table, plus
// the uri/logger keys the CLI and domain stack need that the engine core
// itself is agnostic to.
type Config struct {
	Name       string                 `mapstructure:"name" validate:"required"`
	Seed       uint64                 `mapstructure:"seed"`
	URI        string                 `mapstructure:"uri" validate:"required"`
	Database   string                 `mapstructure:"database" validate:"required"`
	Collection string                 `mapstructure:"collection" validate:"required"`
	Threads    int                    `mapstructure:"threads" validate:"min=0"`
	RunLength  int64                  `mapstructure:"runLength" validate:"min=0"`
	WVariables map[string]interface{} `mapstructure:"wvariables"`
	TVariables map[string]interface{} `mapstructure:"tvariables"`
	Logger     logging.Config         `mapstructure:"logger"`
	Nodes      []interface{}          `mapstructure:"nodes" validate:"required,min=1"`
}

// applyDefaults fills in the zero-value defaults §6 specifies (threads
// defaults to 1; runLength 0 means no deadline, so it needs no default).
func (c *Config) applyDefaults() {
	if c.Threads <= 0 {
		c.Threads = 1
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "console"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "stdout"
	}
}

// Load reads and decodes a workload YAML file into a Config, applies
// defaults, and validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "reading workload config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding workload config")
	}
	cfg.applyDefaults()

	if err := validateConfig(&cfg); err != nil {
		return nil, errors.Wrap(err, "workload config validation failed")
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fmt.Sprintf("field %q failed %q (value: %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}

// Build constructs the WorkloadState and Graph a Config describes. The
// returned WorkloadState's shared scope is seeded from wvariables (§6);
// tvariables is returned separately since it seeds per-worker thread
// scope at execution time (internal/wlrunner.Runner), not workload-shared
// scope — mirroring internal/graph's nested-workload node, which applies
// its own inner tvariables the same way.
func Build(cfg *Config, log *zap.Logger) (*engctx.WorkloadState, *graph.Graph, map[string]value.Value, error) {
	runLength := time.Duration(cfg.RunLength) * time.Second
	initialShared := value.FromLiteralMap(cfg.WVariables)

	ws := engctx.NewWorkloadState(cfg.Name, cfg.Threads, runLength, cfg.URI, cfg.Database, cfg.Collection, cfg.Seed, initialShared)

	g, err := graph.Build(cfg.Name, cfg.Nodes, ws, log)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "workload %q: building graph", cfg.Name)
	}

	return ws, g, value.FromLiteralMap(cfg.TVariables), nil
}
