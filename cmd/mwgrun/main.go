package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mongodb-labs/mwgrunner/internal/logging"
	"github.com/mongodb-labs/mwgrunner/internal/progress"
	"github.com/mongodb-labs/mwgrunner/internal/wlconfig"
	"github.com/mongodb-labs/mwgrunner/internal/wlrunner"
)

// Version information (set by the build system via ldflags).
var (
	Version   = "v0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	var (
		configFile string
		workers    int
		duration   string
		seed       uint64
		database   string
		collection string
		uri        string
	)

	addOverrideFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&configFile, "config", "c", "workload.yaml", "Path to workload config file")
		cmd.Flags().IntVar(&workers, "workers", 0, "Worker thread count (overrides config)")
		cmd.Flags().StringVarP(&duration, "duration", "d", "", "Run length, e.g. 30s, 1m (overrides config)")
		cmd.Flags().Uint64Var(&seed, "seed", 0, "RNG seed (overrides config)")
		cmd.Flags().StringVar(&database, "database", "", "Default database name (overrides config)")
		cmd.Flags().StringVar(&collection, "collection", "", "Default collection name (overrides config)")
		cmd.Flags().StringVar(&uri, "uri", "", "MongoDB connection URI (overrides config)")
	}

	loadAndOverride := func() (*wlconfig.Config, error) {
		cfg, err := wlconfig.Load(configFile)
		if err != nil {
			return nil, err
		}
		if workers > 0 {
			cfg.Threads = workers
		}
		if duration != "" {
			d, err := time.ParseDuration(duration)
			if err != nil {
				return nil, fmt.Errorf("invalid --duration %q: %w", duration, err)
			}
			cfg.RunLength = int64(d.Seconds())
		}
		if seed != 0 {
			cfg.Seed = seed
		}
		if database != "" {
			cfg.Database = database
		}
		if collection != "" {
			cfg.Collection = collection
		}
		if uri != "" {
			cfg.URI = uri
		}
		return cfg, nil
	}

	rootCmd := &cobra.Command{
		Use:   "mwgrun",
		Short: "Runs a declarative MongoDB workload graph",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadAndOverride()
			if err != nil {
				return err
			}
			return runWorkload(cfg)
		},
	}
	addOverrideFlags(rootCmd)

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse and build the workload graph without running it",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadAndOverride()
			if err != nil {
				return err
			}
			log := logging.NewDefault()
			if _, _, _, err := wlconfig.Build(cfg, logging.Unwrap(log)); err != nil {
				return err
			}
			fmt.Printf("workload %q is valid: %d worker(s), %d node(s)\n", cfg.Name, cfg.Threads, len(cfg.Nodes))
			return nil
		},
	}
	addOverrideFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)

	dotCmd := &cobra.Command{
		Use:   "dot",
		Short: "Print the workload graph's dot rendering and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadAndOverride()
			if err != nil {
				return err
			}
			log := logging.NewDefault()
			_, g, _, err := wlconfig.Build(cfg, logging.Unwrap(log))
			if err != nil {
				return err
			}
			fmt.Println(g.RenderDot())
			return nil
		},
	}
	addOverrideFlags(dotCmd)
	rootCmd.AddCommand(dotCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("mwgrun %s\n", Version)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Go version: %s\n", GoVersion)
		},
	}
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runWorkload connects to MongoDB, builds the graph, drives it through
// internal/wlrunner, and reports the final statistics snapshot — the
// process bootstrap §11.4 describes around the engine core.
func runWorkload(cfg *wlconfig.Config) error {
	log := logging.NewDefault()
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.URI, err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	ws, g, tvariables, err := wlconfig.Build(cfg, logging.Unwrap(log))
	if err != nil {
		return err
	}

	runner := wlrunner.New(ws, g, client, logging.Unwrap(log))
	runner.InitialTVariables = tvariables

	log.Info("starting workload", logging.Fields.Workload(cfg.Name, cfg.Threads)...)
	start := time.Now()

	reporter := progress.NewReporter(os.Stdout, cfg.Name, 10*time.Second)
	stopReporting := make(chan struct{})
	reportingDone := make(chan struct{})
	go func() {
		defer close(reportingDone)
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				reporter.Report(ws.AggregateStats.Count(), false)
			case <-stopReporting:
				return
			}
		}
	}()

	runner.Execute()
	close(stopReporting)
	<-reportingDone
	elapsed := time.Since(start)

	reporter.Report(ws.AggregateStats.Count(), true)

	snap := runner.SnapshotStats(false)
	log.Info("workload finished",
		logging.Fields.String("workload", cfg.Name),
		logging.Fields.Duration("elapsed", elapsed),
	)
	fmt.Println(snap.AsString())
	return nil
}
