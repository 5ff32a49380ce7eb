package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vsinha/echelon/pkg/interfaces/cli/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "generate" {
		err = runGenerate(ctx, os.Args[2:])
	} else {
		err = runSimulate(ctx)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func runSimulate(ctx context.Context) error {
	// Command line flags
	var (
		configFile  = flag.String("config", "", "Path to YAML scenario file")
		scenarioDir = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing CSV files",
		)
		periods     = flag.Int("periods", 0, "Periods to simulate (default: the scenario's periods)")
		outputDir   = flag.String("output", "", "Output directory for results (optional)")
		format      = flag.String("format", "text", "Output format: text, json, csv, svg")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
		logLevel    = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
		snapshotDir = flag.String("snapshot-dir", "", "Directory for per-period snapshots (optional)")
		compress    = flag.Bool("compress", false, "Snappy-compress snapshots")
		resume      = flag.String("resume", "", "Run id to continue from its latest snapshot")
		metricsOut  = flag.String("metrics-out", "", "Write Prometheus metrics to this file after the run")
		help        = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Create command configuration
	config := commands.Config{
		ConfigFile:  *configFile,
		ScenarioDir: *scenarioDir,
		Periods:     *periods,
		OutputDir:   *outputDir,
		Format:      *format,
		Verbose:     *verbose,
		LogLevel:    *logLevel,
		SnapshotDir: *snapshotDir,
		Compress:    *compress,
		Resume:      *resume,
		MetricsOut:  *metricsOut,
		Help:        *help,
	}

	return commands.NewSimulateCommand(config).Execute(ctx)
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		nodes     = fs.Int("nodes", 12, "Number of nodes to generate")
		echelons  = fs.Int("echelons", 3, "Number of echelons, retail included")
		periods   = fs.Int("periods", 52, "Periods to simulate")
		demand    = fs.Int("demand", 10, "Mean retail demand per period")
		coverage  = fs.Float64("coverage", 1.0, "Stock multiplier")
		format    = fs.String("format", "yaml", "Output format: yaml, csv")
		outputDir = fs.String("output", "", "Output directory for generated files")
		seed      = fs.Int64("seed", 0, "Random seed for reproducible generation")
		verbose   = fs.Bool("verbose", false, "Enable verbose output")
		help      = fs.Bool("help", false, "Show help message")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	config := commands.GenerateConfig{
		Nodes:     *nodes,
		Echelons:  *echelons,
		Periods:   *periods,
		Demand:    *demand,
		Coverage:  *coverage,
		Format:    *format,
		OutputDir: *outputDir,
		Seed:      *seed,
		Help:      *help,
		Verbose:   *verbose,
	}

	return commands.NewGenerateCommand(config).Execute(ctx)
}
