package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vsinha/echelon/pkg/application/dto"
	"github.com/vsinha/echelon/pkg/application/services/simulation"
	"github.com/vsinha/echelon/pkg/domain/repositories"
	"github.com/vsinha/echelon/pkg/infrastructure/config"
	"github.com/vsinha/echelon/pkg/infrastructure/logging"
	"github.com/vsinha/echelon/pkg/infrastructure/metrics"
	"github.com/vsinha/echelon/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/echelon/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/echelon/pkg/infrastructure/repositories/snapshot"
	"github.com/vsinha/echelon/pkg/interfaces/cli/output"
)

// Config holds configuration for the simulate command
type Config struct {
	ConfigFile  string
	ScenarioDir string
	Periods     int
	OutputDir   string
	Format      string
	Verbose     bool
	LogLevel    string
	SnapshotDir string
	Compress    bool
	Resume      string
	MetricsOut  string
	Help        bool
}

// SimulateCommand loads a scenario, runs it and writes the results
type SimulateCommand struct {
	config Config
	stdout io.Writer
	stderr io.Writer
}

// NewSimulateCommand creates a new simulate command with the given configuration
func NewSimulateCommand(config Config) *SimulateCommand {
	return &SimulateCommand{
		config: config,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// Execute runs the simulate command. An interrupted run still writes the
// periods completed before the interruption.
func (c *SimulateCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	logger := logging.NewJSONLogger(c.stderr, logging.ParseLevel(c.config.LogLevel))

	if c.config.Verbose {
		c.printHeader()
		fmt.Fprintln(c.stdout, "📂 Loading scenario...")
	}

	scenario, err := c.loadScenario()
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	periods := c.config.Periods
	if periods <= 0 {
		periods = scenario.Periods
	}
	if periods <= 0 {
		return fmt.Errorf("validation error: periods must be positive; set -periods or the scenario's periods")
	}

	if c.config.Verbose {
		fmt.Fprintf(c.stdout, "✅ Scenario %q loaded: %d nodes, %d edges\n\n",
			scenario.Name, len(scenario.Nodes), len(scenario.Edges))
	}

	repo, err := c.snapshotRepository()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}

	registry := metrics.NewRegistry()
	opts := []simulation.Option{
		simulation.WithLogger(logger),
		simulation.WithMetrics(registry),
		simulation.WithSnapshots(repo),
	}

	sim, err := c.buildSimulator(scenario, repo, opts)
	if err != nil {
		return err
	}

	if c.config.Verbose {
		fmt.Fprintf(c.stdout, "🔄 Simulating %d periods from period %d (run %s)...\n",
			periods, sim.NextPeriod(), sim.RunID())
	}

	result, runErr := sim.Run(ctx, periods)
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return fmt.Errorf("error running simulation: %w", runErr)
	}

	if c.config.Verbose && runErr == nil {
		fmt.Fprintf(c.stdout, "✅ Simulation completed in %v\n\n", result.Duration)
	}

	if err := c.writeOutputs(result, registry); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("simulation interrupted after period %d: %w", result.EndPeriod, runErr)
	}

	if c.config.Verbose {
		fmt.Fprintln(c.stdout, "🏁 Simulation complete!")
	}
	return nil
}

// validateInputs validates the command configuration
func (c *SimulateCommand) validateInputs() error {
	if (c.config.ConfigFile == "") == (c.config.ScenarioDir == "") {
		return fmt.Errorf("must specify exactly one of -config file or -scenario directory")
	}
	if c.config.Periods < 0 {
		return fmt.Errorf("periods cannot be negative, got %d", c.config.Periods)
	}
	if c.config.Resume != "" && c.config.SnapshotDir == "" {
		return fmt.Errorf("-resume requires -snapshot-dir")
	}
	switch c.config.Format {
	case "", output.FormatText, output.FormatJSON, output.FormatSVG:
	case output.FormatCSV:
		if c.config.OutputDir == "" {
			return fmt.Errorf("csv format requires -output directory")
		}
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.Format)
	}
	return nil
}

func (c *SimulateCommand) loadScenario() (*config.Scenario, error) {
	if c.config.ConfigFile != "" {
		return config.Load(c.config.ConfigFile)
	}
	return csv.NewLoader().LoadScenario(c.config.ScenarioDir)
}

// snapshotRepository keeps snapshots on disk when a directory is given and
// in memory otherwise
func (c *SimulateCommand) snapshotRepository() (repositories.SnapshotRepository, error) {
	if c.config.SnapshotDir == "" {
		return memory.NewSnapshotRepository(), nil
	}
	return snapshot.NewFileStore(c.config.SnapshotDir, c.config.Compress)
}

func (c *SimulateCommand) buildSimulator(scenario *config.Scenario, repo repositories.SnapshotRepository, opts []simulation.Option) (*simulation.Simulator, error) {
	if c.config.Resume == "" {
		sim, err := simulation.Build(scenario, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to build supply chain: %w", err)
		}
		return sim, nil
	}

	latest, err := repo.LatestSnapshot(c.config.Resume)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot of run %s: %w", c.config.Resume, err)
	}
	if c.config.Verbose {
		fmt.Fprintf(c.stdout, "⏯️  Resuming run %s after period %d\n", latest.RunID, latest.Period)
	}

	sim, err := simulation.Resume(scenario, latest, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to resume run: %w", err)
	}
	return sim, nil
}

func (c *SimulateCommand) writeOutputs(result *dto.SimulationResult, registry *metrics.Registry) error {
	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		Stdout:    c.stdout,
	}
	if err := output.Generate(result, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if c.config.MetricsOut != "" {
		file, err := os.Create(c.config.MetricsOut)
		if err != nil {
			return fmt.Errorf("failed to create metrics file: %w", err)
		}
		defer file.Close()

		if err := registry.WriteText(file); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		if c.config.Verbose {
			fmt.Fprintf(c.stdout, "📈 Metrics saved to: %s\n", c.config.MetricsOut)
		}
	}

	return nil
}

// printHeader prints the command header information
func (c *SimulateCommand) printHeader() {
	fmt.Fprintf(c.stdout, "🚀 Echelon Supply Chain Simulator\n")
	if c.config.ConfigFile != "" {
		fmt.Fprintf(c.stdout, "Scenario file: %s\n", c.config.ConfigFile)
	} else {
		fmt.Fprintf(c.stdout, "Scenario directory: %s\n", c.config.ScenarioDir)
	}
	fmt.Fprintf(c.stdout, "Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Fprintf(c.stdout, "Output directory: %s\n", c.config.OutputDir)
	}
	if c.config.SnapshotDir != "" {
		fmt.Fprintf(c.stdout, "Snapshot directory: %s (compressed: %t)\n", c.config.SnapshotDir, c.config.Compress)
	}
	fmt.Fprintln(c.stdout)
}

// showHelp displays the help message
func (c *SimulateCommand) showHelp() {
	fmt.Fprint(c.stdout, `Echelon - Multi-Echelon Supply Chain Simulator

USAGE:
    echelon -config <file>                 # Run a YAML scenario
    echelon -scenario <directory>          # Run a CSV scenario directory
    echelon generate [OPTIONS]             # Generate a scenario (see: echelon generate -help)

OPTIONS:
    -config <file>        Path to YAML scenario file
    -scenario <dir>       Path to scenario directory containing CSV files
    -periods <n>          Periods to simulate (default: the scenario's periods)
    -output <dir>         Output directory for results (optional)
    -format <fmt>         Output format: text, json, csv, svg (default: text)
    -verbose              Enable verbose output
    -log-level <level>    Log level on stderr: debug, info, warn, error (default: warn)
    -snapshot-dir <dir>   Save the chain state after every period under this directory
    -compress             Snappy-compress snapshots
    -resume <run-id>      Continue a run from its latest snapshot (needs -snapshot-dir)
    -metrics-out <file>   Write Prometheus metrics in text format after the run
    -help                 Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── nodes.csv       # Nodes, lead times, initial stock and policies
    ├── edges.csv       # Supply relationships
    └── demand.csv      # Customer demand per period (optional)

CSV FILE FORMATS:

nodes.csv:
    id,intercompany,lead_time,initial_stock,policy,level,min,max
    STORE,true,1,10,order-up-to,10,,
    DC,false,2,30,min-max,,10,40

edges.csv:
    source,destination,number
    DC,STORE,1

demand.csv:
    node,period,quantity
    STORE,0,4

EXAMPLES:
    # Run the two-echelon example for 20 periods
    echelon -config examples/two_echelon.yaml -periods 20 -verbose

    # Save CSV results and snapshots
    echelon -scenario examples/bike_assembly -periods 12 -format csv -output results/ -snapshot-dir snapshots/

    # Continue a run for 10 more periods
    echelon -config examples/two_echelon.yaml -periods 10 -snapshot-dir snapshots/ -resume <run-id>

    # Shipment chart
    echelon -config examples/two_echelon.yaml -format svg -output results/
`)
}
