package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/infrastructure/config"
	csvrepo "github.com/vsinha/echelon/pkg/infrastructure/repositories/csv"
)

// Generated scenario formats
const (
	GenerateYAML = "yaml"
	GenerateCSV  = "csv"
)

// ScenarioFile is the name of a generated YAML scenario
const ScenarioFile = "scenario.yaml"

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Nodes     int     // Total number of nodes to generate
	Echelons  int     // Number of echelons, retail included
	Periods   int     // Periods to simulate
	Demand    int     // Mean retail demand per period
	Coverage  float64 // Stock multiplier (e.g., 0.5 = half coverage, 2.0 = 2x coverage)
	Format    string  // yaml or csv
	OutputDir string  // Output directory for generated files
	Seed      int64   // Random seed for reproducible generation
	Help      bool    // Show help
	Verbose   bool    // Verbose output
}

// GenerateCommand handles scenario generation
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	seed   int64
	stdout io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		seed:   seed,
		stdout: os.Stdout,
	}
}

// genNode represents a node while the network is laid out
type genNode struct {
	id        string
	echelon   int
	leadTime  int
	suppliers map[*genNode]int64
	customers []*genNode
	demand    int64 // mean periodic demand flowing through the node
}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}

	if err := cmd.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.stdout,
			"🔧 Generating scenario with %d nodes, %d echelons, demand %d, %.1fx coverage\n",
			cmd.config.Nodes,
			cmd.config.Echelons,
			cmd.config.Demand,
			cmd.config.Coverage,
		)
		fmt.Fprintf(cmd.stdout, "📁 Output directory: %s\n", cmd.config.OutputDir)
		fmt.Fprintf(cmd.stdout, "🎲 Random seed: %d\n", cmd.seed)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintln(cmd.stdout, "🌳 Generating network...")
	}
	scenario, err := cmd.Scenario()
	if err != nil {
		return fmt.Errorf("failed to generate network: %w", err)
	}

	switch cmd.config.Format {
	case GenerateYAML, "":
		err = cmd.writeYAML(scenario)
	case GenerateCSV:
		err = cmd.writeCSV(scenario)
	}
	if err != nil {
		return err
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.stdout, "✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	switch {
	case cmd.config.OutputDir == "":
		return fmt.Errorf("output directory is required")
	case cmd.config.Echelons < 1:
		return fmt.Errorf("echelons must be at least 1, got %d", cmd.config.Echelons)
	case cmd.config.Nodes < cmd.config.Echelons:
		return fmt.Errorf("need at least one node per echelon, got %d nodes for %d echelons",
			cmd.config.Nodes, cmd.config.Echelons)
	case cmd.config.Demand < 0:
		return fmt.Errorf("demand cannot be negative, got %d", cmd.config.Demand)
	case cmd.config.Coverage < 0:
		return fmt.Errorf("coverage cannot be negative, got %.2f", cmd.config.Coverage)
	case cmd.config.Format != "" && cmd.config.Format != GenerateYAML && cmd.config.Format != GenerateCSV:
		return fmt.Errorf("unsupported format: %s", cmd.config.Format)
	}
	return nil
}

// Scenario lays out a layered network and returns it as a validated scenario
func (cmd *GenerateCommand) Scenario() (*config.Scenario, error) {
	levels := cmd.generateNetwork()

	scenario := &config.Scenario{
		Name:    fmt.Sprintf("generated-%d", cmd.seed),
		Periods: cmd.config.Periods,
		Seed:    cmd.seed,
	}

	for _, level := range levels {
		for _, node := range level {
			scenario.Nodes = append(scenario.Nodes, cmd.nodeConfig(node))
		}
	}

	// edges listed customer first, suppliers in creation order
	for _, level := range levels {
		for _, node := range level {
			for _, supplier := range orderedSuppliers(node, levels) {
				scenario.Edges = append(scenario.Edges, config.EdgeConfig{
					Source:      supplier.id,
					Destination: node.id,
					Number:      node.suppliers[supplier],
				})
			}
		}
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return scenario, nil
}

// generateNetwork spreads nodes over echelons, retail widest, and gives every
// node below the top echelon one to three suppliers from the next echelon up
func (cmd *GenerateCommand) generateNetwork() [][]*genNode {
	levels := make([][]*genNode, cmd.config.Echelons)

	for e, count := range cmd.echelonSizes() {
		for i := 0; i < count; i++ {
			levels[e] = append(levels[e], &genNode{
				id:        cmd.nodeID(e, i),
				echelon:   e,
				leadTime:  1 + cmd.rand.Intn(4),
				suppliers: make(map[*genNode]int64),
			})
		}
	}

	for e := 0; e+1 < len(levels); e++ {
		upstream := levels[e+1]
		for _, node := range levels[e] {
			numSuppliers := 1 + cmd.rand.Intn(min(3, len(upstream)))
			for _, idx := range cmd.rand.Perm(len(upstream))[:numSuppliers] {
				supplier := upstream[idx]
				node.suppliers[supplier] = int64(1 + cmd.rand.Intn(3))
				supplier.customers = append(supplier.customers, node)
			}
		}
		// every upstream node serves someone
		for _, supplier := range upstream {
			if len(supplier.customers) == 0 {
				node := levels[e][cmd.rand.Intn(len(levels[e]))]
				node.suppliers[supplier] = 1
				supplier.customers = append(supplier.customers, node)
			}
		}
	}

	for _, node := range levels[0] {
		node.demand = int64(max(0, cmd.config.Demand/2+cmd.rand.Intn(cmd.config.Demand+1)))
	}
	for e := 0; e+1 < len(levels); e++ {
		for _, node := range levels[e] {
			for supplier, number := range node.suppliers {
				supplier.demand += node.demand * number
			}
		}
	}

	return levels
}

// echelonSizes weights echelon e by (echelons - e) so retail is widest,
// keeping at least one node per echelon
func (cmd *GenerateCommand) echelonSizes() []int {
	echelons := cmd.config.Echelons
	weights := echelons * (echelons + 1) / 2

	sizes := make([]int, echelons)
	assigned := 0
	for e := 1; e < echelons; e++ {
		sizes[e] = max(1, cmd.config.Nodes*(echelons-e)/weights)
		assigned += sizes[e]
	}
	sizes[0] = cmd.config.Nodes - assigned

	for e := echelons - 1; sizes[0] < 1 && e >= 1; e-- {
		for sizes[e] > 1 && sizes[0] < 1 {
			sizes[e]--
			sizes[0]++
		}
	}
	return sizes
}

func (cmd *GenerateCommand) nodeID(echelon, index int) string {
	switch echelon {
	case 0:
		return fmt.Sprintf("STORE_%03d", index+1)
	case cmd.config.Echelons - 1:
		return fmt.Sprintf("SUPPLIER_%03d", index+1)
	default:
		return fmt.Sprintf("DC_L%d_%03d", echelon, index+1)
	}
}

// nodeConfig stocks each node for its lead time plus one period of demand,
// scaled by coverage, and orders up to the same level
func (cmd *GenerateCommand) nodeConfig(node *genNode) config.NodeConfig {
	level := int64(float64(node.demand*int64(node.leadTime+1)) * cmd.config.Coverage)

	nc := config.NodeConfig{
		ID:           node.id,
		Intercompany: len(node.suppliers) > 0,
		LeadTime:     &entities.LeadTimeSpec{Kind: entities.FixedLeadTimeKind, Periods: node.leadTime},
		Policy:       config.PolicyConfig{Type: config.PolicyOrderUpTo, Level: level},
	}
	if level > 0 {
		nc.Stock = map[string]int64{node.id: level}
	}

	if node.echelon == 0 && node.demand > 0 {
		periods := max(cmd.config.Periods, 1)
		table := make([]int64, periods)
		for p := range table {
			// +-25% around the mean
			spread := max(1, node.demand/2)
			table[p] = max(0, node.demand-spread/2+int64(cmd.rand.Intn(int(spread)+1)))
		}
		nc.Demand = config.DemandConfig{Type: config.DemandTable, Table: table, Default: node.demand}
	}

	return nc
}

func orderedSuppliers(node *genNode, levels [][]*genNode) []*genNode {
	if len(node.suppliers) == 0 || node.echelon+1 >= len(levels) {
		return nil
	}
	suppliers := make([]*genNode, 0, len(node.suppliers))
	for _, candidate := range levels[node.echelon+1] {
		if _, ok := node.suppliers[candidate]; ok {
			suppliers = append(suppliers, candidate)
		}
	}
	return suppliers
}

// writeYAML writes scenario.yaml
func (cmd *GenerateCommand) writeYAML(scenario *config.Scenario) error {
	if cmd.config.Verbose {
		fmt.Fprintf(cmd.stdout, "📦 Generating %s...\n", ScenarioFile)
	}

	data, err := scenario.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cmd.config.OutputDir, ScenarioFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}
	return nil
}

// writeCSV writes nodes.csv, edges.csv and demand.csv in the layout the CSV
// loader reads
func (cmd *GenerateCommand) writeCSV(scenario *config.Scenario) error {
	var nodes, edges, demand [][]string

	for _, n := range scenario.Nodes {
		leadTime := 0
		if n.LeadTime != nil {
			leadTime = n.LeadTime.Periods
		}
		nodes = append(nodes, []string{
			n.ID,
			strconv.FormatBool(n.Intercompany),
			strconv.Itoa(leadTime),
			strconv.FormatInt(n.Stock[n.ID], 10),
			n.Policy.Type,
			strconv.FormatInt(n.Policy.Level, 10),
			strconv.FormatInt(n.Policy.Min, 10),
			strconv.FormatInt(n.Policy.Max, 10),
		})
		for p, q := range n.Demand.Table {
			demand = append(demand, []string{n.ID, strconv.Itoa(p), strconv.FormatInt(q, 10)})
		}
	}
	for _, e := range scenario.Edges {
		edges = append(edges, []string{e.Source, e.Destination, strconv.FormatInt(e.Number, 10)})
	}

	files := []struct {
		name    string
		header  []string
		records [][]string
	}{
		{csvrepo.NodesFile, []string{"id", "intercompany", "lead_time", "initial_stock", "policy", "level", "min", "max"}, nodes},
		{csvrepo.EdgesFile, []string{"source", "destination", "number"}, edges},
		{csvrepo.DemandFile, []string{"node", "period", "quantity"}, demand},
	}

	for _, f := range files {
		if cmd.config.Verbose {
			fmt.Fprintf(cmd.stdout, "📦 Generating %s...\n", f.name)
		}
		if err := writeCSVFile(filepath.Join(cmd.config.OutputDir, f.name), f.header, f.records); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	return nil
}

func writeCSVFile(path string, header []string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	return file.Close()
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.stdout, `Echelon Scenario Generator

USAGE:
    echelon generate [OPTIONS]

OPTIONS:
    -nodes <N>          Number of nodes to generate (default: 12)
    -echelons <N>       Number of echelons, retail included (default: 3)
    -periods <N>        Periods to simulate (default: 52)
    -demand <N>         Mean retail demand per period (default: 10)
    -coverage <F>       Stock multiplier (e.g., 0.5 = half coverage, 2.0 = 2x coverage) (default: 1.0)
    -format <fmt>       Output format: yaml, csv (default: yaml)
    -output <DIR>       Output directory for generated files (required)
    -seed <N>           Random seed for reproducible generation (optional)
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    # Generate a small three-echelon network
    echelon generate -nodes 12 -echelons 3 -output ./scenarios/small

    # Generate a reproducible CSV scenario directory
    echelon generate -nodes 40 -echelons 4 -format csv -seed 12345 -output ./scenarios/csv_network`)
}
