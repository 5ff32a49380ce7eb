package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/infrastructure/config"
)

// File names inside a scenario directory
const (
	NodesFile  = "nodes.csv"
	EdgesFile  = "edges.csv"
	DemandFile = "demand.csv"
)

var (
	nodesHeader  = []string{"id", "intercompany", "lead_time", "initial_stock", "policy", "level", "min", "max"}
	edgesHeader  = []string{"source", "destination", "number"}
	demandHeader = []string{"node", "period", "quantity"}
)

// Loader handles loading scenarios from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadScenario reads nodes.csv, edges.csv and the optional demand.csv from
// dir into a validated scenario named after the directory
func (l *Loader) LoadScenario(dir string) (*config.Scenario, error) {
	nodes, err := l.LoadNodes(filepath.Join(dir, NodesFile))
	if err != nil {
		return nil, err
	}

	edges, err := l.LoadEdges(filepath.Join(dir, EdgesFile))
	if err != nil {
		return nil, err
	}

	demandPath := filepath.Join(dir, DemandFile)
	if _, err := os.Stat(demandPath); err == nil {
		demands, err := l.LoadDemand(demandPath)
		if err != nil {
			return nil, err
		}
		for i := range nodes {
			if table, ok := demands[nodes[i].ID]; ok {
				nodes[i].Demand = config.DemandConfig{Type: config.DemandTable, Table: table}
				delete(demands, nodes[i].ID)
			}
		}
		if len(demands) > 0 {
			unknown := make([]string, 0, len(demands))
			for id := range demands {
				unknown = append(unknown, id)
			}
			sort.Strings(unknown)
			return nil, fmt.Errorf("demand CSV references unknown nodes %v", unknown)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat demand file %s: %w", demandPath, err)
	}

	scenario := &config.Scenario{
		Name:  filepath.Base(filepath.Clean(dir)),
		Nodes: nodes,
		Edges: edges,
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return scenario, nil
}

// LoadNodes loads node configurations from a CSV file
func (l *Loader) LoadNodes(filename string) ([]config.NodeConfig, error) {
	records, err := readRecords(filename, "nodes", nodesHeader)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("nodes CSV must have header and at least one data row")
	}

	nodes := make([]config.NodeConfig, 0, len(records))
	for i, record := range records {
		node, err := parseNode(record)
		if err != nil {
			return nil, fmt.Errorf("nodes CSV row %d: %w", i+2, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// LoadEdges loads edges from a CSV file
func (l *Loader) LoadEdges(filename string) ([]config.EdgeConfig, error) {
	records, err := readRecords(filename, "edges", edgesHeader)
	if err != nil {
		return nil, err
	}

	edges := make([]config.EdgeConfig, 0, len(records))
	for i, record := range records {
		number, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("edges CSV row %d: invalid number: %w", i+2, err)
		}
		edges = append(edges, config.EdgeConfig{
			Source:      strings.TrimSpace(record[0]),
			Destination: strings.TrimSpace(record[1]),
			Number:      number,
		})
	}
	return edges, nil
}

// LoadDemand loads per-period customer demand, returning a demand table per node
func (l *Loader) LoadDemand(filename string) (map[string][]int64, error) {
	records, err := readRecords(filename, "demand", demandHeader)
	if err != nil {
		return nil, err
	}

	tables := make(map[string][]int64)
	for i, record := range records {
		node := strings.TrimSpace(record[0])
		if node == "" {
			return nil, fmt.Errorf("demand CSV row %d: node cannot be empty", i+2)
		}

		period, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("demand CSV row %d: invalid period: %w", i+2, err)
		}
		if period < 0 {
			return nil, fmt.Errorf("demand CSV row %d: period cannot be negative", i+2)
		}

		quantity, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("demand CSV row %d: invalid quantity: %w", i+2, err)
		}
		if quantity < 0 {
			return nil, fmt.Errorf("demand CSV row %d: %w", i+2, entities.ErrNegativeQuantity)
		}

		table := tables[node]
		for len(table) <= period {
			table = append(table, 0)
		}
		table[period] += quantity
		tables[node] = table
	}
	return tables, nil
}

func readRecords(filename, what string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", what, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(expectedHeader)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", what, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", what)
	}

	if header := records[0]; !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", what, expectedHeader, header)
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseNode(record []string) (config.NodeConfig, error) {
	node := config.NodeConfig{ID: strings.TrimSpace(record[0])}
	if node.ID == "" {
		return node, fmt.Errorf("id cannot be empty")
	}

	intercompany, err := parseBool(record[1])
	if err != nil {
		return node, fmt.Errorf("invalid intercompany: %w", err)
	}
	node.Intercompany = intercompany

	leadTime, err := parseOptionalInt(record[2])
	if err != nil {
		return node, fmt.Errorf("invalid lead_time: %w", err)
	}
	node.LeadTime = &entities.LeadTimeSpec{Kind: entities.FixedLeadTimeKind, Periods: int(leadTime)}

	stock, err := parseOptionalInt(record[3])
	if err != nil {
		return node, fmt.Errorf("invalid initial_stock: %w", err)
	}
	if stock > 0 {
		node.Stock = map[string]int64{node.ID: stock}
	}

	policy, err := parsePolicy(record[4])
	if err != nil {
		return node, err
	}
	node.Policy.Type = policy

	if node.Policy.Level, err = parseOptionalInt(record[5]); err != nil {
		return node, fmt.Errorf("invalid level: %w", err)
	}
	if node.Policy.Min, err = parseOptionalInt(record[6]); err != nil {
		return node, fmt.Errorf("invalid min: %w", err)
	}
	if node.Policy.Max, err = parseOptionalInt(record[7]); err != nil {
		return node, fmt.Errorf("invalid max: %w", err)
	}

	return node, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "no", "0":
		return false, nil
	case "true", "yes", "1":
		return true, nil
	default:
		return false, fmt.Errorf("cannot parse %q as a boolean", s)
	}
}

func parseOptionalInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parsePolicy(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", config.PolicyNone:
		return config.PolicyNone, nil
	case config.PolicyOrderUpTo, "order_up_to":
		return config.PolicyOrderUpTo, nil
	case config.PolicyMinMax, "min_max", "minmax":
		return config.PolicyMinMax, nil
	default:
		return "", fmt.Errorf("invalid policy: %s", s)
	}
}
