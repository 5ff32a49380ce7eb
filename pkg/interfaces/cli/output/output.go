package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vsinha/echelon/pkg/application/dto"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatSVG  = "svg"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	// Stdout receives results when no output directory is set; os.Stdout when nil
	Stdout io.Writer
}

func (c Config) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

// Generate creates output in the specified format
func Generate(result *dto.SimulationResult, config Config) error {
	if result == nil {
		return fmt.Errorf("no result to output")
	}

	switch config.Format {
	case FormatText, "":
		return generateTextOutput(result, config)
	case FormatJSON:
		return generateJSONOutput(result, config)
	case FormatCSV:
		return generateCSVOutput(result, config)
	case FormatSVG:
		return generateSVGOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput prints a human-readable summary and saves a copy when
// an output directory is set
func generateTextOutput(result *dto.SimulationResult, config Config) error {
	var buf bytes.Buffer
	WriteText(&buf, result)

	if _, err := config.stdout().Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}

	if config.OutputDir != "" {
		filename, err := writeFile(config.OutputDir, "results.txt", buf.Bytes())
		if err != nil {
			return err
		}
		if config.Verbose {
			fmt.Fprintf(config.stdout(), "💾 Results saved to: %s\n", filename)
		}
	}

	return nil
}

// WriteText writes the run summary table
func WriteText(w io.Writer, result *dto.SimulationResult) {
	fmt.Fprintf(w, "📊 Simulation Results Summary\n")
	fmt.Fprintf(w, "=============================\n\n")

	if result.Scenario != "" {
		fmt.Fprintf(w, "Scenario: %s\n", result.Scenario)
	}
	fmt.Fprintf(w, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(w, "Periods: %d (%d..%d)\n", result.Periods(), result.StartPeriod, result.EndPeriod)
	fmt.Fprintf(w, "Shipments: %d\n", len(result.Shipments))
	fmt.Fprintf(w, "Duration: %v\n\n", result.Duration)

	if len(result.Summaries) == 0 {
		return
	}

	fmt.Fprintf(w, "📦 Nodes:\n")
	fmt.Fprintf(w, "%-15s %-8s %-8s %-9s %-9s %-10s %-10s %-9s %-9s\n",
		"Node", "Demand", "Sales", "Received", "Released", "Backorder", "Fill Rate", "Avg Stock", "Avg Wait")
	fmt.Fprintf(w, "%-15s %-8s %-8s %-9s %-9s %-10s %-10s %-9s %-9s\n",
		"---------------", "--------", "--------", "---------", "---------", "----------", "----------", "---------", "---------")

	for _, s := range result.Summaries {
		fmt.Fprintf(w, "%-15s %-8d %-8d %-9d %-9d %-10d %-10s %-9s %-9s\n",
			s.Node,
			s.TotalDemand,
			s.TotalSales,
			s.Received,
			s.Released,
			s.FinalBackorders,
			s.FillRate.StringFixed(4),
			s.AverageOnHand.StringFixed(2),
			s.AverageWait.StringFixed(2))
	}
	fmt.Fprintln(w)

	var untimed int64
	for _, s := range result.Summaries {
		untimed += s.UntimedReleases
	}
	if untimed > 0 {
		fmt.Fprintf(w, "⚠️  %d released batches had no placement period and are excluded from wait times\n\n", untimed)
	}
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.SimulationResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err := fmt.Fprintln(config.stdout(), string(jsonData))
		return err
	}

	filename, err := writeFile(config.OutputDir, "results.json", jsonData)
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes node states, shipments and summaries as CSV files
func generateCSVOutput(result *dto.SimulationResult, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	files := []struct {
		name  string
		label string
		write func(io.Writer, *dto.SimulationResult) error
	}{
		{"node_states.csv", "Node States", WriteStatesCSV},
		{"shipments.csv", "Shipments", WriteShipmentsCSV},
		{"summary.csv", "Summary", WriteSummaryCSV},
	}

	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 CSV results saved to:\n")
	}
	for _, f := range files {
		var buf bytes.Buffer
		if err := f.write(&buf, result); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		filename, err := writeFile(config.OutputDir, f.name, buf.Bytes())
		if err != nil {
			return err
		}
		if config.Verbose {
			fmt.Fprintf(config.stdout(), "  %s: %s\n", f.label, filename)
		}
	}

	return nil
}

// generateSVGOutput renders the shipment Gantt chart
func generateSVGOutput(result *dto.SimulationResult, config Config) error {
	svg := NewShipmentGantt(result).GenerateSVG(result)

	if config.OutputDir == "" {
		_, err := fmt.Fprintln(config.stdout(), svg)
		return err
	}

	filename, err := writeFile(config.OutputDir, "shipments.svg", []byte(svg))
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 Shipment chart saved to: %s\n", filename)
	}
	return nil
}

// WriteStatesCSV writes one row per node and period
func WriteStatesCSV(w io.Writer, result *dto.SimulationResult) error {
	writer := csv.NewWriter(w)
	header := []string{"period", "node", "llc", "on_hand", "components", "in_transit",
		"outstanding", "backorders", "position", "demand", "sales"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, s := range result.States {
		record := []string{
			itoa(int64(s.Period)),
			string(s.Node),
			strconv.Itoa(s.LLC),
			itoa(int64(s.OnHand)),
			itoa(int64(s.Components)),
			itoa(int64(s.InTransit)),
			itoa(int64(s.Outstanding)),
			itoa(int64(s.Backorders)),
			itoa(int64(s.Position)),
			itoa(int64(s.Demand)),
			itoa(int64(s.Sales)),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteShipmentsCSV writes one row per shipment
func WriteShipmentsCSV(w io.Writer, result *dto.SimulationResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"period", "from", "to", "quantity", "eta", "arrival"}); err != nil {
		return err
	}

	for _, s := range result.Shipments {
		record := []string{
			itoa(int64(s.Period)),
			string(s.From),
			string(s.To),
			itoa(int64(s.Quantity)),
			strconv.Itoa(s.ETA),
			itoa(int64(s.Arrival())),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSummaryCSV writes one row per node summary
func WriteSummaryCSV(w io.Writer, result *dto.SimulationResult) error {
	writer := csv.NewWriter(w)
	header := []string{"node", "demand", "sales", "received", "released", "assembled",
		"backorders", "fill_rate", "average_on_hand", "average_wait", "untimed_releases"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, s := range result.Summaries {
		record := []string{
			string(s.Node),
			itoa(int64(s.TotalDemand)),
			itoa(int64(s.TotalSales)),
			itoa(int64(s.Received)),
			itoa(int64(s.Released)),
			itoa(int64(s.Assembled)),
			itoa(int64(s.FinalBackorders)),
			s.FillRate.String(),
			s.AverageOnHand.String(),
			s.AverageWait.String(),
			itoa(s.UntimedReleases),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func writeFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}
