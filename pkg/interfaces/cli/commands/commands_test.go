package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/echelon/pkg/infrastructure/config"
	csvrepo "github.com/vsinha/echelon/pkg/infrastructure/repositories/csv"
)

func generate(t *testing.T, cfg GenerateConfig) string {
	t.Helper()
	cfg.OutputDir = t.TempDir()
	cmd := NewGenerateCommand(cfg)
	cmd.stdout = &bytes.Buffer{}
	require.NoError(t, cmd.Execute(context.Background()))
	return cfg.OutputDir
}

func simulate(t *testing.T, cfg Config) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewSimulateCommand(cfg)
	cmd.stdout = &stdout
	cmd.stderr = &stderr
	err := cmd.Execute(context.Background())
	return stdout.String(), err
}

func TestGenerateCommand_YAML(t *testing.T) {
	dir := generate(t, GenerateConfig{Nodes: 10, Echelons: 3, Periods: 6, Demand: 8, Coverage: 1, Seed: 42})

	scenario, err := config.Load(filepath.Join(dir, ScenarioFile))
	require.NoError(t, err)
	assert.Len(t, scenario.Nodes, 10)
	assert.Equal(t, 6, scenario.Periods)
	assert.Equal(t, int64(42), scenario.Seed)

	var stores, suppliers int
	for _, n := range scenario.Nodes {
		switch {
		case strings.HasPrefix(n.ID, "STORE_"):
			stores++
			assert.Equal(t, config.DemandTable, n.Demand.Type)
			assert.Len(t, n.Demand.Table, 6)
		case strings.HasPrefix(n.ID, "SUPPLIER_"):
			suppliers++
			assert.False(t, n.Intercompany, "top echelon has no suppliers")
		}
	}
	assert.Greater(t, stores, suppliers)
	assert.NotEmpty(t, scenario.Edges)
}

func TestGenerateCommand_Reproducible(t *testing.T) {
	cfg := GenerateConfig{Nodes: 15, Echelons: 4, Periods: 4, Demand: 5, Coverage: 1.5, Seed: 7}

	first, err := os.ReadFile(filepath.Join(generate(t, cfg), ScenarioFile))
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(generate(t, cfg), ScenarioFile))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestGenerateCommand_CSVLoads(t *testing.T) {
	dir := generate(t, GenerateConfig{Nodes: 6, Echelons: 2, Periods: 3, Demand: 4, Coverage: 1, Format: GenerateCSV, Seed: 3})

	for _, name := range []string{csvrepo.NodesFile, csvrepo.EdgesFile, csvrepo.DemandFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	scenario, err := csvrepo.NewLoader().LoadScenario(dir)
	require.NoError(t, err)
	assert.Len(t, scenario.Nodes, 6)
}

func TestGenerateCommand_Validation(t *testing.T) {
	testCases := []struct {
		name string
		cfg  GenerateConfig
	}{
		{"no output", GenerateConfig{Nodes: 3, Echelons: 1}},
		{"no echelons", GenerateConfig{Nodes: 3, OutputDir: "x"}},
		{"too few nodes", GenerateConfig{Nodes: 2, Echelons: 3, OutputDir: "x"}},
		{"bad format", GenerateConfig{Nodes: 3, Echelons: 1, Format: "xml", OutputDir: "x"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := NewGenerateCommand(tc.cfg)
			cmd.stdout = &bytes.Buffer{}
			assert.Error(t, cmd.Execute(context.Background()))
		})
	}
}

func TestSimulateCommand_RunAndResume(t *testing.T) {
	scenarioDir := generate(t, GenerateConfig{Nodes: 8, Echelons: 3, Periods: 4, Demand: 6, Coverage: 1, Seed: 11})
	configFile := filepath.Join(scenarioDir, ScenarioFile)
	snapshots := t.TempDir()
	results := t.TempDir()
	metricsFile := filepath.Join(results, "metrics.txt")

	_, err := simulate(t, Config{
		ConfigFile:  configFile,
		Format:      "csv",
		OutputDir:   results,
		SnapshotDir: snapshots,
		Compress:    true,
		MetricsOut:  metricsFile,
		LogLevel:    "error",
	})
	require.NoError(t, err)

	for _, name := range []string{"node_states.csv", "shipments.csv", "summary.csv"} {
		assert.FileExists(t, filepath.Join(results, name))
	}
	metricsText, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metricsText), "echelon_periods_total 4")

	runs, err := os.ReadDir(snapshots)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	runID := runs[0].Name()

	out, err := simulate(t, Config{
		ConfigFile:  configFile,
		Periods:     2,
		Format:      "text",
		SnapshotDir: snapshots,
		Compress:    true,
		Resume:      runID,
		LogLevel:    "error",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Run ID: "+runID)
	assert.Contains(t, out, "Periods: 2 (4..5)")
}

func TestSimulateCommand_Validation(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
	}{
		{"no input", Config{}},
		{"both inputs", Config{ConfigFile: "a.yaml", ScenarioDir: "dir"}},
		{"negative periods", Config{ConfigFile: "a.yaml", Periods: -1}},
		{"resume without store", Config{ConfigFile: "a.yaml", Resume: "run"}},
		{"csv without output", Config{ConfigFile: "a.yaml", Format: "csv"}},
		{"unknown format", Config{ConfigFile: "a.yaml", Format: "xml"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := simulate(t, tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation error")
		})
	}

	_, err := simulate(t, Config{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load scenario")
}

func TestSimulateCommand_Help(t *testing.T) {
	out, err := simulate(t, Config{Help: true})
	require.NoError(t, err)
	assert.Contains(t, out, "USAGE:")
}
