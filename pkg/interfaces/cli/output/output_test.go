package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/echelon/pkg/application/dto"
	"github.com/vsinha/echelon/pkg/supplychain"
)

func sampleResult() *dto.SimulationResult {
	return &dto.SimulationResult{
		RunID:       "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10",
		Scenario:    "store",
		StartPeriod: 0,
		EndPeriod:   1,
		States: []dto.NodeState{
			{Period: 0, Node: "STORE", OnHand: 6, InTransit: 4, Position: 10, Demand: 4, Sales: 4},
			{Period: 0, Node: "DC", LLC: 1, OnHand: 16, InTransit: 4, Position: 20},
			{Period: 1, Node: "STORE", OnHand: 6, InTransit: 4, Position: 10, Demand: 4, Sales: 4},
			{Period: 1, Node: "DC", LLC: 1, OnHand: 16, InTransit: 4, Position: 20},
		},
		Shipments: []supplychain.Shipment{
			{Period: 0, From: "DC", To: "STORE", Quantity: 4, ETA: 1},
			{Period: 1, From: "DC", To: "STORE", Quantity: 4, ETA: 1},
		},
		Summaries: []dto.NodeSummary{
			{Node: "STORE", TotalDemand: 8, TotalSales: 8, FillRate: decimal.NewFromInt(1), AverageOnHand: decimal.NewFromInt(6)},
			{Node: "DC", Released: 8, FillRate: decimal.NewFromInt(1), UntimedReleases: 1},
		},
	}
}

func TestGenerate_Text(t *testing.T) {
	var out bytes.Buffer
	dir := t.TempDir()

	err := Generate(sampleResult(), Config{Format: FormatText, OutputDir: dir, Stdout: &out})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Scenario: store")
	assert.Contains(t, text, "Periods: 2 (0..1)")
	assert.Contains(t, text, "STORE")
	assert.Contains(t, text, "1.0000")
	assert.Contains(t, text, "1 released batches had no placement period")

	saved, err := os.ReadFile(filepath.Join(dir, "results.txt"))
	require.NoError(t, err)
	assert.Equal(t, text, string(saved))
}

func TestGenerate_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Generate(sampleResult(), Config{Format: FormatJSON, Stdout: &out}))

	var decoded dto.SimulationResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "store", decoded.Scenario)
	assert.Len(t, decoded.States, 4)
	assert.True(t, decoded.Summaries[0].FillRate.Equal(decimal.NewFromInt(1)))
}

func TestGenerate_CSV(t *testing.T) {
	err := Generate(sampleResult(), Config{Format: FormatCSV})
	assert.Error(t, err, "csv needs an output directory")

	dir := t.TempDir()
	require.NoError(t, Generate(sampleResult(), Config{Format: FormatCSV, OutputDir: dir}))

	states, err := os.ReadFile(filepath.Join(dir, "node_states.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(states)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "period,node,llc,on_hand,components,in_transit,outstanding,backorders,position,demand,sales", lines[0])
	assert.Equal(t, "0,STORE,0,6,0,4,0,0,10,4,4", lines[1])

	shipments, err := os.ReadFile(filepath.Join(dir, "shipments.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(shipments), "1,DC,STORE,4,1,2")

	summary, err := os.ReadFile(filepath.Join(dir, "summary.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "DC,0,0,0,8,0,0,1,0,0,1")
}

func TestGenerate_SVG(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Generate(sampleResult(), Config{Format: FormatSVG, Stdout: &out}))

	svg := out.String()
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, "DC → STORE")
	assert.Equal(t, 2, strings.Count(svg, `class="shipment-bar"`))
	assert.Contains(t, svg, "Shipped from LLC 1")

	empty := &dto.SimulationResult{Scenario: "idle"}
	assert.Contains(t, NewShipmentGantt(empty).GenerateSVG(empty), "No Shipments")
}

func TestGenerate_Errors(t *testing.T) {
	assert.Error(t, Generate(nil, Config{}))
	assert.Error(t, Generate(sampleResult(), Config{Format: "xml", Stdout: &bytes.Buffer{}}))
}
