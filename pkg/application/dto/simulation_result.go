package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/supplychain"
)

// NodeState is one node at the end of one period
type NodeState struct {
	Period      entities.Period   `json:"period"`
	Node        entities.NodeID   `json:"node"`
	LLC         int               `json:"llc"`
	OnHand      entities.Quantity `json:"on_hand"`
	Components  entities.Quantity `json:"components"`
	InTransit   entities.Quantity `json:"in_transit"`
	Outstanding entities.Quantity `json:"outstanding"`
	Backorders  entities.Quantity `json:"backorders"`
	Position    entities.Quantity `json:"position"`
	Demand      entities.Quantity `json:"demand"`
	Sales       entities.Quantity `json:"sales"`
}

// NodeSummary aggregates a node over a whole run
type NodeSummary struct {
	Node            entities.NodeID   `json:"node"`
	TotalDemand     entities.Quantity `json:"total_demand"`
	TotalSales      entities.Quantity `json:"total_sales"`
	Received        entities.Quantity `json:"received"`
	Released        entities.Quantity `json:"released"`
	Assembled       entities.Quantity `json:"assembled"`
	FinalBackorders entities.Quantity `json:"final_backorders"`
	// FillRate is sales over demand, 1 when there was no demand
	FillRate      decimal.Decimal `json:"fill_rate"`
	AverageOnHand decimal.Decimal `json:"average_on_hand"`
	// AverageWait is the mean periods a released batch waited, over batches
	// with a recorded placement period
	AverageWait     decimal.Decimal `json:"average_wait"`
	UntimedReleases int64           `json:"untimed_releases"`
}

// SimulationResult contains the complete output of a simulation run
type SimulationResult struct {
	RunID       string                 `json:"run_id"`
	Scenario    string                 `json:"scenario"`
	StartPeriod entities.Period        `json:"start_period"`
	EndPeriod   entities.Period        `json:"end_period"`
	Duration    time.Duration          `json:"duration"`
	States      []NodeState            `json:"states"`
	Shipments   []supplychain.Shipment `json:"shipments"`
	Summaries   []NodeSummary          `json:"summaries"`
}

// Periods returns the number of simulated periods
func (r *SimulationResult) Periods() int {
	if r.EndPeriod < r.StartPeriod {
		return 0
	}
	return int(r.EndPeriod-r.StartPeriod) + 1
}

// StatesFor returns the states of node in period order
func (r *SimulationResult) StatesFor(node entities.NodeID) []NodeState {
	var states []NodeState
	for _, s := range r.States {
		if s.Node == node {
			states = append(states, s)
		}
	}
	return states
}

// Summary returns the summary of node
func (r *SimulationResult) Summary(node entities.NodeID) (NodeSummary, bool) {
	for _, s := range r.Summaries {
		if s.Node == node {
			return s, true
		}
	}
	return NodeSummary{}, false
}

// Ratio returns numerator/denominator rounded to places, or fallback when
// the denominator is zero
func Ratio(numerator, denominator int64, places int32, fallback decimal.Decimal) decimal.Decimal {
	if denominator == 0 {
		return fallback
	}
	return decimal.NewFromInt(numerator).DivRound(decimal.NewFromInt(denominator), places)
}
