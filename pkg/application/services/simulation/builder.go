package simulation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/infrastructure/config"
	"github.com/vsinha/echelon/pkg/supplychain"
)

// Build creates the scenario's supply chain and a simulator driving it.
// opts are applied after the scenario's own policies and demand.
func Build(scenario *config.Scenario, opts ...Option) (*Simulator, error) {
	chain, err := BuildChain(scenario)
	if err != nil {
		return nil, err
	}

	base, err := scenarioOptions(scenario)
	if err != nil {
		return nil, err
	}
	return New(chain, append(base, opts...)...)
}

// Resume restores the chain saved in snapshot and continues the run it
// belongs to from the following period
func Resume(scenario *config.Scenario, snapshot *entities.Snapshot, opts ...Option) (*Simulator, error) {
	if snapshot == nil {
		return nil, errors.New("snapshot cannot be nil")
	}

	chain, err := supplychain.FromJSON(snapshot.State)
	if err != nil {
		return nil, fmt.Errorf("failed to restore snapshot of run %s at period %d: %w", snapshot.RunID, snapshot.Period, err)
	}

	base, err := scenarioOptions(scenario)
	if err != nil {
		return nil, err
	}
	base = append(base, WithRunID(snapshot.RunID), WithStartPeriod(snapshot.Period+1))
	return New(chain, append(base, opts...)...)
}

// BuildChain creates the nodes and edges of scenario with their initial state
func BuildChain(scenario *config.Scenario, opts ...supplychain.Option) (*supplychain.SupplyChain, error) {
	if scenario == nil {
		return nil, errors.New("scenario cannot be nil")
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	nodes := make([]*entities.Node, 0, len(scenario.Nodes))
	for i, nc := range scenario.Nodes {
		node, err := buildNode(nc, scenario.Seed+int64(i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	edges := make([]entities.Edge, 0, len(scenario.Edges))
	for _, ec := range scenario.Edges {
		edge, err := entities.NewEdge(entities.NodeID(ec.Source), entities.NodeID(ec.Destination), entities.Quantity(ec.Number))
		if err != nil {
			return nil, fmt.Errorf("invalid edge %s->%s: %w", ec.Source, ec.Destination, err)
		}
		edges = append(edges, edge)
	}

	return supplychain.New(nodes, edges, opts...)
}

func buildNode(nc config.NodeConfig, seed int64) (*entities.Node, error) {
	var provider entities.LeadTimeProvider
	if nc.LeadTime != nil {
		spec := *nc.LeadTime
		if spec.Kind == entities.UniformLeadTimeKind && spec.Seed == 0 {
			spec.Seed = seed
		}
		p, err := spec.Provider()
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nc.ID, err)
		}
		provider = p
	}

	node, err := entities.NewNode(entities.NodeID(nc.ID), nc.Intercompany, provider)
	if err != nil {
		return nil, err
	}

	for _, sku := range sortedKeys(nc.Stock) {
		if err := node.Stock.Set(entities.NodeID(sku), entities.Quantity(nc.Stock[sku])); err != nil {
			return nil, fmt.Errorf("node %s: stock of %s: %w", nc.ID, sku, err)
		}
	}
	for _, requester := range sortedKeys(nc.Backlog) {
		if err := node.Orders.Set(entities.NodeID(requester), entities.Quantity(nc.Backlog[requester])); err != nil {
			return nil, fmt.Errorf("node %s: backlog of %s: %w", nc.ID, requester, err)
		}
	}
	node.Backorders = entities.Quantity(nc.Backorders)

	return node, nil
}

func scenarioOptions(scenario *config.Scenario) ([]Option, error) {
	if scenario == nil {
		return nil, errors.New("scenario cannot be nil")
	}

	opts := []Option{
		WithScenarioName(scenario.Name),
		WithStartPeriod(entities.Period(scenario.StartPeriod)),
	}

	for _, nc := range scenario.Nodes {
		id := entities.NodeID(nc.ID)

		policy, err := PolicyFromConfig(nc.Policy)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nc.ID, err)
		}
		if policy != nil {
			opts = append(opts, WithPolicy(id, policy))
		}

		profile, err := DemandFromConfig(nc.Demand)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nc.ID, err)
		}
		if profile != nil {
			opts = append(opts, WithDemand(id, profile))
		}
	}

	return opts, nil
}

// PolicyFromConfig returns the configured policy, or nil when none is set
func PolicyFromConfig(pc config.PolicyConfig) (OrderingPolicy, error) {
	switch pc.Type {
	case "", config.PolicyNone:
		return nil, nil
	case config.PolicyOrderUpTo:
		return OrderUpToPolicy{Level: entities.Quantity(pc.Level)}, nil
	case config.PolicyMinMax:
		if pc.Max < pc.Min {
			return nil, fmt.Errorf("min-max policy max %d is below min %d", pc.Max, pc.Min)
		}
		return MinMaxPolicy{Min: entities.Quantity(pc.Min), Max: entities.Quantity(pc.Max)}, nil
	default:
		return nil, fmt.Errorf("unknown policy type %q", pc.Type)
	}
}

// DemandFromConfig returns the configured demand profile, or nil when none is set
func DemandFromConfig(dc config.DemandConfig) (DemandProfile, error) {
	switch dc.Type {
	case "", config.DemandNone:
		return nil, nil
	case config.DemandConstant:
		return ConstantDemand(dc.Quantity), nil
	case config.DemandTable:
		table := make([]entities.Quantity, len(dc.Table))
		for i, q := range dc.Table {
			table[i] = entities.Quantity(q)
		}
		return TableDemand{Table: table, Default: entities.Quantity(dc.Default)}, nil
	default:
		return nil, fmt.Errorf("unknown demand type %q", dc.Type)
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
