package testing

import (
	"fmt"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/infrastructure/config"
)

// MustNode creates a node with a fixed lead time - panics on validation error
func MustNode(id string, intercompany bool, leadTime int) *entities.Node {
	node, err := entities.NewNode(entities.NodeID(id), intercompany, entities.FixedLeadTime(leadTime))
	if err != nil {
		panic(err)
	}
	return node
}

func fixed(periods int) *entities.LeadTimeSpec {
	return &entities.LeadTimeSpec{Kind: entities.FixedLeadTimeKind, Periods: periods}
}

// BuildStoreScenario builds a DC supplying a store one for one. Both order
// up to their opening stock every period, so the store settles at 6 on hand
// under a constant demand of 4.
func BuildStoreScenario() *config.Scenario {
	return &config.Scenario{
		Name: "store",
		Nodes: []config.NodeConfig{
			{
				ID:           "STORE",
				Intercompany: true,
				LeadTime:     fixed(1),
				Stock:        map[string]int64{"STORE": 10},
				Policy:       config.PolicyConfig{Type: config.PolicyOrderUpTo, Level: 10},
				Demand:       config.DemandConfig{Type: config.DemandConstant, Quantity: 4},
			},
			{
				ID:       "DC",
				LeadTime: fixed(1),
				Stock:    map[string]int64{"DC": 20},
				Policy:   config.PolicyConfig{Type: config.PolicyOrderUpTo, Level: 20},
			},
		},
		Edges: []config.EdgeConfig{{Source: "DC", Destination: "STORE", Number: 1}},
	}
}

// BuildBikeAssemblyScenario builds a bike assembled from one frame and two
// wheels, each bought from external supply
func BuildBikeAssemblyScenario() *config.Scenario {
	return &config.Scenario{
		Name:    "bike-assembly",
		Periods: 12,
		Nodes: []config.NodeConfig{
			{
				ID:           "BIKE",
				Intercompany: true,
				LeadTime:     fixed(1),
				Stock:        map[string]int64{"BIKE": 6},
				Policy:       config.PolicyConfig{Type: config.PolicyOrderUpTo, Level: 12},
				Demand: config.DemandConfig{
					Type:    config.DemandTable,
					Table:   []int64{2, 3, 5, 8, 5, 3, 2, 2},
					Default: 3,
				},
			},
			{
				ID:       "FRAME",
				LeadTime: fixed(3),
				Stock:    map[string]int64{"FRAME": 10},
				Policy:   config.PolicyConfig{Type: config.PolicyOrderUpTo, Level: 15},
			},
			{
				ID:       "WHEEL",
				LeadTime: fixed(2),
				Stock:    map[string]int64{"WHEEL": 20},
				Policy:   config.PolicyConfig{Type: config.PolicyMinMax, Min: 10, Max: 30},
			},
		},
		Edges: []config.EdgeConfig{
			{Source: "FRAME", Destination: "BIKE", Number: 1},
			{Source: "WHEEL", Destination: "BIKE", Number: 2},
		},
	}
}

// BuildLayeredScenario builds depth echelons of width nodes. Node i of an
// echelon is supplied by nodes i and i+1 (wrapping) of the echelon above;
// the bottom echelon sees constant demand.
func BuildLayeredScenario(width, depth int, demand int64) *config.Scenario {
	id := func(echelon, i int) string {
		return fmt.Sprintf("N%d_%03d", echelon, i)
	}

	scenario := &config.Scenario{Name: fmt.Sprintf("layered-%dx%d", width, depth)}

	for e := 0; e < depth; e++ {
		// upstream echelons carry the demand of every customer they serve
		level := demand * int64(4<<e)
		for i := 0; i < width; i++ {
			node := config.NodeConfig{
				ID:           id(e, i),
				Intercompany: e+1 < depth,
				LeadTime:     fixed(1 + (i+e)%3),
				Stock:        map[string]int64{id(e, i): level},
				Policy:       config.PolicyConfig{Type: config.PolicyOrderUpTo, Level: level},
			}
			if e == 0 {
				node.Demand = config.DemandConfig{Type: config.DemandConstant, Quantity: demand}
			}
			scenario.Nodes = append(scenario.Nodes, node)
		}
	}

	for e := 0; e+1 < depth; e++ {
		for i := 0; i < width; i++ {
			suppliers := []int{i}
			if width > 1 {
				suppliers = append(suppliers, (i+1)%width)
			}
			for _, s := range suppliers {
				scenario.Edges = append(scenario.Edges, config.EdgeConfig{
					Source:      id(e+1, s),
					Destination: id(e, i),
					Number:      1,
				})
			}
		}
	}

	return scenario
}
