package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vsinha/echelon/pkg/application/services/simulation"
	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/infrastructure/logging"
	"github.com/vsinha/echelon/pkg/supplychain"
)

func main() {
	ctx := context.Background()

	// Set up a bike shop assembling from two component suppliers
	chain, err := setupBikeShop()
	if err != nil {
		fmt.Printf("❌ Failed to build supply chain: %v\n", err)
		return
	}

	fmt.Println("🚲 Simulating bike shop supply chain...")
	for _, node := range chain.Nodes() {
		fmt.Printf("  %-6s llc=%d lead time=%d\n", node.ID, node.LLC, node.GetLeadTime(0))
	}
	fmt.Println()

	sim, err := simulation.New(chain,
		simulation.WithScenarioName("bike-shop"),
		simulation.WithLogger(logging.NewJSONLogger(os.Stderr, logging.WarnLevel)),
		simulation.WithPolicy("BIKE", simulation.OrderUpToPolicy{Level: 12}),
		simulation.WithPolicy("FRAME", simulation.OrderUpToPolicy{Level: 15}),
		simulation.WithPolicy("WHEEL", simulation.MinMaxPolicy{Min: 10, Max: 30}),
		simulation.WithDemand("BIKE", simulation.TableDemand{
			Table:   []entities.Quantity{2, 3, 5, 8, 5, 3, 2, 2},
			Default: 3,
		}),
	)
	if err != nil {
		fmt.Printf("❌ Failed to create simulator: %v\n", err)
		return
	}

	result, err := sim.Run(ctx, 12)
	if err != nil {
		fmt.Printf("❌ Simulation failed: %v\n", err)
		return
	}

	// Display results
	fmt.Println("📊 Simulation Results:")
	fmt.Printf("  Periods: %d\n", result.Periods())
	fmt.Printf("  Shipments: %d\n", len(result.Shipments))
	fmt.Println()

	fmt.Println("📦 BIKE by period:")
	fmt.Printf("  %-6s %-7s %-6s %-8s %-10s %-9s\n", "Period", "Demand", "Sales", "On Hand", "Backorders", "Position")
	for _, s := range result.StatesFor("BIKE") {
		fmt.Printf("  %-6d %-7d %-6d %-8d %-10d %-9d\n",
			s.Period, s.Demand, s.Sales, s.OnHand, s.Backorders, s.Position)
	}
	fmt.Println()

	for _, s := range result.Summaries {
		fmt.Printf("  %-6s fill rate %s, average stock %s, average wait %s periods\n",
			s.Node, s.FillRate.StringFixed(2), s.AverageOnHand.StringFixed(1), s.AverageWait.StringFixed(1))
	}
}

func setupBikeShop() (*supplychain.SupplyChain, error) {
	bike, err := entities.NewNode("BIKE", true, entities.FixedLeadTime(1))
	if err != nil {
		return nil, err
	}
	frame, err := entities.NewNode("FRAME", false, entities.FixedLeadTime(3))
	if err != nil {
		return nil, err
	}
	wheel, err := entities.NewNode("WHEEL", false, entities.FixedLeadTime(2))
	if err != nil {
		return nil, err
	}

	// Opening stock
	if err := bike.Stock.Set("BIKE", 6); err != nil {
		return nil, err
	}
	if err := frame.Stock.Set("FRAME", 10); err != nil {
		return nil, err
	}
	if err := wheel.Stock.Set("WHEEL", 20); err != nil {
		return nil, err
	}

	edges := []entities.Edge{
		entities.MustEdge("FRAME", "BIKE", 1),
		entities.MustEdge("WHEEL", "BIKE", 2),
	}

	return supplychain.New([]*entities.Node{bike, frame, wheel}, edges)
}
