package simulation

import (
	"fmt"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/supplychain"
)

// OrderingPolicy decides what a node orders in a period
type OrderingPolicy interface {
	Orders(chain *supplychain.SupplyChain, node *entities.Node, period entities.Period) (*entities.Orders, error)
}

// NoOrderPolicy never orders
type NoOrderPolicy struct{}

func (NoOrderPolicy) Orders(*supplychain.SupplyChain, *entities.Node, entities.Period) (*entities.Orders, error) {
	return entities.NewOrders(), nil
}

// OrderUpToPolicy raises the inventory position to Level every period
type OrderUpToPolicy struct {
	Level entities.Quantity
}

func (p OrderUpToPolicy) Orders(chain *supplychain.SupplyChain, node *entities.Node, _ entities.Period) (*entities.Orders, error) {
	position := chain.InventoryAssembliesFeasible(node)
	return Replenish(node, p.Level-position)
}

// MinMaxPolicy raises the position to Max once it falls to Min or below
type MinMaxPolicy struct {
	Min entities.Quantity
	Max entities.Quantity
}

func (p MinMaxPolicy) Orders(chain *supplychain.SupplyChain, node *entities.Node, _ entities.Period) (*entities.Orders, error) {
	position := chain.InventoryAssembliesFeasible(node)
	if position > p.Min {
		return entities.NewOrders(), nil
	}
	return Replenish(node, p.Max-position)
}

// Replenish turns a need for units of node's own SKU into orders.
// Intercompany nodes and nodes without suppliers order themselves; other
// nodes order the components of need from each predecessor.
func Replenish(node *entities.Node, need entities.Quantity) (*entities.Orders, error) {
	orders := entities.NewOrders()
	if need <= 0 {
		return orders, nil
	}

	if node.Intercompany || len(node.Predecessors) == 0 {
		if err := orders.Add(node.ID, need); err != nil {
			return nil, fmt.Errorf("failed to order %s: %w", node.ID, err)
		}
		return orders, nil
	}

	for _, edge := range node.Predecessors {
		if err := orders.Add(edge.Source(), need*edge.Number()); err != nil {
			return nil, fmt.Errorf("failed to order %s from %s: %w", node.ID, edge.Source(), err)
		}
	}
	return orders, nil
}
