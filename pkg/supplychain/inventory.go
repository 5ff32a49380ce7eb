package supplychain

import "github.com/vsinha/echelon/pkg/domain/entities"

// Inventory returns the inventory position of node by SKU:
//
//	in transit                      per SKU in the pipeline
//	+ on order at each predecessor  under the predecessor's id
//	+ component stock on hand       under the predecessor's id
//	+ own stock on hand             under node
//	- backorders                    under node
//	- orders owed to successors     under node
//
// Reading the ledgers records zero entries for keys not seen before.
func (sc *SupplyChain) Inventory(node *entities.Node) entities.Inventory {
	inv := node.Pipeline.Contents()

	for _, edge := range node.Predecessors {
		pred := sc.nodes[edge.Source()]
		inv.Add(edge.Source(), pred.Orders.Get(node.ID)+node.Stock.Get(edge.Source()))
	}

	inv.Add(node.ID, node.Stock.Get(node.ID))
	inv.Add(node.ID, -node.Backorders)
	inv.Add(node.ID, -node.Orders.Sum())

	return inv
}

// InventoryAssembliesFeasible returns node's position in units of its own
// SKU, counting component positions as the assemblies they could build
func (sc *SupplyChain) InventoryAssembliesFeasible(node *entities.Node) entities.Quantity {
	inv := sc.Inventory(node)
	return node.AssembliesFeasible(inv) + inv.Get(node.ID)
}
