package entities

import "fmt"

// Node is a participant in the supply network
type Node struct {
	ID           NodeID
	Intercompany bool // replenishment explodes through predecessors instead of external supply
	LeadTime     LeadTimeProvider

	// Stock holds on-hand quantities per SKU; batches record the period received.
	Stock *Orders
	// Orders holds outstanding orders placed on this node, keyed by the requesting node.
	Orders     *Orders
	Backorders Quantity
	Pipeline   *Pipeline

	Predecessors []Edge
	Successors   []Edge

	// LLC is the low-level code: edge hops from the farthest downstream node
	LLC int
}

// NewNode creates a validated Node with empty ledgers
func NewNode(id NodeID, intercompany bool, leadTime LeadTimeProvider) (*Node, error) {
	if id == "" {
		return nil, fmt.Errorf("node id cannot be empty")
	}

	return &Node{
		ID:           id,
		Intercompany: intercompany,
		LeadTime:     leadTime,
		Stock:        NewOrders(),
		Orders:       NewOrders(),
		Pipeline:     NewPipeline(),
	}, nil
}

// GetLeadTime returns the lead time for a receipt created in period
func (n *Node) GetLeadTime(period Period) int {
	if n.LeadTime == nil {
		return 0
	}
	lt := n.LeadTime.LeadTime(period)
	if lt < 0 {
		return 0
	}
	return lt
}

// AssembliesFeasible returns the number of complete assemblies buildable
// from inv through this node's predecessor edges
func (n *Node) AssembliesFeasible(inv Inventory) Quantity {
	if len(n.Predecessors) == 0 {
		return 0
	}

	var feasible Quantity = -1
	for _, edge := range n.Predecessors {
		available := inv.Get(edge.Source())
		if available <= 0 {
			return 0
		}
		builds := available / edge.Number()
		if feasible < 0 || builds < feasible {
			feasible = builds
		}
	}
	return feasible
}

// Predecessor returns the predecessor edge from source, if any
func (n *Node) Predecessor(source NodeID) (Edge, bool) {
	for _, e := range n.Predecessors {
		if e.Source() == source {
			return e, true
		}
	}
	return Edge{}, false
}

// Successor returns the successor edge to destination, if any
func (n *Node) Successor(destination NodeID) (Edge, bool) {
	for _, e := range n.Successors {
		if e.Destination() == destination {
			return e, true
		}
	}
	return Edge{}, false
}

// IsSink reports whether the node has no successors
func (n *Node) IsSink() bool {
	return len(n.Successors) == 0
}

// Reset clears the node's dynamic state between independent runs
func (n *Node) Reset() {
	n.Stock = NewOrders()
	n.Orders = NewOrders()
	n.Backorders = 0
	n.Pipeline = NewPipeline()
}
