package supplychain

import (
	"encoding/json"
	"fmt"

	"github.com/vsinha/echelon/pkg/domain/entities"
)

type nodeRecord struct {
	ID           entities.NodeID        `json:"id"`
	Intercompany bool                   `json:"intercompany"`
	LLC          int                    `json:"llc"`
	LeadTime     *entities.LeadTimeSpec `json:"lead_time,omitempty"`
	Stock        *entities.Orders       `json:"stock"`
	Orders       *entities.Orders       `json:"orders"`
	Backorders   entities.Quantity      `json:"backorders"`
	Pipeline     *entities.Pipeline     `json:"pipeline"`
}

type edgeRecord struct {
	Source      entities.NodeID   `json:"source"`
	Destination entities.NodeID   `json:"destination"`
	Number      entities.Quantity `json:"number"`
}

type chainRecord struct {
	Nodes []nodeRecord `json:"nodes"`
	Edges []edgeRecord `json:"edges"`
}

// ToJSON encodes the chain as flat node and edge records. Predecessor and
// successor lists are implied by the edges.
func (sc *SupplyChain) ToJSON() ([]byte, error) {
	record := chainRecord{
		Nodes: make([]nodeRecord, 0, len(sc.nodes)),
		Edges: make([]edgeRecord, 0, len(sc.edges)),
	}

	for _, node := range sc.Nodes() {
		nr := nodeRecord{
			ID:           node.ID,
			Intercompany: node.Intercompany,
			LLC:          node.LLC,
			Stock:        node.Stock,
			Orders:       node.Orders,
			Backorders:   node.Backorders,
			Pipeline:     node.Pipeline,
		}
		if node.LeadTime != nil {
			spec := node.LeadTime.Spec()
			nr.LeadTime = &spec
		}
		record.Nodes = append(record.Nodes, nr)
	}

	for _, edge := range sc.Edges() {
		record.Edges = append(record.Edges, edgeRecord{
			Source:      edge.Source(),
			Destination: edge.Destination(),
			Number:      edge.Number(),
		})
	}

	return json.Marshal(record)
}

// FromJSON decodes a chain written by ToJSON, relinking edges by id and
// running the same validation as New. Low-level codes are recomputed.
func FromJSON(data []byte, opts ...Option) (*SupplyChain, error) {
	var record chainRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode supply chain: %w", err)
	}

	nodes := make([]*entities.Node, 0, len(record.Nodes))
	for _, nr := range record.Nodes {
		var provider entities.LeadTimeProvider
		if nr.LeadTime != nil {
			p, err := nr.LeadTime.Provider()
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", nr.ID, err)
			}
			provider = p
		}

		node, err := entities.NewNode(nr.ID, nr.Intercompany, provider)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidNetwork, err)
		}
		if nr.Backorders < 0 {
			return nil, fmt.Errorf("%w: node %s backorders", entities.ErrNegativeQuantity, nr.ID)
		}
		if nr.Stock != nil {
			node.Stock = nr.Stock
		}
		if nr.Orders != nil {
			node.Orders = nr.Orders
		}
		if nr.Pipeline != nil {
			node.Pipeline = nr.Pipeline
		}
		node.Backorders = nr.Backorders
		nodes = append(nodes, node)
	}

	edges := make([]entities.Edge, 0, len(record.Edges))
	for _, er := range record.Edges {
		edge, err := entities.NewEdge(er.Source, er.Destination, er.Number)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidNetwork, err)
		}
		edges = append(edges, edge)
	}

	return New(nodes, edges, opts...)
}
