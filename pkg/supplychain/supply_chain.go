package supplychain

import (
	"fmt"
	"iter"
	"sort"

	"github.com/vsinha/echelon/pkg/domain/entities"
	"github.com/vsinha/echelon/pkg/domain/services"
)

// SupplyChain owns the nodes and edges of a network and advances it one
// period at a time. It is not safe for concurrent mutation.
type SupplyChain struct {
	nodes  map[entities.NodeID]*entities.Node
	edges  map[entities.EdgeID]entities.Edge
	logger EventLogger
	maxLLC int
}

// Option configures a SupplyChain
type Option func(*SupplyChain)

// WithEventLogger installs the sink for release, receipt and demand measurements
func WithEventLogger(logger EventLogger) Option {
	return func(sc *SupplyChain) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// New validates and links nodes and edges into a SupplyChain. Edges are
// registered on their endpoints, every node's edges are checked against the
// registered set, and low-level codes are assigned.
func New(nodes []*entities.Node, edges []entities.Edge, opts ...Option) (*SupplyChain, error) {
	sc := &SupplyChain{
		nodes:  make(map[entities.NodeID]*entities.Node, len(nodes)),
		edges:  make(map[entities.EdgeID]entities.Edge, len(edges)),
		logger: nopEventLogger{},
	}
	for _, opt := range opts {
		opt(sc)
	}

	validator := services.NewNetworkValidator()

	// Step 1: node ids must be unique
	ids := make([]entities.NodeID, 0, len(nodes))
	for _, node := range nodes {
		if node == nil || node.ID == "" {
			return nil, fmt.Errorf("%w: node id cannot be empty", ErrInvalidNetwork)
		}
		ids = append(ids, node.ID)
	}
	if result := validator.ValidateNodeUniqueness(ids); !result.Valid() {
		return nil, fmt.Errorf("%w: %w: %s", ErrInvalidNetwork, ErrDuplicateNode, result.Errors[0])
	}
	for _, node := range nodes {
		sc.nodes[node.ID] = node
	}

	// Step 2: register edges on their endpoints
	if err := sc.checkEdges(edges); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNetwork, err)
	}

	// Step 3: every edge a node carries must be registered
	if err := sc.checkNodes(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNetwork, err)
	}

	// Step 4: reject cycles
	if result := validator.ValidateNetwork(ids, sc.Edges()); result.HasCycles {
		return nil, fmt.Errorf("%w: %w: %v", ErrInvalidNetwork, ErrCycle, result.CyclePaths[0])
	}

	// Step 5: assign low-level codes
	if err := sc.setLLC(ids); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidNetwork, err)
	}

	return sc, nil
}

func (sc *SupplyChain) checkEdges(edges []entities.Edge) error {
	for _, edge := range edges {
		if _, exists := sc.edges[edge.ID()]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateEdge, edge.ID())
		}

		source, ok := sc.nodes[edge.Source()]
		if !ok {
			return fmt.Errorf("%w: edge %s source %s", ErrUnknownNode, edge.ID(), edge.Source())
		}
		destination, ok := sc.nodes[edge.Destination()]
		if !ok {
			return fmt.Errorf("%w: edge %s destination %s", ErrUnknownNode, edge.ID(), edge.Destination())
		}

		sc.edges[edge.ID()] = edge
		if !hasEdge(source.Successors, edge.ID()) {
			source.Successors = append(source.Successors, edge)
		}
		if !hasEdge(destination.Predecessors, edge.ID()) {
			destination.Predecessors = append(destination.Predecessors, edge)
		}
	}

	for _, node := range sc.nodes {
		sortEdges(node.Predecessors)
		sortEdges(node.Successors)
	}
	return nil
}

func (sc *SupplyChain) checkNodes() error {
	for _, node := range sc.sortedNodes() {
		for _, edge := range node.Predecessors {
			if edge.Destination() != node.ID {
				return fmt.Errorf("%w: node %s lists %s as a predecessor edge", ErrEdgeMismatch, node.ID, edge.ID())
			}
			if err := sc.checkRegistered(node.ID, edge); err != nil {
				return err
			}
		}
		for _, edge := range node.Successors {
			if edge.Source() != node.ID {
				return fmt.Errorf("%w: node %s lists %s as a successor edge", ErrEdgeMismatch, node.ID, edge.ID())
			}
			if err := sc.checkRegistered(node.ID, edge); err != nil {
				return err
			}
		}
	}
	return nil
}

func (sc *SupplyChain) checkRegistered(id entities.NodeID, edge entities.Edge) error {
	registered, ok := sc.edges[edge.ID()]
	if !ok {
		return fmt.Errorf("%w: node %s carries unregistered edge %s", ErrEdgeMismatch, id, edge.ID())
	}
	if registered.Number() != edge.Number() {
		return fmt.Errorf("%w: node %s carries %s with number %d, registered %d",
			ErrEdgeMismatch, id, edge.ID(), edge.Number(), registered.Number())
	}
	return nil
}

func (sc *SupplyChain) setLLC(ids []entities.NodeID) error {
	llc, err := services.LowLevelCodes(ids, sc.Edges())
	if err != nil {
		return err
	}

	sc.maxLLC = 0
	for id, code := range llc {
		sc.nodes[id].LLC = code
		if code > sc.maxLLC {
			sc.maxLLC = code
		}
	}
	return nil
}

func hasEdge(edges []entities.Edge, id entities.EdgeID) bool {
	for _, e := range edges {
		if e.ID() == id {
			return true
		}
	}
	return false
}

func sortEdges(edges []entities.Edge) {
	sort.Slice(edges, func(i, j int) bool { return edgeLess(edges[i], edges[j]) })
}

func edgeLess(a, b entities.Edge) bool {
	if a.Source() != b.Source() {
		return a.Source() < b.Source()
	}
	return a.Destination() < b.Destination()
}

// EventLogger returns the installed measurement sink
func (sc *SupplyChain) EventLogger() EventLogger {
	return sc.logger
}

// SetEventLogger replaces the measurement sink. A nil logger discards measurements.
func (sc *SupplyChain) SetEventLogger(logger EventLogger) {
	if logger == nil {
		logger = nopEventLogger{}
	}
	sc.logger = logger
}

// NodeExists reports whether id names a node in the chain
func (sc *SupplyChain) NodeExists(id entities.NodeID) bool {
	_, ok := sc.nodes[id]
	return ok
}

// EdgeExists reports whether id names a registered edge
func (sc *SupplyChain) EdgeExists(id entities.EdgeID) bool {
	_, ok := sc.edges[id]
	return ok
}

// Node returns the node with the given id
func (sc *SupplyChain) Node(id entities.NodeID) (*entities.Node, error) {
	node, ok := sc.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return node, nil
}

// Nodes returns every node ordered by low-level code, then id
func (sc *SupplyChain) Nodes() []*entities.Node {
	nodes := sc.sortedNodes()
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].LLC < nodes[j].LLC })
	return nodes
}

func (sc *SupplyChain) sortedNodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(sc.nodes))
	for _, node := range sc.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Edges returns every registered edge ordered by source, then destination
func (sc *SupplyChain) Edges() []entities.Edge {
	edges := make([]entities.Edge, 0, len(sc.edges))
	for _, edge := range sc.edges {
		edges = append(edges, edge)
	}
	sortEdges(edges)
	return edges
}

// MaxLLC returns the highest low-level code in the chain
func (sc *SupplyChain) MaxLLC() int {
	return sc.maxLLC
}

// NodesByLLC yields the nodes with the given low-level code in id order
func (sc *SupplyChain) NodesByLLC(llc int) iter.Seq[*entities.Node] {
	return func(yield func(*entities.Node) bool) {
		for _, node := range sc.sortedNodes() {
			if node.LLC != llc {
				continue
			}
			if !yield(node) {
				return
			}
		}
	}
}

// Reset clears the dynamic state of every node, keeping topology
func (sc *SupplyChain) Reset() {
	for _, node := range sc.nodes {
		node.Reset()
	}
}

func (sc *SupplyChain) member(node *entities.Node) error {
	if node == nil {
		return fmt.Errorf("%w: nil node", ErrUnknownNode)
	}
	if registered, ok := sc.nodes[node.ID]; !ok || registered != node {
		return fmt.Errorf("%w: %s is not part of this chain", ErrUnknownNode, node.ID)
	}
	return nil
}
