package entities

import "fmt"

// EdgeID identifies an edge by its endpoints
type EdgeID struct {
	Source      NodeID
	Destination NodeID
}

// String formats the edge id as "source->destination"
func (id EdgeID) String() string {
	return fmt.Sprintf("%s->%s", id.Source, id.Destination)
}

// Edge is a directed supply relation: Number units of Source are consumed
// per unit of Destination produced.
type Edge struct {
	source      NodeID
	destination NodeID
	number      Quantity
}

// NewEdge creates a validated Edge
func NewEdge(source, destination NodeID, number Quantity) (Edge, error) {
	if source == "" {
		return Edge{}, fmt.Errorf("%w: source cannot be empty", ErrInvalidEdge)
	}
	if destination == "" {
		return Edge{}, fmt.Errorf("%w: destination cannot be empty", ErrInvalidEdge)
	}
	if source == destination {
		return Edge{}, fmt.Errorf("%w: source and destination cannot be the same: %s", ErrInvalidEdge, source)
	}
	if number <= 0 {
		return Edge{}, fmt.Errorf("%w: number must be positive, got %d", ErrInvalidEdge, number)
	}

	return Edge{source: source, destination: destination, number: number}, nil
}

// MustEdge is NewEdge for fixtures; it panics on invalid input
func MustEdge(source, destination NodeID, number Quantity) Edge {
	e, err := NewEdge(source, destination, number)
	if err != nil {
		panic(err)
	}
	return e
}

// ID returns the edge identity
func (e Edge) ID() EdgeID {
	return EdgeID{Source: e.source, Destination: e.destination}
}

// Source returns the supplying node
func (e Edge) Source() NodeID { return e.source }

// Destination returns the consuming node
func (e Edge) Destination() NodeID { return e.destination }

// Number returns units of source per unit of destination
func (e Edge) Number() Quantity { return e.number }

func (e Edge) String() string {
	return fmt.Sprintf("%s (x%d)", e.ID(), e.number)
}
