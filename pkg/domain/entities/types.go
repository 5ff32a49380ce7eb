package entities

import "errors"

// NodeID represents a unique node identifier. A node's own SKU shares its ID.
type NodeID string

// Quantity represents an integer quantity value for discrete units
type Quantity int64

// Period is a simulated time step
type Period int

// PeriodPtr returns a pointer to p, for batches that record their placement period
func PeriodPtr(p Period) *Period {
	return &p
}

var (
	// ErrNegativeQuantity is returned when a quantity that must be non-negative is negative
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
	// ErrInsufficientQuantity is returned when consuming more than is outstanding
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	// ErrKeyExists is returned when directly assigning a key that already has an entry
	ErrKeyExists = errors.New("key already has a value")
	// ErrInvalidEdge is returned by NewEdge for malformed edges
	ErrInvalidEdge = errors.New("invalid edge")
	// ErrInvalidReceipt is returned by NewReceipt for malformed receipts
	ErrInvalidReceipt = errors.New("invalid receipt")
	// ErrInvalidLeadTime is returned for malformed lead time descriptions
	ErrInvalidLeadTime = errors.New("invalid lead time")
)
