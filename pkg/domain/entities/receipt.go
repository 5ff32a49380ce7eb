package entities

import (
	"encoding/json"
	"fmt"
)

// Receipt is an in-transit lot of SKU arriving in ETA periods
type Receipt struct {
	SKU      NodeID   `json:"sku_code"`
	ETA      int      `json:"eta"`
	Quantity Quantity `json:"quantity"`
}

// NewReceipt creates a validated Receipt
func NewReceipt(sku NodeID, eta int, quantity Quantity) (Receipt, error) {
	if sku == "" {
		return Receipt{}, fmt.Errorf("%w: sku cannot be empty", ErrInvalidReceipt)
	}
	if eta < 0 {
		return Receipt{}, fmt.Errorf("%w: eta cannot be negative, got %d", ErrInvalidReceipt, eta)
	}
	if quantity <= 0 {
		return Receipt{}, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidReceipt, quantity)
	}
	return Receipt{SKU: sku, ETA: eta, Quantity: quantity}, nil
}

// Pipeline holds receipts in transit to a node, in insertion order
type Pipeline struct {
	receipts []Receipt
}

// NewPipeline creates an empty pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// AddReceipt appends a receipt
func (p *Pipeline) AddReceipt(r Receipt) {
	p.receipts = append(p.receipts, r)
}

// Update decrements every receipt's ETA by one. Call once per period, before PopReceived.
func (p *Pipeline) Update() {
	for i := range p.receipts {
		p.receipts[i].ETA--
	}
}

// PopReceived removes and returns every receipt with ETA <= 0
func (p *Pipeline) PopReceived() []Receipt {
	var received []Receipt
	remaining := p.receipts[:0]

	for _, r := range p.receipts {
		if r.ETA <= 0 {
			received = append(received, r)
		} else {
			remaining = append(remaining, r)
		}
	}

	// drop references held past the new length
	for i := len(remaining); i < len(p.receipts); i++ {
		p.receipts[i] = Receipt{}
	}
	p.receipts = remaining

	return received
}

// Receipts returns a copy of the in-transit receipts
func (p *Pipeline) Receipts() []Receipt {
	out := make([]Receipt, len(p.receipts))
	copy(out, p.receipts)
	return out
}

// Len returns the number of receipts in transit
func (p *Pipeline) Len() int {
	return len(p.receipts)
}

// Contents groups in-transit quantities by SKU
func (p *Pipeline) Contents() Inventory {
	inv := make(Inventory)
	for _, r := range p.receipts {
		inv.Add(r.SKU, r.Quantity)
	}
	return inv
}

// Total returns the in-transit quantity across all SKUs
func (p *Pipeline) Total() Quantity {
	var total Quantity
	for _, r := range p.receipts {
		total += r.Quantity
	}
	return total
}

// Clear drops all receipts
func (p *Pipeline) Clear() {
	p.receipts = nil
}

// MarshalJSON encodes the pipeline as a plain receipt array
func (p *Pipeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Receipts())
}

// UnmarshalJSON decodes a receipt array, validating each receipt
func (p *Pipeline) UnmarshalJSON(data []byte) error {
	var receipts []Receipt
	if err := json.Unmarshal(data, &receipts); err != nil {
		return err
	}
	p.receipts = nil
	for _, r := range receipts {
		if r.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidReceipt, r.Quantity)
		}
		p.receipts = append(p.receipts, r)
	}
	return nil
}
