package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OrderBatch is one placement event of an order. Batches are never merged,
// so FIFO consumption and per-batch wait times stay exact.
type OrderBatch struct {
	Quantity Quantity `json:"quantity"`
	Period   *Period  `json:"period,omitempty"`
}

// WaitTime returns the periods elapsed since the batch was placed, or -1
// when the batch has no recorded period
func (b OrderBatch) WaitTime(current Period) Period {
	if b.Period == nil {
		return -1
	}
	return current - *b.Period
}

func (b OrderBatch) clone() OrderBatch {
	out := OrderBatch{Quantity: b.Quantity}
	if b.Period != nil {
		out.Period = PeriodPtr(*b.Period)
	}
	return out
}

// Orders is a ledger of outstanding quantities keyed by node, backed by a
// FIFO list of batches per key. The visible total for a key always equals
// the sum of its batches.
type Orders struct {
	keys    []NodeID
	totals  map[NodeID]Quantity
	batches map[NodeID][]OrderBatch
}

// NewOrders creates an empty ledger
func NewOrders() *Orders {
	o := &Orders{}
	o.init()
	return o
}

func (o *Orders) init() {
	if o.totals == nil {
		o.totals = make(map[NodeID]Quantity)
		o.batches = make(map[NodeID][]OrderBatch)
	}
}

func (o *Orders) ensure(key NodeID) {
	o.init()
	if _, exists := o.totals[key]; !exists {
		o.keys = append(o.keys, key)
		o.totals[key] = 0
	}
}

func (o *Orders) resync(key NodeID) {
	var total Quantity
	for _, b := range o.batches[key] {
		total += b.Quantity
	}
	o.totals[key] = total
}

// Get returns the outstanding quantity for key. A key seen for the first
// time is recorded with a zero total.
func (o *Orders) Get(key NodeID) Quantity {
	o.ensure(key)
	return o.totals[key]
}

// Has reports whether key has an entry, without creating one
func (o *Orders) Has(key NodeID) bool {
	_, exists := o.totals[key]
	return exists
}

// Set seeds the quantity of a key that has no prior entry. Later changes
// must go through Add or Consume.
func (o *Orders) Set(key NodeID, value Quantity) error {
	if value < 0 {
		return fmt.Errorf("%w: cannot set %s to %d", ErrNegativeQuantity, key, value)
	}
	if o.Has(key) {
		return fmt.Errorf("%w: %s (use Add or Consume)", ErrKeyExists, key)
	}

	o.ensure(key)
	if value > 0 {
		o.batches[key] = []OrderBatch{{Quantity: value}}
		o.totals[key] = value
	}
	return nil
}

// Add appends a batch of value with no placement period
func (o *Orders) Add(key NodeID, value Quantity) error {
	return o.add(key, value, nil)
}

// AddAt appends a batch of value placed in period
func (o *Orders) AddAt(key NodeID, value Quantity, period Period) error {
	return o.add(key, value, PeriodPtr(period))
}

func (o *Orders) add(key NodeID, value Quantity, period *Period) error {
	if value < 0 {
		return fmt.Errorf("%w: cannot add %d to %s", ErrNegativeQuantity, value, key)
	}
	if value == 0 {
		return nil
	}

	o.ensure(key)
	o.batches[key] = append(o.batches[key], OrderBatch{Quantity: value, Period: period})
	o.resync(key)
	return nil
}

// Consume draws value down from key, oldest batches first, splitting the
// head batch when it is larger than what remains to consume. It returns the
// released fragments, each carrying its original period. Consuming more than
// is outstanding fails and leaves the ledger unchanged.
func (o *Orders) Consume(key NodeID, value Quantity) ([]OrderBatch, error) {
	if value < 0 {
		return nil, fmt.Errorf("%w: cannot consume %d from %s", ErrNegativeQuantity, value, key)
	}
	if value == 0 {
		return nil, nil
	}

	available := o.totals[key]
	if value > available {
		return nil, fmt.Errorf("%w: cannot consume %d from %s, only %d outstanding",
			ErrInsufficientQuantity, value, key, available)
	}

	batches := o.batches[key]
	released := make([]OrderBatch, 0, 1)
	remaining := value

	for remaining > 0 {
		head := batches[0]
		if head.Quantity <= remaining {
			released = append(released, head.clone())
			remaining -= head.Quantity
			batches = batches[1:]
			continue
		}

		fragment := head.clone()
		fragment.Quantity = remaining
		released = append(released, fragment)
		batches[0].Quantity -= remaining
		remaining = 0
	}

	if len(batches) == 0 {
		batches = nil
	}
	o.batches[key] = batches
	o.resync(key)

	return released, nil
}

// Sum returns the total outstanding across all keys
func (o *Orders) Sum() Quantity {
	var total Quantity
	for _, q := range o.totals {
		total += q
	}
	return total
}

// Keys returns keys in the order they were first seen
func (o *Orders) Keys() []NodeID {
	keys := make([]NodeID, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of keys with an entry
func (o *Orders) Len() int {
	return len(o.keys)
}

// Batches returns a copy of the outstanding batches for key, oldest first
func (o *Orders) Batches(key NodeID) []OrderBatch {
	batches := make([]OrderBatch, 0, len(o.batches[key]))
	for _, b := range o.batches[key] {
		batches = append(batches, b.clone())
	}
	return batches
}

// Positive returns a copy of the ledger holding only keys with outstanding quantity
func (o *Orders) Positive() *Orders {
	out := NewOrders()
	for _, key := range o.keys {
		if o.totals[key] <= 0 {
			continue
		}
		out.ensure(key)
		out.batches[key] = o.Batches(key)
		out.totals[key] = o.totals[key]
	}
	return out
}

// Clone returns a deep copy of the ledger
func (o *Orders) Clone() *Orders {
	out := NewOrders()
	for _, key := range o.keys {
		out.ensure(key)
		if len(o.batches[key]) > 0 {
			out.batches[key] = o.Batches(key)
		}
		out.totals[key] = o.totals[key]
	}
	return out
}

// Clear removes every key and batch
func (o *Orders) Clear() {
	o.keys = nil
	o.totals = make(map[NodeID]Quantity)
	o.batches = make(map[NodeID][]OrderBatch)
}

func (o *Orders) String() string {
	parts := make([]string, 0, len(o.keys))
	for _, key := range o.keys {
		parts = append(parts, fmt.Sprintf("%s:%d", key, o.totals[key]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

type ordersEntry struct {
	Key     NodeID       `json:"key"`
	Batches []OrderBatch `json:"batches"`
}

// MarshalJSON encodes the ledger as an ordered list of keys with their batches
func (o *Orders) MarshalJSON() ([]byte, error) {
	entries := make([]ordersEntry, 0, len(o.keys))
	for _, key := range o.keys {
		entries = append(entries, ordersEntry{Key: key, Batches: o.Batches(key)})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON rebuilds the ledger, recomputing totals from batches
func (o *Orders) UnmarshalJSON(data []byte) error {
	var entries []ordersEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	o.Clear()
	for _, entry := range entries {
		if o.Has(entry.Key) {
			return fmt.Errorf("duplicate ledger key %s", entry.Key)
		}
		o.ensure(entry.Key)
		for _, b := range entry.Batches {
			if b.Quantity < 0 {
				return fmt.Errorf("%w: batch of %d for %s", ErrNegativeQuantity, b.Quantity, entry.Key)
			}
			if b.Quantity == 0 {
				continue
			}
			o.batches[entry.Key] = append(o.batches[entry.Key], b.clone())
		}
		o.resync(entry.Key)
	}
	return nil
}
