package entities

import "sort"

// Inventory maps SKUs to quantities. Missing keys read as zero.
type Inventory map[NodeID]Quantity

// Get returns the quantity for sku
func (inv Inventory) Get(sku NodeID) Quantity {
	return inv[sku]
}

// Add adds quantity (which may be negative) to sku
func (inv Inventory) Add(sku NodeID, quantity Quantity) {
	inv[sku] += quantity
}

// Merge adds every entry of other into inv
func (inv Inventory) Merge(other Inventory) {
	for sku, q := range other {
		inv[sku] += q
	}
}

// Total returns the sum over all SKUs
func (inv Inventory) Total() Quantity {
	var total Quantity
	for _, q := range inv {
		total += q
	}
	return total
}

// SKUs returns the SKUs in sorted order
func (inv Inventory) SKUs() []NodeID {
	skus := make([]NodeID, 0, len(inv))
	for sku := range inv {
		skus = append(skus, sku)
	}
	sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })
	return skus
}

// InventoryOf flattens a ledger into its per-key totals
func InventoryOf(orders *Orders) Inventory {
	inv := make(Inventory, orders.Len())
	for _, key := range orders.Keys() {
		inv[key] = orders.totals[key]
	}
	return inv
}
