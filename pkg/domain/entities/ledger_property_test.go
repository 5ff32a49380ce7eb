package entities

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func batchSum(orders *Orders, key NodeID) Quantity {
	var total Quantity
	for _, b := range orders.Batches(key) {
		total += b.Quantity
	}
	return total
}

// TestOrdersInvariants checks ledger laws over random add/consume sequences
func TestOrdersInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	keys := []NodeID{"A", "B", "C"}

	properties.Property("total equals sum of batches after any op sequence", prop.ForAll(
		func(ops []int64) bool {
			orders := NewOrders()
			for i, op := range ops {
				key := keys[i%len(keys)]
				if op >= 0 {
					if err := orders.AddAt(key, Quantity(op), Period(i)); err != nil {
						return false
					}
				} else {
					want := Quantity(-op)
					if want > orders.Get(key) {
						want = orders.Get(key)
					}
					if _, err := orders.Consume(key, want); err != nil {
						return false
					}
				}

				for _, k := range orders.Keys() {
					if orders.Get(k) != batchSum(orders, k) || orders.Get(k) < 0 {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(-30, 30)),
	))

	properties.Property("consume decreases total by exactly the released amount", prop.ForAll(
		func(adds []int64, value int64) bool {
			orders := NewOrders()
			for i, a := range adds {
				_ = orders.AddAt("A", Quantity(a), Period(i))
			}
			before := orders.Get("A")
			batchesBefore := len(orders.Batches("A"))

			released, err := orders.Consume("A", Quantity(value))
			if Quantity(value) > before {
				// failure leaves the ledger untouched
				return err != nil && orders.Get("A") == before && len(orders.Batches("A")) == batchesBefore
			}
			if err != nil {
				return false
			}

			var fragments Quantity
			for _, b := range released {
				fragments += b.Quantity
			}
			return fragments == Quantity(value) && orders.Get("A") == before-Quantity(value)
		},
		gen.SliceOf(gen.Int64Range(0, 20)),
		gen.Int64Range(0, 150),
	))

	properties.Property("released fragments come out oldest first", prop.ForAll(
		func(adds []int64, value int64) bool {
			orders := NewOrders()
			for i, a := range adds {
				_ = orders.AddAt("A", Quantity(a), Period(i))
			}
			if Quantity(value) > orders.Get("A") {
				value = int64(orders.Get("A"))
			}
			released, err := orders.Consume("A", Quantity(value))
			if err != nil {
				return false
			}
			for i := 1; i < len(released); i++ {
				if *released[i].Period < *released[i-1].Period {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(0, 20)),
		gen.Int64Range(0, 150),
	))

	properties.TestingRun(t)
}

// TestPipelineInvariants checks update and pop laws over random pipelines
func TestPipelineInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	build := func(etas []int) *Pipeline {
		p := NewPipeline()
		for i, eta := range etas {
			p.AddReceipt(Receipt{SKU: "S", ETA: eta, Quantity: Quantity(i + 1)})
		}
		return p
	}

	properties.Property("update decrements every eta by one", prop.ForAll(
		func(etas []int) bool {
			p := build(etas)
			p.Update()
			for i, r := range p.Receipts() {
				if r.ETA != etas[i]-1 {
					return false
				}
			}
			return p.Len() == len(etas)
		},
		gen.SliceOf(gen.IntRange(0, 10)),
	))

	properties.Property("pop removes all and only arrived receipts in order", prop.ForAll(
		func(etas []int) bool {
			p := build(etas)
			received := p.PopReceived()

			for _, r := range received {
				if r.ETA > 0 {
					return false
				}
			}
			last := Quantity(0)
			for _, r := range p.Receipts() {
				if r.ETA <= 0 || r.Quantity <= last {
					return false
				}
				last = r.Quantity
			}
			return len(received)+p.Len() == len(etas) && len(p.PopReceived()) == 0
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}
