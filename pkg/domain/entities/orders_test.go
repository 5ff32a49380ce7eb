package entities

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestOrders_GetDefaultsToZero(t *testing.T) {
	orders := NewOrders()

	if orders.Has("A") {
		t.Fatal("Expected empty ledger to have no entry for A")
	}
	if got := orders.Get("A"); got != 0 {
		t.Errorf("Expected 0 for unseen key, got %d", got)
	}
	if !orders.Has("A") {
		t.Error("Expected Get to persist a zero entry")
	}
	if orders.Len() != 1 {
		t.Errorf("Expected 1 key, got %d", orders.Len())
	}
}

func TestOrders_Set(t *testing.T) {
	orders := NewOrders()

	if err := orders.Set("A", 12); err != nil {
		t.Fatalf("Expected first Set to succeed: %v", err)
	}
	if orders.Get("A") != 12 {
		t.Errorf("Expected 12, got %d", orders.Get("A"))
	}

	batches := orders.Batches("A")
	if len(batches) != 1 || batches[0].Period != nil {
		t.Errorf("Expected one batch without period, got %+v", batches)
	}

	err := orders.Set("A", 3)
	if !errors.Is(err, ErrKeyExists) {
		t.Errorf("Expected ErrKeyExists on second Set, got %v", err)
	}

	orders.Get("B")
	if err := orders.Set("B", 1); !errors.Is(err, ErrKeyExists) {
		t.Errorf("Expected ErrKeyExists after Get persisted B, got %v", err)
	}

	if err := orders.Set("C", -1); !errors.Is(err, ErrNegativeQuantity) {
		t.Errorf("Expected ErrNegativeQuantity, got %v", err)
	}
	if orders.Has("C") {
		t.Error("Failed Set must not create an entry")
	}
}

func TestOrders_Add(t *testing.T) {
	orders := NewOrders()

	if err := orders.AddAt("A", 5, 1); err != nil {
		t.Fatalf("AddAt failed: %v", err)
	}
	if err := orders.AddAt("A", 3, 2); err != nil {
		t.Fatalf("AddAt failed: %v", err)
	}
	if err := orders.Add("A", 2); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if orders.Get("A") != 10 {
		t.Errorf("Expected total 10, got %d", orders.Get("A"))
	}
	if len(orders.Batches("A")) != 3 {
		t.Errorf("Expected 3 separate batches, got %d", len(orders.Batches("A")))
	}

	if err := orders.Add("A", -1); !errors.Is(err, ErrNegativeQuantity) {
		t.Errorf("Expected ErrNegativeQuantity, got %v", err)
	}

	if err := orders.AddAt("Z", 0, 4); err != nil {
		t.Fatalf("Zero add should be a no-op, got %v", err)
	}
	if orders.Has("Z") {
		t.Error("Zero add must not create a ledger entry")
	}
}

func TestOrders_ConsumeFIFOWithSplit(t *testing.T) {
	orders := NewOrders()
	_ = orders.AddAt("A", 4, 1)
	_ = orders.AddAt("A", 6, 3)
	_ = orders.AddAt("A", 5, 4)

	released, err := orders.Consume("A", 7)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	if len(released) != 2 {
		t.Fatalf("Expected 2 fragments, got %d", len(released))
	}
	if released[0].Quantity != 4 || *released[0].Period != 1 {
		t.Errorf("Expected first fragment 4@1, got %d@%v", released[0].Quantity, released[0].Period)
	}
	if released[1].Quantity != 3 || *released[1].Period != 3 {
		t.Errorf("Expected second fragment 3@3, got %d@%v", released[1].Quantity, released[1].Period)
	}

	if orders.Get("A") != 8 {
		t.Errorf("Expected 8 remaining, got %d", orders.Get("A"))
	}
	remaining := orders.Batches("A")
	if len(remaining) != 2 || remaining[0].Quantity != 3 || *remaining[0].Period != 3 {
		t.Errorf("Expected split head batch 3@3 to remain, got %+v", remaining)
	}

	if released[1].WaitTime(10) != 7 {
		t.Errorf("Expected wait time 7, got %d", released[1].WaitTime(10))
	}
}

func TestOrders_ConsumeFailures(t *testing.T) {
	orders := NewOrders()
	_ = orders.AddAt("A", 4, 1)
	_ = orders.AddAt("A", 2, 2)

	testCases := []struct {
		name   string
		value  Quantity
		target error
	}{
		{"negative", -1, ErrNegativeQuantity},
		{"more than outstanding", 7, ErrInsufficientQuantity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := orders.Consume("A", tc.value)
			if !errors.Is(err, tc.target) {
				t.Fatalf("Expected %v, got %v", tc.target, err)
			}
			if orders.Get("A") != 6 || len(orders.Batches("A")) != 2 {
				t.Errorf("Failed consume modified the ledger: %s", orders)
			}
		})
	}

	released, err := orders.Consume("A", 0)
	if err != nil || len(released) != 0 {
		t.Errorf("Expected zero consume to be a no-op, got %v %v", released, err)
	}
}

func TestOrderBatch_WaitTimeWithoutPeriod(t *testing.T) {
	orders := NewOrders()
	_ = orders.Set("A", 3)

	released, err := orders.Consume("A", 3)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if released[0].WaitTime(9) != -1 {
		t.Errorf("Expected -1 for batch without period, got %d", released[0].WaitTime(9))
	}
	if orders.Get("A") != 0 || len(orders.Batches("A")) != 0 {
		t.Errorf("Expected empty key after full consume, got %s", orders)
	}
}

func TestOrders_SumAndKeys(t *testing.T) {
	orders := NewOrders()
	_ = orders.Add("B", 2)
	_ = orders.Add("A", 3)
	orders.Get("C")

	if orders.Sum() != 5 {
		t.Errorf("Expected sum 5, got %d", orders.Sum())
	}

	keys := orders.Keys()
	expected := []NodeID{"B", "A", "C"}
	for i, key := range expected {
		if keys[i] != key {
			t.Errorf("Expected key %s at %d, got %s", key, i, keys[i])
		}
	}

	positive := orders.Positive()
	if positive.Len() != 2 || positive.Has("C") {
		t.Errorf("Expected positive view without C, got %s", positive)
	}
}

func TestOrders_CloneIsIndependent(t *testing.T) {
	orders := NewOrders()
	_ = orders.AddAt("A", 5, 2)

	clone := orders.Clone()
	if _, err := clone.Consume("A", 2); err != nil {
		t.Fatalf("Consume on clone failed: %v", err)
	}

	if orders.Get("A") != 5 {
		t.Errorf("Original changed after consuming clone: %d", orders.Get("A"))
	}
	if *orders.Batches("A")[0].Period != 2 {
		t.Error("Original batch period changed")
	}
}

func TestOrders_JSON(t *testing.T) {
	orders := NewOrders()
	_ = orders.Set("A", 2)
	_ = orders.AddAt("A", 3, 7)
	orders.Get("B")

	data, err := json.Marshal(orders)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	decoded := NewOrders()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.Get("A") != 5 || !decoded.Has("B") {
		t.Errorf("Unexpected decoded ledger %s", decoded)
	}
	batches := decoded.Batches("A")
	if len(batches) != 2 || batches[0].Period != nil || *batches[1].Period != 7 {
		t.Errorf("Batches not preserved: %+v", batches)
	}

	bad := []byte(`[{"key":"A","batches":[{"quantity":-2}]}]`)
	if err := json.Unmarshal(bad, NewOrders()); !errors.Is(err, ErrNegativeQuantity) {
		t.Errorf("Expected ErrNegativeQuantity for negative batch, got %v", err)
	}
}
