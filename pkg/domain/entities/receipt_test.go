package entities

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestReceipt_Validation(t *testing.T) {
	r, err := NewReceipt("B", 2, 7)
	if err != nil {
		t.Fatalf("Expected valid receipt creation to succeed: %v", err)
	}
	if r.SKU != "B" || r.ETA != 2 || r.Quantity != 7 {
		t.Errorf("Unexpected receipt %+v", r)
	}

	testCases := []struct {
		name     string
		sku      NodeID
		eta      int
		quantity Quantity
	}{
		{"empty sku", "", 1, 1},
		{"negative eta", "B", -1, 1},
		{"zero quantity", "B", 1, 0},
		{"negative quantity", "B", 1, -4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReceipt(tc.sku, tc.eta, tc.quantity)
			if !errors.Is(err, ErrInvalidReceipt) {
				t.Errorf("Expected ErrInvalidReceipt, got %v", err)
			}
		})
	}
}

func TestPipeline_UpdateAndPop(t *testing.T) {
	p := NewPipeline()
	p.AddReceipt(Receipt{SKU: "A", ETA: 1, Quantity: 1})
	p.AddReceipt(Receipt{SKU: "B", ETA: 3, Quantity: 2})
	p.AddReceipt(Receipt{SKU: "C", ETA: 0, Quantity: 3})
	p.AddReceipt(Receipt{SKU: "D", ETA: 2, Quantity: 4})

	p.Update()
	received := p.PopReceived()

	if len(received) != 2 || received[0].SKU != "A" || received[1].SKU != "C" {
		t.Fatalf("Expected A and C to arrive, got %+v", received)
	}

	remaining := p.Receipts()
	if len(remaining) != 2 || remaining[0].SKU != "B" || remaining[1].SKU != "D" {
		t.Fatalf("Expected B then D to remain, got %+v", remaining)
	}
	if remaining[0].ETA != 2 || remaining[1].ETA != 1 {
		t.Errorf("Expected ETAs 2 and 1, got %d and %d", remaining[0].ETA, remaining[1].ETA)
	}

	if again := p.PopReceived(); len(again) != 0 {
		t.Errorf("Expected second pop to return nothing, got %+v", again)
	}
}

func TestPipeline_ContentsAndTotal(t *testing.T) {
	p := NewPipeline()
	p.AddReceipt(Receipt{SKU: "A", ETA: 1, Quantity: 2})
	p.AddReceipt(Receipt{SKU: "A", ETA: 2, Quantity: 3})
	p.AddReceipt(Receipt{SKU: "B", ETA: 2, Quantity: 1})

	contents := p.Contents()
	if contents.Get("A") != 5 || contents.Get("B") != 1 {
		t.Errorf("Unexpected contents %v", contents)
	}
	if p.Total() != 6 {
		t.Errorf("Expected total 6, got %d", p.Total())
	}

	p.Clear()
	if p.Len() != 0 {
		t.Error("Expected empty pipeline after Clear")
	}
}

func TestPipeline_JSON(t *testing.T) {
	p := NewPipeline()
	p.AddReceipt(Receipt{SKU: "A", ETA: 2, Quantity: 5})

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `[{"sku_code":"A","eta":2,"quantity":5}]` {
		t.Errorf("Unexpected encoding %s", data)
	}

	decoded := NewPipeline()
	if err := json.Unmarshal(data, decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Len() != 1 || decoded.Receipts()[0] != p.Receipts()[0] {
		t.Errorf("Round trip mismatch: %+v", decoded.Receipts())
	}

	if err := json.Unmarshal([]byte(`[{"sku_code":"A","eta":1,"quantity":0}]`), NewPipeline()); !errors.Is(err, ErrInvalidReceipt) {
		t.Errorf("Expected ErrInvalidReceipt, got %v", err)
	}
}
