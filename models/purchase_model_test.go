package models

import (
	"errors"
	"testing"
)

func TestPurchaseAcceptCommit(t *testing.T) {
	p := Purchase{StoreID: 1, Status: PurchaseDraft}
	if err := p.AcceptCommit(1); err != nil {
		t.Fatalf("draft commit rejected: %v", err)
	}

	// Another store's purchase reads as not found.
	if err := p.AcceptCommit(2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-store commit: got %v, want ErrNotFound", err)
	}

	p.Status = PurchaseCommitted
	if err := p.AcceptCommit(1); !errors.Is(err, ErrStateTransition) {
		t.Fatalf("double commit: got %v, want ErrStateTransition", err)
	}
}

func TestPurchaseRequestValidate(t *testing.T) {
	ok := PurchaseRequest{
		SupplierName: "Raju Farms",
		BirdType:     BirdBroiler,
		Weight:       d("250.000"),
		BirdCount:    120,
		Rate:         d("95"),
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid purchase rejected: %v", err)
	}

	bad := ok
	bad.BirdCount = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("zero bird count accepted")
	}

	bad = ok
	bad.Weight = d("0")
	if err := bad.Validate(); err == nil {
		t.Fatal("zero weight accepted")
	}
}
