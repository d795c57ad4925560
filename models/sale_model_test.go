package models

import "testing"

func TestSaleRequestValidateAndTotal(t *testing.T) {
	req := SaleRequest{
		PaymentMethod: PayCash,
		Items: []SaleItemRequest{
			{BirdType: BirdBroiler, InventoryType: InvSkin, Weight: d("2.500"), Rate: d("180")},
			{BirdType: BirdBroiler, InventoryType: InvLive, Weight: d("1.250"), BirdCount: 1, Rate: d("120")},
		},
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("valid sale rejected: %v", err)
	}
	// 2.5*180 + 1.25*120 = 450 + 150
	if got := req.Total(); got.StringFixed(2) != "600.00" {
		t.Fatalf("Total = %s, want 600.00", got)
	}

	bad := req
	bad.Items = nil
	if err := bad.Validate(); err == nil {
		t.Fatal("empty sale accepted")
	}

	bad = req
	bad.PaymentMethod = "IOU"
	if err := bad.Validate(); err == nil {
		t.Fatal("unknown payment method accepted")
	}

	bad = req
	bad.Items = []SaleItemRequest{{BirdType: BirdBroiler, InventoryType: InvSkin, Weight: d("0"), Rate: d("180")}}
	if err := bad.Validate(); err == nil {
		t.Fatal("zero weight item accepted")
	}
}
