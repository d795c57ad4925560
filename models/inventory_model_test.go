package models

import (
	"encoding/json"
	"errors"
	"testing"

	"poultry-app/types"
)

func TestLedgerMovementValidate(t *testing.T) {
	base := LedgerMovement{
		StoreID:        1,
		BirdType:       BirdBroiler,
		InventoryType:  InvLive,
		QuantityChange: d("100"),
		ReasonCode:     ReasonPurchaseReceived,
		RefID:          types.SnowflakeID(42),
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid movement rejected: %v", err)
	}

	m := base
	m.ReasonCode = "SHRUG"
	if err := m.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown reason code: got %v", err)
	}

	// Credits cannot carry negative quantities and vice versa.
	m = base
	m.QuantityChange = d("-100")
	if err := m.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative credit: got %v", err)
	}

	m = base
	m.ReasonCode = ReasonSaleDebit
	if err := m.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("positive debit: got %v", err)
	}

	// Referencing reasons need a ref id; manual adjustments don't.
	m = base
	m.RefID = 0
	if err := m.Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing ref: got %v", err)
	}

	m = base
	m.ReasonCode = ReasonAdjustmentCredit
	m.RefID = 0
	if err := m.Validate(); err != nil {
		t.Fatalf("manual adjustment without ref rejected: %v", err)
	}
}

func TestLedgerMovementApply(t *testing.T) {
	m := LedgerMovement{
		StoreID:         1,
		BirdType:        BirdBroiler,
		InventoryType:   InvLive,
		QuantityChange:  d("-200"),
		BirdCountChange: -10,
		ReasonCode:      ReasonSaleDebit,
	}

	// 50kg on hand cannot absorb a 200kg debit.
	if _, err := m.Apply(d("50.000"), 25); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("oversell: got %v, want ErrInsufficientStock", err)
	}

	// The admin override allows the balance to go negative.
	m.AllowNegative = true
	entry, err := m.Apply(d("50.000"), 25)
	if err != nil {
		t.Fatalf("override apply failed: %v", err)
	}
	if entry.NewQuantity.StringFixed(3) != "-150.000" {
		t.Fatalf("override balance = %s, want -150.000", entry.NewQuantity)
	}
	if entry.NewBirdCount != 15 {
		t.Fatalf("override bird count = %d, want 15", entry.NewBirdCount)
	}

	// LIVE bird counts are guarded the same way as weights.
	m = LedgerMovement{
		StoreID:         1,
		BirdType:        BirdBroiler,
		InventoryType:   InvLive,
		QuantityChange:  d("-10"),
		BirdCountChange: -30,
		ReasonCode:      ReasonSaleDebit,
	}
	if _, err := m.Apply(d("50.000"), 25); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("bird count oversell: got %v, want ErrInsufficientStock", err)
	}

	// Non-LIVE cells ignore the bird count entirely.
	m = LedgerMovement{
		StoreID:        1,
		BirdType:       BirdBroiler,
		InventoryType:  InvSkin,
		QuantityChange: d("5.123"),
		ReasonCode:     ReasonAdjustmentCredit,
	}
	entry, err = m.Apply(d("10.000"), 0)
	if err != nil {
		t.Fatalf("skin credit failed: %v", err)
	}
	if entry.NewQuantity.StringFixed(3) != "15.123" {
		t.Fatalf("skin balance = %s, want 15.123", entry.NewQuantity)
	}
}

func TestNormalizeReasonCode(t *testing.T) {
	if got := NormalizeReasonCode(ReasonAdjustmentDebit, d("5")); got != ReasonAdjustmentCredit {
		t.Fatalf("positive change normalized to %s, want %s", got, ReasonAdjustmentCredit)
	}
	if got := NormalizeReasonCode(ReasonAdjustmentCredit, d("-5")); got != ReasonAdjustmentDebit {
		t.Fatalf("negative change normalized to %s, want %s", got, ReasonAdjustmentDebit)
	}
	if got := NormalizeReasonCode(ReasonOpeningBalance, d("5")); got != ReasonOpeningBalance {
		t.Fatalf("opening balance normalized to %s, want it kept", got)
	}
}

func TestOverwriteDelta(t *testing.T) {
	if got := OverwriteDelta(d("100"), d("80.5")); got.StringFixed(3) != "19.500" {
		t.Fatalf("OverwriteDelta(100, 80.5) = %s, want 19.500", got)
	}
	if got := OverwriteDelta(d("50"), d("75")); got.StringFixed(3) != "-25.000" {
		t.Fatalf("OverwriteDelta(50, 75) = %s, want -25.000", got)
	}
	// Matching target still logs a zero-change entry.
	if got := OverwriteDelta(d("60"), d("60")); !got.IsZero() {
		t.Fatalf("OverwriteDelta(60, 60) = %s, want 0", got)
	}
}

func TestLedgerCellKey(t *testing.T) {
	if got := LedgerCellKey(3, BirdParentCull, InvSkinless); got != "ledger:3:PARENT_CULL:SKINLESS" {
		t.Fatalf("LedgerCellKey = %q", got)
	}
}

func TestLedgerEntryJSONRoundTrip(t *testing.T) {
	entry := InventoryLedgerEntry{
		ID:             types.SnowflakeID(1844674407370955161),
		StoreID:        1,
		BirdType:       BirdBroiler,
		InventoryType:  InvSkinless,
		QuantityChange: d("-12.345"),
		NewQuantity:    d("87.655"),
		ReasonCode:     ReasonSaleDebit,
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		t.Fatal(err)
	}

	var back InventoryLedgerEntry
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back.ID != entry.ID {
		t.Fatalf("ID round trip: got %d, want %d", back.ID, entry.ID)
	}
	if !back.QuantityChange.Equal(entry.QuantityChange) {
		t.Fatalf("QuantityChange round trip: got %s, want %s", back.QuantityChange, entry.QuantityChange)
	}

	// Snowflake IDs travel as strings so javascript clients keep precision.
	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err != nil {
		t.Fatal(err)
	}
	if string(asMap["id"]) != `"1844674407370955161"` {
		t.Fatalf("id serialized as %s, want quoted string", asMap["id"])
	}
}
