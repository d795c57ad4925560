package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"poultry-app/types"

	"github.com/shopspring/decimal"
)

// JSONMap stores nested snapshot structures (declared/expected stock, variance)
// as a JSON column so historical settlements stay stable after later ledger
// corrections.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
}

// Settlement is the end-of-day reconciliation record for one store and date.
// Expected values are snapshotted at submission time and never re-derived.
type Settlement struct {
	ID             types.SnowflakeID `json:"id" gorm:"primaryKey"`
	StoreID        uint              `json:"store_id" gorm:"uniqueIndex:idx_settlement_day;not null"`
	SettlementDate time.Time         `json:"settlement_date" gorm:"type:date;uniqueIndex:idx_settlement_day;not null"`
	Status         SettlementStatus  `json:"status" gorm:"type:varchar(20);default:'DRAFT'"`

	DeclaredCash decimal.Decimal `json:"declared_cash" gorm:"type:decimal(12,2);default:0"`
	DeclaredUpi  decimal.Decimal `json:"declared_upi" gorm:"type:decimal(12,2);default:0"`
	DeclaredCard decimal.Decimal `json:"declared_card" gorm:"type:decimal(12,2);default:0"`
	DeclaredBank decimal.Decimal `json:"declared_bank" gorm:"type:decimal(12,2);default:0"`

	DeclaredStock      JSONMap `json:"declared_stock" gorm:"type:json"`
	ExpectedSales      JSONMap `json:"expected_sales" gorm:"type:json"`
	ExpectedStock      JSONMap `json:"expected_stock" gorm:"type:json"`
	CalculatedVariance JSONMap `json:"calculated_variance" gorm:"type:json"`

	ExpenseAmount     decimal.Decimal `json:"expense_amount" gorm:"type:decimal(12,2);default:0"`
	ExpenseStatus     ExpenseStatus   `json:"expense_status" gorm:"type:varchar(20);default:'PENDING'"`
	ExpenseNotes      string          `json:"expense_notes,omitempty"`
	ExpenseReceipts   JSONMap         `json:"expense_receipts,omitempty" gorm:"type:json"`
	ExpenseReviewedBy uint            `json:"expense_reviewed_by,omitempty"`
	ExpenseReviewedAt *time.Time      `json:"expense_reviewed_at,omitempty"`

	SubmittedBy uint       `json:"submitted_by,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ApprovedBy  uint       `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	LockedAt    *time.Time `json:"locked_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AcceptSubmission gates a declaration: the settlement must belong to the
// caller's store, and only DRAFT or SUBMITTED settlements take a
// (re)submission; anything past SUBMITTED is immutable. Rows owned by another
// store read as not found.
func (s *Settlement) AcceptSubmission(storeID uint) error {
	if s.StoreID != storeID {
		return ErrNotFound
	}
	if s.Status != SettlementDraft && s.Status != SettlementSubmitted {
		return StateTransitionErrorf("cannot submit settlement with status %s", s.Status)
	}
	return nil
}

// AcceptExpenseReview gates the expense decision: store-owned, expense still
// PENDING, and the settlement submitted but not yet locked.
func (s *Settlement) AcceptExpenseReview(storeID uint) error {
	if s.StoreID != storeID {
		return ErrNotFound
	}
	if s.Status != SettlementSubmitted && s.Status != SettlementApproved {
		return StateTransitionErrorf("cannot review expense on settlement with status %s", s.Status)
	}
	if s.ExpenseStatus != ExpensePending {
		return StateTransitionErrorf("expense already reviewed as %s", s.ExpenseStatus)
	}
	return nil
}

// NetSubmission is the declared cash net of approved expenses. Rejected
// expenses are excluded from the net.
func (s *Settlement) NetSubmission() decimal.Decimal {
	if s.ExpenseStatus == ExpenseRejected {
		return s.DeclaredCash.Round(2)
	}
	return s.DeclaredCash.Sub(s.ExpenseAmount).Round(2)
}

// DeclaredStockCell is one cell of the manager's physical declaration.
type DeclaredStockCell struct {
	Live      decimal.Decimal `json:"LIVE"`
	LiveCount int             `json:"LIVE_COUNT"`
	Skin      decimal.Decimal `json:"SKIN"`
	Skinless  decimal.Decimal `json:"SKINLESS"`
}

type DeclaredStock struct {
	Broiler    DeclaredStockCell `json:"BROILER"`
	ParentCull DeclaredStockCell `json:"PARENT_CULL"`
}

func (d *DeclaredStock) ByBird(bird BirdType) *DeclaredStockCell {
	if bird == BirdBroiler {
		return &d.Broiler
	}
	return &d.ParentCull
}

func (c *DeclaredStockCell) Get(inv InventoryType) decimal.Decimal {
	switch inv {
	case InvLive:
		return c.Live
	case InvSkin:
		return c.Skin
	default:
		return c.Skinless
	}
}

// SettlementSubmitRequest carries the manager's declarations.
type SettlementSubmitRequest struct {
	DeclaredCash    decimal.Decimal `json:"declared_cash"`
	DeclaredUpi     decimal.Decimal `json:"declared_upi"`
	DeclaredCard    decimal.Decimal `json:"declared_card"`
	DeclaredBank    decimal.Decimal `json:"declared_bank"`
	DeclaredStock   DeclaredStock   `json:"declared_stock"`
	ExpenseAmount   decimal.Decimal `json:"expense_amount"`
	ExpenseNotes    string          `json:"expense_notes,omitempty"`
	ExpenseReceipts []string        `json:"expense_receipts,omitempty"`
}

func (r *SettlementSubmitRequest) Validate() error {
	for name, v := range map[string]decimal.Decimal{
		"declared_cash":  r.DeclaredCash,
		"declared_upi":   r.DeclaredUpi,
		"declared_card":  r.DeclaredCard,
		"declared_bank":  r.DeclaredBank,
		"expense_amount": r.ExpenseAmount,
	} {
		if v.IsNegative() {
			return ValidationErrorf("%s cannot be negative", name)
		}
	}
	return nil
}

// VarianceDetail is declared minus expected for one category. Negative means
// shortage, positive means surplus; either raises an alert but neither blocks
// approval.
type VarianceDetail struct {
	Expected decimal.Decimal `json:"expected"`
	Declared decimal.Decimal `json:"declared"`
	Variance decimal.Decimal `json:"variance"`
	Type     string          `json:"type"` // POSITIVE, NEGATIVE or ZERO
}

// ComputeVariance applies the sign convention variance = declared - expected.
func ComputeVariance(declared, expected decimal.Decimal) VarianceDetail {
	v := declared.Sub(expected)
	typ := "ZERO"
	if v.IsPositive() {
		typ = string(VariancePositive)
	} else if v.IsNegative() {
		typ = string(VarianceNegative)
	}
	return VarianceDetail{Expected: expected, Declared: declared, Variance: v, Type: typ}
}

// ExpectedSales is the system-derived sales totals per settled payment method.
type ExpectedSales map[PaymentMethod]decimal.Decimal

// CashVariances compares the declared amounts to expected sales per method.
func (r *SettlementSubmitRequest) CashVariances(expected ExpectedSales) map[PaymentMethod]VarianceDetail {
	declared := map[PaymentMethod]decimal.Decimal{
		PayCash: r.DeclaredCash,
		PayUpi:  r.DeclaredUpi,
		PayCard: r.DeclaredCard,
		PayBank: r.DeclaredBank,
	}
	out := make(map[PaymentMethod]VarianceDetail, len(declared))
	for _, method := range SettledPaymentMethods {
		out[method] = ComputeVariance(declared[method].Round(2), expected[method].Round(2))
	}
	return out
}

// StockVariances compares the declared physical stock to the ledger-derived
// expected matrix, cell by cell.
func StockVariances(declared *DeclaredStock, expected *StockSummary) map[BirdType]map[InventoryType]VarianceDetail {
	out := make(map[BirdType]map[InventoryType]VarianceDetail, len(BirdTypes))
	for _, bird := range BirdTypes {
		cell := declared.ByBird(bird)
		exp := expected.ByBird(bird)
		out[bird] = make(map[InventoryType]VarianceDetail, len(InventoryTypes))
		for _, inv := range InventoryTypes {
			out[bird][inv] = ComputeVariance(cell.Get(inv).Round(3), exp.Get(inv).Round(3))
		}
	}
	return out
}

// VarianceLog is one non-zero stock variance awaiting manual resolution.
// Approving a positive variance credits the ledger; deducting a negative one
// debits it.
type VarianceLog struct {
	ID             types.SnowflakeID `json:"id" gorm:"primaryKey"`
	SettlementID   types.SnowflakeID `json:"settlement_id" gorm:"index;not null"`
	StoreID        uint              `json:"store_id" gorm:"index;not null"`
	BirdType       BirdType          `json:"bird_type" gorm:"type:varchar(20);not null"`
	InventoryType  InventoryType     `json:"inventory_type" gorm:"type:varchar(20);not null"`
	ExpectedQty    decimal.Decimal   `json:"expected_qty" gorm:"type:decimal(10,3);not null"`
	DeclaredQty    decimal.Decimal   `json:"declared_qty" gorm:"type:decimal(10,3);not null"`
	VarianceQty    decimal.Decimal   `json:"variance_qty" gorm:"type:decimal(10,3);not null"`
	VarianceType   VarianceType      `json:"variance_type" gorm:"type:varchar(20);not null"`
	Status         VarianceLogStatus `json:"status" gorm:"type:varchar(20);default:'PENDING'"`
	ResolvedBy     uint              `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time        `json:"resolved_at,omitempty"`
	ResolutionNote string            `json:"resolution_note,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// AcceptResolution gates a resolution: the log must belong to the caller's
// store, still be PENDING, and the action must match the variance sign. Rows
// owned by another store read as not found.
func (v *VarianceLog) AcceptResolution(storeID uint, approve bool) error {
	if v.StoreID != storeID {
		return ErrNotFound
	}
	if v.Status != VarianceLogPending {
		return StateTransitionErrorf("variance log already resolved as %s", v.Status)
	}
	if approve && v.VarianceType != VariancePositive {
		return StateTransitionErrorf("only POSITIVE variances can be approved")
	}
	if !approve && v.VarianceType != VarianceNegative {
		return StateTransitionErrorf("only NEGATIVE variances can be deducted")
	}
	return nil
}
