package models

import (
	"fmt"
	"time"

	"poultry-app/types"

	"github.com/shopspring/decimal"
)

// InventoryLedgerEntry is one immutable inventory movement. The ledger is
// append-only: rows are never updated or deleted, and the current balance of a
// (store, bird_type, inventory_type) cell is the NewQuantity of its latest row.
type InventoryLedgerEntry struct {
	ID              types.SnowflakeID `json:"id" gorm:"primaryKey"`
	StoreID         uint              `json:"store_id" gorm:"index:idx_ledger_cell;not null"`
	BirdType        BirdType          `json:"bird_type" gorm:"index:idx_ledger_cell;type:varchar(20);not null"`
	InventoryType   InventoryType     `json:"inventory_type" gorm:"index:idx_ledger_cell;type:varchar(20);not null"`
	QuantityChange  decimal.Decimal   `json:"quantity_change" gorm:"type:decimal(10,3);not null"`
	BirdCountChange int               `json:"bird_count_change"`
	NewQuantity     decimal.Decimal   `json:"new_quantity" gorm:"type:decimal(10,3);not null"`
	NewBirdCount    int               `json:"new_bird_count"`
	ReasonCode      string            `json:"reason_code" gorm:"type:varchar(40);index;not null"`
	RefType         string            `json:"ref_type,omitempty" gorm:"type:varchar(20)"`
	RefID           types.SnowflakeID `json:"ref_id,omitempty" gorm:"default:null"`
	UserID          uint              `json:"user_id"`
	Notes           string            `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// LedgerMovement is a proposed movement before balances are resolved.
type LedgerMovement struct {
	StoreID         uint
	BirdType        BirdType
	InventoryType   InventoryType
	QuantityChange  decimal.Decimal
	BirdCountChange int
	ReasonCode      string
	RefType         string
	RefID           types.SnowflakeID
	UserID          uint
	Notes           string
	// AllowNegative permits the resulting balance to go below zero. Only
	// administrative correction flows set this, and the override is logged.
	AllowNegative bool
}

// Validate checks the movement against the reason code registry.
func (m *LedgerMovement) Validate() error {
	if !m.BirdType.Valid() {
		return ValidationErrorf("invalid bird_type %q", m.BirdType)
	}
	if !m.InventoryType.Valid() {
		return ValidationErrorf("invalid inventory_type %q", m.InventoryType)
	}
	if m.StoreID == 0 {
		return ValidationErrorf("store_id is required")
	}
	info, ok := ReasonCodes[m.ReasonCode]
	if !ok {
		return ValidationErrorf("unknown reason_code %q", m.ReasonCode)
	}
	if info.RequiresRef && m.RefID == 0 {
		return ValidationErrorf("reason_code %s requires a reference", m.ReasonCode)
	}
	if info.Direction == "CREDIT" && m.QuantityChange.IsNegative() {
		return ValidationErrorf("reason_code %s is a credit but quantity_change is negative", m.ReasonCode)
	}
	if info.Direction == "DEBIT" && m.QuantityChange.IsPositive() {
		return ValidationErrorf("reason_code %s is a debit but quantity_change is positive", m.ReasonCode)
	}
	return nil
}

// Apply resolves the movement against the current cell balance and returns the
// entry to persist. A movement that would drive physical stock negative is
// rejected unless AllowNegative is set.
func (m *LedgerMovement) Apply(currentQty decimal.Decimal, currentCount int) (*InventoryLedgerEntry, error) {
	newQty := currentQty.Add(m.QuantityChange)
	if newQty.IsNegative() && !m.AllowNegative {
		return nil, fmt.Errorf("%w: %s %s balance %s cannot absorb %s",
			ErrInsufficientStock, m.BirdType, m.InventoryType,
			currentQty.StringFixed(3), m.QuantityChange.StringFixed(3))
	}

	newCount := currentCount
	if m.InventoryType == InvLive {
		newCount = currentCount + m.BirdCountChange
		if newCount < 0 && !m.AllowNegative {
			return nil, fmt.Errorf("%w: LIVE bird count %d cannot absorb %d",
				ErrInsufficientStock, currentCount, m.BirdCountChange)
		}
	}

	return &InventoryLedgerEntry{
		StoreID:         m.StoreID,
		BirdType:        m.BirdType,
		InventoryType:   m.InventoryType,
		QuantityChange:  m.QuantityChange.Round(3),
		BirdCountChange: m.BirdCountChange,
		NewQuantity:     newQty.Round(3),
		NewBirdCount:    newCount,
		ReasonCode:      m.ReasonCode,
		RefType:         m.RefType,
		RefID:           m.RefID,
		UserID:          m.UserID,
		Notes:           m.Notes,
	}, nil
}

// CellKey identifies the serialization point for concurrent postings.
func (m *LedgerMovement) CellKey() string {
	return LedgerCellKey(m.StoreID, m.BirdType, m.InventoryType)
}

func LedgerCellKey(storeID uint, bird BirdType, inv InventoryType) string {
	return fmt.Sprintf("ledger:%d:%s:%s", storeID, bird, inv)
}

// StockByType is the stock of one bird type broken down by inventory type.
// The bird count only applies to LIVE.
type StockByType struct {
	Live      decimal.Decimal `json:"LIVE"`
	LiveCount int             `json:"LIVE_COUNT"`
	Skin      decimal.Decimal `json:"SKIN"`
	Skinless  decimal.Decimal `json:"SKINLESS"`
}

func NewStockByType() StockByType {
	zero := decimal.Zero.Round(3)
	return StockByType{Live: zero, Skin: zero, Skinless: zero}
}

func (s *StockByType) Get(inv InventoryType) decimal.Decimal {
	switch inv {
	case InvLive:
		return s.Live
	case InvSkin:
		return s.Skin
	default:
		return s.Skinless
	}
}

func (s *StockByType) Set(inv InventoryType, qty decimal.Decimal, count int) {
	switch inv {
	case InvLive:
		s.Live = qty
		s.LiveCount = count
	case InvSkin:
		s.Skin = qty
	case InvSkinless:
		s.Skinless = qty
	}
}

// StockSummary is the derived stock matrix for one store. It is never
// persisted; it is read from the ledger with an as_of stamp.
type StockSummary struct {
	StoreID    uint        `json:"store_id"`
	Broiler    StockByType `json:"BROILER"`
	ParentCull StockByType `json:"PARENT_CULL"`
	AsOf       time.Time   `json:"as_of"`
}

func NewStockSummary(storeID uint) *StockSummary {
	return &StockSummary{
		StoreID:    storeID,
		Broiler:    NewStockByType(),
		ParentCull: NewStockByType(),
		AsOf:       time.Now().UTC(),
	}
}

func (s *StockSummary) ByBird(bird BirdType) *StockByType {
	if bird == BirdBroiler {
		return &s.Broiler
	}
	return &s.ParentCull
}

// ManualAdjustmentRequest is the admin stock correction payload. OVERWRITE
// carries absolute targets, ADJUST carries signed deltas.
type ManualAdjustmentRequest struct {
	StoreID           uint             `json:"store_id"`
	BirdType          BirdType         `json:"bird_type" validate:"required"`
	InventoryType     InventoryType    `json:"inventory_type" validate:"required"`
	Mode              AdjustmentMode   `json:"mode" validate:"required"`
	QuantityChange    *decimal.Decimal `json:"quantity_change,omitempty"`
	BirdCountChange   *int             `json:"bird_count_change,omitempty"`
	AbsoluteQuantity  *decimal.Decimal `json:"absolute_quantity,omitempty"`
	AbsoluteBirdCount *int             `json:"absolute_bird_count,omitempty"`
	ReasonCode        string           `json:"reason_code" validate:"required"`
	Notes             string           `json:"notes,omitempty"`
	AllowNegative     bool             `json:"allow_negative,omitempty"`
}

// NormalizeReasonCode mirrors the intake rule for manual entries: the reason
// code always matches the sign of the movement, OPENING_BALANCE stays as-is
// for credits.
func NormalizeReasonCode(reason string, change decimal.Decimal) string {
	if change.IsPositive() || change.IsZero() {
		if reason == ReasonOpeningBalance {
			return reason
		}
		return ReasonAdjustmentCredit
	}
	return ReasonAdjustmentDebit
}

// OverwriteDelta computes the ledger movement that sets a cell to an absolute
// quantity. Writing the delta keeps the ledger the only source of truth; an
// overwrite matching the current balance still logs a zero-change entry.
func OverwriteDelta(target, current decimal.Decimal) decimal.Decimal {
	return target.Sub(current).Round(3)
}
