package models

import (
	"time"

	"poultry-app/types"

	"github.com/shopspring/decimal"
)

// Purchase is a live-bird receipt from a supplier. Committing it credits the
// LIVE ledger with weight and bird count.
type Purchase struct {
	ID           types.SnowflakeID `json:"id" gorm:"primaryKey"`
	StoreID      uint              `json:"store_id" gorm:"index;not null"`
	PurchaseDate time.Time         `json:"purchase_date" gorm:"type:date;index;not null"`
	SupplierName string            `json:"supplier_name" gorm:"not null"`
	BirdType     BirdType          `json:"bird_type" gorm:"type:varchar(20);not null"`
	Weight       decimal.Decimal   `json:"weight" gorm:"type:decimal(10,3);not null"`
	BirdCount    int               `json:"bird_count" gorm:"not null"`
	Rate         decimal.Decimal   `json:"rate" gorm:"type:decimal(12,2);not null"`
	Amount       decimal.Decimal   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Status       PurchaseStatus    `json:"status" gorm:"type:varchar(20);default:'DRAFT'"`
	CreatedBy    uint              `json:"created_by"`
	CommittedAt  *time.Time        `json:"committed_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// AcceptCommit gates the commit: the purchase must belong to the caller's
// store and still be DRAFT. Rows owned by another store read as not found.
func (p *Purchase) AcceptCommit(storeID uint) error {
	if p.StoreID != storeID {
		return ErrNotFound
	}
	if p.Status != PurchaseDraft {
		return StateTransitionErrorf("cannot commit purchase with status %s", p.Status)
	}
	return nil
}

type PurchaseRequest struct {
	StoreID      uint            `json:"store_id"`
	PurchaseDate string          `json:"purchase_date,omitempty"`
	SupplierName string          `json:"supplier_name" validate:"required"`
	BirdType     BirdType        `json:"bird_type" validate:"required"`
	Weight       decimal.Decimal `json:"weight" validate:"required"`
	BirdCount    int             `json:"bird_count" validate:"required"`
	Rate         decimal.Decimal `json:"rate" validate:"required"`
}

func (r *PurchaseRequest) Validate() error {
	if r.SupplierName == "" {
		return ValidationErrorf("supplier_name is required")
	}
	if !r.BirdType.Valid() {
		return ValidationErrorf("invalid bird_type %q", r.BirdType)
	}
	if !r.Weight.IsPositive() {
		return ValidationErrorf("weight must be positive")
	}
	if r.BirdCount <= 0 {
		return ValidationErrorf("bird_count must be positive")
	}
	if r.Rate.IsNegative() {
		return ValidationErrorf("rate cannot be negative")
	}
	return nil
}
