package models

import (
	"time"

	"poultry-app/types"

	"github.com/shopspring/decimal"
)

// Sale is a customer transaction. Committing a sale posts SALE_DEBIT ledger
// entries for every item, atomically with the sale row.
type Sale struct {
	ID            types.SnowflakeID `json:"id" gorm:"primaryKey"`
	StoreID       uint              `json:"store_id" gorm:"index;not null"`
	SaleDate      time.Time         `json:"sale_date" gorm:"type:date;index;not null"`
	SaleType      SaleType          `json:"sale_type" gorm:"type:varchar(10);default:'POS'"`
	PaymentMethod PaymentMethod     `json:"payment_method" gorm:"type:varchar(10);not null"`
	TotalAmount   decimal.Decimal   `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	CustomerName  string            `json:"customer_name,omitempty"`
	SoldBy        uint              `json:"sold_by"`
	Items         []SaleItem        `json:"items" gorm:"foreignKey:SaleID"`
	CreatedAt     time.Time         `json:"created_at"`
}

type SaleItem struct {
	ID            types.SnowflakeID `json:"id" gorm:"primaryKey"`
	SaleID        types.SnowflakeID `json:"sale_id" gorm:"index;not null"`
	BirdType      BirdType          `json:"bird_type" gorm:"type:varchar(20);not null"`
	InventoryType InventoryType     `json:"inventory_type" gorm:"type:varchar(20);not null"`
	Weight        decimal.Decimal   `json:"weight" gorm:"type:decimal(10,3);not null"`
	BirdCount     int               `json:"bird_count"`
	Rate          decimal.Decimal   `json:"rate" gorm:"type:decimal(12,2);not null"`
	Amount        decimal.Decimal   `json:"amount" gorm:"type:decimal(12,2);not null"`
}

type SaleItemRequest struct {
	BirdType      BirdType        `json:"bird_type" validate:"required"`
	InventoryType InventoryType   `json:"inventory_type" validate:"required"`
	Weight        decimal.Decimal `json:"weight" validate:"required"`
	BirdCount     int             `json:"bird_count,omitempty"`
	Rate          decimal.Decimal `json:"rate" validate:"required"`
}

type SaleRequest struct {
	StoreID       uint              `json:"store_id"`
	SaleDate      string            `json:"sale_date,omitempty"`
	SaleType      SaleType          `json:"sale_type,omitempty"`
	PaymentMethod PaymentMethod     `json:"payment_method" validate:"required"`
	CustomerName  string            `json:"customer_name,omitempty"`
	Items         []SaleItemRequest `json:"items" validate:"required"`
}

func (r *SaleRequest) Validate() error {
	if !r.PaymentMethod.Valid() {
		return ValidationErrorf("invalid payment_method %q", r.PaymentMethod)
	}
	if len(r.Items) == 0 {
		return ValidationErrorf("sale must have at least one item")
	}
	for i, item := range r.Items {
		if !item.BirdType.Valid() {
			return ValidationErrorf("item %d: invalid bird_type %q", i, item.BirdType)
		}
		if !item.InventoryType.Valid() {
			return ValidationErrorf("item %d: invalid inventory_type %q", i, item.InventoryType)
		}
		if !item.Weight.IsPositive() {
			return ValidationErrorf("item %d: weight must be positive", i)
		}
		if item.Rate.IsNegative() {
			return ValidationErrorf("item %d: rate cannot be negative", i)
		}
		if item.BirdCount < 0 {
			return ValidationErrorf("item %d: bird_count cannot be negative", i)
		}
	}
	return nil
}

// Total sums item weights times rates at 2-decimal currency precision.
func (r *SaleRequest) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.Weight.Mul(item.Rate))
	}
	return total.Round(2)
}
