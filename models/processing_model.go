package models

import (
	"time"

	"poultry-app/types"

	"github.com/shopspring/decimal"
)

// WastageConfig is a versioned policy row. Rows are never rewritten: a
// material change (percentage or date) is always a new row, and the policy in
// effect on date D is the active row with the latest effective_date <= D.
type WastageConfig struct {
	ID                  types.SnowflakeID `json:"id" gorm:"primaryKey"`
	BirdType            BirdType          `json:"bird_type" gorm:"type:varchar(20);index:idx_wastage_pair;not null"`
	TargetInventoryType InventoryType     `json:"target_inventory_type" gorm:"type:varchar(20);index:idx_wastage_pair;not null"`
	Percentage          decimal.Decimal   `json:"percentage" gorm:"type:decimal(5,2);not null"`
	EffectiveDate       time.Time         `json:"effective_date" gorm:"type:date;not null"`
	IsActive            bool              `json:"is_active" gorm:"default:true"`
	CreatedBy           uint              `json:"created_by"`
	CreatedAt           time.Time         `json:"created_at"`
}

// ApplyRevision folds an upsert into an existing row with the same
// (bird_type, target, effective_date). The percentage is immutable once the
// row exists, because processing entries may already have snapshotted it; a
// different percentage needs a new effective date. Only the active flag moves.
func (w *WastageConfig) ApplyRevision(incoming *WastageConfig) error {
	if !w.Percentage.Equal(incoming.Percentage) {
		return StateTransitionErrorf(
			"wastage percentage for %s/%s effective %s is immutable; use a new effective_date",
			w.BirdType, w.TargetInventoryType, w.EffectiveDate.Format("2006-01-02"))
	}
	w.IsActive = incoming.IsActive
	return nil
}

// ValidatePercentage enforces the [0, 100) policy range at input time.
func ValidatePercentage(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return ValidationErrorf("wastage percentage %s outside [0, 100)", pct.String())
	}
	return nil
}

// PickActiveConfig selects the policy in effect on asOf from candidate rows:
// the active row with the latest effective_date not after asOf. Returns nil
// when no row qualifies.
func PickActiveConfig(rows []WastageConfig, asOf time.Time) *WastageConfig {
	var best *WastageConfig
	day := asOf.Truncate(24 * time.Hour)
	for i := range rows {
		r := &rows[i]
		if !r.IsActive || r.EffectiveDate.After(day) {
			continue
		}
		if best == nil || r.EffectiveDate.After(best.EffectiveDate) {
			best = r
		}
	}
	return best
}

// YieldEstimate is the output of the processing calculator.
type YieldEstimate struct {
	InputWeight       decimal.Decimal `json:"input_weight"`
	WastagePercentage decimal.Decimal `json:"wastage_percentage"`
	WastageWeight     decimal.Decimal `json:"wastage_weight"`
	OutputWeight      decimal.Decimal `json:"output_weight"`
}

// CalculateYield converts live input weight into expected output weight:
// output = input * (1 - pct/100), rounded to 3 decimal places to match the
// scale hardware precision.
func CalculateYield(inputWeight, wastagePct decimal.Decimal) YieldEstimate {
	hundred := decimal.NewFromInt(100)
	output := inputWeight.Mul(hundred.Sub(wastagePct)).Div(hundred).Round(3)
	return YieldEstimate{
		InputWeight:       inputWeight.Round(3),
		WastagePercentage: wastagePct,
		WastageWeight:     inputWeight.Sub(output).Round(3),
		OutputWeight:      output,
	}
}

// ProcessingEntry is one live -> processed conversion event. The wastage
// percentage is snapshotted at creation time; later policy changes never
// alter existing entries.
type ProcessingEntry struct {
	ID                  types.SnowflakeID `json:"id" gorm:"primaryKey"`
	StoreID             uint              `json:"store_id" gorm:"index;not null"`
	ProcessingDate      time.Time         `json:"processing_date" gorm:"type:date;not null"`
	InputBirdType       BirdType          `json:"input_bird_type" gorm:"type:varchar(20);not null"`
	OutputInventoryType InventoryType     `json:"output_inventory_type" gorm:"type:varchar(20);not null"`
	InputWeight         decimal.Decimal   `json:"input_weight" gorm:"type:decimal(10,3);not null"`
	InputBirdCount      int               `json:"input_bird_count"`
	WastagePercentage   decimal.Decimal   `json:"wastage_percentage" gorm:"type:decimal(5,2);not null"`
	EstimatedOutput     decimal.Decimal   `json:"estimated_output_weight" gorm:"type:decimal(10,3);not null"`
	ActualOutput        *decimal.Decimal  `json:"actual_output_weight,omitempty" gorm:"type:decimal(10,3)"`
	OutputWeight        decimal.Decimal   `json:"output_weight" gorm:"type:decimal(10,3);not null"`
	WastageWeight       decimal.Decimal   `json:"wastage_weight" gorm:"type:decimal(10,3);not null"`
	EstimateUsed        bool              `json:"estimate_used"`
	IdempotencyKey      string            `json:"idempotency_key" gorm:"type:varchar(40);uniqueIndex"`
	ProcessedBy         uint              `json:"processed_by"`
	CreatedAt           time.Time         `json:"created_at"`
}

// PostedOutput resolves the weight used for ledger posting: the manager's
// actual weight when supplied, otherwise the policy estimate.
func PostedOutput(estimated decimal.Decimal, actual *decimal.Decimal) (decimal.Decimal, bool) {
	if actual != nil && !actual.IsZero() {
		return actual.Round(3), false
	}
	return estimated.Round(3), true
}

// ProcessingRequest is the creation payload.
type ProcessingRequest struct {
	StoreID             uint             `json:"store_id"`
	ProcessingDate      string           `json:"processing_date,omitempty"`
	InputBirdType       BirdType         `json:"input_bird_type" validate:"required"`
	OutputInventoryType InventoryType    `json:"output_inventory_type" validate:"required"`
	InputWeight         decimal.Decimal  `json:"input_weight" validate:"required"`
	InputBirdCount      int              `json:"input_bird_count,omitempty"`
	ActualOutputWeight  *decimal.Decimal `json:"actual_output_weight,omitempty"`
	IdempotencyKey      string           `json:"idempotency_key,omitempty"`
}

func (r *ProcessingRequest) Validate() error {
	if !r.InputBirdType.Valid() {
		return ValidationErrorf("invalid input_bird_type %q", r.InputBirdType)
	}
	if r.OutputInventoryType == InvLive {
		return ValidationErrorf("output inventory type cannot be LIVE")
	}
	if !r.OutputInventoryType.Valid() {
		return ValidationErrorf("invalid output_inventory_type %q", r.OutputInventoryType)
	}
	if !r.InputWeight.IsPositive() {
		return ValidationErrorf("input_weight must be positive")
	}
	if r.InputBirdCount < 0 {
		return ValidationErrorf("input_bird_count cannot be negative")
	}
	if r.ActualOutputWeight != nil && !r.ActualOutputWeight.IsPositive() {
		return ValidationErrorf("actual_output_weight must be positive when provided")
	}
	return nil
}
