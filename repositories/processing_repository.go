package repositories

import (
	"context"
	"errors"
	"time"

	"poultry-app/database"
	"poultry-app/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProcessingRepository converts live-bird weight into processed output and
// posts the matching ledger legs.
type ProcessingRepository struct {
	db      *gorm.DB
	ledger  *LedgerRepository
	wastage *WastageRepository
}

func NewProcessingRepository(db *gorm.DB, locker database.CellLocker) *ProcessingRepository {
	return &ProcessingRepository{
		db:      db,
		ledger:  NewLedgerRepository(db, locker),
		wastage: NewWastageRepository(db),
	}
}

// EstimateYield looks up the active wastage policy for the pair and applies
// the yield formula at 3-decimal kilogram precision.
func (r *ProcessingRepository) EstimateYield(inputWeight decimal.Decimal, bird models.BirdType, output models.InventoryType, asOf time.Time) (*models.YieldEstimate, error) {
	if !inputWeight.IsPositive() {
		return nil, models.ValidationErrorf("input_weight must be positive")
	}
	if output == models.InvLive {
		return nil, models.ValidationErrorf("output type cannot be LIVE")
	}

	cfg, err := r.wastage.GetActive(bird, output, asOf)
	if err != nil {
		return nil, err
	}

	estimate := models.CalculateYield(inputWeight, cfg.Percentage)
	return &estimate, nil
}

// CreateEntry records one conversion. The wastage percentage is snapshotted
// now, the LIVE debit and output credit are posted in one transaction, and a
// repeated idempotency key returns the original entry untouched.
func (r *ProcessingRepository) CreateEntry(ctx context.Context, req *models.ProcessingRequest, userID uint) (*models.ProcessingEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	processingDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.ProcessingDate != "" {
		d, err := time.Parse("2006-01-02", req.ProcessingDate)
		if err != nil {
			return nil, models.ValidationErrorf("invalid processing_date %q", req.ProcessingDate)
		}
		processingDate = d
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	} else if existing, err := r.findByIdempotencyKey(key); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	estimate, err := r.EstimateYield(req.InputWeight, req.InputBirdType, req.OutputInventoryType, processingDate)
	if err != nil {
		return nil, err
	}

	postedOutput, estimateUsed := models.PostedOutput(estimate.OutputWeight, req.ActualOutputWeight)

	entry := &models.ProcessingEntry{
		StoreID:             req.StoreID,
		ProcessingDate:      processingDate,
		InputBirdType:       req.InputBirdType,
		OutputInventoryType: req.OutputInventoryType,
		InputWeight:         req.InputWeight.Round(3),
		InputBirdCount:      req.InputBirdCount,
		WastagePercentage:   estimate.WastagePercentage,
		EstimatedOutput:     estimate.OutputWeight,
		ActualOutput:        req.ActualOutputWeight,
		OutputWeight:        postedOutput,
		WastageWeight:       req.InputWeight.Sub(postedOutput).Round(3),
		EstimateUsed:        estimateUsed,
		IdempotencyKey:      key,
		ProcessedBy:         userID,
	}

	cells := []string{
		models.LedgerCellKey(req.StoreID, req.InputBirdType, models.InvLive),
		models.LedgerCellKey(req.StoreID, req.InputBirdType, req.OutputInventoryType),
	}

	// Both legs and the entry itself commit or roll back together, with both
	// cell locks held until the commit lands.
	err = r.ledger.Transact(ctx, cells, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		debit := &models.LedgerMovement{
			StoreID:         req.StoreID,
			BirdType:        req.InputBirdType,
			InventoryType:   models.InvLive,
			QuantityChange:  entry.InputWeight.Neg(),
			BirdCountChange: -req.InputBirdCount,
			ReasonCode:      models.ReasonProcessingDebit,
			RefType:         models.RefTypeProcessing,
			RefID:           entry.ID,
			UserID:          userID,
		}
		if _, err := r.ledger.AppendTx(ctx, tx, debit); err != nil {
			return err
		}

		credit := &models.LedgerMovement{
			StoreID:        req.StoreID,
			BirdType:       req.InputBirdType,
			InventoryType:  req.OutputInventoryType,
			QuantityChange: postedOutput,
			ReasonCode:     models.ReasonProcessingCredit,
			RefType:        models.RefTypeProcessing,
			RefID:          entry.ID,
			UserID:         userID,
		}
		if _, err := r.ledger.AppendTx(ctx, tx, credit); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if estimateUsed {
		logrus.WithFields(logrus.Fields{
			"processing_id": entry.ID,
			"store_id":      req.StoreID,
			"output_weight": postedOutput.StringFixed(3),
		}).Info("processing entry posted from estimate, no actual weight confirmed")
	}

	return entry, nil
}

func (r *ProcessingRepository) findByIdempotencyKey(key string) (*models.ProcessingEntry, error) {
	var existing models.ProcessingEntry
	err := r.db.Where("idempotency_key = ?", key).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// ProcessingFilter narrows List results.
type ProcessingFilter struct {
	BirdType   models.BirdType
	OutputType models.InventoryType
	FromDate   *time.Time
	ToDate     *time.Time
}

func (r *ProcessingRepository) List(storeID uint, filter ProcessingFilter, limit, offset int) ([]models.ProcessingEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := r.db.Where("store_id = ?", storeID)
	if filter.BirdType != "" {
		q = q.Where("input_bird_type = ?", filter.BirdType)
	}
	if filter.OutputType != "" {
		q = q.Where("output_inventory_type = ?", filter.OutputType)
	}
	if filter.FromDate != nil {
		q = q.Where("processing_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("processing_date <= ?", *filter.ToDate)
	}

	var entries []models.ProcessingEntry
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, err
}
