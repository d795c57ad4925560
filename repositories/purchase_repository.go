package repositories

import (
	"context"
	"errors"
	"time"

	"poultry-app/database"
	"poultry-app/models"
	"poultry-app/types"

	"gorm.io/gorm"
)

type PurchaseRepository struct {
	db     *gorm.DB
	ledger *LedgerRepository
}

func NewPurchaseRepository(db *gorm.DB, locker database.CellLocker) *PurchaseRepository {
	return &PurchaseRepository{db: db, ledger: NewLedgerRepository(db, locker)}
}

// Create stores a DRAFT purchase. Stock moves only on commit.
func (r *PurchaseRepository) Create(req *models.PurchaseRequest, userID uint) (*models.Purchase, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	purchaseDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.PurchaseDate != "" {
		d, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			return nil, models.ValidationErrorf("invalid purchase_date %q", req.PurchaseDate)
		}
		purchaseDate = d
	}

	p := &models.Purchase{
		StoreID:      req.StoreID,
		PurchaseDate: purchaseDate,
		SupplierName: req.SupplierName,
		BirdType:     req.BirdType,
		Weight:       req.Weight.Round(3),
		BirdCount:    req.BirdCount,
		Rate:         req.Rate.Round(2),
		Amount:       req.Weight.Mul(req.Rate).Round(2),
		Status:       models.PurchaseDraft,
		CreatedBy:    userID,
	}
	if err := r.db.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Commit posts the PURCHASE_RECEIVED LIVE credit and marks the purchase
// COMMITTED, atomically. Only DRAFT purchases of the caller's store commit.
func (r *PurchaseRepository) Commit(ctx context.Context, id types.SnowflakeID, storeID uint, userID uint) (*models.Purchase, error) {
	var p models.Purchase
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if err := p.AcceptCommit(storeID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cell := models.LedgerCellKey(p.StoreID, p.BirdType, models.InvLive)
	err := r.ledger.Transact(ctx, []string{cell}, func(ctx context.Context, tx *gorm.DB) error {
		mv := &models.LedgerMovement{
			StoreID:         p.StoreID,
			BirdType:        p.BirdType,
			InventoryType:   models.InvLive,
			QuantityChange:  p.Weight,
			BirdCountChange: p.BirdCount,
			ReasonCode:      models.ReasonPurchaseReceived,
			RefType:         models.RefTypePurchase,
			RefID:           p.ID,
			UserID:          userID,
		}
		if _, err := r.ledger.AppendTx(ctx, tx, mv); err != nil {
			return err
		}

		res := tx.Model(&models.Purchase{}).
			Where("id = ? AND status = ?", p.ID, models.PurchaseDraft).
			Updates(map[string]interface{}{
				"status":       models.PurchaseCommitted,
				"committed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.StateTransitionErrorf("purchase was committed concurrently")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.Status = models.PurchaseCommitted
	p.CommittedAt = &now
	return &p, nil
}

func (r *PurchaseRepository) List(storeID uint, status models.PurchaseStatus, limit, offset int) ([]models.Purchase, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.db.Where("store_id = ?", storeID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []models.Purchase
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}
