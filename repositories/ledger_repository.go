package repositories

import (
	"context"
	"errors"
	"sort"
	"time"

	"poultry-app/database"
	"poultry-app/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LedgerRepository is the single mutation path for stock. Every balance change
// in the system goes through Append; nothing else writes balances.
type LedgerRepository struct {
	db     *gorm.DB
	locker database.CellLocker
}

func NewLedgerRepository(db *gorm.DB, locker database.CellLocker) *LedgerRepository {
	return &LedgerRepository{db: db, locker: locker}
}

const appendRetries = 3

// Append serializes on the (store, bird_type, inventory_type) cell, resolves
// the latest balance, and persists the movement with its snapshot balance.
// Lock contention is retried a bounded number of times before surfacing a
// conflict to the caller.
func (r *LedgerRepository) Append(ctx context.Context, mv *models.LedgerMovement) (*models.InventoryLedgerEntry, error) {
	return r.AppendTx(ctx, r.db, mv)
}

// Transact runs fn inside one database transaction while holding the lock of
// every listed cell for the whole transaction, commit included. Multi-leg
// postings must open their transaction through here: a lock released before
// the enclosing commit would let a concurrent writer read the last committed
// balance and overwrite the in-flight leg.
func (r *LedgerRepository) Transact(ctx context.Context, cellKeys []string, fn func(ctx context.Context, tx *gorm.DB) error) error {
	var lastErr error
	for attempt := 0; attempt < appendRetries; attempt++ {
		err := withCellLocks(ctx, r.locker, cellKeys, func(ctx context.Context) error {
			return r.db.Transaction(func(tx *gorm.DB) error {
				return fn(ctx, tx)
			})
		})
		if err == nil || !errors.Is(err, models.ErrConcurrencyConflict) {
			return err
		}
		lastErr = err
		time.Sleep(time.Duration(attempt+1) * 25 * time.Millisecond)
	}
	return lastErr
}

// withCellLocks acquires the keys deduplicated and in sorted order (so two
// postings touching the same cells cannot deadlock), runs fn with the held
// set recorded in its context, and releases in reverse order only after fn
// returns.
func withCellLocks(ctx context.Context, locker database.CellLocker, cellKeys []string, fn func(ctx context.Context) error) error {
	sorted := append([]string(nil), cellKeys...)
	sort.Strings(sorted)
	keys := sorted[:0]
	for i, k := range sorted {
		if i == 0 || k != sorted[i-1] {
			keys = append(keys, k)
		}
	}

	unlocks := make([]database.Unlocker, 0, len(keys))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			_ = unlocks[i].Release(ctx)
		}
	}
	for _, key := range keys {
		u, err := locker.Lock(ctx, key)
		if err != nil {
			release()
			return err
		}
		unlocks = append(unlocks, u)
	}
	defer release()

	return fn(withLockedCells(ctx, keys))
}

// lockedCellsCtxKey carries the set of cells an enclosing Transact already
// holds, so AppendTx legs inside the transaction do not re-acquire them.
type lockedCellsCtxKey struct{}

func withLockedCells(ctx context.Context, keys []string) context.Context {
	held := make(map[string]bool, len(keys))
	for k := range lockedCells(ctx) {
		held[k] = true
	}
	for _, k := range keys {
		held[k] = true
	}
	return context.WithValue(ctx, lockedCellsCtxKey{}, held)
}

func lockedCells(ctx context.Context) map[string]bool {
	held, _ := ctx.Value(lockedCellsCtxKey{}).(map[string]bool)
	return held
}

// AppendTx is Append inside an existing transaction. Multi-leg callers must
// open that transaction through Transact, listing every touched cell, so the
// locks outlive the commit.
func (r *LedgerRepository) AppendTx(ctx context.Context, tx *gorm.DB, mv *models.LedgerMovement) (*models.InventoryLedgerEntry, error) {
	if err := mv.Validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < appendRetries; attempt++ {
		entry, err := r.appendOnce(ctx, tx, mv)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, models.ErrConcurrencyConflict) {
			return nil, err
		}
		lastErr = err
		time.Sleep(time.Duration(attempt+1) * 25 * time.Millisecond)
	}
	return nil, lastErr
}

func (r *LedgerRepository) appendOnce(ctx context.Context, tx *gorm.DB, mv *models.LedgerMovement) (*models.InventoryLedgerEntry, error) {
	if !lockedCells(ctx)[mv.CellKey()] {
		unlock, err := r.locker.Lock(ctx, mv.CellKey())
		if err != nil {
			return nil, err
		}
		defer unlock.Release(ctx)
	}

	qty, count, err := r.cellBalance(tx, mv.StoreID, mv.BirdType, mv.InventoryType, nil)
	if err != nil {
		return nil, err
	}

	entry, err := mv.Apply(qty, count)
	if err != nil {
		return nil, err
	}

	if mv.AllowNegative && entry.NewQuantity.IsNegative() {
		logrus.WithFields(logrus.Fields{
			"store_id":       mv.StoreID,
			"bird_type":      mv.BirdType,
			"inventory_type": mv.InventoryType,
			"new_quantity":   entry.NewQuantity.StringFixed(3),
			"user_id":        mv.UserID,
		}).Warn("negative stock override applied")
	}

	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// cellBalance reads the snapshot balance of the latest entry for a cell,
// optionally bounded to entries created before a cutoff.
func (r *LedgerRepository) cellBalance(tx *gorm.DB, storeID uint, bird models.BirdType, inv models.InventoryType, before *time.Time) (decimal.Decimal, int, error) {
	var last models.InventoryLedgerEntry
	q := tx.Where("store_id = ? AND bird_type = ? AND inventory_type = ?", storeID, bird, inv)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	err := q.Order("created_at DESC, id DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, 0, nil
	}
	if err != nil {
		return decimal.Zero, 0, err
	}
	return last.NewQuantity, last.NewBirdCount, nil
}

// CurrentStock derives the stock matrix for a store from the latest ledger
// entry of every cell.
func (r *LedgerRepository) CurrentStock(storeID uint) (*models.StockSummary, error) {
	return r.StockAsOf(storeID, nil)
}

// StockAsOf derives the matrix bounded to entries before the cutoff; a nil
// cutoff means now. Settlements use the cutoff to freeze the expected side at
// the date boundary.
func (r *LedgerRepository) StockAsOf(storeID uint, before *time.Time) (*models.StockSummary, error) {
	summary := models.NewStockSummary(storeID)
	if before != nil {
		summary.AsOf = *before
	}

	for _, bird := range models.BirdTypes {
		for _, inv := range models.InventoryTypes {
			qty, count, err := r.cellBalance(r.db, storeID, bird, inv, before)
			if err != nil {
				return nil, err
			}
			summary.ByBird(bird).Set(inv, qty.Round(3), count)
		}
	}
	return summary, nil
}

// LedgerFilter narrows History results.
type LedgerFilter struct {
	BirdType      models.BirdType
	InventoryType models.InventoryType
	ReasonCode    string
	FromDate      *time.Time
	ToDate        *time.Time
}

// History returns ledger entries newest-first.
func (r *LedgerRepository) History(storeID uint, filter LedgerFilter, limit, offset int) ([]models.InventoryLedgerEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	q := r.db.Where("store_id = ?", storeID)
	if filter.BirdType != "" {
		q = q.Where("bird_type = ?", filter.BirdType)
	}
	if filter.InventoryType != "" {
		q = q.Where("inventory_type = ?", filter.InventoryType)
	}
	if filter.ReasonCode != "" {
		q = q.Where("reason_code = ?", filter.ReasonCode)
	}
	if filter.FromDate != nil {
		q = q.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("created_at <= ?", *filter.ToDate)
	}

	var entries []models.InventoryLedgerEntry
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, err
}

// Adjust posts a manual correction. OVERWRITE resolves the delta against the
// current balance under the cell lock so the ledger stays the only source of
// truth; ADJUST passes the signed delta straight through. Every entry carries
// ref_type MANUAL.
func (r *LedgerRepository) Adjust(ctx context.Context, req *models.ManualAdjustmentRequest, userID uint) (*models.InventoryLedgerEntry, error) {
	if !req.BirdType.Valid() {
		return nil, models.ValidationErrorf("invalid bird_type %q", req.BirdType)
	}
	if !req.InventoryType.Valid() {
		return nil, models.ValidationErrorf("invalid inventory_type %q", req.InventoryType)
	}
	if req.ReasonCode == "" {
		return nil, models.ValidationErrorf("reason_code is required")
	}

	switch req.Mode {
	case models.AdjustModeOverwrite:
		return r.adjustOverwrite(ctx, req, userID)
	case models.AdjustModeAdjust:
		return r.adjustDelta(ctx, req, userID)
	default:
		return nil, models.ValidationErrorf("invalid mode %q", req.Mode)
	}
}

func (r *LedgerRepository) adjustOverwrite(ctx context.Context, req *models.ManualAdjustmentRequest, userID uint) (*models.InventoryLedgerEntry, error) {
	if req.AbsoluteQuantity == nil {
		return nil, models.ValidationErrorf("absolute_quantity is required for OVERWRITE")
	}
	if req.AbsoluteQuantity.IsNegative() {
		return nil, models.ValidationErrorf("absolute_quantity cannot be negative")
	}

	// Delta is computed and posted under the same cell lock, otherwise a
	// racing posting would make the overwrite land on a stale balance.
	unlock, err := r.locker.Lock(ctx, models.LedgerCellKey(req.StoreID, req.BirdType, req.InventoryType))
	if err != nil {
		return nil, err
	}
	defer unlock.Release(ctx)

	qty, count, err := r.cellBalance(r.db, req.StoreID, req.BirdType, req.InventoryType, nil)
	if err != nil {
		return nil, err
	}

	change := models.OverwriteDelta(*req.AbsoluteQuantity, qty)
	countChange := 0
	if req.InventoryType == models.InvLive && req.AbsoluteBirdCount != nil {
		countChange = *req.AbsoluteBirdCount - count
	}

	notes := req.Notes
	if notes == "" {
		notes = "Manual overwrite"
	}

	mv := &models.LedgerMovement{
		StoreID:         req.StoreID,
		BirdType:        req.BirdType,
		InventoryType:   req.InventoryType,
		QuantityChange:  change,
		BirdCountChange: countChange,
		ReasonCode:      models.NormalizeReasonCode(req.ReasonCode, change),
		RefType:         models.RefTypeManual,
		UserID:          userID,
		Notes:           notes,
		AllowNegative:   req.AllowNegative,
	}
	if err := mv.Validate(); err != nil {
		return nil, err
	}

	entry, err := mv.Apply(qty, count)
	if err != nil {
		return nil, err
	}
	if err := r.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *LedgerRepository) adjustDelta(ctx context.Context, req *models.ManualAdjustmentRequest, userID uint) (*models.InventoryLedgerEntry, error) {
	if req.QuantityChange == nil {
		return nil, models.ValidationErrorf("quantity_change is required for ADJUST")
	}

	notes := req.Notes
	if notes == "" {
		notes = "Manual adjustment"
	}
	countChange := 0
	if req.BirdCountChange != nil {
		countChange = *req.BirdCountChange
	}

	mv := &models.LedgerMovement{
		StoreID:         req.StoreID,
		BirdType:        req.BirdType,
		InventoryType:   req.InventoryType,
		QuantityChange:  *req.QuantityChange,
		BirdCountChange: countChange,
		ReasonCode:      models.NormalizeReasonCode(req.ReasonCode, *req.QuantityChange),
		RefType:         models.RefTypeManual,
		UserID:          userID,
		Notes:           notes,
		AllowNegative:   req.AllowNegative,
	}
	return r.Append(ctx, mv)
}
