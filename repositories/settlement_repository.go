package repositories

import (
	"context"
	"errors"
	"time"

	"poultry-app/database"
	"poultry-app/models"
	"poultry-app/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementRepository reconciles declared cash and stock against
// ledger-derived expected values.
type SettlementRepository struct {
	db     *gorm.DB
	ledger *LedgerRepository
	sales  *SaleRepository
}

func NewSettlementRepository(db *gorm.DB, locker database.CellLocker) *SettlementRepository {
	return &SettlementRepository{
		db:     db,
		ledger: NewLedgerRepository(db, locker),
		sales:  NewSaleRepository(db, locker),
	}
}

// Create opens a DRAFT settlement. One settlement per store per date.
func (r *SettlementRepository) Create(storeID uint, date time.Time) (*models.Settlement, error) {
	var existing models.Settlement
	err := r.db.Where("store_id = ? AND settlement_date = ?", storeID, date).First(&existing).Error
	if err == nil {
		return nil, models.StateTransitionErrorf("settlement already exists for this date with status %s", existing.Status)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	s := &models.Settlement{
		StoreID:        storeID,
		SettlementDate: date,
		Status:         models.SettlementDraft,
	}
	if err := r.db.Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// ExpectedValues is the system-derived side of the reconciliation form.
type ExpectedValues struct {
	Sales models.ExpectedSales `json:"sales"`
	Stock *models.StockSummary `json:"stock"`
}

// Expected derives sales totals per payment method and stock per cell as of
// the end of the settlement date.
func (r *SettlementRepository) Expected(storeID uint, date time.Time) (*ExpectedValues, error) {
	sales, err := r.sales.ExpectedSales(storeID, date)
	if err != nil {
		return nil, err
	}

	cutoff := date.Add(24 * time.Hour)
	stock, err := r.ledger.StockAsOf(storeID, &cutoff)
	if err != nil {
		return nil, err
	}

	return &ExpectedValues{Sales: sales, Stock: stock}, nil
}

// Submit stores the manager's declarations next to a snapshot of the expected
// values and computes the variance. The snapshot is taken now and never
// re-derived, so later ledger corrections leave history alone. Non-zero stock
// variances raise PENDING variance logs for follow-up.
func (r *SettlementRepository) Submit(id types.SnowflakeID, storeID uint, req *models.SettlementSubmitRequest, userID uint) (*models.Settlement, []models.VarianceLog, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	var s models.Settlement
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, models.ErrNotFound
		}
		return nil, nil, err
	}
	if err := s.AcceptSubmission(storeID); err != nil {
		return nil, nil, err
	}

	expected, err := r.Expected(s.StoreID, s.SettlementDate)
	if err != nil {
		return nil, nil, err
	}

	cashVar := req.CashVariances(expected.Sales)
	stockVar := models.StockVariances(&req.DeclaredStock, expected.Stock)

	now := time.Now().UTC()
	s.DeclaredCash = req.DeclaredCash.Round(2)
	s.DeclaredUpi = req.DeclaredUpi.Round(2)
	s.DeclaredCard = req.DeclaredCard.Round(2)
	s.DeclaredBank = req.DeclaredBank.Round(2)
	s.DeclaredStock = declaredStockJSON(&req.DeclaredStock)
	s.ExpectedSales = expectedSalesJSON(expected.Sales)
	s.ExpectedStock = stockSummaryJSON(expected.Stock)
	s.CalculatedVariance = varianceJSON(cashVar, stockVar)
	s.ExpenseAmount = req.ExpenseAmount.Round(2)
	s.ExpenseStatus = models.ExpensePending
	s.ExpenseNotes = req.ExpenseNotes
	if len(req.ExpenseReceipts) > 0 {
		urls := make([]interface{}, len(req.ExpenseReceipts))
		for i, u := range req.ExpenseReceipts {
			urls[i] = u
		}
		s.ExpenseReceipts = models.JSONMap{"urls": urls}
	}
	s.Status = models.SettlementSubmitted
	s.SubmittedBy = userID
	s.SubmittedAt = &now

	var logs []models.VarianceLog
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&s).Error; err != nil {
			return err
		}

		// Resubmission replaces earlier pending logs.
		if err := tx.Where("settlement_id = ? AND status = ?", s.ID, models.VarianceLogPending).
			Delete(&models.VarianceLog{}).Error; err != nil {
			return err
		}

		for _, bird := range models.BirdTypes {
			for _, inv := range models.InventoryTypes {
				v := stockVar[bird][inv]
				if v.Variance.IsZero() {
					continue
				}
				vlog := models.VarianceLog{
					SettlementID:  s.ID,
					StoreID:       s.StoreID,
					BirdType:      bird,
					InventoryType: inv,
					ExpectedQty:   v.Expected,
					DeclaredQty:   v.Declared,
					VarianceQty:   v.Variance,
					VarianceType:  models.VarianceType(v.Type),
					Status:        models.VarianceLogPending,
				}
				if err := tx.Create(&vlog).Error; err != nil {
					return err
				}
				logs = append(logs, vlog)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &s, logs, nil
}

// Approve transitions SUBMITTED -> APPROVED with an optimistic guard: the
// UPDATE is conditioned on the current status, so a racing double-approval
// loses and gets a state transition error. Variance does not block approval;
// it stays visible for audit follow-up.
func (r *SettlementRepository) Approve(id types.SnowflakeID, storeID uint, userID uint) (*models.Settlement, error) {
	now := time.Now().UTC()
	res := r.db.Model(&models.Settlement{}).
		Where("id = ? AND store_id = ? AND status = ?", id, storeID, models.SettlementSubmitted).
		Updates(map[string]interface{}{
			"status":      models.SettlementApproved,
			"approved_by": userID,
			"approved_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.transitionError(id, storeID, "approve", models.SettlementSubmitted)
	}
	return r.Get(id, storeID)
}

// Lock transitions APPROVED -> LOCKED, after which the settlement is final.
func (r *SettlementRepository) Lock(id types.SnowflakeID, storeID uint) (*models.Settlement, error) {
	now := time.Now().UTC()
	res := r.db.Model(&models.Settlement{}).
		Where("id = ? AND store_id = ? AND status = ?", id, storeID, models.SettlementApproved).
		Updates(map[string]interface{}{
			"status":    models.SettlementLocked,
			"locked_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.transitionError(id, storeID, "lock", models.SettlementApproved)
	}
	return r.Get(id, storeID)
}

// ReviewExpense approves or rejects the submitted expense claim. A rejected
// expense stops reducing the settlement's net cash. Guarded optimistically
// like the status transitions.
func (r *SettlementRepository) ReviewExpense(id types.SnowflakeID, storeID uint, approve bool, userID uint) (*models.Settlement, error) {
	var s models.Settlement
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if err := s.AcceptExpenseReview(storeID); err != nil {
		return nil, err
	}

	status := models.ExpenseApproved
	if !approve {
		status = models.ExpenseRejected
	}

	now := time.Now().UTC()
	res := r.db.Model(&models.Settlement{}).
		Where("id = ? AND expense_status = ? AND status IN ?", id, models.ExpensePending,
			[]models.SettlementStatus{models.SettlementSubmitted, models.SettlementApproved}).
		Updates(map[string]interface{}{
			"expense_status":      status,
			"expense_reviewed_by": userID,
			"expense_reviewed_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, models.StateTransitionErrorf("expense was reviewed concurrently")
	}
	return r.Get(id, storeID)
}

func (r *SettlementRepository) transitionError(id types.SnowflakeID, storeID uint, action string, want models.SettlementStatus) error {
	var s models.Settlement
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNotFound
		}
		return err
	}
	if s.StoreID != storeID {
		return models.ErrNotFound
	}
	return models.StateTransitionErrorf("cannot %s settlement with status %s (requires %s)", action, s.Status, want)
}

// Get loads a settlement scoped to the caller's store; rows owned by another
// store read as not found.
func (r *SettlementRepository) Get(id types.SnowflakeID, storeID uint) (*models.Settlement, error) {
	var s models.Settlement
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if s.StoreID != storeID {
		return nil, models.ErrNotFound
	}
	return &s, nil
}

// SettlementFilter narrows List results.
type SettlementFilter struct {
	Status   models.SettlementStatus
	FromDate *time.Time
	ToDate   *time.Time
}

func (r *SettlementRepository) List(storeID uint, filter SettlementFilter, limit, offset int) ([]models.Settlement, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}

	q := r.db.Where("store_id = ?", storeID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.FromDate != nil {
		q = q.Where("settlement_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("settlement_date <= ?", *filter.ToDate)
	}

	var rows []models.Settlement
	err := q.Order("settlement_date DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}

// VarianceLogs lists logs for a settlement.
func (r *SettlementRepository) VarianceLogs(settlementID types.SnowflakeID) ([]models.VarianceLog, error) {
	var logs []models.VarianceLog
	err := r.db.Where("settlement_id = ?", settlementID).Order("created_at").Find(&logs).Error
	return logs, err
}

// ListVariances lists variance logs for a store, optionally by status.
func (r *SettlementRepository) ListVariances(storeID uint, status models.VarianceLogStatus, limit, offset int) ([]models.VarianceLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.db.Where("store_id = ?", storeID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var logs []models.VarianceLog
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	return logs, err
}

// ResolveVariance settles a pending variance log. Approving a POSITIVE
// variance credits found stock into the ledger; deducting a NEGATIVE one
// debits the loss. Either way the correction is an ordinary ledger entry
// referencing the variance log.
func (r *SettlementRepository) ResolveVariance(ctx context.Context, id types.SnowflakeID, storeID uint, approve bool, note string, userID uint) (*models.VarianceLog, error) {
	var vlog models.VarianceLog
	if err := r.db.First(&vlog, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if err := vlog.AcceptResolution(storeID, approve); err != nil {
		return nil, err
	}

	reason := models.ReasonVariancePositive
	status := models.VarianceLogApproved
	change := vlog.VarianceQty
	if !approve {
		reason = models.ReasonVarianceNegative
		status = models.VarianceLogDeducted
		// VarianceQty is already negative for shortages.
		change = vlog.VarianceQty
	}

	now := time.Now().UTC()
	cell := models.LedgerCellKey(vlog.StoreID, vlog.BirdType, vlog.InventoryType)
	err := r.ledger.Transact(ctx, []string{cell}, func(ctx context.Context, tx *gorm.DB) error {
		mv := &models.LedgerMovement{
			StoreID:        vlog.StoreID,
			BirdType:       vlog.BirdType,
			InventoryType:  vlog.InventoryType,
			QuantityChange: change,
			ReasonCode:     reason,
			RefType:        models.RefTypeVariance,
			RefID:          vlog.ID,
			UserID:         userID,
			Notes:          note,
			AllowNegative:  true,
		}
		if _, err := r.ledger.AppendTx(ctx, tx, mv); err != nil {
			return err
		}

		vlog.Status = status
		vlog.ResolvedBy = userID
		vlog.ResolvedAt = &now
		vlog.ResolutionNote = note
		return tx.Save(&vlog).Error
	})
	if err != nil {
		return nil, err
	}
	return &vlog, nil
}

func declaredStockJSON(d *models.DeclaredStock) models.JSONMap {
	cell := func(c *models.DeclaredStockCell) map[string]interface{} {
		return map[string]interface{}{
			"LIVE":       c.Live.StringFixed(3),
			"LIVE_COUNT": c.LiveCount,
			"SKIN":       c.Skin.StringFixed(3),
			"SKINLESS":   c.Skinless.StringFixed(3),
		}
	}
	return models.JSONMap{
		string(models.BirdBroiler):    cell(&d.Broiler),
		string(models.BirdParentCull): cell(&d.ParentCull),
	}
}

func stockSummaryJSON(s *models.StockSummary) models.JSONMap {
	cell := func(c *models.StockByType) map[string]interface{} {
		return map[string]interface{}{
			"LIVE":       c.Live.StringFixed(3),
			"LIVE_COUNT": c.LiveCount,
			"SKIN":       c.Skin.StringFixed(3),
			"SKINLESS":   c.Skinless.StringFixed(3),
		}
	}
	return models.JSONMap{
		string(models.BirdBroiler):    cell(&s.Broiler),
		string(models.BirdParentCull): cell(&s.ParentCull),
		"as_of":                       s.AsOf.Format(time.RFC3339),
	}
}

func expectedSalesJSON(sales models.ExpectedSales) models.JSONMap {
	out := models.JSONMap{}
	for method, amount := range sales {
		out[string(method)] = amount.StringFixed(2)
	}
	return out
}

func varianceJSON(cash map[models.PaymentMethod]models.VarianceDetail, stock map[models.BirdType]map[models.InventoryType]models.VarianceDetail) models.JSONMap {
	detail := func(v models.VarianceDetail, places int32) map[string]interface{} {
		return map[string]interface{}{
			"expected": v.Expected.StringFixed(places),
			"declared": v.Declared.StringFixed(places),
			"variance": v.Variance.StringFixed(places),
			"type":     v.Type,
		}
	}

	cashOut := map[string]interface{}{}
	totalCash := decimal.Zero
	for method, v := range cash {
		cashOut[string(method)] = detail(v, 2)
		totalCash = totalCash.Add(v.Variance)
	}

	stockOut := map[string]interface{}{}
	for bird, cells := range stock {
		birdOut := map[string]interface{}{}
		for inv, v := range cells {
			birdOut[string(inv)] = detail(v, 3)
		}
		stockOut[string(bird)] = birdOut
	}

	return models.JSONMap{
		"sales":                cashOut,
		"stock":                stockOut,
		"total_sales_variance": totalCash.StringFixed(2),
	}
}
