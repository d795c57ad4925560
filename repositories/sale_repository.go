package repositories

import (
	"context"
	"time"

	"poultry-app/database"
	"poultry-app/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository struct {
	db     *gorm.DB
	ledger *LedgerRepository
}

func NewSaleRepository(db *gorm.DB, locker database.CellLocker) *SaleRepository {
	return &SaleRepository{db: db, ledger: NewLedgerRepository(db, locker)}
}

// Create records a sale and posts one SALE_DEBIT ledger entry per item in the
// same transaction. A sale that would oversell a cell fails whole.
func (r *SaleRepository) Create(ctx context.Context, req *models.SaleRequest, userID uint) (*models.Sale, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	saleDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.SaleDate != "" {
		d, err := time.Parse("2006-01-02", req.SaleDate)
		if err != nil {
			return nil, models.ValidationErrorf("invalid sale_date %q", req.SaleDate)
		}
		saleDate = d
	}

	saleType := req.SaleType
	if saleType == "" {
		saleType = models.SalePOS
	}

	sale := &models.Sale{
		StoreID:       req.StoreID,
		SaleDate:      saleDate,
		SaleType:      saleType,
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   req.Total(),
		CustomerName:  req.CustomerName,
		SoldBy:        userID,
	}
	for _, item := range req.Items {
		sale.Items = append(sale.Items, models.SaleItem{
			BirdType:      item.BirdType,
			InventoryType: item.InventoryType,
			Weight:        item.Weight.Round(3),
			BirdCount:     item.BirdCount,
			Rate:          item.Rate.Round(2),
			Amount:        item.Weight.Mul(item.Rate).Round(2),
		})
	}

	cells := make([]string, 0, len(sale.Items))
	for _, item := range sale.Items {
		cells = append(cells, models.LedgerCellKey(req.StoreID, item.BirdType, item.InventoryType))
	}

	err := r.ledger.Transact(ctx, cells, func(ctx context.Context, tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		for _, item := range sale.Items {
			mv := &models.LedgerMovement{
				StoreID:         req.StoreID,
				BirdType:        item.BirdType,
				InventoryType:   item.InventoryType,
				QuantityChange:  item.Weight.Neg(),
				BirdCountChange: -item.BirdCount,
				ReasonCode:      models.ReasonSaleDebit,
				RefType:         models.RefTypeSale,
				RefID:           sale.ID,
				UserID:          userID,
			}
			if _, err := r.ledger.AppendTx(ctx, tx, mv); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *SaleRepository) List(storeID uint, from, to *time.Time, limit, offset int) ([]models.Sale, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.db.Preload("Items").Where("store_id = ?", storeID)
	if from != nil {
		q = q.Where("sale_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("sale_date <= ?", *to)
	}
	var sales []models.Sale
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&sales).Error
	return sales, err
}

// ExpectedSales sums settled-method sale totals for one day. This is the
// system side of the settlement's cash comparison.
func (r *SaleRepository) ExpectedSales(storeID uint, date time.Time) (models.ExpectedSales, error) {
	type row struct {
		PaymentMethod models.PaymentMethod
		Total         decimal.Decimal
	}
	var rows []row
	err := r.db.Model(&models.Sale{}).
		Select("payment_method, COALESCE(SUM(total_amount), 0) as total").
		Where("store_id = ? AND sale_date = ?", storeID, date).
		Group("payment_method").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := models.ExpectedSales{}
	for _, method := range models.SettledPaymentMethods {
		out[method] = decimal.Zero
	}
	for _, rw := range rows {
		if rw.PaymentMethod == models.PayCredit {
			continue
		}
		out[rw.PaymentMethod] = rw.Total.Round(2)
	}
	return out, nil
}
