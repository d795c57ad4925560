package repositories

import (
	"errors"
	"time"

	"poultry-app/models"
	"poultry-app/types"

	"gorm.io/gorm"
)

type WastageRepository struct {
	db *gorm.DB
}

func NewWastageRepository(db *gorm.DB) *WastageRepository {
	return &WastageRepository{db: db}
}

// GetActive returns the policy in effect on asOf for a (bird_type, output)
// pair, or ErrConfigurationMissing when no active row qualifies.
func (r *WastageRepository) GetActive(bird models.BirdType, target models.InventoryType, asOf time.Time) (*models.WastageConfig, error) {
	var rows []models.WastageConfig
	err := r.db.Where("bird_type = ? AND target_inventory_type = ?", bird, target).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	cfg := models.PickActiveConfig(rows, asOf)
	if cfg == nil {
		return nil, models.ErrConfigurationMissing
	}
	return cfg, nil
}

// List returns policy rows newest-effective-first, optionally filtered by
// bird type.
func (r *WastageRepository) List(bird models.BirdType) ([]models.WastageConfig, error) {
	q := r.db.Order("effective_date DESC")
	if bird != "" {
		q = q.Where("bird_type = ?", bird)
	}
	var rows []models.WastageConfig
	err := q.Find(&rows).Error
	return rows, err
}

// Upsert inserts a new versioned row. History is never rewritten: a row with
// the same (bird_type, target, effective_date) can only toggle its active
// flag, a percentage change needs a new effective date.
func (r *WastageRepository) Upsert(cfg *models.WastageConfig) (*models.WastageConfig, error) {
	if !cfg.BirdType.Valid() {
		return nil, models.ValidationErrorf("invalid bird_type %q", cfg.BirdType)
	}
	if cfg.TargetInventoryType == models.InvLive || !cfg.TargetInventoryType.Valid() {
		return nil, models.ValidationErrorf("target_inventory_type must be SKIN or SKINLESS")
	}
	if err := models.ValidatePercentage(cfg.Percentage); err != nil {
		return nil, err
	}

	var existing models.WastageConfig
	err := r.db.Where("bird_type = ? AND target_inventory_type = ? AND effective_date = ?",
		cfg.BirdType, cfg.TargetInventoryType, cfg.EffectiveDate).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.Create(cfg).Error; err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := existing.ApplyRevision(cfg); err != nil {
		return nil, err
	}
	if err := r.db.Save(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// SetActive toggles a row without touching percentage or date. Material
// changes are always new rows.
func (r *WastageRepository) SetActive(id types.SnowflakeID, active bool) (*models.WastageConfig, error) {
	var cfg models.WastageConfig
	if err := r.db.First(&cfg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	cfg.IsActive = active
	if err := r.db.Save(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}
