// database/migrate.go
package database

import (
	"poultry-app/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.Store{},
		&models.InventoryLedgerEntry{},
		&models.WastageConfig{},
		&models.ProcessingEntry{},
		&models.Settlement{},
		&models.VarianceLog{},
		&models.Sale{},
		&models.SaleItem{},
		&models.Purchase{},
	)
}
