// database/seeder.go
package database

import (
	"time"

	"poultry-app/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func RunSeeders(db *gorm.DB) {
	SeedPermissions(db)
	SeedRoles(db)
	SeedAdminUser(db)
	SeedStores(db)
	SeedWastageConfigs(db)
}

var permissionNames = []string{
	"inventory.view", "inventory.ledger", "inventory.adjust",
	"processing.view", "processing.create",
	"wastageconfig.view", "wastageconfig.edit",
	"settlements.view", "settlements.create", "settlements.submit",
	"settlements.approve", "settlements.lock",
	"variance.view", "variance.approve",
	"sales.view", "sales.create",
	"purchases.view", "purchases.create",
	"stores.manage",
}

func SeedPermissions(db *gorm.DB) {
	for _, name := range permissionNames {
		var existing models.Permission
		if err := db.Where("name = ?", name).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				db.Create(&models.Permission{Name: name})
			}
		}
	}
}

func SeedRoles(db *gorm.DB) {
	var perms []models.Permission
	db.Find(&perms)

	managerPerms := []models.Permission{}
	managerAllowed := map[string]bool{
		"inventory.view": true, "inventory.ledger": true,
		"processing.view": true, "processing.create": true,
		"wastageconfig.view": true,
		"settlements.view":   true, "settlements.create": true, "settlements.submit": true,
		"variance.view": true,
		"sales.view":    true, "sales.create": true,
		"purchases.view": true, "purchases.create": true,
	}
	for _, p := range perms {
		if managerAllowed[p.Name] {
			managerPerms = append(managerPerms, p)
		}
	}

	roles := []models.Role{
		{Name: "Admin", Description: "Full access", Permissions: perms},
		{Name: "Manager", Description: "Store operations", Permissions: managerPerms},
	}

	for _, r := range roles {
		var existing models.Role
		if err := db.Where("name = ?", r.Name).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				db.Create(&r)
			}
		}
	}
}

func SeedAdminUser(db *gorm.DB) {
	var existing models.User
	if err := db.Where("username = ?", "admin").First(&existing).Error; err != gorm.ErrRecordNotFound {
		return
	}

	var adminRole models.Role
	if err := db.Where("name = ?", "Admin").First(&adminRole).Error; err != nil {
		logrus.WithError(err).Error("admin role missing, skipping admin user seed")
		return
	}

	user := models.User{
		Username: "admin",
		// bcrypt of "admin123", change on first login
		Password: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		Name:     "Administrator",
		Email:    "admin@localhost",
		Roles:    []models.Role{adminRole},
	}
	if err := db.Create(&user).Error; err != nil {
		logrus.WithError(err).Error("failed to seed admin user")
	}
}

func SeedStores(db *gorm.DB) {
	var count int64
	db.Model(&models.Store{}).Count(&count)
	if count > 0 {
		return
	}
	db.Create(&models.Store{Code: "MAIN", Name: "Main Store", Status: models.StoreActive})
}

// SeedWastageConfigs installs a default policy row for every
// (bird_type, output_type) pair so yield estimation never starts with a gap.
func SeedWastageConfigs(db *gorm.DB) {
	defaults := map[models.InventoryType]decimal.Decimal{
		models.InvSkin:     decimal.NewFromFloat(8.00),
		models.InvSkinless: decimal.NewFromFloat(12.00),
	}
	effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, bird := range models.BirdTypes {
		for target, pct := range defaults {
			var existing models.WastageConfig
			err := db.Where("bird_type = ? AND target_inventory_type = ?", bird, target).
				First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				db.Create(&models.WastageConfig{
					BirdType:            bird,
					TargetInventoryType: target,
					Percentage:          pct,
					EffectiveDate:       effective,
					IsActive:            true,
				})
			}
		}
	}
}
