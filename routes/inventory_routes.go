package routes

import (
	"poultry-app/config"
	"poultry-app/controllers"
	"poultry-app/database"
	"poultry-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupInventoryRoutes(app *fiber.App, db *gorm.DB, locker database.CellLocker) {
	inventoryController := controllers.NewInventoryController(db, locker)
	authMiddleware := middleware.NewAuthMiddleware(db)
	storeMiddleware := middleware.NewStoreMiddleware(db)

	api := app.Group(config.MAIN_ROUTES+"/inventory",
		middleware.AuthMiddleware, storeMiddleware.RequireStore())

	api.Get("/stock", authMiddleware.CheckPermission("inventory.view"), inventoryController.GetStock)
	api.Get("/stock/:bird_type", authMiddleware.CheckPermission("inventory.view"), inventoryController.GetStockByBirdType)
	api.Get("/ledger", authMiddleware.CheckPermission("inventory.ledger"), inventoryController.GetLedger)
	api.Get("/ledger/export", authMiddleware.CheckPermission("inventory.ledger"), inventoryController.ExportLedgerExcel)
	api.Get("/reason-codes", authMiddleware.CheckPermission("inventory.view"), inventoryController.GetReasonCodes)
	api.Post("/adjust", authMiddleware.CheckPermission("inventory.adjust"), inventoryController.Adjust)
}
