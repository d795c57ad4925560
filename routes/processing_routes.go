package routes

import (
	"poultry-app/config"
	"poultry-app/controllers"
	"poultry-app/database"
	"poultry-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupProcessingRoutes(app *fiber.App, db *gorm.DB, locker database.CellLocker) {
	processingController := controllers.NewProcessingController(db, locker)
	authMiddleware := middleware.NewAuthMiddleware(db)
	storeMiddleware := middleware.NewStoreMiddleware(db)

	api := app.Group(config.MAIN_ROUTES+"/processing",
		middleware.AuthMiddleware, storeMiddleware.RequireStore())

	api.Get("/", authMiddleware.CheckPermission("processing.view"), processingController.ListEntries)
	api.Post("/", authMiddleware.CheckPermission("processing.create"), processingController.CreateEntry)
	api.Post("/calculate-yield", authMiddleware.CheckPermission("processing.view"), processingController.CalculateYield)

	// Wastage policy is global, not store scoped, so it lives outside the
	// /processing prefix and skips the store middleware.
	cfg := app.Group(config.MAIN_ROUTES+"/wastage-config", middleware.AuthMiddleware)
	cfg.Get("/", authMiddleware.CheckPermission("wastageconfig.view"), processingController.GetWastageConfig)
	cfg.Post("/", authMiddleware.CheckPermission("wastageconfig.edit"), processingController.CreateWastageConfig)
	cfg.Put("/:id/active", authMiddleware.CheckPermission("wastageconfig.edit"), processingController.ToggleWastageConfig)
}
