package routes

import (
	"poultry-app/config"
	"poultry-app/controllers"
	"poultry-app/database"
	"poultry-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupPurchaseRoutes(app *fiber.App, db *gorm.DB, locker database.CellLocker) {
	purchaseController := controllers.NewPurchaseController(db, locker)
	authMiddleware := middleware.NewAuthMiddleware(db)
	storeMiddleware := middleware.NewStoreMiddleware(db)

	api := app.Group(config.MAIN_ROUTES+"/purchases",
		middleware.AuthMiddleware, storeMiddleware.RequireStore())

	api.Get("/", authMiddleware.CheckPermission("purchases.view"), purchaseController.List)
	api.Post("/", authMiddleware.CheckPermission("purchases.create"), purchaseController.Create)
	api.Post("/:id/commit", authMiddleware.CheckPermission("purchases.create"), purchaseController.Commit)
}
