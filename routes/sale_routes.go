package routes

import (
	"poultry-app/config"
	"poultry-app/controllers"
	"poultry-app/database"
	"poultry-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupSaleRoutes(app *fiber.App, db *gorm.DB, locker database.CellLocker) {
	saleController := controllers.NewSaleController(db, locker)
	authMiddleware := middleware.NewAuthMiddleware(db)
	storeMiddleware := middleware.NewStoreMiddleware(db)

	api := app.Group(config.MAIN_ROUTES+"/sales",
		middleware.AuthMiddleware, storeMiddleware.RequireStore())

	api.Get("/", authMiddleware.CheckPermission("sales.view"), saleController.List)
	api.Post("/", authMiddleware.CheckPermission("sales.create"), saleController.Create)
}
