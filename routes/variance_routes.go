package routes

import (
	"poultry-app/config"
	"poultry-app/controllers"
	"poultry-app/database"
	"poultry-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupVarianceRoutes(app *fiber.App, db *gorm.DB, locker database.CellLocker) {
	varianceController := controllers.NewVarianceController(db, locker)
	authMiddleware := middleware.NewAuthMiddleware(db)
	storeMiddleware := middleware.NewStoreMiddleware(db)

	api := app.Group(config.MAIN_ROUTES+"/variances",
		middleware.AuthMiddleware, storeMiddleware.RequireStore())

	api.Get("/", authMiddleware.CheckPermission("variance.view"), varianceController.List)
	api.Post("/:id/approve", authMiddleware.CheckPermission("variance.approve"), varianceController.Approve)
	api.Post("/:id/deduct", authMiddleware.CheckPermission("variance.approve"), varianceController.Deduct)
}
