package routes

import (
	"poultry-app/config"
	"poultry-app/controllers"
	"poultry-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupStoreRoutes(app *fiber.App, db *gorm.DB) {
	storeController := controllers.NewStoreController(db)
	authMiddleware := middleware.NewAuthMiddleware(db)

	api := app.Group(config.MAIN_ROUTES+"/stores", middleware.AuthMiddleware)
	api.Get("/", storeController.List)
	api.Put("/:id/status", authMiddleware.CheckPermission("stores.manage"), storeController.SetStatus)
}
