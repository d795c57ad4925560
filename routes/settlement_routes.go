package routes

import (
	"poultry-app/config"
	"poultry-app/controllers"
	"poultry-app/database"
	"poultry-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupSettlementRoutes(app *fiber.App, db *gorm.DB, locker database.CellLocker) {
	settlementController := controllers.NewSettlementController(db, locker)
	authMiddleware := middleware.NewAuthMiddleware(db)
	storeMiddleware := middleware.NewStoreMiddleware(db)

	api := app.Group(config.MAIN_ROUTES+"/settlements",
		middleware.AuthMiddleware, storeMiddleware.RequireStore())

	api.Get("/", authMiddleware.CheckPermission("settlements.view"), settlementController.List)
	api.Post("/", authMiddleware.CheckPermission("settlements.create"), settlementController.Create)
	api.Get("/:id", authMiddleware.CheckPermission("settlements.view"), settlementController.Get)
	api.Get("/:id/expected", authMiddleware.CheckPermission("settlements.view"), settlementController.GetExpected)
	api.Post("/:id/submit", authMiddleware.CheckPermission("settlements.submit"), settlementController.Submit)
	api.Post("/:id/approve", authMiddleware.CheckPermission("settlements.approve"), settlementController.Approve)
	api.Post("/:id/lock", authMiddleware.CheckPermission("settlements.lock"), settlementController.Lock)
	api.Post("/:id/expense/approve", authMiddleware.CheckPermission("settlements.approve"), settlementController.ApproveExpense)
	api.Post("/:id/expense/reject", authMiddleware.CheckPermission("settlements.approve"), settlementController.RejectExpense)
}
