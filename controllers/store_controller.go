package controllers

import (
	"poultry-app/middleware"
	"poultry-app/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StoreController struct {
	DB *gorm.DB
}

func NewStoreController(DB *gorm.DB) *StoreController {
	return &StoreController{DB: DB}
}

// List returns the stores the caller can operate on. Admins see every store.
func (c *StoreController) List(ctx *fiber.Ctx) error {
	var stores []models.Store
	q := c.DB.Order("code")
	if !middleware.IsAdmin(ctx) {
		q = q.Joins("JOIN user_stores ON user_stores.store_id = stores.id").
			Where("user_stores.user_id = ?", middleware.UserID(ctx))
	}
	if err := q.Find(&stores).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"stores": stores}})
}

// SetStatus flips a store between ACTIVE and MAINTENANCE. Admin only; wired
// through the stores.manage permission.
func (c *StoreController) SetStatus(ctx *fiber.Ctx) error {
	var req struct {
		Status models.StoreStatus `json:"status"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Status != models.StoreActive && req.Status != models.StoreMaintenance {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "status must be ACTIVE or MAINTENANCE",
		})
	}

	var store models.Store
	if err := c.DB.First(&store, "id = ?", ctx.Params("id")).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "store not found",
		})
	}

	store.Status = req.Status
	if err := c.DB.Save(&store).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": store})
}
