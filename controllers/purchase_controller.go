package controllers

import (
	"poultry-app/controllers/helpers"
	"poultry-app/database"
	"poultry-app/middleware"
	"poultry-app/models"
	"poultry-app/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PurchaseController struct {
	DB     *gorm.DB
	Locker database.CellLocker
}

func NewPurchaseController(DB *gorm.DB, locker database.CellLocker) *PurchaseController {
	return &PurchaseController{DB: DB, Locker: locker}
}

func (c *PurchaseController) Create(ctx *fiber.Ctx) error {
	if !middleware.StoreAcceptsWrites(ctx) {
		return helpers.RespondError(ctx, models.StateTransitionErrorf("store is in maintenance mode"))
	}

	var req models.PurchaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	req.StoreID = middleware.StoreID(ctx)

	repo := repositories.NewPurchaseRepository(c.DB, c.Locker)
	p, err := repo.Create(&req, middleware.UserID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": p})
}

// Commit posts the received stock into the ledger and finalizes the purchase.
func (c *PurchaseController) Commit(ctx *fiber.Ctx) error {
	if !middleware.StoreAcceptsWrites(ctx) {
		return helpers.RespondError(ctx, models.StateTransitionErrorf("store is in maintenance mode"))
	}

	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	repo := repositories.NewPurchaseRepository(c.DB, c.Locker)
	p, err := repo.Commit(ctx.UserContext(), id, middleware.StoreID(ctx), middleware.UserID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": p})
}

func (c *PurchaseController) List(ctx *fiber.Ctx) error {
	repo := repositories.NewPurchaseRepository(c.DB, c.Locker)
	rows, err := repo.List(middleware.StoreID(ctx), models.PurchaseStatus(ctx.Query("status")),
		ctx.QueryInt("limit", 50), ctx.QueryInt("offset", 0))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"purchases": rows}})
}
