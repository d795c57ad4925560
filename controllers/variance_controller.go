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

type VarianceController struct {
	DB     *gorm.DB
	Locker database.CellLocker
}

func NewVarianceController(DB *gorm.DB, locker database.CellLocker) *VarianceController {
	return &VarianceController{DB: DB, Locker: locker}
}

func (c *VarianceController) List(ctx *fiber.Ctx) error {
	status := models.VarianceLogStatus(ctx.Query("status"))

	repo := repositories.NewSettlementRepository(c.DB, c.Locker)
	logs, err := repo.ListVariances(middleware.StoreID(ctx), status,
		ctx.QueryInt("limit", 50), ctx.QueryInt("offset", 0))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"variance_logs": logs}})
}

// Approve accepts a POSITIVE variance and credits the surplus into the ledger.
func (c *VarianceController) Approve(ctx *fiber.Ctx) error {
	return c.resolve(ctx, true)
}

// Deduct accepts a NEGATIVE variance and debits the loss from the ledger.
func (c *VarianceController) Deduct(ctx *fiber.Ctx) error {
	return c.resolve(ctx, false)
}

func (c *VarianceController) resolve(ctx *fiber.Ctx, approve bool) error {
	if !middleware.StoreAcceptsWrites(ctx) {
		return helpers.RespondError(ctx, models.StateTransitionErrorf("store is in maintenance mode"))
	}

	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := ctx.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	repo := repositories.NewSettlementRepository(c.DB, c.Locker)
	vlog, err := repo.ResolveVariance(ctx.UserContext(), id, middleware.StoreID(ctx), approve, req.Note, middleware.UserID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": vlog})
}
