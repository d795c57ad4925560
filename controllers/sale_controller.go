package controllers

import (
	"time"

	"poultry-app/controllers/helpers"
	"poultry-app/database"
	"poultry-app/middleware"
	"poultry-app/models"
	"poultry-app/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SaleController struct {
	DB     *gorm.DB
	Locker database.CellLocker
}

func NewSaleController(DB *gorm.DB, locker database.CellLocker) *SaleController {
	return &SaleController{DB: DB, Locker: locker}
}

func (c *SaleController) Create(ctx *fiber.Ctx) error {
	if !middleware.StoreAcceptsWrites(ctx) {
		return helpers.RespondError(ctx, models.StateTransitionErrorf("store is in maintenance mode"))
	}

	var req models.SaleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	req.StoreID = middleware.StoreID(ctx)

	repo := repositories.NewSaleRepository(c.DB, c.Locker)
	sale, err := repo.Create(ctx.UserContext(), &req, middleware.UserID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": sale})
}

func (c *SaleController) List(ctx *fiber.Ctx) error {
	var from, to *time.Time
	if v := ctx.Query("from_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return helpers.RespondError(ctx, models.ValidationErrorf("invalid from_date %q", v))
		}
		from = &d
	}
	if v := ctx.Query("to_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return helpers.RespondError(ctx, models.ValidationErrorf("invalid to_date %q", v))
		}
		to = &d
	}

	repo := repositories.NewSaleRepository(c.DB, c.Locker)
	sales, err := repo.List(middleware.StoreID(ctx), from, to,
		ctx.QueryInt("limit", 50), ctx.QueryInt("offset", 0))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"sales": sales}})
}
