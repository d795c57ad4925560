package controllers

import (
	"strconv"
	"time"

	"poultry-app/controllers/helpers"
	"poultry-app/database"
	"poultry-app/middleware"
	"poultry-app/models"
	"poultry-app/repositories"
	"poultry-app/types"
	"poultry-app/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SettlementController struct {
	DB     *gorm.DB
	Locker database.CellLocker
}

func NewSettlementController(DB *gorm.DB, locker database.CellLocker) *SettlementController {
	return &SettlementController{DB: DB, Locker: locker}
}

func parseSnowflakeParam(ctx *fiber.Ctx, name string) (types.SnowflakeID, error) {
	raw := ctx.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, models.ValidationErrorf("invalid %s %q", name, raw)
	}
	return types.SnowflakeID(id), nil
}

func (c *SettlementController) Create(ctx *fiber.Ctx) error {
	if !middleware.StoreAcceptsWrites(ctx) {
		return helpers.RespondError(ctx, models.StateTransitionErrorf("store is in maintenance mode"))
	}

	var req struct {
		SettlementDate string `json:"settlement_date"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.SettlementDate != "" {
		d, err := time.Parse("2006-01-02", req.SettlementDate)
		if err != nil {
			return helpers.RespondError(ctx, models.ValidationErrorf("invalid settlement_date %q", req.SettlementDate))
		}
		date = d
	}

	repo := repositories.NewSettlementRepository(c.DB, c.Locker)
	s, err := repo.Create(middleware.StoreID(ctx), date)
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": s})
}

// GetExpected returns the system-derived side of the reconciliation form so
// the client can show it next to the manager's declaration.
func (c *SettlementController) GetExpected(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	repo := repositories.NewSettlementRepository(c.DB, c.Locker)
	s, err := repo.Get(id, middleware.StoreID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}
	expected, err := repo.Expected(s.StoreID, s.SettlementDate)
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": expected})
}

func (c *SettlementController) Submit(ctx *fiber.Ctx) error {
	if !middleware.StoreAcceptsWrites(ctx) {
		return helpers.RespondError(ctx, models.StateTransitionErrorf("store is in maintenance mode"))
	}

	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	var req models.SettlementSubmitRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	repo := repositories.NewSettlementRepository(c.DB, c.Locker)
	s, logs, err := repo.Submit(id, middleware.StoreID(ctx), &req, middleware.UserID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	if len(logs) > 0 {
		logrus.WithFields(logrus.Fields{
			"settlement_id": s.ID,
			"store_id":      s.StoreID,
			"variances":     len(logs),
		}).Info("settlement submitted with stock variances")
		go utils.SendVarianceAlert(s, logs)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"settlement":    s,
			"variance_logs": logs,
		},
	})
}

func (c *SettlementController) Approve(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	repo := repositories.NewSettlementRepository(c.DB, c.Locker)
	s, err := repo.Approve(id, middleware.StoreID(ctx), middleware.UserID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": s})
}

func (c *SettlementController) Lock(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	repo := repositories.NewSettlementRepository(c.DB, c.Locker)
	s, err := repo.Lock(id, middleware.StoreID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": s})
}

// ApproveExpense accepts the submitted expense claim; it keeps reducing the
// settlement's net cash.
func (c *SettlementController) ApproveExpense(ctx *fiber.Ctx) error {
	return c.reviewExpense(ctx, true)
}

// RejectExpense declines the claim; the expense stops reducing net cash.
func (c *SettlementController) RejectExpense(ctx *fiber.Ctx) error {
	return c.reviewExpense(ctx, false)
}

func (c *SettlementController) reviewExpense(ctx *fiber.Ctx, approve bool) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	repo := repositories.NewSettlementRepository(c.DB, c.Locker)
	s, err := repo.ReviewExpense(id, middleware.StoreID(ctx), approve, middleware.UserID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": s})
}

func (c *SettlementController) Get(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	repo := repositories.NewSettlementRepository(c.DB, c.Locker)
	s, err := repo.Get(id, middleware.StoreID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}
	logs, err := repo.VarianceLogs(id)
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"settlement":    s,
			"variance_logs": logs,
		},
	})
}

func (c *SettlementController) List(ctx *fiber.Ctx) error {
	filter := repositories.SettlementFilter{
		Status: models.SettlementStatus(ctx.Query("status")),
	}
	if from := ctx.Query("from_date"); from != "" {
		d, err := time.Parse("2006-01-02", from)
		if err != nil {
			return helpers.RespondError(ctx, models.ValidationErrorf("invalid from_date %q", from))
		}
		filter.FromDate = &d
	}
	if to := ctx.Query("to_date"); to != "" {
		d, err := time.Parse("2006-01-02", to)
		if err != nil {
			return helpers.RespondError(ctx, models.ValidationErrorf("invalid to_date %q", to))
		}
		filter.ToDate = &d
	}

	repo := repositories.NewSettlementRepository(c.DB, c.Locker)
	rows, err := repo.List(middleware.StoreID(ctx), filter,
		ctx.QueryInt("limit", 30), ctx.QueryInt("offset", 0))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"settlements": rows}})
}
