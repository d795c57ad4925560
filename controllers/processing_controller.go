package controllers

import (
	"time"

	"poultry-app/controllers/helpers"
	"poultry-app/database"
	"poultry-app/middleware"
	"poultry-app/models"
	"poultry-app/repositories"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProcessingController struct {
	DB     *gorm.DB
	Locker database.CellLocker
}

func NewProcessingController(DB *gorm.DB, locker database.CellLocker) *ProcessingController {
	return &ProcessingController{DB: DB, Locker: locker}
}

// CalculateYield previews the conversion before an entry is created.
func (c *ProcessingController) CalculateYield(ctx *fiber.Ctx) error {
	var req struct {
		InputWeight decimal.Decimal      `json:"input_weight"`
		BirdType    models.BirdType      `json:"bird_type"`
		OutputType  models.InventoryType `json:"output_type"`
		AsOfDate    string               `json:"as_of_date,omitempty"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	asOf := time.Now().UTC()
	if req.AsOfDate != "" {
		d, err := time.Parse("2006-01-02", req.AsOfDate)
		if err != nil {
			return helpers.RespondError(ctx, models.ValidationErrorf("invalid as_of_date %q", req.AsOfDate))
		}
		asOf = d
	}

	repo := repositories.NewProcessingRepository(c.DB, c.Locker)
	estimate, err := repo.EstimateYield(req.InputWeight, req.BirdType, req.OutputType, asOf)
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": estimate})
}

func (c *ProcessingController) CreateEntry(ctx *fiber.Ctx) error {
	if !middleware.StoreAcceptsWrites(ctx) {
		return helpers.RespondError(ctx, models.StateTransitionErrorf("store is in maintenance mode"))
	}

	var req models.ProcessingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	req.StoreID = middleware.StoreID(ctx)

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	repo := repositories.NewProcessingRepository(c.DB, c.Locker)
	entry, err := repo.CreateEntry(ctx.UserContext(), &req, middleware.UserID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": entry})
}

func (c *ProcessingController) ListEntries(ctx *fiber.Ctx) error {
	filter := repositories.ProcessingFilter{
		BirdType:   models.BirdType(ctx.Query("bird_type")),
		OutputType: models.InventoryType(ctx.Query("output_type")),
	}
	if filter.BirdType != "" && !filter.BirdType.Valid() {
		return helpers.RespondError(ctx, models.ValidationErrorf("invalid bird_type %q", filter.BirdType))
	}
	if filter.OutputType != "" && !filter.OutputType.Valid() {
		return helpers.RespondError(ctx, models.ValidationErrorf("invalid output_type %q", filter.OutputType))
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

	repo := repositories.NewProcessingRepository(c.DB, c.Locker)
	entries, err := repo.List(middleware.StoreID(ctx), filter,
		ctx.QueryInt("limit", 50), ctx.QueryInt("offset", 0))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"entries": entries}})
}

func (c *ProcessingController) GetWastageConfig(ctx *fiber.Ctx) error {
	bird := models.BirdType(ctx.Query("bird_type"))
	if bird != "" && !bird.Valid() {
		return helpers.RespondError(ctx, models.ValidationErrorf("invalid bird_type %q", bird))
	}

	repo := repositories.NewWastageRepository(c.DB)
	configs, err := repo.List(bird)
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"configs": configs}})
}

func (c *ProcessingController) CreateWastageConfig(ctx *fiber.Ctx) error {
	var req struct {
		BirdType            models.BirdType      `json:"bird_type"`
		TargetInventoryType models.InventoryType `json:"target_inventory_type"`
		Percentage          decimal.Decimal      `json:"percentage"`
		EffectiveDate       string               `json:"effective_date"`
		IsActive            *bool                `json:"is_active,omitempty"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	effective, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		return helpers.RespondError(ctx, models.ValidationErrorf("invalid effective_date %q", req.EffectiveDate))
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	repo := repositories.NewWastageRepository(c.DB)
	cfg, err := repo.Upsert(&models.WastageConfig{
		BirdType:            req.BirdType,
		TargetInventoryType: req.TargetInventoryType,
		Percentage:          req.Percentage,
		EffectiveDate:       effective,
		IsActive:            isActive,
		CreatedBy:           middleware.UserID(ctx),
	})
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": cfg})
}

// ToggleWastageConfig flips a policy row on or off without touching its
// percentage or effective date.
func (c *ProcessingController) ToggleWastageConfig(ctx *fiber.Ctx) error {
	id, err := parseSnowflakeParam(ctx, "id")
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := ctx.BodyParser(&req); err != nil || req.IsActive == nil {
		return helpers.RespondError(ctx, models.ValidationErrorf("is_active is required"))
	}

	repo := repositories.NewWastageRepository(c.DB)
	cfg, err := repo.SetActive(id, *req.IsActive)
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": cfg})
}
