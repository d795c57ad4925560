package controllers

import (
	"fmt"
	"net/http"
	"time"

	"poultry-app/controllers/helpers"
	"poultry-app/database"
	"poultry-app/middleware"
	"poultry-app/models"
	"poultry-app/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type InventoryController struct {
	DB     *gorm.DB
	Locker database.CellLocker
}

func NewInventoryController(DB *gorm.DB, locker database.CellLocker) *InventoryController {
	return &InventoryController{DB: DB, Locker: locker}
}

func (c *InventoryController) GetStock(ctx *fiber.Ctx) error {
	ledger := repositories.NewLedgerRepository(c.DB, c.Locker)
	summary, err := ledger.CurrentStock(middleware.StoreID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": summary})
}

func (c *InventoryController) GetStockByBirdType(ctx *fiber.Ctx) error {
	bird := models.BirdType(ctx.Params("bird_type"))
	if !bird.Valid() {
		return helpers.RespondError(ctx, models.ValidationErrorf("invalid bird_type %q", bird))
	}

	ledger := repositories.NewLedgerRepository(c.DB, c.Locker)
	summary, err := ledger.CurrentStock(middleware.StoreID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": summary.ByBird(bird)})
}

func parseLedgerFilter(ctx *fiber.Ctx) (repositories.LedgerFilter, error) {
	filter := repositories.LedgerFilter{
		BirdType:      models.BirdType(ctx.Query("bird_type")),
		InventoryType: models.InventoryType(ctx.Query("inventory_type")),
		ReasonCode:    ctx.Query("reason_code"),
	}
	if filter.BirdType != "" && !filter.BirdType.Valid() {
		return filter, models.ValidationErrorf("invalid bird_type %q", filter.BirdType)
	}
	if filter.InventoryType != "" && !filter.InventoryType.Valid() {
		return filter, models.ValidationErrorf("invalid inventory_type %q", filter.InventoryType)
	}
	if from := ctx.Query("from_date"); from != "" {
		d, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, models.ValidationErrorf("invalid from_date %q", from)
		}
		filter.FromDate = &d
	}
	if to := ctx.Query("to_date"); to != "" {
		d, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, models.ValidationErrorf("invalid to_date %q", to)
		}
		end := d.Add(24 * time.Hour)
		filter.ToDate = &end
	}
	return filter, nil
}

func (c *InventoryController) GetLedger(ctx *fiber.Ctx) error {
	filter, err := parseLedgerFilter(ctx)
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	ledger := repositories.NewLedgerRepository(c.DB, c.Locker)
	entries, err := ledger.History(middleware.StoreID(ctx), filter,
		ctx.QueryInt("limit", 100), ctx.QueryInt("offset", 0))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"entries": entries}})
}

// ExportLedgerExcel streams the filtered ledger as a spreadsheet.
func (c *InventoryController) ExportLedgerExcel(ctx *fiber.Ctx) error {
	filter, err := parseLedgerFilter(ctx)
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	ledger := repositories.NewLedgerRepository(c.DB, c.Locker)
	entries, err := ledger.History(middleware.StoreID(ctx), filter, 500, 0)
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	headers := []string{"Date", "Bird Type", "Inventory Type", "Change (kg)", "Bird Count Change", "Balance (kg)", "Reason", "Ref Type", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, e := range entries {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), e.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(e.BirdType))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), string(e.InventoryType))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), e.QuantityChange.StringFixed(3))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), e.BirdCountChange)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), e.NewQuantity.StringFixed(3))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), e.ReasonCode)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), e.RefType)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), e.Notes)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="ledger.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(http.StatusInternalServerError).SendString("Failed to generate Excel")
	}
	return nil
}

// Adjust posts a manual stock correction. Gated on inventory.adjust, which
// only the Admin role carries.
func (c *InventoryController) Adjust(ctx *fiber.Ctx) error {
	if !middleware.StoreAcceptsWrites(ctx) {
		return helpers.RespondError(ctx, models.StateTransitionErrorf("store is in maintenance mode"))
	}

	var req models.ManualAdjustmentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	req.StoreID = middleware.StoreID(ctx)

	ledger := repositories.NewLedgerRepository(c.DB, c.Locker)
	entry, err := ledger.Adjust(ctx.UserContext(), &req, middleware.UserID(ctx))
	if err != nil {
		return helpers.RespondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": entry})
}

func (c *InventoryController) GetReasonCodes(ctx *fiber.Ctx) error {
	codes := make([]models.ReasonCodeInfo, 0, len(models.ReasonCodes))
	for _, info := range models.ReasonCodes {
		codes = append(codes, info)
	}
	slices.SortFunc(codes, func(a, b models.ReasonCodeInfo) int {
		if a.Code < b.Code {
			return -1
		}
		if a.Code > b.Code {
			return 1
		}
		return 0
	})

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": fiber.Map{"reason_codes": codes}})
}
