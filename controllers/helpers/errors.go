package helpers

import (
	"errors"

	"poultry-app/models"

	"github.com/gofiber/fiber/v2"
)

// RespondError maps domain errors to structured HTTP responses. Nothing in
// the domain layer is fatal; every failure is scoped to the request.
func RespondError(ctx *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrConfigurationMissing),
		errors.Is(err, models.ErrInsufficientStock):
		status = fiber.StatusBadRequest
	case errors.Is(err, models.ErrStateTransition),
		errors.Is(err, models.ErrConcurrencyConflict):
		status = fiber.StatusConflict
	case errors.Is(err, models.ErrAuthorization):
		status = fiber.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		status = fiber.StatusNotFound
	}

	return ctx.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
