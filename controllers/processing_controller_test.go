package controllers

import (
	"net/http/httptest"
	"testing"

	"poultry-app/database"

	"github.com/gofiber/fiber/v2"
)

// Every filter parameter rejects invalid values instead of silently matching
// nothing. The handler validates before touching the database.
func TestListEntriesRejectsInvalidFilters(t *testing.T) {
	app := fiber.New()
	controller := NewProcessingController(nil, database.NewLocalLocker())
	app.Get("/processing", controller.ListEntries)

	for _, target := range []string{
		"/processing?bird_type=DUCK",
		"/processing?output_type=BONELESS",
		"/processing?from_date=15-03-2024",
		"/processing?to_date=yesterday",
	} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("GET %s status = %d, want %d", target, resp.StatusCode, fiber.StatusBadRequest)
		}
	}
}
