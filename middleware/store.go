package middleware

import (
	"strconv"

	"poultry-app/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StoreMiddlewareStruct struct {
	DB *gorm.DB
}

func NewStoreMiddleware(db *gorm.DB) *StoreMiddlewareStruct {
	return &StoreMiddlewareStruct{DB: db}
}

// RequireStore resolves the X-Store-ID header, checks the caller is assigned
// to that store (admins may access any store), and puts the store in the
// context. Every inventory operation is scoped to one store.
func (s *StoreMiddlewareStruct) RequireStore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("X-Store-ID")
		if header == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Missing X-Store-ID header",
			})
		}
		storeID, err := strconv.ParseUint(header, 10, 32)
		if err != nil || storeID == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid X-Store-ID header",
			})
		}

		var store models.Store
		if err := s.DB.First(&store, uint(storeID)).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Store not found",
			})
		}

		if !IsAdmin(c) {
			var count int64
			s.DB.Table("user_stores").
				Where("user_id = ? AND store_id = ?", UserID(c), uint(storeID)).
				Count(&count)
			if count == 0 {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"message": "Access denied to this store",
				})
			}
		}

		c.Locals("storeID", uint(storeID))
		c.Locals("store", &store)
		return c.Next()
	}
}

// StoreID reads the resolved store from the context.
func StoreID(c *fiber.Ctx) uint {
	if v, ok := c.Locals("storeID").(uint); ok {
		return v
	}
	return 0
}

// StoreAcceptsWrites checks maintenance mode for the resolved store.
func StoreAcceptsWrites(c *fiber.Ctx) bool {
	store, ok := c.Locals("store").(*models.Store)
	if !ok {
		return false
	}
	return store.AcceptsWrites(IsAdmin(c))
}
