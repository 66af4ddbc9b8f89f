package handlers

import (
	"github.com/gofiber/fiber/v2"

	"cafeteria/internal/domain"
	applog "cafeteria/internal/log"
	"cafeteria/internal/services"
	"cafeteria/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "productId must be a positive number",
		})
	}

	avail, err := h.Inv.CheckAvailability(c.UserContext(), domain.ProductID(id))
	if err != nil {
		applog.Error(c, "availability.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not check availability",
		})
	}
	return c.JSON(avail)
}
