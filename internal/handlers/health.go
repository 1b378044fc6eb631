package handlers

import (
	"time"

	"github.com/epistats/epistats/internal/models"
	"github.com/gofiber/fiber/v2"
)

// Health handles health check requests
func (h *Handler) Health(c *fiber.Ctx) error {
	resp := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
	}

	if h.summaryService != nil {
		rows, err := h.summaryService.Countries(c.UserContext(), "")
		if err == nil {
			resp.Countries = len(rows)
		}
	}

	return c.JSON(resp)
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}
