package handlers

import (
	"strings"

	"github.com/epistats/epistats/internal/models"
	"github.com/gofiber/fiber/v2"
)

// Resolve maps a country name or code to its ISO-3 code
// GET /v1/resolve?name=Malawi
func (h *Handler) Resolve(c *fiber.Ctx) error {
	var q models.ResolveQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}
	name := strings.TrimSpace(q.Name)
	if name == "" {
		return badRequest(c, "name is required")
	}

	iso3, err := h.summaryService.Resolve(c.UserContext(), name)
	if err != nil {
		return h.serviceError(c, err)
	}

	resp := models.ResolveResponse{Name: name, ISO3: iso3}
	if row, ok := h.summaryService.Country(iso3); ok {
		resp.Country = row.Country
		resp.Region = row.Region
	}

	return c.JSON(resp)
}
