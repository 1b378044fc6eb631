package handlers

import (
	"github.com/epistats/epistats/internal/analytics/incidence"
	"github.com/epistats/epistats/internal/models"
	"github.com/epistats/epistats/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// ListCountries lists the joined countries, optionally filtered by region
// GET /v1/countries?region=AFR
func (h *Handler) ListCountries(c *fiber.Ctx) error {
	var q models.CountriesQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}
	region := utils.NormalizeCode(q.Region)

	rows, err := h.summaryService.Countries(c.UserContext(), region)
	if err != nil {
		return h.serviceError(c, err)
	}

	resp := models.CountryListResponse{
		Region:    region,
		Countries: make([]models.CountryResponse, len(rows)),
		Count:     len(rows),
	}
	for i, row := range rows {
		resp.Countries[i] = models.CountryResponse{
			ISO3:    row.ISO3,
			Country: row.Country,
			Region:  row.Region,
		}
	}

	return c.JSON(resp)
}

// GetSeries returns the aligned cases, population and raw incidence of a country
// GET /v1/countries/:iso3/series
func (h *Handler) GetSeries(c *fiber.Ctx) error {
	iso3 := utils.NormalizeCode(c.Params("iso3"))

	series, err := h.summaryService.Series(c.UserContext(), iso3)
	if err != nil {
		return h.serviceError(c, err)
	}

	inc, err := incidence.Incidence(series.Cases, series.Population, h.summaryService.Options().PopNorm)
	if err != nil {
		return h.serviceError(c, err)
	}

	resp := models.SeriesResponse{
		ISO3:       series.ISO3,
		Years:      series.Years,
		Cases:      series.Cases,
		Population: series.Population,
		Incidence:  inc,
	}
	if row, ok := h.summaryService.Country(iso3); ok {
		resp.Country = row.Country
	}

	return c.JSON(resp)
}

// GetSummary returns mean incidence, local CV, smoothed CV and the phase
// trace of a country
// GET /v1/countries/:iso3/summary
func (h *Handler) GetSummary(c *fiber.Ctx) error {
	iso3 := utils.NormalizeCode(c.Params("iso3"))

	summary, err := h.summaryService.CountrySummary(c.UserContext(), iso3)
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(summary)
}
