package handlers

import (
	"fmt"

	"github.com/epistats/epistats/internal/analytics/incidence"
	"github.com/epistats/epistats/internal/models"
	"github.com/epistats/epistats/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gonum.org/v1/gonum/floats"
)

// GetWeights returns the Gaussian window weights
// GET /v1/weights?n=10&s=3&dx=2&normalize=true
func (h *Handler) GetWeights(c *fiber.Ctx) error {
	opts := h.summaryService.Options()
	q := models.WeightsQuery{
		N:         opts.Window,
		Spread:    opts.Spread,
		Offset:    opts.Offset,
		Normalize: true,
	}
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	if q.N < 1 || q.N > utils.MaxWeightsLength {
		return badRequest(c, fmt.Sprintf("n must be between 1 and %d", utils.MaxWeightsLength))
	}
	if q.Spread <= 0 {
		return badRequest(c, "s must be positive")
	}

	var (
		w   []float64
		err error
	)
	if q.Normalize {
		w, err = incidence.NormalizedGaussianWeights(q.N, q.Spread, q.Offset)
	} else {
		w, err = incidence.GaussianWeights(q.N, q.Spread, q.Offset)
	}
	if err != nil {
		return h.serviceError(c, err)
	}

	return c.JSON(models.WeightsResponse{
		N:         q.N,
		Spread:    q.Spread,
		Offset:    q.Offset,
		Normalize: q.Normalize,
		Weights:   w,
		Sum:       floats.Sum(w),
	})
}
