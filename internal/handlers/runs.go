package handlers

import (
	"time"

	"github.com/epistats/epistats/internal/models"
	"github.com/epistats/epistats/internal/utils"
	"github.com/gofiber/fiber/v2"
)

func unavailable(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "UNAVAILABLE",
			Message: message,
			Path:    c.Path(),
		},
	})
}

// ListRuns lists stored summary runs, newest first
// GET /v1/runs
func (h *Handler) ListRuns(c *fiber.Ctx) error {
	if h.store == nil {
		return unavailable(c, "Result storage is not configured")
	}

	infos, err := h.store.List(c.UserContext())
	if err != nil {
		return h.storageError(c, err)
	}

	resp := models.RunListResponse{
		Runs:  make([]models.RunResponse, len(infos)),
		Count: len(infos),
	}
	for i, info := range infos {
		resp.Runs[i] = models.RunResponse{
			RunID:     info.RunID,
			Size:      info.Size,
			CreatedAt: info.ModTime.UTC().Format(time.RFC3339),
		}
	}

	return c.JSON(resp)
}

// GetRun returns a stored run with all of its summaries
// GET /v1/runs/:run_id
func (h *Handler) GetRun(c *fiber.Ctx) error {
	if h.store == nil {
		return unavailable(c, "Result storage is not configured")
	}

	run, err := h.store.Load(c.UserContext(), c.Params("run_id"))
	if err != nil {
		return h.storageError(c, err)
	}

	return c.JSON(run)
}

// CreateRun computes, stores and publishes the summaries of a region (all
// countries when region is omitted)
// POST /v1/runs?region=AFR
func (h *Handler) CreateRun(c *fiber.Ctx) error {
	if h.pipeline == nil {
		return unavailable(c, "Summary pipeline is not configured")
	}

	var q models.RunQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.pipeline.Run(c.UserContext(), utils.NormalizeCode(q.Region))
	if err != nil {
		if result != nil {
			msg := "Summary run not fully published"
			if result.Stored {
				msg = "Summary run stored but not fully published"
			}
			h.logger.Error(msg,
				"run_id", result.RunID,
				"stored", result.Stored,
				"error", err)
			return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "PUBLISH_FAILED",
					Message: err.Error(),
					Path:    c.Path(),
					Details: map[string]interface{}{
						"run_id":    result.RunID,
						"published": result.Published,
						"countries": result.Countries,
						"stored":    result.Stored,
					},
				},
			})
		}
		return h.serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}
