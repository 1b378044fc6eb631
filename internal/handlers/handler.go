package handlers

import (
	"errors"

	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/models"
	"github.com/epistats/epistats/internal/pipeline"
	"github.com/epistats/epistats/internal/services"
	"github.com/epistats/epistats/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger         *logging.Logger
	summaryService *services.SummaryService
	// Optional: run endpoints answer 503 when nil
	store    *storage.SnapshotStore
	pipeline *pipeline.Pipeline
}

// New creates a new handler instance
func New(logger *logging.Logger, summaryService *services.SummaryService,
	store *storage.SnapshotStore, p *pipeline.Pipeline,
) *Handler {
	return &Handler{
		logger:         logger,
		summaryService: summaryService,
		store:          store,
		pipeline:       p,
	}
}

// serviceError writes err as an error response, classifying plain errors by
// the sentinel they wrap
func (h *Handler) serviceError(c *fiber.Ctx, err error) error {
	se := services.ToServiceError(err)
	status := se.HTTPStatus()

	if status >= fiber.StatusInternalServerError {
		h.logger.Error("Request failed",
			"path", c.Path(),
			"code", se.Code,
			"error", err)
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    se.Code,
			Message: se.Message,
			Path:    c.Path(),
			Details: se.Details,
		},
	})
}

// badRequest writes a 400 INVALID_INPUT response
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeInvalidInput,
			Message: message,
			Path:    c.Path(),
		},
	})
}

// storageError maps snapshot store errors
func (h *Handler) storageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, storage.ErrRunNotFound):
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "RUN_NOT_FOUND",
				Message: err.Error(),
				Path:    c.Path(),
			},
		})
	case errors.Is(err, storage.ErrInvalidRunID):
		return badRequest(c, err.Error())
	}

	h.logger.Error("Snapshot store error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeInternal,
			Message: "Failed to access stored runs",
			Path:    c.Path(),
		},
	})
}
