package middleware

import (
	"errors"

	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/models"
	"github.com/epistats/epistats/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler returns the app-wide error handler. Fiber errors keep their
// status; service errors are mapped by code; anything else is a 500.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    "ERROR",
			Message: "Internal Server Error",
		}

		var fe *fiber.Error
		var se *services.ServiceError
		switch {
		case errors.As(err, &fe):
			status = fe.Code
			detail.Message = fe.Message
		case errors.As(err, &se):
			status = se.HTTPStatus()
			detail.Code = se.Code
			detail.Message = se.Message
			detail.Details = se.Details
		}

		logger.Error("Request error",
			"path", c.Path(),
			"method", c.Method(),
			"status", status,
			"error", err,
		)

		return c.Status(status).JSON(models.ErrorResponse{Error: detail})
	}
}
