package middleware

import (
	"strings"

	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/models"
	"github.com/gofiber/fiber/v2"
)

// MinAPIKeyLength is the minimum required length for API keys
const MinAPIKeyLength = 32

// ValidateAPIKey checks if an API key meets the security requirements
func ValidateAPIKey(key string) bool {
	if len(key) < MinAPIKeyLength {
		return false
	}
	return strings.TrimSpace(key) != ""
}

// APIKeyAuth creates an API key authentication middleware. Keys shorter
// than MinAPIKeyLength are ignored.
func APIKeyAuth(logger *logging.Logger, cfg config.AuthConfig) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	keyMap := make(map[string]bool, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		if key == "" {
			continue
		}
		if !ValidateAPIKey(key) {
			logger.Warn("API key does not meet security requirements",
				"key_length", len(key),
				"min_required", MinAPIKeyLength,
				"key_prefix", maskAPIKey(key),
			)
			continue
		}
		keyMap[key] = true
	}

	if len(keyMap) == 0 {
		logger.Error("Authentication enabled without any valid API key; all requests will be rejected",
			"total_keys", len(cfg.APIKeys),
			"min_required_length", MinAPIKeyLength,
		)
	}

	return func(c *fiber.Ctx) error {
		apiKey := requestAPIKey(c)

		if apiKey == "" {
			logger.Warn("API key missing",
				"path", c.Path(),
				"method", c.Method(),
				"ip", c.IP(),
			)
			return unauthorized(c, "API key is required. Provide it via X-API-Key header or Authorization header.")
		}

		if !keyMap[apiKey] {
			logger.Warn("Invalid API key",
				"path", c.Path(),
				"method", c.Method(),
				"ip", c.IP(),
				"api_key_prefix", maskAPIKey(apiKey),
			)
			return unauthorized(c, "Invalid API key.")
		}

		return c.Next()
	}
}

// requestAPIKey reads the key from X-API-Key, "Authorization: Bearer <key>"
// or a bare Authorization header, in that order
func requestAPIKey(c *fiber.Ctx) string {
	if key := c.Get("X-API-Key"); key != "" {
		return key
	}
	auth := c.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return auth
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "UNAUTHORIZED",
			Message: message,
			Path:    c.Path(),
		},
	})
}

// maskAPIKey masks API key for logging (show only first 4 chars)
func maskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
