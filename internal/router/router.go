package router

import (
	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/handlers"
	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/middleware"
	"github.com/epistats/epistats/internal/pipeline"
	"github.com/epistats/epistats/internal/services"
	"github.com/epistats/epistats/internal/storage"
	"github.com/epistats/epistats/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps are the components served by the API. Store and Pipeline may be nil.
type Deps struct {
	Service  *services.SummaryService
	Store    *storage.SnapshotStore
	Pipeline *pipeline.Pipeline
}

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, deps Deps, cfg *config.Config) *handlers.Handler {
	h := handlers.New(logger, deps.Service, deps.Store, deps.Pipeline)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	authMiddleware := middleware.APIKeyAuth(logger, cfg.Auth)
	v1 := app.Group("/v1", authMiddleware)

	// Countries
	v1.Get("/countries", h.ListCountries)
	v1.Get("/countries/:iso3/series", h.GetSeries)
	v1.Get("/countries/:iso3/summary", h.GetSummary)

	// Regional cross-sections
	v1.Get("/regions/:region/snapshot", h.GetRegionSnapshot)

	v1.Get("/weights", h.GetWeights)
	v1.Get("/resolve", h.Resolve)

	// Stored summary runs
	v1.Get("/runs", h.ListRuns)
	v1.Post("/runs", h.CreateRun)
	v1.Get("/runs/:run_id", h.GetRun)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, deps Deps, cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "epistats API",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
		ReadTimeout:           utils.DefaultRequestTimeout,
		WriteTimeout:          utils.DefaultRequestTimeout,
	})

	Setup(app, logger, deps, cfg)

	return app
}
