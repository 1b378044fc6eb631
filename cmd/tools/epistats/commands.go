package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/dataset"
	"github.com/epistats/epistats/internal/figures"
	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/pipeline"
	"github.com/epistats/epistats/internal/queue"
	"github.com/epistats/epistats/internal/services"
	"github.com/epistats/epistats/internal/storage"
	"github.com/epistats/epistats/internal/utils"
	"github.com/urfave/cli/v2"
)

// env holds what every command shares: the configuration and logger, plus
// the loaded data once a command asks for it
type env struct {
	cfg    *config.Config
	logger *logging.Logger

	service *services.SummaryService
}

func (e *env) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetGlobal(logger)

	e.cfg = cfg
	e.logger = logger
	return nil
}

func (e *env) summaryService() (*services.SummaryService, error) {
	if e.service != nil {
		return e.service, nil
	}

	data, err := dataset.LoadOrClean(e.cfg, e.logger)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Data loaded", "countries", len(data.Lookup))

	e.service = services.NewSummaryServiceFromConfig(e.logger, data, e.cfg)
	return e.service, nil
}

func (e *env) renderer() (*figures.Renderer, error) {
	service, err := e.summaryService()
	if err != nil {
		return nil, err
	}
	return figures.NewRenderer(e.logger, service, e.cfg.Figures, figures.DefaultOptions())
}

func (e *env) clean(c *cli.Context) error {
	start := time.Now()
	if err := dataset.CleanFiles(e.cfg, e.logger); err != nil {
		e.logger.Error("Cleaning failed", "error", err)
		return err
	}
	e.logger.Info("Cleaning completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (e *env) figure(render func(*figures.Renderer, context.Context) (string, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := e.renderer()
		if err != nil {
			return err
		}
		path, err := render(r, c.Context)
		if err != nil {
			e.logger.Error("Rendering failed", "error", err)
			return err
		}
		fmt.Fprintln(c.App.Writer, path)
		return nil
	}
}

func (e *env) country(c *cli.Context) error {
	r, err := e.renderer()
	if err != nil {
		return err
	}

	path, err := r.CountryCases(c.Context, c.String("country"))
	if err != nil {
		e.logger.Error("Rendering failed", "country", c.String("country"), "error", err)
		return err
	}
	fmt.Fprintln(c.App.Writer, path)
	return nil
}

func (e *env) allFigures(c *cli.Context) error {
	r, err := e.renderer()
	if err != nil {
		return err
	}

	paths, err := r.All(c.Context)
	for _, path := range paths {
		fmt.Fprintln(c.App.Writer, path)
	}
	if err != nil {
		e.logger.Error("Rendering failed", "rendered", len(paths), "error", err)
	}
	return err
}

func (e *env) publish(c *cli.Context) error {
	service, err := e.summaryService()
	if err != nil {
		return err
	}

	store, err := storage.NewSnapshotStoreFromConfig(e.cfg.Results, e.logger)
	if err != nil {
		return err
	}

	publisher, err := queue.NewPublisher(e.cfg.Queue)
	if err != nil {
		return fmt.Errorf("failed to connect to queue: %w", err)
	}
	summaryPublisher := queue.NewSummaryPublisher(publisher, e.cfg.Queue.Subject)
	defer func() { _ = summaryPublisher.Close() }()

	ctx, cancel := context.WithTimeout(c.Context, utils.PublishTimeout)
	defer cancel()

	region := strings.ToUpper(c.String("region"))
	result, err := pipeline.New(e.logger, service, store, summaryPublisher).Run(ctx, region)
	if err != nil {
		e.logger.Error("Publish failed", "region", region, "error", err)
		return err
	}

	fmt.Fprintf(c.App.Writer, "run %s: %d countries, %d skipped, %d published\n",
		result.RunID, result.Countries, result.Skipped, result.Published)
	return nil
}
