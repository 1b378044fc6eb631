// Package pipeline runs a full summary pass: compute every country summary,
// persist the run and publish one message per country.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/queue"
	"github.com/epistats/epistats/internal/services"
	"github.com/epistats/epistats/internal/storage"
	"github.com/google/uuid"
)

// Result reports what one pass produced
type Result struct {
	RunID     string `json:"run_id"`
	Region    string `json:"region,omitempty"`
	Countries int    `json:"countries"`
	Skipped   int    `json:"skipped"`
	Published int    `json:"published"`
	Stored    bool   `json:"stored"`
}

// Pipeline wires the summary service to the snapshot store and publisher.
// Either sink may be nil.
type Pipeline struct {
	logger    *logging.Logger
	service   *services.SummaryService
	store     *storage.SnapshotStore
	publisher *queue.SummaryPublisher
}

// New creates a Pipeline
func New(
	logger *logging.Logger,
	service *services.SummaryService,
	store *storage.SnapshotStore,
	publisher *queue.SummaryPublisher,
) *Pipeline {
	return &Pipeline{
		logger:    logger,
		service:   service,
		store:     store,
		publisher: publisher,
	}
}

// Run summarizes every country of region (all when empty), stores the run
// and publishes it
func (p *Pipeline) Run(ctx context.Context, region string) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()
	ctx = logging.WithRunID(logging.WithLogger(ctx, p.logger), runID)

	summaries, skipped, err := p.service.Summaries(ctx, region)
	if err != nil {
		return nil, err
	}

	opts := p.service.Options()
	result := &Result{
		RunID:     runID,
		Region:    region,
		Countries: len(summaries),
		Skipped:   len(skipped),
	}

	if p.store != nil {
		_, err := p.store.Save(ctx, &storage.Run{
			RunID:     runID,
			Region:    region,
			Window:    opts.Window,
			PopNorm:   opts.PopNorm,
			Summaries: summaries,
			Skipped:   skipped,
		})
		if err != nil {
			logging.ErrorCtx(ctx, "Failed to store summary run", "region", region, "error", err)
			return nil, fmt.Errorf("failed to store run: %w", err)
		}
		result.Stored = true
	}

	if p.publisher != nil {
		n, err := p.publisher.Publish(ctx, runID, summaries)
		result.Published = n
		if err != nil {
			logging.ErrorCtx(ctx, "Failed to publish summary run",
				"region", region,
				"published", n,
				"stored", result.Stored,
				"error", err)
			return result, fmt.Errorf("failed to publish run: %w", err)
		}
		if n < len(summaries) {
			logging.WarnCtx(ctx, "Some summaries were not published",
				"published", n,
				"countries", len(summaries))
		}
	}

	logging.InfoCtx(ctx, "Summary run completed",
		"region", region,
		"countries", result.Countries,
		"skipped", result.Skipped,
		"published", result.Published,
		"stored", result.Stored,
		"duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
