package handlers

import (
	"bytes"
	"testing"

	"github.com/epistats/epistats/internal/compression"
	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/models"
	"github.com/epistats/epistats/internal/pipeline"
	"github.com/epistats/epistats/internal/queue"
	"github.com/epistats/epistats/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Runs_Lifecycle(t *testing.T) {
	app, _ := newTestApp(t)

	var list models.RunListResponse
	status := doJSON(t, app, fiber.MethodGet, "/v1/runs", &list)
	require.Equal(t, fiber.StatusOK, status)
	assert.Zero(t, list.Count)

	var result pipeline.Result
	status = doJSON(t, app, fiber.MethodPost, "/v1/runs?region=afr", &result)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "AFR", result.Region)
	assert.Equal(t, 1, result.Countries)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Published)
	assert.True(t, result.Stored)

	status = doJSON(t, app, fiber.MethodGet, "/v1/runs", &list)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, result.RunID, list.Runs[0].RunID)
	assert.Positive(t, list.Runs[0].Size)

	var run storage.Run
	status = doJSON(t, app, fiber.MethodGet, "/v1/runs/"+result.RunID, &run)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, result.RunID, run.RunID)
	assert.Equal(t, 3, run.Window)
	require.Len(t, run.Summaries, 1)
	assert.Equal(t, "AAA", run.Summaries[0].ISO3)
}

func TestHandler_GetRun_Errors(t *testing.T) {
	app, _ := newTestApp(t)

	var resp models.ErrorResponse
	status := doJSON(t, app, fiber.MethodGet, "/v1/runs/not-a-uuid", &resp)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status = doJSON(t, app, fiber.MethodGet, "/v1/runs/"+uuid.New().String(), &resp)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "RUN_NOT_FOUND", resp.Error.Code)
}

func TestHandler_Runs_Unconfigured(t *testing.T) {
	h := New(logging.NewNop(), newTestService(), nil, nil)

	app := fiber.New()
	app.Get("/v1/runs", h.ListRuns)
	app.Post("/v1/runs", h.CreateRun)

	var resp models.ErrorResponse
	status := doJSON(t, app, fiber.MethodGet, "/v1/runs", &resp)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "UNAVAILABLE", resp.Error.Code)

	status = doJSON(t, app, fiber.MethodPost, "/v1/runs", &resp)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestHandler_CreateRun_PublishFailure(t *testing.T) {
	tests := []struct {
		name      string
		withStore bool
		message   string
	}{
		{name: "stored", withStore: true, message: "Summary run stored but not fully published"},
		{name: "no store", withStore: false, message: "Summary run not fully published"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.NewWithWriter(&buf, zerolog.InfoLevel)
			service := newTestService()

			var store *storage.SnapshotStore
			if tt.withStore {
				var err error
				store, err = storage.NewSnapshotStore(t.TempDir(), compression.Snappy, logging.NewNop())
				require.NoError(t, err)
			}
			pub, err := queue.NewPublisher(config.QueueConfig{})
			require.NoError(t, err)
			require.NoError(t, pub.Close())

			h := New(logger, service, store, pipeline.New(logging.NewNop(), service, store, queue.NewSummaryPublisher(pub, "")))
			app := fiber.New()
			app.Post("/v1/runs", h.CreateRun)

			var resp models.ErrorResponse
			status := doJSON(t, app, fiber.MethodPost, "/v1/runs?region=AMR", &resp)
			assert.Equal(t, fiber.StatusBadGateway, status)
			assert.Equal(t, "PUBLISH_FAILED", resp.Error.Code)
			assert.Equal(t, tt.withStore, resp.Error.Details["stored"])
			assert.Contains(t, buf.String(), `"message":"`+tt.message+`"`)
		})
	}
}
