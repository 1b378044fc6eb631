package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/epistats/epistats/internal/analytics/incidence"
	"github.com/epistats/epistats/internal/compression"
	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/countrycode"
	"github.com/epistats/epistats/internal/dataset"
	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/pipeline"
	"github.com/epistats/epistats/internal/queue"
	"github.com/epistats/epistats/internal/services"
	"github.com/epistats/epistats/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

var testYears = []int{2000, 2001, 2002, 2003, 2004}

func newTestService() *services.SummaryService {
	cases := dataset.NewTable([]string{dataset.ColISO3, dataset.ColRegion}, testYears, []dataset.Row{
		{ISO3: "AAA", Region: "AFR", Values: []float64{1, 2, 3, 4, 5}},
		{ISO3: "BBB", Region: "AFR", Values: []float64{0, 0, 0, 0, 10}},
		{ISO3: "CCC", Region: "AMR", Values: []float64{5, 5, 5, 5, 5}},
	})
	pop := dataset.NewTable([]string{dataset.ColCountry, dataset.ColISO3}, testYears, []dataset.Row{
		{ISO3: "AAA", Country: "Alpha", Values: []float64{1e5, 1e5, 1e5, 1e5, 1e5}},
		{ISO3: "BBB", Country: "Beta", Values: []float64{1e5, 1e5, 0, 1e5, 1e5}},
		{ISO3: "CCC", Country: "Gamma", Values: []float64{1e5, 1e5, 1e5, 1e5, 1e5}},
	})
	data := &dataset.Data{Cases: cases, Population: pop, Lookup: dataset.Join(pop, cases)}

	opts := incidence.DefaultOptions()
	opts.Window = 3
	resolver := countrycode.NewFuzzyResolver(data.Lookup, countrycode.DefaultThreshold)
	return services.NewSummaryService(logging.NewNop(), data, resolver, testYears, opts)
}

// newTestApp wires every handler route against the fixture tables, a temp
// snapshot store and an in-memory publisher
func newTestApp(t *testing.T) (*fiber.App, *Handler) {
	t.Helper()

	logger := logging.NewNop()
	service := newTestService()
	store, err := storage.NewSnapshotStore(t.TempDir(), compression.Snappy, logger)
	require.NoError(t, err)
	pub, err := queue.NewPublisher(config.QueueConfig{})
	require.NoError(t, err)
	p := pipeline.New(logger, service, store, queue.NewSummaryPublisher(pub, ""))

	h := New(logger, service, store, p)

	app := fiber.New()
	app.Get("/health", h.Health)
	v1 := app.Group("/v1")
	v1.Get("/countries", h.ListCountries)
	v1.Get("/countries/:iso3/series", h.GetSeries)
	v1.Get("/countries/:iso3/summary", h.GetSummary)
	v1.Get("/regions/:region/snapshot", h.GetRegionSnapshot)
	v1.Get("/weights", h.GetWeights)
	v1.Get("/resolve", h.Resolve)
	v1.Get("/runs", h.ListRuns)
	v1.Get("/runs/:run_id", h.GetRun)
	v1.Post("/runs", h.CreateRun)
	app.Use(h.NotFound)

	return app, h
}

// doJSON performs a request and decodes the JSON body into out
func doJSON(t *testing.T, app *fiber.App, method, target string, out interface{}) int {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return resp.StatusCode
}
