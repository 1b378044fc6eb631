package router

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/epistats/epistats/internal/analytics/incidence"
	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/countrycode"
	"github.com/epistats/epistats/internal/dataset"
	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeps() Deps {
	years := []int{2000, 2001, 2002}
	cases := dataset.NewTable([]string{dataset.ColISO3, dataset.ColRegion}, years, []dataset.Row{
		{ISO3: "MWI", Region: "AFR", Values: []float64{10, 20, 30}},
	})
	pop := dataset.NewTable([]string{dataset.ColCountry, dataset.ColISO3}, years, []dataset.Row{
		{ISO3: "MWI", Country: "Malawi", Values: []float64{1e6, 1e6, 1e6}},
	})
	data := &dataset.Data{Cases: cases, Population: pop, Lookup: dataset.Join(pop, cases)}

	opts := incidence.DefaultOptions()
	opts.Window = 2
	resolver := countrycode.NewFuzzyResolver(data.Lookup, countrycode.DefaultThreshold)
	return Deps{Service: services.NewSummaryService(logging.NewNop(), data, resolver, years, opts)}
}

func TestRouter_Routes(t *testing.T) {
	cfg := config.DefaultConfig()
	app := New(logging.NewNop(), newTestDeps(), cfg)

	tests := []struct {
		method     string
		target     string
		wantStatus int
	}{
		{"GET", "/health", fiber.StatusOK},
		{"GET", "/v1/countries", fiber.StatusOK},
		{"GET", "/v1/countries/MWI/series", fiber.StatusOK},
		{"GET", "/v1/countries/MWI/summary", fiber.StatusOK},
		{"GET", "/v1/regions/AFR/snapshot?years=2002", fiber.StatusOK},
		{"GET", "/v1/weights?n=5", fiber.StatusOK},
		{"GET", "/v1/resolve?name=malawi", fiber.StatusOK},
		{"GET", "/v1/runs", fiber.StatusServiceUnavailable},
		{"GET", "/v1/nope", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRouter_Auth(t *testing.T) {
	key := strings.Repeat("k", 40)
	cfg := config.DefaultConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{key}}
	app := New(logging.NewNop(), newTestDeps(), cfg)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/v1/countries", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/v1/countries", nil)
	req.Header.Set("X-API-Key", key)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
