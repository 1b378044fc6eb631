package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid http port",
			mutate:  func(c *Config) { c.Server.HTTPPort = 0 },
			wantErr: true,
		},
		{
			name:    "end year before start year",
			mutate:  func(c *Config) { c.Data.StartYear, c.Data.EndYear = 2000, 1990 },
			wantErr: true,
		},
		{
			name:    "missing data dir",
			mutate:  func(c *Config) { c.Data.Dir = "" },
			wantErr: true,
		},
		{
			name:    "zero window",
			mutate:  func(c *Config) { c.Analysis.Window = 0 },
			wantErr: true,
		},
		{
			name:    "negative pop norm",
			mutate:  func(c *Config) { c.Analysis.PopNorm = -1 },
			wantErr: true,
		},
		{
			name:    "unknown compression",
			mutate:  func(c *Config) { c.Results.Compression = "zstd" },
			wantErr: true,
		},
		{
			name:    "resolver threshold above one",
			mutate:  func(c *Config) { c.Resolver.Threshold = 1.5 },
			wantErr: true,
		},
		{
			name:    "invalid logging level",
			mutate:  func(c *Config) { c.Logging.Level = "invalid" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10, cfg.Analysis.Window)
	assert.Equal(t, 100000.0, cfg.Analysis.PopNorm)
	assert.Equal(t, 3.0, cfg.Analysis.Spread)
	assert.Equal(t, 2, cfg.Analysis.Offset)
	assert.Equal(t, 1974, cfg.Data.StartYear)
	assert.Equal(t, 2022, cfg.Data.EndYear)
	assert.Len(t, cfg.Data.Years(), 49)
	assert.NoError(t, cfg.Validate())
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.IsDevelopment())
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"
	assert.True(t, cfg.IsDevelopment())

	assert.Equal(t, filepath.Join("data", "cleaned_measlescasedata.csv"), cfg.CleanedCasesPath())
	assert.Equal(t, filepath.Join("figures", "Fig1.png"), cfg.GetFigurePath("Fig1.png"))
	assert.Equal(t, "0.0.0.0:5580", cfg.GetServerAddress())

	cfg.Data.CleanedPrefix = ""
	assert.Equal(t, "cleaned_pop.csv", cfg.Data.CleanedName("pop.csv"))
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
data:
  dir: /srv/epistats
  start_year: 1980
  end_year: 2018
analysis:
  window: 5
logging:
  level: debug
  format: console
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/epistats", cfg.Data.Dir)
	assert.Equal(t, 1980, cfg.Data.StartYear)
	assert.Equal(t, 2018, cfg.Data.EndYear)
	assert.Equal(t, 5, cfg.Analysis.Window)
	// untouched keys keep their defaults
	assert.Equal(t, 100000.0, cfg.Analysis.PopNorm)
	assert.Equal(t, "measlescasedata.csv", cfg.Data.CasesFile)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  window: 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)

	cfg := LoadOrDefault(path)
	assert.Equal(t, 10, cfg.Analysis.Window)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  dir: ./data\n"), 0o644))

	t.Setenv("EPISTATS_ANALYSIS_WINDOW", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Analysis.Window)
}
