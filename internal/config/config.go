package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Figures  FiguresConfig  `mapstructure:"figures"`
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Results  ResultsConfig  `mapstructure:"results"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig describes where the input tables live and which years they cover
type DataConfig struct {
	Dir            string `mapstructure:"dir"`             // Directory holding raw and cleaned CSV files
	CasesFile      string `mapstructure:"cases_file"`      // Raw WHO case file name (long format)
	PopulationFile string `mapstructure:"population_file"` // Raw World Bank population file name
	StartYear      int    `mapstructure:"start_year"`      // First year kept by cleaning and extraction
	EndYear        int    `mapstructure:"end_year"`        // Last year kept (inclusive)
	PopulationSkip int    `mapstructure:"population_skip"` // Non-blank preamble lines before the World Bank header
	CleanedPrefix  string `mapstructure:"cleaned_prefix"`  // Prefix of cleaned file names (default: "cleaned")
}

// AnalysisConfig holds the parameters of the incidence/CV transforms
type AnalysisConfig struct {
	Window  int     `mapstructure:"window"`   // Trailing window size in years (ny)
	PopNorm float64 `mapstructure:"pop_norm"` // Incidence denominator (per 100,000 by default)
	Spread  float64 `mapstructure:"spread"`   // Gaussian spread s
	Offset  int     `mapstructure:"offset"`   // Gaussian offset dx
}

// FiguresConfig controls rendered PNG output
type FiguresConfig struct {
	OutputDir string  `mapstructure:"output_dir"`
	WidthCm   float64 `mapstructure:"width_cm"`
	HeightCm  float64 `mapstructure:"height_cm"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address for server (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// QueueConfig represents the result publisher configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"`     // Queue type: memory (default), nats, redis, kafka
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Password string `mapstructure:"password"` // Optional authentication
	Subject  string `mapstructure:"subject"`  // Subject prefix for published summaries

	// Redis-specific options
	RedisDB     int    `mapstructure:"redis_db"`     // Redis database number (default: 0)
	RedisStream string `mapstructure:"redis_stream"` // Redis stream prefix (default: "epistats")

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"` // Kafka broker addresses
}

// ResultsConfig controls where computed summaries are persisted
type ResultsConfig struct {
	Dir         string `mapstructure:"dir"`
	Compression string `mapstructure:"compression"` // snappy, none
}

// ResolverConfig tunes country name resolution
type ResolverConfig struct {
	Threshold float64 `mapstructure:"threshold"` // Minimum Jaro-Winkler similarity for a fuzzy match
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data config: %w", err)
	}

	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis config: %w", err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Results.Validate(); err != nil {
		return fmt.Errorf("results config: %w", err)
	}

	if err := c.Resolver.Validate(); err != nil {
		return fmt.Errorf("resolver config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates data configuration
func (c *DataConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}

	if c.CasesFile == "" || c.PopulationFile == "" {
		return fmt.Errorf("cases_file and population_file are required")
	}

	if c.StartYear <= 0 || c.EndYear <= 0 {
		return fmt.Errorf("start_year and end_year must be positive")
	}

	if c.EndYear < c.StartYear {
		return fmt.Errorf("end_year (%d) is before start_year (%d)", c.EndYear, c.StartYear)
	}

	if c.PopulationSkip < 0 {
		return fmt.Errorf("population_skip cannot be negative")
	}

	return nil
}

// Years returns the configured inclusive year range as a slice
func (c *DataConfig) Years() []int {
	years := make([]int, 0, c.EndYear-c.StartYear+1)
	for y := c.StartYear; y <= c.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// Validate validates analysis configuration
func (c *AnalysisConfig) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("window must be at least 1")
	}

	if c.PopNorm <= 0 {
		return fmt.Errorf("pop_norm must be positive")
	}

	if c.Spread <= 0 {
		return fmt.Errorf("spread must be positive")
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	return nil
}

// Validate validates results configuration
func (c *ResultsConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}

	if c.Compression != "snappy" && c.Compression != "none" {
		return fmt.Errorf("compression must be 'snappy' or 'none'")
	}

	return nil
}

// Validate validates resolver configuration
func (c *ResolverConfig) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1]")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
