package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")             // Current directory
		v.AddConfigPath("./configs")     // Project configs directory
		v.AddConfigPath("/etc/epistats") // System-wide config
	}

	setDefaults(v)

	// Enable environment variable overrides (EPISTATS_DATA_DIR, ...)
	v.SetEnvPrefix("EPISTATS")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("data.dir", d.Data.Dir)
	v.SetDefault("data.cases_file", d.Data.CasesFile)
	v.SetDefault("data.population_file", d.Data.PopulationFile)
	v.SetDefault("data.start_year", d.Data.StartYear)
	v.SetDefault("data.end_year", d.Data.EndYear)
	v.SetDefault("data.population_skip", d.Data.PopulationSkip)
	v.SetDefault("data.cleaned_prefix", d.Data.CleanedPrefix)

	v.SetDefault("analysis.window", d.Analysis.Window)
	v.SetDefault("analysis.pop_norm", d.Analysis.PopNorm)
	v.SetDefault("analysis.spread", d.Analysis.Spread)
	v.SetDefault("analysis.offset", d.Analysis.Offset)

	v.SetDefault("figures.output_dir", d.Figures.OutputDir)
	v.SetDefault("figures.width_cm", d.Figures.WidthCm)
	v.SetDefault("figures.height_cm", d.Figures.HeightCm)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)

	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.subject", d.Queue.Subject)

	v.SetDefault("results.dir", d.Results.Dir)
	v.SetDefault("results.compression", d.Results.Compression)

	v.SetDefault("resolver.threshold", d.Resolver.Threshold)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:            "./data",
			CasesFile:      "measlescasedata.csv",
			PopulationFile: "API_SP.POP.TOTL_DS2_en_csv_v2_84031.csv",
			StartYear:      1974,
			EndYear:        2022,
			PopulationSkip: 2,
			CleanedPrefix:  "cleaned",
		},
		Analysis: AnalysisConfig{
			Window:  10,
			PopNorm: 100000,
			Spread:  3,
			Offset:  2,
		},
		Figures: FiguresConfig{
			OutputDir: "./figures",
			WidthCm:   25,
			HeightCm:  20,
		},
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: 5580,
		},
		Queue: QueueConfig{
			Type:    "memory",
			Subject: "epistats.summary",
		},
		Results: ResultsConfig{
			Dir:         "./data/results",
			Compression: "snappy",
		},
		Resolver: ResolverConfig{
			Threshold: 0.85,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
