package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// EnsureDirectories ensures all output directories exist
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Data.Dir,
		c.Figures.OutputDir,
		c.Results.Dir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return nil
}

// GetDataPath returns the full path for a data file
func (c *Config) GetDataPath(filename string) string {
	return filepath.Join(c.Data.Dir, filename)
}

// CleanedName returns the cleaned file name for a raw source file
func (c *DataConfig) CleanedName(filename string) string {
	prefix := c.CleanedPrefix
	if prefix == "" {
		prefix = "cleaned"
	}
	return prefix + "_" + filename
}

// CleanedCasesPath returns the path of the cleaned case table
func (c *Config) CleanedCasesPath() string {
	return c.GetDataPath(c.Data.CleanedName(c.Data.CasesFile))
}

// CleanedPopulationPath returns the path of the cleaned population table
func (c *Config) CleanedPopulationPath() string {
	return c.GetDataPath(c.Data.CleanedName(c.Data.PopulationFile))
}

// GetFigurePath returns the full path for an output figure
func (c *Config) GetFigurePath(filename string) string {
	return filepath.Join(c.Figures.OutputDir, filename)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}
