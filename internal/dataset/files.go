package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/logging"
)

// Data is the loaded pair of cleaned tables plus their ISO-3 join
type Data struct {
	Cases      *Table
	Population *Table
	Lookup     []LookupRow
}

// CleanFiles reads the raw case and population exports named in cfg and
// writes the cleaned wide tables next to them
func CleanFiles(cfg *config.Config, logger *logging.Logger) error {
	years := YearRange{From: cfg.Data.StartYear, To: cfg.Data.EndYear}

	casesPath := cfg.GetDataPath(cfg.Data.CasesFile)
	cases, err := cleanFile(casesPath, func(f *os.File) (*Table, error) {
		return CleanIncidence(f, years)
	})
	if err != nil {
		return err
	}
	if err := WriteFile(cfg.CleanedCasesPath(), cases); err != nil {
		return fmt.Errorf("failed to write cleaned cases: %w", err)
	}
	logger.Info("Cleaned case data",
		"source", casesPath,
		"output", cfg.CleanedCasesPath(),
		"countries", len(cases.Rows),
		"years", len(cases.Years))

	popPath := cfg.GetDataPath(cfg.Data.PopulationFile)
	pop, err := cleanFile(popPath, func(f *os.File) (*Table, error) {
		return CleanPopulation(f, years, cfg.Data.PopulationSkip)
	})
	if err != nil {
		return err
	}
	if err := WriteFile(cfg.CleanedPopulationPath(), pop); err != nil {
		return fmt.Errorf("failed to write cleaned population: %w", err)
	}
	logger.Info("Cleaned population data",
		"source", popPath,
		"output", cfg.CleanedPopulationPath(),
		"countries", len(pop.Rows),
		"years", len(pop.Years))

	return nil
}

func cleanFile(path string, clean func(*os.File) (*Table, error)) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw data: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := clean(f)
	if err != nil {
		return nil, fmt.Errorf("failed to clean %s: %w", path, err)
	}
	return t, nil
}

// LoadCleaned reads the cleaned tables named in cfg and joins them
func LoadCleaned(cfg *config.Config) (*Data, error) {
	cases, err := ReadFile(cfg.CleanedCasesPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load cleaned cases: %w", err)
	}

	pop, err := ReadFile(cfg.CleanedPopulationPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load cleaned population: %w", err)
	}

	return &Data{
		Cases:      cases,
		Population: pop,
		Lookup:     Join(pop, cases),
	}, nil
}

// LoadOrClean loads the cleaned tables, cleaning the raw exports first when
// a cleaned file does not exist yet
func LoadOrClean(cfg *config.Config, logger *logging.Logger) (*Data, error) {
	data, err := LoadCleaned(cfg)
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		return data, err
	}

	logger.Warn("Cleaned data not found, cleaning raw files", "error", err)
	if err := CleanFiles(cfg, logger); err != nil {
		return nil, err
	}
	return LoadCleaned(cfg)
}

// Extract pulls the aligned series of one country from the loaded tables
func (d *Data) Extract(iso3 string, years []int) (CountrySeries, error) {
	return Extract(iso3, d.Cases, d.Population, years)
}

// Country returns the lookup row for an ISO-3 code
func (d *Data) Country(iso3 string) (LookupRow, bool) {
	for _, r := range d.Lookup {
		if r.ISO3 == iso3 {
			return r, true
		}
	}
	return LookupRow{}, false
}
