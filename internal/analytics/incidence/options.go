package incidence

import (
	"errors"

	"github.com/epistats/epistats/internal/config"
)

const (
	DefaultWindow  = 10
	DefaultPopNorm = 100000.0
	DefaultSpread  = 3.0
	DefaultOffset  = 2
)

var (
	ErrInvalidWindow     = errors.New("window length must be positive")
	ErrLengthMismatch    = errors.New("cases, population and years must have the same length")
	ErrInsufficientData  = errors.New("series shorter than window")
	ErrStartYearNotFound = errors.New("start year not present in series")
	ErrInvalidPopulation = errors.New("population must be positive and finite")
)

// Options parameterizes the transforms.
//
// Window, PopNorm and Spread fall back to their defaults when zero. Offset is
// used as given, so start from DefaultOptions when the default offset is wanted.
// StartYear switches WeightedMeanIncidence to the growing-window variant.
type Options struct {
	Window    int
	PopNorm   float64
	Spread    float64
	Offset    int
	StartYear int
}

// DefaultOptions returns ny=10, per-100k incidence, s=3, dx=2
func DefaultOptions() Options {
	return Options{
		Window:  DefaultWindow,
		PopNorm: DefaultPopNorm,
		Spread:  DefaultSpread,
		Offset:  DefaultOffset,
	}
}

// OptionsFromConfig maps the analysis section of the configuration
func OptionsFromConfig(cfg config.AnalysisConfig) Options {
	return Options{
		Window:  cfg.Window,
		PopNorm: cfg.PopNorm,
		Spread:  cfg.Spread,
		Offset:  cfg.Offset,
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Window == 0 {
		o.Window = DefaultWindow
	}
	if o.PopNorm == 0 {
		o.PopNorm = DefaultPopNorm
	}
	if o.Spread == 0 {
		o.Spread = DefaultSpread
	}
	return o
}
