package incidence

import (
	"fmt"

	"github.com/epistats/epistats/internal/analytics"
	"gonum.org/v1/gonum/stat"
)

// LocalCV computes the equal-weighted coefficient of variation of incidence
// over each trailing window of opts.Window years. The standard deviation is
// the population form (divisor n). A window whose mean incidence is zero has
// CV 0.
func LocalCV(cases, pop []float64, years []int, opts Options) (analytics.Series, error) {
	opts = opts.withDefaults()
	if err := validate(cases, pop, years, opts.Window); err != nil {
		return analytics.Series{}, err
	}

	data, err := Incidence(cases, pop, opts.PopNorm)
	if err != nil {
		return analytics.Series{}, err
	}

	cv := make([]float64, len(data)-opts.Window+1)
	for ix := range cv {
		cv[ix] = coefficientOfVariation(data[ix : ix+opts.Window])
	}

	return analytics.Series{Years: copyYears(years[opts.Window-1:]), Values: cv}, nil
}

// SmoothedCV applies a running Gaussian-weighted average to a local CV
// sequence. Point i averages lcv over the trailing min(i+1, Window) values, so
// the first point equals lcv[0] and the window grows until it reaches Window.
func SmoothedCV(lcv []float64, opts Options) ([]float64, error) {
	opts = opts.withDefaults()
	if opts.Window <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, opts.Window)
	}

	cv := make([]float64, len(lcv))
	for ix := range lcv {
		span := min(ix+1, opts.Window)
		weights, err := NormalizedGaussianWeights(span, opts.Spread, opts.Offset)
		if err != nil {
			return nil, err
		}
		cv[ix] = weightedAverage(weights, lcv[ix-span+1:ix+1])
	}
	return cv, nil
}

// CV computes the local CV and then smooths it. Years follow the local CV.
func CV(cases, pop []float64, years []int, opts Options) (analytics.Series, error) {
	lcv, err := LocalCV(cases, pop, years, opts)
	if err != nil {
		return analytics.Series{}, err
	}

	smoothed, err := SmoothedCV(lcv.Values, opts)
	if err != nil {
		return analytics.Series{}, err
	}

	return analytics.Series{Years: lcv.Years, Values: smoothed}, nil
}

func coefficientOfVariation(window []float64) float64 {
	mean, std := stat.PopMeanStdDev(window, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
