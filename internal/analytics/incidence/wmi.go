package incidence

import (
	"fmt"
	"math"

	"github.com/epistats/epistats/internal/analytics"
)

// Incidence returns popNorm*cases/pop for every year
func Incidence(cases, pop []float64, popNorm float64) ([]float64, error) {
	if len(cases) != len(pop) {
		return nil, fmt.Errorf("%w: %d cases, %d population", ErrLengthMismatch, len(cases), len(pop))
	}
	if err := checkPopulation(pop); err != nil {
		return nil, err
	}

	out := make([]float64, len(cases))
	for i := range cases {
		out[i] = popNorm * cases[i] / pop[i]
	}
	return out, nil
}

// WeightedMeanIncidence computes the Gaussian-weighted mean incidence.
//
// Fixed-window variant (opts.StartYear == 0): one value per trailing window of
// opts.Window years, labelled with the window's last year. The output has
// len(cases)-Window+1 points.
//
// Growing-window variant (opts.StartYear set): the window always starts at
// StartYear and grows by one year per output point, with a Gaussian kernel
// sized to the current window. The output covers StartYear through the last
// year.
func WeightedMeanIncidence(cases, pop []float64, years []int, opts Options) (analytics.Series, error) {
	opts = opts.withDefaults()
	if err := validate(cases, pop, years, opts.Window); err != nil {
		return analytics.Series{}, err
	}

	data, err := Incidence(cases, pop, opts.PopNorm)
	if err != nil {
		return analytics.Series{}, err
	}

	if opts.StartYear != 0 {
		return growingWMI(data, years, opts)
	}

	weights, err := NormalizedGaussianWeights(opts.Window, opts.Spread, opts.Offset)
	if err != nil {
		return analytics.Series{}, err
	}

	n := len(data) - opts.Window + 1
	mi := make([]float64, n)
	for ix := range mi {
		mi[ix] = weightedAverage(weights, data[ix:ix+opts.Window])
	}

	return analytics.Series{Years: copyYears(years[opts.Window-1:]), Values: mi}, nil
}

func growingWMI(data []float64, years []int, opts Options) (analytics.Series, error) {
	start := -1
	for i, y := range years {
		if y == opts.StartYear {
			start = i
			break
		}
	}
	if start < 0 {
		return analytics.Series{}, fmt.Errorf("%w: %d", ErrStartYearNotFound, opts.StartYear)
	}

	mi := make([]float64, len(data)-start)
	for ix := range mi {
		end := start + ix + 1
		weights, err := NormalizedGaussianWeights(end-start, opts.Spread, opts.Offset)
		if err != nil {
			return analytics.Series{}, err
		}
		mi[ix] = weightedAverage(weights, data[start:end])
	}

	return analytics.Series{Years: copyYears(years[start:]), Values: mi}, nil
}

func validate(cases, pop []float64, years []int, window int) error {
	if window <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	if len(cases) != len(pop) || len(cases) != len(years) {
		return fmt.Errorf("%w: %d cases, %d population, %d years",
			ErrLengthMismatch, len(cases), len(pop), len(years))
	}
	if len(cases) < window {
		return fmt.Errorf("%w: %d points, window %d", ErrInsufficientData, len(cases), window)
	}
	return nil
}

func checkPopulation(pop []float64) error {
	for i, p := range pop {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: index %d has %g", ErrInvalidPopulation, i, p)
		}
	}
	return nil
}

func copyYears(years []int) []int {
	out := make([]int, len(years))
	copy(out, years)
	return out
}
