package incidence

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// GaussianWeights returns n raw (unnormalized) Gaussian weights with spread s
// and offset dx:
//
//	x_i = -n + i + dx - 1
//	w_i = 1/(s*sqrt(2*pi)) * exp(-0.5*(x_i+dx)^2/s^2)
//
// With the default dx=2 the kernel peaks two samples before the end of the
// window, so recent years dominate.
func GaussianWeights(n int, s float64, dx int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, n)
	}
	if s <= 0 {
		return nil, fmt.Errorf("gaussian spread must be positive: got %g", s)
	}

	scale := 1 / (s * math.Sqrt(2*math.Pi))
	w := make([]float64, n)
	for i := range w {
		x := float64(-n+i+dx-1) + float64(dx)
		w[i] = scale * math.Exp(-0.5*x*x/(s*s))
	}
	return w, nil
}

// NormalizedGaussianWeights returns GaussianWeights scaled to sum to 1
func NormalizedGaussianWeights(n int, s float64, dx int) ([]float64, error) {
	w, err := GaussianWeights(n, s, dx)
	if err != nil {
		return nil, err
	}
	floats.Scale(1/floats.Sum(w), w)
	return w, nil
}

// UniformWeights returns n equal weights of 1
func UniformWeights(n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, n)
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w, nil
}

// weightedAverage is Σ(w*v)/Σw over equal-length slices
func weightedAverage(w, v []float64) float64 {
	return floats.Dot(w, v) / floats.Sum(w)
}
