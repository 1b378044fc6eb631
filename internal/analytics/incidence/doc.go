// Package incidence implements the windowed statistics computed on annual
// case and population series: Gaussian recency weights, weighted mean
// incidence, the equal-weighted local coefficient of variation and its
// Gaussian-smoothed running average.
//
// All functions are pure. Inputs are never modified and results are freshly
// allocated.
package incidence
