// Package analytics provides the annual time-series type shared by the
// incidence transforms, the summary service and the renderer.
package analytics

import "fmt"

// Series is an ordered run of annual values. Years and Values always have the same length.
type Series struct {
	Years  []int     `json:"years"`
	Values []float64 `json:"values"`
}

// NewSeries builds a series, rejecting misaligned inputs
func NewSeries(years []int, values []float64) (Series, error) {
	if len(years) != len(values) {
		return Series{}, fmt.Errorf("series misaligned: %d years, %d values", len(years), len(values))
	}
	return Series{Years: years, Values: values}, nil
}

// Len returns the number of points
func (s Series) Len() int {
	return len(s.Values)
}

// At returns the value recorded for year
func (s Series) At(year int) (float64, bool) {
	for i, y := range s.Years {
		if y == year {
			return s.Values[i], true
		}
	}
	return 0, false
}

// Between returns the points with from <= year <= to
func (s Series) Between(from, to int) Series {
	var out Series
	for i, y := range s.Years {
		if y >= from && y <= to {
			out.Years = append(out.Years, y)
			out.Values = append(out.Values, s.Values[i])
		}
	}
	return out
}

// Tail returns the last n points (all of them when n >= Len)
func (s Series) Tail(n int) Series {
	if n >= s.Len() {
		return s
	}
	if n <= 0 {
		return Series{}
	}
	start := s.Len() - n
	return Series{Years: s.Years[start:], Values: s.Values[start:]}
}

// FirstYear returns the first year of the series, or 0 when empty
func (s Series) FirstYear() int {
	if len(s.Years) == 0 {
		return 0
	}
	return s.Years[0]
}
