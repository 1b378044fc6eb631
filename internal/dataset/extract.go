package dataset

import (
	"fmt"
	"math"

	"github.com/epistats/epistats/internal/analytics"
)

// CountrySeries holds the aligned yearly cases and population of one country
type CountrySeries struct {
	ISO3       string    `json:"iso3"`
	Years      []int     `json:"years"`
	Cases      []float64 `json:"cases"`
	Population []float64 `json:"population"`
}

// Len returns the number of years
func (s CountrySeries) Len() int {
	return len(s.Years)
}

// CasesSeries returns the cases as an analytics.Series
func (s CountrySeries) CasesSeries() analytics.Series {
	return analytics.Series{Years: s.Years, Values: s.Cases}
}

// WithCases returns a copy with the cases of one year replaced, used to
// inject synthetic outbreaks. Unknown years leave the copy unchanged.
func (s CountrySeries) WithCases(year int, cases float64) CountrySeries {
	out := s
	out.Cases = append([]float64(nil), s.Cases...)
	for i, y := range s.Years {
		if y == year {
			out.Cases[i] = cases
		}
	}
	return out
}

// Extract pulls aligned case and population vectors for iso3 over years.
// Missing case cells count as zero cases. A missing row, year column or
// population value is an error rather than a silent NaN.
func Extract(iso3 string, cases, pop *Table, years []int) (CountrySeries, error) {
	if _, ok := cases.Lookup(iso3); !ok {
		return CountrySeries{}, fmt.Errorf("%w in case table: %s", ErrCountryNotFound, iso3)
	}
	if _, ok := pop.Lookup(iso3); !ok {
		return CountrySeries{}, fmt.Errorf("%w in population table: %s", ErrCountryNotFound, iso3)
	}

	out := CountrySeries{
		ISO3:       iso3,
		Years:      append([]int(nil), years...),
		Cases:      make([]float64, len(years)),
		Population: make([]float64, len(years)),
	}

	for i, y := range years {
		c, err := cases.Value(iso3, y)
		if err != nil {
			return CountrySeries{}, fmt.Errorf("case table: %w", err)
		}
		if math.IsNaN(c) {
			c = 0
		}
		out.Cases[i] = c

		p, err := pop.Value(iso3, y)
		if err != nil {
			return CountrySeries{}, fmt.Errorf("population table: %w", err)
		}
		if math.IsNaN(p) || p <= 0 {
			return CountrySeries{}, fmt.Errorf("%w: %s %d", ErrMissingPopulation, iso3, y)
		}
		out.Population[i] = p
	}

	return out, nil
}

// ExtractCases returns the zero-filled case series of one country
func ExtractCases(iso3 string, cases *Table, years []int) (analytics.Series, error) {
	values := make([]float64, len(years))
	for i, y := range years {
		c, err := cases.Value(iso3, y)
		if err != nil {
			return analytics.Series{}, err
		}
		if math.IsNaN(c) {
			c = 0
		}
		values[i] = c
	}
	return analytics.Series{Years: append([]int(nil), years...), Values: values}, nil
}
