// Package countrycode resolves free-form country names to ISO-3 codes.
package countrycode

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/epistats/epistats/internal/dataset"
	"github.com/xrash/smetrics"
)

// DefaultThreshold is the minimum Jaro-Winkler similarity accepted by FuzzyResolver
const DefaultThreshold = 0.85

var ErrUnknownCountry = errors.New("unknown country")

// Resolver maps a country name to its ISO-3 code
type Resolver interface {
	Resolve(name string) (string, error)
}

// StaticResolver resolves from a fixed table of names
type StaticResolver map[string]string

// Resolve looks the name up case-insensitively
func (r StaticResolver) Resolve(name string) (string, error) {
	key := normalize(name)
	for n, code := range r {
		if normalize(n) == key {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCountry, name)
}

// Aliases covers ISO and WHO spellings that World Bank names miss by
// more than the fuzzy threshold, or that would land on a neighbouring country
var Aliases = StaticResolver{
	"Congo, The Democratic Republic":        "COD",
	"Congo, The Democratic Republic of the": "COD",
	"Democratic Republic of the Congo":      "COD",
	"DR Congo":                              "COD",
	"Congo":                                 "COG",
	"Republic of the Congo":                 "COG",
	"Tanzania, United Republic of":          "TZA",
	"United Republic of Tanzania":           "TZA",
	"Bolivia (Plurinational State of)":      "BOL",
	"Côte d'Ivoire":                         "CIV",
	"Ivory Coast":                           "CIV",
	"Gambia":                                "GMB",
	"Egypt":                                 "EGY",
	"Iran (Islamic Republic of)":            "IRN",
	"Venezuela (Bolivarian Republic of)":    "VEN",
	"Lao People's Democratic Republic":      "LAO",
	"Viet Nam":                              "VNM",
	"Syrian Arab Republic":                  "SYR",
	"Yemen":                                 "YEM",
	"South Sudan":                           "SSD",
	"Sudan":                                 "SDN",
}

// Chain tries each resolver in order and returns the first match
type Chain []Resolver

// Resolve returns the first code found. Errors other than ErrUnknownCountry
// stop the chain.
func (c Chain) Resolve(name string) (string, error) {
	err := fmt.Errorf("%w: %q", ErrUnknownCountry, name)
	for _, r := range c {
		var code string
		code, err = r.Resolve(name)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, ErrUnknownCountry) {
			return "", err
		}
	}
	return "", err
}

// NewResolver resolves through Aliases first and falls back to fuzzy
// matching over rows
func NewResolver(rows []dataset.LookupRow, threshold float64) Chain {
	return Chain{Aliases, NewFuzzyResolver(rows, threshold)}
}

type entry struct {
	name string
	code string
}

// FuzzyResolver matches names against a list of known countries. An exact
// name or ISO-3 match wins; otherwise the closest name by Jaro-Winkler
// similarity is taken if it reaches the threshold.
type FuzzyResolver struct {
	entries   []entry
	codes     map[string]string
	threshold float64
}

// NewFuzzyResolver builds a resolver over the given lookup rows
func NewFuzzyResolver(rows []dataset.LookupRow, threshold float64) *FuzzyResolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}

	r := &FuzzyResolver{
		codes:     make(map[string]string, len(rows)),
		threshold: threshold,
	}
	for _, row := range rows {
		if row.ISO3 == "" {
			continue
		}
		r.codes[strings.ToUpper(row.ISO3)] = row.ISO3
		if row.Country != "" {
			r.entries = append(r.entries, entry{name: normalize(row.Country), code: row.ISO3})
		}
	}
	sort.Slice(r.entries, func(i, j int) bool { return r.entries[i].name < r.entries[j].name })
	return r
}

// FromTable builds a resolver from a table carrying country names
func FromTable(t *dataset.Table, threshold float64) *FuzzyResolver {
	rows := make([]dataset.LookupRow, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, dataset.LookupRow{ISO3: r.ISO3, Country: r.Country, Region: r.Region})
	}
	return NewFuzzyResolver(rows, threshold)
}

// Resolve returns the ISO-3 code for name
func (r *FuzzyResolver) Resolve(name string) (string, error) {
	code, _, err := r.Match(name)
	return code, err
}

// Match resolves name and also reports the similarity of the match, 1 for
// exact matches
func (r *FuzzyResolver) Match(name string) (string, float64, error) {
	key := normalize(name)
	if key == "" {
		return "", 0, fmt.Errorf("%w: empty name", ErrUnknownCountry)
	}

	if code, ok := r.codes[strings.ToUpper(key)]; ok {
		return code, 1, nil
	}
	for _, e := range r.entries {
		if e.name == key {
			return e.code, 1, nil
		}
	}

	best, bestScore := "", 0.0
	for _, e := range r.entries {
		score := smetrics.JaroWinkler(key, e.name, 0.7, 4)
		if score > bestScore {
			best, bestScore = e.code, score
		}
	}
	if best == "" || bestScore < r.threshold {
		return "", bestScore, fmt.Errorf("%w: %q", ErrUnknownCountry, name)
	}
	return best, bestScore, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
