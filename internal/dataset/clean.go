package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Source headers of the raw WHO case export (long format, one row per country-year)
var incidenceColumns = map[string]string{
	"Value":               ColCases,
	"SpatialDimValueCode": ColISO3,
	"Period":              ColYear,
	"ParentLocationCode":  ColRegion,
	"Location":            ColCountry,
}

// Source headers of the raw World Bank population export
var populationColumns = map[string]string{
	"Country Name": ColCountry,
	"Country Code": ColISO3,
}

// YearRange is an inclusive [From, To] range of years
type YearRange struct {
	From int
	To   int
}

// Contains reports whether year lies in the range
func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}

// CleanIncidence pivots the long WHO case table into one row per
// (iso3, region) and one column per year in the range. Duplicate
// country-years are averaged; unparsable values are left out.
func CleanIncidence(raw io.Reader, years YearRange) (*Table, error) {
	reader := csv.NewReader(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		if mapped, ok := incidenceColumns[strings.TrimSpace(trimBOM(name))]; ok {
			cols[mapped] = i
		}
	}
	for _, required := range []string{ColCases, ColISO3, ColYear, ColRegion} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	type key struct{ iso3, region string }
	type acc struct {
		sum   float64
		count int
	}
	cells := map[key]map[int]*acc{}
	yearSet := map[int]bool{}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		year, ok := parseYear(field(record, cols, ColYear))
		if !ok || !years.Contains(year) {
			continue
		}
		value := parseValue(field(record, cols, ColCases))
		if math.IsNaN(value) {
			continue
		}

		k := key{field(record, cols, ColISO3), field(record, cols, ColRegion)}
		if k.iso3 == "" {
			continue
		}
		if cells[k] == nil {
			cells[k] = map[int]*acc{}
		}
		if cells[k][year] == nil {
			cells[k][year] = &acc{}
		}
		cells[k][year].sum += value
		cells[k][year].count++
		yearSet[year] = true
	}

	yearList := sortedYears(yearSet)
	keys := make([]key, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].iso3 != keys[j].iso3 {
			return keys[i].iso3 < keys[j].iso3
		}
		return keys[i].region < keys[j].region
	})

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		row := Row{ISO3: k.iso3, Region: k.region, Values: make([]float64, len(yearList))}
		for j, y := range yearList {
			if a := cells[k][y]; a != nil {
				row.Values[j] = a.sum / float64(a.count)
			} else {
				row.Values[j] = math.NaN()
			}
		}
		rows = append(rows, row)
	}

	return NewTable([]string{ColISO3, ColRegion}, yearList, rows), nil
}

// CleanPopulation renames the World Bank identifying columns, keeps the
// year columns inside the range and drops everything else. skip is the
// number of non-blank preamble lines before the header row.
func CleanPopulation(raw io.Reader, years YearRange, skip int) (*Table, error) {
	reader := csv.NewReader(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	for i := 0; i < skip; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("failed to skip preamble line %d: %w", i+1, err)
		}
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var (
		columns  []string
		yearList []int
		yearCols []int
		idCols   = map[string]int{}
	)
	for i, name := range header {
		name = strings.TrimSpace(trimBOM(name))
		if mapped, ok := populationColumns[name]; ok {
			columns = append(columns, mapped)
			idCols[mapped] = i
			continue
		}
		if y, ok := parseYear(name); ok && years.Contains(y) {
			yearList = append(yearList, y)
			yearCols = append(yearCols, i)
		}
	}
	if _, ok := idCols[ColISO3]; !ok {
		return nil, fmt.Errorf("%w: Country Code", ErrMissingColumn)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := Row{
			ISO3:    field(record, idCols, ColISO3),
			Country: field(record, idCols, ColCountry),
			Values:  make([]float64, len(yearList)),
		}
		for j, col := range yearCols {
			if col < len(record) {
				row.Values[j] = parseValue(record[col])
			} else {
				row.Values[j] = math.NaN()
			}
		}
		rows = append(rows, row)
	}

	return NewTable(columns, yearList, rows), nil
}

func sortedYears(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for y := range set {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

// FormatYear is the column label used for a year in cleaned files
func FormatYear(year int) string {
	return strconv.Itoa(year)
}
