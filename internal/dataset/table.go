// Package dataset loads, cleans and joins the country-by-year case and
// population tables and extracts aligned per-country series from them.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Column names of the cleaned tables
const (
	ColCases   = "cases"
	ColYear    = "year"
	ColISO3    = "iso3"
	ColCountry = "country"
	ColRegion  = "region"
)

var (
	ErrCountryNotFound   = errors.New("country not found")
	ErrYearNotFound      = errors.New("year column not found")
	ErrMissingPopulation = errors.New("population missing or not positive")
	ErrMissingColumn     = errors.New("required column missing")
)

// Row is one country of a wide table. Values are aligned with Table.Years;
// missing cells are NaN.
type Row struct {
	ISO3    string
	Country string
	Region  string
	Values  []float64
}

// Table is a wide country-by-year table
type Table struct {
	// Columns lists the identifying columns present, in file order
	Columns []string
	Years   []int
	Rows    []Row

	index     map[string]int
	yearIndex map[int]int
}

// NewTable builds a table and its lookup indexes. The first row wins when an
// ISO-3 code repeats.
func NewTable(columns []string, years []int, rows []Row) *Table {
	t := &Table{Columns: columns, Years: years, Rows: rows}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Rows))
	for i, r := range t.Rows {
		if _, exists := t.index[r.ISO3]; !exists {
			t.index[r.ISO3] = i
		}
	}
	t.yearIndex = make(map[int]int, len(t.Years))
	for i, y := range t.Years {
		t.yearIndex[y] = i
	}
}

// Lookup returns the row with an exact ISO-3 match
func (t *Table) Lookup(iso3 string) (*Row, bool) {
	i, ok := t.index[iso3]
	if !ok {
		return nil, false
	}
	return &t.Rows[i], true
}

// Value returns the cell for (iso3, year). Missing cells come back as NaN
// with a nil error; a missing row or year column is an error.
func (t *Table) Value(iso3 string, year int) (float64, error) {
	row, ok := t.Lookup(iso3)
	if !ok {
		return math.NaN(), fmt.Errorf("%w: %s", ErrCountryNotFound, iso3)
	}
	col, ok := t.yearIndex[year]
	if !ok {
		return math.NaN(), fmt.Errorf("%w: %d", ErrYearNotFound, year)
	}
	return row.Values[col], nil
}

// HasYear reports whether the table has a column for year
func (t *Table) HasYear(year int) bool {
	_, ok := t.yearIndex[year]
	return ok
}

// ReadCSV parses a cleaned wide table. Identifying columns are recognized by
// name; integer headers are year columns; anything else is ignored.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var (
		columns  []string
		years    []int
		yearCols []int
		idCols   = map[string]int{}
	)
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch name {
		case ColISO3, ColCountry, ColRegion:
			columns = append(columns, name)
			idCols[name] = i
			continue
		}
		if y, ok := parseYear(name); ok {
			years = append(years, y)
			yearCols = append(yearCols, i)
		}
	}
	if _, ok := idCols[ColISO3]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColISO3)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := Row{Values: make([]float64, len(years))}
		row.ISO3 = field(record, idCols, ColISO3)
		row.Country = field(record, idCols, ColCountry)
		row.Region = field(record, idCols, ColRegion)
		for j, col := range yearCols {
			if col < len(record) {
				row.Values[j] = parseValue(record[col])
			} else {
				row.Values[j] = math.NaN()
			}
		}
		rows = append(rows, row)
	}

	return NewTable(columns, years, rows), nil
}

// WriteCSV writes the table in the cleaned layout: identifying columns then
// one column per year, NaN as an empty cell
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	header := make([]string, 0, len(t.Columns)+len(t.Years))
	header = append(header, t.Columns...)
	for _, y := range t.Years {
		header = append(header, strconv.Itoa(y))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range t.Rows {
		record := make([]string, 0, len(header))
		for _, c := range t.Columns {
			switch c {
			case ColISO3:
				record = append(record, r.ISO3)
			case ColCountry:
				record = append(record, r.Country)
			case ColRegion:
				record = append(record, r.Region)
			}
		}
		for _, v := range r.Values {
			record = append(record, formatValue(v))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadFile reads a cleaned table from disk
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteFile writes a cleaned table to disk
func WriteFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// ISO3Codes returns the distinct codes in the table, sorted
func (t *Table) ISO3Codes() []string {
	codes := make([]string, 0, len(t.index))
	for code := range t.index {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseYear accepts "1990" and the "1990.0" form pandas sometimes writes
func parseYear(s string) (int, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".0")
	y, err := strconv.Atoi(s)
	if err != nil || y < 1000 || y > 9999 {
		return 0, false
	}
	return y, true
}

func parseValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
