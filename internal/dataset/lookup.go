package dataset

import (
	"sort"
)

// LookupRow matches a country name and region to its ISO-3 code
type LookupRow struct {
	ISO3    string `json:"iso3"`
	Country string `json:"country"`
	Region  string `json:"region"`
}

// Join inner-joins the population and case tables on ISO-3, keeping the
// population table's country name and the case table's region
func Join(pop, cases *Table) []LookupRow {
	var rows []LookupRow
	seen := map[string]bool{}
	for _, p := range pop.Rows {
		if seen[p.ISO3] {
			continue
		}
		c, ok := cases.Lookup(p.ISO3)
		if !ok {
			continue
		}
		seen[p.ISO3] = true
		rows = append(rows, LookupRow{ISO3: p.ISO3, Country: p.Country, Region: c.Region})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ISO3 < rows[j].ISO3 })
	return rows
}

// FilterRegion returns the rows of one region, one per ISO-3 code
func FilterRegion(rows []LookupRow, region string) []LookupRow {
	var out []LookupRow
	seen := map[string]bool{}
	for _, r := range rows {
		if r.Region != region || seen[r.ISO3] {
			continue
		}
		seen[r.ISO3] = true
		out = append(out, r)
	}
	return out
}

// Regions returns the distinct non-empty regions, sorted
func Regions(rows []LookupRow) []string {
	set := map[string]bool{}
	for _, r := range rows {
		if r.Region != "" {
			set[r.Region] = true
		}
	}
	out := make([]string, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
