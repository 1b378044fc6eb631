package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epistats/epistats/internal/analytics"
	"github.com/epistats/epistats/internal/analytics/incidence"
	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/countrycode"
	"github.com/epistats/epistats/internal/dataset"
	"github.com/epistats/epistats/internal/logging"
	"github.com/montanaflynn/stats"
)

// SummaryService computes per-country and per-region statistics over the
// loaded case and population tables
type SummaryService struct {
	logger   *logging.Logger
	data     *dataset.Data
	resolver countrycode.Resolver
	years    []int
	opts     incidence.Options
}

// NewSummaryService creates a new SummaryService. years is the range every
// country series is extracted over.
func NewSummaryService(
	logger *logging.Logger,
	data *dataset.Data,
	resolver countrycode.Resolver,
	years []int,
	opts incidence.Options,
) *SummaryService {
	return &SummaryService{
		logger:   logger,
		data:     data,
		resolver: resolver,
		years:    years,
		opts:     opts,
	}
}

// NewSummaryServiceFromConfig wires the service from the data and analysis
// sections of cfg
func NewSummaryServiceFromConfig(logger *logging.Logger, data *dataset.Data, cfg *config.Config) *SummaryService {
	resolver := countrycode.NewResolver(data.Lookup, cfg.Resolver.Threshold)
	return NewSummaryService(logger, data, resolver, cfg.Data.Years(), incidence.OptionsFromConfig(cfg.Analysis))
}

// TracePoint is one year of the CV-vs-MI phase trace
type TracePoint struct {
	Year int     `json:"year"`
	CV   float64 `json:"cv"`
	MI   float64 `json:"mi"`
}

// CountrySummary holds the transforms of one country. MI is the
// growing-window mean incidence trimmed to the years of CV.
type CountrySummary struct {
	ISO3    string           `json:"iso3"`
	Country string           `json:"country,omitempty"`
	Region  string           `json:"region,omitempty"`
	MI      analytics.Series `json:"mi"`
	LocalCV analytics.Series `json:"local_cv"`
	CV      analytics.Series `json:"cv"`
	Trace   []TracePoint     `json:"trace"`
}

// Distribution summarizes one statistic across the countries of a region
type Distribution struct {
	Median float64 `json:"median"`
	P10    float64 `json:"p10"`
	P90    float64 `json:"p90"`
}

// SnapshotPoint is one country's (CV, MI) in a given year
type SnapshotPoint struct {
	ISO3    string  `json:"iso3"`
	Country string  `json:"country"`
	CV      float64 `json:"cv"`
	MI      float64 `json:"mi"`
}

// YearSnapshot holds the points of every country of a region in one year
type YearSnapshot struct {
	Year   int             `json:"year"`
	Points []SnapshotPoint `json:"points"`
	CV     *Distribution   `json:"cv,omitempty"`
	MI     *Distribution   `json:"mi,omitempty"`
}

// RegionSnapshot is the cross-section of a region at the requested years.
// Skipped lists countries whose data could not be summarized.
type RegionSnapshot struct {
	Region  string         `json:"region"`
	Years   []YearSnapshot `json:"years"`
	Skipped []string       `json:"skipped,omitempty"`
}

// Options returns the transform options in use
func (s *SummaryService) Options() incidence.Options {
	return s.opts
}

// Years returns the extraction year range
func (s *SummaryService) Years() []int {
	return s.years
}

// Countries returns the joined lookup rows, optionally restricted to a region
func (s *SummaryService) Countries(ctx context.Context, region string) ([]dataset.LookupRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if region == "" {
		return s.data.Lookup, nil
	}
	return dataset.FilterRegion(s.data.Lookup, region), nil
}

// Country returns the lookup row of a joined country
func (s *SummaryService) Country(iso3 string) (dataset.LookupRow, bool) {
	return s.data.Country(iso3)
}

// Series returns the aligned cases and population of a country
func (s *SummaryService) Series(ctx context.Context, iso3 string) (*dataset.CountrySeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	series, err := s.data.Extract(iso3, s.years)
	if err != nil {
		return nil, ToServiceError(err)
	}
	return &series, nil
}

// Cases returns the case counts of a country over the extraction years.
// Population is not required.
func (s *SummaryService) Cases(ctx context.Context, iso3 string) (analytics.Series, error) {
	if err := ctx.Err(); err != nil {
		return analytics.Series{}, err
	}
	cases, err := dataset.ExtractCases(iso3, s.data.Cases, s.years)
	if err != nil {
		return analytics.Series{}, ToServiceError(err)
	}
	return cases, nil
}

// Resolve maps a country name or code to its ISO-3 code
func (s *SummaryService) Resolve(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	code, err := s.resolver.Resolve(name)
	if err != nil {
		return "", ToServiceError(err)
	}
	return code, nil
}

// CountrySummary computes WMI, local CV and smoothed CV for one country
func (s *SummaryService) CountrySummary(ctx context.Context, iso3 string) (*CountrySummary, error) {
	series, err := s.Series(ctx, iso3)
	if err != nil {
		return nil, err
	}

	summary, err := Summarize(*series, s.opts)
	if err != nil {
		return nil, ToServiceError(err)
	}

	if row, ok := s.data.Country(iso3); ok {
		summary.Country = row.Country
		summary.Region = row.Region
	}
	return summary, nil
}

// Summarize runs the transforms over an extracted series
func Summarize(series dataset.CountrySeries, opts incidence.Options) (*CountrySummary, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series for %s", incidence.ErrInsufficientData, series.ISO3)
	}

	lcv, err := incidence.LocalCV(series.Cases, series.Population, series.Years, opts)
	if err != nil {
		return nil, err
	}

	smoothed, err := incidence.SmoothedCV(lcv.Values, opts)
	if err != nil {
		return nil, err
	}
	cv := analytics.Series{Years: lcv.Years, Values: smoothed}

	growing := opts
	growing.StartYear = series.Years[0]
	mi, err := incidence.WeightedMeanIncidence(series.Cases, series.Population, series.Years, growing)
	if err != nil {
		return nil, err
	}
	mi = mi.Tail(cv.Len())
	if mi.FirstYear() != cv.FirstYear() {
		return nil, fmt.Errorf("mean incidence starts in %d, CV in %d", mi.FirstYear(), cv.FirstYear())
	}

	trace := make([]TracePoint, cv.Len())
	for i := range trace {
		trace[i] = TracePoint{Year: cv.Years[i], CV: cv.Values[i], MI: mi.Values[i]}
	}

	return &CountrySummary{
		ISO3:    series.ISO3,
		MI:      mi,
		LocalCV: lcv,
		CV:      cv,
		Trace:   trace,
	}, nil
}

// Summaries computes the summary of every joined country in a region, or of
// every joined country when region is empty. Countries that cannot be
// summarized are logged and returned in skipped.
func (s *SummaryService) Summaries(ctx context.Context, region string) (summaries []*CountrySummary, skipped []string, err error) {
	rows, err := s.Countries(ctx, region)
	if err != nil {
		return nil, nil, err
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		summary, err := s.CountrySummary(ctx, row.ISO3)
		if err != nil {
			var se *ServiceError
			if errors.As(err, &se) && se.Code != CodeInternal {
				s.logger.Warn("Skipping country",
					"iso3", row.ISO3,
					"region", row.Region,
					"reason", se.Message)
				skipped = append(skipped, row.ISO3)
				continue
			}
			return nil, nil, err
		}
		summaries = append(summaries, summary)
	}

	return summaries, skipped, nil
}

// RegionSnapshot returns every country's (CV, MI) of a region at each of
// the requested years, with median and 10th/90th percentiles
func (s *SummaryService) RegionSnapshot(ctx context.Context, region string, years []int) (*RegionSnapshot, error) {
	startExec := time.Now()

	if region == "" {
		return nil, NewServiceError(CodeInvalidInput, "region is required")
	}
	if len(years) == 0 {
		return nil, NewServiceError(CodeInvalidInput, "at least one year is required")
	}

	summaries, skipped, err := s.Summaries(ctx, region)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 && len(skipped) == 0 {
		return nil, NewServiceErrorWithDetails(CodeCountryNotFound,
			fmt.Sprintf("no countries in region %s", region),
			map[string]interface{}{"region": region})
	}

	snapshot := &RegionSnapshot{Region: region, Skipped: skipped}
	for _, year := range years {
		ys := YearSnapshot{Year: year, Points: []SnapshotPoint{}}
		for _, summary := range summaries {
			cv, ok := summary.CV.At(year)
			if !ok {
				continue
			}
			mi, ok := summary.MI.At(year)
			if !ok {
				continue
			}
			ys.Points = append(ys.Points, SnapshotPoint{
				ISO3:    summary.ISO3,
				Country: summary.Country,
				CV:      cv,
				MI:      mi,
			})
		}
		ys.CV, ys.MI = distributions(ys.Points)
		snapshot.Years = append(snapshot.Years, ys)
	}

	s.logger.Debug("Region snapshot computed",
		"region", region,
		"years", years,
		"countries", len(summaries),
		"skipped", len(skipped),
		"duration_ms", time.Since(startExec).Milliseconds())

	return snapshot, nil
}

func distributions(points []SnapshotPoint) (*Distribution, *Distribution) {
	if len(points) == 0 {
		return nil, nil
	}
	cv := make(stats.Float64Data, len(points))
	mi := make(stats.Float64Data, len(points))
	for i, p := range points {
		cv[i] = p.CV
		mi[i] = p.MI
	}
	return distribution(cv), distribution(mi)
}

func distribution(data stats.Float64Data) *Distribution {
	median, _ := stats.Median(data)
	p10, _ := stats.PercentileNearestRank(data, 10)
	p90, _ := stats.PercentileNearestRank(data, 90)
	return &Distribution{Median: median, P10: p10, P90: p90}
}
