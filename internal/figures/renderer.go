// Package figures renders the incidence and CV figures as PNG files.
package figures

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/epistats/epistats/internal/analytics/incidence"
	"github.com/epistats/epistats/internal/config"
	"github.com/epistats/epistats/internal/logging"
	"github.com/epistats/epistats/internal/services"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Options selects the countries, regions and years drawn by each figure
type Options struct {
	Fig1Regions []string
	Fig1Years   []int

	// S1: incidence, window weights and mean incidence of one country
	S1Country    string
	S1From, S1To int
	WeightsStart int
	WeightsEnds  []int
	S1MeanFrom   int

	// S2: an injected outbreak in one country and the CV of another
	S2Country     string
	S2InjectYear  int
	S2InjectCases float64
	S2CVCountry   string
	S2CVFrom      int

	// S3: CV vs cube-root mean incidence traces, one panel per country
	S3Countries []string
	S3Cols      int
}

// DefaultOptions returns the published figure layout
func DefaultOptions() Options {
	return Options{
		Fig1Regions: []string{"AFR", "AMR"},
		Fig1Years:   []int{1990, 2014},

		S1Country:    "NGA",
		S1From:       1981,
		S1To:         2017,
		WeightsStart: 1980,
		WeightsEnds:  []int{1990, 2010},
		S1MeanFrom:   1990,

		S2Country:     "BOL",
		S2InjectYear:  2014,
		S2InjectCases: 10,
		S2CVCountry:   "NGA",
		S2CVFrom:      1990,

		S3Countries: []string{
			"Nigeria", "Ethiopia", "Congo, The Democratic Republic",
			"South Africa", "Tanzania", "Kenya", "Sudan", "Algeria", "Uganda",
		},
		S3Cols: 3,
	}
}

// Renderer draws figures from the summary service into one directory
type Renderer struct {
	logger  *logging.Logger
	service *services.SummaryService
	opts    Options
	outDir  string
	width   vg.Length
	height  vg.Length
}

// NewRenderer creates the output directory if needed
func NewRenderer(logger *logging.Logger, service *services.SummaryService, cfg config.FiguresConfig, opts Options) (*Renderer, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create figure directory: %w", err)
	}

	width, height := cfg.WidthCm, cfg.HeightCm
	if width <= 0 {
		width = 25
	}
	if height <= 0 {
		height = 20
	}

	return &Renderer{
		logger:  logger,
		service: service,
		opts:    opts,
		outDir:  cfg.OutputDir,
		width:   vg.Length(width) * vg.Centimeter,
		height:  vg.Length(height) * vg.Centimeter,
	}, nil
}

func (r *Renderer) path(name string) string {
	return filepath.Join(r.outDir, name)
}

func (r *Renderer) save(p *plot.Plot, name string, start time.Time) (string, error) {
	path := r.path(name)
	if err := p.Save(r.width, r.height, path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	r.logger.Info("Figure written", "path", path, "duration_ms", time.Since(start).Milliseconds())
	return path, nil
}

// Fig1 scatters CV against mean incidence for every country of each region,
// open markers for the first year and filled markers for the others
func (r *Renderer) Fig1(ctx context.Context) (string, error) {
	start := time.Now()

	p := plot.New()
	p.X.Label.Text = "CV"
	p.Y.Label.Text = "Mean Incidence per 100,000"
	p.Legend.Top = true

	for ri, region := range r.opts.Fig1Regions {
		snapshot, err := r.service.RegionSnapshot(ctx, region, r.opts.Fig1Years)
		if err != nil {
			return "", fmt.Errorf("region %s: %w", region, err)
		}

		for yi, ys := range snapshot.Years {
			xys := make(plotter.XYs, 0, len(ys.Points))
			for _, pt := range ys.Points {
				xys = append(xys, plotter.XY{X: pt.CV, Y: pt.MI})
			}
			xys = finite(xys)
			if len(xys) == 0 {
				continue
			}

			sc, err := plotter.NewScatter(xys)
			if err != nil {
				return "", err
			}
			sc.Color = regionColor(ri)
			sc.Radius = vg.Points(4)
			sc.Shape = draw.CircleGlyph{}
			if yi == 0 {
				sc.Shape = draw.RingGlyph{}
			}
			p.Add(sc)
			p.Legend.Add(fmt.Sprintf("%s %d", region, ys.Year), sc)
		}
	}

	p.X.Min, p.X.Max = -0.1, 3.2
	p.Y.Min, p.Y.Max = 0, 1500

	return r.save(p, "Fig1.png", start)
}

// S1 shows how mean incidence is built: raw incidence, the window weights
// for windows ending in different years and the resulting mean incidence
func (r *Renderer) S1(ctx context.Context) (string, error) {
	start := time.Now()
	opts := r.service.Options()

	series, err := r.service.Series(ctx, r.opts.S1Country)
	if err != nil {
		return "", err
	}

	inc, err := incidence.Incidence(series.Cases, series.Population, opts.PopNorm)
	if err != nil {
		return "", err
	}
	incPlot := plot.New()
	incPlot.Y.Label.Text = "incidence per 100k"
	if _, err := addLine(incPlot, between(series.Years, inc, r.opts.S1From, r.opts.S1To), 0); err != nil {
		return "", err
	}
	incPlot.Y.Min = 0

	weightPlot := plot.New()
	weightPlot.Y.Label.Text = "weight"
	for i, end := range r.opts.WeightsEnds {
		n := end - r.opts.WeightsStart + 1
		w, err := incidence.NormalizedGaussianWeights(n, opts.Spread, opts.Offset)
		if err != nil {
			return "", err
		}
		years := make([]int, n)
		for j := range years {
			years[j] = r.opts.WeightsStart + j
		}
		line, err := addLine(weightPlot, toXYs(years, w), i)
		if err != nil {
			return "", err
		}
		if line != nil {
			weightPlot.Legend.Add(fmt.Sprintf("%d-%d", r.opts.WeightsStart, end), line)
		}
	}

	growing := opts
	growing.StartYear = series.Years[0]
	wmi, err := incidence.WeightedMeanIncidence(series.Cases, series.Population, series.Years, growing)
	if err != nil {
		return "", err
	}
	miPlot := plot.New()
	miPlot.Y.Label.Text = "mean incidence per 100k"
	miPlot.X.Label.Text = "year"
	if _, err := addLine(miPlot, between(wmi.Years, wmi.Values, r.opts.S1MeanFrom, r.opts.S1To), 0); err != nil {
		return "", err
	}
	miPlot.Y.Min = 0

	return r.saveGrid([][]*plot.Plot{{incPlot}, {weightPlot}, {miPlot}}, "S1.png", start)
}

// S2 shows the effect of a single injected outbreak on the case series of
// one country, and the local and smoothed CV of another
func (r *Renderer) S2(ctx context.Context) (string, error) {
	start := time.Now()

	series, err := r.service.Series(ctx, r.opts.S2Country)
	if err != nil {
		return "", err
	}
	injected := series.WithCases(r.opts.S2InjectYear, r.opts.S2InjectCases)

	casesPlot := plot.New()
	casesPlot.Title.Text = fmt.Sprintf("%s, %g cases in %d", r.opts.S2Country, r.opts.S2InjectCases, r.opts.S2InjectYear)
	casesPlot.X.Label.Text = "year"
	casesPlot.Y.Label.Text = "cases"
	if _, err := addLine(casesPlot, between(injected.Years, injected.Cases, r.opts.S1From, r.opts.S1To), 0); err != nil {
		return "", err
	}

	cvSeries, err := r.service.Series(ctx, r.opts.S2CVCountry)
	if err != nil {
		return "", err
	}
	summary, err := services.Summarize(*cvSeries, r.service.Options())
	if err != nil {
		return "", err
	}

	lcvPlot := plot.New()
	lcvPlot.Title.Text = r.opts.S2CVCountry
	lcvPlot.Y.Label.Text = "CV"
	if _, err := addLine(lcvPlot, between(summary.LocalCV.Years, summary.LocalCV.Values, r.opts.S2CVFrom, r.opts.S1To), 0); err != nil {
		return "", err
	}

	cvPlot := plot.New()
	cvPlot.Y.Label.Text = "Mean CV"
	cvPlot.X.Label.Text = "year"
	if _, err := addLine(cvPlot, between(summary.CV.Years, summary.CV.Values, r.opts.S2CVFrom, r.opts.S1To), 0); err != nil {
		return "", err
	}

	return r.saveGrid([][]*plot.Plot{{casesPlot}, {lcvPlot}, {cvPlot}}, "S2.png", start)
}

// S3 draws the CV against cube-root mean incidence trace of each listed
// country. Countries that cannot be resolved or summarized leave an empty tile.
func (r *Renderer) S3(ctx context.Context) (string, error) {
	start := time.Now()

	cols := r.opts.S3Cols
	if cols < 1 {
		cols = 3
	}
	rows := (len(r.opts.S3Countries) + cols - 1) / cols
	if rows == 0 {
		return "", fmt.Errorf("no countries to draw")
	}

	grid := make([][]*plot.Plot, rows)
	for i := range grid {
		grid[i] = make([]*plot.Plot, cols)
	}

	yTicks := plot.ConstantTicks{}
	for _, v := range []float64{100, 500, 1000, 2000, 4000} {
		yTicks = append(yTicks, plot.Tick{Value: math.Cbrt(v), Label: fmt.Sprintf("%g", v)})
	}

	drawn := 0
	for i, name := range r.opts.S3Countries {
		iso3, err := r.service.Resolve(ctx, name)
		if err != nil {
			r.logger.Warn("Skipping S3 panel", "country", name, "error", err)
			continue
		}
		summary, err := r.service.CountrySummary(ctx, iso3)
		if err != nil {
			r.logger.Warn("Skipping S3 panel", "country", name, "iso3", iso3, "error", err)
			continue
		}

		xys := make(plotter.XYs, len(summary.Trace))
		for j, pt := range summary.Trace {
			xys[j] = plotter.XY{X: pt.CV, Y: math.Cbrt(pt.MI)}
		}

		p := plot.New()
		p.Title.Text = iso3
		if _, err := addLine(p, xys, -1); err != nil {
			return "", err
		}
		p.X.Min, p.X.Max = 0, 4
		p.Y.Min, p.Y.Max = math.Cbrt(1), math.Cbrt(4000)
		p.Y.Tick.Marker = yTicks

		grid[i/cols][i%cols] = p
		drawn++
	}
	if drawn == 0 {
		return "", fmt.Errorf("none of %d countries could be drawn", len(r.opts.S3Countries))
	}

	return r.saveGrid(grid, "S3.png", start)
}

// CountryCases plots the case series of a country given by name or code
func (r *Renderer) CountryCases(ctx context.Context, name string) (string, error) {
	start := time.Now()

	iso3, err := r.service.Resolve(ctx, name)
	if err != nil {
		return "", err
	}
	cases, err := r.service.Cases(ctx, iso3)
	if err != nil {
		return "", err
	}
	r.logger.Info("Plotting country cases", "country", name, "iso3", iso3)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s)", name, iso3)
	p.X.Label.Text = "year"
	p.Y.Label.Text = "cases"
	if _, err := addLine(p, toXYs(cases.Years, cases.Values), 0); err != nil {
		return "", err
	}

	return r.save(p, "cases_"+fileSafe(name)+".png", start)
}

// All renders Fig1, S1, S2 and S3
func (r *Renderer) All(ctx context.Context) ([]string, error) {
	var paths []string
	for _, render := range []func(context.Context) (string, error){r.Fig1, r.S1, r.S2, r.S3} {
		path, err := render(ctx)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
