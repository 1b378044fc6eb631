package figures

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var regionColors = []color.Color{
	color.RGBA{G: 128, A: 255},         // green
	color.RGBA{R: 128, B: 128, A: 255}, // purple
}

func regionColor(i int) color.Color {
	if i < len(regionColors) {
		return regionColors[i]
	}
	return plotutil.Color(i)
}

func toXYs(years []int, values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(years))
	for i := range years {
		xys[i] = plotter.XY{X: float64(years[i]), Y: values[i]}
	}
	return finite(xys)
}

// between keeps the points with from <= year <= to
func between(years []int, values []float64, from, to int) plotter.XYs {
	xys := make(plotter.XYs, 0, len(years))
	for i, y := range years {
		if y >= from && y <= to {
			xys = append(xys, plotter.XY{X: float64(y), Y: values[i]})
		}
	}
	return finite(xys)
}

// finite drops NaN and infinite points, which plotter rejects
func finite(xys plotter.XYs) plotter.XYs {
	out := xys[:0]
	for _, xy := range xys {
		if math.IsNaN(xy.X) || math.IsNaN(xy.Y) || math.IsInf(xy.X, 0) || math.IsInf(xy.Y, 0) {
			continue
		}
		out = append(out, xy)
	}
	return out
}

// addLine draws xys as a line with point markers in the i-th default color,
// or in black when i is negative. Nothing is added for an empty series.
func addLine(p *plot.Plot, xys plotter.XYs, i int) (*plotter.Line, error) {
	if len(xys) == 0 {
		return nil, nil
	}

	c := color.Color(color.Black)
	if i >= 0 {
		c = plotutil.Color(i)
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	line.Color = c
	p.Add(line)

	// trace panels are drawn as plain lines
	if i < 0 {
		return line, nil
	}

	points, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	points.Color = c
	points.Radius = vg.Points(2)
	points.Shape = draw.CircleGlyph{}
	p.Add(points)

	return line, nil
}

// saveGrid lays plots out in aligned tiles on one PNG. Nil plots leave
// their tile empty.
func (r *Renderer) saveGrid(grid [][]*plot.Plot, name string, start time.Time) (string, error) {
	rows := len(grid)
	cols := 0
	for _, row := range grid {
		if len(row) > cols {
			cols = len(row)
		}
	}

	img := vgimg.New(r.width, r.height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Centimeter,
		PadY:      vg.Centimeter,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(4),
	}

	canvases := plot.Align(grid, tiles, dc)
	for j := range grid {
		for i, p := range grid[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}

	path := r.path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	r.logger.Info("Figure written", "path", path, "duration_ms", time.Since(start).Milliseconds())
	return path, nil
}
