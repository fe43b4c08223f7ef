package viz

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/hydrosim/internal/sim"
)

var ErrNoSeries = errors.New("no such series")

// PlotSeries draws one recorded series as an ASCII chart.
func PlotSeries(r *sim.Result, name string, height, width int) (string, error) {
	data, ok := r.Series[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoSeries, name)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrNoSeries, name)
	}
	caption := fmt.Sprintf("%s (%.1fs)", name, duration(r))
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption)), nil
}

// PlotMany overlays several series on one ASCII chart.
func PlotMany(r *sim.Result, names []string, height, width int) (string, error) {
	data := make([][]float64, 0, len(names))
	for _, n := range names {
		s, ok := r.Series[n]
		if !ok || len(s) == 0 {
			return "", fmt.Errorf("%w: %s", ErrNoSeries, n)
		}
		data = append(data, s)
	}
	if len(data) == 0 {
		return "", ErrNoSeries
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(strings.Join(names, ", "))), nil
}

// RenderPNG writes a time plot of the named series as a PNG image.
func RenderPNG(w io.Writer, r *sim.Result, names []string, title string) error {
	p, err := newTimePlot(r, names, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SavePNG saves the plot to path. The format follows the file extension,
// so .svg and .pdf work as well.
func SavePNG(path string, r *sim.Result, names []string, title string) error {
	p, err := newTimePlot(r, names, title)
	if err != nil {
		return err
	}
	if filepath.Ext(path) == "" {
		path += ".png"
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

func newTimePlot(r *sim.Result, names []string, title string) (*plot.Plot, error) {
	if len(names) == 0 {
		return nil, ErrNoSeries
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Add(plotter.NewGrid())

	for i, n := range names {
		s, ok := r.Series[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoSeries, n)
		}
		pts := make(plotter.XYs, min(len(s), len(r.Times)))
		for j := range pts {
			pts[j].X = r.Times[j]
			pts[j].Y = s[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", n, err)
		}
		line.Color = seriesColor(n, i)
		line.Width = vg.Points(1.2)
		p.Add(line)
		p.Legend.Add(n, line)
	}
	p.Legend.Top = true
	return p, nil
}

// seriesColor keeps circuit series in their circuit color.
func seriesColor(name string, i int) color.Color {
	switch {
	case strings.Contains(name, "GREEN"):
		return color.RGBA{R: 0x00, G: 0xa0, B: 0x00, A: 0xff}
	case strings.Contains(name, "BLUE"):
		return color.RGBA{R: 0x20, G: 0x60, B: 0xe0, A: 0xff}
	case strings.Contains(name, "YELLOW"):
		return color.RGBA{R: 0xe0, G: 0xb0, B: 0x00, A: 0xff}
	}
	return plotutil.Color(i)
}

func duration(r *sim.Result) float64 {
	if len(r.Times) == 0 {
		return 0
	}
	return r.Times[len(r.Times)-1] - r.Times[0]
}
