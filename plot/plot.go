// Package plot renders clustering and thermodynamic results as images.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/hupe1980/isingkm/ising"
	"github.com/hupe1980/isingkm/kmeans"
)

// Format is an output image format understood by gonum/plot.
type Format string

// Supported formats.
const (
	PNG Format = "png"
	SVG Format = "svg"
	PDF Format = "pdf"
)

// ParseFormat accepts png, svg or pdf, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case PNG, SVG, PDF:
		return f, nil
	default:
		return "", fmt.Errorf("plot: unsupported format %q", s)
	}
}

// Width and Height set the rendered image size.
var Width, Height = 6 * vg.Inch, 6 * vg.Inch

func save(p *plot.Plot, w io.Writer, f Format) error {
	wt, err := p.WriterTo(Width, Height, string(f))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Clusters draws a 2-D scatter of points coloured by assignment, with
// centroids marked by crosses. Only the first two coordinates are used.
func Clusters(w io.Writer, f Format, title string, points kmeans.Points, assignments []int, centroids kmeans.Points) error {
	if points.Dim() < 2 || centroids.Dim() < 2 {
		return errors.New("plot: clusters need at least two dimensions")
	}
	if len(assignments) != points.Len() {
		return fmt.Errorf("plot: %d assignments for %d points", len(assignments), points.Len())
	}

	k := centroids.Len()
	sets := make([]plotter.XYs, k)
	for i := range points.Len() {
		c := assignments[i]
		if c < 0 || c >= k {
			return fmt.Errorf("plot: assignment %d of point %d out of range", c, i)
		}
		row := points.Row(i)
		sets[c] = append(sets[c], plotter.XY{X: row[0], Y: row[1]})
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "PC1"
	p.Y.Label.Text = "PC2"
	p.Legend.Top = true

	for c, set := range sets {
		if len(set) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(set)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Radius = vg.Length(2)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Color = plotutil.Color(c)
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("cluster %d", c), scatter)
	}

	cxy := make(plotter.XYs, k)
	for c := range k {
		row := centroids.Row(c)
		cxy[c] = plotter.XY{X: row[0], Y: row[1]}
	}
	marks, err := plotter.NewScatter(cxy)
	if err != nil {
		return err
	}
	marks.GlyphStyle.Radius = vg.Length(6)
	marks.GlyphStyle.Shape = draw.CrossGlyph{}
	marks.GlyphStyle.Color = color.Black
	p.Add(marks)
	p.Legend.Add("centroids", marks)

	return save(p, w, f)
}

// SSE draws the per-iteration SSE history of a k-means run.
func SSE(w io.Writer, f Format, history []float64) error {
	if len(history) == 0 {
		return errors.New("plot: empty SSE history")
	}
	xys := make(plotter.XYs, len(history))
	for i, v := range history {
		xys[i] = plotter.XY{X: float64(i + 1), Y: v}
	}

	p := plot.New()
	p.Title.Text = "k-means convergence"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "SSE"
	if err := plotutil.AddLinePoints(p, "SSE", xys); err != nil {
		return err
	}
	return save(p, w, f)
}

// Observable names accepted by Observables.
var observables = map[string]func(ising.Summary) float64{
	"energy":         func(s ising.Summary) float64 { return s.Energy },
	"magnetization":  func(s ising.Summary) float64 { return s.AbsMagnetization },
	"susceptibility": func(s ising.Summary) float64 { return s.Susceptibility },
	"specific-heat":  func(s ising.Summary) float64 { return s.SpecificHeat },
	"binder":         func(s ising.Summary) float64 { return s.Binder },
}

// Observables draws one observable against temperature, with the exact
// critical temperature marked as a vertical line.
func Observables(w io.Writer, f Format, name string, summaries []ising.Summary) error {
	get, ok := observables[name]
	if !ok {
		return fmt.Errorf("plot: unknown observable %q", name)
	}
	if len(summaries) == 0 {
		return errors.New("plot: no summaries")
	}

	xys := make(plotter.XYs, len(summaries))
	lo, hi := get(summaries[0]), get(summaries[0])
	for i, s := range summaries {
		v := get(s)
		xys[i] = plotter.XY{X: s.Temperature, Y: v}
		lo, hi = min(lo, v), max(hi, v)
	}

	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "T"
	p.Y.Label.Text = name
	if err := plotutil.AddLinePoints(p, name, xys); err != nil {
		return err
	}

	tc, err := plotter.NewLine(plotter.XYs{{X: ising.CriticalTemperature, Y: lo}, {X: ising.CriticalTemperature, Y: hi}})
	if err != nil {
		return err
	}
	tc.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	tc.LineStyle.Color = color.Gray{Y: 128}
	p.Add(tc)
	p.Legend.Add("Tc", tc)

	return save(p, w, f)
}

// ObservableNames lists the names accepted by Observables.
func ObservableNames() []string {
	return []string{"energy", "magnetization", "susceptibility", "specific-heat", "binder"}
}
