// Package plotting renders progress charts from recorded traces. It is
// an output-only side channel; the optimizer never depends on it.
package plotting

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/sgalella/GeometricArt/internal/store"
)

// SimilarityChart plots similarity (percent) against iteration for a
// recorded trace and saves the chart as a PNG.
func SimilarityChart(entries []store.TraceEntry, title, outPath string) error {
	if len(entries) == 0 {
		return fmt.Errorf("trace is empty, nothing to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Similarity (%)"
	p.Y.Min = 0
	p.Y.Max = 100

	pts := make(plotter.XYs, len(entries))
	for i, e := range entries {
		pts[i].X = float64(e.Iteration)
		pts[i].Y = e.Similarity
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build similarity line: %w", err)
	}

	p.Add(line)
	p.Legend.Add("similarity", line)
	p.Legend.Top = false
	p.Legend.Left = false

	if err := p.Save(6*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// ChangesChart plots the accepted-change count against iteration,
// showing how quickly the search saturates.
func ChangesChart(entries []store.TraceEntry, title, outPath string) error {
	if len(entries) == 0 {
		return fmt.Errorf("trace is empty, nothing to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Accepted changes"

	pts := make(plotter.XYs, len(entries))
	for i, e := range entries {
		pts[i].X = float64(e.Iteration)
		pts[i].Y = float64(e.Changes)
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build changes line: %w", err)
	}

	p.Add(line)
	p.Legend.Add("changes", line)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
