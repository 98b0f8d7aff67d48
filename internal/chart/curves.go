package chart

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"chromatin/internal/model"
)

// LifetimeCurvePNG renders mean dominance lifetime against feedback
// strength on log-log axes. Lifetimes are converted from ticks to
// sweeps when the lattice size is known. Points that cannot sit on a
// log axis are skipped.
func LifetimeCurvePNG(points []model.CurvePoint, sites int, path string) error {
	perSweep := 1.0
	if sites > 0 {
		perSweep = 1.0 / float64(sites)
	}

	xys := make(plotter.XYs, 0, len(points))
	for _, point := range points {
		if point.Feedback <= 0 || point.MeanLifetime <= 0 {
			continue
		}
		xys = append(xys, plotter.XY{X: point.Feedback, Y: point.MeanLifetime * perSweep})
	}
	if len(xys) == 0 {
		return fmt.Errorf("no plottable curve points")
	}

	p := plot.New()
	p.Title.Text = "Mean dominance lifetime"
	p.X.Label.Text = "Feedback strength F"
	p.Y.Label.Text = "Lifetime (sweeps)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	if err := plotutil.AddLinePoints(p, "Lifetime", xys); err != nil {
		return err
	}

	return savePlot(p, path)
}

// GapCurvePNG renders the mean gap score against feedback strength
// with a log x axis.
func GapCurvePNG(points []model.CurvePoint, path string) error {
	xys := make(plotter.XYs, 0, len(points))
	for _, point := range points {
		if point.Feedback <= 0 {
			continue
		}
		xys = append(xys, plotter.XY{X: point.Feedback, Y: point.MeanGap})
	}
	if len(xys) == 0 {
		return fmt.Errorf("no plottable curve points")
	}

	p := plot.New()
	p.Title.Text = "Mean gap score"
	p.X.Label.Text = "Feedback strength F"
	p.Y.Label.Text = "Gap |M-A|/(M+A)"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Min = 0
	p.Y.Max = 1

	if err := plotutil.AddLinePoints(p, "Gap", xys); err != nil {
		return err
	}

	return savePlot(p, path)
}

func savePlot(p *plot.Plot, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
