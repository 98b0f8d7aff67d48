package chart

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"chromatin/internal/model"
)

// MethylationHistPNG renders the distribution of the methylated count
// across trace samples, normalized to unit area. Bimodal shapes mark
// the bistable regime.
func MethylationHistPNG(samples []model.TraceSample, sites int, path string) error {
	if len(samples) == 0 {
		return fmt.Errorf("no trace samples to plot")
	}
	if sites <= 0 {
		return fmt.Errorf("sites must be > 0, got %d", sites)
	}

	values := make(plotter.Values, len(samples))
	for i, sample := range samples {
		values[i] = float64(sample.Methylated)
	}

	hist, err := plotter.NewHist(values, sites+1)
	if err != nil {
		return err
	}
	hist.Normalize(1)

	p := plot.New()
	p.Title.Text = "Methylated count distribution"
	p.X.Label.Text = "Number of M nucleosomes"
	p.Y.Label.Text = "Probability density"
	p.X.Min = 0
	p.X.Max = float64(sites)
	p.Add(hist)

	return savePlot(p, path)
}
