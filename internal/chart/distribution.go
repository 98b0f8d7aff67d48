package chart

import (
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"chromatin/internal/model"
)

// DistributionPNG overlays M-A difference histograms, one series per
// record. Bimodal shapes signal bistability, unimodal shapes a single
// mixed regime.
func DistributionPNG(records []model.DistributionRecord, path string) error {
	if len(records) == 0 {
		return fmt.Errorf("no distributions to plot")
	}

	chartSeries := make([]chart.Series, 0, len(records))
	for i, record := range records {
		if len(record.Bins) == 0 {
			return fmt.Errorf("distribution %s/%s has no bins", record.RunID, record.Variant)
		}
		bins := make([]model.DistributionBin, len(record.Bins))
		copy(bins, record.Bins)
		sort.Slice(bins, func(a, b int) bool { return bins[a].Delta < bins[b].Delta })

		deltas := make([]float64, len(bins))
		probabilities := make([]float64, len(bins))
		for j, bin := range bins {
			deltas[j] = float64(bin.Delta)
			probabilities[j] = bin.Probability
		}
		chartSeries = append(chartSeries, chart.ContinuousSeries{
			Name:    fmt.Sprintf("%s F=%g", record.Variant, record.Feedback),
			XValues: deltas,
			YValues: probabilities,
			Style: chart.Style{
				StrokeColor: seriesPalette[i%len(seriesPalette)],
				StrokeWidth: 2.0,
			},
		})
	}

	graph := chart.Chart{
		Title:  "M-A difference distribution",
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Name:  "M - A",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "Probability",
			Style: chart.Style{FontSize: 10.0},
		},
		Series: chartSeries,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(graph, path)
}
