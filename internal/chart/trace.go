package chart

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"chromatin/internal/model"
)

// TracePNG renders the lattice composition over time. Time is measured
// in sweeps, one attempted conversion per nucleosome.
func TracePNG(samples []model.TraceSample, path string) error {
	if len(samples) == 0 {
		return fmt.Errorf("no trace samples to plot")
	}

	times := make([]float64, len(samples))
	acetylated := make([]float64, len(samples))
	unmodified := make([]float64, len(samples))
	methylated := make([]float64, len(samples))
	sites := samples[0].Acetylated + samples[0].Unmodified + samples[0].Methylated
	for i, sample := range samples {
		times[i] = sample.Time
		acetylated[i] = float64(sample.Acetylated)
		unmodified[i] = float64(sample.Unmodified)
		methylated[i] = float64(sample.Methylated)
	}

	graph := chart.Chart{
		Title:  "Lattice composition",
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Name:  "Time (sweeps)",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "Nucleosomes",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(sites)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Acetylated",
				XValues: times,
				YValues: acetylated,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2.0,
				},
			},
			chart.ContinuousSeries{
				Name:    "Unmodified",
				XValues: times,
				YValues: unmodified,
				Style: chart.Style{
					StrokeColor: chart.ColorAlternateGray,
					StrokeWidth: 2.0,
				},
			},
			chart.ContinuousSeries{
				Name:    "Methylated",
				XValues: times,
				YValues: methylated,
				Style: chart.Style{
					StrokeColor: chart.ColorRed,
					StrokeWidth: 2.0,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(graph, path)
}

// GapTracePNG renders the signed normalized gap (M-A)/(M+A) over
// time, the quantity whose sign flips mark epigenetic switches.
func GapTracePNG(samples []model.TraceSample, path string) error {
	if len(samples) == 0 {
		return fmt.Errorf("no trace samples to plot")
	}

	times := make([]float64, 0, len(samples))
	gaps := make([]float64, 0, len(samples))
	for _, sample := range samples {
		if !sample.GapValid {
			continue
		}
		signed := sample.Gap
		if sample.Delta < 0 {
			signed = -signed
		}
		times = append(times, sample.Time)
		gaps = append(gaps, signed)
	}
	if len(times) == 0 {
		return fmt.Errorf("no valid gap samples to plot")
	}

	graph := chart.Chart{
		Title:  "Signed gap",
		Width:  1280,
		Height: 480,
		XAxis: chart.XAxis{
			Name:  "Time (sweeps)",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "(M-A)/(M+A)",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: -1, Max: 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Gap",
				XValues: times,
				YValues: gaps,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2.0,
				},
			},
		},
	}

	return renderPNG(graph, path)
}
