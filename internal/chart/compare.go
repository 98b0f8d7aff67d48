package chart

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Series is one named line on a comparison chart.
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

var seriesPalette = []drawing.Color{
	chart.ColorRed,
	chart.ColorBlue,
	chart.ColorGreen,
	{R: 255, G: 165, B: 0, A: 255},
	{R: 128, G: 0, B: 128, A: 255},
	{R: 0, G: 139, B: 139, A: 255},
}

// CompareGapPNG renders per-variant gap scores against feedback
// strength. Feedback values map onto a log10 x axis with decade ticks.
func CompareGapPNG(series []Series, path string) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to plot")
	}

	minExp, maxExp := math.MaxFloat64, -math.MaxFloat64
	chartSeries := make([]chart.Series, 0, len(series))
	for i, s := range series {
		if len(s.X) == 0 || len(s.X) != len(s.Y) {
			return fmt.Errorf("series %s has %d x values and %d y values", s.Name, len(s.X), len(s.Y))
		}
		xs := make([]float64, 0, len(s.X))
		ys := make([]float64, 0, len(s.Y))
		for j, x := range s.X {
			if x <= 0 {
				continue
			}
			exp := math.Log10(x)
			if exp < minExp {
				minExp = exp
			}
			if exp > maxExp {
				maxExp = exp
			}
			xs = append(xs, exp)
			ys = append(ys, s.Y[j])
		}
		if len(xs) == 0 {
			return fmt.Errorf("series %s has no plottable points", s.Name)
		}
		chartSeries = append(chartSeries, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: seriesPalette[i%len(seriesPalette)],
				StrokeWidth: 2.0,
			},
		})
	}

	graph := chart.Chart{
		Title:  "Gap score by recruitment model",
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Name:  "Feedback strength F",
			Style: chart.Style{FontSize: 10.0},
			Ticks: decadeTicks(minExp, maxExp),
		},
		YAxis: chart.YAxis{
			Name:  "Gap |M-A|/(M+A)",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: chartSeries,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(graph, path)
}

// decadeTicks labels whole powers of ten across the plotted log10
// range with the original feedback values.
func decadeTicks(minExp, maxExp float64) []chart.Tick {
	var ticks []chart.Tick
	for exp := math.Floor(minExp); exp <= math.Ceil(maxExp); exp++ {
		value := math.Pow(10, exp)
		label := fmt.Sprintf("%g", value)
		ticks = append(ticks, chart.Tick{Value: exp, Label: label})
	}
	return ticks
}

func renderPNG(graph chart.Chart, path string) error {
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buffer.Bytes(), 0o644)
}
