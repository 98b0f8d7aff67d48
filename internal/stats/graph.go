package stats

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// CurveGraph is one variant's stored curve reshaped into parallel
// arrays, with cross-run spread where per-run values were kept.
type CurveGraph struct {
	Variant      string    `json:"variant"`
	Feedbacks    []float64 `json:"feedbacks"`
	MeanLifetime []float64 `json:"mean_lifetime,omitempty"`
	LifetimeStd  []float64 `json:"lifetime_std,omitempty"`
	MeanGap      []float64 `json:"mean_gap"`
	GapStd       []float64 `json:"gap_std,omitempty"`
}

// BuildCurveGraphs reshapes a run's stored curves for reporting and
// rendering, one graph per variant in name order.
func BuildCurveGraphs(baseDir, runID string) ([]CurveGraph, error) {
	curves, ok, err := ReadCurves(baseDir, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("curves not found for run id: %s", runID)
	}

	graphs := make([]CurveGraph, 0, len(curves))
	for _, variant := range sortedKeys(curves) {
		points := curves[variant]
		graph := CurveGraph{Variant: variant}
		withLifetimes := len(points) > 0 && points[0].RunLifetimes != nil
		for _, p := range points {
			graph.Feedbacks = append(graph.Feedbacks, p.Feedback)
			graph.MeanGap = append(graph.MeanGap, p.MeanGap)
			graph.GapStd = append(graph.GapStd, spreadOf(p.RunGaps))
			if withLifetimes {
				graph.MeanLifetime = append(graph.MeanLifetime, p.MeanLifetime)
				graph.LifetimeStd = append(graph.LifetimeStd, spreadOf(p.RunLifetimes))
			}
		}
		graphs = append(graphs, graph)
	}
	return graphs, nil
}

func spreadOf(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	std, err := stats.StandardDeviationSample(values)
	if err != nil {
		return 0
	}
	return std
}
