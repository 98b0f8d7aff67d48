package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chromatin/internal/model"
)

// ExperimentStep is one completed profile inside an experiment report.
type ExperimentStep struct {
	RunID   string           `json:"run_id"`
	Profile string           `json:"profile,omitempty"`
	Kind    string           `json:"kind"`
	Summary model.RunSummary `json:"summary"`
	Curves  []CurveGraph     `json:"curves,omitempty"`
}

type ExperimentReport struct {
	ExperimentID string           `json:"experiment_id"`
	ReportName   string           `json:"report_name"`
	GeneratedAt  string           `json:"generated_at_utc"`
	Experiment   SweepExperiment  `json:"experiment"`
	Steps        []ExperimentStep `json:"steps"`
}

// BuildExperimentReport assembles a report from the stored artifacts
// of every run an experiment recorded.
func BuildExperimentReport(baseDir string, exp SweepExperiment) (ExperimentReport, error) {
	report := ExperimentReport{
		ExperimentID: exp.ID,
		Experiment:   exp,
		Steps:        make([]ExperimentStep, 0, len(exp.RunIDs)),
	}
	for _, runID := range exp.RunIDs {
		rec, ok, err := ReadRunRecord(baseDir, runID)
		if err != nil {
			return ExperimentReport{}, err
		}
		if !ok {
			return ExperimentReport{}, fmt.Errorf("run record not found for run id: %s", runID)
		}
		step := ExperimentStep{
			RunID:   runID,
			Profile: rec.Profile,
			Kind:    rec.Kind,
			Summary: rec.Summary,
		}
		if _, hasCurves, err := ReadCurves(baseDir, runID); err != nil {
			return ExperimentReport{}, err
		} else if hasCurves {
			graphs, err := BuildCurveGraphs(baseDir, runID)
			if err != nil {
				return ExperimentReport{}, err
			}
			step.Curves = graphs
		}
		report.Steps = append(report.Steps, step)
	}
	return report, nil
}

func WriteExperimentReport(baseDir string, report ExperimentReport) (string, error) {
	if report.ExperimentID == "" {
		return "", fmt.Errorf("report experiment id is required")
	}
	name := report.ReportName
	if name == "" {
		name = "report"
	}
	reportDir := filepath.Join(baseDir, experimentsDir, report.ExperimentID)
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", err
	}
	if report.GeneratedAt == "" {
		report.GeneratedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if err := writeJSON(filepath.Join(reportDir, name+"_experiment.json"), report.Experiment); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(reportDir, name+"_steps.json"), report.Steps); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(reportDir, name+"_report.json"), report); err != nil {
		return "", err
	}
	return reportDir, nil
}
