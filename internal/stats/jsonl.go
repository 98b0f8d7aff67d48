package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSONL writes one JSON document per line, the interchange format
// the downstream analysis notebooks stream from.
func WriteJSONL(path string, items []any) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		if _, err := file.Write(data); err != nil {
			return err
		}
		if _, err := file.Write([]byte("\n")); err != nil {
			return err
		}
	}
	return nil
}

// CurveItems flattens a run's stored curves into one item per curve
// point for line-oriented export.
func CurveItems(baseDir, runID string) ([]any, error) {
	curves, ok, err := ReadCurves(baseDir, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("curves not found for run id: %s", runID)
	}
	items := make([]any, 0, 64)
	for _, variant := range sortedKeys(curves) {
		for _, p := range curves[variant] {
			items = append(items, map[string]any{
				"run_id":        runID,
				"variant":       variant,
				"feedback":      p.Feedback,
				"mean_lifetime": p.MeanLifetime,
				"mean_gap":      p.MeanGap,
			})
		}
	}
	return items, nil
}
