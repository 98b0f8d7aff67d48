package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"chromatin/internal/model"
)

const runIndexFile = "run_index.json"

// RunArtifacts bundles everything one run writes under
// <baseDir>/<runID>/: the run record, curve points per variant, trace
// samples per label, and merged delta distributions.
type RunArtifacts struct {
	Record        model.RunRecord
	Curves        map[string][]model.CurvePoint
	Traces        map[string][]model.TraceSample
	Distributions []model.DistributionRecord
}

type RunIndexEntry struct {
	RunID        string `json:"run_id"`
	Kind         string `json:"kind"`
	Profile      string `json:"profile,omitempty"`
	Selector     string `json:"selector"`
	Cooperative  bool   `json:"cooperative"`
	Regime       string `json:"regime"`
	Sites        int    `json:"sites"`
	Runs         int    `json:"runs"`
	Seed         int64  `json:"seed"`
	CreatedAtUTC string `json:"created_at_utc"`
}

func IndexEntryFor(rec model.RunRecord) RunIndexEntry {
	return RunIndexEntry{
		RunID:        rec.ID,
		Kind:         rec.Kind,
		Profile:      rec.Profile,
		Selector:     rec.Config.Selector,
		Cooperative:  rec.Config.Cooperative,
		Regime:       rec.Config.Regime,
		Sites:        rec.Config.Sites,
		Runs:         rec.Config.Runs,
		Seed:         rec.Config.Seed,
		CreatedAtUTC: rec.CreatedAtUTC,
	}
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Record.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Record.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Record.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), artifacts.Record); err != nil {
		return "", err
	}

	if len(artifacts.Curves) > 0 {
		if err := writeJSON(filepath.Join(runDir, "curves.json"), artifacts.Curves); err != nil {
			return "", err
		}
		for _, variant := range sortedKeys(artifacts.Curves) {
			if err := writeCurveCSV(runDir, variant, artifacts.Curves[variant]); err != nil {
				return "", err
			}
		}
	}
	if len(artifacts.Traces) > 0 {
		if err := writeJSON(filepath.Join(runDir, "traces.json"), artifacts.Traces); err != nil {
			return "", err
		}
		for _, label := range sortedKeys(artifacts.Traces) {
			if err := writeTraceCSV(runDir, label, artifacts.Traces[label]); err != nil {
				return "", err
			}
		}
	}
	if len(artifacts.Distributions) > 0 {
		if err := writeJSON(filepath.Join(runDir, "distribution.json"), artifacts.Distributions); err != nil {
			return "", err
		}
	}

	return runDir, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeCurveCSV(runDir, variant string, points []model.CurvePoint) error {
	file, err := os.Create(filepath.Join(runDir, fmt.Sprintf("curve_%s.csv", variant)))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"feedback", "mean_lifetime", "mean_gap"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := writer.Write([]string{
			strconv.FormatFloat(p.Feedback, 'f', -1, 64),
			strconv.FormatFloat(p.MeanLifetime, 'f', -1, 64),
			strconv.FormatFloat(p.MeanGap, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTraceCSV(runDir, label string, samples []model.TraceSample) error {
	file, err := os.Create(filepath.Join(runDir, fmt.Sprintf("trace_%s.csv", label)))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"tick", "time", "acetylated", "unmodified", "methylated", "delta", "gap", "gap_valid"}); err != nil {
		return err
	}
	for _, s := range samples {
		if err := writer.Write([]string{
			strconv.Itoa(s.Tick),
			strconv.FormatFloat(s.Time, 'f', -1, 64),
			strconv.Itoa(s.Acetylated),
			strconv.Itoa(s.Unmodified),
			strconv.Itoa(s.Methylated),
			strconv.Itoa(s.Delta),
			strconv.FormatFloat(s.Gap, 'f', -1, 64),
			strconv.FormatBool(s.GapValid),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadRunRecord(baseDir, runID string) (model.RunRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "summary.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}

	var rec model.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.RunRecord{}, false, err
	}
	return rec, true, nil
}

func ReadRunConfig(baseDir, runID string) (model.RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RunConfig{}, false, nil
		}
		return model.RunConfig{}, false, err
	}

	var cfg model.RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.RunConfig{}, false, err
	}
	return cfg, true, nil
}

func ReadCurves(baseDir, runID string) (map[string][]model.CurvePoint, bool, error) {
	path := filepath.Join(baseDir, runID, "curves.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var curves map[string][]model.CurvePoint
	if err := json.Unmarshal(data, &curves); err != nil {
		return nil, false, err
	}
	return curves, true, nil
}

// ReadCurveSeries reads one variant's curve back from its CSV. Only
// the columns the CSV carries are populated.
func ReadCurveSeries(baseDir, runID, variant string) ([]model.CurvePoint, bool, error) {
	path := filepath.Join(baseDir, runID, fmt.Sprintf("curve_%s.csv", variant))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.CurvePoint{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 3 {
		return nil, false, fmt.Errorf("curve series header must have at least 3 columns")
	}

	points := make([]model.CurvePoint, 0, 32)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 3 {
			return nil, false, fmt.Errorf("curve series row must have at least 3 columns")
		}
		feedback, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, false, err
		}
		lifetime, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		gap, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, false, err
		}
		points = append(points, model.CurvePoint{Feedback: feedback, MeanLifetime: lifetime, MeanGap: gap})
	}
	return points, true, nil
}

func ReadTraces(baseDir, runID string) (map[string][]model.TraceSample, bool, error) {
	path := filepath.Join(baseDir, runID, "traces.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var traces map[string][]model.TraceSample
	if err := json.Unmarshal(data, &traces); err != nil {
		return nil, false, err
	}
	return traces, true, nil
}

func ReadDistributions(baseDir, runID string) ([]model.DistributionRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "distribution.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var records []model.DistributionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, err
	}
	return records, true, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Equal timestamps fall back to append order, newest first.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies a run's artifact files into outDir/runID.
// Data files and rendered figures are taken; anything else in the run
// directory is left behind.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if strings.TrimSpace(runID) == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	entries, err := os.ReadDir(src)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch filepath.Ext(name) {
		case ".json", ".csv", ".png", ".avi":
		default:
			continue
		}
		if err := copyFile(filepath.Join(src, name), filepath.Join(dst, name)); err != nil {
			return "", err
		}
	}

	return dst, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
