package chromatin

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"chromatin/internal/model"
	"chromatin/internal/stats"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	base := t.TempDir()
	client, err := New(Options{
		ResultsDir: filepath.Join(base, "results"),
		ExportsDir: filepath.Join(base, "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Fatalf("close client: %v", err)
		}
	})
	return client
}

func requireFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Fatalf("file %s is empty", path)
	}
}

func smallCurveRequest(seed int64) CurveRequest {
	return CurveRequest{
		Sites:         12,
		Selector:      "global",
		Cooperative:   true,
		Regime:        "full",
		Feedbacks:     []float64{0.5, 2},
		Ticks:         400,
		Equilibration: 48,
		Runs:          2,
		Seed:          seed,
		Workers:       2,
	}
}

func smallTraceRequest(seed int64) TraceRequest {
	return TraceRequest{
		Sites:         12,
		Selector:      "global",
		Cooperative:   true,
		Regime:        "full",
		Feedbacks:     []float64{0.5, 2},
		Ticks:         600,
		Equilibration: 10,
		Seed:          seed,
		Workers:       2,
	}
}

func TestNewDefaultsOptions(t *testing.T) {
	client, err := New(Options{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()
	if client.resultsDir != DefaultResultsDir {
		t.Fatalf("results dir %q, want %q", client.resultsDir, DefaultResultsDir)
	}
	if client.exportsDir != DefaultExportsDir {
		t.Fatalf("exports dir %q, want %q", client.exportsDir, DefaultExportsDir)
	}
}

func TestNewRejectsUnknownStore(t *testing.T) {
	if _, err := New(Options{StoreKind: "papyrus"}); err == nil {
		t.Fatal("accepted unknown store kind")
	}
}

func TestCurvesRecordsRun(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.Curves(ctx, smallCurveRequest(11))
	if err != nil {
		t.Fatalf("curves: %v", err)
	}
	if res.RunID == "" || res.Kind != "curves" || res.Profile != "" {
		t.Fatalf("unexpected result identity: %+v", res)
	}
	if res.Summary.Points != 2 || res.Summary.Variants != 1 {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	requireFile(t, filepath.Join(res.Dir, "config.json"))
	requireFile(t, filepath.Join(res.Dir, "summary.json"))
	requireFile(t, filepath.Join(res.Dir, "curve_global.csv"))
	requireFile(t, filepath.Join(res.Dir, "lifetime_curve.png"))
	requireFile(t, filepath.Join(res.Dir, "gap_curve.png"))

	detail, err := client.Show(ctx, ShowRequest{RunID: res.RunID})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if detail.Record.ID != res.RunID || detail.Record.Kind != "curves" {
		t.Fatalf("stored record mismatch: %+v", detail.Record)
	}
	if detail.Record.Config.Sites != 12 || detail.Record.Config.Runs != 2 {
		t.Fatalf("stored config mismatch: %+v", detail.Record.Config)
	}
	if len(detail.Curves["global"]) != 2 {
		t.Fatalf("stored curve has %d points, want 2", len(detail.Curves["global"]))
	}
	if len(detail.Graphs) != 1 || detail.Graphs[0].Variant != "global" {
		t.Fatalf("unexpected graphs: %+v", detail.Graphs)
	}

	entries, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(entries) != 1 || entries[0].RunID != res.RunID {
		t.Fatalf("unexpected index entries: %+v", entries)
	}
}

func TestCompareRecordsAllVariants(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.Compare(ctx, CompareRequest{
		Sites:         12,
		Feedbacks:     []float64{0.5, 2},
		Ticks:         400,
		Equilibration: 48,
		Runs:          2,
		Seed:          13,
		Workers:       2,
	})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if res.Kind != "compare" {
		t.Fatalf("kind %q, want compare", res.Kind)
	}
	if res.Summary.Variants != 2 || res.Summary.Points != 2 {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	requireFile(t, filepath.Join(res.Dir, "gap_compare.png"))
	requireFile(t, filepath.Join(res.Dir, "curve_cooperative.csv"))
	requireFile(t, filepath.Join(res.Dir, "curve_non-cooperative.csv"))

	detail, err := client.Show(ctx, ShowRequest{RunID: res.RunID})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if len(detail.Curves) != 2 {
		t.Fatalf("stored %d curve variants, want 2", len(detail.Curves))
	}
	for _, name := range []string{"cooperative", "non-cooperative"} {
		if len(detail.Curves[name]) != 2 {
			t.Fatalf("variant %s has %d points, want 2", name, len(detail.Curves[name]))
		}
	}
}

func TestCompareRejectsDuplicateVariants(t *testing.T) {
	client := newTestClient(t)
	_, err := client.Compare(context.Background(), CompareRequest{
		Sites:         12,
		Feedbacks:     []float64{1},
		Ticks:         100,
		Equilibration: 10,
		Runs:          1,
		Variants: []model.Variant{
			{Name: "twin", Selector: "global", Cooperative: true, Regime: "full"},
			{Name: "twin", Selector: "neighbor", Cooperative: true, Regime: "full"},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate variant name") {
		t.Fatalf("expected duplicate variant error, got %v", err)
	}
}

func TestTraceRendersKymograph(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	req := smallTraceRequest(17)
	req.Kymograph = true
	res, err := client.Trace(ctx, req)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if res.Kind != "trace" {
		t.Fatalf("kind %q, want trace", res.Kind)
	}
	// 600 ticks at stride 12 leave 50 samples per feedback.
	if res.Summary.Variants != 2 || res.Summary.Samples != 100 {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	for _, label := range []string{"F0.5", "F2"} {
		requireFile(t, filepath.Join(res.Dir, "trace_"+label+".csv"))
		requireFile(t, filepath.Join(res.Dir, "trace_"+label+".png"))
		requireFile(t, filepath.Join(res.Dir, "gap_"+label+".png"))
		requireFile(t, filepath.Join(res.Dir, "hist_"+label+".png"))
		requireFile(t, filepath.Join(res.Dir, "kymograph_"+label+".avi"))
	}

	detail, err := client.Show(ctx, ShowRequest{RunID: res.RunID})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if len(detail.Traces["F2"]) != 50 {
		t.Fatalf("trace F2 has %d samples, want 50", len(detail.Traces["F2"]))
	}
}

func TestDistributionRecordsPerVariantAndFeedback(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.Distribution(ctx, DistributionRequest{
		Sites:         12,
		Feedbacks:     []float64{1, 2},
		Ticks:         600,
		Equilibration: 48,
		Runs:          2,
		Seed:          19,
		Workers:       2,
	})
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	if res.Summary.Variants != 2 || res.Summary.Points != 2 {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	// 600 ticks at stride 12 sample 50 compositions per run, 2 runs
	// per pair, 4 pairs.
	if res.Summary.Samples != 400 {
		t.Fatalf("sample total %d, want 400", res.Summary.Samples)
	}
	requireFile(t, filepath.Join(res.Dir, "distribution.json"))
	requireFile(t, filepath.Join(res.Dir, "distribution_cooperative.png"))
	requireFile(t, filepath.Join(res.Dir, "distribution_non-cooperative.png"))

	detail, err := client.Show(ctx, ShowRequest{RunID: res.RunID})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if len(detail.Distributions) != 4 {
		t.Fatalf("stored %d distribution records, want 4", len(detail.Distributions))
	}
	for _, rec := range detail.Distributions {
		if rec.RunID != res.RunID || rec.Samples != 100 {
			t.Fatalf("unexpected distribution record: %+v", rec)
		}
	}

	// The store keys each series by variant and feedback.
	stored, ok, err := client.store.GetDistribution(ctx, res.RunID, "cooperative-F2")
	if err != nil || !ok {
		t.Fatalf("stored series lookup: ok=%v err=%v", ok, err)
	}
	if stored.Variant != "cooperative-F2" || stored.Feedback != 2 {
		t.Fatalf("unexpected stored series: %+v", stored)
	}
}

func TestMeasureDeterministic(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	req := MeasureRequest{
		Sites:         12,
		Selector:      "global",
		Cooperative:   true,
		Regime:        "full",
		Feedback:      2,
		Ticks:         600,
		Equilibration: 48,
		Seed:          23,
	}
	first, err := client.Measure(ctx, req)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if first.Feedback != 2 {
		t.Fatalf("feedback %v, want 2", first.Feedback)
	}
	if first.GapScore < 0 || first.GapScore > 1 {
		t.Fatalf("gap score %v outside [0,1]", first.GapScore)
	}
	again, err := client.Measure(ctx, req)
	if err != nil {
		t.Fatalf("measure rerun: %v", err)
	}
	if !reflect.DeepEqual(first, again) {
		t.Fatalf("measurement not deterministic: %+v vs %+v", first, again)
	}
}

func TestProfilesListsBundled(t *testing.T) {
	client := newTestClient(t)
	profiles := client.Profiles()
	if len(profiles) != 6 {
		t.Fatalf("profile count %d, want 6", len(profiles))
	}
	byName := make(map[string]ProfileInfo, len(profiles))
	for _, p := range profiles {
		byName[p.Name] = p
	}
	bistability, ok := byName["bistability"]
	if !ok {
		t.Fatal("bistability profile missing")
	}
	if bistability.Kind != "trace" || len(bistability.Variants) != 1 {
		t.Fatalf("unexpected bistability profile: %+v", bistability)
	}
	if _, ok := byName["lifetime-curve"]; !ok {
		t.Fatal("lifetime-curve profile missing")
	}
}

func TestRunProfileBistability(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.RunProfile(ctx, ProfileRequest{Name: "bistability", Sites: 12, Seed: 29, Workers: 2})
	if err != nil {
		t.Fatalf("run profile: %v", err)
	}
	if res.Profile != "bistability" || res.Kind != "trace" {
		t.Fatalf("unexpected result identity: %+v", res)
	}
	if !strings.HasPrefix(res.RunID, "bistability-29-") {
		t.Fatalf("run id %q lacks profile prefix", res.RunID)
	}
	// Four bracketing feedback values, one trajectory each.
	if res.Summary.Variants != 4 {
		t.Fatalf("series count %d, want 4", res.Summary.Variants)
	}

	detail, err := client.Show(ctx, ShowRequest{Latest: true})
	if err != nil {
		t.Fatalf("show latest: %v", err)
	}
	if detail.Record.Profile != "bistability" {
		t.Fatalf("latest run profile %q, want bistability", detail.Record.Profile)
	}
	if detail.Record.Config.Sites != 12 {
		t.Fatalf("site override not recorded: %+v", detail.Record.Config)
	}
}

func TestRunProfileUnknown(t *testing.T) {
	client := newTestClient(t)
	_, err := client.RunProfile(context.Background(), ProfileRequest{Name: "sorcery"})
	if err == nil || !strings.Contains(err.Error(), "unknown profile") {
		t.Fatalf("expected unknown profile error, got %v", err)
	}
}

func TestExperimentCompletesAndReports(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.Experiment(ctx, ExperimentRequest{
		ID:       "exp-smoke",
		Profiles: []string{"bistability"},
		Sites:    12,
		Seed:     31,
		Workers:  2,
	})
	if err != nil {
		t.Fatalf("experiment: %v", err)
	}
	if !res.Completed || len(res.Steps) != 1 {
		t.Fatalf("unexpected experiment result: %+v", res)
	}

	exp, ok, err := stats.ReadSweepExperiment(client.resultsDir, "exp-smoke")
	if err != nil || !ok {
		t.Fatalf("read checkpoint: ok=%v err=%v", ok, err)
	}
	if exp.ProgressFlag != stats.ProgressCompleted || exp.StepIndex != 1 {
		t.Fatalf("unexpected checkpoint: %+v", exp)
	}
	if len(exp.RunIDs) != 1 || exp.RunIDs[0] != res.Steps[0].RunID {
		t.Fatalf("checkpoint run ids %v", exp.RunIDs)
	}
	if exp.CompletedAtUTC == "" {
		t.Fatal("completion timestamp missing")
	}

	listed, err := client.Experiments(ctx)
	if err != nil {
		t.Fatalf("experiments: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "exp-smoke" {
		t.Fatalf("unexpected experiment listing: %+v", listed)
	}

	report, err := client.Report(ctx, ReportRequest{ExperimentID: "exp-smoke"})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	requireFile(t, filepath.Join(report.Path, "report_report.json"))
	if len(report.Report.Steps) != 1 || report.Report.Steps[0].Kind != "trace" {
		t.Fatalf("unexpected report steps: %+v", report.Report.Steps)
	}

	// Resuming a completed experiment is a no-op.
	again, err := client.Experiment(ctx, ExperimentRequest{ID: "exp-smoke", Resume: true})
	if err != nil {
		t.Fatalf("resume completed: %v", err)
	}
	if !again.Completed || len(again.Steps) != 0 {
		t.Fatalf("unexpected resume result: %+v", again)
	}
}

func TestExperimentResumesFromCheckpoint(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	// A campaign interrupted after its first step. The checkpoint
	// carries the budgets, so the resume request only names the ID.
	seeded := stats.SweepExperiment{
		ID:           "exp-resume",
		ProgressFlag: stats.ProgressInProgress,
		StepIndex:    1,
		TotalSteps:   2,
		StartedAtUTC: "2026-03-01T09:30:00Z",
		Profiles:     []string{"bistability", "bistability"},
		Sites:        12,
		Seed:         37,
		Workers:      2,
		RunIDs:       []string{"placeholder-run"},
		Summaries:    []model.RunSummary{{Variants: 4}},
	}
	if err := stats.WriteSweepExperiment(client.resultsDir, seeded); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	res, err := client.Experiment(ctx, ExperimentRequest{
		ID:     "exp-resume",
		Resume: true,
	})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !res.Completed || len(res.Steps) != 1 {
		t.Fatalf("resume ran %d steps, want 1", len(res.Steps))
	}
	if got := res.Steps[0].RunID; !strings.HasPrefix(got, "bistability-37-") {
		t.Fatalf("resumed step run id %q, want checkpoint seed 37", got)
	}

	exp, ok, err := stats.ReadSweepExperiment(client.resultsDir, "exp-resume")
	if err != nil || !ok {
		t.Fatalf("read checkpoint: ok=%v err=%v", ok, err)
	}
	if exp.ProgressFlag != stats.ProgressCompleted || exp.StepIndex != 2 {
		t.Fatalf("unexpected checkpoint: %+v", exp)
	}
	if exp.Sites != 12 || exp.Seed != 37 {
		t.Fatalf("checkpoint budgets sites=%d seed=%d, want 12/37", exp.Sites, exp.Seed)
	}
	if len(exp.RunIDs) != 2 || exp.RunIDs[0] != "placeholder-run" {
		t.Fatalf("checkpoint run ids %v", exp.RunIDs)
	}
	if len(exp.Interruptions) != 1 {
		t.Fatalf("interruptions %v, want one entry", exp.Interruptions)
	}
}

func TestExperimentCancelledLeavesCheckpoint(t *testing.T) {
	client := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Experiment(ctx, ExperimentRequest{
		ID:       "exp-cancelled",
		Profiles: []string{"bistability"},
		Sites:    12,
		Seed:     41,
	})
	if err == nil {
		t.Fatal("cancelled experiment returned no error")
	}
	exp, ok, readErr := stats.ReadSweepExperiment(client.resultsDir, "exp-cancelled")
	if readErr != nil || !ok {
		t.Fatalf("read checkpoint: ok=%v err=%v", ok, readErr)
	}
	if exp.ProgressFlag != stats.ProgressInProgress || exp.StepIndex != 0 {
		t.Fatalf("unexpected checkpoint: %+v", exp)
	}
}

func TestRunsLimit(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	first, err := client.Trace(ctx, smallTraceRequest(43))
	if err != nil {
		t.Fatalf("first trace: %v", err)
	}
	second, err := client.Trace(ctx, smallTraceRequest(44))
	if err != nil {
		t.Fatalf("second trace: %v", err)
	}

	entries, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entry count %d, want 2", len(entries))
	}
	if entries[0].RunID != second.RunID || entries[1].RunID != first.RunID {
		t.Fatalf("entries not newest first: %+v", entries)
	}

	limited, err := client.Runs(ctx, RunsRequest{Limit: 1})
	if err != nil {
		t.Fatalf("limited runs: %v", err)
	}
	if len(limited) != 1 || limited[0].RunID != second.RunID {
		t.Fatalf("unexpected limited entries: %+v", limited)
	}
}

func TestShowRequiresSelection(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if _, err := client.Show(ctx, ShowRequest{}); err == nil {
		t.Fatal("show without selection returned no error")
	}
	if _, err := client.Show(ctx, ShowRequest{RunID: "run-1", Latest: true}); err == nil {
		t.Fatal("show with both selections returned no error")
	}
	if _, err := client.Show(ctx, ShowRequest{Latest: true}); err == nil || !strings.Contains(err.Error(), "no runs available") {
		t.Fatalf("expected no runs error, got %v", err)
	}
}

func TestExportCopiesArtifacts(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.Curves(ctx, smallCurveRequest(47))
	if err != nil {
		t.Fatalf("curves: %v", err)
	}
	dst, err := client.Export(ctx, ExportRequest{Latest: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(dst) != res.RunID {
		t.Fatalf("export dir %q does not carry the run id", dst)
	}
	requireFile(t, filepath.Join(dst, "summary.json"))
	requireFile(t, filepath.Join(dst, "curve_global.csv"))
	requireFile(t, filepath.Join(dst, "lifetime_curve.png"))
}

func TestExportCurvesJSONL(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.Curves(ctx, smallCurveRequest(53))
	if err != nil {
		t.Fatalf("curves: %v", err)
	}
	path, err := client.ExportCurvesJSONL(ctx, JSONLRequest{RunID: res.RunID})
	if err != nil {
		t.Fatalf("jsonl export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("jsonl line count %d, want 2", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, res.RunID) {
			t.Fatalf("jsonl line missing run id: %s", line)
		}
	}
}

func TestDeleteRunRemovesStoredRun(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.Trace(ctx, smallTraceRequest(59))
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if err := client.DeleteRun(ctx, res.RunID); err != nil {
		t.Fatalf("delete run: %v", err)
	}
	if _, ok, err := client.store.GetRun(ctx, res.RunID); err != nil || ok {
		t.Fatalf("stored record after delete: ok=%v err=%v", ok, err)
	}
	// Artifact files are untouched by store deletion, so Show still
	// resolves the record from disk.
	requireFile(t, filepath.Join(res.Dir, "traces.json"))
	detail, err := client.Show(ctx, ShowRequest{RunID: res.RunID})
	if err != nil {
		t.Fatalf("show after delete: %v", err)
	}
	if detail.Record.ID != res.RunID {
		t.Fatalf("show after delete returned record %q", detail.Record.ID)
	}

	if err := client.DeleteRun(ctx, ""); err == nil {
		t.Fatal("delete without run id returned no error")
	}
}

func TestReportUnknownExperiment(t *testing.T) {
	client := newTestClient(t)
	_, err := client.Report(context.Background(), ReportRequest{ExperimentID: "exp-ghost"})
	if err == nil || !strings.Contains(err.Error(), "experiment not found") {
		t.Fatalf("expected missing experiment error, got %v", err)
	}
}
