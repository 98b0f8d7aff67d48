// Package chromatin is the embedding API for the nucleosome switching
// simulator. A Client runs sweeps, traces, and the bundled profiles,
// persists their results, and reads them back as records, figures,
// and exports.
package chromatin

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"chromatin/internal/chart"
	"chromatin/internal/collect"
	"chromatin/internal/measure"
	"chromatin/internal/model"
	"chromatin/internal/stats"
	"chromatin/internal/storage"
	"chromatin/internal/sweep"
)

// Default locations used when Options leaves them empty.
const (
	DefaultResultsDir = "results"
	DefaultExportsDir = "exports"
	DefaultDBPath     = "chromatin.db"
)

// Options configures a Client. Zero values select the in-memory store
// and the default artifact directories.
type Options struct {
	StoreKind  string
	DBPath     string
	ResultsDir string
	ExportsDir string
}

// Client owns a result store and the directories runs write their
// artifacts into.
type Client struct {
	store      storage.Store
	storeReady bool
	resultsDir string
	exportsDir string
}

// New builds a Client from options, defaulting anything unset.
func New(opts Options) (*Client, error) {
	if opts.StoreKind == "" {
		opts.StoreKind = storage.DefaultStoreKind()
	}
	if opts.DBPath == "" {
		opts.DBPath = DefaultDBPath
	}
	if opts.ResultsDir == "" {
		opts.ResultsDir = DefaultResultsDir
	}
	if opts.ExportsDir == "" {
		opts.ExportsDir = DefaultExportsDir
	}
	store, err := storage.NewStore(opts.StoreKind, opts.DBPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		store:      store,
		resultsDir: opts.ResultsDir,
		exportsDir: opts.ExportsDir,
	}, nil
}

// Close releases the underlying store.
func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the store and the artifact directories up front.
// Runs do this lazily; Init exists so setup failures surface early.
func (c *Client) Init(ctx context.Context) error {
	if _, err := c.ensureStore(ctx); err != nil {
		return err
	}
	if err := os.MkdirAll(c.resultsDir, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(c.exportsDir, 0o755)
}

func (c *Client) ensureStore(ctx context.Context) (storage.Store, error) {
	if !c.storeReady {
		if err := c.store.Init(ctx); err != nil {
			return nil, err
		}
		c.storeReady = true
	}
	return c.store, nil
}

func newRunID(kind string, seed int64, now time.Time) string {
	return fmt.Sprintf("%s-%d-%d", kind, seed, now.Unix())
}

func versionStamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
}

// seriesLabel keys one distribution series: the variant name plus the
// feedback it ran at, so one run can hold several feedback values per
// variant.
func seriesLabel(variant string, feedback float64) string {
	return fmt.Sprintf("%s-F%g", variant, feedback)
}

func traceLabel(feedback float64) string {
	return fmt.Sprintf("F%g", feedback)
}

// peakPoint picks the curve point with the longest mean dominance
// lifetime, breaking ties toward the wider gap. On gap-only curves
// every lifetime is zero and the widest gap wins outright.
func peakPoint(points []model.CurvePoint) model.CurvePoint {
	var best model.CurvePoint
	for i, p := range points {
		if i == 0 || p.MeanLifetime > best.MeanLifetime ||
			(p.MeanLifetime == best.MeanLifetime && p.MeanGap > best.MeanGap) {
			best = p
		}
	}
	return best
}

func meanValidGap(samples []model.TraceSample) float64 {
	var sum float64
	var n int
	for _, s := range samples {
		if s.GapValid {
			sum += s.Gap
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func validateVariants(variants []model.Variant) error {
	if len(variants) == 0 {
		return errors.New("at least one variant is required")
	}
	seen := make(map[string]bool, len(variants))
	for _, v := range variants {
		if v.Name == "" {
			return errors.New("variant name is required")
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate variant name: %s", v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}

func cooperativityPair() []model.Variant {
	return []model.Variant{
		{Name: "cooperative", Selector: "global", Cooperative: true, Regime: "full"},
		{Name: "non-cooperative", Selector: "global", Cooperative: false, Regime: "full"},
	}
}

// resolveRunID turns an explicit id or the latest flag into a run id.
func (c *Client) resolveRunID(runID string, latest bool, what string) (string, error) {
	if runID != "" && latest {
		return "", fmt.Errorf("use either run id or latest for %s", what)
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", fmt.Errorf("%s requires run id or latest", what)
	}
	entries, err := stats.ListRunIndex(c.resultsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}

// persistRun writes artifacts under the results directory, appends the
// index entry, and mirrors the record and its series into the store.
func (c *Client) persistRun(ctx context.Context, artifacts stats.RunArtifacts) (string, error) {
	store, err := c.ensureStore(ctx)
	if err != nil {
		return "", err
	}
	dir, err := stats.WriteRunArtifacts(c.resultsDir, artifacts)
	if err != nil {
		return "", err
	}
	if err := stats.AppendRunIndex(c.resultsDir, stats.IndexEntryFor(artifacts.Record)); err != nil {
		return "", err
	}
	runID := artifacts.Record.ID
	if err := store.SaveRun(ctx, artifacts.Record); err != nil {
		return "", err
	}
	for variant, points := range artifacts.Curves {
		if err := store.SaveCurve(ctx, runID, variant, points); err != nil {
			return "", err
		}
	}
	for label, samples := range artifacts.Traces {
		if err := store.SaveTrace(ctx, runID, label, samples); err != nil {
			return "", err
		}
	}
	for _, rec := range artifacts.Distributions {
		labelled := rec
		labelled.Variant = seriesLabel(rec.Variant, rec.Feedback)
		if err := store.SaveDistribution(ctx, labelled); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// RunResult reports one recorded run: where its artifacts landed, the
// digest stored on its record, and the figures rendered beside it.
type RunResult struct {
	RunID   string
	Kind    string
	Profile string
	Dir     string
	Summary model.RunSummary
	Plots   []string
}

// CurveRequest parameterizes a lifetime curve sweep over one variant.
// Zero values take the bundled lifetime-curve profile's budgets.
// Cooperative pairs the recruitment draws; the bundled profiles run
// cooperatively.
type CurveRequest struct {
	Sites         int
	Selector      string
	Cooperative   bool
	Regime        string
	Feedbacks     []float64
	Ticks         int
	Equilibration int
	Runs          int
	Seed          int64
	Workers       int
}

// Curves measures dominance lifetime and gap score across a feedback
// grid, records the run, and renders both curve figures.
func (c *Client) Curves(ctx context.Context, req CurveRequest) (RunResult, error) {
	if req.Sites <= 0 {
		req.Sites = sweep.DefaultSites
	}
	if req.Selector == "" {
		req.Selector = "global"
	}
	if req.Regime == "" {
		req.Regime = "full"
	}
	if len(req.Feedbacks) == 0 {
		req.Feedbacks = sweep.CurveGrid()
	}
	if req.Ticks <= 0 {
		req.Ticks = 800000
	}
	if req.Equilibration <= 0 {
		req.Equilibration = 10 * req.Sites
	}
	if req.Runs <= 0 {
		req.Runs = 10
	}
	cfg := model.RunConfig{
		Sites:         req.Sites,
		Selector:      req.Selector,
		Cooperative:   req.Cooperative,
		Regime:        req.Regime,
		FeedbackGrid:  req.Feedbacks,
		Ticks:         req.Ticks,
		Equilibration: req.Equilibration,
		Runs:          req.Runs,
		Seed:          req.Seed,
		Workers:       req.Workers,
	}
	return c.runCurveSweep(ctx, "", cfg, req.Selector)
}

func (c *Client) runCurveSweep(ctx context.Context, profileName string, cfg model.RunConfig, variant string) (RunResult, error) {
	runner := &sweep.Runner{Workers: cfg.Workers}
	points, err := runner.Curves(ctx, cfg)
	if err != nil {
		return RunResult{}, err
	}

	now := time.Now().UTC()
	idKind := sweep.KindCurves
	if profileName != "" {
		idKind = profileName
	}
	peak := peakPoint(points)
	record := model.RunRecord{
		VersionedRecord: versionStamp(),
		ID:              newRunID(idKind, cfg.Seed, now),
		Kind:            sweep.KindCurves,
		Profile:         profileName,
		CreatedAtUTC:    now.Format(time.RFC3339Nano),
		Config:          cfg,
		Summary: model.RunSummary{
			Points:       len(points),
			Variants:     1,
			MeanLifetime: peak.MeanLifetime,
			MeanGap:      peak.MeanGap,
		},
	}
	artifacts := stats.RunArtifacts{
		Record: record,
		Curves: map[string][]model.CurvePoint{variant: points},
	}
	dir, err := c.persistRun(ctx, artifacts)
	if err != nil {
		return RunResult{}, err
	}

	lifetimePlot := filepath.Join(dir, "lifetime_curve.png")
	if err := chart.LifetimeCurvePNG(points, cfg.Sites, lifetimePlot); err != nil {
		return RunResult{}, err
	}
	gapPlot := filepath.Join(dir, "gap_curve.png")
	if err := chart.GapCurvePNG(points, gapPlot); err != nil {
		return RunResult{}, err
	}
	return RunResult{
		RunID:   record.ID,
		Kind:    record.Kind,
		Profile: profileName,
		Dir:     dir,
		Summary: record.Summary,
		Plots:   []string{lifetimePlot, gapPlot},
	}, nil
}

// CompareRequest parameterizes a gap score comparison across variants
// on a shared feedback grid. Zero values take the cooperativity
// profile's budgets and its cooperative against non-cooperative pair.
type CompareRequest struct {
	Sites         int
	Variants      []model.Variant
	Feedbacks     []float64
	Ticks         int
	Equilibration int
	Runs          int
	Seed          int64
	Workers       int
}

// Compare sweeps every variant over the same grid with paired random
// streams, records one run holding all the curves, and renders the
// comparison figure.
func (c *Client) Compare(ctx context.Context, req CompareRequest) (RunResult, error) {
	if req.Sites <= 0 {
		req.Sites = sweep.DefaultSites
	}
	if len(req.Variants) == 0 {
		req.Variants = cooperativityPair()
	}
	if len(req.Feedbacks) == 0 {
		req.Feedbacks = sweep.CompareGrid()
	}
	if req.Ticks <= 0 {
		req.Ticks = 20000 * req.Sites
	}
	if req.Equilibration <= 0 {
		req.Equilibration = 10 * req.Sites
	}
	if req.Runs <= 0 {
		req.Runs = 10
	}
	base := model.RunConfig{
		Sites:         req.Sites,
		FeedbackGrid:  req.Feedbacks,
		Ticks:         req.Ticks,
		Equilibration: req.Equilibration,
		Runs:          req.Runs,
		Seed:          req.Seed,
		Workers:       req.Workers,
	}
	return c.runCompareSweep(ctx, "", base, req.Variants)
}

func (c *Client) runCompareSweep(ctx context.Context, profileName string, base model.RunConfig, variants []model.Variant) (RunResult, error) {
	if err := validateVariants(variants); err != nil {
		return RunResult{}, err
	}
	runner := &sweep.Runner{Workers: base.Workers}
	curves := make(map[string][]model.CurvePoint, len(variants))
	series := make([]chart.Series, 0, len(variants))
	var best model.CurvePoint
	for _, v := range variants {
		cfg := base
		cfg.Selector = v.Selector
		cfg.Cooperative = v.Cooperative
		cfg.Regime = v.Regime
		points, err := runner.GapCurve(ctx, cfg)
		if err != nil {
			return RunResult{}, err
		}
		curves[v.Name] = points
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for i, p := range points {
			xs[i] = p.Feedback
			ys[i] = p.MeanGap
		}
		series = append(series, chart.Series{Name: v.Name, X: xs, Y: ys})
		if p := peakPoint(points); p.MeanGap > best.MeanGap {
			best = p
		}
	}

	now := time.Now().UTC()
	idKind := sweep.KindCompare
	if profileName != "" {
		idKind = profileName
	}
	recorded := base
	recorded.Selector = variants[0].Selector
	recorded.Cooperative = variants[0].Cooperative
	recorded.Regime = variants[0].Regime
	record := model.RunRecord{
		VersionedRecord: versionStamp(),
		ID:              newRunID(idKind, base.Seed, now),
		Kind:            sweep.KindCompare,
		Profile:         profileName,
		CreatedAtUTC:    now.Format(time.RFC3339Nano),
		Config:          recorded,
		Summary: model.RunSummary{
			Points:   len(base.FeedbackGrid),
			Variants: len(variants),
			MeanGap:  best.MeanGap,
		},
	}
	dir, err := c.persistRun(ctx, stats.RunArtifacts{Record: record, Curves: curves})
	if err != nil {
		return RunResult{}, err
	}

	comparePlot := filepath.Join(dir, "gap_compare.png")
	if err := chart.CompareGapPNG(series, comparePlot); err != nil {
		return RunResult{}, err
	}
	return RunResult{
		RunID:   record.ID,
		Kind:    record.Kind,
		Profile: profileName,
		Dir:     dir,
		Summary: record.Summary,
		Plots:   []string{comparePlot},
	}, nil
}

// TraceRequest parameterizes composition traces, one trajectory per
// feedback value. Zero values take the bistability profile's budgets
// and its bracketing feedback set. Kymograph additionally renders a
// site-resolved video per trajectory.
type TraceRequest struct {
	Sites         int
	Selector      string
	Cooperative   bool
	Regime        string
	Feedbacks     []float64
	Ticks         int
	Equilibration int
	Seed          int64
	Workers       int
	Kymograph     bool
}

// Trace records one stride-sampled trajectory per feedback value and
// renders composition and gap figures for each.
func (c *Client) Trace(ctx context.Context, req TraceRequest) (RunResult, error) {
	if req.Sites <= 0 {
		req.Sites = sweep.DefaultSites
	}
	if req.Selector == "" {
		req.Selector = "global"
	}
	if req.Regime == "" {
		req.Regime = "full"
	}
	if len(req.Feedbacks) == 0 {
		req.Feedbacks = []float64{0.4, 1.0, 1.4, 2.0}
	}
	if req.Ticks <= 0 {
		req.Ticks = 5000 * req.Sites
	}
	if req.Equilibration <= 0 {
		req.Equilibration = 10
	}
	cfg := model.RunConfig{
		Sites:         req.Sites,
		Selector:      req.Selector,
		Cooperative:   req.Cooperative,
		Regime:        req.Regime,
		FeedbackGrid:  req.Feedbacks,
		Ticks:         req.Ticks,
		Equilibration: req.Equilibration,
		Runs:          1,
		Seed:          req.Seed,
		Workers:       req.Workers,
	}
	return c.runTraceSweep(ctx, "", cfg, req.Kymograph)
}

func (c *Client) runTraceSweep(ctx context.Context, profileName string, cfg model.RunConfig, kymograph bool) (RunResult, error) {
	runner := &sweep.Runner{Workers: cfg.Workers}
	series, err := runner.Traces(ctx, cfg, kymograph)
	if err != nil {
		return RunResult{}, err
	}

	traces := make(map[string][]model.TraceSample, len(series))
	var samples int64
	for _, s := range series {
		traces[traceLabel(s.Feedback)] = s.Samples
		samples += int64(len(s.Samples))
	}

	now := time.Now().UTC()
	idKind := sweep.KindTrace
	if profileName != "" {
		idKind = profileName
	}
	record := model.RunRecord{
		VersionedRecord: versionStamp(),
		ID:              newRunID(idKind, cfg.Seed, now),
		Kind:            sweep.KindTrace,
		Profile:         profileName,
		CreatedAtUTC:    now.Format(time.RFC3339Nano),
		Config:          cfg,
		Summary: model.RunSummary{
			Variants: len(series),
			MeanGap:  meanValidGap(series[len(series)-1].Samples),
			Samples:  samples,
		},
	}
	dir, err := c.persistRun(ctx, stats.RunArtifacts{Record: record, Traces: traces})
	if err != nil {
		return RunResult{}, err
	}

	plots := make([]string, 0, 4*len(series))
	for _, s := range series {
		label := traceLabel(s.Feedback)
		tracePlot := filepath.Join(dir, fmt.Sprintf("trace_%s.png", label))
		if err := chart.TracePNG(s.Samples, tracePlot); err != nil {
			return RunResult{}, err
		}
		gapPlot := filepath.Join(dir, fmt.Sprintf("gap_%s.png", label))
		if err := chart.GapTracePNG(s.Samples, gapPlot); err != nil {
			return RunResult{}, err
		}
		histPlot := filepath.Join(dir, fmt.Sprintf("hist_%s.png", label))
		if err := chart.MethylationHistPNG(s.Samples, cfg.Sites, histPlot); err != nil {
			return RunResult{}, err
		}
		plots = append(plots, tracePlot, gapPlot, histPlot)
		if kymograph {
			video := filepath.Join(dir, fmt.Sprintf("kymograph_%s.avi", label))
			if err := chart.KymographAVI(s.Frames, video); err != nil {
				return RunResult{}, err
			}
			plots = append(plots, video)
		}
	}
	return RunResult{
		RunID:   record.ID,
		Kind:    record.Kind,
		Profile: profileName,
		Dir:     dir,
		Summary: record.Summary,
		Plots:   plots,
	}, nil
}

// DistributionRequest parameterizes methylation excess histograms per
// variant and feedback value. Zero values take the cooperativity-pmf
// profile's budgets, its variant pair, and strong feedback.
type DistributionRequest struct {
	Sites         int
	Variants      []model.Variant
	Feedbacks     []float64
	Ticks         int
	Equilibration int
	Runs          int
	Seed          int64
	Workers       int
}

// Distribution histograms the methylation excess for every variant at
// every requested feedback, records the merged distributions, and
// renders one figure per variant.
func (c *Client) Distribution(ctx context.Context, req DistributionRequest) (RunResult, error) {
	if req.Sites <= 0 {
		req.Sites = sweep.DefaultSites
	}
	if len(req.Variants) == 0 {
		req.Variants = cooperativityPair()
	}
	if len(req.Feedbacks) == 0 {
		req.Feedbacks = []float64{77}
	}
	if req.Ticks <= 0 {
		req.Ticks = 200000 * req.Sites
	}
	if req.Equilibration <= 0 {
		req.Equilibration = 10 * req.Sites
	}
	if req.Runs <= 0 {
		req.Runs = 10
	}
	base := model.RunConfig{
		Sites:         req.Sites,
		Ticks:         req.Ticks,
		Equilibration: req.Equilibration,
		Runs:          req.Runs,
		Seed:          req.Seed,
		Workers:       req.Workers,
	}
	return c.runDistributionSweep(ctx, "", base, req.Variants, req.Feedbacks)
}

func (c *Client) runDistributionSweep(ctx context.Context, profileName string, base model.RunConfig, variants []model.Variant, feedbacks []float64) (RunResult, error) {
	if err := validateVariants(variants); err != nil {
		return RunResult{}, err
	}
	if len(feedbacks) == 0 {
		return RunResult{}, errors.New("at least one feedback value is required")
	}

	now := time.Now().UTC()
	idKind := sweep.KindDistribution
	if profileName != "" {
		idKind = profileName
	}
	runID := newRunID(idKind, base.Seed, now)

	runner := &sweep.Runner{Workers: base.Workers}
	records := make([]model.DistributionRecord, 0, len(variants)*len(feedbacks))
	var total int64
	for _, v := range variants {
		for _, f := range feedbacks {
			cfg := base
			cfg.Selector = v.Selector
			cfg.Cooperative = v.Cooperative
			cfg.Regime = v.Regime
			cfg.Feedback = f
			acc, err := runner.Distribution(ctx, cfg)
			if err != nil {
				return RunResult{}, err
			}
			rec := distributionRecord(runID, v.Name, f, acc)
			records = append(records, rec)
			total += rec.Samples
		}
	}

	recorded := base
	recorded.Selector = variants[0].Selector
	recorded.Cooperative = variants[0].Cooperative
	recorded.Regime = variants[0].Regime
	recorded.FeedbackGrid = append([]float64(nil), feedbacks...)
	record := model.RunRecord{
		VersionedRecord: versionStamp(),
		ID:              runID,
		Kind:            sweep.KindDistribution,
		Profile:         profileName,
		CreatedAtUTC:    now.Format(time.RFC3339Nano),
		Config:          recorded,
		Summary: model.RunSummary{
			Points:   len(feedbacks),
			Variants: len(variants),
			Samples:  total,
		},
	}
	dir, err := c.persistRun(ctx, stats.RunArtifacts{Record: record, Distributions: records})
	if err != nil {
		return RunResult{}, err
	}

	plots := make([]string, 0, len(variants))
	for _, v := range variants {
		group := make([]model.DistributionRecord, 0, len(feedbacks))
		for _, rec := range records {
			if rec.Variant == v.Name {
				group = append(group, rec)
			}
		}
		plot := filepath.Join(dir, fmt.Sprintf("distribution_%s.png", v.Name))
		if err := chart.DistributionPNG(group, plot); err != nil {
			return RunResult{}, err
		}
		plots = append(plots, plot)
	}
	return RunResult{
		RunID:   record.ID,
		Kind:    record.Kind,
		Profile: profileName,
		Dir:     dir,
		Summary: record.Summary,
		Plots:   plots,
	}, nil
}

func distributionRecord(runID, variant string, feedback float64, acc *collect.DistributionAccumulator) model.DistributionRecord {
	pmf := acc.PMF()
	deltas := make([]int, 0, len(pmf))
	for d := range pmf {
		deltas = append(deltas, d)
	}
	sort.Ints(deltas)
	bins := make([]model.DistributionBin, len(deltas))
	for i, d := range deltas {
		bins[i] = model.DistributionBin{Delta: d, Probability: pmf[d]}
	}
	return model.DistributionRecord{
		VersionedRecord: versionStamp(),
		RunID:           runID,
		Variant:         variant,
		Feedback:        feedback,
		Samples:         acc.Total(),
		Bins:            bins,
	}
}

// MeasureRequest parameterizes a one-off measurement at a single
// feedback value. Nothing is recorded. Zero budgets take 5000 ticks
// per site and 10 sweeps of equilibration.
type MeasureRequest struct {
	Sites         int
	Selector      string
	Cooperative   bool
	Regime        string
	Feedback      float64
	Ticks         int
	Equilibration int
	Seed          int64
}

// Measurement holds the three estimators for one trajectory budget.
// The measurements share one random stream, drawn in field order.
type Measurement struct {
	Feedback     float64
	MeanLifetime float64
	GapScore     float64
	StrideGap    float64
	StrideValid  bool
}

// Measure runs the estimators once at one feedback value and returns
// the scalars without recording a run.
func (c *Client) Measure(ctx context.Context, req MeasureRequest) (Measurement, error) {
	if req.Sites <= 0 {
		req.Sites = sweep.DefaultSites
	}
	if req.Selector == "" {
		req.Selector = "global"
	}
	if req.Regime == "" {
		req.Regime = "full"
	}
	if req.Ticks <= 0 {
		req.Ticks = 5000 * req.Sites
	}
	if req.Equilibration <= 0 {
		req.Equilibration = 10 * req.Sites
	}
	if err := ctx.Err(); err != nil {
		return Measurement{}, err
	}

	cfg := model.RunConfig{
		Sites:       req.Sites,
		Selector:    req.Selector,
		Cooperative: req.Cooperative,
		Regime:      req.Regime,
	}
	engine, err := sweep.NewEngine(cfg)
	if err != nil {
		return Measurement{}, err
	}
	mreq := measure.Request{
		Sites:         req.Sites,
		Feedback:      req.Feedback,
		Ticks:         req.Ticks,
		Equilibration: req.Equilibration,
	}
	rng := rand.New(rand.NewSource(req.Seed))
	lifetime, err := measure.MeanLifetime(mreq, engine, rng)
	if err != nil {
		return Measurement{}, err
	}
	gap, err := measure.GapScore(mreq, engine, rng)
	if err != nil {
		return Measurement{}, err
	}
	stride, ok, err := measure.StrideGap(mreq, engine, rng)
	if err != nil {
		return Measurement{}, err
	}
	return Measurement{
		Feedback:     req.Feedback,
		MeanLifetime: lifetime,
		GapScore:     gap,
		StrideGap:    stride,
		StrideValid:  ok,
	}, nil
}

// ProfileInfo describes one bundled sweep profile.
type ProfileInfo struct {
	Name        string
	Kind        string
	Description string
	Sites       int
	Runs        int
	Feedbacks   int
	Variants    []string
}

// Profiles lists the bundled sweep profiles in presentation order.
func (c *Client) Profiles() []ProfileInfo {
	profiles := sweep.Profiles()
	out := make([]ProfileInfo, len(profiles))
	for i, p := range profiles {
		names := make([]string, len(p.Variants))
		for j, v := range p.Variants {
			names[j] = v.Name
		}
		out[i] = ProfileInfo{
			Name:        p.Name,
			Kind:        p.Kind,
			Description: p.Description,
			Sites:       p.Sites,
			Runs:        p.Runs,
			Feedbacks:   len(p.Feedbacks),
			Variants:    names,
		}
	}
	return out
}

// ProfileRequest names a bundled profile to run. Sites and Runs
// override the profile when positive; per-site budgets rescale with
// an overridden lattice size.
type ProfileRequest struct {
	Name      string
	Sites     int
	Runs      int
	Seed      int64
	Workers   int
	Kymograph bool
}

// RunProfile executes one bundled profile and records it as a run
// carrying the profile's name.
func (c *Client) RunProfile(ctx context.Context, req ProfileRequest) (RunResult, error) {
	if req.Name == "" {
		return RunResult{}, errors.New("profile name is required")
	}
	profile, ok := sweep.ProfileByName(req.Name)
	if !ok {
		return RunResult{}, fmt.Errorf("unknown profile: %s", req.Name)
	}
	if req.Sites > 0 {
		profile.Sites = req.Sites
	}
	if req.Runs > 0 {
		profile.Runs = req.Runs
	}

	base := profile.Config(profile.Variants[0])
	base.Seed = req.Seed
	base.Workers = req.Workers
	switch profile.Kind {
	case sweep.KindCurves:
		return c.runCurveSweep(ctx, profile.Name, base, profile.Variants[0].Name)
	case sweep.KindCompare:
		return c.runCompareSweep(ctx, profile.Name, base, profile.Variants)
	case sweep.KindTrace:
		return c.runTraceSweep(ctx, profile.Name, base, req.Kymograph)
	case sweep.KindDistribution:
		return c.runDistributionSweep(ctx, profile.Name, base, profile.Variants, profile.Feedbacks)
	default:
		return RunResult{}, fmt.Errorf("unsupported profile kind: %s", profile.Kind)
	}
}

// ExperimentRequest parameterizes a checkpointed campaign over several
// profiles. An empty profile list runs every bundled profile. Sites
// and Runs override every step when positive. Resume picks an
// interrupted experiment of the same ID back up at its first
// unfinished step, reusing the checkpointed budgets and seed unless
// the request sets its own.
type ExperimentRequest struct {
	ID        string
	Notes     string
	Profiles  []string
	Sites     int
	Runs      int
	Seed      int64
	Workers   int
	Kymograph bool
	Resume    bool
}

// ExperimentResult reports the steps completed by one invocation.
type ExperimentResult struct {
	ID        string
	Completed bool
	Steps     []RunResult
}

// Experiment runs profiles in order, checkpointing after every step so
// an interrupted campaign can resume where it stopped.
func (c *Client) Experiment(ctx context.Context, req ExperimentRequest) (ExperimentResult, error) {
	if len(req.Profiles) == 0 {
		for _, p := range sweep.Profiles() {
			req.Profiles = append(req.Profiles, p.Name)
		}
	}
	for _, name := range req.Profiles {
		if _, ok := sweep.ProfileByName(name); !ok {
			return ExperimentResult{}, fmt.Errorf("unknown profile: %s", name)
		}
	}

	now := time.Now().UTC()
	if req.ID == "" {
		req.ID = fmt.Sprintf("exp-%d-%d", req.Seed, now.Unix())
	}

	exp := stats.SweepExperiment{
		ID:           req.ID,
		Notes:        req.Notes,
		ProgressFlag: stats.ProgressInProgress,
		TotalSteps:   len(req.Profiles),
		StartedAtUTC: now.Format(time.RFC3339Nano),
		Profiles:     req.Profiles,
		Sites:        req.Sites,
		Runs:         req.Runs,
		Seed:         req.Seed,
		Workers:      req.Workers,
		Kymograph:    req.Kymograph,
	}
	if req.Resume {
		existing, ok, err := stats.ReadSweepExperiment(c.resultsDir, req.ID)
		if err != nil {
			return ExperimentResult{}, err
		}
		if ok {
			if existing.ProgressFlag == stats.ProgressCompleted {
				return ExperimentResult{ID: existing.ID, Completed: true}, nil
			}
			existing.Interruptions = append(existing.Interruptions, now.Format(time.RFC3339Nano))
			if req.Sites > 0 {
				existing.Sites = req.Sites
			}
			if req.Runs > 0 {
				existing.Runs = req.Runs
			}
			if req.Seed != 0 {
				existing.Seed = req.Seed
			}
			if req.Workers > 0 {
				existing.Workers = req.Workers
			}
			if req.Kymograph {
				existing.Kymograph = true
			}
			exp = existing
		}
	}
	if err := stats.WriteSweepExperiment(c.resultsDir, exp); err != nil {
		return ExperimentResult{}, err
	}

	var steps []RunResult
	for exp.StepIndex < exp.TotalSteps {
		res, err := c.RunProfile(ctx, ProfileRequest{
			Name:      exp.Profiles[exp.StepIndex],
			Sites:     exp.Sites,
			Runs:      exp.Runs,
			Seed:      exp.Seed,
			Workers:   exp.Workers,
			Kymograph: exp.Kymograph,
		})
		if err != nil {
			return ExperimentResult{ID: exp.ID, Steps: steps}, err
		}
		exp.RunIDs = append(exp.RunIDs, res.RunID)
		exp.Summaries = append(exp.Summaries, res.Summary)
		exp.StepIndex++
		if err := stats.WriteSweepExperiment(c.resultsDir, exp); err != nil {
			return ExperimentResult{ID: exp.ID, Steps: steps}, err
		}
		steps = append(steps, res)
	}

	exp.ProgressFlag = stats.ProgressCompleted
	exp.CompletedAtUTC = time.Now().UTC().Format(time.RFC3339Nano)
	if err := stats.WriteSweepExperiment(c.resultsDir, exp); err != nil {
		return ExperimentResult{ID: exp.ID, Steps: steps}, err
	}
	return ExperimentResult{ID: exp.ID, Completed: true, Steps: steps}, nil
}

// Experiments lists the recorded campaigns, newest first.
func (c *Client) Experiments(ctx context.Context) ([]stats.SweepExperiment, error) {
	return stats.ListSweepExperiments(c.resultsDir)
}

// RunsRequest limits a run listing. Limit defaults to 20.
type RunsRequest struct {
	Limit int
}

// Runs lists recorded runs from the index, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]stats.RunIndexEntry, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	entries, err := stats.ListRunIndex(c.resultsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ShowRequest names the run to inspect, either explicitly or as the
// latest recorded one.
type ShowRequest struct {
	RunID  string
	Latest bool
}

// RunDetail is everything recorded for one run: the stored record,
// the artifact series, and digest rows for any curves.
type RunDetail struct {
	Record        model.RunRecord
	Curves        map[string][]model.CurvePoint
	Traces        map[string][]model.TraceSample
	Distributions []model.DistributionRecord
	Graphs        []stats.CurveGraph
}

// Show loads a run's record from the store, falling back to the
// artifact directory when the store does not hold it, and its series
// from the artifact directory.
func (c *Client) Show(ctx context.Context, req ShowRequest) (RunDetail, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, "show")
	if err != nil {
		return RunDetail{}, err
	}
	store, err := c.ensureStore(ctx)
	if err != nil {
		return RunDetail{}, err
	}
	record, ok, err := store.GetRun(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}
	if !ok {
		record, ok, err = stats.ReadRunRecord(c.resultsDir, runID)
		if err != nil {
			return RunDetail{}, err
		}
	}
	if !ok {
		return RunDetail{}, fmt.Errorf("run not found for run id: %s", runID)
	}
	detail := RunDetail{Record: record}
	if curves, ok, err := stats.ReadCurves(c.resultsDir, runID); err != nil {
		return RunDetail{}, err
	} else if ok {
		detail.Curves = curves
		graphs, err := stats.BuildCurveGraphs(c.resultsDir, runID)
		if err != nil {
			return RunDetail{}, err
		}
		detail.Graphs = graphs
	}
	if traces, ok, err := stats.ReadTraces(c.resultsDir, runID); err != nil {
		return RunDetail{}, err
	} else if ok {
		detail.Traces = traces
	}
	if distributions, ok, err := stats.ReadDistributions(c.resultsDir, runID); err != nil {
		return RunDetail{}, err
	} else if ok {
		detail.Distributions = distributions
	}
	return detail, nil
}

// ExportRequest names the run to export and an optional destination
// directory, defaulting to the client's exports directory.
type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

// Export copies a run's data files and figures into the destination
// and returns the created directory.
func (c *Client) Export(ctx context.Context, req ExportRequest) (string, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, "export")
	if err != nil {
		return "", err
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}
	return stats.ExportRunArtifacts(c.resultsDir, runID, outDir)
}

// JSONLRequest names the run whose curves to flatten and an optional
// output path.
type JSONLRequest struct {
	RunID  string
	Latest bool
	Path   string
}

// ExportCurvesJSONL writes a run's curve points as line-oriented JSON
// and returns the output path.
func (c *Client) ExportCurvesJSONL(ctx context.Context, req JSONLRequest) (string, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, "jsonl export")
	if err != nil {
		return "", err
	}
	items, err := stats.CurveItems(c.resultsDir, runID)
	if err != nil {
		return "", err
	}
	path := req.Path
	if path == "" {
		path = filepath.Join(c.exportsDir, runID+"_curves.jsonl")
	}
	if err := stats.WriteJSONL(path, items); err != nil {
		return "", err
	}
	return path, nil
}

// DeleteRun removes a run and its series from the store. Artifact
// files on disk are left in place.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	if runID == "" {
		return errors.New("run id is required")
	}
	store, err := c.ensureStore(ctx)
	if err != nil {
		return err
	}
	return store.DeleteRun(ctx, runID)
}

// ReportRequest names the experiment to report on. ReportName defaults
// inside the report writer.
type ReportRequest struct {
	ExperimentID string
	ReportName   string
}

// ReportResult is the written report and where it landed.
type ReportResult struct {
	Path   string
	Report stats.ExperimentReport
}

// Report assembles an experiment's stored runs into a report document
// and writes it under the experiment's directory.
func (c *Client) Report(ctx context.Context, req ReportRequest) (ReportResult, error) {
	if req.ExperimentID == "" {
		return ReportResult{}, errors.New("experiment id is required")
	}
	exp, ok, err := stats.ReadSweepExperiment(c.resultsDir, req.ExperimentID)
	if err != nil {
		return ReportResult{}, err
	}
	if !ok {
		return ReportResult{}, fmt.Errorf("experiment not found: %s", req.ExperimentID)
	}
	report, err := stats.BuildExperimentReport(c.resultsDir, exp)
	if err != nil {
		return ReportResult{}, err
	}
	report.ReportName = req.ReportName
	path, err := stats.WriteExperimentReport(c.resultsDir, report)
	if err != nil {
		return ReportResult{}, err
	}
	return ReportResult{Path: path, Report: report}, nil
}
