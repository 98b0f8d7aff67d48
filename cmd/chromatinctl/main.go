package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"chromatin/internal/model"
	"chromatin/internal/stats"
	"chromatin/internal/storage"
	chromapi "chromatin/pkg/chromatin"
)

const (
	resultsDir = "results"
	exportsDir = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "curves":
		return runCurves(ctx, args[1:])
	case "compare":
		return runCompare(ctx, args[1:])
	case "trace":
		return runTrace(ctx, args[1:])
	case "distribution":
		return runDistribution(ctx, args[1:])
	case "measure":
		return runMeasure(ctx, args[1:])
	case "profile":
		return runProfile(ctx, args[1:])
	case "experiment":
		return runExperiment(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "jsonl":
		return runJSONL(ctx, args[1:])
	case "delete":
		return runDelete(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "chromatin.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := chromapi.New(chromapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s results=%s exports=%s\n", *storeKind, resultsDir, exportsDir)
	return nil
}

func runCurves(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("curves", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional sweep config JSON path")
	sites := fs.Int("sites", 0, "nucleosome count (0 uses the profile default)")
	selector := fs.String("selector", "global", "recruitment selector: global|neighbor|power-law")
	cooperative := fs.Bool("cooperative", true, "pair the recruitment draws")
	regime := fs.String("regime", "full", "conversion regime: full|modify-only|demodify-only")
	feedbacks := fs.String("feedbacks", "", "comma-separated feedback values (empty uses the bundled grid)")
	ticks := fs.Int("ticks", 0, "attempted conversions per run (0 uses the profile budget)")
	equilibration := fs.Int("equilibration", 0, "discarded warmup conversions (0 uses the profile budget)")
	runs := fs.Int("runs", 0, "independent runs per grid point (0 uses the profile count)")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "chromatin.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit run result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	grid, err := parseFeedbackList(*feedbacks)
	if err != nil {
		return err
	}

	req, err := loadOrDefaultCurveRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = chromapi.CurveRequest{
			Sites:         *sites,
			Selector:      *selector,
			Cooperative:   *cooperative,
			Regime:        *regime,
			Feedbacks:     grid,
			Ticks:         *ticks,
			Equilibration: *equilibration,
			Runs:          *runs,
			Seed:          *seed,
			Workers:       *workers,
		}
	} else {
		overrideCurveRequest(&req, setFlags, map[string]any{
			"sites":         *sites,
			"selector":      *selector,
			"cooperative":   *cooperative,
			"regime":        *regime,
			"feedbacks":     grid,
			"ticks":         *ticks,
			"equilibration": *equilibration,
			"runs":          *runs,
			"seed":          *seed,
			"workers":       *workers,
		})
	}

	client, err := chromapi.New(chromapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	res, err := client.Curves(ctx, req)
	if err != nil {
		return err
	}
	return printRunResult(res, *jsonOut)
}

func runCompare(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional sweep config JSON path")
	sites := fs.Int("sites", 0, "nucleosome count (0 uses the profile default)")
	variantNames := fs.String("variants", "", "comma-separated variant names: cooperative|non-cooperative|global|neighbor|power-law|modify-only|demodify-only")
	feedbacks := fs.String("feedbacks", "", "comma-separated feedback values (empty uses the bundled grid)")
	ticks := fs.Int("ticks", 0, "attempted conversions per run (0 uses the profile budget)")
	equilibration := fs.Int("equilibration", 0, "discarded warmup conversions (0 uses the profile budget)")
	runs := fs.Int("runs", 0, "independent runs per grid point (0 uses the profile count)")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "chromatin.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit run result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	grid, err := parseFeedbackList(*feedbacks)
	if err != nil {
		return err
	}
	variants, err := parseVariantNames(*variantNames)
	if err != nil {
		return err
	}

	req, err := loadOrDefaultCompareRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = chromapi.CompareRequest{
			Sites:         *sites,
			Variants:      variants,
			Feedbacks:     grid,
			Ticks:         *ticks,
			Equilibration: *equilibration,
			Runs:          *runs,
			Seed:          *seed,
			Workers:       *workers,
		}
	} else {
		overrideCompareRequest(&req, setFlags, map[string]any{
			"sites":         *sites,
			"variants":      variants,
			"feedbacks":     grid,
			"ticks":         *ticks,
			"equilibration": *equilibration,
			"runs":          *runs,
			"seed":          *seed,
			"workers":       *workers,
		})
	}

	client, err := chromapi.New(chromapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	res, err := client.Compare(ctx, req)
	if err != nil {
		return err
	}
	return printRunResult(res, *jsonOut)
}

func runTrace(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("trace", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional sweep config JSON path")
	sites := fs.Int("sites", 0, "nucleosome count (0 uses the profile default)")
	selector := fs.String("selector", "global", "recruitment selector: global|neighbor|power-law")
	cooperative := fs.Bool("cooperative", true, "pair the recruitment draws")
	regime := fs.String("regime", "full", "conversion regime: full|modify-only|demodify-only")
	feedbacks := fs.String("feedbacks", "", "comma-separated feedback values (empty uses the bundled set)")
	ticks := fs.Int("ticks", 0, "attempted conversions per run (0 uses the profile budget)")
	equilibration := fs.Int("equilibration", 0, "discarded warmup conversions (0 uses the profile budget)")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	kymograph := fs.Bool("kymograph", false, "render a lattice kymograph video per feedback value")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "chromatin.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit run result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	grid, err := parseFeedbackList(*feedbacks)
	if err != nil {
		return err
	}

	req, err := loadOrDefaultTraceRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = chromapi.TraceRequest{
			Sites:         *sites,
			Selector:      *selector,
			Cooperative:   *cooperative,
			Regime:        *regime,
			Feedbacks:     grid,
			Ticks:         *ticks,
			Equilibration: *equilibration,
			Seed:          *seed,
			Workers:       *workers,
			Kymograph:     *kymograph,
		}
	} else {
		overrideTraceRequest(&req, setFlags, map[string]any{
			"sites":         *sites,
			"selector":      *selector,
			"cooperative":   *cooperative,
			"regime":        *regime,
			"feedbacks":     grid,
			"ticks":         *ticks,
			"equilibration": *equilibration,
			"seed":          *seed,
			"workers":       *workers,
			"kymograph":     *kymograph,
		})
	}

	client, err := chromapi.New(chromapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	res, err := client.Trace(ctx, req)
	if err != nil {
		return err
	}
	return printRunResult(res, *jsonOut)
}

func runDistribution(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("distribution", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional sweep config JSON path")
	sites := fs.Int("sites", 0, "nucleosome count (0 uses the profile default)")
	variantNames := fs.String("variants", "", "comma-separated variant names: cooperative|non-cooperative|global|neighbor|power-law|modify-only|demodify-only")
	feedbacks := fs.String("feedbacks", "", "comma-separated feedback values (empty uses the bundled set)")
	ticks := fs.Int("ticks", 0, "attempted conversions per run (0 uses the profile budget)")
	equilibration := fs.Int("equilibration", 0, "discarded warmup conversions (0 uses the profile budget)")
	runs := fs.Int("runs", 0, "independent runs per condition (0 uses the profile count)")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "chromatin.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit run result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	grid, err := parseFeedbackList(*feedbacks)
	if err != nil {
		return err
	}
	variants, err := parseVariantNames(*variantNames)
	if err != nil {
		return err
	}

	req, err := loadOrDefaultDistributionRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = chromapi.DistributionRequest{
			Sites:         *sites,
			Variants:      variants,
			Feedbacks:     grid,
			Ticks:         *ticks,
			Equilibration: *equilibration,
			Runs:          *runs,
			Seed:          *seed,
			Workers:       *workers,
		}
	} else {
		overrideDistributionRequest(&req, setFlags, map[string]any{
			"sites":         *sites,
			"variants":      variants,
			"feedbacks":     grid,
			"ticks":         *ticks,
			"equilibration": *equilibration,
			"runs":          *runs,
			"seed":          *seed,
			"workers":       *workers,
		})
	}

	client, err := chromapi.New(chromapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	res, err := client.Distribution(ctx, req)
	if err != nil {
		return err
	}
	return printRunResult(res, *jsonOut)
}

func runMeasure(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("measure", flag.ContinueOnError)
	sites := fs.Int("sites", 0, "nucleosome count (0 uses the profile default)")
	selector := fs.String("selector", "global", "recruitment selector: global|neighbor|power-law")
	cooperative := fs.Bool("cooperative", true, "pair the recruitment draws")
	regime := fs.String("regime", "full", "conversion regime: full|modify-only|demodify-only")
	feedback := fs.Float64("feedback", 1.0, "feedback strength F")
	ticks := fs.Int("ticks", 0, "attempted conversions per estimator (0 uses the default budget)")
	equilibration := fs.Int("equilibration", 0, "discarded warmup conversions (0 uses the default budget)")
	seed := fs.Int64("seed", 1, "rng seed")
	jsonOut := fs.Bool("json", false, "emit measurement as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := chromapi.New(chromapi.Options{
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	m, err := client.Measure(ctx, chromapi.MeasureRequest{
		Sites:         *sites,
		Selector:      *selector,
		Cooperative:   *cooperative,
		Regime:        *regime,
		Feedback:      *feedback,
		Ticks:         *ticks,
		Equilibration: *equilibration,
		Seed:          *seed,
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		payload := struct {
			Feedback     float64 `json:"feedback"`
			MeanLifetime float64 `json:"mean_lifetime"`
			GapScore     float64 `json:"gap_score"`
			StrideGap    float64 `json:"stride_gap"`
			StrideValid  bool    `json:"stride_valid"`
		}{
			Feedback:     m.Feedback,
			MeanLifetime: m.MeanLifetime,
			GapScore:     m.GapScore,
			StrideGap:    m.StrideGap,
			StrideValid:  m.StrideValid,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Printf("measurement feedback=%g mean_lifetime=%.4f gap_score=%.4f stride_gap=%.4f stride_valid=%t\n",
		m.Feedback, m.MeanLifetime, m.GapScore, m.StrideGap, m.StrideValid)
	return nil
}

func runRuns(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	entries, err := stats.ListRunIndex(resultsDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if len(entries) > *limit {
		entries = entries[:*limit]
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for _, e := range entries {
		fmt.Printf("run_id=%s kind=%s profile=%s selector=%s cooperative=%t regime=%s sites=%d runs=%d seed=%d created=%s\n",
			e.RunID, e.Kind, e.Profile, e.Selector, e.Cooperative, e.Regime, e.Sites, e.Runs, e.Seed, e.CreatedAtUTC)
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show the most recent run from the run index")
	jsonOut := fs.Bool("json", false, "emit run detail as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "chromatin.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("show requires --run-id or --latest")
	}

	client, err := chromapi.New(chromapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	detail, err := client.Show(ctx, chromapi.ShowRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}

	if *jsonOut {
		payload := struct {
			Record        model.RunRecord                `json:"record"`
			Curves        map[string][]model.CurvePoint  `json:"curves,omitempty"`
			Traces        map[string][]model.TraceSample `json:"traces,omitempty"`
			Distributions []model.DistributionRecord     `json:"distributions,omitempty"`
			Graphs        []stats.CurveGraph             `json:"graphs,omitempty"`
		}{
			Record:        detail.Record,
			Curves:        detail.Curves,
			Traces:        detail.Traces,
			Distributions: detail.Distributions,
			Graphs:        detail.Graphs,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	rec := detail.Record
	fmt.Printf("run_id=%s kind=%s profile=%s created=%s\n", rec.ID, rec.Kind, rec.Profile, rec.CreatedAtUTC)
	fmt.Printf("config sites=%d selector=%s cooperative=%t regime=%s ticks=%d equilibration=%d runs=%d seed=%d\n",
		rec.Config.Sites, rec.Config.Selector, rec.Config.Cooperative, rec.Config.Regime,
		rec.Config.Ticks, rec.Config.Equilibration, rec.Config.Runs, rec.Config.Seed)
	fmt.Printf("summary points=%d variants=%d mean_lifetime=%.4f mean_gap=%.4f samples=%d\n",
		rec.Summary.Points, rec.Summary.Variants, rec.Summary.MeanLifetime, rec.Summary.MeanGap, rec.Summary.Samples)
	for _, g := range detail.Graphs {
		feedback, lifetime, gap := curvePeak(g)
		fmt.Printf("curve variant=%s points=%d peak_feedback=%g peak_lifetime=%.4f peak_gap=%.4f\n",
			g.Variant, len(g.Feedbacks), feedback, lifetime, gap)
	}
	labels := make([]string, 0, len(detail.Traces))
	for label := range detail.Traces {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		samples := detail.Traces[label]
		finalDelta := 0
		if len(samples) > 0 {
			finalDelta = samples[len(samples)-1].Delta
		}
		fmt.Printf("trace label=%s samples=%d final_delta=%d\n", label, len(samples), finalDelta)
	}
	for _, d := range detail.Distributions {
		fmt.Printf("distribution variant=%s feedback=%g samples=%d bins=%d\n",
			d.Variant, d.Feedback, d.Samples, len(d.Bins))
	}
	return nil
}

func runExport(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from the run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}
	if *latest {
		entries, err := stats.ListRunIndex(resultsDir)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.New("no runs available to export")
		}
		*runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(resultsDir, *runID, *outDir)
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", *runID, filepath.Clean(exportedDir))
	return nil
}

func runJSONL(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("jsonl", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "flatten the most recent run from the run index")
	outPath := fs.String("out", "", "output path (empty derives one under the exports directory)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("jsonl requires --run-id or --latest")
	}
	if *latest {
		entries, err := stats.ListRunIndex(resultsDir)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return errors.New("no runs available to flatten")
		}
		*runID = entries[0].RunID
	}

	items, err := stats.CurveItems(resultsDir, *runID)
	if err != nil {
		return err
	}
	path := *outPath
	if path == "" {
		path = filepath.Join(exportsDir, *runID+"_curves.jsonl")
	}
	if err := stats.WriteJSONL(path, items); err != nil {
		return err
	}

	fmt.Printf("jsonl run_id=%s items=%d path=%s\n", *runID, len(items), filepath.Clean(path))
	return nil
}

func runDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id to remove from the store")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "chromatin.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*runID) == "" {
		return errors.New("delete requires --run-id")
	}

	client, err := chromapi.New(chromapi.Options{
		StoreKind:  *storeKind,
		DBPath:     *dbPath,
		ResultsDir: resultsDir,
		ExportsDir: exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.DeleteRun(ctx, strings.TrimSpace(*runID)); err != nil {
		return err
	}

	fmt.Printf("deleted run_id=%s store=%s\n", strings.TrimSpace(*runID), *storeKind)
	return nil
}

func printRunResult(res chromapi.RunResult, jsonOut bool) error {
	if jsonOut {
		payload := struct {
			RunID   string           `json:"run_id"`
			Kind    string           `json:"kind"`
			Profile string           `json:"profile,omitempty"`
			Dir     string           `json:"dir"`
			Summary model.RunSummary `json:"summary"`
			Figures []string         `json:"figures,omitempty"`
		}{
			RunID:   res.RunID,
			Kind:    res.Kind,
			Profile: res.Profile,
			Dir:     res.Dir,
			Summary: res.Summary,
			Figures: append([]string(nil), res.Plots...),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Printf("run_recorded run_id=%s kind=%s profile=%s points=%d variants=%d mean_lifetime=%.4f mean_gap=%.4f samples=%d dir=%s\n",
		res.RunID, res.Kind, res.Profile, res.Summary.Points, res.Summary.Variants,
		res.Summary.MeanLifetime, res.Summary.MeanGap, res.Summary.Samples, res.Dir)
	for _, p := range res.Plots {
		fmt.Printf("figure=%s\n", p)
	}
	return nil
}

// curvePeak picks the digest row for one curve: the grid point with
// the longest mean lifetime, or the widest mean gap when the curve
// carries no lifetimes.
func curvePeak(g stats.CurveGraph) (feedback, lifetime, gap float64) {
	best := -1
	byLifetime := len(g.MeanLifetime) == len(g.Feedbacks) && len(g.MeanLifetime) > 0
	for i := range g.Feedbacks {
		if best < 0 {
			best = i
			continue
		}
		if byLifetime {
			if g.MeanLifetime[i] > g.MeanLifetime[best] {
				best = i
			}
		} else if i < len(g.MeanGap) && g.MeanGap[i] > g.MeanGap[best] {
			best = i
		}
	}
	if best < 0 {
		return 0, 0, 0
	}
	feedback = g.Feedbacks[best]
	if byLifetime {
		lifetime = g.MeanLifetime[best]
	}
	if best < len(g.MeanGap) {
		gap = g.MeanGap[best]
	}
	return feedback, lifetime, gap
}

func variantFromName(name string) (model.Variant, error) {
	switch name {
	case "cooperative":
		return model.Variant{Name: "cooperative", Selector: "global", Cooperative: true, Regime: "full"}, nil
	case "non-cooperative":
		return model.Variant{Name: "non-cooperative", Selector: "global", Cooperative: false, Regime: "full"}, nil
	case "global":
		return model.Variant{Name: "global", Selector: "global", Cooperative: true, Regime: "full"}, nil
	case "neighbor":
		return model.Variant{Name: "neighbor", Selector: "neighbor", Cooperative: true, Regime: "full"}, nil
	case "power-law":
		return model.Variant{Name: "power-law", Selector: "power-law", Cooperative: true, Regime: "full"}, nil
	case "modify-only":
		return model.Variant{Name: "modify-only", Selector: "global", Cooperative: true, Regime: "modify-only"}, nil
	case "demodify-only":
		return model.Variant{Name: "demodify-only", Selector: "global", Cooperative: true, Regime: "demodify-only"}, nil
	default:
		return model.Variant{}, fmt.Errorf("unsupported variant: %s", name)
	}
}

func parseVariantNames(raw string) ([]model.Variant, error) {
	names := parseCommaSeparated(raw)
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]model.Variant, 0, len(names))
	for _, name := range names {
		v, err := variantFromName(name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFeedbackList(raw string) ([]float64, error) {
	parts := parseCommaSeparated(raw)
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("parse feedbacks value %q: %w", part, err)
		}
		if f < 0 {
			return nil, fmt.Errorf("feedbacks value must be >= 0: %g", f)
		}
		out = append(out, f)
	}
	return out, nil
}

func parseCommaSeparated(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: chromatinctl <init|curves|compare|trace|distribution|measure|profile|experiment|runs|show|export|jsonl|delete> [flags]", msg)
}
