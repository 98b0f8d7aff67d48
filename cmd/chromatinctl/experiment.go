package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"chromatin/internal/model"
	"chromatin/internal/stats"
	"chromatin/internal/storage"
	chromapi "chromatin/pkg/chromatin"
)

func runExperiment(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("experiment requires a subcommand: start|continue|show|list|report")
	}
	switch args[0] {
	case "start":
		return runExperimentStart(ctx, args[1:])
	case "continue":
		return runExperimentContinue(ctx, args[1:])
	case "show":
		return runExperimentShow(args[1:])
	case "list":
		return runExperimentList(args[1:])
	case "report":
		return runExperimentReport(args[1:])
	default:
		return fmt.Errorf("unknown experiment subcommand: %s", args[0])
	}
}

func runExperimentStart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("experiment start", flag.ContinueOnError)
	id := fs.String("id", "", "experiment id")
	profileNames := fs.String("profiles", "", "comma-separated profile names (empty runs every bundled profile)")
	notes := fs.String("notes", "", "optional experiment notes")
	sites := fs.Int("sites", 0, "override every profile's lattice size (0 keeps them)")
	runs := fs.Int("runs", 0, "override every profile's run count (0 keeps them)")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	kymograph := fs.Bool("kymograph", false, "render lattice kymograph videos for trace profiles")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "chromatin.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit experiment result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return errors.New("experiment start requires --id")
	}

	if existing, ok, err := stats.ReadSweepExperiment(resultsDir, strings.TrimSpace(*id)); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("experiment already exists: %s (progress=%s step_index=%d total_steps=%d)",
			existing.ID, existing.ProgressFlag, existing.StepIndex, existing.TotalSteps)
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

	res, err := client.Experiment(ctx, chromapi.ExperimentRequest{
		ID:        strings.TrimSpace(*id),
		Notes:     strings.TrimSpace(*notes),
		Profiles:  parseCommaSeparated(*profileNames),
		Sites:     *sites,
		Runs:      *runs,
		Seed:      *seed,
		Workers:   *workers,
		Kymograph: *kymograph,
	})
	if err != nil {
		return err
	}
	return printExperimentResult(res, *jsonOut)
}

func runExperimentContinue(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("experiment continue", flag.ContinueOnError)
	id := fs.String("id", "", "experiment id")
	sites := fs.Int("sites", 0, "override the checkpointed lattice size (0 keeps it)")
	runs := fs.Int("runs", 0, "override the checkpointed run count (0 keeps it)")
	seed := fs.Int64("seed", 0, "override the checkpointed rng seed (0 keeps it)")
	workers := fs.Int("workers", 0, "override the checkpointed worker count (0 keeps it)")
	kymograph := fs.Bool("kymograph", false, "render lattice kymograph videos for trace profiles")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "chromatin.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit experiment result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return errors.New("experiment continue requires --id")
	}

	exp, ok, err := stats.ReadSweepExperiment(resultsDir, strings.TrimSpace(*id))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("experiment not found: %s", strings.TrimSpace(*id))
	}
	if exp.ProgressFlag == stats.ProgressCompleted {
		fmt.Printf("experiment id=%s progress=%s step_index=%d total_steps=%d\n",
			exp.ID, exp.ProgressFlag, exp.StepIndex, exp.TotalSteps)
		return nil
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

	res, err := client.Experiment(ctx, chromapi.ExperimentRequest{
		ID:        exp.ID,
		Sites:     *sites,
		Runs:      *runs,
		Seed:      *seed,
		Workers:   *workers,
		Kymograph: *kymograph,
		Resume:    true,
	})
	if err != nil {
		return err
	}
	return printExperimentResult(res, *jsonOut)
}

func runExperimentShow(args []string) error {
	fs := flag.NewFlagSet("experiment show", flag.ContinueOnError)
	id := fs.String("id", "", "experiment id")
	jsonOut := fs.Bool("json", false, "emit experiment as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return errors.New("experiment show requires --id")
	}

	exp, ok, err := stats.ReadSweepExperiment(resultsDir, strings.TrimSpace(*id))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("experiment not found: %s", strings.TrimSpace(*id))
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(exp)
	}

	printExperimentLine(exp)
	for i, runID := range exp.RunIDs {
		profile := ""
		if i < len(exp.Profiles) {
			profile = exp.Profiles[i]
		}
		var summary model.RunSummary
		if i < len(exp.Summaries) {
			summary = exp.Summaries[i]
		}
		fmt.Printf("step=%d profile=%s run_id=%s points=%d variants=%d mean_gap=%.4f\n",
			i+1, profile, runID, summary.Points, summary.Variants, summary.MeanGap)
	}
	return nil
}

func runExperimentList(args []string) error {
	fs := flag.NewFlagSet("experiment list", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit experiments as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	exps, err := stats.ListSweepExperiments(resultsDir)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(exps)
	}
	if len(exps) == 0 {
		fmt.Println("no experiments")
		return nil
	}
	for _, exp := range exps {
		printExperimentLine(exp)
	}
	return nil
}

func runExperimentReport(args []string) error {
	fs := flag.NewFlagSet("experiment report", flag.ContinueOnError)
	id := fs.String("id", "", "experiment id")
	name := fs.String("name", "report", "report output prefix")
	jsonOut := fs.Bool("json", false, "emit report metadata as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return errors.New("experiment report requires --id")
	}

	exp, ok, err := stats.ReadSweepExperiment(resultsDir, strings.TrimSpace(*id))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("experiment not found: %s", strings.TrimSpace(*id))
	}

	report, err := stats.BuildExperimentReport(resultsDir, exp)
	if err != nil {
		return err
	}
	report.ReportName = strings.TrimSpace(*name)
	path, err := stats.WriteExperimentReport(resultsDir, report)
	if err != nil {
		return err
	}

	if *jsonOut {
		payload := struct {
			ID         string `json:"id"`
			ReportName string `json:"report_name"`
			Steps      int    `json:"steps"`
			Path       string `json:"path"`
		}{
			ID:         exp.ID,
			ReportName: report.ReportName,
			Steps:      len(report.Steps),
			Path:       path,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Printf("experiment_report id=%s name=%s steps=%d path=%s\n",
		exp.ID, report.ReportName, len(report.Steps), path)
	return nil
}

func printExperimentLine(exp stats.SweepExperiment) {
	fmt.Printf("id=%s progress=%s step_index=%d total_steps=%d started=%s completed=%s interruptions=%d notes=%s\n",
		exp.ID, exp.ProgressFlag, exp.StepIndex, exp.TotalSteps,
		exp.StartedAtUTC, exp.CompletedAtUTC, len(exp.Interruptions), exp.Notes)
}

func printExperimentResult(res chromapi.ExperimentResult, jsonOut bool) error {
	if jsonOut {
		type stepPayload struct {
			RunID   string           `json:"run_id"`
			Kind    string           `json:"kind"`
			Profile string           `json:"profile,omitempty"`
			Summary model.RunSummary `json:"summary"`
		}
		steps := make([]stepPayload, len(res.Steps))
		for i, step := range res.Steps {
			steps[i] = stepPayload{
				RunID:   step.RunID,
				Kind:    step.Kind,
				Profile: step.Profile,
				Summary: step.Summary,
			}
		}
		payload := struct {
			ID        string        `json:"id"`
			Completed bool          `json:"completed"`
			Steps     []stepPayload `json:"steps,omitempty"`
		}{
			ID:        res.ID,
			Completed: res.Completed,
			Steps:     steps,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Printf("experiment id=%s completed=%t steps=%d\n", res.ID, res.Completed, len(res.Steps))
	for i, step := range res.Steps {
		fmt.Printf("step=%d run_id=%s kind=%s profile=%s points=%d variants=%d mean_lifetime=%.4f mean_gap=%.4f\n",
			i+1, step.RunID, step.Kind, step.Profile, step.Summary.Points, step.Summary.Variants,
			step.Summary.MeanLifetime, step.Summary.MeanGap)
	}
	return nil
}
