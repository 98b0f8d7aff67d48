package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"chromatin/internal/storage"
	"chromatin/internal/sweep"
	chromapi "chromatin/pkg/chromatin"
)

func runProfile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("profile requires a subcommand: list|show|run")
	}
	switch args[0] {
	case "list":
		profiles := sweep.Profiles()
		if len(profiles) == 0 {
			fmt.Println("no profiles")
			return nil
		}
		for _, p := range profiles {
			fmt.Printf("name=%s kind=%s sites=%d ticks=%d equilibration=%d runs=%d feedbacks=%d variants=%d\n",
				p.Name, p.Kind, p.Sites, p.ResolveTicks(), p.ResolveEquilibration(), p.Runs, len(p.Feedbacks), len(p.Variants))
		}
		return nil
	case "show":
		return runProfileShow(args[1:])
	case "run":
		return runProfileRun(ctx, args[1:])
	default:
		return fmt.Errorf("unsupported profile subcommand: %s", args[0])
	}
}

func runProfileShow(args []string) error {
	fs := flag.NewFlagSet("profile show", flag.ContinueOnError)
	name := fs.String("name", "", "profile name")
	asJSON := fs.Bool("json", false, "print resolved profile as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return errors.New("profile show requires --name")
	}

	p, ok := sweep.ProfileByName(*name)
	if !ok {
		return fmt.Errorf("unknown profile: %s", *name)
	}

	if *asJSON {
		variants := make([]string, len(p.Variants))
		for i, v := range p.Variants {
			variants[i] = v.Name
		}
		payload := struct {
			Name          string    `json:"name"`
			Kind          string    `json:"kind"`
			Description   string    `json:"description"`
			Sites         int       `json:"sites"`
			Ticks         int       `json:"ticks"`
			Equilibration int       `json:"equilibration"`
			Runs          int       `json:"runs"`
			Feedbacks     []float64 `json:"feedbacks"`
			Variants      []string  `json:"variants"`
		}{
			Name:          p.Name,
			Kind:          p.Kind,
			Description:   p.Description,
			Sites:         p.Sites,
			Ticks:         p.ResolveTicks(),
			Equilibration: p.ResolveEquilibration(),
			Runs:          p.Runs,
			Feedbacks:     append([]float64(nil), p.Feedbacks...),
			Variants:      variants,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Printf("name=%s kind=%s sites=%d ticks=%d equilibration=%d runs=%d description=%s\n",
		p.Name, p.Kind, p.Sites, p.ResolveTicks(), p.ResolveEquilibration(), p.Runs, p.Description)
	fmt.Printf("feedbacks=%v\n", p.Feedbacks)
	for _, v := range p.Variants {
		fmt.Printf("variant name=%s selector=%s cooperative=%t regime=%s\n",
			v.Name, v.Selector, v.Cooperative, v.Regime)
	}
	return nil
}

func runProfileRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile run", flag.ContinueOnError)
	name := fs.String("name", "", "profile name")
	sites := fs.Int("sites", 0, "override the profile lattice size (0 keeps it)")
	runs := fs.Int("runs", 0, "override the profile run count (0 keeps it)")
	seed := fs.Int64("seed", 1, "rng seed")
	workers := fs.Int("workers", 4, "worker count")
	kymograph := fs.Bool("kymograph", false, "render lattice kymograph videos for trace profiles")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "chromatin.db", "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit run result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return errors.New("profile run requires --name")
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

	res, err := client.RunProfile(ctx, chromapi.ProfileRequest{
		Name:      strings.TrimSpace(*name),
		Sites:     *sites,
		Runs:      *runs,
		Seed:      *seed,
		Workers:   *workers,
		Kymograph: *kymograph,
	})
	if err != nil {
		return err
	}
	return printRunResult(res, *jsonOut)
}
