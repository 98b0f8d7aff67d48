//go:build sqlite

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chromatin/internal/stats"
	"chromatin/internal/storage"
)

func TestTraceCommandSQLitePersistsRun(t *testing.T) {
	workdir := chdirTempDir(t)
	ctx := context.Background()

	dbPath := filepath.Join(workdir, "chromatin.db")
	args := []string{
		"trace",
		"--store", "sqlite",
		"--db-path", dbPath,
		"--sites", "12",
		"--feedbacks", "2",
		"--ticks", "600",
		"--equilibration", "10",
		"--seed", "31",
		"--workers", "2",
	}
	if err := run(ctx, args); err != nil {
		t.Fatalf("trace command: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected sqlite db at %s: %v", dbPath, err)
	}

	entries, err := stats.ListRunIndex(resultsDir)
	if err != nil {
		t.Fatalf("list run index: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one indexed run, got %d", len(entries))
	}
	runID := entries[0].RunID

	// A separate invocation reads the record back out of the database.
	out, err := captureStdout(func() error {
		return run(ctx, []string{"show", "--run-id", runID, "--store", "sqlite", "--db-path", dbPath})
	})
	if err != nil {
		t.Fatalf("show command: %v", err)
	}
	if !strings.Contains(out, "run_id="+runID) || !strings.Contains(out, "trace label=F2") {
		t.Fatalf("unexpected show output: %s", out)
	}

	if err := run(ctx, []string{"delete", "--run-id", runID, "--store", "sqlite", "--db-path", dbPath}); err != nil {
		t.Fatalf("delete command: %v", err)
	}

	store, err := storage.NewStore("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init store: %v", err)
	}
	if _, ok, err := store.GetRun(ctx, runID); err != nil || ok {
		t.Fatalf("run still stored after delete: ok=%v err=%v", ok, err)
	}
}
