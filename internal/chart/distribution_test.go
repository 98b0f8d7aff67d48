package chart

import (
	"path/filepath"
	"testing"

	"chromatin/internal/model"
)

func TestDistributionPNG(t *testing.T) {
	records := []model.DistributionRecord{
		{
			Variant:  "global",
			Feedback: 1,
			Bins: []model.DistributionBin{
				{Delta: -20, Probability: 0.2},
				{Delta: 0, Probability: 0.6},
				{Delta: 20, Probability: 0.2},
			},
		},
		{
			Variant:  "global",
			Feedback: 77,
			Bins: []model.DistributionBin{
				{Delta: 40, Probability: 0.5},
				{Delta: -40, Probability: 0.5},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "distribution.png")
	if err := DistributionPNG(records, path); err != nil {
		t.Fatalf("render distribution: %v", err)
	}
	requireNonEmptyFile(t, path)
}

func TestDistributionPNGRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "distribution.png")

	if err := DistributionPNG(nil, path); err == nil {
		t.Fatal("expected error for no distributions")
	}
	if err := DistributionPNG([]model.DistributionRecord{{Variant: "global"}}, path); err == nil {
		t.Fatal("expected error for a distribution without bins")
	}
}
