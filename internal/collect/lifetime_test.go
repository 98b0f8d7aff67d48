package collect

import (
	"reflect"
	"testing"

	"chromatin/internal/sim"
)

func TestClassifyMajorityRule(t *testing.T) {
	cases := []struct {
		counts sim.Counts
		want   Dominance
	}{
		{sim.Counts{Acetylated: 10, Methylated: 40}, DominantM},
		{sim.Counts{Acetylated: 40, Methylated: 10}, DominantA},
		{sim.Counts{Acetylated: 30, Methylated: 30}, Mixed},
		{sim.Counts{Acetylated: 10, Methylated: 15}, Mixed},
		{sim.Counts{Acetylated: 10, Methylated: 16}, DominantM},
		{sim.Counts{Acetylated: 15, Methylated: 10}, Mixed},
		{sim.Counts{Acetylated: 16, Methylated: 10}, DominantA},
		{sim.Counts{Acetylated: 0, Methylated: 1}, DominantM},
		{sim.Counts{Acetylated: 1, Methylated: 0}, DominantA},
		{sim.Counts{Unmodified: 60}, Mixed},
	}
	for _, tc := range cases {
		if got := Classify(tc.counts); got != tc.want {
			t.Fatalf("classify %+v: got %v, want %v", tc.counts, got, tc.want)
		}
	}
}

func dominantCounts(d Dominance) sim.Counts {
	switch d {
	case DominantM:
		return sim.Counts{Acetylated: 10, Unmodified: 10, Methylated: 40}
	case DominantA:
		return sim.Counts{Acetylated: 40, Unmodified: 10, Methylated: 10}
	default:
		return sim.Counts{Acetylated: 25, Unmodified: 10, Methylated: 25}
	}
}

func TestLifetimeTrackerRunLengths(t *testing.T) {
	tracker := NewLifetimeTracker()
	sequence := []Dominance{
		DominantM, DominantM, DominantM,
		Mixed,
		DominantA, DominantA,
		Mixed, Mixed,
		DominantM,
	}
	for _, d := range sequence {
		tracker.Observe(dominantCounts(d))
	}
	tracker.Flush()
	want := []int{3, 2, 1}
	if got := tracker.Durations(); !reflect.DeepEqual(got, want) {
		t.Fatalf("durations %v, want %v", got, want)
	}
	if mean := tracker.Mean(); mean != 2 {
		t.Fatalf("mean %v, want 2", mean)
	}
}

func TestLifetimeTrackerDirectSwitchClosesRun(t *testing.T) {
	tracker := NewLifetimeTracker()
	for _, d := range []Dominance{DominantM, DominantM, DominantA, DominantA, DominantA} {
		tracker.Observe(dominantCounts(d))
	}
	tracker.Flush()
	want := []int{2, 3}
	if got := tracker.Durations(); !reflect.DeepEqual(got, want) {
		t.Fatalf("durations %v, want %v", got, want)
	}
}

func TestLifetimeTrackerOpenRunNeedsFlush(t *testing.T) {
	tracker := NewLifetimeTracker()
	tracker.Observe(dominantCounts(DominantM))
	tracker.Observe(dominantCounts(DominantM))
	if n := len(tracker.Durations()); n != 0 {
		t.Fatalf("open run recorded early: %d durations", n)
	}
	tracker.Flush()
	if got := tracker.Durations(); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("durations after flush: %v", got)
	}
}

func TestLifetimeTrackerEmptyMean(t *testing.T) {
	tracker := NewLifetimeTracker()
	tracker.Observe(dominantCounts(Mixed))
	tracker.Flush()
	if mean := tracker.Mean(); mean != 0 {
		t.Fatalf("mean of no runs: %v, want 0", mean)
	}
}
