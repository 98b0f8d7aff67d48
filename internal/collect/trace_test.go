package collect

import (
	"math"
	"testing"

	"chromatin/internal/sim"
)

func TestTraceRecorderStrideSampling(t *testing.T) {
	rec, err := NewTraceRecorder(60, 60)
	if err != nil {
		t.Fatalf("new trace recorder: %v", err)
	}
	for i := 0; i < 180; i++ {
		rec.Observe(sim.Counts{Acetylated: 10, Unmodified: 20, Methylated: 30})
	}
	samples := rec.Samples()
	if len(samples) != 3 {
		t.Fatalf("sample count %d, want 3", len(samples))
	}
	for i, wantTick := range []int{0, 60, 120} {
		if samples[i].Tick != wantTick {
			t.Fatalf("sample %d at tick %d, want %d", i, samples[i].Tick, wantTick)
		}
	}
	if got := samples[0].Time; math.Abs(got-1.0/60.0) > 1e-12 {
		t.Fatalf("first sample time %v, want 1/60", got)
	}
	if got := samples[1].Time; math.Abs(got-61.0/60.0) > 1e-12 {
		t.Fatalf("second sample time %v, want 61/60", got)
	}
	s := samples[0]
	if s.Acetylated != 10 || s.Unmodified != 20 || s.Methylated != 30 || s.Delta != 20 {
		t.Fatalf("unexpected sample composition: %+v", s)
	}
	if !s.GapValid || math.Abs(s.Gap-0.5) > 1e-12 {
		t.Fatalf("unexpected sample gap: %+v", s)
	}
}

func TestTraceRecorderMeanGapSkipsInvalid(t *testing.T) {
	rec, err := NewTraceRecorder(10, 1)
	if err != nil {
		t.Fatalf("new trace recorder: %v", err)
	}
	rec.Observe(sim.Counts{Acetylated: 15, Methylated: 45}) // gap 0.5
	rec.Observe(sim.Counts{Unmodified: 60})                 // invalid
	rec.Observe(sim.Counts{Acetylated: 30, Methylated: 30}) // gap 0
	mean, ok := rec.MeanGap()
	if !ok {
		t.Fatal("mean gap reported invalid")
	}
	if math.Abs(mean-0.25) > 1e-12 {
		t.Fatalf("mean gap %v, want 0.25", mean)
	}
}

func TestTraceRecorderMeanGapAllInvalid(t *testing.T) {
	rec, err := NewTraceRecorder(10, 1)
	if err != nil {
		t.Fatalf("new trace recorder: %v", err)
	}
	rec.Observe(sim.Counts{Unmodified: 10})
	rec.Observe(sim.Counts{Unmodified: 10})
	if _, ok := rec.MeanGap(); ok {
		t.Fatal("expected invalid mean gap for unmarked lattice")
	}
}

func TestTraceRecorderRejectsBadParameters(t *testing.T) {
	if _, err := NewTraceRecorder(0, 1); err == nil {
		t.Fatal("expected error for zero sites")
	}
	if _, err := NewTraceRecorder(10, 0); err == nil {
		t.Fatal("expected error for zero stride")
	}
}
