package measure

import (
	"math/rand"
	"testing"

	"chromatin/internal/sim"
)

func testEngine(t *testing.T) *sim.StepEngine {
	t.Helper()
	eng, err := sim.NewStepEngine(sim.NewGlobalSelector(true), sim.NewTransitionRule(sim.RegimeFull))
	if err != nil {
		t.Fatalf("new step engine: %v", err)
	}
	return eng
}

func TestRequestValidate(t *testing.T) {
	good := Request{Sites: 60, Feedback: 1.5, Ticks: 100, Equilibration: 10}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	bad := []Request{
		{Sites: 1, Feedback: 1, Ticks: 100},
		{Sites: 60, Feedback: -0.1, Ticks: 100},
		{Sites: 60, Feedback: 1, Ticks: -1},
		{Sites: 60, Feedback: 1, Ticks: 100, Equilibration: -1},
	}
	for i, req := range bad {
		if err := req.Validate(); err == nil {
			t.Fatalf("bad request %d accepted: %+v", i, req)
		}
	}
}

func TestMeanLifetimeDeterministicPerSeed(t *testing.T) {
	eng := testEngine(t)
	req := Request{Sites: 60, Feedback: 2, Ticks: 30000}
	first, err := MeanLifetime(req, eng, rand.New(rand.NewSource(101)))
	if err != nil {
		t.Fatalf("mean lifetime: %v", err)
	}
	second, err := MeanLifetime(req, eng, rand.New(rand.NewSource(101)))
	if err != nil {
		t.Fatalf("mean lifetime: %v", err)
	}
	if first != second {
		t.Fatalf("same seed diverged: %v vs %v", first, second)
	}
	if first < 0 {
		t.Fatalf("negative mean lifetime: %v", first)
	}
}

func TestMeanLifetimeZeroTicks(t *testing.T) {
	eng := testEngine(t)
	mean, err := MeanLifetime(Request{Sites: 60, Feedback: 1, Ticks: 0}, eng, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("mean lifetime: %v", err)
	}
	if mean != 0 {
		t.Fatalf("mean lifetime without ticks: %v", mean)
	}
}

func TestGapScoreStaysInUnitInterval(t *testing.T) {
	eng := testEngine(t)
	req := Request{Sites: 60, Feedback: 4, Ticks: 6000, Equilibration: 600}
	score, err := GapScore(req, eng, rand.New(rand.NewSource(103)))
	if err != nil {
		t.Fatalf("gap score: %v", err)
	}
	if score < 0 || score > 1 {
		t.Fatalf("gap score %v outside [0,1]", score)
	}
	if score == 0 {
		t.Fatal("strong feedback produced a zero gap score")
	}
}

func TestStrideGapValidAtModerateFeedback(t *testing.T) {
	eng := testEngine(t)
	req := Request{Sites: 60, Feedback: 1, Ticks: 6000, Equilibration: 600}
	gap, ok, err := StrideGap(req, eng, rand.New(rand.NewSource(107)))
	if err != nil {
		t.Fatalf("stride gap: %v", err)
	}
	if !ok {
		t.Fatal("no valid stride sample in 100 lattice sweeps")
	}
	if gap < 0 || gap > 1 {
		t.Fatalf("stride gap %v outside [0,1]", gap)
	}
}

func TestDeltaCountsSamplesOncePerSweep(t *testing.T) {
	eng := testEngine(t)
	req := Request{Sites: 60, Feedback: 1, Ticks: 180, Equilibration: 60}
	acc, err := DeltaCounts(req, eng, rand.New(rand.NewSource(109)))
	if err != nil {
		t.Fatalf("delta counts: %v", err)
	}
	if acc.Total() != 3 {
		t.Fatalf("sample total %d, want 3 for 180 ticks at stride 60", acc.Total())
	}
	var mass float64
	for _, p := range acc.PMF() {
		mass += p
	}
	if mass < 1-1e-9 || mass > 1+1e-9 {
		t.Fatalf("pmf mass %v, want 1", mass)
	}
}

func TestDeltaDistributionSupportWithinLattice(t *testing.T) {
	eng := testEngine(t)
	req := Request{Sites: 60, Feedback: 2, Ticks: 6000}
	pmf, err := DeltaDistribution(req, eng, rand.New(rand.NewSource(113)))
	if err != nil {
		t.Fatalf("delta distribution: %v", err)
	}
	if len(pmf) == 0 {
		t.Fatal("empty distribution from a measured trajectory")
	}
	for delta := range pmf {
		if delta < -60 || delta > 60 {
			t.Fatalf("delta %d outside lattice bounds", delta)
		}
	}
}

func TestTraceSamplesAndFramesAlign(t *testing.T) {
	eng := testEngine(t)
	req := Request{Sites: 60, Feedback: 1.4, Ticks: 600, Equilibration: 10}
	samples, frames, err := TraceFrames(req, eng, rand.New(rand.NewSource(127)))
	if err != nil {
		t.Fatalf("trace frames: %v", err)
	}
	if len(samples) != 10 {
		t.Fatalf("sample count %d, want 10", len(samples))
	}
	if len(frames) != len(samples) {
		t.Fatalf("frame count %d does not match sample count %d", len(frames), len(samples))
	}
	for i, frame := range frames {
		if len(frame) != 60 {
			t.Fatalf("frame %d has %d sites, want 60", i, len(frame))
		}
		var c sim.Counts
		for _, m := range frame {
			switch m {
			case sim.Acetylated:
				c.Acetylated++
			case sim.Unmodified:
				c.Unmodified++
			case sim.Methylated:
				c.Methylated++
			}
		}
		s := samples[i]
		if c.Acetylated != s.Acetylated || c.Unmodified != s.Unmodified || c.Methylated != s.Methylated {
			t.Fatalf("frame %d composition %+v does not match sample %+v", i, c, s)
		}
	}
}

func TestTraceTimeStamps(t *testing.T) {
	eng := testEngine(t)
	req := Request{Sites: 60, Feedback: 1, Ticks: 120}
	samples, err := Trace(req, eng, rand.New(rand.NewSource(131)))
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("sample count %d, want 2", len(samples))
	}
	if samples[0].Tick != 0 || samples[1].Tick != 60 {
		t.Fatalf("sample ticks %d,%d want 0,60", samples[0].Tick, samples[1].Tick)
	}
}

func TestMeasureRejectsInvalidRequest(t *testing.T) {
	eng := testEngine(t)
	rng := rand.New(rand.NewSource(1))
	req := Request{Sites: 60, Feedback: -1, Ticks: 10}
	if _, err := MeanLifetime(req, eng, rng); err == nil {
		t.Fatal("mean lifetime accepted negative feedback")
	}
	if _, err := GapScore(req, eng, rng); err == nil {
		t.Fatal("gap score accepted negative feedback")
	}
	if _, _, err := StrideGap(req, eng, rng); err == nil {
		t.Fatal("stride gap accepted negative feedback")
	}
	if _, err := DeltaCounts(req, eng, rng); err == nil {
		t.Fatal("delta counts accepted negative feedback")
	}
	if _, err := Trace(req, eng, rng); err == nil {
		t.Fatal("trace accepted negative feedback")
	}
}
