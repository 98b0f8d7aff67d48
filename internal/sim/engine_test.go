package sim

import (
	"math/rand"
	"testing"
)

type stubSelector struct {
	mark  Mark
	ok    bool
	calls int
}

func (s *stubSelector) Name() string { return "stub" }

func (s *stubSelector) Recruit(st *State, target int, rng *rand.Rand) (Mark, bool) {
	s.calls++
	return s.mark, s.ok
}

func TestNewStepEngineRequiresSelector(t *testing.T) {
	if _, err := NewStepEngine(nil, NewTransitionRule(RegimeFull)); err == nil {
		t.Fatal("expected error for nil selector")
	}
}

func TestStepZeroFeedbackNeverRecruits(t *testing.T) {
	sel := &stubSelector{mark: Methylated, ok: true}
	eng, err := NewStepEngine(sel, NewTransitionRule(RegimeFull))
	if err != nil {
		t.Fatalf("new step engine: %v", err)
	}
	st, err := NewUniformState(20, Unmodified)
	if err != nil {
		t.Fatalf("new uniform state: %v", err)
	}
	rng := rand.New(rand.NewSource(21))
	eng.Advance(st, 0, 5000, rng)
	if sel.calls != 0 {
		t.Fatalf("selector called %d times with zero feedback", sel.calls)
	}
}

func TestStepHighFeedbackAlwaysRecruits(t *testing.T) {
	sel := &stubSelector{ok: false}
	eng, err := NewStepEngine(sel, NewTransitionRule(RegimeFull))
	if err != nil {
		t.Fatalf("new step engine: %v", err)
	}
	st, err := NewUniformState(20, Unmodified)
	if err != nil {
		t.Fatalf("new uniform state: %v", err)
	}
	rng := rand.New(rand.NewSource(23))
	const ticks = 3000
	eng.Advance(st, 1e15, ticks, rng)
	if sel.calls != ticks {
		t.Fatalf("selector called %d times, want %d", sel.calls, ticks)
	}
	c := st.Counts()
	if c.Unmodified != 20 {
		t.Fatalf("failed recruitment verdicts mutated the lattice: %+v", c)
	}
}

func TestStepFailedVerdictLeavesLatticeUntouched(t *testing.T) {
	sel := &stubSelector{mark: Methylated, ok: false}
	eng, err := NewStepEngine(sel, NewTransitionRule(RegimeFull))
	if err != nil {
		t.Fatalf("new step engine: %v", err)
	}
	st, err := NewUniformState(10, Acetylated)
	if err != nil {
		t.Fatalf("new uniform state: %v", err)
	}
	rng := rand.New(rand.NewSource(29))
	eng.Advance(st, 1e15, 1000, rng)
	if st.Counts().Acetylated != 10 {
		t.Fatalf("lattice changed despite failed verdicts: %+v", st.Counts())
	}
}

func TestUniformMethylatedIsAbsorbingUnderPureFeedback(t *testing.T) {
	sel := NewGlobalSelector(true)
	eng, err := NewStepEngine(sel, NewTransitionRule(RegimeFull))
	if err != nil {
		t.Fatalf("new step engine: %v", err)
	}
	st, err := NewUniformState(60, Methylated)
	if err != nil {
		t.Fatalf("new uniform state: %v", err)
	}
	rng := rand.New(rand.NewSource(31))
	eng.Advance(st, 1e15, 20000, rng)
	if st.Counts().Methylated != 60 {
		t.Fatalf("uniform lattice decayed under pure feedback: %+v", st.Counts())
	}
}

func TestStepKeepsMarksValid(t *testing.T) {
	sel, err := ParseSelector("power-law", 60, true)
	if err != nil {
		t.Fatalf("parse selector: %v", err)
	}
	eng, err := NewStepEngine(sel, NewTransitionRule(RegimeFull))
	if err != nil {
		t.Fatalf("new step engine: %v", err)
	}
	rng := rand.New(rand.NewSource(37))
	st, err := NewRandomState(60, rng)
	if err != nil {
		t.Fatalf("new random state: %v", err)
	}
	for i := 0; i < 50000; i++ {
		eng.Step(st, 1.5, rng)
		c := st.Counts()
		if c.Acetylated+c.Unmodified+c.Methylated != 60 {
			t.Fatalf("tick %d: counts do not cover lattice: %+v", i, c)
		}
	}
	for i := 0; i < st.Len(); i++ {
		if !st.Mark(i).Valid() {
			t.Fatalf("invalid mark at site %d after stepping", i)
		}
	}
}

func TestNoiseOnlyCompositionIsBalanced(t *testing.T) {
	sel := NewGlobalSelector(true)
	eng, err := NewStepEngine(sel, NewTransitionRule(RegimeFull))
	if err != nil {
		t.Fatalf("new step engine: %v", err)
	}
	st, err := NewUniformState(60, Methylated)
	if err != nil {
		t.Fatalf("new uniform state: %v", err)
	}
	rng := rand.New(rand.NewSource(41))
	eng.Advance(st, 0, 100000, rng)
	var sumA, sumU, sumM float64
	const samples = 2000
	for i := 0; i < samples; i++ {
		eng.Advance(st, 0, 60, rng)
		c := st.Counts()
		sumA += float64(c.Acetylated)
		sumU += float64(c.Unmodified)
		sumM += float64(c.Methylated)
	}
	for name, sum := range map[string]float64{"A": sumA, "U": sumU, "M": sumM} {
		frac := sum / (samples * 60)
		if frac < 0.30 || frac > 0.37 {
			t.Fatalf("noise-only %s fraction %v strays from 1/3", name, frac)
		}
	}
}
