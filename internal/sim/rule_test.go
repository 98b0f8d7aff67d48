package sim

import (
	"math/rand"
	"testing"
)

func TestTransitionRuleFull(t *testing.T) {
	rule := NewTransitionRule(RegimeFull)
	cases := []struct {
		target    Mark
		recruiter Mark
		next      Mark
		changed   bool
	}{
		{Acetylated, Methylated, Unmodified, true},
		{Unmodified, Methylated, Methylated, true},
		{Methylated, Methylated, Methylated, false},
		{Methylated, Acetylated, Unmodified, true},
		{Unmodified, Acetylated, Acetylated, true},
		{Acetylated, Acetylated, Acetylated, false},
		{Acetylated, Unmodified, Acetylated, false},
		{Unmodified, Unmodified, Unmodified, false},
		{Methylated, Unmodified, Methylated, false},
	}
	for _, tc := range cases {
		next, changed := rule.Apply(tc.target, tc.recruiter)
		if next != tc.next || changed != tc.changed {
			t.Fatalf("full: %v recruited by %v: got (%v,%v), want (%v,%v)",
				tc.target, tc.recruiter, next, changed, tc.next, tc.changed)
		}
	}
}

func TestTransitionRuleModifyOnly(t *testing.T) {
	rule := NewTransitionRule(RegimeModifyOnly)
	if next, changed := rule.Apply(Unmodified, Methylated); next != Methylated || !changed {
		t.Fatalf("modify-only U by M: got (%v,%v)", next, changed)
	}
	if next, changed := rule.Apply(Unmodified, Acetylated); next != Acetylated || !changed {
		t.Fatalf("modify-only U by A: got (%v,%v)", next, changed)
	}
	if _, changed := rule.Apply(Acetylated, Methylated); changed {
		t.Fatal("modify-only must not demodify A")
	}
	if _, changed := rule.Apply(Methylated, Acetylated); changed {
		t.Fatal("modify-only must not demodify M")
	}
}

func TestTransitionRuleDemodifyOnly(t *testing.T) {
	rule := NewTransitionRule(RegimeDemodifyOnly)
	if next, changed := rule.Apply(Acetylated, Methylated); next != Unmodified || !changed {
		t.Fatalf("demodify-only A by M: got (%v,%v)", next, changed)
	}
	if next, changed := rule.Apply(Methylated, Acetylated); next != Unmodified || !changed {
		t.Fatalf("demodify-only M by A: got (%v,%v)", next, changed)
	}
	if _, changed := rule.Apply(Unmodified, Methylated); changed {
		t.Fatal("demodify-only must not modify U")
	}
	if _, changed := rule.Apply(Unmodified, Acetylated); changed {
		t.Fatal("demodify-only must not modify U")
	}
}

func TestParseRegime(t *testing.T) {
	for name, want := range map[string]Regime{
		"":              RegimeFull,
		"full":          RegimeFull,
		"modify":        RegimeModifyOnly,
		"modify-only":   RegimeModifyOnly,
		"demodify":      RegimeDemodifyOnly,
		"demodify-only": RegimeDemodifyOnly,
	} {
		got, err := ParseRegime(name)
		if err != nil {
			t.Fatalf("parse regime %q: %v", name, err)
		}
		if got != want {
			t.Fatalf("parse regime %q: got %v, want %v", name, got, want)
		}
	}
	if _, err := ParseRegime("bidirectional"); err == nil {
		t.Fatal("expected error for unknown regime")
	}
}

func TestNoiseBranches(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	seen := map[Mark]map[Mark]bool{
		Acetylated: {},
		Unmodified: {},
		Methylated: {},
	}
	for i := 0; i < 10000; i++ {
		for _, m := range []Mark{Acetylated, Unmodified, Methylated} {
			seen[m][Noise(m, rng)] = true
		}
	}
	if !seen[Acetylated][Acetylated] || !seen[Acetylated][Unmodified] || seen[Acetylated][Methylated] {
		t.Fatalf("acetylated noise outcomes: %v", seen[Acetylated])
	}
	if !seen[Methylated][Methylated] || !seen[Methylated][Unmodified] || seen[Methylated][Acetylated] {
		t.Fatalf("methylated noise outcomes: %v", seen[Methylated])
	}
	if !seen[Unmodified][Acetylated] || !seen[Unmodified][Methylated] || !seen[Unmodified][Unmodified] {
		t.Fatalf("unmodified noise outcomes: %v", seen[Unmodified])
	}
}

func TestNoiseRates(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const draws = 300000
	var aDown, mDown, uUp, uDown int
	for i := 0; i < draws; i++ {
		if Noise(Acetylated, rng) == Unmodified {
			aDown++
		}
		if Noise(Methylated, rng) == Unmodified {
			mDown++
		}
		switch Noise(Unmodified, rng) {
		case Acetylated:
			uUp++
		case Methylated:
			uDown++
		}
	}
	third := float64(draws) / 3
	for name, n := range map[string]int{"A->U": aDown, "M->U": mDown, "U->A": uUp, "U->M": uDown} {
		if diff := float64(n) - third; diff < -0.01*float64(draws) || diff > 0.01*float64(draws) {
			t.Fatalf("%s rate %d out of tolerance around %v", name, n, third)
		}
	}
}
