package collect

import (
	"fmt"

	"chromatin/internal/sim"
)

// Dominance labels a lattice composition by which modified mark, if
// any, outnumbers the other by more than half again.
type Dominance uint8

const (
	Mixed Dominance = iota
	DominantA
	DominantM
)

func (d Dominance) String() string {
	switch d {
	case Mixed:
		return "mixed"
	case DominantA:
		return "A"
	case DominantM:
		return "M"
	default:
		return fmt.Sprintf("Dominance(%d)", uint8(d))
	}
}

// Classify applies the 1.5x majority rule to one composition.
func Classify(c sim.Counts) Dominance {
	m := float64(c.Methylated)
	a := float64(c.Acetylated)
	if m > 1.5*a {
		return DominantM
	}
	if a > 1.5*m {
		return DominantA
	}
	return Mixed
}

// LifetimeTracker measures how long the lattice stays in one dominant
// state. Mixed compositions close the open run without being counted;
// a change of dominant mark closes the run and opens the next one.
type LifetimeTracker struct {
	open      Dominance
	duration  int
	durations []int
}

func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{}
}

// Observe classifies one post-step composition and extends, closes, or
// opens a dominance run accordingly.
func (t *LifetimeTracker) Observe(c sim.Counts) {
	label := Classify(c)
	if label == Mixed {
		t.close()
		return
	}
	if label == t.open {
		t.duration++
		return
	}
	t.close()
	t.open = label
	t.duration = 1
}

// Flush closes the run still open at the end of a trajectory.
func (t *LifetimeTracker) Flush() {
	t.close()
}

func (t *LifetimeTracker) close() {
	if t.open != Mixed {
		t.durations = append(t.durations, t.duration)
	}
	t.open = Mixed
	t.duration = 0
}

// Durations returns the recorded run lengths in completion order.
func (t *LifetimeTracker) Durations() []int {
	return append([]int(nil), t.durations...)
}

// Mean is the average recorded run length, 0 when nothing completed.
func (t *LifetimeTracker) Mean() float64 {
	if len(t.durations) == 0 {
		return 0
	}
	var sum int
	for _, d := range t.durations {
		sum += d
	}
	return float64(sum) / float64(len(t.durations))
}
