package measure

import (
	"fmt"
	"math/rand"

	"chromatin/internal/collect"
	"chromatin/internal/model"
	"chromatin/internal/sim"
)

// Request describes one trajectory: lattice size, feedback strength,
// measured tick budget, and the equilibration prefix discarded before
// measuring.
type Request struct {
	Sites         int
	Feedback      float64
	Ticks         int
	Equilibration int
}

func (r Request) Validate() error {
	if r.Sites < 2 {
		return fmt.Errorf("invalid site count: %d (need at least 2)", r.Sites)
	}
	if r.Feedback < 0 {
		return fmt.Errorf("invalid feedback strength: %v (need >= 0)", r.Feedback)
	}
	if r.Ticks < 0 {
		return fmt.Errorf("invalid tick budget: %d", r.Ticks)
	}
	if r.Equilibration < 0 {
		return fmt.Errorf("invalid equilibration budget: %d", r.Equilibration)
	}
	return nil
}

func (r Request) start(engine *sim.StepEngine, rng *rand.Rand) (*sim.State, error) {
	st, err := sim.NewRandomState(r.Sites, rng)
	if err != nil {
		return nil, err
	}
	engine.Advance(st, r.Feedback, r.Equilibration, rng)
	return st, nil
}

// MeanLifetime runs one trajectory and averages the completed
// dominance run lengths. Every post-step composition is classified;
// the equilibration prefix is not used here.
func MeanLifetime(req Request, engine *sim.StepEngine, rng *rand.Rand) (float64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	st, err := sim.NewRandomState(req.Sites, rng)
	if err != nil {
		return 0, err
	}
	tracker := collect.NewLifetimeTracker()
	for t := 0; t < req.Ticks; t++ {
		engine.Step(st, req.Feedback, rng)
		tracker.Observe(st.Counts())
	}
	tracker.Flush()
	return tracker.Mean(), nil
}

// GapScore runs one trajectory and returns the windowed mean asymmetry
// over the measured ticks, after discarding the equilibration prefix.
func GapScore(req Request, engine *sim.StepEngine, rng *rand.Rand) (float64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	st, err := req.start(engine, rng)
	if err != nil {
		return 0, err
	}
	acc, err := collect.NewGapAccumulator(req.Ticks)
	if err != nil {
		return 0, err
	}
	for t := 0; t < req.Ticks; t++ {
		engine.Step(st, req.Feedback, rng)
		acc.Observe(st.Counts())
	}
	return acc.Score(), nil
}

// StrideGap runs one trajectory, samples the asymmetry once per lattice
// sweep, and averages the valid samples. ok is false when no sample
// carried a modified mark.
func StrideGap(req Request, engine *sim.StepEngine, rng *rand.Rand) (float64, bool, error) {
	if err := req.Validate(); err != nil {
		return 0, false, err
	}
	st, err := req.start(engine, rng)
	if err != nil {
		return 0, false, err
	}
	rec, err := collect.NewTraceRecorder(req.Sites, req.Sites)
	if err != nil {
		return 0, false, err
	}
	for t := 0; t < req.Ticks; t++ {
		engine.Step(st, req.Feedback, rng)
		rec.Observe(st.Counts())
	}
	mean, ok := rec.MeanGap()
	return mean, ok, nil
}

// DeltaCounts runs one trajectory and histograms the methylation
// excess at one sample per lattice sweep. The caller merges the
// returned accumulator across runs.
func DeltaCounts(req Request, engine *sim.StepEngine, rng *rand.Rand) (*collect.DistributionAccumulator, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	st, err := req.start(engine, rng)
	if err != nil {
		return nil, err
	}
	acc, err := collect.NewDistributionAccumulator(req.Sites)
	if err != nil {
		return nil, err
	}
	acc.StartRun()
	for t := 0; t < req.Ticks; t++ {
		engine.Step(st, req.Feedback, rng)
		acc.Observe(st.Counts())
	}
	return acc, nil
}

// DeltaDistribution is DeltaCounts normalized to probabilities.
func DeltaDistribution(req Request, engine *sim.StepEngine, rng *rand.Rand) (map[int]float64, error) {
	acc, err := DeltaCounts(req, engine, rng)
	if err != nil {
		return nil, err
	}
	return acc.PMF(), nil
}

// Trace runs one trajectory and returns its stride-sampled composition
// history.
func Trace(req Request, engine *sim.StepEngine, rng *rand.Rand) ([]model.TraceSample, error) {
	samples, _, err := trace(req, engine, rng, false)
	return samples, err
}

// TraceFrames is Trace plus a full lattice snapshot per sample, for
// rendering site-resolved history.
func TraceFrames(req Request, engine *sim.StepEngine, rng *rand.Rand) ([]model.TraceSample, [][]sim.Mark, error) {
	return trace(req, engine, rng, true)
}

func trace(req Request, engine *sim.StepEngine, rng *rand.Rand, frames bool) ([]model.TraceSample, [][]sim.Mark, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	st, err := req.start(engine, rng)
	if err != nil {
		return nil, nil, err
	}
	rec, err := collect.NewTraceRecorder(req.Sites, req.Sites)
	if err != nil {
		return nil, nil, err
	}
	var snapshots [][]sim.Mark
	for t := 0; t < req.Ticks; t++ {
		engine.Step(st, req.Feedback, rng)
		rec.Observe(st.Counts())
		if frames && t%req.Sites == 0 {
			snapshots = append(snapshots, st.Snapshot())
		}
	}
	return rec.Samples(), snapshots, nil
}
