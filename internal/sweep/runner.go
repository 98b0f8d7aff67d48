package sweep

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/montanaflynn/stats"

	"chromatin/internal/collect"
	"chromatin/internal/measure"
	"chromatin/internal/model"
	"chromatin/internal/sim"
)

// seedStride separates the deterministic random streams handed to
// individual sweep jobs.
const seedStride = 1009

// Runner executes feedback sweeps across a worker pool. Workers
// defaults to the machine's CPU count.
type Runner struct {
	Workers int
}

func (r *Runner) workerCount(jobs int) int {
	workers := r.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > jobs {
		workers = jobs
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// NewEngine assembles the step engine a run configuration describes:
// recruitment selector, cooperativity, and conversion regime.
func NewEngine(cfg model.RunConfig) (*sim.StepEngine, error) {
	selector, err := sim.ParseSelector(cfg.Selector, cfg.Sites, cfg.Cooperative)
	if err != nil {
		return nil, err
	}
	regime, err := sim.ParseRegime(cfg.Regime)
	if err != nil {
		return nil, err
	}
	return sim.NewStepEngine(selector, sim.NewTransitionRule(regime))
}

func validateSweep(cfg model.RunConfig, grid []float64) error {
	if cfg.Runs < 0 {
		return fmt.Errorf("invalid run count: %d", cfg.Runs)
	}
	if len(grid) == 0 {
		return errors.New("empty feedback grid")
	}
	for _, f := range grid {
		req := measure.Request{Sites: cfg.Sites, Feedback: f, Ticks: cfg.Ticks, Equilibration: cfg.Equilibration}
		if err := req.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func jobRand(cfg model.RunConfig, jobIndex int) *rand.Rand {
	return rand.New(rand.NewSource(cfg.Seed + int64(jobIndex)*seedStride))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return m
}

// Curves sweeps cfg.FeedbackGrid, measuring per run both the dominance
// lifetime over the full tick budget and the windowed gap score after
// equilibration. Each (feedback, run, measurement) triple is one pool
// job with its own seeded random stream, so results do not depend on
// scheduling.
func (r *Runner) Curves(ctx context.Context, cfg model.RunConfig) ([]model.CurvePoint, error) {
	grid := cfg.FeedbackGrid
	if err := validateSweep(cfg, grid); err != nil {
		return nil, err
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	const (
		kindLifetime = iota
		kindGap
	)
	type job struct {
		idx      int
		point    int
		run      int
		kind     int
		feedback float64
	}
	type result struct {
		point int
		run   int
		kind  int
		value float64
		err   error
	}

	total := len(grid) * cfg.Runs * 2
	lifetimes := make([][]float64, len(grid))
	gaps := make([][]float64, len(grid))
	for i := range grid {
		lifetimes[i] = make([]float64, cfg.Runs)
		gaps[i] = make([]float64, cfg.Runs)
	}
	if total > 0 {
		jobs := make(chan job)
		results := make(chan result, total)

		var wg sync.WaitGroup
		workers := r.workerCount(total)
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				for j := range jobs {
					if err := ctx.Err(); err != nil {
						results <- result{point: j.point, run: j.run, kind: j.kind, err: err}
						continue
					}
					req := measure.Request{
						Sites:         cfg.Sites,
						Feedback:      j.feedback,
						Ticks:         cfg.Ticks,
						Equilibration: cfg.Equilibration,
					}
					rng := jobRand(cfg, j.idx)
					var value float64
					var err error
					if j.kind == kindLifetime {
						value, err = measure.MeanLifetime(req, engine, rng)
					} else {
						value, err = measure.GapScore(req, engine, rng)
					}
					results <- result{point: j.point, run: j.run, kind: j.kind, value: value, err: err}
				}
			}()
		}

		idx := 0
		for point, feedback := range grid {
			for run := 0; run < cfg.Runs; run++ {
				jobs <- job{idx: idx, point: point, run: run, kind: kindLifetime, feedback: feedback}
				idx++
				jobs <- job{idx: idx, point: point, run: run, kind: kindGap, feedback: feedback}
				idx++
			}
		}
		close(jobs)

		wg.Wait()
		close(results)

		for res := range results {
			if res.err != nil {
				return nil, res.err
			}
			if res.kind == kindLifetime {
				lifetimes[res.point][res.run] = res.value
			} else {
				gaps[res.point][res.run] = res.value
			}
		}
	}

	points := make([]model.CurvePoint, len(grid))
	for i, feedback := range grid {
		points[i] = model.CurvePoint{
			Feedback:     feedback,
			MeanLifetime: mean(lifetimes[i]),
			MeanGap:      mean(gaps[i]),
			RunLifetimes: lifetimes[i],
			RunGaps:      gaps[i],
		}
	}
	return points, nil
}

// GapCurve sweeps cfg.FeedbackGrid with the stride gap estimator: one
// asymmetry sample per lattice sweep, averaged per run over the valid
// samples, then averaged across the runs that produced any.
func (r *Runner) GapCurve(ctx context.Context, cfg model.RunConfig) ([]model.CurvePoint, error) {
	grid := cfg.FeedbackGrid
	if err := validateSweep(cfg, grid); err != nil {
		return nil, err
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	type job struct {
		idx      int
		point    int
		run      int
		feedback float64
	}
	type result struct {
		point int
		run   int
		value float64
		valid bool
		err   error
	}

	total := len(grid) * cfg.Runs
	values := make([][]float64, len(grid))
	valid := make([][]bool, len(grid))
	for i := range grid {
		values[i] = make([]float64, cfg.Runs)
		valid[i] = make([]bool, cfg.Runs)
	}
	if total > 0 {
		jobs := make(chan job)
		results := make(chan result, total)

		var wg sync.WaitGroup
		workers := r.workerCount(total)
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				for j := range jobs {
					if err := ctx.Err(); err != nil {
						results <- result{point: j.point, run: j.run, err: err}
						continue
					}
					req := measure.Request{
						Sites:         cfg.Sites,
						Feedback:      j.feedback,
						Ticks:         cfg.Ticks,
						Equilibration: cfg.Equilibration,
					}
					value, ok, err := measure.StrideGap(req, engine, jobRand(cfg, j.idx))
					results <- result{point: j.point, run: j.run, value: value, valid: ok, err: err}
				}
			}()
		}

		idx := 0
		for point, feedback := range grid {
			for run := 0; run < cfg.Runs; run++ {
				jobs <- job{idx: idx, point: point, run: run, feedback: feedback}
				idx++
			}
		}
		close(jobs)

		wg.Wait()
		close(results)

		for res := range results {
			if res.err != nil {
				return nil, res.err
			}
			values[res.point][res.run] = res.value
			valid[res.point][res.run] = res.valid
		}
	}

	points := make([]model.CurvePoint, len(grid))
	for i, feedback := range grid {
		contributing := make([]float64, 0, cfg.Runs)
		for run := 0; run < cfg.Runs; run++ {
			if valid[i][run] {
				contributing = append(contributing, values[i][run])
			}
		}
		points[i] = model.CurvePoint{
			Feedback: feedback,
			MeanGap:  mean(contributing),
			RunGaps:  contributing,
		}
	}
	return points, nil
}

// Distribution histograms the methylation excess at cfg.Feedback,
// merging one accumulator per run in run order.
func (r *Runner) Distribution(ctx context.Context, cfg model.RunConfig) (*collect.DistributionAccumulator, error) {
	if err := validateSweep(cfg, []float64{cfg.Feedback}); err != nil {
		return nil, err
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	merged, err := collect.NewDistributionAccumulator(cfg.Sites)
	if err != nil {
		return nil, err
	}

	type job struct {
		idx int
		run int
	}
	type result struct {
		run int
		acc *collect.DistributionAccumulator
		err error
	}

	if cfg.Runs == 0 {
		return merged, nil
	}
	jobs := make(chan job)
	results := make(chan result, cfg.Runs)

	var wg sync.WaitGroup
	workers := r.workerCount(cfg.Runs)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{run: j.run, err: err}
					continue
				}
				req := measure.Request{
					Sites:         cfg.Sites,
					Feedback:      cfg.Feedback,
					Ticks:         cfg.Ticks,
					Equilibration: cfg.Equilibration,
				}
				acc, err := measure.DeltaCounts(req, engine, jobRand(cfg, j.idx))
				results <- result{run: j.run, acc: acc, err: err}
			}
		}()
	}

	for run := 0; run < cfg.Runs; run++ {
		jobs <- job{idx: run, run: run}
	}
	close(jobs)

	wg.Wait()
	close(results)

	perRun := make([]*collect.DistributionAccumulator, cfg.Runs)
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		perRun[res.run] = res.acc
	}
	for _, acc := range perRun {
		merged.Merge(acc)
	}
	return merged, nil
}

// TraceSeries is one recorded trajectory, labelled by the feedback
// strength it ran under.
type TraceSeries struct {
	Feedback float64
	Samples  []model.TraceSample
	Frames   [][]sim.Mark
}

// Traces records one trajectory per grid feedback. With frames enabled
// each series also keeps the lattice snapshot behind every sample, at
// the cost of sites bytes per retained tick.
func (r *Runner) Traces(ctx context.Context, cfg model.RunConfig, withFrames bool) ([]TraceSeries, error) {
	grid := cfg.FeedbackGrid
	if err := validateSweep(cfg, grid); err != nil {
		return nil, err
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	type job struct {
		idx      int
		feedback float64
	}
	type result struct {
		idx     int
		samples []model.TraceSample
		frames  [][]sim.Mark
		err     error
	}

	jobs := make(chan job)
	results := make(chan result, len(grid))

	var wg sync.WaitGroup
	workers := r.workerCount(len(grid))
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				req := measure.Request{
					Sites:         cfg.Sites,
					Feedback:      j.feedback,
					Ticks:         cfg.Ticks,
					Equilibration: cfg.Equilibration,
				}
				rng := jobRand(cfg, j.idx)
				if withFrames {
					samples, frames, err := measure.TraceFrames(req, engine, rng)
					results <- result{idx: j.idx, samples: samples, frames: frames, err: err}
					continue
				}
				samples, err := measure.Trace(req, engine, rng)
				results <- result{idx: j.idx, samples: samples, err: err}
			}
		}()
	}

	for i, feedback := range grid {
		jobs <- job{idx: i, feedback: feedback}
	}
	close(jobs)

	wg.Wait()
	close(results)

	series := make([]TraceSeries, len(grid))
	for i, feedback := range grid {
		series[i].Feedback = feedback
	}
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		series[res.idx].Samples = res.samples
		series[res.idx].Frames = res.frames
	}
	return series, nil
}
