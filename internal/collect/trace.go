package collect

import (
	"fmt"

	"chromatin/internal/model"
	"chromatin/internal/sim"
)

// TraceRecorder samples the lattice composition once per stride ticks,
// stamping each sample with lattice time (one unit per sweep of N
// attempted conversions).
type TraceRecorder struct {
	sites   int
	stride  int
	tick    int
	samples []model.TraceSample
}

func NewTraceRecorder(sites, stride int) (*TraceRecorder, error) {
	if sites <= 0 {
		return nil, fmt.Errorf("invalid site count: %d", sites)
	}
	if stride <= 0 {
		return nil, fmt.Errorf("invalid sampling stride: %d", stride)
	}
	return &TraceRecorder{sites: sites, stride: stride}, nil
}

func (r *TraceRecorder) Observe(c sim.Counts) {
	t := r.tick
	r.tick++
	if t%r.stride != 0 {
		return
	}
	gap, ok := c.Gap()
	r.samples = append(r.samples, model.TraceSample{
		Tick:       t,
		Time:       float64(t+1) / float64(r.sites),
		Acetylated: c.Acetylated,
		Unmodified: c.Unmodified,
		Methylated: c.Methylated,
		Delta:      c.Delta(),
		Gap:        gap,
		GapValid:   ok,
	})
}

func (r *TraceRecorder) Samples() []model.TraceSample {
	return append([]model.TraceSample(nil), r.samples...)
}

func (r *TraceRecorder) SampleCount() int {
	return len(r.samples)
}

// MeanGap averages the asymmetry over the samples that carried a
// modified mark; ok is false when no sample did.
func (r *TraceRecorder) MeanGap() (float64, bool) {
	var sum float64
	var n int
	for _, s := range r.samples {
		if s.GapValid {
			sum += s.Gap
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
