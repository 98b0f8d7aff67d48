package collect

import (
	"fmt"

	"chromatin/internal/sim"
)

// DistributionAccumulator histograms the methylation excess M-A,
// sampling one composition per stride ticks. Counts accumulate across
// runs; StartRun only rewinds the stride clock.
type DistributionAccumulator struct {
	stride int
	tick   int
	counts map[int]int64
	total  int64
}

func NewDistributionAccumulator(stride int) (*DistributionAccumulator, error) {
	if stride <= 0 {
		return nil, fmt.Errorf("invalid sampling stride: %d", stride)
	}
	return &DistributionAccumulator{stride: stride, counts: make(map[int]int64)}, nil
}

// StartRun resets the stride clock for a fresh trajectory.
func (d *DistributionAccumulator) StartRun() {
	d.tick = 0
}

func (d *DistributionAccumulator) Observe(c sim.Counts) {
	if d.tick%d.stride == 0 {
		d.counts[c.Delta()]++
		d.total++
	}
	d.tick++
}

// Merge folds another accumulator's samples into this one.
func (d *DistributionAccumulator) Merge(other *DistributionAccumulator) {
	for delta, n := range other.counts {
		d.counts[delta] += n
	}
	d.total += other.total
}

func (d *DistributionAccumulator) Total() int64 {
	return d.total
}

// Counts returns a copy of the raw histogram.
func (d *DistributionAccumulator) Counts() map[int]int64 {
	out := make(map[int]int64, len(d.counts))
	for delta, n := range d.counts {
		out[delta] = n
	}
	return out
}

// PMF normalizes the histogram to probabilities, empty when nothing
// was sampled.
func (d *DistributionAccumulator) PMF() map[int]float64 {
	out := make(map[int]float64, len(d.counts))
	if d.total == 0 {
		return out
	}
	for delta, n := range d.counts {
		out[delta] = float64(n) / float64(d.total)
	}
	return out
}

// Normalize rescales a histogram so its mass sums to 1. Normalizing an
// already normalized histogram leaves it unchanged; an empty or
// massless histogram comes back empty.
func Normalize(pmf map[int]float64) map[int]float64 {
	var mass float64
	for _, p := range pmf {
		mass += p
	}
	out := make(map[int]float64, len(pmf))
	if mass == 0 {
		return out
	}
	for delta, p := range pmf {
		out[delta] = p / mass
	}
	return out
}
