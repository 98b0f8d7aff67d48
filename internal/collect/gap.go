package collect

import (
	"fmt"

	"chromatin/internal/sim"
)

// GapAccumulator averages the asymmetry |M-A|/(M+A) over a fixed
// observation window. Ticks with no modified mark contribute nothing
// to the sum, but the score still divides by the full window length.
type GapAccumulator struct {
	window int
	sum    float64
	valid  int
}

func NewGapAccumulator(window int) (*GapAccumulator, error) {
	if window < 0 {
		return nil, fmt.Errorf("invalid observation window: %d", window)
	}
	return &GapAccumulator{window: window}, nil
}

func (g *GapAccumulator) Observe(c sim.Counts) {
	if gap, ok := c.Gap(); ok {
		g.sum += gap
		g.valid++
	}
}

// Score is the windowed mean asymmetry, 0 for an empty window.
func (g *GapAccumulator) Score() float64 {
	if g.window == 0 {
		return 0
	}
	return g.sum / float64(g.window)
}

// ValidSamples counts the observed ticks that carried a modified mark.
func (g *GapAccumulator) ValidSamples() int {
	return g.valid
}

func (g *GapAccumulator) Window() int {
	return g.window
}
