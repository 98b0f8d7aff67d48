package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// DefaultPowerLawExponent is the decay exponent for distance-weighted
// recruitment, P(d) proportional to d^-1.5.
const DefaultPowerLawExponent = 1.5

// RecruiterSelector picks the nucleosome whose mark drives a feedback
// conversion attempt on the target site. The verdict is false when the
// attempt recruits nobody with a usable mark, in which case the tick
// leaves the lattice unchanged.
type RecruiterSelector interface {
	Name() string
	Recruit(st *State, target int, rng *rand.Rand) (Mark, bool)
}

func verdict(m Mark) (Mark, bool) {
	if m == Unmodified {
		return 0, false
	}
	return m, true
}

func consensusVerdict(a, b Mark) (Mark, bool) {
	if a != b || a == Unmodified {
		return 0, false
	}
	return a, true
}

// GlobalSelector recruits uniformly across the whole lattice. In the
// cooperative form two independent recruiters must carry the same
// non-neutral mark.
type GlobalSelector struct {
	cooperative bool
}

func NewGlobalSelector(cooperative bool) *GlobalSelector {
	return &GlobalSelector{cooperative: cooperative}
}

func (s *GlobalSelector) Name() string { return "global" }

func (s *GlobalSelector) Cooperative() bool { return s.cooperative }

func (s *GlobalSelector) Recruit(st *State, target int, rng *rand.Rand) (Mark, bool) {
	first := st.Mark(rng.Intn(st.Len()))
	if !s.cooperative {
		return verdict(first)
	}
	second := st.Mark(rng.Intn(st.Len()))
	return consensusVerdict(first, second)
}

// NeighborSelector recruits one of the two adjacent sites with equal
// probability, wrapping around the circular lattice.
type NeighborSelector struct {
	cooperative bool
}

func NewNeighborSelector(cooperative bool) *NeighborSelector {
	return &NeighborSelector{cooperative: cooperative}
}

func (s *NeighborSelector) Name() string { return "neighbor" }

func (s *NeighborSelector) Cooperative() bool { return s.cooperative }

func (s *NeighborSelector) Recruit(st *State, target int, rng *rand.Rand) (Mark, bool) {
	first := st.Mark(s.pick(st, target, rng))
	if !s.cooperative {
		return verdict(first)
	}
	second := st.Mark(s.pick(st, target, rng))
	return consensusVerdict(first, second)
}

func (s *NeighborSelector) pick(st *State, target int, rng *rand.Rand) int {
	n := st.Len()
	if rng.Float64() < 0.5 {
		return (target - 1 + n) % n
	}
	return (target + 1) % n
}

// PowerLawSelector recruits at a distance d drawn from a normalized
// power law over 1..sites-1, then flips a fair coin for direction.
type PowerLawSelector struct {
	cooperative bool
	exponent    float64
	cdf         []float64
}

func NewPowerLawSelector(sites int, exponent float64, cooperative bool) (*PowerLawSelector, error) {
	if err := checkSites(sites); err != nil {
		return nil, err
	}
	if exponent <= 0 {
		return nil, fmt.Errorf("invalid power-law exponent: %v (need > 0)", exponent)
	}
	weights := make([]float64, sites-1)
	var total float64
	for d := 1; d < sites; d++ {
		w := math.Pow(float64(d), -exponent)
		weights[d-1] = w
		total += w
	}
	cdf := make([]float64, len(weights))
	var acc float64
	for i, w := range weights {
		acc += w / total
		cdf[i] = acc
	}
	cdf[len(cdf)-1] = 1
	return &PowerLawSelector{cooperative: cooperative, exponent: exponent, cdf: cdf}, nil
}

func (s *PowerLawSelector) Name() string { return "power-law" }

func (s *PowerLawSelector) Cooperative() bool { return s.cooperative }

func (s *PowerLawSelector) Recruit(st *State, target int, rng *rand.Rand) (Mark, bool) {
	first := st.Mark(s.pick(st, target, rng))
	if !s.cooperative {
		return verdict(first)
	}
	second := st.Mark(s.pick(st, target, rng))
	return consensusVerdict(first, second)
}

func (s *PowerLawSelector) pick(st *State, target int, rng *rand.Rand) int {
	n := st.Len()
	d := sort.SearchFloat64s(s.cdf, rng.Float64()) + 1
	if d >= n {
		d = n - 1
	}
	if rng.Float64() < 0.5 {
		return (target + d) % n
	}
	return (target - d + n) % n
}

// DistanceDistribution reports the sampling probability of each
// recruitment distance 1..sites-1.
func (s *PowerLawSelector) DistanceDistribution() []float64 {
	probs := make([]float64, len(s.cdf))
	prev := 0.0
	for i, c := range s.cdf {
		probs[i] = c - prev
		prev = c
	}
	return probs
}

// ParseSelector resolves a recruitment model name to a selector bound
// to a lattice of the given size.
func ParseSelector(name string, sites int, cooperative bool) (RecruiterSelector, error) {
	switch name {
	case "", "global":
		return NewGlobalSelector(cooperative), nil
	case "neighbor", "nearest-neighbor":
		return NewNeighborSelector(cooperative), nil
	case "power-law", "powerlaw":
		return NewPowerLawSelector(sites, DefaultPowerLawExponent, cooperative)
	default:
		return nil, fmt.Errorf("unsupported recruitment model: %s", name)
	}
}
