package sim

import (
	"fmt"
	"math/rand"
)

// Counts is the composition of a lattice at one instant.
type Counts struct {
	Acetylated int
	Unmodified int
	Methylated int
}

// Delta is the methylation excess M-A.
func (c Counts) Delta() int {
	return c.Methylated - c.Acetylated
}

// Gap is the asymmetry |M-A|/(M+A); ok is false when no site carries
// an A or M mark.
func (c Counts) Gap() (float64, bool) {
	marked := c.Methylated + c.Acetylated
	if marked == 0 {
		return 0, false
	}
	delta := c.Methylated - c.Acetylated
	if delta < 0 {
		delta = -delta
	}
	return float64(delta) / float64(marked), true
}

// State is the circular array of nucleosome marks for one trajectory.
// It belongs to a single goroutine; the engine mutates it in place.
// Composition counts are maintained incrementally on every write.
type State struct {
	marks  []Mark
	counts Counts
}

// NewUniformState builds a lattice with every site carrying mark.
func NewUniformState(sites int, mark Mark) (*State, error) {
	if err := checkSites(sites); err != nil {
		return nil, err
	}
	if !mark.Valid() {
		return nil, fmt.Errorf("invalid mark: %d", uint8(mark))
	}
	st := &State{marks: make([]Mark, sites)}
	for i := range st.marks {
		st.marks[i] = mark
	}
	st.recount()
	return st, nil
}

// NewRandomState builds a lattice with each site drawn uniformly from
// the three marks.
func NewRandomState(sites int, rng *rand.Rand) (*State, error) {
	if err := checkSites(sites); err != nil {
		return nil, err
	}
	st := &State{marks: make([]Mark, sites)}
	for i := range st.marks {
		st.marks[i] = Mark(rng.Intn(3))
	}
	st.recount()
	return st, nil
}

// NewStateFromMarks copies marks into a fresh lattice.
func NewStateFromMarks(marks []Mark) (*State, error) {
	if err := checkSites(len(marks)); err != nil {
		return nil, err
	}
	for i, m := range marks {
		if !m.Valid() {
			return nil, fmt.Errorf("invalid mark at site %d: %d", i, uint8(m))
		}
	}
	st := &State{marks: append([]Mark(nil), marks...)}
	st.recount()
	return st, nil
}

func (s *State) Len() int {
	return len(s.marks)
}

func (s *State) Mark(i int) Mark {
	return s.marks[i]
}

func (s *State) SetMark(i int, m Mark) {
	old := s.marks[i]
	if old == m {
		return
	}
	s.marks[i] = m
	s.adjust(old, -1)
	s.adjust(m, 1)
}

func (s *State) Counts() Counts {
	return s.counts
}

// Snapshot copies the current marks, for rendering and inspection.
func (s *State) Snapshot() []Mark {
	return append([]Mark(nil), s.marks...)
}

func (s *State) recount() {
	s.counts = Counts{}
	for _, m := range s.marks {
		s.adjust(m, 1)
	}
}

func (s *State) adjust(m Mark, by int) {
	switch m {
	case Acetylated:
		s.counts.Acetylated += by
	case Unmodified:
		s.counts.Unmodified += by
	case Methylated:
		s.counts.Methylated += by
	}
}

func checkSites(sites int) error {
	if sites < 2 {
		return fmt.Errorf("invalid site count: %d (need at least 2)", sites)
	}
	return nil
}
