package sim

import (
	"errors"
	"math/rand"
)

// StepEngine advances a lattice one attempted conversion at a time,
// splitting each tick between recruited feedback and unrecruited noise.
type StepEngine struct {
	selector RecruiterSelector
	rule     TransitionRule
}

func NewStepEngine(selector RecruiterSelector, rule TransitionRule) (*StepEngine, error) {
	if selector == nil {
		return nil, errors.New("nil recruiter selector")
	}
	return &StepEngine{selector: selector, rule: rule}, nil
}

func (e *StepEngine) Selector() RecruiterSelector { return e.selector }

func (e *StepEngine) Rule() TransitionRule { return e.rule }

// Step performs one tick. The target site is always drawn first, then
// a coin with probability feedback/(1+feedback) routes the tick to the
// recruitment branch; otherwise the target takes a noise conversion.
func (e *StepEngine) Step(st *State, feedback float64, rng *rand.Rand) {
	alpha := feedback / (1 + feedback)
	target := rng.Intn(st.Len())
	if rng.Float64() < alpha {
		recruiter, ok := e.selector.Recruit(st, target, rng)
		if !ok {
			return
		}
		next, changed := e.rule.Apply(st.Mark(target), recruiter)
		if changed {
			st.SetMark(target, next)
		}
		return
	}
	st.SetMark(target, Noise(st.Mark(target), rng))
}

// Advance runs ticks consecutive steps.
func (e *StepEngine) Advance(st *State, feedback float64, ticks int, rng *rand.Rand) {
	for i := 0; i < ticks; i++ {
		e.Step(st, feedback, rng)
	}
}
