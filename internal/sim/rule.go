package sim

import (
	"fmt"
	"math/rand"
)

// Regime restricts which recruited conversions the feedback branch may
// perform.
type Regime uint8

const (
	// RegimeFull allows both recruited modification and recruited
	// demodification.
	RegimeFull Regime = iota
	// RegimeModifyOnly allows recruited conversions out of the
	// unmodified state only.
	RegimeModifyOnly
	// RegimeDemodifyOnly allows recruited conversions into the
	// unmodified state only.
	RegimeDemodifyOnly
)

func (r Regime) String() string {
	switch r {
	case RegimeFull:
		return "full"
	case RegimeModifyOnly:
		return "modify-only"
	case RegimeDemodifyOnly:
		return "demodify-only"
	default:
		return fmt.Sprintf("Regime(%d)", uint8(r))
	}
}

// ParseRegime resolves a regime name, treating the empty string as the
// full two-step rule.
func ParseRegime(name string) (Regime, error) {
	switch name {
	case "", "full":
		return RegimeFull, nil
	case "modify", "modify-only":
		return RegimeModifyOnly, nil
	case "demodify", "demodify-only":
		return RegimeDemodifyOnly, nil
	default:
		return 0, fmt.Errorf("unsupported regime: %s", name)
	}
}

// TransitionRule maps a recruiter's mark onto a conversion of the
// target site.
type TransitionRule struct {
	regime Regime
}

func NewTransitionRule(regime Regime) TransitionRule {
	return TransitionRule{regime: regime}
}

func (t TransitionRule) Regime() Regime { return t.regime }

// Apply returns the target's next mark under recruitment by recruiter.
// The bool is false when the regime has no conversion for the pair, in
// which case the target keeps its mark.
func (t TransitionRule) Apply(target, recruiter Mark) (Mark, bool) {
	modify := t.regime == RegimeFull || t.regime == RegimeModifyOnly
	demodify := t.regime == RegimeFull || t.regime == RegimeDemodifyOnly
	switch recruiter {
	case Methylated:
		if target == Acetylated && demodify {
			return Unmodified, true
		}
		if target == Unmodified && modify {
			return Methylated, true
		}
	case Acetylated:
		if target == Methylated && demodify {
			return Unmodified, true
		}
		if target == Unmodified && modify {
			return Acetylated, true
		}
	}
	return target, false
}

// Noise draws one spontaneous conversion. The unmodified state moves
// to either modified state with probability 1/3 each; a modified state
// falls back to unmodified with probability 1/3.
func Noise(target Mark, rng *rand.Rand) Mark {
	r := rng.Float64()
	switch target {
	case Acetylated:
		if r < 1.0/3.0 {
			return Unmodified
		}
	case Unmodified:
		if r < 1.0/3.0 {
			return Acetylated
		}
		if r < 2.0/3.0 {
			return Methylated
		}
	case Methylated:
		if r < 1.0/3.0 {
			return Unmodified
		}
	}
	return target
}
