package sweep

import (
	"chromatin/internal/model"
)

// DefaultSites is the lattice size used by every bundled profile.
const DefaultSites = 60

// Profile kinds name the runner a profile drives.
const (
	KindCurves       = "curves"
	KindCompare      = "compare"
	KindDistribution = "distribution"
	KindTrace        = "trace"
)

// Profile is a named, fully parameterized sweep. Tick and
// equilibration budgets marked per-site scale with the lattice size.
type Profile struct {
	Name          string
	Kind          string
	Description   string
	Sites         int
	Ticks         int
	TicksPerSite  bool
	Equilibration int
	EquilPerSite  bool
	Runs          int
	Feedbacks     []float64
	Variants      []model.Variant
}

func (p Profile) ResolveTicks() int {
	if p.TicksPerSite {
		return p.Ticks * p.Sites
	}
	return p.Ticks
}

func (p Profile) ResolveEquilibration() int {
	if p.EquilPerSite {
		return p.Equilibration * p.Sites
	}
	return p.Equilibration
}

// Config binds one variant of the profile into a runnable sweep
// configuration. Seed and workers are left for the caller.
func (p Profile) Config(variant model.Variant) model.RunConfig {
	return model.RunConfig{
		Sites:         p.Sites,
		Selector:      variant.Selector,
		Cooperative:   variant.Cooperative,
		Regime:        variant.Regime,
		FeedbackGrid:  append([]float64(nil), p.Feedbacks...),
		Ticks:         p.ResolveTicks(),
		Equilibration: p.ResolveEquilibration(),
		Runs:          p.Runs,
	}
}

func globalVariant() model.Variant {
	return model.Variant{Name: "global", Selector: "global", Cooperative: true, Regime: "full"}
}

func cooperativityVariants() []model.Variant {
	return []model.Variant{
		{Name: "cooperative", Selector: "global", Cooperative: true, Regime: "full"},
		{Name: "non-cooperative", Selector: "global", Cooperative: false, Regime: "full"},
	}
}

func spatialVariants() []model.Variant {
	return []model.Variant{
		{Name: "global", Selector: "global", Cooperative: true, Regime: "full"},
		{Name: "neighbor", Selector: "neighbor", Cooperative: true, Regime: "full"},
		{Name: "power-law", Selector: "power-law", Cooperative: true, Regime: "full"},
	}
}

// Profiles lists the bundled sweeps in presentation order.
func Profiles() []Profile {
	return []Profile{
		{
			Name:          "lifetime-curve",
			Kind:          KindCurves,
			Description:   "dominance lifetime and gap score against feedback strength",
			Sites:         DefaultSites,
			Ticks:         800000,
			Equilibration: 10,
			EquilPerSite:  true,
			Runs:          10,
			Feedbacks:     CurveGrid(),
			Variants:      []model.Variant{globalVariant()},
		},
		{
			Name:          "cooperativity",
			Kind:          KindCompare,
			Description:   "cooperative against non-cooperative recruitment across feedback",
			Sites:         DefaultSites,
			Ticks:         20000,
			TicksPerSite:  true,
			Equilibration: 10,
			EquilPerSite:  true,
			Runs:          10,
			Feedbacks:     CompareGrid(),
			Variants:      cooperativityVariants(),
		},
		{
			Name:          "spatial",
			Kind:          KindCompare,
			Description:   "recruitment range laws compared across feedback",
			Sites:         DefaultSites,
			Ticks:         30000,
			TicksPerSite:  true,
			Equilibration: 10,
			EquilPerSite:  true,
			Runs:          10,
			Feedbacks:     CompareGrid(),
			Variants:      spatialVariants(),
		},
		{
			Name:          "cooperativity-pmf",
			Kind:          KindDistribution,
			Description:   "methylation excess distribution at strong feedback",
			Sites:         DefaultSites,
			Ticks:         200000,
			TicksPerSite:  true,
			Equilibration: 10,
			EquilPerSite:  true,
			Runs:          10,
			Feedbacks:     []float64{77},
			Variants:      cooperativityVariants(),
		},
		{
			Name:          "spatial-pmf",
			Kind:          KindDistribution,
			Description:   "methylation excess distribution by recruitment law",
			Sites:         DefaultSites,
			Ticks:         50000,
			TicksPerSite:  true,
			Equilibration: 10,
			EquilPerSite:  true,
			Runs:          10,
			Feedbacks:     []float64{1, 2.6, 6, 26, 77},
			Variants:      spatialVariants(),
		},
		{
			Name:          "bistability",
			Kind:          KindTrace,
			Description:   "lattice composition traces bracketing the bistable transition",
			Sites:         DefaultSites,
			Ticks:         5000,
			TicksPerSite:  true,
			Equilibration: 10,
			Runs:          1,
			Feedbacks:     []float64{0.4, 1.0, 1.4, 2.0},
			Variants:      []model.Variant{globalVariant()},
		},
	}
}

// ProfileByName finds a bundled profile.
func ProfileByName(name string) (Profile, bool) {
	for _, p := range Profiles() {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}
