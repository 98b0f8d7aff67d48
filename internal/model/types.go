package model

// VersionedRecord tags persisted data with its schema and codec versions.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type RunConfig struct {
	Sites         int       `json:"sites"`
	Selector      string    `json:"selector"`
	Cooperative   bool      `json:"cooperative"`
	Regime        string    `json:"regime"`
	Feedback      float64   `json:"feedback,omitempty"`
	FeedbackGrid  []float64 `json:"feedback_grid,omitempty"`
	Ticks         int       `json:"ticks"`
	Equilibration int       `json:"equilibration"`
	Runs          int       `json:"runs"`
	Seed          int64     `json:"seed"`
	Workers       int       `json:"workers"`
}

type RunRecord struct {
	VersionedRecord
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	Profile      string     `json:"profile,omitempty"`
	CreatedAtUTC string     `json:"created_at_utc"`
	Config       RunConfig  `json:"config"`
	Summary      RunSummary `json:"summary"`
}

type RunSummary struct {
	Points       int     `json:"points,omitempty"`
	Variants     int     `json:"variants,omitempty"`
	MeanLifetime float64 `json:"mean_lifetime,omitempty"`
	MeanGap      float64 `json:"mean_gap,omitempty"`
	Samples      int64   `json:"samples,omitempty"`
}

// CurvePoint is one feedback value on a sweep curve with per-run
// measurements indexed by run number.
type CurvePoint struct {
	Feedback     float64   `json:"feedback"`
	MeanLifetime float64   `json:"mean_lifetime,omitempty"`
	MeanGap      float64   `json:"mean_gap"`
	RunLifetimes []float64 `json:"run_lifetimes,omitempty"`
	RunGaps      []float64 `json:"run_gaps,omitempty"`
}

// TraceSample is one stride-sampled snapshot of the lattice composition.
type TraceSample struct {
	Tick       int     `json:"tick"`
	Time       float64 `json:"time"`
	Acetylated int     `json:"acetylated"`
	Unmodified int     `json:"unmodified"`
	Methylated int     `json:"methylated"`
	Delta      int     `json:"delta"`
	Gap        float64 `json:"gap"`
	GapValid   bool    `json:"gap_valid"`
}

// Variant names one selector/cooperativity/regime combination in a
// comparison sweep.
type Variant struct {
	Name        string `json:"name"`
	Selector    string `json:"selector"`
	Cooperative bool   `json:"cooperative"`
	Regime      string `json:"regime"`
}

type DistributionBin struct {
	Delta       int     `json:"delta"`
	Probability float64 `json:"probability"`
}

// DistributionRecord is a normalized M-A histogram for one variant at
// one feedback value, merged over the runs that produced it.
type DistributionRecord struct {
	VersionedRecord
	RunID    string            `json:"run_id"`
	Variant  string            `json:"variant"`
	Feedback float64           `json:"feedback"`
	Samples  int64             `json:"samples"`
	Bins     []DistributionBin `json:"bins"`
}
