package store

import "time"

// Run is one persisted search: a benchmark case driven to its bound.
type Run struct {
	ID           string
	Suite        string
	Case         string
	Strategy     string
	StrategyHash string
	Bound        string
	Results      int
	Pulls        int
	Stop         string
	Outcome      string
	Fault        string
	// Sample holds the display form of the first few results.
	Sample      []string
	Duration    time.Duration
	FirstResult time.Duration
	StartedAt   time.Time
}

// RunFilter selects runs. Zero fields match everything.
type RunFilter struct {
	Suite   string
	Case    string
	Outcome string
	Limit   int
}

// Summary aggregates the runs of one suite case.
type Summary struct {
	Suite       string
	Case        string
	Runs        int
	Faults      int
	MeanResults float64
	MeanPulls   float64
	MeanTime    time.Duration
	MinTime     time.Duration
	MaxTime     time.Duration
}
