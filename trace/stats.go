package trace

import (
	"sort"
	"time"

	"github.com/jward/tactic"
)

// StrategyStats are the accumulated statistics of one strategy.
type StrategyStats struct {
	Strategy string
	Calls    int
	Pulls    int
	Outputs  int
	Faults   int
	// Time is the wall time spent inside pulls of this strategy, including
	// the strategies it pulled from.
	Time time.Duration
}

// Stats accumulates timing statistics per strategy name.
type Stats struct {
	byName map[string]*StrategyStats
}

// NewStats returns an empty Stats handler.
func NewStats() *Stats {
	return &Stats{byName: make(map[string]*StrategyStats)}
}

// Enter implements tactic.EventHandler.
func (s *Stats) Enter(d tactic.Decl, _ any) tactic.Call {
	name := d.Name()
	st, ok := s.byName[name]
	if !ok {
		st = &StrategyStats{Strategy: name}
		s.byName[name] = st
	}
	st.Calls++
	return &statsCall{st: st}
}

// Snapshot returns the statistics sorted by descending time.
func (s *Stats) Snapshot() []StrategyStats {
	out := make([]StrategyStats, 0, len(s.byName))
	for _, st := range s.byName {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time > out[j].Time
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out
}

type statsCall struct {
	st    *StrategyStats
	since time.Time
}

func (c *statsCall) Pull() {
	c.st.Pulls++
	c.since = time.Now()
}

func (c *statsCall) Yield(any) {
	c.st.Outputs++
	c.st.Time += time.Since(c.since)
}

func (c *statsCall) Leave(_ int, err error) {
	if err != nil {
		c.st.Faults++
	}
	c.st.Time += time.Since(c.since)
}
