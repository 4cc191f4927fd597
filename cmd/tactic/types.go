package main

import (
	"fmt"

	"github.com/jward/tactic"
	"github.com/jward/tactic/internal/store"
	"github.com/jward/tactic/internal/syntax"
	"github.com/jward/tactic/trace"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command  string         `json:"command"`
	Results  any            `json:"results"`
	Search   *CLISearch     `json:"search,omitempty"`
	Stats    []CLIStat      `json:"stats,omitempty"`
	Bindings map[string]any `json:"bindings,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// CLISearch describes how a search ended.
type CLISearch struct {
	Strategy      string  `json:"strategy"`
	Bound         string  `json:"bound"`
	Results       int     `json:"results"`
	Pulls         int     `json:"pulls"`
	Stop          string  `json:"stop"`
	ElapsedMS     float64 `json:"elapsed_ms"`
	FirstResultMS float64 `json:"first_result_ms"`
}

// CLINode is a JSON-friendly syntax node.
type CLINode struct {
	File   string `json:"file"`
	Kind   string `json:"kind"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text"`
}

// CLIRun is a JSON-friendly persisted run.
type CLIRun struct {
	ID            string   `json:"id"`
	Suite         string   `json:"suite"`
	Case          string   `json:"case"`
	StrategyHash  string   `json:"strategy_hash,omitempty"`
	Bound         string   `json:"bound"`
	Results       int      `json:"results"`
	Pulls         int      `json:"pulls"`
	Stop          string   `json:"stop"`
	Outcome       string   `json:"outcome"`
	Fault         string   `json:"fault,omitempty"`
	Sample        []string `json:"sample,omitempty"`
	DurationMS    float64  `json:"duration_ms"`
	FirstResultMS float64  `json:"first_result_ms"`
	StartedAt     string   `json:"started_at"`
}

// CLISummary is a JSON-friendly per-case summary.
type CLISummary struct {
	Suite       string  `json:"suite"`
	Case        string  `json:"case"`
	Runs        int     `json:"runs"`
	Faults      int     `json:"faults"`
	MeanResults float64 `json:"mean_results"`
	MeanPulls   float64 `json:"mean_pulls"`
	MeanMS      float64 `json:"mean_ms"`
	MinMS       float64 `json:"min_ms"`
	MaxMS       float64 `json:"max_ms"`
}

// CLIStat is a JSON-friendly per-strategy timing line.
type CLIStat struct {
	Strategy string  `json:"strategy"`
	Calls    int     `json:"calls"`
	Pulls    int     `json:"pulls"`
	Outputs  int     `json:"outputs"`
	Faults   int     `json:"faults"`
	TimeMS   float64 `json:"time_ms"`
}

// --- Conversion helpers ---

const nodeTextMax = 60

func toCLINode(n syntax.Node) CLINode {
	return CLINode{
		File:   n.Document().Path(),
		Kind:   n.Kind(),
		Line:   n.Line(),
		Column: n.Column(),
		Text:   n.Summary(nodeTextMax),
	}
}

func toCLISearch[R any](strategy string, bound tactic.Bound, res *tactic.Result[R]) *CLISearch {
	return &CLISearch{
		Strategy:      strategy,
		Bound:         bound.String(),
		Results:       len(res.Values),
		Pulls:         res.Pulls,
		Stop:          string(res.Stop),
		ElapsedMS:     float64(res.Elapsed.Microseconds()) / 1000,
		FirstResultMS: float64(res.FirstResult.Microseconds()) / 1000,
	}
}

func toCLIRun(r *store.Run) CLIRun {
	return CLIRun{
		ID:            r.ID,
		Suite:         r.Suite,
		Case:          r.Case,
		StrategyHash:  r.StrategyHash,
		Bound:         r.Bound,
		Results:       r.Results,
		Pulls:         r.Pulls,
		Stop:          r.Stop,
		Outcome:       r.Outcome,
		Fault:         r.Fault,
		Sample:        r.Sample,
		DurationMS:    float64(r.Duration.Microseconds()) / 1000,
		FirstResultMS: float64(r.FirstResult.Microseconds()) / 1000,
		StartedAt:     r.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func toCLISummary(s *store.Summary) CLISummary {
	return CLISummary{
		Suite:       s.Suite,
		Case:        s.Case,
		Runs:        s.Runs,
		Faults:      s.Faults,
		MeanResults: s.MeanResults,
		MeanPulls:   s.MeanPulls,
		MeanMS:      float64(s.MeanTime.Microseconds()) / 1000,
		MinMS:       float64(s.MinTime.Microseconds()) / 1000,
		MaxMS:       float64(s.MaxTime.Microseconds()) / 1000,
	}
}

func toCLIStats(stats []trace.StrategyStats) []CLIStat {
	out := make([]CLIStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, CLIStat{
			Strategy: s.Strategy,
			Calls:    s.Calls,
			Pulls:    s.Pulls,
			Outputs:  s.Outputs,
			Faults:   s.Faults,
			TimeMS:   float64(s.Time.Microseconds()) / 1000,
		})
	}
	return out
}

// displayValue renders a script output for text output.
func displayValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
