// Package bench runs completeness and timing suites through the search
// driver and persists every run to the store.
//
// A Suite is a list of Cases. Each Case drives one strategy to a bound from
// a freshly prepared context, so cases never share mutable state and may run
// concurrently.
package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/jward/tactic"
)

// sampleSize is the number of results kept, in display form, with each run.
const sampleSize = 5

// Unchecked is the Want of a case whose result count is not verified.
const Unchecked = -1

// Suite is a named list of cases.
type Suite struct {
	Name  string
	Cases []Case
}

// Case is one benchmark search.
type Case struct {
	Name string
	// Strategy is the printed form of the strategy the case drives.
	Strategy string
	// Want is the expected number of results of an exhaustive search, or
	// Unchecked.
	Want int

	run func(ctx context.Context, bound tactic.Bound, opts []tactic.Option) (*caseResult, error)
}

// Setup prepares one run of a case: a fresh strategy context and the
// inputs. release, when non-nil, is called once the run has ended.
type Setup[C, T any] func(ctx context.Context) (c C, inputs []T, release func(), err error)

// caseResult is what a run reports back to the runner.
type caseResult struct {
	results     int
	pulls       int
	stop        tactic.StopReason
	sample      []string
	elapsed     time.Duration
	firstResult time.Duration
}

// NewCase returns a case that drives s over the context and inputs
// produced by setup.
func NewCase[C, T, R any](name string, s tactic.Strategy[C, T, R], setup Setup[C, T], want int) Case {
	return Case{
		Name:     name,
		Strategy: tactic.Print(s),
		Want:     want,
		run: func(ctx context.Context, bound tactic.Bound, opts []tactic.Option) (*caseResult, error) {
			c, inputs, release, err := setup(ctx)
			if err != nil {
				return nil, fmt.Errorf("setup: %w", err)
			}
			if release != nil {
				defer release()
			}
			res, err := tactic.NewDriver(s, opts...).Search(ctx, c, bound, inputs...)
			if res == nil {
				return nil, err
			}
			out := &caseResult{
				results:     len(res.Values),
				pulls:       res.Pulls,
				stop:        res.Stop,
				elapsed:     res.Elapsed,
				firstResult: res.FirstResult,
			}
			for _, v := range res.Values[:min(len(res.Values), sampleSize)] {
				out.sample = append(out.sample, fmt.Sprint(v))
			}
			return out, err
		},
	}
}

// outcome classifies a finished run the way the driver's metrics do.
func outcome(res *caseResult, err error) string {
	switch {
	case err != nil && res != nil && res.stop == tactic.StopCanceled:
		return tactic.OutcomeCanceled
	case err != nil:
		return tactic.OutcomeFault
	case res.results == 0:
		return tactic.OutcomeNoResults
	}
	return tactic.OutcomeFound
}
