package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jward/tactic"
	"github.com/jward/tactic/internal/store"
)

// ErrMismatch is reported for an exhaustive run whose result count differs
// from the case's Want.
var ErrMismatch = errors.New("result count mismatch")

// Runner runs suites and records their runs.
type Runner struct {
	store    *store.Store
	parallel int
	repeat   int
	bound    tactic.Bound
	opts     []tactic.Option
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore persists runs to s. Without a store runs are only reported.
func WithStore(s *store.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithParallel sets how many cases run at once. Values below 1 mean 1.
func WithParallel(n int) Option {
	return func(r *Runner) { r.parallel = max(n, 1) }
}

// WithRepeat runs every case n times.
func WithRepeat(n int) Option {
	return func(r *Runner) { r.repeat = max(n, 1) }
}

// WithBound sets the search bound. The default is tactic.Exhaustive; result
// counts are checked only under it.
func WithBound(b tactic.Bound) Option {
	return func(r *Runner) { r.bound = b }
}

// WithSearchOptions passes opts to every case's driver.
func WithSearchOptions(opts ...tactic.Option) Option {
	return func(r *Runner) { r.opts = append(r.opts, opts...) }
}

// WithLogger sets the runner's logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner returns a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{parallel: 1, repeat: 1, bound: tactic.Exhaustive, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report lists the runs of one suite in case order, repeats adjacent.
type Report struct {
	Suite string
	Runs  []store.Run
}

// job is one run of one case.
type job struct {
	c   Case
	run store.Run
	err error
}

// Run runs every case of suite using a three-phase pipeline:
//
//	Phase A (serial):   Expand cases and repeats into jobs with run IDs.
//	Phase B (parallel): Drive each job's search, recording into a batch.
//	Phase C (serial):   Commit the batch and collect case errors.
//
// Faults, cancellations and result count mismatches do not stop the other
// cases. They are recorded with their runs and the first is returned.
func (r *Runner) Run(ctx context.Context, suite Suite) (*Report, error) {
	// ---- Phase A: Serial job preparation ----
	jobs := make([]*job, 0, len(suite.Cases)*r.repeat)
	for _, c := range suite.Cases {
		for range r.repeat {
			jobs = append(jobs, &job{c: c, run: store.Run{
				ID:       uuid.NewString(),
				Suite:    suite.Name,
				Case:     c.Name,
				Strategy: c.Strategy,
				Bound:    r.bound.String(),
			}})
		}
	}
	report := &Report{Suite: suite.Name}
	if len(jobs) == 0 {
		return report, nil
	}

	r.logger.InfoContext(ctx, "suite started",
		slog.String("suite", suite.Name),
		slog.Int("cases", len(suite.Cases)),
		slog.Int("jobs", len(jobs)),
		slog.Int("parallel", r.parallel),
	)

	// ---- Phase B: Parallel searches ----
	var batch *store.BatchedStore
	if r.store != nil {
		batch = store.NewBatchedStore(r.store)
	}

	var g errgroup.Group
	g.SetLimit(r.parallel)
	for _, j := range jobs {
		g.Go(func() error {
			// Each job owns its context and records its own error, so one
			// failing case never cancels the others.
			j.err = r.runJob(ctx, j)
			if batch != nil {
				return batch.InsertRun(&j.run)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("suite %s: record runs: %w", suite.Name, err)
	}

	// ---- Phase C: Serial commit ----
	if batch != nil {
		if err := r.store.CommitBatch(batch); err != nil {
			return nil, fmt.Errorf("suite %s: %w", suite.Name, err)
		}
	}

	var errs []error
	for _, j := range jobs {
		report.Runs = append(report.Runs, j.run)
		if j.err != nil {
			errs = append(errs, fmt.Errorf("case %s: %w", j.c.Name, j.err))
		}
	}

	r.logger.InfoContext(ctx, "suite finished",
		slog.String("suite", suite.Name),
		slog.Int("runs", len(report.Runs)),
		slog.Int("errors", len(errs)),
	)
	if len(errs) > 0 {
		return report, fmt.Errorf("suite %s had %d error(s): %w", suite.Name, len(errs), errs[0])
	}
	return report, nil
}

// runJob drives one job's search and fills in its run record.
func (r *Runner) runJob(ctx context.Context, j *job) error {
	j.run.StartedAt = time.Now()
	res, err := j.c.run(ctx, r.bound, r.opts)

	j.run.Outcome = outcome(res, err)
	if res != nil {
		j.run.Results = res.results
		j.run.Pulls = res.pulls
		j.run.Stop = string(res.stop)
		j.run.Sample = res.sample
		j.run.Duration = res.elapsed
		j.run.FirstResult = res.firstResult
	}
	if err == nil && j.c.Want != Unchecked && r.bound == tactic.Exhaustive &&
		res.stop == tactic.StopExhausted && res.results != j.c.Want {
		err = fmt.Errorf("%w: got %d, want %d", ErrMismatch, res.results, j.c.Want)
	}
	if err != nil {
		j.run.Fault = err.Error()
		r.logger.WarnContext(ctx, "case failed",
			slog.String("case", j.c.Name),
			slog.String("outcome", j.run.Outcome),
			slog.String("error", err.Error()),
		)
		return err
	}

	r.logger.DebugContext(ctx, "case finished",
		slog.String("case", j.c.Name),
		slog.Int("results", j.run.Results),
		slog.Int("pulls", j.run.Pulls),
		slog.Duration("elapsed", j.run.Duration),
	)
	return nil
}
