package tactic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jward/tactic/seq"
)

// Bound limits how many results a search collects.
type Bound struct {
	n int // 0 means unbounded
}

var (
	// FirstOnly stops at the first result.
	FirstOnly = Bound{n: 1}
	// Exhaustive enumerates every result. The strategy's output must be
	// finite, or the search must carry a timeout or pull budget.
	Exhaustive = Bound{}
)

// FirstN stops after n results. n < 1 is treated as 1.
func FirstN(n int) Bound {
	return Bound{n: max(n, 1)}
}

// Limit returns the result limit, or 0 when unbounded.
func (b Bound) Limit() int { return b.n }

func (b Bound) String() string {
	switch b.n {
	case 0:
		return "all"
	case 1:
		return "first"
	default:
		return fmt.Sprintf("first-%d", b.n)
	}
}

// ParseBound parses the String form of a Bound.
func ParseBound(s string) (Bound, error) {
	switch s {
	case "all", "exhaustive":
		return Exhaustive, nil
	case "first":
		return FirstOnly, nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "first-%d", &n); err != nil || n < 1 {
		return Bound{}, fmt.Errorf("invalid bound %q: want all, first or first-N", s)
	}
	return FirstN(n), nil
}

// Rollback selects what happens to context mutations made while evaluating
// one candidate input.
type Rollback uint8

const (
	// RollbackNone leaves every mutation in place, including those made on
	// branches the search abandoned or backtracked over.
	RollbackNone Rollback = iota
	// RollbackSnapshot restores the context after each candidate input.
	// The context must implement Snapshotter.
	RollbackSnapshot
)

func (r Rollback) String() string {
	if r == RollbackSnapshot {
		return "snapshot"
	}
	return "none"
}

// ParseRollback parses the String form of a Rollback.
func ParseRollback(s string) (Rollback, error) {
	switch s {
	case "", "none":
		return RollbackNone, nil
	case "snapshot":
		return RollbackSnapshot, nil
	}
	return RollbackNone, fmt.Errorf("invalid rollback policy %q: want none or snapshot", s)
}

// Snapshotter is implemented by contexts that support RollbackSnapshot.
type Snapshotter interface {
	Snapshot() any
	Restore(snapshot any)
}

// ErrNotSnapshotter is returned by Search under RollbackSnapshot when the
// context does not implement Snapshotter.
var ErrNotSnapshotter = errors.New("context does not implement Snapshotter")

// StopReason says why a search stopped pulling.
type StopReason string

const (
	StopExhausted StopReason = "exhausted" // every input's sequence ended
	StopBound     StopReason = "bound"     // the result bound was reached
	StopMaxPulls  StopReason = "max-pulls" // the pull budget ran out
	StopFault     StopReason = "fault"     // evaluation faulted
	StopCanceled  StopReason = "canceled"  // the context was canceled or timed out
)

// Result is the outcome of a search.
type Result[R any] struct {
	Values []R
	// Pulls counts calls to Next on the top-level sequences, including the
	// final call that found each one exhausted.
	Pulls int
	Stop  StopReason
	// Elapsed is the wall time of the search, FirstResult the time until the
	// first value was produced (zero if none was).
	Elapsed     time.Duration
	FirstResult time.Duration
}

// Exhausted reports whether the search enumerated every result.
func (r *Result[R]) Exhausted() bool { return r.Stop == StopExhausted }

// Found reports whether the search produced at least one value.
func (r *Result[R]) Found() bool { return len(r.Values) > 0 }

const tracerName = "tactic.driver"

type driverConfig struct {
	logger   *slog.Logger
	timeout  time.Duration
	maxPulls int
	handler  EventHandler
	rollback Rollback
	metrics  bool
	tracer   trace.Tracer
}

// Option configures a Driver.
type Option func(*driverConfig)

// WithLogger sets the logger for search start, finish and faults. The
// default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *driverConfig) { c.logger = l }
}

// WithTimeout bounds each search's wall time. A search that runs out of time
// returns the values found so far with the context's error.
func WithTimeout(d time.Duration) Option {
	return func(c *driverConfig) { c.timeout = d }
}

// WithMaxPulls bounds the number of top-level pulls per search. A search that
// exceeds it stops with StopMaxPulls and no error.
func WithMaxPulls(n int) Option {
	return func(c *driverConfig) { c.maxPulls = n }
}

// WithHandler reports evaluations of the top-level strategy to h. Nested
// strategies report to the context's handler when it is Traced.
func WithHandler(h EventHandler) Option {
	return func(c *driverConfig) { c.handler = h }
}

// WithRollback sets the context-mutation policy. The default is RollbackNone.
func WithRollback(r Rollback) Option {
	return func(c *driverConfig) { c.rollback = r }
}

// WithTracerProvider sets the provider of the search span tracer. The
// default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *driverConfig) { c.tracer = tp.Tracer(tracerName) }
}

// WithMetrics enables or disables Prometheus metrics (enabled by default).
func WithMetrics(enabled bool) Option {
	return func(c *driverConfig) { c.metrics = enabled }
}

// Driver runs a top-level strategy against candidate inputs and collects its
// results up to a bound. Pulling stops as soon as the bound is reached, so
// branches beyond it are never evaluated.
//
// A Driver may run many searches, one at a time or concurrently with
// separate contexts. A single evaluation is never split across goroutines.
type Driver[C, T, R any] struct {
	s   Strategy[C, T, R]
	cfg driverConfig
}

// NewDriver returns a Driver for s.
func NewDriver[C, T, R any](s Strategy[C, T, R], opts ...Option) *Driver[C, T, R] {
	cfg := driverConfig{logger: slog.Default(), metrics: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(tracerName)
	}
	return &Driver[C, T, R]{s: Observe(cfg.handler, s), cfg: cfg}
}

// Strategy returns the strategy the Driver runs.
func (d *Driver[C, T, R]) Strategy() Strategy[C, T, R] { return d.s }

// Search evaluates the strategy on each input in turn, under c, and collects
// results until the bound is reached or every input's sequence is exhausted.
//
// A search that finds nothing returns an empty result and a nil error. A fault
// returns the values found before it and an error wrapping an *EvalError that
// names the faulting strategy and its input.
func (d *Driver[C, T, R]) Search(ctx context.Context, c C, bound Bound, inputs ...T) (*Result[R], error) {
	name := Print(d.s)
	if d.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.timeout)
		defer cancel()
	}
	ctx, span := d.cfg.tracer.Start(ctx, "tactic.Driver.Search",
		trace.WithAttributes(
			attribute.String("strategy", name),
			attribute.String("bound", bound.String()),
			attribute.Int("inputs", len(inputs)),
		),
	)
	defer span.End()

	var snap Snapshotter
	if d.cfg.rollback == RollbackSnapshot {
		var ok bool
		if snap, ok = any(c).(Snapshotter); !ok {
			err := fmt.Errorf("search %s: %w", name, ErrNotSnapshotter)
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid rollback policy")
			return nil, err
		}
	}

	d.cfg.logger.DebugContext(ctx, "search started",
		slog.String("strategy", name),
		slog.String("bound", bound.String()),
		slog.Int("inputs", len(inputs)),
	)

	start := time.Now()
	res := &Result[R]{Stop: StopExhausted}
	err := d.run(ctx, c, bound, inputs, snap, res, start)
	res.Elapsed = time.Since(start)

	outcome := OutcomeFound
	switch {
	case err != nil && res.Stop == StopCanceled:
		outcome = OutcomeCanceled
	case err != nil:
		outcome = OutcomeFault
	case !res.Found():
		outcome = OutcomeNoResults
	}
	if d.cfg.metrics {
		recordSearch(outcome, len(res.Values), res.Pulls, res.Elapsed.Seconds())
	}
	span.SetAttributes(
		attribute.Int("results", len(res.Values)),
		attribute.Int("pulls", res.Pulls),
		attribute.String("stop", string(res.Stop)),
	)

	if err != nil {
		err = fmt.Errorf("search %s: %w", name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		d.cfg.logger.ErrorContext(ctx, "search faulted",
			slog.String("strategy", name),
			slog.String("stop", string(res.Stop)),
			slog.Int("results", len(res.Values)),
			slog.String("error", err.Error()),
		)
		return res, err
	}

	span.SetStatus(codes.Ok, outcome)
	d.cfg.logger.DebugContext(ctx, "search finished",
		slog.String("strategy", name),
		slog.String("stop", string(res.Stop)),
		slog.Int("results", len(res.Values)),
		slog.Int("pulls", res.Pulls),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

func (d *Driver[C, T, R]) run(ctx context.Context, c C, bound Bound, inputs []T, snap Snapshotter, res *Result[R], start time.Time) error {
	for _, in := range inputs {
		var saved any
		if snap != nil {
			saved = snap.Snapshot()
		}
		s := seq.Recover(seq.Defer(func() seq.Seq[R] { return d.s.Eval(c, in) }), panicFault(d.s, in))
		s = seq.WithContext(ctx, s)

		stop, err := d.drain(s, bound, res, start)
		if snap != nil {
			snap.Restore(saved)
		}
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				res.Stop = StopCanceled
			} else {
				res.Stop = StopFault
			}
			return err
		}
		if stop != "" {
			res.Stop = stop
			return nil
		}
	}
	return nil
}

// drain pulls from s until it ends or a limit is hit. It returns the reason
// when a limit stopped it.
func (d *Driver[C, T, R]) drain(s seq.Seq[R], bound Bound, res *Result[R], start time.Time) (StopReason, error) {
	for {
		if bound.n > 0 && len(res.Values) >= bound.n {
			return StopBound, nil
		}
		if d.cfg.maxPulls > 0 && res.Pulls >= d.cfg.maxPulls {
			return StopMaxPulls, nil
		}
		res.Pulls++
		if !s.Next() {
			return "", s.Err()
		}
		if len(res.Values) == 0 {
			res.FirstResult = time.Since(start)
		}
		res.Values = append(res.Values, s.Current())
	}
}

// First returns the first output of s on input, or ok=false when there is
// none.
func First[C, T, R any](ctx context.Context, s Strategy[C, T, R], c C, input T, opts ...Option) (R, bool, error) {
	var zero R
	res, err := NewDriver(s, opts...).Search(ctx, c, FirstOnly, input)
	if err != nil || !res.Found() {
		return zero, false, err
	}
	return res.Values[0], true, nil
}

// Take returns at most n outputs of s on input.
func Take[C, T, R any](ctx context.Context, s Strategy[C, T, R], c C, n int, input T, opts ...Option) ([]R, error) {
	res, err := NewDriver(s, opts...).Search(ctx, c, FirstN(n), input)
	if res == nil {
		return nil, err
	}
	return res.Values, err
}

// All returns every output of s on input.
func All[C, T, R any](ctx context.Context, s Strategy[C, T, R], c C, input T, opts ...Option) ([]R, error) {
	res, err := NewDriver(s, opts...).Search(ctx, c, Exhaustive, input)
	if res == nil {
		return nil, err
	}
	return res.Values, err
}
