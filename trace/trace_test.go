package trace_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gopkg.in/yaml.v3"

	"github.com/jward/tactic"
	"github.com/jward/tactic/seq"
	"github.com/jward/tactic/trace"
)

// env is a Traced context.
type env struct {
	h tactic.EventHandler
}

func (e *env) EventHandler() tactic.EventHandler { return e.h }

type intStrategy = tactic.Strategy[*env, int, int]

var (
	inc    = tactic.Lift("inc", func(_ *env, v int) int { return v + 1 })
	double = tactic.Lift("double", func(_ *env, v int) int { return v * 2 })
	fail   = tactic.Fail[*env, int, int]()
)

func run(t *testing.T, h tactic.EventHandler, s intStrategy, in int) []int {
	t.Helper()
	out, err := seq.ToSlice(s.Eval(&env{h: h}, in))
	require.NoError(t, err)
	return out
}

// =============================================================================
// Recorder
// =============================================================================

func TestRecorder_CallTree(t *testing.T) {
	t.Parallel()
	rec := trace.NewRecorder()
	out := run(t, rec, tactic.Seq(inc, double), 1)
	assert.Equal(t, []int{4}, out)

	roots := rec.Calls()
	require.Len(t, roots, 1)
	top := roots[0]
	assert.Equal(t, "inc; double", top.Strategy)
	assert.Equal(t, "1", top.Input)
	assert.Equal(t, []string{"4"}, top.Outputs)
	assert.Equal(t, trace.StatusSucceeded, top.Status)

	require.Len(t, top.Calls, 2)
	assert.Equal(t, "inc", top.Calls[0].Strategy)
	assert.Equal(t, []string{"2"}, top.Calls[0].Outputs)
	assert.Equal(t, "double", top.Calls[1].Strategy)
	assert.Equal(t, "2", top.Calls[1].Input)
	assert.Equal(t, trace.StatusSucceeded, top.Calls[1].Status)
}

func TestRecorder_FailedAndFaulted(t *testing.T) {
	t.Parallel()
	rec := trace.NewRecorder()
	assert.Equal(t, []int{6}, run(t, rec, tactic.Or(fail, double), 3))

	top := rec.Calls()[0]
	require.Len(t, top.Calls, 2)
	assert.Equal(t, trace.StatusFailed, top.Calls[0].Status)
	assert.Equal(t, trace.StatusSucceeded, top.Calls[1].Status)

	rec.Reset()
	assert.Empty(t, rec.Calls())

	broken := tactic.Fault[*env, int, int]("broken", errors.New("boom"))
	_, err := seq.ToSlice(broken.Eval(&env{h: rec}, 1))
	require.Error(t, err)
	require.Len(t, rec.Calls(), 1)
	assert.Equal(t, trace.StatusFaulted, rec.Calls()[0].Status)
	assert.Contains(t, rec.Calls()[0].Error, "boom")
}

func TestRecorder_Abandoned(t *testing.T) {
	t.Parallel()
	rec := trace.NewRecorder()
	s := tactic.Build[*env, int](1, 2, 3)
	out, err := seq.ToSlice(seq.Take(s.Eval(&env{h: rec}, 0), 1))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, out)
	assert.Equal(t, trace.StatusAbandoned, rec.Calls()[0].Status)
}

func TestRecorder_MaxOutputs(t *testing.T) {
	t.Parallel()
	rec := trace.NewRecorder(trace.WithMaxOutputs(2))
	run(t, rec, tactic.Build[*env, int](1, 2, 3, 4), 0)
	assert.Equal(t, []string{"1", "2"}, rec.Calls()[0].Outputs)
	assert.Equal(t, 4, rec.Calls()[0].Produced)
}

func TestRecorder_WriteYAML(t *testing.T) {
	t.Parallel()
	rec := trace.NewRecorder()
	run(t, rec, tactic.Seq(inc, double), 1)

	var buf bytes.Buffer
	require.NoError(t, rec.WriteYAML(&buf))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "inc; double", decoded[0]["strategy"])
	assert.Equal(t, "succeeded", decoded[0]["status"])
	assert.Len(t, decoded[0]["calls"], 2)
}

// =============================================================================
// Stats
// =============================================================================

func TestStats(t *testing.T) {
	t.Parallel()
	st := trace.NewStats()
	run(t, st, tactic.Repeat(tactic.Seq(tactic.Assert("pos", func(_ *env, v int) bool { return v > 0 }), tactic.Lift("dec", func(_ *env, v int) int { return v - 1 }))), 3)

	byName := map[string]trace.StrategyStats{}
	for _, s := range st.Snapshot() {
		byName[s.Strategy] = s
	}
	// 3, 2, 1 pass the guard; 0 does not.
	assert.Equal(t, 4, byName["pos"].Calls)
	assert.Equal(t, 3, byName["pos"].Outputs)
	assert.Equal(t, 3, byName["dec"].Calls)
	assert.Equal(t, 1, byName["repeat"].Calls)
	assert.Zero(t, byName["dec"].Faults)
}

// =============================================================================
// OTel
// =============================================================================

func TestOTel_SpansNestUnderPullingParent(t *testing.T) {
	t.Parallel()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	h := trace.NewOTel(context.Background(), tp)

	run(t, h, tactic.Seq(inc, double), 1)
	h.Close()

	spans := sr.Ended()
	require.Len(t, spans, 3)
	byStrategy := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range spans {
		for _, kv := range s.Attributes() {
			if kv.Key == "strategy" {
				byStrategy[kv.Value.AsString()] = s
			}
		}
	}
	top := byStrategy["inc; double"]
	require.NotNil(t, top)
	assert.Equal(t, top.SpanContext().SpanID(), byStrategy["inc"].Parent().SpanID())
	assert.Equal(t, top.SpanContext().SpanID(), byStrategy["double"].Parent().SpanID())
}

func TestOTel_CloseEndsAbandoned(t *testing.T) {
	t.Parallel()
	sr := tracetest.NewSpanRecorder()
	h := trace.NewOTel(context.Background(), sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))

	s := tactic.Build[*env, int](1, 2)
	_, _, err := seq.First(s.Eval(&env{h: h}, 0))
	require.NoError(t, err)
	assert.Empty(t, sr.Ended())

	h.Close()
	assert.Len(t, sr.Ended(), 1)
}

// =============================================================================
// Logger and Multi
// =============================================================================

func TestLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	run(t, trace.NewLogger(l), tactic.Seq(inc, double), 1)

	out := buf.String()
	assert.Contains(t, out, `msg=enter strategy="inc; double" depth=0`)
	assert.Contains(t, out, "msg=enter strategy=inc depth=1")
	assert.Contains(t, out, "msg=yield strategy=double depth=1 output=4")
}

func TestMulti(t *testing.T) {
	t.Parallel()
	rec := trace.NewRecorder()
	st := trace.NewStats()
	run(t, trace.Multi(rec, st, trace.Nop{}), tactic.Or(fail, inc), 1)
	assert.Len(t, rec.Calls(), 1)
	assert.Len(t, st.Snapshot(), 3)
}

func TestLabel_Truncates(t *testing.T) {
	t.Parallel()
	long := tactic.Lift("x", func(_ *env, v int) int { return v })
	s := tactic.Pipeline(long, long, long, long, long, long, long, long, long, long,
		long, long, long, long, long, long, long, long, long, long,
		long, long, long, long, long, long, long, long, long, long)
	assert.LessOrEqual(t, len([]rune(trace.Label(s))), 83)
	assert.Equal(t, "3", trace.Value(3))
}
