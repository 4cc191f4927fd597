package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jward/tactic"
	"github.com/jward/tactic/trace"
)

// searchTracing holds the evaluation handlers one command's search reports
// to, as selected by the trace section of the config.
type searchTracing struct {
	rec   *trace.Recorder
	stats *trace.Stats
	log   *trace.Logger
	otel  *trace.OTel
	tp    *sdktrace.TracerProvider
}

func newSearchTracing(ctx context.Context) (*searchTracing, error) {
	t := &searchTracing{}
	if cfg.Trace.Dump != "" {
		t.rec = trace.NewRecorder()
	}
	if cfg.Trace.Stats {
		t.stats = trace.NewStats()
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.log = trace.NewLogger(logger)
	}
	if cfg.Trace.Spans == "stdout" {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create span exporter: %w", err)
		}
		t.tp = sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exporter),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		t.otel = trace.NewOTel(ctx, t.tp)
	}
	return t, nil
}

// handler returns the handler to install in the search context, or nil when
// nothing is traced.
func (t *searchTracing) handler() tactic.EventHandler {
	var hs []tactic.EventHandler
	if t.rec != nil {
		hs = append(hs, t.rec)
	}
	if t.stats != nil {
		hs = append(hs, t.stats)
	}
	if t.log != nil {
		hs = append(hs, t.log)
	}
	if t.otel != nil {
		hs = append(hs, t.otel)
	}
	switch len(hs) {
	case 0:
		return nil
	case 1:
		return hs[0]
	}
	return trace.Multi(hs...)
}

// options returns the driver options for span export.
func (t *searchTracing) options() []tactic.Option {
	if t.tp == nil {
		return nil
	}
	return []tactic.Option{tactic.WithTracerProvider(t.tp)}
}

// statsResult returns the per-strategy statistics, if collected.
func (t *searchTracing) statsResult() []CLIStat {
	if t.stats == nil {
		return nil
	}
	return toCLIStats(t.stats.Snapshot())
}

// finish ends abandoned spans, flushes the exporter and writes the call tree
// dump.
func (t *searchTracing) finish(ctx context.Context) error {
	var errs []error
	if t.otel != nil {
		t.otel.Close()
	}
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	if t.rec != nil {
		errs = append(errs, writeDump(cfg.Trace.Dump, t.rec))
	}
	return errors.Join(errs...)
}

func writeDump(path string, rec *trace.Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trace dump: %w", err)
	}
	if err := rec.WriteYAML(f); err != nil {
		f.Close()
		return fmt.Errorf("trace dump: %w", err)
	}
	return f.Close()
}
