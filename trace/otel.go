package trace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/jward/tactic"
)

const otelScope = "tactic.trace"

// OTel reports each evaluation as an OpenTelemetry span. A span starts when
// its sequence is first pulled and is parented on the evaluation whose pull
// was in progress at that moment, or on the span in the context passed to
// NewOTel.
type OTel struct {
	root    context.Context
	tracer  oteltrace.Tracer
	pulling stack[*otelCall]
	open    map[*otelCall]struct{}
}

// NewOTel returns a span-emitting handler. Spans of evaluations the search
// abandons stay open until Close.
func NewOTel(ctx context.Context, tp oteltrace.TracerProvider) *OTel {
	return &OTel{
		root:   ctx,
		tracer: tp.Tracer(otelScope),
		open:   make(map[*otelCall]struct{}),
	}
}

// Enter implements tactic.EventHandler.
func (o *OTel) Enter(d tactic.Decl, input any) tactic.Call {
	parent := o.root
	if p, ok := o.pulling.top(); ok {
		parent = p.ctx
	}
	ctx, span := o.tracer.Start(parent, "tactic.Eval",
		oteltrace.WithAttributes(
			attribute.String("strategy", Label(d)),
			attribute.String("strategy.name", d.Name()),
			attribute.String("input", Value(input)),
		),
	)
	c := &otelCall{o: o, ctx: ctx, span: span}
	o.open[c] = struct{}{}
	return c
}

// Close ends the spans of abandoned evaluations, marking them as such.
func (o *OTel) Close() {
	for c := range o.open {
		c.span.SetAttributes(attribute.Bool("abandoned", true))
		c.span.End()
	}
	clear(o.open)
	o.pulling = nil
}

type otelCall struct {
	o    *OTel
	ctx  context.Context
	span oteltrace.Span
}

func (c *otelCall) Pull() { c.o.pulling.push(c) }

func (c *otelCall) Yield(v any) {
	c.o.pulling.pop(c)
	c.span.AddEvent("yield", oteltrace.WithAttributes(attribute.String("output", Value(v))))
}

func (c *otelCall) Leave(produced int, err error) {
	c.o.pulling.pop(c)
	c.span.SetAttributes(attribute.Int("produced", produced))
	if err != nil {
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, "faulted")
	}
	c.span.End()
	delete(c.o.open, c)
}
