package tactic

import (
	"github.com/jward/tactic/seq"
)

// EventHandler receives strategy evaluation events. Enter fires when the
// sequence of an evaluation is first pulled and returns the Call that
// receives the rest of that evaluation's events.
//
// Handlers are called on the evaluating goroutine and must not retain the
// values they are passed beyond the call unless those values are immutable.
type EventHandler interface {
	Enter(d Decl, input any) Call
}

// Call receives the events of one evaluation. Every pull of its sequence is
// bracketed by Pull and then either Yield, when the pull produced an output,
// or Leave, when the sequence ended. Evaluations entered between Pull and the
// matching Yield or Leave are nested inside this one. A sequence the
// consumer abandons never reports Leave.
type Call interface {
	Pull()
	Yield(output any)
	Leave(produced int, err error)
}

// Traced is implemented by contexts that carry an EventHandler. Every
// strategy built by this package reports its evaluations to the handler of a
// Traced context.
type Traced interface {
	EventHandler() EventHandler
}

type observed[C, T, R any] struct {
	Strategy[C, T, R]
	h EventHandler
}

// Observe returns s with its evaluations reported to h. Nested strategies are
// reported only if the context is Traced.
func Observe[C, T, R any](h EventHandler, s Strategy[C, T, R]) Strategy[C, T, R] {
	if h == nil {
		return s
	}
	return observed[C, T, R]{Strategy: s, h: h}
}

func (o observed[C, T, R]) Eval(ctx C, input T) seq.Seq[R] {
	return observe(o.h, o.Strategy, input, o.Strategy.Eval(ctx, input))
}

func observe[T, R any](h EventHandler, d Decl, input T, s seq.Seq[R]) seq.Seq[R] {
	var call Call
	produced := 0
	return seq.FromFunc(func() (R, bool, error) {
		if call == nil {
			call = h.Enter(d, input)
		}
		call.Pull()
		if s.Next() {
			v := s.Current()
			produced++
			call.Yield(v)
			return v, true, nil
		}
		err := s.Err()
		call.Leave(produced, err)
		var zero R
		return zero, false, err
	})
}

// evaluate is the common Eval path of every strategy in this package: the
// body runs on first pull, and the evaluation is reported to the context's
// handler when it has one.
func evaluate[C, T, R any](d Decl, ctx C, input T, body func() seq.Seq[R]) seq.Seq[R] {
	s := seq.Defer(body)
	if tr, ok := any(ctx).(Traced); ok {
		if h := tr.EventHandler(); h != nil {
			return observe(h, d, input, s)
		}
	}
	return s
}
