// Package seq provides pull-based lazy sequences, the result type of every
// strategy evaluation.
//
// A [Seq] is positioned before its first element when created. Each call to
// Next performs at most the work needed to produce one element; nothing is
// computed ahead of the consumer and nothing is buffered unless the caller
// asks for it with [NewBuffer].
//
// # States
//
// Every sequence built by this package is an explicit state machine:
//
//	not-started --Next--> ready --Next--> ready ... --Next--> exhausted
//	                        \                          \
//	                         `--------------------------`--> faulted
//
// An exhausted sequence is the normal way a search branch fails. A faulted
// sequence carries an error (see Err) and signals a broken evaluation, not
// an empty result. Both terminal states are sticky.
//
// Sequences are single-use: once consumed they cannot be replayed. Use
// [NewBuffer] to read the same elements through several cursors.
package seq

import (
	"errors"
	"fmt"
)

// Seq is an ordered, possibly infinite, single-use sequence of values.
//
// The usual consumption loop is:
//
//	for s.Next() {
//		v := s.Current()
//		...
//	}
//	if err := s.Err(); err != nil {
//		...
//	}
type Seq[T any] interface {
	// Next advances to the next element and reports whether there is one.
	// It returns false when the sequence is exhausted or faulted.
	Next() bool

	// Current returns the element produced by the last successful Next.
	// It panics with ErrNoCurrent when the sequence is not positioned on
	// an element.
	Current() T

	// Err returns the fault that ended the sequence, or nil.
	Err() error
}

// ErrNoCurrent is the panic value of Current when the sequence is positioned
// before its first element or past its last.
var ErrNoCurrent = errors.New("seq: not positioned on an element")

// Done is returned by a Generate supplier to signal the end of the sequence.
var Done = errors.New("seq: done")

// StepFunc computes the next element of a sequence. It returns ok=false once
// the sequence is exhausted, or a non-nil error to fault it.
type StepFunc[T any] func() (v T, ok bool, err error)

type state uint8

const (
	stateNotStarted state = iota
	stateReady
	stateExhausted
	stateFaulted
)

func (s state) String() string {
	switch s {
	case stateNotStarted:
		return "not-started"
	case stateReady:
		return "ready"
	case stateExhausted:
		return "exhausted"
	case stateFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// stepSeq drives a StepFunc through the sequence state machine.
type stepSeq[T any] struct {
	step  StepFunc[T]
	state state
	cur   T
	err   error
}

// FromFunc returns a sequence whose elements are computed by step, one call
// per Next. The step function is released once the sequence ends.
func FromFunc[T any](step StepFunc[T]) Seq[T] {
	return &stepSeq[T]{step: step}
}

func (s *stepSeq[T]) Next() bool {
	if s.state == stateExhausted || s.state == stateFaulted {
		return false
	}
	v, ok, err := s.step()
	var zero T
	if err != nil {
		s.state, s.err, s.cur, s.step = stateFaulted, err, zero, nil
		return false
	}
	if !ok {
		s.state, s.cur, s.step = stateExhausted, zero, nil
		return false
	}
	s.state, s.cur = stateReady, v
	return true
}

func (s *stepSeq[T]) Current() T {
	if s.state != stateReady {
		panic(ErrNoCurrent)
	}
	return s.cur
}

func (s *stepSeq[T]) Err() error { return s.err }

func (s *stepSeq[T]) String() string { return "seq(" + s.state.String() + ")" }

// pull advances s once and returns its element.
func pull[T any](s Seq[T]) (T, bool, error) {
	if s.Next() {
		return s.Current(), true, nil
	}
	var zero T
	return zero, false, s.Err()
}

// --- Constructors ---

type emptySeq[T any] struct{}

func (emptySeq[T]) Next() bool     { return false }
func (emptySeq[T]) Current() T     { panic(ErrNoCurrent) }
func (emptySeq[T]) Err() error     { return nil }
func (emptySeq[T]) String() string { return "seq(empty)" }

// Empty returns a sequence without elements: the canonical failed result.
func Empty[T any]() Seq[T] {
	return emptySeq[T]{}
}

type faultSeq[T any] struct{ err error }

func (faultSeq[T]) Next() bool       { return false }
func (faultSeq[T]) Current() T       { panic(ErrNoCurrent) }
func (f faultSeq[T]) Err() error     { return f.err }
func (f faultSeq[T]) String() string { return "seq(fault: " + f.err.Error() + ")" }

// Fault returns a sequence that produces no elements and reports err.
// A nil err yields an empty sequence.
func Fault[T any](err error) Seq[T] {
	if err == nil {
		return Empty[T]()
	}
	return faultSeq[T]{err: err}
}

// Of returns a sequence of the given values.
func Of[T any](values ...T) Seq[T] {
	if len(values) == 0 {
		return Empty[T]()
	}
	return FromSlice(values)
}

// FromSlice returns a sequence over the elements of values. The slice is not
// copied.
func FromSlice[T any](values []T) Seq[T] {
	i := 0
	return FromFunc(func() (T, bool, error) {
		if i >= len(values) {
			var zero T
			return zero, false, nil
		}
		v := values[i]
		i++
		return v, true, nil
	})
}

// Generate returns a sequence of values produced by supplier. The supplier
// returns Done to end the sequence; any other error faults it.
func Generate[T any](supplier func() (T, error)) Seq[T] {
	return FromFunc(func() (T, bool, error) {
		v, err := supplier()
		if errors.Is(err, Done) {
			var zero T
			return zero, false, nil
		}
		if err != nil {
			var zero T
			return zero, false, err
		}
		return v, true, nil
	})
}

// Defer returns a sequence that calls fn on the first Next and then yields
// the elements of the sequence fn returned. Constructing a deferred sequence
// performs no work.
func Defer[T any](fn func() Seq[T]) Seq[T] {
	var inner Seq[T]
	return FromFunc(func() (T, bool, error) {
		if inner == nil {
			inner = fn()
			fn = nil
			if inner == nil {
				inner = Empty[T]()
			}
		}
		return pull(inner)
	})
}

// Resume returns a sequence that yields s's current element followed by the
// remaining elements of s. It is used after peeking at s with Next.
func Resume[T any](s Seq[T]) Seq[T] {
	head := s.Current()
	started := false
	return FromFunc(func() (T, bool, error) {
		if !started {
			started = true
			return head, true, nil
		}
		return pull(s)
	})
}

// Recover returns a sequence that converts a panic raised while pulling s into
// a fault. The handler maps the recovered value to the reported error.
func Recover[T any](s Seq[T], handler func(r any) error) Seq[T] {
	return FromFunc(func() (v T, ok bool, err error) {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				v, ok, err = zero, false, handler(r)
			}
		}()
		return pull(s)
	})
}
