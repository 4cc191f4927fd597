package tactic

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrArityMismatch reports a parameterised strategy applied to the wrong
	// number of arguments.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrArgumentType reports a parameterised strategy applied to an argument
	// of the wrong type.
	ErrArgumentType = errors.New("argument type mismatch")

	// ErrPanic wraps a panic recovered during evaluation.
	ErrPanic = errors.New("panic during evaluation")
)

// maxInputLen bounds the input text quoted in an EvalError message.
const maxInputLen = 120

// EvalError is a fault raised while evaluating a strategy: something is
// broken, as opposed to the strategy finding no result. It records the
// innermost strategy that faulted and the input it was evaluating.
type EvalError struct {
	Strategy string
	Input    any
	Err      error
}

func (e *EvalError) Error() string {
	in := fmt.Sprintf("%v", e.Input)
	if utf8.RuneCountInString(in) > maxInputLen {
		in = string([]rune(in)[:maxInputLen]) + "..."
	}
	return fmt.Sprintf("strategy %s faulted on input %s: %v", e.Strategy, in, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

// faultWrapper returns a function that attributes a fault to d evaluating
// input. A fault already attributed to an inner strategy is kept as is.
func faultWrapper(d Decl, input any) func(error) error {
	return func(err error) error {
		var ee *EvalError
		if errors.As(err, &ee) {
			return err
		}
		return &EvalError{Strategy: Print(d), Input: input, Err: err}
	}
}

// panicFault converts a recovered panic into a fault attributed to d.
func panicFault(d Decl, input any) func(r any) error {
	return func(r any) error {
		var err error
		if e, ok := r.(error); ok {
			err = fmt.Errorf("%w: %w", ErrPanic, e)
		} else {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		return faultWrapper(d, input)(err)
	}
}
