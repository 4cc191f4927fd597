// Package trace provides tactic.EventHandler implementations: an in-memory
// call recorder with a YAML dump, per-strategy timing statistics,
// OpenTelemetry spans and structured logging.
//
// Handlers keep a stack of the evaluations currently being pulled, so one
// handler must observe a single search at a time.
package trace

import (
	"fmt"
	"unicode/utf8"

	"github.com/jward/tactic"
)

// maxLabel bounds the length of strategy and value labels.
const maxLabel = 80

// Nop is a handler that ignores every event.
type Nop struct{}

func (Nop) Enter(tactic.Decl, any) tactic.Call { return nopCall{} }

type nopCall struct{}

func (nopCall) Pull()            {}
func (nopCall) Yield(any)        {}
func (nopCall) Leave(int, error) {}

// Multi fans events out to several handlers.
func Multi(hs ...tactic.EventHandler) tactic.EventHandler {
	return multi(hs)
}

type multi []tactic.EventHandler

func (m multi) Enter(d tactic.Decl, input any) tactic.Call {
	calls := make(multiCall, len(m))
	for i, h := range m {
		calls[i] = h.Enter(d, input)
	}
	return calls
}

type multiCall []tactic.Call

func (m multiCall) Pull() {
	for _, c := range m {
		c.Pull()
	}
}

func (m multiCall) Yield(v any) {
	for _, c := range m {
		c.Yield(v)
	}
}

func (m multiCall) Leave(n int, err error) {
	for _, c := range m {
		c.Leave(n, err)
	}
}

// stack tracks the calls whose pull is in progress. The top is the parent of
// any call entered now.
type stack[T comparable] []T

func (s *stack[T]) push(v T) { *s = append(*s, v) }

func (s *stack[T]) top() (T, bool) {
	if len(*s) == 0 {
		var zero T
		return zero, false
	}
	return (*s)[len(*s)-1], true
}

// pop removes v and everything pulled after it. A well-nested evaluation
// always has v on top.
func (s *stack[T]) pop(v T) {
	for i := len(*s) - 1; i >= 0; i-- {
		if (*s)[i] == v {
			*s = (*s)[:i]
			return
		}
	}
}

// Label returns the printed form of d, shortened for display.
func Label(d tactic.Decl) string {
	return truncate(tactic.Print(d))
}

// Value returns the display form of a strategy input or output.
func Value(v any) string {
	return truncate(fmt.Sprintf("%v", v))
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxLabel {
		return s
	}
	return string([]rune(s)[:maxLabel]) + "..."
}
