package tactic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jward/tactic/seq"
)

// state is the mutable context used across the package tests.
type state struct {
	log     []string
	handler EventHandler
}

func (s *state) EventHandler() EventHandler { return s.handler }

type intStrategy = Strategy[*state, int, int]

// values yields vs regardless of input.
func values(vs ...int) intStrategy {
	return Func("values", func(*state, int) seq.Seq[int] { return seq.Of(vs...) })
}

// counted wraps s and counts how often it is evaluated (pulled the first
// time).
func counted(s intStrategy) (intStrategy, *int) {
	n := 0
	return Func(Print(s), func(ctx *state, in int) seq.Seq[int] {
		n++
		return s.Eval(ctx, in)
	}), &n
}

// exploding panics if it is ever evaluated.
func exploding(t *testing.T) intStrategy {
	return Func("explode", func(*state, int) seq.Seq[int] {
		t.Fatalf("strategy evaluated")
		return nil
	})
}

var double = Lift("double", func(_ *state, v int) int { return v * 2 })

// decrement yields input-1 while input is positive.
var decrement = Func("dec", func(_ *state, v int) seq.Seq[int] {
	if v <= 0 {
		return seq.Empty[int]()
	}
	return seq.Of(v - 1)
})

func eval[R any](t *testing.T, s Strategy[*state, int, R], in int) []R {
	t.Helper()
	out, err := seq.ToSlice(s.Eval(&state{}, in))
	require.NoError(t, err)
	return out
}
