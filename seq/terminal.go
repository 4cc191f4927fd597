package seq

import "iter"

// Terminal operations consume (part of) a sequence and return a plain value.
// Each reports the sequence's fault, if one occurs before the answer is known.

// ToSlice collects all remaining elements of s.
func ToSlice[T any](s Seq[T]) ([]T, error) {
	var out []T
	for s.Next() {
		out = append(out, s.Current())
	}
	return out, s.Err()
}

// First returns the first element of s, pulling exactly once.
func First[T any](s Seq[T]) (T, bool, error) {
	return pull(s)
}

// Single returns the only element of s. It reports ok=false when s has no
// element or more than one, and pulls at most twice.
func Single[T any](s Seq[T]) (T, bool, error) {
	var zero T
	v, ok, err := pull(s)
	if !ok {
		return zero, false, err
	}
	if _, more, err := pull(s); more || err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Count returns the number of remaining elements in s.
func Count[T any](s Seq[T]) (int, error) {
	return CountFunc(s, func(T) bool { return true })
}

// CountFunc returns the number of remaining elements in s that satisfy pred.
func CountFunc[T any](s Seq[T], pred func(T) bool) (int, error) {
	n := 0
	for s.Next() {
		if pred(s.Current()) {
			n++
		}
	}
	return n, s.Err()
}

// Any reports whether s has at least one element.
func Any[T any](s Seq[T]) (bool, error) {
	_, ok, err := pull(s)
	return ok, err
}

// AnyFunc reports whether some element of s satisfies pred. It stops pulling
// at the first such element.
func AnyFunc[T any](s Seq[T], pred func(T) bool) (bool, error) {
	for s.Next() {
		if pred(s.Current()) {
			return true, nil
		}
	}
	return false, s.Err()
}

// All reports whether every element of s satisfies pred. It stops pulling at
// the first element that does not.
func All[T any](s Seq[T], pred func(T) bool) (bool, error) {
	found, err := AnyFunc(s, func(v T) bool { return !pred(v) })
	return !found && err == nil, err
}

// None reports whether no element of s satisfies pred.
func None[T any](s Seq[T], pred func(T) bool) (bool, error) {
	found, err := AnyFunc(s, pred)
	return !found && err == nil, err
}

// IsEmpty reports whether s has no elements.
func IsEmpty[T any](s Seq[T]) (bool, error) {
	ok, err := Any(s)
	return !ok && err == nil, err
}

// Contains reports whether s contains v.
func Contains[T comparable](s Seq[T], v T) (bool, error) {
	return AnyFunc(s, func(e T) bool { return e == v })
}

// Fold combines the elements of s from left to right, starting with initial.
func Fold[T, R any](s Seq[T], initial R, op func(R, T) R) (R, error) {
	acc := initial
	for s.Next() {
		acc = op(acc, s.Current())
	}
	return acc, s.Err()
}

// Iter adapts s to a range-over-func iterator. A fault is delivered as a final
// pair with a zero value and the error.
//
//	for v, err := range seq.Iter(s) {
//		if err != nil {
//			return err
//		}
//		...
//	}
func Iter[T any](s Seq[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for s.Next() {
			if !yield(s.Current(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
