package seq

import "context"

// Map returns a sequence of fn applied to each element of s.
func Map[T, R any](s Seq[T], fn func(T) R) Seq[R] {
	return FromFunc(func() (R, bool, error) {
		v, ok, err := pull(s)
		if !ok {
			var zero R
			return zero, false, err
		}
		return fn(v), true, nil
	})
}

// TryMap is like Map, but fn may fault the resulting sequence.
func TryMap[T, R any](s Seq[T], fn func(T) (R, error)) Seq[R] {
	return FromFunc(func() (R, bool, error) {
		v, ok, err := pull(s)
		if !ok {
			var zero R
			return zero, false, err
		}
		r, err := fn(v)
		if err != nil {
			var zero R
			return zero, false, err
		}
		return r, true, nil
	})
}

// WrapErr returns s with its fault, if any, replaced by wrap(fault).
func WrapErr[T any](s Seq[T], wrap func(error) error) Seq[T] {
	return FromFunc(func() (T, bool, error) {
		v, ok, err := pull(s)
		if err != nil {
			err = wrap(err)
		}
		return v, ok, err
	})
}

// Filter returns the elements of s for which keep returns true.
func Filter[T any](s Seq[T], keep func(T) bool) Seq[T] {
	return FromFunc(func() (T, bool, error) {
		for {
			v, ok, err := pull(s)
			if !ok || keep(v) {
				return v, ok, err
			}
		}
	})
}

// FlatMap applies fn to each element of s and yields the elements of the
// resulting sequences depth-first: all elements produced for one element of s
// come before fn is applied to the next.
func FlatMap[T, R any](s Seq[T], fn func(T) Seq[R]) Seq[R] {
	var inner Seq[R]
	return FromFunc(func() (R, bool, error) {
		for {
			if inner != nil {
				v, ok, err := pull(inner)
				if ok || err != nil {
					return v, ok, err
				}
				inner = nil
			}
			outer, ok, err := pull(s)
			if !ok {
				var zero R
				return zero, false, err
			}
			inner = fn(outer)
			if inner == nil {
				inner = Empty[R]()
			}
		}
	})
}

// Flatten concatenates a sequence of sequences, in order.
func Flatten[T any](s Seq[Seq[T]]) Seq[T] {
	return FlatMap(s, func(inner Seq[T]) Seq[T] { return inner })
}

// Concat yields the elements of each sequence in turn. A sequence is not
// pulled until all sequences before it are exhausted; a fault in any of them
// ends the concatenation.
func Concat[T any](seqs ...Seq[T]) Seq[T] {
	i := 0
	return FromFunc(func() (T, bool, error) {
		for i < len(seqs) {
			v, ok, err := pull(seqs[i])
			if ok || err != nil {
				return v, ok, err
			}
			i++
		}
		var zero T
		return zero, false, nil
	})
}

// Take yields at most the first n elements of s. Once n elements have been
// produced, s is never pulled again.
func Take[T any](s Seq[T], n int) Seq[T] {
	taken := 0
	return FromFunc(func() (T, bool, error) {
		if taken >= n {
			var zero T
			return zero, false, nil
		}
		v, ok, err := pull(s)
		if ok {
			taken++
		}
		return v, ok, err
	})
}

// Drop skips the first n elements of s.
func Drop[T any](s Seq[T], n int) Seq[T] {
	dropped := 0
	return FromFunc(func() (T, bool, error) {
		for dropped < n {
			if _, ok, err := pull(s); !ok {
				var zero T
				return zero, false, err
			}
			dropped++
		}
		return pull(s)
	})
}

// TakeWhile yields elements of s while pred holds, and stops at the first
// element for which it does not.
func TakeWhile[T any](s Seq[T], pred func(T) bool) Seq[T] {
	stopped := false
	return FromFunc(func() (T, bool, error) {
		var zero T
		if stopped {
			return zero, false, nil
		}
		v, ok, err := pull(s)
		if !ok {
			return zero, false, err
		}
		if !pred(v) {
			stopped = true
			return zero, false, nil
		}
		return v, true, nil
	})
}

// DropWhile skips elements of s while pred holds, then yields the rest.
func DropWhile[T any](s Seq[T], pred func(T) bool) Seq[T] {
	dropping := true
	return FromFunc(func() (T, bool, error) {
		for {
			v, ok, err := pull(s)
			if !ok {
				return v, false, err
			}
			if dropping && pred(v) {
				continue
			}
			dropping = false
			return v, true, nil
		}
	})
}

// Distinct yields each distinct element of s once, at its first occurrence.
func Distinct[T comparable](s Seq[T]) Seq[T] {
	return DistinctBy(s, func(v T) T { return v })
}

// DistinctBy yields the elements of s whose key has not been seen before.
func DistinctBy[T any, K comparable](s Seq[T], key func(T) K) Seq[T] {
	seen := make(map[K]struct{})
	return Filter(s, func(v T) bool {
		k := key(v)
		if _, ok := seen[k]; ok {
			return false
		}
		seen[k] = struct{}{}
		return true
	})
}

// Peek calls fn with every element as it is pulled through.
func Peek[T any](s Seq[T], fn func(T)) Seq[T] {
	return Map(s, func(v T) T {
		fn(v)
		return v
	})
}

// WithContext returns s faulted with ctx.Err() as soon as ctx is done. The
// context is checked before each pull of s.
func WithContext[T any](ctx context.Context, s Seq[T]) Seq[T] {
	return FromFunc(func() (T, bool, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, false, err
		}
		return pull(s)
	})
}
