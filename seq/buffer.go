package seq

// Buffer memoises the elements of a source sequence so that they can be read
// through any number of independent cursors. The source is pulled lazily, at
// most once per element, by whichever cursor first needs that element.
//
// A Buffer is not safe for concurrent use.
type Buffer[T any] struct {
	src   Seq[T]
	items []T
	done  bool
	err   error
}

// NewBuffer returns a Buffer over src. Creating the buffer does not pull src.
func NewBuffer[T any](src Seq[T]) *Buffer[T] {
	return &Buffer[T]{src: src}
}

// Seq returns a new cursor positioned before the first buffered element.
func (b *Buffer[T]) Seq() Seq[T] {
	i := 0
	return FromFunc(func() (T, bool, error) {
		v, ok, err := b.at(i)
		if ok {
			i++
		}
		return v, ok, err
	})
}

// Len returns the number of elements pulled from the source so far.
func (b *Buffer[T]) Len() int { return len(b.items) }

// Done reports whether the source has been exhausted or has faulted.
func (b *Buffer[T]) Done() bool { return b.done }

func (b *Buffer[T]) at(i int) (T, bool, error) {
	for i >= len(b.items) {
		if b.done {
			var zero T
			return zero, false, b.err
		}
		v, ok, err := pull(b.src)
		if !ok {
			b.done, b.err, b.src = true, err, nil
			continue
		}
		b.items = append(b.items, v)
	}
	return b.items[i], true, nil
}
