package table

import "iter"

// Arena is append-only storage addressed by keys of type K.
// Stored values never change and keys never invalidate.
type Arena[K Key, V any] struct {
	data []V
}

// NewArena creates an arena whose backing slice is preallocated with capHint.
// capHint is only a hint; zero is allowed.
func NewArena[K Key, V any](capHint uint) *Arena[K, V] {
	return &Arena[K, V]{
		data: make([]V, 0, capHint),
	}
}

// Add appends value and returns the key of its slot (pre-insertion length).
func (a *Arena[K, V]) Add(value V) K {
	key := FromIndex[K](len(a.data))
	a.data = append(a.data, value)
	return key
}

// Data returns the value stored under key.
// A key from another arena is a programming error and may panic.
func (a *Arena[K, V]) Data(key K) V {
	return a.data[AsIndex(key)]
}

func (a *Arena[K, V]) Len() int {
	return len(a.data)
}

// All yields every key/value pair in insertion order.
func (a *Arena[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i, v := range a.data {
			if !yield(FromIndex[K](i), v) {
				return
			}
		}
	}
}
