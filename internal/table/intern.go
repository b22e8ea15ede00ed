package table

// Intern is a hash-consing arena: structurally equal values share one key.
// Keys are handed out in order of first distinct insertion.
type Intern[K Key, V comparable] struct {
	values []V
	index  map[V]K
}

// NewIntern constructs an empty intern table sized for capHint distinct values.
func NewIntern[K Key, V comparable](capHint uint) *Intern[K, V] {
	return &Intern[K, V]{
		values: make([]V, 0, capHint),
		index:  make(map[V]K, capHint),
	}
}

// Add returns the existing key for value, or stores it under a fresh key.
func (in *Intern[K, V]) Add(value V) K {
	if key, ok := in.index[value]; ok {
		return key
	}
	key := FromIndex[K](len(in.values))
	in.values = append(in.values, value)
	in.index[value] = key
	return key
}

// Lookup returns the key of value without inserting it.
func (in *Intern[K, V]) Lookup(value V) (K, bool) {
	key, ok := in.index[value]
	return key, ok
}

// Data returns the canonical value stored under key.
func (in *Intern[K, V]) Data(key K) V {
	return in.values[AsIndex(key)]
}

func (in *Intern[K, V]) Len() int {
	return len(in.values)
}
