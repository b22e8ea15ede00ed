package table

import (
	"fmt"

	"fortio.org/safecast"
)

// MaxIndex is the first insertion index that can no longer be represented.
// Indices at or beyond it are reserved; allocating one is a capacity error.
const MaxIndex uint32 = 0xFFFF_FF00

// Key is implemented by every domain handle (ast.Expr, types.Ty, ...).
// Keys store index+1, so the zero value never comes out of an arena and
// is only meaningful for the arena that produced it.
type Key interface {
	~uint32
}

// FromIndex builds a key from a zero-based insertion index.
// Panics when index is negative or at/above MaxIndex.
func FromIndex[K Key](index int) K {
	idx, err := safecast.Conv[uint32](index)
	if err != nil {
		panic(fmt.Errorf("table: key index %d: %w", index, err))
	}
	if idx >= MaxIndex {
		panic(fmt.Sprintf("table: key index %d exceeds capacity %d", index, MaxIndex))
	}
	return K(idx + 1)
}

// AsIndex maps a key back to its zero-based insertion index.
func AsIndex[K Key](key K) int {
	if key == 0 {
		panic("table: invalid (zero) key")
	}
	return int(uint32(key) - 1)
}
