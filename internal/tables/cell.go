package tables

import "fmt"

// cell guards one sub-arena. Writers take exclusive access for the duration
// of a single insertion; any other access while it is held means the calling
// code re-entered the same domain and panics instead of corrupting state.
type cell[T any] struct {
	name  string
	value T
	busy  bool
}

func (c *cell[T]) write(fn func(*T)) {
	if c.busy {
		panic(fmt.Sprintf("tables: %s arena re-entered during insertion", c.name))
	}
	c.busy = true
	defer func() { c.busy = false }()
	fn(&c.value)
}

func (c *cell[T]) read() *T {
	if c.busy {
		panic(fmt.Sprintf("tables: %s arena read during insertion", c.name))
	}
	return &c.value
}
