package diag

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a limit.
type Bag struct {
	items   []Diagnostic
	max     uint16
	dropped int
	// droppedErrors counts errors that never made it into items.
	droppedErrors int
}

// NewBag panics when max does not fit the limit type; callers validate
// user-supplied limits first.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil {
		panic(fmt.Errorf("diagnostic limit %d: %w", max, err))
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   limit,
	}
}

// Add returns false once the limit is reached and d is counted as dropped.
// A full bag still takes an error by evicting its newest non-error entry.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) < int(b.max) {
		b.items = append(b.items, d)
		return true
	}
	b.dropped++
	if !d.Severity.IsError() {
		return false
	}
	for i := len(b.items) - 1; i >= 0; i-- {
		if !b.items[i].Severity.IsError() {
			b.items[i] = d
			return true
		}
	}
	b.droppedErrors++
	return false
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// Dropped reports how many diagnostics were rejected by the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// DroppedErrors reports how many error diagnostics the limit rejected.
func (b *Bag) DroppedErrors() int {
	return b.droppedErrors
}

// HasErrors counts dropped errors too, so a tight limit never hides a failure.
func (b *Bag) HasErrors() bool {
	if b.droppedErrors > 0 {
		return true
	}
	for i := range b.items {
		if b.items[i].Severity.IsError() {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the backing slice; do not modify it.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends everything from other, growing the limit when needed.
func (b *Bag) Merge(other *Bag) {
	total := len(b.items) + len(other.items)
	if total > int(b.max) {
		if limit, err := safecast.Conv[uint16](total); err == nil {
			b.max = limit
		}
	}
	for _, d := range other.items {
		b.Add(d)
	}
	b.dropped += other.dropped
	b.droppedErrors += other.droppedErrors
}

// Sort orders by file, start, end, severity (desc) and code so output is
// deterministic across parallel runs.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
