package source

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// LineCol is a 1-based line and byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (lc LineCol) String() string {
	return fmt.Sprintf("%d:%d", lc.Line, lc.Col)
}

// lineStarts returns the byte offset of every line start; the first entry is 0.
func lineStarts(content []byte) []uint32 {
	starts := []uint32{0}
	for i, b := range content {
		if b != '\n' {
			continue
		}
		off, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("line offset overflow: %w", err))
		}
		starts = append(starts, off)
	}
	return starts
}

// Position converts a byte offset into a line and column.
func (f *File) Position(off uint32) LineCol {
	starts := f.lines
	if len(starts) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	// last start that is <= off
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	line, err := safecast.Conv[uint32](i + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: line, Col: off - starts[i] + 1}
}

// Line returns the text of the 1-based line n without its newline.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.lines) {
		return ""
	}
	start := f.lines[n-1]
	end := uint32(len(f.Content)) // #nosec G115 -- Add rejects content longer than uint32
	if int(n) < len(f.lines) {
		end = f.lines[n] - 1
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	return f.Position(span.Start), f.Position(span.End)
}
