package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"

	"rill/internal/source"
	"rill/internal/tables"
	"rill/internal/trace"
)

// Cursor is a position in the source plus the tables parsed nodes go into.
// It is a small value: copying it forks the parse, assigning a copy back
// commits the fork.
type Cursor struct {
	text   string
	pos    int
	file   source.FileID
	tables *tables.Tables
	tracer trace.Tracer
	span   uint64
}

// NewCursor starts at the beginning of text.
func NewCursor(text string, t *tables.Tables, opts Options) Cursor {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	return Cursor{
		text:   text,
		file:   opts.File,
		tables: t,
		tracer: tracer,
	}
}

func (c Cursor) Tables() *tables.Tables { return c.tables }

// Rest is the unconsumed input.
func (c Cursor) Rest() string { return c.text[c.pos:] }

func (c Cursor) AtEnd() bool { return c.pos >= len(c.text) }

func (c Cursor) Offset() uint32 {
	off, err := safecast.Conv[uint32](c.pos)
	if err != nil {
		panic(err)
	}
	return off
}

// Fork returns an independent copy; nothing the fork does is visible here
// until Commit.
func (c Cursor) Fork() Cursor { return c }

func (c *Cursor) Commit(fork Cursor) { *c = fork }

// SpanFrom covers the input consumed since start.
func (c Cursor) SpanFrom(start uint32) source.Span {
	return source.Span{File: c.file, Start: start, End: c.Offset()}
}

func (c Cursor) here() source.Span {
	return c.SpanFrom(c.Offset())
}

// SkipTrivia drops whitespace and `--` line comments.
func (c *Cursor) SkipTrivia() {
	for c.pos < len(c.text) {
		rest := c.text[c.pos:]
		if strings.HasPrefix(rest, "--") {
			nl := strings.IndexByte(rest, '\n')
			if nl < 0 {
				c.pos = len(c.text)
				return
			}
			c.pos += nl + 1
			continue
		}
		r, size := utf8.DecodeRuneInString(rest)
		if !unicode.IsSpace(r) {
			return
		}
		c.pos += size
	}
}

// Shift consumes one character.
func (c *Cursor) Shift() (rune, error) {
	if c.AtEnd() {
		return 0, &Error{Kind: UnexpectedEndOfInput, At: c.here()}
	}
	r, size := utf8.DecodeRuneInString(c.text[c.pos:])
	c.pos += size
	return r, nil
}

// ShiftIf consumes one character only when pred accepts it.
func (c *Cursor) ShiftIf(pred func(rune) bool) (rune, bool) {
	fork := c.Fork()
	r, err := fork.Shift()
	if err != nil || !pred(r) {
		return 0, false
	}
	c.Commit(fork)
	return r, true
}

// Expect skips trivia and consumes exactly ch.
func (c *Cursor) Expect(ch rune) error {
	c.SkipTrivia()
	fork := c.Fork()
	r, err := fork.Shift()
	if err != nil {
		return err
	}
	if r != ch {
		return &Error{Kind: ExpectedChar, Char: ch, At: fork.SpanFrom(c.Offset())}
	}
	c.Commit(fork)
	return nil
}

// Peek returns the next character without consuming it.
func (c Cursor) Peek() (rune, bool) {
	if c.AtEnd() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(c.text[c.pos:])
	return r, true
}

// Accumulate skips trivia and returns the longest run that starts with a
// character accepted by start and continues with characters accepted by cont.
// A missing first character, end of input included, is ExpectedToken(desc).
func (c *Cursor) Accumulate(start, cont func(rune) bool, desc string) (string, error) {
	c.SkipTrivia()
	from := c.pos
	if _, ok := c.ShiftIf(start); !ok {
		return "", &Error{Kind: ExpectedToken, Token: desc, At: c.here()}
	}
	for {
		if _, ok := c.ShiftIf(cont); !ok {
			break
		}
	}
	return c.text[from:c.pos], nil
}

func (c Cursor) point(name, detail string) {
	trace.Point(c.tracer, trace.ScopeNode, c.span, name, detail)
}
