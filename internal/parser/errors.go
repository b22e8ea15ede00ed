package parser

import (
	"fmt"
	"strconv"

	"rill/internal/diag"
	"rill/internal/source"
)

type ErrorKind uint8

const (
	// UnexpectedEndOfInput: a character was required but the input was exhausted.
	UnexpectedEndOfInput ErrorKind = iota + 1
	// ExpectedChar: a specific literal character was required.
	ExpectedChar
	// ExpectedToken: no alternative's leading token matched, or a lexeme
	// did not start with an acceptable character.
	ExpectedToken
	// NumericConversion: a digit run was lexed but does not fit the literal type.
	NumericConversion
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedEndOfInput:
		return "UnexpectedEndOfInput"
	case ExpectedChar:
		return "ExpectedChar"
	case ExpectedToken:
		return "ExpectedToken"
	case NumericConversion:
		return "NumericConversion"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is a recoverable parse failure. Only the field matching Kind is set.
type Error struct {
	Kind   ErrorKind
	Char   rune   // ExpectedChar
	Token  string // ExpectedToken
	Detail string // NumericConversion
	At     source.Span
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnexpectedEndOfInput:
		return "unexpected end of input"
	case ExpectedChar:
		return "expected " + strconv.QuoteRune(e.Char)
	case ExpectedToken:
		return "expected " + e.Token
	case NumericConversion:
		return "parse error: " + e.Detail
	default:
		return "parse error"
	}
}

func (e *Error) Code() diag.Code {
	switch e.Kind {
	case UnexpectedEndOfInput:
		return diag.SynUnexpectedEOF
	case ExpectedChar:
		return diag.SynExpectedChar
	case ExpectedToken:
		if e.Token == endOfInput {
			return diag.SynTrailingInput
		}
		return diag.SynExpectedToken
	case NumericConversion:
		return diag.SynBadNumber
	default:
		return diag.UnknownCode
	}
}

func (e *Error) Span() source.Span { return e.At }

// GrammarAmbiguity is the panic value raised when two or more alternatives
// of one rule accept the same input. It is a defect in the grammar, never a
// user error, and nothing in this module recovers it.
type GrammarAmbiguity struct {
	Expected string
	Matches  int
	At       source.Span
}

func (g *GrammarAmbiguity) Error() string {
	return fmt.Sprintf("grammar ambiguity: %d alternatives for %s matched at %s", g.Matches, g.Expected, g.At)
}

const endOfInput = "end of input"
