// Package parser is a backtracking recursive-descent parser over a Cursor.
//
// Alternatives run on forks of the cursor (TryParse) and are reconciled by
// RequireUnambiguous, which commits exactly one of them. Grammars are built
// from plain functions of type func(*Cursor) (T, error); parsed nodes are
// appended to the tables.Tables the cursor carries. Allocations made by
// failed alternatives are not rolled back.
package parser

import (
	"strconv"

	"rill/internal/ast"
	"rill/internal/source"
	"rill/internal/tables"
	"rill/internal/trace"
)

type Options struct {
	File   source.FileID
	Tracer trace.Tracer
	// Parent is the trace span the parse span nests under.
	Parent uint64
}

// Parse runs rule from the beginning of text. Input left after the rule is
// not inspected.
func Parse[T any](text string, t *tables.Tables, rule func(*Cursor) (T, error), opts Options) (T, error) {
	c := NewCursor(text, t, opts)
	span := trace.Begin(c.tracer, trace.ScopePass, "parse", opts.Parent)
	c.span = span.ID()

	before := t.ExprCount()
	v, err := rule(&c)

	span.WithExtra("consumed", strconv.Itoa(c.pos)).
		WithExtra("exprs", strconv.Itoa(t.ExprCount()-before))
	if err != nil {
		span.End(err.Error())
		return v, err
	}
	span.End("")
	return v, nil
}

func ParseExpr(text string, t *tables.Tables, opts Options) (ast.Expr, error) {
	return Parse(text, t, Expr, opts)
}

// ParseList parses a top-level bracketed list and returns its items.
func ParseList(text string, t *tables.Tables, opts Options) ([]ast.Expr, error) {
	return Parse(text, t, ListOf(Expr), opts)
}

// ParseProgram parses a whole source file: one expression surrounded by trivia.
func ParseProgram(text string, t *tables.Tables, opts Options) (ast.Expr, error) {
	return Parse(text, t, program, opts)
}

func program(c *Cursor) (ast.Expr, error) {
	e, err := Expr(c)
	if err != nil {
		return ast.NoExpr, err
	}
	c.SkipTrivia()
	if !c.AtEnd() {
		end := c.Fork()
		end.pos = len(end.text)
		return ast.NoExpr, &Error{Kind: ExpectedToken, Token: endOfInput, At: end.SpanFrom(c.Offset())}
	}
	return e, nil
}
