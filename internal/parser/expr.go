package parser

import (
	"errors"
	"strconv"
	"strings"

	"rill/internal/ast"
)

const digitSeparator = '_'

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isDigitOrSeparator(r rune) bool { return isDigit(r) || r == digitSeparator }

// Expr parses one expression.
//
//	Expr := Integer | List
func Expr(c *Cursor) (ast.Expr, error) {
	return RequireUnambiguous(c, "expression",
		TryParse(c, Integer),
		TryParse(c, List),
	)
}

// Integer parses a decimal literal such as `42` or `4_000_000`.
func Integer(c *Cursor) (ast.Expr, error) {
	c.SkipTrivia()
	start := c.Offset()
	text, err := c.Accumulate(isDigit, isDigitOrSeparator, "number")
	if err != nil {
		return ast.NoExpr, err
	}
	value, err := strconv.ParseUint(strings.ReplaceAll(text, string(digitSeparator), ""), 10, 64)
	if err != nil {
		return ast.NoExpr, &Error{Kind: NumericConversion, Detail: conversionDetail(err), At: c.SpanFrom(start)}
	}
	return c.tables.AddExpr(ast.NewInteger(c.SpanFrom(start), value)), nil
}

// List parses `[a, b, ...]` with an optional trailing comma.
func List(c *Cursor) (ast.Expr, error) {
	c.SkipTrivia()
	start := c.Offset()
	items, err := ListOf(Expr)(c)
	if err != nil {
		return ast.NoExpr, err
	}
	return c.tables.AddExpr(ast.NewList(c.SpanFrom(start), items)), nil
}

func conversionDetail(err error) string {
	switch {
	case errors.Is(err, strconv.ErrRange):
		return "number too large to fit in target type"
	case errors.Is(err, strconv.ErrSyntax):
		return "invalid digit found in string"
	default:
		return err.Error()
	}
}
