package sema

import (
	"fmt"

	"rill/internal/ast"
	"rill/internal/diag"
	"rill/internal/source"
	"rill/internal/types"
)

// TypeMismatch reports that the type synthesized for Expr cannot be made
// equal to the type it was checked against. Expected and Actual are fully
// resolved at the moment of failure.
type TypeMismatch struct {
	Expr     ast.Expr
	Expected types.Ty
	Actual   types.Ty
	At       source.Span
	msg      string
}

func (e *TypeMismatch) Error() string     { return e.msg }
func (e *TypeMismatch) Code() diag.Code   { return diag.SemaTypeMismatch }
func (e *TypeMismatch) Span() source.Span { return e.At }

// MissingElse reports an `if` without an `else` branch. Every `if` is an
// expression whose value must exist on both paths.
type MissingElse struct {
	Expr ast.Expr
	At   source.Span
}

func (e *MissingElse) Error() string     { return "`if` expression has no `else` branch" }
func (e *MissingElse) Code() diag.Code   { return diag.SemaMissingElse }
func (e *MissingElse) Span() source.Span { return e.At }

// InfiniteType reports a variable that would have to contain itself.
type InfiniteType struct {
	Expr ast.Expr
	Var  types.Ty
	Ty   types.Ty
	At   source.Span
	msg  string
}

func (e *InfiniteType) Error() string     { return e.msg }
func (e *InfiniteType) Code() diag.Code   { return diag.SemaInfiniteType }
func (e *InfiniteType) Span() source.Span { return e.At }

func (c *Checker) mismatch(e ast.Expr, expected, actual types.Ty) *TypeMismatch {
	expected, actual = c.Resolve(expected), c.Resolve(actual)
	return &TypeMismatch{
		Expr:     e,
		Expected: expected,
		Actual:   actual,
		At:       c.span(e),
		msg:      fmt.Sprintf("type mismatch: expected %s, found %s", c.render(expected), c.render(actual)),
	}
}

func (c *Checker) infinite(e ast.Expr, v, ty types.Ty) *InfiniteType {
	ty = c.Resolve(ty)
	return &InfiniteType{
		Expr: e,
		Var:  v,
		Ty:   ty,
		At:   c.span(e),
		msg:  fmt.Sprintf("infinite type: %s occurs in %s", c.render(v), c.render(ty)),
	}
}
