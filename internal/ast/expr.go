package ast

import (
	"fmt"
	"math"

	"rill/internal/source"
)

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	// `42`, `4_000_000`
	ExprInteger
	// stored as its IEEE-754 bit pattern
	ExprFloat
	// `true`, `false`
	ExprBoolean
	// `[]` or `[a, b, ...]`
	ExprList
	// `if condition { block } [else { block }]`
	ExprIf
)

func (k ExprKind) String() string {
	switch k {
	case ExprInteger:
		return "integer"
	case ExprFloat:
		return "float"
	case ExprBoolean:
		return "boolean"
	case ExprList:
		return "list"
	case ExprIf:
		return "if"
	default:
		return fmt.Sprintf("ExprKind(%d)", k)
	}
}

// ExprData is the payload stored for every Expr.
// Only the fields that belong to Kind are meaningful.
type ExprData struct {
	Kind ExprKind
	Span source.Span

	Bits  uint64 // ExprInteger value or ExprFloat bit pattern
	Bool  bool   // ExprBoolean
	Items []Expr // ExprList; read-only once stored

	Cond Expr // ExprIf
	Then Expr
	Else Expr // NoExpr when absent
}

func NewInteger(span source.Span, value uint64) ExprData {
	return ExprData{Kind: ExprInteger, Span: span, Bits: value}
}

func NewFloat(span source.Span, value float64) ExprData {
	return ExprData{Kind: ExprFloat, Span: span, Bits: math.Float64bits(value)}
}

func NewBoolean(span source.Span, value bool) ExprData {
	return ExprData{Kind: ExprBoolean, Span: span, Bool: value}
}

// NewList copies items so later changes to the caller's slice are not observed.
func NewList(span source.Span, items []Expr) ExprData {
	cpy := make([]Expr, len(items))
	copy(cpy, items)
	return ExprData{Kind: ExprList, Span: span, Items: cpy}
}

// NewIf builds a conditional; pass NoExpr as otherwise when there is no else branch.
func NewIf(span source.Span, cond, then, otherwise Expr) ExprData {
	return ExprData{Kind: ExprIf, Span: span, Cond: cond, Then: then, Else: otherwise}
}

// Integer returns the literal value of an ExprInteger node.
func (d ExprData) Integer() (uint64, bool) {
	if d.Kind != ExprInteger {
		return 0, false
	}
	return d.Bits, true
}

// Float decodes the bit pattern of an ExprFloat node.
func (d ExprData) Float() (float64, bool) {
	if d.Kind != ExprFloat {
		return 0, false
	}
	return math.Float64frombits(d.Bits), true
}

func (d ExprData) HasElse() bool {
	return d.Kind == ExprIf && d.Else.IsValid()
}
