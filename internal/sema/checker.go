// Package sema type-checks parsed expressions.
//
// Checking is bidirectional: every expression synthesizes a type, and in
// CheckType mode that type is then equated with the expected one. Fresh
// unification variables stand for element and branch types until
// unification fixes them; Result.Resolve substitutes what was learned.
package sema

import (
	"fmt"
	"strconv"

	"rill/internal/ast"
	"rill/internal/diagfmt"
	"rill/internal/source"
	"rill/internal/tables"
	"rill/internal/trace"
	"rill/internal/types"
)

// Mode says whether a type is only being synthesized or also checked
// against an expected one.
type Mode struct {
	expected types.Ty
}

func Synthesize() Mode { return Mode{} }

func CheckType(expected types.Ty) Mode { return Mode{expected: expected} }

func (m Mode) Expected() (types.Ty, bool) {
	return m.expected, m.expected.IsValid()
}

func (m Mode) String() string {
	if m.expected.IsValid() {
		return fmt.Sprintf("CheckType(%d)", m.expected)
	}
	return "Synthesize"
}

type Options struct {
	// Expected checks the root expression against this type when set.
	Expected types.Ty
	Tracer   trace.Tracer
	// Parent is the trace span the check span nests under.
	Parent uint64
}

type Checker struct {
	tables *tables.Tables
	solver *solver
	tracer trace.Tracer
	spanID uint64
}

func NewChecker(t *tables.Tables, opts Options) *Checker {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Checker{
		tables: t,
		solver: newSolver(t),
		tracer: tracer,
		spanID: opts.Parent,
	}
}

// Result is the outcome of a successful Check.
type Result struct {
	// Ty is the fully resolved type of the root expression. Unbound
	// variables remain, e.g. `[]` has type `[?0]`.
	Ty      types.Ty
	checker *Checker
}

// Resolve substitutes every variable bound during the check.
func (r Result) Resolve(ty types.Ty) types.Ty {
	if r.checker == nil {
		return ty
	}
	return r.checker.Resolve(ty)
}

// Check synthesizes the type of e, or checks it against opts.Expected.
// The first failure stops the check.
func Check(t *tables.Tables, e ast.Expr, opts Options) (Result, error) {
	c := NewChecker(t, opts)
	span := trace.Begin(c.tracer, trace.ScopePass, "check", opts.Parent)
	if span.ID() != 0 {
		c.spanID = span.ID()
	}

	mode := Synthesize()
	if opts.Expected.IsValid() {
		mode = CheckType(opts.Expected)
	}

	ty, err := c.CheckExpr(mode, e)
	span.WithExtra("vars", strconv.Itoa(t.InferCount()))
	if err != nil {
		span.End(err.Error())
		return Result{}, err
	}
	res := Result{Ty: c.Resolve(ty), checker: c}
	span.End(c.render(res.Ty))
	return res, nil
}

// CheckExpr synthesizes the type of e and, in CheckType mode, equates it
// with the expected type. A mismatch is attributed to e.
func (c *Checker) CheckExpr(mode Mode, e ast.Expr) (types.Ty, error) {
	actual, err := c.InferExpr(e)
	if err != nil {
		return types.NoTy, err
	}
	if expected, ok := mode.Expected(); ok {
		if err := c.Equate(e, actual, expected); err != nil {
			return types.NoTy, err
		}
	}
	return actual, nil
}

// InferExpr synthesizes the type of e.
func (c *Checker) InferExpr(e ast.Expr) (types.Ty, error) {
	data := c.tables.Expr(e)
	switch data.Kind {
	case ast.ExprBoolean:
		return c.tables.Bool(), nil
	case ast.ExprInteger:
		return c.tables.Integer(), nil
	case ast.ExprFloat:
		return c.tables.Float(), nil

	case ast.ExprList:
		_, elem := c.tables.FreshVar()
		for _, item := range data.Items {
			if _, err := c.CheckExpr(CheckType(elem), item); err != nil {
				return types.NoTy, err
			}
		}
		return c.tables.List(elem), nil

	case ast.ExprIf:
		if _, err := c.CheckExpr(CheckType(c.tables.Bool()), data.Cond); err != nil {
			return types.NoTy, err
		}
		_, branch := c.tables.FreshVar()
		if _, err := c.CheckExpr(CheckType(branch), data.Then); err != nil {
			return types.NoTy, err
		}
		if !data.HasElse() {
			return types.NoTy, &MissingElse{Expr: e, At: data.Span}
		}
		if _, err := c.CheckExpr(CheckType(branch), data.Else); err != nil {
			return types.NoTy, err
		}
		return branch, nil

	default:
		panic(fmt.Sprintf("sema: cannot type %s expression %d", data.Kind, e))
	}
}

// Equate unifies actual with expected, blaming e on failure.
func (c *Checker) Equate(e ast.Expr, actual, expected types.Ty) error {
	fail := c.solver.unify(actual, expected)
	if fail == nil {
		if c.tracer.Enabled() {
			trace.Point(c.tracer, trace.ScopeNode, c.spanID, "equate", c.render(c.Resolve(expected)))
		}
		return nil
	}
	if fail.occurs {
		return c.infinite(e, fail.v, fail.ty)
	}
	return c.mismatch(e, expected, actual)
}

func (c *Checker) Resolve(ty types.Ty) types.Ty {
	return c.solver.resolve(ty)
}

func (c *Checker) render(ty types.Ty) string {
	return diagfmt.Ty(c.tables, ty)
}

func (c *Checker) span(e ast.Expr) source.Span {
	return c.tables.Expr(e).Span
}
