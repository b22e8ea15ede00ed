// Package tables owns every arena of a single compilation run.
//
// Parser and checker share one *Tables; each domain (expressions, types,
// unification variables) has its own Add/lookup pair so dispatch stays a
// closed set of methods instead of a reflective registry.
package tables

import (
	"rill/internal/ast"
	"rill/internal/table"
	"rill/internal/types"
)

// Hints preallocate arena capacity.
type Hints struct {
	Exprs  uint
	Types  uint
	Infers uint
}

type Tables struct {
	exprs  cell[table.Arena[ast.Expr, ast.ExprData]]
	tys    cell[table.Intern[types.Ty, types.TyData]]
	infers cell[table.Arena[types.Infer, types.InferData]]
}

// New creates the arenas for one run. Zero hints fall back to defaults.
func New(h Hints) *Tables {
	if h.Exprs == 0 {
		h.Exprs = 1 << 8
	}
	if h.Types == 0 {
		h.Types = 1 << 4
	}
	if h.Infers == 0 {
		h.Infers = 1 << 4
	}
	return &Tables{
		exprs:  cell[table.Arena[ast.Expr, ast.ExprData]]{name: "expression", value: *table.NewArena[ast.Expr, ast.ExprData](h.Exprs)},
		tys:    cell[table.Intern[types.Ty, types.TyData]]{name: "type", value: *table.NewIntern[types.Ty, types.TyData](h.Types)},
		infers: cell[table.Arena[types.Infer, types.InferData]]{name: "inference variable", value: *table.NewArena[types.Infer, types.InferData](h.Infers)},
	}
}

// AddExpr appends a syntax node.
func (t *Tables) AddExpr(data ast.ExprData) ast.Expr {
	var key ast.Expr
	t.exprs.write(func(a *table.Arena[ast.Expr, ast.ExprData]) {
		key = a.Add(data)
	})
	return key
}

// Expr returns the node stored under e. ExprData.Items must not be modified.
func (t *Tables) Expr(e ast.Expr) ast.ExprData {
	return t.exprs.read().Data(e)
}

func (t *Tables) ExprCount() int {
	return t.exprs.read().Len()
}

// AddTy interns a type descriptor; structurally equal descriptors share a key.
func (t *Tables) AddTy(data types.TyData) types.Ty {
	var key types.Ty
	t.tys.write(func(in *table.Intern[types.Ty, types.TyData]) {
		key = in.Add(data)
	})
	return key
}

func (t *Tables) Ty(ty types.Ty) types.TyData {
	return t.tys.read().Data(ty)
}

func (t *Tables) TyCount() int {
	return t.tys.read().Len()
}

// AddInfer allocates a fresh unification variable record.
func (t *Tables) AddInfer(data types.InferData) types.Infer {
	var key types.Infer
	t.infers.write(func(a *table.Arena[types.Infer, types.InferData]) {
		key = a.Add(data)
	})
	return key
}

func (t *Tables) Infer(v types.Infer) types.InferData {
	return t.infers.read().Data(v)
}

func (t *Tables) InferCount() int {
	return t.infers.read().Len()
}

// Builtins ---------------------------------------------------------------------

func (t *Tables) Bool() types.Ty    { return t.AddTy(types.MakeBool()) }
func (t *Tables) Integer() types.Ty { return t.AddTy(types.MakeInteger()) }
func (t *Tables) Float() types.Ty   { return t.AddTy(types.MakeFloat()) }

func (t *Tables) List(elem types.Ty) types.Ty {
	return t.AddTy(types.MakeList(elem))
}

// FreshVar allocates an unbound variable and returns it wrapped as a type.
func (t *Tables) FreshVar() (types.Infer, types.Ty) {
	v := t.AddInfer(types.Unbound(0))
	return v, t.AddTy(types.MakeVar(v))
}
