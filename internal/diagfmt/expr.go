package diagfmt

import (
	"strconv"
	"strings"

	"rill/internal/ast"
	"rill/internal/table"
	"rill/internal/tables"
	"rill/internal/types"
)

// Expr renders e on one line, e.g. `[40, 2, 42]`.
func Expr(t *tables.Tables, e ast.Expr) string {
	var sb strings.Builder
	writeExpr(&sb, t, e)
	return sb.String()
}

// Exprs renders a top-level sequence the same way a list literal is shown.
func Exprs(t *tables.Tables, items []ast.Expr) string {
	var sb strings.Builder
	writeItems(&sb, t, items)
	return sb.String()
}

func writeExpr(sb *strings.Builder, t *tables.Tables, e ast.Expr) {
	if !e.IsValid() {
		sb.WriteString("<none>")
		return
	}
	data := t.Expr(e)
	switch data.Kind {
	case ast.ExprInteger:
		sb.WriteString(strconv.FormatUint(data.Bits, 10))
	case ast.ExprFloat:
		v, _ := data.Float()
		sb.WriteString(formatFloat(v))
	case ast.ExprBoolean:
		sb.WriteString(strconv.FormatBool(data.Bool))
	case ast.ExprList:
		writeItems(sb, t, data.Items)
	case ast.ExprIf:
		sb.WriteString("if ")
		writeExpr(sb, t, data.Cond)
		sb.WriteString(" { ")
		writeExpr(sb, t, data.Then)
		sb.WriteString(" }")
		if data.HasElse() {
			sb.WriteString(" else { ")
			writeExpr(sb, t, data.Else)
			sb.WriteString(" }")
		}
	default:
		sb.WriteString("<invalid>")
	}
}

func writeItems(sb *strings.Builder, t *tables.Tables, items []ast.Expr) {
	sb.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, t, item)
	}
	sb.WriteByte(']')
}

// formatFloat keeps a fractional part so floats never read as integers.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Ty renders a type: `bool`, `int`, `float`, `[int]`, or `?0` for a
// unification variable.
func Ty(t *tables.Tables, ty types.Ty) string {
	var sb strings.Builder
	writeTy(&sb, t, ty)
	return sb.String()
}

func writeTy(sb *strings.Builder, t *tables.Tables, ty types.Ty) {
	if ty == types.NoTy {
		sb.WriteString("<none>")
		return
	}
	data := t.Ty(ty)
	switch data.Kind {
	case types.KindList:
		sb.WriteByte('[')
		writeTy(sb, t, data.Elem)
		sb.WriteByte(']')
	case types.KindVar:
		sb.WriteByte('?')
		sb.WriteString(strconv.Itoa(table.AsIndex(data.Var)))
	default:
		sb.WriteString(data.Kind.String())
	}
}
