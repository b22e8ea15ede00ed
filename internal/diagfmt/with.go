package diagfmt

import (
	"fmt"
	"io"

	"rill/internal/ast"
	"rill/internal/tables"
	"rill/internal/types"
)

// Renderable lists the handles that need the tables to be shown.
type Renderable interface {
	ast.Expr | []ast.Expr | types.Ty
}

// Bound pairs a handle with the tables that resolve it so it can go
// straight into fmt verbs: %v and %s print the compact form, %+v the
// expanded tree and %q the quoted compact form.
type Bound[V Renderable] struct {
	tables *tables.Tables
	value  V
}

func With[V Renderable](t *tables.Tables, v V) Bound[V] {
	return Bound[V]{tables: t, value: v}
}

func (b Bound[V]) String() string {
	return b.compact()
}

func (b Bound[V]) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('+') {
			io.WriteString(f, b.tree()) //nolint:errcheck
			return
		}
		io.WriteString(f, b.compact()) //nolint:errcheck
	case 's':
		io.WriteString(f, b.compact()) //nolint:errcheck
	case 'q':
		fmt.Fprintf(f, "%q", b.compact())
	default:
		fmt.Fprintf(f, "%%!%c(diagfmt.Bound=%s)", verb, b.compact())
	}
}

func (b Bound[V]) compact() string {
	switch v := any(b.value).(type) {
	case ast.Expr:
		return Expr(b.tables, v)
	case []ast.Expr:
		return Exprs(b.tables, v)
	case types.Ty:
		return Ty(b.tables, v)
	}
	return ""
}

func (b Bound[V]) tree() string {
	switch v := any(b.value).(type) {
	case ast.Expr:
		return treeString(b.tables, v)
	case []ast.Expr:
		return treeItemsString(b.tables, v)
	case types.Ty:
		return Ty(b.tables, v)
	}
	return ""
}
