package diagfmt

import (
	"io"
	"strings"

	"rill/internal/ast"
	"rill/internal/tables"
)

const treeIndent = "    "

// WriteTree writes the expanded form of e: every list element and every
// branch of an `if` on its own line, each followed by a comma.
//
//	[
//	    40,
//	    [],
//	]
func WriteTree(w io.Writer, t *tables.Tables, e ast.Expr) error {
	_, err := io.WriteString(w, treeString(t, e)+"\n")
	return err
}

// WriteTreeItems is WriteTree for a top-level sequence.
func WriteTreeItems(w io.Writer, t *tables.Tables, items []ast.Expr) error {
	_, err := io.WriteString(w, treeItemsString(t, items)+"\n")
	return err
}

func writeTreeExpr(sb *strings.Builder, t *tables.Tables, e ast.Expr, depth int) {
	if !e.IsValid() {
		sb.WriteString("<none>")
		return
	}
	data := t.Expr(e)
	switch data.Kind {
	case ast.ExprList:
		writeTreeItems(sb, t, data.Items, depth)
	case ast.ExprIf:
		sb.WriteString("if {\n")
		writeTreeField(sb, t, "cond", data.Cond, depth+1)
		writeTreeField(sb, t, "then", data.Then, depth+1)
		if data.HasElse() {
			writeTreeField(sb, t, "else", data.Else, depth+1)
		}
		sb.WriteString(strings.Repeat(treeIndent, depth))
		sb.WriteByte('}')
	default:
		writeExpr(sb, t, e)
	}
}

func writeTreeItems(sb *strings.Builder, t *tables.Tables, items []ast.Expr, depth int) {
	if len(items) == 0 {
		sb.WriteString("[]")
		return
	}
	sb.WriteString("[\n")
	for _, item := range items {
		sb.WriteString(strings.Repeat(treeIndent, depth+1))
		writeTreeExpr(sb, t, item, depth+1)
		sb.WriteString(",\n")
	}
	sb.WriteString(strings.Repeat(treeIndent, depth))
	sb.WriteByte(']')
}

func writeTreeField(sb *strings.Builder, t *tables.Tables, name string, e ast.Expr, depth int) {
	sb.WriteString(strings.Repeat(treeIndent, depth))
	sb.WriteString(name)
	sb.WriteString(": ")
	writeTreeExpr(sb, t, e, depth)
	sb.WriteString(",\n")
}

func treeString(t *tables.Tables, e ast.Expr) string {
	var sb strings.Builder
	writeTreeExpr(&sb, t, e, 0)
	return sb.String()
}

func treeItemsString(t *tables.Tables, items []ast.Expr) string {
	var sb strings.Builder
	writeTreeItems(&sb, t, items, 0)
	return sb.String()
}

