package ast

// Expr is a handle into the expression arena of a tables.Tables.
type Expr uint32

// NoExpr marks an absent expression (e.g. an `if` without `else`).
const NoExpr Expr = 0

func (id Expr) IsValid() bool { return id != NoExpr }
