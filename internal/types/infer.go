package types

// Infer is a handle into the unification-variable arena of a tables.Tables.
type Infer uint32

const NoInfer Infer = 0

func (id Infer) IsValid() bool { return id != NoInfer }

// InferData is the immutable record stored when a variable is created.
// Every variable starts unbound; Rank seeds union-by-rank in the solver,
// bindings live in the solver's own overlay and never in the arena.
type InferData struct {
	Rank uint32
}

// Unbound returns the creation record of a fresh variable.
func Unbound(rank uint32) InferData {
	return InferData{Rank: rank}
}
