package sema

import (
	"rill/internal/tables"
	"rill/internal/types"
)

// solver is a union-find over unification variables. The tables only ever
// record a variable's creation; every later fact (which class it joined,
// what the class is bound to) lives here.
type solver struct {
	tables *tables.Tables
	parent map[types.Infer]types.Infer
	rank   map[types.Infer]uint32
	bound  map[types.Infer]types.Ty // class root -> non-variable type
}

func newSolver(t *tables.Tables) *solver {
	return &solver{
		tables: t,
		parent: make(map[types.Infer]types.Infer),
		rank:   make(map[types.Infer]uint32),
		bound:  make(map[types.Infer]types.Ty),
	}
}

// find returns the class root of v, compressing the path behind it.
func (s *solver) find(v types.Infer) types.Infer {
	root := v
	for {
		p, ok := s.parent[root]
		if !ok {
			break
		}
		root = p
	}
	for v != root {
		next := s.parent[v]
		s.parent[v] = root
		v = next
	}
	return root
}

func (s *solver) rankOf(v types.Infer) uint32 {
	if r, ok := s.rank[v]; ok {
		return r
	}
	return s.tables.Infer(v).Rank
}

// union merges two unbound classes by rank and returns the new root.
func (s *solver) union(a, b types.Infer) types.Infer {
	ra, rb := s.rankOf(a), s.rankOf(b)
	switch {
	case ra < rb:
		s.parent[a] = b
		return b
	case ra > rb:
		s.parent[b] = a
		return a
	default:
		s.parent[b] = a
		s.rank[a] = ra + 1
		return a
	}
}

// shallow follows variables until it reaches either a non-variable type
// or the representative of an unbound class.
func (s *solver) shallow(ty types.Ty) types.Ty {
	for {
		data := s.tables.Ty(ty)
		if data.Kind != types.KindVar {
			return ty
		}
		root := s.find(data.Var)
		if b, ok := s.bound[root]; ok {
			ty = b
			continue
		}
		if root == data.Var {
			return ty
		}
		return s.tables.AddTy(types.MakeVar(root))
	}
}

// resolve substitutes every bound variable inside ty.
func (s *solver) resolve(ty types.Ty) types.Ty {
	ty = s.shallow(ty)
	data := s.tables.Ty(ty)
	if data.Kind == types.KindList {
		return s.tables.List(s.resolve(data.Elem))
	}
	return ty
}

func (s *solver) occurs(v types.Infer, ty types.Ty) bool {
	ty = s.shallow(ty)
	data := s.tables.Ty(ty)
	switch data.Kind {
	case types.KindVar:
		return s.find(data.Var) == v
	case types.KindList:
		return s.occurs(v, data.Elem)
	default:
		return false
	}
}

type failure struct {
	occurs bool
	v, ty  types.Ty // set for occurs failures
}

// unify makes a and b equal or reports why it cannot.
func (s *solver) unify(a, b types.Ty) *failure {
	a, b = s.shallow(a), s.shallow(b)
	if a == b {
		return nil
	}
	da, db := s.tables.Ty(a), s.tables.Ty(b)

	switch {
	case da.Kind == types.KindVar && db.Kind == types.KindVar:
		s.union(s.find(da.Var), s.find(db.Var))
		return nil

	case da.Kind == types.KindVar:
		return s.bind(a, da.Var, b)

	case db.Kind == types.KindVar:
		return s.bind(b, db.Var, a)

	case da.Kind == types.KindList && db.Kind == types.KindList:
		return s.unify(da.Elem, db.Elem)

	default:
		return &failure{}
	}
}

func (s *solver) bind(varTy types.Ty, v types.Infer, ty types.Ty) *failure {
	root := s.find(v)
	if s.occurs(root, ty) {
		return &failure{occurs: true, v: varTy, ty: ty}
	}
	s.bound[root] = ty
	return nil
}
