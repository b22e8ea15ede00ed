package types

import "fmt"

// Ty is a handle into the interned type arena of a tables.Tables.
// Equal types always share one Ty, so type equality is key equality.
type Ty uint32

// NoTy marks the absence of a type.
const NoTy Ty = 0

func (id Ty) IsValid() bool { return id != NoTy }

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindList
	KindVar
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBool:
		return "bool"
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	case KindVar:
		return "var"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// TyData is a compact, comparable descriptor for any supported type.
type TyData struct {
	Kind Kind
	Elem Ty    // KindList
	Var  Infer // KindVar
}

// Descriptor helpers ---------------------------------------------------------

func MakeBool() TyData    { return TyData{Kind: KindBool} }
func MakeInteger() TyData { return TyData{Kind: KindInteger} }
func MakeFloat() TyData   { return TyData{Kind: KindFloat} }

// MakeList describes a homogeneous list of elem.
func MakeList(elem Ty) TyData {
	return TyData{Kind: KindList, Elem: elem}
}

// MakeVar wraps a unification variable so it can stand wherever a type can.
func MakeVar(v Infer) TyData {
	return TyData{Kind: KindVar, Var: v}
}

func (t TyData) IsPrimitive() bool {
	switch t.Kind {
	case KindBool, KindInteger, KindFloat:
		return true
	}
	return false
}
