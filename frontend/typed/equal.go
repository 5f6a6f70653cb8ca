package typed

import (
	"slices"

	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/types"
)

// Equal is structural equality over typed trees: both trees must have the same shape,
// the same literals, names and source annotations, and carry Equals types at every node.
// Source positions are ignored, so trees checked from different texts can be compared.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !typeEqual(a.GetType(), b.GetType()) {
		return false
	}
	switch a := a.(type) {
	case *IntLit:
		b, ok := b.(*IntLit)
		return ok && a.Value == b.Value
	case *BoolLit:
		b, ok := b.(*BoolLit)
		return ok && a.Value == b.Value
	case *StrLit:
		b, ok := b.(*StrLit)
		return ok && a.Value == b.Value
	case *Var:
		b, ok := b.(*Var)
		return ok && a.Name == b.Name
	case *Binop:
		b, ok := b.(*Binop)
		return ok && a.Op == b.Op && Equal(a.Lhs, b.Lhs) && Equal(a.Rhs, b.Rhs)
	case *Let:
		b, ok := b.(*Let)
		return ok && slices.EqualFunc(a.Bindings, b.Bindings, func(x, y LetBinding) bool {
			return x.Name == y.Name && Equal(x.Value, y.Value)
		}) && Equal(a.Body, b.Body)
	case *Lambda:
		b, ok := b.(*Lambda)
		return ok && slices.EqualFunc(a.Params, b.Params, func(x, y ast.Param) bool {
			return x.Name == y.Name && typeEqual(x.Type, y.Type)
		}) && typeEqual(a.Ret, b.Ret) && Equal(a.Body, b.Body)
	case *Apply:
		b, ok := b.(*Apply)
		return ok && Equal(a.Func, b.Func) && allEqual(a.Args, b.Args)
	case *If:
		b, ok := b.(*If)
		return ok && Equal(a.Cond, b.Cond) && Equal(a.Then, b.Then) && Equal(a.Else, b.Else)
	case *Begin:
		b, ok := b.(*Begin)
		return ok && allEqual(a.Exprs, b.Exprs)
	case *Set:
		b, ok := b.(*Set)
		return ok && a.Name == b.Name && Equal(a.Value, b.Value)
	case *Null:
		b, ok := b.(*Null)
		return ok && typeEqual(a.Elem, b.Elem)
	case *Cons:
		b, ok := b.(*Cons)
		return ok && Equal(a.Head, b.Head) && Equal(a.Tail, b.Tail)
	case *Car:
		b, ok := b.(*Car)
		return ok && Equal(a.List, b.List)
	case *Cdr:
		b, ok := b.(*Cdr)
		return ok && Equal(a.List, b.List)
	case *IsNull:
		b, ok := b.(*IsNull)
		return ok && Equal(a.Expr, b.Expr)
	case *MakeTuple:
		b, ok := b.(*MakeTuple)
		return ok && allEqual(a.Elems, b.Elems)
	case *TupleRef:
		b, ok := b.(*TupleRef)
		return ok && a.Index == b.Index && Equal(a.Tuple, b.Tuple)
	case *MakeRecord:
		b, ok := b.(*MakeRecord)
		return ok && slices.EqualFunc(a.Fields, b.Fields, func(x, y RecordField) bool {
			return x.Name == y.Name && Equal(x.Value, y.Value)
		})
	case *RecordRef:
		b, ok := b.(*RecordRef)
		return ok && a.Field == b.Field && Equal(a.Record, b.Record)
	case *Pack:
		b, ok := b.(*Pack)
		return ok && Equal(a.Value, b.Value) && typeEqual(a.Witness, b.Witness) && a.Ascribed.Equals(b.Ascribed)
	case *Unpack:
		b, ok := b.(*Unpack)
		return ok && a.Var == b.Var && a.TypeVar == b.TypeVar && Equal(a.Packed, b.Packed) && Equal(a.Body, b.Body)
	default:
		panic("unhandled expression variant")
	}
}

func allEqual(as, bs []Expr) bool {
	return slices.EqualFunc(as, bs, Equal)
}

func typeEqual(a, b types.Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}
