package typed

import (
	"log/slog"
	"slices"

	"github.com/samber/lo"
	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/types"
)

// Erase drops every type annotation the checker computed, keeping the ones written in the source
func Erase(e Expr) ast.Expr {
	switch e := e.(type) {
	case *IntLit:
		return &ast.IntLit{Value: e.Value, Range: e.Range}
	case *BoolLit:
		return &ast.BoolLit{Value: e.Value, Range: e.Range}
	case *StrLit:
		return &ast.StrLit{Value: e.Value, Range: e.Range}
	case *Var:
		return &ast.Var{Name: e.Name, Range: e.Range}
	case *Binop:
		return &ast.Binop{Op: e.Op, Lhs: Erase(e.Lhs), Rhs: Erase(e.Rhs), Range: e.Range}
	case *Let:
		return &ast.Let{
			Bindings: lo.Map(e.Bindings, func(b LetBinding, _ int) ast.LetBinding {
				return ast.LetBinding{Name: b.Name, Value: Erase(b.Value)}
			}),
			Body:  Erase(e.Body),
			Range: e.Range,
		}
	case *Lambda:
		return &ast.Lambda{Params: slices.Clone(e.Params), Ret: e.Ret, Body: Erase(e.Body), Range: e.Range}
	case *Apply:
		return &ast.Apply{Func: Erase(e.Func), Args: eraseAll(e.Args), Range: e.Range}
	case *If:
		return &ast.If{Cond: Erase(e.Cond), Then: Erase(e.Then), Else: Erase(e.Else), Range: e.Range}
	case *Begin:
		return &ast.Begin{Exprs: eraseAll(e.Exprs), Range: e.Range}
	case *Set:
		return &ast.Set{Name: e.Name, Value: Erase(e.Value), Range: e.Range}
	case *Null:
		return &ast.Null{Elem: e.Elem, Range: e.Range}
	case *Cons:
		return &ast.Cons{Head: Erase(e.Head), Tail: Erase(e.Tail), Range: e.Range}
	case *Car:
		return &ast.Car{List: Erase(e.List), Range: e.Range}
	case *Cdr:
		return &ast.Cdr{List: Erase(e.List), Range: e.Range}
	case *IsNull:
		return &ast.IsNull{Expr: Erase(e.Expr), Range: e.Range}
	case *MakeTuple:
		return &ast.MakeTuple{Elems: eraseAll(e.Elems), Range: e.Range}
	case *TupleRef:
		return &ast.TupleRef{Tuple: Erase(e.Tuple), Index: e.Index, Range: e.Range}
	case *MakeRecord:
		return &ast.MakeRecord{
			Fields: lo.Map(e.Fields, func(f RecordField, _ int) ast.RecordField {
				return ast.RecordField{Name: f.Name, Value: Erase(f.Value)}
			}),
			Range: e.Range,
		}
	case *RecordRef:
		return &ast.RecordRef{Record: Erase(e.Record), Field: e.Field, Range: e.Range}
	case *Pack:
		return &ast.Pack{Value: Erase(e.Value), Witness: e.Witness, Ascribed: e.Ascribed, Range: e.Range}
	case *Unpack:
		return &ast.Unpack{Var: e.Var, Packed: Erase(e.Packed), TypeVar: e.TypeVar, Body: Erase(e.Body), Range: e.Range}
	default:
		panic("unhandled expression variant")
	}
}

func eraseAll(es []Expr) []ast.Expr {
	return lo.Map(es, func(e Expr, _ int) ast.Expr { return Erase(e) })
}

// Children returns the direct sub-expressions of e, in source order
func Children(e Expr) []Expr {
	switch e := e.(type) {
	case *IntLit, *BoolLit, *StrLit, *Var, *Null:
		return nil
	case *Binop:
		return []Expr{e.Lhs, e.Rhs}
	case *Let:
		children := lo.Map(e.Bindings, func(b LetBinding, _ int) Expr { return b.Value })
		return append(children, e.Body)
	case *Lambda:
		return []Expr{e.Body}
	case *Apply:
		return append([]Expr{e.Func}, e.Args...)
	case *If:
		return []Expr{e.Cond, e.Then, e.Else}
	case *Begin:
		return slices.Clone(e.Exprs)
	case *Set:
		return []Expr{e.Value}
	case *Cons:
		return []Expr{e.Head, e.Tail}
	case *Car:
		return []Expr{e.List}
	case *Cdr:
		return []Expr{e.List}
	case *IsNull:
		return []Expr{e.Expr}
	case *MakeTuple:
		return slices.Clone(e.Elems)
	case *TupleRef:
		return []Expr{e.Tuple}
	case *MakeRecord:
		return lo.Map(e.Fields, func(f RecordField, _ int) Expr { return f.Value })
	case *RecordRef:
		return []Expr{e.Record}
	case *Pack:
		return []Expr{e.Value}
	case *Unpack:
		return []Expr{e.Packed, e.Body}
	default:
		panic("unhandled expression variant")
	}
}

// Annotations returns every type held by e itself: its computed type
// followed by the ones written in the source, if any
func Annotations(e Expr) []types.Type {
	annotations := []types.Type{e.GetType()}
	switch e := e.(type) {
	case *Lambda:
		for _, p := range e.Params {
			annotations = append(annotations, p.Type)
		}
		annotations = append(annotations, e.Ret)
	case *Null:
		annotations = append(annotations, e.Elem)
	case *Pack:
		annotations = append(annotations, e.Witness, e.Ascribed)
	}
	return annotations
}

// Walk calls f on e and then on each of its descendants, depth-first.
// If f returns false, the descendants of that node are skipped.
func Walk(e Expr, f func(Expr) bool) {
	if !f(e) {
		return
	}
	for _, child := range Children(e) {
		Walk(child, f)
	}
}

// ExprString prints e as surface syntax, without the computed types
func ExprString(e Expr) string {
	return ast.ExprString(Erase(e))
}

// Slog wraps an Expr as a slog.LogValuer to not render expression strings
// unless they definitely need to be logged
func Slog(e Expr) slog.LogValuer {
	return exprLogValuer{e}
}

type exprLogValuer struct{ Expr }

func (l exprLogValuer) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("expr", ExprString(l.Expr)),
		slog.String("type", l.GetType().String()),
	)
}
