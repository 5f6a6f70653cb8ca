// Package recelim compiles labelled records away into positional tuples.
//
// Fields are canonically ordered by name, so two records which only differ in the order
// their fields were written become the same tuple, and every record-ref becomes a
// tuple-ref at the rank of its field name.
//
// The input must be the output of the type checker. Anything the checker would have
// rejected is reported as an ErrInvariant error rather than an ilerr.IleError.
package recelim

import (
	"cmp"
	"slices"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/typed"
	"github.com/schemewasm/swc/frontend/types"
	"github.com/schemewasm/swc/internal/log"
	"github.com/xtgo/set"
)

var logger = log.DefaultLogger.With("section", "recelim")

// ErrInvariant is the cause of every error returned by this package
var ErrInvariant = errors.New("record elimination invariant violated")

// SortedFields returns the fields of r in canonical order, sorted by name.
// Field names must be unique.
func SortedFields(r types.Record) ([]types.Field, error) {
	names := r.Names()
	sort.Strings(names)
	if unique := set.Uniq(sort.StringSlice(names)); unique != len(names) {
		return nil, errors.Wrapf(ErrInvariant, "record type %v has duplicate field names", r)
	}
	sorted := slices.Clone(r.Fields)
	slices.SortFunc(sorted, func(a, b types.Field) int { return cmp.Compare(a.Name, b.Name) })
	return sorted, nil
}

// FieldIndex returns the position of name among the canonically ordered fields of r
func FieldIndex(r types.Record, name string) (int, error) {
	sorted, err := SortedFields(r)
	if err != nil {
		return 0, err
	}
	_, idx, ok := lo.FindIndexOf(sorted, func(f types.Field) bool { return f.Name == name })
	if !ok {
		return 0, errors.Wrapf(ErrInvariant, "record type %v has no field %s", r, name)
	}
	return idx, nil
}

// EliminateType rewrites every record type within t, at any depth, into the tuple of its
// field types in canonical order
func EliminateType(t types.Type) (types.Type, error) {
	var err error
	res := types.Transform(t, func(t types.Type) types.Type {
		record, ok := t.(types.Record)
		if !ok || err != nil {
			return t
		}
		// fields were already rewritten bottom-up
		sorted, sortErr := SortedFields(record)
		if sortErr != nil {
			err = sortErr
			return t
		}
		return types.Tuple{Elems: lo.Map(sorted, func(f types.Field, _ int) types.Type { return f.Type })}
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Eliminate returns a copy of e where no record type, make-record or record-ref remains.
// The carried types of the result are those the checker computes for the rewritten program.
func Eliminate(e typed.Expr) (typed.Expr, error) {
	res, err := eliminate(e)
	if err != nil {
		return nil, errors.WithMessagef(err, "eliminating records in %s", typed.ExprString(e))
	}
	return res, nil
}

func eliminate(e typed.Expr) (typed.Expr, error) {
	t, err := EliminateType(e.GetType())
	if err != nil {
		return nil, err
	}
	a := typed.Annotation{Type: t}

	switch e := e.(type) {
	case *typed.IntLit:
		return &typed.IntLit{Annotation: a, Range: e.Range, Value: e.Value}, nil
	case *typed.BoolLit:
		return &typed.BoolLit{Annotation: a, Range: e.Range, Value: e.Value}, nil
	case *typed.StrLit:
		return &typed.StrLit{Annotation: a, Range: e.Range, Value: e.Value}, nil
	case *typed.Var:
		return &typed.Var{Annotation: a, Range: e.Range, Name: e.Name}, nil
	case *typed.Binop:
		children, err := eliminateAll(e.Lhs, e.Rhs)
		if err != nil {
			return nil, err
		}
		return &typed.Binop{Annotation: a, Range: e.Range, Op: e.Op, Lhs: children[0], Rhs: children[1]}, nil
	case *typed.Let:
		bindings := make([]typed.LetBinding, 0, len(e.Bindings))
		for _, b := range e.Bindings {
			value, err := eliminate(b.Value)
			if err != nil {
				return nil, err
			}
			bindings = append(bindings, typed.LetBinding{Name: b.Name, Value: value})
		}
		body, err := eliminate(e.Body)
		if err != nil {
			return nil, err
		}
		return &typed.Let{Annotation: a, Range: e.Range, Bindings: bindings, Body: body}, nil
	case *typed.Lambda:
		params := make([]ast.Param, 0, len(e.Params))
		for _, p := range e.Params {
			pt, err := EliminateType(p.Type)
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: p.Name, Type: pt})
		}
		ret, err := EliminateType(e.Ret)
		if err != nil {
			return nil, err
		}
		body, err := eliminate(e.Body)
		if err != nil {
			return nil, err
		}
		return &typed.Lambda{Annotation: a, Range: e.Range, Params: params, Ret: ret, Body: body}, nil
	case *typed.Apply:
		children, err := eliminateAll(append([]typed.Expr{e.Func}, e.Args...)...)
		if err != nil {
			return nil, err
		}
		return &typed.Apply{Annotation: a, Range: e.Range, Func: children[0], Args: children[1:]}, nil
	case *typed.If:
		children, err := eliminateAll(e.Cond, e.Then, e.Else)
		if err != nil {
			return nil, err
		}
		return &typed.If{Annotation: a, Range: e.Range, Cond: children[0], Then: children[1], Else: children[2]}, nil
	case *typed.Begin:
		exprs, err := eliminateAll(e.Exprs...)
		if err != nil {
			return nil, err
		}
		return &typed.Begin{Annotation: a, Range: e.Range, Exprs: exprs}, nil
	case *typed.Set:
		value, err := eliminate(e.Value)
		if err != nil {
			return nil, err
		}
		return &typed.Set{Annotation: a, Range: e.Range, Name: e.Name, Value: value}, nil
	case *typed.Null:
		elem, err := EliminateType(e.Elem)
		if err != nil {
			return nil, err
		}
		return &typed.Null{Annotation: a, Range: e.Range, Elem: elem}, nil
	case *typed.Cons:
		children, err := eliminateAll(e.Head, e.Tail)
		if err != nil {
			return nil, err
		}
		return &typed.Cons{Annotation: a, Range: e.Range, Head: children[0], Tail: children[1]}, nil
	case *typed.Car:
		list, err := eliminate(e.List)
		if err != nil {
			return nil, err
		}
		return &typed.Car{Annotation: a, Range: e.Range, List: list}, nil
	case *typed.Cdr:
		list, err := eliminate(e.List)
		if err != nil {
			return nil, err
		}
		return &typed.Cdr{Annotation: a, Range: e.Range, List: list}, nil
	case *typed.IsNull:
		inner, err := eliminate(e.Expr)
		if err != nil {
			return nil, err
		}
		return &typed.IsNull{Annotation: a, Range: e.Range, Expr: inner}, nil
	case *typed.MakeTuple:
		elems, err := eliminateAll(e.Elems...)
		if err != nil {
			return nil, err
		}
		return &typed.MakeTuple{Annotation: a, Range: e.Range, Elems: elems}, nil
	case *typed.TupleRef:
		tuple, err := eliminate(e.Tuple)
		if err != nil {
			return nil, err
		}
		return &typed.TupleRef{Annotation: a, Range: e.Range, Tuple: tuple, Index: e.Index}, nil
	case *typed.MakeRecord:
		return eliminateMakeRecord(e, a)
	case *typed.RecordRef:
		return eliminateRecordRef(e, a)
	case *typed.Pack:
		value, err := eliminate(e.Value)
		if err != nil {
			return nil, err
		}
		witness, err := EliminateType(e.Witness)
		if err != nil {
			return nil, err
		}
		ascribed, ok := t.(types.Exists)
		if !ok {
			return nil, errors.Wrapf(ErrInvariant, "pack has non-existential type %v", e.GetType())
		}
		return &typed.Pack{Annotation: a, Range: e.Range, Value: value, Witness: witness, Ascribed: ascribed}, nil
	case *typed.Unpack:
		children, err := eliminateAll(e.Packed, e.Body)
		if err != nil {
			return nil, err
		}
		return &typed.Unpack{
			Annotation: a,
			Range:      e.Range,
			Var:        e.Var,
			Packed:     children[0],
			TypeVar:    e.TypeVar,
			Body:       children[1],
		}, nil
	default:
		return nil, errors.Wrapf(ErrInvariant, "unhandled expression %T", e)
	}
}

func eliminateAll(es ...typed.Expr) ([]typed.Expr, error) {
	res := make([]typed.Expr, 0, len(es))
	for _, e := range es {
		elim, err := eliminate(e)
		if err != nil {
			return nil, err
		}
		res = append(res, elim)
	}
	return res, nil
}

// eliminateMakeRecord turns the record into a tuple of its eliminated field values in
// canonical order. Field values are therefore evaluated in that order too.
func eliminateMakeRecord(e *typed.MakeRecord, a typed.Annotation) (typed.Expr, error) {
	recordType, ok := e.GetType().(types.Record)
	if !ok {
		return nil, errors.Wrapf(ErrInvariant, "make-record has non-record type %v", e.GetType())
	}
	if _, err := SortedFields(recordType); err != nil {
		return nil, err
	}
	fields := slices.Clone(e.Fields)
	slices.SortFunc(fields, func(x, y typed.RecordField) int { return cmp.Compare(x.Name, y.Name) })
	elems, err := eliminateAll(lo.Map(fields, func(f typed.RecordField, _ int) typed.Expr { return f.Value })...)
	if err != nil {
		return nil, err
	}
	return &typed.MakeTuple{Annotation: a, Range: e.Range, Elems: elems}, nil
}

// eliminateRecordRef resolves the field against the record type the checker assigned
// to the accessed expression, before that type is itself eliminated
func eliminateRecordRef(e *typed.RecordRef, a typed.Annotation) (typed.Expr, error) {
	recordType, ok := e.Record.GetType().(types.Record)
	if !ok {
		return nil, errors.Wrapf(ErrInvariant, "record-ref of %s on non-record type %v", e.Field, e.Record.GetType())
	}
	idx, err := FieldIndex(recordType, e.Field)
	if err != nil {
		return nil, err
	}
	record, err := eliminate(e.Record)
	if err != nil {
		return nil, err
	}
	logger.Debug("record access rewritten", "field", e.Field, "index", idx, "record", recordType.String())
	return &typed.TupleRef{Annotation: a, Range: e.Range, Tuple: record, Index: idx}, nil
}
