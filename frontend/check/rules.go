package check

import (
	"errors"

	"github.com/hashicorp/go-set/v2"
	"github.com/samber/lo"
	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/env"
	"github.com/schemewasm/swc/frontend/ilerr"
	"github.com/schemewasm/swc/frontend/typed"
	"github.com/schemewasm/swc/frontend/types"
)

func (c *Checker) checkBinop(expr *ast.Binop, scope *env.Env) (typed.Expr, ilerr.IleError) {
	lhs, err := c.check(expr.Lhs, scope)
	if err != nil {
		return nil, err
	}
	rhs, err := c.check(expr.Rhs, scope)
	if err != nil {
		return nil, err
	}
	operand, result := expr.Op.Signature()
	for _, side := range []typed.Expr{lhs, rhs} {
		if !side.GetType().Equals(operand) {
			return nil, ilerr.New(ilerr.NewBinopTypeMismatch{
				Positioner: ast.RangeOf(side),
				Op:         expr.Op,
				Expected:   operand,
				Found:      side.GetType(),
			})
		}
	}
	return &typed.Binop{Annotation: annot(result), Range: expr.Range, Op: expr.Op, Lhs: lhs, Rhs: rhs}, nil
}

// checkLet checks every bound value in the enclosing scope, so bindings of the same let
// do not see each other; only the body sees them
func (c *Checker) checkLet(expr *ast.Let, scope *env.Env) (typed.Expr, ilerr.IleError) {
	bindings := make([]typed.LetBinding, 0, len(expr.Bindings))
	added := make([]env.Binding, 0, len(expr.Bindings))
	for _, b := range expr.Bindings {
		value, err := c.check(b.Value, scope)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, typed.LetBinding{Name: b.Name, Value: value})
		added = append(added, env.Binding{Name: b.Name, Type: value.GetType()})
	}
	body, err := c.check(expr.Body, scope.WithAll(added...))
	if err != nil {
		return nil, err
	}
	return &typed.Let{Annotation: annot(body.GetType()), Range: expr.Range, Bindings: bindings, Body: body}, nil
}

func (c *Checker) checkLambda(expr *ast.Lambda, scope *env.Env) (typed.Expr, ilerr.IleError) {
	params := lo.Map(expr.Params, func(p ast.Param, _ int) env.Binding {
		return env.Binding{Name: p.Name, Type: p.Type}
	})
	body, err := c.check(expr.Body, scope.WithAll(params...))
	if err != nil {
		return nil, err
	}
	if !body.GetType().Equals(expr.Ret) {
		return nil, ilerr.New(ilerr.NewLambdaBodyMismatch{
			Positioner: ast.RangeOf(body),
			Declared:   expr.Ret,
			Found:      body.GetType(),
		})
	}
	t := types.Func{
		Params: lo.Map(expr.Params, func(p ast.Param, _ int) types.Type { return p.Type }),
		Ret:    expr.Ret,
	}
	return &typed.Lambda{Annotation: annot(t), Range: expr.Range, Params: expr.Params, Ret: expr.Ret, Body: body}, nil
}

func (c *Checker) checkApply(expr *ast.Apply, scope *env.Env) (typed.Expr, ilerr.IleError) {
	fn, err := c.check(expr.Func, scope)
	if err != nil {
		return nil, err
	}
	fnType, ok := fn.GetType().(types.Func)
	if !ok {
		return nil, ilerr.New(ilerr.NewNotAFunction{Positioner: ast.RangeOf(fn), Found: fn.GetType()})
	}
	if len(expr.Args) != len(fnType.Params) {
		return nil, ilerr.New(ilerr.NewArityMismatch{
			Positioner: expr.Range,
			Func:       fnType,
			Expected:   len(fnType.Params),
			Found:      len(expr.Args),
		})
	}
	args := make([]typed.Expr, 0, len(expr.Args))
	for i, arg := range expr.Args {
		checked, err := c.check(arg, scope)
		if err != nil {
			return nil, err
		}
		if !checked.GetType().Equals(fnType.Params[i]) {
			return nil, ilerr.New(ilerr.NewArgTypeMismatch{
				Positioner: ast.RangeOf(arg),
				Index:      i,
				Expected:   fnType.Params[i],
				Found:      checked.GetType(),
			})
		}
		args = append(args, checked)
	}
	return &typed.Apply{Annotation: annot(fnType.Ret), Range: expr.Range, Func: fn, Args: args}, nil
}

func (c *Checker) checkIf(expr *ast.If, scope *env.Env) (typed.Expr, ilerr.IleError) {
	cond, err := c.check(expr.Cond, scope)
	if err != nil {
		return nil, err
	}
	if !cond.GetType().Equals(types.BoolType) {
		return nil, ilerr.New(ilerr.NewNonBooleanCondition{Positioner: ast.RangeOf(cond), Found: cond.GetType()})
	}
	then, err := c.check(expr.Then, scope)
	if err != nil {
		return nil, err
	}
	els, err := c.check(expr.Else, scope)
	if err != nil {
		return nil, err
	}
	if !then.GetType().Equals(els.GetType()) {
		return nil, ilerr.New(ilerr.NewBranchTypeMismatch{Positioner: expr.Range, Then: then.GetType(), Else: els.GetType()})
	}
	return &typed.If{Annotation: annot(then.GetType()), Range: expr.Range, Cond: cond, Then: then, Else: els}, nil
}

func (c *Checker) checkBegin(expr *ast.Begin, scope *env.Env) (typed.Expr, ilerr.IleError) {
	if len(expr.Exprs) == 0 {
		return nil, ilerr.New(ilerr.NewUnclassified{From: errors.New("begin with no expressions"), Positioner: expr.Range})
	}
	exprs, err := c.checkAll(expr.Exprs, scope)
	if err != nil {
		return nil, err
	}
	last := exprs[len(exprs)-1]
	return &typed.Begin{Annotation: annot(last.GetType()), Range: expr.Range, Exprs: exprs}, nil
}

// checkSet checks the assigned value with the target already in scope, which is
// what lets a placeholder-bound function be set! to a lambda calling itself
func (c *Checker) checkSet(expr *ast.Set, scope *env.Env) (typed.Expr, ilerr.IleError) {
	target, ok := scope.Lookup(expr.Name)
	if !ok {
		return nil, ilerr.New(ilerr.NewAssignToUnbound{Positioner: expr.Range, Name: expr.Name})
	}
	value, err := c.check(expr.Value, scope.With(expr.Name, target))
	if err != nil {
		return nil, err
	}
	if !value.GetType().Equals(target) {
		return nil, ilerr.New(ilerr.NewAssignTypeMismatch{
			Positioner: ast.RangeOf(value),
			Name:       expr.Name,
			Expected:   target,
			Found:      value.GetType(),
		})
	}
	return &typed.Set{Annotation: annot(target), Range: expr.Range, Name: expr.Name, Value: value}, nil
}

func (c *Checker) checkCons(expr *ast.Cons, scope *env.Env) (typed.Expr, ilerr.IleError) {
	head, err := c.check(expr.Head, scope)
	if err != nil {
		return nil, err
	}
	tail, err := c.check(expr.Tail, scope)
	if err != nil {
		return nil, err
	}
	tailType, ok := tail.GetType().(types.List)
	if !ok || !head.GetType().Equals(tailType.Elem) {
		return nil, ilerr.New(ilerr.NewConsTypeMismatch{Positioner: expr.Range, Head: head.GetType(), Tail: tail.GetType()})
	}
	return &typed.Cons{Annotation: annot(tailType), Range: expr.Range, Head: head, Tail: tail}, nil
}

// checkList checks a list operand, returning it and its element type.
// Empty and non-empty lists are not told apart.
func (c *Checker) checkList(op string, expr ast.Expr, scope *env.Env) (typed.Expr, types.Type, ilerr.IleError) {
	list, err := c.check(expr, scope)
	if err != nil {
		return nil, nil, err
	}
	listType, ok := list.GetType().(types.List)
	if !ok {
		return nil, nil, ilerr.New(ilerr.NewNotAList{Positioner: ast.RangeOf(list), Op: op, Found: list.GetType()})
	}
	return list, listType.Elem, nil
}

func (c *Checker) checkTupleRef(expr *ast.TupleRef, scope *env.Env) (typed.Expr, ilerr.IleError) {
	tuple, err := c.check(expr.Tuple, scope)
	if err != nil {
		return nil, err
	}
	tupleType, ok := tuple.GetType().(types.Tuple)
	if !ok {
		return nil, ilerr.New(ilerr.NewNotATuple{Positioner: ast.RangeOf(tuple), Found: tuple.GetType()})
	}
	if expr.Index < 0 || expr.Index >= len(tupleType.Elems) {
		return nil, ilerr.New(ilerr.NewTupleIndexOutOfRange{Positioner: expr.Range, Index: expr.Index, Tuple: tupleType})
	}
	return &typed.TupleRef{
		Annotation: annot(tupleType.Elems[expr.Index]),
		Range:      expr.Range,
		Tuple:      tuple,
		Index:      expr.Index,
	}, nil
}

func (c *Checker) checkMakeRecord(expr *ast.MakeRecord, scope *env.Env) (typed.Expr, ilerr.IleError) {
	if c.RejectDuplicateFields {
		if dups := lo.FindDuplicates(expr.Names()); len(dups) > 0 {
			return nil, ilerr.New(ilerr.NewDuplicateField{Positioner: expr.Range, Field: dups[0]})
		}
	}
	fields := make([]typed.RecordField, 0, len(expr.Fields))
	fieldTypes := make([]types.Field, 0, len(expr.Fields))
	for _, f := range expr.Fields {
		value, err := c.check(f.Value, scope)
		if err != nil {
			return nil, err
		}
		fields = append(fields, typed.RecordField{Name: f.Name, Value: value})
		fieldTypes = append(fieldTypes, types.Field{Name: f.Name, Type: value.GetType()})
	}
	t := types.Record{Fields: fieldTypes}
	return &typed.MakeRecord{Annotation: annot(t), Range: expr.Range, Fields: fields}, nil
}

func (c *Checker) checkRecordRef(expr *ast.RecordRef, scope *env.Env) (typed.Expr, ilerr.IleError) {
	record, err := c.check(expr.Record, scope)
	if err != nil {
		return nil, err
	}
	recordType, ok := record.GetType().(types.Record)
	if !ok {
		return nil, ilerr.New(ilerr.NewNotARecord{Positioner: ast.RangeOf(record), Found: record.GetType()})
	}
	field, _, ok := recordType.Lookup(expr.Field)
	if !ok {
		return nil, ilerr.New(ilerr.NewUnknownField{Positioner: expr.Range, Field: expr.Field, Record: recordType})
	}
	return &typed.RecordRef{Annotation: annot(field.Type), Range: expr.Range, Record: record, Field: expr.Field}, nil
}

// checkPack requires the value to have the ascribed body with the witness substituted in,
// and then forgets the witness: the result is the ascribed existential
func (c *Checker) checkPack(expr *ast.Pack, scope *env.Env) (typed.Expr, ilerr.IleError) {
	value, err := c.check(expr.Value, scope)
	if err != nil {
		return nil, err
	}
	expected := types.Substitute(expr.Ascribed.Body, expr.Ascribed.Var, expr.Witness)
	if !value.GetType().Equals(expected) {
		return nil, ilerr.New(ilerr.NewPackTypeMismatch{
			Positioner: ast.RangeOf(value),
			Ascribed:   expr.Ascribed,
			Expected:   expected,
			Found:      value.GetType(),
		})
	}
	return &typed.Pack{
		Annotation: annot(expr.Ascribed),
		Range:      expr.Range,
		Value:      value,
		Witness:    expr.Witness,
		Ascribed:   expr.Ascribed,
	}, nil
}

// checkUnpack opens an existential under the abstract type variable expr.TypeVar,
// which must not appear free in the type of the body
func (c *Checker) checkUnpack(expr *ast.Unpack, scope *env.Env) (typed.Expr, ilerr.IleError) {
	packed, err := c.check(expr.Packed, scope)
	if err != nil {
		return nil, err
	}
	exists, ok := packed.GetType().(types.Exists)
	if !ok {
		return nil, ilerr.New(ilerr.NewNotAnExistential{Positioner: ast.RangeOf(packed), Found: packed.GetType()})
	}
	if visibleTypeVars(exists, scope).Contains(expr.TypeVar) {
		return nil, ilerr.New(ilerr.NewAbstractTypeNotFresh{Positioner: expr.Range, TypeVar: expr.TypeVar})
	}
	opened := types.Substitute(exists.Body, exists.Var, types.TypeVar{Name: expr.TypeVar})
	body, err := c.check(expr.Body, scope.With(expr.Var, opened))
	if err != nil {
		return nil, err
	}
	if types.ContainsFree(body.GetType(), expr.TypeVar) {
		return nil, ilerr.New(ilerr.NewExistentialEscapes{
			Positioner: ast.RangeOf(body),
			TypeVar:    expr.TypeVar,
			Found:      body.GetType(),
		})
	}
	c.logger.Debug("unpacked existential", "var", expr.Var, "as", opened.String(), "typeVar", expr.TypeVar)
	return &typed.Unpack{
		Annotation: annot(body.GetType()),
		Range:      expr.Range,
		Var:        expr.Var,
		Packed:     packed,
		TypeVar:    expr.TypeVar,
		Body:       body,
	}, nil
}

// visibleTypeVars are the type variables free in packed or in any type bound in scope.
// An unpack may not reuse one of them as its abstract type.
func visibleTypeVars(packed types.Type, scope *env.Env) *set.Set[string] {
	visible := types.FreeTypeVars(packed)
	for _, name := range scope.Names() {
		t, _ := scope.Lookup(name)
		visible.InsertSet(types.FreeTypeVars(t))
	}
	return visible
}
