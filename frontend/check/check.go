// Package check implements the type checker: it turns an untyped ast.Expr into a typed.Expr
// where every node carries its type, or reports the first rule the expression violates.
//
// Checking is type-directed: every binder carries an explicit annotation, so types are
// computed bottom-up while the environment is threaded top-down for scoping.
package check

import (
	"errors"
	"log/slog"

	"github.com/samber/lo"
	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/env"
	"github.com/schemewasm/swc/frontend/ilerr"
	"github.com/schemewasm/swc/frontend/typed"
	"github.com/schemewasm/swc/frontend/types"
	"github.com/schemewasm/swc/internal/log"
)

type Options struct {
	// RejectDuplicateFields makes make-record fail with ilerr.DuplicateField when a
	// field name is repeated. Off by default: duplicates are accepted and record-ref
	// resolves to the first field of that name.
	RejectDuplicateFields bool
	// Parallel makes CheckProgram check independent top-level forms concurrently
	Parallel bool
}

type Checker struct {
	Options
	logger *slog.Logger
}

// NewChecker returns a Checker logging to logger, or to log.DefaultLogger when logger is nil
func NewChecker(opts Options, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = log.DefaultLogger
	}
	return &Checker{
		Options: opts,
		logger:  logger.With("section", "check"),
	}
}

var defaultChecker = NewChecker(Options{}, nil)

// TypeCheck checks expr in the empty environment
func TypeCheck(expr ast.Expr) (typed.Expr, ilerr.IleError) {
	return defaultChecker.Check(expr, env.Empty())
}

// Check checks expr in scope with the default options
func Check(expr ast.Expr, scope *env.Env) (typed.Expr, ilerr.IleError) {
	return defaultChecker.Check(expr, scope)
}

// Check returns expr annotated with types, or the first error found in it
func (c *Checker) Check(expr ast.Expr, scope *env.Env) (typed.Expr, ilerr.IleError) {
	if scope == nil {
		scope = env.Empty()
	}
	res, err := c.check(expr, scope)
	if err != nil {
		c.logger.Debug("type check failed", "expr", expr, "error", ilerr.FormatWithCode(err))
		return nil, err
	}
	c.logger.Debug("type checked", "result", typed.Slog(res))
	return res, nil
}

func annot(t types.Type) typed.Annotation {
	return typed.Annotation{Type: t}
}

func (c *Checker) check(expr ast.Expr, scope *env.Env) (typed.Expr, ilerr.IleError) {
	switch expr := expr.(type) {
	case *ast.IntLit:
		return &typed.IntLit{Annotation: annot(types.IntType), Range: expr.Range, Value: expr.Value}, nil
	case *ast.BoolLit:
		return &typed.BoolLit{Annotation: annot(types.BoolType), Range: expr.Range, Value: expr.Value}, nil
	case *ast.StrLit:
		return &typed.StrLit{Annotation: annot(types.StrType), Range: expr.Range, Value: expr.Value}, nil
	case *ast.Var:
		t, ok := scope.Lookup(expr.Name)
		if !ok {
			return nil, ilerr.New(ilerr.NewUnboundVariable{Positioner: expr.Range, Name: expr.Name})
		}
		return &typed.Var{Annotation: annot(t), Range: expr.Range, Name: expr.Name}, nil
	case *ast.Binop:
		return c.checkBinop(expr, scope)
	case *ast.Let:
		return c.checkLet(expr, scope)
	case *ast.Lambda:
		return c.checkLambda(expr, scope)
	case *ast.Apply:
		return c.checkApply(expr, scope)
	case *ast.If:
		return c.checkIf(expr, scope)
	case *ast.Begin:
		return c.checkBegin(expr, scope)
	case *ast.Set:
		return c.checkSet(expr, scope)
	case *ast.Null:
		return &typed.Null{Annotation: annot(types.List{Elem: expr.Elem}), Range: expr.Range, Elem: expr.Elem}, nil
	case *ast.Cons:
		return c.checkCons(expr, scope)
	case *ast.Car:
		list, elem, err := c.checkList("car", expr.List, scope)
		if err != nil {
			return nil, err
		}
		return &typed.Car{Annotation: annot(elem), Range: expr.Range, List: list}, nil
	case *ast.Cdr:
		list, _, err := c.checkList("cdr", expr.List, scope)
		if err != nil {
			return nil, err
		}
		return &typed.Cdr{Annotation: annot(list.GetType()), Range: expr.Range, List: list}, nil
	case *ast.IsNull:
		// any type is accepted: null? is an emptiness probe, not a list operation
		inner, err := c.check(expr.Expr, scope)
		if err != nil {
			return nil, err
		}
		return &typed.IsNull{Annotation: annot(types.BoolType), Range: expr.Range, Expr: inner}, nil
	case *ast.MakeTuple:
		elems, err := c.checkAll(expr.Elems, scope)
		if err != nil {
			return nil, err
		}
		t := types.Tuple{Elems: lo.Map(elems, func(e typed.Expr, _ int) types.Type { return e.GetType() })}
		return &typed.MakeTuple{Annotation: annot(t), Range: expr.Range, Elems: elems}, nil
	case *ast.TupleRef:
		return c.checkTupleRef(expr, scope)
	case *ast.MakeRecord:
		return c.checkMakeRecord(expr, scope)
	case *ast.RecordRef:
		return c.checkRecordRef(expr, scope)
	case *ast.Pack:
		return c.checkPack(expr, scope)
	case *ast.Unpack:
		return c.checkUnpack(expr, scope)
	default:
		return nil, ilerr.New(ilerr.NewUnclassified{
			From:       errors.New("unhandled expression " + expr.Describe()),
			Positioner: ast.RangeOf(expr),
		})
	}
}

func (c *Checker) checkAll(exprs []ast.Expr, scope *env.Env) ([]typed.Expr, ilerr.IleError) {
	res := make([]typed.Expr, 0, len(exprs))
	for _, e := range exprs {
		checked, err := c.check(e, scope)
		if err != nil {
			return nil, err
		}
		res = append(res, checked)
	}
	return res, nil
}
