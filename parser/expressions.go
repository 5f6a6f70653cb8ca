package parser

import (
	"fmt"
	"strconv"

	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/ilerr"
)

type parser struct {
	*reader
}

func (p *parser) errorf(at sexp, format string, args ...any) ilerr.IleError {
	return ilerr.New(ilerr.NewParse{
		Positioner:    at.Range,
		ParserMessage: fmt.Sprintf(format, args...),
	})
}

// parseIntAtom recognises decimal integers with an optional sign
func parseIntAtom(atom string) (int64, bool) {
	digits := atom
	if len(digits) > 1 && (digits[0] == '-' || digits[0] == '+') {
		digits = digits[1:]
	}
	if digits == "" || digits[0] < '0' || digits[0] > '9' {
		return 0, false
	}
	v, err := strconv.ParseInt(atom, 10, 64)
	return v, err == nil
}

func isNumeric(atom string) bool {
	digits := atom
	if len(digits) > 1 && (digits[0] == '-' || digits[0] == '+') {
		digits = digits[1:]
	}
	return digits != "" && digits[0] >= '0' && digits[0] <= '9'
}

func (p *parser) parseName(s sexp, what string) (string, ilerr.IleError) {
	if !s.isAtom() || isNumeric(s.atom) {
		return "", p.errorf(s, "expected %s, found %s", what, s)
	}
	switch s.atom {
	case "#t", "#f", "true", "false", ":":
		return "", p.errorf(s, "expected %s, found %s", what, s.atom)
	}
	return s.atom, nil
}

func (p *parser) arity(s sexp, form string, n int) ilerr.IleError {
	if len(s.list)-1 != n {
		return p.errorf(s, "%s takes %d operands, found %d", form, n, len(s.list)-1)
	}
	return nil
}

func (p *parser) parseExpr(s sexp) (ast.Expr, ilerr.IleError) {
	if s.isStr {
		return &ast.StrLit{Value: s.str, Range: s.Range}, nil
	}
	if s.isAtom() {
		return p.parseAtom(s)
	}
	if len(s.list) == 0 {
		return nil, p.errorf(s, "empty application ()")
	}

	head, _ := s.head()
	if op, isOp := ast.OpFromString(head); isOp {
		if err := p.arity(s, head, 2); err != nil {
			return nil, err
		}
		operands, err := p.parseExprs(s.list[1:])
		if err != nil {
			return nil, err
		}
		return &ast.Binop{Op: op, Lhs: operands[0], Rhs: operands[1], Range: s.Range}, nil
	}
	if form, isForm := forms[head]; isForm {
		return form(p, s)
	}

	exprs, err := p.parseExprs(s.list)
	if err != nil {
		return nil, err
	}
	return &ast.Apply{Func: exprs[0], Args: exprs[1:], Range: s.Range}, nil
}

func (p *parser) parseAtom(s sexp) (ast.Expr, ilerr.IleError) {
	switch s.atom {
	case "#t", "true":
		return &ast.BoolLit{Value: true, Range: s.Range}, nil
	case "#f", "false":
		return &ast.BoolLit{Value: false, Range: s.Range}, nil
	}
	if isNumeric(s.atom) {
		v, ok := parseIntAtom(s.atom)
		if !ok {
			return nil, p.errorf(s, "malformed integer literal %s", s.atom)
		}
		return &ast.IntLit{Value: v, Range: s.Range}, nil
	}
	name, err := p.parseName(s, "variable")
	if err != nil {
		return nil, err
	}
	return &ast.Var{Name: name, Range: s.Range}, nil
}

func (p *parser) parseExprs(ss []sexp) ([]ast.Expr, ilerr.IleError) {
	res := make([]ast.Expr, 0, len(ss))
	for _, s := range ss {
		e, err := p.parseExpr(s)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

type formParser func(p *parser, s sexp) (ast.Expr, ilerr.IleError)

var forms map[string]formParser

func init() {
	forms = map[string]formParser{
		"let":         parseLet,
		"lambda":      parseLambda,
		"if":          parseIf,
		"begin":       parseBegin,
		"set!":        parseSet,
		"null":        parseNull,
		"cons":        parseCons,
		"car":         unary(func(e ast.Expr, r ast.Range) ast.Expr { return &ast.Car{List: e, Range: r} }),
		"cdr":         unary(func(e ast.Expr, r ast.Range) ast.Expr { return &ast.Cdr{List: e, Range: r} }),
		"null?":       unary(func(e ast.Expr, r ast.Range) ast.Expr { return &ast.IsNull{Expr: e, Range: r} }),
		"make-tuple":  parseMakeTuple,
		"tuple-ref":   parseTupleRef,
		"make-record": parseMakeRecord,
		"record-ref":  parseRecordRef,
		"pack":        parsePack,
		"unpack":      parseUnpack,
	}
}

func unary(build func(ast.Expr, ast.Range) ast.Expr) formParser {
	return func(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
		head, _ := s.head()
		if err := p.arity(s, head, 1); err != nil {
			return nil, err
		}
		operand, err := p.parseExpr(s.list[1])
		if err != nil {
			return nil, err
		}
		return build(operand, s.Range), nil
	}
}

// (let ((x e) ...) body)
func parseLet(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	if err := p.arity(s, "let", 2); err != nil {
		return nil, err
	}
	bindingList := s.list[1]
	if !bindingList.isList {
		return nil, p.errorf(bindingList, "let bindings must be a list, found %s", bindingList)
	}
	bindings := make([]ast.LetBinding, 0, len(bindingList.list))
	for _, b := range bindingList.list {
		if !b.isList || len(b.list) != 2 {
			return nil, p.errorf(b, "let binding must be of the form (name value), found %s", b)
		}
		name, err := p.parseName(b.list[0], "binding name")
		if err != nil {
			return nil, err
		}
		value, err := p.parseExpr(b.list[1])
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.LetBinding{Name: name, Value: value})
	}
	body, err := p.parseExpr(s.list[2])
	if err != nil {
		return nil, err
	}
	return &ast.Let{Bindings: bindings, Body: body, Range: s.Range}, nil
}

// (lambda ((x : T) ...) : R body)
func parseLambda(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	if len(s.list) != 5 || !s.list[2].isAtom() || s.list[2].atom != ":" {
		return nil, p.errorf(s, "lambda must be of the form (lambda ((x : T) ...) : R body)")
	}
	paramList := s.list[1]
	if !paramList.isList {
		return nil, p.errorf(paramList, "lambda parameters must be a list, found %s", paramList)
	}
	params := make([]ast.Param, 0, len(paramList.list))
	for _, param := range paramList.list {
		name, t, err := p.parseAnnotated(param, "parameter")
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: name, Type: t})
	}
	ret, err := p.parseType(s.list[3])
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpr(s.list[4])
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Params: params, Ret: ret, Body: body, Range: s.Range}, nil
}

func parseIf(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	if err := p.arity(s, "if", 3); err != nil {
		return nil, err
	}
	parts, err := p.parseExprs(s.list[1:])
	if err != nil {
		return nil, err
	}
	return &ast.If{Cond: parts[0], Then: parts[1], Else: parts[2], Range: s.Range}, nil
}

func parseBegin(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	if len(s.list) < 2 {
		return nil, p.errorf(s, "begin needs at least one expression")
	}
	exprs, err := p.parseExprs(s.list[1:])
	if err != nil {
		return nil, err
	}
	return &ast.Begin{Exprs: exprs, Range: s.Range}, nil
}

func parseSet(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	if err := p.arity(s, "set!", 2); err != nil {
		return nil, err
	}
	name, err := p.parseName(s.list[1], "variable name")
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpr(s.list[2])
	if err != nil {
		return nil, err
	}
	return &ast.Set{Name: name, Value: value, Range: s.Range}, nil
}

func parseNull(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	if err := p.arity(s, "null", 1); err != nil {
		return nil, err
	}
	elem, err := p.parseType(s.list[1])
	if err != nil {
		return nil, err
	}
	return &ast.Null{Elem: elem, Range: s.Range}, nil
}

func parseCons(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	if err := p.arity(s, "cons", 2); err != nil {
		return nil, err
	}
	parts, err := p.parseExprs(s.list[1:])
	if err != nil {
		return nil, err
	}
	return &ast.Cons{Head: parts[0], Tail: parts[1], Range: s.Range}, nil
}

func parseMakeTuple(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	elems, err := p.parseExprs(s.list[1:])
	if err != nil {
		return nil, err
	}
	return &ast.MakeTuple{Elems: elems, Range: s.Range}, nil
}

func parseTupleRef(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	if err := p.arity(s, "tuple-ref", 2); err != nil {
		return nil, err
	}
	tuple, err := p.parseExpr(s.list[1])
	if err != nil {
		return nil, err
	}
	idx := s.list[2]
	v, ok := int64(0), false
	if idx.isAtom() {
		v, ok = parseIntAtom(idx.atom)
	}
	if !ok || v < 0 || v > int64(^uint32(0)>>1) {
		return nil, p.errorf(idx, "tuple-ref index must be a non-negative integer literal, found %s", idx)
	}
	return &ast.TupleRef{Tuple: tuple, Index: int(v), Range: s.Range}, nil
}

// (make-record (name e) ...)
func parseMakeRecord(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	fields := make([]ast.RecordField, 0, len(s.list)-1)
	for _, f := range s.list[1:] {
		if !f.isList || len(f.list) != 2 {
			return nil, p.errorf(f, "record field must be of the form (name value), found %s", f)
		}
		name, err := p.parseName(f.list[0], "field name")
		if err != nil {
			return nil, err
		}
		value, err := p.parseExpr(f.list[1])
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.RecordField{Name: name, Value: value})
	}
	return &ast.MakeRecord{Fields: fields, Range: s.Range}, nil
}

func parseRecordRef(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	if err := p.arity(s, "record-ref", 2); err != nil {
		return nil, err
	}
	record, err := p.parseExpr(s.list[1])
	if err != nil {
		return nil, err
	}
	field, err := p.parseName(s.list[2], "field name")
	if err != nil {
		return nil, err
	}
	return &ast.RecordRef{Record: record, Field: field, Range: s.Range}, nil
}

// (pack e T (exists X B))
func parsePack(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	if err := p.arity(s, "pack", 3); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(s.list[1])
	if err != nil {
		return nil, err
	}
	witness, err := p.parseType(s.list[2])
	if err != nil {
		return nil, err
	}
	ascribed, err := p.parseExists(s.list[3])
	if err != nil {
		return nil, err
	}
	return &ast.Pack{Value: value, Witness: witness, Ascribed: ascribed, Range: s.Range}, nil
}

// (unpack (q p X) body)
func parseUnpack(p *parser, s sexp) (ast.Expr, ilerr.IleError) {
	if err := p.arity(s, "unpack", 2); err != nil {
		return nil, err
	}
	binder := s.list[1]
	if !binder.isList || len(binder.list) != 3 {
		return nil, p.errorf(binder, "unpack binder must be of the form (name packed X), found %s", binder)
	}
	name, err := p.parseName(binder.list[0], "variable name")
	if err != nil {
		return nil, err
	}
	packed, err := p.parseExpr(binder.list[1])
	if err != nil {
		return nil, err
	}
	typeVar, err := p.parseName(binder.list[2], "type variable")
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpr(s.list[2])
	if err != nil {
		return nil, err
	}
	return &ast.Unpack{Var: name, Packed: packed, TypeVar: typeVar, Body: body, Range: s.Range}, nil
}
