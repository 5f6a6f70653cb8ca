package check_test

import (
	"fmt"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/schemewasm/swc/frontend/check"
	"github.com/schemewasm/swc/frontend/env"
	"github.com/schemewasm/swc/frontend/ilerr"
	"github.com/schemewasm/swc/frontend/typed"
	"github.com/schemewasm/swc/frontend/types"
	"github.com/schemewasm/swc/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recoverPanic(t *testing.T) {
	if err := recover(); err != nil {
		stack := strings.Split(string(debug.Stack()), "\n")
		t.Errorf("panic: %v\nlikely at %s\n full stack trace follows:\n%s\n", err, stack[10], string(debug.Stack()))
		t.FailNow()
	}
}

func mustParseType(t *testing.T, src string) types.Type {
	t.Helper()
	typ, err := parser.ParseType(src)
	require.Nil(t, err, "parse type %s", src)
	return typ
}

func testTypeIn(t *testing.T, scope *env.Env, exprStr string, expected string) {
	t.Run(fmt.Sprintf("%s:%s", exprStr, expected), func(t *testing.T) {
		defer recoverPanic(t)
		expr, perr := parser.ParseExpr(exprStr)
		require.Nil(t, perr, "expected no parse error, got %v", perr)

		res, err := check.Check(expr, scope)
		if err != nil {
			t.Fatalf("unexpected error: %s", ilerr.FormatWithCode(err))
		}
		want := mustParseType(t, expected)
		assert.Truef(t, res.GetType().Equals(want), "unexpected type for `%s`: %s (expected %s)", exprStr, res.GetType(), want)
	})
}

func testType(t *testing.T, exprStr string, expected string) {
	testTypeIn(t, env.Empty(), exprStr, expected)
}

func testError(t *testing.T, exprStr string, code ilerr.ErrCode) {
	testErrorIn(t, env.Empty(), exprStr, code)
}

func testErrorIn(t *testing.T, scope *env.Env, exprStr string, code ilerr.ErrCode) {
	t.Run(fmt.Sprintf("%s:%s", exprStr, code), func(t *testing.T) {
		defer recoverPanic(t)
		expr, perr := parser.ParseExpr(exprStr)
		require.Nil(t, perr, "expected no parse error, got %v", perr)

		res, err := check.Check(expr, scope)
		require.NotNil(t, err, "expected %s, but `%s` checked as %v", code, exprStr, res)
		assert.Nil(t, res)
		assert.Equal(t, code, err.Code(), "unexpected error: %s", ilerr.FormatWithCode(err))
	})
}

func TestPrimitives(t *testing.T) {
	testType(t, "3", "int")
	testType(t, "-497", "int")
	testType(t, "#t", "bool")
	testType(t, "#f", "bool")
	testType(t, "true", "bool")
	testType(t, "false", "bool")
	testType(t, `"true"`, "string")
	testType(t, `"foo"`, "string")
	testType(t, `""`, "string")
}

func TestBinops(t *testing.T) {
	testType(t, "(+ 3 5)", "int")
	testType(t, "(* 3 5)", "int")
	testType(t, "(- 3 5)", "int")
	testType(t, "(/ 3 5)", "int")
	testType(t, "(+ (* 4 5) (- 5 2))", "int")
	testType(t, `(concat "hello " "world")`, "string")
	testType(t, "(and true false)", "bool")
	testType(t, "(or true false)", "bool")
	testType(t, "(< 3 5)", "bool")
	testType(t, "(>= 3 5)", "bool")
	testType(t, "(= 3 5)", "bool")

	testError(t, "(+ 3 true)", ilerr.BinopTypeMismatch)
	testError(t, "(* 3 true)", ilerr.BinopTypeMismatch)
	testError(t, `(- false "hello")`, ilerr.BinopTypeMismatch)
	testError(t, `(/ "foo" 3)`, ilerr.BinopTypeMismatch)
	testError(t, `(concat 3 "world")`, ilerr.BinopTypeMismatch)
	testError(t, "(and 3 6)", ilerr.BinopTypeMismatch)
	testError(t, `(or "hello" "world")`, ilerr.BinopTypeMismatch)
	testError(t, `(= "a" "a")`, ilerr.BinopTypeMismatch)
}

func TestAllNodesAnnotated(t *testing.T) {
	defer recoverPanic(t)
	expr, perr := parser.ParseExpr("(> 3 5)")
	require.Nil(t, perr)
	res, err := check.TypeCheck(expr)
	require.Nil(t, err)

	binop, ok := res.(*typed.Binop)
	require.True(t, ok, "expected a binop, got %T", res)
	assert.Equal(t, types.BoolType, binop.GetType())
	assert.Equal(t, types.IntType, binop.Lhs.GetType())
	assert.Equal(t, types.IntType, binop.Rhs.GetType())

	typed.Walk(res, func(e typed.Expr) bool {
		assert.NotNil(t, e.GetType(), "%s has no type", e.Describe())
		return true
	})
}

func TestLists(t *testing.T) {
	testType(t, "(null int)", "(list int)")
	testType(t, "(null bool)", "(list bool)")
	testType(t, "(cons 3 (null int))", "(list int)")
	testType(t, "(cons 3 (cons 4 (null int)))", "(list int)")
	testType(t, `(cons "foo" (cons "bar" (null string)))`, "(list string)")
	testType(t, "(car (null int))", "int")
	testType(t, "(cdr (null int))", "(list int)")
	testType(t, "(car (cons 3 (null int)))", "int")
	testType(t, "(cdr (cons 3 (null int)))", "(list int)")
	testType(t, "(null? (null int))", "bool")
	// null? accepts any operand
	testType(t, "(null? 3)", "bool")

	testError(t, `(cons "hey" (null int))`, ilerr.ConsTypeMismatch)
	testError(t, "(cons 3 4)", ilerr.ConsTypeMismatch)
	testError(t, "(car 3)", ilerr.NotAList)
	testError(t, "(cdr 3)", ilerr.NotAList)
}

func TestTuples(t *testing.T) {
	testType(t, "(make-tuple)", "(tuple)")
	testType(t, `(make-tuple 3 "hello")`, "(tuple int string)")
	testType(t, `(tuple-ref (make-tuple 3 "hello") 0)`, "int")
	testType(t, `(tuple-ref (make-tuple 3 "hello") 1)`, "string")

	testError(t, `(tuple-ref (make-tuple 3 "hello") 2)`, ilerr.TupleIndexOutOfRange)
	testError(t, "(tuple-ref (cons 3 (null int)) 0)", ilerr.NotATuple)
	testError(t, "(tuple-ref (make-tuple) 0)", ilerr.TupleIndexOutOfRange)
}

func TestTupleIndexMustBeLiteral(t *testing.T) {
	_, err := parser.ParseExpr(`(tuple-ref (make-tuple 3 "hello") true)`)
	require.NotNil(t, err)
	assert.Equal(t, ilerr.Parse, err.Code())
}

func TestRecords(t *testing.T) {
	testType(t, "(make-record)", "(record)")
	testType(t, `(make-record (num 3) (name "hello"))`, "(record (num : int) (name : string))")
	testType(t, "(let ((bar 3)) (make-record (foo bar)))", "(record (foo : int))")
	testType(t, `(record-ref (make-record (num 3) (name "hello")) num)`, "int")
	testType(t, `(record-ref (make-record (num 3) (name "hello")) name)`, "string")
	testType(t, "(let ((a (make-record (b 3)))) (record-ref a b))", "int")

	testError(t, "(make-record (foo bar))", ilerr.UnboundVariable)
	testError(t, `(record-ref (make-record (num 3) (name "hello")) foo)`, ilerr.UnknownField)
	testError(t, `(record-ref "hello" foo)`, ilerr.NotARecord)
}

func TestRecordFieldOrderMatters(t *testing.T) {
	scope := env.Of(env.Binding{Name: "f", Type: mustParseType(t, "(-> (record (a : int) (b : int)) int)")})
	testTypeIn(t, scope, "(f (make-record (a 1) (b 2)))", "int")

	expr, perr := parser.ParseExpr("(f (make-record (b 2) (a 1)))")
	require.Nil(t, perr)
	_, err := check.Check(expr, scope)
	require.NotNil(t, err)
	assert.Equal(t, ilerr.ArgTypeMismatch, err.Code())
}

func TestDuplicateFields(t *testing.T) {
	// accepted by default, and the first field wins
	testType(t, `(make-record (num 3) (num "hello"))`, "(record (num : int) (num : string))")
	testType(t, `(record-ref (make-record (num 3) (num "hello")) num)`, "int")

	strict := check.NewChecker(check.Options{RejectDuplicateFields: true}, nil)
	expr, perr := parser.ParseExpr("(make-record (num 3) (num 4))")
	require.Nil(t, perr)
	_, err := strict.Check(expr, env.Empty())
	require.NotNil(t, err)
	assert.Equal(t, ilerr.DuplicateField, err.Code())
	assert.Contains(t, err.Error(), "num")
}

func TestLet(t *testing.T) {
	testType(t, "(let ((x 23)) (+ x 24))", "int")
	testType(t, "(let ((x 3) (y 5)) (+ x y))", "int")
	testType(t, "(let () 3)", "int")

	testError(t, "(let ((x 23)) (+ x y))", ilerr.UnboundVariable)
	// bindings of one let do not see each other
	testError(t, "(let ((x 1) (y x)) y)", ilerr.UnboundVariable)
}

func TestSideEffects(t *testing.T) {
	testType(t, "(begin (+ 3 5))", "int")
	testType(t, "(begin (+ 3 5) (- 4 1))", "int")
	testType(t, `(begin "a" #t)`, "bool")
	testType(t, "(let ((x 3)) (set! x 7))", "int")

	testError(t, `(begin (+ 3 "hello") (- 4 1))`, ilerr.BinopTypeMismatch)
	testError(t, `(begin (+ 3 4) (- 4 "hello"))`, ilerr.BinopTypeMismatch)
	testError(t, "(set! x 7)", ilerr.AssignToUnbound)
	testError(t, "(let ((x 3)) (set! x #t))", ilerr.AssignTypeMismatch)
}

func TestLocalScoping(t *testing.T) {
	testType(t, `(let ((x "hello")) (let ((x 23)) (+ x 24)))`, "int")
	testType(t, "(and (let ((x 5)) (< x 3)) (let ((x false)) (or x true)))", "bool")
	testType(t, "(and ((lambda ((x : int)) : bool (< x 3)) 5) ((lambda ((x : bool)) : bool (and x true)) false))", "bool")

	testError(t, "(+ (let ((x 5)) (+ x 3)) x)", ilerr.UnboundVariable)
	testError(t, "(+ ((lambda ((x : int)) : int x) 3) x)", ilerr.UnboundVariable)
	testError(t, "(begin (let ((x 3)) (+ x 5)) (set! x 7))", ilerr.AssignToUnbound)
}

func TestIf(t *testing.T) {
	testType(t, "(if (< 3 4) 1 -1)", "int")

	testError(t, "(if 3 4 5)", ilerr.NonBooleanCondition)
	testError(t, `(if (< 3 4) "hello" 5)`, ilerr.BranchTypeMismatch)
}

func TestLambda(t *testing.T) {
	testType(t, "(lambda () : int 3)", "(-> int)")
	testType(t, "(lambda ((x : int)) : bool (< x 5))", "(-> int bool)")
	testType(t, "(lambda ((x : int) (y : int)) : int (* x y))", "(-> int int int)")
	testType(t, "(lambda ((fn : (-> int int bool)) (x : int) (y : int)) : bool (fn x y))", "(-> (-> int int bool) int int bool)")

	testError(t, "(lambda () : bool 3)", ilerr.LambdaBodyMismatch)
	testError(t, "(lambda ((x : bool) (y : bool)) : int (+ x y))", ilerr.BinopTypeMismatch)
}

func TestNestedLambdas(t *testing.T) {
	testType(t, `
(let ((a 3))
  (lambda ((f : (-> int int))) : (-> int)
    (lambda () : int (f a))))`, "(-> (-> int int) (-> int))")

	testType(t, `
(let ((a 3))
  (lambda ((f : (-> int int int int))) : (-> int (-> int int))
     (lambda ((z : int)) : (-> int int)
       (lambda ((x : int)) : int
         (f x z a)))))`, "(-> (-> int int int int) (-> int (-> int int)))")

	testType(t, `
(let ((f (lambda ((x : int)) : (-> int int)
           (lambda ((y : int)) : int (+ x y)))))
  ((f 4) 3))`, "int")
}

func TestRecursiveLambdaThroughSet(t *testing.T) {
	testType(t, `
(let ((foo (lambda ((x : int)) : int 0)))
  (set! foo (lambda ((x : int)) : int (if (< x 1) 0 (+ 1 (foo (- x 1)))))))`, "(-> int int)")
}

func TestApply(t *testing.T) {
	testType(t, "((lambda () : int 3))", "int")
	testType(t, "((lambda ((x : int)) : bool (< x 5)) 3)", "bool")
	testType(t, "((lambda ((x : int) (y : int)) : int (* x y)) 5 6)", "int")
	testType(t, `
((lambda ((fn : (-> int int bool)) (x : int) (y : int)) : bool
         (fn x y))
 (lambda ((a : int) (b : int)) : bool (< a b))
 3 5)`, "bool")

	testError(t, "((lambda ((x : int)) : bool (< x 5)))", ilerr.ArityMismatch)
	testError(t, "((lambda ((x : int)) : bool (< x 5)) 3 5)", ilerr.ArityMismatch)
	testError(t, "((lambda ((x : int)) : bool (< x 5)) true)", ilerr.ArgTypeMismatch)
	testError(t, "(3 4)", ilerr.NotAFunction)
	// arity is checked before the arguments
	testError(t, "((lambda ((x : int)) : int x) undefined 2)", ilerr.ArityMismatch)
}

func TestApplyWithEnvironment(t *testing.T) {
	mapType := "(-> (-> int int) (list int) (list int))"
	scope := env.Of(env.Binding{Name: "map", Type: mustParseType(t, mapType)})
	testTypeIn(t, scope, `
(lambda ((f : (-> int int)) (lst : (list int))) : (list int)
  (if (null? lst)
      (null int)
      (cons (f (car lst)) (map f (cdr lst)))))`, mapType)
}

func TestPack(t *testing.T) {
	testType(t, "(pack 3 int (exists T0 T0))", "(exists T0 T0)")
	testType(t, "(pack true bool (exists T0 T0))", "(exists T0 T0)")
	testType(t, "(pack (lambda ((x : int)) : int (+ x 1)) int (exists T0 (-> T0 T0)))", "(exists T0 (-> T0 T0))")
	testType(t, "(pack (lambda ((x : int)) : int (+ x 1)) int (exists T0 (-> T0 int)))", "(exists T0 (-> T0 int))")
	testType(t, `
(pack (make-record (a 0)
                   (f (lambda ((x : int)) : int (+ 1 x))))
      int
      (exists T0 (record (a : T0) (f : (-> T0 int)))))`, "(exists T0 (record (a : T0) (f : (-> T0 int))))")

	testError(t, "(pack true int (exists T0 T0))", ilerr.PackTypeMismatch)
	testError(t, "(pack 3 int (exists T0 bool))", ilerr.PackTypeMismatch)
	testError(t, "(pack (lambda ((x : int)) : bool 3) int (exists T0 (-> T0 T0)))", ilerr.LambdaBodyMismatch)
}

const packedCounter = `(pack (make-record (a 0)
                            (f (lambda ((x : int)) : int (+ 1 x))))
               int
               (exists T0 (record (a : T0) (f : (-> T0 int)))))`

func TestUnpack(t *testing.T) {
	testType(t, `
(let ((p `+packedCounter+`))
  (unpack (q p T0)
          ((record-ref q f) (record-ref q a))))`, "int")

	testType(t, `
(let ((p `+packedCounter+`))
  (unpack (q p T2)
          ((lambda ((y : T2)) : int ((record-ref q f) y))
           (record-ref q a))))`, "int")

	// the abstract type is not int
	testError(t, `
(let ((p `+packedCounter+`))
  (unpack (q p T0)
          (+ (record-ref q a) 1)))`, ilerr.BinopTypeMismatch)

	testError(t, `
(let ((p `+packedCounter+`))
  (unpack (q p T0)
          (record-ref q a)))`, ilerr.ExistentialEscapes)

	testError(t, "(unpack (q 3 T0) q)", ilerr.NotAnExistential)

	// two packages opened under the same name must stay distinct abstract types
	testError(t, `
(let ((p1 (pack (make-record (v 0) (f (lambda ((x : int)) : int (+ x 1))))
                int
                (exists T (record (v : T) (f : (-> T int))))))
      (p2 (pack (make-record (v "s") (f (lambda ((x : string)) : int 0)))
                string
                (exists T (record (v : T) (f : (-> T int)))))))
  (unpack (a p1 X)
    (unpack (b p2 X)
      ((record-ref a f) (record-ref b v)))))`, ilerr.AbstractTypeNotFresh)

	// distinct names are fine, and mixing them is caught
	testType(t, `
(let ((p1 `+packedCounter+`) (p2 `+packedCounter+`))
  (unpack (a p1 X)
    (unpack (b p2 Y)
      (+ ((record-ref a f) (record-ref a a)) ((record-ref b f) (record-ref b a))))))`, "int")
	testError(t, `
(let ((p1 `+packedCounter+`) (p2 `+packedCounter+`))
  (unpack (a p1 X)
    (unpack (b p2 Y)
      ((record-ref a f) (record-ref b a)))))`, ilerr.ArgTypeMismatch)

	// sequential unpacks may reuse a name
	testType(t, `
(let ((p `+packedCounter+`))
  (+ (unpack (q p T0) ((record-ref q f) (record-ref q a)))
     (unpack (q p T0) ((record-ref q f) (record-ref q a)))))`, "int")

	// a type variable free in the environment is not fresh either
	testErrorIn(t, env.Of(
		env.Binding{Name: "p", Type: mustParseType(t, "(exists T T)")},
		env.Binding{Name: "y", Type: mustParseType(t, "X")},
	), "(unpack (q p X) 1)", ilerr.AbstractTypeNotFresh)
}

func TestUnpackAvoidsCapture(t *testing.T) {
	// opening with a name already free in the body of the existential must not capture it
	scope := env.Of(env.Binding{
		Name: "p",
		Type: mustParseType(t, "(exists A (exists B (-> A B)))"),
	})
	testTypeIn(t, scope, "(unpack (q p B) (make-tuple))", "(tuple)")

	expr, perr := parser.ParseExpr("(unpack (q p B) q)")
	require.Nil(t, perr)
	_, err := check.Check(expr, scope)
	require.NotNil(t, err)
	assert.Equal(t, ilerr.ExistentialEscapes, err.Code())
}

func TestAbstractDataType(t *testing.T) {
	testType(t, `
(pack (make-record (new 1)
                   (get (lambda ((i : int)) : int i))
                   (inc (lambda ((i : int)) : int (+ i 1))))
      int
      (exists T0 (record (new : T0)
                         (get : (-> T0 int))
                         (inc : (-> T0 T0)))))`,
		"(exists T0 (record (new : T0) (get : (-> T0 int)) (inc : (-> T0 T0))))")
}

func TestDeterministic(t *testing.T) {
	src := `(let ((p ` + packedCounter + `)) (unpack (q p T0) ((record-ref q f) (record-ref q a))))`
	expr, perr := parser.ParseExpr(src)
	require.Nil(t, perr)

	first, err := check.TypeCheck(expr)
	require.Nil(t, err)
	for j := 0; j < 5; j++ {
		again, err := check.TypeCheck(expr)
		require.Nil(t, err)
		assert.True(t, typed.Equal(first, again))
	}
	assert.Equal(t, strings.Join(strings.Fields(src), " "), typed.ExprString(first))
}

func TestErasePreservesSource(t *testing.T) {
	src := "(let ((x 3)) (lambda ((y : int)) : (list int) (cons (+ x y) (null int))))"
	expr, perr := parser.ParseExpr(src)
	require.Nil(t, perr)
	res, err := check.TypeCheck(expr)
	require.Nil(t, err)
	assert.Equal(t, src, typed.ExprString(res))
}
