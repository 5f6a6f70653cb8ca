package recelim_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/check"
	"github.com/schemewasm/swc/frontend/env"
	"github.com/schemewasm/swc/frontend/recelim"
	"github.com/schemewasm/swc/frontend/typed"
	"github.com/schemewasm/swc/frontend/types"
	"github.com/schemewasm/swc/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checked(t *testing.T, src string, scope *env.Env) typed.Expr {
	t.Helper()
	expr, perr := parser.ParseExpr(src)
	require.Nil(t, perr, "parse %s: %v", src, perr)
	res, err := check.Check(expr, scope)
	require.Nil(t, err, "check %s: %v", src, err)
	return res
}

func parsedType(t *testing.T, src string) types.Type {
	t.Helper()
	typ, err := parser.ParseType(src)
	require.Nil(t, err, "parse type %s: %v", src, err)
	return typ
}

// testElim eliminates records from src and compares the result with the checked expected
// program, which is written without records
func testElim(t *testing.T, src, expected string) {
	testElimIn(t, env.Empty(), src, expected)
}

func testElimIn(t *testing.T, scope *env.Env, src, expected string) {
	t.Run(src, func(t *testing.T) {
		res, err := recelim.Eliminate(checked(t, src, scope))
		require.NoError(t, err)

		elimScope := env.Empty()
		for _, name := range scope.Names() {
			typ, _ := scope.Lookup(name)
			elimType, err := recelim.EliminateType(typ)
			require.NoError(t, err)
			elimScope = elimScope.With(name, elimType)
		}
		want := checked(t, expected, elimScope)
		assert.Truef(t, typed.Equal(want, res), "expected\n  %s : %s\nfound\n  %s : %s",
			typed.ExprString(want), want.GetType(), typed.ExprString(res), res.GetType())
		assert.Empty(t, recelim.FindRecords(res))
	})
}

func TestSimpleRecord(t *testing.T) {
	testElim(t, `(make-record (bar 3) (foo "hello"))`, `(make-tuple 3 "hello")`)
}

func TestFieldOrderInvariant(t *testing.T) {
	testElim(t, `(make-record (foo "hello") (bar 3))`, `(make-tuple 3 "hello")`)
}

func TestRecordRef(t *testing.T) {
	testElim(t, `(record-ref (make-record (foo "hello") (bar 3)) foo)`, `(tuple-ref (make-tuple 3 "hello") 1)`)
	testElim(t, `(record-ref (make-record (foo "hello") (bar 3)) bar)`, `(tuple-ref (make-tuple 3 "hello") 0)`)
	testElim(t, "(make-record)", "(make-tuple)")
}

func TestClosureConvertedPack(t *testing.T) {
	testElim(t, `
(let ((y 3))
  (pack (make-tuple
         (lambda ((env0 : (record (y : int)))
                  (x : int)) : int
           (+ x (record-ref env0 y)))
         (make-record (y y)))
        (record (y : int))
        (exists T1 (tuple (-> T1 int int) T1))))`, `
(let ((y 3))
  (pack (make-tuple
         (lambda ((env0 : (tuple int))
                  (x : int)) : int
           (+ x (tuple-ref env0 0)))
         (make-tuple y))
        (tuple int)
        (exists T1 (tuple (-> T1 int int) T1))))`)
}

func TestNestedRecords(t *testing.T) {
	testElim(t, `
(let ((r (make-record (z (make-record (b #t) (a 1))) (c (null (record (y : int) (x : string)))))))
  (record-ref (record-ref r z) a))`, `
(let ((r (make-tuple (null (tuple string int)) (make-tuple 1 #t))))
  (tuple-ref (tuple-ref r 1) 0))`)
}

func TestRecordsBehindExistentials(t *testing.T) {
	counter := `(pack (make-record (a 0) (f (lambda ((x : int)) : int (+ 1 x))))
                      int
                      (exists T0 (record (a : T0) (f : (-> T0 int)))))`
	counterTuple := `(pack (make-tuple 0 (lambda ((x : int)) : int (+ 1 x)))
                           int
                           (exists T0 (tuple T0 (-> T0 int))))`
	testElim(t,
		`(let ((p `+counter+`)) (unpack (q p T0) ((record-ref q f) (record-ref q a))))`,
		`(let ((p `+counterTuple+`)) (unpack (q p T0) ((tuple-ref q 1) (tuple-ref q 0))))`)
}

func TestRecordsInEnvironment(t *testing.T) {
	scope := env.Of(env.Binding{Name: "point", Type: parsedType(t, "(record (y : int) (x : int))")})
	testElimIn(t, scope, "(+ (record-ref point x) (record-ref point y))", "(+ (tuple-ref point 0) (tuple-ref point 1))")
}

func TestEliminateType(t *testing.T) {
	cases := []struct{ in, out string }{
		{"int", "int"},
		{"(record)", "(tuple)"},
		{"(record (b : int) (a : bool))", "(tuple bool int)"},
		{"(list (record (b : int) (a : (record (d : string) (c : int)))))", "(list (tuple (tuple int string) int))"},
		{"(-> (record (b : int) (a : bool)) T)", "(-> (tuple bool int) T)"},
		{"(exists X (record (n : X) (m : (-> X int))))", "(exists X (tuple (-> X int) X))"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			res, err := recelim.EliminateType(parsedType(t, c.in))
			require.NoError(t, err)
			assert.Equal(t, c.out, res.String())
		})
	}
}

func TestSortedFields(t *testing.T) {
	r := parsedType(t, "(record (c : int) (a : bool) (b : string))").(types.Record)
	sorted, err := recelim.SortedFields(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, types.Record{Fields: sorted}.Names())
	assert.Equal(t, []string{"c", "a", "b"}, r.Names(), "input must not be reordered")

	idx, err := recelim.FieldIndex(r, "c")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestDuplicateFieldsAreAnInvariantError(t *testing.T) {
	res := checked(t, "(record-ref (make-record (a 1) (a 2)) a)", env.Empty())
	_, err := recelim.Eliminate(res)
	require.Error(t, err)
	assert.True(t, errors.Is(err, recelim.ErrInvariant), "unexpected error: %v", err)

	_, err = recelim.EliminateType(parsedType(t, "(record (a : int) (a : bool))"))
	assert.ErrorIs(t, err, recelim.ErrInvariant)
}

func TestUncheckedInputIsRejected(t *testing.T) {
	// a record-ref whose operand carries a non-record type cannot come out of the checker
	bogus := &typed.RecordRef{
		Annotation: typed.Annotation{Type: types.IntType},
		Record:     &typed.IntLit{Annotation: typed.Annotation{Type: types.IntType}, Value: 3},
		Field:      "a",
		Range:      ast.Range{},
	}
	_, err := recelim.Eliminate(bogus)
	assert.ErrorIs(t, err, recelim.ErrInvariant)
}

func TestFindRecords(t *testing.T) {
	res := checked(t, "(lambda ((r : (record (a : int)))) : int (record-ref r a))", env.Empty())
	found := recelim.FindRecords(res)
	assert.NotEmpty(t, found)
	assert.Contains(t, found, "record access: record-ref of a")

	elim, err := recelim.Eliminate(res)
	require.NoError(t, err)
	assert.Empty(t, recelim.FindRecords(elim))
}

func TestEliminateDoesNotModifyInput(t *testing.T) {
	src := `(make-record (foo "hello") (bar 3))`
	res := checked(t, src, env.Empty())
	_, err := recelim.Eliminate(res)
	require.NoError(t, err)
	assert.Equal(t, src, typed.ExprString(res))
}
