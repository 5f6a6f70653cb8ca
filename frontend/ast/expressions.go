package ast

import (
	"github.com/schemewasm/swc/frontend/types"
)

var (
	_ Expr = (*IntLit)(nil)
	_ Expr = (*BoolLit)(nil)
	_ Expr = (*StrLit)(nil)
	_ Expr = (*Var)(nil)
	_ Expr = (*Binop)(nil)
	_ Expr = (*Let)(nil)
	_ Expr = (*Lambda)(nil)
	_ Expr = (*Apply)(nil)
	_ Expr = (*If)(nil)
	_ Expr = (*Begin)(nil)
	_ Expr = (*Set)(nil)
	_ Expr = (*Null)(nil)
	_ Expr = (*Cons)(nil)
	_ Expr = (*Car)(nil)
	_ Expr = (*Cdr)(nil)
	_ Expr = (*IsNull)(nil)
	_ Expr = (*MakeTuple)(nil)
	_ Expr = (*TupleRef)(nil)
	_ Expr = (*MakeRecord)(nil)
	_ Expr = (*RecordRef)(nil)
	_ Expr = (*Pack)(nil)
	_ Expr = (*Unpack)(nil)
)

// Expr is the base for all untyped expressions.
//
// The following expressions are supported:
//
//	IntLit, BoolLit, StrLit:  literals
//	Var:                      variable reference
//	Binop:                    binary primitive operation
//	Let:                      parallel let-binding
//	Lambda:                   annotated function abstraction
//	Apply:                    function application
//	If:                       conditional
//	Begin:                    sequence
//	Set:                      assignment to a bound variable
//	Null, Cons, Car, Cdr:     list construction and access
//	IsNull:                   emptiness probe
//	MakeTuple, TupleRef:      positional tuples
//	MakeRecord, RecordRef:    labelled records
//	Pack, Unpack:             existential introduction and elimination
//
// When adding expressions here, you should add them to the switch cases in:
//   - ShowExpr
//   - check.Checker.check
//   - typed.Erase, typed.Equal
//   - recelim.Eliminate
type Expr interface {
	Positioner
	// Describe is what to call this expression in error messages
	Describe() string
	exprNode()
}

type IntLit struct {
	Value int64
	Range
}

type BoolLit struct {
	Value bool
	Range
}

type StrLit struct {
	Value string
	Range
}

type Var struct {
	Name string
	Range
}

type Binop struct {
	Op       Op
	Lhs, Rhs Expr
	Range
}

// LetBinding is a single (name value) pair of a Let
type LetBinding struct {
	Name  string
	Value Expr
}

// Let binds every value, each evaluated in the enclosing scope, for the duration of Body
type Let struct {
	Bindings []LetBinding
	Body     Expr
	Range
}

// Param is an annotated function parameter
type Param struct {
	Name string
	Type types.Type
}

type Lambda struct {
	Params []Param
	Ret    types.Type
	Body   Expr
	Range
}

type Apply struct {
	Func Expr
	Args []Expr
	Range
}

type If struct {
	Cond, Then, Else Expr
	Range
}

type Begin struct {
	// Exprs is never empty
	Exprs []Expr
	Range
}

type Set struct {
	Name  string
	Value Expr
	Range
}

// Null is the empty list of element type Elem
type Null struct {
	Elem types.Type
	Range
}

type Cons struct {
	Head, Tail Expr
	Range
}

type Car struct {
	List Expr
	Range
}

type Cdr struct {
	List Expr
	Range
}

type IsNull struct {
	Expr Expr
	Range
}

type MakeTuple struct {
	Elems []Expr
	Range
}

type TupleRef struct {
	Tuple Expr
	Index int
	Range
}

// RecordField is a single (name value) pair of a MakeRecord
type RecordField struct {
	Name  string
	Value Expr
}

type MakeRecord struct {
	Fields []RecordField
	Range
}

type RecordRef struct {
	Record Expr
	Field  string
	Range
}

// Pack hides Witness behind the existential Ascribed
type Pack struct {
	Value    Expr
	Witness  types.Type
	Ascribed types.Exists
	Range
}

// Unpack opens Packed, binding its value to Var and its hidden type to the abstract TypeVar within Body
type Unpack struct {
	Var     string
	Packed  Expr
	TypeVar string
	Body    Expr
	Range
}

func (*IntLit) exprNode()     {}
func (*BoolLit) exprNode()    {}
func (*StrLit) exprNode()     {}
func (*Var) exprNode()        {}
func (*Binop) exprNode()      {}
func (*Let) exprNode()        {}
func (*Lambda) exprNode()     {}
func (*Apply) exprNode()      {}
func (*If) exprNode()         {}
func (*Begin) exprNode()      {}
func (*Set) exprNode()        {}
func (*Null) exprNode()       {}
func (*Cons) exprNode()       {}
func (*Car) exprNode()        {}
func (*Cdr) exprNode()        {}
func (*IsNull) exprNode()     {}
func (*MakeTuple) exprNode()  {}
func (*TupleRef) exprNode()   {}
func (*MakeRecord) exprNode() {}
func (*RecordRef) exprNode()  {}
func (*Pack) exprNode()       {}
func (*Unpack) exprNode()     {}

func (*IntLit) Describe() string     { return "int literal" }
func (*BoolLit) Describe() string    { return "bool literal" }
func (*StrLit) Describe() string     { return "string literal" }
func (*Var) Describe() string        { return "variable" }
func (*Binop) Describe() string      { return "binary operation" }
func (*Let) Describe() string        { return "let" }
func (*Lambda) Describe() string     { return "lambda" }
func (*Apply) Describe() string      { return "function call" }
func (*If) Describe() string         { return "if" }
func (*Begin) Describe() string      { return "begin" }
func (*Set) Describe() string        { return "assignment" }
func (*Null) Describe() string       { return "empty list" }
func (*Cons) Describe() string       { return "cons" }
func (*Car) Describe() string        { return "car" }
func (*Cdr) Describe() string        { return "cdr" }
func (*IsNull) Describe() string     { return "null?" }
func (*MakeTuple) Describe() string  { return "tuple" }
func (*TupleRef) Describe() string   { return "tuple access" }
func (*MakeRecord) Describe() string { return "record" }
func (*RecordRef) Describe() string  { return "record access" }
func (*Pack) Describe() string       { return "pack" }
func (*Unpack) Describe() string     { return "unpack" }

// Names returns the field names in the order they were written
func (e *MakeRecord) Names() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}
