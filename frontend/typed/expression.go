// Package typed holds the output of the type checker: the same expression forms as package ast,
// where every node also carries the types.Type computed for it.
package typed

import (
	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/types"
)

type Expr interface {
	ast.Positioner
	GetType() types.Type
	Describe() string
	exprNode()
}

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

// Annotation is the type computed for a node
type Annotation struct {
	Type types.Type
}

func (a Annotation) GetType() types.Type { return a.Type }

type IntLit struct {
	Annotation
	ast.Range
	Value int64
}

type BoolLit struct {
	Annotation
	ast.Range
	Value bool
}

type StrLit struct {
	Annotation
	ast.Range
	Value string
}

type Var struct {
	Annotation
	ast.Range
	Name string
}

type Binop struct {
	Annotation
	ast.Range
	Op       ast.Op
	Lhs, Rhs Expr
}

type LetBinding struct {
	Name  string
	Value Expr
}

type Let struct {
	Annotation
	ast.Range
	Bindings []LetBinding
	Body     Expr
}

type Lambda struct {
	Annotation
	ast.Range
	Params []ast.Param
	Ret    types.Type
	Body   Expr
}

type Apply struct {
	Annotation
	ast.Range
	Func Expr
	Args []Expr
}

type If struct {
	Annotation
	ast.Range
	Cond, Then, Else Expr
}

type Begin struct {
	Annotation
	ast.Range
	Exprs []Expr
}

type Set struct {
	Annotation
	ast.Range
	Name  string
	Value Expr
}

type Null struct {
	Annotation
	ast.Range
	Elem types.Type
}

type Cons struct {
	Annotation
	ast.Range
	Head, Tail Expr
}

type Car struct {
	Annotation
	ast.Range
	List Expr
}

type Cdr struct {
	Annotation
	ast.Range
	List Expr
}

type IsNull struct {
	Annotation
	ast.Range
	Expr Expr
}

type MakeTuple struct {
	Annotation
	ast.Range
	Elems []Expr
}

type TupleRef struct {
	Annotation
	ast.Range
	Tuple Expr
	Index int
}

type RecordField struct {
	Name  string
	Value Expr
}

type MakeRecord struct {
	Annotation
	ast.Range
	Fields []RecordField
}

type RecordRef struct {
	Annotation
	ast.Range
	Record Expr
	Field  string
}

type Pack struct {
	Annotation
	ast.Range
	Value    Expr
	Witness  types.Type
	Ascribed types.Exists
}

type Unpack struct {
	Annotation
	ast.Range
	Var     string
	Packed  Expr
	TypeVar string
	Body    Expr
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
