package ast

import (
	"strconv"
	"strings"
)

// ExprString prints expr back to surface syntax, on a single line
func ExprString(expr Expr) string {
	ctx := newShowContext()
	ctx.showExprWalker(expr)
	return ctx.String()
}

// QuoteString quotes s using only the escapes the reader understands
func QuoteString(s string) string {
	sb := strings.Builder{}
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

type showContext struct {
	*strings.Builder
}

func newShowContext() *showContext {
	return &showContext{Builder: &strings.Builder{}}
}

func (ctx *showContext) open(head string) {
	ctx.WriteString("(")
	ctx.WriteString(head)
}

func (ctx *showContext) close() {
	ctx.WriteString(")")
}

// children writes each of exprs preceded by a space
func (ctx *showContext) children(exprs ...Expr) {
	for _, e := range exprs {
		ctx.WriteString(" ")
		ctx.showExprWalker(e)
	}
}

func (ctx *showContext) showExprWalker(expr Expr) {
	if expr == nil {
		ctx.WriteString("nil")
		return
	}
	switch expr := expr.(type) {
	case *IntLit:
		ctx.WriteString(strconv.FormatInt(expr.Value, 10))
	case *BoolLit:
		if expr.Value {
			ctx.WriteString("#t")
		} else {
			ctx.WriteString("#f")
		}
	case *StrLit:
		ctx.WriteString(QuoteString(expr.Value))
	case *Var:
		ctx.WriteString(expr.Name)
	case *Binop:
		ctx.open(expr.Op.String())
		ctx.children(expr.Lhs, expr.Rhs)
		ctx.close()
	case *Let:
		ctx.open("let (")
		for i, b := range expr.Bindings {
			if i > 0 {
				ctx.WriteString(" ")
			}
			ctx.WriteString("(" + b.Name + " ")
			ctx.showExprWalker(b.Value)
			ctx.WriteString(")")
		}
		ctx.WriteString(")")
		ctx.children(expr.Body)
		ctx.close()
	case *Lambda:
		ctx.open("lambda (")
		for i, p := range expr.Params {
			if i > 0 {
				ctx.WriteString(" ")
			}
			ctx.WriteString("(" + p.Name + " : " + p.Type.String() + ")")
		}
		ctx.WriteString(") : " + expr.Ret.String())
		ctx.children(expr.Body)
		ctx.close()
	case *Apply:
		ctx.WriteString("(")
		ctx.showExprWalker(expr.Func)
		ctx.children(expr.Args...)
		ctx.close()
	case *If:
		ctx.open("if")
		ctx.children(expr.Cond, expr.Then, expr.Else)
		ctx.close()
	case *Begin:
		ctx.open("begin")
		ctx.children(expr.Exprs...)
		ctx.close()
	case *Set:
		ctx.open("set! " + expr.Name)
		ctx.children(expr.Value)
		ctx.close()
	case *Null:
		ctx.open("null " + expr.Elem.String())
		ctx.close()
	case *Cons:
		ctx.open("cons")
		ctx.children(expr.Head, expr.Tail)
		ctx.close()
	case *Car:
		ctx.open("car")
		ctx.children(expr.List)
		ctx.close()
	case *Cdr:
		ctx.open("cdr")
		ctx.children(expr.List)
		ctx.close()
	case *IsNull:
		ctx.open("null?")
		ctx.children(expr.Expr)
		ctx.close()
	case *MakeTuple:
		ctx.open("make-tuple")
		ctx.children(expr.Elems...)
		ctx.close()
	case *TupleRef:
		ctx.open("tuple-ref")
		ctx.children(expr.Tuple)
		ctx.WriteString(" " + strconv.Itoa(expr.Index))
		ctx.close()
	case *MakeRecord:
		ctx.open("make-record")
		for _, f := range expr.Fields {
			ctx.WriteString(" (" + f.Name)
			ctx.children(f.Value)
			ctx.WriteString(")")
		}
		ctx.close()
	case *RecordRef:
		ctx.open("record-ref")
		ctx.children(expr.Record)
		ctx.WriteString(" " + expr.Field)
		ctx.close()
	case *Pack:
		ctx.open("pack")
		ctx.children(expr.Value)
		ctx.WriteString(" " + expr.Witness.String() + " " + expr.Ascribed.String())
		ctx.close()
	case *Unpack:
		ctx.open("unpack (" + expr.Var)
		ctx.children(expr.Packed)
		ctx.WriteString(" " + expr.TypeVar + ")")
		ctx.children(expr.Body)
		ctx.close()
	default:
		panic("unhandled expression variant")
	}
}
