package ast

import "github.com/schemewasm/swc/frontend/types"

// Op is a binary primitive operator, spelled as in the source
type Op string

const (
	OpAdd    Op = "+"
	OpSub    Op = "-"
	OpMul    Op = "*"
	OpDiv    Op = "/"
	OpConcat Op = "concat"
	OpAnd    Op = "and"
	OpOr     Op = "or"
	OpLt     Op = "<"
	OpGt     Op = ">"
	OpLeq    Op = "<="
	OpGeq    Op = ">="
	OpEq     Op = "="
)

var allOps = map[Op]struct{ operand, result types.Type }{
	OpAdd:    {types.IntType, types.IntType},
	OpSub:    {types.IntType, types.IntType},
	OpMul:    {types.IntType, types.IntType},
	OpDiv:    {types.IntType, types.IntType},
	OpConcat: {types.StrType, types.StrType},
	OpAnd:    {types.BoolType, types.BoolType},
	OpOr:     {types.BoolType, types.BoolType},
	OpLt:     {types.IntType, types.BoolType},
	OpGt:     {types.IntType, types.BoolType},
	OpLeq:    {types.IntType, types.BoolType},
	OpGeq:    {types.IntType, types.BoolType},
	OpEq:     {types.IntType, types.BoolType},
}

// OpFromString returns the Op spelled s, if any
func OpFromString(s string) (Op, bool) {
	_, ok := allOps[Op(s)]
	return Op(s), ok
}

// Signature returns the type both operands must have and the type of the result
func (op Op) Signature() (operand, result types.Type) {
	sig, ok := allOps[op]
	if !ok {
		panic("unknown operator " + string(op))
	}
	return sig.operand, sig.result
}

func (op Op) String() string { return string(op) }
