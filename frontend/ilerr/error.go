package ilerr

import (
	"fmt"
	"go/token"
	"runtime/debug"
	"strings"

	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/types"
)

// enableDebugErrorPrinting makes errors include the frame that raised them when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None ErrCode = iota
	Parse
	UnboundVariable
	BinopTypeMismatch
	LambdaBodyMismatch
	NotAFunction
	ArityMismatch
	ArgTypeMismatch
	NonBooleanCondition
	BranchTypeMismatch
	AssignToUnbound
	AssignTypeMismatch
	ConsTypeMismatch
	NotAList
	NotATuple
	TupleIndexOutOfRange
	UnknownField
	NotARecord
	DuplicateField
	PackTypeMismatch
	NotAnExistential
	ExistentialEscapes
	AbstractTypeNotFresh
)

var codeNames = map[ErrCode]string{
	None:                 "Unclassified",
	Parse:                "Parse",
	UnboundVariable:      "UnboundVariable",
	BinopTypeMismatch:    "BinopTypeMismatch",
	LambdaBodyMismatch:   "LambdaBodyMismatch",
	NotAFunction:         "NotAFunction",
	ArityMismatch:        "ArityMismatch",
	ArgTypeMismatch:      "ArgTypeMismatch",
	NonBooleanCondition:  "NonBooleanCondition",
	BranchTypeMismatch:   "BranchTypeMismatch",
	AssignToUnbound:      "AssignToUnbound",
	AssignTypeMismatch:   "AssignTypeMismatch",
	ConsTypeMismatch:     "ConsTypeMismatch",
	NotAList:             "NotAList",
	NotATuple:            "NotATuple",
	TupleIndexOutOfRange: "TupleIndexOutOfRange",
	UnknownField:         "UnknownField",
	NotARecord:           "NotARecord",
	DuplicateField:       "DuplicateField",
	PackTypeMismatch:     "PackTypeMismatch",
	NotAnExistential:     "NotAnExistential",
	ExistentialEscapes:   "ExistentialEscapes",
	AbstractTypeNotFresh: "AbstractTypeNotFresh",
}

func (c ErrCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrCode(%d)", int(c))
}

// IleError is a user-facing error: the program is rejected, and Code says why.
// The embedded ast.Positioner points at the offending sub-expression.
type IleError interface {
	Error() string
	Code() ErrCode
	ast.Positioner

	withStack([]byte) IleError
	getStack() []byte
}

func FormatWithCode(e IleError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// FormatWithPosition prefixes FormatWithCode with the file:line:column of e, when known
func FormatWithPosition(e IleError, fset *token.FileSet) string {
	if fset == nil || !e.Pos().IsValid() {
		return FormatWithCode(e)
	}
	return fmt.Sprintf("%v: %s", fset.Position(e.Pos()), FormatWithCode(e))
}

// Source is a parsed file whose positions are registered in FileSet
type Source interface {
	FileSet() *token.FileSet
	Source() string
}

// FormatWithCodeAndSource is FormatWithPosition followed by the offending source line,
// with the start of the error underlined
func FormatWithCodeAndSource(e IleError, src Source) string {
	msg := FormatWithPosition(e, src.FileSet())
	if !e.Pos().IsValid() {
		return msg
	}
	pos := src.FileSet().Position(e.Pos())
	lines := strings.Split(src.Source(), "\n")
	if pos.Line < 1 || pos.Line > len(lines) {
		return msg
	}
	line := lines[pos.Line-1]
	return fmt.Sprintf("%s\n    %s\n    %s^", msg, line, strings.Repeat(" ", max(pos.Column-1, 0)))
}

func New[E IleError](err E) IleError {
	return err.withStack(debug.Stack())
}

type NewUnclassified struct {
	From error
	ast.Positioner
	stack []byte
}

func (e NewUnclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e NewUnclassified) Unwrap() error    { return e.From }
func (e NewUnclassified) Code() ErrCode    { return None }
func (e NewUnclassified) getStack() []byte { return e.stack }
func (e NewUnclassified) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewParse struct {
	ast.Positioner
	ParserMessage string
	Hint          string
	stack         []byte
}

func (e NewParse) Error() string {
	if e.Hint != "" {
		return e.ParserMessage + " (" + e.Hint + ")"
	}
	return e.ParserMessage
}
func (e NewParse) Code() ErrCode    { return Parse }
func (e NewParse) getStack() []byte { return e.stack }
func (e NewParse) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUnboundVariable struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewUnboundVariable) Error() string {
	return fmt.Sprintf("variable '%s' is not defined", e.Name)
}
func (e NewUnboundVariable) Code() ErrCode    { return UnboundVariable }
func (e NewUnboundVariable) getStack() []byte { return e.stack }
func (e NewUnboundVariable) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewBinopTypeMismatch struct {
	ast.Positioner
	Op       ast.Op
	Expected types.Type
	Found    types.Type
	stack    []byte
}

func (e NewBinopTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: operator '%v' expects operands of type '%v', but found '%v'", e.Op, e.Expected, e.Found)
}
func (e NewBinopTypeMismatch) Code() ErrCode    { return BinopTypeMismatch }
func (e NewBinopTypeMismatch) getStack() []byte { return e.stack }
func (e NewBinopTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewLambdaBodyMismatch struct {
	ast.Positioner
	Declared types.Type
	Found    types.Type
	stack    []byte
}

func (e NewLambdaBodyMismatch) Error() string {
	return fmt.Sprintf("type mismatch: lambda declares return type '%v', but its body has type '%v'", e.Declared, e.Found)
}
func (e NewLambdaBodyMismatch) Code() ErrCode    { return LambdaBodyMismatch }
func (e NewLambdaBodyMismatch) getStack() []byte { return e.stack }
func (e NewLambdaBodyMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNotAFunction struct {
	ast.Positioner
	Found types.Type
	stack []byte
}

func (e NewNotAFunction) Error() string {
	return fmt.Sprintf("cannot call a value of non-function type '%v'", e.Found)
}
func (e NewNotAFunction) Code() ErrCode    { return NotAFunction }
func (e NewNotAFunction) getStack() []byte { return e.stack }
func (e NewNotAFunction) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewArityMismatch struct {
	ast.Positioner
	Func     types.Func
	Expected int
	Found    int
	stack    []byte
}

func (e NewArityMismatch) Error() string {
	return fmt.Sprintf("function of type '%v' expects %d arguments, but was called with %d", e.Func, e.Expected, e.Found)
}
func (e NewArityMismatch) Code() ErrCode    { return ArityMismatch }
func (e NewArityMismatch) getStack() []byte { return e.stack }
func (e NewArityMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewArgTypeMismatch struct {
	ast.Positioner
	Index    int
	Expected types.Type
	Found    types.Type
	stack    []byte
}

func (e NewArgTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: argument %d should have type '%v', but found '%v'", e.Index, e.Expected, e.Found)
}
func (e NewArgTypeMismatch) Code() ErrCode    { return ArgTypeMismatch }
func (e NewArgTypeMismatch) getStack() []byte { return e.stack }
func (e NewArgTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNonBooleanCondition struct {
	ast.Positioner
	Found types.Type
	stack []byte
}

func (e NewNonBooleanCondition) Error() string {
	return fmt.Sprintf("condition of if must have type 'bool', but found '%v'", e.Found)
}
func (e NewNonBooleanCondition) Code() ErrCode    { return NonBooleanCondition }
func (e NewNonBooleanCondition) getStack() []byte { return e.stack }
func (e NewNonBooleanCondition) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewBranchTypeMismatch struct {
	ast.Positioner
	Then  types.Type
	Else  types.Type
	stack []byte
}

func (e NewBranchTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: branches of if have different types '%v' and '%v'", e.Then, e.Else)
}
func (e NewBranchTypeMismatch) Code() ErrCode    { return BranchTypeMismatch }
func (e NewBranchTypeMismatch) getStack() []byte { return e.stack }
func (e NewBranchTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewAssignToUnbound struct {
	ast.Positioner
	Name  string
	stack []byte
}

func (e NewAssignToUnbound) Error() string {
	return fmt.Sprintf("cannot set! variable '%s' which is not defined", e.Name)
}
func (e NewAssignToUnbound) Code() ErrCode    { return AssignToUnbound }
func (e NewAssignToUnbound) getStack() []byte { return e.stack }
func (e NewAssignToUnbound) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewAssignTypeMismatch struct {
	ast.Positioner
	Name     string
	Expected types.Type
	Found    types.Type
	stack    []byte
}

func (e NewAssignTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: variable '%s' has type '%v', but was assigned '%v'", e.Name, e.Expected, e.Found)
}
func (e NewAssignTypeMismatch) Code() ErrCode    { return AssignTypeMismatch }
func (e NewAssignTypeMismatch) getStack() []byte { return e.stack }
func (e NewAssignTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewConsTypeMismatch struct {
	ast.Positioner
	Head  types.Type
	Tail  types.Type
	stack []byte
}

func (e NewConsTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: cannot cons a '%v' onto a '%v'", e.Head, e.Tail)
}
func (e NewConsTypeMismatch) Code() ErrCode    { return ConsTypeMismatch }
func (e NewConsTypeMismatch) getStack() []byte { return e.stack }
func (e NewConsTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNotAList struct {
	ast.Positioner
	Op    string
	Found types.Type
	stack []byte
}

func (e NewNotAList) Error() string {
	return fmt.Sprintf("%s expects a list, but found '%v'", e.Op, e.Found)
}
func (e NewNotAList) Code() ErrCode    { return NotAList }
func (e NewNotAList) getStack() []byte { return e.stack }
func (e NewNotAList) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNotATuple struct {
	ast.Positioner
	Found types.Type
	stack []byte
}

func (e NewNotATuple) Error() string {
	return fmt.Sprintf("tuple-ref expects a tuple, but found '%v'", e.Found)
}
func (e NewNotATuple) Code() ErrCode    { return NotATuple }
func (e NewNotATuple) getStack() []byte { return e.stack }
func (e NewNotATuple) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewTupleIndexOutOfRange struct {
	ast.Positioner
	Index int
	Tuple types.Tuple
	stack []byte
}

func (e NewTupleIndexOutOfRange) Error() string {
	return fmt.Sprintf("index %d is out of range for tuple '%v' of length %d", e.Index, e.Tuple, len(e.Tuple.Elems))
}
func (e NewTupleIndexOutOfRange) Code() ErrCode    { return TupleIndexOutOfRange }
func (e NewTupleIndexOutOfRange) getStack() []byte { return e.stack }
func (e NewTupleIndexOutOfRange) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewUnknownField struct {
	ast.Positioner
	Field  string
	Record types.Record
	stack  []byte
}

func (e NewUnknownField) Error() string {
	return fmt.Sprintf("record '%v' has no field '%s'", e.Record, e.Field)
}
func (e NewUnknownField) Code() ErrCode    { return UnknownField }
func (e NewUnknownField) getStack() []byte { return e.stack }
func (e NewUnknownField) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNotARecord struct {
	ast.Positioner
	Found types.Type
	stack []byte
}

func (e NewNotARecord) Error() string {
	return fmt.Sprintf("record-ref expects a record, but found '%v'", e.Found)
}
func (e NewNotARecord) Code() ErrCode    { return NotARecord }
func (e NewNotARecord) getStack() []byte { return e.stack }
func (e NewNotARecord) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewDuplicateField struct {
	ast.Positioner
	Field string
	stack []byte
}

func (e NewDuplicateField) Error() string {
	return fmt.Sprintf("record field '%s' is defined more than once", e.Field)
}
func (e NewDuplicateField) Code() ErrCode    { return DuplicateField }
func (e NewDuplicateField) getStack() []byte { return e.stack }
func (e NewDuplicateField) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewPackTypeMismatch struct {
	ast.Positioner
	Ascribed types.Exists
	Expected types.Type
	Found    types.Type
	stack    []byte
}

func (e NewPackTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: packing into '%v' requires a value of type '%v', but found '%v'", e.Ascribed, e.Expected, e.Found)
}
func (e NewPackTypeMismatch) Code() ErrCode    { return PackTypeMismatch }
func (e NewPackTypeMismatch) getStack() []byte { return e.stack }
func (e NewPackTypeMismatch) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewNotAnExistential struct {
	ast.Positioner
	Found types.Type
	stack []byte
}

func (e NewNotAnExistential) Error() string {
	return fmt.Sprintf("unpack expects an existential, but found '%v'", e.Found)
}
func (e NewNotAnExistential) Code() ErrCode    { return NotAnExistential }
func (e NewNotAnExistential) getStack() []byte { return e.stack }
func (e NewNotAnExistential) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

type NewExistentialEscapes struct {
	ast.Positioner
	TypeVar string
	Found   types.Type
	stack   []byte
}

func (e NewExistentialEscapes) Error() string {
	return fmt.Sprintf("abstract type '%s' escapes its unpack: the body has type '%v'", e.TypeVar, e.Found)
}
func (e NewExistentialEscapes) Code() ErrCode    { return ExistentialEscapes }
func (e NewExistentialEscapes) getStack() []byte { return e.stack }
func (e NewExistentialEscapes) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}

// NewAbstractTypeNotFresh is raised when unpack names its abstract type after a type
// variable already visible where the unpack happens, which would identify the two
type NewAbstractTypeNotFresh struct {
	ast.Positioner
	TypeVar string
	stack   []byte
}

func (e NewAbstractTypeNotFresh) Error() string {
	return fmt.Sprintf("abstract type '%s' is not fresh: a type variable of that name is already in scope", e.TypeVar)
}
func (e NewAbstractTypeNotFresh) Code() ErrCode    { return AbstractTypeNotFresh }
func (e NewAbstractTypeNotFresh) getStack() []byte { return e.stack }
func (e NewAbstractTypeNotFresh) withStack(stack []byte) IleError {
	e.stack = stack
	return e
}
