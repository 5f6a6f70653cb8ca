package types

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Type is the closed set of static types of the language:
//
//	Int, Bool, Str:  base types
//	List:            homogeneous list
//	Tuple:           positional product
//	Record:          labelled product, fields kept in declaration order
//	Func:            function with ordered parameters
//	TypeVar:         type variable, bound by Exists or introduced by unpack
//	Exists:          second-order existential
//
// When adding variants here, you should add them to the switch cases in:
//   - Transform
//   - FreeTypeVars
//   - Substitute
//   - recelim.EliminateType
type Type interface {
	fmt.Stringer
	// Equals is structural equality. Records compare their field lists as given,
	// so records differing only in field order are not Equals.
	Equals(other Type) bool
	isType()
}

var (
	_ Type = Int{}
	_ Type = Bool{}
	_ Type = Str{}
	_ Type = List{}
	_ Type = Tuple{}
	_ Type = Record{}
	_ Type = Func{}
	_ Type = TypeVar{}
	_ Type = Exists{}
)

var (
	IntType  Type = Int{}
	BoolType Type = Bool{}
	StrType  Type = Str{}
)

type Int struct{}

func (Int) isType()        {}
func (Int) String() string { return "int" }
func (Int) Equals(other Type) bool {
	_, ok := other.(Int)
	return ok
}

type Bool struct{}

func (Bool) isType()        {}
func (Bool) String() string { return "bool" }
func (Bool) Equals(other Type) bool {
	_, ok := other.(Bool)
	return ok
}

type Str struct{}

func (Str) isType()        {}
func (Str) String() string { return "string" }
func (Str) Equals(other Type) bool {
	_, ok := other.(Str)
	return ok
}

type List struct {
	Elem Type
}

func (List) isType() {}

func (t List) String() string { return "(list " + t.Elem.String() + ")" }

func (t List) Equals(other Type) bool {
	o, ok := other.(List)
	return ok && t.Elem.Equals(o.Elem)
}

type Tuple struct {
	Elems []Type
}

func (Tuple) isType() {}

func (t Tuple) String() string {
	return showForm("tuple", lo.Map(t.Elems, func(elem Type, _ int) string { return elem.String() }))
}

func (t Tuple) Equals(other Type) bool {
	o, ok := other.(Tuple)
	return ok && allEqual(t.Elems, o.Elems)
}

// Field is a single labelled component of a Record
type Field struct {
	Name string
	Type Type
}

type Record struct {
	Fields []Field
}

func (Record) isType() {}

func (t Record) String() string {
	return showForm("record", lo.Map(t.Fields, func(f Field, _ int) string {
		return "(" + f.Name + " : " + f.Type.String() + ")"
	}))
}

func (t Record) Equals(other Type) bool {
	o, ok := other.(Record)
	if !ok || len(t.Fields) != len(o.Fields) {
		return false
	}
	for i, field := range t.Fields {
		if field.Name != o.Fields[i].Name || !field.Type.Equals(o.Fields[i].Type) {
			return false
		}
	}
	return true
}

// Lookup returns the first field called name and its position in declaration order
func (t Record) Lookup(name string) (Field, int, bool) {
	return lo.FindIndexOf(t.Fields, func(f Field) bool { return f.Name == name })
}

// Names returns the field names in declaration order
func (t Record) Names() []string {
	return lo.Map(t.Fields, func(f Field, _ int) string { return f.Name })
}

type Func struct {
	Params []Type
	Ret    Type
}

func (Func) isType() {}

func (t Func) String() string {
	parts := lo.Map(t.Params, func(p Type, _ int) string { return p.String() })
	return showForm("->", append(parts, t.Ret.String()))
}

func (t Func) Equals(other Type) bool {
	o, ok := other.(Func)
	return ok && allEqual(t.Params, o.Params) && t.Ret.Equals(o.Ret)
}

type TypeVar struct {
	Name string
}

func (TypeVar) isType()          {}
func (t TypeVar) String() string { return t.Name }

func (t TypeVar) Equals(other Type) bool {
	o, ok := other.(TypeVar)
	return ok && o.Name == t.Name
}

// Exists is the type "there exists Var such that Body"
//
// Equality is syntactic on the bound name: (exists T0 T0) and (exists T1 T1)
// are different types, which is what the checker compares ascriptions against.
type Exists struct {
	Var  string
	Body Type
}

func (Exists) isType() {}

func (t Exists) String() string { return "(exists " + t.Var + " " + t.Body.String() + ")" }

func (t Exists) Equals(other Type) bool {
	o, ok := other.(Exists)
	return ok && o.Var == t.Var && t.Body.Equals(o.Body)
}

func allEqual(fst, snd []Type) bool {
	return slices.EqualFunc(fst, snd, func(a, b Type) bool { return a.Equals(b) })
}

func showForm(head string, parts []string) string {
	if len(parts) == 0 {
		return "(" + head + ")"
	}
	return "(" + head + " " + strings.Join(parts, " ") + ")"
}
