package types

import (
	"slices"

	"github.com/hashicorp/go-set/v2"
	"github.com/samber/lo"
)

// Transform should, in order:
//   - copy the type
//   - call Transform(f) on any child types
//   - call f on the rebuilt type
//
// In practice this means rebuilding the entire type bottom-up, applying f to each component,
// and returning the result. Binders are not treated specially: f sees the bound TypeVar
// occurrences of an Exists like any other.
func Transform(t Type, f func(Type) Type) Type {
	switch t := t.(type) {
	case Int, Bool, Str, TypeVar:
		return f(t)
	case List:
		return f(List{Elem: Transform(t.Elem, f)})
	case Tuple:
		return f(Tuple{Elems: transformAll(t.Elems, f)})
	case Record:
		return f(Record{Fields: lo.Map(t.Fields, func(field Field, _ int) Field {
			return Field{Name: field.Name, Type: Transform(field.Type, f)}
		})})
	case Func:
		return f(Func{Params: transformAll(t.Params, f), Ret: Transform(t.Ret, f)})
	case Exists:
		return f(Exists{Var: t.Var, Body: Transform(t.Body, f)})
	default:
		panic("unhandled type variant")
	}
}

func transformAll(ts []Type, f func(Type) Type) []Type {
	if ts == nil {
		return nil
	}
	return lo.Map(ts, func(t Type, _ int) Type { return Transform(t, f) })
}

// FreeTypeVars returns the names of the type variables of t which are not bound by an
// enclosing Exists within t
func FreeTypeVars(t Type) *set.Set[string] {
	free := set.New[string](0)
	collectFree(t, set.New[string](0), free)
	return free
}

// SortedFreeTypeVars is FreeTypeVars in lexicographic order, useful for stable error messages
func SortedFreeTypeVars(t Type) []string {
	names := FreeTypeVars(t).Slice()
	slices.Sort(names)
	return names
}

func collectFree(t Type, bound, into *set.Set[string]) {
	switch t := t.(type) {
	case Int, Bool, Str:
	case TypeVar:
		if !bound.Contains(t.Name) {
			into.Insert(t.Name)
		}
	case List:
		collectFree(t.Elem, bound, into)
	case Tuple:
		for _, elem := range t.Elems {
			collectFree(elem, bound, into)
		}
	case Record:
		for _, field := range t.Fields {
			collectFree(field.Type, bound, into)
		}
	case Func:
		for _, param := range t.Params {
			collectFree(param, bound, into)
		}
		collectFree(t.Ret, bound, into)
	case Exists:
		if bound.Contains(t.Var) {
			collectFree(t.Body, bound, into)
			return
		}
		bound.Insert(t.Var)
		collectFree(t.Body, bound, into)
		bound.Remove(t.Var)
	default:
		panic("unhandled type variant")
	}
}

// ContainsFree reports whether the type variable name occurs free in t
func ContainsFree(t Type, name string) bool {
	return FreeTypeVars(t).Contains(name)
}

// Substitute replaces every free occurrence of the type variable name in t with replacement.
//
// Substitution is capture-avoiding: an Exists binder that would capture a free variable
// of replacement is renamed first.
func Substitute(t Type, name string, replacement Type) Type {
	return substitute(t, name, replacement, FreeTypeVars(replacement))
}

func substitute(t Type, name string, replacement Type, replacementFree *set.Set[string]) Type {
	switch t := t.(type) {
	case Int, Bool, Str:
		return t
	case TypeVar:
		if t.Name == name {
			return replacement
		}
		return t
	case List:
		return List{Elem: substitute(t.Elem, name, replacement, replacementFree)}
	case Tuple:
		return Tuple{Elems: substituteAll(t.Elems, name, replacement, replacementFree)}
	case Record:
		return Record{Fields: lo.Map(t.Fields, func(field Field, _ int) Field {
			return Field{Name: field.Name, Type: substitute(field.Type, name, replacement, replacementFree)}
		})}
	case Func:
		return Func{
			Params: substituteAll(t.Params, name, replacement, replacementFree),
			Ret:    substitute(t.Ret, name, replacement, replacementFree),
		}
	case Exists:
		if t.Var == name {
			// name is shadowed, nothing below is free
			return t
		}
		if !replacementFree.Contains(t.Var) {
			return Exists{Var: t.Var, Body: substitute(t.Body, name, replacement, replacementFree)}
		}
		avoid := FreeTypeVars(t.Body)
		avoid.InsertSet(replacementFree)
		avoid.Insert(name)
		fresh := FreshName(t.Var, avoid)
		renamedBody := substitute(t.Body, t.Var, TypeVar{Name: fresh}, set.From([]string{fresh}))
		return Exists{Var: fresh, Body: substitute(renamedBody, name, replacement, replacementFree)}
	default:
		panic("unhandled type variant")
	}
}

func substituteAll(ts []Type, name string, replacement Type, replacementFree *set.Set[string]) []Type {
	if ts == nil {
		return nil
	}
	return lo.Map(ts, func(t Type, _ int) Type { return substitute(t, name, replacement, replacementFree) })
}

// FreshName returns base primed as many times as needed to not be in avoid
func FreshName(base string, avoid *set.Set[string]) string {
	name := base
	for avoid.Contains(name) {
		name += "'"
	}
	return name
}
