// Package env implements the scoped mapping from variable names to their static types.
//
// An Env is an immutable value: With and WithAll return a child scope sharing
// the parent's bindings, and the parent is never modified. Leaving a scope is
// simply dropping the child.
package env

import (
	"log/slog"
	"slices"

	"github.com/benbjohnson/immutable"
	"github.com/schemewasm/swc/frontend/types"
)

// Binding is a single name to type association
type Binding struct {
	Name string
	Type types.Type
}

type Env struct {
	bindings *immutable.Map[string, types.Type]
}

var empty = &Env{bindings: immutable.NewMap[string, types.Type](immutable.NewHasher(""))}

// Empty returns the environment with no bindings
func Empty() *Env {
	return empty
}

// Of returns an environment containing bindings, later bindings shadowing earlier ones
func Of(bindings ...Binding) *Env {
	return Empty().WithAll(bindings...)
}

// Lookup returns the most recently added binding for name
func (e *Env) Lookup(name string) (types.Type, bool) {
	if e == nil {
		return nil, false
	}
	return e.bindings.Get(name)
}

// With returns a child scope of e where name is bound to t
func (e *Env) With(name string, t types.Type) *Env {
	if e == nil {
		e = empty
	}
	return &Env{bindings: e.bindings.Set(name, t)}
}

// WithAll returns a child scope of e with all of bindings added in order,
// so a later binding shadows an earlier one of the same name
func (e *Env) WithAll(bindings ...Binding) *Env {
	if e == nil {
		e = empty
	}
	m := e.bindings
	for _, b := range bindings {
		m = m.Set(b.Name, b.Type)
	}
	return &Env{bindings: m}
}

// Len is the number of visible names
func (e *Env) Len() int {
	if e == nil {
		return 0
	}
	return e.bindings.Len()
}

// Names returns the visible names, sorted
func (e *Env) Names() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, e.bindings.Len())
	itr := e.bindings.Iterator()
	for !itr.Done() {
		name, _, _ := itr.Next()
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (e *Env) LogValue() slog.Value {
	var attrs []slog.Attr
	for _, name := range e.Names() {
		t, _ := e.Lookup(name)
		attrs = append(attrs, slog.String(name, t.String()))
	}
	return slog.GroupValue(attrs...)
}
