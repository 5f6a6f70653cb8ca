// Package swc runs the frontend passes over whole source files
package swc

import (
	"context"
	"go/token"
	"io/fs"
	"strings"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/check"
	"github.com/schemewasm/swc/frontend/env"
	"github.com/schemewasm/swc/frontend/ilerr"
	"github.com/schemewasm/swc/frontend/recelim"
	"github.com/schemewasm/swc/frontend/typed"
	"github.com/schemewasm/swc/internal/log"
	"github.com/schemewasm/swc/parser"
)

var unitLogger = log.DefaultLogger.With("section", "unit")

// Unit is a single source file taken through the frontend passes: parsing, type checking
// of every top-level form, and optionally record elimination.
//
// Errors in the program are reported through Errors, while a non-nil error returned when
// loading means the passes themselves could not run.
type Unit struct {
	name string
	src  string
	fSet *token.FileSet

	forms      []ast.Expr
	checked    []typed.Expr
	eliminated []typed.Expr
	errors     *ilerr.Errors

	checker *check.Checker
	env     *env.Env
}

type LoadSettings struct {
	// Checker defaults to one with the zero check.Options
	Checker *check.Checker
	// Env is the environment every top-level form is checked in
	Env *env.Env
	// EliminateRecords runs record elimination when every form type checks
	EliminateRecords bool
}

// Load reads the file name from fsys and runs the frontend passes on it
func Load(ctx context.Context, fsys fs.ReadFileFS, name string, settings LoadSettings) (*Unit, error) {
	data, err := fsys.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	if settings.Checker == nil {
		settings.Checker = check.NewChecker(check.Options{}, nil)
	}
	u := &Unit{
		name:    name,
		src:     string(data),
		fSet:    token.NewFileSet(),
		checker: settings.Checker,
		env:     settings.Env,
	}

	// parse phase
	forms, parseErr := parser.ParseProgram(u.fSet, name, u.src)
	if parseErr != nil {
		u.errors = u.errors.With(parseErr)
		return u, nil
	}
	u.forms = forms

	// check phase
	checked, checkErrs, err := u.checker.CheckProgram(ctx, forms, u.env)
	if err != nil {
		return nil, errors.Wrap(err, "type check")
	}
	u.checked = checked
	u.errors = u.errors.Merge(checkErrs)

	if !settings.EliminateRecords || u.errors.HasError() {
		return u, nil
	}

	// record elimination phase
	u.eliminated = make([]typed.Expr, 0, len(checked))
	for _, form := range checked {
		elim, err := recelim.Eliminate(form)
		if err != nil {
			return nil, errors.WithMessage(err, "this is a bug and not a type error")
		}
		u.eliminated = append(u.eliminated, elim)
	}
	unitLogger.Debug("eliminated records", "file", name, "forms", len(u.eliminated))
	return u, nil
}

// FromBytes runs Load on a single in-memory file called name
func FromBytes(ctx context.Context, data []byte, name string, settings LoadSettings) (*Unit, error) {
	filesystem := fstest.MapFS{
		name: &fstest.MapFile{Data: data},
	}
	return Load(ctx, filesystem, name, settings)
}

func (u *Unit) Name() string { return u.name }
func (u *Unit) Source() string { return u.src }
func (u *Unit) FileSet() *token.FileSet { return u.fSet }
func (u *Unit) Forms() []ast.Expr { return u.forms }
func (u *Unit) Errors() *ilerr.Errors { return u.errors }
func (u *Unit) Checked() []typed.Expr { return u.checked }
func (u *Unit) Eliminated() []typed.Expr { return u.eliminated }

// DisplayErrors formats every error with its position and source line
func (u *Unit) DisplayErrors() string {
	sb := strings.Builder{}
	for _, err := range u.errors.Errors() {
		sb.WriteString(ilerr.FormatWithCodeAndSource(err, u))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// DisplayTypes prints one "form : type" line per top-level form which type checked
func (u *Unit) DisplayTypes() string {
	return display(u.checked)
}

// DisplayEliminated is DisplayTypes after record elimination
func (u *Unit) DisplayEliminated() string {
	return display(u.eliminated)
}

func display(forms []typed.Expr) string {
	sb := strings.Builder{}
	for _, form := range forms {
		if form == nil {
			continue
		}
		sb.WriteString(typed.ExprString(form))
		sb.WriteString(" : ")
		sb.WriteString(form.GetType().String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Verify prints the eliminated forms, then parses and checks them again in the same
// environment. Each result must be equal to the corresponding eliminated form, and
// must mention no records.
func (u *Unit) Verify(ctx context.Context) error {
	if u.eliminated == nil {
		return errors.New("nothing to verify: records were not eliminated")
	}
	printed := make([]string, 0, len(u.eliminated))
	for _, form := range u.eliminated {
		printed = append(printed, typed.ExprString(form))
	}
	name := u.name + ".elim"
	forms, parseErr := parser.ParseProgram(token.NewFileSet(), name, strings.Join(printed, "\n"))
	if parseErr != nil {
		return errors.Errorf("eliminated output does not parse: %s", ilerr.FormatWithCode(parseErr))
	}
	scope, err := eliminateEnv(u.env)
	if err != nil {
		return err
	}
	rechecked, checkErrs, err := u.checker.CheckProgram(ctx, forms, scope)
	if err != nil {
		return errors.Wrap(err, "re-check")
	}
	if checkErrs.HasError() {
		return errors.Errorf("eliminated output does not type check: %s", ilerr.FormatWithCode(checkErrs.Errors()[0]))
	}
	if len(rechecked) != len(u.eliminated) {
		return errors.Errorf("expected %d forms after re-parsing, found %d", len(u.eliminated), len(rechecked))
	}
	for i, form := range u.eliminated {
		if found := recelim.FindRecords(form); len(found) != 0 {
			return errors.Errorf("form %d still mentions records: %s", i, strings.Join(found, "; "))
		}
		if !typed.Equal(form, rechecked[i]) {
			return errors.Errorf("form %d differs once re-checked: %s : %s", i, printed[i], rechecked[i].GetType())
		}
	}
	return nil
}

// eliminateEnv rewrites the types of every binding in scope, as the eliminated program
// sees them
func eliminateEnv(scope *env.Env) (*env.Env, error) {
	bindings := make([]env.Binding, 0, scope.Len())
	for _, name := range scope.Names() {
		t, _ := scope.Lookup(name)
		elim, err := recelim.EliminateType(t)
		if err != nil {
			return nil, errors.WithMessagef(err, "binding %s", name)
		}
		bindings = append(bindings, env.Binding{Name: name, Type: elim})
	}
	return env.Of(bindings...), nil
}
