package check

import (
	"context"
	"sync"

	"github.com/schemewasm/swc/frontend/ast"
	"github.com/schemewasm/swc/frontend/env"
	"github.com/schemewasm/swc/frontend/ilerr"
	"github.com/schemewasm/swc/frontend/typed"
)

// CheckProgram checks independent top-level forms, each in scope, and returns their typed
// trees in input order. A form which fails has a nil entry in the result, and its error is
// reported in the returned *ilerr.Errors, also in input order.
//
// Forms share no state while being checked, so with Options.Parallel they are checked
// concurrently. ctx is only consulted before starting each form: a form is never
// interrupted half-way, and a cancelled ctx is returned as the error.
func (c *Checker) CheckProgram(ctx context.Context, forms []ast.Expr, scope *env.Env) ([]typed.Expr, *ilerr.Errors, error) {
	results := make([]typed.Expr, len(forms))
	errs := make([]ilerr.IleError, len(forms))

	if c.Parallel {
		wg := sync.WaitGroup{}
		for i, form := range forms {
			if ctx.Err() != nil {
				break
			}
			i, form := i, form
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = c.Check(form, scope)
			}()
		}
		wg.Wait()
	} else {
		for i, form := range forms {
			if ctx.Err() != nil {
				break
			}
			results[i], errs[i] = c.Check(form, scope)
		}
	}

	var all *ilerr.Errors
	for _, err := range errs {
		if err != nil {
			all = all.With(err)
		}
	}
	c.logger.Debug("checked program", "forms", len(forms), "errors", all)
	return results, all, ctx.Err()
}
