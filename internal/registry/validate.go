package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/metagrid/internal/catalog"
	"github.com/specialistvlad/metagrid/internal/ctxlog"
)

// ValidateAgainst performs a strict parity check between the catalog and the
// registered handlers. Every catalog function needs a handler, and every
// parameter list that reaches a handler must match its arity. Handlers the
// catalog never names are only logged.
func (r *Registry) ValidateAgainst(ctx context.Context, model *catalog.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	checkArity := func(owner string, fnName string, fn *RegisteredFunction, params []catalog.Param) {
		if fn.Arity == AnyArity || len(params) == fn.Arity {
			return
		}
		errs = append(errs, fmt.Sprintf("%s: function '%s' takes %d arguments, catalog passes %d", owner, fnName, fn.Arity, len(params)))
	}

	for name, f := range model.Functions {
		fn, ok := r.handlers[name]
		if !ok {
			errs = append(errs, fmt.Sprintf("function '%s': catalog declares it but no Go handler is registered", name))
			continue
		}
		// A function with neither parameters nor returns is only reached
		// through metafeatures carrying their own parameter lists.
		if len(f.Parameters) > 0 || len(f.Returns) > 0 {
			checkArity(fmt.Sprintf("function '%s'", name), name, fn, f.Parameters)
		}
	}

	for name, mf := range model.Metafeatures {
		if !mf.IsPrivateCall() {
			continue
		}
		if fn, ok := r.handlers[mf.Function]; ok {
			checkArity(fmt.Sprintf("metafeature '%s'", name), mf.Function, fn, mf.Parameters)
		}
	}

	for _, name := range r.Names() {
		if _, ok := model.Functions[name]; !ok {
			logger.Warn("Go handler is registered but the catalog never declares it.", "function", name)
		}
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
