// Package resolver lazily evaluates catalog nodes on demand, memoizing every
// successfully computed value for the lifetime of a single Run.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/specialistvlad/metagrid/internal/catalog"
	"github.com/specialistvlad/metagrid/internal/ctxlog"
	"github.com/specialistvlad/metagrid/internal/dag"
)

// Invoker calls a catalog function by name. *registry.Registry satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, name string, args []any, outputs int) ([]any, error)
}

// ErrNotSeeded is returned when an input resource is required but was not
// seeded into the run.
var ErrNotSeeded = errors.New("input resource was not seeded")

// FunctionError wraps an error or recovered panic from a catalog function.
type FunctionError struct {
	Function string
	Err      error
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("function '%s' failed: %v", e.Function, e.Err)
}

func (e *FunctionError) Unwrap() error { return e.Err }

// Run is the call-scoped evaluation state: one memoization cache, owned by a
// single compute call. A Run is not safe for concurrent use.
type Run struct {
	graph   *dag.Graph
	invoker Invoker
	cache   map[string]any
	// active holds the calls currently being evaluated, to catch re-entry.
	active map[string]bool
}

// NewRun returns a run whose cache is pre-seeded with the primitive inputs.
func NewRun(graph *dag.Graph, invoker Invoker, seeds map[string]any) *Run {
	cache := make(map[string]any, len(seeds))
	for name, v := range seeds {
		cache[name] = v
	}
	return &Run{
		graph:   graph,
		invoker: invoker,
		cache:   cache,
		active:  make(map[string]bool),
	}
}

// cached returns the memoized value of name, if any.
func (r *Run) cached(name string) (any, bool) {
	v, ok := r.cache[name]
	return v, ok
}

// Resolve returns the value of the named resource or metafeature, computing
// and caching whatever it requires. Only successful values are cached, so a
// failed dependency is retried by the next caller that needs it.
func (r *Run) Resolve(ctx context.Context, name string) (any, error) {
	if v, ok := r.cache[name]; ok {
		ctxlog.FromContext(ctx).Debug("Cache hit.", "node", name)
		return v, nil
	}

	model := r.graph.Model()
	if res, ok := model.Resources[name]; ok {
		if res.IsInput() {
			return nil, fmt.Errorf("%w: %s", ErrNotSeeded, name)
		}
		f := model.Functions[res.Function]
		if err := r.call(ctx, f.Name, f.Name, f.Parameters, f.Returns); err != nil {
			return nil, err
		}
	} else if mf, ok := model.Metafeatures[name]; ok {
		if mf.IsPrivateCall() {
			if err := r.call(ctx, mf.Name, mf.Function, mf.Parameters, mf.OutputNames()); err != nil {
				return nil, err
			}
		} else {
			f := model.Functions[mf.Function]
			if err := r.call(ctx, f.Name, f.Name, f.Parameters, f.Returns); err != nil {
				return nil, err
			}
		}
	} else {
		return nil, fmt.Errorf("'%s' is not a resource or metafeature", name)
	}

	v, ok := r.cache[name]
	if !ok {
		return nil, fmt.Errorf("evaluating '%s' did not produce a value", name)
	}
	return v, nil
}

// call resolves params, invokes fn once and caches its outputs under
// returns. callID identifies the call: the function name for shared calls,
// the metafeature name for private ones.
func (r *Run) call(ctx context.Context, callID, fn string, params []catalog.Param, returns []string) error {
	if r.active[callID] {
		return fmt.Errorf("re-entrant evaluation of '%s'", callID)
	}
	r.active[callID] = true
	defer delete(r.active, callID)

	args := make([]any, len(params))
	for i, p := range params {
		if p.IsLiteral() {
			args[i] = p.Literal
			continue
		}
		v, err := r.Resolve(ctx, p.Name)
		if err != nil {
			return err
		}
		args[i] = v
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Invoking function.", "function", fn, "call", callID)
	out, err := r.invoke(ctx, fn, args, len(returns))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return err
		}
		return &FunctionError{Function: fn, Err: err}
	}
	for _, name := range returns {
		if _, ok := r.cache[name]; ok {
			return &FunctionError{Function: fn, Err: fmt.Errorf("output '%s' is already cached", name)}
		}
	}
	for i, name := range returns {
		r.cache[name] = out[i]
	}
	return nil
}

func (r *Run) invoke(ctx context.Context, fn string, args []any, outputs int) (out []any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ctxlog.FromContext(ctx).Error("Function panicked.", "function", fn, "panic", rec, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.invoker.Invoke(ctx, fn, args, outputs)
}
