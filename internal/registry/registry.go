package registry

import (
	"context"
	"fmt"
	"sort"
)

// Handler computes the outputs of one catalog function call. args holds the
// resolved parameters in declaration order. The returned slice must have one
// entry per declared return, in order.
type Handler func(ctx context.Context, args []any) ([]any, error)

// AnyArity disables the parameter count check for a handler.
const AnyArity = -1

// RegisteredFunction holds the compiled Go side of a catalog function.
type RegisteredFunction struct {
	Fn Handler
	// Arity is the number of arguments Fn expects, or AnyArity.
	Arity int
}

// Module is the interface that every handler package implements to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered handlers for a single application instance.
// It is populated at startup and read-only afterwards.
type Registry struct {
	handlers map[string]*RegisteredFunction
}

// New creates and initializes a new Registry instance.
func New(modules ...Module) *Registry {
	r := &Registry{handlers: make(map[string]*RegisteredFunction)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterFunction registers the handler for a catalog function. Registering
// the same name twice is a programming error and panics.
func (r *Registry) RegisterFunction(name string, fn *RegisteredFunction) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("function handler with name '%s' already registered", name))
	}
	if fn == nil || fn.Fn == nil {
		panic(fmt.Sprintf("function handler '%s' has no implementation", name))
	}
	r.handlers[name] = fn
}

// Register is shorthand for RegisterFunction.
func (r *Registry) Register(name string, arity int, fn Handler) {
	r.RegisterFunction(name, &RegisteredFunction{Fn: fn, Arity: arity})
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (*RegisteredFunction, bool) {
	fn, ok := r.handlers[name]
	return fn, ok
}

// Names returns the sorted names of every registered handler.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke calls the named handler and checks its output count.
func (r *Registry) Invoke(ctx context.Context, name string, args []any, outputs int) ([]any, error) {
	fn, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("no handler registered for function '%s'", name)
	}
	out, err := fn.Fn(ctx, args)
	if err != nil {
		return nil, err
	}
	if len(out) != outputs {
		return nil, fmt.Errorf("function '%s' returned %d values, catalog declares %d", name, len(out), outputs)
	}
	return out, nil
}
