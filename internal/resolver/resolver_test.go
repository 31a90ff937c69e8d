package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/metagrid/internal/catalog"
	"github.com/specialistvlad/metagrid/internal/dag"
	"github.com/specialistvlad/metagrid/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is a small catalog wired to counting handlers.
type fixture struct {
	graph    *dag.Graph
	registry *registry.Registry
	calls    map[string]int
	failures map[string]int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := catalog.NewModel()
	m.Resources["X"] = &catalog.Resource{Name: "X"}
	m.Resources["Y"] = &catalog.Resource{Name: "Y"}
	m.Resources["Doubled"] = &catalog.Resource{Name: "Doubled", Function: "double"}
	m.Functions["double"] = &catalog.Function{Name: "double", Parameters: []catalog.Param{catalog.Ref("X")}, Returns: []string{"Doubled"}}
	m.Functions["stats"] = &catalog.Function{Name: "stats", Parameters: []catalog.Param{catalog.Ref("Doubled")}, Returns: []string{"Sum", "Count"}}
	m.Functions["pick"] = &catalog.Function{Name: "pick"}
	m.Functions["flaky"] = &catalog.Function{Name: "flaky", Parameters: []catalog.Param{catalog.Ref("X")}, Returns: []string{"Flaky"}}
	m.Functions["explode"] = &catalog.Function{Name: "explode", Parameters: []catalog.Param{catalog.Ref("Y")}, Returns: []string{"Explode"}}
	m.Metafeatures["Sum"] = &catalog.Metafeature{Name: "Sum", Function: "stats"}
	m.Metafeatures["Count"] = &catalog.Metafeature{Name: "Count", Function: "stats"}
	m.Metafeatures["Second"] = &catalog.Metafeature{Name: "Second", Function: "pick", Parameters: []catalog.Param{catalog.Ref("Doubled"), catalog.Lit(int64(1))}}
	m.Metafeatures["Flaky"] = &catalog.Metafeature{Name: "Flaky", Function: "flaky"}
	m.Metafeatures["Explode"] = &catalog.Metafeature{Name: "Explode", Function: "explode"}

	g, err := dag.Load(context.Background(), m)
	require.NoError(t, err)

	f := &fixture{graph: g, registry: registry.New(), calls: make(map[string]int), failures: map[string]int{"flaky": 1}}
	counted := func(name string, h registry.Handler) registry.Handler {
		return func(ctx context.Context, args []any) ([]any, error) {
			f.calls[name]++
			return h(ctx, args)
		}
	}
	f.registry.Register("double", 1, counted("double", func(ctx context.Context, args []any) ([]any, error) {
		xs := args[0].([]int)
		out := make([]int, len(xs))
		for i, x := range xs {
			out[i] = 2 * x
		}
		return []any{out}, nil
	}))
	f.registry.Register("stats", 1, counted("stats", func(ctx context.Context, args []any) ([]any, error) {
		sum := 0
		for _, x := range args[0].([]int) {
			sum += x
		}
		return []any{sum, len(args[0].([]int))}, nil
	}))
	f.registry.Register("pick", 2, counted("pick", func(ctx context.Context, args []any) ([]any, error) {
		return []any{args[0].([]int)[args[1].(int64)]}, nil
	}))
	f.registry.Register("flaky", 1, counted("flaky", func(ctx context.Context, args []any) ([]any, error) {
		if f.failures["flaky"] > 0 {
			f.failures["flaky"]--
			return nil, errors.New("transient")
		}
		return []any{"ok"}, nil
	}))
	f.registry.Register("explode", 1, counted("explode", func(ctx context.Context, args []any) ([]any, error) {
		panic("boom")
	}))
	return f
}

func (f *fixture) run() *Run {
	return NewRun(f.graph, f.registry, map[string]any{"X": []int{1, 2, 3}, "Y": []string{"a"}})
}

func TestResolve_SharedCallIsMemoized(t *testing.T) {
	f := newFixture(t)
	r := f.run()
	ctx := context.Background()

	sum, err := r.Resolve(ctx, "Sum")
	require.NoError(t, err)
	assert.Equal(t, 12, sum)

	// Count came from the same call.
	cached, ok := r.cached("Count")
	require.True(t, ok)
	assert.Equal(t, 3, cached)

	count, err := r.Resolve(ctx, "Count")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	second, err := r.Resolve(ctx, "Second")
	require.NoError(t, err)
	assert.Equal(t, 4, second)

	assert.Equal(t, map[string]int{"double": 1, "stats": 1, "pick": 1}, f.calls)
}

func TestResolve_RefusesToOverwriteCachedOutput(t *testing.T) {
	f := newFixture(t)
	// Count is seeded, so the stats call would replace it.
	r := NewRun(f.graph, f.registry, map[string]any{"X": []int{1, 2, 3}, "Y": []string{"a"}, "Count": 99})

	_, err := r.Resolve(context.Background(), "Sum")
	require.Error(t, err)
	var fnErr *FunctionError
	require.True(t, errors.As(err, &fnErr))
	assert.Equal(t, "stats", fnErr.Function)
	assert.ErrorContains(t, err, "output 'Count' is already cached")

	count, ok := r.cached("Count")
	require.True(t, ok)
	assert.Equal(t, 99, count)
	_, ok = r.cached("Sum")
	assert.False(t, ok)
}

func TestResolve_FailuresAreNotCached(t *testing.T) {
	f := newFixture(t)
	r := f.run()
	ctx := context.Background()

	_, err := r.Resolve(ctx, "Flaky")
	require.Error(t, err)
	var fnErr *FunctionError
	require.True(t, errors.As(err, &fnErr))
	assert.Equal(t, "flaky", fnErr.Function)
	assert.EqualError(t, err, "function 'flaky' failed: transient")

	v, err := r.Resolve(ctx, "Flaky")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, f.calls["flaky"])
}

func TestResolve_PanicIsRecovered(t *testing.T) {
	f := newFixture(t)
	_, err := f.run().Resolve(context.Background(), "Explode")
	require.Error(t, err)
	assert.ErrorContains(t, err, "panic: boom")
}

func TestResolve_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := NewRun(f.graph, f.registry, nil).Resolve(ctx, "Sum")
	assert.ErrorIs(t, err, ErrNotSeeded)

	_, err = f.run().Resolve(ctx, "stats")
	assert.ErrorContains(t, err, "is not a resource or metafeature")

	_, err = f.run().Resolve(ctx, "Nope")
	assert.Error(t, err)
}

func TestResolve_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.run().Resolve(ctx, "Sum")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.calls)
}

func TestResolve_OutputCountMismatch(t *testing.T) {
	f := newFixture(t)
	reg := registry.New()
	reg.Register("double", 1, func(ctx context.Context, args []any) ([]any, error) {
		return []any{1, 2}, nil
	})
	_, err := NewRun(f.graph, reg, map[string]any{"X": []int{1}}).Resolve(context.Background(), "Doubled")
	assert.ErrorContains(t, err, "returned 2 values, catalog declares 1")
}
