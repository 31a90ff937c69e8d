package dag

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/metagrid/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestModel returns a small catalog with one shared call, one private
// call and one target-dependent branch.
func newTestModel() *catalog.Model {
	m := catalog.NewModel()
	m.Resources["X"] = &catalog.Resource{Name: "X"}
	m.Resources["Y"] = &catalog.Resource{Name: "Y"}
	m.Resources["ClassCounts"] = &catalog.Resource{Name: "ClassCounts", Function: "get_class_stats"}
	m.Functions["get_stats"] = &catalog.Function{
		Name:       "get_stats",
		Parameters: []catalog.Param{catalog.Ref("X")},
		Returns:    []string{"NumberOfInstances", "NumberOfFeatures"},
	}
	m.Functions["get_class_stats"] = &catalog.Function{
		Name:       "get_class_stats",
		Parameters: []catalog.Param{catalog.Ref("Y")},
		Returns:    []string{"ClassCounts"},
	}
	m.Functions["profile_distribution"] = &catalog.Function{Name: "profile_distribution"}
	m.Metafeatures["NumberOfInstances"] = &catalog.Metafeature{Name: "NumberOfInstances", Function: "get_stats"}
	m.Metafeatures["NumberOfFeatures"] = &catalog.Metafeature{Name: "NumberOfFeatures", Function: "get_stats"}
	m.Metafeatures["MaxClassCount"] = &catalog.Metafeature{
		Name:       "MaxClassCount",
		Function:   "profile_distribution",
		Parameters: []catalog.Param{catalog.Ref("ClassCounts"), catalog.Lit(int64(6))},
	}
	return m
}

func TestLoad(t *testing.T) {
	g, err := Load(context.Background(), newTestModel())
	require.NoError(t, err)

	want := []Edge{
		{From: "ClassCounts", To: "MaxClassCount"},
		{From: "X", To: "get_stats"},
		{From: "Y", To: "get_class_stats"},
		{From: "get_class_stats", To: "ClassCounts"},
		{From: "get_stats", To: "NumberOfFeatures"},
		{From: "get_stats", To: "NumberOfInstances"},
		{From: "profile_distribution", To: "MaxClassCount"},
	}
	if diff := cmp.Diff(want, g.Edges()); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"MaxClassCount", "NumberOfFeatures", "NumberOfInstances"}, g.ListMetafeatures())
	assert.Equal(t, []string{"X", "Y"}, g.Inputs())

	kind, ok := g.Kind("get_stats")
	assert.True(t, ok)
	assert.Equal(t, KindFunction, kind)
	assert.Equal(t, "function", kind.String())
	_, ok = g.Kind("nope")
	assert.False(t, ok)
}

func TestLoad_SchemaErrors(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(m *catalog.Model)
		wantErr string
	}{
		{
			name: "undeclared parameter",
			mutate: func(m *catalog.Model) {
				m.Functions["get_stats"].Parameters = []catalog.Param{catalog.Ref("Missing")}
			},
			wantErr: `function "get_stats": parameter "Missing" is not declared`,
		},
		{
			name: "parameter names a function",
			mutate: func(m *catalog.Model) {
				m.Functions["get_stats"].Parameters = []catalog.Param{catalog.Ref("get_class_stats")}
			},
			wantErr: `parameter "get_class_stats" names a function`,
		},
		{
			name: "undeclared return",
			mutate: func(m *catalog.Model) {
				m.Functions["get_class_stats"].Returns = []string{"ClassCounts", "Ghost"}
			},
			wantErr: `function "get_class_stats": return "Ghost" is not declared`,
		},
		{
			name: "resource function undeclared",
			mutate: func(m *catalog.Model) {
				m.Resources["ClassCounts"].Function = "nowhere"
			},
			wantErr: `resource "ClassCounts": function "nowhere" is not declared`,
		},
		{
			name: "resource function is not a function",
			mutate: func(m *catalog.Model) {
				m.Resources["ClassCounts"].Function = "X"
			},
			wantErr: `function "X" is not declared as a function`,
		},
		{
			name: "resource missing from returns",
			mutate: func(m *catalog.Model) {
				m.Functions["get_class_stats"].Returns = nil
			},
			wantErr: `resource "ClassCounts": function "get_class_stats" does not list it in its returns`,
		},
		{
			name: "shared metafeature missing from returns",
			mutate: func(m *catalog.Model) {
				m.Functions["get_stats"].Returns = []string{"NumberOfInstances"}
			},
			wantErr: `metafeature "NumberOfFeatures": function "get_stats" does not list it`,
		},
		{
			name: "private metafeature returns omit itself",
			mutate: func(m *catalog.Model) {
				m.Metafeatures["MaxClassCount"].Returns = []string{"ClassCounts"}
			},
			wantErr: `metafeature "MaxClassCount": returns must include the metafeature itself`,
		},
		{
			name: "shared metafeature returned by a second function",
			mutate: func(m *catalog.Model) {
				m.Functions["hijack"] = &catalog.Function{
					Name:       "hijack",
					Parameters: []catalog.Param{catalog.Ref("X")},
					Returns:    []string{"NumberOfInstances"},
				}
			},
			wantErr: `function "hijack": return "NumberOfInstances" is produced by function "get_stats"`,
		},
		{
			name: "resource returned by a second function",
			mutate: func(m *catalog.Model) {
				m.Functions["get_stats"].Returns = []string{"NumberOfInstances", "NumberOfFeatures", "ClassCounts"}
			},
			wantErr: `function "get_stats": return "ClassCounts" is produced by function "get_class_stats"`,
		},
		{
			name: "function returns an input resource",
			mutate: func(m *catalog.Model) {
				m.Functions["get_stats"].Returns = []string{"NumberOfInstances", "NumberOfFeatures", "X"}
			},
			wantErr: `function "get_stats": return "X" is an input resource`,
		},
		{
			name: "function returns a private metafeature",
			mutate: func(m *catalog.Model) {
				m.Functions["profile_distribution"].Returns = []string{"MaxClassCount"}
			},
			wantErr: `function "profile_distribution": return "MaxClassCount" is a metafeature with its own parameters`,
		},
		{
			name: "function lists a return twice",
			mutate: func(m *catalog.Model) {
				m.Functions["get_stats"].Returns = []string{"NumberOfInstances", "NumberOfFeatures", "NumberOfInstances"}
			},
			wantErr: `function "get_stats": return "NumberOfInstances" is listed more than once`,
		},
		{
			name: "private metafeature returns an input resource",
			mutate: func(m *catalog.Model) {
				m.Metafeatures["MaxClassCount"].Returns = []string{"MaxClassCount", "X"}
			},
			wantErr: `metafeature "MaxClassCount": return "X" is declared elsewhere in the catalog`,
		},
		{
			name: "private metafeature returns a shared metafeature",
			mutate: func(m *catalog.Model) {
				m.Metafeatures["MaxClassCount"].Returns = []string{"NumberOfInstances", "MaxClassCount"}
			},
			wantErr: `metafeature "MaxClassCount": return "NumberOfInstances" is declared elsewhere in the catalog`,
		},
		{
			name: "private metafeatures share a scratch return",
			mutate: func(m *catalog.Model) {
				m.Metafeatures["MaxClassCount"].Returns = []string{"MaxClassCount", "Scratch"}
				m.Metafeatures["MinClassCount"] = &catalog.Metafeature{
					Name:       "MinClassCount",
					Function:   "profile_distribution",
					Parameters: []catalog.Param{catalog.Ref("ClassCounts"), catalog.Lit(int64(2))},
					Returns:    []string{"MinClassCount", "Scratch"},
				}
			},
			wantErr: `metafeature "MinClassCount": return "Scratch" is also returned by metafeature "MaxClassCount"`,
		},
		{
			name: "private metafeature lists itself twice",
			mutate: func(m *catalog.Model) {
				m.Metafeatures["MaxClassCount"].Returns = []string{"MaxClassCount", "MaxClassCount"}
			},
			wantErr: `metafeature "MaxClassCount": return "MaxClassCount" is listed more than once`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestModel()
			tc.mutate(m)
			_, err := Load(context.Background(), m)
			require.Error(t, err)

			var schemaErr *catalog.SchemaError
			require.True(t, errors.As(err, &schemaErr), "expected a SchemaError, got %T", err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoad_PrivateScratchReturns(t *testing.T) {
	m := newTestModel()
	m.Metafeatures["MaxClassCount"].Returns = []string{"Scratch", "MaxClassCount"}

	g, err := Load(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, []string{"Scratch", "MaxClassCount"}, g.Model().Metafeatures["MaxClassCount"].OutputNames())
	assert.NotContains(t, g.ListMetafeatures(), "Scratch")
}

func TestLoad_CollectsAllProblems(t *testing.T) {
	m := newTestModel()
	m.Functions["get_stats"].Parameters = []catalog.Param{catalog.Ref("A"), catalog.Ref("B")}
	_, err := Load(context.Background(), m)

	var schemaErr *catalog.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Len(t, schemaErr.Problems, 2)
}

func TestLoad_Cycle(t *testing.T) {
	m := catalog.NewModel()
	m.Resources["A"] = &catalog.Resource{Name: "A", Function: "fa"}
	m.Resources["B"] = &catalog.Resource{Name: "B", Function: "fb"}
	m.Functions["fa"] = &catalog.Function{Name: "fa", Parameters: []catalog.Param{catalog.Ref("B")}, Returns: []string{"A"}}
	m.Functions["fb"] = &catalog.Function{Name: "fb", Parameters: []catalog.Param{catalog.Ref("A")}, Returns: []string{"B"}}

	_, err := Load(context.Background(), m)
	require.Error(t, err)
	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.ErrorContains(t, err, "cycle detected")
}

func TestRequirementsOf(t *testing.T) {
	g, err := Load(context.Background(), newTestModel())
	require.NoError(t, err)

	testCases := []struct {
		name string
		want []catalog.Param
	}{
		{name: "NumberOfInstances", want: []catalog.Param{catalog.Ref("X")}},
		{name: "MaxClassCount", want: []catalog.Param{catalog.Ref("ClassCounts"), catalog.Lit(int64(6))}},
		{name: "ClassCounts", want: []catalog.Param{catalog.Ref("Y")}},
		{name: "get_class_stats", want: []catalog.Param{catalog.Ref("Y")}},
		{name: "X", want: nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := g.RequirementsOf(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err = g.RequirementsOf("Bogus")
	assert.ErrorContains(t, err, "node not found")
}

func TestClosureAndOrder(t *testing.T) {
	g, err := Load(context.Background(), newTestModel())
	require.NoError(t, err)

	closure, err := g.Closure("MaxClassCount")
	require.NoError(t, err)
	assert.Equal(t, []string{"ClassCounts", "MaxClassCount", "Y", "get_class_stats", "profile_distribution"}, closure)

	order, err := g.TopologicalOrder("MaxClassCount")
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "get_class_stats", "ClassCounts", "profile_distribution", "MaxClassCount"}, order)

	order, err = g.TopologicalOrder("NumberOfInstances", "NumberOfFeatures")
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "get_stats", "NumberOfFeatures", "NumberOfInstances"}, order)

	_, err = g.Closure("Bogus")
	assert.Error(t, err)
}

func TestDependenciesAndDependents(t *testing.T) {
	g, err := Load(context.Background(), newTestModel())
	require.NoError(t, err)

	deps, err := g.Dependencies("MaxClassCount")
	require.NoError(t, err)
	assert.Equal(t, []string{"ClassCounts", "profile_distribution"}, deps)

	dependents, err := g.Dependents("get_stats")
	require.NoError(t, err)
	assert.Equal(t, []string{"NumberOfFeatures", "NumberOfInstances"}, dependents)

	_, err = g.Dependents("nope")
	assert.ErrorContains(t, err, "node not found")
}

func TestAddEdge_Errors(t *testing.T) {
	g := newGraph()
	g.addNode("a", KindResource)
	g.addNode("a", KindFunction)
	assert.Len(t, g.nodes, 1)
	assert.Equal(t, KindResource, g.nodes["a"].kind)

	assert.ErrorContains(t, g.addEdge("a", "a"), "self-referential edge")
	assert.ErrorContains(t, g.addEdge("dne", "a"), "source node not found")
	assert.ErrorContains(t, g.addEdge("a", "dne"), "destination node not found")
}
