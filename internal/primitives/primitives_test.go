package primitives

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/specialistvlad/metagrid/internal/coltype"
	"github.com/specialistvlad/metagrid/internal/dataset"
	"github.com/specialistvlad/metagrid/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T) (*dataset.Table, coltype.TypeMap) {
	t.Helper()
	x, err := dataset.NewTable(
		dataset.NewNumeric("age", []float64{20, 30, math.NaN(), 50}),
		dataset.NewNumeric("score", []float64{1, 1, 2, 2}),
		dataset.MustCategorical("city", []string{"a", "b", "a", "c"}),
	)
	require.NoError(t, err)
	return x, coltype.TypeMap{"age": coltype.Numeric, "score": coltype.Numeric, "city": coltype.Categorical}
}

func TestProfileDistribution(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		for _, v := range ProfileDistribution(nil) {
			assert.True(t, math.IsNaN(v))
		}
	})

	t.Run("single value", func(t *testing.T) {
		p := ProfileDistribution([]float64{7})
		assert.Equal(t, 7.0, p[ProfileMean])
		assert.True(t, math.IsNaN(p[ProfileStdev]))
		assert.Equal(t, 7.0, p[ProfileMin])
		assert.Equal(t, 7.0, p[ProfileMax])
	})

	t.Run("several values", func(t *testing.T) {
		values := []float64{4, 1, 3, 2}
		p := ProfileDistribution(values)
		assert.Equal(t, 2.5, p[ProfileMean])
		assert.InDelta(t, math.Sqrt(5.0/3.0), p[ProfileStdev], 1e-12)
		assert.Equal(t, 1.0, p[ProfileMin])
		assert.Equal(t, 4.0, p[ProfileMax])
		assert.LessOrEqual(t, p[ProfileMin], p[ProfileQ1])
		assert.LessOrEqual(t, p[ProfileQ1], p[ProfileQ2])
		assert.LessOrEqual(t, p[ProfileQ2], p[ProfileQ3])
		assert.LessOrEqual(t, p[ProfileQ3], p[ProfileMax])
		assert.Equal(t, []float64{4, 1, 3, 2}, values, "input must not be reordered")
	})
}

func TestComputeDatasetStatsAndMissing(t *testing.T) {
	x, types := newTable(t)

	assert.Equal(t, DatasetStats{Instances: 4, Features: 3, NumericFeatures: 2, CategoricalFeatures: 1}, ComputeDatasetStats(x, types))
	assert.Equal(t, MissingValues{Cells: 1, Rows: 1, Features: 1}, ComputeMissingValues(x))
}

func TestComputeClassStats(t *testing.T) {
	y := dataset.MustCategorical("y", []string{"b", "a", "a", "c", "a", "b"})
	cs := ComputeClassStats(y)

	assert.Equal(t, 3, cs.Classes)
	assert.InDeltaSlice(t, []float64{2.0 / 6, 3.0 / 6, 1.0 / 6}, cs.Probabilities, 1e-12)
	assert.Equal(t, 1, cs.MinoritySize)
	assert.Equal(t, 3, cs.MajoritySize)
	assert.Equal(t, "a", cs.Majority)
}

func TestEntropy(t *testing.T) {
	assert.InDelta(t, 1.0, Entropy(dataset.MustCategorical("y", []string{"a", "b", "a", "b"})), 1e-12)
	assert.InDelta(t, 0.0, Entropy(dataset.MustCategorical("y", []string{"a", "a"})), 1e-12)
	assert.True(t, math.IsNaN(Entropy(dataset.MustCategorical("y", nil))))
}

func TestColumnStatistics(t *testing.T) {
	x, types := newTable(t)
	numeric, categorical := types.Partition(x)

	assert.Equal(t, []float64{4, 2}, Cardinalities(numeric), "missing counts as a distinct value")
	assert.Equal(t, []float64{3}, Cardinalities(categorical))
	assert.InDeltaSlice(t, []float64{100.0 / 3, 1.5}, Means(numeric), 1e-12)
	assert.InDelta(t, 10*math.Sqrt(7.0/3.0), Stdevs(numeric)[0], 1e-9)
}

func newLabeled(t *testing.T, n int) (*dataset.Table, *dataset.Column) {
	t.Helper()
	values := make([]float64, n)
	labels := make([]string, n)
	for i := range values {
		values[i] = float64(i)
		// 75% "major", 25% "minor".
		if i%4 == 0 {
			labels[i] = "minor"
		} else {
			labels[i] = "major"
		}
	}
	x, err := dataset.NewTable(dataset.NewNumeric("v", values))
	require.NoError(t, err)
	return x, dataset.MustCategorical("y", labels)
}

func TestSample(t *testing.T) {
	ctx := context.Background()
	x, y := newLabeled(t, 400)

	t.Run("small tables are returned whole", func(t *testing.T) {
		xs, ys, err := Sample(ctx, x, y, 1, 1000)
		require.NoError(t, err)
		assert.Same(t, x, xs)
		assert.Same(t, y, ys)
	})

	t.Run("stratified", func(t *testing.T) {
		xs, ys, err := Sample(ctx, x, y, 42, 100)
		require.NoError(t, err)
		assert.Equal(t, 100, xs.NumRows())
		counts, _ := ys.Frequencies()
		assert.Equal(t, map[string]int{"major": 75, "minor": 25}, counts)
	})

	t.Run("deterministic for a seed", func(t *testing.T) {
		a, _, err := Sample(ctx, x, y, 7, 50)
		require.NoError(t, err)
		b, _, err := Sample(ctx, x, y, 7, 50)
		require.NoError(t, err)
		colA, _ := a.Column("v")
		colB, _ := b.Column("v")
		assert.Equal(t, colA.Floats(), colB.Floats())
	})

	t.Run("uniform without target", func(t *testing.T) {
		xs, ys, err := Sample(ctx, x, nil, 3, 10)
		require.NoError(t, err)
		assert.Nil(t, ys)
		assert.Equal(t, 10, xs.NumRows())
	})

	wx, wy := newWideLabeled(t, 3000, 2)

	t.Run("many small classes stay within the limit", func(t *testing.T) {
		xs, ys, err := Sample(ctx, wx, wy, 1, 5000)
		require.NoError(t, err)
		assert.Equal(t, 5000, xs.NumRows())
		assert.Equal(t, 5000, ys.Len())
		assert.Equal(t, 3000, ys.Distinct())
	})

	t.Run("more classes than the limit", func(t *testing.T) {
		xs, ys, err := Sample(ctx, wx, wy, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, 100, xs.NumRows())
		assert.Equal(t, 100, ys.Distinct())

		again, _, err := Sample(ctx, wx, wy, 1, 100)
		require.NoError(t, err)
		colA, _ := xs.Column("v")
		colB, _ := again.Column("v")
		assert.Equal(t, colA.Floats(), colB.Floats())
	})
}

// newWideLabeled builds classes*size rows where every class has size rows.
func newWideLabeled(t *testing.T, classes, size int) (*dataset.Table, *dataset.Column) {
	t.Helper()
	values := make([]float64, classes*size)
	labels := make([]string, classes*size)
	for i := range values {
		values[i] = float64(i)
		labels[i] = fmt.Sprintf("c%d", i/size)
	}
	x, err := dataset.NewTable(dataset.NewNumeric("v", values))
	require.NoError(t, err)
	return x, dataset.MustCategorical("y", labels)
}

func TestAllocate(t *testing.T) {
	testCases := []struct {
		name  string
		sizes []int
		limit int
		want  []int
	}{
		{name: "proportional", sizes: []int{300, 100}, limit: 100, want: []int{75, 25}},
		{name: "largest remainder fills the gap", sizes: []int{5, 5, 5}, limit: 8, want: []int{3, 3, 2}},
		{name: "tiny classes keep one row", sizes: []int{97, 1, 1, 1}, limit: 10, want: []int{7, 1, 1, 1}},
		{name: "one row per class", sizes: []int{2, 2, 2}, limit: 3, want: []int{1, 1, 1}},
		{name: "under the limit", sizes: []int{2, 3}, limit: 10, want: []int{2, 3}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := allocate(tc.sizes, tc.limit)
			assert.Equal(t, tc.want, got)
			sum := 0
			for i, share := range got {
				assert.LessOrEqual(t, share, tc.sizes[i])
				sum += share
			}
			assert.LessOrEqual(t, sum, tc.limit)
		})
	}
}

func TestModule(t *testing.T) {
	r := registry.New(Module{})
	assert.Len(t, r.Names(), 13)

	x, types := newTable(t)
	ctx := context.Background()

	out, err := r.Invoke(ctx, "get_dataset_stats", []any{x, types}, 6)
	require.NoError(t, err)
	assert.Equal(t, []any{4, 3, 2, 1, 2.0 / 3, 1.0 / 3}, out)

	out, err = r.Invoke(ctx, "get_numeric_cardinalities", []any{x, types}, 1)
	require.NoError(t, err)
	assert.Equal(t, []any{[]float64{4, 2}}, out)

	out, err = r.Invoke(ctx, "profile_distribution", []any{[]float64{1, 2, 3}, int64(ProfileMax)}, 1)
	require.NoError(t, err)
	assert.Equal(t, []any{3.0}, out)

	out, err = r.Invoke(ctx, "get_sample", []any{x, nil, int64(1), int64(2)}, 2)
	require.NoError(t, err)
	assert.Nil(t, out[1])

	testCases := []struct {
		fn      string
		args    []any
		wantErr string
	}{
		{fn: "profile_distribution", args: []any{[]float64{1}, int64(9)}, wantErr: "out of range"},
		{fn: "profile_distribution", args: []any{[]float64{1}, 1.5}, wantErr: "expected integer"},
		{fn: "get_dataset_stats", args: []any{"table", types}, wantErr: "expected *dataset.Table"},
		{fn: "get_class_stats", args: []any{nil}, wantErr: "expected *dataset.Column"},
		{fn: "get_majority_class", args: []any{dataset.MustCategorical("y", nil)}, wantErr: "has no labels"},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s error", tc.fn), func(t *testing.T) {
			_, err := r.Invoke(ctx, tc.fn, tc.args, 1)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
