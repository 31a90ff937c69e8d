package primitives

import (
	"context"
	"fmt"

	"github.com/specialistvlad/metagrid/internal/dataset"
	"github.com/specialistvlad/metagrid/internal/registry"
)

// Module registers the default catalog's functions.
type Module struct{}

var _ registry.Module = Module{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.Register("get_dataset_stats", 2, getDatasetStats)
	r.Register("get_dimensionality", 2, getDimensionality)
	r.Register("get_missing_values", 1, getMissingValues)
	r.Register("get_class_stats", 1, getClassStats)
	r.Register("get_majority_class", 1, getMajorityClass)
	r.Register("get_categorical_cardinalities", 2, columnsHandler(categoricalOnly, Cardinalities))
	r.Register("get_numeric_cardinalities", 2, columnsHandler(numericOnly, Cardinalities))
	r.Register("get_sample", 4, getSample)
	r.Register("get_class_entropy", 1, getClassEntropy)
	r.Register("get_attribute_entropies", 2, columnsHandler(categoricalOnly, Entropies))
	r.Register("get_numeric_means", 2, columnsHandler(numericOnly, Means))
	r.Register("get_numeric_stdevs", 2, columnsHandler(numericOnly, Stdevs))
	r.Register("profile_distribution", 2, profileDistribution)
}

func getDatasetStats(ctx context.Context, args []any) ([]any, error) {
	x, err := tableArg(args, 0)
	if err != nil {
		return nil, err
	}
	types, err := typesArg(args, 1)
	if err != nil {
		return nil, err
	}
	s := ComputeDatasetStats(x, types)
	return []any{
		s.Instances,
		s.Features,
		s.NumericFeatures,
		s.CategoricalFeatures,
		ratio(float64(s.NumericFeatures), float64(s.Features)),
		ratio(float64(s.CategoricalFeatures), float64(s.Features)),
	}, nil
}

func getDimensionality(ctx context.Context, args []any) ([]any, error) {
	features, err := numberArg(args, 0)
	if err != nil {
		return nil, err
	}
	instances, err := numberArg(args, 1)
	if err != nil {
		return nil, err
	}
	return []any{ratio(features, instances)}, nil
}

func getMissingValues(ctx context.Context, args []any) ([]any, error) {
	x, err := tableArg(args, 0)
	if err != nil {
		return nil, err
	}
	mv := ComputeMissingValues(x)
	rows, cols := float64(x.NumRows()), float64(x.NumColumns())
	return []any{
		mv.Cells,
		ratio(float64(mv.Cells), rows*cols),
		mv.Rows,
		ratio(float64(mv.Rows), rows),
		mv.Features,
		ratio(float64(mv.Features), cols),
	}, nil
}

func getClassStats(ctx context.Context, args []any) ([]any, error) {
	y, err := columnArg(args, 0)
	if err != nil {
		return nil, err
	}
	cs := ComputeClassStats(y)
	return []any{cs.Classes, cs.Probabilities, cs.MinoritySize, cs.MajoritySize}, nil
}

func getMajorityClass(ctx context.Context, args []any) ([]any, error) {
	y, err := columnArg(args, 0)
	if err != nil {
		return nil, err
	}
	cs := ComputeClassStats(y)
	if cs.Classes == 0 {
		return nil, fmt.Errorf("target column %q has no labels", y.Name())
	}
	return []any{cs.Majority}, nil
}

func getClassEntropy(ctx context.Context, args []any) ([]any, error) {
	y, err := columnArg(args, 0)
	if err != nil {
		return nil, err
	}
	return []any{Entropy(y)}, nil
}

func getSample(ctx context.Context, args []any) ([]any, error) {
	x, err := tableArg(args, 0)
	if err != nil {
		return nil, err
	}
	y, err := optionalColumnArg(args, 1)
	if err != nil {
		return nil, err
	}
	seed, err := intArg(args, 2)
	if err != nil {
		return nil, err
	}
	limit, err := intArg(args, 3)
	if err != nil {
		return nil, err
	}
	xs, ys, err := Sample(ctx, x, y, seed, int(limit))
	if err != nil {
		return nil, err
	}
	// A typed nil would not compare equal to nil downstream.
	if ys == nil {
		return []any{xs, nil}, nil
	}
	return []any{xs, ys}, nil
}

func profileDistribution(ctx context.Context, args []any) ([]any, error) {
	values, err := floatsArg(args, 0)
	if err != nil {
		return nil, err
	}
	index, err := intArg(args, 1)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= profileLen {
		return nil, fmt.Errorf("profile index %d out of range [0, %d)", index, profileLen)
	}
	return []any{ProfileDistribution(values)[index]}, nil
}

type columnFilter func(numeric, categorical []*dataset.Column) []*dataset.Column

func numericOnly(numeric, _ []*dataset.Column) []*dataset.Column         { return numeric }
func categoricalOnly(_, categorical []*dataset.Column) []*dataset.Column { return categorical }

// columnsHandler adapts a per-column statistic taking (X, ColumnTypes).
func columnsHandler(filter columnFilter, fn func([]*dataset.Column) []float64) registry.Handler {
	return func(ctx context.Context, args []any) ([]any, error) {
		x, err := tableArg(args, 0)
		if err != nil {
			return nil, err
		}
		types, err := typesArg(args, 1)
		if err != nil {
			return nil, err
		}
		return []any{fn(filter(types.Partition(x)))}, nil
	}
}
