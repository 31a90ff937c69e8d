package primitives

import (
	"math"
	"sort"

	"github.com/specialistvlad/metagrid/internal/coltype"
	"github.com/specialistvlad/metagrid/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// Profile indices into the tuple returned by ProfileDistribution.
const (
	ProfileMean = iota
	ProfileStdev
	ProfileMin
	ProfileQ1
	ProfileQ2
	ProfileQ3
	ProfileMax
	profileLen
)

// ProfileDistribution summarizes values as (mean, stdev, min, q1, q2, q3,
// max). Every entry is NaN for an empty distribution; stdev is NaN for a
// single value.
func ProfileDistribution(values []float64) [profileLen]float64 {
	var p [profileLen]float64
	if len(values) == 0 {
		for i := range p {
			p[i] = math.NaN()
		}
		return p
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	p[ProfileMean] = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		p[ProfileStdev] = stat.StdDev(sorted, nil)
	} else {
		p[ProfileStdev] = math.NaN()
	}
	p[ProfileMin] = sorted[0]
	p[ProfileQ1] = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	p[ProfileQ2] = stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	p[ProfileQ3] = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	p[ProfileMax] = sorted[len(sorted)-1]
	return p
}

// DatasetStats describes the shape of a feature table.
type DatasetStats struct {
	Instances           int
	Features            int
	NumericFeatures     int
	CategoricalFeatures int
}

// ComputeDatasetStats counts instances and features by type.
func ComputeDatasetStats(x *dataset.Table, types coltype.TypeMap) DatasetStats {
	numeric, categorical := types.Partition(x)
	return DatasetStats{
		Instances:           x.NumRows(),
		Features:            x.NumColumns(),
		NumericFeatures:     len(numeric),
		CategoricalFeatures: len(categorical),
	}
}

// ratio returns a/b, or NaN when b is zero.
func ratio(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a / b
}

// MissingValues counts missing cells, and the rows and columns holding at
// least one.
type MissingValues struct {
	Cells    int
	Rows     int
	Features int
}

// ComputeMissingValues scans every cell of x once.
func ComputeMissingValues(x *dataset.Table) MissingValues {
	var mv MissingValues
	rowHasMissing := make([]bool, x.NumRows())
	for _, c := range x.Columns() {
		colMissing := false
		for i := 0; i < c.Len(); i++ {
			if c.IsMissing(i) {
				mv.Cells++
				rowHasMissing[i] = true
				colMissing = true
			}
		}
		if colMissing {
			mv.Features++
		}
	}
	for _, m := range rowHasMissing {
		if m {
			mv.Rows++
		}
	}
	return mv
}

// ClassStats describes the class balance of a target column.
type ClassStats struct {
	Classes       int
	Probabilities []float64
	MinoritySize  int
	MajoritySize  int
	// Majority is the most frequent label; ties go to the first seen.
	Majority string
}

// ComputeClassStats counts the present labels of y.
func ComputeClassStats(y *dataset.Column) ClassStats {
	counts, order := y.Frequencies()
	cs := ClassStats{Classes: len(order)}
	total := 0
	for _, label := range order {
		total += counts[label]
	}
	for i, label := range order {
		n := counts[label]
		cs.Probabilities = append(cs.Probabilities, float64(n)/float64(total))
		if i == 0 || n > cs.MajoritySize {
			cs.MajoritySize = n
			cs.Majority = label
		}
		if i == 0 || n < cs.MinoritySize {
			cs.MinoritySize = n
		}
	}
	return cs
}

// Cardinalities returns the number of distinct values of each column.
func Cardinalities(columns []*dataset.Column) []float64 {
	out := make([]float64, len(columns))
	for i, c := range columns {
		out[i] = float64(c.Distinct())
	}
	return out
}

// Entropy returns the Shannon entropy, in bits, of the present values of c.
func Entropy(c *dataset.Column) float64 {
	counts, order := c.Frequencies()
	if len(order) == 0 {
		return math.NaN()
	}
	total := 0
	for _, label := range order {
		total += counts[label]
	}
	p := make([]float64, len(order))
	for i, label := range order {
		p[i] = float64(counts[label]) / float64(total)
	}
	return stat.Entropy(p) / math.Ln2
}

// Entropies returns Entropy for each column.
func Entropies(columns []*dataset.Column) []float64 {
	out := make([]float64, len(columns))
	for i, c := range columns {
		out[i] = Entropy(c)
	}
	return out
}

// Means returns the mean of the present values of each numeric column.
func Means(columns []*dataset.Column) []float64 {
	out := make([]float64, 0, len(columns))
	for _, c := range columns {
		vs := c.Floats()
		if len(vs) == 0 {
			out = append(out, math.NaN())
			continue
		}
		out = append(out, stat.Mean(vs, nil))
	}
	return out
}

// Stdevs returns the sample standard deviation of each numeric column.
func Stdevs(columns []*dataset.Column) []float64 {
	out := make([]float64, 0, len(columns))
	for _, c := range columns {
		vs := c.Floats()
		if len(vs) < 2 {
			out = append(out, math.NaN())
			continue
		}
		out = append(out, stat.StdDev(vs, nil))
	}
	return out
}
