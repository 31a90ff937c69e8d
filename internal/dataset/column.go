package dataset

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the storage representation of a column's values.
type Kind int

const (
	// KindNumeric columns store float64 values; NaN marks a missing cell.
	KindNumeric Kind = iota
	// KindCategorical columns store string labels with a missing mask.
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column is a single named, immutable column of a Table.
type Column struct {
	name    string
	kind    Kind
	numbers []float64
	labels  []string
	missing []bool
}

// NewNumeric builds a numeric column. NaN values are treated as missing.
func NewNumeric(name string, values []float64) *Column {
	numbers := make([]float64, len(values))
	copy(numbers, values)
	return &Column{name: name, kind: KindNumeric, numbers: numbers}
}

// NewCategorical builds a categorical column. missing may be nil when no
// cell is missing; otherwise it must have the same length as values.
func NewCategorical(name string, values []string, missing []bool) (*Column, error) {
	if missing != nil && len(missing) != len(values) {
		return nil, fmt.Errorf("column %q: missing mask has %d entries for %d values", name, len(missing), len(values))
	}
	labels := make([]string, len(values))
	copy(labels, values)
	var mask []bool
	if missing != nil {
		mask = make([]bool, len(missing))
		copy(mask, missing)
	}
	return &Column{name: name, kind: KindCategorical, labels: labels, missing: mask}, nil
}

// MustCategorical is NewCategorical without a missing mask.
func MustCategorical(name string, values []string) *Column {
	c, _ := NewCategorical(name, values, nil)
	return c
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

// Len returns the number of cells, missing ones included.
func (c *Column) Len() int {
	if c.kind == KindNumeric {
		return len(c.numbers)
	}
	return len(c.labels)
}

// IsMissing reports whether the i-th cell is missing.
func (c *Column) IsMissing(i int) bool {
	if c.kind == KindNumeric {
		return math.IsNaN(c.numbers[i])
	}
	return c.missing != nil && c.missing[i]
}

// Float returns the i-th cell of a numeric column. It is NaN for
// categorical columns.
func (c *Column) Float(i int) float64 {
	if c.kind != KindNumeric {
		return math.NaN()
	}
	return c.numbers[i]
}

// Label returns the i-th cell rendered as a label. Missing cells render as "".
func (c *Column) Label(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	if c.kind == KindNumeric {
		return strconv.FormatFloat(c.numbers[i], 'g', -1, 64)
	}
	return c.labels[i]
}

// Floats returns the present (non-missing) values of a numeric column.
func (c *Column) Floats() []float64 {
	if c.kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.numbers))
	for _, v := range c.numbers {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Count returns the number of non-missing cells.
func (c *Column) Count() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if !c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Distinct returns the number of distinct values. Missing cells count as one
// extra distinct value when present.
func (c *Column) Distinct() int {
	seen := make(map[string]struct{})
	hasMissing := false
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			hasMissing = true
			continue
		}
		seen[c.Label(i)] = struct{}{}
	}
	n := len(seen)
	if hasMissing {
		n++
	}
	return n
}

// Frequencies returns the count of each present label, and the labels in
// first-seen order so iteration is deterministic.
func (c *Column) Frequencies() (map[string]int, []string) {
	counts := make(map[string]int)
	var order []string
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		l := c.Label(i)
		if _, ok := counts[l]; !ok {
			order = append(order, l)
		}
		counts[l]++
	}
	return counts, order
}

// Take returns a new column holding the given rows, in order.
func (c *Column) Take(rows []int) *Column {
	out := &Column{name: c.name, kind: c.kind}
	if c.kind == KindNumeric {
		out.numbers = make([]float64, len(rows))
		for i, r := range rows {
			out.numbers[i] = c.numbers[r]
		}
		return out
	}
	out.labels = make([]string, len(rows))
	if c.missing != nil {
		out.missing = make([]bool, len(rows))
	}
	for i, r := range rows {
		out.labels[i] = c.labels[r]
		if c.missing != nil {
			out.missing[i] = c.missing[r]
		}
	}
	return out
}

// AsCategorical returns c with every present cell re-encoded as a label.
// Categorical columns are returned unchanged.
func AsCategorical(c *Column) *Column {
	if c.kind == KindCategorical {
		return c
	}
	out := &Column{name: c.name, kind: KindCategorical, labels: make([]string, len(c.numbers))}
	for i := range c.numbers {
		if c.IsMissing(i) {
			if out.missing == nil {
				out.missing = make([]bool, len(c.numbers))
			}
			out.missing[i] = true
			continue
		}
		out.labels[i] = c.Label(i)
	}
	return out
}
