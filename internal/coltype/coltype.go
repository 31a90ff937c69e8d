// Package coltype validates caller-supplied column type tags, or infers
// them from the data.
package coltype

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/metagrid/internal/dataset"
)

// Tag is the semantic type of a column.
type Tag string

const (
	Numeric     Tag = "NUMERIC"
	Categorical Tag = "CATEGORICAL"
)

// Valid reports whether t is a recognized tag.
func (t Tag) Valid() bool { return t == Numeric || t == Categorical }

// ErrColumnCountMismatch is returned when the number of supplied tags is not
// the number of feature columns plus the target.
var ErrColumnCountMismatch = errors.New("The number of column_types does not match the number of features plus the target")

// ErrColumnCoverage is returned when the supplied tags have the right count
// but do not name exactly the feature columns and the target.
var ErrColumnCoverage = errors.New("column_types must name every feature and the target exactly once")

// InvalidColumnTypeError lists every column whose tag is not recognized.
type InvalidColumnTypeError struct {
	// Columns maps the offending column name to the tag it was given.
	Columns map[string]string
}

func (e *InvalidColumnTypeError) Error() string {
	names := make([]string, 0, len(e.Columns))
	for name := range e.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Columns[name])
	}
	return "One or more input column types are not valid: " + strings.Join(parts, ", ")
}

// IncompatibleColumnTypeError is returned when a column tagged NUMERIC does
// not hold numeric data.
type IncompatibleColumnTypeError struct {
	Column string
}

func (e *IncompatibleColumnTypeError) Error() string {
	return fmt.Sprintf("column %q is tagged %s but holds non-numeric values", e.Column, Numeric)
}

// TypeMap maps every feature column, and the target when present, to its tag.
type TypeMap map[string]Tag

// Partition splits the feature columns of x by tag, preserving table order.
// Columns not in the map are skipped.
func (m TypeMap) Partition(x *dataset.Table) (numeric, categorical []*dataset.Column) {
	for _, c := range x.Columns() {
		switch m[c.Name()] {
		case Numeric:
			numeric = append(numeric, c)
		case Categorical:
			categorical = append(categorical, c)
		}
	}
	return numeric, categorical
}

// Infer derives the tag of a column from its storage.
func Infer(c *dataset.Column) Tag {
	if c.Kind() == dataset.KindNumeric {
		return Numeric
	}
	return Categorical
}

// ValidateOrInfer returns the type map for x and the optional target y.
//
// With a nil types map every tag is inferred. Otherwise unrecognized tags
// are reported first, then the entry count, then the coverage of names.
func ValidateOrInfer(x *dataset.Table, y *dataset.Column, types map[string]string) (TypeMap, error) {
	columns := x.Columns()
	if y != nil {
		columns = append(columns, y)
	}

	if types == nil {
		out := make(TypeMap, len(columns))
		for _, c := range columns {
			out[c.Name()] = Infer(c)
		}
		return out, nil
	}

	invalid := make(map[string]string)
	for name, tag := range types {
		if !Tag(tag).Valid() {
			invalid[name] = tag
		}
	}
	if len(invalid) > 0 {
		return nil, &InvalidColumnTypeError{Columns: invalid}
	}

	if len(types) != len(columns) {
		return nil, ErrColumnCountMismatch
	}

	out := make(TypeMap, len(columns))
	var missing []string
	for _, c := range columns {
		tag, ok := types[c.Name()]
		if !ok {
			missing = append(missing, c.Name())
			continue
		}
		if Tag(tag) == Numeric && c.Kind() != dataset.KindNumeric {
			return nil, &IncompatibleColumnTypeError{Column: c.Name()}
		}
		out[c.Name()] = Tag(tag)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no type for %s", ErrColumnCoverage, strings.Join(missing, ", "))
	}
	return out, nil
}
