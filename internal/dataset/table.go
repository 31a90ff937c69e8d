package dataset

import "fmt"

// Table is an immutable set of named columns sharing one row count.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewTable builds a table. Column names must be unique and all columns must
// have the same length.
func NewTable(columns ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := t.index[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name())
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name(), c.Len(), t.rows)
		}
		t.index[c.Name()] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

func (t *Table) NumRows() int    { return t.rows }
func (t *Table) NumColumns() int { return len(t.columns) }

// Columns returns the columns in declaration order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Names returns the column names in declaration order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Take returns a new table restricted to the given rows.
func (t *Table) Take(rows []int) *Table {
	out := &Table{index: make(map[string]int, len(t.columns)), rows: len(rows)}
	for i, c := range t.columns {
		out.columns = append(out.columns, c.Take(rows))
		out.index[c.Name()] = i
	}
	return out
}

// Split separates the named target column from the features.
func (t *Table) Split(target string) (*Table, *Column, error) {
	y, ok := t.Column(target)
	if !ok {
		return nil, nil, fmt.Errorf("target column %q not found", target)
	}
	features := make([]*Column, 0, len(t.columns)-1)
	for _, c := range t.columns {
		if c.Name() != target {
			features = append(features, c)
		}
	}
	x, err := NewTable(features...)
	if err != nil {
		return nil, nil, err
	}
	if len(features) == 0 {
		x.rows = t.rows
	}
	return x, y, nil
}
