package dataset

import (
	"fmt"
	"io"
	"math"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
)

// DefaultNullValues are the CSV cell spellings read as missing.
var DefaultNullValues = []string{"", "NA", "NaN", "?", "null"}

type numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

type valuer[T numeric] interface {
	arrow.Array
	Value(int) T
}

func numericColumn[T numeric](name string, a valuer[T]) *Column {
	values := make([]float64, a.Len())
	for i := range values {
		if a.IsNull(i) {
			values[i] = math.NaN()
			continue
		}
		values[i] = float64(a.Value(i))
	}
	return NewNumeric(name, values)
}

func labelColumn(name string, a arrow.Array) (*Column, error) {
	values := make([]string, a.Len())
	missing := make([]bool, a.Len())
	for i := range values {
		if a.IsNull(i) {
			missing[i] = true
			continue
		}
		values[i] = a.ValueStr(i)
	}
	return NewCategorical(name, values, missing)
}

// FromArrowRecord converts an arrow record into a Table. Integer and
// floating point arrays become numeric columns; everything else becomes a
// categorical column of its string rendering.
func FromArrowRecord(rec arrow.Record) (*Table, error) {
	columns := make([]*Column, 0, rec.NumCols())
	for i := 0; i < int(rec.NumCols()); i++ {
		name := rec.ColumnName(i)
		var col *Column
		switch a := rec.Column(i).(type) {
		case *array.Float64:
			col = numericColumn[float64](name, a)
		case *array.Float32:
			col = numericColumn[float32](name, a)
		case *array.Int64:
			col = numericColumn[int64](name, a)
		case *array.Int32:
			col = numericColumn[int32](name, a)
		case *array.Int16:
			col = numericColumn[int16](name, a)
		case *array.Int8:
			col = numericColumn[int8](name, a)
		case *array.Uint64:
			col = numericColumn[uint64](name, a)
		case *array.Uint32:
			col = numericColumn[uint32](name, a)
		case *array.Uint16:
			col = numericColumn[uint16](name, a)
		case *array.Uint8:
			col = numericColumn[uint8](name, a)
		default:
			var err error
			if col, err = labelColumn(name, a); err != nil {
				return nil, err
			}
		}
		columns = append(columns, col)
	}
	t, err := NewTable(columns...)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		t.rows = int(rec.NumRows())
	}
	return t, nil
}

// ReadCSV reads a headed CSV stream into a Table, inferring each column's
// arrow type from the data.
func ReadCSV(r io.Reader) (*Table, error) {
	rdr := csv.NewInferringReader(r,
		csv.WithHeader(true),
		csv.WithChunk(-1),
		csv.WithNullReader(true, DefaultNullValues...),
	)
	defer rdr.Release()

	if !rdr.Next() {
		if err := rdr.Err(); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		return nil, fmt.Errorf("csv has no data rows")
	}
	rec := rdr.Record()
	table, err := FromArrowRecord(rec)
	if err != nil {
		return nil, err
	}
	if err := rdr.Err(); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return table, nil
}
