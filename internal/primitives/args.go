package primitives

import (
	"fmt"
	"math"

	"github.com/specialistvlad/metagrid/internal/coltype"
	"github.com/specialistvlad/metagrid/internal/dataset"
	"github.com/specialistvlad/metagrid/internal/value"
)

// ArgError reports a handler argument of the wrong Go type.
type ArgError struct {
	Index int
	Want  string
	Got   any
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("argument %d: expected %s, got %T", e.Index, e.Want, e.Got)
}

func tableArg(args []any, i int) (*dataset.Table, error) {
	t, ok := args[i].(*dataset.Table)
	if !ok || t == nil {
		return nil, &ArgError{Index: i, Want: "*dataset.Table", Got: args[i]}
	}
	return t, nil
}

func columnArg(args []any, i int) (*dataset.Column, error) {
	c, ok := args[i].(*dataset.Column)
	if !ok || c == nil {
		return nil, &ArgError{Index: i, Want: "*dataset.Column", Got: args[i]}
	}
	return c, nil
}

// optionalColumnArg accepts a nil column, used for an absent target.
func optionalColumnArg(args []any, i int) (*dataset.Column, error) {
	if args[i] == nil {
		return nil, nil
	}
	c, ok := args[i].(*dataset.Column)
	if !ok {
		return nil, &ArgError{Index: i, Want: "*dataset.Column", Got: args[i]}
	}
	return c, nil
}

func typesArg(args []any, i int) (coltype.TypeMap, error) {
	m, ok := args[i].(coltype.TypeMap)
	if !ok {
		return nil, &ArgError{Index: i, Want: "coltype.TypeMap", Got: args[i]}
	}
	return m, nil
}

func floatsArg(args []any, i int) ([]float64, error) {
	fs, ok := args[i].([]float64)
	if !ok {
		return nil, &ArgError{Index: i, Want: "[]float64", Got: args[i]}
	}
	return fs, nil
}

func numberArg(args []any, i int) (float64, error) {
	f, err := value.ToFloat(args[i])
	if err != nil {
		return 0, &ArgError{Index: i, Want: "number", Got: args[i]}
	}
	return f, nil
}

func intArg(args []any, i int) (int64, error) {
	switch n := args[i].(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	}
	f, err := numberArg(args, i)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, &ArgError{Index: i, Want: "integer", Got: args[i]}
	}
	return int64(f), nil
}
