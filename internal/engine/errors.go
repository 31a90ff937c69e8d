package engine

import (
	"errors"
	"strings"
)

var (
	// ErrXNotTabular is returned when X is not a *dataset.Table.
	ErrXNotTabular = errors.New("X must be of type dataset.Table")
	// ErrYNotColumn is returned when Y is neither nil nor a *dataset.Column.
	ErrYNotColumn = errors.New("Y must be of type dataset.Column")
	// ErrRegressionTarget is returned for a numeric target.
	ErrRegressionTarget = errors.New("Regression problems are not supported (target feature is numeric)")
	// ErrRowMismatch is returned when X and Y disagree on the number of rows.
	ErrRowMismatch = errors.New("X and Y must have the same number of rows")
	// ErrNegativeTimeout is returned for a timeout below zero.
	ErrNegativeTimeout = errors.New("timeout must not be negative")
)

// InvalidMetafeatureRequestError lists every requested name that is not in
// the catalog, sorted.
type InvalidMetafeatureRequestError struct {
	Names []string
}

func (e *InvalidMetafeatureRequestError) Error() string {
	return "One or more requested metafeatures are not valid: [" + strings.Join(e.Names, ", ") + "]"
}
