package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/specialistvlad/metagrid/internal/coltype"
	"github.com/specialistvlad/metagrid/internal/ctxlog"
	"github.com/specialistvlad/metagrid/internal/dataset"
	"github.com/specialistvlad/metagrid/internal/engine"
)

// errDatasetLoad marks errors reading or splitting the input dataset.
var errDatasetLoad = errors.New("failed to load dataset")

// Overrides replaces configured request fields for a single computation.
// Nil and empty fields keep the configured value.
type Overrides struct {
	Target       *string
	Metafeatures []string
	Timeout      *time.Duration
	Seed         *int64
}

// LoadDataset reads a CSV table and splits off the target column. A numeric
// target tagged CATEGORICAL in columnTypes is re-encoded as labels.
func LoadDataset(r io.Reader, target string, columnTypes map[string]string) (*dataset.Table, *dataset.Column, error) {
	tbl, err := dataset.ReadCSV(r)
	if err != nil {
		return nil, nil, err
	}
	if target == "" {
		return tbl, nil, nil
	}
	x, y, err := tbl.Split(target)
	if err != nil {
		return nil, nil, err
	}
	if coltype.Tag(columnTypes[target]) == coltype.Categorical {
		y = dataset.AsCategorical(y)
	}
	return x, y, nil
}

// Compute reads a CSV dataset from r and computes the configured
// metafeatures over it.
func (a *App) Compute(ctx context.Context, r io.Reader) (*engine.Result, error) {
	return a.ComputeWith(ctx, r, Overrides{})
}

// ComputeWith is Compute with per-call overrides of the configuration.
func (a *App) ComputeWith(ctx context.Context, r io.Reader, o Overrides) (*engine.Result, error) {
	ctx = a.context(ctx)
	target := a.config.Target
	if o.Target != nil {
		target = *o.Target
	}
	x, y, err := LoadDataset(r, target, a.config.ColumnTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errDatasetLoad, err)
	}
	ctxlog.FromContext(ctx).Debug("Dataset loaded.", "rows", x.NumRows(), "features", x.NumColumns(), "has_target", y != nil)

	req := engine.Request{
		X:            x,
		ColumnTypes:  a.config.ColumnTypes,
		Metafeatures: a.config.Metafeatures,
		Timeout:      a.config.Timeout,
		Seed:         a.config.Seed,
	}
	if y != nil {
		req.Y = y
	}
	if len(o.Metafeatures) > 0 {
		req.Metafeatures = o.Metafeatures
	}
	if o.Timeout != nil {
		req.Timeout = *o.Timeout
	}
	if o.Seed != nil {
		req.Seed = o.Seed
	}
	return a.engine.Compute(ctx, req)
}

// ComputeFile computes the metafeatures of the CSV file at path and renders
// the result to the app's output.
func (a *App) ComputeFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	res, err := a.Compute(ctx, f)
	if err != nil {
		return err
	}
	return Render(a.outW, res, a.config.Output)
}

// List writes every computable metafeature name, one per line.
func (a *App) List() error {
	for _, name := range a.engine.ListMetafeatures() {
		if _, err := fmt.Fprintln(a.outW, name); err != nil {
			return err
		}
	}
	return nil
}

// Graph writes the edge list of the catalog graph, one "from -> to" per line.
func (a *App) Graph() error {
	for _, e := range a.engine.Graph().Edges() {
		if _, err := fmt.Fprintf(a.outW, "%s -> %s\n", e.From, e.To); err != nil {
			return err
		}
	}
	return nil
}
