package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/metagrid/internal/coltype"
	"github.com/specialistvlad/metagrid/internal/ctxlog"
	"github.com/specialistvlad/metagrid/internal/dag"
	"github.com/specialistvlad/metagrid/internal/dataset"
	"github.com/specialistvlad/metagrid/internal/registry"
	"github.com/specialistvlad/metagrid/internal/resolver"
	"github.com/specialistvlad/metagrid/internal/targetdep"
	"github.com/specialistvlad/metagrid/internal/value"
)

// Names of the resources the engine seeds into every run.
const (
	InputX           = "X"
	InputY           = "Y"
	InputColumnTypes = "ColumnTypes"
	InputSeed        = "Seed"
	// SampleX is the sampled feature table. It is computed from the target
	// when one is given, but never requires it.
	SampleX = "XSample"
)

// Request holds the inputs of a single Compute call.
type Request struct {
	// X must be a *dataset.Table.
	X any
	// Y is nil or a *dataset.Column of categorical values.
	Y any
	// ColumnTypes tags every feature and the target. Inferred when nil.
	ColumnTypes map[string]string
	// Metafeatures restricts the computation. Empty means the whole catalog.
	Metafeatures []string
	// Timeout bounds each metafeature separately. Zero disables it.
	Timeout time.Duration
	// Seed makes randomized primitives reproducible. A time-derived seed is
	// used when nil.
	Seed *int64
}

// Engine computes metafeatures over a validated catalog graph.
type Engine struct {
	graph    *dag.Graph
	registry *registry.Registry
	analyzer *targetdep.Analyzer
}

// New builds an engine. Every input the engine seeds must be declared in
// the catalog, and every catalog function must have a handler.
func New(ctx context.Context, graph *dag.Graph, reg *registry.Registry) (*Engine, error) {
	inputs := graph.Inputs()
	for _, name := range inputs {
		switch name {
		case InputX, InputY, InputColumnTypes, InputSeed:
		default:
			return nil, fmt.Errorf("catalog input resource '%s' is never seeded by the engine", name)
		}
	}
	// Seeded names may not be produced by anything else.
	for _, name := range []string{InputX, InputY, InputColumnTypes, InputSeed} {
		if graph.Has(name) && !slices.Contains(inputs, name) {
			return nil, fmt.Errorf("catalog declares engine input '%s' as a computed %s", name, kindOf(graph, name))
		}
	}
	if !slices.Contains(inputs, InputX) {
		return nil, fmt.Errorf("catalog does not declare the '%s' input resource", InputX)
	}
	if err := reg.ValidateAgainst(ctx, graph.Model()); err != nil {
		return nil, err
	}
	return &Engine{
		graph:    graph,
		registry: reg,
		analyzer: targetdep.New(graph, InputY, SampleX),
	}, nil
}

func kindOf(graph *dag.Graph, name string) dag.NodeKind {
	kind, _ := graph.Kind(name)
	return kind
}

// Graph returns the catalog graph the engine evaluates.
func (e *Engine) Graph() *dag.Graph { return e.graph }

// ListMetafeatures returns every metafeature Compute accepts, sorted.
func (e *Engine) ListMetafeatures() []string { return e.graph.ListMetafeatures() }

// Compute validates the request and evaluates the requested metafeatures.
//
// Invalid input fails the whole call before anything runs. Afterwards,
// problems local to one metafeature are folded into the result as TIMEOUT,
// NO_TARGETS or failure values. Only cancellation of ctx aborts a call that
// has started evaluating.
func (e *Engine) Compute(ctx context.Context, req Request) (*Result, error) {
	x, y, err := checkInputs(req)
	if err != nil {
		return nil, err
	}
	if req.Timeout < 0 {
		return nil, ErrNegativeTimeout
	}
	ids, err := e.checkRequested(req.Metafeatures)
	if err != nil {
		return nil, err
	}
	types, err := coltype.ValidateOrInfer(x, y, req.ColumnTypes)
	if err != nil {
		return nil, err
	}

	pruned := make(map[string]bool)
	if y == nil {
		dependent, _, err := e.analyzer.Split(ids)
		if err != nil {
			return nil, err
		}
		for _, id := range dependent {
			pruned[id] = true
		}
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	runID := uuid.NewString()
	ctx, logger := ctxlog.With(ctx, "run_id", runID)
	logger.Info("Compute started.", "metafeatures", len(ids), "pruned", len(pruned), "rows", x.NumRows(), "timeout", req.Timeout)

	// Y stays an untyped nil when absent.
	var target any
	if y != nil {
		target = y
	}
	run := resolver.NewRun(e.graph, e.registry, map[string]any{
		InputX:           x,
		InputY:           target,
		InputColumnTypes: types,
		InputSeed:        seed,
	})

	result := newResult(runID, 2*len(ids))
	started := time.Now()
	for _, id := range ids {
		if pruned[id] {
			result.set(id, value.NoTargetsValue())
			result.set(id+TimeSuffix, value.NoTargetsValue())
			continue
		}
		v, elapsed, err := e.evaluate(ctx, run, id, req.Timeout)
		if err != nil {
			logger.Warn("Compute aborted.", "metafeature", id, "error", err)
			return nil, err
		}
		result.set(id, v)
		result.set(id+TimeSuffix, value.Number(elapsed.Seconds()))
	}
	logger.Info("Compute finished.", "duration", time.Since(started))
	return result, nil
}

// evaluate resolves one metafeature under its own deadline. The returned
// error is non-nil only when the parent context is done.
func (e *Engine) evaluate(ctx context.Context, run *resolver.Run, id string, timeout time.Duration) (value.Value, time.Duration, error) {
	mctx, logger := ctxlog.With(ctx, "metafeature", id)
	cancel := func() {}
	if timeout > 0 {
		mctx, cancel = context.WithTimeout(mctx, timeout)
	}
	start := time.Now()
	raw, err := run.Resolve(mctx, id)
	elapsed := time.Since(start)
	cancel()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return value.Value{}, elapsed, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			// Only the value becomes TIMEOUT. The _Time entry stays numeric so
			// the overrun against the budget remains visible.
			logger.Warn("Metafeature timed out.", "timeout", timeout, "elapsed", elapsed)
			return value.TimeoutValue(), elapsed, nil
		}
		logger.Warn("Metafeature failed.", "error", err)
		return value.Failure(err.Error()), elapsed, nil
	}

	v, err := value.Coerce(e.graph.Model().Metafeatures[id].Kind, raw)
	if err != nil {
		logger.Warn("Metafeature returned a value of the wrong kind.", "error", err)
		return value.Failure(err.Error()), elapsed, nil
	}
	logger.Debug("Metafeature computed.", "elapsed", elapsed)
	return v, elapsed, nil
}

func checkInputs(req Request) (*dataset.Table, *dataset.Column, error) {
	x, ok := req.X.(*dataset.Table)
	if !ok || x == nil {
		return nil, nil, ErrXNotTabular
	}
	if req.Y == nil {
		return x, nil, nil
	}
	y, ok := req.Y.(*dataset.Column)
	if !ok {
		return nil, nil, ErrYNotColumn
	}
	if y == nil {
		return x, nil, nil
	}
	if y.Kind() == dataset.KindNumeric {
		return nil, nil, ErrRegressionTarget
	}
	if y.Len() != x.NumRows() {
		return nil, nil, fmt.Errorf("%w: X has %d, Y has %d", ErrRowMismatch, x.NumRows(), y.Len())
	}
	return x, y, nil
}

// checkRequested returns the requested names without duplicates, in first
// occurrence order, or the whole catalog when none are requested.
func (e *Engine) checkRequested(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return e.graph.ListMetafeatures(), nil
	}
	model := e.graph.Model()
	seen := make(map[string]bool, len(requested))
	var ids, invalid []string
	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := model.Metafeatures[id]; !ok {
			invalid = append(invalid, id)
			continue
		}
		ids = append(ids, id)
	}
	if len(invalid) > 0 {
		slices.Sort(invalid)
		return nil, &InvalidMetafeatureRequestError{Names: invalid}
	}
	return ids, nil
}
