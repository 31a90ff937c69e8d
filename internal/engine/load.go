package engine

import (
	"context"
	"fmt"

	"github.com/specialistvlad/metagrid/catalogs"
	"github.com/specialistvlad/metagrid/internal/catalog"
	"github.com/specialistvlad/metagrid/internal/ctxlog"
	"github.com/specialistvlad/metagrid/internal/dag"
	"github.com/specialistvlad/metagrid/internal/fsutil"
	"github.com/specialistvlad/metagrid/internal/hclcatalog"
	"github.com/specialistvlad/metagrid/internal/primitives"
	"github.com/specialistvlad/metagrid/internal/registry"
	"github.com/specialistvlad/metagrid/internal/yamlcatalog"
)

// LoadCatalog finds, parses and merges every catalog file under paths into
// a single model. Files are dispatched to a loader by extension. With no
// paths the embedded default catalog is used.
func LoadCatalog(ctx context.Context, paths ...string) (*catalog.Model, error) {
	logger := ctxlog.FromContext(ctx)
	if len(paths) == 0 {
		logger.Debug("Loading embedded default catalog.")
		return hclcatalog.NewLoader().Parse(ctx, catalogs.DefaultName, catalogs.Default)
	}

	loaders := []catalog.Loader{hclcatalog.NewLoader(), yamlcatalog.NewLoader()}
	model := catalog.NewModel()
	found := 0
	for _, l := range loaders {
		files, err := fsutil.FindFilesByExtension(paths, l.Extensions()...)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve catalog paths %v: %w", paths, err)
		}
		if len(files) == 0 {
			continue
		}
		found += len(files)
		m, err := l.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(m); err != nil {
			return nil, err
		}
	}
	if found == 0 {
		return nil, fmt.Errorf("no catalog files found in %v", paths)
	}
	logger.Info("Catalog loaded.", "files", found, "metafeatures", len(model.Metafeatures))
	return model, nil
}

// Build loads the catalog under paths, or the embedded default, and returns
// an engine backed by the given handler modules. With no modules the
// built-in statistical primitives are used.
func Build(ctx context.Context, paths []string, modules ...registry.Module) (*Engine, error) {
	model, err := LoadCatalog(ctx, paths...)
	if err != nil {
		return nil, err
	}
	graph, err := dag.Load(ctx, model)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		modules = []registry.Module{primitives.Module{}}
	}
	return New(ctx, graph, registry.New(modules...))
}
