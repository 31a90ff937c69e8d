package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/metagrid/internal/ctxlog"
	"github.com/specialistvlad/metagrid/internal/engine"
	"github.com/specialistvlad/metagrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	engine *engine.Engine
}

// NewApp is the constructor for the main application. It loads the catalog,
// registers the handler modules and validates both against each other.
// Any failure here is a fatal startup error and panics.
func NewApp(outW io.Writer, logW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	eng, err := engine.Build(ctx, cfg.CatalogPaths, modules...)
	if err != nil {
		panic(fmt.Errorf("failed to initialize engine: %w", err))
	}
	logger.Debug("Engine ready.", "modules", len(modules), "metafeatures", len(eng.ListMetafeatures()))

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		engine: eng,
	}
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
