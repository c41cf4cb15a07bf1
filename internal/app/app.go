package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/expgridgo/internal/config"
	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
	decoder  config.Decoder
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Fatal configuration errors panic; the caller recovers them into a clean
// exit message.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	app := &App{
		outW:   outW,
		logger: logger,
	}

	// A history listing needs no config model and no registry.
	if appConfig.GridPath == "" {
		return app
	}

	model, decoder, err := loader.Load(ctx, appConfig.GridPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All hook modules registered.", "count", len(modules))

	if err := reg.Validate(ctx, model); err != nil {
		// A mismatch between config and compiled hook handlers must never
		// reach the executor.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	app.registry = reg
	app.model = model
	app.decoder = decoder
	return app
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded configuration model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
