package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/dag"
	"github.com/vk/expgridgo/internal/executor"
	"github.com/vk/expgridgo/internal/runstore"
)

// Run executes the main application logic based on the provided configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	var store *runstore.Store
	if appConfig.Ledger != "" {
		var err error
		store, err = runstore.Open(appConfig.Ledger)
		if err != nil {
			return fmt.Errorf("failed to open run ledger: %w", err)
		}
		defer store.Close()
	}

	if appConfig.History > 0 {
		return a.printHistory(ctx, store, appConfig.History)
	}

	if appConfig.HealthcheckPort > 0 {
		go a.startHealthcheckServer(ctx, appConfig.HealthcheckPort)
	}

	a.logger.Debug("Building run graph from config model...")
	graph, err := dag.Build(ctx, a.model)
	if err != nil {
		return fmt.Errorf("failed to build run graph: %w", err)
	}
	a.logger.Debug("Run graph built.", "node_count", len(graph.Nodes))

	a.logger.Info("Hook handlers registered:", "types", a.registry.Types())

	if len(graph.Nodes) == 0 {
		a.logger.Warn("No runs found in graph, execution not required.")
		return nil
	}

	a.logger.Info("🚀 Starting grid execution...",
		"runs", len(graph.Nodes), "workers", appConfig.Workers, "gpus", appConfig.GPUs, "dry_run", appConfig.DryRun)
	exec := executor.New(graph, executor.Options{
		Workers:  appConfig.Workers,
		GPUs:     appConfig.GPUs,
		Mode:     appConfig.Mode,
		Extra:    appConfig.Extra,
		DryRun:   appConfig.DryRun,
		Registry: a.registry,
		Decoder:  a.decoder,
		Store:    store,
		Stdout:   a.outW,
		Stderr:   os.Stderr,
	})
	if err := exec.Run(ctx); err != nil {
		return err
	}
	a.logger.Info("🏁 Grid execution finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}
