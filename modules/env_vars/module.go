// Package env_vars provides a hook that snapshots selected environment
// variables when a run starts. Long sweeps are hard to reproduce without
// knowing what CUDA_VISIBLE_DEVICES or PYTHONPATH looked like at launch
// time; this hook puts that context into the structured log.
package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the env_vars hook. With no names given,
// the whole environment is captured.
type Input struct {
	Names []string `hcl:"names"`
}

// OnEventEnvVars is the handler for the 'env_vars' hook.
func OnEventEnvVars(ctx context.Context, input *Input, ev *registry.Event) error {
	logger := ctxlog.FromContext(ctx)

	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}

	captured := envMap
	if len(input.Names) > 0 {
		captured = make(map[string]string, len(input.Names))
		for _, name := range input.Names {
			if value, ok := envMap[name]; ok {
				captured[name] = value
			}
		}
	}

	logger.Info("Environment snapshot for run.", "run", ev.RunName, "event", ev.Event, "env", captured)
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHook("env_vars", &registry.RegisteredHook{
		NewInput: func() any { return new(Input) },
		Fn:       OnEventEnvVars,
	})
}
