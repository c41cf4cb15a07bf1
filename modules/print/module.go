// Package print provides a hook that writes a human-readable run summary
// to standard output. It is the smallest useful hook and doubles as the
// reference implementation for module authors.
package print

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/registry"
)

// timeUnit keeps printed durations readable.
const timeUnit = time.Millisecond

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the print hook.
type Input struct {
	Prefix string `hcl:"prefix"`
}

// OnEventPrint is the handler for the 'print' hook.
func OnEventPrint(ctx context.Context, input *Input, ev *registry.Event) error {
	ctxlog.FromContext(ctx).Debug("Printing run event.")

	prefix := input.Prefix
	if prefix == "" {
		prefix = "run"
	}

	switch ev.Event {
	case "start":
		fmt.Printf("%s %s: started on gpu %s\n", prefix, ev.RunName, ev.GPU)
	case "success":
		fmt.Printf("%s %s: finished in %s\n", prefix, ev.RunName, ev.Duration.Round(timeUnit))
		printMetrics(prefix, ev)
	case "failure":
		fmt.Printf("%s %s: FAILED with exit code %d after %s\n", prefix, ev.RunName, ev.ExitCode, ev.Duration.Round(timeUnit))
	}
	return nil
}

func printMetrics(prefix string, ev *registry.Event) {
	if len(ev.Metrics) == 0 {
		return
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(ev.Metrics))
	for k := range ev.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("%s %s:   %s = %.6f\n", prefix, ev.RunName, k, ev.Metrics[k])
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHook("print", &registry.RegisteredHook{
		NewInput: func() any { return new(Input) },
		Fn:       OnEventPrint,
	})
}
