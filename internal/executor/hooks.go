package executor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vk/expgridgo/internal/config"
	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/registry"
)

// fireHooks dispatches every hook subscribed to the event, concurrently.
// Hook failures are logged but never fail the run: a dead notification
// endpoint must not kill a training job that is otherwise healthy.
func (e *Executor) fireHooks(ctx context.Context, hooks []*config.Hook, ev *registry.Event) {
	logger := ctxlog.FromContext(ctx)

	var g errgroup.Group
	for _, hook := range hooks {
		if !hook.FiresOn(ev.Event) {
			continue
		}
		g.Go(func() error {
			if err := e.opts.Registry.Fire(ctx, e.opts.Decoder, hook, ev); err != nil {
				logger.Warn("Hook handler failed.", "hook", hook.Name, "type", hook.Type, "event", ev.Event, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
