package registry

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/expgridgo/internal/config"
	"github.com/vk/expgridgo/internal/ctxlog"
)

// Fire decodes the hook block's arguments into the handler's input struct
// and invokes the handler with the event. The decode happens per firing so
// hooks see no shared mutable input state across runs.
func (r *Registry) Fire(ctx context.Context, decoder config.Decoder, hook *config.Hook, ev *Event) error {
	logger := ctxlog.FromContext(ctx).With("hook", hook.Name, "type", hook.Type, "event", ev.Event)

	registered, ok := r.hooks[hook.Type]
	if !ok {
		return fmt.Errorf("unknown hook type '%s'", hook.Type)
	}

	fn := reflect.ValueOf(registered.Fn)

	var input any
	if registered.NewInput != nil {
		input = registered.NewInput()
	}
	if input != nil {
		if err := decoder.DecodeArgs(ctx, input, hook.Arguments); err != nil {
			return fmt.Errorf("failed to decode arguments for hook '%s': %w", hook.Name, err)
		}
	}

	callArgs := []reflect.Value{reflect.ValueOf(ctx)}
	if input == nil {
		callArgs = append(callArgs, reflect.Zero(fn.Type().In(1)))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(input))
	}
	callArgs = append(callArgs, reflect.ValueOf(ev))

	logger.Debug("Calling hook handler.")
	results := fn.Call(callArgs)
	if errResult := results[0].Interface(); errResult != nil {
		return errResult.(error)
	}
	return nil
}
