package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/expgridgo/internal/config"
	"github.com/vk/expgridgo/internal/ctxlog"
)

var (
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType   = reflect.TypeOf((*error)(nil)).Elem()
	eventType = reflect.TypeOf((*Event)(nil))
)

// Validate performs a strict parity check between the hook blocks in the
// loaded model and the registered Go handlers. Every referenced hook type
// must exist and every registered handler must have the canonical
// func(ctx, *Input, *Event) error shape.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for hookType, h := range r.hooks {
		if err := checkSignature(h); err != nil {
			errs = append(errs, fmt.Sprintf("hook type '%s': %v", hookType, err))
		}
	}

	for _, exp := range model.Experiments {
		for _, hook := range exp.Hooks {
			if _, ok := r.hooks[hook.Type]; !ok {
				errs = append(errs, fmt.Sprintf("experiment '%s': hook '%s' references unregistered type '%s'",
					exp.Name, hook.Name, hook.Type))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New("registry validation failed: " + strings.Join(errs, "; "))
	}
	logger.Debug("Registry validation passed.", "hook_types", len(r.hooks))
	return nil
}

func checkSignature(h *RegisteredHook) error {
	fn := reflect.TypeOf(h.Fn)
	if fn == nil || fn.Kind() != reflect.Func {
		return fmt.Errorf("handler Fn is not a function")
	}
	if fn.NumIn() != 3 || fn.NumOut() != 1 {
		return fmt.Errorf("handler must be func(ctx, *Input, *Event) error")
	}
	if !fn.In(0).Implements(ctxType) {
		return fmt.Errorf("first handler parameter must be context.Context")
	}
	if fn.In(2) != eventType {
		return fmt.Errorf("third handler parameter must be *registry.Event")
	}
	if !fn.Out(0).Implements(errType) {
		return fmt.Errorf("handler must return error")
	}

	if h.NewInput != nil {
		input := h.NewInput()
		if input != nil && reflect.TypeOf(input) != fn.In(1) {
			return fmt.Errorf("NewInput returns %T but handler expects %s", input, fn.In(1))
		}
	}
	return nil
}
