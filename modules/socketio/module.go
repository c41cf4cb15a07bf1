// Package socketio provides a hook that streams run events to a live
// dashboard over Socket.IO, so a browser can follow a long sweep without
// tailing logs.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the socketio hook.
type Input struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace"`
	EmitEvent          string `hcl:"emit_event"`
	Timeout            string `hcl:"timeout"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify"`
}

// OnEventSocketIO is the handler for the 'socketio' hook. It connects,
// emits one event carrying the run payload, and disconnects.
func OnEventSocketIO(ctx context.Context, input *Input, ev *registry.Event) error {
	logger := ctxlog.FromContext(ctx).With("hook", "socketio", "url", input.URL, "event", ev.Event)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout := 10 * time.Second
	if input.Timeout != "" {
		parsed, err := time.ParseDuration(input.Timeout)
		if err != nil {
			logger.Warn("Failed to parse timeout, using default 10s", "inputTimeout", input.Timeout, "error", err)
		} else {
			timeout = parsed
		}
	}

	emitEvent := input.EmitEvent
	if emitEvent == "" {
		emitEvent = "run_event"
	}

	done := make(chan error, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(input.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if input.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(input.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Debug("Connected, emitting run event.", "namespace", input.Namespace, "sid", io.Id())
		io.Emit(emitEvent, map[string]any{
			"event":       ev.Event,
			"run_id":      ev.RunID,
			"run_name":    ev.RunName,
			"experiment":  ev.Experiment,
			"gpu":         ev.GPU,
			"exit_code":   ev.ExitCode,
			"duration_ms": ev.Duration.Milliseconds(),
			"metrics":     ev.Metrics,
		})
		done <- nil
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				done <- err
				return
			}
		}
		done <- fmt.Errorf("socket.io connection failed")
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return fmt.Errorf("timed out after connecting while emitting '%s'", emitEvent)
		}
		return fmt.Errorf("timed out while waiting for initial connection")
	case err := <-done:
		return err
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHook("socketio", &registry.RegisteredHook{
		NewInput: func() any { return new(Input) },
		Fn:       OnEventSocketIO,
	})
}
