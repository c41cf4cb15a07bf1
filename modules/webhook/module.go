// Package webhook provides a hook that POSTs run events as JSON to an HTTP
// endpoint, for wiring experiment grids into chat alerts or tracking
// dashboards.
package webhook

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the webhook hook.
type Input struct {
	URL     string            `hcl:"url"`
	Timeout string            `hcl:"timeout"`
	Headers map[string]string `hcl:"headers"`
}

// payload is the JSON body sent to the endpoint.
type payload struct {
	Event      string             `json:"event"`
	RunID      string             `json:"run_id"`
	RunName    string             `json:"run_name"`
	Experiment string             `json:"experiment"`
	GPU        string             `json:"gpu"`
	ExitCode   int                `json:"exit_code"`
	DurationMS int64              `json:"duration_ms"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// OnEventWebhook is the handler for the 'webhook' hook.
func OnEventWebhook(ctx context.Context, input *Input, ev *registry.Event) error {
	logger := ctxlog.FromContext(ctx).With("hook", "webhook", "url", input.URL, "event", ev.Event)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	timeout := 10 * time.Second
	if input.Timeout != "" {
		parsed, err := time.ParseDuration(input.Timeout)
		if err != nil {
			logger.Warn("Failed to parse timeout, using default 10s", "inputTimeout", input.Timeout, "error", err)
		} else {
			timeout = parsed
		}
	}

	client := resty.New().SetTimeout(timeout)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(input.Headers).
		SetBody(&payload{
			Event:      ev.Event,
			RunID:      ev.RunID,
			RunName:    ev.RunName,
			Experiment: ev.Experiment,
			GPU:        ev.GPU,
			ExitCode:   ev.ExitCode,
			DurationMS: ev.Duration.Milliseconds(),
			Metrics:    ev.Metrics,
		}).
		Post(input.URL)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook endpoint returned %s", resp.Status())
	}

	logger.Debug("Webhook delivered.", "status", resp.Status())
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHook("webhook", &registry.RegisteredHook{
		NewInput: func() any { return new(Input) },
		Fn:       OnEventWebhook,
	})
}
