package registry

import (
	"fmt"
	"log/slog"
	"time"
)

// Event is the payload delivered to every hook handler. It describes one
// run at one lifecycle point.
type Event struct {
	Event      string // start, success, or failure
	RunID      string
	RunName    string
	Experiment string
	GPU        string
	Argv       []string
	StartedAt  time.Time

	// Populated on success/failure only.
	ExitCode int
	Duration time.Duration

	// Populated on success when the trainer reported metrics.
	Metrics map[string]float64
}

// RegisteredHook holds the compiled Go parts of a hook handler.
type RegisteredHook struct {
	// NewInput returns a fresh pointer to the handler's input struct, to be
	// populated from the hook block's arguments. May return nil for
	// handlers without arguments.
	NewInput func() any
	// Fn must be a func(context.Context, *Input, *Event) error where *Input
	// matches NewInput's type.
	Fn any
}

// Module is the interface all hook modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered hook handlers for one application instance.
type Registry struct {
	hooks map[string]*RegisteredHook
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{hooks: make(map[string]*RegisteredHook)}
}

// RegisterHook registers a Go handler for a hook type. Double registration
// is a programmer error.
func (r *Registry) RegisterHook(hookType string, h *RegisteredHook) {
	if _, exists := r.hooks[hookType]; exists {
		panic(fmt.Sprintf("hook handler for type '%s' already registered", hookType))
	}
	slog.Debug("Registering hook handler.", "type", hookType)
	r.hooks[hookType] = h
}

// Hook looks up the handler for a hook type.
func (r *Registry) Hook(hookType string) (*RegisteredHook, bool) {
	h, ok := r.hooks[hookType]
	return h, ok
}

// Types returns the registered hook type names.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.hooks))
	for t := range r.hooks {
		out = append(out, t)
	}
	return out
}
