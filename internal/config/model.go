package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of everything loaded
// from the configuration tree: the experiment blocks, in file order.
type Model struct {
	Experiments []*Experiment
}

// Experiment is the format-agnostic representation of an `experiment` block.
// One block describes one trainer invocation, or a family of them when a
// matrix is attached.
type Experiment struct {
	Name      string
	Params    *Params
	Trainer   *Trainer
	Matrix    map[string][]cty.Value
	DependsOn []string
	Hooks     []*Hook
}

// Trainer describes how the downstream training process is invoked. The
// trainer itself stays an opaque collaborator; these fields only shape the
// process spawn.
type Trainer struct {
	Interpreter string
	Module      string
	WorkDir     string
	ResultsDir  string
	Env         map[string]string
}

// DefaultInterpreter and DefaultModule are applied when a trainer block
// omits them, matching the legacy launcher's hard-coded invocation.
const (
	DefaultInterpreter = "python3"
	DefaultModule      = "src.experiments"
)

// Hook is the format-agnostic representation of a `hook` block attached to
// an experiment. Arguments stay as unevaluated expressions; the executor
// decodes them into the registered handler's input struct right before the
// hook fires.
type Hook struct {
	Type      string
	Name      string
	Events    []string
	Arguments map[string]hcl.Expression
}

// Hook lifecycle event names.
const (
	EventStart   = "start"
	EventSuccess = "success"
	EventFailure = "failure"
)

// KnownEvent reports whether name is a recognized hook lifecycle event.
func KnownEvent(name string) bool {
	switch name {
	case EventStart, EventSuccess, EventFailure:
		return true
	}
	return false
}

// FiresOn reports whether the hook subscribes to the given event. A hook
// with no events listed fires on all of them.
func (h *Hook) FiresOn(event string) bool {
	if len(h.Events) == 0 {
		return true
	}
	for _, e := range h.Events {
		if e == event {
			return true
		}
	}
	return false
}
