package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/expgridgo/internal/command"
	"github.com/vk/expgridgo/internal/config"
	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/dag"
	"github.com/vk/expgridgo/internal/launcher"
	"github.com/vk/expgridgo/internal/metrics"
	"github.com/vk/expgridgo/internal/registry"
	"github.com/vk/expgridgo/internal/runstore"
	"github.com/vk/expgridgo/internal/sweep"
)

// RunError is a run failure that preserves the trainer's exit code, so the
// process-level exit status can propagate it unchanged.
type RunError struct {
	RunName  string
	ExitCode int
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %q exited with code %d", e.RunName, e.ExitCode)
}

// executeNode performs one full run lifecycle: GPU lease, command assembly,
// logging, subprocess execution, metrics harvest, ledger updates, and hook
// dispatch.
func (e *Executor) executeNode(ctx context.Context, n *dag.Node) error {
	run := n.Run
	logger := ctxlog.FromContext(ctx).With("run", run.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	gpu, err := e.gpus.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("waiting for a free GPU: %w", err)
	}
	defer e.gpus.Release(gpu)

	trainer := run.Experiment.Trainer
	trainerArgs := command.Assemble(run.Params, e.opts.Mode, gpu, e.opts.Extra)
	argv := make([]string, 0, len(trainerArgs)+3)
	argv = append(argv, trainer.Interpreter, "-m", trainer.Module)
	argv = append(argv, trainerArgs...)

	// The operator's primary diagnostic: the fully resolved command line is
	// always logged before anything executes.
	logger.Info("🚀 Launching trainer.", "gpu", gpu, "command", command.Line(argv))

	if e.opts.DryRun {
		fmt.Fprintln(e.opts.Stdout, command.Line(argv))
		return nil
	}

	started := time.Now()
	startEvent := &registry.Event{
		Event:      config.EventStart,
		RunID:      run.ID,
		RunName:    run.Name,
		Experiment: run.Experiment.Name,
		GPU:        gpu,
		Argv:       argv,
		StartedAt:  started,
	}
	e.fireHooks(ctx, run.Experiment.Hooks, startEvent)

	if e.opts.Store != nil {
		rec := &runstore.Record{
			ID:         run.ID,
			Name:       run.Name,
			Experiment: run.Experiment.Name,
			Mode:       e.opts.Mode,
			GPU:        gpu,
			Command:    command.Line(argv),
			StartedAt:  started,
		}
		if err := e.opts.Store.RecordStart(ctx, rec); err != nil {
			logger.Warn("Failed to record run start in ledger.", "error", err)
		}
	}

	result, err := launcher.Run(ctx, &launcher.Command{
		Path: trainer.Interpreter,
		Args: argv[1:],
		Dir:  trainer.WorkDir,
		Env:  trainerEnv(trainer),
	}, e.opts.Stdout, e.opts.Stderr)
	if err != nil {
		e.finishRun(ctx, run, startEvent, 1, nil, time.Since(started))
		return err
	}

	var harvested map[string]float64
	if result.ExitCode == 0 {
		harvested = metrics.Harvest(result.OutputTail, trainer.ResultsDir)
		if key, val, ok := metrics.Primary(harvested); ok {
			logger.Info("🏁 Trainer finished.", "duration", result.Duration, key, val)
		} else {
			logger.Info("🏁 Trainer finished.", "duration", result.Duration)
		}
	} else {
		logger.Error("Trainer exited with failure.", "exit_code", result.ExitCode, "duration", result.Duration)
	}

	e.finishRun(ctx, run, startEvent, result.ExitCode, harvested, result.Duration)

	if result.ExitCode != 0 {
		return &RunError{RunName: run.Name, ExitCode: result.ExitCode}
	}
	return nil
}

// finishRun completes the ledger row and fires the terminal lifecycle hook.
func (e *Executor) finishRun(ctx context.Context, run *sweep.Run, startEvent *registry.Event, exitCode int, harvested map[string]float64, duration time.Duration) {
	logger := ctxlog.FromContext(ctx)

	if e.opts.Store != nil {
		if err := e.opts.Store.RecordFinish(ctx, run.ID, time.Now(), exitCode, harvested); err != nil {
			logger.Warn("Failed to record run finish in ledger.", "error", err)
		}
	}

	terminal := *startEvent
	terminal.ExitCode = exitCode
	terminal.Duration = duration
	terminal.Metrics = harvested
	if exitCode == 0 {
		terminal.Event = config.EventSuccess
	} else {
		terminal.Event = config.EventFailure
	}
	e.fireHooks(ctx, run.Experiment.Hooks, &terminal)
}

func trainerEnv(t *config.Trainer) []string {
	if len(t.Env) == 0 {
		return nil
	}
	env := make([]string, 0, len(t.Env))
	for key, value := range t.Env {
		env = append(env, key+"="+value)
	}
	return env
}
