// Package executor runs a validated run graph: a bounded worker pool picks
// up ready nodes, leases a GPU, spawns the trainer subprocess through the
// launcher, records the outcome in the run ledger, and fires lifecycle
// hooks. A failed run cancels the remaining graph and skips its
// dependents.
package executor

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/vk/expgridgo/internal/config"
	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/dag"
	"github.com/vk/expgridgo/internal/registry"
	"github.com/vk/expgridgo/internal/runstore"
)

// Options carries everything an Executor needs beyond the graph itself.
type Options struct {
	Workers  int
	GPUs     []string
	Mode     string
	Extra    []string
	DryRun   bool
	Registry *registry.Registry
	Decoder  config.Decoder
	Store    *runstore.Store // nil disables the ledger
	Stdout   io.Writer
	Stderr   io.Writer
}

// Executor orchestrates the end-to-end execution of a run graph.
type Executor struct {
	graph *dag.Graph
	opts  Options
	gpus  *GPUPool

	wg sync.WaitGroup

	mu       sync.Mutex
	firstErr error
}

// New creates an executor for the given graph.
func New(graph *dag.Graph, opts Options) *Executor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Executor{
		graph: graph,
		opts:  opts,
		gpus:  NewGPUPool(opts.GPUs),
	}
}

// Run executes the whole graph and blocks until every node is finished or
// skipped. It returns the first run failure observed; a *RunError preserves
// the trainer's exit code for process-level propagation.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ready := make(chan *dag.Node, len(e.graph.Nodes))
	for _, n := range e.graph.Roots() {
		ready <- n
	}
	e.wg.Add(len(e.graph.Nodes))

	for i := 0; i < e.opts.Workers; i++ {
		go e.worker(runCtx, ready, cancel, i)
	}

	e.wg.Wait()
	close(ready)
	logger.Debug("All graph nodes accounted for.")

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.firstErr
}

// recordFailure keeps the first failure for Run's return value.
func (e *Executor) recordFailure(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.firstErr == nil {
		e.firstErr = err
	}
}

// skipDependents transitively marks every dependent of a failed node as
// skipped. The compare-and-swap guards against double accounting when two
// failed nodes share a dependent.
func (e *Executor) skipDependents(ctx context.Context, n *dag.Node, cause error) {
	logger := ctxlog.FromContext(ctx)
	for _, dep := range n.Dependents() {
		if dep.TrySkip() {
			logger.Warn("Skipping run: upstream dependency failed.", "run", dep.ID(), "failed_dependency", n.ID())
			dep.SetErr(fmt.Errorf("skipped: dependency %q failed: %w", n.ID(), cause))
			e.wg.Done()
			e.skipDependents(ctx, dep, cause)
		}
	}
}
