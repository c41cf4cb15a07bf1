package executor

import (
	"context"

	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/dag"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, ready chan *dag.Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range ready {
		workerLogger := logger.With("workerID", workerID, "run", n.ID())

		if ctx.Err() != nil {
			// A node drained after cancellation is skipped here, so its
			// dependents were never enqueued and must be accounted for too.
			if n.TrySkip() {
				n.SetErr(ctx.Err())
				e.skipDependents(ctx, n, ctx.Err())
				e.wg.Done()
			}
			continue
		}

		workerLogger.Debug("Worker picked up run.")
		n.SetState(dag.Running)

		err := e.executeNode(ctx, n)
		if err != nil {
			workerLogger.Error("Run failed.", "error", err)
			n.SetState(dag.Failed)
			n.SetErr(err)
			e.recordFailure(err)
			cancel()
			e.skipDependents(ctx, n, err)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Run succeeded.")
		n.SetState(dag.Done)

		for _, dependent := range n.Dependents() {
			if dependent.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent run.", "dependent", dependent.ID())
				ready <- dependent
			}
		}

		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
