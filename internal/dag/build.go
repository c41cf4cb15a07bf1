package dag

import (
	"context"
	"fmt"

	"github.com/vk/expgridgo/internal/config"
	"github.com/vk/expgridgo/internal/ctxlog"
	"github.com/vk/expgridgo/internal/sweep"
)

// Build constructs a complete, validated run graph from a config model.
// Matrix blocks are expanded first, then experiment-level depends_on edges
// are fanned out across the expanded runs, counters are initialized, and
// the graph is cycle-checked.
func Build(ctx context.Context, model *config.Model) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting run graph construction.")

	graph := &Graph{Nodes: make(map[string]*Node)}
	runsByExperiment := make(map[string][]*Node, len(model.Experiments))

	for _, exp := range model.Experiments {
		runs, err := sweep.Expand(exp)
		if err != nil {
			return nil, err
		}
		for _, run := range runs {
			node, err := graph.addNode(run)
			if err != nil {
				return nil, err
			}
			runsByExperiment[exp.Name] = append(runsByExperiment[exp.Name], node)
		}
	}
	logger.Debug("Build: node creation complete.", "node_count", len(graph.Nodes))

	for _, exp := range model.Experiments {
		for _, depName := range exp.DependsOn {
			depNodes, ok := runsByExperiment[depName]
			if !ok {
				return nil, fmt.Errorf("experiment %q depends on unknown experiment %q", exp.Name, depName)
			}
			for _, from := range depNodes {
				for _, to := range runsByExperiment[exp.Name] {
					if err := graph.addEdge(from, to); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	logger.Debug("Build: node linking complete.")

	for _, node := range graph.Nodes {
		node.remaining.Store(int32(len(node.deps)))
	}

	if err := graph.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating run graph: %w", err)
	}
	logger.Debug("Build: run graph construction successful.")

	return graph, nil
}
