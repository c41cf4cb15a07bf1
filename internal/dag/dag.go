// Package dag builds and validates the run dependency graph for a loaded
// experiment grid. Nodes are concrete runs (after matrix expansion);
// experiment-level depends_on edges fan out to every run of the named
// experiment.
package dag

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/expgridgo/internal/sweep"
)

// State is the lifecycle state of a node during execution.
type State int32

const (
	Pending State = iota
	Running
	Done
	Failed
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Node is a single run plus its position in the dependency graph.
type Node struct {
	Run *sweep.Run

	deps       map[string]*Node
	dependents map[string]*Node

	state     atomic.Int32
	remaining atomic.Int32 // unfinished dependencies

	mu  sync.Mutex
	err error
}

// ID returns the node's unique identifier, which is the expanded run name.
func (n *Node) ID() string { return n.Run.Name }

// SetState transitions the node into the given state.
func (n *Node) SetState(s State) { n.state.Store(int32(s)) }

// GetState returns the node's current state.
func (n *Node) GetState() State { return State(n.state.Load()) }

// SetErr records the failure that put the node into Failed or Skipped.
func (n *Node) SetErr(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

// Err returns the recorded failure, if any.
func (n *Node) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

// DecrementDepCount marks one dependency finished and returns how many
// remain. A zero return means the node is ready to run.
func (n *Node) DecrementDepCount() int32 { return n.remaining.Add(-1) }

// TrySkip atomically moves a pending node to Skipped. It reports false when
// the node already started or was skipped by another path, so exactly one
// actor accounts for each node.
func (n *Node) TrySkip() bool {
	return n.state.CompareAndSwap(int32(Pending), int32(Skipped))
}

// Dependencies returns the node's direct dependencies.
func (n *Node) Dependencies() []*Node { return collect(n.deps) }

// Dependents returns the nodes that directly depend on this one.
func (n *Node) Dependents() []*Node { return collect(n.dependents) }

func collect(m map[string]*Node) []*Node {
	out := make([]*Node, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	return out
}

// Graph is the validated run dependency graph.
type Graph struct {
	Nodes map[string]*Node
}

// Roots returns every node with no dependencies, in no particular order.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, n := range g.Nodes {
		if len(n.deps) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

func (g *Graph) addNode(run *sweep.Run) (*Node, error) {
	if _, exists := g.Nodes[run.Name]; exists {
		return nil, fmt.Errorf("duplicate run name %q", run.Name)
	}
	n := &Node{
		Run:        run,
		deps:       make(map[string]*Node),
		dependents: make(map[string]*Node),
	}
	g.Nodes[run.Name] = n
	return n, nil
}

func (g *Graph) addEdge(from, to *Node) error {
	if from == to {
		return fmt.Errorf("self-referential edge on %q", from.ID())
	}
	from.dependents[to.ID()] = to
	to.deps[from.ID()] = from
	return nil
}

// detectCycles rejects graphs with circular depends_on chains using a
// three-color depth-first search.
func (g *Graph) detectCycles() error {
	const (
		white = iota // unvisited
		grey         // on the current path
		black        // fully explored
	)
	colors := make(map[string]int, len(g.Nodes))

	var visit func(n *Node) error
	visit = func(n *Node) error {
		colors[n.ID()] = grey
		for _, dep := range n.deps {
			switch colors[dep.ID()] {
			case grey:
				return fmt.Errorf("dependency cycle through %q and %q", n.ID(), dep.ID())
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		colors[n.ID()] = black
		return nil
	}

	for _, n := range g.Nodes {
		if colors[n.ID()] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
