package executor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/expgridgo/internal/config"
	"github.com/vk/expgridgo/internal/dag"
	"github.com/vk/expgridgo/internal/hcl"
	"github.com/vk/expgridgo/internal/registry"
	"github.com/vk/expgridgo/internal/runstore"
)

// captureModule records every event it receives, for asserting hook
// dispatch order and payloads.
type captureModule struct {
	mu     sync.Mutex
	events []*registry.Event
}

type captureInput struct {
	Label string `hcl:"label,optional"`
}

func (m *captureModule) Register(r *registry.Registry) {
	r.RegisterHook("capture", &registry.RegisteredHook{
		NewInput: func() any { return &captureInput{} },
		Fn: func(ctx context.Context, input *captureInput, ev *registry.Event) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.events = append(m.events, ev)
			return nil
		},
	})
}

func (m *captureModule) eventNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		names = append(names, ev.Event)
	}
	return names
}

func executorParams() *config.Params {
	return &config.Params{
		DataDir:  "data/umls",
		Model:    "point.rs.conve",
		Baseline: "n/a",

		Bandwidth:       256,
		BucketInterval:  10,
		NumRollouts:     20,
		NumRolloutSteps: 2,

		EntityDim:        200,
		RelationDim:      200,
		HistoryDim:       200,
		HistoryNumLayers: 3,

		NumEpochs:      1000,
		NumWaitEpochs:  200,
		NumPeekEpochs:  2,
		BatchSize:      128,
		TrainBatchSize: 128,
		DevBatchSize:   64,
		LearningRate:   0.001,
		Margin:         0.5,
		GradNorm:       5,

		EmbDropoutRate:              0.3,
		FFDropoutRate:               0.1,
		ActionDropoutRate:           0.5,
		ActionDropoutAnnealInterval: 1000,

		PGNetworkStructure:  "leaky_relu",
		PGDropout:           0.2,
		PGBatchNormMomentum: 0.1,
		Beta:                0.05,

		BeamSize:          128,
		NumPathsPerEntity: 3,
	}
}

// newTestExperiment builds an experiment whose "trainer" is a plain binary
// that ignores the assembled flags, so graphs execute instantly.
func newTestExperiment(name, interpreter string, deps ...string) *config.Experiment {
	return &config.Experiment{
		Name:   name,
		Params: executorParams(),
		Trainer: &config.Trainer{
			Interpreter: interpreter,
			Module:      "noop",
		},
		DependsOn: deps,
	}
}

func buildGraph(t *testing.T, experiments ...*config.Experiment) *dag.Graph {
	t.Helper()
	graph, err := dag.Build(context.Background(), &config.Model{Experiments: experiments})
	require.NoError(t, err)
	return graph
}

func newTestOptions() (Options, *captureModule, *bytes.Buffer) {
	capture := &captureModule{}
	reg := registry.New()
	capture.Register(reg)

	var out bytes.Buffer
	return Options{
		Workers:  2,
		Mode:     "--train",
		Registry: reg,
		Decoder:  hcl.NewDecoder(),
		Stdout:   &out,
		Stderr:   &out,
	}, capture, &out
}

func TestExecutor_DryRun(t *testing.T) {
	t.Parallel()

	graph := buildGraph(t, newTestExperiment("umls", "/bin/false"))
	opts, _, out := newTestOptions()
	opts.DryRun = true
	opts.Extra = []string{"--checkpoint_path", "model/ckpt"}

	// Dry run never spawns the trainer, so even a failing binary is fine.
	require.NoError(t, New(graph, opts).Run(context.Background()))

	line := out.String()
	assert.True(t, strings.HasPrefix(line, "/bin/false -m noop "), line)
	assert.Contains(t, line, "--data_dir data/umls")
	assert.Contains(t, line, "--entity_dim 200")
	assert.Contains(t, line, "--train")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(line), "--checkpoint_path model/ckpt"), line)
}

func TestExecutor_SuccessfulRunFiresHooks(t *testing.T) {
	t.Parallel()

	exp := newTestExperiment("umls", "/bin/true")
	exp.Hooks = []*config.Hook{{Type: "capture", Name: "watcher"}}

	graph := buildGraph(t, exp)
	opts, capture, _ := newTestOptions()

	require.NoError(t, New(graph, opts).Run(context.Background()))

	assert.Equal(t, []string{"start", "success"}, capture.eventNames())
	assert.Equal(t, dag.Done, graph.Nodes["umls"].GetState())

	success := capture.events[1]
	assert.Equal(t, "umls", success.RunName)
	assert.Equal(t, 0, success.ExitCode)
	assert.NotEmpty(t, success.Argv)
}

func TestExecutor_HarvestsResultsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hits_at_1.txt"), []byte("0.383023\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mrr.txt"), []byte("0.453811\n"), 0600))

	exp := newTestExperiment("umls", "/bin/true")
	exp.Trainer.ResultsDir = dir
	exp.Hooks = []*config.Hook{{Type: "capture", Name: "watcher", Events: []string{"success"}}}

	graph := buildGraph(t, exp)
	opts, capture, _ := newTestOptions()

	require.NoError(t, New(graph, opts).Run(context.Background()))

	require.Len(t, capture.events, 1)
	assert.Equal(t, 0.383023, capture.events[0].Metrics["hits_at_1"])
	assert.Equal(t, 0.453811, capture.events[0].Metrics["mrr"])
}

func TestExecutor_FailureSkipsDependents(t *testing.T) {
	t.Parallel()

	boom := newTestExperiment("boom", "/bin/false")
	boom.Hooks = []*config.Hook{{Type: "capture", Name: "watcher"}}
	after := newTestExperiment("after", "/bin/true", "boom")

	graph := buildGraph(t, boom, after)
	opts, capture, _ := newTestOptions()

	err := New(graph, opts).Run(context.Background())
	require.Error(t, err)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, "boom", runErr.RunName)
	assert.Equal(t, 1, runErr.ExitCode)

	assert.Equal(t, dag.Failed, graph.Nodes["boom"].GetState())
	assert.Equal(t, dag.Skipped, graph.Nodes["after"].GetState())
	require.Error(t, graph.Nodes["after"].Err())

	assert.Equal(t, []string{"start", "failure"}, capture.eventNames())
}

func TestExecutor_FailureWithIndependentChain(t *testing.T) {
	t.Parallel()

	// With one worker, a failure cancels the context while the other
	// chain's root is still queued. Draining that root must also account
	// for its dependents, or Run blocks forever on its WaitGroup. Root
	// pickup order is not deterministic, so iterate to hit both orders.
	for i := 0; i < 10; i++ {
		boom := newTestExperiment("boom", "/bin/false")
		other := newTestExperiment("other", "/bin/true")
		child := newTestExperiment("child", "/bin/true", "other")

		graph := buildGraph(t, boom, other, child)
		opts, _, _ := newTestOptions()
		opts.Workers = 1

		done := make(chan error, 1)
		go func() { done <- New(graph, opts).Run(context.Background()) }()

		select {
		case err := <-done:
			require.Error(t, err)
			var runErr *RunError
			require.ErrorAs(t, err, &runErr)
			assert.Equal(t, "boom", runErr.RunName)
		case <-time.After(5 * time.Second):
			t.Fatalf("iteration %d: Run did not return after a failed run", i)
		}
	}
}

func TestExecutor_DependencyOrdering(t *testing.T) {
	t.Parallel()

	first := newTestExperiment("first", "/bin/true")
	first.Hooks = []*config.Hook{{Type: "capture", Name: "watcher", Events: []string{"success"}}}
	second := newTestExperiment("second", "/bin/true", "first")
	second.Hooks = []*config.Hook{{Type: "capture", Name: "watcher", Events: []string{"success"}}}

	graph := buildGraph(t, first, second)
	opts, capture, _ := newTestOptions()

	require.NoError(t, New(graph, opts).Run(context.Background()))

	require.Len(t, capture.events, 2)
	assert.Equal(t, "first", capture.events[0].RunName)
	assert.Equal(t, "second", capture.events[1].RunName)
}

func TestExecutor_LedgerRecordsOutcome(t *testing.T) {
	t.Parallel()

	store, err := runstore.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	graph := buildGraph(t, newTestExperiment("umls", "/bin/true"))
	opts, _, _ := newTestOptions()
	opts.Store = store

	require.NoError(t, New(graph, opts).Run(context.Background()))

	records, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "umls", records[0].Name)
	assert.Equal(t, "--train", records[0].Mode)
	assert.True(t, records[0].Finished)
	assert.Equal(t, 0, records[0].ExitCode)
	assert.Contains(t, records[0].Command, "--data_dir data/umls")
}

func TestExecutor_GPUAssignment(t *testing.T) {
	t.Parallel()

	exp := newTestExperiment("umls", "/bin/true")
	exp.Hooks = []*config.Hook{{Type: "capture", Name: "watcher", Events: []string{"start"}}}

	graph := buildGraph(t, exp)
	opts, capture, _ := newTestOptions()
	opts.GPUs = []string{"3"}

	require.NoError(t, New(graph, opts).Run(context.Background()))

	require.Len(t, capture.events, 1)
	assert.Equal(t, "3", capture.events[0].GPU)
	assert.Contains(t, capture.events[0].Argv, "--gpu")
	assert.Contains(t, capture.events[0].Argv, "3")
}
