// Package schema holds the raw HCL shapes of the expgridgo configuration
// language. These structs carry hcl struct tags only; the hcl package
// translates them into the format-agnostic config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// Root is the top-level structure of a config file: any number of
// experiment blocks.
type Root struct {
	Experiments []*Experiment `hcl:"experiment,block"`
	Body        hcl.Body      `hcl:",remain"`
}

// Experiment is an `experiment "name" { ... }` block: one trainer
// invocation, or a family of them when a matrix block is present.
type Experiment struct {
	Name      string   `hcl:"name,label"`
	Params    *Params  `hcl:"params,block"`
	Trainer   *Trainer `hcl:"trainer,block"`
	Matrix    *Matrix  `hcl:"matrix,block"`
	DependsOn []string `hcl:"depends_on,optional"`
	Hooks     []*Hook  `hcl:"hook,block"`
}

// Params is the `params { ... }` block carrying the trainer's full
// hyperparameter surface. Attribute names match the trainer's flag names
// one to one.
type Params struct {
	DataDir  string `hcl:"data_dir"`
	Model    string `hcl:"model"`
	Baseline string `hcl:"baseline"`

	Bandwidth       int `hcl:"bandwidth"`
	BucketInterval  int `hcl:"bucket_interval"`
	NumRollouts     int `hcl:"num_rollouts"`
	NumRolloutSteps int `hcl:"num_rollout_steps"`

	EntityDim        int `hcl:"entity_dim"`
	RelationDim      int `hcl:"relation_dim"`
	HistoryDim       int `hcl:"history_dim"`
	HistoryNumLayers int `hcl:"history_num_layers"`

	NumEpochs      int     `hcl:"num_epochs"`
	NumWaitEpochs  int     `hcl:"num_wait_epochs"`
	NumPeekEpochs  int     `hcl:"num_peek_epochs"`
	BatchSize      int     `hcl:"batch_size"`
	TrainBatchSize int     `hcl:"train_batch_size"`
	DevBatchSize   int     `hcl:"dev_batch_size"`
	LearningRate   float64 `hcl:"learning_rate"`
	Margin         float64 `hcl:"margin"`
	GradNorm       float64 `hcl:"grad_norm"`

	EmbDropoutRate              float64 `hcl:"emb_dropout_rate"`
	FFDropoutRate               float64 `hcl:"ff_dropout_rate"`
	ActionDropoutRate           float64 `hcl:"action_dropout_rate"`
	ActionDropoutAnnealInterval int     `hcl:"action_dropout_anneal_interval"`

	PGNetworkStructure  string  `hcl:"pg_network_structure"`
	PGDropout           float64 `hcl:"pg_dropout"`
	PGBatchNorm         bool    `hcl:"pg_batch_norm"`
	PGBatchNormMomentum float64 `hcl:"pg_batch_norm_momentum"`
	PGUseBias           bool    `hcl:"pg_use_bias"`
	Beta                float64 `hcl:"beta"`

	BeamSize          int `hcl:"beam_size"`
	NumPathsPerEntity int `hcl:"num_paths_per_entity"`

	// Tri-state switches: absent, false, and true are three distinct
	// states in the model, which is why these decode through pointers.
	GroupExamplesByQuery    *bool `hcl:"group_examples_by_query,optional"`
	RelationOnly            *bool `hcl:"relation_only,optional"`
	UseActionSpaceBucketing *bool `hcl:"use_action_space_bucketing,optional"`
}

// Trainer is the optional `trainer { ... }` block shaping the subprocess
// spawn. All attributes have defaults.
type Trainer struct {
	Interpreter string            `hcl:"interpreter,optional"`
	Module      string            `hcl:"module,optional"`
	WorkDir     string            `hcl:"workdir,optional"`
	ResultsDir  string            `hcl:"results_dir,optional"`
	Env         map[string]string `hcl:"env,optional"`
}

// Matrix is the open-ended `matrix { ... }` block: every attribute is a
// list of values to sweep the same-named params attribute over.
type Matrix struct {
	Body hcl.Body `hcl:",remain"`
}

// Hook is a `hook "type" "name" { ... }` block attaching a lifecycle
// handler to the experiment's runs.
type Hook struct {
	Type      string    `hcl:"type,label"`
	Name      string    `hcl:"name,label"`
	Events    []string  `hcl:"events,optional"`
	Arguments *HookArgs `hcl:"arguments,block"`
}

// HookArgs is the content of a hook's `arguments` block, kept raw so the
// executor can decode it into the registered handler's input struct.
type HookArgs struct {
	Body hcl.Body `hcl:",remain"`
}
