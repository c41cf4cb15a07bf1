package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/expgridgo/internal/config"
	"github.com/vk/expgridgo/internal/schema"
)

// translateExperiment converts a raw experiment block into the agnostic model.
func (l *Loader) translateExperiment(s *schema.Experiment) (*config.Experiment, error) {
	exp := &config.Experiment{
		Name:      s.Name,
		Trainer:   translateTrainer(s.Trainer),
		DependsOn: s.DependsOn,
	}

	if s.Params != nil {
		exp.Params = translateParams(s.Params)
	}

	matrix, err := translateMatrix(s.Matrix, s.Name)
	if err != nil {
		return nil, err
	}
	exp.Matrix = matrix

	for _, h := range s.Hooks {
		exp.Hooks = append(exp.Hooks, &config.Hook{
			Type:      h.Type,
			Name:      h.Name,
			Events:    h.Events,
			Arguments: extractBodyAttributes(h.Arguments),
		})
	}

	return exp, nil
}

func translateParams(s *schema.Params) *config.Params {
	return &config.Params{
		DataDir:  s.DataDir,
		Model:    s.Model,
		Baseline: s.Baseline,

		Bandwidth:       s.Bandwidth,
		BucketInterval:  s.BucketInterval,
		NumRollouts:     s.NumRollouts,
		NumRolloutSteps: s.NumRolloutSteps,

		EntityDim:        s.EntityDim,
		RelationDim:      s.RelationDim,
		HistoryDim:       s.HistoryDim,
		HistoryNumLayers: s.HistoryNumLayers,

		NumEpochs:      s.NumEpochs,
		NumWaitEpochs:  s.NumWaitEpochs,
		NumPeekEpochs:  s.NumPeekEpochs,
		BatchSize:      s.BatchSize,
		TrainBatchSize: s.TrainBatchSize,
		DevBatchSize:   s.DevBatchSize,
		LearningRate:   s.LearningRate,
		Margin:         s.Margin,
		GradNorm:       s.GradNorm,

		EmbDropoutRate:              s.EmbDropoutRate,
		FFDropoutRate:               s.FFDropoutRate,
		ActionDropoutRate:           s.ActionDropoutRate,
		ActionDropoutAnnealInterval: s.ActionDropoutAnnealInterval,

		PGNetworkStructure:  s.PGNetworkStructure,
		PGDropout:           s.PGDropout,
		PGBatchNorm:         s.PGBatchNorm,
		PGBatchNormMomentum: s.PGBatchNormMomentum,
		PGUseBias:           s.PGUseBias,
		Beta:                s.Beta,

		BeamSize:          s.BeamSize,
		NumPathsPerEntity: s.NumPathsPerEntity,

		GroupExamplesByQuery:    config.TriFromBool(s.GroupExamplesByQuery),
		RelationOnly:            config.TriFromBool(s.RelationOnly),
		UseActionSpaceBucketing: config.TriFromBool(s.UseActionSpaceBucketing),
	}
}

func translateTrainer(s *schema.Trainer) *config.Trainer {
	t := &config.Trainer{
		Interpreter: config.DefaultInterpreter,
		Module:      config.DefaultModule,
	}
	if s == nil {
		return t
	}
	if s.Interpreter != "" {
		t.Interpreter = s.Interpreter
	}
	if s.Module != "" {
		t.Module = s.Module
	}
	t.WorkDir = s.WorkDir
	t.ResultsDir = s.ResultsDir
	t.Env = s.Env
	return t
}

// translateMatrix evaluates every attribute of the matrix block into a list
// of sweep values. Matrix attributes must be statically known lists; there
// are no variables in scope at load time.
func translateMatrix(m *schema.Matrix, owner string) (map[string][]cty.Value, error) {
	if m == nil {
		return nil, nil
	}

	attrs, diags := m.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("experiment %q: invalid matrix block: %w", owner, diags)
	}

	out := make(map[string][]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("experiment %q: matrix attribute %q: %w", owner, name, diags)
		}
		if !val.CanIterateElements() {
			return nil, fmt.Errorf("experiment %q: matrix attribute %q must be a list, got %s", owner, name, val.Type().FriendlyName())
		}
		values := val.AsValueSlice()
		if len(values) == 0 {
			return nil, fmt.Errorf("experiment %q: matrix attribute %q must not be empty", owner, name)
		}
		out[name] = values
	}
	return out, nil
}

// extractBodyAttributes pulls the raw attribute expressions out of a hook's
// arguments block without evaluating them.
func extractBodyAttributes(block *schema.HookArgs) map[string]hcl.Expression {
	exprs := make(map[string]hcl.Expression)
	if block == nil {
		return exprs
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return exprs
	}
	for name, attr := range attrs {
		exprs[name] = attr.Expr
	}
	return exprs
}
