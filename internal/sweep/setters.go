package sweep

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/expgridgo/internal/config"
)

// paramSetters maps matrix attribute names to the typed parameter field
// they override. The key set defines exactly which parameters may be swept.
var paramSetters = map[string]func(*config.Params, cty.Value) error{
	"data_dir":  func(p *config.Params, v cty.Value) error { return setString(&p.DataDir, v) },
	"model":     func(p *config.Params, v cty.Value) error { return setString(&p.Model, v) },
	"baseline":  func(p *config.Params, v cty.Value) error { return setString(&p.Baseline, v) },

	"bandwidth":         func(p *config.Params, v cty.Value) error { return setInt(&p.Bandwidth, v) },
	"bucket_interval":   func(p *config.Params, v cty.Value) error { return setInt(&p.BucketInterval, v) },
	"num_rollouts":      func(p *config.Params, v cty.Value) error { return setInt(&p.NumRollouts, v) },
	"num_rollout_steps": func(p *config.Params, v cty.Value) error { return setInt(&p.NumRolloutSteps, v) },

	"entity_dim":         func(p *config.Params, v cty.Value) error { return setInt(&p.EntityDim, v) },
	"relation_dim":       func(p *config.Params, v cty.Value) error { return setInt(&p.RelationDim, v) },
	"history_dim":        func(p *config.Params, v cty.Value) error { return setInt(&p.HistoryDim, v) },
	"history_num_layers": func(p *config.Params, v cty.Value) error { return setInt(&p.HistoryNumLayers, v) },

	"num_epochs":       func(p *config.Params, v cty.Value) error { return setInt(&p.NumEpochs, v) },
	"num_wait_epochs":  func(p *config.Params, v cty.Value) error { return setInt(&p.NumWaitEpochs, v) },
	"num_peek_epochs":  func(p *config.Params, v cty.Value) error { return setInt(&p.NumPeekEpochs, v) },
	"batch_size":       func(p *config.Params, v cty.Value) error { return setInt(&p.BatchSize, v) },
	"train_batch_size": func(p *config.Params, v cty.Value) error { return setInt(&p.TrainBatchSize, v) },
	"dev_batch_size":   func(p *config.Params, v cty.Value) error { return setInt(&p.DevBatchSize, v) },
	"learning_rate":    func(p *config.Params, v cty.Value) error { return setFloat(&p.LearningRate, v) },
	"margin":           func(p *config.Params, v cty.Value) error { return setFloat(&p.Margin, v) },
	"grad_norm":        func(p *config.Params, v cty.Value) error { return setFloat(&p.GradNorm, v) },

	"emb_dropout_rate":               func(p *config.Params, v cty.Value) error { return setFloat(&p.EmbDropoutRate, v) },
	"ff_dropout_rate":                func(p *config.Params, v cty.Value) error { return setFloat(&p.FFDropoutRate, v) },
	"action_dropout_rate":            func(p *config.Params, v cty.Value) error { return setFloat(&p.ActionDropoutRate, v) },
	"action_dropout_anneal_interval": func(p *config.Params, v cty.Value) error { return setInt(&p.ActionDropoutAnnealInterval, v) },

	"pg_network_structure":   func(p *config.Params, v cty.Value) error { return setString(&p.PGNetworkStructure, v) },
	"pg_dropout":             func(p *config.Params, v cty.Value) error { return setFloat(&p.PGDropout, v) },
	"pg_batch_norm":          func(p *config.Params, v cty.Value) error { return setBool(&p.PGBatchNorm, v) },
	"pg_batch_norm_momentum": func(p *config.Params, v cty.Value) error { return setFloat(&p.PGBatchNormMomentum, v) },
	"pg_use_bias":            func(p *config.Params, v cty.Value) error { return setBool(&p.PGUseBias, v) },
	"beta":                   func(p *config.Params, v cty.Value) error { return setFloat(&p.Beta, v) },

	"beam_size":            func(p *config.Params, v cty.Value) error { return setInt(&p.BeamSize, v) },
	"num_paths_per_entity": func(p *config.Params, v cty.Value) error { return setInt(&p.NumPathsPerEntity, v) },

	"group_examples_by_query":    func(p *config.Params, v cty.Value) error { return setTri(&p.GroupExamplesByQuery, v) },
	"relation_only":              func(p *config.Params, v cty.Value) error { return setTri(&p.RelationOnly, v) },
	"use_action_space_bucketing": func(p *config.Params, v cty.Value) error { return setTri(&p.UseActionSpaceBucketing, v) },
}

func setInt(target *int, val cty.Value) error {
	converted, err := convert.Convert(val, cty.Number)
	if err != nil {
		return fmt.Errorf("expected a number, got %s", val.Type().FriendlyName())
	}
	return gocty.FromCtyValue(converted, target)
}

func setFloat(target *float64, val cty.Value) error {
	converted, err := convert.Convert(val, cty.Number)
	if err != nil {
		return fmt.Errorf("expected a number, got %s", val.Type().FriendlyName())
	}
	return gocty.FromCtyValue(converted, target)
}

func setString(target *string, val cty.Value) error {
	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return fmt.Errorf("expected a string, got %s", val.Type().FriendlyName())
	}
	return gocty.FromCtyValue(converted, target)
}

func setBool(target *bool, val cty.Value) error {
	converted, err := convert.Convert(val, cty.Bool)
	if err != nil {
		return fmt.Errorf("expected a bool, got %s", val.Type().FriendlyName())
	}
	return gocty.FromCtyValue(converted, target)
}

func setTri(target *config.TriState, val cty.Value) error {
	var b bool
	if err := setBool(&b, val); err != nil {
		return err
	}
	*target = config.TriFromBool(&b)
	return nil
}
