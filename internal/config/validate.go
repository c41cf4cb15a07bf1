package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate performs the load-time checks that replace the legacy launcher's
// silent empty-token failure mode. It collects every violation instead of
// stopping at the first one, so a broken config file is fixable in one pass.
func (e *Experiment) Validate() error {
	var errs []string

	if e.Name == "" {
		errs = append(errs, "experiment name must not be empty")
	}
	if e.Params == nil {
		errs = append(errs, fmt.Sprintf("experiment %q: missing params block", e.Name))
	} else {
		errs = append(errs, e.Params.validate(e.Name)...)
	}

	for _, h := range e.Hooks {
		for _, ev := range h.Events {
			if !KnownEvent(ev) {
				errs = append(errs, fmt.Sprintf("experiment %q: hook %q subscribes to unknown event %q", e.Name, h.Name, ev))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (p *Params) validate(owner string) []string {
	var errs []string

	requireString := func(field, val string) {
		if val == "" {
			errs = append(errs, fmt.Sprintf("experiment %q: %s must not be empty", owner, field))
		}
	}
	requirePositive := func(field string, val int) {
		if val <= 0 {
			errs = append(errs, fmt.Sprintf("experiment %q: %s must be positive, got %d", owner, field, val))
		}
	}
	requireRate := func(field string, val float64) {
		if val < 0 || val > 1 {
			errs = append(errs, fmt.Sprintf("experiment %q: %s must be in [0, 1], got %v", owner, field, val))
		}
	}

	requireString("data_dir", p.DataDir)
	requireString("model", p.Model)
	requireString("baseline", p.Baseline)
	requireString("pg_network_structure", p.PGNetworkStructure)

	requirePositive("bandwidth", p.Bandwidth)
	requirePositive("bucket_interval", p.BucketInterval)
	requirePositive("num_rollouts", p.NumRollouts)
	requirePositive("num_rollout_steps", p.NumRolloutSteps)
	requirePositive("entity_dim", p.EntityDim)
	requirePositive("relation_dim", p.RelationDim)
	requirePositive("history_dim", p.HistoryDim)
	requirePositive("history_num_layers", p.HistoryNumLayers)
	requirePositive("num_epochs", p.NumEpochs)
	requirePositive("num_wait_epochs", p.NumWaitEpochs)
	requirePositive("num_peek_epochs", p.NumPeekEpochs)
	requirePositive("batch_size", p.BatchSize)
	requirePositive("train_batch_size", p.TrainBatchSize)
	requirePositive("dev_batch_size", p.DevBatchSize)
	requirePositive("action_dropout_anneal_interval", p.ActionDropoutAnnealInterval)
	requirePositive("beam_size", p.BeamSize)
	requirePositive("num_paths_per_entity", p.NumPathsPerEntity)

	if p.LearningRate <= 0 {
		errs = append(errs, fmt.Sprintf("experiment %q: learning_rate must be positive, got %v", owner, p.LearningRate))
	}
	requireRate("emb_dropout_rate", p.EmbDropoutRate)
	requireRate("ff_dropout_rate", p.FFDropoutRate)
	requireRate("action_dropout_rate", p.ActionDropoutRate)
	requireRate("pg_dropout", p.PGDropout)
	requireRate("pg_batch_norm_momentum", p.PGBatchNormMomentum)

	return errs
}
