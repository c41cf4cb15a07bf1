// Package command assembles the downstream trainer's argument vector from a
// typed experiment record. Assembly is pure: no environment reads, no
// defaulting, no I/O. The same inputs always produce the same tokens in the
// same order.
package command

import (
	"strconv"

	"github.com/vk/expgridgo/internal/config"
)

// Switch tokens whose mere presence toggles trainer behavior.
const (
	FlagGroupExamplesByQuery    = "--group_examples_by_query"
	FlagRelationOnly            = "--relation_only"
	FlagUseActionSpaceBucketing = "--use_action_space_bucketing"
	FlagRunAnalysis             = "--run_analysis"
)

// Assemble builds the ordered token sequence handed to the trainer: the
// fixed-order `--flag value` pairs, the `--gpu` pair, the experiment mode
// token forwarded verbatim, the tri-state switches (present only when
// explicitly enabled), the always-on analysis switch, and finally the
// pass-through arguments exactly as given.
func Assemble(p *config.Params, mode, gpu string, extra []string) []string {
	args := make([]string, 0, 80)

	pair := func(flag, value string) {
		args = append(args, flag, value)
	}

	pair("--data_dir", p.DataDir)
	pair("--model", p.Model)
	pair("--bandwidth", formatInt(p.Bandwidth))
	pair("--entity_dim", formatInt(p.EntityDim))
	pair("--relation_dim", formatInt(p.RelationDim))
	pair("--history_dim", formatInt(p.HistoryDim))
	pair("--history_num_layers", formatInt(p.HistoryNumLayers))
	pair("--num_rollouts", formatInt(p.NumRollouts))
	pair("--num_rollout_steps", formatInt(p.NumRolloutSteps))
	pair("--bucket_interval", formatInt(p.BucketInterval))
	pair("--num_epochs", formatInt(p.NumEpochs))
	pair("--num_wait_epochs", formatInt(p.NumWaitEpochs))
	pair("--num_peek_epochs", formatInt(p.NumPeekEpochs))
	pair("--batch_size", formatInt(p.BatchSize))
	pair("--train_batch_size", formatInt(p.TrainBatchSize))
	pair("--dev_batch_size", formatInt(p.DevBatchSize))
	pair("--margin", formatFloat(p.Margin))
	pair("--learning_rate", formatFloat(p.LearningRate))
	pair("--baseline", p.Baseline)
	pair("--grad_norm", formatFloat(p.GradNorm))
	pair("--emb_dropout_rate", formatFloat(p.EmbDropoutRate))
	pair("--ff_dropout_rate", formatFloat(p.FFDropoutRate))
	pair("--action_dropout_rate", formatFloat(p.ActionDropoutRate))
	pair("--action_dropout_anneal_interval", formatInt(p.ActionDropoutAnnealInterval))
	pair("--pg_network_structure", p.PGNetworkStructure)
	pair("--pg_dropout", formatFloat(p.PGDropout))
	pair("--pg_batch_norm", formatBool(p.PGBatchNorm))
	pair("--pg_batch_norm_momentum", formatFloat(p.PGBatchNormMomentum))
	pair("--pg_use_bias", formatBool(p.PGUseBias))
	pair("--beta", formatFloat(p.Beta))
	pair("--beam_size", formatInt(p.BeamSize))
	pair("--num_paths_per_entity", formatInt(p.NumPathsPerEntity))
	pair("--gpu", gpu)

	if mode != "" {
		args = append(args, mode)
	}

	if p.GroupExamplesByQuery.Enabled() {
		args = append(args, FlagGroupExamplesByQuery)
	}
	if p.RelationOnly.Enabled() {
		args = append(args, FlagRelationOnly)
	}
	if p.UseActionSpaceBucketing.Enabled() {
		args = append(args, FlagUseActionSpaceBucketing)
	}

	args = append(args, FlagRunAnalysis)
	args = append(args, extra...)

	return args
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatBool renders value-style booleans the way the trainer's argument
// parser expects them, which is Python's literal spelling.
func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
