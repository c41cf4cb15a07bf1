package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/expgridgo/internal/config"
)

func baseExperiment(name string) *config.Experiment {
	return &config.Experiment{
		Name: name,
		Params: &config.Params{
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
			PGBatchNorm:         true,
			PGBatchNormMomentum: 0.1,
			Beta:                0.05,

			BeamSize:          128,
			NumPathsPerEntity: 3,
		},
		Trainer: &config.Trainer{
			Interpreter: config.DefaultInterpreter,
			Module:      config.DefaultModule,
		},
	}
}

func TestExpand_NoMatrix(t *testing.T) {
	t.Parallel()

	exp := baseExperiment("umls")
	runs, err := Expand(exp)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, "umls", run.Name)
	assert.NotEmpty(t, run.ID)
	assert.Empty(t, run.Overrides)
	assert.Equal(t, 200, run.Params.EntityDim)

	// Each run owns a copy of the parameter record.
	run.Params.EntityDim = 64
	assert.Equal(t, 200, exp.Params.EntityDim)
}

func TestExpand_CrossProduct(t *testing.T) {
	t.Parallel()

	exp := baseExperiment("sweep")
	exp.Matrix = map[string][]cty.Value{
		"model":      {cty.StringVal("point.rs.conve"), cty.StringVal("point.rs.complex")},
		"entity_dim": {cty.NumberIntVal(100), cty.NumberIntVal(200)},
	}

	runs, err := Expand(exp)
	require.NoError(t, err)
	require.Len(t, runs, 4)

	// Keys are applied in sorted order and the last dimension varies
	// fastest, so expansion order is stable across invocations.
	names := make([]string, 0, len(runs))
	for _, run := range runs {
		names = append(names, run.Name)
	}
	assert.Equal(t, []string{
		"sweep[entity_dim=100,model=point.rs.conve]",
		"sweep[entity_dim=100,model=point.rs.complex]",
		"sweep[entity_dim=200,model=point.rs.conve]",
		"sweep[entity_dim=200,model=point.rs.complex]",
	}, names)

	assert.Equal(t, 100, runs[0].Params.EntityDim)
	assert.Equal(t, "point.rs.complex", runs[1].Params.Model)
	assert.Equal(t, 200, runs[3].Params.EntityDim)

	assert.Equal(t, map[string]string{
		"entity_dim": "100",
		"model":      "point.rs.conve",
	}, runs[0].Overrides)

	// Unswept parameters keep their base values in every run.
	for _, run := range runs {
		assert.Equal(t, 0.001, run.Params.LearningRate)
	}
}

func TestExpand_TriStateOverride(t *testing.T) {
	t.Parallel()

	exp := baseExperiment("tri")
	exp.Matrix = map[string][]cty.Value{
		"relation_only": {cty.True, cty.False},
	}

	runs, err := Expand(exp)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, config.TriTrue, runs[0].Params.RelationOnly)
	assert.Equal(t, config.TriFalse, runs[1].Params.RelationOnly)
}

func TestExpand_UnknownKey(t *testing.T) {
	t.Parallel()

	exp := baseExperiment("bad")
	exp.Matrix = map[string][]cty.Value{
		"no_such_param": {cty.NumberIntVal(1)},
	}

	_, err := Expand(exp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `matrix key "no_such_param"`)
}

func TestExpand_WrongValueType(t *testing.T) {
	t.Parallel()

	exp := baseExperiment("bad")
	exp.Matrix = map[string][]cty.Value{
		"entity_dim": {cty.StringVal("not a number")},
	}

	_, err := Expand(exp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a number")
}
