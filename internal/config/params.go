package config

// Params is the typed record of every value the trainer's argument surface
// requires. The field set mirrors the hyperparameter surface of the
// CoPER/MINERVA trainer family: graph and embedding geometry, rollout
// shape, training schedule, regularization, policy-gradient network wiring,
// and decoding.
//
// All fields are required in the configuration except the three tri-state
// switches at the bottom.
type Params struct {
	// Data and model selection.
	DataDir  string
	Model    string
	Baseline string

	// Graph traversal geometry.
	Bandwidth       int
	BucketInterval  int
	NumRollouts     int
	NumRolloutSteps int

	// Embedding and history encoder dimensions.
	EntityDim        int
	RelationDim      int
	HistoryDim       int
	HistoryNumLayers int

	// Training schedule.
	NumEpochs      int
	NumWaitEpochs  int
	NumPeekEpochs  int
	BatchSize      int
	TrainBatchSize int
	DevBatchSize   int
	LearningRate   float64
	Margin         float64
	GradNorm       float64

	// Regularization.
	EmbDropoutRate              float64
	FFDropoutRate               float64
	ActionDropoutRate           float64
	ActionDropoutAnnealInterval int

	// Policy-gradient network.
	PGNetworkStructure  string
	PGDropout           float64
	PGBatchNorm         bool
	PGBatchNormMomentum float64
	PGUseBias           bool
	Beta                float64

	// Decoding.
	BeamSize          int
	NumPathsPerEntity int

	// Tri-state switches. Only an explicit true emits the trainer flag;
	// explicit false and unset both omit it.
	GroupExamplesByQuery    TriState
	RelationOnly            TriState
	UseActionSpaceBucketing TriState
}
