// Standard attribute keys shared by every component that logs.
//
// Keys follow a hierarchical naming convention ("model.name",
// "cache.records") so that log output can be filtered per subsystem.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator or optimizer type.
	// Examples: "KNearestNeighbors", "WeightedAverage", "StochasticGradient"
	ModelNameKey = "model.name"

	// EstimatorIDKey is a per-instance identifier (a UUID string).
	EstimatorIDKey = "estimator.id"

	// OperationKey names the operation being performed, see the Operation* values.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package doing the work.
	// Examples: "neighbors", "regression", "optimize"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of training points.
	SamplesKey = "data.samples"

	// FeaturesKey is the dimensionality of each point.
	FeaturesKey = "data.features"

	// QueryIndexKey is the row index of the query point.
	QueryIndexKey = "data.query_index"
)

// Neighbour cache.
const (
	CachePathKey    = "cache.path"
	CacheRecordsKey = "cache.records"
	CacheKeyKey     = "cache.key"
	CacheHitKey     = "cache.hit"
)

// Performance and training progress.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records a loss value (leave-one-out MSE, training loss).
	LossKey = "metrics.loss"

	// R2ScoreKey records the coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// EpochKey records the epoch number of the optimizer.
	EpochKey = "training.epoch"

	// StepKey records the total number of per-example updates.
	StepKey = "training.step"
)

// Hyperparameters.
const (
	// HyperParamsKey contains the full hyperparameter bag as a structured object.
	HyperParamsKey = "model.hyperparams"

	LearningRateKey = "hyperparams.learning_rate"
	BandwidthKey    = "hyperparams.bandwidth"
	NeighborsKKey   = "hyperparams.k"
	RandomSeedKey   = "config.random_seed"
)

// Error context.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving the issue.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationPredict    = "predict"
	OperationPrecompute = "precompute"
	OperationLoad       = "load"
	OperationWrite      = "write"
	OperationIterate    = "iterate"
	OperationCheck      = "gradient_check"
	OperationTune       = "tune"
	OperationEvaluate   = "evaluate"

	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorMissingConfig     = "MISSING_CONFIG"
	ErrorDuplicateKey      = "DUPLICATE_KEY"
	ErrorGradientMismatch  = "GRADIENT_MISMATCH"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
