package log

// Standard attribute keys for estimator trace records. Using these keys
// keeps log output filterable across packages.

// Model and operation context.
const (
	// ModelNameKey identifies the estimator variant, e.g. "RidgeClassifier".
	ModelNameKey = "model.name"

	// OperationKey names the operation being performed: "fit", "predict",
	// "transform", "score", "search".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of samples (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (columns) being processed.
	FeaturesKey = "data.features"

	// ClassesKey is the number of distinct label classes seen at fit time.
	ClassesKey = "data.classes"
)

// Performance and search context.
const (
	// DurationMsKey records operation wall time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// CandidatesKey is the number of parameter combinations a search enumerates.
	CandidatesKey = "search.candidates"

	// ScoreKey records an evaluation score.
	ScoreKey = "ml.score"
)
