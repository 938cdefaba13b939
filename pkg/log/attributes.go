// Package log defines standard attribute keys for pipeline operations.
//
// Using these keys consistently keeps stage logs filterable: every stage
// of the run logs under "pipeline.stage", data dimensions under "data.*",
// and fitted-model context under "model.*".
package log

// Pipeline and operation context.
const (
	// StageKey names the pipeline stage emitting the record.
	// Standard values: "ingest", "explore", "label", "split", "resample",
	// "train", "cross_validate", "evaluate"
	StageKey = "pipeline.stage"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "transform"
	OperationKey = "ml.operation"

	// ModelNameKey identifies the model type.
	// Examples: "TreeClassifier", "BaggingClassifier"
	ModelNameKey = "model.name"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of predictor columns.
	FeaturesKey = "data.features"

	// MissingKey indicates how many missing-value sentinels were found.
	MissingKey = "data.missing"

	// ClassesKey indicates the number of distinct outcome levels.
	ClassesKey = "data.classes"
)

// Result metrics.
const (
	// AccuracyKey carries a computed accuracy value.
	AccuracyKey = "metric.accuracy"

	// DurationMsKey carries elapsed wall time in milliseconds.
	DurationMsKey = "duration_ms"
)
