package pipeline

import (
	"github.com/cardiogo/cardiogo/dataset"
	"github.com/cardiogo/cardiogo/pkg/errors"
)

// Config collects every adjustable parameter of the run. Values the
// analysis treats as fixed constants (seed, split fraction, balanced size,
// fold count, bin count) live here rather than as magic numbers, and the
// ensemble defaults are named explicitly instead of being left to library
// defaults.
type Config struct {
	// Data source
	DataURL     string
	LabelColumn string
	Predictors  []string

	// Output
	PlotDir string // empty disables plot rendering

	// Reproducibility
	Seed uint64

	// Partitioning and rebalancing
	TrainFraction float64
	BalancedSize  int

	// Exploration
	HistogramBins int

	// Model
	NumTrees        int
	MaxDepth        int // 0 means unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 means all features per split (plain bagging)

	// Cross-validation
	CVFolds int
}

// DefaultConfig returns the documented analysis parameters: seed 123,
// 80/20 split, balanced size 1000, 10 folds, 30 histogram bins, and a
// 100-tree bagged ensemble over age, chol and trestbps.
func DefaultConfig() Config {
	return Config{
		DataURL:         dataset.ClevelandURL,
		LabelColumn:     "num",
		Predictors:      []string{"age", "chol", "trestbps"},
		PlotDir:         "plots",
		Seed:            123,
		TrainFraction:   0.8,
		BalancedSize:    1000,
		HistogramBins:   30,
		NumTrees:        100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		CVFolds:         10,
	}
}

func (c *Config) validate() error {
	if c.DataURL == "" {
		return errors.NewValidationError("DataURL", "must not be empty", c.DataURL)
	}
	if c.LabelColumn == "" {
		return errors.NewValidationError("LabelColumn", "must not be empty", c.LabelColumn)
	}
	if len(c.Predictors) == 0 {
		return errors.NewValidationError("Predictors", "need at least one predictor", c.Predictors)
	}
	if c.TrainFraction <= 0 || c.TrainFraction >= 1 {
		return errors.NewValidationError("TrainFraction", "must be in (0, 1)", c.TrainFraction)
	}
	if c.BalancedSize < 2 {
		return errors.NewValidationError("BalancedSize", "must be at least 2", c.BalancedSize)
	}
	if c.CVFolds < 2 {
		return errors.NewValidationError("CVFolds", "must be at least 2", c.CVFolds)
	}
	if c.HistogramBins < 1 {
		return errors.NewValidationError("HistogramBins", "must be at least 1", c.HistogramBins)
	}
	if c.NumTrees < 1 {
		return errors.NewValidationError("NumTrees", "must be at least 1", c.NumTrees)
	}
	return nil
}
