// Package model provides the estimator base type and interfaces shared by
// all models in cardiogo.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is the interface for models that can be fitted to data.
type Estimator interface {
	// Fit trains the model on X (n_samples x n_features) and y (n_samples x 1).
	Fit(X, y mat.Matrix) error

	// IsFitted reports whether Fit has completed successfully.
	IsFitted() bool
}

// Predictor is the interface for fitted models that produce predictions.
type Predictor interface {
	// Predict returns predicted labels for rows of X as an n_samples x 1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Estimator
	Predictor

	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique classes seen during fitting.
	Classes() []int
}
