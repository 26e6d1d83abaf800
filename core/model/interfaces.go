package model

import "gonum.org/v1/gonum/mat"

// Params exposes an estimator's constructor parameters as a string-keyed
// map. GetParams returns a copy; SetParams rejects unknown keys with an
// UnknownParameterError. Parameters are fixed at construction and never
// touched by Fit.
type Params interface {
	GetParams() map[string]interface{}
	SetParams(params map[string]interface{}) error
}

// Estimator is the minimal contract shared by all fittable components.
// Fit validates its inputs, computes fitted attributes from scratch and
// transitions the instance to the Fitted state. Clone produces an
// unfitted copy with identical parameters and none of the fitted state.
type Estimator interface {
	Params
	Fit(X, y mat.Matrix) error
	Clone() Estimator
	IsFitted() bool
}

// Predictor is an estimator capability producing one label row per
// input sample. Requires the Fitted state.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Transformer is an estimator capability mapping a feature matrix to a
// new feature matrix. Requires the Fitted state unless the variant is
// tagged stateless.
type Transformer interface {
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// DecisionScorer is an optional capability producing raw decision
// scores instead of labels.
type DecisionScorer interface {
	DecisionFunction(X mat.Matrix) (mat.Matrix, error)
}

// Scorer evaluates predictions against labels with the variant's
// metric. sampleWeight may be nil; when given it must align one-to-one
// with samples or the call fails with a ShapeMismatchError.
type Scorer interface {
	Score(X, y mat.Matrix, sampleWeight []float64) (float64, error)
}

// WeightedFitter is an optional capability accepting per-sample weights
// as auxiliary fit parameters. Weights are per-call data, never a
// constructor parameter.
type WeightedFitter interface {
	FitWeighted(X, y mat.Matrix, sampleWeight []float64) error
}
