// Package metrics implements evaluation metrics for classification.
package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/pkg/errors"
)

// Accuracy calculates the fraction of correct predictions.
//
// Labels are compared row-wise on the first column of each matrix.
// Returns a value in [0, 1].
func Accuracy(yTrue, yPred mat.Matrix) (float64, error) {
	return AccuracyWeighted(yTrue, yPred, nil)
}

// AccuracyWeighted calculates weighted accuracy. sampleWeight may be
// nil for uniform weighting; when given it must align one-to-one with
// samples or the call fails with a ShapeMismatchError. Negative
// weights fail with an InvalidValueError; they would push the result
// outside [0, 1].
func AccuracyWeighted(yTrue, yPred mat.Matrix, sampleWeight []float64) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AccuracyWeighted", "input matrices cannot be nil")
	}

	n, _ := yTrue.Dims()
	if n == 0 {
		return 0, errors.NewEmptyInputError("AccuracyWeighted", "samples", 0, 1)
	}

	nPred, _ := yPred.Dims()
	if n != nPred {
		return 0, errors.NewShapeMismatchError("AccuracyWeighted", n, nPred)
	}
	if sampleWeight != nil && len(sampleWeight) != n {
		return 0, errors.NewShapeMismatchError("AccuracyWeighted", n, len(sampleWeight))
	}

	correct := 0.0
	total := 0.0
	for i := 0; i < n; i++ {
		w := 1.0
		if sampleWeight != nil {
			w = sampleWeight[i]
		}
		if w < 0 {
			return 0, errors.NewInvalidValueError("AccuracyWeighted", i, 0, w)
		}
		total += w
		if yTrue.At(i, 0) == yPred.At(i, 0) {
			correct += w
		}
	}
	if total == 0 {
		return 0, errors.NewValueError("AccuracyWeighted", "sample weights sum to zero")
	}
	return correct / total, nil
}
