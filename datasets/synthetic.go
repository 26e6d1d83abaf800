// Package datasets generates small synthetic datasets for tests, the
// compatibility harness and examples.
package datasets

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/pkg/errors"
)

// MakeClassification generates a deterministic two-class dataset.
// Samples alternate between two gaussian blobs centered at -1 and +1
// along every feature; labels are 0 and 1. The same seed always yields
// the same data.
func MakeClassification(nSamples, nFeatures int, seed int64) (*mat.Dense, *mat.Dense, error) {
	if nSamples < 2 {
		return nil, nil, errors.NewEmptyInputError("MakeClassification", "samples", nSamples, 2)
	}
	if nFeatures < 1 {
		return nil, nil, errors.NewEmptyInputError("MakeClassification", "features", nFeatures, 1)
	}

	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(nSamples, nFeatures, nil)
	y := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		label := float64(i % 2)
		center := -1.0
		if label == 1 {
			center = 1.0
		}
		for j := 0; j < nFeatures; j++ {
			X.Set(i, j, center+rng.NormFloat64()*0.6)
		}
		y.Set(i, 0, label)
	}
	return X, y, nil
}

// TrainTestSplit splits X and y by row into a leading train part and a
// trailing test part of nTest rows.
func TrainTestSplit(X, y *mat.Dense, nTest int) (trainX, trainY, testX, testY *mat.Dense, err error) {
	n, c := X.Dims()
	if nTest < 1 || nTest >= n {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "nTest must be in [1, nSamples)")
	}
	yn, yc := y.Dims()
	if yn != n {
		return nil, nil, nil, nil, errors.NewShapeMismatchError("TrainTestSplit", n, yn)
	}

	nTrain := n - nTest
	trainX = mat.DenseCopyOf(X.Slice(0, nTrain, 0, c))
	testX = mat.DenseCopyOf(X.Slice(nTrain, n, 0, c))
	trainY = mat.DenseCopyOf(y.Slice(0, nTrain, 0, yc))
	testY = mat.DenseCopyOf(y.Slice(nTrain, n, 0, yc))
	return trainX, trainY, testX, testY, nil
}
