package pipeline

import (
	"math/rand"

	"github.com/fitkit/fitkit/pkg/errors"
)

// Splitter produces a train/evaluation split over nSamples row indices.
// The split strategy is a pluggable collaborator of the grid search;
// implementations must be deterministic for a fixed configuration.
type Splitter interface {
	Split(nSamples int) (train, test []int, err error)
}

// Holdout splits off a fixed fraction of shuffled rows for evaluation.
type Holdout struct {
	// TestFraction is the fraction of rows held out, in (0, 1).
	// Zero defaults to 0.25.
	TestFraction float64

	// Seed drives the shuffle so splits are reproducible.
	Seed int64
}

// Split shuffles row indices and holds out the configured fraction.
func (h Holdout) Split(nSamples int) ([]int, []int, error) {
	if nSamples < 2 {
		return nil, nil, errors.NewEmptyInputError("Holdout.Split", "samples", nSamples, 2)
	}
	fraction := h.TestFraction
	if fraction == 0 {
		fraction = 0.25
	}
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, errors.NewValueError("Holdout.Split", "TestFraction must be in (0, 1)")
	}

	perm := rand.New(rand.NewSource(h.Seed)).Perm(nSamples)
	nTest := int(float64(nSamples) * fraction)
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= nSamples {
		nTest = nSamples - 1
	}
	test := append([]int(nil), perm[:nTest]...)
	train := append([]int(nil), perm[nTest:]...)
	return train, test, nil
}

// KFold deterministically assigns shuffled rows to K folds and holds
// out one of them.
type KFold struct {
	// K is the number of folds; must be at least 2.
	K int

	// Fold selects which fold is held out, in [0, K).
	Fold int

	// Seed drives the shuffle.
	Seed int64
}

// Split holds out the configured fold.
func (k KFold) Split(nSamples int) ([]int, []int, error) {
	if k.K < 2 {
		return nil, nil, errors.NewValueError("KFold.Split", "K must be at least 2")
	}
	if k.Fold < 0 || k.Fold >= k.K {
		return nil, nil, errors.NewValueError("KFold.Split", "Fold must be in [0, K)")
	}
	if nSamples < k.K {
		return nil, nil, errors.NewEmptyInputError("KFold.Split", "samples", nSamples, k.K)
	}

	perm := rand.New(rand.NewSource(k.Seed)).Perm(nSamples)
	var train, test []int
	for i, row := range perm {
		if i%k.K == k.Fold {
			test = append(test, row)
		} else {
			train = append(train, row)
		}
	}
	return train, test, nil
}
