package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/datasets"
	fitkitErrors "github.com/fitkit/fitkit/pkg/errors"
)

func TestRidgeClassifierSeparableData(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		-2, -1,
		-3, -2,
		-1, -3,
		2, 1,
		3, 2,
		1, 3,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	clf := NewRidgeClassifier()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !clf.IsFitted() {
		t.Error("classifier should be fitted after Fit")
	}

	pred, err := clf.Predict(X)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 6; i++ {
		if pred.At(i, 0) != y.At(i, 0) {
			t.Errorf("sample %d: predicted %v, want %v", i, pred.At(i, 0), y.At(i, 0))
		}
	}

	score, err := clf.Score(X, y, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 1.0 {
		t.Errorf("expected perfect training score, got %v", score)
	}
}

func TestRidgeClassifierHoldout(t *testing.T) {
	X, y, err := datasets.MakeClassification(1000, 20, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	trainX, trainY, testX, testY, err := datasets.TrainTestSplit(X, y, 250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clf := NewRidgeClassifier(WithC(1.0))
	if err := clf.Fit(trainX, trainY); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pred, err := clf.Predict(testX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, cols := pred.Dims()
	if rows != 250 || cols != 1 {
		t.Errorf("expected 250x1 predictions, got %dx%d", rows, cols)
	}
	for i := 0; i < rows; i++ {
		if v := pred.At(i, 0); v != 0 && v != 1 {
			t.Errorf("prediction %d is %v, want a training class", i, v)
		}
	}

	score, err := clf.Score(testX, testY, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score < 0 || score > 1 {
		t.Errorf("score %v outside [0, 1]", score)
	}
	// Well-separated blobs should be easy.
	if score < 0.9 {
		t.Errorf("expected high holdout accuracy, got %v", score)
	}
}

func TestRidgeClassifierDeterministicRefit(t *testing.T) {
	X, y, err := datasets.MakeClassification(100, 5, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clf := NewRidgeClassifier()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := clf.Coef()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := clf.Coef()

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("refit changed coefficient %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRidgeClassifierClassesSortedAscending(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{-1, -2, 1, 2})
	y := mat.NewDense(4, 1, []float64{7, 7, 3, 3})

	clf := NewRidgeClassifier()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	classes := clf.Classes()
	if len(classes) != 2 || classes[0] != 3 || classes[1] != 7 {
		t.Errorf("expected classes [3 7], got %v", classes)
	}
}

func TestRidgeClassifierRejectsNonBinaryLabels(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{0, 1, 2})

	err := NewRidgeClassifier().Fit(X, y)
	var value *fitkitErrors.ValueError
	if !fitkitErrors.As(err, &value) {
		t.Errorf("expected ValueError for three classes, got %v", err)
	}
}

func TestRidgeClassifierPredictBeforeFit(t *testing.T) {
	clf := NewRidgeClassifier()
	_, err := clf.Predict(mat.NewDense(1, 1, []float64{1}))

	var notFitted *fitkitErrors.NotFittedError
	if !fitkitErrors.As(err, &notFitted) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
	if notFitted.Method != "Predict" {
		t.Errorf("unexpected method: %q", notFitted.Method)
	}
}

func TestRidgeClassifierSampleCountMismatch(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(2, 1, []float64{0, 1})

	err := NewRidgeClassifier().Fit(X, y)
	var mismatch *fitkitErrors.ShapeMismatchError
	if !fitkitErrors.As(err, &mismatch) {
		t.Errorf("expected ShapeMismatchError, got %v", err)
	}
}

func TestRidgeClassifierFeatureCountMismatch(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{-1, -1, -2, -2, 1, 1, 2, 2})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	clf := NewRidgeClassifier()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := clf.Predict(mat.NewDense(1, 3, []float64{1, 2, 3}))
	var dim *fitkitErrors.DimensionError
	if !fitkitErrors.As(err, &dim) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if dim.Expected != 2 || dim.Got != 3 || dim.Axis != 1 {
		t.Errorf("unexpected fields: %+v", dim)
	}
}

func TestRidgeClassifierNonFiniteInput(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, math.NaN(), 3, 4})
	y := mat.NewDense(2, 1, []float64{0, 1})

	err := NewRidgeClassifier().Fit(X, y)
	var invalid *fitkitErrors.InvalidValueError
	if !fitkitErrors.As(err, &invalid) {
		t.Errorf("expected InvalidValueError, got %v", err)
	}
}

func TestRidgeClassifierSampleWeights(t *testing.T) {
	// Two heavy points at the extremes dominate the fit.
	X := mat.NewDense(4, 1, []float64{-2, -1, 1, 2})
	y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})

	clf := NewRidgeClassifier()
	if err := clf.FitWeighted(X, y, []float64{10, 1, 1, 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score, err := clf.Score(X, y, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 1.0 {
		t.Errorf("expected perfect score on separable data, got %v", score)
	}

	err = clf.FitWeighted(X, y, []float64{1, 1})
	var mismatch *fitkitErrors.ShapeMismatchError
	if !fitkitErrors.As(err, &mismatch) {
		t.Errorf("expected ShapeMismatchError for misaligned weights, got %v", err)
	}
}

func TestRidgeClassifierRejectsNegativeWeights(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		-2, -1,
		-3, -2,
		-1, -3,
		2, 1,
		3, 2,
		1, 3,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	clf := NewRidgeClassifier()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var invalid *fitkitErrors.InvalidValueError
	err := clf.FitWeighted(X, y, []float64{3, -1, 1, 1, 1, 1})
	if !fitkitErrors.As(err, &invalid) {
		t.Errorf("expected InvalidValueError for negative fit weight, got %v", err)
	}

	// A negative score weight could push accuracy outside [0, 1].
	yFlipped := mat.NewDense(6, 1, []float64{1, 1, 1, 0, 0, 0})
	_, err = clf.Score(X, yFlipped, []float64{3, -1, -1, -1, -1, -1})
	if !fitkitErrors.As(err, &invalid) {
		t.Errorf("expected InvalidValueError for negative score weight, got %v", err)
	}
}

func TestRidgeClassifierInvalidC(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{-1, 1})
	y := mat.NewDense(2, 1, []float64{0, 1})

	err := NewRidgeClassifier(WithC(0)).Fit(X, y)
	var value *fitkitErrors.ValueError
	if !fitkitErrors.As(err, &value) {
		t.Errorf("expected ValueError for C=0, got %v", err)
	}
}

func TestRidgeClassifierParams(t *testing.T) {
	clf := NewRidgeClassifier(WithC(0.5), WithFitIntercept(false))

	params := clf.GetParams()
	if params["C"] != 0.5 || params["fit_intercept"] != false {
		t.Errorf("unexpected params: %v", params)
	}

	if err := clf.SetParams(map[string]interface{}{"C": 2.0, "fit_intercept": true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clf.GetParams()["C"] != 2.0 {
		t.Error("SetParams should update C")
	}

	err := clf.SetParams(map[string]interface{}{"alpha": 1.0})
	var unknown *fitkitErrors.UnknownParameterError
	if !fitkitErrors.As(err, &unknown) {
		t.Errorf("expected UnknownParameterError, got %v", err)
	}
}

func TestRidgeClassifierClone(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{-1, 1})
	y := mat.NewDense(2, 1, []float64{0, 1})

	clf := NewRidgeClassifier(WithC(0.25))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clone := clf.Clone()
	if clone.IsFitted() {
		t.Error("clone should start unfitted")
	}
	if clone.GetParams()["C"] != 0.25 {
		t.Errorf("clone should keep C: %v", clone.GetParams())
	}
}
