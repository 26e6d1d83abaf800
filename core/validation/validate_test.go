package validation

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/core/tensor"
	"github.com/fitkit/fitkit/pkg/errors"
)

func TestFeaturesAcceptsDense(t *testing.T) {
	X := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})

	out, err := Features("Test", X, FeatureDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mat.Equal(out, X) {
		t.Error("canonical form should equal the input values")
	}

	X.Set(0, 0, 99)
	if out.At(0, 0) != 1 {
		t.Error("validated output should not alias the caller's matrix")
	}
}

func TestFeaturesAcceptsNestedSlices(t *testing.T) {
	out, err := Features("Test", [][]float64{{1, 2}, {3, 4}}, FeatureDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.At(1, 0) != 3 {
		t.Errorf("unexpected value: %v", out.At(1, 0))
	}

	out, err = Features("Test", [][]int{{1, 2}, {3, 4}}, FeatureDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.At(0, 1) != 2 {
		t.Errorf("unexpected value: %v", out.At(0, 1))
	}
}

func TestFeaturesCoercesStrings(t *testing.T) {
	out, err := Features("Test", [][]string{{"1.5", "2"}, {"3", "4"}}, FeatureDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.At(0, 0) != 1.5 {
		t.Errorf("unexpected value: %v", out.At(0, 0))
	}

	_, err = Features("Test", [][]string{{"1.5", "abc"}}, FeatureDefaults())
	var conv *errors.ConversionError
	if !errors.As(err, &conv) {
		t.Errorf("expected ConversionError for non-numeric cell, got %v", err)
	}
}

func TestFeaturesDensifiesSparse(t *testing.T) {
	csr, err := tensor.NewCSR(2, 3, []int{0, 1}, []int{0, 2}, []float64{1, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opts := FeatureDefaults()
	opts.AcceptSparse = true
	out, err := Features("Test", csr, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.At(1, 2) != 5 {
		t.Errorf("unexpected value: %v", out.At(1, 2))
	}

	_, err = Features("Test", csr, FeatureDefaults())
	var conv *errors.ConversionError
	if !errors.As(err, &conv) {
		t.Errorf("sparse input without AcceptSparse should fail, got %v", err)
	}
}

func TestFeaturesRejectsNil(t *testing.T) {
	_, err := Features("Test", nil, FeatureDefaults())
	var conv *errors.ConversionError
	if !errors.As(err, &conv) {
		t.Errorf("expected ConversionError for nil input, got %v", err)
	}
}

func TestFeaturesRejectsEmpty(t *testing.T) {
	_, err := Features("Test", &mat.Dense{}, FeatureDefaults())
	var empty *errors.EmptyInputError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyInputError for zero-sized input, got %v", err)
	}
	if !errors.Is(err, errors.ErrEmptyData) {
		t.Error("empty input should unwrap to ErrEmptyData")
	}

	_, err = Features("Test", [][]float64{}, FeatureDefaults())
	if !errors.As(err, &empty) {
		t.Errorf("expected EmptyInputError for empty slice, got %v", err)
	}
}

func TestFeaturesRejectsRankOne(t *testing.T) {
	_, err := Features("Test", []float64{1, 2, 3}, FeatureDefaults())
	var dim *errors.DimensionError
	if !errors.As(err, &dim) {
		t.Fatalf("expected DimensionError for rank-1 input, got %v", err)
	}
	if dim.Expected != 2 || dim.Got != 1 {
		t.Errorf("unexpected ranks: %+v", dim)
	}
}

func TestFeaturesReshapesRankOneWhenAllowed(t *testing.T) {
	opts := FeatureDefaults()
	opts.RequireTwoDim = false
	out, err := Features("Test", []float64{1, 2, 3}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, c := out.Dims()
	if r != 3 || c != 1 {
		t.Errorf("expected 3x1, got %dx%d", r, c)
	}
}

func TestFeaturesRejectsRagged(t *testing.T) {
	_, err := Features("Test", [][]float64{{1, 2}, {3}}, FeatureDefaults())
	var dim *errors.DimensionError
	if !errors.As(err, &dim) {
		t.Errorf("expected DimensionError for ragged input, got %v", err)
	}
}

func TestFeaturesRejectsNonFinite(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		X := mat.NewDense(2, 2, []float64{1, 2, 3, bad})
		_, err := Features("Test", X, FeatureDefaults())
		var invalid *errors.InvalidValueError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidValueError for %v, got %v", bad, err)
		}
		if invalid.Row != 1 || invalid.Col != 1 {
			t.Errorf("expected position (1, 1), got (%d, %d)", invalid.Row, invalid.Col)
		}
	}
}

func TestFeaturesAllowsNonFiniteWhenRelaxed(t *testing.T) {
	opts := FeatureDefaults()
	opts.RequireFinite = false
	X := mat.NewDense(1, 2, []float64{1, math.NaN()})
	if _, err := Features("Test", X, opts); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFeaturesAndLabels(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	y := mat.NewVecDense(3, []float64{0, 1, 0})

	xOut, yOut, err := FeaturesAndLabels("Test", X, y, FeatureDefaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	xr, _ := xOut.Dims()
	yr, yc := yOut.Dims()
	if xr != 3 || yr != 3 || yc != 1 {
		t.Errorf("unexpected shapes: X %dx_, y %dx%d", xr, yr, yc)
	}
}

func TestFeaturesAndLabelsRejectsMismatch(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	y := mat.NewVecDense(2, []float64{0, 1})

	_, _, err := FeaturesAndLabels("Test", X, y, FeatureDefaults())
	var mismatch *errors.ShapeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ShapeMismatchError, got %v", err)
	}
	if mismatch.Expected != 3 || mismatch.Got != 2 {
		t.Errorf("unexpected counts: %+v", mismatch)
	}
}

func TestFeaturesAndLabelsMultiOutput(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	y := mat.NewDense(2, 2, []float64{0, 1, 1, 0})

	_, _, err := FeaturesAndLabels("Test", X, y, FeatureDefaults())
	var dim *errors.DimensionError
	if !errors.As(err, &dim) {
		t.Fatalf("expected DimensionError for multi-column labels, got %v", err)
	}

	opts := FeatureDefaults()
	opts.AllowMultiOutput = true
	if _, _, err := FeaturesAndLabels("Test", X, y, opts); err != nil {
		t.Errorf("unexpected error with AllowMultiOutput: %v", err)
	}
}

func TestWeights(t *testing.T) {
	out, err := Weights("Test", nil, 5)
	if err != nil || out != nil {
		t.Errorf("nil weights should pass through, got %v, %v", out, err)
	}

	w := []float64{1, 2, 3}
	out, err = Weights("Test", w, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w[0] = 99
	if out[0] != 1 {
		t.Error("validated weights should not alias the caller's slice")
	}

	_, err = Weights("Test", w, 4)
	var mismatch *errors.ShapeMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("expected ShapeMismatchError for misaligned weights, got %v", err)
	}

	_, err = Weights("Test", []float64{1, math.NaN()}, 2)
	var invalid *errors.InvalidValueError
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidValueError for NaN weight, got %v", err)
	}

	_, err = Weights("Test", []float64{1, -0.5}, 2)
	if !errors.As(err, &invalid) {
		t.Errorf("expected InvalidValueError for negative weight, got %v", err)
	}
}
