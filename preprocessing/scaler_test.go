package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	fitkitErrors "github.com/fitkit/fitkit/pkg/errors"
)

const epsilon = 1e-9

func TestStandardScalerFitTransform(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScalerDefault()
	if scaler.IsFitted() {
		t.Error("new scaler should not be fitted")
	}

	out, err := scaler.FitTransform(X, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scaler.IsFitted() {
		t.Error("scaler should be fitted after FitTransform")
	}

	// Each column becomes zero mean, unit variance.
	r, c := out.Dims()
	for j := 0; j < c; j++ {
		sum, sumSq := 0.0, 0.0
		for i := 0; i < r; i++ {
			sum += out.At(i, j)
		}
		mean := sum / float64(r)
		for i := 0; i < r; i++ {
			diff := out.At(i, j) - mean
			sumSq += diff * diff
		}
		if math.Abs(mean) > epsilon {
			t.Errorf("column %d mean = %v, want 0", j, mean)
		}
		if math.Abs(sumSq/float64(r)-1.0) > epsilon {
			t.Errorf("column %d variance = %v, want 1", j, sumSq/float64(r))
		}
	}
}

func TestStandardScalerConstantFeature(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{5, 5, 5})

	scaler := NewStandardScalerDefault()
	out, err := scaler.FitTransform(X, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if out.At(i, 0) != 0 {
			t.Errorf("constant feature should center to zero without exploding, got %v", out.At(i, 0))
		}
	}
}

func TestStandardScalerInverseTransform(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 7, 2, 8, 3, 9})

	scaler := NewStandardScalerDefault()
	scaled, err := scaler.FitTransform(X, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mat.EqualApprox(restored, X, epsilon) {
		t.Errorf("inverse transform should restore the original data:\ngot  %v\nwant %v",
			mat.Formatted(restored), mat.Formatted(X))
	}
}

func TestStandardScalerTransformBeforeFit(t *testing.T) {
	scaler := NewStandardScalerDefault()
	_, err := scaler.Transform(mat.NewDense(1, 1, []float64{1}))

	var notFitted *fitkitErrors.NotFittedError
	if !fitkitErrors.As(err, &notFitted) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}
	if notFitted.ModelName != "StandardScaler" {
		t.Errorf("unexpected model name: %q", notFitted.ModelName)
	}
}

func TestStandardScalerFeatureCountMismatch(t *testing.T) {
	scaler := NewStandardScalerDefault()
	if err := scaler.Fit(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := scaler.Transform(mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	var dim *fitkitErrors.DimensionError
	if !fitkitErrors.As(err, &dim) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if dim.Expected != 3 || dim.Got != 2 || dim.Axis != 1 {
		t.Errorf("unexpected fields: %+v", dim)
	}
}

func TestStandardScalerWithoutCentering(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 4})

	scaler := NewStandardScaler(false, false)
	out, err := scaler.FitTransform(X, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mat.Equal(out, X) {
		t.Error("disabled centering and scaling should leave data untouched")
	}
}

func TestStandardScalerParams(t *testing.T) {
	scaler := NewStandardScaler(true, false)

	params := scaler.GetParams()
	if params["with_mean"] != true || params["with_std"] != false {
		t.Errorf("unexpected params: %v", params)
	}

	if err := scaler.SetParams(map[string]interface{}{"with_std": true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scaler.GetParams()["with_std"] != true {
		t.Error("SetParams should update with_std")
	}

	err := scaler.SetParams(map[string]interface{}{"bogus": 1})
	var unknown *fitkitErrors.UnknownParameterError
	if !fitkitErrors.As(err, &unknown) {
		t.Errorf("expected UnknownParameterError, got %v", err)
	}
}

func TestStandardScalerClone(t *testing.T) {
	scaler := NewStandardScaler(false, true)
	if err := scaler.Fit(mat.NewDense(2, 1, []float64{1, 3}), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clone := scaler.Clone()
	if clone.IsFitted() {
		t.Error("clone should start unfitted")
	}
	if clone.GetParams()["with_std"] != true || clone.GetParams()["with_mean"] != false {
		t.Errorf("clone should keep parameters: %v", clone.GetParams())
	}
}
