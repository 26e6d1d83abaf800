// Package preprocessing provides data preprocessing estimators.
//
// All components follow the fitkit estimator contract: parameters are
// fixed at construction, Fit computes fitted attributes and transitions
// the instance to the Fitted state, and Transform is gated on that
// state. They compose with pipelines and are exercised by the
// compatibility harness like any other variant.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/core/model"
	"github.com/fitkit/fitkit/core/validation"
	fitkitErrors "github.com/fitkit/fitkit/pkg/errors"
	"github.com/fitkit/fitkit/pkg/log"
)

// StandardScaler standardizes features by removing the mean and scaling
// to unit variance.
type StandardScaler struct {
	state *model.StateManager

	// Parameters
	withMean bool
	withStd  bool

	// Fitted attributes
	mean_      []float64
	scale_     []float64
	nFeatures_ int
}

// NewStandardScaler creates a StandardScaler.
//
// withMean centers each feature at zero; withStd divides by the
// feature's standard deviation. Constant features keep a scale of 1 to
// avoid division by zero.
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		withMean: withMean,
		withStd:  withStd,
	}
}

// NewStandardScalerDefault creates a StandardScaler with both centering
// and scaling enabled.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// IsFitted returns whether the scaler has been fitted.
func (s *StandardScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// FittedAttrs returns the fitted-attribute payload.
func (s *StandardScaler) FittedAttrs() map[string]interface{} {
	return s.state.FittedAttrs()
}

// Fit computes the per-feature mean and scale from the training data.
// The labels argument is ignored; scalers are unsupervised.
func (s *StandardScaler) Fit(X, _ mat.Matrix) (err error) {
	defer fitkitErrors.Recover(&err, "StandardScaler.Fit")

	data, err := validation.Features("StandardScaler.Fit", X, validation.FeatureDefaults())
	if err != nil {
		return err
	}
	r, c := data.Dims()

	logger := log.GetLoggerWithName("preprocessing.scaler")
	logger.Debug("fitting scaler", log.SamplesKey, r, log.FeaturesKey, c)

	mean := make([]float64, c)
	scale := make([]float64, c)

	for j := 0; j < c; j++ {
		if s.withMean {
			sum := 0.0
			for i := 0; i < r; i++ {
				sum += data.At(i, j)
			}
			mean[j] = sum / float64(r)
		}

		if s.withStd {
			sumSquares := 0.0
			for i := 0; i < r; i++ {
				diff := data.At(i, j) - mean[j]
				sumSquares += diff * diff
			}
			scale[j] = math.Sqrt(sumSquares / float64(r))
			if math.Abs(scale[j]) < 1e-8 {
				scale[j] = 1.0
			}
		} else {
			scale[j] = 1.0
		}
	}

	s.mean_ = mean
	s.scale_ = scale
	s.nFeatures_ = c
	s.state.SetFittedAttrs(map[string]interface{}{
		"mean_":       mean,
		"scale_":      scale,
		"n_features_": c,
	})
	return nil
}

// Transform standardizes X using the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer fitkitErrors.Recover(&err, "StandardScaler.Transform")
	if err := model.RequireFitted("StandardScaler", "Transform", s.state, "mean_", "scale_"); err != nil {
		return nil, err
	}

	data, err := validation.Features("StandardScaler.Transform", X, validation.FeatureDefaults())
	if err != nil {
		return nil, err
	}
	r, c := data.Dims()
	if c != s.nFeatures_ {
		return nil, fitkitErrors.NewDimensionError("StandardScaler.Transform", s.nFeatures_, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (data.At(i, j)-s.mean_[j])/s.scale_[j])
		}
	}
	return result, nil
}

// FitTransform fits the scaler and transforms the training data.
func (s *StandardScaler) FitTransform(X, y mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X, y); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer fitkitErrors.Recover(&err, "StandardScaler.InverseTransform")
	if err := model.RequireFitted("StandardScaler", "InverseTransform", s.state, "mean_", "scale_"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != s.nFeatures_ {
		return nil, fitkitErrors.NewDimensionError("StandardScaler.InverseTransform", s.nFeatures_, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.scale_[j]+s.mean_[j])
		}
	}
	return result, nil
}

// Mean returns the fitted per-feature means.
func (s *StandardScaler) Mean() []float64 { return s.mean_ }

// Scale returns the fitted per-feature scales.
func (s *StandardScaler) Scale() []float64 { return s.scale_ }

// GetParams returns the scaler's parameters.
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.withMean,
		"with_std":  s.withStd,
	}
}

// SetParams sets the scaler's parameters. Unknown keys fail with an
// UnknownParameterError.
func (s *StandardScaler) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "with_mean":
			v, ok := value.(bool)
			if !ok {
				return fitkitErrors.NewValueError("StandardScaler.SetParams", "with_mean must be a bool")
			}
			s.withMean = v
		case "with_std":
			v, ok := value.(bool)
			if !ok {
				return fitkitErrors.NewValueError("StandardScaler.SetParams", "with_std must be a bool")
			}
			s.withStd = v
		default:
			return fitkitErrors.NewUnknownParameterError("StandardScaler.SetParams", key)
		}
	}
	return nil
}

// Clone returns an unfitted copy with identical parameters.
func (s *StandardScaler) Clone() model.Estimator {
	return NewStandardScaler(s.withMean, s.withStd)
}

// String returns a printable description of the scaler.
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.withMean, s.withStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.withMean, s.withStd, s.nFeatures_)
}
