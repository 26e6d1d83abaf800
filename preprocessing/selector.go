package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/core/model"
	"github.com/fitkit/fitkit/core/validation"
	fitkitErrors "github.com/fitkit/fitkit/pkg/errors"
	"github.com/fitkit/fitkit/pkg/log"
)

// VarianceSelector keeps the k features with the highest variance in
// the training data. It is the transform-capable intermediate step used
// in pipelines; its k parameter routes as "<step>.k".
type VarianceSelector struct {
	state *model.StateManager

	// Parameters
	k int

	// Fitted attributes
	support_   []int
	variances_ []float64
	nFeatures_ int
}

// VarianceSelectorOption is a functional option for VarianceSelector.
type VarianceSelectorOption func(*VarianceSelector)

// WithK sets the number of features to keep.
func WithK(k int) VarianceSelectorOption {
	return func(v *VarianceSelector) {
		v.k = k
	}
}

// NewVarianceSelector creates a VarianceSelector keeping k features
// (default 10).
func NewVarianceSelector(opts ...VarianceSelectorOption) *VarianceSelector {
	v := &VarianceSelector{
		state: model.NewStateManager(),
		k:     10,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// IsFitted returns whether the selector has been fitted.
func (v *VarianceSelector) IsFitted() bool {
	return v.state.IsFitted()
}

// FittedAttrs returns the fitted-attribute payload.
func (v *VarianceSelector) FittedAttrs() map[string]interface{} {
	return v.state.FittedAttrs()
}

// Fit computes per-feature variances and records the indices of the k
// highest-variance features. Labels are ignored. Ties are broken toward
// the lower feature index so refits are deterministic.
func (v *VarianceSelector) Fit(X, _ mat.Matrix) (err error) {
	defer fitkitErrors.Recover(&err, "VarianceSelector.Fit")

	data, err := validation.Features("VarianceSelector.Fit", X, validation.FeatureDefaults())
	if err != nil {
		return err
	}
	r, c := data.Dims()
	if v.k < 1 {
		return fitkitErrors.NewValueError("VarianceSelector.Fit", fmt.Sprintf("k must be >= 1, got %d", v.k))
	}
	if v.k > c {
		return fitkitErrors.NewValueError("VarianceSelector.Fit",
			fmt.Sprintf("k=%d exceeds the %d available features", v.k, c))
	}

	logger := log.GetLoggerWithName("preprocessing.selector")
	logger.Debug("fitting selector", log.SamplesKey, r, log.FeaturesKey, c, "k", v.k)

	variances := make([]float64, c)
	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += data.At(i, j)
		}
		mean := sum / float64(r)
		sumSquares := 0.0
		for i := 0; i < r; i++ {
			diff := data.At(i, j) - mean
			sumSquares += diff * diff
		}
		variances[j] = sumSquares / float64(r)
	}

	order := make([]int, c)
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return variances[order[a]] > variances[order[b]]
	})

	support := append([]int(nil), order[:v.k]...)
	sort.Ints(support)

	v.support_ = support
	v.variances_ = variances
	v.nFeatures_ = c
	v.state.SetFittedAttrs(map[string]interface{}{
		"support_":    support,
		"variances_":  variances,
		"n_features_": c,
	})
	return nil
}

// Transform keeps only the selected feature columns, preserving their
// original order.
func (v *VarianceSelector) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer fitkitErrors.Recover(&err, "VarianceSelector.Transform")
	if err := model.RequireFitted("VarianceSelector", "Transform", v.state, "support_"); err != nil {
		return nil, err
	}

	data, err := validation.Features("VarianceSelector.Transform", X, validation.FeatureDefaults())
	if err != nil {
		return nil, err
	}
	r, c := data.Dims()
	if c != v.nFeatures_ {
		return nil, fitkitErrors.NewDimensionError("VarianceSelector.Transform", v.nFeatures_, c, 1)
	}

	result := mat.NewDense(r, len(v.support_), nil)
	for i := 0; i < r; i++ {
		for out, j := range v.support_ {
			result.Set(i, out, data.At(i, j))
		}
	}
	return result, nil
}

// FitTransform fits the selector and transforms the training data.
func (v *VarianceSelector) FitTransform(X, y mat.Matrix) (mat.Matrix, error) {
	if err := v.Fit(X, y); err != nil {
		return nil, err
	}
	return v.Transform(X)
}

// Support returns the fitted indices of the retained features.
func (v *VarianceSelector) Support() []int {
	return append([]int(nil), v.support_...)
}

// GetParams returns the selector's parameters.
func (v *VarianceSelector) GetParams() map[string]interface{} {
	return map[string]interface{}{"k": v.k}
}

// SetParams sets the selector's parameters. Unknown keys fail with an
// UnknownParameterError.
func (v *VarianceSelector) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "k":
			switch n := value.(type) {
			case int:
				v.k = n
			case float64:
				v.k = int(n)
			default:
				return fitkitErrors.NewValueError("VarianceSelector.SetParams", "k must be an int")
			}
		default:
			return fitkitErrors.NewUnknownParameterError("VarianceSelector.SetParams", key)
		}
	}
	return nil
}

// Clone returns an unfitted copy with identical parameters.
func (v *VarianceSelector) Clone() model.Estimator {
	return NewVarianceSelector(WithK(v.k))
}

// String returns a printable description of the selector.
func (v *VarianceSelector) String() string {
	if !v.IsFitted() {
		return fmt.Sprintf("VarianceSelector(k=%d)", v.k)
	}
	return fmt.Sprintf("VarianceSelector(k=%d, n_features=%d)", v.k, v.nFeatures_)
}
