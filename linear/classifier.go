// Package linear implements linear estimator variants.
package linear

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/core/model"
	"github.com/fitkit/fitkit/core/tags"
	"github.com/fitkit/fitkit/core/validation"
	"github.com/fitkit/fitkit/metrics"
	fitkitErrors "github.com/fitkit/fitkit/pkg/errors"
	"github.com/fitkit/fitkit/pkg/log"
)

// RidgeClassifier is a deterministic binary classifier. Labels are
// encoded to {-1, +1} and a ridge-regularized least-squares system is
// solved in closed form; predictions take the sign of the decision
// score. The C parameter is the inverse regularization strength, as in
// the usual convention.
type RidgeClassifier struct {
	state *model.StateManager

	// Parameters
	c            float64
	fitIntercept bool

	// Fitted attributes
	coef_      []float64
	intercept_ float64
	classes_   []float64
	nFeatures_ int
}

// RidgeClassifierOption is a functional option for RidgeClassifier.
type RidgeClassifierOption func(*RidgeClassifier)

// WithC sets the inverse regularization strength (default 1.0).
func WithC(c float64) RidgeClassifierOption {
	return func(r *RidgeClassifier) {
		r.c = c
	}
}

// WithFitIntercept sets whether to fit an intercept term (default true).
func WithFitIntercept(fit bool) RidgeClassifierOption {
	return func(r *RidgeClassifier) {
		r.fitIntercept = fit
	}
}

// NewRidgeClassifier creates a RidgeClassifier.
func NewRidgeClassifier(opts ...RidgeClassifierOption) *RidgeClassifier {
	r := &RidgeClassifier{
		state:        model.NewStateManager(),
		c:            1.0,
		fitIntercept: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tags declares the variant's capability overrides.
func (r *RidgeClassifier) Tags() tags.Set {
	return tags.Set{
		tags.BinaryOnly: true,
	}
}

// IsFitted returns whether the classifier has been fitted.
func (r *RidgeClassifier) IsFitted() bool {
	return r.state.IsFitted()
}

// FittedAttrs returns the fitted-attribute payload.
func (r *RidgeClassifier) FittedAttrs() map[string]interface{} {
	return r.state.FittedAttrs()
}

// Fit trains the classifier. Labels must contain exactly two distinct
// values; the fitted attributes record them in ascending order as the
// canonical class set. Refitting replaces all fitted attributes.
func (r *RidgeClassifier) Fit(X, y mat.Matrix) error {
	return r.FitWeighted(X, y, nil)
}

// FitWeighted trains the classifier with optional per-sample weights.
// Weights are auxiliary per-call data aligned one-to-one with samples.
func (r *RidgeClassifier) FitWeighted(X, y mat.Matrix, sampleWeight []float64) (err error) {
	defer fitkitErrors.Recover(&err, "RidgeClassifier.Fit")
	start := time.Now()

	opts := validation.FeatureDefaults()
	data, labels, err := validation.FeaturesAndLabels("RidgeClassifier.Fit", X, y, opts)
	if err != nil {
		return err
	}
	nSamples, nFeatures := data.Dims()

	weights, err := validation.Weights("RidgeClassifier.Fit", sampleWeight, nSamples)
	if err != nil {
		return err
	}

	classes := distinctLabels(labels)
	if len(classes) != 2 {
		return fitkitErrors.NewValueError("RidgeClassifier.Fit",
			fmt.Sprintf("expected exactly 2 classes, got %d", len(classes)))
	}

	logger := log.GetLoggerWithName("linear.classifier")
	logger.Debug("fitting classifier",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, len(classes),
		"C", r.c)

	// Encode labels to -1/+1 in class order.
	target := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		if labels.At(i, 0) == classes[1] {
			target.SetVec(i, 1)
		} else {
			target.SetVec(i, -1)
		}
	}

	cols := nFeatures
	if r.fitIntercept {
		cols++
	}
	design := mat.NewDense(nSamples, cols, nil)
	for i := 0; i < nSamples; i++ {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		scale := math.Sqrt(w)
		for j := 0; j < nFeatures; j++ {
			design.Set(i, j, data.At(i, j)*scale)
		}
		if r.fitIntercept {
			design.Set(i, nFeatures, scale)
		}
		target.SetVec(i, target.AtVec(i)*scale)
	}

	if r.c <= 0 {
		return fitkitErrors.NewValueError("RidgeClassifier.Fit",
			fmt.Sprintf("C must be positive, got %g", r.c))
	}
	lambda := 1.0 / r.c

	var gram mat.Dense
	gram.Mul(design.T(), design)
	for j := 0; j < cols; j++ {
		gram.Set(j, j, gram.At(j, j)+lambda)
	}

	var moment mat.VecDense
	moment.MulVec(design.T(), target)

	var solution mat.VecDense
	if err := solution.SolveVec(&gram, &moment); err != nil {
		return fitkitErrors.NewFitError("RidgeClassifier", "normal equations are singular", err)
	}

	coef := make([]float64, nFeatures)
	for j := 0; j < nFeatures; j++ {
		coef[j] = solution.AtVec(j)
	}
	intercept := 0.0
	if r.fitIntercept {
		intercept = solution.AtVec(nFeatures)
	}

	r.coef_ = coef
	r.intercept_ = intercept
	r.classes_ = classes
	r.nFeatures_ = nFeatures
	r.state.SetFittedAttrs(map[string]interface{}{
		"coef_":       coef,
		"intercept_":  intercept,
		"classes_":    classes,
		"n_features_": nFeatures,
	})

	logger.Debug("fit complete",
		log.OperationKey, "fit",
		log.DurationMsKey, time.Since(start).Milliseconds())
	return nil
}

// DecisionFunction returns the raw decision score for each sample.
func (r *RidgeClassifier) DecisionFunction(X mat.Matrix) (_ mat.Matrix, err error) {
	defer fitkitErrors.Recover(&err, "RidgeClassifier.DecisionFunction")
	if err := model.RequireFitted("RidgeClassifier", "DecisionFunction", r.state, "coef_", "classes_"); err != nil {
		return nil, err
	}

	data, err := validation.Features("RidgeClassifier.DecisionFunction", X, validation.FeatureDefaults())
	if err != nil {
		return nil, err
	}
	nSamples, nFeatures := data.Dims()
	if nFeatures != r.nFeatures_ {
		return nil, fitkitErrors.NewDimensionError("RidgeClassifier.DecisionFunction", r.nFeatures_, nFeatures, 1)
	}

	scores := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		s := r.intercept_
		for j := 0; j < nFeatures; j++ {
			s += data.At(i, j) * r.coef_[j]
		}
		scores.Set(i, 0, s)
	}
	return scores, nil
}

// Predict returns the predicted class label for each sample. Every
// predicted label is one of the classes seen at fit time.
func (r *RidgeClassifier) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer fitkitErrors.Recover(&err, "RidgeClassifier.Predict")
	if err := model.RequireFitted("RidgeClassifier", "Predict", r.state, "coef_", "classes_"); err != nil {
		return nil, err
	}

	scores, err := r.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := scores.Dims()

	labels := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		if scores.At(i, 0) >= 0 {
			labels.Set(i, 0, r.classes_[1])
		} else {
			labels.Set(i, 0, r.classes_[0])
		}
	}
	return labels, nil
}

// Score returns the accuracy of predictions on X against y, optionally
// weighted per sample.
func (r *RidgeClassifier) Score(X, y mat.Matrix, sampleWeight []float64) (float64, error) {
	if err := model.RequireFitted("RidgeClassifier", "Score", r.state, "coef_", "classes_"); err != nil {
		return 0, err
	}

	predictions, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	nSamples, _ := predictions.Dims()
	weights, err := validation.Weights("RidgeClassifier.Score", sampleWeight, nSamples)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyWeighted(y, predictions, weights)
}

// Classes returns the canonical class labels recorded at fit time.
func (r *RidgeClassifier) Classes() []float64 {
	return append([]float64(nil), r.classes_...)
}

// Coef returns the fitted coefficients.
func (r *RidgeClassifier) Coef() []float64 {
	return append([]float64(nil), r.coef_...)
}

// Intercept returns the fitted intercept.
func (r *RidgeClassifier) Intercept() float64 {
	return r.intercept_
}

// GetParams returns the classifier's parameters.
func (r *RidgeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":             r.c,
		"fit_intercept": r.fitIntercept,
	}
}

// SetParams sets the classifier's parameters. Unknown keys fail with an
// UnknownParameterError.
func (r *RidgeClassifier) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "C":
			switch c := value.(type) {
			case float64:
				r.c = c
			case int:
				r.c = float64(c)
			default:
				return fitkitErrors.NewValueError("RidgeClassifier.SetParams", "C must be a float64")
			}
		case "fit_intercept":
			v, ok := value.(bool)
			if !ok {
				return fitkitErrors.NewValueError("RidgeClassifier.SetParams", "fit_intercept must be a bool")
			}
			r.fitIntercept = v
		default:
			return fitkitErrors.NewUnknownParameterError("RidgeClassifier.SetParams", key)
		}
	}
	return nil
}

// Clone returns an unfitted copy with identical parameters.
func (r *RidgeClassifier) Clone() model.Estimator {
	return NewRidgeClassifier(WithC(r.c), WithFitIntercept(r.fitIntercept))
}

// String returns a printable description of the classifier.
func (r *RidgeClassifier) String() string {
	if !r.IsFitted() {
		return fmt.Sprintf("RidgeClassifier(C=%g, fit_intercept=%t)", r.c, r.fitIntercept)
	}
	return fmt.Sprintf("RidgeClassifier(C=%g, fit_intercept=%t, n_features=%d)", r.c, r.fitIntercept, r.nFeatures_)
}

// distinctLabels extracts the sorted distinct labels from column 0.
func distinctLabels(y *mat.Dense) []float64 {
	rows, _ := y.Dims()
	seen := map[float64]bool{}
	var out []float64
	for i := 0; i < rows; i++ {
		v := y.At(i, 0)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}
