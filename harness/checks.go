package harness

import (
	"math"
	"reflect"

	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/core/model"
	"github.com/fitkit/fitkit/core/tags"
	fitkitErrors "github.com/fitkit/fitkit/pkg/errors"
)

// attrSource is implemented by estimators exposing their fitted
// attribute payload.
type attrSource interface {
	FittedAttrs() map[string]interface{}
}

// stateDependent invokes the variant's first available state-dependent
// operation on X. ok is false when the variant has none.
func stateDependent(est model.Estimator, X mat.Matrix) (ok bool, err error) {
	if p, isPredictor := est.(model.Predictor); isPredictor {
		_, err := p.Predict(X)
		return true, err
	}
	if t, isTransformer := est.(model.Transformer); isTransformer {
		_, err := t.Transform(X)
		return true, err
	}
	if d, isScorer := est.(model.DecisionScorer); isScorer {
		_, err := d.DecisionFunction(X)
		return true, err
	}
	return false, nil
}

// output produces the variant's observable output on X, via Predict or
// Transform. ok is false when the variant has neither.
func output(est model.Estimator, X mat.Matrix) (out mat.Matrix, ok bool, err error) {
	if p, isPredictor := est.(model.Predictor); isPredictor {
		out, err := p.Predict(X)
		return out, true, err
	}
	if t, isTransformer := est.(model.Transformer); isTransformer {
		out, err := t.Transform(X)
		return out, true, err
	}
	return nil, false, nil
}

func matEqual(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			if a.At(i, j) != b.At(i, j) {
				return false
			}
		}
	}
	return true
}

func withNaN(X *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(X)
	out.Set(1, 2, math.NaN())
	return out
}

func widen(X *mat.Dense) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(i, j))
		}
		out.Set(i, c, 1.0)
	}
	return out
}

func noStateDependentOps(ctx *checkContext) bool {
	est := ctx.variant.New()
	_, isPredictor := est.(model.Predictor)
	_, isTransformer := est.(model.Transformer)
	_, isDecision := est.(model.DecisionScorer)
	return !isPredictor && !isTransformer && !isDecision
}

// battery is the fixed, numbered check list. Checks never fail fast;
// Run collects every outcome.
var battery = []check{
	{
		id:   1,
		name: "constructor_accepts_no_arguments",
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			if est == nil {
				return violation("constructor_accepts_no_arguments",
					"variants must be zero-argument constructible", "constructor returned nil")
			}
			if est.GetParams() == nil {
				return violation("constructor_accepts_no_arguments",
					"constructed instances must expose their parameters", "GetParams returned nil")
			}
			return nil
		},
	},
	{
		id:   2,
		name: "unfitted_after_construction",
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			if est.IsFitted() {
				return violation("unfitted_after_construction",
					"instances start in the Unfitted state", "IsFitted returned true before Fit")
			}
			if src, ok := est.(attrSource); ok {
				if attrs := src.FittedAttrs(); len(attrs) != 0 {
					return violation("unfitted_after_construction",
						"fitted attributes are absent before the first Fit", "found %d attributes", len(attrs))
				}
			}
			return nil
		},
	},
	{
		id:   3,
		name: "not_fitted_error_before_fit",
		skip: func(ctx *checkContext) bool {
			return !ctx.tags.Bool(tags.RequiresFit) || ctx.tags.Bool(tags.Stateless) || noStateDependentOps(ctx)
		},
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			ok, err := stateDependent(est, ctx.X)
			if !ok {
				return nil
			}
			var notFitted *fitkitErrors.NotFittedError
			if err == nil || !fitkitErrors.As(err, &notFitted) {
				return violation("not_fitted_error_before_fit",
					"state-dependent operations fail with NotFittedError before Fit", "got %v", err)
			}
			return nil
		},
	},
	{
		id:   4,
		name: "fit_succeeds_and_marks_fitted",
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			if err := est.Fit(ctx.X, ctx.y); err != nil {
				return violation("fit_succeeds_and_marks_fitted",
					"Fit accepts a valid synthetic dataset", "%v", err)
			}
			if !est.IsFitted() {
				return violation("fit_succeeds_and_marks_fitted",
					"Fit transitions the instance to the Fitted state", "IsFitted returned false after Fit")
			}
			return nil
		},
	},
	{
		id:   5,
		name: "fitted_attributes_populated",
		skip: func(ctx *checkContext) bool {
			_, ok := ctx.variant.New().(attrSource)
			return !ok
		},
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			if err := est.Fit(ctx.X, ctx.y); err != nil {
				return violation("fitted_attributes_populated", "Fit accepts a valid synthetic dataset", "%v", err)
			}
			if attrs := est.(attrSource).FittedAttrs(); len(attrs) == 0 {
				return violation("fitted_attributes_populated",
					"Fit computes and stores fitted attributes", "payload is empty after Fit")
			}
			return nil
		},
	},
	{
		id:   6,
		name: "predict_length_matches_samples",
		skip: func(ctx *checkContext) bool {
			_, ok := ctx.variant.New().(model.Predictor)
			return !ok
		},
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			if err := est.Fit(ctx.X, ctx.y); err != nil {
				return violation("predict_length_matches_samples", "Fit accepts a valid synthetic dataset", "%v", err)
			}
			out, err := est.(model.Predictor).Predict(ctx.X)
			if err != nil {
				return violation("predict_length_matches_samples", "Predict succeeds after Fit", "%v", err)
			}
			wantRows, _ := ctx.X.Dims()
			gotRows, gotCols := out.Dims()
			if gotRows != wantRows {
				return violation("predict_length_matches_samples",
					"Predict returns one output row per input sample", "want %d rows, got %d", wantRows, gotRows)
			}
			if gotCols != 1 && !ctx.tags.Bool(tags.MultiOutput) {
				return violation("predict_length_matches_samples",
					"single-output variants return one column", "got %d columns", gotCols)
			}
			return nil
		},
	},
	{
		id:   7,
		name: "predictions_use_training_classes",
		skip: func(ctx *checkContext) bool {
			_, ok := ctx.variant.New().(model.Predictor)
			return !ok || ctx.tags.Bool(tags.MultiOutputOnly)
		},
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			if err := est.Fit(ctx.X, ctx.y); err != nil {
				return violation("predictions_use_training_classes", "Fit accepts a valid synthetic dataset", "%v", err)
			}
			out, err := est.(model.Predictor).Predict(ctx.X)
			if err != nil {
				return violation("predictions_use_training_classes", "Predict succeeds after Fit", "%v", err)
			}
			seen := map[float64]bool{}
			rows, _ := ctx.y.Dims()
			for i := 0; i < rows; i++ {
				seen[ctx.y.At(i, 0)] = true
			}
			outRows, _ := out.Dims()
			for i := 0; i < outRows; i++ {
				if !seen[out.At(i, 0)] {
					return violation("predictions_use_training_classes",
						"every predicted label comes from the training label set", "label %v at row %d", out.At(i, 0), i)
				}
			}
			return nil
		},
	},
	{
		id:   8,
		name: "deterministic_refit",
		skip: func(ctx *checkContext) bool {
			if ctx.tags.Bool(tags.NonDeterministic) {
				return true
			}
			est := ctx.variant.New()
			_, isPredictor := est.(model.Predictor)
			_, isTransformer := est.(model.Transformer)
			return !isPredictor && !isTransformer
		},
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			if err := est.Fit(ctx.X, ctx.y); err != nil {
				return violation("deterministic_refit", "Fit accepts a valid synthetic dataset", "%v", err)
			}
			first, _, err := output(est, ctx.X)
			if err != nil {
				return violation("deterministic_refit", "output succeeds after Fit", "%v", err)
			}
			if err := est.Fit(ctx.X, ctx.y); err != nil {
				return violation("deterministic_refit", "Fit is re-entrant", "%v", err)
			}
			second, _, err := output(est, ctx.X)
			if err != nil {
				return violation("deterministic_refit", "output succeeds after refit", "%v", err)
			}
			if !matEqual(first, second) {
				return violation("deterministic_refit",
					"refitting with identical input reproduces identical output", "outputs differ")
			}
			return nil
		},
	},
	{
		id:   9,
		name: "clone_preserves_params_and_state",
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			clone := est.Clone()
			if clone == nil {
				return violation("clone_preserves_params_and_state", "Clone returns a new instance", "got nil")
			}
			if !reflect.DeepEqual(est.GetParams(), clone.GetParams()) {
				return violation("clone_preserves_params_and_state",
					"clones carry identical parameters", "params differ: %v vs %v", est.GetParams(), clone.GetParams())
			}
			if err := est.Fit(ctx.X, ctx.y); err != nil {
				return violation("clone_preserves_params_and_state", "Fit accepts a valid synthetic dataset", "%v", err)
			}
			if est.Clone().IsFitted() {
				return violation("clone_preserves_params_and_state",
					"clones start Unfitted even when the source is Fitted", "clone reported Fitted")
			}
			return nil
		},
	},
	{
		id:   10,
		name: "sample_count_mismatch_rejected",
		skip: func(ctx *checkContext) bool {
			return ctx.tags.Bool(tags.NoValidation) || ctx.tags.Bool(tags.Stateless)
		},
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			rows, _ := ctx.y.Dims()
			short := mat.DenseCopyOf(ctx.y.Slice(0, rows-1, 0, 1))
			err := est.Fit(ctx.X, short)
			var mismatch *fitkitErrors.ShapeMismatchError
			if err == nil || !fitkitErrors.As(err, &mismatch) {
				// Unsupervised variants ignore labels entirely.
				if err == nil {
					if _, usesLabels := est.(model.Predictor); !usesLabels {
						return nil
					}
				}
				return violation("sample_count_mismatch_rejected",
					"feature/label sample-count mismatch fails with ShapeMismatchError", "got %v", err)
			}
			return nil
		},
	},
	{
		id:   11,
		name: "empty_input_rejected",
		skip: func(ctx *checkContext) bool {
			return ctx.tags.Bool(tags.NoValidation)
		},
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			err := est.Fit(&mat.Dense{}, &mat.Dense{})
			var empty *fitkitErrors.EmptyInputError
			if err == nil || !fitkitErrors.As(err, &empty) {
				return violation("empty_input_rejected",
					"inputs below the minimum sample count fail with EmptyInputError", "got %v", err)
			}
			return nil
		},
	},
	{
		id:   12,
		name: "non_finite_rejected",
		skip: func(ctx *checkContext) bool {
			return ctx.tags.Bool(tags.NoValidation) || ctx.tags.Bool(tags.AllowNaN)
		},
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			err := est.Fit(withNaN(ctx.X), ctx.y)
			var invalid *fitkitErrors.InvalidValueError
			if err == nil || !fitkitErrors.As(err, &invalid) {
				return violation("non_finite_rejected",
					"non-finite values fail with InvalidValueError naming the position", "got %v", err)
			}
			return nil
		},
	},
	{
		id:   13,
		name: "feature_count_mismatch_rejected",
		skip: func(ctx *checkContext) bool {
			return ctx.tags.Bool(tags.NoValidation) || noStateDependentOps(ctx)
		},
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			if err := est.Fit(ctx.X, ctx.y); err != nil {
				return violation("feature_count_mismatch_rejected", "Fit accepts a valid synthetic dataset", "%v", err)
			}
			_, err := stateDependent(est, widen(ctx.X))
			var dim *fitkitErrors.DimensionError
			if err == nil || !fitkitErrors.As(err, &dim) {
				return violation("feature_count_mismatch_rejected",
					"inputs with a different feature count than fit time fail with a dimension error", "got %v", err)
			}
			return nil
		},
	},
	{
		id:   14,
		name: "params_roundtrip",
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			params := est.GetParams()
			if err := est.SetParams(params); err != nil {
				return violation("params_roundtrip", "SetParams accepts the output of GetParams", "%v", err)
			}
			if !reflect.DeepEqual(params, est.GetParams()) {
				return violation("params_roundtrip",
					"setting then reading a parameter returns the exact value set", "round trip altered params")
			}
			err := est.SetParams(map[string]interface{}{"definitely_not_a_parameter": 1})
			var unknown *fitkitErrors.UnknownParameterError
			if err == nil || !fitkitErrors.As(err, &unknown) {
				return violation("params_roundtrip",
					"unknown parameter names fail with UnknownParameterError", "got %v", err)
			}
			return nil
		},
	},
	{
		id:   15,
		name: "score_within_unit_interval",
		skip: func(ctx *checkContext) bool {
			if ctx.tags.Bool(tags.PoorScore) {
				return true
			}
			_, ok := ctx.variant.New().(model.Scorer)
			return !ok
		},
		run: func(ctx *checkContext) error {
			est := ctx.variant.New()
			if err := est.Fit(ctx.X, ctx.y); err != nil {
				return violation("score_within_unit_interval", "Fit accepts a valid synthetic dataset", "%v", err)
			}
			score, err := est.(model.Scorer).Score(ctx.X, ctx.y, nil)
			if err != nil {
				return violation("score_within_unit_interval", "Score succeeds after Fit", "%v", err)
			}
			if score < 0 || score > 1 || math.IsNaN(score) {
				return violation("score_within_unit_interval",
					"Score returns a float in [0, 1]", "got %v", score)
			}
			return nil
		},
	},
}
