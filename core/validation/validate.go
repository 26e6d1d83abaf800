// Package validation normalizes raw feature and label containers into
// the canonical dense form used by every estimator.
//
// Validation is a pure transformation: caller-owned data is never
// mutated, and the returned matrices never alias the input. Every
// failure is one of the typed input errors from pkg/errors, so callers
// can dispatch on the cause with errors.As.
package validation

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/core/tensor"
	"github.com/fitkit/fitkit/pkg/errors"
)

// Options configures a validation pass.
type Options struct {
	// AcceptSparse permits *tensor.CSR inputs, which are densified into
	// the canonical form. Without it sparse input is rejected.
	AcceptSparse bool

	// EnsureNumeric attempts numeric coercion of string containers,
	// failing with a ConversionError when a cell does not parse.
	EnsureNumeric bool

	// RequireFinite rejects NaN and infinite values, naming the
	// offending position.
	RequireFinite bool

	// MinSamples and MinFeatures are the smallest accepted axis sizes.
	MinSamples  int
	MinFeatures int

	// RequireTwoDim rejects rank-1 containers instead of reshaping them.
	RequireTwoDim bool

	// AllowMultiOutput permits labels with more than one column.
	AllowMultiOutput bool
}

// FeatureDefaults returns the option set most estimators validate
// features with.
func FeatureDefaults() Options {
	return Options{
		EnsureNumeric: true,
		RequireFinite: true,
		MinSamples:    1,
		MinFeatures:   1,
		RequireTwoDim: true,
	}
}

// Features validates a raw feature container and returns its canonical
// dense form. op names the calling operation for error messages.
func Features(op string, X interface{}, opts Options) (*mat.Dense, error) {
	dense, err := toDense(op, X, opts)
	if err != nil {
		return nil, err
	}
	r, c := dense.Dims()
	if r < opts.MinSamples {
		return nil, errors.NewEmptyInputError(op, "samples", r, opts.MinSamples)
	}
	if c < opts.MinFeatures {
		return nil, errors.NewEmptyInputError(op, "features", c, opts.MinFeatures)
	}
	if opts.RequireFinite {
		if err := checkFinite(op, dense); err != nil {
			return nil, err
		}
	}
	return dense, nil
}

// FeaturesAndLabels validates features and labels together, enforcing
// that their sample counts agree.
func FeaturesAndLabels(op string, X, y interface{}, opts Options) (*mat.Dense, *mat.Dense, error) {
	xDense, err := Features(op, X, opts)
	if err != nil {
		return nil, nil, err
	}

	labelOpts := opts
	labelOpts.RequireTwoDim = false
	labelOpts.MinFeatures = 1
	yDense, err := toDense(op, y, labelOpts)
	if err != nil {
		return nil, nil, err
	}

	xRows, _ := xDense.Dims()
	yRows, yCols := yDense.Dims()
	if xRows != yRows {
		return nil, nil, errors.NewShapeMismatchError(op, xRows, yRows)
	}
	if yCols > 1 && !opts.AllowMultiOutput {
		return nil, nil, errors.NewDimensionError(op, 1, yCols, 1)
	}
	if opts.RequireFinite {
		if err := checkFinite(op, yDense); err != nil {
			return nil, nil, err
		}
	}
	return xDense, yDense, nil
}

// toDense converts any accepted raw container into a fresh dense matrix.
// Rank violations use a DimensionError with Axis -1.
func toDense(op string, raw interface{}, opts Options) (*mat.Dense, error) {
	switch v := raw.(type) {
	case nil:
		return nil, errors.NewConversionError(op, "input is nil")
	case *tensor.CSR:
		if !opts.AcceptSparse {
			return nil, errors.NewConversionError(op, "sparse layout not accepted by this operation")
		}
		return v.ToDense(), nil
	case *mat.Dense:
		return denseFromMatrix(op, v)
	case *mat.VecDense:
		n := v.Len()
		if n == 0 {
			return nil, errors.NewEmptyInputError(op, "samples", 0, 1)
		}
		out := mat.NewDense(n, 1, nil)
		for i := 0; i < n; i++ {
			out.Set(i, 0, v.AtVec(i))
		}
		return out, nil
	case mat.Matrix:
		return denseFromMatrix(op, v)
	case []float64:
		if opts.RequireTwoDim {
			return nil, errors.NewDimensionError(op, 2, 1, -1)
		}
		out := mat.NewDense(len(v), 1, nil)
		for i, x := range v {
			out.Set(i, 0, x)
		}
		return out, nil
	case [][]float64:
		return rowsToDense(op, len(v), func(i int) int { return len(v[i]) }, func(i, j int) (float64, error) {
			return v[i][j], nil
		})
	case [][]int:
		return rowsToDense(op, len(v), func(i int) int { return len(v[i]) }, func(i, j int) (float64, error) {
			return float64(v[i][j]), nil
		})
	case [][]string:
		if !opts.EnsureNumeric {
			return nil, errors.NewConversionError(op, "string input requires numeric coercion")
		}
		return rowsToDense(op, len(v), func(i int) int { return len(v[i]) }, func(i, j int) (float64, error) {
			f, err := strconv.ParseFloat(v[i][j], 64)
			if err != nil {
				return 0, errors.NewConversionError(op, fmt.Sprintf("value %q at (%d, %d) is not numeric", v[i][j], i, j))
			}
			return f, nil
		})
	default:
		return nil, errors.NewConversionError(op, fmt.Sprintf("unsupported container type %T", raw))
	}
}

// denseFromMatrix copies a gonum matrix, rejecting zero-sized inputs
// before CloneFrom can observe them.
func denseFromMatrix(op string, m mat.Matrix) (*mat.Dense, error) {
	r, c := m.Dims()
	if r == 0 {
		return nil, errors.NewEmptyInputError(op, "samples", 0, 1)
	}
	if c == 0 {
		return nil, errors.NewEmptyInputError(op, "features", 0, 1)
	}
	return tensor.DenseCopy(m), nil
}

func rowsToDense(op string, rows int, width func(int) int, at func(int, int) (float64, error)) (*mat.Dense, error) {
	if rows == 0 {
		return nil, errors.NewEmptyInputError(op, "samples", 0, 1)
	}
	cols := width(0)
	if cols == 0 {
		return nil, errors.NewEmptyInputError(op, "features", 0, 1)
	}
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		if width(i) != cols {
			// Ragged container.
			return nil, errors.NewDimensionError(op, cols, width(i), 1)
		}
		for j := 0; j < cols; j++ {
			f, err := at(i, j)
			if err != nil {
				return nil, err
			}
			out.Set(i, j, f)
		}
	}
	return out, nil
}

func checkFinite(op string, m *mat.Dense) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewInvalidValueError(op, i, j, v)
			}
		}
	}
	return nil
}

// Weights validates per-sample weights against the sample count.
// nil weights are accepted and returned as nil. Weights must be
// finite and non-negative.
func Weights(op string, weights []float64, nSamples int) ([]float64, error) {
	if weights == nil {
		return nil, nil
	}
	if len(weights) != nSamples {
		return nil, errors.NewShapeMismatchError(op, nSamples, len(weights))
	}
	out := make([]float64, len(weights))
	copy(out, weights)
	for i, w := range out {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, errors.NewInvalidValueError(op, i, 0, w)
		}
	}
	return out, nil
}
