// Package tags implements the capability tag registry: a declarative,
// data-driven description of each estimator variant's behavior, consumed
// by composers (to decide what they may assume) and by the compatibility
// harness (to decide which checks apply).
//
// Tags are a documented default set merged with per-variant overrides.
// They are read-only after construction and must accurately describe
// runtime behavior; the harness treats them as ground truth.
package tags

import (
	"github.com/fitkit/fitkit/pkg/errors"
)

// Set maps tag names to boolean or enumerated values.
type Set map[string]interface{}

// Tag names in the default set.
const (
	// NonDeterministic marks variants whose output is not reproducible
	// across identical fits.
	NonDeterministic = "non_deterministic"
	// RequiresPositiveX marks variants that only accept positive features.
	RequiresPositiveX = "requires_positive_X"
	// RequiresPositiveY marks variants that only accept positive labels.
	RequiresPositiveY = "requires_positive_y"
	// XTypes enumerates the accepted input shapes, e.g. ["2darray", "sparse"].
	XTypes = "X_types"
	// PoorScore marks variants not expected to beat chance on synthetic data.
	PoorScore = "poor_score"
	// NoValidation marks variants that skip input validation entirely.
	NoValidation = "no_validation"
	// MultiOutput marks variants supporting multi-column labels.
	MultiOutput = "multioutput"
	// AllowNaN marks variants tolerating non-finite feature values.
	AllowNaN = "allow_nan"
	// Stateless marks transformers with no fitted state.
	Stateless = "stateless"
	// MultiLabel marks variants supporting multi-label classification.
	MultiLabel = "multilabel"
	// SkipTest excludes the variant from the compatibility harness.
	SkipTest = "_skip_test"
	// MultiOutputOnly marks variants that require multi-column labels.
	MultiOutputOnly = "multioutput_only"
	// BinaryOnly marks classifiers restricted to two classes.
	BinaryOnly = "binary_only"
	// RequiresFit marks variants whose operations require a prior Fit.
	RequiresFit = "requires_fit"
)

// Defaults returns the documented default tag set. Variants override
// individual entries via the Tagged interface.
func Defaults() Set {
	return Set{
		NonDeterministic:  false,
		RequiresPositiveX: false,
		RequiresPositiveY: false,
		XTypes:            []string{"2darray"},
		PoorScore:         false,
		NoValidation:      false,
		MultiOutput:       false,
		AllowNaN:          false,
		Stateless:         false,
		MultiLabel:        false,
		SkipTest:          false,
		MultiOutputOnly:   false,
		BinaryOnly:        false,
		RequiresFit:       true,
	}
}

// Tagged is implemented by estimator variants that override default
// tags. Variants without overrides need not implement it.
type Tagged interface {
	Tags() Set
}

// For computes the effective tag set for an estimator variant: the
// defaults merged with the variant's declared overrides. Overrides win
// on key collision; an override key outside the default set fails with
// an UnknownTagError. The returned set is a fresh map.
func For(estimator interface{}) (Set, error) {
	merged := Defaults()
	tagged, ok := estimator.(Tagged)
	if !ok {
		return merged, nil
	}
	for key, value := range tagged.Tags() {
		if _, known := merged[key]; !known {
			return nil, errors.NewUnknownTagError(key)
		}
		merged[key] = value
	}
	return merged, nil
}

// Bool reads a boolean tag, returning false for absent or non-boolean
// values.
func (s Set) Bool(name string) bool {
	v, ok := s[name].(bool)
	return ok && v
}
