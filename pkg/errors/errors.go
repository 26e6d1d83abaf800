// Package errors defines the typed error taxonomy shared by all fitkit
// packages, built on top of cockroachdb/errors so that every error carries
// a stack trace and composes with errors.Is / errors.As.
//
// The taxonomy mirrors the estimator contract:
//
//   - Input errors (ShapeMismatchError, EmptyInputError, DimensionError,
//     ConversionError, InvalidValueError) are raised by input validation
//     and always propagate to the caller.
//   - State errors (NotFittedError) are raised by the fitted-state guard.
//   - Configuration errors (UnknownTagError, UnknownParameterError,
//     EmptyGridError, UnsupportedOperationError) are raised at
//     composition time.
//   - FitError wraps a variant-internal failure during Fit.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for common failure causes.
var (
	// ErrEmptyData indicates that an operation received data with no
	// samples or no features.
	ErrEmptyData = errors.New("empty data")

	// ErrNotImplemented indicates an optional capability that the
	// estimator variant does not provide.
	ErrNotImplemented = errors.New("not implemented")
)

// NotFittedError is returned when a state-dependent operation (Predict,
// Transform, Score, DecisionFunction) is called before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("fitkit: %s.%s: estimator is not fitted yet; call Fit first", e.ModelName, e.Method)
}

// NewNotFittedError creates a NotFittedError for the given model and method.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// ShapeMismatchError is returned when two aligned containers disagree on
// their sample count, e.g. features vs labels or samples vs weights.
type ShapeMismatchError struct {
	Op       string
	Expected int
	Got      int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("fitkit: %s: sample count mismatch: expected %d, got %d", e.Op, e.Expected, e.Got)
}

// NewShapeMismatchError creates a ShapeMismatchError.
func NewShapeMismatchError(op string, expected, got int) error {
	return errors.WithStack(&ShapeMismatchError{Op: op, Expected: expected, Got: got})
}

// DimensionError is returned when an input violates a rank or per-axis
// size constraint. Axis 0 is samples, axis 1 is features.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("fitkit: %s: dimension mismatch on axis %d: expected %d, got %d", e.Op, e.Axis, e.Expected, e.Got)
}

// NewDimensionError creates a DimensionError.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// EmptyInputError is returned when an input falls below a required
// minimum sample or feature count. Kind is "samples" or "features".
type EmptyInputError struct {
	Op      string
	Kind    string
	Got     int
	Minimum int
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("fitkit: %s: got %d %s, need at least %d", e.Op, e.Got, e.Kind, e.Minimum)
}

func (e *EmptyInputError) Unwrap() error { return ErrEmptyData }

// NewEmptyInputError creates an EmptyInputError.
func NewEmptyInputError(op, kind string, got, minimum int) error {
	return errors.WithStack(&EmptyInputError{Op: op, Kind: kind, Got: got, Minimum: minimum})
}

// ConversionError is returned when a raw input container cannot be
// coerced into the canonical numeric form.
type ConversionError struct {
	Op     string
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("fitkit: %s: cannot convert input to numeric array: %s", e.Op, e.Reason)
}

// NewConversionError creates a ConversionError.
func NewConversionError(op, reason string) error {
	return errors.WithStack(&ConversionError{Op: op, Reason: reason})
}

// InvalidValueError is returned when validation finds a non-finite or
// otherwise forbidden value, naming the offending position.
type InvalidValueError struct {
	Op    string
	Row   int
	Col   int
	Value float64
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("fitkit: %s: invalid value %v at position (%d, %d)", e.Op, e.Value, e.Row, e.Col)
}

// NewInvalidValueError creates an InvalidValueError.
func NewInvalidValueError(op string, row, col int, value float64) error {
	return errors.WithStack(&InvalidValueError{Op: op, Row: row, Col: col, Value: value})
}

// ValueError is a generic invalid-argument error carrying the operation
// that rejected the value.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("fitkit: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// UnknownTagError is returned when an estimator declares a capability
// tag that is not part of the documented default set.
type UnknownTagError struct {
	Tag string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("fitkit: unknown capability tag %q", e.Tag)
}

// NewUnknownTagError creates an UnknownTagError.
func NewUnknownTagError(tag string) error {
	return errors.WithStack(&UnknownTagError{Tag: tag})
}

// UnknownParameterError is returned when a composed parameter path does
// not resolve to exactly one declared step and parameter.
type UnknownParameterError struct {
	Op   string
	Path string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("fitkit: %s: unknown parameter %q", e.Op, e.Path)
}

// NewUnknownParameterError creates an UnknownParameterError.
func NewUnknownParameterError(op, path string) error {
	return errors.WithStack(&UnknownParameterError{Op: op, Path: path})
}

// EmptyGridError is returned when a grid search is given no candidate
// parameter values.
type EmptyGridError struct {
	Op string
}

func (e *EmptyGridError) Error() string {
	return fmt.Sprintf("fitkit: %s: parameter grid is empty", e.Op)
}

// NewEmptyGridError creates an EmptyGridError.
func NewEmptyGridError(op string) error {
	return errors.WithStack(&EmptyGridError{Op: op})
}

// UnsupportedOperationError is returned when a composed step does not
// expose a capability the composer requires, e.g. a pipeline step
// without Transform.
type UnsupportedOperationError struct {
	Op       string
	Required string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("fitkit: %s: required capability %q is not supported", e.Op, e.Required)
}

// NewUnsupportedOperationError creates an UnsupportedOperationError.
func NewUnsupportedOperationError(op, required string) error {
	return errors.WithStack(&UnsupportedOperationError{Op: op, Required: required})
}

// FitError wraps a variant-internal failure during Fit.
type FitError struct {
	ModelName string
	Reason    string
	cause     error
}

func (e *FitError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("fitkit: %s: fit failed: %s: %v", e.ModelName, e.Reason, e.cause)
	}
	return fmt.Sprintf("fitkit: %s: fit failed: %s", e.ModelName, e.Reason)
}

func (e *FitError) Unwrap() error { return e.cause }

// NewFitError creates a FitError wrapping cause, which may be nil.
func NewFitError(modelName, reason string, cause error) error {
	return errors.WithStack(&FitError{ModelName: modelName, Reason: reason, cause: cause})
}
