package errors

import (
	"github.com/cockroachdb/errors"
)

// New creates a new error with a stack trace.
func New(msg string) error {
	return errors.New(msg)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// Wrap annotates err with a message, preserving the original chain.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Recover converts a panic in the surrounding function into an error,
// annotated with the operation name. Use in a deferred call:
//
//	func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
//		defer errors.Recover(&err, "StandardScaler.Fit")
//		...
//	}
func Recover(err *error, op string) {
	if r := recover(); r != nil {
		switch v := r.(type) {
		case error:
			*err = errors.Wrapf(v, "fitkit: %s: panic recovered", op)
		default:
			*err = errors.Newf("fitkit: %s: panic recovered: %v", op, v)
		}
	}
}
