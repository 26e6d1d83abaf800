// Package model provides the core estimator contract for fitkit: the
// fitted-state machine, the guard that gates state-dependent operations,
// and the interfaces every estimator variant composes against.
//
// The lifecycle is an explicit two-state machine rather than attribute
// probing. An estimator is constructed Unfitted with parameters only;
// Fit computes fitted attributes and installs them atomically via
// SetFittedAttrs, which is the only Unfitted -> Fitted transition; a
// later Fit replaces the whole payload. There is no Fitted -> Unfitted
// transition short of constructing a new instance.
//
// Example usage:
//
//	type MyModel struct {
//		state *model.StateManager
//		// parameters
//	}
//
//	func (m *MyModel) Fit(X, y mat.Matrix) error {
//		// training logic computing coef
//		m.state.SetFittedAttrs(map[string]interface{}{"coef_": coef})
//		return nil
//	}
//
//	func (m *MyModel) Predict(X mat.Matrix) (mat.Matrix, error) {
//		if err := model.RequireFitted("MyModel", "Predict", m.state, "coef_"); err != nil {
//			return nil, err
//		}
//		...
//	}
package model

import (
	"github.com/fitkit/fitkit/pkg/errors"
)

// EstimatorState represents the learning state of an estimator.
type EstimatorState int

const (
	// NotFitted indicates the estimator has not been trained.
	NotFitted EstimatorState = iota
	// Fitted indicates the estimator has been trained.
	Fitted
)

// StateManager tracks the fitted state of an estimator together with
// the payload of fitted attributes computed by Fit. Estimators embed or
// compose it; it is not safe for concurrent mutation, matching the
// single-owner model of estimator instances.
type StateManager struct {
	state EstimatorState
	attrs map[string]interface{}
}

// NewStateManager creates a StateManager in the NotFitted state.
func NewStateManager() *StateManager {
	return &StateManager{state: NotFitted}
}

// IsFitted returns whether the estimator has been fitted.
func (s *StateManager) IsFitted() bool {
	return s.state == Fitted
}

// SetFittedAttrs installs the fitted-attribute payload and transitions
// to the Fitted state. Called only from inside Fit, after every fitted
// attribute has been computed. On refit the previous payload is
// discarded entirely.
func (s *StateManager) SetFittedAttrs(attrs map[string]interface{}) {
	copied := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	s.attrs = copied
	s.state = Fitted
}

// SetFitted transitions to the Fitted state with an empty attribute
// payload. Prefer SetFittedAttrs; this exists for estimators whose
// fitted state lives entirely in private working fields.
func (s *StateManager) SetFitted() {
	if s.attrs == nil {
		s.attrs = map[string]interface{}{}
	}
	s.state = Fitted
}

// Reset returns the estimator to its initial untrained state.
func (s *StateManager) Reset() {
	s.state = NotFitted
	s.attrs = nil
}

// FittedAttrs returns a read-only copy of the fitted-attribute payload.
// It is empty before the first Fit.
func (s *StateManager) FittedAttrs() map[string]interface{} {
	out := make(map[string]interface{}, len(s.attrs))
	for k, v := range s.attrs {
		out[k] = v
	}
	return out
}

// HasAttr reports whether a fitted attribute is present.
func (s *StateManager) HasAttr(name string) bool {
	_, ok := s.attrs[name]
	return ok
}

// RequireFitted fails with a NotFittedError unless s is Fitted and
// every expected fitted attribute is present. Call it at the start of
// every state-dependent operation.
func RequireFitted(modelName, method string, s *StateManager, expected ...string) error {
	if s == nil || !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	for _, name := range expected {
		if !s.HasAttr(name) {
			return errors.NewNotFittedError(modelName, method)
		}
	}
	return nil
}
