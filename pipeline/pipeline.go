// Package pipeline implements the meta-estimator composers: Pipeline
// chains named estimators so each step's transform output feeds the
// next step, and GridSearch enumerates candidate parameter combinations
// over any composed estimator.
//
// Composed parameters are addressed as "<step>.<param>", case-sensitive
// and exact-match: setting a path that does not name a declared step
// and parameter fails with an UnknownParameterError.
package pipeline

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/core/model"
	"github.com/fitkit/fitkit/core/tags"
	"github.com/fitkit/fitkit/pkg/errors"
	"github.com/fitkit/fitkit/pkg/log"
)

// ParamSeparator separates step name from parameter name in composed
// parameter paths.
const ParamSeparator = "."

// Step is a named estimator inside a Pipeline.
type Step struct {
	Name      string
	Estimator model.Estimator
}

// Pipeline chains transformers and a final estimator. Intermediate
// steps must expose Transform; only the final step serves Predict and
// Score. Pipeline itself satisfies the estimator contract, so it nests
// inside other composers.
type Pipeline struct {
	state  *model.StateManager
	logger log.Logger

	steps []Step
	named map[string]model.Estimator
}

// New creates a Pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	named := make(map[string]model.Estimator, len(steps))
	for _, step := range steps {
		named[step.Name] = step.Estimator
	}
	return &Pipeline{
		state:  model.NewStateManager(),
		logger: log.GetLoggerWithName("pipeline"),
		steps:  steps,
		named:  named,
	}
}

// Make creates a Pipeline with generated step names step1, step2, ...
func Make(estimators ...model.Estimator) *Pipeline {
	steps := make([]Step, len(estimators))
	for i, est := range estimators {
		steps[i] = Step{Name: fmt.Sprintf("step%d", i+1), Estimator: est}
	}
	return New(steps...)
}

// IsFitted returns whether the pipeline has been fitted.
func (p *Pipeline) IsFitted() bool {
	return p.state.IsFitted()
}

// Steps returns a copy of the step list.
func (p *Pipeline) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// NamedSteps returns the steps keyed by name.
func (p *Pipeline) NamedSteps() map[string]model.Estimator {
	out := make(map[string]model.Estimator, len(p.named))
	for k, v := range p.named {
		out[k] = v
	}
	return out
}

// checkSteps verifies the structural contract: unique names without the
// separator, transform-capable intermediate steps.
func (p *Pipeline) checkSteps(op string) error {
	if len(p.steps) == 0 {
		return errors.NewValueError(op, "pipeline has no steps")
	}
	seen := map[string]bool{}
	for i, step := range p.steps {
		if step.Name == "" || strings.Contains(step.Name, ParamSeparator) {
			return errors.NewValueError(op, fmt.Sprintf("invalid step name %q", step.Name))
		}
		if seen[step.Name] {
			return errors.NewValueError(op, fmt.Sprintf("duplicate step name %q", step.Name))
		}
		seen[step.Name] = true
		if i < len(p.steps)-1 {
			if _, ok := step.Estimator.(model.Transformer); !ok {
				return errors.NewUnsupportedOperationError(
					fmt.Sprintf("%s: step %q", op, step.Name), "Transform")
			}
		}
	}
	return nil
}

// Fit fits each transformer on the running data, transforms it forward,
// then fits the final estimator on the transformed output.
func (p *Pipeline) Fit(X, y mat.Matrix) error {
	if err := p.checkSteps("Pipeline.Fit"); err != nil {
		return err
	}

	Xt := X
	for i := 0; i < len(p.steps)-1; i++ {
		step := p.steps[i]
		transformer := step.Estimator.(model.Transformer)

		stepTags, err := tags.For(step.Estimator)
		if err != nil {
			return err
		}
		if !stepTags.Bool(tags.Stateless) {
			if err := step.Estimator.Fit(Xt, y); err != nil {
				return errors.Wrapf(err, "failed to fit step %q", step.Name)
			}
		}

		Xt, err = transformer.Transform(Xt)
		if err != nil {
			return errors.Wrapf(err, "failed to transform at step %q", step.Name)
		}
	}

	final := p.steps[len(p.steps)-1]
	if err := final.Estimator.Fit(Xt, y); err != nil {
		return errors.Wrapf(err, "failed to fit final step %q", final.Name)
	}

	r, c := X.Dims()
	p.logger.Debug("pipeline fitted",
		log.OperationKey, "fit",
		log.SamplesKey, r,
		log.FeaturesKey, c,
		"steps", len(p.steps))

	p.state.SetFittedAttrs(map[string]interface{}{"n_steps_": len(p.steps)})
	return nil
}

// transformUpTo applies all transforms before the final step.
func (p *Pipeline) transformUpTo(X mat.Matrix) (mat.Matrix, error) {
	Xt := X
	var err error
	for i := 0; i < len(p.steps)-1; i++ {
		step := p.steps[i]
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.NewUnsupportedOperationError(
				fmt.Sprintf("Pipeline: step %q", step.Name), "Transform")
		}
		Xt, err = transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to transform at step %q", step.Name)
		}
	}
	return Xt, nil
}

// Predict transforms X through the intermediate steps and predicts with
// the final estimator.
func (p *Pipeline) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := model.RequireFitted("Pipeline", "Predict", p.state); err != nil {
		return nil, err
	}

	Xt, err := p.transformUpTo(X)
	if err != nil {
		return nil, err
	}

	final := p.steps[len(p.steps)-1]
	predictor, ok := final.Estimator.(model.Predictor)
	if !ok {
		return nil, errors.NewUnsupportedOperationError(
			fmt.Sprintf("Pipeline: final step %q", final.Name), "Predict")
	}
	return predictor.Predict(Xt)
}

// Transform applies every step's transform, valid only when the final
// step is itself a transformer.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := model.RequireFitted("Pipeline", "Transform", p.state); err != nil {
		return nil, err
	}

	Xt := X
	var err error
	for _, step := range p.steps {
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.NewUnsupportedOperationError(
				fmt.Sprintf("Pipeline: step %q", step.Name), "Transform")
		}
		Xt, err = transformer.Transform(Xt)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to transform at step %q", step.Name)
		}
	}
	return Xt, nil
}

// Score transforms X and scores with the final estimator.
func (p *Pipeline) Score(X, y mat.Matrix, sampleWeight []float64) (float64, error) {
	if err := model.RequireFitted("Pipeline", "Score", p.state); err != nil {
		return 0, err
	}

	Xt, err := p.transformUpTo(X)
	if err != nil {
		return 0, err
	}

	final := p.steps[len(p.steps)-1]
	scorer, ok := final.Estimator.(model.Scorer)
	if !ok {
		return 0, errors.NewUnsupportedOperationError(
			fmt.Sprintf("Pipeline: final step %q", final.Name), "Score")
	}
	return scorer.Score(Xt, y, sampleWeight)
}

// GetParams returns the composed parameters of every step, keyed as
// "<step>.<param>".
func (p *Pipeline) GetParams() map[string]interface{} {
	params := make(map[string]interface{})
	for _, step := range p.steps {
		for key, value := range step.Estimator.GetParams() {
			params[step.Name+ParamSeparator+key] = value
		}
	}
	return params
}

// SetParams routes composed parameters to their steps. Every key must
// be "<step>.<param>" naming a declared step and a parameter that step
// recognizes; anything else fails with an UnknownParameterError.
func (p *Pipeline) SetParams(params map[string]interface{}) error {
	for path, value := range params {
		name, param, ok := strings.Cut(path, ParamSeparator)
		if !ok {
			return errors.NewUnknownParameterError("Pipeline.SetParams", path)
		}
		step, declared := p.named[name]
		if !declared {
			return errors.NewUnknownParameterError("Pipeline.SetParams", path)
		}
		if err := step.SetParams(map[string]interface{}{param: value}); err != nil {
			var unknown *errors.UnknownParameterError
			if errors.As(err, &unknown) {
				return errors.NewUnknownParameterError("Pipeline.SetParams", path)
			}
			return err
		}
	}
	return nil
}

// Clone returns an unfitted copy of the pipeline with every step cloned.
func (p *Pipeline) Clone() model.Estimator {
	steps := make([]Step, len(p.steps))
	for i, step := range p.steps {
		steps[i] = Step{Name: step.Name, Estimator: step.Estimator.Clone()}
	}
	return New(steps...)
}
