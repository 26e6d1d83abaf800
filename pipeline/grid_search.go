package pipeline

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/core/model"
	"github.com/fitkit/fitkit/core/validation"
	"github.com/fitkit/fitkit/pkg/errors"
	"github.com/fitkit/fitkit/pkg/log"
)

// GridSearch fits one clone of a composed estimator per combination of
// candidate parameter values and retains the best-scoring one.
//
// Candidates are enumerated as the cartesian product of the grid's
// value lists, in a deterministic order (paths sorted, last path
// varying fastest). Ties are broken by first-seen order in that
// enumeration. Combinations may be evaluated in parallel; every worker
// operates on its own clone, so no fitted state is shared.
type GridSearch struct {
	state  *model.StateManager
	logger log.Logger

	// Configuration
	estimator model.Estimator
	grid      map[string][]interface{}
	splitter  Splitter
	jobs      int

	// Fitted attributes
	bestScore_     float64
	bestParams_    map[string]interface{}
	bestEstimator_ model.Estimator
	candidates_    int
}

// GridSearchOption is a functional option for GridSearch.
type GridSearchOption func(*GridSearch)

// WithSplitter sets the train/evaluation split strategy.
// The default is Holdout{TestFraction: 0.25}.
func WithSplitter(s Splitter) GridSearchOption {
	return func(g *GridSearch) {
		g.splitter = s
	}
}

// WithJobs sets the number of parallel evaluation workers (default 1).
func WithJobs(n int) GridSearchOption {
	return func(g *GridSearch) {
		g.jobs = n
	}
}

// NewGridSearch creates a GridSearch over estimator with the given
// parameter grid. Grid keys are composed parameter paths; values are
// the candidate lists.
func NewGridSearch(estimator model.Estimator, grid map[string][]interface{}, opts ...GridSearchOption) *GridSearch {
	g := &GridSearch{
		state:     model.NewStateManager(),
		logger:    log.GetLoggerWithName("pipeline.gridsearch"),
		estimator: estimator,
		grid:      grid,
		splitter:  Holdout{TestFraction: 0.25},
		jobs:      1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsFitted returns whether the search has completed a Fit.
func (g *GridSearch) IsFitted() bool {
	return g.state.IsFitted()
}

// Candidates enumerates the cartesian product of the grid in the
// deterministic search order.
func (g *GridSearch) Candidates() ([]map[string]interface{}, error) {
	if len(g.grid) == 0 {
		return nil, errors.NewEmptyGridError("GridSearch")
	}
	paths := make([]string, 0, len(g.grid))
	for path, values := range g.grid {
		if len(values) == 0 {
			return nil, errors.NewEmptyGridError("GridSearch")
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var combos []map[string]interface{}
	current := make(map[string]interface{}, len(paths))
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(paths) {
			combo := make(map[string]interface{}, len(current))
			for k, v := range current {
				combo[k] = v
			}
			combos = append(combos, combo)
			return
		}
		for _, value := range g.grid[paths[depth]] {
			current[paths[depth]] = value
			walk(depth + 1)
		}
	}
	walk(0)
	return combos, nil
}

type searchResult struct {
	score float64
	err   error
}

// Fit enumerates the grid, fits one clone per combination on the train
// split, scores it on the held-out split, then refits the best
// combination on the full data.
func (g *GridSearch) Fit(X, y mat.Matrix) error {
	start := time.Now()

	combos, err := g.Candidates()
	if err != nil {
		return err
	}

	opts := validation.Options{MinSamples: 2, MinFeatures: 1, RequireTwoDim: true, AllowMultiOutput: true}
	data, labels, err := validation.FeaturesAndLabels("GridSearch.Fit", X, y, opts)
	if err != nil {
		return err
	}
	nSamples, _ := data.Dims()

	trainIdx, testIdx, err := g.splitter.Split(nSamples)
	if err != nil {
		return err
	}
	trainX, trainY := takeRows(data, trainIdx), takeRows(labels, trainIdx)
	testX, testY := takeRows(data, testIdx), takeRows(labels, testIdx)

	g.logger.Info("starting grid search",
		log.OperationKey, "search",
		log.CandidatesKey, len(combos),
		log.SamplesKey, nSamples,
		"jobs", g.jobs)

	results := make([]searchResult, len(combos))
	workers := g.jobs
	if workers < 1 {
		workers = 1
	}
	if workers > len(combos) {
		workers = len(combos)
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = g.evaluate(combos[i], trainX, trainY, testX, testY)
			}
		}()
	}
	for i := range combos {
		indices <- i
	}
	close(indices)
	wg.Wait()

	bestIdx := -1
	bestScore := 0.0
	for i, res := range results {
		if res.err != nil {
			continue
		}
		// Strict > keeps the first-seen combination on ties.
		if bestIdx == -1 || res.score > bestScore {
			bestIdx = i
			bestScore = res.score
		}
	}
	if bestIdx == -1 {
		for _, res := range results {
			if res.err != nil {
				return errors.Wrap(res.err, "all grid candidates failed")
			}
		}
		return errors.New("grid search produced no results")
	}

	best := g.estimator.Clone()
	if err := best.SetParams(combos[bestIdx]); err != nil {
		return err
	}
	if err := best.Fit(data, labels); err != nil {
		return errors.Wrap(err, "failed to refit best candidate")
	}

	g.bestScore_ = bestScore
	g.bestParams_ = combos[bestIdx]
	g.bestEstimator_ = best
	g.candidates_ = len(combos)
	g.state.SetFittedAttrs(map[string]interface{}{
		"best_score_":  bestScore,
		"best_params_": combos[bestIdx],
		"n_candidates": len(combos),
	})

	g.logger.Info("grid search complete",
		log.ScoreKey, bestScore,
		log.DurationMsKey, time.Since(start).Milliseconds())
	return nil
}

// evaluate fits and scores one candidate on an independent clone.
func (g *GridSearch) evaluate(params map[string]interface{}, trainX, trainY, testX, testY *mat.Dense) searchResult {
	clone := g.estimator.Clone()
	if err := clone.SetParams(params); err != nil {
		return searchResult{err: err}
	}
	if err := clone.Fit(trainX, trainY); err != nil {
		return searchResult{err: err}
	}
	scorer, ok := clone.(model.Scorer)
	if !ok {
		return searchResult{err: errors.NewUnsupportedOperationError("GridSearch", "Score")}
	}
	score, err := scorer.Score(testX, testY, nil)
	if err != nil {
		return searchResult{err: err}
	}
	return searchResult{score: score}
}

// Predict delegates to the best estimator found by Fit.
func (g *GridSearch) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := model.RequireFitted("GridSearch", "Predict", g.state, "best_params_"); err != nil {
		return nil, err
	}
	predictor, ok := g.bestEstimator_.(model.Predictor)
	if !ok {
		return nil, errors.NewUnsupportedOperationError("GridSearch.Predict", "Predict")
	}
	return predictor.Predict(X)
}

// Score delegates to the best estimator found by Fit.
func (g *GridSearch) Score(X, y mat.Matrix, sampleWeight []float64) (float64, error) {
	if err := model.RequireFitted("GridSearch", "Score", g.state, "best_params_"); err != nil {
		return 0, err
	}
	scorer, ok := g.bestEstimator_.(model.Scorer)
	if !ok {
		return 0, errors.NewUnsupportedOperationError("GridSearch.Score", "Score")
	}
	return scorer.Score(X, y, sampleWeight)
}

// BestScore returns the held-out score of the winning combination.
func (g *GridSearch) BestScore() float64 { return g.bestScore_ }

// BestParams returns the winning parameter combination.
func (g *GridSearch) BestParams() map[string]interface{} {
	out := make(map[string]interface{}, len(g.bestParams_))
	for k, v := range g.bestParams_ {
		out[k] = v
	}
	return out
}

// BestEstimator returns the winning estimator refitted on the full data.
func (g *GridSearch) BestEstimator() model.Estimator { return g.bestEstimator_ }

// GetParams returns the search's own parameters.
func (g *GridSearch) GetParams() map[string]interface{} {
	return map[string]interface{}{"jobs": g.jobs}
}

// SetParams sets the search's own parameters. Unknown keys fail with an
// UnknownParameterError.
func (g *GridSearch) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "jobs":
			n, ok := value.(int)
			if !ok {
				return errors.NewValueError("GridSearch.SetParams", "jobs must be an int")
			}
			g.jobs = n
		default:
			return errors.NewUnknownParameterError("GridSearch.SetParams", key)
		}
	}
	return nil
}

// Clone returns an unfitted copy of the search with a cloned prototype
// and the same grid and split strategy.
func (g *GridSearch) Clone() model.Estimator {
	grid := make(map[string][]interface{}, len(g.grid))
	for k, v := range g.grid {
		grid[k] = append([]interface{}(nil), v...)
	}
	return NewGridSearch(g.estimator.Clone(), grid, WithSplitter(g.splitter), WithJobs(g.jobs))
}

// takeRows copies the given rows of m into a new dense matrix.
func takeRows(m *mat.Dense, rows []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, row := range rows {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(row, j))
		}
	}
	return out
}
