// Package harness runs any estimator variant against a fixed battery of
// structural compatibility checks derived from the estimator contract.
//
// The harness takes a variant, not an instance: a zero-argument
// constructor it can call as often as it needs. It synthesizes small
// datasets, consults the variant's capability tags to decide which
// checks apply, and aggregates every result into a report. All
// non-skipped checks run even after individual failures.
package harness

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/fitkit/fitkit/core/model"
	"github.com/fitkit/fitkit/core/tags"
	"github.com/fitkit/fitkit/datasets"
	"github.com/fitkit/fitkit/pkg/log"
)

// Variant is a zero-argument constructible estimator type under test.
type Variant struct {
	Name string
	New  func() model.Estimator
}

// Status is the outcome of a single check.
type Status int

const (
	// Passed means the check ran and the contract held.
	Passed Status = iota
	// Failed means the check ran and found a ComplianceViolation.
	Failed
	// Skipped means the variant's tags exempt it from the check.
	Skipped
)

func (s Status) String() string {
	switch s {
	case Passed:
		return "pass"
	case Failed:
		return "FAIL"
	case Skipped:
		return "skip"
	default:
		return "unknown"
	}
}

// CheckResult records the outcome of one numbered check.
type CheckResult struct {
	ID     int
	Name   string
	Status Status
	Err    error
}

// Report aggregates the per-check results for one variant.
type Report struct {
	Variant string
	Results []CheckResult
}

// Failed returns the checks that found violations.
func (r Report) Failed() []CheckResult {
	var out []CheckResult
	for _, res := range r.Results {
		if res.Status == Failed {
			out = append(out, res)
		}
	}
	return out
}

// Passed reports whether every non-skipped check passed.
func (r Report) Passed() bool {
	return len(r.Failed()) == 0
}

// String renders the report, one line per check.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "compatibility report for %s\n", r.Variant)
	for _, res := range r.Results {
		fmt.Fprintf(&b, "  [%2d] %-34s %s", res.ID, res.Name, res.Status)
		if res.Err != nil {
			fmt.Fprintf(&b, "  (%v)", res.Err)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// checkContext carries the variant, its effective tags and the
// synthesized dataset through the battery.
type checkContext struct {
	variant Variant
	tags    tags.Set
	X       *mat.Dense
	y       *mat.Dense
}

// check is a single numbered battery entry. skip consults the tags;
// run returns nil on pass and a *ComplianceViolation on failure.
type check struct {
	id   int
	name string
	skip func(*checkContext) bool
	run  func(*checkContext) error
}

// Run executes the full battery against the variant and returns the
// aggregated report.
func Run(v Variant) Report {
	logger := log.GetLoggerWithName("harness")
	report := Report{Variant: v.Name}

	effective, err := tags.For(v.New())
	if err != nil {
		report.Results = append(report.Results, CheckResult{
			ID:     0,
			Name:   "valid_capability_tags",
			Status: Failed,
			Err:    violation("valid_capability_tags", "tag overrides must use known keys", "%v", err),
		})
		return report
	}

	ctx := &checkContext{variant: v, tags: effective}
	ctx.X, ctx.y, err = datasets.MakeClassification(40, 4, 7)
	if err != nil {
		report.Results = append(report.Results, CheckResult{
			ID:     0,
			Name:   "synthesize_dataset",
			Status: Failed,
			Err:    violation("synthesize_dataset", "the harness dataset must be constructible", "%v", err),
		})
		return report
	}
	if effective.Bool(tags.RequiresPositiveX) {
		shiftPositive(ctx.X)
	}

	skipAll := effective.Bool(tags.SkipTest)
	for _, c := range battery {
		result := CheckResult{ID: c.id, Name: c.name}
		switch {
		case skipAll || (c.skip != nil && c.skip(ctx)):
			result.Status = Skipped
		default:
			if err := c.run(ctx); err != nil {
				result.Status = Failed
				result.Err = err
			} else {
				result.Status = Passed
			}
		}
		report.Results = append(report.Results, result)
	}

	logger.Info("battery complete",
		"variant", v.Name,
		"checks", len(report.Results),
		"failed", len(report.Failed()))
	return report
}

// RunAll runs the battery over several variants.
func RunAll(variants ...Variant) []Report {
	reports := make([]Report, 0, len(variants))
	for _, v := range variants {
		reports = append(reports, Run(v))
	}
	return reports
}

func shiftPositive(X *mat.Dense) {
	r, c := X.Dims()
	min := X.At(0, 0)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if X.At(i, j) < min {
				min = X.At(i, j)
			}
		}
	}
	if min >= 0 {
		return
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			X.Set(i, j, X.At(i, j)-min+1e-3)
		}
	}
}
