package benchmark

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"go.viam.com/bezierplanner/arclength"
	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/utils"
)

// Comparison holds one benchmark per solver, in the order the solvers were given.
type Comparison struct {
	Curve string
	// Reference is the closed form length every result is measured against.
	Reference float64
	Results   []*Result
}

// Compare benchmarks every solver on c concurrently. A failing or cancelled benchmark cancels the
// rest and fails the comparison. A progress callback in opts is called from several goroutines.
func Compare(ctx context.Context, c *curve.Curve, solvers []arclength.Solver, opts ...Option) (*Comparison, error) {
	results := make([]*Result, len(solvers))
	fs := make([]utils.SimpleFunc, 0, len(solvers))
	for i, solver := range solvers {
		fs = append(fs, func(ctx context.Context) error {
			res, err := Run(ctx, c, solver, opts...)
			if err != nil {
				return errors.Wrapf(err, "benchmark of %s failed", solver.Name())
			}
			results[i] = res
			return nil
		})
	}
	if _, err := utils.RunInParallel(ctx, fs); err != nil {
		return nil, err
	}

	reference := arclength.ClosedForm().Solve(c)
	for _, res := range results {
		res.RelativeError = relativeError(res.AverageResult, reference)
	}
	return &Comparison{Curve: c.Name(), Reference: reference, Results: results}, nil
}

// relativeError falls back to the absolute error for a zero length reference.
func relativeError(value, reference float64) float64 {
	diff := math.Abs(value - reference)
	if reference == 0 {
		return diff
	}
	return diff / math.Abs(reference)
}
