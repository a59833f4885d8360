package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/bezierplanner/arclength"
	"go.viam.com/bezierplanner/benchmark"
	"go.viam.com/bezierplanner/curve"
)

const (
	histogramBins  = 10
	histogramWidth = 40
)

// BenchmarkAction times one solver on a named curve in the background, showing progress until it
// finishes or the command is interrupted. With --compare every solver is timed instead.
func BenchmarkAction(c *cli.Context, e *env) error {
	if err := maxArgs(c, 2); err != nil {
		return err
	}
	name, err := arg(c, 1, "name")
	if err != nil {
		return err
	}
	_, coll, _, err := openCollection(c, e)
	if err != nil {
		return err
	}
	crv, ok := coll.Find(name)
	if !ok {
		return curve.NewCurveNotFoundError(name)
	}

	bc := e.cfg.Benchmark
	if c.IsSet(flagIterations) {
		bc.Iterations = c.Int(flagIterations)
	}
	if err := bc.Validate("benchmark"); err != nil {
		return err
	}
	logger := e.logger.Sublogger("benchmark")

	if c.Bool(flagCompare) {
		return compareSolvers(c, crv, bc.Solvers(), bc.Options(logger))
	}

	solver, err := arclength.ParseSolver(c.String(flagSolver), bc.BruteForceStep, bc.GaussLegendrePoints)
	if err != nil {
		return err
	}

	svc := benchmark.NewService(logger, bc.Options(logger)...)
	defer svc.Close()
	svc.Start(crv, solver)

	var opts []ProgressOption
	if isTerminal(c.App.Writer) {
		opts = append(opts, WithProgressBar(c.App.Writer))
	}
	progress := NewProgress(solver.Name(), logger, opts...)

	done := svc.Done()
	interrupted := c.Context.Done()
	for finished := false; !finished; {
		select {
		case fraction := <-svc.Updates():
			progress.Set(fraction)
		case <-interrupted:
			interrupted = nil
			svc.Cancel()
		case <-done:
			finished = true
		}
	}
	// the last update may still be waiting on the channel
	progress.Set(svc.Progress())
	progress.Stop()

	res, err := svc.Result()
	if errors.Is(err, context.Canceled) {
		warningf(c.App.ErrWriter, "benchmark %s cancelled at %.0f%%", svc.RunID(), svc.Progress()*100)
		return nil
	}
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", res.Summary())
	if c.Bool(flagHistogram) {
		return benchmark.WriteHistogram(c.App.Writer, res, histogramBins, histogramWidth)
	}
	return nil
}

func compareSolvers(c *cli.Context, crv *curve.Curve, solvers []arclength.Solver, opts []benchmark.Option) error {
	cmp, err := benchmark.Compare(c.Context, crv, solvers, opts...)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", cmp.Table())
	if !c.Bool(flagHistogram) {
		return nil
	}
	for _, res := range cmp.Results {
		printf(c.App.Writer, "\n%s", res.Solver)
		if err := benchmark.WriteHistogram(c.App.Writer, res, histogramBins, histogramWidth); err != nil {
			return err
		}
	}
	return nil
}
