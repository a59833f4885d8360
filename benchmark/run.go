// Package benchmark times arc length solvers by solving the same curve many times.
package benchmark

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/bezierplanner/arclength"
	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/logging"
)

const (
	// DefaultIterations is how many times a solver is run per benchmark.
	DefaultIterations = 100_000
	// DefaultProgressInterval is how many iterations pass between progress reports.
	DefaultProgressInterval = 1_000

	maxPreallocatedWindows = 1024
)

// Result summarizes one benchmark.
type Result struct {
	Solver     string
	Iterations int
	// TimePerIterationMs is the mean wall time of one Solve call.
	TimePerIterationMs float64
	// AverageResult is the mean length returned by the solver.
	AverageResult float64
	// TimeStdDevMs is the spread of the per call time across progress windows.
	TimeStdDevMs float64
	Elapsed      time.Duration
	// WindowTimesMs is the mean per call time of each progress window, in order.
	WindowTimesMs []float64
	// RelativeError against the closed form length. Only Compare fills it in.
	RelativeError float64
}

type options struct {
	iterations       int
	progressInterval int
	clock            clock.Clock
	logger           logging.Logger
	onProgress       func(float64)
}

// Option configures Run.
type Option func(*options)

// WithIterations sets the number of Solve calls.
func WithIterations(n int) Option {
	return func(o *options) {
		o.iterations = n
	}
}

// WithProgressInterval sets how many iterations pass between progress reports.
func WithProgressInterval(n int) Option {
	return func(o *options) {
		o.progressInterval = n
	}
}

// WithClock sets the clock used for timing.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		o.clock = clk
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProgress registers a callback receiving the fraction of iterations done, in (0, 1]. It is
// called on the benchmarking goroutine and should return quickly.
func WithProgress(f func(fraction float64)) Option {
	return func(o *options) {
		o.onProgress = f
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		iterations:       DefaultIterations,
		progressInterval: DefaultProgressInterval,
		clock:            clock.New(),
		logger:           logging.NewBlankLogger("benchmark"),
		onProgress:       func(float64) {},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run solves c repeatedly with solver and reports the mean time and mean length. The curve's
// geometry is read once, before the first iteration.
//
// ctx is checked before every iteration. A cancelled run returns ctx.Err() and no result.
func Run(ctx context.Context, c *curve.Curve, solver arclength.Solver, opts ...Option) (*Result, error) {
	ctx, span := trace.StartSpan(ctx, "benchmark::Run")
	defer span.End()

	o := newOptions(opts)
	if o.iterations < 1 {
		return nil, errors.Errorf("iterations must be positive, got %d", o.iterations)
	}
	if o.progressInterval < 1 {
		return nil, errors.Errorf("progress interval must be positive, got %d", o.progressInterval)
	}
	if err := solver.Validate(); err != nil {
		return nil, err
	}
	span.AddAttributes(
		trace.StringAttribute("solver", solver.Name()),
		trace.Int64Attribute("iterations", int64(o.iterations)),
	)

	q := c.Quad()
	windows := make([]float64, 0, min(o.iterations/o.progressInterval+1, maxPreallocatedWindows))
	var sum float64

	start := o.clock.Now()
	windowStart, windowSize := start, 0
	for i := 0; i < o.iterations; i++ {
		if err := ctx.Err(); err != nil {
			o.logger.Debugw("benchmark cancelled", "solver", solver.Name(), "iteration", i)
			return nil, err
		}

		sum += solver.SolveQuad(q)
		windowSize++

		if done := i + 1; done%o.progressInterval == 0 || done == o.iterations {
			now := o.clock.Now()
			windows = append(windows, durationMs(now.Sub(windowStart))/float64(windowSize))
			windowStart, windowSize = now, 0
			o.onProgress(float64(done) / float64(o.iterations))
		}
	}
	elapsed := windowStart.Sub(start)

	stdDev, err := stats.StandardDeviation(windows)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute timing spread")
	}

	res := &Result{
		Solver:             solver.Name(),
		Iterations:         o.iterations,
		TimePerIterationMs: durationMs(elapsed) / float64(o.iterations),
		AverageResult:      sum / float64(o.iterations),
		TimeStdDevMs:       stdDev,
		Elapsed:            elapsed,
		WindowTimesMs:      windows,
	}
	o.logger.Debugw("benchmark finished",
		"solver", res.Solver, "iterations", res.Iterations, "ms_per_iteration", res.TimePerIterationMs)
	return res, nil
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
