package benchmark

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.viam.com/bezierplanner/arclength"
	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/logging"
	"go.viam.com/bezierplanner/utils"
)

var (
	errNotStarted = errors.New("no benchmark has been started")
	errRunning    = errors.New("benchmark is still running")
)

// Service runs one benchmark at a time on a background goroutine. Starting a new benchmark
// cancels the one in flight.
type Service struct {
	logger logging.Logger
	opts   []Option

	progress *atomic.Float64
	updates  chan float64

	mu      sync.Mutex
	workers *utils.StoppableWorkers
	done    chan struct{}
	runID   string

	resultMu sync.Mutex
	started  bool
	finished bool
	result   *Result
	err      error
}

// NewService returns an idle service. opts apply to every benchmark it runs. WithProgress and
// WithLogger options are replaced by the service's own progress tracking and per run logger.
func NewService(logger logging.Logger, opts ...Option) *Service {
	done := make(chan struct{})
	close(done)
	return &Service{
		logger:   logger,
		opts:     opts,
		progress: atomic.NewFloat64(0),
		updates:  make(chan float64, 1),
		done:     done,
	}
}

// Start benchmarks solver on c in the background, cancelling and waiting out any benchmark that is
// already running.
func (s *Service) Start(c *curve.Curve, solver arclength.Solver) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	s.progress.Store(0)
	select {
	case <-s.updates:
	default:
	}
	s.resultMu.Lock()
	s.started, s.finished, s.result, s.err = true, false, nil, nil
	s.resultMu.Unlock()

	done := make(chan struct{})
	s.done = done
	s.runID = uuid.NewString()
	logger := s.logger.Sublogger(s.runID[:8])
	opts := append(append([]Option{}, s.opts...), WithLogger(logger), WithProgress(s.report))

	logger.Infow("starting benchmark", "run", s.runID, "solver", solver.Name(), "curve", c.Name())
	s.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		var (
			res *Result
			err error
		)
		// the run is finished even when it panics, so Result never reports it running forever
		defer func() {
			if thePanic := recover(); thePanic != nil {
				res, err = nil, errors.Errorf("benchmark panicked: %v", thePanic)
				logger.Errorw("benchmark panicked", "solver", solver.Name(), "error", thePanic)
			}
			s.resultMu.Lock()
			s.finished, s.result, s.err = true, res, err
			s.resultMu.Unlock()
			close(done)
		}()
		res, err = Run(ctx, c, solver, opts...)
		if err != nil {
			logger.Debugw("benchmark ended without a result", "solver", solver.Name(), "error", err)
		}
	})
}

// report stores the latest progress and offers it on the updates channel, replacing a value the
// consumer has not picked up yet.
func (s *Service) report(fraction float64) {
	s.progress.Store(fraction)
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- fraction:
	default:
	}
}

// Cancel stops the running benchmark, if any, and waits for it to return. Its result becomes the
// cancellation error.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Service) stopLocked() {
	if s.workers == nil {
		return
	}
	s.workers.Stop()
	s.workers = nil
}

// Progress returns the fraction of the current benchmark completed so far.
func (s *Service) Progress() float64 {
	return s.progress.Load()
}

// Updates delivers progress values. Only the most recent value is kept; a slow reader skips the
// ones in between.
func (s *Service) Updates() <-chan float64 {
	return s.updates
}

// Done is closed when the current benchmark returns. Before the first Start it is already closed.
func (s *Service) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// RunID identifies the most recently started benchmark in logs. It is empty before the first Start.
func (s *Service) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Running reports whether a benchmark is in flight.
func (s *Service) Running() bool {
	s.resultMu.Lock()
	defer s.resultMu.Unlock()
	return s.started && !s.finished
}

// Result returns the outcome of the last benchmark. A cancelled benchmark reports the context
// error and a nil result.
func (s *Service) Result() (*Result, error) {
	s.resultMu.Lock()
	defer s.resultMu.Unlock()
	switch {
	case !s.started:
		return nil, errNotStarted
	case !s.finished:
		return nil, errRunning
	default:
		return s.result, s.err
	}
}

// Close cancels any running benchmark.
func (s *Service) Close() {
	s.Cancel()
}
