// Package simulation drives a vehicle at constant speed along a chain of quadratic Bézier
// segments and reports where it is and which way it faces.
//
// A Simulation is either Idle or Running. Start moves it to Running at the beginning of segment 1;
// every Tick advances it by speed × elapsed wall time. When a segment is used up the vehicle moves
// on to the next one, and when there is no next segment the simulation returns to Idle. Distance
// left over at the end of a segment is dropped rather than carried into the next one.
//
// A Simulation has a single consumer. Start, Tick and Run must not be called concurrently.
package simulation

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"go.opencensus.io/trace"

	"go.viam.com/bezierplanner/arclength"
	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/logging"
)

const (
	// DefaultSpeed is the vehicle speed in feet per second.
	DefaultSpeed = 5.0
	// DefaultFrameInterval is the cadence Run ticks at.
	DefaultFrameInterval = 16 * time.Millisecond
)

// State is the phase of a simulation.
type State int

const (
	// Idle is both the initial and the terminal state.
	Idle State = iota
	// Running means Tick moves the vehicle.
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithSpeed sets the vehicle speed in feet per second.
func WithSpeed(feetPerSec float64) Option {
	return func(s *Simulation) {
		s.speed = feetPerSec
	}
}

// WithClock replaces the wall clock, usually with a clock.Mock in tests.
func WithClock(clk clock.Clock) Option {
	return func(s *Simulation) {
		s.clock = clk
	}
}

// WithLogger sets the logger segment transitions are reported to.
func WithLogger(logger logging.Logger) Option {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// WithInversionStep sets the parameter step used to turn distance into a curve parameter.
func WithInversionStep(dt float64) Option {
	return func(s *Simulation) {
		s.step = dt
	}
}

// Sample is a read-only view of a simulation at one instant.
type Sample struct {
	State        State
	SegmentIndex int
	Parameter    float64
	// Distance is measured from the start of the current segment.
	Distance float64
	// Traveled is the distance covered since Start across all segments.
	Traveled float64
	Position r2.Point
	// Heading is in radians and NaN when there is no current segment.
	Heading float64
	Elapsed time.Duration
}

// Simulation is a constant speed traversal of the segments of a SegmentSource.
type Simulation struct {
	source curve.SegmentSource
	speed  float64
	step   float64
	clock  clock.Clock
	logger logging.Logger

	state     State
	index     int
	distance  float64
	traveled  float64
	parameter float64
	position  r2.Point
	heading   float64
	elapsed   time.Duration
	lastTick  time.Time
}

// New returns an idle simulation over source.
func New(source curve.SegmentSource, opts ...Option) *Simulation {
	s := &Simulation{
		source: source,
		speed:  DefaultSpeed,
		step:   arclength.DefaultStep,
		clock:  clock.New(),
		logger:  logging.NewBlankLogger("simulation"),
		heading: math.NaN(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start resets the simulation to the beginning of segment 1 and sets it running. If segment 1 does
// not exist the vehicle sits at the origin and the first Tick ends the run.
func (s *Simulation) Start() {
	s.state = Running
	s.index = 1
	s.distance = 0
	s.traveled = 0
	s.parameter = 0
	s.elapsed = 0
	s.lastTick = s.clock.Now()

	s.position = r2.Point{}
	s.heading = math.NaN()
	if seg, ok := s.source.Segment(s.index); ok {
		q := seg.Quad()
		s.position = q.P0
		s.heading = q.Heading(0)
	} else {
		s.logger.Warnw("starting simulation without a first segment", "segment", curve.SegmentName(s.index))
	}
	s.logger.Debugw("simulation started", "speed", s.speed)
}

// Tick advances the vehicle by the distance covered since the previous tick. It does nothing when
// the simulation is idle.
func (s *Simulation) Tick() {
	if s.state != Running {
		return
	}

	now := s.clock.Now()
	delta := now.Sub(s.lastTick)
	if delta < 0 {
		delta = 0
	}
	s.lastTick = now
	s.elapsed += delta

	seg, ok := s.source.Segment(s.index)
	if !ok {
		s.finish()
		return
	}

	step := s.speed * delta.Seconds()
	s.distance += step
	s.traveled += step

	q := seg.Quad()
	param, reached := arclength.ParameterAtDistance(q, s.distance, s.step)
	if !reached {
		param = 1
	}
	s.parameter = param
	s.position = q.Eval(param)
	s.heading = q.Heading(param)
	if reached {
		return
	}

	s.logger.Debugw("segment finished", "segment", s.index, "name", seg.Name())
	s.index++
	s.distance = 0
	s.parameter = 0
	next, ok := s.source.Segment(s.index)
	if !ok {
		s.finish()
		return
	}
	s.heading = next.Quad().Heading(0)
}

func (s *Simulation) finish() {
	s.state = Idle
	s.heading = math.NaN()
	s.logger.Debugw("simulation finished", "segment", s.index, "traveled", s.traveled, "elapsed", s.elapsed)
}

// Run starts the simulation and ticks it every frame until it goes idle or ctx is done. onSample,
// if set, sees the state after every tick.
func (s *Simulation) Run(ctx context.Context, frame time.Duration, onSample func(Sample)) error {
	ctx, span := trace.StartSpan(ctx, "simulation::Run")
	defer span.End()

	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	s.Start()
	ticker := s.clock.Ticker(frame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		s.Tick()
		if onSample != nil {
			onSample(s.Snapshot())
		}
		if s.state != Running {
			span.AddAttributes(trace.Float64Attribute("traveled_feet", s.traveled))
			return nil
		}
	}
}

// Running reports whether the simulation is in the Running state.
func (s *Simulation) Running() bool {
	return s.state == Running
}

// State returns the current state.
func (s *Simulation) State() State {
	return s.state
}

// Position returns the vehicle position in feet.
func (s *Simulation) Position() r2.Point {
	return s.position
}

// Heading returns the direction of travel in radians, or NaN when there is no current segment.
// Like Position it is computed by Start and Tick, so edits to the curves show up on the next Tick.
func (s *Simulation) Heading() float64 {
	return s.heading
}

// SegmentIndex returns the 1-based index of the current segment.
func (s *Simulation) SegmentIndex() int {
	return s.index
}

// Parameter returns t on the current segment.
func (s *Simulation) Parameter() float64 {
	return s.parameter
}

// Distance returns the distance covered on the current segment.
func (s *Simulation) Distance() float64 {
	return s.distance
}

// Traveled returns the distance covered since Start.
func (s *Simulation) Traveled() float64 {
	return s.traveled
}

// ElapsedRun returns the wall time accumulated by Tick since Start.
func (s *Simulation) ElapsedRun() time.Duration {
	return s.elapsed
}

// Snapshot returns every observable value at once.
func (s *Simulation) Snapshot() Sample {
	return Sample{
		State:        s.state,
		SegmentIndex: s.index,
		Parameter:    s.parameter,
		Distance:     s.distance,
		Traveled:     s.traveled,
		Position:     s.position,
		Heading:      s.heading,
		Elapsed:      s.elapsed,
	}
}
