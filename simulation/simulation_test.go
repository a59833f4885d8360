package simulation

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/logging"
)

func line(name string, x0, y0, x2, y2 float64) *curve.Curve {
	return curve.NewWithPoints(name,
		r2.Point{X: x0, Y: y0},
		r2.Point{X: (x0 + x2) / 2, Y: (y0 + y2) / 2},
		r2.Point{X: x2, Y: y2})
}

func newTestSim(t *testing.T, src curve.SegmentSource, opts ...Option) (*Simulation, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	opts = append([]Option{WithClock(mock), WithLogger(logging.NewTestLogger(t))}, opts...)
	return New(src, opts...), mock
}

func TestSingleStraightSegment(t *testing.T) {
	coll := curve.NewCollection(line("Curve1", 0, 0, 10, 0))
	sim, mock := newTestSim(t, curve.ByName(coll))

	test.That(t, sim.State(), test.ShouldEqual, Idle)
	test.That(t, math.IsNaN(sim.Heading()), test.ShouldBeTrue)

	sim.Start()
	test.That(t, sim.Running(), test.ShouldBeTrue)
	test.That(t, sim.SegmentIndex(), test.ShouldEqual, 1)
	test.That(t, sim.Position(), test.ShouldResemble, r2.Point{})
	test.That(t, sim.Heading(), test.ShouldEqual, 0)

	mock.Add(time.Second)
	sim.Tick()
	test.That(t, sim.Running(), test.ShouldBeTrue)
	test.That(t, sim.SegmentIndex(), test.ShouldEqual, 1)
	test.That(t, sim.Distance(), test.ShouldAlmostEqual, 5, 1e-9)
	test.That(t, sim.Parameter(), test.ShouldAlmostEqual, 0.5, 0.002)
	test.That(t, sim.Position().X, test.ShouldAlmostEqual, 5, 0.02)
	test.That(t, sim.Position().Y, test.ShouldEqual, 0)

	mock.Add(time.Second)
	sim.Tick()
	test.That(t, sim.State(), test.ShouldEqual, Idle)
	test.That(t, sim.SegmentIndex(), test.ShouldEqual, 2)
	test.That(t, sim.Traveled(), test.ShouldAlmostEqual, 10, 1e-9)
	test.That(t, sim.Distance(), test.ShouldEqual, 0)
	test.That(t, sim.Parameter(), test.ShouldEqual, 0)
	test.That(t, sim.Position(), test.ShouldResemble, r2.Point{X: 10, Y: 0})
	test.That(t, sim.ElapsedRun(), test.ShouldEqual, 2*time.Second)
	test.That(t, math.IsNaN(sim.Heading()), test.ShouldBeTrue)

	// ticking an idle simulation changes nothing
	before := sim.Snapshot()
	mock.Add(time.Second)
	sim.Tick()
	after := sim.Snapshot()
	test.That(t, after.State, test.ShouldEqual, before.State)
	test.That(t, after.SegmentIndex, test.ShouldEqual, before.SegmentIndex)
	test.That(t, after.Elapsed, test.ShouldEqual, before.Elapsed)
}

func TestMultipleSegments(t *testing.T) {
	coll := curve.NewCollection(
		line("Curve1", 0, 0, 10, 0),
		line("Curve2", 10, 0, 10, 10),
	)
	sim, mock := newTestSim(t, curve.ByName(coll))
	sim.Start()

	mock.Add(time.Second)
	sim.Tick()
	mock.Add(time.Second)
	sim.Tick()
	test.That(t, sim.Running(), test.ShouldBeTrue)
	test.That(t, sim.SegmentIndex(), test.ShouldEqual, 2)
	test.That(t, sim.Position(), test.ShouldResemble, r2.Point{X: 10, Y: 0})

	mock.Add(time.Second)
	sim.Tick()
	sample := sim.Snapshot()
	test.That(t, sample.State, test.ShouldEqual, Running)
	test.That(t, sample.SegmentIndex, test.ShouldEqual, 2)
	test.That(t, sample.Position.X, test.ShouldAlmostEqual, 10, 1e-9)
	test.That(t, sample.Position.Y, test.ShouldAlmostEqual, 5, 0.02)
	test.That(t, sample.Heading, test.ShouldAlmostEqual, math.Pi/2, 1e-9)
	test.That(t, sample.Traveled, test.ShouldAlmostEqual, 15, 1e-9)

	mock.Add(time.Second)
	sim.Tick()
	test.That(t, sim.State(), test.ShouldEqual, Idle)
	test.That(t, sim.SegmentIndex(), test.ShouldEqual, 3)
	test.That(t, sim.Position(), test.ShouldResemble, r2.Point{X: 10, Y: 10})
}

func TestHeadingFollowsLastTick(t *testing.T) {
	coll := curve.NewCollection(line("Curve1", 0, 0, 10, 0))
	sim, mock := newTestSim(t, curve.ByName(coll))
	sim.Start()
	mock.Add(time.Second)
	sim.Tick()
	before := sim.Snapshot()
	test.That(t, before.Heading, test.ShouldEqual, 0)

	// replacing the curves between ticks moves neither the position nor the heading
	test.That(t, coll.SetAll([]*curve.Curve{line("Curve1", 0, 0, 0, 10)}), test.ShouldBeNil)
	test.That(t, sim.Heading(), test.ShouldEqual, 0)
	test.That(t, sim.Position(), test.ShouldResemble, before.Position)

	mock.Add(100 * time.Millisecond)
	sim.Tick()
	test.That(t, sim.Heading(), test.ShouldAlmostEqual, math.Pi/2, 1e-9)
	test.That(t, sim.Position().X, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestOvershootIsDropped(t *testing.T) {
	coll := curve.NewCollection(
		line("Curve1", 0, 0, 10, 0),
		line("Curve2", 10, 0, 20, 0),
	)
	sim, mock := newTestSim(t, curve.ByName(coll))
	sim.Start()

	// 15 ft in one tick finishes the first segment only
	mock.Add(3 * time.Second)
	sim.Tick()
	test.That(t, sim.SegmentIndex(), test.ShouldEqual, 2)
	test.That(t, sim.Distance(), test.ShouldEqual, 0)
	test.That(t, sim.Position(), test.ShouldResemble, r2.Point{X: 10, Y: 0})
	test.That(t, sim.Traveled(), test.ShouldAlmostEqual, 15, 1e-9)
}

func TestSegmentSources(t *testing.T) {
	// no Curve2, so lookup by name stops after the first segment
	coll := curve.NewCollection(
		line("Curve1", 0, 0, 10, 0),
		line("Curve3", 10, 0, 20, 0),
	)

	byName, mock := newTestSim(t, curve.ByName(coll), WithSpeed(10))
	byName.Start()
	mock.Add(time.Second)
	byName.Tick()
	test.That(t, byName.State(), test.ShouldEqual, Idle)
	test.That(t, byName.SegmentIndex(), test.ShouldEqual, 2)

	byPosition, mock := newTestSim(t, curve.ByPosition(coll), WithSpeed(10))
	byPosition.Start()
	mock.Add(time.Second)
	byPosition.Tick()
	test.That(t, byPosition.State(), test.ShouldEqual, Running)
	test.That(t, byPosition.SegmentIndex(), test.ShouldEqual, 2)
	mock.Add(500 * time.Millisecond)
	byPosition.Tick()
	test.That(t, byPosition.Position().X, test.ShouldAlmostEqual, 15, 0.02)
}

func TestStartWithoutSegments(t *testing.T) {
	sim, mock := newTestSim(t, curve.ByName(curve.NewCollection()))
	sim.Start()
	test.That(t, sim.Running(), test.ShouldBeTrue)
	test.That(t, sim.Position(), test.ShouldResemble, r2.Point{})
	test.That(t, math.IsNaN(sim.Heading()), test.ShouldBeTrue)

	mock.Add(time.Second)
	sim.Tick()
	test.That(t, sim.State(), test.ShouldEqual, Idle)
	test.That(t, sim.SegmentIndex(), test.ShouldEqual, 1)
}

func TestRestart(t *testing.T) {
	coll := curve.NewCollection(line("Curve1", 0, 0, 10, 0))
	sim, mock := newTestSim(t, curve.ByName(coll))
	sim.Start()
	mock.Add(time.Second)
	sim.Tick()

	sim.Start()
	sample := sim.Snapshot()
	test.That(t, sample.SegmentIndex, test.ShouldEqual, 1)
	test.That(t, sample.Distance, test.ShouldEqual, 0)
	test.That(t, sample.Traveled, test.ShouldEqual, 0)
	test.That(t, sample.Elapsed, test.ShouldEqual, time.Duration(0))
	test.That(t, sample.Position, test.ShouldResemble, r2.Point{})
}

func TestRun(t *testing.T) {
	coll := curve.NewCollection(
		line("Curve1", 0, 0, 10, 0),
		line("Curve2", 10, 0, 10, 10),
	)
	sim := New(curve.ByName(coll), WithSpeed(1000), WithLogger(logging.NewTestLogger(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var samples []Sample
	err := sim.Run(ctx, time.Millisecond, func(s Sample) {
		samples = append(samples, s)
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, samples, test.ShouldNotBeEmpty)
	last := samples[len(samples)-1]
	test.That(t, last.State, test.ShouldEqual, Idle)
	test.That(t, last.SegmentIndex, test.ShouldEqual, 3)
	test.That(t, last.Position, test.ShouldResemble, r2.Point{X: 10, Y: 10})
}

func TestRunCancelled(t *testing.T) {
	coll := curve.NewCollection(line("Curve1", 0, 0, 10, 0))
	// the mock clock never fires the ticker
	sim, _ := newTestSim(t, curve.ByName(coll))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sim.Run(ctx, time.Second, nil)
	test.That(t, err, test.ShouldBeError, context.Canceled)
	test.That(t, sim.Running(), test.ShouldBeTrue)
}
