package cli

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot/vg"

	"go.viam.com/bezierplanner/config"
	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/render"
	"go.viam.com/bezierplanner/simulation"
)

// maxTrajectoryTicks bounds a simulated run drawn by plot.
const maxTrajectoryTicks = 100_000

// PlotAction draws the curves of a file to an image.
func PlotAction(c *cli.Context, e *env) error {
	if err := maxArgs(c, 2); err != nil {
		return err
	}
	out, err := arg(c, 1, "image")
	if err != nil {
		return err
	}
	_, coll, _, err := openCollection(c, e)
	if err != nil {
		return err
	}

	opts := []render.Option{render.WithTitle(c.Args().First())}
	if c.Bool(flagControlPolygon) {
		opts = append(opts, render.WithControlPolygon())
	}
	if c.Bool(flagTrajectory) {
		sc, err := simulationConfig(c, e)
		if err != nil {
			return err
		}
		warnUnreachable(c, sc, coll)
		points, complete := trajectory(sc, coll, e)
		if !complete {
			warningf(c.App.ErrWriter, "trajectory cut short after %d frames", maxTrajectoryTicks)
		}
		opts = append(opts, render.WithTrajectory(points))
	}

	p, err := render.Plot(coll.All(), opts...)
	if err != nil {
		return err
	}
	if err := render.Save(p, out, vg.Length(c.Float64(flagSizeCm))*vg.Centimeter); err != nil {
		return err
	}
	printf(c.App.Writer, "wrote %s", out)
	return nil
}

// frameClock moves forward one frame every time it is read.
type frameClock struct {
	clock.Clock
	now   time.Time
	frame time.Duration
}

func (f *frameClock) Now() time.Time {
	now := f.now
	f.now = f.now.Add(f.frame)
	return now
}

// trajectory runs a simulation without waiting, one frame per tick, and returns the start position
// and the position after every tick. complete is false when the run was cut off.
func trajectory(sc config.SimulationConfig, coll *curve.Collection, e *env) (points []r2.Point, complete bool) {
	clk := &frameClock{Clock: clock.NewMock(), frame: sc.FrameInterval()}
	opts := append(sc.Options(e.logger.Sublogger("simulation")), simulation.WithClock(clk))
	sim := simulation.New(sc.Source(coll), opts...)

	sim.Start()
	points = append(points, sim.Position())
	for sim.Running() && len(points) <= maxTrajectoryTicks {
		sim.Tick()
		points = append(points, sim.Position())
	}
	return points, !sim.Running()
}
