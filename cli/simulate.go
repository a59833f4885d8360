package cli

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/bep/debounce"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"go.viam.com/bezierplanner/config"
	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/simulation"
	"go.viam.com/bezierplanner/utils"
)

// reloadDelay collapses the burst of events a single save produces into one reload.
const reloadDelay = 150 * time.Millisecond

// simulationConfig applies the simulation flags shared by simulate and plot on top of the config.
func simulationConfig(c *cli.Context, e *env) (config.SimulationConfig, error) {
	sc := e.cfg.Simulation
	if c.IsSet(flagSpeed) {
		sc.SpeedFeetPerSec = c.Float64(flagSpeed)
	}
	if c.IsSet(flagFrameMs) {
		sc.FrameIntervalMs = c.Int(flagFrameMs)
	}
	if c.Bool(flagByPosition) {
		sc.SegmentLookup = config.LookupByPosition
	}
	if err := sc.Validate("simulation"); err != nil {
		return sc, err
	}
	return sc, nil
}

// warnUnreachable points out curves that name lookup will never drive over.
func warnUnreachable(c *cli.Context, sc config.SimulationConfig, coll *curve.Collection) {
	if sc.SegmentLookup != config.LookupByName {
		return
	}
	reachable := 0
	for src := curve.ByName(coll); ; reachable++ {
		if _, ok := src.Segment(reachable + 1); !ok {
			break
		}
	}
	if skipped := coll.Len() - reachable; skipped > 0 {
		warningf(c.App.ErrWriter, "%d curve(s) are not on the path because %s is missing; use --%s to follow file order",
			skipped, curve.SegmentName(reachable+1), flagByPosition)
	}
}

// SimulateAction drives the vehicle along the curves in a file at the configured frame rate and
// prints samples until the path ends or the command is interrupted.
func SimulateAction(c *cli.Context, e *env) error {
	if err := maxArgs(c, 1); err != nil {
		return err
	}
	store, coll, _, err := openCollection(c, e)
	if err != nil {
		return err
	}
	sc, err := simulationConfig(c, e)
	if err != nil {
		return err
	}
	warnUnreachable(c, sc, coll)

	logger := e.logger.Sublogger("simulation")
	sim := simulation.New(sc.Source(coll), sc.Options(logger)...)

	every := c.Duration(flagEvery)
	printer := rate.Sometimes{Interval: every}
	if every <= 0 {
		printer = rate.Sometimes{Every: 1}
	}
	onSample := func(s simulation.Sample) {
		printer.Do(func() { printSample(c, s) })
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return sim.Run(gctx, sc.FrameInterval(), onSample)
	})
	if c.Bool(flagWatch) {
		reload := debounce.New(reloadDelay)
		g.Go(func() error {
			return store.Watch(gctx, func(curves []*curve.Curve) {
				reload(func() {
					if err := coll.SetAll(curves); err != nil {
						logger.Warnw("ignoring reloaded curves", "error", err)
						return
					}
					logger.Infow("reloaded curves", "path", store.Path(), "count", len(curves))
				})
			})
		})
	}

	err = g.Wait()
	switch {
	case errors.Is(err, context.Canceled) && c.Context.Err() != nil:
		printf(c.App.Writer, "interrupted on segment %d after %.2f ft", sim.SegmentIndex(), sim.Traveled())
		return nil
	case err != nil:
		return err
	}
	printf(c.App.Writer, "finished after %s: traveled %.2f ft over %d segment(s)",
		sim.ElapsedRun().Round(time.Millisecond), sim.Traveled(), sim.SegmentIndex()-1)
	return nil
}

func printSample(c *cli.Context, s simulation.Sample) {
	heading := "-"
	if !math.IsNaN(s.Heading) {
		heading = formatDegrees(s.Heading)
	}
	printf(c.App.Writer, "%9s  %-7s  segment %d  t=%.3f  at (%.2f, %.2f)  heading %s",
		s.Elapsed.Round(time.Millisecond), s.State, s.SegmentIndex, s.Parameter, s.Position.X, s.Position.Y, heading)
}

func formatDegrees(rad float64) string {
	return fmt.Sprintf("%.1f°", utils.RadToDeg(rad))
}
