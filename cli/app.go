// Package cli contains the bezierplan command line application.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"go.viam.com/bezierplanner/arclength"
)

// Flags.
const (
	flagConfig  = "config"
	flagDebug   = "debug"
	flagLogFile = "log-file"

	flagForce          = "force"
	flagStart          = "start"
	flagControl        = "control"
	flagEnd            = "end"
	flagColor          = "color"
	flagAt             = "at"
	flagSpeed          = "speed"
	flagFrameMs        = "frame-ms"
	flagByPosition     = "by-position"
	flagWatch          = "watch"
	flagEvery          = "every"
	flagSolver         = "solver"
	flagIterations     = "iterations"
	flagCompare        = "compare"
	flagHistogram      = "histogram"
	flagControlPolygon = "control-polygon"
	flagTrajectory     = "trajectory"
	flagSizeCm         = "size-cm"
)

func newApp() *cli.App {
	return &cli.App{
		Name:            "bezierplan",
		Usage:           "plan, measure and simulate paths made of quadratic Bézier curves",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  flagLogFile,
				Usage: "also write logs to `FILE`, rotating it as it grows",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "create an empty curve file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  flagForce,
						Usage: "overwrite an existing file",
					},
				},
				Action: withEnv(NewAction),
			},
			{
				Name:      "add",
				Usage:     "append a curve, named Curve<N>",
				ArgsUsage: "<file>",
				UsageText: "bezierplan add --start x,y --control x,y --end x,y [--color #rrggbb] [--at index] <file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagStart,
						Usage: "start point P0 as x,y in feet",
					},
					&cli.StringFlag{
						Name:  flagControl,
						Usage: "control point P1 as x,y in feet",
					},
					&cli.StringFlag{
						Name:  flagEnd,
						Usage: "end point P2 as x,y in feet",
					},
					&cli.StringFlag{
						Name:  flagColor,
						Usage: "display color as #rrggbb",
					},
					&cli.IntFlag{
						Name:  flagAt,
						Value: -1,
						Usage: "0-based position to insert at instead of appending",
					},
				},
				Action: withEnv(AddAction),
			},
			{
				Name:      "remove",
				Usage:     "remove a curve by name",
				ArgsUsage: "<file> <name>",
				Action:    withEnv(RemoveAction),
			},
			{
				Name:      "list",
				Usage:     "list curves with their lengths from every solver",
				ArgsUsage: "<file>",
				Action:    withEnv(ListAction),
			},
			{
				Name:      "simulate",
				Usage:     "drive the vehicle along the path and print where it is",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  flagSpeed,
						Usage: "speed in feet per second (default from config)",
					},
					&cli.IntFlag{
						Name:  flagFrameMs,
						Usage: "tick interval in milliseconds (default from config)",
					},
					&cli.BoolFlag{
						Name:  flagByPosition,
						Usage: "follow curves in file order instead of by Curve<N> name",
					},
					&cli.BoolFlag{
						Name:  flagWatch,
						Usage: "reload the file when it changes while the simulation runs",
					},
					&cli.DurationFlag{
						Name:  flagEvery,
						Usage: "print at most one sample per interval; 0 prints every tick",
					},
				},
				Action: withEnv(SimulateAction),
			},
			{
				Name:      "benchmark",
				Usage:     "time an arc length solver on one curve",
				ArgsUsage: "<file> <name>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagSolver,
						Value: "closed-form",
						Usage: "solver to time: " + strings.Join(arclength.Methods, ", "),
					},
					&cli.IntFlag{
						Name:  flagIterations,
						Usage: "number of calls (default from config)",
					},
					&cli.BoolFlag{
						Name:  flagCompare,
						Usage: "time every solver and compare them",
					},
					&cli.BoolFlag{
						Name:  flagHistogram,
						Usage: "print a histogram of call times",
					},
				},
				Action: withEnv(BenchmarkAction),
			},
			{
				Name:      "plot",
				Usage:     "draw the curves to an image",
				ArgsUsage: "<file> <image>",
				Description: fmt.Sprintf("The image format comes from the extension of <image>, for example .png or .svg. "+
					"With --%s the vehicle positions from a simulated run are drawn on top.", flagTrajectory),
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  flagControlPolygon,
						Usage: "draw each curve's control polygon",
					},
					&cli.BoolFlag{
						Name:  flagTrajectory,
						Usage: "overlay a simulated run",
					},
					&cli.BoolFlag{
						Name:  flagByPosition,
						Usage: "simulate curves in file order instead of by Curve<N> name",
					},
					&cli.Float64Flag{
						Name:  flagSizeCm,
						Value: 12,
						Usage: "image edge length in centimeters",
					},
				},
				Action: withEnv(PlotAction),
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of a curve record",
				Action: withEnv(SchemaAction),
			},
		},
	}
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app := newApp()
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
