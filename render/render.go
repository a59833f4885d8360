// Package render draws curve series and simulated trajectories as images.
package render

import (
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/bezierplanner/curve"
)

// DefaultSamples is the number of points each segment is drawn with.
const DefaultSamples = 64

// DefaultSize is the edge length of a saved image.
const DefaultSize = 12 * vg.Centimeter

var trajectoryColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}

type options struct {
	title          string
	samples        int
	controlPolygon bool
	trajectory     []r2.Point
}

// Option configures a plot.
type Option func(*options)

// WithTitle sets the plot title.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithSamples sets how many points each segment is drawn with. Values below 2 are ignored.
func WithSamples(n int) Option {
	return func(o *options) {
		if n >= 2 {
			o.samples = n
		}
	}
}

// WithControlPolygon also draws the dashed P0-P1-P2 polygon of every segment.
func WithControlPolygon() Option {
	return func(o *options) {
		o.controlPolygon = true
	}
}

// WithTrajectory overlays vehicle positions as dots.
func WithTrajectory(points []r2.Point) Option {
	return func(o *options) {
		o.trajectory = points
	}
}

// Plot builds a plot with one line per curve, drawn in the curve's color and listed in the legend
// by name.
func Plot(curves []*curve.Curve, opts ...Option) (*plot.Plot, error) {
	if len(curves) == 0 {
		return nil, errors.New("no curves to plot")
	}
	o := options{title: "Path", samples: DefaultSamples}
	for _, opt := range opts {
		opt(&o)
	}

	p := plot.New()
	p.Title.Text = o.title
	p.X.Label.Text = "x (ft)"
	p.Y.Label.Text = "y (ft)"
	p.Add(plotter.NewGrid())

	for _, c := range curves {
		q := c.Quad()
		if !q.IsFinite() {
			return nil, errors.Errorf("curve %q has non-finite points", c.Name())
		}
		pts := make(plotter.XYs, o.samples)
		for i := range pts {
			pt := q.Eval(float64(i) / float64(o.samples-1))
			pts[i].X, pts[i].Y = pt.X, pt.Y
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to draw curve %q", c.Name())
		}
		line.Color = c.Color()
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(c.Name(), line)

		if o.controlPolygon {
			poly, err := plotter.NewLine(plotter.XYs{
				{X: q.P0.X, Y: q.P0.Y}, {X: q.P1.X, Y: q.P1.Y}, {X: q.P2.X, Y: q.P2.Y},
			})
			if err != nil {
				return nil, errors.Wrapf(err, "failed to draw control polygon of %q", c.Name())
			}
			poly.Color = c.Color()
			poly.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
			p.Add(poly)
		}
	}

	if len(o.trajectory) > 0 {
		pts := make(plotter.XYs, len(o.trajectory))
		for i, pt := range o.trajectory {
			pts[i].X, pts[i].Y = pt.X, pt.Y
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, errors.Wrap(err, "failed to draw trajectory")
		}
		scatter.GlyphStyle.Color = trajectoryColor
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)
		p.Legend.Add("vehicle", scatter)
	}
	return p, nil
}

// Save writes p to path. The image format comes from the extension; png, svg and pdf are among
// those supported.
func Save(p *plot.Plot, path string, size vg.Length) error {
	if size <= 0 {
		size = DefaultSize
	}
	if err := p.Save(size, size, path); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", path)
	}
	return nil
}

// Write encodes p in the given format, such as "png" or "svg".
func Write(w io.Writer, p *plot.Plot, format string, size vg.Length) error {
	if size <= 0 {
		size = DefaultSize
	}
	format = strings.TrimPrefix(strings.ToLower(format), ".")
	wt, err := p.WriterTo(size, size, format)
	if err != nil {
		return errors.Wrapf(err, "unsupported plot format %q", format)
	}
	_, err = wt.WriteTo(w)
	return err
}

// FormatOf returns the image format implied by a file name.
func FormatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
