package curve

import (
	"math"

	"github.com/golang/geo/r2"
)

// Quad is an immutable snapshot of a curve's geometry. Numeric code works on a Quad so that a
// curve edited mid-computation cannot tear a result.
type Quad struct {
	P0, P1, P2 r2.Point
}

// Quad snapshots the curve's geometry.
func (c *Curve) Quad() Quad {
	p0, p1, p2 := c.Points()
	return Quad{p0, p1, p2}
}

// Eval returns B(t).
func (c *Curve) Eval(t float64) r2.Point {
	return c.Quad().Eval(t)
}

// Derivative returns B'(t).
func (c *Curve) Derivative(t float64) r2.Point {
	return c.Quad().Derivative(t)
}

// Heading returns the direction of travel at t in radians, measured from the x axis.
func (c *Curve) Heading(t float64) float64 {
	return c.Quad().Heading(t)
}

// Eval returns B(t) = (1-t)²P0 + 2(1-t)tP1 + t²P2.
func (q Quad) Eval(t float64) r2.Point {
	mt := 1 - t
	return r2.Point{
		X: mt*mt*q.P0.X + 2*mt*t*q.P1.X + t*t*q.P2.X,
		Y: mt*mt*q.P0.Y + 2*mt*t*q.P1.Y + t*t*q.P2.Y,
	}
}

// Derivative returns B'(t) = 2(1-t)(P1-P0) + 2t(P2-P1).
func (q Quad) Derivative(t float64) r2.Point {
	return q.P1.Sub(q.P0).Mul(2 * (1 - t)).Add(q.P2.Sub(q.P1).Mul(2 * t))
}

// Heading returns atan2(B'y(t), B'x(t)). A curve with zero velocity at t reports 0.
func (q Quad) Heading(t float64) float64 {
	d := q.Derivative(t)
	return math.Atan2(d.Y, d.X)
}

// Chord returns |P2-P0|.
func (q Quad) Chord() float64 {
	return q.P2.Sub(q.P0).Norm()
}

// IsFinite is false if any coordinate is NaN or infinite.
func (q Quad) IsFinite() bool {
	for _, v := range []float64{q.P0.X, q.P0.Y, q.P1.X, q.P1.Y, q.P2.X, q.P2.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
