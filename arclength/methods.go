package arclength

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"go.viam.com/bezierplanner/curve"
	"go.viam.com/bezierplanner/utils"
)

const (
	// Below this ratio of A to C the closed form loses precision; the curve is nearly straight.
	nearlyStraightRatio = 5e-4
	// Relative size under which a log argument is treated as zero (kinks and cusps).
	kinkTolerance = 1e-12
	// Node count for the quadrature fallback of the closed form.
	fallbackLegendrePoints = 16
)

// bruteForce samples B(t) at t = 0, dt, 2dt, ... while t < 1 and closes with the chord to B(1).
func bruteForce(q curve.Quad, dt float64) float64 {
	prev := q.P0
	var length float64
	for i := 1; ; i++ {
		t := float64(i) * dt
		if t >= 1 {
			break
		}
		cur := q.Eval(t)
		length += cur.Sub(prev).Norm()
		prev = cur
	}
	return length + q.P2.Sub(prev).Norm()
}

// controlPolygon is Gravesen's estimate: two thirds chord plus one third control polygon.
func controlPolygon(q curve.Quad) float64 {
	chord := q.P2.Sub(q.P0).Norm()
	sideOne := q.P1.Sub(q.P0).Norm()
	sideTwo := q.P2.Sub(q.P1).Norm()
	return (2*chord + sideOne + sideTwo) / 3
}

// closedForm integrates |B'(t)| = sqrt(At² + Bt + C) over [0, 1] analytically, where
//
//	a = P0 - 2P1 + P2, b = 2(P1 - P0)
//	A = 4|a|², B = 4a·b, C = |b|²
//
// The antiderivative divides by A and takes a log whose argument reaches zero on kinked curves, so
// those cases are handled before the general formula.
func closedForm(q curve.Quad) float64 {
	a := q.P0.Sub(q.P1.Mul(2)).Add(q.P2)
	b := q.P1.Sub(q.P0).Mul(2)

	A := 4 * a.Dot(a)
	B := 4 * a.Dot(b)
	C := b.Dot(b)

	if A == 0 {
		// P1 is the midpoint of P0P2: a straight line at constant speed.
		return q.Chord()
	}
	if A < nearlyStraightRatio*C {
		return gaussLegendre(q, fallbackLegendrePoints)
	}

	sabc := 2 * math.Sqrt(A+B+C)
	a2 := math.Sqrt(A)
	a32 := 2 * A * a2
	c2 := 2 * math.Sqrt(C)
	ba := B / a2

	length := a32*sabc + a2*B*(sabc-c2)

	// Both log arguments are non-negative by Cauchy-Schwarz. When either vanishes the curve has a
	// kink and 4AC-B² is zero too, so the log term contributes nothing.
	scale := a2 + c2
	num := 2*a2 + ba + sabc
	den := ba + c2
	if num > kinkTolerance*scale && den > kinkTolerance*scale {
		length += (4*C*A - utils.Square(B)) * math.Log(num/den)
	}
	length /= 4 * a32

	if !utils.IsFinite(length) || length < 0 {
		return gaussLegendre(q, fallbackLegendrePoints)
	}
	return length
}

// gaussLegendre integrates the speed |B'(t)| with n fixed Legendre nodes.
func gaussLegendre(q curve.Quad, n int) float64 {
	speed := func(t float64) float64 {
		return q.Derivative(t).Norm()
	}
	return quad.Fixed(speed, 0, 1, n, quad.Legendre{}, 0)
}
