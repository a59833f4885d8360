// Package arclength estimates the length of quadratic Bézier segments and inverts distance
// travelled into a curve parameter.
//
// A Solver is a tagged variant: the caller picks the method, nothing inspects the curve to choose
// one.
//
//	BruteForce(dt)    sum of chords between samples taken every dt
//	ControlPolygon()  (2·chord + side1 + side2) / 3, a constant time estimate
//	ClosedForm()      analytic integral of |B'(t)|, guarded against straight and kinked curves
//	GaussLegendre(n)  n-point Legendre quadrature of |B'(t)|
package arclength

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/bezierplanner/curve"
)

// Kind identifies an arc length method.
type Kind int

const (
	// KindBruteForce sums the distance between closely spaced samples.
	KindBruteForce Kind = iota
	// KindControlPolygon averages chord and control polygon lengths.
	KindControlPolygon
	// KindClosedForm evaluates the analytic antiderivative.
	KindClosedForm
	// KindGaussLegendre integrates the speed numerically.
	KindGaussLegendre
)

const (
	// DefaultStep is the sampling step of the brute force method and of parameter inversion.
	DefaultStep = 0.001
	// DefaultLegendrePoints is the number of quadrature nodes used when none is given.
	DefaultLegendrePoints = 8
)

// Solver is one configured arc length method.
type Solver struct {
	Kind Kind
	// Step is the sampling step of KindBruteForce.
	Step float64
	// Points is the node count of KindGaussLegendre.
	Points int
}

// BruteForce samples the curve every dt.
func BruteForce(dt float64) Solver {
	return Solver{Kind: KindBruteForce, Step: dt}
}

// ControlPolygon estimates the length from the control polygon.
func ControlPolygon() Solver {
	return Solver{Kind: KindControlPolygon}
}

// ClosedForm integrates analytically.
func ClosedForm() Solver {
	return Solver{Kind: KindClosedForm}
}

// GaussLegendre integrates with n quadrature nodes.
func GaussLegendre(n int) Solver {
	return Solver{Kind: KindGaussLegendre, Points: n}
}

// Name describes the solver for reports.
func (s Solver) Name() string {
	switch s.Kind {
	case KindBruteForce:
		return "Brute Force (dt=" + strconv.FormatFloat(s.step(), 'g', -1, 64) + ")"
	case KindControlPolygon:
		return "Control Polygon"
	case KindClosedForm:
		return "Integration Solver"
	case KindGaussLegendre:
		return "Gauss-Legendre (n=" + strconv.Itoa(s.points()) + ")"
	default:
		return "Unknown (" + strconv.Itoa(int(s.Kind)) + ")"
	}
}

func (s Solver) String() string {
	return s.Name()
}

// Validate reports parameters that Solve would silently replace with defaults.
func (s Solver) Validate() error {
	switch s.Kind {
	case KindBruteForce:
		if !validStep(s.Step) {
			return errors.Errorf("brute force step must be in (0, 1], got %v", s.Step)
		}
	case KindGaussLegendre:
		if s.Points < 1 {
			return errors.Errorf("gauss-legendre needs at least one point, got %d", s.Points)
		}
	case KindControlPolygon, KindClosedForm:
	default:
		return errors.Errorf("unknown arc length method %d", s.Kind)
	}
	return nil
}

// Solve returns the estimated length of c. The result is never negative for finite control
// points.
func (s Solver) Solve(c *curve.Curve) float64 {
	return s.SolveQuad(c.Quad())
}

// SolveQuad is Solve on a geometry snapshot.
func (s Solver) SolveQuad(q curve.Quad) float64 {
	switch s.Kind {
	case KindBruteForce:
		return bruteForce(q, s.step())
	case KindControlPolygon:
		return controlPolygon(q)
	case KindClosedForm:
		return closedForm(q)
	case KindGaussLegendre:
		return gaussLegendre(q, s.points())
	default:
		// Unknown kinds fall back to the reference method rather than returning garbage.
		return bruteForce(q, DefaultStep)
	}
}

func (s Solver) step() float64 {
	if !validStep(s.Step) {
		return DefaultStep
	}
	return s.Step
}

func (s Solver) points() int {
	if s.Points < 1 {
		return DefaultLegendrePoints
	}
	return s.Points
}

func validStep(dt float64) bool {
	return dt > 0 && dt <= 1
}

// Methods lists the names accepted by ParseSolver.
var Methods = []string{"brute-force", "control-polygon", "closed-form", "gauss-legendre"}

// ParseSolver maps a method name to a solver. step and points configure the methods that take
// parameters and are ignored by the others.
func ParseSolver(method string, step float64, points int) (Solver, error) {
	var s Solver
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "brute-force", "bruteforce", "brute":
		s = BruteForce(step)
	case "control-polygon", "polygon":
		s = ControlPolygon()
	case "closed-form", "integration", "closed":
		s = ClosedForm()
	case "gauss-legendre", "legendre", "quadrature":
		s = GaussLegendre(points)
	default:
		return Solver{}, errors.Errorf("unknown arc length method %q, expected one of %s", method, strings.Join(Methods, ", "))
	}
	if err := s.Validate(); err != nil {
		return Solver{}, err
	}
	return s, nil
}

// All returns one solver of every kind.
func All(step float64, points int) []Solver {
	return []Solver{BruteForce(step), ControlPolygon(), ClosedForm(), GaussLegendre(points)}
}
