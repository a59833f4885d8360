package arclength

import "go.viam.com/bezierplanner/curve"

// ParameterAtDistance finds the parameter t at which the arc length measured from t=0 reaches
// target. It scans t = 0, dt, 2dt, ... while t < 1, summing the chords between samples, and
// returns the first t whose accumulated distance is at least target.
//
// If the scan reaches the end of the curve first, the last sampled t is returned with
// reached=false; the caller decides what an exhausted segment means. The scan never extrapolates
// past t=1. A non-positive or out of range dt uses DefaultStep.
func ParameterAtDistance(q curve.Quad, target, dt float64) (t float64, reached bool) {
	if !validStep(dt) {
		dt = DefaultStep
	}
	prev := q.P0
	var traveled float64
	for i := 0; ; i++ {
		next := float64(i) * dt
		if next >= 1 {
			return t, false
		}
		t = next
		cur := q.Eval(t)
		traveled += cur.Sub(prev).Norm()
		if traveled >= target {
			return t, true
		}
		prev = cur
	}
}
