package orbit

import (
	"fmt"
	"math"

	"github.com/star/rsky/internal/kepler"
)

// periapsisEps is the distance from 1 within which the acos argument is
// treated as exactly periapsis.
const periapsisEps = 1.0e-7

// Anomaly is the orbital position of the planet at one time.
type Anomaly struct {
	F          float64 // true anomaly (radians)
	R          float64 // orbital radius (stellar radii)
	E          float64 // eccentric anomaly; zero on the circular branch
	Iterations int     // Newton steps spent by the Kepler solver
	Circular   bool
}

// TrueAnomaly returns the true anomaly and orbital radius at time t, where m
// is the mean anomaly at t. p must already be validated.
func TrueAnomaly(p Params, t, m float64) (Anomaly, error) {
	if !finite(t) {
		return Anomaly{}, fmt.Errorf("t=%g: %w", t, ErrNonFinite)
	}
	if p.Circular() {
		return circular(p, t), nil
	}
	return eccentric(p, m)
}

func eccentric(p Params, m float64) (Anomaly, error) {
	E, iters, err := kepler.SolveIter(m, p.Ecc)
	if err != nil {
		return Anomaly{}, fmt.Errorf("mean anomaly %g: %w", m, err)
	}

	r := p.A * (1.0 - p.Ecc*math.Cos(E))
	q := p.A*(1.0-p.Ecc*p.Ecc)/(r*p.Ecc) - 1.0/p.Ecc

	var f float64
	if math.Abs(q-1.0) >= periapsisEps {
		f = math.Acos(clamp(q, -1, 1))
	}

	return Anomaly{F: f, R: r, E: E, Iterations: iters}, nil
}

// circular derives f from the orbital phase. The phase is wrapped by
// truncation toward zero, so f lies in (-2π, 0] when t < T0.
func circular(p Params, t float64) Anomaly {
	phase := (t - p.T0) / p.Per
	f := (phase - math.Trunc(phase)) * 2.0 * math.Pi
	return Anomaly{F: f, R: p.A, Circular: true}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
