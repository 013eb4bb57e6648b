// Package kepler solves Kepler's equation for the eccentric anomaly.
package kepler

import (
	"errors"
	"math"
)

const (
	// Tolerance is the residual |E - e·sin(E) - M| at which iteration stops.
	Tolerance = 1.0e-7

	// MaxIterations bounds the Newton-Raphson loop. Starting from E0 = M,
	// most inputs converge within a few steps, but e close to 1 with small
	// |M| can take over a thousand.
	MaxIterations = 10000
)

var (
	ErrInvalidEccentricity = errors.New("eccentricity must be in [0, 1)")
	ErrInvalidAnomaly      = errors.New("mean anomaly must be finite")
	ErrNoConvergence       = errors.New("kepler solver did not converge")
)

// Solve returns the eccentric anomaly E (radians) for mean anomaly m and
// eccentricity e.
func Solve(m, e float64) (float64, error) {
	E, _, err := SolveIter(m, e)
	return E, err
}

// SolveIter is Solve that also reports the number of Newton steps taken.
//
// Newton-Raphson on g(E) = E - e·sin(E) - M with g'(E) = 1 - e·cos(E),
// starting from E0 = M.
func SolveIter(m, e float64) (float64, int, error) {
	if math.IsNaN(e) || e < 0 || e >= 1 {
		return 0, 0, ErrInvalidEccentricity
	}
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return 0, 0, ErrInvalidAnomaly
	}

	E := m
	for i := 0; ; i++ {
		g := E - e*math.Sin(E) - m
		if math.Abs(g) <= Tolerance {
			return E, i, nil
		}
		if i == MaxIterations {
			return E, i, ErrNoConvergence
		}
		E -= g / (1.0 - e*math.Cos(E))
	}
}

// Residual returns E - e·sin(E) - M.
func Residual(E, m, e float64) float64 {
	return E - e*math.Sin(E) - m
}
