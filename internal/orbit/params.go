// Package orbit derives the true anomaly and orbital radius of a planet on a
// Keplerian orbit around its host star.
package orbit

import (
	"errors"
	"fmt"
	"math"
)

// CircularThreshold is the eccentricity at or below which an orbit is treated
// as circular and Kepler's equation is not solved.
const CircularThreshold = 1.0e-5

var (
	ErrInvalidEccentricity  = errors.New("eccentricity must be in [0, 1)")
	ErrInvalidPeriod        = errors.New("period must be positive and finite")
	ErrInvalidSemiMajorAxis = errors.New("semi-major axis must be positive and finite")
	ErrNonFinite            = errors.New("value must be finite")
)

// Params holds the orbital elements for one batch evaluation.
// Times, T0 and Per share a caller-defined unit; A is in stellar radii;
// Inc and Omega are in radians.
type Params struct {
	T0    float64 `json:"t0"`    // time of inferior conjunction
	Per   float64 `json:"per"`   // orbital period
	A     float64 `json:"a"`     // semi-major axis (stellar radii)
	Inc   float64 `json:"inc"`   // inclination (radians)
	Ecc   float64 `json:"ecc"`   // eccentricity
	Omega float64 `json:"omega"` // argument of periapsis (radians)
}

// Validate rejects elements for which the separation is undefined.
func (p Params) Validate() error {
	if math.IsNaN(p.Ecc) || p.Ecc < 0 || p.Ecc >= 1 {
		return fmt.Errorf("ecc=%g: %w", p.Ecc, ErrInvalidEccentricity)
	}
	if !finite(p.Per) || p.Per <= 0 {
		return fmt.Errorf("per=%g: %w", p.Per, ErrInvalidPeriod)
	}
	if !finite(p.A) || p.A <= 0 {
		return fmt.Errorf("a=%g: %w", p.A, ErrInvalidSemiMajorAxis)
	}
	if !finite(p.T0) {
		return fmt.Errorf("t0=%g: %w", p.T0, ErrNonFinite)
	}
	if !finite(p.Inc) {
		return fmt.Errorf("inc=%g: %w", p.Inc, ErrNonFinite)
	}
	if !finite(p.Omega) {
		return fmt.Errorf("omega=%g: %w", p.Omega, ErrNonFinite)
	}
	return nil
}

// Circular reports whether the orbit takes the circular branch.
func (p Params) Circular() bool {
	return p.Ecc <= CircularThreshold
}

// MeanMotion returns 2π/Per in radians per time unit.
func (p Params) MeanMotion() float64 {
	return 2.0 * math.Pi / p.Per
}

// MeanAnomaly returns n·(t - T0) for a precomputed mean motion n.
func (p Params) MeanAnomaly(n, t float64) float64 {
	return n * (t - p.T0)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
