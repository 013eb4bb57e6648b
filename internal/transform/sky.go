package transform

import "math"

// SkySeparation returns the distance between the star and planet centers
// projected onto the plane of the sky, in units of stellar radii.
// This is r_sky in Winn (2010) eq. 5 and d in Mandel & Agol (2002):
//
//	d = a(1 - e²)/(1 + e·cos f) · sqrt(1 - sin²(ω + f)·sin²(i))
//
// The radicand is clamped at zero so rounding near sin(ω+f)·sin(i) = ±1
// cannot produce NaN.
func SkySeparation(a, ecc, omega, inc, f float64) float64 {
	r := a * (1.0 - ecc*ecc) / (1.0 + ecc*math.Cos(f))

	s := math.Sin(omega + f)
	si := math.Sin(inc)
	radicand := 1.0 - s*s*si*si
	if radicand < 0 {
		radicand = 0
	}

	return r * math.Sqrt(radicand)
}
