package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkySeparationEdgeOnCircular(t *testing.T) {
	tests := []struct {
		name string
		f    float64
		want float64
	}{
		{"conjunction line f=0", 0, 15},
		{"quarter", math.Pi / 2, 0},
		{"half", math.Pi, 15},
		{"three quarters", 3 * math.Pi / 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SkySeparation(15, 0, 0, math.Pi/2, tt.f), 1e-6)
		})
	}
}

func TestSkySeparationFaceOn(t *testing.T) {
	// inc = 0: the orbit is seen face-on and d equals the orbital radius.
	for _, f := range []float64{0, 0.7, 2, 4.4} {
		r := 9 * (1 - 0.3*0.3) / (1 + 0.3*math.Cos(f))
		assert.InDelta(t, r, SkySeparation(9, 0.3, 1.1, 0, f), 1e-12)
	}
}

func TestSkySeparationEccentricRadius(t *testing.T) {
	// Periapsis seen face-on: d = a(1-e).
	assert.InDelta(t, 10*(1-0.5), SkySeparation(10, 0.5, 0, 0, 0), 1e-12)
	// Apoapsis: d = a(1+e).
	assert.InDelta(t, 10*(1+0.5), SkySeparation(10, 0.5, 0, 0, math.Pi), 1e-12)
}

// TestSkySeparationRadicandClamp feeds angles where sin(ω+f)·sin(i) rounds to
// just above one in magnitude.
func TestSkySeparationRadicandClamp(t *testing.T) {
	for _, f := range []float64{math.Pi / 2, 3 * math.Pi / 2, -math.Pi / 2, math.Nextafter(math.Pi/2, 2)} {
		d := SkySeparation(15, 0, 0, math.Pi/2, f)
		assert.False(t, math.IsNaN(d), "f=%v", f)
		assert.GreaterOrEqual(t, d, 0.0)
	}
}

func TestSkySeparationNonNegative(t *testing.T) {
	for _, ecc := range []float64{0, 0.1, 0.5, 0.9, 0.99} {
		for i := 0; i < 64; i++ {
			f := float64(i) * 2 * math.Pi / 64
			for _, inc := range []float64{0, 0.3, math.Pi / 2, 2.5, math.Pi} {
				d := SkySeparation(20, ecc, 0.4, inc, f)
				assert.GreaterOrEqual(t, d, 0.0, "ecc=%g f=%g inc=%g", ecc, f, inc)
			}
		}
	}
}
