package orbit

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star/rsky/internal/kepler"
)

func TestValidate(t *testing.T) {
	valid := Params{T0: 0, Per: 10, A: 15, Inc: math.Pi / 2, Ecc: 0.1, Omega: 0.3}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Params)
		want   error
	}{
		{"ecc of one", func(p *Params) { p.Ecc = 1 }, ErrInvalidEccentricity},
		{"ecc above one", func(p *Params) { p.Ecc = 2.5 }, ErrInvalidEccentricity},
		{"negative ecc", func(p *Params) { p.Ecc = -0.01 }, ErrInvalidEccentricity},
		{"NaN ecc", func(p *Params) { p.Ecc = math.NaN() }, ErrInvalidEccentricity},
		{"zero period", func(p *Params) { p.Per = 0 }, ErrInvalidPeriod},
		{"negative period", func(p *Params) { p.Per = -3 }, ErrInvalidPeriod},
		{"infinite period", func(p *Params) { p.Per = math.Inf(1) }, ErrInvalidPeriod},
		{"zero a", func(p *Params) { p.A = 0 }, ErrInvalidSemiMajorAxis},
		{"negative a", func(p *Params) { p.A = -1 }, ErrInvalidSemiMajorAxis},
		{"NaN t0", func(p *Params) { p.T0 = math.NaN() }, ErrNonFinite},
		{"infinite inc", func(p *Params) { p.Inc = math.Inf(-1) }, ErrNonFinite},
		{"NaN omega", func(p *Params) { p.Omega = math.NaN() }, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), tt.want)
		})
	}
}

func TestCircularThreshold(t *testing.T) {
	assert.True(t, Params{Ecc: 0}.Circular())
	assert.True(t, Params{Ecc: CircularThreshold}.Circular())
	assert.False(t, Params{Ecc: 1.01e-5}.Circular())
}

// TestPeriapsisGuard checks that M = 0 on an eccentric orbit returns f = 0
// exactly rather than going through acos.
func TestPeriapsisGuard(t *testing.T) {
	for _, ecc := range []float64{2e-5, 0.01, 0.3, 0.7, 0.95} {
		p := Params{T0: 5, Per: 3, A: 12, Inc: 1.5, Ecc: ecc}
		an, err := TrueAnomaly(p, p.T0, 0)
		require.NoError(t, err)
		assert.Equal(t, 0.0, an.F, "ecc=%g", ecc)
		assert.InDelta(t, p.A*(1-ecc), an.R, 1e-12)
		assert.False(t, an.Circular)
	}
}

func TestEccentricApoapsis(t *testing.T) {
	p := Params{Per: 1, A: 10, Ecc: 0.4}
	an, err := TrueAnomaly(p, 0.5, math.Pi)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, an.F, 1e-6)
	assert.InDelta(t, p.A*(1+p.Ecc), an.R, 1e-9)
}

func TestEccentricMatchesClosedForm(t *testing.T) {
	p := Params{Per: 1, A: 7, Ecc: 0.25}
	n := p.MeanMotion()
	for _, tm := range []float64{0.05, 0.1, 0.2, 0.3, 0.45} {
		m := p.MeanAnomaly(n, tm)
		an, err := TrueAnomaly(p, tm, m)
		require.NoError(t, err)

		// tan(f/2) = sqrt((1+e)/(1-e)) tan(E/2), valid on the first half orbit.
		want := 2 * math.Atan(math.Sqrt((1+p.Ecc)/(1-p.Ecc))*math.Tan(an.E/2))
		assert.InDelta(t, want, an.F, 1e-6, "t=%g", tm)
		assert.LessOrEqual(t, math.Abs(kepler.Residual(an.E, m, p.Ecc)), kepler.Tolerance)
	}
}

// acos only yields [0, pi], so the receding half mirrors the approaching half.
func TestEccentricSecondHalfMirrors(t *testing.T) {
	p := Params{Per: 1, A: 7, Ecc: 0.25}
	n := p.MeanMotion()
	for _, tm := range []float64{0.1, 0.25, 0.4} {
		first, err := TrueAnomaly(p, tm, p.MeanAnomaly(n, tm))
		require.NoError(t, err)
		second, err := TrueAnomaly(p, 1-tm, p.MeanAnomaly(n, 1-tm))
		require.NoError(t, err)

		assert.InDelta(t, first.F, second.F, 1e-5, "t=%g", tm)
		assert.InDelta(t, first.R, second.R, 1e-6, "t=%g", tm)
	}
}

// TestBranchContinuity compares the eccentric and circular branches just
// either side of CircularThreshold.
func TestBranchContinuity(t *testing.T) {
	circ := Params{Per: 1, A: 10, Inc: 1.2, Ecc: CircularThreshold}
	ecc := circ
	ecc.Ecc = 1.0001 * CircularThreshold
	n := circ.MeanMotion()

	for i := 1; i < 10; i++ {
		tm := 0.05 * float64(i)
		m := circ.MeanAnomaly(n, tm)

		c, err := TrueAnomaly(circ, tm, m)
		require.NoError(t, err)
		e, err := TrueAnomaly(ecc, tm, m)
		require.NoError(t, err)

		require.True(t, c.Circular)
		require.False(t, e.Circular)
		assert.InDelta(t, c.F, e.F, 1e-4, "t=%g", tm)
		assert.InDelta(t, c.R, e.R, 1e-3, "t=%g", tm)
	}
}

func TestCircularPhase(t *testing.T) {
	p := Params{T0: 0, Per: 10, A: 15}
	tests := []struct {
		t    float64
		want float64
	}{
		{0, 0},
		{2.5, math.Pi / 2},
		{5, math.Pi},
		{7.5, 3 * math.Pi / 2},
		{12.5, math.Pi / 2},
		{30, 0},
	}

	for _, tt := range tests {
		an, err := TrueAnomaly(p, tt.t, 0)
		require.NoError(t, err)
		assert.True(t, an.Circular)
		assert.InDelta(t, tt.want, an.F, 1e-12, "t=%g", tt.t)
		assert.Equal(t, p.A, an.R)
	}
}

// TestCircularTruncationBeforeT0 pins the truncation-toward-zero phase wrap:
// times before T0 give a negative true anomaly instead of one in [0, 2π).
func TestCircularTruncationBeforeT0(t *testing.T) {
	p := Params{T0: 0, Per: 10, A: 15}

	before, err := TrueAnomaly(p, -2.5, 0)
	require.NoError(t, err)
	after, err := TrueAnomaly(p, 7.5, 0)
	require.NoError(t, err)

	assert.InDelta(t, -math.Pi/2, before.F, 1e-12)
	assert.InDelta(t, 3*math.Pi/2, after.F, 1e-12)
	assert.InDelta(t, 2*math.Pi, after.F-before.F, 1e-12)

	far, err := TrueAnomaly(p, -37.5, 0)
	require.NoError(t, err)
	assert.InDelta(t, -3*math.Pi/2, far.F, 1e-12)
}

func TestTrueAnomalyRejectsNonFiniteTime(t *testing.T) {
	for _, p := range []Params{{Per: 1, A: 2}, {Per: 1, A: 2, Ecc: 0.3}} {
		_, err := TrueAnomaly(p, math.NaN(), math.NaN())
		assert.True(t, errors.Is(err, ErrNonFinite))
	}
}

func TestEccentricSolverErrorWrapped(t *testing.T) {
	p := Params{Per: 1, A: 2, Ecc: 0.3}
	_, err := TrueAnomaly(p, 1, math.Inf(1))
	assert.ErrorIs(t, err, kepler.ErrInvalidAnomaly)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, clamp(1.0000000001, -1, 1))
	assert.Equal(t, -1.0, clamp(-1.0000000001, -1, 1))
	assert.Equal(t, 0.25, clamp(0.25, -1, 1))
}
