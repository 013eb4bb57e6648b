package propagation

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/star/rsky/internal/orbit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func sampleTimes(n int, t0, span float64) []float64 {
	times := make([]float64, n)
	for i := range times {
		// Deliberately unsorted: walk the span with a stride coprime to n.
		times[i] = t0 + span*float64((i*7919)%n)/float64(n) - span/2
	}
	return times
}

// TestWorkerPoolMatchesSequential verifies the pooled result is identical to
// the sequential one, element by element.
func TestWorkerPoolMatchesSequential(t *testing.T) {
	pool := NewWorkerPool(4, 7, testLogger())

	for _, p := range []orbit.Params{edgeOn, hotJupiter} {
		times := sampleTimes(1000, p.T0, 3*p.Per)

		want, err := EvaluateDetailed(times, p)
		require.NoError(t, err)

		got, err := pool.EvaluateBatch(context.Background(), times, p)
		require.NoError(t, err)

		require.Len(t, got.Separations, len(times))
		assert.Equal(t, want.Separations, got.Separations)
		assert.Equal(t, want.Iterations, got.Iterations)
	}
}

func TestWorkerPoolEmpty(t *testing.T) {
	pool := NewWorkerPool(2, 10, testLogger())
	res, err := pool.EvaluateBatch(context.Background(), nil, hotJupiter)
	require.NoError(t, err)
	assert.NotNil(t, res.Separations)
	assert.Empty(t, res.Separations)
}

func TestWorkerPoolDefaults(t *testing.T) {
	pool := NewWorkerPool(0, 0, testLogger())
	assert.Equal(t, 1, pool.Workers())
	assert.Equal(t, DefaultChunkSize, pool.chunkSize)
}

func TestWorkerPoolInvalidParams(t *testing.T) {
	pool := NewWorkerPool(2, 10, testLogger())
	p := hotJupiter
	p.Ecc = 1.2

	res, err := pool.EvaluateBatch(context.Background(), []float64{1, 2}, p)
	assert.ErrorIs(t, err, orbit.ErrInvalidEccentricity)
	assert.Nil(t, res.Separations)
}

// TestWorkerPoolSampleError verifies one bad sample fails the whole batch.
func TestWorkerPoolSampleError(t *testing.T) {
	pool := NewWorkerPool(3, 5, testLogger())
	times := sampleTimes(100, hotJupiter.T0, 10)
	times[63] = math.Inf(1)

	res, err := pool.EvaluateBatch(context.Background(), times, hotJupiter)
	assert.ErrorIs(t, err, orbit.ErrNonFinite)
	assert.ErrorContains(t, err, "sample 63")
	assert.Nil(t, res.Separations)
}

// TestWorkerPoolCancellation verifies the worker pool respects context cancellation.
func TestWorkerPoolCancellation(t *testing.T) {
	pool := NewWorkerPool(2, 1, testLogger())
	times := sampleTimes(200, hotJupiter.T0, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately.

	res, err := pool.EvaluateBatch(ctx, times, hotJupiter)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res.Separations)
}

func BenchmarkWorkerPoolEccentric(b *testing.B) {
	pool := NewWorkerPool(4, DefaultChunkSize, testLogger())
	times := sampleTimes(100000, hotJupiter.T0, 20)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := pool.EvaluateBatch(ctx, times, hotJupiter); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluateSequential(b *testing.B) {
	times := sampleTimes(100000, hotJupiter.T0, 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Evaluate(times, hotJupiter); err != nil {
			b.Fatal(err)
		}
	}
}
