package propagation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/star/rsky/internal/kepler"
	"github.com/star/rsky/internal/metrics"
	"github.com/star/rsky/internal/orbit"
)

// ErrTooManySamples is returned when a batch exceeds PropConfig.MaxSamples.
var ErrTooManySamples = errors.New("too many samples in batch")

// Propagator orchestrates batch evaluation on a shared worker pool.
// Safe for concurrent use; holds no per-batch state.
type Propagator struct {
	pool   *WorkerPool
	config PropConfig
	logger *slog.Logger
}

// NewPropagator creates a new evaluation orchestrator.
func NewPropagator(config PropConfig, logger *slog.Logger) *Propagator {
	pool := NewWorkerPool(config.Workers, config.ChunkSize, logger)
	metrics.SetWorkers(pool.Workers())
	return &Propagator{
		pool:   pool,
		config: config,
		logger: logger,
	}
}

// MaxSamples returns the configured batch size limit; zero means unlimited.
func (p *Propagator) MaxSamples() int {
	return p.config.MaxSamples
}

// Evaluate returns the separation at each of times for the given elements.
func (p *Propagator) Evaluate(ctx context.Context, times []float64, params orbit.Params) ([]float64, error) {
	if p.config.MaxSamples > 0 && len(times) > p.config.MaxSamples {
		metrics.RecordRejected("too_many_samples")
		return nil, fmt.Errorf("%d samples exceeds limit of %d: %w", len(times), p.config.MaxSamples, ErrTooManySamples)
	}

	p.logger.Debug("evaluating batch",
		"samples", len(times),
		"ecc", params.Ecc,
		"circular", params.Circular(),
		"workers", p.pool.Workers(),
	)

	start := time.Now()
	res, err := p.pool.EvaluateBatch(ctx, times, params)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordRejected(rejectReason(err))
		return nil, err
	}

	metrics.RecordBatch(duration, len(times), res.Iterations, !params.Circular())

	p.logger.Debug("batch complete",
		"samples", len(times),
		"kepler_iterations", res.Iterations,
		"duration_ms", duration.Milliseconds(),
	)

	return res.Separations, nil
}

// rejectReason maps an evaluation error onto a metrics label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, kepler.ErrNoConvergence):
		return "no_convergence"
	case errors.Is(err, orbit.ErrInvalidEccentricity),
		errors.Is(err, orbit.ErrInvalidPeriod),
		errors.Is(err, orbit.ErrInvalidSemiMajorAxis):
		return "invalid_params"
	case errors.Is(err, orbit.ErrNonFinite), errors.Is(err, kepler.ErrInvalidAnomaly):
		return "non_finite"
	default:
		return "other"
	}
}
