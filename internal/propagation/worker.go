package propagation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/star/rsky/internal/orbit"
)

// evaluateJob is a contiguous index range [start, end) of the time series.
type evaluateJob struct {
	start int
	end   int
}

// evaluateResult is the output of a single chunk evaluation.
type evaluateResult struct {
	samples    int
	iterations int
	err        error
}

// WorkerPool manages a fixed number of goroutines for parallel batch evaluation.
type WorkerPool struct {
	workers   int
	chunkSize int
	logger    *slog.Logger
}

// NewWorkerPool creates a worker pool with the given number of workers, each
// job covering up to chunkSize samples.
func NewWorkerPool(workers, chunkSize int, logger *slog.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &WorkerPool{
		workers:   workers,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// EvaluateBatch computes separations for all times using the worker pool.
// Chunks run in any order but each writes only its own index range, so the
// output order always matches the input order. The first failing sample
// aborts the batch; no partial result is returned.
func (wp *WorkerPool) EvaluateBatch(ctx context.Context, times []float64, p orbit.Params) (BatchResult, error) {
	if err := p.Validate(); err != nil {
		return BatchResult{}, fmt.Errorf("invalid orbital parameters: %w", err)
	}

	out := make([]float64, len(times))
	if len(times) == 0 {
		return BatchResult{Separations: out}, nil
	}

	// Mean motion is shared read-only by every job.
	n := p.MeanMotion()

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	numJobs := (len(times) + wp.chunkSize - 1) / wp.chunkSize
	workers := min(wp.workers, numJobs)

	jobs := make(chan evaluateJob, workers*2)
	results := make(chan evaluateResult, workers*2)

	// Start workers.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				iters, err := evaluateRange(out[job.start:job.end], times[job.start:job.end], job.start, p, n)
				result := evaluateResult{
					samples:    job.end - job.start,
					iterations: iters,
					err:        err,
				}
				select {
				case results <- result:
				case <-workCtx.Done():
					return
				}
			}
		}()
	}

	// Feed jobs in a goroutine.
	go func() {
		defer close(jobs)
		for start := 0; start < len(times); start += wp.chunkSize {
			job := evaluateJob{start: start, end: min(start+wp.chunkSize, len(times))}
			select {
			case jobs <- job:
			case <-workCtx.Done():
				return
			}
		}
	}()

	// Close results when all workers are done.
	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		completed  int
		iterations int
		firstErr   error
	)
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
				cancel()
			}
			continue
		}
		completed += result.samples
		iterations += result.iterations
	}

	if firstErr != nil {
		wp.logger.Warn("batch evaluation failed",
			"samples", len(times),
			"error", firstErr,
		)
		return BatchResult{}, firstErr
	}
	if completed < len(times) {
		return BatchResult{}, ctx.Err()
	}

	return BatchResult{Separations: out, Iterations: iterations}, nil
}
