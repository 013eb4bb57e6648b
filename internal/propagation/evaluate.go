// Package propagation evaluates star/planet sky separations over batches of
// observation times.
package propagation

import (
	"fmt"

	"github.com/star/rsky/internal/orbit"
	"github.com/star/rsky/internal/transform"
)

// Evaluate returns the sky-projected separation for each time in times,
// evaluated sequentially. Output index i corresponds to times[i]. Invalid
// parameters are rejected before any sample is evaluated.
func Evaluate(times []float64, p orbit.Params) ([]float64, error) {
	res, err := EvaluateDetailed(times, p)
	if err != nil {
		return nil, err
	}
	return res.Separations, nil
}

// EvaluateDetailed is Evaluate that also reports solver work.
func EvaluateDetailed(times []float64, p orbit.Params) (BatchResult, error) {
	if err := p.Validate(); err != nil {
		return BatchResult{}, fmt.Errorf("invalid orbital parameters: %w", err)
	}

	out := make([]float64, len(times))
	iters, err := evaluateRange(out, times, 0, p, p.MeanMotion())
	if err != nil {
		return BatchResult{}, err
	}
	return BatchResult{Separations: out, Iterations: iters}, nil
}

// evaluateRange fills out[i] for every i in times. offset is the index of
// times[0] in the caller's full series and is used only for error messages.
func evaluateRange(out, times []float64, offset int, p orbit.Params, n float64) (int, error) {
	var iters int
	for i, t := range times {
		d, k, err := separationAt(p, n, t)
		if err != nil {
			return iters, fmt.Errorf("sample %d: %w", offset+i, err)
		}
		iters += k
		out[i] = d
	}
	return iters, nil
}

// separationAt computes d for one time given precomputed mean motion n.
func separationAt(p orbit.Params, n, t float64) (float64, int, error) {
	an, err := orbit.TrueAnomaly(p, t, p.MeanAnomaly(n, t))
	if err != nil {
		return 0, 0, err
	}
	return transform.SkySeparation(p.A, p.Ecc, p.Omega, p.Inc, an.F), an.Iterations, nil
}
