package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/star/rsky/internal/cache"
	"github.com/star/rsky/internal/catalog"
	"github.com/star/rsky/internal/kepler"
	"github.com/star/rsky/internal/orbit"
	"github.com/star/rsky/internal/propagation"
	"github.com/star/rsky/internal/transform"
)

// rskyRequest is the body of POST /api/v1/rsky. Angles are in radians.
type rskyRequest struct {
	Times []float64 `json:"times"`
	orbit.Params
}

type rskyResponse struct {
	Separations []float64 `json:"separations"`
	Samples     int       `json:"samples"`
	Cached      bool      `json:"cached"`
	System      string    `json:"system,omitempty"`
}

type systemsResponse struct {
	Source   string           `json:"source"`
	LoadedAt time.Time        `json:"loaded_at"`
	Count    int              `json:"count"`
	Systems  []catalog.System `json:"systems"`
}

// evaluator fronts the propagator with the optional result cache.
type evaluator struct {
	prop    *propagation.Propagator
	results *cache.ResultCache
}

func (e *evaluator) evaluate(ctx context.Context, times []float64, p orbit.Params) ([]float64, bool, error) {
	if e.results == nil || !e.results.Cacheable(len(times)) {
		d, err := e.prop.Evaluate(ctx, times, p)
		return d, false, err
	}

	key := cache.Key(p, times)
	if d, ok := e.results.Get(key); ok {
		return d, true, nil
	}

	d, err := e.prop.Evaluate(ctx, times, p)
	if err != nil {
		return nil, false, err
	}
	e.results.Put(key, d)
	return d, false, nil
}

func rskyHandler(logger *slog.Logger, ev *evaluator, maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)

		var req rskyRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if req.Times == nil {
			req.Times = []float64{}
		}

		d, cached, err := ev.evaluate(r.Context(), req.Times, req.Params)
		if err != nil {
			writeEvalError(w, logger, ev.prop, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, rskyResponse{
			Separations: d,
			Samples:     len(d),
			Cached:      cached,
		})
	}
}

func listSystemsHandler(logger *slog.Logger, store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := store.Get()
		if c == nil {
			writeError(w, logger, http.StatusServiceUnavailable, "no catalog loaded")
			return
		}
		writeJSON(w, logger, http.StatusOK, systemsResponse{
			Source:   c.Source,
			LoadedAt: c.LoadedAt,
			Count:    len(c.Systems),
			Systems:  c.Systems,
		})
	}
}

func systemRskyHandler(logger *slog.Logger, ev *evaluator, store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store.Get() == nil {
			writeError(w, logger, http.StatusServiceUnavailable, "no catalog loaded")
			return
		}

		name := r.PathValue("name")
		sys, ok := store.Lookup(name)
		if !ok {
			writeError(w, logger, http.StatusNotFound, "unknown system "+name)
			return
		}

		times, err := transform.ParseObservationTimes(r.URL.Query().Get("times"))
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, err.Error())
			return
		}

		d, cached, err := ev.evaluate(r.Context(), times, sys.Params)
		if err != nil {
			writeEvalError(w, logger, ev.prop, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, rskyResponse{
			Separations: d,
			Samples:     len(d),
			Cached:      cached,
			System:      sys.Name,
		})
	}
}

// writeEvalError maps evaluation failures onto HTTP statuses.
func writeEvalError(w http.ResponseWriter, logger *slog.Logger, prop *propagation.Propagator, err error) {
	switch {
	case errors.Is(err, propagation.ErrTooManySamples):
		writeJSON(w, logger, http.StatusBadRequest, map[string]any{
			"error":       err.Error(),
			"max_samples": prop.MaxSamples(),
		})
	case errors.Is(err, orbit.ErrInvalidEccentricity),
		errors.Is(err, orbit.ErrInvalidPeriod),
		errors.Is(err, orbit.ErrInvalidSemiMajorAxis),
		errors.Is(err, orbit.ErrNonFinite),
		errors.Is(err, kepler.ErrInvalidAnomaly):
		writeError(w, logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, logger, http.StatusServiceUnavailable, "evaluation cancelled")
	default:
		logger.Error("evaluation failed", "error", err)
		writeError(w, logger, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, map[string]string{"error": msg})
}

// writeJSON encodes v before writing the header. A value JSON cannot
// represent, such as an overflowed separation, is answered with a 500.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("encoding response failed", "status", status, "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "encoding response: " + err.Error()})
	}
	body = append(body, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Debug("writing response failed", "error", err)
	}
}
