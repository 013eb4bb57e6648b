package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsky_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rsky_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	batchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rsky_batches_total",
			Help: "Total number of separation batches evaluated.",
		},
	)

	batchRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsky_batch_rejected_total",
			Help: "Batches rejected before or during evaluation, by reason.",
		},
		[]string{"reason"},
	)

	samplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rsky_samples_total",
			Help: "Total number of time samples evaluated.",
		},
	)

	batchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rsky_batch_duration_seconds",
			Help:    "Wall-clock time to evaluate one batch.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
		},
	)

	keplerIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rsky_kepler_iterations_per_sample",
			Help:    "Mean Newton-Raphson steps per sample, observed once per eccentric batch.",
			Buckets: []float64{0.5, 1, 2, 3, 4, 5, 7, 10, 20, 50, 100},
		},
	)

	workersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rsky_workers",
			Help: "Configured size of the evaluation worker pool.",
		},
	)

	resultCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsky_result_cache_lookups_total",
			Help: "Result cache lookups, by outcome.",
		},
		[]string{"outcome"},
	)

	catalogSystems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rsky_catalog_systems",
			Help: "Number of planetary systems in the loaded catalog.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpDurationSeconds,
		batchesTotal,
		batchRejectedTotal,
		samplesTotal,
		batchDurationSeconds,
		keplerIterations,
		workersActive,
		resultCacheLookups,
		catalogSystems,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordBatch records a successfully evaluated batch. iterations is the total
// number of Kepler solver steps across the batch; eccentric reports whether
// the solver ran at all.
func RecordBatch(duration time.Duration, samples, iterations int, eccentric bool) {
	batchesTotal.Inc()
	samplesTotal.Add(float64(samples))
	batchDurationSeconds.Observe(duration.Seconds())
	if eccentric && samples > 0 {
		keplerIterations.Observe(float64(iterations) / float64(samples))
	}
}

// RecordRejected counts a batch that failed with the given reason.
func RecordRejected(reason string) {
	batchRejectedTotal.WithLabelValues(reason).Inc()
}

// SetWorkers sets the worker pool gauge.
func SetWorkers(n int) {
	workersActive.Set(float64(n))
}

// RecordCacheHit counts a result cache hit.
func RecordCacheHit() {
	resultCacheLookups.WithLabelValues("hit").Inc()
}

// RecordCacheMiss counts a result cache miss.
func RecordCacheMiss() {
	resultCacheLookups.WithLabelValues("miss").Inc()
}

// SetCatalogSystems sets the catalog size gauge.
func SetCatalogSystems(n int) {
	catalogSystems.Set(float64(n))
}

// knownRoutes are exact paths reported under their own label.
var knownRoutes = map[string]bool{
	"/":               true,
	"/healthz":        true,
	"/readyz":         true,
	"/metrics":        true,
	"/api/v1/rsky":    true,
	"/api/v1/systems": true,
}

// normalizeRoute maps a request path onto a bounded set of label values so
// that per-system URLs and scanner noise cannot blow up label cardinality.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/api/v1/systems/"); ok {
		name, tail, found := strings.Cut(rest, "/")
		if name != "" && found && tail == "rsky" {
			return "/api/v1/systems/{name}/rsky"
		}
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
