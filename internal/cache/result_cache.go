// Package cache provides an in-memory TTL cache of evaluated separation
// batches, keyed by the orbital elements and the exact time series.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"math"
	"slices"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/star/rsky/internal/metrics"
	"github.com/star/rsky/internal/orbit"
)

// Config holds cache configuration loaded from environment variables.
type Config struct {
	TTL        time.Duration // How long a result stays cached (default: 5m)
	MaxSamples int           // Larger batches are never cached (default: 100000)
}

// ResultCache caches separation series. Safe for concurrent use.
type ResultCache struct {
	items  *gocache.Cache
	config Config
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// NewResultCache creates a cache whose expired entries are swept every TTL.
func NewResultCache(config Config, logger *slog.Logger) *ResultCache {
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	logger.Info("result cache initialized",
		"ttl_seconds", config.TTL.Seconds(),
		"max_samples", config.MaxSamples,
	)
	return &ResultCache{
		items:  gocache.New(config.TTL, config.TTL),
		config: config,
		logger: logger,
	}
}

// Key returns a stable digest of the orbital elements and time series.
func Key(p orbit.Params, times []float64) string {
	h := sha256.New()
	var buf [8]byte
	for _, v := range []float64{p.T0, p.Per, p.A, p.Inc, p.Ecc, p.Omega} {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	binary.LittleEndian.PutUint64(buf[:], uint64(len(times)))
	h.Write(buf[:])
	for _, t := range times {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(t))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cacheable reports whether a batch of n samples may be stored.
func (c *ResultCache) Cacheable(n int) bool {
	return c.config.MaxSamples <= 0 || n <= c.config.MaxSamples
}

// Get returns a copy of the cached separations for key.
func (c *ResultCache) Get(key string) ([]float64, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		c.misses.Add(1)
		metrics.RecordCacheMiss()
		return nil, false
	}
	c.hits.Add(1)
	metrics.RecordCacheHit()
	return slices.Clone(v.([]float64)), true
}

// Put stores a copy of separations under key, if the batch is small enough.
func (c *ResultCache) Put(key string, separations []float64) {
	if !c.Cacheable(len(separations)) {
		return
	}
	c.items.Set(key, slices.Clone(separations), gocache.DefaultExpiration)
}

// Flush drops every entry.
func (c *ResultCache) Flush() {
	c.items.Flush()
	c.logger.Debug("result cache flushed")
}

// Stats returns current cache statistics.
func (c *ResultCache) Stats() Stats {
	return Stats{
		Entries: c.items.ItemCount(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
