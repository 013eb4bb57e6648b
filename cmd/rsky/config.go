package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/star/rsky/internal/api"
	"github.com/star/rsky/internal/auth"
	"github.com/star/rsky/internal/cache"
	"github.com/star/rsky/internal/propagation"
)

// newLogger builds the JSON logger. An empty level falls back to
// RSKY_LOG_LEVEL, then info.
func newLogger(w io.Writer, level string) *slog.Logger {
	if level == "" {
		level = os.Getenv("RSKY_LOG_LEVEL")
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("RSKY_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("RSKY_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("RSKY_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("RSKY_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadPropConfig(logger *slog.Logger) propagation.PropConfig {
	cfg := propagation.PropConfig{
		Workers:    runtime.NumCPU(),
		ChunkSize:  propagation.DefaultChunkSize,
		MaxSamples: 1000000,
	}

	if v := os.Getenv("RSKY_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid RSKY_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	if v := os.Getenv("RSKY_CHUNK_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid RSKY_CHUNK_SIZE value, using default", "value", v, "default", cfg.ChunkSize)
		} else {
			cfg.ChunkSize = n
		}
	}

	if v := os.Getenv("RSKY_MAX_SAMPLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			logger.Warn("invalid RSKY_MAX_SAMPLES value, using default", "value", v, "default", cfg.MaxSamples)
		} else {
			cfg.MaxSamples = n
		}
	}

	logger.Info("propagation config",
		"workers", cfg.Workers,
		"chunk_size", cfg.ChunkSize,
		"max_samples", cfg.MaxSamples,
	)

	return cfg
}

func loadCacheConfig(logger *slog.Logger) cache.Config {
	cfg := cache.Config{
		TTL:        5 * time.Minute,
		MaxSamples: 100000,
	}

	if v := os.Getenv("RSKY_RESULT_CACHE_TTL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid RSKY_RESULT_CACHE_TTL value, using default", "value", v, "default", 300)
		} else {
			cfg.TTL = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("RSKY_RESULT_CACHE_MAX_SAMPLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			logger.Warn("invalid RSKY_RESULT_CACHE_MAX_SAMPLES value, using default", "value", v, "default", cfg.MaxSamples)
		} else {
			cfg.MaxSamples = n
		}
	}

	return cfg
}

func loadAPIConfig(logger *slog.Logger, catalogSource string) api.Config {
	cfg := api.Config{
		RequireCatalog: catalogSource != "",
		MaxBodyBytes:   32 << 20,
	}

	if v := os.Getenv("RSKY_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			logger.Warn("invalid RSKY_MAX_BODY_BYTES value, using default", "value", v, "default", cfg.MaxBodyBytes)
		} else {
			cfg.MaxBodyBytes = n
		}
	}

	return cfg
}

// catalogSource returns the --catalog flag value, else RSKY_CATALOG_PATH.
func catalogSource(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("RSKY_CATALOG_PATH")
}
