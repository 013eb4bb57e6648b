package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/star/rsky/internal/api"
	"github.com/star/rsky/internal/cache"
	"github.com/star/rsky/internal/catalog"
	"github.com/star/rsky/internal/metrics"
	"github.com/star/rsky/internal/propagation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP evaluation service",
	Long: `Starts the rsky HTTP service exposing POST /api/v1/rsky, the catalog
endpoints under /api/v1/systems, health probes and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		catalogFlag, _ := cmd.Flags().GetString("catalog")
		addr, _ := cmd.Flags().GetString("addr")
		return runServe(addr, level, catalogSource(catalogFlag))
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default $RSKY_HTTP_ADDR or :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(addr, level, source string) error {
	logger := newLogger(os.Stdout, level)

	if addr == "" {
		addr = os.Getenv("RSKY_HTTP_ADDR")
	}
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		return fmt.Errorf("invalid auth configuration: %w", err)
	}

	propCfg := loadPropConfig(logger)
	prop := propagation.NewPropagator(propCfg, logger.With("component", "propagation"))
	results := cache.NewResultCache(loadCacheConfig(logger), logger.With("component", "cache"))

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := catalog.NewStore()
	if source != "" {
		loader := catalog.NewLoader(logger.With("component", "catalog"))
		c, err := loader.Load(ctx, source)
		if err != nil {
			// Readiness stays failed; evaluation by explicit elements still works.
			logger.Warn("catalog load failed, starting without catalog", "source", source, "error", err)
		} else {
			store.Set(c)
			metrics.SetCatalogSystems(len(c.Systems))
		}
	}

	srv := api.NewServer(addr, logger, loadAPIConfig(logger, source), authCfg, prop, store, results)

	// Reload the catalog on SIGHUP so operators can edit it without a restart.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-hup:
				if source == "" {
					continue
				}
				c, err := catalog.NewLoader(logger.With("component", "catalog")).Load(ctx, source)
				if err != nil {
					logger.Warn("catalog reload failed, keeping previous catalog", "error", err)
					continue
				}
				store.Set(c)
				results.Flush()
				metrics.SetCatalogSystems(len(c.Systems))
			case <-ctx.Done():
				return
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr, "auth_enabled", authCfg.Enabled, "catalog", source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
