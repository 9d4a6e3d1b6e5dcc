package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/dscore/internal/adapters/http/api"
	"github.com/okian/dscore/internal/adapters/http/swagger"
	service "github.com/okian/dscore/internal/app"
	"github.com/okian/dscore/pkg/logger"
	"github.com/okian/dscore/pkg/metrics"
	"github.com/spf13/cobra"
)

// HTTP server timeout constants.
const (
	readTimeout               = 30 * time.Second
	writeTimeout              = 2 * time.Minute
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring API over HTTP",
		Long: `Serve exposes POST /score, POST /confusion, GET /healthz and the API docs
at /api-docs.

Scoring requests carry the reference and system RTTM documents inline. The
/healthz endpoint serves Prometheus metrics.`,
		Args: withUsage(cobra.NoArgs),
		RunE: runServe,
	}
	cmd.Flags().String("addr", ":9080", "HTTP listen address")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initServeMetrics()
	log := logger.Named("serve")
	svc := service.New(append(service.FromConfig(cfg), service.WithLogger(log))...)

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	swagger.Register(mux)
	api.NewServer(apiDeps{svc: svc}, logger.Named("api")).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

// apiDeps hands each request a copy of the service carrying the request's
// frame settings.
type apiDeps struct {
	svc *service.Service
}

func (d apiDeps) Scorer(p api.Params) api.Scorer {
	var opts []service.Option
	if p.Step > 0 {
		opts = append(opts, service.WithStep(p.Step))
	}
	if p.Nats != nil {
		opts = append(opts, service.WithNats(*p.Nats))
	}
	if len(opts) == 0 {
		return d.svc
	}
	return d.svc.With(opts...)
}

// initServeMetrics labels every exposed series with the build version.
func initServeMetrics() {
	metrics.Init(metrics.WithConstLabels(map[string]string{"version": version}))
}

// startSystemMetricsUpdater refreshes runtime metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
