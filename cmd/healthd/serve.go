package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Ishswami-Tech/healthops/health"
	"github.com/Ishswami-Tech/healthops/observe"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitor and serve health endpoints",
	Long: `Start the background monitor and an HTTP server with:
- GET /healthz          liveness, no dependency probes
- GET /health           cached aggregate snapshot
- GET /health/detailed  fresh snapshot with process info
- GET /metrics          when the prometheus metrics exporter is enabled`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			a.logger.Warn(closeCtx, "shutdown incomplete", observe.F("error", err.Error()))
		}
	}()

	monitor := health.NewMonitor(a.engine, health.MonitorConfig{
		Interval: cfg.Monitor.Interval,
		Logger:   a.logger,
	})
	if err := monitor.Start(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           newMux(a),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info(gctx, "health server listening", observe.F("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info(context.Background(), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return errors.Join(srv.Shutdown(shutdownCtx), monitor.Stop(shutdownCtx))
	})

	return g.Wait()
}

func newMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	health.RegisterHandlers(mux, a.engine)

	m := a.cfg.Observe.Metrics
	if m.Enabled && m.Exporter == "prometheus" {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux
}
