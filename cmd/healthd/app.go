package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ishswami-Tech/healthops/cache"
	"github.com/Ishswami-Tech/healthops/config"
	"github.com/Ishswami-Tech/healthops/health"
	"github.com/Ishswami-Tech/healthops/observe"
	"github.com/Ishswami-Tech/healthops/probes"
)

// app is the wired engine with everything it owns.
type app struct {
	cfg    *config.Config
	obs    observe.Observer
	logger observe.Logger
	probes *probes.Set
	engine *health.Engine
}

// loadConfig reads configuration and resolves credential references.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Version == "" {
		cfg.Version = version
	}
	if err := cfg.ResolveSecrets(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig())
	if err != nil {
		return nil, fmt.Errorf("observer: %w", err)
	}
	logger := obs.Logger()

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("middleware: %w", err)
	}
	metrics, err := observe.MetricsFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("metrics: %w", err)
	}

	set, err := probes.Build(ctx, cfg, logger)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("probes: %w", err)
	}

	engine := health.NewEngine(set.Base,
		health.WithPolicy(cache.Policy{FreshnessWindow: cfg.Monitor.FreshnessWindow}),
		health.WithProcessInfo(health.CurrentProcess(cfg.Version, cfg.Environment)),
		health.WithDevProbes(set.Dev),
		health.WithLogger(logger),
		health.WithMiddleware(mw),
		health.WithMetrics(metrics),
	)

	logger.Info(ctx, "engine ready",
		observe.F("probes", set.Base.Names()),
		observe.F("dev_probes", set.Dev.Names()),
		observe.F("environment", cfg.Environment),
	)

	return &app{cfg: cfg, obs: obs, logger: logger, probes: set, engine: engine}, nil
}

// Close releases probe clients and flushes telemetry.
func (a *app) Close(ctx context.Context) error {
	return errors.Join(a.probes.Close(), a.obs.Shutdown(ctx))
}
