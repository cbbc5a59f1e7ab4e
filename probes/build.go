package probes

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ishswami-Tech/healthops/config"
	"github.com/Ishswami-Tech/healthops/health"
	"github.com/Ishswami-Tech/healthops/observe"
	"github.com/Ishswami-Tech/healthops/resilience"
)

// Probe names as they appear in snapshots.
const (
	NameDatabase = "database"
	NameCache    = "cache"
	NameQueue    = "queue"
	NameRealtime = "realtime"
	NameMail     = "mail"
	NameLogSink  = "log_sink"
)

// Set holds the registries built from configuration and the clients that
// back them.
type Set struct {
	// Base holds the production dependency probes.
	Base *health.Registry

	// Dev holds the development tooling probes.
	Dev *health.Registry

	closers []io.Closer
}

// Close releases every client opened by Build.
func (s *Set) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Set) abort(err error) error {
	_ = s.Close()
	return err
}

// Build creates one probe per enabled dependency. Disabled dependencies are
// not registered. A dependency whose client cannot be created is registered
// with a probe that reports the failure, so it still shows in snapshots.
func Build(ctx context.Context, cfg *config.Config, logger observe.Logger) (*Set, error) {
	if logger == nil {
		logger = observe.NopLogger()
	}

	regCfg := health.RegistryConfig{DefaultTimeout: cfg.Monitor.DefaultTimeout}
	set := &Set{
		Base: health.NewRegistry(regCfg),
		Dev:  health.NewRegistry(regCfg),
	}
	p := cfg.Probes

	if p.Database.Enabled {
		def := definition(NameDatabase, "sql", p.Database.Probe)
		db, err := OpenDatabase(p.Database.Driver, p.Database.DSN)
		if err != nil {
			logger.Warn(ctx, "database client unavailable", observe.F("error", err.Error()))
			def.Probe = failed(err)
		} else {
			set.closers = append(set.closers, db)
			def.Probe = NewDatabase(db)
		}
		if err := set.Base.Register(def); err != nil {
			return nil, set.abort(err)
		}
	}

	if p.Cache.Enabled {
		client := redisClient(p.Cache)
		set.closers = append(set.closers, client)

		def := definition(NameCache, "redis", p.Cache.Probe)
		def.Probe = NewRedis(client, executor(NameCache, p.Cache, logger))
		def.Fallback = health.TCPVerifier{Address: p.Cache.Addr}
		def.FallbackTimeout = p.Cache.FallbackTimeout
		if err := set.Base.Register(def); err != nil {
			return nil, set.abort(err)
		}
	}

	if p.Queue.Enabled {
		client := redisClient(p.Queue.Redis)
		set.closers = append(set.closers, client)

		def := definition(NameQueue, "redis-stream", p.Queue.Probe)
		def.Probe = NewQueue(client, executor(NameQueue, p.Queue.Redis, logger), QueueConfig{
			Stream:     p.Queue.Stream,
			Group:      p.Queue.Group,
			MaxPending: p.Queue.MaxPending,
		})
		def.Fallback = health.TCPVerifier{Address: p.Queue.Addr}
		def.FallbackTimeout = p.Queue.FallbackTimeout
		if err := set.Base.Register(def); err != nil {
			return nil, set.abort(err)
		}
	}

	if p.Realtime.Enabled {
		def := definition(NameRealtime, "http", p.Realtime.Probe)
		def.Probe = NewHTTP(p.Realtime.URL, p.Realtime.ExpectStatus, nil)
		if err := set.Base.Register(def); err != nil {
			return nil, set.abort(err)
		}
	}

	if p.Mail.Enabled {
		def := definition(NameMail, "smtp", p.Mail.Probe)
		def.Probe = NewMail(p.Mail.Addr, p.Mail.Username, p.Mail.Password)
		if err := set.Base.Register(def); err != nil {
			return nil, set.abort(err)
		}
	}

	if p.LogSink.Enabled {
		def := definition(NameLogSink, "filesystem", p.LogSink.Probe)
		def.Probe = NewLogSink(p.LogSink.Dir)
		if err := set.Base.Register(def); err != nil {
			return nil, set.abort(err)
		}
	}

	for _, tool := range p.DevTools {
		def := definition(tool.Name, "dev-tool", tool.Probe)
		def.Probe = NewHTTP(tool.URL, tool.ExpectStatus, nil)
		if err := set.Dev.Register(def); err != nil {
			return nil, set.abort(err)
		}
	}

	return set, nil
}

func definition(name, kind string, p config.Probe) health.Definition {
	return health.Definition{
		Name:     name,
		Kind:     kind,
		Timeout:  p.Timeout,
		Critical: p.Critical,
	}
}

func redisClient(cfg config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  -1,
		DialTimeout: 2 * time.Second,
		PoolSize:    4,
	})
}

// executor guards a redis client with a breaker and a per-command timeout.
// A command that times out counts as a breaker failure.
func executor(name string, cfg config.Redis, logger observe.Logger) *resilience.Executor {
	opts := []resilience.ExecutorOption{
		resilience.WithCircuitBreaker(breaker(name, cfg.Breaker, logger)),
	}
	if cfg.CommandTimeout > 0 {
		opts = append(opts, resilience.WithTimeout(cfg.CommandTimeout))
	}
	return resilience.NewExecutor(opts...)
}

func breaker(name string, cfg config.Breaker, logger observe.Logger) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:         name,
		MaxFailures:  cfg.MaxFailures,
		ResetTimeout: cfg.ResetTimeout,
		OnStateChange: func(from, to resilience.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				observe.F("dependency", name),
				observe.F("from", from.String()),
				observe.F("to", to.String()),
			)
		},
	})
}

func failed(err error) health.Probe {
	return health.ProbeFunc(func(_ context.Context) health.Result {
		return health.Unhealthy("client unavailable", err)
	})
}
