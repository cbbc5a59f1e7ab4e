package probes

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ishswami-Tech/healthops/health"
	"github.com/Ishswami-Tech/healthops/resilience"
)

// RedisClient is the part of *redis.Client the cache probe uses.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	PoolStats() *redis.PoolStats
}

// Redis checks a key-value cache with PING.
type Redis struct {
	client RedisClient
	exec   *resilience.Executor
}

// NewRedis creates a cache probe. exec usually carries the client's circuit
// breaker and a per-command timeout; nil sends every ping straight through.
func NewRedis(client RedisClient, exec *resilience.Executor) *Redis {
	return &Redis{client: client, exec: exec}
}

// Check pings the server. While the breaker is open it fails immediately
// with resilience.ErrCircuitOpen, which lets a fallback verifier decide
// whether the server itself is reachable.
func (r *Redis) Check(ctx context.Context) health.Result {
	start := time.Now()

	err := guard(ctx, r.exec, "cache", func(ctx context.Context) error {
		return r.client.Ping(ctx).Err()
	})
	if err != nil {
		return health.Unhealthy("", err).WithResponseTime(time.Since(start))
	}

	stats := r.client.PoolStats()
	return health.Healthy("connected").
		WithResponseTime(time.Since(start)).
		WithMetrics(map[string]float64{
			"hits":        float64(stats.Hits),
			"misses":      float64(stats.Misses),
			"timeouts":    float64(stats.Timeouts),
			"total_conns": float64(stats.TotalConns),
			"idle_conns":  float64(stats.IdleConns),
			"stale_conns": float64(stats.StaleConns),
		})
}

// guard runs op through exec, or directly when exec is nil. Failures carry a
// typed breaker verdict either way.
func guard(ctx context.Context, exec *resilience.Executor, dependency string, op func(context.Context) error) error {
	if exec == nil {
		return resilience.AsConnectionError(dependency, op(ctx))
	}
	return resilience.AsConnectionError(dependency, exec.Execute(ctx, op))
}
