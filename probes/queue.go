package probes

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ishswami-Tech/healthops/health"
	"github.com/Ishswami-Tech/healthops/resilience"
)

// QueueClient is the part of *redis.Client the queue probe uses.
type QueueClient interface {
	XLen(ctx context.Context, stream string) *redis.IntCmd
	XPending(ctx context.Context, stream, group string) *redis.XPendingCmd
}

// QueueConfig configures a Queue probe.
type QueueConfig struct {
	// Stream is the job stream key.
	Stream string

	// Group is the consumer group whose backlog is reported. Empty skips
	// the pending count.
	Group string

	// MaxPending marks the queue unhealthy when the group backlog exceeds
	// it. Zero disables the limit.
	MaxPending int64
}

// Queue checks a redis-stream job queue.
type Queue struct {
	client QueueClient
	exec   *resilience.Executor
	config QueueConfig
}

// NewQueue creates a queue probe. A nil exec sends every call through.
func NewQueue(client QueueClient, exec *resilience.Executor, config QueueConfig) *Queue {
	return &Queue{client: client, exec: exec, config: config}
}

// Check reads the stream length and, with a group configured, its pending
// backlog.
func (q *Queue) Check(ctx context.Context) health.Result {
	start := time.Now()

	var length, pending int64
	err := guard(ctx, q.exec, "queue", func(ctx context.Context) error {
		var err error
		if length, err = q.client.XLen(ctx, q.config.Stream).Result(); err != nil {
			return err
		}
		if q.config.Group == "" {
			return nil
		}
		p, err := q.client.XPending(ctx, q.config.Stream, q.config.Group).Result()
		if err != nil {
			return err
		}
		pending = p.Count
		return nil
	})
	if err != nil {
		return health.Unhealthy("", err).WithResponseTime(time.Since(start))
	}

	metrics := map[string]float64{"length": float64(length)}
	if q.config.Group != "" {
		metrics["pending"] = float64(pending)
	}

	if q.config.MaxPending > 0 && pending > q.config.MaxPending {
		detail := fmt.Sprintf("backlog of %d pending jobs exceeds %d", pending, q.config.MaxPending)
		return health.Unhealthy(detail, nil).
			WithResponseTime(time.Since(start)).
			WithMetrics(metrics)
	}

	return health.Healthy("connected").
		WithResponseTime(time.Since(start)).
		WithMetrics(metrics)
}
