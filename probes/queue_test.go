package probes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/Ishswami-Tech/healthops/health"
)

type fakeQueue struct {
	length     int64
	pending    int64
	lenErr     error
	pendingErr error
	pendingHit int
}

func (f *fakeQueue) XLen(context.Context, string) *redis.IntCmd {
	return redis.NewIntResult(f.length, f.lenErr)
}

func (f *fakeQueue) XPending(context.Context, string, string) *redis.XPendingCmd {
	f.pendingHit++
	if f.pendingErr != nil {
		return redis.NewXPendingResult(nil, f.pendingErr)
	}
	return redis.NewXPendingResult(&redis.XPending{Count: f.pending}, nil)
}

func TestQueue_Check(t *testing.T) {
	tests := []struct {
		name        string
		client      *fakeQueue
		config      QueueConfig
		wantStatus  health.Status
		wantPending bool
		wantDetail  string
	}{
		{
			name:       "length only",
			client:     &fakeQueue{length: 12},
			config:     QueueConfig{Stream: "jobs"},
			wantStatus: health.StatusHealthy,
			wantDetail: "connected",
		},
		{
			name:        "with group",
			client:      &fakeQueue{length: 12, pending: 3},
			config:      QueueConfig{Stream: "jobs", Group: "workers"},
			wantStatus:  health.StatusHealthy,
			wantPending: true,
			wantDetail:  "connected",
		},
		{
			name:        "backlog over limit",
			client:      &fakeQueue{length: 500, pending: 120},
			config:      QueueConfig{Stream: "jobs", Group: "workers", MaxPending: 100},
			wantStatus:  health.StatusUnhealthy,
			wantPending: true,
			wantDetail:  "backlog of 120 pending jobs exceeds 100",
		},
		{
			name:       "missing group",
			client:     &fakeQueue{pendingErr: errors.New("NOGROUP No such key")},
			config:     QueueConfig{Stream: "jobs", Group: "workers"},
			wantStatus: health.StatusUnhealthy,
			wantDetail: "NOGROUP",
		},
		{
			name:       "length failure",
			client:     &fakeQueue{lenErr: errors.New("i/o timeout")},
			config:     QueueConfig{Stream: "jobs"},
			wantStatus: health.StatusUnhealthy,
			wantDetail: "i/o timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewQueue(tt.client, nil, tt.config).Check(context.Background())

			if r.Status != tt.wantStatus {
				t.Fatalf("Status = %v, want %v (detail %q)", r.Status, tt.wantStatus, r.Detail)
			}
			if !strings.Contains(r.Detail, tt.wantDetail) {
				t.Errorf("Detail = %q, want it to contain %q", r.Detail, tt.wantDetail)
			}
			if r.Status == health.StatusHealthy && r.Metrics["length"] != float64(tt.client.length) {
				t.Errorf("length = %v, want %d", r.Metrics["length"], tt.client.length)
			}
			if _, ok := r.Metrics["pending"]; ok != tt.wantPending {
				t.Errorf("pending metric present = %v, want %v", ok, tt.wantPending)
			}
		})
	}
}

func TestQueue_SkipsPendingWithoutGroup(t *testing.T) {
	client := &fakeQueue{length: 1}
	NewQueue(client, nil, QueueConfig{Stream: "jobs"}).Check(context.Background())

	if client.pendingHit != 0 {
		t.Errorf("XPending called %d times, want 0", client.pendingHit)
	}
}

func TestQueue_BreakerOpen(t *testing.T) {
	probe := NewQueue(&fakeQueue{lenErr: errors.New("refused")}, trippingExecutor("queue"), QueueConfig{Stream: "jobs"})

	probe.Check(context.Background())
	r := probe.Check(context.Background())

	if !health.IsBreakerOpen(r) {
		t.Errorf("IsBreakerOpen() = false, error %v", r.Error)
	}
}
