package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestHealthy(t *testing.T) {
	r := Healthy("connected")

	if r.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", r.Status)
	}
	if r.Detail != "connected" {
		t.Errorf("Detail = %q, want connected", r.Detail)
	}
	if r.CheckedAt.IsZero() {
		t.Error("CheckedAt should be set")
	}
}

func TestUnhealthy_DetailFromError(t *testing.T) {
	err := errors.New("connection refused")
	r := Unhealthy("", err)

	if r.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", r.Status)
	}
	if r.Detail != "connection refused" {
		t.Errorf("Detail = %q, want error text", r.Detail)
	}
	if r.Error != err {
		t.Errorf("Error = %v, want %v", r.Error, err)
	}
}

func TestResult_WithMetricsCopies(t *testing.T) {
	m := map[string]float64{"open_connections": 3}
	r := Healthy("ok").WithMetrics(m)
	m["open_connections"] = 99

	if r.Metrics["open_connections"] != 3 {
		t.Errorf("Metrics[open_connections] = %v, want 3", r.Metrics["open_connections"])
	}
}

func TestResult_ResponseTimeMs(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int64
	}{
		{0, 0},
		{-time.Second, 0},
		{1500 * time.Microsecond, 1},
		{3 * time.Second, 3000},
	}

	for _, tt := range tests {
		if got := Healthy("").WithResponseTime(tt.d).ResponseTimeMs(); got != tt.want {
			t.Errorf("ResponseTimeMs(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestResult_Err(t *testing.T) {
	if err := Healthy("ok").err(); err != nil {
		t.Errorf("healthy err() = %v, want nil", err)
	}
	if err := Unhealthy("refused", nil).err(); err == nil || err.Error() != "refused" {
		t.Errorf("unhealthy err() = %v, want refused", err)
	}
	sentinel := errors.New("boom")
	if err := Unhealthy("x", sentinel).err(); err != sentinel {
		t.Errorf("err() = %v, want %v", err, sentinel)
	}
}

func TestNotConfigured(t *testing.T) {
	r := NotConfigured("mail").Check(context.Background())

	if r.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", r.Status)
	}
	if r.Detail != "not configured" {
		t.Errorf("Detail = %q, want 'not configured'", r.Detail)
	}
	if !errors.Is(r.Error, ErrNotConfigured) {
		t.Errorf("Error = %v, want ErrNotConfigured", r.Error)
	}
}

func TestProbeFunc(t *testing.T) {
	called := false
	p := ProbeFunc(func(ctx context.Context) Result {
		called = true
		return Healthy("ok")
	})

	if r := p.Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", r.Status)
	}
	if !called {
		t.Error("function was not called")
	}
}
