package probes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Ishswami-Tech/healthops/health"
)

// maxDrain bounds how much of a response body is read before closing.
const maxDrain = 64 << 10

// HTTP checks an HTTP endpoint with a GET.
type HTTP struct {
	client       *http.Client
	url          string
	expectStatus int
}

// NewHTTP creates an endpoint probe. expectStatus zero accepts any status
// below 400. A nil client uses a dedicated client without redirects.
func NewHTTP(url string, expectStatus int, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &HTTP{client: client, url: url, expectStatus: expectStatus}
}

// Check issues the request and compares the status code.
func (h *HTTP) Check(ctx context.Context) health.Result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return health.Unhealthy("invalid endpoint", err)
	}
	req.Header.Set("User-Agent", "healthd")

	resp, err := h.client.Do(req)
	if err != nil {
		return health.Unhealthy("", fmt.Errorf("request failed: %w", err)).
			WithResponseTime(time.Since(start))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	_ = resp.Body.Close()

	elapsed := time.Since(start)
	metrics := map[string]float64{"status_code": float64(resp.StatusCode)}

	if !h.accepts(resp.StatusCode) {
		return health.Unhealthy(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil).
			WithResponseTime(elapsed).
			WithMetrics(metrics)
	}
	return health.Healthy("reachable").
		WithResponseTime(elapsed).
		WithMetrics(metrics)
}

func (h *HTTP) accepts(code int) bool {
	if h.expectStatus != 0 {
		return code == h.expectStatus
	}
	return code < http.StatusBadRequest
}
