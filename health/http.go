package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
)

// Reader is the read surface the HTTP adapters depend on. *Engine satisfies it.
type Reader interface {
	GetHealth(ctx context.Context) Snapshot
	GetDetailedHealth(ctx context.Context) DetailedSnapshot
}

// HealthResponse is the JSON and YAML form of a Snapshot.
type HealthResponse struct {
	ID               string                   `json:"id" yaml:"id"`
	Status           string                   `json:"status" yaml:"status"`
	GeneratedAt      string                   `json:"generatedAt" yaml:"generatedAt"`
	ServedAt         string                   `json:"servedAt" yaml:"servedAt"`
	Checks           map[string]CheckResponse `json:"checks" yaml:"checks"`
	System           SystemResponse           `json:"system" yaml:"system"`
	CriticalFailures []string                 `json:"criticalFailures,omitempty" yaml:"criticalFailures,omitempty"`
}

// CheckResponse is the JSON and YAML form of a single probe result.
type CheckResponse struct {
	Status         string             `json:"status" yaml:"status"`
	Detail         string             `json:"detail" yaml:"detail"`
	ResponseTimeMs int64              `json:"responseTimeMs" yaml:"responseTimeMs"`
	CheckedAt      string             `json:"checkedAt" yaml:"checkedAt"`
	Metrics        map[string]float64 `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Error          string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// SystemResponse renders SystemMetrics with human-readable figures.
type SystemResponse struct {
	UptimeSeconds float64        `json:"uptimeSeconds" yaml:"uptimeSeconds"`
	Uptime        string         `json:"uptime" yaml:"uptime"`
	Memory        MemoryResponse `json:"memory" yaml:"memory"`
	CPU           CPUResponse    `json:"cpu" yaml:"cpu"`
}

// MemoryResponse renders MemoryMetrics.
type MemoryResponse struct {
	AllocBytes     uint64 `json:"allocBytes" yaml:"allocBytes"`
	Alloc          string `json:"alloc" yaml:"alloc"`
	HeapInUseBytes uint64 `json:"heapInUseBytes" yaml:"heapInUseBytes"`
	SysBytes       uint64 `json:"sysBytes" yaml:"sysBytes"`
	Sys            string `json:"sys" yaml:"sys"`
	NumGC          uint32 `json:"numGC" yaml:"numGC"`
}

// CPUResponse renders CPUMetrics.
type CPUResponse struct {
	NumCPU     int     `json:"numCPU" yaml:"numCPU"`
	Goroutines int     `json:"goroutines" yaml:"goroutines"`
	Seconds    float64 `json:"seconds" yaml:"seconds"`
}

// DetailedResponse is the JSON and YAML form of a DetailedSnapshot.
type DetailedResponse struct {
	HealthResponse `yaml:",inline"`
	Process        ProcessResponse `json:"process" yaml:"process"`
}

// ProcessResponse renders ProcessInfo.
type ProcessResponse struct {
	PID         int    `json:"pid" yaml:"pid"`
	PPID        int    `json:"ppid" yaml:"ppid"`
	Hostname    string `json:"hostname" yaml:"hostname"`
	GoVersion   string `json:"goVersion" yaml:"goVersion"`
	Platform    string `json:"platform" yaml:"platform"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty"`
	StartedAt   string `json:"startedAt" yaml:"startedAt"`
}

// NewHealthResponse renders a snapshot.
func NewHealthResponse(s Snapshot) HealthResponse {
	checks := make(map[string]CheckResponse, len(s.Results))
	for name, result := range s.Results {
		check := CheckResponse{
			Status:         result.Status.String(),
			Detail:         result.Detail,
			ResponseTimeMs: result.ResponseTimeMs(),
			CheckedAt:      formatTime(result.CheckedAt),
			Metrics:        result.Metrics,
		}
		if result.Error != nil {
			check.Error = result.Error.Error()
		}
		checks[name] = check
	}

	return HealthResponse{
		ID:               s.ID.String(),
		Status:           s.Status.String(),
		GeneratedAt:      formatTime(s.GeneratedAt),
		ServedAt:         formatTime(s.ServedAt),
		Checks:           checks,
		System:           newSystemResponse(s.System),
		CriticalFailures: s.CriticalFailures,
	}
}

// NewDetailedResponse renders a detailed snapshot.
func NewDetailedResponse(d DetailedSnapshot) DetailedResponse {
	p := d.Process
	return DetailedResponse{
		HealthResponse: NewHealthResponse(d.Snapshot),
		Process: ProcessResponse{
			PID:         p.PID,
			PPID:        p.PPID,
			Hostname:    p.Hostname,
			GoVersion:   p.GoVersion,
			Platform:    p.GOOS + "/" + p.GOARCH,
			Version:     p.Version,
			Environment: p.Environment,
			StartedAt:   formatTime(p.StartedAt),
		},
	}
}

// SortedNames returns the check names in lexical order.
func (r HealthResponse) SortedNames() []string {
	names := make([]string, 0, len(r.Checks))
	for name := range r.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newSystemResponse(m SystemMetrics) SystemResponse {
	return SystemResponse{
		UptimeSeconds: m.Uptime.Seconds(),
		Uptime:        m.Uptime.Truncate(time.Second).String(),
		Memory: MemoryResponse{
			AllocBytes:     m.Memory.AllocBytes,
			Alloc:          humanize.IBytes(m.Memory.AllocBytes),
			HeapInUseBytes: m.Memory.HeapInUseBytes,
			SysBytes:       m.Memory.SysBytes,
			Sys:            humanize.IBytes(m.Memory.SysBytes),
			NumGC:          m.Memory.NumGC,
		},
		CPU: CPUResponse{
			NumCPU:     m.CPU.NumCPU,
			Goroutines: m.CPU.Goroutines,
			Seconds:    m.CPU.Seconds,
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the process is serving.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// HealthHandler serves the cached-preferred read. A degraded service still
// answers 200; only a dead process fails the request.
func HealthHandler(reader Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, NewHealthResponse(reader.GetHealth(r.Context())))
	}
}

// DetailedHandler serves the always-fresh read.
func DetailedHandler(reader Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, NewDetailedResponse(reader.GetDetailedHealth(r.Context())))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

// RegisterHandlers registers all health handlers on the given mux.
func RegisterHandlers(mux *http.ServeMux, reader Reader) {
	mux.HandleFunc("GET /healthz", LivenessHandler())
	mux.HandleFunc("GET /health", HealthHandler(reader))
	mux.HandleFunc("GET /health/detailed", DetailedHandler(reader))
}
