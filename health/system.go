package health

import (
	"os"
	"runtime"
	"runtime/metrics"
	"time"
)

// processStart approximates the process start time.
var processStart = time.Now()

// SystemMetrics is the process snapshot attached to every aggregate.
type SystemMetrics struct {
	Uptime time.Duration
	Memory MemoryMetrics
	CPU    CPUMetrics
}

// MemoryMetrics are heap figures from runtime.MemStats.
type MemoryMetrics struct {
	AllocBytes     uint64
	HeapInUseBytes uint64
	SysBytes       uint64
	NumGC          uint32
}

// CPUMetrics are scheduler and CPU time figures.
type CPUMetrics struct {
	NumCPU     int
	Goroutines int
	// Seconds is cumulative CPU time used by the process, when the runtime
	// reports it.
	Seconds float64
}

// SystemCollector samples process metrics. Collect is called synchronously
// while a snapshot is aggregated.
type SystemCollector interface {
	Collect() SystemMetrics
}

// SystemCollectorFunc is an adapter to allow ordinary functions to be used as
// SystemCollectors.
type SystemCollectorFunc func() SystemMetrics

// Collect calls f().
func (f SystemCollectorFunc) Collect() SystemMetrics {
	return f()
}

// RuntimeCollector collects metrics from the Go runtime.
type RuntimeCollector struct {
	startedAt time.Time
	now       func() time.Time
}

// NewRuntimeCollector creates a collector measuring uptime from startedAt.
// A zero startedAt means the process start.
func NewRuntimeCollector(startedAt time.Time) *RuntimeCollector {
	if startedAt.IsZero() {
		startedAt = processStart
	}
	return &RuntimeCollector{startedAt: startedAt, now: time.Now}
}

const cpuSecondsMetric = "/cpu/classes/total:cpu-seconds"

// Collect samples the runtime.
func (c *RuntimeCollector) Collect() SystemMetrics {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	sample := []metrics.Sample{{Name: cpuSecondsMetric}}
	metrics.Read(sample)
	var cpuSeconds float64
	if sample[0].Value.Kind() == metrics.KindFloat64 {
		cpuSeconds = sample[0].Value.Float64()
	}

	return SystemMetrics{
		Uptime: c.now().Sub(c.startedAt),
		Memory: MemoryMetrics{
			AllocBytes:     stats.Alloc,
			HeapInUseBytes: stats.HeapInuse,
			SysBytes:       stats.Sys,
			NumGC:          stats.NumGC,
		},
		CPU: CPUMetrics{
			NumCPU:     runtime.NumCPU(),
			Goroutines: runtime.NumGoroutine(),
			Seconds:    cpuSeconds,
		},
	}
}

// ProcessInfo identifies the running process for detailed reads.
type ProcessInfo struct {
	PID         int
	PPID        int
	Hostname    string
	GoVersion   string
	GOOS        string
	GOARCH      string
	Version     string
	Environment string
	StartedAt   time.Time
}

// CurrentProcess describes the running process.
func CurrentProcess(version, environment string) ProcessInfo {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return ProcessInfo{
		PID:         os.Getpid(),
		PPID:        os.Getppid(),
		Hostname:    hostname,
		GoVersion:   runtime.Version(),
		GOOS:        runtime.GOOS,
		GOARCH:      runtime.GOARCH,
		Version:     version,
		Environment: environment,
		StartedAt:   processStart,
	}
}
