package probes

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Ishswami-Tech/healthops/health"
)

// LogSink checks that the log directory accepts writes.
type LogSink struct {
	dir string
}

// NewLogSink creates a log sink probe for dir.
func NewLogSink(dir string) *LogSink {
	return &LogSink{dir: dir}
}

// Check creates, writes and removes a scratch file in the directory.
func (l *LogSink) Check(ctx context.Context) health.Result {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return health.Unhealthy("", err)
	}

	if err := l.probeWrite(); err != nil {
		return health.Unhealthy("", err).WithResponseTime(time.Since(start))
	}
	return health.Healthy("writable").WithResponseTime(time.Since(start))
}

func (l *LogSink) probeWrite() error {
	f, err := os.CreateTemp(l.dir, ".healthd-probe-*")
	if err != nil {
		return fmt.Errorf("log sink not writable: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if _, err := f.WriteString("ok\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("log sink write: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("log sink close: %w", err)
	}
	return nil
}
