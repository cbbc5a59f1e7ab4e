package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_IncludesProbeFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.WithProbe(ProbeMeta{Name: "cache", Kind: "redis", Critical: true}).
		Info(context.Background(), "probe healthy")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]

	if entry["probe.name"] != "cache" {
		t.Errorf("probe.name = %v, want cache", entry["probe.name"])
	}
	if entry["probe.kind"] != "redis" {
		t.Errorf("probe.kind = %v, want redis", entry["probe.kind"])
	}
	if entry["probe.critical"] != true {
		t.Errorf("probe.critical = %v, want true", entry["probe.critical"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["msg"] != "probe healthy" {
		t.Errorf("msg = %v, want 'probe healthy'", entry["msg"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["level"] != "warn" || entries[1]["level"] != "error" {
		t.Errorf("levels = %v, %v, want warn, error", entries[0]["level"], entries[1]["level"])
	}
}

func TestLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	logger.With(F("dsn", "postgres://user:pw@db/clinic")).
		Info(context.Background(), "opening store", F("password", "hunter2"), F("host", "db"))

	entry := decodeLines(t, &buf)[0]
	if entry["dsn"] != "[REDACTED]" {
		t.Errorf("dsn = %v, want [REDACTED]", entry["dsn"])
	}
	if entry["password"] != "[REDACTED]" {
		t.Errorf("password = %v, want [REDACTED]", entry["password"])
	}
	if entry["host"] != "db" {
		t.Errorf("host = %v, want db", entry["host"])
	}
}

func TestLogger_ErrorValuesAreStrings(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Error(context.Background(), "refresh panicked", F("error", errors.New("boom")))

	entry := decodeLines(t, &buf)[0]
	if entry["error"] != "boom" {
		t.Errorf("error = %v, want boom", entry["error"])
	}
}

func TestLogger_ConcurrentWritesStayLineDelimited(t *testing.T) {
	var buf bytes.Buffer
	root := NewLoggerWithWriter("info", &buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			root.WithProbe(ProbeMeta{Name: "p"}).Info(context.Background(), "line", F("i", i))
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 20 {
		t.Errorf("entries = %d, want 20", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Info(context.Background(), "ignored")

	if logger.WithProbe(ProbeMeta{Name: "x"}) == nil {
		t.Error("WithProbe() = nil")
	}
	if logger.With(F("k", "v")) == nil {
		t.Error("With() = nil")
	}
}
