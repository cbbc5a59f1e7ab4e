package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "healthops.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Environment != DefaultEnvironment {
		t.Errorf("Environment = %q, want %q", cfg.Environment, DefaultEnvironment)
	}
	want := Monitor{
		Interval:        DefaultInterval,
		FreshnessWindow: DefaultFreshnessWindow,
		DefaultTimeout:  DefaultProbeTimeout,
	}
	if diff := cmp.Diff(want, cfg.Monitor); diff != "" {
		t.Errorf("Monitor mismatch (-want +got):\n%s", diff)
	}
	if cfg.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, DefaultHTTPAddr)
	}
	if cfg.Probes.Database.Enabled {
		t.Error("database probe enabled by default")
	}
	if !cfg.Probes.Database.Critical {
		t.Error("database probe should default to critical")
	}
	if cfg.Probes.Queue.Stream != "jobs" {
		t.Errorf("Queue.Stream = %q, want jobs", cfg.Probes.Queue.Stream)
	}
	if cfg.Observe.ServiceName != DefaultServiceName {
		t.Errorf("Observe.ServiceName = %q", cfg.Observe.ServiceName)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
environment: production
version: 1.4.2
monitor:
  interval: 10s
  freshness_window: 2s
probes:
  database:
    enabled: true
    driver: sqlite
    dsn: "file::memory:"
    timeout: 750ms
  cache:
    enabled: true
    addr: localhost:6379
    breaker:
      max_failures: 2
  dev_tools:
    - name: mailhog
      url: http://localhost:8025
http:
  addr: 127.0.0.1:9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Environment != "production" || cfg.Version != "1.4.2" {
		t.Errorf("Environment/Version = %q/%q", cfg.Environment, cfg.Version)
	}
	if cfg.Monitor.Interval != 10*time.Second {
		t.Errorf("Interval = %v, want 10s", cfg.Monitor.Interval)
	}
	if cfg.Monitor.DefaultTimeout != DefaultProbeTimeout {
		t.Errorf("DefaultTimeout = %v, want default", cfg.Monitor.DefaultTimeout)
	}

	db := cfg.Probes.Database
	if !db.Enabled || db.Driver != "sqlite" || db.Timeout != 750*time.Millisecond {
		t.Errorf("Database = %+v", db)
	}
	if cfg.Probes.Cache.Breaker.MaxFailures != 2 {
		t.Errorf("Cache.Breaker.MaxFailures = %d, want 2", cfg.Probes.Cache.Breaker.MaxFailures)
	}
	if cfg.Probes.Cache.Breaker.ResetTimeout != 30*time.Second {
		t.Errorf("Cache.Breaker.ResetTimeout = %v, want default", cfg.Probes.Cache.Breaker.ResetTimeout)
	}
	if len(cfg.Probes.DevTools) != 1 || cfg.Probes.DevTools[0].Name != "mailhog" {
		t.Errorf("DevTools = %+v", cfg.Probes.DevTools)
	}
	if cfg.HTTP.Addr != "127.0.0.1:9090" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "monitor:\n  interval: 10s\n")
	t.Setenv("HEALTHOPS_MONITOR_INTERVAL", "45s")
	t.Setenv("HEALTHOPS_ENVIRONMENT", "staging")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Monitor.Interval != 45*time.Second {
		t.Errorf("Interval = %v, want 45s", cfg.Monitor.Interval)
	}
	if cfg.Environment != "staging" {
		t.Errorf("Environment = %q, want staging", cfg.Environment)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, ErrReadConfig) {
		t.Fatalf("Load() error = %v, want ErrReadConfig", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "monitor:\n  interval: 0s\n")

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func validConfig() Config {
	return Config{
		Environment: DefaultEnvironment,
		Monitor: Monitor{
			Interval:        DefaultInterval,
			FreshnessWindow: DefaultFreshnessWindow,
			DefaultTimeout:  DefaultProbeTimeout,
		},
		HTTP: HTTP{Addr: DefaultHTTPAddr},
		Observe: Observe{
			ServiceName: DefaultServiceName,
			Logging:     ObserveLogging{Enabled: true, Level: "info"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Monitor.Interval = 0 },
			wantErr: "monitor.interval",
		},
		{
			name:    "negative freshness",
			mutate:  func(c *Config) { c.Monitor.FreshnessWindow = -time.Second },
			wantErr: "monitor.freshness_window",
		},
		{
			name:    "zero default timeout",
			mutate:  func(c *Config) { c.Monitor.DefaultTimeout = 0 },
			wantErr: "monitor.default_timeout",
		},
		{
			name: "freshness beyond interval",
			mutate: func(c *Config) {
				c.Monitor.Interval = time.Second
				c.Monitor.FreshnessWindow = 11 * time.Second
			},
			wantErr: "exceeds",
		},
		{
			name:    "empty http addr",
			mutate:  func(c *Config) { c.HTTP.Addr = "" },
			wantErr: "http.addr",
		},
		{
			name: "database without dsn",
			mutate: func(c *Config) {
				c.Probes.Database.Enabled = true
				c.Probes.Database.Driver = "postgres"
			},
			wantErr: "probes.database",
		},
		{
			name: "database with unknown driver",
			mutate: func(c *Config) {
				c.Probes.Database = Database{Probe: Probe{Enabled: true}, Driver: "oracle", DSN: "x"}
			},
			wantErr: "probes.database",
		},
		{
			name:   "disabled probe needs nothing",
			mutate: func(c *Config) { c.Probes.Mail.Enabled = false },
		},
		{
			name:    "queue without stream",
			mutate:  func(c *Config) { c.Probes.Queue.Enabled = true; c.Probes.Queue.Addr = "localhost:6379" },
			wantErr: "probes.queue",
		},
		{
			name:    "negative probe timeout",
			mutate:  func(c *Config) { c.Probes.Cache.Timeout = -1 },
			wantErr: "probes.cache.timeout",
		},
		{
			name: "dev tool without url",
			mutate: func(c *Config) {
				c.Probes.DevTools = []Endpoint{{Name: "adminer"}}
			},
			wantErr: "dev_tools[0]",
		},
		{
			name: "duplicate dev tool",
			mutate: func(c *Config) {
				c.Probes.DevTools = []Endpoint{
					{Name: "adminer", URL: "http://a"},
					{Name: "adminer", URL: "http://b"},
				}
			},
			wantErr: "duplicates",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Observe.Logging.Level = "verbose" },
			wantErr: "observe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestObserveConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Version = "2.0.0"
	cfg.Observe.Metrics = ObserveMetrics{Enabled: true, Exporter: "prometheus"}

	oc := cfg.ObserveConfig()
	if oc.ServiceName != DefaultServiceName || oc.Version != "2.0.0" || oc.Environment != DefaultEnvironment {
		t.Errorf("ObserveConfig() identity = %q/%q/%q", oc.ServiceName, oc.Version, oc.Environment)
	}
	if !oc.Metrics.Enabled || oc.Metrics.Exporter != "prometheus" {
		t.Errorf("ObserveConfig().Metrics = %+v", oc.Metrics)
	}
	if err := oc.Validate(); err != nil {
		t.Errorf("ObserveConfig().Validate() error = %v", err)
	}
}

func TestResolveSecrets(t *testing.T) {
	t.Setenv("CACHE_PASSWORD", "hunter2")
	t.Setenv("DB_HOST", "db.internal")

	secretsDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(secretsDir, "smtp"), []byte("mailpw\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := validConfig()
	cfg.Secrets = map[string]map[string]any{"file": {"dir": secretsDir}}
	cfg.Probes.Cache.Password = "secretref:env:CACHE_PASSWORD"
	cfg.Probes.Database.DSN = "postgres://app@${DB_HOST}/clinic"
	cfg.Probes.Mail.Password = "secretref:file:smtp"
	cfg.Probes.DevTools = []Endpoint{{Name: "adminer", URL: "http://${DB_HOST}:8080"}}

	if err := cfg.ResolveSecrets(context.Background()); err != nil {
		t.Fatalf("ResolveSecrets() error = %v", err)
	}

	if cfg.Probes.Cache.Password != "hunter2" {
		t.Errorf("Cache.Password = %q", cfg.Probes.Cache.Password)
	}
	if cfg.Probes.Database.DSN != "postgres://app@db.internal/clinic" {
		t.Errorf("Database.DSN = %q", cfg.Probes.Database.DSN)
	}
	if cfg.Probes.Mail.Password != "mailpw" {
		t.Errorf("Mail.Password = %q", cfg.Probes.Mail.Password)
	}
	if cfg.Probes.DevTools[0].URL != "http://db.internal:8080" {
		t.Errorf("DevTools[0].URL = %q", cfg.Probes.DevTools[0].URL)
	}
}

func TestResolveSecrets_Missing(t *testing.T) {
	cfg := validConfig()
	cfg.Probes.Cache.Password = "secretref:env:HEALTHOPS_TEST_UNSET_SECRET"

	err := cfg.ResolveSecrets(context.Background())
	if !errors.Is(err, ErrSecret) {
		t.Fatalf("ResolveSecrets() error = %v, want ErrSecret", err)
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Error("error leaks a secret value")
	}
}

func TestRedacted(t *testing.T) {
	cfg := validConfig()
	cfg.Probes.Database.DSN = "postgres://app:pw@db/clinic"
	cfg.Probes.Cache.Password = "secretref:env:CACHE_PASSWORD"
	cfg.Secrets = map[string]map[string]any{"env": {"prefix": "X_"}}

	r := cfg.Redacted()
	if r.Probes.Database.DSN != redacted {
		t.Errorf("DSN = %q, want redacted", r.Probes.Database.DSN)
	}
	if r.Probes.Cache.Password != "secretref:env:CACHE_PASSWORD" {
		t.Errorf("unresolved reference should be kept, got %q", r.Probes.Cache.Password)
	}
	if r.Secrets != nil {
		t.Error("Secrets should be dropped")
	}
	if cfg.Probes.Database.DSN == redacted {
		t.Error("Redacted() modified the receiver")
	}
}
