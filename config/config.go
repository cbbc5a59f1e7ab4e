// Package config loads healthd configuration with viper.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// YAML file, and HEALTHOPS_* environment variables (dots become underscores,
// so monitor.interval is HEALTHOPS_MONITOR_INTERVAL).
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Ishswami-Tech/healthops/observe"
	"github.com/Ishswami-Tech/healthops/secret"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HEALTHOPS"

// Config is the full healthd configuration.
type Config struct {
	Environment string  `mapstructure:"environment" yaml:"environment"`
	Version     string  `mapstructure:"version" yaml:"version"`
	Monitor     Monitor `mapstructure:"monitor" yaml:"monitor"`
	Probes      Probes  `mapstructure:"probes" yaml:"probes"`
	HTTP        HTTP    `mapstructure:"http" yaml:"http"`
	Observe     Observe `mapstructure:"observe" yaml:"observe"`

	// Secrets configures secret providers by name, e.g. secrets.env.prefix.
	Secrets map[string]map[string]any `mapstructure:"secrets" yaml:"secrets,omitempty"`
}

// Monitor configures the background refresh loop and the snapshot cache.
type Monitor struct {
	Interval        time.Duration `mapstructure:"interval" yaml:"interval"`
	FreshnessWindow time.Duration `mapstructure:"freshness_window" yaml:"freshness_window"`
	DefaultTimeout  time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
}

// Probe holds the settings every probe shares.
type Probe struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Critical bool          `mapstructure:"critical" yaml:"critical"`
}

// Probes configures one probe per dependency.
type Probes struct {
	Database Database   `mapstructure:"database" yaml:"database"`
	Cache    Redis      `mapstructure:"cache" yaml:"cache"`
	Queue    Queue      `mapstructure:"queue" yaml:"queue"`
	Realtime Endpoint   `mapstructure:"realtime" yaml:"realtime"`
	Mail     Mail       `mapstructure:"mail" yaml:"mail"`
	LogSink  LogSink    `mapstructure:"log_sink" yaml:"log_sink"`
	DevTools []Endpoint `mapstructure:"dev_tools" yaml:"dev_tools,omitempty"`
}

// Database configures the relational store probe.
type Database struct {
	Probe  `mapstructure:",squash" yaml:",inline"`
	Driver string `mapstructure:"driver" yaml:"driver"` // postgres|mysql|sqlite
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

// Breaker configures a client-side circuit breaker.
type Breaker struct {
	MaxFailures  int           `mapstructure:"max_failures" yaml:"max_failures"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout" yaml:"reset_timeout"`
}

// Redis configures a key-value cache connection.
type Redis struct {
	Probe           `mapstructure:",squash" yaml:",inline"`
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	Password        string        `mapstructure:"password" yaml:"password"`
	DB              int           `mapstructure:"db" yaml:"db"`
	Breaker         Breaker       `mapstructure:"breaker" yaml:"breaker"`
	CommandTimeout  time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
	FallbackTimeout time.Duration `mapstructure:"fallback_timeout" yaml:"fallback_timeout"`
}

// Queue configures the job queue probe, a redis stream.
type Queue struct {
	Redis      `mapstructure:",squash" yaml:",inline"`
	Stream     string `mapstructure:"stream" yaml:"stream"`
	Group      string `mapstructure:"group" yaml:"group"`
	MaxPending int64  `mapstructure:"max_pending" yaml:"max_pending"`
}

// Endpoint configures an HTTP reachability probe.
type Endpoint struct {
	Probe        `mapstructure:",squash" yaml:",inline"`
	Name         string `mapstructure:"name" yaml:"name,omitempty"`
	URL          string `mapstructure:"url" yaml:"url"`
	ExpectStatus int    `mapstructure:"expect_status" yaml:"expect_status"`
}

// Mail configures the outbound mail gateway probe.
type Mail struct {
	Probe    `mapstructure:",squash" yaml:",inline"`
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

// LogSink configures the logging sink probe.
type LogSink struct {
	Probe `mapstructure:",squash" yaml:",inline"`
	Dir   string `mapstructure:"dir" yaml:"dir"`
}

// HTTP configures the health server.
type HTTP struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Observe configures telemetry.
type Observe struct {
	ServiceName string         `mapstructure:"service_name" yaml:"service_name"`
	Tracing     ObserveTracing `mapstructure:"tracing" yaml:"tracing"`
	Metrics     ObserveMetrics `mapstructure:"metrics" yaml:"metrics"`
	Logging     ObserveLogging `mapstructure:"logging" yaml:"logging"`
}

// ObserveTracing configures span export.
type ObserveTracing struct {
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
	Exporter  string  `mapstructure:"exporter" yaml:"exporter"`
	SamplePct float64 `mapstructure:"sample_pct" yaml:"sample_pct"`
	Endpoint  string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure  bool    `mapstructure:"insecure" yaml:"insecure"`
}

// ObserveMetrics configures metric export.
type ObserveMetrics struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Exporter string `mapstructure:"exporter" yaml:"exporter"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`
}

// ObserveLogging configures the structured logger.
type ObserveLogging struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Level   string `mapstructure:"level" yaml:"level"`
}

// ObserveConfig converts the telemetry section to observe.Config.
func (c *Config) ObserveConfig() observe.Config {
	o := c.Observe
	return observe.Config{
		ServiceName: o.ServiceName,
		Version:     c.Version,
		Environment: c.Environment,
		Tracing: observe.TracingConfig{
			Enabled:   o.Tracing.Enabled,
			Exporter:  o.Tracing.Exporter,
			SamplePct: o.Tracing.SamplePct,
			Endpoint:  o.Tracing.Endpoint,
			Insecure:  o.Tracing.Insecure,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.Metrics.Enabled,
			Exporter: o.Metrics.Exporter,
			Endpoint: o.Metrics.Endpoint,
			Insecure: o.Metrics.Insecure,
		},
		Logging: observe.LoggingConfig{
			Enabled: o.Logging.Enabled,
			Level:   o.Logging.Level,
		},
	}
}

// Load reads configuration. An empty path searches ./healthops.yaml and
// /etc/healthops/healthops.yaml and tolerates neither existing; an explicit
// path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
		}
	} else {
		v.SetConfigName("healthops")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/healthops")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveSecrets replaces secret references and ${VAR} expansions in every
// credential-bearing field, using the providers in secret.DefaultRegistry.
func (c *Config) ResolveSecrets(ctx context.Context) error {
	resolver, err := secret.DefaultRegistry.Resolver(true, c.Secrets)
	if err != nil {
		return err
	}
	defer func() { _ = resolver.Close() }()

	p := &c.Probes
	fields := map[string]*string{
		"probes.database.dsn":      &p.Database.DSN,
		"probes.cache.addr":        &p.Cache.Addr,
		"probes.cache.password":    &p.Cache.Password,
		"probes.queue.addr":        &p.Queue.Addr,
		"probes.queue.password":    &p.Queue.Password,
		"probes.realtime.url":      &p.Realtime.URL,
		"probes.mail.addr":         &p.Mail.Addr,
		"probes.mail.username":     &p.Mail.Username,
		"probes.mail.password":     &p.Mail.Password,
		"observe.tracing.endpoint": &c.Observe.Tracing.Endpoint,
		"observe.metrics.endpoint": &c.Observe.Metrics.Endpoint,
	}
	for i := range p.DevTools {
		fields[fmt.Sprintf("probes.dev_tools[%d].url", i)] = &p.DevTools[i].URL
	}

	if err := resolver.ResolveFields(ctx, fields); err != nil {
		return fmt.Errorf("%w: %w", ErrSecret, err)
	}
	return nil
}

const redacted = "[REDACTED]"

// Redacted returns a copy safe to print: credentials are masked unless they
// are still unresolved references.
func (c *Config) Redacted() Config {
	r := *c
	mask := func(s *string) {
		if *s != "" && !secret.IsSecretRef(*s) {
			*s = redacted
		}
	}

	mask(&r.Probes.Database.DSN)
	mask(&r.Probes.Cache.Password)
	mask(&r.Probes.Queue.Password)
	mask(&r.Probes.Mail.Password)
	r.Secrets = nil
	return r
}
