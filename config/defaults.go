package config

import (
	"time"

	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultEnvironment     = "development"
	DefaultInterval        = 30 * time.Second
	DefaultFreshnessWindow = 5 * time.Second
	DefaultProbeTimeout    = 5 * time.Second
	DefaultHTTPAddr        = ":8080"
	DefaultServiceName     = "healthd"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", DefaultEnvironment)
	v.SetDefault("version", "")

	v.SetDefault("monitor.interval", DefaultInterval)
	v.SetDefault("monitor.freshness_window", DefaultFreshnessWindow)
	v.SetDefault("monitor.default_timeout", DefaultProbeTimeout)

	v.SetDefault("probes.database.enabled", false)
	v.SetDefault("probes.database.timeout", 3*time.Second)
	v.SetDefault("probes.database.critical", true)
	v.SetDefault("probes.database.driver", "postgres")
	v.SetDefault("probes.database.dsn", "")

	v.SetDefault("probes.cache.enabled", false)
	v.SetDefault("probes.cache.timeout", 2*time.Second)
	v.SetDefault("probes.cache.critical", true)
	v.SetDefault("probes.cache.addr", "")
	v.SetDefault("probes.cache.password", "")
	v.SetDefault("probes.cache.db", 0)
	v.SetDefault("probes.cache.breaker.max_failures", 3)
	v.SetDefault("probes.cache.breaker.reset_timeout", 30*time.Second)
	v.SetDefault("probes.cache.command_timeout", 1500*time.Millisecond)
	v.SetDefault("probes.cache.fallback_timeout", time.Second)

	v.SetDefault("probes.queue.enabled", false)
	v.SetDefault("probes.queue.timeout", 3*time.Second)
	v.SetDefault("probes.queue.critical", false)
	v.SetDefault("probes.queue.addr", "")
	v.SetDefault("probes.queue.password", "")
	v.SetDefault("probes.queue.db", 0)
	v.SetDefault("probes.queue.breaker.max_failures", 3)
	v.SetDefault("probes.queue.breaker.reset_timeout", 30*time.Second)
	v.SetDefault("probes.queue.command_timeout", 2*time.Second)
	v.SetDefault("probes.queue.fallback_timeout", time.Second)
	v.SetDefault("probes.queue.stream", "jobs")
	v.SetDefault("probes.queue.group", "")
	v.SetDefault("probes.queue.max_pending", 0)

	v.SetDefault("probes.realtime.enabled", false)
	v.SetDefault("probes.realtime.timeout", 2*time.Second)
	v.SetDefault("probes.realtime.critical", false)
	v.SetDefault("probes.realtime.url", "")
	v.SetDefault("probes.realtime.expect_status", 0)

	v.SetDefault("probes.mail.enabled", false)
	v.SetDefault("probes.mail.timeout", 5*time.Second)
	v.SetDefault("probes.mail.critical", false)
	v.SetDefault("probes.mail.addr", "")
	v.SetDefault("probes.mail.username", "")
	v.SetDefault("probes.mail.password", "")

	v.SetDefault("probes.log_sink.enabled", false)
	v.SetDefault("probes.log_sink.timeout", time.Second)
	v.SetDefault("probes.log_sink.critical", false)
	v.SetDefault("probes.log_sink.dir", "")

	v.SetDefault("http.addr", DefaultHTTPAddr)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("observe.service_name", DefaultServiceName)
	v.SetDefault("observe.tracing.enabled", false)
	v.SetDefault("observe.tracing.exporter", "none")
	v.SetDefault("observe.tracing.sample_pct", 1.0)
	v.SetDefault("observe.tracing.endpoint", "")
	v.SetDefault("observe.tracing.insecure", false)
	v.SetDefault("observe.metrics.enabled", false)
	v.SetDefault("observe.metrics.exporter", "none")
	v.SetDefault("observe.metrics.endpoint", "")
	v.SetDefault("observe.metrics.insecure", false)
	v.SetDefault("observe.logging.enabled", true)
	v.SetDefault("observe.logging.level", "info")
}
