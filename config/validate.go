package config

import (
	"fmt"
	"slices"
)

// Drivers lists the supported database drivers.
var Drivers = []string{"postgres", "mysql", "sqlite"}

// maxFreshnessIntervals caps the freshness window relative to the monitor
// interval; a window far beyond the interval would serve data the monitor
// has long since replaced.
const maxFreshnessIntervals = 10

// Validate checks the configuration.
func (c *Config) Validate() error {
	m := c.Monitor
	switch {
	case m.Interval <= 0:
		return invalid("monitor.interval must be positive, got %v", m.Interval)
	case m.FreshnessWindow <= 0:
		return invalid("monitor.freshness_window must be positive, got %v", m.FreshnessWindow)
	case m.DefaultTimeout <= 0:
		return invalid("monitor.default_timeout must be positive, got %v", m.DefaultTimeout)
	case m.FreshnessWindow > m.Interval*maxFreshnessIntervals:
		return invalid("monitor.freshness_window %v exceeds %dx monitor.interval", m.FreshnessWindow, maxFreshnessIntervals)
	}

	if c.HTTP.Addr == "" {
		return invalid("http.addr is required")
	}

	if err := c.Probes.validate(); err != nil {
		return err
	}

	oc := c.ObserveConfig()
	if err := oc.Validate(); err != nil {
		return fmt.Errorf("%w: observe: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (p *Probes) validate() error {
	checks := []struct {
		name  string
		probe Probe
		ok    bool
		need  string
	}{
		{"database", p.Database.Probe, p.Database.DSN != "" && slices.Contains(Drivers, p.Database.Driver), "a dsn and driver postgres|mysql|sqlite"},
		{"cache", p.Cache.Probe, p.Cache.Addr != "", "an addr"},
		{"queue", p.Queue.Probe, p.Queue.Addr != "" && p.Queue.Stream != "", "an addr and stream"},
		{"realtime", p.Realtime.Probe, p.Realtime.URL != "", "a url"},
		{"mail", p.Mail.Probe, p.Mail.Addr != "", "an addr"},
		{"log_sink", p.LogSink.Probe, p.LogSink.Dir != "", "a dir"},
	}

	for _, c := range checks {
		if c.probe.Timeout < 0 {
			return invalid("probes.%s.timeout must not be negative", c.name)
		}
		if c.probe.Enabled && !c.ok {
			return invalid("probes.%s is enabled but lacks %s", c.name, c.need)
		}
	}

	for name, r := range map[string]Redis{"cache": p.Cache, "queue": p.Queue.Redis} {
		if r.CommandTimeout < 0 || r.FallbackTimeout < 0 {
			return invalid("probes.%s timeouts must not be negative", name)
		}
	}

	seen := make(map[string]struct{}, len(p.DevTools))
	for i, d := range p.DevTools {
		if d.Name == "" || d.URL == "" {
			return invalid("probes.dev_tools[%d] needs a name and url", i)
		}
		if _, dup := seen[d.Name]; dup {
			return invalid("probes.dev_tools[%d] duplicates name %q", i, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
