// Package health aggregates the health of a service's external dependencies.
//
// Each dependency (relational store, cache, job queue, realtime transport,
// mail gateway, log sink) is an opaque Probe registered once at start-up. The
// Engine runs every probe concurrently, each raced against its own timeout,
// and reduces the results into a Snapshot whose overall status is healthy or
// degraded. A failed dependency never marks the whole service unhealthy.
//
// # Probes
//
// A Probe captures every failure in its Result and never blocks past its
// budget for long: the runner abandons it when the timeout fires and reports
// "<name> health check timeout". A panicking probe is reported as
// "probe implementation error".
//
//	reg := health.NewRegistry()
//	reg.MustRegister(health.Definition{
//	    Name:     "database",
//	    Timeout:  3 * time.Second,
//	    Critical: true,
//	    Probe:    dbProbe,
//	})
//
// # Fallback Verification
//
// A probe whose client sits behind a circuit breaker may fail only because the
// breaker is open. Setting Definition.Fallback (for example a TCPVerifier)
// lets the engine check raw reachability and upgrade such a result to healthy
// with detail "reachable, application connection pending".
//
// # Reads
//
// GetHealth serves the cached snapshot while it is younger than the freshness
// window (5s by default) and refreshes it otherwise. GetDetailedHealth always
// probes, adds development tooling probes outside production, and includes
// process identity. Neither read ever waits on an in-flight refresh.
//
//	engine := health.NewEngine(reg)
//	monitor := health.NewMonitor(engine, health.MonitorConfig{Interval: 30 * time.Second})
//	_ = monitor.Start(ctx)
//	defer monitor.Stop(context.Background())
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, engine)
package health
