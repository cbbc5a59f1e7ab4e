// Package observe provides observability primitives for the health engine.
//
// It is a pure instrumentation library: tracer and meter provider setup, a
// JSON structured logger, probe and refresh metrics, and a middleware that
// wraps a single probe check with a span, counters and a log line. The
// health package consumes it; nothing here performs a probe.
package observe
