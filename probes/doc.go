// Package probes adapts concrete dependency clients to health.Probe.
//
// Each probe does the cheapest meaningful round trip to its dependency and
// reports pool or backlog figures in Result.Metrics. Probes honor the
// deadline carried by ctx and never block past it.
//
// Build turns a config.Config into the base and development registries the
// engine consumes.
package probes
