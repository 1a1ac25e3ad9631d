// Package observability exposes the agent's Prometheus metrics and health
// endpoint.
//
// Metrics implements the instrumentation hooks of the mqtt and telemetry
// packages and registers everything on a private registry, so several
// instances can coexist in one test binary.
//
// Server serves two chi routes:
//
//	GET /metrics  Prometheus exposition of the private registry
//	GET /healthz  200 while the MQTT session is up, 503 otherwise
package observability
