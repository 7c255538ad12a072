// Package metric provides Prometheus metrics for playgate.
//
// Metrics include request counts and latency per route, credential
// verification outcomes, the storage connection state and the number of
// live real-time connections. They are exposed at GET /metrics.
package metric
