// Package server wires the assistant together and serves its operational
// endpoints.
//
// # Key Components
//
// ServerContext builds the planner, the dispatcher and the request pipeline
// from the configuration and owns their lifetime.
//
// GoogleClients creates the Calendar, Gmail and Tasks clients of an account
// on first use and caches them. The provider types it hands to the
// dispatcher resolve the client on every call, so a token saved while the
// server runs is picked up without a restart.
//
// MetricsServer exposes Prometheus metrics and, when given a HealthChecker,
// the /healthz, /readyz and /healthz/detailed probes on a dedicated port.
package server
