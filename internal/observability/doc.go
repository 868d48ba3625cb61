// Package observability provides structured logging and metrics
// for the model access service.
//
// This package implements:
//   - Structured logging (zap-based) in JSON or console form
//   - Prometheus metrics on a dedicated registry
//   - The tracer name used for OpenTelemetry spans
//
// The listing path, the enrichment worker and the policy reloader are
// instrumented through the Metrics type.
package observability
