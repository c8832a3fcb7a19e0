// Package health provides HTTP handlers for service health monitoring.
//
// Handlers:
//   - Liveness: Process is running (no dependency checks)
//   - Readiness: All dependencies are available
//   - Status: JSON status with the number of connected clients
//
// Usage:
//
//	mux.Handle("GET /health", handler.Adapt(
//		health.Status(log, registry.Len, app.Ready),
//		response.JSONErrorHandler,
//	))
//	mux.Handle("GET /health/live", handler.Adapt(health.Liveness, response.JSONErrorHandler))
//
// Dependency checks must follow func(context.Context) error signature.
package health
