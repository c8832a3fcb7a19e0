// Package middleware provides net/http middleware for request tracing and
// structured request logging.
//
// Every middleware has the shape func(http.Handler) http.Handler, a default
// constructor and a WithConfig constructor:
//
//	h := middleware.Chain(mux,
//		middleware.RequestID(),
//		middleware.LoggingWithLogger(log),
//	)
//
// Middlewares passed to Chain run in the given order, so RequestID above
// stores the ID before Logging reads it with GetRequestID.
//
// The response writer wrapper used by Logging forwards Hijack, Flush and
// Unwrap, which keeps WebSocket upgrades and http.ResponseController working
// behind it.
package middleware
