package server

import "time"

// Defaults for DefaultConfig and New. Keep them in step with the envDefault
// tags on Config.
const (
	// DefaultAddr is where the pointer hub listens when SERVER_ADDR is unset.
	DefaultAddr = ":8080"

	// DefaultReadTimeout bounds reading a request, including the WebSocket
	// upgrade request. Established sockets manage their own read deadlines.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout bounds writing a plain HTTP response. Sync wait
	// routes clear it per request so a long poll can outlive it.
	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout closes keep-alive connections with no request in flight.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout caps how long Stop waits for in-flight requests.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMaxHeaderBytes limits request headers to 1 MiB.
	DefaultMaxHeaderBytes = 1 << 20
)
