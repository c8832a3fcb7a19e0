// Package realtime assembles the pointer collaboration server: a connection
// registry, a broadcast router and a sync bridge behind one HTTP server.
//
// Routes:
//
//	GET /ws                 WebSocket endpoint for clients
//	GET /health             {"status","clients"}
//	GET /health/live        liveness probe
//	GET /sync/...           test-synchronization API (SYNC_API_ENABLED, SYNC_API_PREFIX)
//
// Lifecycle:
//
//	app, err := realtime.NewApp(realtime.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(app.Run(ctx))
//	return g.Wait()
//
// Start builds the core before binding the listener. Stop fails with
// ErrNotStarted until Start has completed; it releases every pending wait
// with domain.ErrServerStopped, closes every client channel and then shuts
// the HTTP server down.
package realtime
