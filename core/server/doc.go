// Package server wraps net/http.Server with a split listen/serve lifecycle,
// graceful shutdown and environment-driven configuration.
//
// Listen binds the socket synchronously, so a caller can finish its own
// initialization ordering before any request is served, then Serve blocks:
//
//	srv := server.New(":8080", server.WithLogger(log))
//	if err := srv.Listen(mux); err != nil {
//		return err
//	}
//	go srv.Serve()
//	defer srv.Stop()
//
// Start combines both phases and blocks until the context is cancelled. Run
// returns an errgroup-compatible function:
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, mux))
//	return g.Wait()
package server
