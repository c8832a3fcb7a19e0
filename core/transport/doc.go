// Package transport implements the client channel over WebSocket.
//
// Handler upgrades a request, assigns the connection a UUID and drives it
// with a read pump and a write pump. Each connection is exposed to the rest
// of the server as a domain.Channel, and its lifecycle is reported through a
// Dispatcher:
//
//	seq := transport.NewSequencer()
//	mux.Handle("GET /ws", transport.Handler(dispatcher,
//		transport.WithConfig(cfg),
//		transport.WithSequencer(seq),
//		transport.WithLogger(log),
//	))
//
// The first frame a client receives is {"type":"hello","id":"<id>"}. Clients
// send {"type":"pointer","x":1,"y":2}; the transport stamps every accepted
// pointer frame with the next per-connection sequence number before handing
// it to the Dispatcher. Frames that are not valid JSON or carry an unknown
// type are dropped.
//
// Send never blocks. Each connection owns a bounded queue drained by its
// write pump; when the queue is full the frame is dropped and Send returns
// domain.ErrChannelFull.
package transport
