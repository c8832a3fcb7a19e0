// Package broadcast relays pointer events from one connection to every other
// connected one.
//
// Delivery is fire-and-forget. The router snapshots the registry's channels,
// skips the source and calls Send on each recipient. Send never blocks: a
// recipient whose queue is full or whose channel closed mid fan-out simply
// misses the event, which is logged and otherwise ignored. Slow peers lose
// events, fast peers stay live.
//
// Publishes are serialized, so every recipient observes a given source's
// events in the order they were accepted.
//
//	router := broadcast.New(reg,
//		broadcast.WithLogger(log),
//		broadcast.WithPointerHook(bridge.NotifyPointerUpdate),
//	)
//	delivered, err := router.Publish(domain.NewPointerEvent(id, domain.Point{X: 10, Y: 20}, seq))
package broadcast
