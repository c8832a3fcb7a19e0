// Package async provides a generic resolve-once Future and helpers for
// running work concurrently.
//
// A Future created with NewFuture is completed later with Resolve. Resolution
// happens exactly once, which makes it a safe rendezvous between a waiter and
// whichever of several racing producers gets there first:
//
//	f := async.NewFuture[Event]()
//	go func() { f.Resolve(ev, nil) }()
//	go func() { f.Resolve(Event{}, ErrCancelled) }() // loses if the first won
//	ev, err := f.Await()
//
// AwaitContext stops waiting when the context is done but leaves the future
// unresolved, so the caller decides whether to resolve it with its own error.
//
// Async runs a function in its own goroutine and returns its Future; WaitAll
// collects several in argument order:
//
//	futures := make([]*async.Future[struct{}], 0, len(conns))
//	for _, c := range conns {
//		futures = append(futures, async.Async(ctx, c, closeConn))
//	}
//	_, err := async.WaitAll(futures...)
//
// A canceled context is checked before Async runs its function, which then
// resolves with the context's error instead.
package async
