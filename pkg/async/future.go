package async

import (
	"context"
	"sync"
)

// Future represents the result of an asynchronous computation.
// It completes exactly once; later Resolve calls are ignored.
type Future[U any] struct {
	val  U
	err  error
	once sync.Once
	done chan struct{}
}

// NewFuture returns an unresolved future. Complete it with Resolve.
func NewFuture[U any]() *Future[U] {
	return &Future[U]{done: make(chan struct{})}
}

// Resolve completes the future. It reports whether this call won: false means
// the future had already been resolved and the arguments were discarded.
func (f *Future[U]) Resolve(val U, err error) bool {
	won := false
	f.once.Do(func() {
		f.val, f.err = val, err
		close(f.done)
		won = true
	})
	return won
}

// Await waits for the future to complete.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.val, f.err
}

// AwaitContext waits for the future or for ctx to be done, whichever comes first.
// On ctx expiry it returns ctx.Err() and leaves the future unresolved.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero U
		return zero, ctx.Err()
	}
}

// Async runs fn in its own goroutine and returns a future for its result.
func Async[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := NewFuture[U]()

	go func() {
		// Early exit prevents running work for an already canceled caller
		if err := ctx.Err(); err != nil {
			var zero U
			f.Resolve(zero, err)
			return
		}
		f.Resolve(fn(ctx, param))
	}()

	return f
}

// WaitAll waits for every future and returns their results in order.
// The first error encountered, in argument order, is returned alongside the
// results collected so far.
func WaitAll[U any](futures ...*Future[U]) ([]U, error) {
	results := make([]U, 0, len(futures))
	for _, f := range futures {
		v, err := f.Await()
		if err != nil {
			return results, err
		}
		results = append(results, v)
	}
	return results, nil
}
