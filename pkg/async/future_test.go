package async_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrymomot/pointersync/pkg/async"
)

func TestAsyncFunctionality(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	futureInt := async.Async(ctx, 21, func(ctx context.Context, n int) (int, error) {
		return n * 2, nil
	})
	futureErr := async.Async(ctx, "", func(ctx context.Context, s string) (int, error) {
		if s == "" {
			return 0, errors.New("empty string")
		}
		return len(s), nil
	})

	v, err := futureInt.Await()
	if err != nil || v != 42 {
		t.Errorf("Expected 42, nil; got %d, %v", v, err)
	}
	if _, err := futureErr.Await(); err == nil {
		t.Error("Expected error from futureErr")
	}
}

func TestAsyncPreCanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	f := async.Async(ctx, 1, func(ctx context.Context, n int) (int, error) {
		called = true
		return n, nil
	})

	if _, err := f.Await(); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
	if called {
		t.Error("Function must not run for a canceled context")
	}
}

func TestFutureResolveOnce(t *testing.T) {
	t.Parallel()
	f := async.NewFuture[string]()

	pending, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	if _, err := f.AwaitContext(pending); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("New future must be pending, got: %v", err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if f.Resolve("value", nil) {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("Expected exactly one winning Resolve, got %d", wins)
	}
	if v, err := f.Await(); v != "value" || err != nil {
		t.Errorf("Unexpected result: %q, %v", v, err)
	}
}

func TestFutureAwaitContext(t *testing.T) {
	t.Parallel()
	f := async.NewFuture[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.AwaitContext(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
	if !f.Resolve(3, nil) {
		t.Fatal("Context expiry must not resolve the future")
	}

	if v, err := f.AwaitContext(context.Background()); v != 3 || err != nil {
		t.Errorf("Expected 3, nil; got %d, %v", v, err)
	}
}

func TestWaitAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	square := func(ctx context.Context, n int) (int, error) { return n * n, nil }

	results, err := async.WaitAll(
		async.Async(ctx, 1, square),
		async.Async(ctx, 2, square),
		async.Async(ctx, 3, square),
	)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []int{1, 4, 9}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %d, want %d", i, results[i], want[i])
		}
	}

	boom := errors.New("boom")
	failing := async.NewFuture[int]()
	failing.Resolve(0, boom)
	if _, err := async.WaitAll(async.Async(ctx, 1, square), failing); !errors.Is(err, boom) {
		t.Errorf("Expected boom, got: %v", err)
	}
}
