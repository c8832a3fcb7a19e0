package syncbridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/pointersync/core/domain"
	"github.com/dmitrymomot/pointersync/core/logger"
	"github.com/dmitrymomot/pointersync/core/registry"
	"github.com/dmitrymomot/pointersync/pkg/async"
)

// Kind distinguishes what a waiter is waiting for.
type Kind uint8

const (
	KindDisconnect Kind = iota + 1
	KindPointerUpdate
)

func (k Kind) String() string {
	switch k {
	case KindDisconnect:
		return "disconnect"
	case KindPointerUpdate:
		return "pointer_update"
	default:
		return "unknown"
	}
}

type waitKey struct {
	kind Kind
	id   domain.ConnectionID
}

type waiter struct {
	key       waitKey
	createdAt time.Time
	result    *async.Future[domain.PointerEvent]
}

// Bridge is safe for concurrent use.
type Bridge struct {
	mu       sync.Mutex
	registry *registry.Registry
	waiters  map[waitKey]*waiter
	closed   bool

	pointerTimeout    time.Duration
	disconnectTimeout time.Duration
	logger            *slog.Logger
	now               func() time.Time
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithPointerWaitTimeout bounds WaitForPointerUpdate. Non-positive values keep the default.
func WithPointerWaitTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.pointerTimeout = d
		}
	}
}

// WithDisconnectWaitTimeout bounds WaitForDisconnect. Zero disables the bound.
func WithDisconnectWaitTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d >= 0 {
			b.disconnectTimeout = d
		}
	}
}

// WithConfig applies both timeouts from cfg.
func WithConfig(cfg Config) Option {
	return func(b *Bridge) {
		WithPointerWaitTimeout(cfg.PointerWaitTimeout)(b)
		WithDisconnectWaitTimeout(cfg.DisconnectWaitTimeout)(b)
	}
}

// New creates a bridge over reg and subscribes it to reg's disconnects.
// Pointer notifications must be wired by the caller, usually with
// broadcast.WithPointerHook(bridge.NotifyPointerUpdate).
func New(reg *registry.Registry, opts ...Option) *Bridge {
	b := &Bridge{
		registry:       reg,
		waiters:        make(map[waitKey]*waiter),
		pointerTimeout: DefaultPointerWaitTimeout,
		logger:         logger.Discard(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logger.Component("syncbridge"))
	reg.Subscribe(b.NotifyDisconnect)
	return b
}

// WaitForDisconnect blocks until id is no longer registered.
// It returns nil at once if id is not connected at call time.
func (b *Bridge) WaitForDisconnect(ctx context.Context, id domain.ConnectionID) error {
	w, err := b.arm(KindDisconnect, id)
	if err != nil || w == nil {
		return err
	}
	_, err = b.await(ctx, w, b.disconnectTimeout)
	return err
}

// WaitForPointerUpdate blocks until the next pointer event for id is accepted
// after the call was made: an event sent by id, or one relayed to id.
// It fails with ErrWaitTimeout when nothing arrives within the configured
// timeout, and with ErrUnknownConnection when id is not connected or
// disconnects while waiting.
func (b *Bridge) WaitForPointerUpdate(ctx context.Context, id domain.ConnectionID) (domain.PointerEvent, error) {
	w, err := b.arm(KindPointerUpdate, id)
	if err != nil {
		return domain.PointerEvent{}, err
	}
	return b.await(ctx, w, b.pointerTimeout)
}

// QueryConnected returns the subset of ids connected at call time, in input
// order and without duplicates.
func (b *Bridge) QueryConnected(ids []domain.ConnectionID) []domain.ConnectionID {
	out := make([]domain.ConnectionID, 0, len(ids))
	seen := make(map[domain.ConnectionID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if b.registry.IsConnected(id) {
			out = append(out, id)
		}
	}
	return out
}

// ConnectedIDs returns every connected id.
func (b *Bridge) ConnectedIDs() []domain.ConnectionID {
	return b.registry.ConnectedIDs()
}

// NotifyPointerUpdate resolves the pointer waiter for id, if armed.
// Events nobody waits for are discarded.
func (b *Bridge) NotifyPointerUpdate(id domain.ConnectionID, ev domain.PointerEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if w, ok := b.waiters[waitKey{KindPointerUpdate, id}]; ok {
		b.resolveLocked(w, ev, nil)
	}
}

// NotifyDisconnect resolves the disconnect waiter for id and fails its pointer
// waiter, which can no longer be satisfied.
func (b *Bridge) NotifyDisconnect(id domain.ConnectionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if w, ok := b.waiters[waitKey{KindDisconnect, id}]; ok {
		b.resolveLocked(w, domain.PointerEvent{}, nil)
	}
	if w, ok := b.waiters[waitKey{KindPointerUpdate, id}]; ok {
		b.resolveLocked(w, domain.PointerEvent{}, fmt.Errorf("%w: %s disconnected while waiting", domain.ErrUnknownConnection, id))
	}
}

// Close releases every outstanding waiter with ErrServerStopped and rejects
// future waits. It returns the number of waiters released.
func (b *Bridge) Close() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	n := len(b.waiters)
	for _, w := range b.waiters {
		b.resolveLocked(w, domain.PointerEvent{}, domain.ErrServerStopped)
	}
	if n > 0 {
		b.logger.Info("released outstanding waiters", logger.Count("waiters", n))
	}
	return n
}

// Pending returns the number of armed waiters.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.waiters)
}

func (b *Bridge) arm(kind Kind, id domain.ConnectionID) (*waiter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, domain.ErrServerStopped
	}

	if !b.registry.IsConnected(id) {
		if kind == KindDisconnect {
			return nil, nil
		}
		return nil, domain.ErrUnknownConnection
	}

	key := waitKey{kind, id}
	if _, exists := b.waiters[key]; exists {
		return nil, domain.ErrDuplicateWait
	}

	w := &waiter{
		key:       key,
		createdAt: b.now(),
		result:    async.NewFuture[domain.PointerEvent](),
	}
	b.waiters[key] = w
	b.logger.Debug("wait armed", logger.ConnectionID(id), logger.Event(kind.String()))
	return w, nil
}

func (b *Bridge) await(ctx context.Context, w *waiter, timeout time.Duration) (domain.PointerEvent, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, timeout,
			fmt.Errorf("%w: no %s for %s within %s", domain.ErrWaitTimeout, w.key.kind, w.key.id, timeout))
		defer cancel()
	}

	if _, err := w.result.AwaitContext(ctx); err != nil && ctx.Err() != nil {
		b.cancel(w, context.Cause(ctx))
	}

	// Whoever resolved first wins; a notification racing the timeout is kept.
	return w.result.Await()
}

func (b *Bridge) cancel(w *waiter, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.waiters[w.key] == w {
		b.resolveLocked(w, domain.PointerEvent{}, err)
	}
}

func (b *Bridge) resolveLocked(w *waiter, ev domain.PointerEvent, err error) {
	delete(b.waiters, w.key)
	if !w.result.Resolve(ev, err) {
		return
	}
	b.logger.Debug("wait resolved",
		logger.ConnectionID(w.key.id),
		logger.Event(w.key.kind.String()),
		logger.Elapsed(w.createdAt),
		logger.Error(err),
	)
}
