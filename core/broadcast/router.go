package broadcast

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/pointersync/core/domain"
	"github.com/dmitrymomot/pointersync/core/logger"
	"github.com/dmitrymomot/pointersync/core/registry"
)

// PointerHook observes accepted pointer events. It is called once with the
// source id after the event is recorded, then once per recipient the event was
// handed to.
type PointerHook func(id domain.ConnectionID, ev domain.PointerEvent)

// Router is safe for concurrent use.
type Router struct {
	mu       sync.Mutex
	registry *registry.Registry
	hooks    []PointerHook
	logger   *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPointerHook adds an observer of accepted pointer events.
func WithPointerHook(fn PointerHook) Option {
	return func(r *Router) {
		if fn != nil {
			r.hooks = append(r.hooks, fn)
		}
	}
}

// New creates a router over reg.
func New(reg *registry.Registry, opts ...Option) *Router {
	r := &Router{
		registry: reg,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("broadcast"))
	return r
}

// Publish records ev as the source's last pointer location and relays it to
// every other connected channel. It returns the number of recipients the event
// was handed to. Only registry rejections (unknown source, stale sequence)
// fail the call; delivery failures never do.
func (r *Router) Publish(ev domain.PointerEvent) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, _, err := r.registry.Accept(ev); err != nil {
		return 0, err
	}
	r.notify(ev.SourceID, ev)

	msg := domain.PointerMessage(ev)
	delivered := 0
	for _, ch := range r.registry.Channels() {
		if ch.ID() == ev.SourceID {
			continue
		}
		if !r.deliver(ch, msg) {
			continue
		}
		delivered++
		r.notify(ch.ID(), ev)
	}
	return delivered, nil
}

// RemovePointer tells every remaining peer that id's pointer is gone.
// Call it after id has left the registry.
func (r *Router) RemovePointer(id domain.ConnectionID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := domain.Message{Type: domain.MessagePointerRemoved, ID: id}
	delivered := 0
	for _, ch := range r.registry.Channels() {
		if ch.ID() == id {
			continue
		}
		if r.deliver(ch, msg) {
			delivered++
		}
	}
	return delivered
}

func (r *Router) deliver(ch domain.Channel, msg domain.Message) bool {
	err := ch.Send(msg)
	switch {
	case err == nil:
		return true
	case errors.Is(err, domain.ErrChannelFull):
		r.logger.Debug("message dropped for slow recipient",
			logger.ConnectionID(ch.ID()),
			logger.Event(msg.Type),
		)
	case errors.Is(err, domain.ErrChannelClosed):
		r.logger.Debug("recipient closed during fan-out",
			logger.ConnectionID(ch.ID()),
			logger.Event(msg.Type),
		)
	default:
		r.logger.Warn("delivery failed",
			logger.ConnectionID(ch.ID()),
			logger.Event(msg.Type),
			logger.Error(err),
		)
	}
	return false
}

func (r *Router) notify(id domain.ConnectionID, ev domain.PointerEvent) {
	for _, fn := range r.hooks {
		fn(id, ev)
	}
}
