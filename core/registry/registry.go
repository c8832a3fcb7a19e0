package registry

import (
	"log/slog"
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dmitrymomot/pointersync/core/domain"
	"github.com/dmitrymomot/pointersync/core/logger"
)

// DisconnectFunc is invoked after a connection has been removed.
type DisconnectFunc func(id domain.ConnectionID)

// Connection is a point-in-time copy of one registry entry.
type Connection struct {
	ID          domain.ConnectionID
	ConnectedAt time.Time
	LastPointer *domain.Point
	Sequence    uint64
}

type entry struct {
	channel     domain.Channel
	connectedAt time.Time
	lastPointer *domain.Point
	lastSeq     uint64
}

func (e *entry) snapshot(id domain.ConnectionID) Connection {
	c := Connection{ID: id, ConnectedAt: e.connectedAt, Sequence: e.lastSeq}
	if e.lastPointer != nil {
		p := *e.lastPointer
		c.LastPointer = &p
	}
	return c
}

// Registry is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	conns       *orderedmap.OrderedMap[domain.ConnectionID, *entry]
	subscribers []DisconnectFunc
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for protocol violations.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides the time source used for ConnectedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		conns:  orderedmap.New[domain.ConnectionID, *entry](),
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers fn to be called after every disconnect, including the
// eviction of a stale entry replaced by a duplicate connect.
func (r *Registry) Subscribe(fn DisconnectFunc) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

// Connect records a new connection for ch.ID().
// If the id is already present the stale entry is evicted, its channel closed,
// the new channel recorded, and ErrDuplicateConnection returned so the caller
// can report the transport's protocol violation. The new connection is live
// in both cases.
func (r *Registry) Connect(ch domain.Channel) error {
	id := ch.ID()

	r.mu.Lock()
	stale, exists := r.conns.Get(id)
	if exists {
		r.conns.Delete(id)
	}
	r.conns.Set(id, &entry{channel: ch, connectedAt: r.now()})
	subs := r.subscribers
	r.mu.Unlock()

	if !exists {
		return nil
	}

	r.logger.Warn("duplicate connection evicted", logger.ConnectionID(id))
	notify(subs, id)
	if stale.channel != nil && stale.channel != ch {
		if err := stale.channel.Close(); err != nil {
			r.logger.Debug("failed to close stale channel", logger.ConnectionID(id), logger.Error(err))
		}
	}
	return domain.ErrDuplicateConnection
}

// Disconnect removes the connection and notifies subscribers.
func (r *Registry) Disconnect(id domain.ConnectionID) error {
	return r.remove(id, nil)
}

// Detach removes the connection only while ch is still the channel recorded
// for its id. A channel that was already replaced by a duplicate connect gets
// ErrUnknownConnection and the live entry is left alone.
func (r *Registry) Detach(ch domain.Channel) error {
	return r.remove(ch.ID(), ch)
}

func (r *Registry) remove(id domain.ConnectionID, owner domain.Channel) error {
	r.mu.Lock()
	e, ok := r.conns.Get(id)
	if !ok || (owner != nil && e.channel != owner) {
		r.mu.Unlock()
		return domain.ErrUnknownConnection
	}
	r.conns.Delete(id)
	subs := r.subscribers
	r.mu.Unlock()

	notify(subs, id)
	return nil
}

func notify(subs []DisconnectFunc, id domain.ConnectionID) {
	for _, fn := range subs {
		fn(id)
	}
}

// IsConnected reports whether id is registered at call time.
func (r *Registry) IsConnected(id domain.ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns.Get(id)
	return ok
}

// ConnectedIDs returns a snapshot of connected ids, oldest first.
func (r *Registry) ConnectedIDs() []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]domain.ConnectionID, 0, r.conns.Len())
	for pair := r.conns.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// Channels returns a snapshot of live channels in the same order as ConnectedIDs.
func (r *Registry) Channels() []domain.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chans := make([]domain.Channel, 0, r.conns.Len())
	for pair := r.conns.Oldest(); pair != nil; pair = pair.Next() {
		chans = append(chans, pair.Value.channel)
	}
	return chans
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns.Len()
}

// Get returns a copy of the connection entry.
func (r *Registry) Get(id domain.ConnectionID) (Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns.Get(id)
	if !ok {
		return Connection{}, domain.ErrUnknownConnection
	}
	return e.snapshot(id), nil
}

// LastPointer returns the most recently recorded point for id.
// The boolean is false when no pointer has been recorded yet.
func (r *Registry) LastPointer(id domain.ConnectionID) (domain.Point, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.conns.Get(id)
	if !ok {
		return domain.Point{}, false, domain.ErrUnknownConnection
	}
	if e.lastPointer == nil {
		return domain.Point{}, false, nil
	}
	return *e.lastPointer, true, nil
}

// RecordPointer stores p as the last pointer location of id and returns the
// previous one.
func (r *Registry) RecordPointer(id domain.ConnectionID, p domain.Point) (domain.Point, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns.Get(id)
	if !ok {
		return domain.Point{}, false, domain.ErrUnknownConnection
	}
	return e.record(p)
}

// Accept records ev for its source connection. Events whose sequence is not
// greater than the last accepted one are rejected with ErrStaleEvent and leave
// the stored pointer untouched.
func (r *Registry) Accept(ev domain.PointerEvent) (domain.Point, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns.Get(ev.SourceID)
	if !ok {
		return domain.Point{}, false, domain.ErrUnknownConnection
	}
	if ev.Sequence <= e.lastSeq {
		return domain.Point{}, false, domain.ErrStaleEvent
	}
	e.lastSeq = ev.Sequence
	return e.record(ev.Point)
}

func (e *entry) record(p domain.Point) (domain.Point, bool, error) {
	var (
		prev domain.Point
		had  bool
	)
	if e.lastPointer != nil {
		prev, had = *e.lastPointer, true
	}
	e.lastPointer = &p
	return prev, had, nil
}
