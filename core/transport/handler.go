package transport

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/pointersync/core/domain"
	"github.com/dmitrymomot/pointersync/core/logger"
)

// Dispatcher receives channel lifecycle and message notifications.
// OnMessage is called from the connection's read pump with the connection's
// sequence lock held, so messages from one connection arrive in sequence order.
// OnDisconnect reports whether ch still owned its id; a channel already
// replaced by a newer one with the same id returns false.
type Dispatcher interface {
	OnConnect(ch domain.Channel) error
	OnMessage(id domain.ConnectionID, msg domain.Message)
	OnDisconnect(ch domain.Channel) bool
}

type wsConfig struct {
	upgrader  *websocket.Upgrader
	cfg       Config
	sequencer *Sequencer
	logger    *slog.Logger
	newID     func() domain.ConnectionID
}

// Option configures the WebSocket handler.
type Option func(*wsConfig)

// WithConfig applies env-driven settings.
func WithConfig(cfg Config) Option {
	return func(c *wsConfig) {
		c.cfg = cfg.withDefaults()
		c.upgrader.ReadBufferSize = c.cfg.ReadBufferSize
		c.upgrader.WriteBufferSize = c.cfg.WriteBufferSize
		if cfg.AllowAnyOrigin {
			WithWSAllowAnyOrigin()(c)
		}
	}
}

func WithWSHandshakeTimeout(timeout time.Duration) Option {
	return func(c *wsConfig) {
		c.upgrader.HandshakeTimeout = timeout
	}
}

func WithWSOriginCheck(fn func(r *http.Request) bool) Option {
	return func(c *wsConfig) {
		c.upgrader.CheckOrigin = fn
	}
}

func WithWSAllowAnyOrigin() Option {
	return func(c *wsConfig) {
		c.upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}
}

// WithSequencer shares a sequencer with other pointer event producers.
func WithSequencer(seq *Sequencer) Option {
	return func(c *wsConfig) {
		if seq != nil {
			c.sequencer = seq
		}
	}
}

// WithIDGenerator overrides UUID connection ids.
func WithIDGenerator(fn func() domain.ConnectionID) Option {
	return func(c *wsConfig) {
		if fn != nil {
			c.newID = fn
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *wsConfig) {
		if log != nil {
			c.logger = log
		}
	}
}

// Handler upgrades requests to WebSocket connections and reports them to d.
// The returned handler blocks for the lifetime of the connection.
func Handler(d Dispatcher, opts ...Option) http.HandlerFunc {
	def := DefaultConfig()
	c := &wsConfig{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  def.ReadBufferSize,
			WriteBufferSize: def.WriteBufferSize,
		},
		cfg:       def,
		sequencer: NewSequencer(),
		logger:    logger.Discard(),
		newID: func() domain.ConnectionID {
			return domain.ConnectionID(uuid.NewString())
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	log := c.logger.With(logger.Component("transport"))

	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := c.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied with an HTTP error.
			log.Debug("websocket upgrade failed", logger.RemoteAddr(r.RemoteAddr), logger.Error(err))
			return
		}

		conn := newConn(c.newID(), ws, c.cfg, log)

		// The greeting is queued before registration so it is always the first frame.
		if err := conn.Send(domain.Message{Type: domain.MessageHello, ID: conn.id}); err != nil {
			log.Error("failed to queue greeting", logger.ConnectionID(conn.id), logger.Error(err))
			_ = ws.Close()
			return
		}

		if err := d.OnConnect(conn); err != nil && !errors.Is(err, domain.ErrDuplicateConnection) {
			log.Error("connection rejected", logger.ConnectionID(conn.id), logger.Error(err))
			_ = ws.Close()
			return
		}
		log.Debug("client connected", logger.ConnectionID(conn.id), logger.RemoteAddr(r.RemoteAddr))

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			conn.writePump()
		}()

		conn.readPump(d, c.sequencer)

		_ = conn.Close()
		<-writerDone
		// The counter belongs to whichever channel owns the id now.
		if d.OnDisconnect(conn) {
			c.sequencer.Forget(conn.id)
		}
		log.Debug("client disconnected", logger.ConnectionID(conn.id))
	}
}
