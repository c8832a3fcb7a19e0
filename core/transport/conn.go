package transport

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/dmitrymomot/pointersync/core/domain"
	"github.com/dmitrymomot/pointersync/core/logger"
)

// Conn is a WebSocket-backed domain.Channel.
type Conn struct {
	id     domain.ConnectionID
	ws     *websocket.Conn
	cfg    Config
	logger *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

var _ domain.Channel = (*Conn)(nil)

func newConn(id domain.ConnectionID, ws *websocket.Conn, cfg Config, log *slog.Logger) *Conn {
	return &Conn{
		id:     id,
		ws:     ws,
		cfg:    cfg,
		logger: log,
		send:   make(chan []byte, cfg.SendQueueSize),
		done:   make(chan struct{}),
	}
}

// ID returns the connection identifier.
func (c *Conn) ID() domain.ConnectionID { return c.id }

// Send encodes msg and enqueues it without blocking.
func (c *Conn) Send(msg domain.Message) error {
	select {
	case <-c.done:
		return domain.ErrChannelClosed
	default:
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return domain.ErrChannelClosed
	default:
		return domain.ErrChannelFull
	}
}

// Close asks the write pump to send a close frame and tear the socket down.
// Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

// readPump reads frames until the socket fails or is closed.
func (c *Conn) readPump(d Dispatcher, seq *Sequencer) {
	c.ws.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", logger.ConnectionID(c.id), logger.Error(err))
			}
			return
		}

		msg, err := decodeFrame(data)
		if err != nil {
			c.logger.Debug("dropping client frame", logger.ConnectionID(c.id), logger.Error(err))
			continue
		}
		msg.ID = c.id
		_ = seq.Stamp(c.id, func(n uint64) error {
			msg.Sequence = n
			d.OnMessage(c.id, msg)
			return nil
		})
	}
}

var (
	errMalformedFrame   = errors.New("malformed frame")
	errUnsupportedFrame = errors.New("unsupported frame type")
)

// decodeFrame validates an inbound client frame. Only pointer frames with
// numeric coordinates are accepted.
func decodeFrame(data []byte) (domain.Message, error) {
	if !gjson.ValidBytes(data) {
		return domain.Message{}, errMalformedFrame
	}

	fields := gjson.GetManyBytes(data, "type", "x", "y")
	if fields[0].String() != domain.MessagePointer {
		return domain.Message{}, errUnsupportedFrame
	}
	if fields[1].Type != gjson.Number || fields[2].Type != gjson.Number {
		return domain.Message{}, errMalformedFrame
	}

	return domain.Message{
		Type: domain.MessagePointer,
		X:    fields[1].Float(),
		Y:    fields[2].Float(),
	}, nil
}

// writePump drains the send queue and keeps the peer alive with pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write failed", logger.ConnectionID(c.id), logger.Error(err))
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			_ = c.ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.cfg.WriteWait),
			)
			return
		}
	}
}
