package domain

import (
	"time"

	"github.com/goccy/go-json"
)

// ConnectionID identifies one live channel. It is assigned by the transport
// and only ever indexed by the core.
type ConnectionID string

// String implements fmt.Stringer.
func (id ConnectionID) String() string { return string(id) }

// Point is a pointer position in client coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerEvent is an immutable pointer movement reported by one connection.
// Sequence increases monotonically per source connection.
type PointerEvent struct {
	SourceID  ConnectionID `json:"sourceId"`
	Point     Point        `json:"point"`
	Sequence  uint64       `json:"sequence"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewPointerEvent stamps a pointer event with the current time.
func NewPointerEvent(source ConnectionID, p Point, seq uint64) PointerEvent {
	return PointerEvent{
		SourceID:  source,
		Point:     p,
		Sequence:  seq,
		Timestamp: time.Now(),
	}
}

// Message types carried over a channel.
const (
	MessageHello          = "hello"
	MessagePointer        = "pointer"
	MessagePointerRemoved = "pointer-removed"
)

// Message is the structured frame exchanged with clients.
type Message struct {
	Type     string       `json:"type"`
	ID       ConnectionID `json:"id,omitempty"`
	X        float64      `json:"x"`
	Y        float64      `json:"y"`
	Sequence uint64       `json:"seq,omitempty"`
}

// MarshalJSON writes coordinates only on pointer frames. Hello and
// pointer-removed frames have no position.
func (m Message) MarshalJSON() ([]byte, error) {
	type frame Message
	if m.Type == MessagePointer {
		return json.Marshal(frame(m))
	}
	return json.Marshal(struct {
		Type     string       `json:"type"`
		ID       ConnectionID `json:"id,omitempty"`
		Sequence uint64       `json:"seq,omitempty"`
	}{Type: m.Type, ID: m.ID, Sequence: m.Sequence})
}

// PointerMessage converts a pointer event into its outbound frame.
func PointerMessage(ev PointerEvent) Message {
	return Message{
		Type:     MessagePointer,
		ID:       ev.SourceID,
		X:        ev.Point.X,
		Y:        ev.Point.Y,
		Sequence: ev.Sequence,
	}
}

// Channel is a bidirectional, message-oriented connection provided by the
// transport layer. Send must not block: a channel that cannot accept data
// right now returns ErrChannelFull and the message is dropped.
type Channel interface {
	ID() ConnectionID
	Send(msg Message) error
	Close() error
}
