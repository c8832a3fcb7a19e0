package transport

import (
	"sync"

	"github.com/alphadose/haxmap"

	"github.com/dmitrymomot/pointersync/core/domain"
)

// Sequencer hands out monotonically increasing per-connection sequence
// numbers, starting at 1. It is shared by every producer of pointer events
// for a connection so their numbers never collide.
type Sequencer struct {
	counters *haxmap.Map[domain.ConnectionID, *counter]
}

type counter struct {
	mu sync.Mutex
	n  uint64
}

// NewSequencer returns an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{counters: haxmap.New[domain.ConnectionID, *counter]()}
}

// Stamp takes the next sequence number for id and calls fn with it while
// holding id's lock. Publishing from inside fn keeps events of one connection
// in sequence order even with several producers. fn's error is returned.
func (s *Sequencer) Stamp(id domain.ConnectionID, fn func(seq uint64) error) error {
	c, _ := s.counters.GetOrCompute(id, func() *counter {
		return &counter{}
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return fn(c.n)
}

// Forget drops the counter for id. Call it only once id is gone for good.
func (s *Sequencer) Forget(id domain.ConnectionID) {
	s.counters.Del(id)
}

// Len reports how many connections have a counter.
func (s *Sequencer) Len() int {
	return int(s.counters.Len())
}
