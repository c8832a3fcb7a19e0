package broadcast_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pointersync/core/broadcast"
	"github.com/dmitrymomot/pointersync/core/domain"
	"github.com/dmitrymomot/pointersync/core/registry"
)

type mockChannel struct {
	id       domain.ConnectionID
	mu       sync.Mutex
	received []domain.Message
	sendErr  error
}

func (m *mockChannel) ID() domain.ConnectionID { return m.id }
func (m *mockChannel) Close() error            { return nil }

func (m *mockChannel) Send(msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, msg)
	return nil
}

func (m *mockChannel) getReceived() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Message(nil), m.received...)
}

func connect(t *testing.T, reg *registry.Registry, ids ...string) map[string]*mockChannel {
	t.Helper()
	chans := make(map[string]*mockChannel, len(ids))
	for _, id := range ids {
		ch := &mockChannel{id: domain.ConnectionID(id)}
		require.NoError(t, reg.Connect(ch))
		chans[id] = ch
	}
	return chans
}

func TestRouter_Publish(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		peers         []string
		wantDelivered int
	}{
		{name: "fan_out_to_all_peers", peers: []string{"a", "b", "c", "d"}, wantDelivered: 3},
		{name: "single_client", peers: []string{"a"}, wantDelivered: 0},
		{name: "two_clients", peers: []string{"a", "b"}, wantDelivered: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reg := registry.New()
			router := broadcast.New(reg)
			chans := connect(t, reg, tt.peers...)

			n, err := router.Publish(domain.NewPointerEvent("a", domain.Point{X: 10, Y: 20}, 1))
			require.NoError(t, err)
			assert.Equal(t, tt.wantDelivered, n)

			assert.Empty(t, chans["a"].getReceived(), "never echoed to source")
			for id, ch := range chans {
				if id == "a" {
					continue
				}
				got := ch.getReceived()
				require.Len(t, got, 1, "peer %s", id)
				assert.Equal(t, domain.Message{Type: domain.MessagePointer, ID: "a", X: 10, Y: 20, Sequence: 1}, got[0])
			}

			last, ok, err := reg.LastPointer("a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, domain.Point{X: 10, Y: 20}, last)
		})
	}
}

func TestRouter_PublishUnknownSource(t *testing.T) {
	t.Parallel()
	reg := registry.New()
	router := broadcast.New(reg)
	chans := connect(t, reg, "b")

	_, err := router.Publish(domain.NewPointerEvent("ghost", domain.Point{X: 1, Y: 1}, 1))
	assert.ErrorIs(t, err, domain.ErrUnknownConnection)
	assert.Empty(t, chans["b"].getReceived())
}

func TestRouter_PublishStaleEvent(t *testing.T) {
	t.Parallel()
	reg := registry.New()
	router := broadcast.New(reg)
	chans := connect(t, reg, "a", "b")

	_, err := router.Publish(domain.NewPointerEvent("a", domain.Point{X: 2, Y: 2}, 2))
	require.NoError(t, err)
	_, err = router.Publish(domain.NewPointerEvent("a", domain.Point{X: 1, Y: 1}, 1))
	assert.ErrorIs(t, err, domain.ErrStaleEvent)

	assert.Len(t, chans["b"].getReceived(), 1)
	last, _, err := reg.LastPointer("a")
	require.NoError(t, err)
	assert.Equal(t, domain.Point{X: 2, Y: 2}, last)
}

func TestRouter_DeliveryFailuresAreIsolated(t *testing.T) {
	t.Parallel()
	reg := registry.New()
	router := broadcast.New(reg)
	chans := connect(t, reg, "a", "full", "closed", "broken", "ok")
	chans["full"].sendErr = domain.ErrChannelFull
	chans["closed"].sendErr = domain.ErrChannelClosed
	chans["broken"].sendErr = errors.New("write: broken pipe")

	n, err := router.Publish(domain.NewPointerEvent("a", domain.Point{X: 1, Y: 2}, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, chans["ok"].getReceived(), 1)
}

func TestRouter_PointerHook(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []domain.ConnectionID
	)
	reg := registry.New()
	router := broadcast.New(reg, broadcast.WithPointerHook(func(id domain.ConnectionID, ev domain.PointerEvent) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, domain.ConnectionID("a"), ev.SourceID)
		seen = append(seen, id)
	}))
	chans := connect(t, reg, "a", "b", "c")
	chans["c"].sendErr = domain.ErrChannelFull

	_, err := router.Publish(domain.NewPointerEvent("a", domain.Point{X: 1, Y: 1}, 1))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.ConnectionID{"a", "b"}, seen, "source first, then only recipients that accepted")
}

func TestRouter_PerSourceOrdering(t *testing.T) {
	t.Parallel()
	reg := registry.New()
	router := broadcast.New(reg)
	chans := connect(t, reg, "a", "b", "c")

	var wg sync.WaitGroup
	for _, src := range []string{"a", "b"} {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			for seq := uint64(1); seq <= 100; seq++ {
				_, err := router.Publish(domain.NewPointerEvent(domain.ConnectionID(src), domain.Point{X: float64(seq)}, seq))
				assert.NoError(t, err)
			}
		}(src)
	}
	wg.Wait()

	last := map[domain.ConnectionID]uint64{}
	for _, msg := range chans["c"].getReceived() {
		assert.Greater(t, msg.Sequence, last[msg.ID], "events from %s reordered", msg.ID)
		last[msg.ID] = msg.Sequence
	}
	assert.Equal(t, uint64(100), last["a"])
	assert.Equal(t, uint64(100), last["b"])
}

func TestRouter_RemovePointer(t *testing.T) {
	t.Parallel()
	reg := registry.New()
	router := broadcast.New(reg)
	chans := connect(t, reg, "a", "b", "c")

	require.NoError(t, reg.Disconnect("a"))
	n := router.RemovePointer("a")
	assert.Equal(t, 2, n)
	for _, id := range []string{"b", "c"} {
		got := chans[id].getReceived()
		require.Len(t, got, 1)
		assert.Equal(t, domain.Message{Type: domain.MessagePointerRemoved, ID: "a"}, got[0])
	}
}
