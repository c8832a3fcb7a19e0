package realtime_test

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pointersync/app/realtime"
	"github.com/dmitrymomot/pointersync/core/domain"
)

type httpResult struct {
	status int
	body   []byte
}

func newApp(t *testing.T) *realtime.App {
	t.Helper()
	cfg := realtime.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 5 * time.Second

	app, err := realtime.New(cfg)
	require.NoError(t, err)
	return app
}

func startApp(t *testing.T) *realtime.App {
	t.Helper()
	app := newApp(t)
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() { _ = app.Stop() })
	return app
}

func get(t *testing.T, app *realtime.App, path string, query url.Values) httpResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	u := "http://" + app.Addr().String() + path
	if query != nil {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return httpResult{status: resp.StatusCode, body: body}
}

type client struct {
	id domain.ConnectionID
	ws *websocket.Conn
}

func connect(t *testing.T, app *realtime.App) *client {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial("ws://"+app.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	hello := readFrame(t, ws)
	require.Equal(t, domain.MessageHello, hello.Type)
	require.NotEmpty(t, hello.ID)

	require.Eventually(t, func() bool {
		return app.Registry().IsConnected(hello.ID)
	}, 2*time.Second, 5*time.Millisecond)
	return &client{id: hello.ID, ws: ws}
}

func readFrame(t *testing.T, ws *websocket.Conn) domain.Message {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var msg domain.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func (c *client) sendPointer(t *testing.T, x, y float64) {
	t.Helper()
	data, err := json.Marshal(map[string]any{"type": domain.MessagePointer, "x": x, "y": y})
	require.NoError(t, err)
	require.NoError(t, c.ws.WriteMessage(websocket.TextMessage, data))
}

func waitPending(t *testing.T, app *realtime.App, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return app.Bridge().Pending() == n
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("stop_before_start", func(t *testing.T) {
		t.Parallel()
		app := newApp(t)
		assert.ErrorIs(t, app.Stop(), realtime.ErrNotStarted)
	})

	t.Run("start_twice", func(t *testing.T) {
		t.Parallel()
		app := startApp(t)
		assert.ErrorIs(t, app.Start(context.Background()), realtime.ErrAlreadyStarted)
	})

	t.Run("stop_is_idempotent", func(t *testing.T) {
		t.Parallel()
		app := newApp(t)
		require.NoError(t, app.Start(context.Background()))
		require.NoError(t, app.Stop())
		assert.NoError(t, app.Stop())
	})

	t.Run("missing_address", func(t *testing.T) {
		t.Parallel()
		cfg := realtime.DefaultConfig()
		cfg.Server.Addr = ""
		_, err := realtime.New(cfg)
		assert.Error(t, err)
	})

	t.Run("run_stops_on_cancel", func(t *testing.T) {
		t.Parallel()
		app := newApp(t)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- app.Run(ctx)() }()
		require.Eventually(t, func() bool { return app.Addr() != nil }, 2*time.Second, 5*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("run did not return")
		}
	})
}

func TestTwoClientScenario(t *testing.T) {
	t.Parallel()
	app := startApp(t)

	a := connect(t, app)
	b := connect(t, app)

	waited := make(chan httpResult, 1)
	go func() {
		waited <- get(t, app, "/sync/wait-for-pointer-update", url.Values{"id": {b.id.String()}})
	}()
	waitPending(t, app, 1)

	a.sendPointer(t, 10, 20)

	relayed := readFrame(t, b.ws)
	assert.Equal(t, domain.MessagePointer, relayed.Type)
	assert.Equal(t, a.id, relayed.ID)
	assert.Equal(t, 10.0, relayed.X)
	assert.Equal(t, 20.0, relayed.Y)
	assert.Equal(t, uint64(1), relayed.Sequence)

	res := <-waited
	require.Equal(t, http.StatusOK, res.status, string(res.body))
	var ev struct {
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		SourceID string  `json:"sourceId"`
	}
	require.NoError(t, json.Unmarshal(res.body, &ev))
	assert.Equal(t, 10.0, ev.X)
	assert.Equal(t, 20.0, ev.Y)
	assert.Equal(t, a.id.String(), ev.SourceID)

	last, ok, err := app.Registry().LastPointer(a.id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Point{X: 10, Y: 20}, last)

	res = get(t, app, "/sync/connected-ids", url.Values{"id": {a.id.String(), b.id.String(), "C"}})
	require.Equal(t, http.StatusOK, res.status)
	var ids []string
	require.NoError(t, json.Unmarshal(res.body, &ids))
	assert.Equal(t, []string{a.id.String(), b.id.String()}, ids)
}

func TestInjectedPointerUpdate(t *testing.T) {
	t.Parallel()
	app := startApp(t)

	a := connect(t, app)
	b := connect(t, app)

	res := get(t, app, "/sync/send-pointer-update", url.Values{
		"id": {a.id.String()}, "x": {"3"}, "y": {"4"},
	})
	require.Equal(t, http.StatusOK, res.status, string(res.body))

	relayed := readFrame(t, b.ws)
	assert.Equal(t, a.id, relayed.ID)
	assert.Equal(t, 3.0, relayed.X)

	// The socket's own events continue the injected sequence.
	a.sendPointer(t, 5, 6)
	relayed = readFrame(t, b.ws)
	assert.Equal(t, uint64(2), relayed.Sequence)
	assert.Equal(t, 5.0, relayed.X)
}

func TestDisconnect(t *testing.T) {
	t.Parallel()
	app := startApp(t)

	a := connect(t, app)
	b := connect(t, app)

	res := get(t, app, "/health", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.JSONEq(t, `{"status":"ok","clients":2}`, string(res.body))

	waited := make(chan httpResult, 1)
	go func() {
		waited <- get(t, app, "/sync/wait-for-disconnect", url.Values{"id": {a.id.String()}})
	}()
	waitPending(t, app, 1)

	require.NoError(t, a.ws.Close())

	res = <-waited
	assert.Equal(t, http.StatusOK, res.status, string(res.body))
	assert.False(t, app.Registry().IsConnected(a.id))

	removed := readFrame(t, b.ws)
	assert.Equal(t, domain.MessagePointerRemoved, removed.Type)
	assert.Equal(t, a.id, removed.ID)

	// Armed after the disconnect: completes immediately.
	res = get(t, app, "/sync/wait-for-disconnect", url.Values{"id": {a.id.String()}})
	assert.Equal(t, http.StatusOK, res.status)
}

func TestStopReleasesWaiters(t *testing.T) {
	t.Parallel()
	app := newApp(t)
	require.NoError(t, app.Start(context.Background()))

	c := connect(t, app)

	waited := make(chan httpResult, 1)
	go func() {
		waited <- get(t, app, "/sync/wait-for-disconnect", url.Values{"id": {c.id.String()}})
	}()
	waitPending(t, app, 1)

	require.NoError(t, app.Stop())

	res := <-waited
	assert.Equal(t, http.StatusServiceUnavailable, res.status)
	assert.True(t, strings.Contains(string(res.body), "server stopped"), string(res.body))

	require.NoError(t, c.ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := c.ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestSyncAPIDisabled(t *testing.T) {
	t.Parallel()

	cfg := realtime.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.SyncAPIEnabled = false
	app, err := realtime.New(cfg)
	require.NoError(t, err)
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() { _ = app.Stop() })

	res := get(t, app, "/sync/connected-ids", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
}
