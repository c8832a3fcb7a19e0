package syncapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/pointersync/core/broadcast"
	"github.com/dmitrymomot/pointersync/core/domain"
	"github.com/dmitrymomot/pointersync/core/handler"
	"github.com/dmitrymomot/pointersync/core/logger"
	"github.com/dmitrymomot/pointersync/core/response"
	"github.com/dmitrymomot/pointersync/core/syncbridge"
	"github.com/dmitrymomot/pointersync/core/transport"
)

// API serves the test-synchronization endpoints.
type API struct {
	bridge    *syncbridge.Bridge
	router    *broadcast.Router
	sequencer *transport.Sequencer
	logger    *slog.Logger
}

// Option configures an API.
type Option func(*API)

func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSequencer shares the transport's sequence counters so injected events
// never collide with events read from the socket.
func WithSequencer(seq *transport.Sequencer) Option {
	return func(a *API) {
		if seq != nil {
			a.sequencer = seq
		}
	}
}

// New creates an API over bridge and router.
func New(bridge *syncbridge.Bridge, router *broadcast.Router, opts ...Option) *API {
	a := &API{
		bridge:    bridge,
		router:    router,
		sequencer: transport.NewSequencer(),
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(logger.Component("syncapi"))
	return a
}

// Register mounts the endpoints on mux under prefix.
func (a *API) Register(mux *http.ServeMux, prefix string) {
	prefix = strings.TrimSuffix(prefix, "/")

	mux.Handle("GET "+prefix+"/connected-ids", handler.Adapt(a.connectedIDs, response.JSONErrorHandler))
	mux.Handle("GET "+prefix+"/wait-for-disconnect", longPoll(handler.Adapt(a.waitForDisconnect, response.JSONErrorHandler)))
	mux.Handle("GET "+prefix+"/wait-for-pointer-update", longPoll(handler.Adapt(a.waitForPointerUpdate, response.JSONErrorHandler)))
	mux.Handle("GET "+prefix+"/send-pointer-update", handler.Adapt(a.sendPointerUpdate, response.JSONErrorHandler))
}

// Handler returns a standalone handler with the endpoints mounted under prefix.
func (a *API) Handler(prefix string) http.Handler {
	mux := http.NewServeMux()
	a.Register(mux, prefix)
	return mux
}

// DisconnectResponse is returned once a connection is gone.
type DisconnectResponse struct {
	ID     domain.ConnectionID `json:"id"`
	Status string              `json:"status"`
}

// PointerResponse describes one pointer event.
type PointerResponse struct {
	X        float64             `json:"x"`
	Y        float64             `json:"y"`
	SourceID domain.ConnectionID `json:"sourceId"`
	Sequence uint64              `json:"seq"`
}

// SendResponse is returned after an injected event has been fanned out.
type SendResponse struct {
	PointerResponse
	Delivered int `json:"delivered"`
}

func pointerResponse(ev domain.PointerEvent) PointerResponse {
	return PointerResponse{
		X:        ev.Point.X,
		Y:        ev.Point.Y,
		SourceID: ev.SourceID,
		Sequence: ev.Sequence,
	}
}

func (a *API) connectedIDs(r *http.Request) handler.Response {
	var ids []domain.ConnectionID
	if requested := r.URL.Query()["id"]; len(requested) > 0 {
		query := make([]domain.ConnectionID, len(requested))
		for i, id := range requested {
			query[i] = domain.ConnectionID(id)
		}
		ids = a.bridge.QueryConnected(query)
	} else {
		ids = a.bridge.ConnectedIDs()
	}
	if ids == nil {
		ids = []domain.ConnectionID{}
	}
	return response.JSON(ids)
}

func (a *API) waitForDisconnect(r *http.Request) handler.Response {
	id, err := connectionID(r)
	if err != nil {
		return response.Error(err)
	}

	if err := a.bridge.WaitForDisconnect(r.Context(), id); err != nil {
		a.logger.Debug("wait for disconnect failed", logger.ConnectionID(id), logger.Error(err))
		return response.Error(toHTTPError(err))
	}
	return response.JSON(DisconnectResponse{ID: id, Status: "disconnected"})
}

func (a *API) waitForPointerUpdate(r *http.Request) handler.Response {
	id, err := connectionID(r)
	if err != nil {
		return response.Error(err)
	}

	ev, err := a.bridge.WaitForPointerUpdate(r.Context(), id)
	if err != nil {
		a.logger.Debug("wait for pointer update failed", logger.ConnectionID(id), logger.Error(err))
		return response.Error(toHTTPError(err))
	}
	return response.JSON(pointerResponse(ev))
}

func (a *API) sendPointerUpdate(r *http.Request) handler.Response {
	id, err := connectionID(r)
	if err != nil {
		return response.Error(err)
	}

	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		return response.Error(ErrInvalidCoordinate)
	}

	var (
		ev        domain.PointerEvent
		delivered int
	)
	// Published under the connection's sequence lock so concurrent senders stay ordered.
	err = a.sequencer.Stamp(id, func(seq uint64) error {
		ev = domain.NewPointerEvent(id, domain.Point{X: x, Y: y}, seq)
		var perr error
		delivered, perr = a.router.Publish(ev)
		return perr
	})
	if err != nil {
		// Unregistered ids must not keep a counter alive.
		if !a.bridgeKnows(id) {
			a.sequencer.Forget(id)
		}
		return response.Error(toHTTPError(err))
	}

	a.logger.Debug("pointer update injected",
		logger.ConnectionID(id),
		logger.Sequence(ev.Sequence),
		logger.Count("delivered", delivered),
	)
	return response.JSON(SendResponse{PointerResponse: pointerResponse(ev), Delivered: delivered})
}

func (a *API) bridgeKnows(id domain.ConnectionID) bool {
	return len(a.bridge.QueryConnected([]domain.ConnectionID{id})) == 1
}

func connectionID(r *http.Request) (domain.ConnectionID, error) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		return "", ErrMissingID
	}
	return domain.ConnectionID(id), nil
}

// longPoll lifts the server write deadline for requests that block on a wait.
func longPoll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Not every ResponseWriter supports deadlines; those have none to lift.
		_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
		next.ServeHTTP(w, r)
	})
}
