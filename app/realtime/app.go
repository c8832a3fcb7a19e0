package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/dmitrymomot/pointersync/core/broadcast"
	"github.com/dmitrymomot/pointersync/core/config"
	"github.com/dmitrymomot/pointersync/core/domain"
	"github.com/dmitrymomot/pointersync/core/handler"
	"github.com/dmitrymomot/pointersync/core/health"
	"github.com/dmitrymomot/pointersync/core/logger"
	"github.com/dmitrymomot/pointersync/core/registry"
	"github.com/dmitrymomot/pointersync/core/response"
	"github.com/dmitrymomot/pointersync/core/server"
	"github.com/dmitrymomot/pointersync/core/syncapi"
	"github.com/dmitrymomot/pointersync/core/syncbridge"
	"github.com/dmitrymomot/pointersync/core/transport"
	"github.com/dmitrymomot/pointersync/middleware"
	"github.com/dmitrymomot/pointersync/pkg/async"
)

// App owns the connection registry, broadcast router and sync bridge for one
// server process, and the HTTP server that exposes them.
type App struct {
	mu     sync.Mutex
	config Config
	logger *slog.Logger
	server *server.Server

	registry  *registry.Registry
	router    *broadcast.Router
	bridge    *syncbridge.Bridge
	sequencer *transport.Sequencer

	started   bool
	stopped   bool
	serveDone chan struct{}
	serveErr  error
}

type AppOption func(*App) error

// NewApp creates an App from environment configuration.
func NewApp(opts ...AppOption) (*App, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// New creates an App from cfg. Nothing listens until Start.
func New(cfg Config, opts ...AppOption) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger.Discard(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.server == nil {
		s, err := server.NewFromConfig(app.config.Server, server.WithLogger(app.logger))
		if err != nil {
			return nil, err
		}
		app.server = s
	}

	return app, nil
}

func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

func WithServer(server *server.Server) AppOption {
	return func(app *App) error {
		if server == nil {
			return errors.New("server cannot be nil")
		}
		app.server = server
		return nil
	}
}

// Start initializes the registry, router and bridge, then binds the listener
// and begins serving. No connection is accepted before the core is ready.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started {
		return ErrAlreadyStarted
	}

	a.registry = registry.New(registry.WithLogger(a.logger))
	a.bridge = syncbridge.New(a.registry,
		syncbridge.WithConfig(a.config.Sync),
		syncbridge.WithLogger(a.logger),
	)
	a.router = broadcast.New(a.registry,
		broadcast.WithPointerHook(a.bridge.NotifyPointerUpdate),
		broadcast.WithLogger(a.logger),
	)
	a.sequencer = transport.NewSequencer()

	if err := a.server.Listen(a.routes()); err != nil {
		return err
	}

	a.serveDone = make(chan struct{})
	go func() {
		defer close(a.serveDone)
		a.serveErr = a.server.Serve()
	}()

	a.started = true
	a.logger.InfoContext(ctx, "realtime server started",
		slog.String("app", a.config.AppName),
		slog.String("addr", a.server.Addr().String()),
		slog.Bool("sync_api", a.config.SyncAPIEnabled),
	)
	return nil
}

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	d := &dispatcher{registry: a.registry, router: a.router, logger: a.logger}
	mux.Handle("GET /ws", transport.Handler(d,
		transport.WithConfig(a.config.Transport),
		transport.WithSequencer(a.sequencer),
		transport.WithLogger(a.logger),
	))

	mux.Handle("GET /health", handler.Adapt(
		health.Status(a.logger, a.registry.Len, a.ready),
		response.JSONErrorHandler,
	))
	mux.Handle("GET /health/live", handler.Adapt(health.Liveness, response.JSONErrorHandler))

	if a.config.SyncAPIEnabled {
		api := syncapi.New(a.bridge, a.router,
			syncapi.WithSequencer(a.sequencer),
			syncapi.WithLogger(a.logger),
		)
		api.Register(mux, a.config.SyncAPIPrefix)
	}

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger:   a.logger,
			LogLevel: slog.LevelDebug,
			Skip: func(r *http.Request) bool {
				return r.URL.Path == "/health/live"
			},
		}),
	)
}

func (a *App) ready(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return domain.ErrServerStopped
	}
	return nil
}

// Stop releases every outstanding wait with ErrServerStopped, closes every
// live channel and then shuts the HTTP server down gracefully.
// It returns ErrNotStarted when Start has not completed.
func (a *App) Stop() error {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return ErrNotStarted
	}
	if a.stopped {
		a.mu.Unlock()
		return nil
	}
	a.stopped = true
	a.mu.Unlock()

	released := a.bridge.Close()

	channels := a.registry.Channels()
	futures := make([]*async.Future[struct{}], 0, len(channels))
	for _, ch := range channels {
		futures = append(futures, async.Async(context.Background(), ch, func(_ context.Context, ch domain.Channel) (struct{}, error) {
			return struct{}{}, ch.Close()
		}))
	}
	if _, err := async.WaitAll(futures...); err != nil {
		a.logger.Warn("failed to close channel", logger.Error(err))
	}

	a.logger.Info("realtime server stopping",
		logger.Count("released_waiters", released),
		logger.Count("closed_channels", len(channels)),
	)

	if err := a.server.Stop(); err != nil {
		return err
	}
	<-a.serveDone
	return a.serveErr
}

// Run provides errgroup compatibility: it starts the app and stops it when
// ctx is cancelled.
func (a *App) Run(ctx context.Context) func() error {
	return func() error {
		if err := a.Start(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return a.Stop()
		case <-a.serveDone:
			// Serve failed on its own; Stop still releases waiters and channels
			// and reports the serve error.
			return a.Stop()
		}
	}
}

// Addr returns the bound listener address, or nil before Start.
func (a *App) Addr() net.Addr {
	return a.server.Addr()
}

// Registry returns the live connection registry, or nil before Start.
func (a *App) Registry() *registry.Registry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.registry
}

// Bridge returns the sync bridge, or nil before Start.
func (a *App) Bridge() *syncbridge.Bridge {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bridge
}
