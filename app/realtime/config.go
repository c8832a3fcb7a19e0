package realtime

import (
	"log/slog"

	"github.com/dmitrymomot/pointersync/core/logger"
	"github.com/dmitrymomot/pointersync/core/server"
	"github.com/dmitrymomot/pointersync/core/syncbridge"
	"github.com/dmitrymomot/pointersync/core/transport"
)

type Config struct {
	Server    server.Config
	Transport transport.Config
	Sync      syncbridge.Config

	SyncAPIEnabled bool   `env:"SYNC_API_ENABLED" envDefault:"true"`
	SyncAPIPrefix  string `env:"SYNC_API_PREFIX" envDefault:"/sync"`

	AppName string `env:"APP_NAME" envDefault:"pointersync"`
	Env     string `env:"APP_ENV" envDefault:"development"`
	// LogLevel overrides the preset level for Env when set.
	LogLevel string `env:"LOG_LEVEL"`
}

// DefaultConfig mirrors the env defaults.
func DefaultConfig() Config {
	return Config{
		Server:         server.DefaultConfig(),
		Transport:      transport.DefaultConfig(),
		Sync:           syncbridge.DefaultConfig(),
		SyncAPIEnabled: true,
		SyncAPIPrefix:  "/sync",
		AppName:        "pointersync",
		Env:            "development",
	}
}

// IsProduction reports whether APP_ENV selects production logging.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Logger builds the process logger: the development or production preset
// for Env, with LogLevel applied on top only when it is set. opts come last.
func (c Config) Logger(opts ...logger.Option) *slog.Logger {
	preset := logger.WithDevelopment(c.AppName)
	if c.IsProduction() {
		preset = logger.WithProduction(c.AppName)
	}
	all := []logger.Option{preset}
	if c.LogLevel != "" {
		all = append(all, logger.WithLevel(logger.ParseLevel(c.LogLevel)))
	}
	return logger.New(append(all, opts...)...)
}
