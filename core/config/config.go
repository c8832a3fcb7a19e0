package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilTarget is returned when Load is called with a nil pointer.
var ErrNilTarget = errors.New("config: target must be a non-nil pointer")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> any (value of T)
	loadMu     sync.Mutex
)

// Load parses environment variables into dst. The first successful load of a
// type is cached and copied into later targets of the same type.
func Load[T any](dst *T) error {
	if dst == nil {
		return ErrNilTarget
	}

	typ := reflect.TypeFor[T]()
	if cached, ok := cache.Load(typ); ok {
		*dst = cached.(T)
		return nil
	}

	loadMu.Lock()
	defer loadMu.Unlock()

	if cached, ok := cache.Load(typ); ok {
		*dst = cached.(T)
		return nil
	}

	loadDotenv()

	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", typ, err)
	}
	cache.Store(typ, cfg)
	*dst = cfg
	return nil
}

// MustLoad is like Load but panics on failure. Useful at startup.
func MustLoad[T any](dst *T) {
	if err := Load(dst); err != nil {
		panic(err)
	}
}

// Reset clears the cache so the next Load re-reads the environment.
func Reset() {
	loadMu.Lock()
	defer loadMu.Unlock()
	cache.Range(func(k, _ any) bool {
		cache.Delete(k)
		return true
	})
}

func loadDotenv() {
	dotenvOnce.Do(func() {
		// A missing .env file is normal outside development.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("config: failed to load .env", "error", err)
		}
	})
}
