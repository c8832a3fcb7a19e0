package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pointersync/core/domain"
	"github.com/dmitrymomot/pointersync/core/logger"
)

func TestGroup(t *testing.T) {
	t.Parallel()
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestErrors(t *testing.T) {
	t.Parallel()
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "0", g[0].Key)
	assert.Equal(t, "2", g[1].Key)
	assert.Equal(t, err2, g[1].Value.Any())

	assert.True(t, logger.Errors(nil, nil).Equal(slog.Attr{}))
}

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestTimingAttrs(t *testing.T) {
	t.Parallel()
	d := logger.Duration(2 * time.Second)
	assert.Equal(t, "duration", d.Key)
	assert.Equal(t, 2*time.Second, d.Value.Duration())

	e := logger.Elapsed(time.Now().Add(-time.Second))
	assert.Equal(t, "elapsed", e.Key)
	assert.GreaterOrEqual(t, e.Value.Duration(), time.Second)
}

func TestRealtimeAttrs(t *testing.T) {
	t.Parallel()

	t.Run("connection_id", func(t *testing.T) {
		t.Parallel()
		attr := logger.ConnectionID(domain.ConnectionID("abc"))
		assert.Equal(t, "connection_id", attr.Key)
		assert.Equal(t, "abc", attr.Value.String())
		assert.True(t, logger.ConnectionID("").Equal(slog.Attr{}))
	})

	t.Run("sequence", func(t *testing.T) {
		t.Parallel()
		attr := logger.Sequence(42)
		assert.Equal(t, "seq", attr.Key)
		assert.Equal(t, uint64(42), attr.Value.Uint64())
	})

	t.Run("remote_addr_empty", func(t *testing.T) {
		t.Parallel()
		assert.True(t, logger.RemoteAddr("").Equal(slog.Attr{}))
	})
}

func TestHTTPAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GET", logger.Method("GET").Value.String())
	assert.Equal(t, int64(404), logger.StatusCode(404).Value.Int64())
	assert.Equal(t, "request_id", logger.RequestID("r1").Key)
	assert.True(t, logger.RequestID("").Equal(slog.Attr{}))
	assert.True(t, logger.Query("").Equal(slog.Attr{}))
	assert.Equal(t, "a=1", logger.Query("a=1").Value.String())
	assert.Equal(t, int64(12), logger.BytesOut(12).Value.Int64())
}
