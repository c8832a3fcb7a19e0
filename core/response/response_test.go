package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pointersync/core/handler"
	"github.com/dmitrymomot/pointersync/core/response"
)

type teapotError struct{}

func (teapotError) Error() string   { return "short and stout" }
func (teapotError) StatusCode() int { return http.StatusTeapot }

func serve(t *testing.T, h handler.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.Adapt(h, response.JSONErrorHandler).ServeHTTP(rec, req)
	return rec
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("ok_body", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, func(*http.Request) handler.Response {
			return response.JSON([]string{"a", "b"})
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `["a","b"]`, rec.Body.String())
	})

	t.Run("nil_with_zero_status_is_no_content", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, func(*http.Request) handler.Response {
			return response.JSONWithStatus(nil, 0)
		})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("nil_response_is_no_content", func(t *testing.T) {
		t.Parallel()
		rec := serve(t, func(*http.Request) handler.Response { return nil })
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestJSONErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"http_error", response.ErrConflict.WithMessage("taken"), http.StatusConflict, "conflict"},
		{"wrapped_http_error", fmt.Errorf("ctx: %w", response.ErrNotFound), http.StatusNotFound, "not_found"},
		{"status_coder", teapotError{}, http.StatusTeapot, "error"},
		{"plain_error", errors.New("boom"), http.StatusInternalServerError, "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(t, func(*http.Request) handler.Response {
				return response.Error(tt.err)
			})
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestHTTPError_WithDetails(t *testing.T) {
	t.Parallel()
	base := response.ErrBadRequest.WithDetails(map[string]any{"field": "id"})
	withCause := base.WithError(errors.New("missing"))

	assert.Equal(t, map[string]any{"field": "id"}, base.Details, "copies must not share maps")
	assert.Equal(t, map[string]any{"field": "id", "cause": "missing"}, withCause.Details)
	assert.Nil(t, response.ErrBadRequest.Details)
	assert.Equal(t, http.StatusBadRequest, withCause.StatusCode())
}
