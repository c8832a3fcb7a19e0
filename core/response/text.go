package response

import (
	"net/http"

	"github.com/dmitrymomot/pointersync/core/handler"
)

// String creates a text/plain response with 200 OK status.
func String(s string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(s))
		return err
	}
}
