package health

import (
	"net/http"

	"github.com/dmitrymomot/pointersync/core/handler"
	"github.com/dmitrymomot/pointersync/core/response"
)

// Liveness indicates if the service process is running.
// Always returns "ALIVE" with 200 OK. No dependency checks.
func Liveness(*http.Request) handler.Response {
	return response.String("ALIVE")
}
