package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/pointersync/core/handler"
	"github.com/dmitrymomot/pointersync/core/logger"
	"github.com/dmitrymomot/pointersync/core/response"
)

// Readiness verifies all service dependencies are functioning.
// Returns "READY" if all checks pass, 503 Service Unavailable if any fail.
func Readiness(log *slog.Logger, fn ...func(context.Context) error) handler.HandlerFunc {
	return func(r *http.Request) handler.Response {
		if err := check(r.Context(), fn); err != nil {
			log.ErrorContext(r.Context(), "Readiness check failed", logger.Error(err))
			return response.Error(response.ErrServiceUnavailable)
		}
		return response.String("READY")
	}
}

// StatusReport is the body served by Status.
type StatusReport struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
}

// Status reports "ok" and the current client count, or 503 with status
// "unavailable" when any check fails.
func Status(log *slog.Logger, clients func() int, fn ...func(context.Context) error) handler.HandlerFunc {
	return func(r *http.Request) handler.Response {
		report := StatusReport{Status: "ok"}
		if clients != nil {
			report.Clients = clients()
		}

		if err := check(r.Context(), fn); err != nil {
			log.WarnContext(r.Context(), "Health check failed", logger.Error(err))
			report.Status = "unavailable"
			return response.JSONWithStatus(report, http.StatusServiceUnavailable)
		}
		return response.JSON(report)
	}
}

func check(ctx context.Context, fn []func(context.Context) error) error {
	for _, f := range fn {
		if err := f(ctx); err != nil {
			return err
		}
	}
	return nil
}
