package syncapi

import (
	"context"
	"errors"

	"github.com/dmitrymomot/pointersync/core/domain"
	"github.com/dmitrymomot/pointersync/core/response"
)

var (
	ErrMissingID         = response.ErrBadRequest.WithMessage("query parameter id is required")
	ErrInvalidCoordinate = response.ErrBadRequest.WithMessage("query parameters x and y must be numbers")
)

// toHTTPError maps the domain error taxonomy onto HTTP statuses.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownConnection):
		return response.ErrNotFound.WithMessage("unknown connection").WithError(err)
	case errors.Is(err, domain.ErrDuplicateWait):
		return response.ErrConflict.WithMessage("wait already armed").WithError(err)
	case errors.Is(err, domain.ErrStaleEvent):
		return response.ErrConflict.WithMessage("stale pointer event").WithError(err)
	case errors.Is(err, domain.ErrWaitTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return response.ErrGatewayTimeout.WithMessage("wait timed out").WithError(err)
	case errors.Is(err, domain.ErrServerStopped):
		return response.ErrServiceUnavailable.WithMessage("server stopped").WithError(err)
	}
	return err
}
