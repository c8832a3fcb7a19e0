package response

import (
	"errors"
	"net/http"
)

// statusCode is an interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// ToHTTPError converts any error to an HTTPError.
func ToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = newHTTPError(status, "error")
	}
	return base.WithError(err)
}

// JSONErrorHandler renders err as a JSON HTTPError body.
func JSONErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := ToHTTPError(err)
	// The JSON encoder only fails once headers are out; nothing left to report to.
	_ = JSONWithStatus(httpErr, httpErr.Status)(w, r)
}
