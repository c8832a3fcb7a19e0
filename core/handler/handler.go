// Package handler adapts response-returning handlers to net/http.
//
// A HandlerFunc inspects the request and returns a Response. Rendering is
// deferred to Adapt, which routes any error returned by the handler's
// Response to a single ErrorHandler:
//
//	mux.Handle("GET /items", handler.Adapt(listItems, response.JSONErrorHandler))
package handler

import "net/http"

// Response is a function that renders HTTP responses.
// It sets headers, status code, and writes the response body.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc handles a request by returning a Response.
type HandlerFunc func(r *http.Request) Response

// ErrorHandler renders an error returned while serving a request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Adapt converts h into an http.HandlerFunc. A nil Response renders 204.
func Adapt(h HandlerFunc, onError ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h(r)
		if resp == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := resp(w, r); err != nil && onError != nil {
			onError(w, r, err)
		}
	}
}
