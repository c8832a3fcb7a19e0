// Package response builds handler.Response values: JSON bodies and structured
// HTTP errors.
//
// Handlers return errors as responses and let a single error handler render
// them:
//
//	func get(r *http.Request) handler.Response {
//		item, err := store.Get(r.URL.Query().Get("id"))
//		if err != nil {
//			return response.Error(response.ErrNotFound.WithError(err))
//		}
//		return response.JSON(item)
//	}
//
// JSONErrorHandler renders any error as an HTTPError body. Errors that are not
// an HTTPError become 500 unless they implement StatusCode() int.
package response
