// Package api implements the memo REST API using chi.
package api

import (
	"errors"
	"net/http"
)

// DefaultBodyLimit caps request bodies.
const DefaultBodyLimit int64 = 1 << 20

// BodyLimit returns middleware that caps request bodies at n bytes. A declared
// length over n is rejected here; reads past n on a chunked body fail with
// *http.MaxBytesError, which handlers pass to bodyTooLarge.
func BodyLimit(n int64) func(http.Handler) http.Handler {
	if n <= 0 {
		n = DefaultBodyLimit
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > n {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(kindBadRequest, "request body too large"))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bodyTooLarge writes 413 and reports true when err came from a body that
// exceeded the BodyLimit cap.
func bodyTooLarge(w http.ResponseWriter, err error) bool {
	var mbe *http.MaxBytesError
	if !errors.As(err, &mbe) {
		return false
	}
	writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(kindBadRequest, "request body too large"))
	return true
}
