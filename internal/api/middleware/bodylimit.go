package middleware

import "net/http"

// DefaultMaxBody bounds JSON request bodies. Inline transcripts of long
// lectures run to a few hundred kilobytes.
const DefaultMaxBody = 2 << 20

// MaxBodySize limits the request body to the given number of bytes.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
