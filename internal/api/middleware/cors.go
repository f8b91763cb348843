package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the quiz front end to call the API from the given origins.
// An empty list or "*" allows any origin without credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(corsOptions(origins))
}

func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Location", "Retry-After"},
		MaxAge:         300,
	}
	if len(origins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	opts.AllowCredentials = true
	for _, o := range opts.AllowedOrigins {
		if o == "*" {
			opts.AllowCredentials = false
		}
	}
	return opts
}
