package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows the configured single-page-app origins. Credentials are enabled
// because tokens travel in cookies, so a wildcard origin is not allowed.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		MaxAge:           3600,
		AllowCredentials: true,
	})

	return handler.Handler
}
