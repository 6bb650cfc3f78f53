package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// http.TimeoutHandler writes the body verbatim, so it is rendered once
	// up front from the shared envelope.
	body, _ := json.Marshal(errorEnvelope("REQUEST_TIMEOUT", "request timed out"))

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
