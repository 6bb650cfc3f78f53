package middleware

import (
	"context"
	"net/http"

	"go-account-service/internal/model"
)

type tokenVerifier interface {
	VerifyAccess(tokenString string) (*model.TokenClaims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

// AccessTokenCookie is the cookie carrying the short-lived access token.
const AccessTokenCookie = "accessToken"

type AuthMiddleware struct {
	verifier tokenVerifier
}

func NewAuthMiddleware(verifier tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth authenticates the request from the access-token cookie.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(AccessTokenCookie)
		if err != nil || cookie.Value == "" {
			writeUnauthorized(w, "authentication required")
			return
		}

		claims, err := m.verifier.VerifyAccess(cookie.Value)
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) (*model.TokenClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.TokenClaims)
	return claims, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, errorEnvelope("UNAUTHORIZED", message))
}
