package handler

import (
	"net/http"
	"time"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// CookieConfig controls how the token cookies are written. Secure is enabled
// outside local development.
type CookieConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Secure     bool
}

func (c CookieConfig) write(w http.ResponseWriter, name string, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c CookieConfig) setAccessCookie(w http.ResponseWriter, accessToken string) {
	c.write(w, accessTokenCookie, accessToken, int(c.AccessTTL.Seconds()))
}

func (c CookieConfig) setAuthCookies(w http.ResponseWriter, accessToken string, refreshToken string) {
	c.setAccessCookie(w, accessToken)
	c.write(w, refreshTokenCookie, refreshToken, int(c.RefreshTTL.Seconds()))
}

func (c CookieConfig) clearAuthCookies(w http.ResponseWriter) {
	c.write(w, accessTokenCookie, "", -1)
	c.write(w, refreshTokenCookie, "", -1)
}

// refreshTokenFromRequest returns the refresh cookie value, or empty when the
// cookie is absent.
func refreshTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
