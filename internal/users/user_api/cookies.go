package user_api

import (
	"net/http"

	"eventos-api/internal/config"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
	markerCookie  = "logged_user"

	accessMaxAge  = 60 * 60 * 24 * 7
	refreshMaxAge = 60 * 60 * 24 * 30
)

// cookieWriter applies the environment-dependent cookie attributes:
// Secure and Domain only in production, SameSite=Lax and path=/
// everywhere.
type cookieWriter struct {
	domain string
	secure bool
}

func newCookieWriter(cfg config.AuthConfig) cookieWriter {
	return cookieWriter{
		domain: cfg.CookieDomain,
		secure: cfg.Production,
	}
}

func (c cookieWriter) set(w http.ResponseWriter, name, value string, maxAge int, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// setAuth writes the access cookie and the readable logged_user
// marker; the refresh cookie only when a refresh token is given
// (refresh tokens are not rotated on /refresh).
func (c cookieWriter) setAuth(w http.ResponseWriter, accessToken, refreshToken string) {
	c.set(w, accessCookie, accessToken, accessMaxAge, true)
	if refreshToken != "" {
		c.set(w, refreshCookie, refreshToken, refreshMaxAge, true)
	}
	c.set(w, markerCookie, "true", accessMaxAge, false)
}

func (c cookieWriter) clearAuth(w http.ResponseWriter) {
	for _, name := range []string{accessCookie, refreshCookie, markerCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   c.domain,
			MaxAge:   -1,
			Secure:   c.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
