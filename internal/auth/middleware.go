// ABOUTME: HTTP middleware that gates every route behind a valid session cookie
// ABOUTME: Allow-list check first, then cookie presence, then session lookup

package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the name of the session cookie
const SessionCookieName = "session"

// LandingPath is where unauthenticated traffic is redirected
const LandingPath = "/landing"

// PublicRoutes are reachable without a session. Matched by prefix.
var PublicRoutes = []string{
	"/landing",
	"/login",
	"/signup",
	"/api/login",
	"/api/logout",
	"/api/signup",
	"/health",
}

// Middleware returns a handler wrapper enforcing session authentication.
// Transition order: allow-list (no DB hit), cookie presence, session lookup.
// A failed lookup clears the cookie and redirects; it is never surfaced as
// an error to the client.
func Middleware(sessions *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth-middleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, LandingPath, http.StatusSeeOther)
				return
			}

			identity, err := sessions.GetSession(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, ErrSessionNotFound) {
					logger.Error("session lookup failed", "error", err)
				}
				ClearSessionCookie(w)
				http.Redirect(w, r, LandingPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// isPublic reports whether the path matches the public allow-list.
func isPublic(path string) bool {
	for _, route := range PublicRoutes {
		if strings.HasPrefix(path, route) {
			return true
		}
	}
	return false
}

// SetSessionCookie writes the session cookie for a freshly issued token.
// ttl should match the lifetime the token was issued with.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = SessionDuration
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
