package mw

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/linkdrop/internal/httpx"
	"github.com/MrSnakeDoc/linkdrop/internal/session"
)

const (
	// VisitorCookie carries the long-lived opaque visitor identity the claim
	// cooldown keys on.
	VisitorCookie = "linkdrop_visitor"
	// SessionCookie carries the browser session token the admin flag lives on.
	SessionCookie = "linkdrop_session"

	visitorCookieMaxAge = int(5 * 365 * 24 * time.Hour / time.Second)
)

type contextKey string

const (
	visitorIDKey    contextKey = "visitor_id"
	sessionTokenKey contextKey = "session_token"
)

// Sessions issues the visitor and session cookies on first contact and puts
// both identities on the request context. Handlers never read cookies
// directly.
func Sessions(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			visitorID := cookieValue(r, VisitorCookie)
			if visitorID == "" {
				visitorID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    visitorID,
					Path:     "/",
					MaxAge:   visitorCookieMaxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx = context.WithValue(ctx, visitorIDKey, visitorID)

			token := cookieValue(r, SessionCookie)
			if token == "" || !sessions.Valid(token) {
				token = sessions.Issue()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx = context.WithValue(ctx, sessionTokenKey, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose session does not hold the admin flag.
// It performs no other state inspection, so unauthorized callers learn nothing
// about the catalog.
func RequireAdmin(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r.Context())
			if token == "" || !sessions.IsAdmin(token) {
				httpx.WriteJSON(w, http.StatusUnauthorized, map[string]any{
					"ok":    false,
					"error": "unauthorized",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// VisitorID returns the opaque visitor identity set by Sessions.
func VisitorID(ctx context.Context) string {
	if v, ok := ctx.Value(visitorIDKey).(string); ok {
		return v
	}
	return ""
}

// SessionToken returns the session token set by Sessions.
func SessionToken(ctx context.Context) string {
	if v, ok := ctx.Value(sessionTokenKey).(string); ok {
		return v
	}
	return ""
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return ""
	}
	return c.Value
}
