// Package auth resolves the session cookie into an authenticated identity
// carried in the request context.
package auth

import (
	"context"
	"net/http"
	"time"

	"pktracker/internal/auth"
	"pktracker/internal/core"
	applog "pktracker/internal/log"
)

const CookieName = "pk_session"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated user for the current request.
type Identity struct {
	UserID   core.UserID
	Username string
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity stored by Session, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// UserID extracts the authenticated user id, or 0.
func UserID(ctx context.Context) core.UserID {
	id, _ := FromContext(ctx)
	return id.UserID
}

// Session validates the session cookie when present and stores the identity
// in the context. Requests without a valid session pass through anonymous.
func Session(sessions *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := sessions.Validate(c.Value)
			if err != nil {
				applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).
					DebugContext(r.Context(), "Discarding invalid session", applog.FieldError, err)
				ClearCookie(w, r.TLS != nil)
				next.ServeHTTP(w, r)
				return
			}
			uid, _ := claims.UserID()
			ctx := WithIdentity(r.Context(), Identity{UserID: uid, Username: claims.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth redirects anonymous requests to loginPath, keeping the
// original path of GET requests in ?next=.
func RequireAuth(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				target := loginPath
				if r.Method == http.MethodGet {
					target += "?next=" + r.URL.EscapedPath()
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetCookie stores a freshly issued session token.
func SetCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
