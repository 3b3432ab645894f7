package auth

import (
	"context"
	"net/http"
	"strings"
)

// SessionCookie is the name of the UI session cookie.
const SessionCookie = "erpdash_session"

type sessionKey struct{}

// SessionFromContext returns the signed-in session, if any.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok
}

// Middleware resolves the caller's session from the session cookie or a
// bearer Authorization header and stores it in the request context.
// Anonymous requests pass through untouched: the stats backend, not this
// layer, decides whether anonymous access is acceptable.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s := m.resolve(r); s != nil {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey{}, s))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) resolve(r *http.Request) *Session {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if s, err := m.SessionByID(c.Value); err == nil {
			return s
		}
	}

	authz := r.Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	if token == "" {
		return nil
	}
	claims, err := m.ParseToken(token)
	if err != nil {
		return nil
	}
	// Header-carried tokens get a transient session, not a stored one.
	return &Session{UserID: claims.UserID, Email: claims.Email, Token: token}
}

// ContextTokenSource feeds the stats client the current request's bearer
// token. It is injected at construction instead of read from process-wide
// state, so the client carries no ambient dependency.
type ContextTokenSource struct{}

func (ContextTokenSource) Token(ctx context.Context) string {
	if s, ok := SessionFromContext(ctx); ok {
		return s.Token
	}
	return ""
}
