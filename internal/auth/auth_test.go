package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"erpdash/internal/auth"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret string, expires time.Time) string {
	t.Helper()
	claims := auth.Claims{
		UserID: "u-1",
		Email:  "ops@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseTokenValid(t *testing.T) {
	mgr := auth.NewManager(testSecret)
	token := mintToken(t, testSecret, time.Now().Add(time.Hour))

	claims, err := mgr.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, "ops@example.com", claims.Email)
}

func TestParseTokenWrongSecret(t *testing.T) {
	mgr := auth.NewManager(testSecret)
	token := mintToken(t, "other-secret", time.Now().Add(time.Hour))

	_, err := mgr.ParseToken(token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	mgr := auth.NewManager(testSecret)
	token := mintToken(t, testSecret, time.Now().Add(-time.Minute))

	_, err := mgr.ParseToken(token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSignInOpensSession(t *testing.T) {
	mgr := auth.NewManager(testSecret)
	token := mintToken(t, testSecret, time.Now().Add(time.Hour))

	s, err := mgr.SignInWithToken(token)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	require.Equal(t, token, s.Token, "the session retains the raw token for backend calls")

	got, err := mgr.SessionByID(s.ID)
	require.NoError(t, err)
	require.Equal(t, s.ID, got.ID)
}

func TestSessionExpiryCappedByClaim(t *testing.T) {
	mgr := auth.NewManager(testSecret)
	claimExpiry := time.Now().Add(30 * time.Minute)
	token := mintToken(t, testSecret, claimExpiry)

	s, err := mgr.SignInWithToken(token)
	require.NoError(t, err)
	require.WithinDuration(t, claimExpiry, s.ExpiresAt, 2*time.Second)
}

func TestSignOutDropsSession(t *testing.T) {
	mgr := auth.NewManager(testSecret)
	s, err := mgr.SignInWithToken(mintToken(t, testSecret, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	mgr.SignOut(s.ID)

	_, err = mgr.SessionByID(s.ID)
	require.ErrorIs(t, err, auth.ErrSessionExpired)

	// Unknown ids are a no-op.
	mgr.SignOut("nope")
}

func TestSessionByIDUnknown(t *testing.T) {
	mgr := auth.NewManager(testSecret)

	_, err := mgr.SessionByID("nope")
	require.ErrorIs(t, err, auth.ErrSessionExpired)
}

func TestMiddlewareBearerHeader(t *testing.T) {
	mgr := auth.NewManager(testSecret)
	token := mintToken(t, testSecret, time.Now().Add(time.Hour))

	var seen *auth.Session
	h := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.SessionFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.NotNil(t, seen)
	require.Equal(t, "ops@example.com", seen.Email)
	require.Equal(t, token, seen.Token)
}

func TestMiddlewareSessionCookie(t *testing.T) {
	mgr := auth.NewManager(testSecret)
	s, err := mgr.SignInWithToken(mintToken(t, testSecret, time.Now().Add(time.Hour)))
	require.NoError(t, err)

	var seen *auth.Session
	h := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.SessionFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: s.ID})
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.NotNil(t, seen)
	require.Equal(t, s.ID, seen.ID)
}

func TestMiddlewareAnonymousPassesThrough(t *testing.T) {
	mgr := auth.NewManager(testSecret)

	called := false
	h := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := auth.SessionFromContext(r.Context())
		require.False(t, ok)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, called)
}

func TestMiddlewareGarbageTokenIsAnonymous(t *testing.T) {
	mgr := auth.NewManager(testSecret)

	h := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := auth.SessionFromContext(r.Context())
		require.False(t, ok)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")
	h.ServeHTTP(httptest.NewRecorder(), r)
}

func TestContextTokenSource(t *testing.T) {
	mgr := auth.NewManager(testSecret)
	token := mintToken(t, testSecret, time.Now().Add(time.Hour))

	var got string
	h := mgr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.ContextTokenSource{}.Token(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), r)
	require.Equal(t, token, got)

	// Anonymous requests yield an empty token, and the stats client sends
	// no Authorization header for those.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), r)
	require.Empty(t, got)
}
