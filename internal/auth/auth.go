// Package auth verifies bearer JWTs issued by the identity provider and
// keeps cookie-backed sessions for the web UI.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrSessionExpired = errors.New("session expired")
)

// Claims are the identity claims carried by a bearer token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Session is a signed-in user. It retains the raw bearer token so the
// stats client can forward it on backend calls.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Manager validates tokens and tracks active sessions in memory.
type Manager struct {
	secret []byte

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(jwtSecret string) *Manager {
	return &Manager{
		secret:   []byte(jwtSecret),
		sessions: make(map[string]*Session),
	}
}

// ParseToken verifies a bearer token's signature and expiry.
func (m *Manager) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignInWithToken validates a provider-issued token and opens a session.
func (m *Manager) SignInWithToken(token string) (*Session, error) {
	claims, err := m.ParseToken(token)
	if err != nil {
		return nil, err
	}

	expires := time.Now().Add(12 * time.Hour)
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(expires) {
		expires = claims.ExpiresAt.Time
	}

	s := &Session{
		ID:        uuid.NewString(),
		UserID:    claims.UserID,
		Email:     claims.Email,
		Token:     token,
		ExpiresAt: expires,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s, nil
}

// SessionByID returns an active session, expiring it lazily.
func (m *Manager) SessionByID(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionExpired
	}
	if time.Now().After(s.ExpiresAt) {
		m.SignOut(id)
		return nil, ErrSessionExpired
	}
	return s, nil
}

// SignOut drops a session. Unknown ids are a no-op.
func (m *Manager) SignOut(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
