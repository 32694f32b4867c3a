package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CookieName is the session cookie set on login
const CookieName = "yatube_session"

// ErrNoSession is returned when a token does not resolve to a live
// session
var ErrNoSession = errors.New("no such session")

// TokenStore is the backing store for session tokens. The redis cache
// satisfies it in production; tests use an in-memory map.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
}

// Sessions issues and resolves opaque session tokens
type Sessions struct {
	store TokenStore
	ttl   time.Duration
}

// NewSessions creates a session manager on top of a token store
func NewSessions(store TokenStore, ttl time.Duration) *Sessions {
	return &Sessions{store: store, ttl: ttl}
}

// Create opens a session for a user and returns the token to put in
// the cookie
func (s *Sessions) Create(username string) (string, error) {
	token := uuid.NewString()
	if err := s.store.Set(sessionKey(token), username, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Resolve maps a token back to the username it was issued for
func (s *Sessions) Resolve(token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	username, err := s.store.Get(sessionKey(token))
	if err != nil || username == "" {
		return "", ErrNoSession
	}
	return username, nil
}

// Destroy ends a session; destroying an unknown token is a no-op
func (s *Sessions) Destroy(token string) error {
	if token == "" {
		return nil
	}
	return s.store.Delete(sessionKey(token))
}

func sessionKey(token string) string {
	return "session:" + token
}
