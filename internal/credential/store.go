// Package credential persists the single bearer token used by the API client.
//
// A Store holds at most one token, under the fixed key TokenKey. It is set on a
// successful login, replaced on refresh and cleared on logout or when the
// server reports the session as invalid.
package credential

import (
	"context"
	"errors"
	"sync"
)

// TokenKey is the fixed name the bearer token is stored under.
const TokenKey = "auth_token"

// ErrEmptyToken is returned when SetToken is called with an empty token.
var ErrEmptyToken = errors.New("credential: empty token")

// Store is a durable holder for the bearer token.
// Token returns "" when no token is stored.
type Store interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the token in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
