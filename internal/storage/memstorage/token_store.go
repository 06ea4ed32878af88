package memstorage

import (
	"context"
	"sync"

	"github.com/makkenzo/license-admin-console/internal/domain/session"
)

// TokenStore keeps the admin token in process memory only.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

var _ session.TokenStore = (*TokenStore)(nil)

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

func (s *TokenStore) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
