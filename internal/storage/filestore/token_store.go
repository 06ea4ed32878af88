package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/makkenzo/license-admin-console/internal/domain/session"
	"go.uber.org/zap"
)

const fileName = "session.json"

// TokenStore persists the admin token in a JSON file readable only by the
// current user. The file holds a single key, session.StorageKey.
type TokenStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

var _ session.TokenStore = (*TokenStore)(nil)

// NewTokenStore creates the store under baseDir, or under
// <user config dir>/license-admin when baseDir is empty.
func NewTokenStore(baseDir string, logger *zap.Logger) (*TokenStore, error) {
	if baseDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user config directory: %w", err)
		}
		baseDir = filepath.Join(dir, "license-admin")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	log := logger.Named("FileTokenStore")
	log.Debug("File token store initialized", zap.String("baseDir", baseDir))

	return &TokenStore{
		path:   filepath.Join(baseDir, fileName),
		logger: log,
	}, nil
}

func (s *TokenStore) Path() string {
	return s.path
}

func (s *TokenStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session file: %w", err)
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Warn("Session file is corrupt, treating as empty", zap.String("path", s.path), zap.Error(err))
		return "", nil
	}
	return values[session.StorageKey], nil
}

func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(map[string]string{session.StorageKey: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	s.logger.Debug("Session token stored", zap.String("path", s.path))
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	s.logger.Debug("Session token cleared", zap.String("path", s.path))
	return nil
}
