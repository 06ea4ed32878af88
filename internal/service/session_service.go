package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/makkenzo/license-admin-console/internal/domain/session"
	"go.uber.org/zap"
)

type AuthState string

const (
	StateLoading         AuthState = "loading"
	StateAuthenticated   AuthState = "authenticated"
	StateUnauthenticated AuthState = "unauthenticated"
)

// SessionService is the auth gate in front of every view. It owns the
// transitions of the single admin session; the token itself lives in the
// injected store.
type SessionService struct {
	api      AuthAPI
	tokens   session.TokenStore
	nav      *Navigator
	reporter Reporter
	logger   *zap.Logger

	mu    sync.RWMutex
	state AuthState
}

func NewSessionService(api AuthAPI, tokens session.TokenStore, nav *Navigator, reporter Reporter, logger *zap.Logger) *SessionService {
	return &SessionService{
		api:      api,
		tokens:   tokens,
		nav:      nav,
		reporter: reporter,
		logger:   logger.Named("SessionService"),
		state:    StateLoading,
	}
}

func (s *SessionService) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *SessionService) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

func (s *SessionService) setState(state AuthState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Start validates a previously stored token by issuing a stats request. Any
// failure clears the token and leaves the session unauthenticated without
// surfacing an error.
func (s *SessionService) Start(ctx context.Context) AuthState {
	s.setState(StateLoading)

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.logger.Warn("Failed to read stored token", zap.Error(err))
		s.setState(StateUnauthenticated)
		return StateUnauthenticated
	}
	if token == "" {
		s.logger.Debug("No stored token, starting unauthenticated")
		s.setState(StateUnauthenticated)
		return StateUnauthenticated
	}

	if _, err := s.api.GetStats(ctx); err != nil {
		s.logger.Info("Stored token rejected, clearing session", zap.Error(err))
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			s.logger.Error("Failed to clear rejected token", zap.Error(clearErr))
		}
		s.setState(StateUnauthenticated)
		return StateUnauthenticated
	}

	s.logger.Info("Stored token validated, session authenticated")
	s.setState(StateAuthenticated)
	return StateAuthenticated
}

// Login persists token and authenticates without re-validating it.
func (s *SessionService) Login(ctx context.Context, token string) error {
	if err := s.tokens.SetToken(ctx, token); err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}
	s.setState(StateAuthenticated)
	s.logger.Info("Admin session started")
	return nil
}

// Authenticate exchanges credentials for a token and logs in with it.
func (s *SessionService) Authenticate(ctx context.Context, username, password string) error {
	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.reporter.Report(ViewSession, err)
		return err
	}
	return s.Login(ctx, token)
}

// Logout clears the token, deauthenticates and resets navigation.
func (s *SessionService) Logout(ctx context.Context) error {
	err := s.tokens.Clear(ctx)
	if err != nil {
		s.logger.Error("Failed to clear session token", zap.Error(err))
	}
	s.setState(StateUnauthenticated)
	if s.nav != nil {
		s.nav.Reset()
	}
	s.logger.Info("Admin session ended")
	return err
}
