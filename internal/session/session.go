// Package session tracks who is logged in. It owns the stored credential:
// login writes it, logout and invalid-session responses clear it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
	"github.com/sirius-dms/dms-client/internal/credential"
	"github.com/sirius-dms/dms-client/internal/logging"
	"github.com/sirius-dms/dms-client/internal/services"
	"go.uber.org/zap"
)

var (
	// ErrTokenNotPersisted is returned when the credential store accepted a
	// token but does not hand it back.
	ErrTokenNotPersisted = errors.New("session: token was not persisted")
	// ErrNoRefreshToken is returned by RefreshToken before any login in this process.
	ErrNoRefreshToken = errors.New("session: no refresh token")
)

// Session is the authentication state of one client. Safe for concurrent use.
type Session struct {
	auth   *services.AuthService
	store  credential.Store
	logger *zap.Logger

	mu           sync.RWMutex
	user         *api.User
	refreshToken string
	loading      bool
}

// New creates a logged-out session.
func New(auth *services.AuthService, store credential.Store, logger *zap.Logger) *Session {
	return &Session{auth: auth, store: store, logger: logging.OrNop(logger)}
}

// Restore loads the current user when a token is stored. A rejected or
// unreadable token is cleared and the session stays logged out; the failure
// is logged, not returned.
func (s *Session) Restore(ctx context.Context) {
	token, err := s.store.Token(ctx)
	if err != nil {
		s.logger.Warn("stored credential is unreadable, clearing it", zap.Error(err))
		_ = s.clearLocal(ctx)
		return
	}
	if token == "" {
		return
	}

	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.auth.Me(ctx)
	if err != nil {
		s.logger.Info("stored session is no longer valid", zap.Error(err))
		s.clearLocal(ctx)
		return
	}
	s.setUser(user)
}

// Login authenticates and stores the returned token. It fails if the token
// cannot be read back from the store.
func (s *Session) Login(ctx context.Context, creds api.Credentials) (*api.User, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := s.establish(ctx, resp); err != nil {
		return nil, err
	}
	s.logger.Info("logged in", logging.Email(creds.Email))
	return s.User(), nil
}

// Register creates an account and logs in with it.
func (s *Session) Register(ctx context.Context, reg api.Registration) (*api.User, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	if err := s.establish(ctx, resp); err != nil {
		return nil, err
	}
	s.logger.Info("registered", logging.Email(reg.Email))
	return s.User(), nil
}

func (s *Session) establish(ctx context.Context, resp *api.AuthResponse) error {
	if err := s.store.SetToken(ctx, resp.AccessToken); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	stored, err := s.store.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify stored token: %w", err)
	}
	if stored != resp.AccessToken {
		return ErrTokenNotPersisted
	}

	user := resp.User
	s.mu.Lock()
	s.user = &user
	s.refreshToken = resp.RefreshToken
	s.mu.Unlock()
	return nil
}

// Logout ends the session on the server if it can and always clears the
// local credential. Only a failure to clear is returned.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn("remote logout failed", zap.Error(err))
	}
	return s.clearLocal(ctx)
}

// RefreshUser reloads the profile. A 401 or 403 clears the session.
func (s *Session) RefreshUser(ctx context.Context) (*api.User, error) {
	user, err := s.auth.Me(ctx)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			_ = s.clearLocal(ctx)
		}
		return nil, err
	}
	s.setUser(user)
	return s.User(), nil
}

// RefreshToken swaps the stored access token for a new one.
func (s *Session) RefreshToken(ctx context.Context) error {
	s.mu.RLock()
	refresh := s.refreshToken
	s.mu.RUnlock()
	if refresh == "" {
		return ErrNoRefreshToken
	}

	resp, err := s.auth.Refresh(ctx, refresh)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			_ = s.clearLocal(ctx)
		}
		return err
	}
	if err := s.store.SetToken(ctx, resp.AccessToken); err != nil {
		return fmt.Errorf("failed to store refreshed token: %w", err)
	}
	s.logger.Debug("access token refreshed", logging.Token(resp.AccessToken))
	return nil
}

// User returns a copy of the current user, or nil when logged out.
func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a user is loaded.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Loading reports whether a restore, login or registration is in progress.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) setUser(user *api.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Session) clearLocal(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.refreshToken = ""
	s.mu.Unlock()
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("failed to clear stored credential", zap.Error(err))
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}
