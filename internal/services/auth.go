package services

import (
	"context"
	"fmt"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
)

// AuthService calls the /auth endpoints. It never touches the stored
// credential; session.Session owns that.
type AuthService struct {
	api *apiclient.Client
}

// NewAuthService creates an AuthService.
func NewAuthService(client *apiclient.Client) *AuthService {
	return &AuthService{api: client}
}

// Login exchanges credentials for a token pair.
func (s *AuthService) Login(ctx context.Context, creds api.Credentials) (*api.AuthResponse, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}
	var out api.AuthResponse
	if err := s.api.Post(ctx, "/auth/login", creds, &apiclient.RequestOptions{SkipAuth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its token pair.
func (s *AuthService) Register(ctx context.Context, reg api.Registration) (*api.AuthResponse, error) {
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}
	var out api.AuthResponse
	if err := s.api.Post(ctx, "/auth/register", reg, &apiclient.RequestOptions{SkipAuth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh trades a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*api.RefreshResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}
	var out api.RefreshResponse
	err := s.api.Post(ctx, "/auth/refresh", api.RefreshRequest{RefreshToken: refreshToken},
		&apiclient.RequestOptions{SkipAuth: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the server the session is over.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.api.Post(ctx, "/auth/logout", nil, nil, nil)
}

// Me returns the profile of the token's owner.
func (s *AuthService) Me(ctx context.Context) (*api.User, error) {
	var out api.User
	if err := s.api.Get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
