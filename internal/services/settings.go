package services

import (
	"context"
	"fmt"

	"github.com/sirius-dms/dms-client/internal/api"
	"github.com/sirius-dms/dms-client/internal/apiclient"
)

// AvatarResponse is returned after an avatar upload.
type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// SettingsService calls the /settings endpoints.
type SettingsService struct {
	api *apiclient.Client
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(client *apiclient.Client) *SettingsService {
	return &SettingsService{api: client}
}

// Get returns the user's preferences.
func (s *SettingsService) Get(ctx context.Context) (*api.Settings, error) {
	var out api.Settings
	if err := s.api.Get(ctx, "/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the user's preferences.
func (s *SettingsService) Update(ctx context.Context, settings api.Settings) (*api.Settings, error) {
	var out api.Settings
	if err := s.api.Patch(ctx, "/settings", settings, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the user's profile.
func (s *SettingsService) Profile(ctx context.Context) (*api.User, error) {
	var out api.User
	if err := s.api.Get(ctx, "/settings/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the set profile fields.
func (s *SettingsService) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (*api.User, error) {
	var out api.User
	if err := s.api.Patch(ctx, "/settings/profile", update, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the account password.
func (s *SettingsService) ChangePassword(ctx context.Context, change api.PasswordChange) error {
	if err := change.Validate(); err != nil {
		return fmt.Errorf("invalid password change: %w", err)
	}
	return s.api.Post(ctx, "/settings/security", change, nil, nil)
}

// UploadAvatar replaces the profile picture.
func (s *SettingsService) UploadAvatar(ctx context.Context, file apiclient.UploadFile) (*AvatarResponse, error) {
	var out AvatarResponse
	if err := s.api.Upload(ctx, "/settings/avatar", file, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
