package api

import (
	"context"
	"fmt"

	"github.com/alexjbarnes/admin-console/internal/gateway"
	"github.com/alexjbarnes/admin-console/internal/models"
)

// SettingsService covers /settings/system, /settings/notifications and
// /settings/security. Updates are PUTs carrying only the changed fields.
type SettingsService struct {
	client *gateway.Client
}

// NewSettingsService creates a SettingsService over client.
func NewSettingsService(client *gateway.Client) *SettingsService {
	return &SettingsService{client: client}
}

func (s *SettingsService) System(ctx context.Context) (*models.SystemSettings, error) {
	var out models.SystemSettings
	if err := s.client.Get(ctx, "/settings/system", &out); err != nil {
		return nil, fmt.Errorf("fetching system settings: %w", err)
	}

	return &out, nil
}

func (s *SettingsService) UpdateSystem(ctx context.Context, patch models.SystemSettingsPatch) (*models.SystemSettings, error) {
	var out models.SystemSettings
	if err := s.client.Put(ctx, "/settings/system", patch, &out); err != nil {
		return nil, fmt.Errorf("updating system settings: %w", err)
	}

	return &out, nil
}

func (s *SettingsService) Notifications(ctx context.Context) (*models.NotificationSettings, error) {
	var out models.NotificationSettings
	if err := s.client.Get(ctx, "/settings/notifications", &out); err != nil {
		return nil, fmt.Errorf("fetching notification settings: %w", err)
	}

	return &out, nil
}

func (s *SettingsService) UpdateNotifications(ctx context.Context, patch models.NotificationSettingsPatch) (*models.NotificationSettings, error) {
	var out models.NotificationSettings
	if err := s.client.Put(ctx, "/settings/notifications", patch, &out); err != nil {
		return nil, fmt.Errorf("updating notification settings: %w", err)
	}

	return &out, nil
}

func (s *SettingsService) Security(ctx context.Context) (*models.SecuritySettings, error) {
	var out models.SecuritySettings
	if err := s.client.Get(ctx, "/settings/security", &out); err != nil {
		return nil, fmt.Errorf("fetching security settings: %w", err)
	}

	return &out, nil
}

func (s *SettingsService) UpdateSecurity(ctx context.Context, patch models.SecuritySettingsPatch) (*models.SecuritySettings, error) {
	var out models.SecuritySettings
	if err := s.client.Put(ctx, "/settings/security", patch, &out); err != nil {
		return nil, fmt.Errorf("updating security settings: %w", err)
	}

	return &out, nil
}
