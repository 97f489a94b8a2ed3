// Package api wraps the admin backend's REST resources on top of the
// shared gateway client.
package api

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/alexjbarnes/admin-console/internal/errors"
	"github.com/alexjbarnes/admin-console/internal/gateway"
	"github.com/alexjbarnes/admin-console/internal/models"
	"github.com/tidwall/gjson"
)

// AuthService covers the /auth endpoints. Credential submissions are
// sent without refresh interception: a 401 there means the credentials
// were rejected, not that a session expired.
type AuthService struct {
	client *gateway.Client
}

// NewAuthService creates an AuthService over client.
func NewAuthService(client *gateway.Client) *AuthService {
	return &AuthService{client: client}
}

// Login submits an email or phone number with a password.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	body := models.Credentials{Email: creds.Email, Phone: creds.Phone, Password: creds.Password}

	res, err := s.submit(ctx, "/auth/login", body)
	if err != nil {
		return nil, fmt.Errorf("signing in: %w", err)
	}

	return res, nil
}

// Register creates an account. The backend does not sign the user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error) {
	var out struct {
		User *models.UserProfile `json:"user"`
	}

	if err := s.client.Post(ctx, "/auth/register", req, &out, gateway.WithoutRefresh()); err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}

	return out.User, nil
}

// SendOtp asks the backend to deliver a one-time code.
func (s *AuthService) SendOtp(ctx context.Context, creds models.Credentials) error {
	body := models.Credentials{Email: creds.Email, Phone: creds.Phone}

	if err := s.client.Post(ctx, "/auth/otp/send", body, nil, gateway.WithoutRefresh()); err != nil {
		return fmt.Errorf("sending otp: %w", err)
	}

	return nil
}

// VerifyOtp submits a one-time code.
func (s *AuthService) VerifyOtp(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	body := models.Credentials{Email: creds.Email, Phone: creds.Phone, OTP: creds.OTP}

	res, err := s.submit(ctx, "/auth/otp/verify", body)
	if err != nil {
		return nil, fmt.Errorf("verifying otp: %w", err)
	}

	return res, nil
}

// LoginTwoFactor completes a sign-in that required a 2FA code.
func (s *AuthService) LoginTwoFactor(ctx context.Context, userID, code string) (*models.AuthResult, error) {
	body := map[string]string{"userId": userID, "code": code}

	res, err := s.submit(ctx, "/auth/2fa/login", body)
	if err != nil {
		return nil, fmt.Errorf("verifying 2fa code: %w", err)
	}

	return res, nil
}

// Logout invalidates the session on the backend. A 401 is not
// intercepted since the local session is torn down regardless.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, "/auth/logout", nil, nil, gateway.WithoutRefresh()); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}

	return nil
}

// EnableTwoFactor starts 2FA setup and returns the enrolment secret.
func (s *AuthService) EnableTwoFactor(ctx context.Context) (*models.TwoFactorSetup, error) {
	var out models.TwoFactorSetup
	if err := s.client.Post(ctx, "/auth/2fa/enable", nil, &out); err != nil {
		return nil, fmt.Errorf("enabling 2fa: %w", err)
	}

	return &out, nil
}

// ConfirmTwoFactor finishes 2FA setup with a code from the
// authenticator app.
func (s *AuthService) ConfirmTwoFactor(ctx context.Context, code string) (*models.TwoFactorStatus, error) {
	var out models.TwoFactorStatus
	if err := s.client.Post(ctx, "/auth/2fa/verify", map[string]string{"code": code}, &out); err != nil {
		return nil, fmt.Errorf("confirming 2fa: %w", err)
	}

	return &out, nil
}

// DisableTwoFactor turns 2FA off after re-checking the password.
func (s *AuthService) DisableTwoFactor(ctx context.Context, password string) (*models.TwoFactorStatus, error) {
	var out models.TwoFactorStatus
	if err := s.client.Post(ctx, "/auth/2fa/disable", map[string]string{"password": password}, &out); err != nil {
		return nil, fmt.Errorf("disabling 2fa: %w", err)
	}

	return &out, nil
}

// BackupCodes lists the masked backup codes.
func (s *AuthService) BackupCodes(ctx context.Context) (*models.MaskedBackupCodes, error) {
	var out models.MaskedBackupCodes
	if err := s.client.Get(ctx, "/auth/backup-codes", &out); err != nil {
		return nil, fmt.Errorf("listing backup codes: %w", err)
	}

	return &out, nil
}

// GenerateBackupCodes replaces the backup codes and returns them in
// clear. They are not retrievable again.
func (s *AuthService) GenerateBackupCodes(ctx context.Context) (*models.BackupCodes, error) {
	var out models.BackupCodes
	if err := s.client.Post(ctx, "/auth/backup-codes/generate", nil, &out); err != nil {
		return nil, fmt.Errorf("generating backup codes: %w", err)
	}

	return &out, nil
}

func (s *AuthService) submit(ctx context.Context, path string, body any) (*models.AuthResult, error) {
	var raw json.RawMessage
	if err := s.client.Post(ctx, path, body, &raw, gateway.WithoutRefresh()); err != nil {
		return nil, err
	}

	return parseAuthResult(raw)
}

// parseAuthResult reads either a session or a 2FA requirement. Older
// backends spell the flag requires2FA and the id user_id.
func parseAuthResult(raw json.RawMessage) (*models.AuthResult, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty auth response", apperrors.ErrMalformedEnvelope)
	}

	root := gjson.ParseBytes(raw)

	if root.Get("require2FA").Bool() || root.Get("requires2FA").Bool() {
		userID := root.Get("userId").String()
		if userID == "" {
			userID = root.Get("user_id").String()
		}

		return &models.AuthResult{Require2FA: true, UserID: userID}, nil
	}

	var res models.AuthResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("%w: decoding auth response: %w", apperrors.ErrMalformedEnvelope, err)
	}

	return &res, nil
}
