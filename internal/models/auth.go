package models

// TokenPair is the payload of POST /auth/refresh. RefreshToken is empty
// when the backend does not rotate it.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
}

// AuthResult is the outcome of a credential submission (password login,
// OTP verification or 2FA login). Exactly one of User or Require2FA is
// meaningful.
type AuthResult struct {
	User         *UserProfile `json:"user,omitempty"`
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	ExpiresIn    int64        `json:"expiresIn,omitempty"`
	Require2FA   bool         `json:"require2FA,omitempty"`
	UserID       string       `json:"userId,omitempty"`
}

// HasSession reports whether the result carries a complete session.
func (r *AuthResult) HasSession() bool {
	return r != nil && r.User != nil && r.AccessToken != "" && r.RefreshToken != ""
}

// Credentials identify a user by email or phone. Exactly one is set.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
	OTP      string `json:"otp,omitempty"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// TwoFactorSetup is the payload of POST /auth/2fa/enable.
type TwoFactorSetup struct {
	QRCode    string `json:"qrCode"`
	ManualKey string `json:"manualKey"`
}

// TwoFactorStatus is the payload of the 2FA verify/disable endpoints.
type TwoFactorStatus struct {
	TwoFactorEnabled bool `json:"twoFactorEnabled"`
}

// BackupCodes is the payload of POST /auth/backup-codes/generate.
type BackupCodes struct {
	BackupCodes []string `json:"backupCodes"`
}

// MaskedBackupCode is one entry of GET /auth/backup-codes.
type MaskedBackupCode struct {
	Code string `json:"code"`
	Used bool   `json:"used"`
}

// MaskedBackupCodes is the payload of GET /auth/backup-codes.
type MaskedBackupCodes struct {
	BackupCodes []MaskedBackupCode `json:"backupCodes"`
}

// ChangePasswordRequest is the body of POST /users/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}
