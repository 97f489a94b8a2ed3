// Package credstore persists the client-side session: the access token,
// the refresh token and a cached user profile. It also holds a
// short-lived slot for a pending login challenge so a half-finished
// OTP or 2FA flow can be resumed without touching the durable entries.
//
// Getters never fail. A missing, corrupt or unsealable entry reads as
// empty, which callers treat as "not signed in".
package credstore

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/alexjbarnes/admin-console/internal/models"
)

// Storage keys. The three credential keys are always cleared together.
const (
	AccessTokenKey  = "auth_token"
	RefreshTokenKey = "refresh_token"
	UserKey         = "user_data"
	ChallengeKey    = "auth_challenge"
)

// Store is the credential store contract shared by all backends.
type Store interface {
	AccessToken() string
	SetAccessToken(token string) error
	RefreshToken() string
	SetRefreshToken(token string) error
	User() *models.UserProfile
	SetUser(user models.UserProfile) error

	// SaveSession writes both tokens and the user in one transaction.
	SaveSession(access, refresh string, user models.UserProfile) error

	// RotateTokens replaces the tokens only if the stored refresh token
	// still equals expectedRefresh and a user is cached. It reports
	// whether the write happened. An empty refresh keeps the current one.
	RotateTokens(expectedRefresh, access, refresh string) (bool, error)

	// ClearAll removes the access token, refresh token and user together.
	ClearAll() error

	// ClearIf runs ClearAll only while the stored refresh token equals
	// expectedRefresh, so a failure on an old session cannot wipe a newer
	// one. It reports whether the entries were removed.
	ClearIf(expectedRefresh string) (bool, error)

	// SetChallenge stores an opaque pending-challenge record that
	// expires after ttl.
	SetChallenge(data []byte, ttl time.Duration) error
	Challenge() []byte
	ClearChallenge() error

	Close() error
}

var errEmptySession = errors.New("session requires an access token, a refresh token and a user id")

func validateSession(access, refresh string, user models.UserProfile) error {
	if access == "" || refresh == "" || user.ID == "" {
		return errEmptySession
	}

	return nil
}

func encodeUser(user models.UserProfile) ([]byte, error) {
	return json.Marshal(user)
}

func decodeUser(data []byte) *models.UserProfile {
	if len(data) == 0 {
		return nil
	}

	var u models.UserProfile
	if err := json.Unmarshal(data, &u); err != nil {
		return nil
	}

	return &u
}

// flowEntry wraps a challenge record with its expiry for backends that
// have no native TTL.
type flowEntry struct {
	ExpiresAt time.Time `json:"expires_at"`
	Value     []byte    `json:"value"`
}

func encodeFlow(value []byte, expiresAt time.Time) ([]byte, error) {
	return json.Marshal(flowEntry{ExpiresAt: expiresAt, Value: value})
}

func decodeFlow(data []byte, now time.Time) []byte {
	if len(data) == 0 {
		return nil
	}

	var e flowEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil
	}

	if !now.Before(e.ExpiresAt) {
		return nil
	}

	return e.Value
}
