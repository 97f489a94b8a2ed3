package credstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/alexjbarnes/admin-console/internal/models"
)

// MemoryStore keeps credentials in process memory. Nothing survives a
// restart.
type MemoryStore struct {
	mu        sync.RWMutex
	values    map[string][]byte
	challenge []byte
	expiresAt time.Time
	now       func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		now:    time.Now,
	}
}

func (s *MemoryStore) get(key string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.values[key]
}

func (s *MemoryStore) put(key string, value []byte) error {
	s.mu.Lock()
	s.values[key] = append([]byte(nil), value...)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) AccessToken() string               { return string(s.get(AccessTokenKey)) }
func (s *MemoryStore) SetAccessToken(token string) error { return s.put(AccessTokenKey, []byte(token)) }
func (s *MemoryStore) RefreshToken() string              { return string(s.get(RefreshTokenKey)) }
func (s *MemoryStore) SetRefreshToken(t string) error    { return s.put(RefreshTokenKey, []byte(t)) }
func (s *MemoryStore) User() *models.UserProfile         { return decodeUser(s.get(UserKey)) }

func (s *MemoryStore) SetUser(user models.UserProfile) error {
	data, err := encodeUser(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	return s.put(UserKey, data)
}

func (s *MemoryStore) SaveSession(access, refresh string, user models.UserProfile) error {
	if err := validateSession(access, refresh, user); err != nil {
		return err
	}

	data, err := encodeUser(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[AccessTokenKey] = []byte(access)
	s.values[RefreshTokenKey] = []byte(refresh)
	s.values[UserKey] = data

	return nil
}

func (s *MemoryStore) RotateTokens(expectedRefresh, access, refresh string) (bool, error) {
	if access == "" {
		return false, errEmptySession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := string(s.values[RefreshTokenKey])
	if current == "" || current != expectedRefresh || len(s.values[UserKey]) == 0 {
		return false, nil
	}

	s.values[AccessTokenKey] = []byte(access)
	if refresh != "" {
		s.values[RefreshTokenKey] = []byte(refresh)
	}

	return true, nil
}

func (s *MemoryStore) ClearAll() error {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) ClearIf(expectedRefresh string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if string(s.values[RefreshTokenKey]) != expectedRefresh {
		return false, nil
	}

	s.clearLocked()

	return true, nil
}

func (s *MemoryStore) clearLocked() {
	delete(s.values, AccessTokenKey)
	delete(s.values, RefreshTokenKey)
	delete(s.values, UserKey)
}

func (s *MemoryStore) SetChallenge(data []byte, ttl time.Duration) error {
	s.mu.Lock()
	s.challenge = append([]byte(nil), data...)
	s.expiresAt = s.now().Add(ttl)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Challenge() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.challenge == nil || !s.now().Before(s.expiresAt) {
		return nil
	}

	return append([]byte(nil), s.challenge...)
}

func (s *MemoryStore) ClearChallenge() error {
	s.mu.Lock()
	s.challenge = nil
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Close() error { return nil }
