package credstore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/alexjbarnes/admin-console/internal/models"
	bolt "go.etcd.io/bbolt"
)

const (
	// stateDirPerm is the permission mode for the state directory (~/.admin-console/).
	stateDirPerm = fs.FileMode(0o700)

	// stateFilePerm is the permission mode for the session database file.
	stateFilePerm = fs.FileMode(0o600)

	// stateOpenTimeout is the maximum time to wait for the bolt database lock.
	stateOpenTimeout = 5 * time.Second
)

var (
	credentialsBucket = []byte("credentials")
	flowBucket        = []byte("auth_flow")
)

// BoltStore keeps credentials in a bbolt database file so a session
// survives restarts of the CLI.
type BoltStore struct {
	db     *bolt.DB
	sealer Sealer
	now    func() time.Time
}

var _ Store = (*BoltStore)(nil)

// DefaultPath returns ~/.admin-console/session.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".admin-console", "session.db"), nil
}

// OpenBolt opens the credential database at path, creating it and its
// buckets if needed. A nil sealer stores values unsealed.
func OpenBolt(path string, sealer Sealer) (*BoltStore, error) {
	if sealer == nil {
		sealer = NoSeal
	}

	if err := os.MkdirAll(filepath.Dir(path), stateDirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := bolt.Open(path, stateFilePerm, &bolt.Options{Timeout: stateOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(credentialsBucket); err != nil {
			return err
		}

		_, err := tx.CreateBucketIfNotExists(flowBucket)

		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing session db: %w", err)
	}

	return &BoltStore{db: db, sealer: sealer, now: time.Now}, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// read returns the opened value for key in bucket, or nil.
func (s *BoltStore) read(tx *bolt.Tx, bucket []byte, key string) []byte {
	v := tx.Bucket(bucket).Get([]byte(key))
	if v == nil {
		return nil
	}

	out, err := s.sealer.Open(key, v)
	if err != nil {
		return nil
	}

	// bolt values are only valid for the life of the transaction.
	return append([]byte(nil), out...)
}

func (s *BoltStore) write(tx *bolt.Tx, bucket []byte, key string, value []byte) error {
	sealed, err := s.sealer.Seal(key, value)
	if err != nil {
		return fmt.Errorf("sealing %s: %w", key, err)
	}

	return tx.Bucket(bucket).Put([]byte(key), sealed)
}

func (s *BoltStore) get(bucket []byte, key string) []byte {
	var out []byte

	_ = s.db.View(func(tx *bolt.Tx) error {
		out = s.read(tx, bucket, key)
		return nil
	})

	return out
}

func (s *BoltStore) put(bucket []byte, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return s.write(tx, bucket, key, value)
	})
}

// AccessToken returns the cached access token, or empty string.
func (s *BoltStore) AccessToken() string {
	return string(s.get(credentialsBucket, AccessTokenKey))
}

// SetAccessToken persists the access token.
func (s *BoltStore) SetAccessToken(token string) error {
	return s.put(credentialsBucket, AccessTokenKey, []byte(token))
}

// RefreshToken returns the cached refresh token, or empty string.
func (s *BoltStore) RefreshToken() string {
	return string(s.get(credentialsBucket, RefreshTokenKey))
}

// SetRefreshToken persists the refresh token.
func (s *BoltStore) SetRefreshToken(token string) error {
	return s.put(credentialsBucket, RefreshTokenKey, []byte(token))
}

// User returns the cached profile, or nil.
func (s *BoltStore) User() *models.UserProfile {
	return decodeUser(s.get(credentialsBucket, UserKey))
}

// SetUser persists the cached profile.
func (s *BoltStore) SetUser(user models.UserProfile) error {
	data, err := encodeUser(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	return s.put(credentialsBucket, UserKey, data)
}

// SaveSession writes tokens and user in a single bolt transaction.
func (s *BoltStore) SaveSession(access, refresh string, user models.UserProfile) error {
	if err := validateSession(access, refresh, user); err != nil {
		return err
	}

	data, err := encodeUser(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := s.write(tx, credentialsBucket, AccessTokenKey, []byte(access)); err != nil {
			return err
		}

		if err := s.write(tx, credentialsBucket, RefreshTokenKey, []byte(refresh)); err != nil {
			return err
		}

		return s.write(tx, credentialsBucket, UserKey, data)
	})
}

// RotateTokens swaps in renewed tokens if the session being renewed is
// still the stored one.
func (s *BoltStore) RotateTokens(expectedRefresh, access, refresh string) (bool, error) {
	if access == "" {
		return false, errEmptySession
	}

	var rotated bool

	err := s.db.Update(func(tx *bolt.Tx) error {
		current := string(s.read(tx, credentialsBucket, RefreshTokenKey))
		if current == "" || current != expectedRefresh {
			return nil
		}

		if s.read(tx, credentialsBucket, UserKey) == nil {
			return nil
		}

		if err := s.write(tx, credentialsBucket, AccessTokenKey, []byte(access)); err != nil {
			return err
		}

		if refresh != "" {
			if err := s.write(tx, credentialsBucket, RefreshTokenKey, []byte(refresh)); err != nil {
				return err
			}
		}

		rotated = true

		return nil
	})

	return rotated, err
}

// ClearAll deletes all three credential entries in one transaction.
func (s *BoltStore) ClearAll() error {
	return s.db.Update(clearCredentials)
}

// ClearIf deletes the credential entries in the same transaction that
// checks the refresh token.
func (s *BoltStore) ClearIf(expectedRefresh string) (bool, error) {
	var cleared bool

	err := s.db.Update(func(tx *bolt.Tx) error {
		if string(s.read(tx, credentialsBucket, RefreshTokenKey)) != expectedRefresh {
			return nil
		}

		cleared = true

		return clearCredentials(tx)
	})
	if err != nil {
		return false, err
	}

	return cleared, nil
}

func clearCredentials(tx *bolt.Tx) error {
	b := tx.Bucket(credentialsBucket)
	for _, key := range []string{AccessTokenKey, RefreshTokenKey, UserKey} {
		if err := b.Delete([]byte(key)); err != nil {
			return err
		}
	}

	return nil
}

// SetChallenge stores a pending challenge record with an expiry.
func (s *BoltStore) SetChallenge(data []byte, ttl time.Duration) error {
	entry, err := encodeFlow(data, s.now().Add(ttl))
	if err != nil {
		return fmt.Errorf("encoding challenge: %w", err)
	}

	return s.put(flowBucket, ChallengeKey, entry)
}

// Challenge returns the pending challenge record, or nil if none is
// stored or it has expired.
func (s *BoltStore) Challenge() []byte {
	return decodeFlow(s.get(flowBucket, ChallengeKey), s.now())
}

// ClearChallenge removes any pending challenge record.
func (s *BoltStore) ClearChallenge() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(flowBucket).Delete([]byte(ChallengeKey))
	})
}
