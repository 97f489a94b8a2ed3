package credstore

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	// sealInfo binds derived keys to this store format.
	sealInfo = "admin-console credential store v1"

	// minSecretLen is the shortest CREDENTIAL_KEY accepted.
	minSecretLen = 16
)

var errSealedTooShort = errors.New("sealed value too short")

// Sealer protects stored values at rest. The key name is bound as
// associated data so a value cannot be moved to another slot.
type Sealer interface {
	Seal(key string, plaintext []byte) ([]byte, error)
	Open(key string, sealed []byte) ([]byte, error)
}

type plainSealer struct{}

func (plainSealer) Seal(_ string, p []byte) ([]byte, error) { return p, nil }
func (plainSealer) Open(_ string, s []byte) ([]byte, error) { return s, nil }

// NoSeal stores values as-is.
var NoSeal Sealer = plainSealer{}

type aeadSealer struct {
	key []byte
}

// NewSealer derives an XChaCha20-Poly1305 key from secret with HKDF.
// An empty secret returns NoSeal.
func NewSealer(secret string) (Sealer, error) {
	if secret == "" {
		return NoSeal, nil
	}

	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("credential key must be at least %d characters", minSecretLen)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("deriving credential key: %w", err)
	}

	return &aeadSealer{key: key}, nil
}

func (s *aeadSealer) Seal(key string, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, []byte(key)), nil
}

func (s *aeadSealer) Open(key string, sealed []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}

	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, errSealedTooShort
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	return aead.Open(nil, nonce, ciphertext, []byte(key))
}
