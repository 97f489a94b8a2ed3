package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexjbarnes/admin-console/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// redisOpTimeout bounds every store operation. The Store interface
	// carries no context because the other backends never block on I/O
	// for long.
	redisOpTimeout = 3 * time.Second

	redisPingTimeout = 5 * time.Second
)

// RedisStore keeps credentials in Redis so several consoles on one
// workstation pool can share a session. Pending challenges use native
// key expiry.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	sealer Sealer
}

var _ Store = (*RedisStore)(nil)

// OpenRedis parses url, connects, and pings before returning.
func OpenRedis(url, prefix string, sealer Sealer) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return NewRedis(rdb, prefix, sealer), nil
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client, prefix string, sealer Sealer) *RedisStore {
	if sealer == nil {
		sealer = NoSeal
	}

	return &RedisStore{rdb: rdb, prefix: prefix, sealer: sealer}
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), redisOpTimeout)
}

func (s *RedisStore) open(name string, raw []byte) []byte {
	out, err := s.sealer.Open(name, raw)
	if err != nil {
		return nil
	}

	return out
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) getFrom(ctx context.Context, c getter, name string) []byte {
	raw, err := c.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		return nil
	}

	return s.open(name, raw)
}

func (s *RedisStore) get(name string) []byte {
	ctx, cancel := opContext()
	defer cancel()

	return s.getFrom(ctx, s.rdb, name)
}

func (s *RedisStore) set(name string, value []byte, ttl time.Duration) error {
	sealed, err := s.sealer.Seal(name, value)
	if err != nil {
		return fmt.Errorf("sealing %s: %w", name, err)
	}

	ctx, cancel := opContext()
	defer cancel()

	if err := s.rdb.Set(ctx, s.key(name), sealed, ttl).Err(); err != nil {
		return fmt.Errorf("storing %s in redis: %w", name, err)
	}

	return nil
}

func (s *RedisStore) AccessToken() string { return string(s.get(AccessTokenKey)) }
func (s *RedisStore) SetAccessToken(token string) error {
	return s.set(AccessTokenKey, []byte(token), 0)
}
func (s *RedisStore) RefreshToken() string           { return string(s.get(RefreshTokenKey)) }
func (s *RedisStore) SetRefreshToken(t string) error { return s.set(RefreshTokenKey, []byte(t), 0) }
func (s *RedisStore) User() *models.UserProfile      { return decodeUser(s.get(UserKey)) }

func (s *RedisStore) SetUser(user models.UserProfile) error {
	data, err := encodeUser(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	return s.set(UserKey, data, 0)
}

func (s *RedisStore) sealAll(values map[string][]byte) (map[string][]byte, error) {
	out := make(map[string][]byte, len(values))

	for name, v := range values {
		sealed, err := s.sealer.Seal(name, v)
		if err != nil {
			return nil, fmt.Errorf("sealing %s: %w", name, err)
		}

		out[name] = sealed
	}

	return out, nil
}

// SaveSession writes tokens and user inside MULTI/EXEC.
func (s *RedisStore) SaveSession(access, refresh string, user models.UserProfile) error {
	if err := validateSession(access, refresh, user); err != nil {
		return err
	}

	data, err := encodeUser(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	sealed, err := s.sealAll(map[string][]byte{
		AccessTokenKey:  []byte(access),
		RefreshTokenKey: []byte(refresh),
		UserKey:         data,
	})
	if err != nil {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, v := range sealed {
			pipe.Set(ctx, s.key(name), v, 0)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("storing session in redis: %w", err)
	}

	return nil
}

// RotateTokens uses WATCH on the refresh token and user so a concurrent
// logout aborts the write.
func (s *RedisStore) RotateTokens(expectedRefresh, access, refresh string) (bool, error) {
	if access == "" {
		return false, errEmptySession
	}

	values := map[string][]byte{AccessTokenKey: []byte(access)}
	if refresh != "" {
		values[RefreshTokenKey] = []byte(refresh)
	}

	sealed, err := s.sealAll(values)
	if err != nil {
		return false, err
	}

	ctx, cancel := opContext()
	defer cancel()

	var rotated bool

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current := string(s.getFrom(ctx, tx, RefreshTokenKey))
		if current == "" || current != expectedRefresh {
			return nil
		}

		if s.getFrom(ctx, tx, UserKey) == nil {
			return nil
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for name, v := range sealed {
				pipe.Set(ctx, s.key(name), v, 0)
			}

			return nil
		})
		if err != nil {
			return err
		}

		rotated = true

		return nil
	}, s.key(RefreshTokenKey), s.key(UserKey))

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("rotating tokens in redis: %w", err)
	}

	return rotated, nil
}

// ClearAll removes the three credential keys with a single DEL.
func (s *RedisStore) ClearAll() error {
	ctx, cancel := opContext()
	defer cancel()

	err := s.rdb.Del(ctx, s.key(AccessTokenKey), s.key(RefreshTokenKey), s.key(UserKey)).Err()
	if err != nil {
		return fmt.Errorf("clearing session in redis: %w", err)
	}

	return nil
}

// ClearIf watches the refresh token and deletes the credential keys
// only if it still holds expectedRefresh.
func (s *RedisStore) ClearIf(expectedRefresh string) (bool, error) {
	ctx, cancel := opContext()
	defer cancel()

	var cleared bool

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		if string(s.getFrom(ctx, tx, RefreshTokenKey)) != expectedRefresh {
			return nil
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.key(AccessTokenKey), s.key(RefreshTokenKey), s.key(UserKey))
			return nil
		})
		if err != nil {
			return err
		}

		cleared = true

		return nil
	}, s.key(RefreshTokenKey))

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("clearing session in redis: %w", err)
	}

	return cleared, nil
}

func (s *RedisStore) SetChallenge(data []byte, ttl time.Duration) error {
	return s.set(ChallengeKey, data, ttl)
}

func (s *RedisStore) Challenge() []byte {
	return s.get(ChallengeKey)
}

func (s *RedisStore) ClearChallenge() error {
	ctx, cancel := opContext()
	defer cancel()

	if err := s.rdb.Del(ctx, s.key(ChallengeKey)).Err(); err != nil {
		return fmt.Errorf("clearing challenge in redis: %w", err)
	}

	return nil
}
