package credstore

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alexjbarnes/admin-console/internal/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackend pairs a store with a way to move its clock forward.
type testBackend struct {
	store   Store
	advance func(d time.Duration)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newBoltBackend(t *testing.T, sealer Sealer) testBackend {
	t.Helper()

	s, err := OpenBolt(filepath.Join(t.TempDir(), "session.db"), sealer)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.now = clock.Now

	return testBackend{store: s, advance: clock.Advance}
}

func newMemoryBackend(t *testing.T) testBackend {
	t.Helper()

	s := NewMemory()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.now = clock.Now

	return testBackend{store: s, advance: clock.Advance}
}

func newRedisBackend(t *testing.T, sealer Sealer) testBackend {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedis(rdb, "test:", sealer)
	t.Cleanup(func() { s.Close() })

	return testBackend{store: s, advance: mr.FastForward}
}

func allBackends(t *testing.T) map[string]testBackend {
	t.Helper()

	return map[string]testBackend{
		"bolt":   newBoltBackend(t, nil),
		"memory": newMemoryBackend(t),
		"redis":  newRedisBackend(t, nil),
	}
}

var testUser = models.UserProfile{
	ID:    "U1",
	Name:  "Ada",
	Email: "a@b.com",
	Type:  models.UserTypeAdmin,
}

func TestStore_EmptyByDefault(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, "", b.store.AccessToken())
			assert.Equal(t, "", b.store.RefreshToken())
			assert.Nil(t, b.store.User())
			assert.Nil(t, b.store.Challenge())
		})
	}
}

func TestStore_IndividualSetters(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SetAccessToken("T1"))
			require.NoError(t, b.store.SetRefreshToken("R1"))
			require.NoError(t, b.store.SetUser(testUser))

			assert.Equal(t, "T1", b.store.AccessToken())
			assert.Equal(t, "R1", b.store.RefreshToken())
			require.NotNil(t, b.store.User())
			assert.Equal(t, "Ada", b.store.User().Name)
		})
	}
}

func TestStore_SaveSessionThenClearAll(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SaveSession("T1", "R1", testUser))
			assert.Equal(t, "T1", b.store.AccessToken())
			assert.Equal(t, "R1", b.store.RefreshToken())
			assert.Equal(t, "U1", b.store.User().ID)

			require.NoError(t, b.store.ClearAll())
			assert.Equal(t, "", b.store.AccessToken())
			assert.Equal(t, "", b.store.RefreshToken())
			assert.Nil(t, b.store.User())
		})
	}
}

func TestStore_ClearAllOnEmptyStore(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, b.store.ClearAll())
		})
	}
}

func TestStore_SaveSessionRejectsPartialSession(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, b.store.SaveSession("", "R1", testUser))
			assert.Error(t, b.store.SaveSession("T1", "", testUser))
			assert.Error(t, b.store.SaveSession("T1", "R1", models.UserProfile{}))
			assert.Equal(t, "", b.store.AccessToken())
		})
	}
}

func TestStore_RotateTokens(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SaveSession("T1", "R1", testUser))

			ok, err := b.store.RotateTokens("R1", "T2", "R2")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "T2", b.store.AccessToken())
			assert.Equal(t, "R2", b.store.RefreshToken())
			assert.Equal(t, "U1", b.store.User().ID, "rotation must not touch the user")
		})
	}
}

func TestStore_RotateTokensKeepsRefreshWhenNotRotated(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SaveSession("T1", "R1", testUser))

			ok, err := b.store.RotateTokens("R1", "T2", "")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "T2", b.store.AccessToken())
			assert.Equal(t, "R1", b.store.RefreshToken())
		})
	}
}

func TestStore_RotateTokensRefusesAfterClear(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SaveSession("T1", "R1", testUser))
			require.NoError(t, b.store.ClearAll())

			ok, err := b.store.RotateTokens("R1", "T2", "R2")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, "", b.store.AccessToken(), "a late refresh must not resurrect the session")
			assert.Nil(t, b.store.User())
		})
	}
}

func TestStore_RotateTokensRefusesStaleRefreshToken(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SaveSession("T1", "R1", testUser))

			ok, err := b.store.RotateTokens("R0", "T9", "R9")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, "T1", b.store.AccessToken())
		})
	}
}

func TestStore_ClearIfMatchingRefreshToken(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SaveSession("T1", "R1", testUser))

			cleared, err := b.store.ClearIf("R1")
			require.NoError(t, err)
			assert.True(t, cleared)
			assert.Equal(t, "", b.store.AccessToken())
			assert.Equal(t, "", b.store.RefreshToken())
			assert.Nil(t, b.store.User())
		})
	}
}

func TestStore_ClearIfKeepsNewerSession(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SaveSession("T9", "R9", testUser))

			cleared, err := b.store.ClearIf("R1")
			require.NoError(t, err)
			assert.False(t, cleared)
			assert.Equal(t, "T9", b.store.AccessToken())
			assert.Equal(t, "R9", b.store.RefreshToken())
			assert.Equal(t, "U1", b.store.User().ID)
		})
	}
}

func TestStore_ClearIfEmptyRemovesLeftovers(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SetAccessToken("orphan"))

			cleared, err := b.store.ClearIf("")
			require.NoError(t, err)
			assert.True(t, cleared)
			assert.Equal(t, "", b.store.AccessToken())
		})
	}
}

func TestStore_ChallengeIsACopy(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SetChallenge([]byte("pending"), time.Hour))

			got := b.store.Challenge()
			got[0] = 'X'

			assert.Equal(t, []byte("pending"), b.store.Challenge())
		})
	}
}

func TestStore_ChallengeExpires(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SetChallenge([]byte(`{"kind":"2fa"}`), time.Minute))
			assert.Equal(t, []byte(`{"kind":"2fa"}`), b.store.Challenge())

			b.advance(2 * time.Minute)
			assert.Nil(t, b.store.Challenge())
		})
	}
}

func TestStore_ChallengeIndependentOfCredentials(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SetChallenge([]byte("pending"), time.Hour))
			require.NoError(t, b.store.SaveSession("T1", "R1", testUser))
			require.NoError(t, b.store.ClearAll())
			assert.Equal(t, []byte("pending"), b.store.Challenge())

			require.NoError(t, b.store.ClearChallenge())
			assert.Nil(t, b.store.Challenge())
			assert.NoError(t, b.store.ClearChallenge(), "clearing twice is fine")
		})
	}
}

func TestStore_CorruptUserReadsAsNil(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SetAccessToken("T1"))
			switch s := b.store.(type) {
			case *BoltStore:
				require.NoError(t, s.put(credentialsBucket, UserKey, []byte("{not json")))
			case *MemoryStore:
				require.NoError(t, s.put(UserKey, []byte("{not json")))
			case *RedisStore:
				require.NoError(t, s.set(UserKey, []byte("{not json"), 0))
			}
			assert.Nil(t, b.store.User())
		})
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	for name, b := range allBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, b.store.SaveSession("T1", "R1", testUser))

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = b.store.AccessToken()
					_ = b.store.User()
				}()
			}
			wg.Wait()
		})
	}
}

func TestBoltStore_ReopensExistingDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s1, err := OpenBolt(path, nil)
	require.NoError(t, err)
	require.NoError(t, s1.SaveSession("persist-me", "R1", testUser))
	require.NoError(t, s1.Close())

	s2, err := OpenBolt(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	assert.Equal(t, "persist-me", s2.AccessToken())
	assert.Equal(t, "Ada", s2.User().Name)
}

func TestBoltStore_CreatesParentDirectory(t *testing.T) {
	s, err := OpenBolt(filepath.Join(t.TempDir(), "sub", "dir", "session.db"), nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestDefaultPath_UnderHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".admin-console", "session.db"), path)
}
