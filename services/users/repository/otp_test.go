package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piresc/otpauth/internal/pkg/constants"
	"github.com/piresc/otpauth/internal/pkg/database"
	"github.com/piresc/otpauth/internal/pkg/models"
	"github.com/piresc/otpauth/services/users"
)

// setupMiniredis creates a new miniredis server and a client wrapper connected to it
func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *database.RedisClient) {
	mr := miniredis.RunT(t)
	client := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func ledgerImplementations(t *testing.T) map[string]func() users.OTPLedger {
	return map[string]func() users.OTPLedger{
		"memory": func() users.OTPLedger {
			return NewMemoryLedger(0)
		},
		"redis": func() users.OTPLedger {
			_, client := setupMiniredis(t)
			return NewRedisLedger(client, 0)
		},
	}
}

func TestOTPLedger_Contract(t *testing.T) {
	ctx := context.Background()

	for name, newLedger := range ledgerImplementations(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("Peek absent", func(t *testing.T) {
				l := newLedger()
				code, found, err := l.PeekOTP(ctx, "a@x.com")
				require.NoError(t, err)
				assert.False(t, found)
				assert.Empty(t, code)
			})

			t.Run("Put then peek is non-destructive", func(t *testing.T) {
				l := newLedger()
				require.NoError(t, l.PutOTP(ctx, "a@x.com", "1234"))

				for i := 0; i < 2; i++ {
					code, found, err := l.PeekOTP(ctx, "a@x.com")
					require.NoError(t, err)
					assert.True(t, found)
					assert.Equal(t, "1234", code)
				}
			})

			t.Run("Last write wins", func(t *testing.T) {
				l := newLedger()
				require.NoError(t, l.PutOTP(ctx, "a@x.com", "1111"))
				require.NoError(t, l.PutOTP(ctx, "a@x.com", "2222"))

				code, _, err := l.PeekOTP(ctx, "a@x.com")
				require.NoError(t, err)
				assert.Equal(t, "2222", code)
			})

			t.Run("Keys are case sensitive", func(t *testing.T) {
				l := newLedger()
				require.NoError(t, l.PutOTP(ctx, "A@x.com", "1234"))

				_, found, err := l.PeekOTP(ctx, "a@x.com")
				require.NoError(t, err)
				assert.False(t, found)
			})

			t.Run("Consume removes and is idempotent", func(t *testing.T) {
				l := newLedger()
				require.NoError(t, l.PutOTP(ctx, "a@x.com", "1234"))
				require.NoError(t, l.ConsumeOTP(ctx, "a@x.com"))
				require.NoError(t, l.ConsumeOTP(ctx, "a@x.com"))

				_, found, err := l.PeekOTP(ctx, "a@x.com")
				require.NoError(t, err)
				assert.False(t, found)
			})

			t.Run("Consume if match", func(t *testing.T) {
				l := newLedger()
				require.NoError(t, l.PutOTP(ctx, "a@x.com", "1234"))

				ok, err := l.ConsumeOTPIfMatch(ctx, "a@x.com", "9999")
				require.NoError(t, err)
				assert.False(t, ok)

				code, found, err := l.PeekOTP(ctx, "a@x.com")
				require.NoError(t, err)
				assert.True(t, found, "mismatch must leave the entry in place")
				assert.Equal(t, "1234", code)

				ok, err = l.ConsumeOTPIfMatch(ctx, "a@x.com", "1234")
				require.NoError(t, err)
				assert.True(t, ok)

				ok, err = l.ConsumeOTPIfMatch(ctx, "a@x.com", "1234")
				require.NoError(t, err)
				assert.False(t, ok, "codes are single use")
			})

			t.Run("Concurrent consumers win once", func(t *testing.T) {
				l := newLedger()
				require.NoError(t, l.PutOTP(ctx, "a@x.com", "1234"))

				var wg sync.WaitGroup
				var mu sync.Mutex
				wins := 0
				for i := 0; i < 20; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						ok, err := l.ConsumeOTPIfMatch(ctx, "a@x.com", "1234")
						assert.NoError(t, err)
						if ok {
							mu.Lock()
							wins++
							mu.Unlock()
						}
					}()
				}
				wg.Wait()
				assert.Equal(t, 1, wins)
			})
		})
	}
}

func TestMemoryLedger_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	l := NewMemoryLedger(5 * time.Minute)
	l.now = func() time.Time { return now }

	require.NoError(t, l.PutOTP(ctx, "a@x.com", "1234"))

	now = now.Add(4 * time.Minute)
	_, found, err := l.PeekOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(time.Minute)
	_, found, err = l.PeekOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := l.ConsumeOTPIfMatch(ctx, "a@x.com", "1234")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLedger_NoTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	l := NewMemoryLedger(0)
	l.now = func() time.Time { return now }
	require.NoError(t, l.PutOTP(ctx, "a@x.com", "1234"))

	now = now.Add(365 * 24 * time.Hour)
	_, found, err := l.PeekOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRedisLedger_StoredFormat(t *testing.T) {
	mr, client := setupMiniredis(t)
	l := NewRedisLedger(client, 0)

	require.NoError(t, l.PutOTP(context.Background(), "a@x.com", "1234"))

	key := fmt.Sprintf(constants.KeyUserOTP, "a@x.com")
	val, err := mr.Get(key)
	require.NoError(t, err)

	var stored models.OTP
	require.NoError(t, json.Unmarshal([]byte(val), &stored))
	assert.Equal(t, "a@x.com", stored.Email)
	assert.Equal(t, "1234", stored.Code)
	assert.True(t, stored.ExpiresAt.IsZero())
	assert.Equal(t, time.Duration(0), mr.TTL(key))
}

func TestRedisLedger_TTL(t *testing.T) {
	mr, client := setupMiniredis(t)
	l := NewRedisLedger(client, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, l.PutOTP(ctx, "a@x.com", "1234"))
	assert.Equal(t, 5*time.Minute, mr.TTL(fmt.Sprintf(constants.KeyUserOTP, "a@x.com")))

	mr.FastForward(6 * time.Minute)

	_, found, err := l.PeekOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisLedger_ConnectionError(t *testing.T) {
	mr, client := setupMiniredis(t)
	l := NewRedisLedger(client, 0)
	mr.Close()

	ctx := context.Background()
	assert.Error(t, l.PutOTP(ctx, "a@x.com", "1234"))
	_, _, err := l.PeekOTP(ctx, "a@x.com")
	assert.Error(t, err)
	_, err = l.ConsumeOTPIfMatch(ctx, "a@x.com", "1234")
	assert.Error(t, err)
}

func TestVerificationStores(t *testing.T) {
	ctx := context.Background()

	stores := map[string]func() users.VerificationStore{
		"memory": func() users.VerificationStore { return NewMemoryVerificationStore(15 * time.Minute) },
		"redis": func() users.VerificationStore {
			_, client := setupMiniredis(t)
			return NewRedisVerificationStore(client, 15*time.Minute)
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			s := newStore()

			ok, err := s.ConsumeVerified(ctx, "a@x.com")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.MarkVerified(ctx, "a@x.com"))

			ok, err = s.ConsumeVerified(ctx, "a@x.com")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = s.ConsumeVerified(ctx, "a@x.com")
			require.NoError(t, err)
			assert.False(t, ok, "a verification mark is used once")
		})
	}
}

func TestMemoryVerificationStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	s := NewMemoryVerificationStore(15 * time.Minute)
	s.now = func() time.Time { return now }

	require.NoError(t, s.MarkVerified(ctx, "a@x.com"))
	now = now.Add(16 * time.Minute)

	ok, err := s.ConsumeVerified(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryVerificationStore_MarkSweepsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	s := NewMemoryVerificationStore(15 * time.Minute)
	s.now = func() time.Time { return now }

	require.NoError(t, s.MarkVerified(ctx, "a@x.com"))
	require.NoError(t, s.MarkVerified(ctx, "b@x.com"))
	now = now.Add(10 * time.Minute)
	require.NoError(t, s.MarkVerified(ctx, "c@x.com"))
	now = now.Add(6 * time.Minute)
	require.NoError(t, s.MarkVerified(ctx, "d@x.com"))

	assert.Len(t, s.verified, 2)
	assert.Contains(t, s.verified, "c@x.com")
	assert.Contains(t, s.verified, "d@x.com")
}

func TestMemoryLedger_PutSweepsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	l := NewMemoryLedger(5 * time.Minute)
	l.now = func() time.Time { return now }

	require.NoError(t, l.PutOTP(ctx, "a@x.com", "1234"))
	now = now.Add(6 * time.Minute)
	require.NoError(t, l.PutOTP(ctx, "b@x.com", "5678"))

	assert.Len(t, l.entries, 1)
	assert.Contains(t, l.entries, "b@x.com")
}

func TestRedisVerificationStore_Expiry(t *testing.T) {
	mr, client := setupMiniredis(t)
	s := NewRedisVerificationStore(client, 15*time.Minute)
	ctx := context.Background()

	require.NoError(t, s.MarkVerified(ctx, "a@x.com"))
	mr.FastForward(16 * time.Minute)

	ok, err := s.ConsumeVerified(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
