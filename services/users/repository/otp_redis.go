package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/otpauth/internal/pkg/constants"
	"github.com/piresc/otpauth/internal/pkg/database"
	"github.com/piresc/otpauth/internal/pkg/models"
	nrpkg "github.com/piresc/otpauth/internal/pkg/newrelic"
)

// consumeIfMatchLua deletes KEYS[1] only when its JSON code equals ARGV[1].
// Returns 1 when the entry was consumed, 0 otherwise.
var consumeIfMatchLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return 0
end
local ok, entry = pcall(cjson.decode, data)
if not ok or entry.code ~= ARGV[1] then
  return 0
end
redis.call('DEL', KEYS[1])
return 1
`)

// RedisLedger is an OTP ledger shared by every API instance
type RedisLedger struct {
	redisClient *database.RedisClient
	ttl         time.Duration
}

// NewRedisLedger creates a Redis-backed ledger; ttl 0 keeps codes until they
// are overwritten or consumed
func NewRedisLedger(redisClient *database.RedisClient, ttl time.Duration) *RedisLedger {
	return &RedisLedger{redisClient: redisClient, ttl: ttl}
}

func otpKey(email string) string {
	return fmt.Sprintf(constants.KeyUserOTP, email)
}

// PutOTP stores code for email, replacing any previous entry
func (l *RedisLedger) PutOTP(ctx context.Context, email, code string) error {
	now := time.Now()
	entry := models.OTP{Email: email, Code: code, CreatedAt: now}
	if l.ttl > 0 {
		entry.ExpiresAt = now.Add(l.ttl)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal otp: %w", err)
	}

	err = nrpkg.WithDatastoreSegment(ctx, newrelic.DatastoreRedis, "user_otp", "SET", func() error {
		return l.redisClient.Set(ctx, otpKey(email), data, l.ttl)
	})
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

// PeekOTP returns the live code for email
func (l *RedisLedger) PeekOTP(ctx context.Context, email string) (string, bool, error) {
	var val string
	err := nrpkg.WithDatastoreSegment(ctx, newrelic.DatastoreRedis, "user_otp", "GET", func() error {
		var err error
		val, err = l.redisClient.Get(ctx, otpKey(email))
		return err
	})
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get otp: %w", err)
	}

	var entry models.OTP
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal otp: %w", err)
	}
	return entry.Code, true, nil
}

// ConsumeOTP removes the entry for email
func (l *RedisLedger) ConsumeOTP(ctx context.Context, email string) error {
	err := nrpkg.WithDatastoreSegment(ctx, newrelic.DatastoreRedis, "user_otp", "DEL", func() error {
		return l.redisClient.Delete(ctx, otpKey(email))
	})
	if err != nil {
		return fmt.Errorf("failed to delete otp: %w", err)
	}
	return nil
}

// ConsumeOTPIfMatch removes the entry only if it still holds code
func (l *RedisLedger) ConsumeOTPIfMatch(ctx context.Context, email, code string) (bool, error) {
	var res interface{}
	err := nrpkg.WithDatastoreSegment(ctx, newrelic.DatastoreRedis, "user_otp", "EVALSHA", func() error {
		var err error
		res, err = l.redisClient.RunScript(ctx, consumeIfMatchLua, []string{otpKey(email)}, code)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}

	n, ok := res.(int64)
	return ok && n == 1, nil
}

// RedisVerificationStore keeps verification marks in Redis with a TTL
type RedisVerificationStore struct {
	redisClient *database.RedisClient
	ttl         time.Duration
}

// NewRedisVerificationStore creates a Redis-backed verification store
func NewRedisVerificationStore(redisClient *database.RedisClient, ttl time.Duration) *RedisVerificationStore {
	return &RedisVerificationStore{redisClient: redisClient, ttl: ttl}
}

func verifiedKey(email string) string {
	return fmt.Sprintf(constants.KeyVerifiedEmail, email)
}

// MarkVerified records that email passed OTP verification
func (s *RedisVerificationStore) MarkVerified(ctx context.Context, email string) error {
	if err := s.redisClient.Set(ctx, verifiedKey(email), "1", s.ttl); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

// ConsumeVerified reports whether email holds a live mark and clears it
func (s *RedisVerificationStore) ConsumeVerified(ctx context.Context, email string) (bool, error) {
	_, err := s.redisClient.GetDel(ctx, verifiedKey(email))
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume verification: %w", err)
	}
	return true, nil
}
