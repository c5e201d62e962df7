package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) Config {
	return Config{
		Name:       "test",
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Multiplier: 2,
	}
}

func TestRetrier_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := New(fastConfig(3), nil).Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetrier_GivesUp(t *testing.T) {
	cause := errors.New("connection refused")
	attempts := 0
	err := New(fastConfig(2), nil).Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return cause
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "retry limit exceeded after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestRetrier_NonRetryable(t *testing.T) {
	cfg := fastConfig(5)
	cfg.RetryableFunc = func(err error) bool { return false }
	attempts := 0

	err := New(cfg, nil).Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("bad credentials")
	})

	assert.EqualError(t, err, "bad credentials")
	assert.Equal(t, 1, attempts)
}

func TestRetrier_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(fastConfig(3), nil).Execute(ctx, func(ctx context.Context) error {
		t.Fatal("fn must not run on a cancelled context")
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetrier_CalculateDelay(t *testing.T) {
	r := New(Config{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}, nil)

	assert.Equal(t, 100*time.Millisecond, r.calculateDelay(0))
	assert.Equal(t, 400*time.Millisecond, r.calculateDelay(2))
	assert.Equal(t, time.Second, r.calculateDelay(10))
}

func TestDo_ReturnsValue(t *testing.T) {
	v, err := Do(context.Background(), "answer", func(ctx context.Context) (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
