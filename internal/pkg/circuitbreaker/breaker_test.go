package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRelay = errors.New("554 relay unavailable")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold uint32) (*CircuitBreaker, *fakeClock, *[]State) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	var transitions []State
	cb := New(Config{
		Name:             "smtp",
		FailureThreshold: threshold,
		Cooldown:         30 * time.Second,
		OnStateChange: func(_ string, _, to State) {
			transitions = append(transitions, to)
		},
	})
	cb.now = clock.now
	return cb, clock, &transitions
}

func fail(context.Context) error    { return errRelay }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _, _ := newTestBreaker(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, fail), errRelay)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _, _ := newTestBreaker(2)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	require.NoError(t, cb.Execute(ctx, succeed))
	_ = cb.Execute(ctx, fail)

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_ProbeAfterCooldown(t *testing.T) {
	tests := []struct {
		name        string
		probe       func(context.Context) error
		final       State
		transitions []State
	}{
		{
			name:        "Probe succeeds",
			probe:       succeed,
			final:       StateClosed,
			transitions: []State{StateOpen, StateHalfOpen, StateClosed},
		},
		{
			name:        "Probe fails",
			probe:       fail,
			final:       StateOpen,
			transitions: []State{StateOpen, StateHalfOpen, StateOpen},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, clock, transitions := newTestBreaker(1)
			ctx := context.Background()

			_ = cb.Execute(ctx, fail)
			clock.advance(29 * time.Second)
			assert.ErrorIs(t, cb.Execute(ctx, succeed), ErrOpen)

			clock.advance(time.Second)
			_ = cb.Execute(ctx, tt.probe)

			assert.Equal(t, tt.final, cb.State())
			assert.Equal(t, tt.transitions, *transitions)
		})
	}
}

func TestCircuitBreaker_CallerCancellationIsNotFailure(t *testing.T) {
	cb, _, _ := newTestBreaker(1)

	err := cb.Execute(context.Background(), func(context.Context) error {
		return context.Canceled
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_ZeroThresholdDisables(t *testing.T) {
	cb, _, transitions := newTestBreaker(0)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, fail), errRelay)
	}

	assert.Equal(t, StateClosed, cb.State())
	assert.Empty(t, *transitions)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "CLOSED", StateClosed.String())
	assert.Equal(t, "OPEN", StateOpen.String())
	assert.Equal(t, "HALF_OPEN", StateHalfOpen.String())
	assert.Equal(t, "UNKNOWN", State(7).String())
}
