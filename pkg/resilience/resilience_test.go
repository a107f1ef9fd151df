package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestCircuitBreakerTripsAndRecovers(t *testing.T) {
	var transitions []State
	cb := NewCircuitBreaker("store", CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
		OnStateChange: func(_ string, _, to State) {
			transitions = append(transitions, to)
		},
	})
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return clock }

	fail := func() error { return errBoom }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.ErrorIs(t, cb.Execute(fail), errBoom)
	assert.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	clock = clock.Add(time.Minute)
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("store", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Second})
	clock := time.Now()
	cb.now = func() time.Time { return clock }

	_ = cb.Execute(func() error { return errBoom })
	clock = clock.Add(time.Second)
	_ = cb.Execute(func() error { return errBoom })
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("not found")
	calls := 0
	err := Retry(context.Background(), "get", RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		Retryable:    func(err error) bool { return !errors.Is(err, permanent) },
	}, func() error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetryEventuallySucceeds(t *testing.T) {
	calls := 0
	var retried []int
	cfg := RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		OnRetry:      func(attempt int, _ error) { retried = append(retried, attempt) },
	}
	err := Retry(context.Background(), "put", cfg, func() error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetryExhausted(t *testing.T) {
	err := Retry(context.Background(), "put", RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond}, func() error {
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "all 2 attempts failed")
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, "invoke", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = WithTimeout(context.Background(), time.Second, "invoke", func(context.Context) error { return nil })
	assert.NoError(t, err)
}
