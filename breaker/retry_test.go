package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRetryPolicy() (*RetryPolicy, *[]time.Duration) {
	policy := NewRetryPolicy(testBreakerConfig())
	sleeps := &[]time.Duration{}
	policy.sleep = func(_ context.Context, delay time.Duration) {
		*sleeps = append(*sleeps, delay)
	}
	return policy, sleeps
}

func TestNewRetryPolicy(t *testing.T) {
	t.Run("nil configuration", func(t *testing.T) {
		assert.Panics(t, func() {
			NewRetryPolicy(nil)
		})
	})
}

func TestRetryPolicyCallSuccess(t *testing.T) {
	// Arrange
	policy, sleeps := testRetryPolicy()
	circuitBreaker := NewCircuitBreaker("test", testBreakerConfig())
	calls := 0

	// Act
	err := policy.Call(context.Background(), circuitBreaker, func() error {
		calls++
		return nil
	})

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)
	assert.Equal(t, StateClosed, circuitBreaker.State())
}

func TestRetryPolicyCallTransientExhaustion(t *testing.T) {
	// Arrange
	policy, sleeps := testRetryPolicy()
	circuitBreaker := NewCircuitBreaker("test", testBreakerConfig())
	transientErr := errors.New("connection refused")
	calls := 0

	// Act
	err := policy.Call(context.Background(), circuitBreaker, func() error {
		calls++
		return transientErr
	})

	// Assert - exactly 3 attempts, sleeping 1s then 2s between them
	assert.Equal(t, transientErr, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *sleeps)
	// the whole exhausted call records exactly one failure
	assert.Equal(t, 1, circuitBreaker.GetSnapshot().FailureCount)
}

func TestRetryPolicyCallSuccessAfterTransientFailures(t *testing.T) {
	// Arrange
	policy, _ := testRetryPolicy()
	circuitBreaker := NewCircuitBreaker("test", testBreakerConfig())
	calls := 0

	// Act
	err := policy.Call(context.Background(), circuitBreaker, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	// Assert - intermediate failures are not recorded, only the terminal success
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 0, circuitBreaker.GetSnapshot().FailureCount)
}

func TestRetryPolicyCallPermanentError(t *testing.T) {
	// Arrange
	policy, sleeps := testRetryPolicy()
	circuitBreaker := NewCircuitBreaker("test", testBreakerConfig())
	permanentErr := Permanent(errors.New("status 400"))
	calls := 0

	// Act
	err := policy.Call(context.Background(), circuitBreaker, func() error {
		calls++
		return permanentErr
	})

	// Assert - fails fast without retries and without touching the breaker
	assert.Equal(t, permanentErr, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)
	assert.Equal(t, 0, circuitBreaker.GetSnapshot().FailureCount)
}

func TestRetryPolicyCallCircuitOpen(t *testing.T) {
	// Arrange
	policy, _ := testRetryPolicy()
	circuitBreaker := NewCircuitBreaker("test", testBreakerConfig())
	for i := 0; i < 3; i++ {
		circuitBreaker.RecordFailure()
	}
	calls := 0

	// Act
	err := policy.Call(context.Background(), circuitBreaker, func() error {
		calls++
		return nil
	})

	// Assert - short circuit is a distinct outcome, not a recorded failure
	assert.Equal(t, ErrCircuitOpen, err)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 3, circuitBreaker.GetSnapshot().FailureCount)
}

func TestRetryPolicyCallContextCancelled(t *testing.T) {
	// Arrange
	policy, _ := testRetryPolicy()
	circuitBreaker := NewCircuitBreaker("test", testBreakerConfig())
	ctx, cancel := context.WithCancel(context.Background())
	policy.sleep = func(_ context.Context, _ time.Duration) {
		cancel()
	}

	// Act
	err := policy.Call(ctx, circuitBreaker, func() error {
		return errors.New("connection refused")
	})

	// Assert
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 1, circuitBreaker.GetSnapshot().FailureCount)
}

func TestRetryPolicyCallZeroAttemptBudget(t *testing.T) {
	// Arrange
	policy := NewRetryPolicy(&mockBreakerConfig{
		failureThreshold: 3,
		recoveryTimeout:  time.Minute,
		maxRetries:       0,
		baseBackoff:      time.Second,
		maxBackoff:       4 * time.Second,
	})
	circuitBreaker := NewCircuitBreaker("test", testBreakerConfig())
	calls := 0

	// Act
	err := policy.Call(context.Background(), circuitBreaker, func() error {
		calls++
		return errors.New("connection refused")
	})

	// Assert - a zero budget still makes exactly one attempt and reports its outcome
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, circuitBreaker.GetSnapshot().FailureCount)
}

func TestPermanent(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, Permanent(nil))
	})

	t.Run("wraps and unwraps", func(t *testing.T) {
		inner := errors.New("status 404")
		wrapped := Permanent(inner)
		assert.Equal(t, inner.Error(), wrapped.Error())
		assert.Equal(t, inner, errors.Unwrap(wrapped))
	})
}

func TestBackoffDelayCap(t *testing.T) {
	// Arrange
	policy := NewRetryPolicy(&mockBreakerConfig{
		failureThreshold: 3,
		recoveryTimeout:  time.Minute,
		maxRetries:       10,
		baseBackoff:      time.Second,
		maxBackoff:       4 * time.Second,
	})

	// Act & Assert
	assert.Equal(t, time.Second, policy.backoffDelay(1))
	assert.Equal(t, 2*time.Second, policy.backoffDelay(2))
	assert.Equal(t, 4*time.Second, policy.backoffDelay(3))
	assert.Equal(t, 4*time.Second, policy.backoffDelay(4))
	assert.Equal(t, 4*time.Second, policy.backoffDelay(40))
}
