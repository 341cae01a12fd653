package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leaguehq/matchops/config"
)

// ErrCircuitOpen is returned when a call is short-circuited by an open breaker. It is
// a distinct expected outcome, not a collaborator failure, and records nothing on the
// breaker.
var ErrCircuitOpen = errors.New("call blocked by open circuit breaker")

// PermanentError wraps an error that must not be retried, e.g. a 4xx response. It fails
// fast and does not count toward the breaker failure count, since a malformed request
// says nothing about collaborator health.
type PermanentError struct {
	Err error
}

func (permanent *PermanentError) Error() string {
	return permanent.Err.Error()
}

func (permanent *PermanentError) Unwrap() error {
	return permanent.Err
}

// Permanent marks err as non-retryable
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// RetryPolicy retries transient failures with bounded exponential backoff. The backoff
// before attempt n is min(base * 2^(n-2), max), so three attempts sleep 1s then 2s with
// the defaults. Sleeping happens inline; only use this from contexts that tolerate
// multi second latency, like a background job handler.
type RetryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	sleep      func(context.Context, time.Duration)
}

// NewRetryPolicy creates a retry policy as per the configuration
func NewRetryPolicy(breakerConfig config.BreakerConfig) *RetryPolicy {
	if breakerConfig == nil {
		panic("breaker config is nil")
	}
	return &RetryPolicy{
		maxRetries: breakerConfig.GetMaxRetries(),
		baseDelay:  breakerConfig.GetBaseBackoff(),
		maxDelay:   breakerConfig.GetMaxBackoff(),
		sleep:      sleepWithContext,
	}
}

func sleepWithContext(ctx context.Context, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// backoffDelay returns the sleep before the attempt following failedAttempts failures
func (policy *RetryPolicy) backoffDelay(failedAttempts int) time.Duration {
	delay := policy.baseDelay << (failedAttempts - 1)
	if delay > policy.maxDelay || delay <= 0 {
		delay = policy.maxDelay
	}
	return delay
}

// Call invokes fn through the circuit breaker. Before each attempt it checks
// CanProceed and short-circuits with ErrCircuitOpen when blocked. Transient failures
// are retried up to the attempt bound; a PermanentError fails fast. Exactly one
// terminal outcome is recorded on the breaker: RecordSuccess on success, RecordFailure
// on transient exhaustion.
func (policy *RetryPolicy) Call(ctx context.Context, circuitBreaker *CircuitBreaker, fn func() error) error {
	attempts := policy.maxRetries
	if attempts < 1 {
		// a zero or negative budget still means one attempt, never a silent success
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if !circuitBreaker.CanProceed() {
			return ErrCircuitOpen
		}
		if attempt > 1 {
			policy.sleep(ctx, policy.backoffDelay(attempt-1))
			if ctx.Err() != nil {
				circuitBreaker.RecordFailure()
				return ctx.Err()
			}
		}
		err = fn()
		if err == nil {
			circuitBreaker.RecordSuccess()
			return nil
		}
		var permanent *PermanentError
		if errors.As(err, &permanent) {
			return err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("transient failure calling collaborator")
	}
	circuitBreaker.RecordFailure()
	return err
}
