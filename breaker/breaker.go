package breaker

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leaguehq/matchops/config"
)

// State is the circuit breaker state
type State string

const (
	// StateClosed means calls pass through normally
	StateClosed State = "CLOSED"
	// StateOpen means calls fail fast without reaching the collaborator
	StateOpen State = "OPEN"
	// StateHalfOpen means the recovery timeout elapsed and the next call is a trial
	StateHalfOpen State = "HALF_OPEN"
)

// CircuitBreaker guards calls to one unreliable collaborator. State lives in process
// memory only; each process trips independently. The half open transition is evaluated
// lazily when the state is read, so an idle open breaker costs nothing.
//
// HalfOpen admits callers without serializing them; callers are expected to attempt
// one trial call at a time rather than free-running concurrent trials.
type CircuitBreaker struct {
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration

	mutex           sync.Mutex
	open            bool
	failureCount    int
	lastFailureTime time.Time
	lastSuccessTime time.Time
	now             func() time.Time
}

// Snapshot is a point in time copy of breaker state for status reporting
type Snapshot struct {
	Name            string    `json:"name"`
	State           State     `json:"state"`
	FailureCount    int       `json:"failure_count"`
	LastFailureTime time.Time `json:"last_failure_time,omitempty"`
	LastSuccessTime time.Time `json:"last_success_time,omitempty"`
}

// NewCircuitBreaker creates a breaker named for its collaborator as per the configuration
func NewCircuitBreaker(name string, breakerConfig config.BreakerConfig) *CircuitBreaker {
	if breakerConfig == nil {
		panic("breaker config is nil")
	}
	return &CircuitBreaker{
		name:             name,
		failureThreshold: breakerConfig.GetFailureThreshold(),
		recoveryTimeout:  breakerConfig.GetRecoveryTimeout(),
		now:              time.Now,
	}
}

// SetClock overrides the breaker clock, for state machine tests
func (breaker *CircuitBreaker) SetClock(now func() time.Time) {
	breaker.mutex.Lock()
	defer breaker.mutex.Unlock()
	breaker.now = now
}

// state derives the reported state; callers must hold the mutex
func (breaker *CircuitBreaker) state() State {
	if !breaker.open {
		return StateClosed
	}
	if breaker.now().Sub(breaker.lastFailureTime) > breaker.recoveryTimeout {
		return StateHalfOpen
	}
	return StateOpen
}

// State returns the current derived state
func (breaker *CircuitBreaker) State() State {
	breaker.mutex.Lock()
	defer breaker.mutex.Unlock()
	return breaker.state()
}

// CanProceed reports whether a call attempt may go ahead. Closed and half open both
// admit the caller; this is a pure query with no side effects.
func (breaker *CircuitBreaker) CanProceed() bool {
	breaker.mutex.Lock()
	defer breaker.mutex.Unlock()
	return breaker.state() != StateOpen
}

// RecordSuccess moves the breaker to closed and resets the failure count
func (breaker *CircuitBreaker) RecordSuccess() {
	breaker.mutex.Lock()
	defer breaker.mutex.Unlock()
	if breaker.open {
		log.Info().Str("breaker", breaker.name).Msg("circuit breaker recovered, closing")
	}
	breaker.open = false
	breaker.failureCount = 0
	breaker.lastSuccessTime = breaker.now()
}

// RecordFailure counts a failure; at the failure threshold the circuit opens and a
// failure during a half open trial re-opens it with a fresh recovery timer
func (breaker *CircuitBreaker) RecordFailure() {
	breaker.mutex.Lock()
	defer breaker.mutex.Unlock()
	breaker.failureCount++
	breaker.lastFailureTime = breaker.now()
	if !breaker.open && breaker.failureCount >= breaker.failureThreshold {
		breaker.open = true
		log.Warn().Str("breaker", breaker.name).Int("failureCount", breaker.failureCount).Msg("circuit breaker opened")
	}
}

// GetSnapshot returns a copy of the breaker state for operators
func (breaker *CircuitBreaker) GetSnapshot() Snapshot {
	breaker.mutex.Lock()
	defer breaker.mutex.Unlock()
	return Snapshot{
		Name:            breaker.name,
		State:           breaker.state(),
		FailureCount:    breaker.failureCount,
		LastFailureTime: breaker.lastFailureTime,
		LastSuccessTime: breaker.lastSuccessTime,
	}
}
