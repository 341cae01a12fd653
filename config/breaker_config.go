package config

import (
	"time"
)

const (
	// DefaultFailureThreshold is the consecutive failure count that trips the breaker
	DefaultFailureThreshold = 5
	// DefaultRecoveryTimeoutSeconds is how long the breaker stays open before a trial call
	DefaultRecoveryTimeoutSeconds = 60
	// DefaultMaxRetries is the attempt bound of the retrying call wrapper
	DefaultMaxRetries = 3
	// DefaultMaxBackoffSeconds caps the exponential retry backoff
	DefaultMaxBackoffSeconds = 30
)

// BreakerConfig represents configuration of the bot service circuit breaker and retries
type BreakerConfig interface {
	// GetFailureThreshold returns the consecutive failure count that opens the circuit
	GetFailureThreshold() int
	// GetRecoveryTimeout returns how long the circuit stays open before a trial call
	GetRecoveryTimeout() time.Duration
	// GetMaxRetries returns the attempt bound of the retrying call wrapper
	GetMaxRetries() int
	// GetBaseBackoff returns the first retry delay
	GetBaseBackoff() time.Duration
	// GetMaxBackoff returns the retry delay cap
	GetMaxBackoff() time.Duration
}

// GetFailureThreshold returns the consecutive failure count that opens the circuit
func (config *Config) GetFailureThreshold() int {
	if config.breakerFailureThreshold == 0 {
		return DefaultFailureThreshold
	}
	return config.breakerFailureThreshold
}

// GetRecoveryTimeout returns how long the circuit stays open before a trial call
func (config *Config) GetRecoveryTimeout() time.Duration {
	if config.breakerRecoveryTimeout == 0 {
		return DefaultRecoveryTimeoutSeconds * time.Second
	}
	return config.breakerRecoveryTimeout
}

// GetMaxRetries returns the attempt bound of the retrying call wrapper
func (config *Config) GetMaxRetries() int {
	if config.breakerMaxRetries == 0 {
		return DefaultMaxRetries
	}
	return config.breakerMaxRetries
}

// GetBaseBackoff returns the first retry delay
func (config *Config) GetBaseBackoff() time.Duration {
	if config.breakerBaseBackoff == 0 {
		return time.Second
	}
	return config.breakerBaseBackoff
}

// GetMaxBackoff returns the retry delay cap
func (config *Config) GetMaxBackoff() time.Duration {
	if config.breakerMaxBackoff == 0 {
		return DefaultMaxBackoffSeconds * time.Second
	}
	return config.breakerMaxBackoff
}
