package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrKeyNotFound is returned when a key is absent or already expired
	ErrKeyNotFound = errors.New("key not found")
	// ErrStoreUnavailable is returned when the backing store cannot be reached
	ErrStoreUnavailable = errors.New("key value store unavailable")
)

// KeyValueStore is the shared TTL capable key/value store used for dedup markers
// and queue health snapshots. Implementations must treat unavailability as a normal
// outcome reported through errors, never a panic.
type KeyValueStore interface {
	// Get returns the value stored at key or ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// SetWithTTL stores value at key expiring after ttl
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetIfAbsent atomically stores value at key with ttl only when the key does not
	// exist; reports whether the write won
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Exists reports whether a non-expired value is stored at key
	Exists(ctx context.Context, key string) (bool, error)
	// TTL returns the remaining time to live of key or ErrKeyNotFound
	TTL(ctx context.Context, key string) (time.Duration, error)
	// Keys returns all keys with the given prefix
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Delete removes key; removing an absent key is not an error
	Delete(ctx context.Context, key string) error
}
