package storage

import (
	"context"
	"strings"
	"sync"
	"time"
)

// memItem represents a stored value with its expiration time
type memItem struct {
	value      []byte
	expiration time.Time
}

// MemKeyValueStore is an in-memory KeyValueStore with per key TTL support. It backs
// tests and serves as a process local fallback when Redis is not configured; dedup
// markers in it do not survive restarts, so a restart may reschedule fixture jobs.
type MemKeyValueStore struct {
	items map[string]*memItem
	mutex sync.RWMutex
	now   func() time.Time
}

// NewMemKeyValueStore creates an empty in-memory store
func NewMemKeyValueStore() *MemKeyValueStore {
	return &MemKeyValueStore{items: make(map[string]*memItem), now: time.Now}
}

// SetClock overrides the store clock, for expiry tests
func (store *MemKeyValueStore) SetClock(now func() time.Time) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.now = now
}

func (store *MemKeyValueStore) liveItem(key string) *memItem {
	if item, ok := store.items[key]; ok {
		if item.expiration.IsZero() || store.now().Before(item.expiration) {
			return item
		}
		// Remove expired items since they aren't going to be returned
		delete(store.items, key)
	}
	return nil
}

// Get returns the value stored at key or ErrKeyNotFound
func (store *MemKeyValueStore) Get(_ context.Context, key string) ([]byte, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	item := store.liveItem(key)
	if item == nil {
		return nil, ErrKeyNotFound
	}
	value := make([]byte, len(item.value))
	copy(value, item.value)
	return value, nil
}

// SetWithTTL stores value at key expiring after ttl; ttl 0 means no expiration
func (store *MemKeyValueStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.items[key] = store.newItem(value, ttl)
	return nil
}

// SetIfAbsent stores value at key only when no live value exists
func (store *MemKeyValueStore) SetIfAbsent(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if store.liveItem(key) != nil {
		return false, nil
	}
	store.items[key] = store.newItem(value, ttl)
	return true, nil
}

// Exists reports whether a non-expired value is stored at key
func (store *MemKeyValueStore) Exists(_ context.Context, key string) (bool, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return store.liveItem(key) != nil, nil
}

// TTL returns the remaining time to live of key
func (store *MemKeyValueStore) TTL(_ context.Context, key string) (time.Duration, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	item := store.liveItem(key)
	if item == nil {
		return 0, ErrKeyNotFound
	}
	if item.expiration.IsZero() {
		return 0, nil
	}
	return item.expiration.Sub(store.now()), nil
}

// Keys returns all live keys with the given prefix
func (store *MemKeyValueStore) Keys(_ context.Context, prefix string) ([]string, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	var keys []string
	for key := range store.items {
		if strings.HasPrefix(key, prefix) && store.liveItem(key) != nil {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Delete removes key
func (store *MemKeyValueStore) Delete(_ context.Context, key string) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	delete(store.items, key)
	return nil
}

func (store *MemKeyValueStore) newItem(value []byte, ttl time.Duration) *memItem {
	stored := make([]byte, len(value))
	copy(stored, value)
	item := &memItem{value: stored}
	if ttl > 0 {
		item.expiration = store.now().Add(ttl)
	}
	return item
}
