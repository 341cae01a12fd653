package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leaguehq/matchops/config"
)

// RedisKeyValueStore implements KeyValueStore on a Redis server
type RedisKeyValueStore struct {
	client *redis.Client
}

// NewRedisClient connects a Redis client as per the configuration
func NewRedisClient(redisConfig config.RedisConfig) (*redis.Client, error) {
	if len(redisConfig.GetRedisAddr()) < 1 {
		return nil, errors.New("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         redisConfig.GetRedisAddr(),
		Username:     redisConfig.GetRedisUsername(),
		Password:     redisConfig.GetRedisPassword(),
		DB:           redisConfig.GetRedisDB(),
		DialTimeout:  redisConfig.GetRedisDialTimeout(),
		ReadTimeout:  redisConfig.GetRedisReadTimeout(),
		WriteTimeout: redisConfig.GetRedisWriteTimeout(),
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), redisConfig.GetRedisDialTimeout())
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to ping server: %w", err)
	}
	return client, nil
}

// NewRedisKeyValueStore creates a KeyValueStore backed by the given client
func NewRedisKeyValueStore(client *redis.Client) *RedisKeyValueStore {
	if client == nil {
		panic("redis client is nil")
	}
	return &RedisKeyValueStore{client: client}
}

// Get returns the value stored at key or ErrKeyNotFound
func (store *RedisKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := store.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err.Error())
	}
	return value, nil
}

// SetWithTTL stores value at key expiring after ttl
func (store *RedisKeyValueStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := store.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrStoreUnavailable, err.Error())
	}
	return nil
}

// SetIfAbsent atomically stores value at key only when absent, via SETNX
func (store *RedisKeyValueStore) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	won, err := store.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrStoreUnavailable, err.Error())
	}
	return won, nil
}

// Exists reports whether a non-expired value is stored at key
func (store *RedisKeyValueStore) Exists(ctx context.Context, key string) (bool, error) {
	count, err := store.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrStoreUnavailable, err.Error())
	}
	return count > 0, nil
}

// TTL returns the remaining time to live of key
func (store *RedisKeyValueStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := store.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrStoreUnavailable, err.Error())
	}
	return normalizeRedisTTL(ttl)
}

// normalizeRedisTTL maps the TTL reply onto the KeyValueStore contract. go-redis
// scales only non-negative replies to seconds; the protocol sentinels arrive raw,
// -2 for no such key and -1 for a key without expiry.
func normalizeRedisTTL(ttl time.Duration) (time.Duration, error) {
	if ttl == time.Duration(-2) {
		return 0, ErrKeyNotFound
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Keys returns all keys with the given prefix using SCAN to avoid blocking the server
func (store *RedisKeyValueStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := store.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err.Error())
	}
	return keys, nil
}

// Delete removes key
func (store *RedisKeyValueStore) Delete(ctx context.Context, key string) error {
	if err := store.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrStoreUnavailable, err.Error())
	}
	return nil
}
