package storage

import (
	"github.com/google/wire"
)

var (
	// StorageInjector sets up the key/value store and its repositories
	StorageInjector = wire.NewSet(NewRedisClient, NewRedisKeyValueStore, NewScheduleMarkerRepository, NewSnapshotRepository,
		wire.Bind(new(KeyValueStore), new(*RedisKeyValueStore)))
)
