package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leaguehq/matchops/storage/data"
)

const markerKeyPrefix = "sched:"

// ScheduleMarkerRepository persists dedup markers in the key/value store under
// `sched:{fixture}:{jobtype}` keys
type ScheduleMarkerRepository interface {
	// SaveIfAbsent writes the marker with ttl only when no live marker exists for the
	// pair; reports whether the write won
	SaveIfAbsent(ctx context.Context, marker *data.ScheduleMarker, ttl time.Duration) (bool, error)
	// Get reads the marker for a fixture and job type with its remaining TTL, or
	// data.ErrMarkerNotFound
	Get(ctx context.Context, fixtureID string, jobType data.JobType) (*data.ScheduleMarker, error)
	// Clear removes the marker for a fixture and job type
	Clear(ctx context.Context, fixtureID string, jobType data.JobType) error
	// AllFixtureIDs lists every fixture that has at least one live marker
	AllFixtureIDs(ctx context.Context) ([]string, error)
}

// MarkerKey derives the deterministic dedup key for a fixture and job type
func MarkerKey(fixtureID string, jobType data.JobType) string {
	return fmt.Sprintf("%s%s:%s", markerKeyPrefix, fixtureID, jobType)
}

// NewScheduleMarkerRepository creates a marker repository over the given store
func NewScheduleMarkerRepository(store KeyValueStore) ScheduleMarkerRepository {
	if store == nil {
		panic("key value store is nil")
	}
	return &markerRepository{store: store}
}

type markerRepository struct {
	store KeyValueStore
}

func (repo *markerRepository) SaveIfAbsent(ctx context.Context, marker *data.ScheduleMarker, ttl time.Duration) (bool, error) {
	value, err := marker.Encode()
	if err != nil {
		return false, err
	}
	return repo.store.SetIfAbsent(ctx, MarkerKey(marker.FixtureID, marker.JobType), value, ttl)
}

func (repo *markerRepository) Get(ctx context.Context, fixtureID string, jobType data.JobType) (*data.ScheduleMarker, error) {
	key := MarkerKey(fixtureID, jobType)
	value, err := repo.store.Get(ctx, key)
	if err == ErrKeyNotFound {
		return nil, data.ErrMarkerNotFound
	}
	if err != nil {
		return nil, err
	}
	marker, err := data.DecodeScheduleMarker(fixtureID, jobType, value)
	if err != nil {
		return nil, err
	}
	ttl, err := repo.store.TTL(ctx, key)
	if err == nil {
		marker.TTLRemaining = ttl
	}
	return marker, nil
}

func (repo *markerRepository) Clear(ctx context.Context, fixtureID string, jobType data.JobType) error {
	return repo.store.Delete(ctx, MarkerKey(fixtureID, jobType))
}

func (repo *markerRepository) AllFixtureIDs(ctx context.Context) ([]string, error) {
	keys, err := repo.store.Keys(ctx, markerKeyPrefix)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var fixtureIDs []string
	for _, key := range keys {
		// job type is the segment after the last colon
		suffix := strings.TrimPrefix(key, markerKeyPrefix)
		cut := strings.LastIndex(suffix, ":")
		if cut < 1 {
			log.Error().Str("key", key).Msg("unexpected schedule marker key format")
			continue
		}
		fixtureID := suffix[:cut]
		if !seen[fixtureID] {
			seen[fixtureID] = true
			fixtureIDs = append(fixtureIDs, fixtureID)
		}
	}
	return fixtureIDs, nil
}
