package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/leaguehq/matchops/storage/data"
)

const snapshotKeyPrefix = "queue_health:"

// ErrSnapshotNotFound is returned when no snapshot exists in the requested window
var ErrSnapshotNotFound = errors.New("queue snapshot not found")

// SnapshotRepository persists queue health snapshots in the key/value store under
// sortable `queue_health:{timestamp}` keys
type SnapshotRepository interface {
	// Store writes the snapshot with the retention ttl
	Store(ctx context.Context, snapshot *data.QueueSnapshot, retention time.Duration) error
	// Nearest returns the stored snapshot closest to target within tolerance, or
	// ErrSnapshotNotFound
	Nearest(ctx context.Context, target time.Time, tolerance time.Duration) (*data.QueueSnapshot, error)
	// Since returns all stored snapshots at or after cutoff, oldest first
	Since(ctx context.Context, cutoff time.Time) ([]*data.QueueSnapshot, error)
}

// NewSnapshotRepository creates a snapshot repository over the given store
func NewSnapshotRepository(store KeyValueStore) SnapshotRepository {
	if store == nil {
		panic("key value store is nil")
	}
	return &snapshotRepository{store: store}
}

type snapshotRepository struct {
	store KeyValueStore
}

func (repo *snapshotRepository) Store(ctx context.Context, snapshot *data.QueueSnapshot, retention time.Duration) error {
	value, err := snapshot.Encode()
	if err != nil {
		return err
	}
	return repo.store.SetWithTTL(ctx, snapshotKeyPrefix+snapshot.KeySuffix(), value, retention)
}

// sortedTimestamps lists stored snapshot timestamps in ascending order. The key
// suffix layout sorts lexicographically in time order, so a plain string sort works.
func (repo *snapshotRepository) sortedTimestamps(ctx context.Context) ([]time.Time, error) {
	keys, err := repo.store.Keys(ctx, snapshotKeyPrefix)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	timestamps := make([]time.Time, 0, len(keys))
	for _, key := range keys {
		timestamp, err := time.Parse(data.SnapshotKeyTimeLayout, strings.TrimPrefix(key, snapshotKeyPrefix))
		if err != nil {
			continue
		}
		timestamps = append(timestamps, timestamp)
	}
	return timestamps, nil
}

func (repo *snapshotRepository) Nearest(ctx context.Context, target time.Time, tolerance time.Duration) (*data.QueueSnapshot, error) {
	timestamps, err := repo.sortedTimestamps(ctx)
	if err != nil {
		return nil, err
	}
	if len(timestamps) == 0 {
		return nil, ErrSnapshotNotFound
	}
	target = target.UTC()
	// binary search for the first timestamp at or after target, then compare it with
	// its predecessor for the closer of the two
	idx := sort.Search(len(timestamps), func(i int) bool {
		return !timestamps[i].Before(target)
	})
	best := -1
	for _, candidate := range []int{idx - 1, idx} {
		if candidate < 0 || candidate >= len(timestamps) {
			continue
		}
		if best < 0 || absDuration(timestamps[candidate].Sub(target)) < absDuration(timestamps[best].Sub(target)) {
			best = candidate
		}
	}
	if best < 0 || absDuration(timestamps[best].Sub(target)) > tolerance {
		return nil, ErrSnapshotNotFound
	}
	return repo.load(ctx, timestamps[best])
}

func (repo *snapshotRepository) Since(ctx context.Context, cutoff time.Time) ([]*data.QueueSnapshot, error) {
	timestamps, err := repo.sortedTimestamps(ctx)
	if err != nil {
		return nil, err
	}
	var snapshots []*data.QueueSnapshot
	for _, timestamp := range timestamps {
		if timestamp.Before(cutoff.UTC()) {
			continue
		}
		snapshot, err := repo.load(ctx, timestamp)
		if err != nil {
			// key may have expired between the scan and the read
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

func (repo *snapshotRepository) load(ctx context.Context, timestamp time.Time) (*data.QueueSnapshot, error) {
	value, err := repo.store.Get(ctx, snapshotKeyPrefix+timestamp.Format(data.SnapshotKeyTimeLayout))
	if err != nil {
		return nil, err
	}
	return data.DecodeQueueSnapshot(value)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
