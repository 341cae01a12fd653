package data

import (
	"encoding/json"
	"time"
)

// SnapshotKeyTimeLayout is the sortable timestamp form used in snapshot store keys
const SnapshotKeyTimeLayout = "20060102T150405"

// QueueSnapshot is one periodic sampling of queue depths and worker task counts.
// Snapshots are immutable once written and reclaimed by the store TTL.
type QueueSnapshot struct {
	Timestamp       time.Time      `json:"timestamp"`
	QueueDepths     map[string]int `json:"queue_depths"`
	WorkerActive    int            `json:"worker_active_count"`
	WorkerScheduled int            `json:"worker_scheduled_count"`
}

// NewQueueSnapshot creates a snapshot for the given sampling time
func NewQueueSnapshot(timestamp time.Time) *QueueSnapshot {
	return &QueueSnapshot{Timestamp: timestamp.UTC(), QueueDepths: make(map[string]int)}
}

// TotalDepth is the pending item count summed across all sampled queues
func (snapshot *QueueSnapshot) TotalDepth() int {
	total := 0
	for _, depth := range snapshot.QueueDepths {
		total += depth
	}
	return total
}

// KeySuffix returns the sortable timestamp portion of the snapshot store key
func (snapshot *QueueSnapshot) KeySuffix() string {
	return snapshot.Timestamp.UTC().Format(SnapshotKeyTimeLayout)
}

// Encode serializes the snapshot for the key/value store
func (snapshot *QueueSnapshot) Encode() ([]byte, error) {
	return json.Marshal(snapshot)
}

// DecodeQueueSnapshot deserializes a stored snapshot value
func DecodeQueueSnapshot(value []byte) (*QueueSnapshot, error) {
	snapshot := &QueueSnapshot{}
	if err := json.Unmarshal(value, snapshot); err != nil {
		return nil, err
	}
	if snapshot.QueueDepths == nil {
		snapshot.QueueDepths = make(map[string]int)
	}
	return snapshot, nil
}
