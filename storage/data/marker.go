package data

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrMarkerNotFound is returned when no schedule marker exists for a fixture and job type
var ErrMarkerNotFound = errors.New("schedule marker not found")

// ScheduleMarker proves a (fixture, job type) pair has already been submitted to the job queue.
// At most one non-expired marker may exist per pair; the marker is written once and only
// reclaimed by TTL or explicit unscheduling, never mutated.
type ScheduleMarker struct {
	FixtureID    string
	JobType      JobType
	JobID        string
	ETA          time.Time
	TTLRemaining time.Duration
}

// markerPayload is the stored wire form of a marker value
type markerPayload struct {
	JobID string `json:"job_id"`
	ETA   string `json:"eta"`
}

// NewScheduleMarker creates a marker for a submitted job
func NewScheduleMarker(fixtureID string, jobType JobType, jobID string, eta time.Time) (*ScheduleMarker, error) {
	if len(fixtureID) < 1 || len(jobID) < 1 {
		return nil, errors.New("fixture id and job id must not be empty")
	}
	return &ScheduleMarker{FixtureID: fixtureID, JobType: jobType, JobID: jobID, ETA: eta}, nil
}

// Encode serializes the marker value for the key/value store
func (marker *ScheduleMarker) Encode() ([]byte, error) {
	return json.Marshal(markerPayload{JobID: marker.JobID, ETA: marker.ETA.UTC().Format(time.RFC3339)})
}

// DecodeScheduleMarker deserializes a stored marker value. Bare job id strings written
// by older releases are accepted with a zero ETA.
func DecodeScheduleMarker(fixtureID string, jobType JobType, value []byte) (*ScheduleMarker, error) {
	marker := &ScheduleMarker{FixtureID: fixtureID, JobType: jobType}
	var payload markerPayload
	if err := json.Unmarshal(value, &payload); err != nil {
		marker.JobID = string(value)
		return marker, nil
	}
	marker.JobID = payload.JobID
	if len(payload.ETA) > 0 {
		eta, err := time.Parse(time.RFC3339, payload.ETA)
		if err == nil {
			marker.ETA = eta
		}
	}
	return marker, nil
}
