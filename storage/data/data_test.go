package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseJobType(t *testing.T) {
	t.Run("known types", func(t *testing.T) {
		for _, name := range []string{"thread_creation", "live_reporting_start", "live_reporting_stop"} {
			jobType, err := ParseJobType(name)
			assert.NoError(t, err)
			assert.Equal(t, name, string(jobType))
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := ParseJobType("password_reset")
		assert.Equal(t, ErrUnknownJobType, err)
	})
}

func TestJobTypeDisplayName(t *testing.T) {
	assert.Equal(t, "Thread Creation", JobTypeThreadCreation.DisplayName())
	assert.Equal(t, "Live Reporting", JobTypeLiveReportingStart.DisplayName())
	assert.Equal(t, "Live Reporting Stop", JobTypeLiveReportingStop.DisplayName())
}

func TestNormalizeJobState(t *testing.T) {
	assert.Equal(t, JobStatePending, NormalizeJobState("pending"))
	assert.Equal(t, JobStateSuccess, NormalizeJobState(" SUCCESS "))
	assert.Equal(t, JobStateRevoked, NormalizeJobState("Revoked"))
	assert.Equal(t, JobStateUnknown, NormalizeJobState("SHADOW_BANNED"))
	assert.Equal(t, JobStateUnknown, NormalizeJobState(""))
}

func TestScheduleMarkerCodec(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		// Arrange
		eta := time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC)
		marker, err := NewScheduleMarker("42", JobTypeThreadCreation, "job-abc", eta)
		assert.NoError(t, err)

		// Act
		value, err := marker.Encode()
		assert.NoError(t, err)
		decoded, err := DecodeScheduleMarker("42", JobTypeThreadCreation, value)

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, "job-abc", decoded.JobID)
		assert.True(t, eta.Equal(decoded.ETA))
	})

	t.Run("legacy bare job id value", func(t *testing.T) {
		decoded, err := DecodeScheduleMarker("42", JobTypeThreadCreation, []byte("job-legacy"))
		assert.NoError(t, err)
		assert.Equal(t, "job-legacy", decoded.JobID)
		assert.True(t, decoded.ETA.IsZero())
	})

	t.Run("empty identifiers rejected", func(t *testing.T) {
		_, err := NewScheduleMarker("", JobTypeThreadCreation, "job-abc", time.Now())
		assert.Error(t, err)
		_, err = NewScheduleMarker("42", JobTypeThreadCreation, "", time.Now())
		assert.Error(t, err)
	})
}

func TestQueueSnapshot(t *testing.T) {
	// Arrange
	snapshot := NewQueueSnapshot(time.Date(2025, 8, 1, 12, 30, 45, 0, time.UTC))
	snapshot.QueueDepths["live_reporting"] = 5
	snapshot.QueueDepths["default"] = 7
	snapshot.WorkerActive = 2

	// Act & Assert
	assert.Equal(t, 12, snapshot.TotalDepth())
	assert.Equal(t, "20250801T123045", snapshot.KeySuffix())

	value, err := snapshot.Encode()
	assert.NoError(t, err)
	decoded, err := DecodeQueueSnapshot(value)
	assert.NoError(t, err)
	assert.Equal(t, 5, decoded.QueueDepths["live_reporting"])
	assert.Equal(t, 2, decoded.WorkerActive)
}

func TestDecodeQueueSnapshotBadValue(t *testing.T) {
	_, err := DecodeQueueSnapshot([]byte("not json"))
	assert.Error(t, err)
}

func TestHealthStatusForScore(t *testing.T) {
	assert.Equal(t, HealthStatusHealthy, HealthStatusForScore(100))
	assert.Equal(t, HealthStatusHealthy, HealthStatusForScore(71))
	assert.Equal(t, HealthStatusDegraded, HealthStatusForScore(70))
	assert.Equal(t, HealthStatusDegraded, HealthStatusForScore(41))
	assert.Equal(t, HealthStatusCritical, HealthStatusForScore(40))
	assert.Equal(t, HealthStatusCritical, HealthStatusForScore(0))
}
