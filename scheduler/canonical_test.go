package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leaguehq/matchops/storage"
	"github.com/leaguehq/matchops/storage/data"
)

func TestRunIfCanonical(t *testing.T) {
	markerRepo := storage.NewScheduleMarkerRepository(storage.NewMemKeyValueStore())
	ctx := context.Background()
	marker, _ := data.NewScheduleMarker("42", data.JobTypeThreadCreation, "job-winner", time.Now())
	won, err := markerRepo.SaveIfAbsent(ctx, marker, time.Hour)
	assert.NoError(t, err)
	assert.True(t, won)

	t.Run("canonical job runs", func(t *testing.T) {
		// Arrange
		ran := false

		// Act
		err := RunIfCanonical(ctx, markerRepo, "42", data.JobTypeThreadCreation, "job-winner", func(context.Context) error {
			ran = true
			return nil
		})

		// Assert
		assert.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("race loser is a silent no-op", func(t *testing.T) {
		// Arrange
		ran := false

		// Act
		err := RunIfCanonical(ctx, markerRepo, "42", data.JobTypeThreadCreation, "job-loser", func(context.Context) error {
			ran = true
			return nil
		})

		// Assert
		assert.NoError(t, err)
		assert.False(t, ran)
	})

	t.Run("missing marker does not block execution", func(t *testing.T) {
		// Arrange
		ran := false

		// Act
		err := RunIfCanonical(ctx, markerRepo, "no-such-fixture", data.JobTypeThreadCreation, "job-x", func(context.Context) error {
			ran = true
			return nil
		})

		// Assert
		assert.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("run error propagates", func(t *testing.T) {
		// Arrange
		runErr := errors.New("bot unavailable")

		// Act
		err := RunIfCanonical(ctx, markerRepo, "42", data.JobTypeThreadCreation, "job-winner", func(context.Context) error {
			return runErr
		})

		// Assert
		assert.Equal(t, runErr, err)
	})
}
