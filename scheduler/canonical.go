package scheduler

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/leaguehq/matchops/storage"
	"github.com/leaguehq/matchops/storage/data"
)

// RunIfCanonical executes run only when jobID is still the canonical job recorded in
// the fixture's dedup marker. A job that lost the dedup race but escaped revocation
// becomes a silent no-op here. A missing marker does not block execution since the
// marker may have expired naturally while the job stayed queued.
func RunIfCanonical(ctx context.Context, markerRepo storage.ScheduleMarkerRepository, fixtureID string, jobType data.JobType, jobID string, run func(context.Context) error) error {
	marker, err := markerRepo.Get(ctx, fixtureID, jobType)
	switch {
	case err == data.ErrMarkerNotFound:
		log.Warn().Str("fixtureId", fixtureID).Str("jobType", string(jobType)).
			Str("jobId", jobID).Msg("no dedup marker at execution time, proceeding")
	case err != nil:
		return err
	case marker.JobID != jobID:
		log.Info().Str("fixtureId", fixtureID).Str("jobType", string(jobType)).
			Str("jobId", jobID).Str("canonicalJobId", marker.JobID).
			Msg("skipping non-canonical job execution")
		return nil
	}
	return run(ctx)
}
