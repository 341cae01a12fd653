package inspector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leaguehq/matchops/queue"
	"github.com/leaguehq/matchops/storage"
	"github.com/leaguehq/matchops/storage/data"
)

const (
	panicString = "parameters null"

	etaTimeLayout = "2006-01-02 15:04:05 MST"
)

// TaskReport pairs a job status with its human readable summary
type TaskReport struct {
	JobType data.JobType    `json:"job_type"`
	Status  *data.JobStatus `json:"status"`
	Summary string          `json:"summary"`
	// MarkerTTL is the remaining life of the dedup marker backing the task, zero when
	// the report did not come from a marker lookup
	MarkerTTL time.Duration `json:"marker_ttl,omitempty"`
}

// FixtureReport aggregates the task reports of one fixture
type FixtureReport struct {
	FixtureID string                       `json:"fixture_id"`
	Tasks     map[data.JobType]*TaskReport `json:"tasks"`
}

// TaskStatusInspector resolves job statuses and renders operator facing summaries.
// Its read operations never fail outright; infrastructure errors surface as an ERROR
// state inside the returned status.
type TaskStatusInspector interface {
	// Status returns the normalized state of a single job id
	Status(ctx context.Context, jobID string) *data.JobStatus
	// Verify reports all scheduled tasks of a fixture via their dedup markers
	Verify(ctx context.Context, fixtureID string) (*FixtureReport, error)
	// MonitorAll reports every fixture that has a live dedup marker
	MonitorAll(ctx context.Context) ([]*FixtureReport, error)
}

// TaskStatusInspectorImpl is the implementation of the task status inspector
type TaskStatusInspectorImpl struct {
	markerRepo storage.ScheduleMarkerRepository
	jobQueue   queue.JobQueue
}

// NewTaskStatusInspector creates a new task status inspector
func NewTaskStatusInspector(markerRepo storage.ScheduleMarkerRepository, jobQueue queue.JobQueue) TaskStatusInspector {
	if markerRepo == nil || jobQueue == nil {
		panic(panicString)
	}
	return &TaskStatusInspectorImpl{markerRepo: markerRepo, jobQueue: jobQueue}
}

// Status resolves the state of jobID. Queue errors are absorbed into an ERROR state so
// an unreachable queue never breaks a status page.
func (inspector *TaskStatusInspectorImpl) Status(ctx context.Context, jobID string) *data.JobStatus {
	status, err := inspector.jobQueue.Status(ctx, jobID)
	if err != nil {
		log.Error().Err(err).Str("jobId", jobID).Msg("could not read job status")
		return &data.JobStatus{ID: jobID, State: data.JobStateError, Error: err.Error()}
	}
	return status
}

// Verify looks up the fixture's dedup markers and resolves each backing job's status
func (inspector *TaskStatusInspectorImpl) Verify(ctx context.Context, fixtureID string) (*FixtureReport, error) {
	report := &FixtureReport{FixtureID: fixtureID, Tasks: make(map[data.JobType]*TaskReport)}
	for _, jobType := range data.ScheduledJobTypes {
		marker, err := inspector.markerRepo.Get(ctx, fixtureID, jobType)
		if err == data.ErrMarkerNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		status := inspector.Status(ctx, marker.JobID)
		if status.ETA.IsZero() {
			status.ETA = marker.ETA
		}
		report.Tasks[jobType] = &TaskReport{
			JobType:   jobType,
			Status:    status,
			Summary:   Summarize(jobType, status),
			MarkerTTL: marker.TTLRemaining,
		}
	}
	return report, nil
}

// MonitorAll builds a fixture report for every live dedup marker
func (inspector *TaskStatusInspectorImpl) MonitorAll(ctx context.Context) ([]*FixtureReport, error) {
	fixtureIDs, err := inspector.markerRepo.AllFixtureIDs(ctx)
	if err != nil {
		return nil, err
	}
	reports := make([]*FixtureReport, 0, len(fixtureIDs))
	for _, fixtureID := range fixtureIDs {
		report, err := inspector.Verify(ctx, fixtureID)
		if err != nil {
			log.Error().Err(err).Str("fixtureId", fixtureID).Msg("could not verify fixture tasks")
			continue
		}
		if len(report.Tasks) > 0 {
			reports = append(reports, report)
		}
	}
	return reports, nil
}

// Summarize renders a one line operator summary for a job status. It is a pure
// function of its inputs.
func Summarize(jobType data.JobType, status *data.JobStatus) string {
	name := jobType.DisplayName()
	switch status.State {
	case data.JobStatePending:
		if !status.ETA.IsZero() {
			return fmt.Sprintf("%s: Scheduled and waiting to execute (scheduled for %s)", name, status.ETA.UTC().Format(etaTimeLayout))
		}
		return fmt.Sprintf("%s: Scheduled and waiting to execute", name)
	case data.JobStateStarted:
		return fmt.Sprintf("%s: Currently executing", name)
	case data.JobStateSuccess:
		return fmt.Sprintf("%s: Completed successfully", name)
	case data.JobStateFailure:
		if len(status.Error) > 0 {
			return fmt.Sprintf("%s: Failed (%s)", name, status.Error)
		}
		return fmt.Sprintf("%s: Failed", name)
	case data.JobStateRetry:
		return fmt.Sprintf("%s: Failed and awaiting retry", name)
	case data.JobStateRevoked:
		return fmt.Sprintf("%s: Cancelled before execution", name)
	case data.JobStateError:
		return fmt.Sprintf("%s: Status unavailable, job queue unreachable", name)
	}
	return fmt.Sprintf("%s: State unrecognized by this version", name)
}
