package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leaguehq/matchops/config"
	"github.com/leaguehq/matchops/queue"
	"github.com/leaguehq/matchops/storage"
	"github.com/leaguehq/matchops/storage/data"
)

const (
	panicString = "parameters null"
)

// TaskOutcome reports the scheduling outcome of one job type
type TaskOutcome struct {
	Scheduled bool      `json:"scheduled"`
	JobID     string    `json:"job_id,omitempty"`
	ETA       time.Time `json:"eta,omitempty"`
	Immediate bool      `json:"immediate,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ScheduleResult reports the outcome of scheduling all job types for a fixture.
// Per task outcomes carry their own errors so one failed submission does not mask
// the other succeeding.
type ScheduleResult struct {
	Success        bool                          `json:"success"`
	Message        string                        `json:"message,omitempty"`
	TasksScheduled []data.JobType                `json:"tasks_scheduled"`
	ThreadTime     time.Time                     `json:"thread_time"`
	ReportingTime  time.Time                     `json:"reporting_time"`
	Tasks          map[data.JobType]*TaskOutcome `json:"tasks"`
}

// UnscheduleResult reports the outcome of revoking a fixture's scheduled jobs
type UnscheduleResult struct {
	Success        bool     `json:"success"`
	FixtureID      string   `json:"fixture_id"`
	RevokedJobs    int      `json:"revoked_jobs"`
	ClearedMarkers int      `json:"cleared_markers"`
	Details        []string `json:"details,omitempty"`
}

// FixtureScheduler schedules the deferred jobs of a fixture exactly once per job type,
// surviving process restarts and concurrent invocations
type FixtureScheduler interface {
	// Schedule submits the thread creation and live reporting jobs for the fixture
	// starting at eventTime; re-invocation is an idempotent no-op unless force is set
	Schedule(ctx context.Context, fixtureID string, eventTime time.Time, force bool) *ScheduleResult
	// Unschedule revokes any scheduled jobs of the fixture and clears their markers
	Unschedule(ctx context.Context, fixtureID string) *UnscheduleResult
}

// SchedulerConfiguration represents the configuration for the fixture scheduler
type SchedulerConfiguration struct {
	MarkerRepo    storage.ScheduleMarkerRepository
	JobQueue      queue.JobQueue
	SchedulingCfg config.SchedulingConfig
	QueueCfg      config.JobQueueConfig
}

// NewSchedulerConfiguration creates the configuration for NewFixtureScheduler
func NewSchedulerConfiguration(markerRepo storage.ScheduleMarkerRepository, jobQueue queue.JobQueue, schedulingCfg config.SchedulingConfig, queueCfg config.JobQueueConfig) *SchedulerConfiguration {
	return &SchedulerConfiguration{
		MarkerRepo:    markerRepo,
		JobQueue:      jobQueue,
		SchedulingCfg: schedulingCfg,
		QueueCfg:      queueCfg,
	}
}

// FixtureSchedulerImpl is the implementation of the fixture scheduler
type FixtureSchedulerImpl struct {
	markerRepo       storage.ScheduleMarkerRepository
	jobQueue         queue.JobQueue
	schedulingConfig config.SchedulingConfig
	queueConfig      config.JobQueueConfig
	metricsCollector *MetricsContainer
	now              func() time.Time
}

// NewFixtureScheduler creates a new fixture scheduler service
func NewFixtureScheduler(configuration *SchedulerConfiguration) FixtureScheduler {
	if configuration.MarkerRepo == nil || configuration.JobQueue == nil ||
		configuration.SchedulingCfg == nil || configuration.QueueCfg == nil {
		panic(panicString)
	}
	return &FixtureSchedulerImpl{
		markerRepo:       configuration.MarkerRepo,
		jobQueue:         configuration.JobQueue,
		schedulingConfig: configuration.SchedulingCfg,
		queueConfig:      configuration.QueueCfg,
		metricsCollector: NewMetricsContainer(),
		now:              time.Now,
	}
}

// Schedule submits the fixture's jobs with computed trigger times. A failure on one
// job type does not prevent attempting the other; the result reports each separately.
func (scheduler *FixtureSchedulerImpl) Schedule(ctx context.Context, fixtureID string, eventTime time.Time, force bool) *ScheduleResult {
	threadTime := eventTime.Add(-scheduler.schedulingConfig.GetThreadCreateLead())
	reportingTime := eventTime.Add(-scheduler.schedulingConfig.GetReportingLead())
	log.Info().Str("fixtureId", fixtureID).Time("eventTime", eventTime).
		Time("threadTime", threadTime).Time("reportingTime", reportingTime).Msg("scheduling fixture tasks")

	result := &ScheduleResult{
		Success:        true,
		Message:        "fixture tasks processed",
		TasksScheduled: []data.JobType{},
		ThreadTime:     threadTime,
		ReportingTime:  reportingTime,
		Tasks:          make(map[data.JobType]*TaskOutcome),
	}
	triggerTimes := map[data.JobType]time.Time{
		data.JobTypeThreadCreation:     threadTime,
		data.JobTypeLiveReportingStart: reportingTime,
	}
	for _, jobType := range data.ScheduledJobTypes {
		outcome := scheduler.scheduleTask(ctx, fixtureID, jobType, triggerTimes[jobType], force)
		result.Tasks[jobType] = outcome
		if outcome.Scheduled {
			result.TasksScheduled = append(result.TasksScheduled, jobType)
		}
	}
	return result
}

// scheduleTask submits one job type for the fixture, guarded by an atomic
// set-if-absent dedup marker. Losing the marker race means a concurrent submission
// won; the locally submitted job is revoked and the execution time canonical id
// check makes it a no-op even if the revoke fails.
func (scheduler *FixtureSchedulerImpl) scheduleTask(ctx context.Context, fixtureID string, jobType data.JobType, triggerTime time.Time, force bool) *TaskOutcome {
	if force {
		scheduler.revokeExisting(ctx, fixtureID, jobType)
	}
	existing, err := scheduler.markerRepo.Get(ctx, fixtureID, jobType)
	if err == nil {
		log.Info().Str("fixtureId", fixtureID).Str("jobType", string(jobType)).
			Str("jobId", existing.JobID).Msg("found existing scheduled task")
		scheduler.metricsCollector.IncreaseDuplicateRequestCount()
		return &TaskOutcome{Scheduled: false, JobID: existing.JobID, ETA: existing.ETA}
	}
	if err != data.ErrMarkerNotFound {
		scheduler.metricsCollector.IncreaseSchedulingErrorCount()
		return &TaskOutcome{Scheduled: false, Error: err.Error()}
	}

	eta := triggerTime
	immediate := !triggerTime.After(scheduler.now())
	if immediate {
		log.Info().Str("fixtureId", fixtureID).Str("jobType", string(jobType)).
			Time("triggerTime", triggerTime).Msg("trigger time past due, submitting for immediate execution")
		eta = scheduler.now()
	}
	jobID, err := scheduler.jobQueue.Submit(ctx, scheduler.queueForJobType(jobType), string(jobType), []byte(fixtureID), eta)
	if err != nil {
		log.Error().Err(err).Str("fixtureId", fixtureID).Str("jobType", string(jobType)).Msg("failed to submit job")
		scheduler.metricsCollector.IncreaseSchedulingErrorCount()
		return &TaskOutcome{Scheduled: false, Error: err.Error()}
	}
	marker, err := data.NewScheduleMarker(fixtureID, jobType, jobID, triggerTime)
	if err != nil {
		scheduler.metricsCollector.IncreaseSchedulingErrorCount()
		return &TaskOutcome{Scheduled: false, Error: err.Error()}
	}
	won, err := scheduler.markerRepo.SaveIfAbsent(ctx, marker, scheduler.schedulingConfig.GetMarkerTTL())
	if err != nil {
		// job submitted but unmarked; the execution time canonical check keeps a
		// later retry of this request from double running
		log.Error().Err(err).Str("fixtureId", fixtureID).Str("jobType", string(jobType)).Msg("failed to write dedup marker")
		scheduler.metricsCollector.IncreaseSchedulingErrorCount()
		return &TaskOutcome{Scheduled: false, JobID: jobID, Error: err.Error()}
	}
	if !won {
		log.Info().Str("fixtureId", fixtureID).Str("jobType", string(jobType)).
			Str("jobId", jobID).Msg("lost dedup race, revoking duplicate job")
		if revokeErr := scheduler.jobQueue.Revoke(ctx, jobID); revokeErr != nil {
			log.Warn().Err(revokeErr).Str("jobId", jobID).Msg("could not revoke duplicate job")
		}
		scheduler.metricsCollector.IncreaseDuplicateRequestCount()
		winner, getErr := scheduler.markerRepo.Get(ctx, fixtureID, jobType)
		if getErr == nil {
			return &TaskOutcome{Scheduled: false, JobID: winner.JobID, ETA: winner.ETA}
		}
		return &TaskOutcome{Scheduled: false}
	}
	scheduler.metricsCollector.IncreaseScheduledTaskCount()
	return &TaskOutcome{Scheduled: true, JobID: jobID, ETA: eta, Immediate: immediate}
}

// Unschedule revokes all scheduled jobs of the fixture and clears their markers
func (scheduler *FixtureSchedulerImpl) Unschedule(ctx context.Context, fixtureID string) *UnscheduleResult {
	result := &UnscheduleResult{Success: true, FixtureID: fixtureID}
	jobTypes := []data.JobType{data.JobTypeThreadCreation, data.JobTypeLiveReportingStart, data.JobTypeLiveReportingStop}
	for _, jobType := range jobTypes {
		marker, err := scheduler.markerRepo.Get(ctx, fixtureID, jobType)
		if err == data.ErrMarkerNotFound {
			continue
		}
		if err != nil {
			result.Success = false
			result.Details = append(result.Details, "error reading marker for "+string(jobType)+": "+err.Error())
			continue
		}
		if revokeErr := scheduler.jobQueue.Revoke(ctx, marker.JobID); revokeErr == nil {
			result.RevokedJobs++
			result.Details = append(result.Details, "revoked "+string(jobType)+" job "+marker.JobID)
			scheduler.metricsCollector.IncreaseRevokedTaskCount()
		} else {
			result.Details = append(result.Details, "error revoking "+string(jobType)+" job "+marker.JobID+": "+revokeErr.Error())
		}
		if clearErr := scheduler.markerRepo.Clear(ctx, fixtureID, jobType); clearErr == nil {
			result.ClearedMarkers++
		} else {
			result.Success = false
			result.Details = append(result.Details, "error clearing marker for "+string(jobType)+": "+clearErr.Error())
		}
	}
	log.Info().Str("fixtureId", fixtureID).Int("revokedJobs", result.RevokedJobs).
		Int("clearedMarkers", result.ClearedMarkers).Msg("unscheduled fixture tasks")
	return result
}

func (scheduler *FixtureSchedulerImpl) revokeExisting(ctx context.Context, fixtureID string, jobType data.JobType) {
	marker, err := scheduler.markerRepo.Get(ctx, fixtureID, jobType)
	if err != nil {
		return
	}
	if revokeErr := scheduler.jobQueue.Revoke(ctx, marker.JobID); revokeErr != nil {
		log.Error().Err(revokeErr).Str("jobId", marker.JobID).Msg("error revoking existing task")
	} else {
		scheduler.metricsCollector.IncreaseRevokedTaskCount()
	}
	if clearErr := scheduler.markerRepo.Clear(ctx, fixtureID, jobType); clearErr != nil {
		log.Error().Err(clearErr).Str("fixtureId", fixtureID).Str("jobType", string(jobType)).Msg("error clearing marker")
	}
}

func (scheduler *FixtureSchedulerImpl) queueForJobType(jobType data.JobType) string {
	switch jobType {
	case data.JobTypeLiveReportingStart, data.JobTypeLiveReportingStop:
		return scheduler.queueConfig.GetLiveReportingQueue()
	}
	return scheduler.queueConfig.GetDefaultQueue()
}
