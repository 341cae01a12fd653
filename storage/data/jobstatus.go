package data

import (
	"strings"
	"time"
)

// JobState is the normalized execution state of a deferred job
type JobState string

const (
	// JobStatePending indicates the job is waiting for its ETA
	JobStatePending JobState = "PENDING"
	// JobStateStarted indicates a worker has picked the job up
	JobStateStarted JobState = "STARTED"
	// JobStateSuccess indicates the job completed
	JobStateSuccess JobState = "SUCCESS"
	// JobStateFailure indicates the job terminally failed
	JobStateFailure JobState = "FAILURE"
	// JobStateRetry indicates the job failed and is awaiting another attempt
	JobStateRetry JobState = "RETRY"
	// JobStateRevoked indicates the job was cancelled before execution
	JobStateRevoked JobState = "REVOKED"
	// JobStateUnknown indicates the queue reported a state this version does not recognize
	JobStateUnknown JobState = "UNKNOWN"
	// JobStateError indicates the queue itself could not be reached
	JobStateError JobState = "ERROR"
)

// NormalizeJobState maps a raw queue status string onto the closed JobState set
func NormalizeJobState(raw string) JobState {
	state := JobState(strings.ToUpper(strings.TrimSpace(raw)))
	switch state {
	case JobStatePending, JobStateStarted, JobStateSuccess, JobStateFailure, JobStateRetry, JobStateRevoked:
		return state
	}
	return JobStateUnknown
}

// JobStatus is a job queue status response for a single job id
type JobStatus struct {
	ID    string    `json:"id"`
	State JobState  `json:"state"`
	Info  string    `json:"info,omitempty"`
	ETA   time.Time `json:"eta,omitempty"`
	Error string    `json:"error,omitempty"`
}

// WorkerInspection is an aggregate of task counts across all queue workers
type WorkerInspection struct {
	ActiveTasks    int `json:"active_tasks"`
	ScheduledTasks int `json:"scheduled_tasks"`
}
