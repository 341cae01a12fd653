package queue

import (
	"context"
	"errors"
	"time"

	"github.com/leaguehq/matchops/storage/data"
)

var (
	// ErrQueueUnavailable is returned when the job queue backend cannot be reached
	ErrQueueUnavailable = errors.New("job queue unavailable")
	// ErrJobNotFound is returned when no job exists for the given id
	ErrJobNotFound = errors.New("job not found")
)

// JobQueue is the deferred execution system this service submits work to and queries.
// Jobs are executed by a separate worker fleet; nothing here dequeues.
type JobQueue interface {
	// Submit enqueues jobName on queueName with payload, eligible to run no earlier
	// than eta, and returns the job id
	Submit(ctx context.Context, queueName, jobName string, payload []byte, eta time.Time) (string, error)
	// Status reports the current status of the job with the given id
	Status(ctx context.Context, jobID string) (*data.JobStatus, error)
	// Revoke cancels the job with the given id before it executes
	Revoke(ctx context.Context, jobID string) error
	// QueueDepths returns the pending item count of each named queue
	QueueDepths(ctx context.Context, queueNames []string) (map[string]int, error)
	// InspectWorkers aggregates active and scheduled task counts across all workers
	InspectWorkers(ctx context.Context) (*data.WorkerInspection, error)
}
