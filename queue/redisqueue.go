package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/leaguehq/matchops/config"
	"github.com/leaguehq/matchops/storage/data"
)

// jobRecordRetention keeps finished job records queryable well past the marker TTL
const jobRecordRetention = 7 * 24 * time.Hour

// RedisJobQueue is the Redis protocol client of the deferred job queue. Layout under
// the configured namespace:
//
//	{ns}:scheduled:{queue}  ZSET of job ids scored by ETA unix seconds
//	{ns}:pending:{queue}    LIST of job ids due for pickup; LLEN is the queue depth
//	{ns}:job:{id}           HASH name, queue, payload, state, eta, info
//	{ns}:worker:{id}        HASH active, scheduled heartbeat counters per worker
type RedisJobQueue struct {
	client    *redis.Client
	namespace string
}

// NewRedisJobQueue creates a job queue client on the given Redis client
func NewRedisJobQueue(client *redis.Client, queueConfig config.JobQueueConfig) *RedisJobQueue {
	if client == nil || queueConfig == nil {
		panic("redis client or job queue config is nil")
	}
	return &RedisJobQueue{client: client, namespace: queueConfig.GetJobQueueNamespace()}
}

func (jobQueue *RedisJobQueue) scheduledKey(queueName string) string {
	return fmt.Sprintf("%s:scheduled:%s", jobQueue.namespace, queueName)
}

func (jobQueue *RedisJobQueue) pendingKey(queueName string) string {
	return fmt.Sprintf("%s:pending:%s", jobQueue.namespace, queueName)
}

func (jobQueue *RedisJobQueue) jobKey(jobID string) string {
	return fmt.Sprintf("%s:job:%s", jobQueue.namespace, jobID)
}

// Submit enqueues jobName on queueName with the given eta and returns the job id
func (jobQueue *RedisJobQueue) Submit(ctx context.Context, queueName, jobName string, payload []byte, eta time.Time) (string, error) {
	jobID := xid.New().String()
	pipe := jobQueue.client.TxPipeline()
	pipe.HSet(ctx, jobQueue.jobKey(jobID), map[string]interface{}{
		"name":    jobName,
		"queue":   queueName,
		"payload": payload,
		"state":   string(data.JobStatePending),
		"eta":     eta.UTC().Format(time.RFC3339),
	})
	pipe.Expire(ctx, jobQueue.jobKey(jobID), jobRecordRetention)
	pipe.ZAdd(ctx, jobQueue.scheduledKey(queueName), redis.Z{Score: float64(eta.Unix()), Member: jobID})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("%w: %s", ErrQueueUnavailable, err.Error())
	}
	log.Debug().Str("jobId", jobID).Str("queue", queueName).Str("job", jobName).Time("eta", eta).Msg("submitted job")
	return jobID, nil
}

// Status reports the current status of the job with the given id
func (jobQueue *RedisJobQueue) Status(ctx context.Context, jobID string) (*data.JobStatus, error) {
	fields, err := jobQueue.client.HGetAll(ctx, jobQueue.jobKey(jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrQueueUnavailable, err.Error())
	}
	status := &data.JobStatus{ID: jobID}
	if len(fields) == 0 {
		// expired or never submitted; the queue cannot distinguish the two
		status.State = data.JobStateUnknown
		status.Info = "no job record"
		return status, nil
	}
	status.State = data.NormalizeJobState(fields["state"])
	status.Info = fields["info"]
	if rawETA, ok := fields["eta"]; ok && len(rawETA) > 0 {
		eta, parseErr := time.Parse(time.RFC3339, rawETA)
		if parseErr == nil {
			status.ETA = eta
		}
	}
	return status, nil
}

// Revoke cancels the job with the given id before it executes
func (jobQueue *RedisJobQueue) Revoke(ctx context.Context, jobID string) error {
	fields, err := jobQueue.client.HGetAll(ctx, jobQueue.jobKey(jobID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrQueueUnavailable, err.Error())
	}
	if len(fields) == 0 {
		return ErrJobNotFound
	}
	pipe := jobQueue.client.TxPipeline()
	pipe.HSet(ctx, jobQueue.jobKey(jobID), "state", string(data.JobStateRevoked))
	if queueName, ok := fields["queue"]; ok {
		pipe.ZRem(ctx, jobQueue.scheduledKey(queueName), jobID)
		pipe.LRem(ctx, jobQueue.pendingKey(queueName), 0, jobID)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %s", ErrQueueUnavailable, err.Error())
	}
	log.Debug().Str("jobId", jobID).Msg("revoked job")
	return nil
}

// QueueDepths returns the pending item count of each named queue. A queue that cannot
// be read contributes zero so one bad key does not sink the whole sample.
func (jobQueue *RedisJobQueue) QueueDepths(ctx context.Context, queueNames []string) (map[string]int, error) {
	depths := make(map[string]int, len(queueNames))
	for _, queueName := range queueNames {
		depth, err := jobQueue.client.LLen(ctx, jobQueue.pendingKey(queueName)).Result()
		if err != nil {
			if err == redis.Nil {
				depths[queueName] = 0
				continue
			}
			log.Warn().Err(err).Str("queue", queueName).Msg("could not read queue depth")
			depths[queueName] = 0
			continue
		}
		depths[queueName] = int(depth)
	}
	return depths, nil
}

// InspectWorkers aggregates active and scheduled task counts across all worker heartbeats
func (jobQueue *RedisJobQueue) InspectWorkers(ctx context.Context) (*data.WorkerInspection, error) {
	inspection := &data.WorkerInspection{}
	iter := jobQueue.client.Scan(ctx, 0, jobQueue.namespace+":worker:*", 0).Iterator()
	for iter.Next(ctx) {
		fields, err := jobQueue.client.HGetAll(ctx, iter.Val()).Result()
		if err != nil {
			continue
		}
		if active, err := strconv.Atoi(fields["active"]); err == nil {
			inspection.ActiveTasks += active
		}
		if scheduled, err := strconv.Atoi(fields["scheduled"]); err == nil {
			inspection.ScheduledTasks += scheduled
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrQueueUnavailable, err.Error())
	}
	return inspection, nil
}
