package queue

import (
	"github.com/google/wire"
)

var (
	// QueueInjector sets up the job queue client
	QueueInjector = wire.NewSet(NewRedisJobQueue, wire.Bind(new(JobQueue), new(*RedisJobQueue)))
)
