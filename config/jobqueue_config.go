package config

// JobQueueConfig represents configuration of the deferred job queue client
type JobQueueConfig interface {
	// GetJobQueueNamespace returns the key namespace the queue lives under
	GetJobQueueNamespace() string
	// GetQueueNames returns the closed set of named queues
	GetQueueNames() []string
	// GetDefaultQueue returns the queue used for jobs without a dedicated queue
	GetDefaultQueue() string
	// GetLiveReportingQueue returns the high priority queue for live reporting jobs
	GetLiveReportingQueue() string
}

// GetJobQueueNamespace returns the key namespace the queue lives under
func (config *Config) GetJobQueueNamespace() string {
	if len(config.jobQueueNamespace) < 1 {
		return "jobq"
	}
	return config.jobQueueNamespace
}

// GetQueueNames returns the closed set of named queues
func (config *Config) GetQueueNames() []string {
	if len(config.queueNames) < 1 {
		return []string{"live_reporting", "default", "notification", "sync"}
	}
	return config.queueNames
}

// GetDefaultQueue returns the queue used for jobs without a dedicated queue
func (config *Config) GetDefaultQueue() string {
	if len(config.defaultQueue) < 1 {
		return "default"
	}
	return config.defaultQueue
}

// GetLiveReportingQueue returns the high priority queue for live reporting jobs
func (config *Config) GetLiveReportingQueue() string {
	if len(config.liveReportingQueue) < 1 {
		return "live_reporting"
	}
	return config.liveReportingQueue
}
