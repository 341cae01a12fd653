package config

import (
	"time"
)

const (
	// DefaultSnapshotRetentionHours is how long queue snapshots are retained
	DefaultSnapshotRetentionHours = 24
	// DefaultTotalBacklogLimit is the total pending count considered an outage on its own
	DefaultTotalBacklogLimit = 200
)

// defaultQueueThreshold returns the per queue absolute alert threshold when none is configured
func defaultQueueThreshold(queueName string) int {
	switch queueName {
	case "live_reporting":
		return 20
	case "default":
		return 100
	}
	return 50
}

// HealthCheckConfig represents configuration of the queue health monitor
type HealthCheckConfig interface {
	// GetHealthCheckCronSpec returns the cron spec driving periodic checks
	GetHealthCheckCronSpec() string
	// GetSnapshotRetention returns the snapshot retention window
	GetSnapshotRetention() time.Duration
	// GetQueueThresholds returns per queue absolute depth alert thresholds
	GetQueueThresholds() map[string]int
	// GetTotalBacklogLimit returns the total depth considered critical regardless of trend
	GetTotalBacklogLimit() int
}

// ArchiveConfig represents configuration of the snapshot blob archive
type ArchiveConfig interface {
	// GetArchiveURL returns the blob bucket URL; empty disables archiving
	GetArchiveURL() string
	// GetArchiveObjectPrefix returns the object name prefix within the bucket
	GetArchiveObjectPrefix() string
	// GetArchiveMaxSize returns the size at which archive objects rotate
	GetArchiveMaxSize() int64
	// GetExportMinAge returns how old a snapshot must be before it is exported
	GetExportMinAge() time.Duration
}

// GetHealthCheckCronSpec returns the cron spec driving periodic checks
func (config *Config) GetHealthCheckCronSpec() string {
	if len(config.healthCheckCronSpec) < 1 {
		return "@every 1m"
	}
	return config.healthCheckCronSpec
}

// GetSnapshotRetention returns the snapshot retention window
func (config *Config) GetSnapshotRetention() time.Duration {
	if config.snapshotRetention == 0 {
		return DefaultSnapshotRetentionHours * time.Hour
	}
	return config.snapshotRetention
}

// GetQueueThresholds returns per queue absolute depth alert thresholds
func (config *Config) GetQueueThresholds() map[string]int {
	if len(config.queueThresholds) > 0 {
		return config.queueThresholds
	}
	thresholds := make(map[string]int)
	for _, queueName := range config.GetQueueNames() {
		thresholds[queueName] = defaultQueueThreshold(queueName)
	}
	return thresholds
}

// GetTotalBacklogLimit returns the total depth considered critical regardless of trend
func (config *Config) GetTotalBacklogLimit() int {
	if config.totalBacklogLimit == 0 {
		return DefaultTotalBacklogLimit
	}
	return config.totalBacklogLimit
}

// GetArchiveURL returns the blob bucket URL; empty disables archiving
func (config *Config) GetArchiveURL() string {
	return config.archiveURL
}

// GetArchiveObjectPrefix returns the object name prefix within the bucket
func (config *Config) GetArchiveObjectPrefix() string {
	if len(config.archiveObjectPrefix) < 1 {
		return "queue-health"
	}
	return config.archiveObjectPrefix
}

// GetArchiveMaxSize returns the size at which archive objects rotate
func (config *Config) GetArchiveMaxSize() int64 {
	if config.archiveMaxSize == 0 {
		return 10 * 1024 * 1024
	}
	return config.archiveMaxSize
}

// GetExportMinAge returns how old a snapshot must be before it is exported
func (config *Config) GetExportMinAge() time.Duration {
	if config.exportMinAge == 0 {
		return 12 * time.Hour
	}
	return config.exportMinAge
}
