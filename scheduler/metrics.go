package scheduler

import (
	"sync/atomic"
)

// MetricsContainer encapsulates scheduler-related metrics
type MetricsContainer struct {
	// ScheduledTasks is the number of tasks submitted with a fresh dedup marker
	ScheduledTasks uint64
	// DuplicateRequests is the number of schedule requests suppressed by an existing marker
	DuplicateRequests uint64
	// SchedulingErrors is the number of errors encountered during scheduling
	SchedulingErrors uint64
	// RevokedTasks is the number of scheduled tasks revoked
	RevokedTasks uint64
}

// NewMetricsContainer creates a new metrics container
func NewMetricsContainer() *MetricsContainer {
	return &MetricsContainer{}
}

// IncreaseScheduledTaskCount increases the scheduled task count
func (m *MetricsContainer) IncreaseScheduledTaskCount() uint64 {
	return atomic.AddUint64(&m.ScheduledTasks, 1)
}

// IncreaseDuplicateRequestCount increases the suppressed duplicate request count
func (m *MetricsContainer) IncreaseDuplicateRequestCount() uint64 {
	return atomic.AddUint64(&m.DuplicateRequests, 1)
}

// IncreaseSchedulingErrorCount increases the scheduling error count
func (m *MetricsContainer) IncreaseSchedulingErrorCount() uint64 {
	return atomic.AddUint64(&m.SchedulingErrors, 1)
}

// IncreaseRevokedTaskCount increases the revoked task count
func (m *MetricsContainer) IncreaseRevokedTaskCount() uint64 {
	return atomic.AddUint64(&m.RevokedTasks, 1)
}

// GetScheduledTaskCount returns the current scheduled task count
func (m *MetricsContainer) GetScheduledTaskCount() uint64 {
	return atomic.LoadUint64(&m.ScheduledTasks)
}

// GetDuplicateRequestCount returns the current duplicate request count
func (m *MetricsContainer) GetDuplicateRequestCount() uint64 {
	return atomic.LoadUint64(&m.DuplicateRequests)
}
