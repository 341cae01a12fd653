package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leaguehq/matchops/config"
	"github.com/leaguehq/matchops/queue"
	"github.com/leaguehq/matchops/storage"
	"github.com/leaguehq/matchops/storage/data"
)

const (
	panicString = "parameters null"

	lookbackTolerance = 2 * time.Minute

	singleQueueGrowthLimit = 10
	totalGrowthLimit       = 50

	moderateGrowthLimit     = 10
	moderateGrowthDeduction = 10
	severeGrowthLimit       = 20
	severeGrowthDeduction   = 20
	priorityQueueDeduction  = 20
)

// lookback labels map onto the offsets the pattern rules reason about
var lookbackOffsets = map[string]time.Duration{
	"5min":  5 * time.Minute,
	"15min": 15 * time.Minute,
	"30min": 30 * time.Minute,
}

// QueueHealthMonitor samples job queue depths, retains a short snapshot series and
// detects backlog growth before it becomes an outage
type QueueHealthMonitor interface {
	// Sample reads current queue depths and worker counts and persists the snapshot
	Sample(ctx context.Context) (*data.QueueSnapshot, error)
	// Check runs a full health evaluation; infrastructure failures degrade to a
	// structured failure report instead of an error
	Check(ctx context.Context) *data.HealthReport
	// LatestReport returns the report of the most recent check, nil before the first
	LatestReport() *data.HealthReport
}

// MonitorConfiguration represents the configuration for the queue health monitor
type MonitorConfiguration struct {
	JobQueue     queue.JobQueue
	SnapshotRepo storage.SnapshotRepository
	HealthCfg    config.HealthCheckConfig
	QueueCfg     config.JobQueueConfig
}

// NewMonitorConfiguration creates the configuration for NewQueueHealthMonitor
func NewMonitorConfiguration(jobQueue queue.JobQueue, snapshotRepo storage.SnapshotRepository, healthCfg config.HealthCheckConfig, queueCfg config.JobQueueConfig) *MonitorConfiguration {
	return &MonitorConfiguration{JobQueue: jobQueue, SnapshotRepo: snapshotRepo, HealthCfg: healthCfg, QueueCfg: queueCfg}
}

// QueueHealthMonitorImpl is the implementation of the queue health monitor
type QueueHealthMonitorImpl struct {
	jobQueue        queue.JobQueue
	snapshotRepo    storage.SnapshotRepository
	healthConfig    config.HealthCheckConfig
	queueConfig     config.JobQueueConfig
	metricsExporter *MetricsExporter
	now             func() time.Time

	reportLock   sync.RWMutex
	latestReport *data.HealthReport
}

// NewQueueHealthMonitor creates a new queue health monitor
func NewQueueHealthMonitor(configuration *MonitorConfiguration) QueueHealthMonitor {
	if configuration.JobQueue == nil || configuration.SnapshotRepo == nil ||
		configuration.HealthCfg == nil || configuration.QueueCfg == nil {
		panic(panicString)
	}
	return &QueueHealthMonitorImpl{
		jobQueue:        configuration.JobQueue,
		snapshotRepo:    configuration.SnapshotRepo,
		healthConfig:    configuration.HealthCfg,
		queueConfig:     configuration.QueueCfg,
		metricsExporter: NewMetricsExporter(),
		now:             time.Now,
	}
}

// Sample reads current queue depths plus worker counts and persists the snapshot with
// the configured retention TTL
func (monitor *QueueHealthMonitorImpl) Sample(ctx context.Context) (*data.QueueSnapshot, error) {
	snapshot := data.NewQueueSnapshot(monitor.now())
	depths, err := monitor.jobQueue.QueueDepths(ctx, monitor.queueConfig.GetQueueNames())
	if err != nil {
		return nil, err
	}
	snapshot.QueueDepths = depths
	inspection, err := monitor.jobQueue.InspectWorkers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("worker inspection unavailable, sampling depths only")
	} else {
		snapshot.WorkerActive = inspection.ActiveTasks
		snapshot.WorkerScheduled = inspection.ScheduledTasks
	}
	if err := monitor.snapshotRepo.Store(ctx, snapshot, monitor.healthConfig.GetSnapshotRetention()); err != nil {
		// keep the in-memory snapshot usable for this run even when history is down
		log.Error().Err(err).Msg("could not persist queue snapshot")
	}
	return snapshot, nil
}

// Check samples, resolves historical snapshots, detects patterns and scores the result
func (monitor *QueueHealthMonitorImpl) Check(ctx context.Context) *data.HealthReport {
	current, err := monitor.Sample(ctx)
	if err != nil {
		log.Error().Err(err).Msg("queue health sampling failed")
		report := &data.HealthReport{
			Success: false,
			Message: "queue depth sampling failed: " + err.Error(),
			Score:   0,
			Status:  data.HealthStatusCritical,
			Alerts:  []data.Alert{},
		}
		monitor.storeReport(report)
		return report
	}
	historical := monitor.resolveHistorical(ctx, current.Timestamp)
	alerts := DetectPatterns(current, historical, monitor.healthConfig.GetQueueThresholds(), monitor.healthConfig.GetTotalBacklogLimit())
	score := Score(current, historical, monitor.queueConfig.GetLiveReportingQueue(), monitor.healthConfig.GetQueueThresholds(), monitor.healthConfig.GetTotalBacklogLimit())
	report := &data.HealthReport{
		Success:  true,
		Score:    score,
		Status:   data.HealthStatusForScore(score),
		Alerts:   alerts,
		Snapshot: current,
	}
	for _, alert := range alerts {
		logAlert(alert)
	}
	monitor.metricsExporter.Export(report)
	monitor.storeReport(report)
	return report
}

// LatestReport returns the most recent check result
func (monitor *QueueHealthMonitorImpl) LatestReport() *data.HealthReport {
	monitor.reportLock.RLock()
	defer monitor.reportLock.RUnlock()
	return monitor.latestReport
}

func (monitor *QueueHealthMonitorImpl) storeReport(report *data.HealthReport) {
	monitor.reportLock.Lock()
	defer monitor.reportLock.Unlock()
	monitor.latestReport = report
}

// resolveHistorical finds the nearest stored snapshot for each lookback label,
// skipping labels with no snapshot inside the tolerance window
func (monitor *QueueHealthMonitorImpl) resolveHistorical(ctx context.Context, reference time.Time) map[string]*data.QueueSnapshot {
	historical := make(map[string]*data.QueueSnapshot)
	for label, offset := range lookbackOffsets {
		snapshot, err := monitor.snapshotRepo.Nearest(ctx, reference.Add(-offset), lookbackTolerance)
		if err == storage.ErrSnapshotNotFound {
			continue
		}
		if err != nil {
			log.Warn().Err(err).Str("lookback", label).Msg("historical snapshot unavailable")
			continue
		}
		historical[label] = snapshot
	}
	return historical
}

// DetectPatterns evaluates the clogging rules over the current snapshot and whatever
// historical lookbacks are available. Rules are independent; several alerts may fire
// in one run. It is a pure function of its inputs.
func DetectPatterns(current *data.QueueSnapshot, historical map[string]*data.QueueSnapshot, thresholds map[string]int, totalBacklogLimit int) []data.Alert {
	alerts := []data.Alert{}
	for _, queueName := range sortedQueueNames(current.QueueDepths) {
		depth := current.QueueDepths[queueName]
		threshold, ok := thresholds[queueName]
		if ok && depth > threshold {
			alerts = append(alerts, data.Alert{
				Severity: data.SeverityWarning,
				Queue:    queueName,
				Message:  fmt.Sprintf("queue %s has %d pending tasks (threshold %d)", queueName, depth, threshold),
			})
		}
	}
	if fiveMin, ok := historical["5min"]; ok {
		for _, queueName := range sortedQueueNames(current.QueueDepths) {
			growth := current.QueueDepths[queueName] - fiveMin.QueueDepths[queueName]
			if growth > singleQueueGrowthLimit {
				alerts = append(alerts, data.Alert{
					Severity: data.SeverityCritical,
					Queue:    queueName,
					Message:  fmt.Sprintf("queue %s grew by +%d in the last 5 minutes", queueName, growth),
				})
			}
		}
	}
	if thirtyMin, ok := historical["30min"]; ok {
		totalGrowth := current.TotalDepth() - thirtyMin.TotalDepth()
		if totalGrowth > totalGrowthLimit {
			alerts = append(alerts, data.Alert{
				Severity: data.SeverityCritical,
				Message:  fmt.Sprintf("total backlog grew by +%d over the last 30 minutes", totalGrowth),
			})
		}
	}
	if total := current.TotalDepth(); total > totalBacklogLimit {
		alerts = append(alerts, data.Alert{
			Severity: data.SeverityCritical,
			Message:  fmt.Sprintf("total backlog is %d pending tasks (limit %d)", total, totalBacklogLimit),
		})
	}
	return alerts
}

// Score computes the 0-100 health score. Absolute size deductions use the single
// largest applicable band; growth deductions use the total backlog growth over the
// last 5 minutes. The result never increases when any depth increases. It is a pure
// function of its inputs.
func Score(current *data.QueueSnapshot, historical map[string]*data.QueueSnapshot, priorityQueue string, thresholds map[string]int, totalBacklogLimit int) int {
	score := 100
	total := current.TotalDepth()
	switch {
	case total > totalBacklogLimit:
		score -= 50
	case total > 100:
		score -= 30
	case total > 50:
		score -= 15
	}
	if threshold, ok := thresholds[priorityQueue]; ok && current.QueueDepths[priorityQueue] > threshold {
		score -= priorityQueueDeduction
	}
	if fiveMin, ok := historical["5min"]; ok {
		growth := total - fiveMin.TotalDepth()
		if growth > severeGrowthLimit {
			score -= severeGrowthDeduction
		} else if growth > moderateGrowthLimit {
			score -= moderateGrowthDeduction
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

func sortedQueueNames(depths map[string]int) []string {
	names := make([]string, 0, len(depths))
	for name := range depths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func logAlert(alert data.Alert) {
	event := log.Info()
	switch alert.Severity {
	case data.SeverityWarning:
		event = log.Warn()
	case data.SeverityCritical:
		event = log.Error()
	}
	event.Str("severity", string(alert.Severity)).Str("queue", alert.Queue).Msg(alert.Message)
}
