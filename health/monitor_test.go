package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/leaguehq/matchops/queue"
	"github.com/leaguehq/matchops/storage"
	"github.com/leaguehq/matchops/storage/data"
)

type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Submit(ctx context.Context, queueName, jobName string, payload []byte, eta time.Time) (string, error) {
	args := m.Called(ctx, queueName, jobName, payload, eta)
	return args.String(0), args.Error(1)
}

func (m *MockJobQueue) Status(ctx context.Context, jobID string) (*data.JobStatus, error) {
	args := m.Called(ctx, jobID)
	status, _ := args.Get(0).(*data.JobStatus)
	return status, args.Error(1)
}

func (m *MockJobQueue) Revoke(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *MockJobQueue) QueueDepths(ctx context.Context, queueNames []string) (map[string]int, error) {
	args := m.Called(ctx, queueNames)
	depths, _ := args.Get(0).(map[string]int)
	return depths, args.Error(1)
}

func (m *MockJobQueue) InspectWorkers(ctx context.Context) (*data.WorkerInspection, error) {
	args := m.Called(ctx)
	inspection, _ := args.Get(0).(*data.WorkerInspection)
	return inspection, args.Error(1)
}

type mockHealthConfig struct{}

func (m *mockHealthConfig) GetHealthCheckCronSpec() string {
	return "@every 5m"
}

func (m *mockHealthConfig) GetSnapshotRetention() time.Duration {
	return time.Hour
}

func (m *mockHealthConfig) GetQueueThresholds() map[string]int {
	return map[string]int{
		"live_reporting": 20,
		"default":        100,
		"notification":   50,
		"sync":           50,
	}
}

func (m *mockHealthConfig) GetTotalBacklogLimit() int {
	return 200
}

type mockQueueMonitorConfig struct{}

func (m *mockQueueMonitorConfig) GetJobQueueNamespace() string {
	return "jobq"
}

func (m *mockQueueMonitorConfig) GetQueueNames() []string {
	return []string{"default", "live_reporting", "notification", "sync"}
}

func (m *mockQueueMonitorConfig) GetDefaultQueue() string {
	return "default"
}

func (m *mockQueueMonitorConfig) GetLiveReportingQueue() string {
	return "live_reporting"
}

func snapshotAt(timestamp time.Time, depths map[string]int) *data.QueueSnapshot {
	snapshot := data.NewQueueSnapshot(timestamp)
	for queueName, depth := range depths {
		snapshot.QueueDepths[queueName] = depth
	}
	return snapshot
}

func newTestMonitor(jobQueue queue.JobQueue) (*QueueHealthMonitorImpl, storage.SnapshotRepository) {
	snapshotRepo := storage.NewSnapshotRepository(storage.NewMemKeyValueStore())
	monitor := NewQueueHealthMonitor(NewMonitorConfiguration(jobQueue, snapshotRepo, &mockHealthConfig{}, &mockQueueMonitorConfig{}))
	return monitor.(*QueueHealthMonitorImpl), snapshotRepo
}

func TestNewQueueHealthMonitor(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		monitor, _ := newTestMonitor(new(MockJobQueue))
		assert.NotNil(t, monitor)
		assert.Nil(t, monitor.LatestReport())
	})
	t.Run("nil parameters", func(t *testing.T) {
		assert.Panics(t, func() {
			NewQueueHealthMonitor(NewMonitorConfiguration(nil, nil, nil, nil))
		})
	})
}

func TestSample(t *testing.T) {
	t.Run("persists depths and worker counts", func(t *testing.T) {
		// Arrange
		jobQueue := new(MockJobQueue)
		jobQueue.On("QueueDepths", mock.Anything, mock.Anything).Return(map[string]int{"default": 3, "live_reporting": 1}, nil)
		jobQueue.On("InspectWorkers", mock.Anything).Return(&data.WorkerInspection{ActiveTasks: 2, ScheduledTasks: 5}, nil)
		monitor, snapshotRepo := newTestMonitor(jobQueue)
		sampleTime := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
		monitor.now = func() time.Time { return sampleTime }

		// Act
		snapshot, err := monitor.Sample(context.Background())

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 4, snapshot.TotalDepth())
		assert.Equal(t, 2, snapshot.WorkerActive)
		assert.Equal(t, 5, snapshot.WorkerScheduled)
		stored, err := snapshotRepo.Nearest(context.Background(), sampleTime, time.Minute)
		assert.NoError(t, err)
		assert.Equal(t, snapshot.QueueDepths, stored.QueueDepths)
	})
	t.Run("worker inspection failure degrades to depths only", func(t *testing.T) {
		jobQueue := new(MockJobQueue)
		jobQueue.On("QueueDepths", mock.Anything, mock.Anything).Return(map[string]int{"default": 3}, nil)
		jobQueue.On("InspectWorkers", mock.Anything).Return(nil, errors.New("inspect timed out"))
		monitor, _ := newTestMonitor(jobQueue)

		snapshot, err := monitor.Sample(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 3, snapshot.TotalDepth())
		assert.Equal(t, 0, snapshot.WorkerActive)
	})
	t.Run("depth failure is an error", func(t *testing.T) {
		jobQueue := new(MockJobQueue)
		jobQueue.On("QueueDepths", mock.Anything, mock.Anything).Return(nil, queue.ErrQueueUnavailable)
		monitor, _ := newTestMonitor(jobQueue)

		snapshot, err := monitor.Sample(context.Background())

		assert.Nil(t, snapshot)
		assert.Equal(t, queue.ErrQueueUnavailable, err)
	})
}

func TestDetectPatterns(t *testing.T) {
	thresholds := (&mockHealthConfig{}).GetQueueThresholds()
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("all clear", func(t *testing.T) {
		current := snapshotAt(now, map[string]int{"default": 5, "live_reporting": 2})
		alerts := DetectPatterns(current, nil, thresholds, 200)
		assert.Empty(t, alerts)
	})
	t.Run("threshold breach warns", func(t *testing.T) {
		current := snapshotAt(now, map[string]int{"live_reporting": 25})
		alerts := DetectPatterns(current, nil, thresholds, 200)
		assert.Len(t, alerts, 1)
		assert.Equal(t, data.SeverityWarning, alerts[0].Severity)
		assert.Equal(t, "live_reporting", alerts[0].Queue)
		assert.Contains(t, alerts[0].Message, "25 pending tasks")
	})
	t.Run("rapid single queue growth is critical", func(t *testing.T) {
		current := snapshotAt(now, map[string]int{"live_reporting": 20})
		historical := map[string]*data.QueueSnapshot{
			"5min": snapshotAt(now.Add(-5*time.Minute), map[string]int{"live_reporting": 5}),
		}
		alerts := DetectPatterns(current, historical, thresholds, 200)
		assert.Len(t, alerts, 1)
		assert.Equal(t, data.SeverityCritical, alerts[0].Severity)
		assert.Equal(t, "live_reporting", alerts[0].Queue)
		assert.Contains(t, alerts[0].Message, "+15")
	})
	t.Run("sustained total growth is critical", func(t *testing.T) {
		current := snapshotAt(now, map[string]int{"default": 40, "sync": 40})
		historical := map[string]*data.QueueSnapshot{
			"30min": snapshotAt(now.Add(-30*time.Minute), map[string]int{"default": 10, "sync": 10}),
		}
		alerts := DetectPatterns(current, historical, thresholds, 200)
		assert.Len(t, alerts, 1)
		assert.Equal(t, data.SeverityCritical, alerts[0].Severity)
		assert.Empty(t, alerts[0].Queue)
		assert.Contains(t, alerts[0].Message, "+60")
	})
	t.Run("total backlog over limit is critical", func(t *testing.T) {
		current := snapshotAt(now, map[string]int{"default": 90, "sync": 10, "notification": 5, "live_reporting": 96})
		alerts := DetectPatterns(current, nil, thresholds, 200)
		critical := 0
		for _, alert := range alerts {
			if alert.Severity == data.SeverityCritical {
				critical++
				assert.Contains(t, alert.Message, "201 pending tasks")
			}
		}
		assert.Equal(t, 1, critical)
	})
	t.Run("independent rules may fire together", func(t *testing.T) {
		current := snapshotAt(now, map[string]int{"live_reporting": 30, "default": 180})
		historical := map[string]*data.QueueSnapshot{
			"5min":  snapshotAt(now.Add(-5*time.Minute), map[string]int{"live_reporting": 10, "default": 170}),
			"30min": snapshotAt(now.Add(-30*time.Minute), map[string]int{"live_reporting": 5, "default": 120}),
		}
		alerts := DetectPatterns(current, historical, thresholds, 200)
		// two threshold warnings, one growth critical, one sustained critical, one limit critical
		assert.Len(t, alerts, 5)
	})
	t.Run("missing history skips growth rules", func(t *testing.T) {
		current := snapshotAt(now, map[string]int{"default": 5})
		alerts := DetectPatterns(current, map[string]*data.QueueSnapshot{}, thresholds, 200)
		assert.Empty(t, alerts)
	})
}

func TestScore(t *testing.T) {
	thresholds := (&mockHealthConfig{}).GetQueueThresholds()
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	scoreOf := func(current *data.QueueSnapshot, historical map[string]*data.QueueSnapshot) int {
		return Score(current, historical, "live_reporting", thresholds, 200)
	}

	t.Run("empty queues are perfect", func(t *testing.T) {
		assert.Equal(t, 100, scoreOf(snapshotAt(now, nil), nil))
	})
	t.Run("total depth bands", func(t *testing.T) {
		assert.Equal(t, 100, scoreOf(snapshotAt(now, map[string]int{"default": 50}), nil))
		assert.Equal(t, 85, scoreOf(snapshotAt(now, map[string]int{"default": 51}), nil))
		assert.Equal(t, 85, scoreOf(snapshotAt(now, map[string]int{"default": 100}), nil))
		assert.Equal(t, 70, scoreOf(snapshotAt(now, map[string]int{"default": 101}), nil))
		assert.Equal(t, 70, scoreOf(snapshotAt(now, map[string]int{"default": 200}), nil))
		assert.Equal(t, 50, scoreOf(snapshotAt(now, map[string]int{"default": 201}), nil))
	})
	t.Run("priority queue over threshold", func(t *testing.T) {
		assert.Equal(t, 80, scoreOf(snapshotAt(now, map[string]int{"live_reporting": 21}), nil))
	})
	t.Run("growth deductions", func(t *testing.T) {
		historical := map[string]*data.QueueSnapshot{
			"5min": snapshotAt(now.Add(-5*time.Minute), map[string]int{"default": 0}),
		}
		assert.Equal(t, 100, scoreOf(snapshotAt(now, map[string]int{"default": 10}), historical))
		assert.Equal(t, 90, scoreOf(snapshotAt(now, map[string]int{"default": 11}), historical))
		assert.Equal(t, 90, scoreOf(snapshotAt(now, map[string]int{"default": 20}), historical))
		assert.Equal(t, 80, scoreOf(snapshotAt(now, map[string]int{"default": 21}), historical))
	})
	t.Run("growth is measured on the total backlog", func(t *testing.T) {
		// four queues each growing a little add up to one big backlog jump
		historical := map[string]*data.QueueSnapshot{
			"5min": snapshotAt(now.Add(-5*time.Minute), map[string]int{"default": 0, "sync": 0, "notification": 0, "live_reporting": 0}),
		}
		spread := snapshotAt(now, map[string]int{"default": 4, "sync": 4, "notification": 4, "live_reporting": 4})
		assert.Equal(t, 90, scoreOf(spread, historical))
		surge := snapshotAt(now, map[string]int{"default": 8, "sync": 8, "notification": 8, "live_reporting": 8})
		assert.Equal(t, 80, scoreOf(surge, historical))
	})
	t.Run("offsetting queue shifts do not deduct", func(t *testing.T) {
		// work moving between queues leaves the total flat
		historical := map[string]*data.QueueSnapshot{
			"5min": snapshotAt(now.Add(-5*time.Minute), map[string]int{"default": 25, "sync": 0}),
		}
		shifted := snapshotAt(now, map[string]int{"default": 0, "sync": 25})
		assert.Equal(t, 100, scoreOf(shifted, historical))
	})
	t.Run("worst case stacks every deduction", func(t *testing.T) {
		historical := map[string]*data.QueueSnapshot{
			"5min": snapshotAt(now.Add(-5*time.Minute), map[string]int{"live_reporting": 0}),
		}
		current := snapshotAt(now, map[string]int{"live_reporting": 500})
		score := scoreOf(current, historical)
		assert.Equal(t, 10, score)
		assert.Equal(t, data.HealthStatusCritical, data.HealthStatusForScore(score))
	})
	t.Run("never improves as depth grows", func(t *testing.T) {
		historical := map[string]*data.QueueSnapshot{
			"5min": snapshotAt(now.Add(-5*time.Minute), map[string]int{"live_reporting": 0, "default": 0}),
		}
		previous := 100
		for depth := 0; depth <= 300; depth += 3 {
			current := snapshotAt(now, map[string]int{"live_reporting": depth, "default": depth})
			score := scoreOf(current, historical)
			assert.LessOrEqual(t, score, previous, "score rose when depth grew to %d", depth)
			previous = score
		}
	})
}

func TestCheck(t *testing.T) {
	t.Run("healthy run produces a stored report", func(t *testing.T) {
		// Arrange
		jobQueue := new(MockJobQueue)
		jobQueue.On("QueueDepths", mock.Anything, mock.Anything).Return(map[string]int{"default": 3, "live_reporting": 1}, nil)
		jobQueue.On("InspectWorkers", mock.Anything).Return(&data.WorkerInspection{ActiveTasks: 1}, nil)
		monitor, _ := newTestMonitor(jobQueue)

		// Act
		report := monitor.Check(context.Background())

		// Assert
		assert.True(t, report.Success)
		assert.Equal(t, 100, report.Score)
		assert.Equal(t, data.HealthStatusHealthy, report.Status)
		assert.Empty(t, report.Alerts)
		assert.NotNil(t, report.Snapshot)
		assert.Equal(t, report, monitor.LatestReport())
	})
	t.Run("uses stored history for growth detection", func(t *testing.T) {
		// Arrange
		jobQueue := new(MockJobQueue)
		jobQueue.On("QueueDepths", mock.Anything, mock.Anything).Return(map[string]int{"live_reporting": 25}, nil)
		jobQueue.On("InspectWorkers", mock.Anything).Return(&data.WorkerInspection{}, nil)
		monitor, snapshotRepo := newTestMonitor(jobQueue)
		now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
		monitor.now = func() time.Time { return now }
		earlier := snapshotAt(now.Add(-5*time.Minute), map[string]int{"live_reporting": 5})
		assert.NoError(t, snapshotRepo.Store(context.Background(), earlier, time.Hour))

		// Act
		report := monitor.Check(context.Background())

		// Assert - threshold warning plus growth critical, priority and growth deductions
		assert.True(t, report.Success)
		assert.Equal(t, 70, report.Score)
		assert.Equal(t, data.HealthStatusDegraded, report.Status)
		assert.Len(t, report.Alerts, 2)
		assert.Equal(t, data.SeverityWarning, report.Alerts[0].Severity)
		assert.Equal(t, data.SeverityCritical, report.Alerts[1].Severity)
	})
	t.Run("sampling failure degrades to a structured report", func(t *testing.T) {
		// Arrange
		jobQueue := new(MockJobQueue)
		jobQueue.On("QueueDepths", mock.Anything, mock.Anything).Return(nil, queue.ErrQueueUnavailable)
		monitor, _ := newTestMonitor(jobQueue)

		// Act
		report := monitor.Check(context.Background())

		// Assert
		assert.False(t, report.Success)
		assert.Equal(t, 0, report.Score)
		assert.Equal(t, data.HealthStatusCritical, report.Status)
		assert.Contains(t, report.Message, "sampling failed")
		assert.Equal(t, report, monitor.LatestReport())
	})
}
