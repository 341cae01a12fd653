package health

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/leaguehq/matchops/storage/data"
)

type mockCronConfig struct {
	mockHealthConfig
	cronSpec string
}

func (m *mockCronConfig) GetHealthCheckCronSpec() string {
	return m.cronSpec
}

type countingExporter struct {
	mu    sync.Mutex
	calls int
}

func (e *countingExporter) Export(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return nil
}

func TestNewCheckService(t *testing.T) {
	t.Run("nil parameters", func(t *testing.T) {
		assert.Panics(t, func() {
			NewCheckService(nil, nil, nil)
		})
	})
	t.Run("nil exporter allowed", func(t *testing.T) {
		monitor, _ := newTestMonitor(new(MockJobQueue))
		service := NewCheckService(monitor, nil, &mockHealthConfig{})
		assert.NotNil(t, service)
	})
}

func TestCheckServiceStartRunsChecks(t *testing.T) {
	// Arrange
	jobQueue := new(MockJobQueue)
	jobQueue.On("QueueDepths", mock.Anything, mock.Anything).Return(map[string]int{"default": 1}, nil)
	jobQueue.On("InspectWorkers", mock.Anything).Return(&data.WorkerInspection{}, nil)
	monitor, _ := newTestMonitor(jobQueue)
	service := NewCheckService(monitor, &countingExporter{}, &mockCronConfig{cronSpec: "@every 100ms"})

	// Act
	err := service.Start()

	// Assert - at least one tick fires and leaves a report behind
	assert.NoError(t, err)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && monitor.LatestReport() == nil {
		time.Sleep(20 * time.Millisecond)
	}
	service.Stop()
	report := monitor.LatestReport()
	assert.NotNil(t, report)
	assert.True(t, report.Success)
}

func TestCheckServiceStartBadCronSpec(t *testing.T) {
	monitor, _ := newTestMonitor(new(MockJobQueue))
	service := NewCheckService(monitor, nil, &mockCronConfig{cronSpec: "not a cron spec"})
	assert.Error(t, service.Start())
}
