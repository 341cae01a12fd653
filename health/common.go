package health

import (
	"github.com/google/wire"
)

var (
	// HealthInjector sets up the queue health monitor and its periodic service
	HealthInjector = wire.NewSet(NewMonitorConfiguration, NewQueueHealthMonitor, NewCheckService, NewPrometheusHandler)
)
