package controllers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/leaguehq/matchops/health"
)

const queueHealthPath = "/queue-health"

// NewQueueHealthController Factory for new QueueHealthController
func NewQueueHealthController(monitor health.QueueHealthMonitor) *QueueHealthController {
	return &QueueHealthController{monitor: monitor}
}

// QueueHealthController is the controller for the queue health report endpoint
type QueueHealthController struct {
	monitor health.QueueHealthMonitor
}

// GetPath returns the endpoint path
func (cont *QueueHealthController) GetPath() string {
	return queueHealthPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (cont *QueueHealthController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return queueHealthPath
}

// Get is the GET /queue-health endpoint controller; it serves the cached report of the
// periodic check and runs one on demand only before the first tick
func (cont *QueueHealthController) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report := cont.monitor.LatestReport()
	if report == nil {
		report = cont.monitor.Check(r.Context())
	}
	writeJSON(w, report)
}
