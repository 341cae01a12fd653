package health

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leaguehq/matchops/storage/data"
)

var (
	sharedExporter *MetricsExporter
	once           sync.Once
)

// MetricsExporter publishes queue health gauges to the prometheus registry
type MetricsExporter struct {
	HealthScore     prometheus.Gauge
	QueueDepth      *prometheus.GaugeVec
	WorkerActive    prometheus.Gauge
	WorkerScheduled prometheus.Gauge
	AlertCount      *prometheus.GaugeVec
}

// NewMetricsExporter returns the process-wide exporter; promauto registration must
// happen once per metric name
func NewMetricsExporter() *MetricsExporter {
	once.Do(func() {
		sharedExporter = newMetricsExporter()
	})
	return sharedExporter
}

func newMetricsExporter() *MetricsExporter {
	exporter := &MetricsExporter{}
	exporter.HealthScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "queue_health_score",
		Help: "The queue health score of the latest check, 0 to 100",
	})
	exporter.QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "queue_pending_tasks",
		Help: "Pending task count per job queue",
	}, []string{"queue"})
	exporter.WorkerActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_active_tasks",
		Help: "Active task count aggregated across workers",
	})
	exporter.WorkerScheduled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_scheduled_tasks",
		Help: "Scheduled task count aggregated across workers",
	})
	exporter.AlertCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "queue_health_alerts",
		Help: "Alert count of the latest check per severity",
	}, []string{"severity"})
	return exporter
}

// Export publishes the gauges for one health report
func (exporter *MetricsExporter) Export(report *data.HealthReport) {
	exporter.HealthScore.Set(float64(report.Score))
	if report.Snapshot != nil {
		for queueName, depth := range report.Snapshot.QueueDepths {
			exporter.QueueDepth.WithLabelValues(queueName).Set(float64(depth))
		}
		exporter.WorkerActive.Set(float64(report.Snapshot.WorkerActive))
		exporter.WorkerScheduled.Set(float64(report.Snapshot.WorkerScheduled))
	}
	counts := map[data.AlertSeverity]int{data.SeverityInfo: 0, data.SeverityWarning: 0, data.SeverityCritical: 0}
	for _, alert := range report.Alerts {
		counts[alert.Severity]++
	}
	for severity, count := range counts {
		exporter.AlertCount.WithLabelValues(string(severity)).Set(float64(count))
	}
}

// NewPrometheusHandler creates the metrics scrape endpoint handler
func NewPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
