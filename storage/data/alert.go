package data

// AlertSeverity is the tier of a queue health alert
type AlertSeverity string

const (
	// SeverityInfo is an informational alert
	SeverityInfo AlertSeverity = "INFO"
	// SeverityWarning is an alert that needs operator attention soon
	SeverityWarning AlertSeverity = "WARNING"
	// SeverityCritical is an alert that needs operator attention now
	SeverityCritical AlertSeverity = "CRITICAL"
)

// Alert is an ephemeral queue health finding; produced per check run, surfaced in
// logs and the health report, never persisted.
type Alert struct {
	Severity AlertSeverity `json:"severity"`
	Queue    string        `json:"queue,omitempty"`
	Message  string        `json:"message"`
}

// HealthStatus is the label derived from a health score
type HealthStatus string

const (
	// HealthStatusHealthy indicates score above 70
	HealthStatusHealthy HealthStatus = "healthy"
	// HealthStatusDegraded indicates score above 40 up to 70
	HealthStatusDegraded HealthStatus = "degraded"
	// HealthStatusCritical indicates score at or below 40
	HealthStatusCritical HealthStatus = "critical"
)

// HealthStatusForScore maps a 0-100 score to its status label
func HealthStatusForScore(score int) HealthStatus {
	if score > 70 {
		return HealthStatusHealthy
	}
	if score > 40 {
		return HealthStatusDegraded
	}
	return HealthStatusCritical
}

// HealthReport is the outcome of one queue health check run
type HealthReport struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message,omitempty"`
	Score    int            `json:"health_score"`
	Status   HealthStatus   `json:"status"`
	Alerts   []Alert        `json:"alerts"`
	Snapshot *QueueSnapshot `json:"current_metrics,omitempty"`
}
