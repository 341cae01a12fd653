package config

import (
	"time"
)

const (
	// DefaultThreadCreateLeadHours is how long before the fixture the thread creation job fires
	DefaultThreadCreateLeadHours = 24
	// DefaultReportingLeadMinutes is how long before the fixture live reporting starts
	DefaultReportingLeadMinutes = 5
	// DefaultMarkerTTLHours is how long dedup markers outlive their job's trigger horizon
	DefaultMarkerTTLHours = 48
)

// SchedulingConfig represents configuration related to fixture job scheduling
type SchedulingConfig interface {
	// GetThreadCreateLead returns the lead time before the fixture for thread creation
	GetThreadCreateLead() time.Duration
	// GetReportingLead returns the lead time before the fixture for live reporting start
	GetReportingLead() time.Duration
	// GetMarkerTTL returns the dedup marker time to live
	GetMarkerTTL() time.Duration
}

// GetThreadCreateLead returns the lead time before the fixture for thread creation
func (config *Config) GetThreadCreateLead() time.Duration {
	if config.threadCreateLead == 0 {
		return DefaultThreadCreateLeadHours * time.Hour
	}
	return config.threadCreateLead
}

// GetReportingLead returns the lead time before the fixture for live reporting start
func (config *Config) GetReportingLead() time.Duration {
	if config.reportingLead == 0 {
		return DefaultReportingLeadMinutes * time.Minute
	}
	return config.reportingLead
}

// GetMarkerTTL returns the dedup marker time to live
func (config *Config) GetMarkerTTL() time.Duration {
	if config.markerTTL == 0 {
		return DefaultMarkerTTLHours * time.Hour
	}
	return config.markerTTL
}
