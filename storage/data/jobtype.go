package data

import "errors"

// JobType represents the category of deferred work scheduled for a fixture
type JobType string

const (
	// JobTypeThreadCreation is the job creating the discussion thread ahead of a fixture
	JobTypeThreadCreation JobType = "thread_creation"
	// JobTypeLiveReportingStart is the job starting live play-by-play reporting
	JobTypeLiveReportingStart JobType = "live_reporting_start"
	// JobTypeLiveReportingStop is the job stopping live play-by-play reporting
	JobTypeLiveReportingStop JobType = "live_reporting_stop"
)

// ErrUnknownJobType is returned when a string does not name a known job type
var ErrUnknownJobType = errors.New("unknown job type")

// ScheduledJobTypes are the job types submitted when a fixture is scheduled
var ScheduledJobTypes = []JobType{JobTypeThreadCreation, JobTypeLiveReportingStart}

// ParseJobType parses the string representation of a job type
func ParseJobType(value string) (JobType, error) {
	switch JobType(value) {
	case JobTypeThreadCreation, JobTypeLiveReportingStart, JobTypeLiveReportingStop:
		return JobType(value), nil
	}
	return "", ErrUnknownJobType
}

// DisplayName returns the operator facing name of the job type
func (jobType JobType) DisplayName() string {
	switch jobType {
	case JobTypeThreadCreation:
		return "Thread Creation"
	case JobTypeLiveReportingStart:
		return "Live Reporting"
	case JobTypeLiveReportingStop:
		return "Live Reporting Stop"
	}
	return string(jobType)
}
