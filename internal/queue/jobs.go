package queue

import (
	"time"

	"github.com/mikestefanello/backlite"
)

const (
	ReportQueue = "reports"
	PurgeQueue  = "purge"
)

// ReportJob asks for a report to be generated in the background. Location is the IANA name used by the local
// timezone mode; empty means the server's default.
type ReportJob struct {
	Handle   string
	Year     int
	Mode     string
	Location string
}

func (j ReportJob) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        ReportQueue,
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   12 * time.Hour,
			OnlyFailed: false,
			Data: &backlite.RetainData{
				OnlyFailed: true,
			},
		},
	}
}

// PurgeJob deletes expired reports and schedules the next purge Interval later.
type PurgeJob struct {
	Interval time.Duration
}

func (j PurgeJob) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        PurgeQueue,
		MaxAttempts: 1,
		Timeout:     time.Minute,
	}
}
