package db

import (
	"context"
	"errors"
	"time"

	"github.com/sidereusnuntius/tootwrapped/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal database error")
)

type JobState string

const (
	JobPending JobState = "pending"
	JobDone    JobState = "done"
	JobNoData  JobState = "no_data"
	JobFailed  JobState = "failed"
)

// Report is a cached, JSON encoded analysis result.
type Report struct {
	Key         domain.ReportKey
	Body        []byte
	GeneratedAt time.Time
}

type Job struct {
	Key       domain.ReportKey
	State     JobState
	ErrorKind domain.Kind
	UpdatedAt time.Time
}

type DB interface {
	// SaveReport inserts the report or replaces the one stored under the same key.
	SaveReport(ctx context.Context, r Report) error
	// GetReport returns ErrNotFound when no report is stored under key.
	GetReport(ctx context.Context, key domain.ReportKey) (Report, error)
	SetJobState(ctx context.Context, job Job) error
	GetJobState(ctx context.Context, key domain.ReportKey) (Job, error)
	// PurgeReports deletes reports generated before olderThan and returns how many were removed.
	PurgeReports(ctx context.Context, olderThan time.Time) (int64, error)
}
