package service

import (
	"context"
	"errors"

	"github.com/sidereusnuntius/tootwrapped/internal/analysis"
	"github.com/sidereusnuntius/tootwrapped/internal/db"
	"github.com/sidereusnuntius/tootwrapped/internal/gateway"
)

var (
	ErrInvalidInput = errors.New("invalid")
)

// Timezone is the timezone choice of a request as the user sent it: a mode (local or utc) and, optionally, the
// IANA name of the location the local mode should use.
type Timezone struct {
	Mode     string
	Location string
}

type Service interface {
	// AvailableYears resolves the handle and lists the years its account has reports for, newest first.
	AvailableYears(ctx context.Context, handle string, tz Timezone) (gateway.Years, error)
	// Wrapped returns the year in review of handle. A fresh cached report is served directly; otherwise the
	// report is generated on behalf of session, and a later call for the same session supersedes this one,
	// which then fails with domain.ErrCancelled. onProgress may be nil and is never called once superseded.
	Wrapped(ctx context.Context, session, handle string, year int, tz Timezone, onProgress gateway.ProgressFunc) (*analysis.Statistics, error)
	// EnqueueWrapped schedules the report to be generated in the background.
	EnqueueWrapped(ctx context.Context, handle string, year int, tz Timezone) (db.Job, error)
	// JobStatus returns the state of the background job of the report, or db.ErrNotFound.
	JobStatus(ctx context.Context, handle string, year int, tz Timezone) (db.Job, error)
}
