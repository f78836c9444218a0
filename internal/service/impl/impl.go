package core

import (
	"context"
	"time"

	"github.com/sidereusnuntius/tootwrapped/internal/analysis"
	"github.com/sidereusnuntius/tootwrapped/internal/db"
	"github.com/sidereusnuntius/tootwrapped/internal/gateway"
	"github.com/sidereusnuntius/tootwrapped/internal/queue"
	"github.com/sidereusnuntius/tootwrapped/internal/report"
	"github.com/sidereusnuntius/tootwrapped/internal/service"
	"github.com/sidereusnuntius/tootwrapped/internal/session"
)

// Reports is the part of *report.Generator the service needs.
type Reports interface {
	Cached(ctx context.Context, req report.Request) (*analysis.Statistics, error)
	Generate(ctx context.Context, req report.Request, onProgress gateway.ProgressFunc) (*analysis.Statistics, error)
}

type AppService struct {
	DB      db.DB
	Gateway gateway.Gateway
	Reports Reports
	Queue   queue.Queue
	Tracker *session.Tracker
	Clock   gateway.Clock
	// Location is used by the local timezone mode when a request names no location.
	Location *time.Location
}

func New(d db.DB, g gateway.Gateway, reports Reports, q queue.Queue, tracker *session.Tracker, clock gateway.Clock, loc *time.Location) service.Service {
	if loc == nil {
		loc = time.Local
	}
	return &AppService{
		DB:       d,
		Gateway:  g,
		Reports:  reports,
		Queue:    q,
		Tracker:  tracker,
		Clock:    clock,
		Location: loc,
	}
}
