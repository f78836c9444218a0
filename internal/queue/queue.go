package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tootwrapped/internal/analysis"
	"github.com/sidereusnuntius/tootwrapped/internal/db"
	"github.com/sidereusnuntius/tootwrapped/internal/gateway"
	"github.com/sidereusnuntius/tootwrapped/internal/report"
)

// Generator is the part of *report.Generator the queue needs.
type Generator interface {
	Generate(ctx context.Context, req report.Request, onProgress gateway.ProgressFunc) (*analysis.Statistics, error)
	Purge(ctx context.Context) (int64, error)
}

type Queue interface {
	// Enqueue records the job as pending and schedules it.
	Enqueue(ctx context.Context, job ReportJob) (db.Job, error)
	// SchedulePurge starts the periodic deletion of expired reports.
	SchedulePurge(interval time.Duration) error
}

type reportQueueImpl struct {
	db        db.DB
	queues    *backlite.Client
	generator Generator
	clock     gateway.Clock
}

func New(ctx context.Context, d db.DB, generator Generator, clock gateway.Clock, blClient *backlite.Client) Queue {
	q := &reportQueueImpl{
		db:        d,
		queues:    blClient,
		generator: generator,
		clock:     clock,
	}
	q.register()
	q.queues.Start(ctx)
	log.Info().Msg("started task queue")
	return q
}

func (q *reportQueueImpl) Enqueue(ctx context.Context, job ReportJob) (db.Job, error) {
	req, err := job.request()
	if err != nil {
		return db.Job{}, err
	}

	state := db.Job{
		Key:       req.Key(),
		State:     db.JobPending,
		UpdatedAt: q.clock.Now(),
	}
	if err = q.db.SetJobState(ctx, state); err != nil {
		return db.Job{}, err
	}

	log.Debug().Str("acct", state.Key.Acct).Int("year", job.Year).Msg("enqueuing report task")
	if _, err = q.queues.Add(job).Ctx(ctx).Save(); err != nil {
		return db.Job{}, fmt.Errorf("enqueuing report: %w", err)
	}

	return state, nil
}

func (q *reportQueueImpl) SchedulePurge(interval time.Duration) error {
	if interval <= 0 {
		return errors.New("purge interval must be positive")
	}
	_, err := q.queues.Add(PurgeJob{Interval: interval}).Wait(interval).Save()
	return err
}
