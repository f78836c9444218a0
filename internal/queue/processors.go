package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tootwrapped/internal/db"
	"github.com/sidereusnuntius/tootwrapped/internal/domain"
	"github.com/sidereusnuntius/tootwrapped/internal/report"
	"github.com/sidereusnuntius/tootwrapped/internal/validate"
)

func (q *reportQueueImpl) register() {
	reportQueue := backlite.NewQueue[ReportJob](q.generate)
	purgeQueue := backlite.NewQueue[PurgeJob](q.purge)

	q.queues.Register(reportQueue)
	q.queues.Register(purgeQueue)
}

// generate runs one report job. Only transient failures are returned to backlite, which retries them; every
// outcome is recorded as the job's state, so a later successful attempt replaces an earlier failure.
func (q *reportQueueImpl) generate(ctx context.Context, job ReportJob) error {
	req, err := job.request()
	if err != nil {
		log.Error().Err(err).Str("handle", job.Handle).Msg("dropping invalid report task")
		return nil
	}

	_, err = q.generator.Generate(ctx, req, nil)

	state := db.Job{
		Key:       req.Key(),
		State:     db.JobDone,
		UpdatedAt: q.clock.Now(),
	}
	var retry bool
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoDataForYear):
		state.State = db.JobNoData
	default:
		state.State = db.JobFailed
		state.ErrorKind = domain.KindOf(err)
		retry = transient(err)
		log.Error().Err(err).Str("acct", state.Key.Acct).Bool("retry", retry).Msg("report task failed")
	}

	// The task context may be past its deadline; the state must still be written.
	if serr := q.db.SetJobState(context.WithoutCancel(ctx), state); serr != nil {
		log.Error().Err(serr).Str("acct", state.Key.Acct).Msg("failed to record report task state")
	}

	if retry {
		return err
	}
	return nil
}

func (q *reportQueueImpl) purge(ctx context.Context, job PurgeJob) error {
	n, err := q.generator.Purge(ctx)
	if err != nil {
		log.Error().Err(err).Msg("report purge failed")
	} else if n > 0 {
		log.Info().Int64("reports", n).Msg("purged expired reports")
	}

	_, err = backlite.FromContext(ctx).Add(job).Wait(job.Interval).Save()
	return err
}

func transient(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindRateLimited, domain.KindNetwork, domain.KindCancelled:
		return true
	default:
		return false
	}
}

func (j ReportJob) request() (report.Request, error) {
	h, err := validate.ParseHandle(j.Handle)
	if err != nil {
		return report.Request{}, err
	}

	mode, err := domain.ParseTimezoneMode(j.Mode)
	if err != nil {
		return report.Request{}, err
	}
	zone := domain.Zone{Mode: mode}
	if mode == domain.Local && j.Location != "" {
		loc, err := time.LoadLocation(j.Location)
		if err != nil {
			return report.Request{}, fmt.Errorf("unknown location %q: %w", j.Location, err)
		}
		zone.Local = loc
	}

	return report.Request{Handle: h, Year: j.Year, Zone: zone}, nil
}
