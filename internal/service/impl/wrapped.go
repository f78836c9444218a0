package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tootwrapped/internal/analysis"
	"github.com/sidereusnuntius/tootwrapped/internal/db"
	"github.com/sidereusnuntius/tootwrapped/internal/domain"
	"github.com/sidereusnuntius/tootwrapped/internal/gateway"
	"github.com/sidereusnuntius/tootwrapped/internal/queue"
	"github.com/sidereusnuntius/tootwrapped/internal/report"
	"github.com/sidereusnuntius/tootwrapped/internal/service"
	"github.com/sidereusnuntius/tootwrapped/internal/validate"
)

// FirstYear is the oldest year a report can be asked for.
const FirstYear = 2016

func (s *AppService) AvailableYears(ctx context.Context, handle string, tz service.Timezone) (gateway.Years, error) {
	h, err := validate.ParseHandle(handle)
	if err != nil {
		return gateway.Years{}, err
	}
	zone, err := s.zone(tz)
	if err != nil {
		return gateway.Years{}, err
	}

	account, err := s.Gateway.LookupAccount(ctx, h)
	if err != nil {
		return gateway.Years{}, err
	}

	return s.Gateway.AvailableYears(ctx, h.Instance, account, zone)
}

func (s *AppService) Wrapped(ctx context.Context, sessionID, handle string, year int, tz service.Timezone, onProgress gateway.ProgressFunc) (*analysis.Statistics, error) {
	req, err := s.request(handle, year, tz)
	if err != nil {
		return nil, err
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	// A cache hit still supersedes whatever this session was fetching before.
	tok := s.Tracker.Begin(ctx, sessionID)
	defer s.Tracker.End(tok)

	stats, err := s.Reports.Cached(tok.Context(), req)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.Warn().Err(err).Msg("report cache unavailable")
		}

		stats, err = s.Reports.Generate(tok.Context(), req, func(p gateway.Progress) {
			if onProgress != nil && !tok.Superseded() {
				onProgress(p)
			}
		})
		if err != nil {
			if tok.Superseded() {
				return nil, &domain.Error{Kind: domain.KindCancelled, Host: req.Handle.Instance, Err: err}
			}
			return nil, err
		}
	}

	var result *analysis.Statistics
	err = s.Tracker.Commit(tok, func() error {
		result = stats
		return nil
	})
	return result, err
}

func (s *AppService) EnqueueWrapped(ctx context.Context, handle string, year int, tz service.Timezone) (db.Job, error) {
	req, err := s.request(handle, year, tz)
	if err != nil {
		return db.Job{}, err
	}

	job := queue.ReportJob{
		Handle: req.Handle.String(),
		Year:   req.Year,
		Mode:   string(req.Zone.Mode),
	}
	if req.Zone.Mode == domain.Local {
		job.Location = req.Zone.Location().String()
	}

	return s.Queue.Enqueue(ctx, job)
}

func (s *AppService) JobStatus(ctx context.Context, handle string, year int, tz service.Timezone) (db.Job, error) {
	req, err := s.request(handle, year, tz)
	if err != nil {
		return db.Job{}, err
	}
	return s.DB.GetJobState(ctx, req.Key())
}

func (s *AppService) request(handle string, year int, tz service.Timezone) (report.Request, error) {
	h, err := validate.ParseHandle(handle)
	if err != nil {
		return report.Request{}, err
	}

	zone, err := s.zone(tz)
	if err != nil {
		return report.Request{}, err
	}

	if last := zone.In(s.Clock.Now()).Year(); year < FirstYear || year > last {
		return report.Request{}, fmt.Errorf("%w: year must be between %d and %d", service.ErrInvalidInput, FirstYear, last)
	}

	return report.Request{Handle: h, Year: year, Zone: zone}, nil
}

func (s *AppService) zone(tz service.Timezone) (domain.Zone, error) {
	mode, err := domain.ParseTimezoneMode(tz.Mode)
	if err != nil {
		return domain.Zone{}, fmt.Errorf("%w: %s", service.ErrInvalidInput, err)
	}
	if mode == domain.UTC {
		return domain.Zone{Mode: mode}, nil
	}

	loc := s.Location
	if tz.Location != "" {
		loc, err = time.LoadLocation(tz.Location)
		if err != nil {
			return domain.Zone{}, fmt.Errorf("%w: unknown location %q", service.ErrInvalidInput, tz.Location)
		}
	}
	return domain.Zone{Mode: mode, Local: loc}, nil
}
