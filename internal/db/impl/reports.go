package impl

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sidereusnuntius/tootwrapped/internal/db"
	"github.com/sidereusnuntius/tootwrapped/internal/db/impl/queries"
	"github.com/sidereusnuntius/tootwrapped/internal/domain"
)

func (d *dbImpl) SaveReport(ctx context.Context, r db.Report) error {
	err := d.queries.UpsertReport(ctx, queries.UpsertReportParams{
		Acct:        r.Key.Acct,
		Year:        int64(r.Key.Year),
		Timezone:    r.Key.Zone,
		Body:        r.Body,
		GeneratedAt: r.GeneratedAt.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("saving report for %s/%d: %w", r.Key.Acct, r.Key.Year, d.HandleError(err))
	}
	return nil
}

func (d *dbImpl) GetReport(ctx context.Context, key domain.ReportKey) (db.Report, error) {
	r, err := d.queries.GetReport(ctx, queries.GetReportParams{
		Acct:     key.Acct,
		Year:     int64(key.Year),
		Timezone: key.Zone,
	})
	if err != nil {
		return db.Report{}, d.HandleError(err)
	}

	return db.Report{
		Key:         key,
		Body:        r.Body,
		GeneratedAt: time.UnixMilli(r.GeneratedAt).UTC(),
	}, nil
}

func (d *dbImpl) SetJobState(ctx context.Context, job db.Job) error {
	var kind sql.NullString
	if job.ErrorKind != domain.KindUnknown {
		kind = sql.NullString{Valid: true, String: job.ErrorKind.String()}
	}

	err := d.queries.UpsertJob(ctx, queries.UpsertJobParams{
		Acct:      job.Key.Acct,
		Year:      int64(job.Key.Year),
		Timezone:  job.Key.Zone,
		State:     string(job.State),
		ErrorKind: kind,
		UpdatedAt: job.UpdatedAt.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("saving job state for %s/%d: %w", job.Key.Acct, job.Key.Year, d.HandleError(err))
	}
	return nil
}

func (d *dbImpl) GetJobState(ctx context.Context, key domain.ReportKey) (db.Job, error) {
	j, err := d.queries.GetJob(ctx, queries.GetJobParams{
		Acct:     key.Acct,
		Year:     int64(key.Year),
		Timezone: key.Zone,
	})
	if err != nil {
		return db.Job{}, d.HandleError(err)
	}

	job := db.Job{
		Key:       key,
		State:     db.JobState(j.State),
		UpdatedAt: time.UnixMilli(j.UpdatedAt).UTC(),
	}
	if j.ErrorKind.Valid {
		job.ErrorKind = domain.ParseKind(j.ErrorKind.String)
	}
	return job, nil
}

func (d *dbImpl) PurgeReports(ctx context.Context, olderThan time.Time) (n int64, err error) {
	err = d.WithTx(func(tx *queries.Queries) error {
		res, err := tx.DeleteReportsBefore(ctx, olderThan.UnixMilli())
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("purging reports: %w", d.HandleError(err))
	}
	return n, nil
}
