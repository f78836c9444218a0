package queries

import (
	"context"
	"database/sql"
)

const upsertReport = `-- name: UpsertReport :exec
INSERT INTO reports (acct, year, timezone, body, generated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (acct, year, timezone) DO UPDATE SET
	body = excluded.body,
	generated_at = excluded.generated_at
`

type UpsertReportParams struct {
	Acct        string
	Year        int64
	Timezone    string
	Body        []byte
	GeneratedAt int64
}

func (q *Queries) UpsertReport(ctx context.Context, arg UpsertReportParams) error {
	_, err := q.db.ExecContext(ctx, upsertReport,
		arg.Acct,
		arg.Year,
		arg.Timezone,
		arg.Body,
		arg.GeneratedAt,
	)
	return err
}

const getReport = `-- name: GetReport :one
SELECT acct, year, timezone, body, generated_at
FROM reports
WHERE acct = ? AND year = ? AND timezone = ?
`

type GetReportParams struct {
	Acct     string
	Year     int64
	Timezone string
}

func (q *Queries) GetReport(ctx context.Context, arg GetReportParams) (Report, error) {
	row := q.db.QueryRowContext(ctx, getReport, arg.Acct, arg.Year, arg.Timezone)
	var i Report
	err := row.Scan(
		&i.Acct,
		&i.Year,
		&i.Timezone,
		&i.Body,
		&i.GeneratedAt,
	)
	return i, err
}

const deleteReportsBefore = `-- name: DeleteReportsBefore :execresult
DELETE FROM reports WHERE generated_at < ?
`

func (q *Queries) DeleteReportsBefore(ctx context.Context, generatedAt int64) (sql.Result, error) {
	return q.db.ExecContext(ctx, deleteReportsBefore, generatedAt)
}

const upsertJob = `-- name: UpsertJob :exec
INSERT INTO report_jobs (acct, year, timezone, state, error_kind, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (acct, year, timezone) DO UPDATE SET
	state = excluded.state,
	error_kind = excluded.error_kind,
	updated_at = excluded.updated_at
`

type UpsertJobParams struct {
	Acct      string
	Year      int64
	Timezone  string
	State     string
	ErrorKind sql.NullString
	UpdatedAt int64
}

func (q *Queries) UpsertJob(ctx context.Context, arg UpsertJobParams) error {
	_, err := q.db.ExecContext(ctx, upsertJob,
		arg.Acct,
		arg.Year,
		arg.Timezone,
		arg.State,
		arg.ErrorKind,
		arg.UpdatedAt,
	)
	return err
}

const getJob = `-- name: GetJob :one
SELECT acct, year, timezone, state, error_kind, updated_at
FROM report_jobs
WHERE acct = ? AND year = ? AND timezone = ?
`

type GetJobParams struct {
	Acct     string
	Year     int64
	Timezone string
}

func (q *Queries) GetJob(ctx context.Context, arg GetJobParams) (ReportJob, error) {
	row := q.db.QueryRowContext(ctx, getJob, arg.Acct, arg.Year, arg.Timezone)
	var i ReportJob
	err := row.Scan(
		&i.Acct,
		&i.Year,
		&i.Timezone,
		&i.State,
		&i.ErrorKind,
		&i.UpdatedAt,
	)
	return i, err
}
