package queries

import (
	"database/sql"
)

type Report struct {
	Acct        string
	Year        int64
	Timezone    string
	Body        []byte
	GeneratedAt int64
}

type ReportJob struct {
	Acct      string
	Year      int64
	Timezone  string
	State     string
	ErrorKind sql.NullString
	UpdatedAt int64
}
