package domain

import (
	"time"
)

type Tag struct {
	Name string `json:"name"`
}

type MediaAttachment struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Status is a single post. Reblog is non nil when the status is a boost of somebody else's post; InReplyToID
// is non nil for replies.
type Status struct {
	ID               string            `json:"id"`
	CreatedAt        time.Time         `json:"created_at"`
	InReplyToID      *string           `json:"in_reply_to_id"`
	Reblog           *Status           `json:"reblog"`
	Visibility       string            `json:"visibility"`
	FavouritesCount  int               `json:"favourites_count"`
	ReblogsCount     int               `json:"reblogs_count"`
	RepliesCount     int               `json:"replies_count"`
	MediaAttachments []MediaAttachment `json:"media_attachments"`
	Tags             []Tag             `json:"tags"`
	Content          string            `json:"content"`
}

func (s Status) IsReply() bool {
	return s.InReplyToID != nil
}

func (s Status) IsBoost() bool {
	return s.Reblog != nil
}

// ReportKey identifies one generated report.
type ReportKey struct {
	Acct string
	Year int
	Zone string
}
