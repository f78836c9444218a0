package domain

import (
	"time"
)

// Emoji is a custom emoji definition attached to an account.
type Emoji struct {
	Shortcode string `json:"shortcode"`
	URL       string `json:"url"`
	StaticURL string `json:"static_url"`
}

// Account is a remote account as returned by the accounts lookup endpoint. It is never mutated after being
// fetched.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Acct           string    `json:"acct"`
	DisplayName    string    `json:"display_name"`
	Avatar         string    `json:"avatar"`
	CreatedAt      time.Time `json:"created_at"`
	URL            string    `json:"url"`
	StatusesCount  int       `json:"statuses_count"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	Emojis         []Emoji   `json:"emojis"`
}

// Handle identifies an account as username@instance.
type Handle struct {
	Username string
	Instance string
}

func (h Handle) String() string {
	return h.Username + "@" + h.Instance
}
