package analysis

import (
	"time"

	"github.com/sidereusnuntius/tootwrapped/internal/domain"
)

type Persona string

const (
	Broadcaster Persona = "broadcaster"
	Curator     Persona = "curator"
	Balancer    Persona = "balancer"
)

type Chronotype string

const (
	NightOwl  Chronotype = "night_owl"
	EarlyBird Chronotype = "early_bird"
	Slacker   Chronotype = "slacker"
	Regular   Chronotype = "regular"
)

// Colors of the content distribution buckets.
const (
	ColorText   = "#3b82f6"
	ColorBoosts = "#22c55e"
	ColorMedia  = "#f59e0b"
)

// Statistics is the result of one analysis. It is built once and must be treated as read only.
type Statistics struct {
	Account         domain.Account `json:"account"`
	DisplayNameHTML string         `json:"display_name_html"`
	Year            int            `json:"year"`
	Timezone        string         `json:"timezone"`

	TotalPosts    int `json:"total_posts"`
	OriginalPosts int `json:"original_posts"`
	Reblogs       int `json:"reblogs"`
	Replies       int `json:"replies"`
	MediaPosts    int `json:"media_posts"`
	TextPosts     int `json:"text_posts"`

	TotalFavorites      int `json:"total_favorites"`
	TotalReblogs        int `json:"total_reblogs"`
	TotalReplies        int `json:"total_replies"`
	AvgFavoritesPerPost int `json:"avg_favorites_per_post"`
	SocialImpactScore   int `json:"social_impact_score"`

	Persona             Persona        `json:"persona"`
	Chronotype          Chronotype     `json:"chronotype"`
	ContentDistribution []ContentShare `json:"content_distribution"`

	MonthlyPosts    []MonthCount   `json:"monthly_posts"`
	HourlyPosts     []HourCount    `json:"hourly_posts"`
	WeekdayPosts    []WeekdayCount `json:"weekday_posts"`
	BusiestHour     HourCount      `json:"busiest_hour"`
	MostActiveMonth MonthCount     `json:"most_active_month"`

	TopHashtags    []HashtagCount `json:"top_hashtags"`
	UniqueHashtags int            `json:"unique_hashtags"`

	ActivityCalendar map[string]int `json:"activity_calendar"`
	LongestStreak    int            `json:"longest_streak"`
	MostActiveDay    *DayCount      `json:"most_active_day"`

	DateRange DateRange `json:"date_range"`
}

type ContentShare struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type MonthCount struct {
	Month int `json:"month"`
	Count int `json:"count"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type WeekdayCount struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}

type HashtagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
