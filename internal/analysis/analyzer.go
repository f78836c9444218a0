// Package analysis turns a year of statuses into the statistics shown in a year in review report. Everything here
// is a pure function of its inputs.
package analysis

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sidereusnuntius/tootwrapped/internal/domain"
)

const (
	TopHashtagLimit = 10

	// Social impact score weights: boosts received count double, each favourite once, every tenth published
	// post adds one point and each day of the longest streak five.
	scoreReblogWeight   = 2
	scoreFavoriteWeight = 1
	scorePostDivisor    = 10
	scoreStreakWeight   = 5

	personaThreshold = 0.6

	nightThreshold   = 0.15
	morningThreshold = 0.30
	workThreshold    = 0.60

	dateLayout = "2006-01-02"
)

// Analyze computes the statistics of account for year, bucketing every date in zone. It returns nil when the
// account published nothing (originals or boosts) in that year, which is the normal "no data" outcome.
//
// Scope rules:
//   - published statuses are those that are not replies; they split into originals and boosts;
//   - replies are counted on their own and never enter the published total or the persona ratio;
//   - engagement sums come from originals only, since engagement on a boost belongs to the boosted author;
//   - hashtags come from statuses the account wrote (originals and replies), never from boosts.
func Analyze(statuses []domain.Status, account domain.Account, year int, zone domain.Zone) *Statistics {
	window := domain.NewYearWindow(year, zone)

	var published, originals, boosts, authored []domain.Status
	var replies int

	for _, s := range statuses {
		if !window.Contains(s.CreatedAt) {
			continue
		}
		if !s.IsBoost() {
			authored = append(authored, s)
		}
		if s.IsReply() {
			replies++
			continue
		}
		published = append(published, s)
		if s.IsBoost() {
			boosts = append(boosts, s)
		} else {
			originals = append(originals, s)
		}
	}

	totalPosts := len(originals) + len(boosts)
	if totalPosts == 0 {
		return nil
	}

	var mediaPosts, favorites, reblogsReceived, repliesReceived int
	for _, s := range originals {
		if len(s.MediaAttachments) > 0 {
			mediaPosts++
		}
		favorites += s.FavouritesCount
		reblogsReceived += s.ReblogsCount
		repliesReceived += s.RepliesCount
	}
	textPosts := len(originals) - mediaPosts

	streak := longestStreak(published, zone)
	hashtags := rankHashtags(authored)
	monthly, hourly, weekday := distributions(published, zone)

	stats := &Statistics{
		Account:         account,
		DisplayNameHTML: EmojifyDisplayName(account.DisplayName, account.Emojis),
		Year:            year,
		Timezone:        zone.Key(),

		TotalPosts:    totalPosts,
		OriginalPosts: len(originals),
		Reblogs:       len(boosts),
		Replies:       replies,
		MediaPosts:    mediaPosts,
		TextPosts:     textPosts,

		TotalFavorites:      favorites,
		TotalReblogs:        reblogsReceived,
		TotalReplies:        repliesReceived,
		AvgFavoritesPerPost: int(math.Floor(float64(favorites)/float64(totalPosts) + 0.5)),
		SocialImpactScore: reblogsReceived*scoreReblogWeight +
			favorites*scoreFavoriteWeight +
			totalPosts/scorePostDivisor +
			streak*scoreStreakWeight,

		Persona:             persona(len(originals), len(boosts), totalPosts),
		Chronotype:          chronotype(published, zone),
		ContentDistribution: contentDistribution(textPosts, len(boosts), mediaPosts),

		MonthlyPosts:    monthly,
		HourlyPosts:     hourly,
		WeekdayPosts:    weekday,
		BusiestHour:     busiestHour(hourly),
		MostActiveMonth: mostActiveMonth(monthly),

		UniqueHashtags: len(hashtags),
		TopHashtags:    hashtags[:min(len(hashtags), TopHashtagLimit)],

		LongestStreak: streak,

		DateRange: DateRange{Start: window.Start, End: window.End},
	}
	stats.ActivityCalendar, stats.MostActiveDay = activityCalendar(published, zone)

	return stats
}

func persona(originals, boosts, total int) Persona {
	switch {
	case float64(originals)/float64(total) > personaThreshold:
		return Broadcaster
	case float64(boosts)/float64(total) > personaThreshold:
		return Curator
	default:
		return Balancer
	}
}

func chronotype(published []domain.Status, zone domain.Zone) Chronotype {
	if len(published) == 0 {
		return Regular
	}

	var night, morning, work int
	for _, s := range published {
		switch h := zone.In(s.CreatedAt).Hour(); {
		case h < 5:
			night++
		case h < 10:
			morning++
		case h < 18:
			work++
		}
	}

	total := float64(len(published))
	switch {
	case float64(night)/total > nightThreshold:
		return NightOwl
	case float64(morning)/total > morningThreshold:
		return EarlyBird
	case float64(work)/total > workThreshold:
		return Slacker
	default:
		return Regular
	}
}

func contentDistribution(text, boosts, media int) []ContentShare {
	all := []ContentShare{
		{Key: "text", Value: text, Color: ColorText},
		{Key: "boosts", Value: boosts, Color: ColorBoosts},
		{Key: "media", Value: media, Color: ColorMedia},
	}
	shares := make([]ContentShare, 0, len(all))
	for _, s := range all {
		if s.Value > 0 {
			shares = append(shares, s)
		}
	}
	return shares
}

func distributions(published []domain.Status, zone domain.Zone) ([]MonthCount, []HourCount, []WeekdayCount) {
	monthly := make([]MonthCount, 12)
	for i := range monthly {
		monthly[i].Month = i + 1
	}
	hourly := make([]HourCount, 24)
	for i := range hourly {
		hourly[i].Hour = i
	}
	weekday := make([]WeekdayCount, 7)
	for i := range weekday {
		weekday[i].Day = i
	}

	for _, s := range published {
		t := zone.In(s.CreatedAt)
		monthly[t.Month()-1].Count++
		hourly[t.Hour()].Count++
		weekday[t.Weekday()].Count++
	}

	return monthly, hourly, weekday
}

// busiestHour and mostActiveMonth return the first bucket holding the maximum count.
func busiestHour(hourly []HourCount) HourCount {
	best := hourly[0]
	for _, h := range hourly[1:] {
		if h.Count > best.Count {
			best = h
		}
	}
	return best
}

func mostActiveMonth(monthly []MonthCount) MonthCount {
	best := monthly[0]
	for _, m := range monthly[1:] {
		if m.Count > best.Count {
			best = m
		}
	}
	return best
}

// activityCalendar counts published statuses per local date. The most active day is the first date, in input
// order, reaching the maximum.
func activityCalendar(published []domain.Status, zone domain.Zone) (map[string]int, *DayCount) {
	calendar := make(map[string]int)
	var order []string

	for _, s := range published {
		date := zone.In(s.CreatedAt).Format(dateLayout)
		if _, seen := calendar[date]; !seen {
			order = append(order, date)
		}
		calendar[date]++
	}

	var best *DayCount
	for _, date := range order {
		if best == nil || calendar[date] > best.Count {
			best = &DayCount{Date: date, Count: calendar[date]}
		}
	}

	return calendar, best
}

// longestStreak is the longest run of consecutive local dates with at least one published status.
func longestStreak(published []domain.Status, zone domain.Zone) int {
	if len(published) == 0 {
		return 0
	}

	seen := make(map[string]struct{})
	for _, s := range published {
		seen[zone.In(s.CreatedAt).Format(dateLayout)] = struct{}{}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		// Civil dates parsed in UTC are exactly 24h apart, whatever the zone's DST rules.
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			continue
		}
		dates = append(dates, t)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	longest, current := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i].Sub(dates[i-1]) == 24*time.Hour {
			current++
			longest = max(longest, current)
		} else {
			current = 1
		}
	}

	return longest
}

// rankHashtags counts tags case insensitively and orders them by descending count; ties keep the order in which
// the tags were first seen.
func rankHashtags(authored []domain.Status) []HashtagCount {
	index := make(map[string]int)
	var ranked []HashtagCount

	for _, s := range authored {
		for _, tag := range s.Tags {
			name := strings.ToLower(tag.Name)
			if name == "" {
				continue
			}
			if i, ok := index[name]; ok {
				ranked[i].Count++
				continue
			}
			index[name] = len(ranked)
			ranked = append(ranked, HashtagCount{Name: name, Count: 1})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if ranked == nil {
		ranked = []HashtagCount{}
	}
	return ranked
}
