// Package gateway retrieves an account and its statuses for one calendar year. Pages are requested strictly in
// sequence because each cursor is the oldest id of the previous page.
package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tootwrapped/internal/domain"
	"github.com/sidereusnuntius/tootwrapped/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	DefaultPageSize  = 40
	DefaultMaxPages  = 100
	DefaultPageDelay = 200 * time.Millisecond
)

// Source is the remote API as seen by the gateway. *client.HttpClient implements it.
type Source interface {
	LookupAccount(ctx context.Context, instance, username string) (domain.Account, error)
	Statuses(ctx context.Context, instance, accountID, maxID string, limit int) ([]domain.Status, error)
}

type Clock interface {
	Now() time.Time
}

type Config struct {
	PageSize int
	MaxPages int
	// PageDelay is the pause between two page requests, observed even when the instance does not rate limit.
	PageDelay time.Duration
}

type Gateway interface {
	LookupAccount(ctx context.Context, h domain.Handle) (domain.Account, error)
	// FetchYearPosts returns every status of the account created in year, as seen from zone. onProgress may be nil.
	FetchYearPosts(ctx context.Context, instance, accountID string, year int, zone domain.Zone, onProgress ProgressFunc) ([]domain.Status, error)
	// AvailableYears lists the years the account likely has data for, newest first, and the year to show by
	// default.
	AvailableYears(ctx context.Context, instance string, account domain.Account, zone domain.Zone) (Years, error)
	// GetUserData looks the handle up and fetches its statuses for year.
	GetUserData(ctx context.Context, h domain.Handle, year int, zone domain.Zone, onProgress ProgressFunc) (UserData, error)
}

type Years struct {
	Years   []int `json:"years"`
	Default int   `json:"default_year"`
}

type UserData struct {
	Account  domain.Account
	Statuses []domain.Status
	Instance string
}

type GatewayImpl struct {
	source  Source
	cfg     Config
	clock   Clock
	metrics *metrics.Collector
}

func New(source Source, cfg Config, clock Clock, m *metrics.Collector) Gateway {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	return &GatewayImpl{
		source:  source,
		cfg:     cfg,
		clock:   clock,
		metrics: m,
	}
}

func (g *GatewayImpl) LookupAccount(ctx context.Context, h domain.Handle) (domain.Account, error) {
	return g.source.LookupAccount(ctx, h.Instance, h.Username)
}

func (g *GatewayImpl) GetUserData(ctx context.Context, h domain.Handle, year int, zone domain.Zone, onProgress ProgressFunc) (UserData, error) {
	onProgress.emit(StageLookup)
	account, err := g.LookupAccount(ctx, h)
	if err != nil {
		return UserData{}, err
	}

	onProgress.emit(StageFetching)
	statuses, err := g.FetchYearPosts(ctx, h.Instance, account.ID, year, zone, onProgress)
	if err != nil {
		return UserData{}, err
	}

	return UserData{
		Account:  account,
		Statuses: statuses,
		Instance: h.Instance,
	}, nil
}

func (g *GatewayImpl) FetchYearPosts(ctx context.Context, instance, accountID string, year int, zone domain.Zone, onProgress ProgressFunc) ([]domain.Status, error) {
	window := domain.NewYearWindow(year, zone)

	var statuses []domain.Status
	var cursor string

	for page := 0; page < g.cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, &domain.Error{Kind: domain.KindCancelled, Host: instance, Err: err}
		}

		batch, err := g.source.Statuses(ctx, instance, accountID, cursor, g.cfg.PageSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		// Boosts and originals interleave, so a page may hold statuses on both sides of the window. Only a
		// status older than the window proves that later pages are out of range.
		var crossed bool
		for _, s := range batch {
			switch window.Compare(s.CreatedAt) {
			case 0:
				statuses = append(statuses, s)
			case -1:
				crossed = true
			}
		}

		cursor = batch[len(batch)-1].ID
		g.metrics.PageFetched()
		onProgress.emit(Count{Posts: len(statuses), Pages: page + 1})

		log.Debug().
			Str("instance", instance).
			Int("page", page+1).
			Int("statuses", len(statuses)).
			Bool("crossed", crossed).
			Msg("fetched page")

		if crossed {
			return statuses, nil
		}
		if page+1 == g.cfg.MaxPages {
			log.Warn().Str("instance", instance).Int("pages", g.cfg.MaxPages).Msg("page ceiling reached")
			break
		}

		if err := pause(ctx, g.cfg.PageDelay); err != nil {
			return nil, &domain.Error{Kind: domain.KindCancelled, Host: instance, Err: err}
		}
	}

	return statuses, nil
}

// pause blocks for d counted from the end of the previous page, however long that page took.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	gap := rate.NewLimiter(rate.Every(d), 1)
	gap.Allow()
	return gap.Wait(ctx)
}

func (g *GatewayImpl) AvailableYears(ctx context.Context, instance string, account domain.Account, zone domain.Zone) (Years, error) {
	now := zone.In(g.clock.Now())
	current := now.Year()

	first := current
	if !account.CreatedAt.IsZero() {
		first = zone.In(account.CreatedAt).Year()
	}

	sample, err := g.source.Statuses(ctx, instance, account.ID, "", g.cfg.PageSize)
	if err != nil {
		return Years{}, err
	}

	latest := 0
	for _, s := range sample {
		y := zone.In(s.CreatedAt).Year()
		if y > latest && y <= current {
			latest = y
		}
		if account.CreatedAt.IsZero() && y < first {
			first = y
		}
	}
	if first > current {
		first = current
	}

	years := make([]int, 0, current-first+1)
	for y := current; y >= first; y-- {
		years = append(years, y)
	}

	def := latest
	if def == 0 {
		def = current
	}
	// Early in the year the current year holds too little to be worth a report.
	if def == current && now.Month() <= time.February && current-1 >= first {
		def = current - 1
	}

	return Years{Years: years, Default: def}, nil
}
