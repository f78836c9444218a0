// Package report runs the whole pipeline behind one report: fetch the year, analyse it and cache the result.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tootwrapped/internal/analysis"
	"github.com/sidereusnuntius/tootwrapped/internal/db"
	"github.com/sidereusnuntius/tootwrapped/internal/domain"
	"github.com/sidereusnuntius/tootwrapped/internal/gateway"
	"github.com/sidereusnuntius/tootwrapped/internal/metrics"
)

const DefaultTTL = 6 * time.Hour

// Request names one report.
type Request struct {
	Handle domain.Handle
	Year   int
	Zone   domain.Zone
}

// Key is the cache key of the request. Handles are compared case insensitively.
func (r Request) Key() domain.ReportKey {
	return domain.ReportKey{
		Acct: strings.ToLower(r.Handle.String()),
		Year: r.Year,
		Zone: r.Zone.Key(),
	}
}

type Generator struct {
	gateway gateway.Gateway
	db      db.DB
	clock   gateway.Clock
	ttl     time.Duration
	metrics *metrics.Collector
}

func New(g gateway.Gateway, d db.DB, clock gateway.Clock, ttl time.Duration, m *metrics.Collector) *Generator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Generator{
		gateway: g,
		db:      d,
		clock:   clock,
		ttl:     ttl,
		metrics: m,
	}
}

// Cached returns the stored report for req if it is younger than the cache TTL, and db.ErrNotFound otherwise.
func (g *Generator) Cached(ctx context.Context, req Request) (*analysis.Statistics, error) {
	r, err := g.db.GetReport(ctx, req.Key())
	if err != nil {
		return nil, err
	}
	if g.clock.Now().Sub(r.GeneratedAt) > g.ttl {
		return nil, db.ErrNotFound
	}

	var stats analysis.Statistics
	if err = json.Unmarshal(r.Body, &stats); err != nil {
		log.Warn().Err(err).Str("acct", r.Key.Acct).Int("year", r.Key.Year).Msg("discarding unreadable cached report")
		return nil, db.ErrNotFound
	}

	g.metrics.Report("cached")
	return &stats, nil
}

// Generate fetches and analyses the requested year and stores the result. An account that published nothing that
// year yields domain.ErrNoDataForYear.
func (g *Generator) Generate(ctx context.Context, req Request, onProgress gateway.ProgressFunc) (*analysis.Statistics, error) {
	data, err := g.gateway.GetUserData(ctx, req.Handle, req.Year, req.Zone, onProgress)
	if err != nil {
		g.metrics.Report(outcome(err))
		return nil, err
	}

	if onProgress != nil {
		onProgress(gateway.StageAnalyzing)
	}
	stats := analysis.Analyze(data.Statuses, data.Account, req.Year, req.Zone)
	if stats == nil {
		g.metrics.Report(outcome(domain.ErrNoDataForYear))
		return nil, &domain.Error{Kind: domain.KindNoDataForYear, Host: req.Handle.Instance}
	}

	body, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}

	err = g.db.SaveReport(ctx, db.Report{
		Key:         req.Key(),
		Body:        body,
		GeneratedAt: g.clock.Now(),
	})
	if err != nil {
		log.Error().Err(err).Str("acct", req.Key().Acct).Msg("failed to cache report")
	}

	g.metrics.Report("generated")
	log.Info().
		Str("acct", req.Key().Acct).
		Int("year", req.Year).
		Int("posts", stats.TotalPosts).
		Msg("report generated")

	return stats, nil
}

// Load serves the cached report when there is one and generates it otherwise.
func (g *Generator) Load(ctx context.Context, req Request, onProgress gateway.ProgressFunc) (*analysis.Statistics, error) {
	stats, err := g.Cached(ctx, req)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		log.Warn().Err(err).Msg("report cache unavailable")
	}
	return g.Generate(ctx, req, onProgress)
}

// Purge deletes reports older than the cache TTL.
func (g *Generator) Purge(ctx context.Context) (int64, error) {
	return g.db.PurgeReports(ctx, g.clock.Now().Add(-g.ttl))
}

func outcome(err error) string {
	return domain.KindOf(err).String()
}
