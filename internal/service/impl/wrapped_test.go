package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sidereusnuntius/tootwrapped/internal/analysis"
	"github.com/sidereusnuntius/tootwrapped/internal/db"
	"github.com/sidereusnuntius/tootwrapped/internal/domain"
	"github.com/sidereusnuntius/tootwrapped/internal/gateway"
	mock_db "github.com/sidereusnuntius/tootwrapped/internal/mocks"
	"github.com/sidereusnuntius/tootwrapped/internal/queue"
	"github.com/sidereusnuntius/tootwrapped/internal/report"
	"github.com/sidereusnuntius/tootwrapped/internal/service"
	"github.com/sidereusnuntius/tootwrapped/internal/session"
	"go.uber.org/mock/gomock"
)

var ctx = context.Background()

var utc = service.Timezone{Mode: "utc"}

type fixedClock time.Time

func (c fixedClock) Now() time.Time {
	return time.Time(c)
}

var now = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

type fakeReports struct {
	mu        sync.Mutex
	cached    *analysis.Statistics
	byYear    map[int]*analysis.Statistics
	generate  func(ctx context.Context, req report.Request, onProgress gateway.ProgressFunc) (*analysis.Statistics, error)
	generated []report.Request
}

func (f *fakeReports) Cached(ctx context.Context, req report.Request) (*analysis.Statistics, error) {
	if f.cached != nil {
		return f.cached, nil
	}
	if stats, ok := f.byYear[req.Year]; ok {
		return stats, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeReports) Generate(ctx context.Context, req report.Request, onProgress gateway.ProgressFunc) (*analysis.Statistics, error) {
	f.mu.Lock()
	f.generated = append(f.generated, req)
	f.mu.Unlock()
	if f.generate != nil {
		return f.generate(ctx, req, onProgress)
	}
	return &analysis.Statistics{Year: req.Year, TotalPosts: 1}, nil
}

type fakeQueue struct {
	jobs []queue.ReportJob
}

func (f *fakeQueue) Enqueue(ctx context.Context, job queue.ReportJob) (db.Job, error) {
	f.jobs = append(f.jobs, job)
	return db.Job{State: db.JobPending}, nil
}

func (f *fakeQueue) SchedulePurge(interval time.Duration) error {
	return nil
}

func newService(t *testing.T, reports Reports, q queue.Queue) (*AppService, *mock_db.MockDB, *mock_db.MockGateway) {
	ctrl := gomock.NewController(t)
	d := mock_db.NewMockDB(ctrl)
	g := mock_db.NewMockGateway(ctrl)
	s := New(d, g, reports, q, session.NewTracker(), fixedClock(now), time.UTC).(*AppService)
	return s, d, g
}

func TestWrappedServesCache(t *testing.T) {
	reports := &fakeReports{cached: &analysis.Statistics{Year: 2024, TotalPosts: 9}}
	s, _, _ := newService(t, reports, nil)

	stats, err := s.Wrapped(ctx, "s1", "alice@example.social", 2024, utc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalPosts != 9 || len(reports.generated) != 0 {
		t.Errorf("expected the cached report without generation")
	}
}

func TestWrappedGenerates(t *testing.T) {
	reports := &fakeReports{generate: func(ctx context.Context, req report.Request, onProgress gateway.ProgressFunc) (*analysis.Statistics, error) {
		onProgress(gateway.StageLookup)
		onProgress(gateway.Count{Posts: 40, Pages: 1})
		return &analysis.Statistics{Year: req.Year, TotalPosts: 40}, nil
	}}
	s, _, _ := newService(t, reports, nil)

	var events []gateway.Progress
	stats, err := s.Wrapped(ctx, "s1", "@Alice@example.social", 2024, utc, func(p gateway.Progress) {
		events = append(events, p)
	})
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalPosts != 40 {
		t.Errorf("unexpected statistics %+v", stats)
	}
	if diff := cmp.Diff([]gateway.Progress{gateway.StageLookup, gateway.Count{Posts: 40, Pages: 1}}, events); diff != "" {
		t.Error(diff)
	}

	expected := report.Request{
		Handle: domain.Handle{Username: "Alice", Instance: "example.social"},
		Year:   2024,
		Zone:   domain.Zone{Mode: domain.UTC},
	}
	if diff := cmp.Diff([]report.Request{expected}, reports.generated); diff != "" {
		t.Error(diff)
	}
	if n := s.Tracker.Active(); n != 0 {
		t.Errorf("expected the token to be released, %d still active", n)
	}
}

func TestWrappedSupersededRequest(t *testing.T) {
	started := make(chan struct{})
	var staleEvents int
	reports := &fakeReports{generate: func(ctx context.Context, req report.Request, onProgress gateway.ProgressFunc) (*analysis.Statistics, error) {
		if req.Year == 2023 {
			close(started)
			<-ctx.Done()
			onProgress(gateway.StageAnalyzing)
			return nil, &domain.Error{Kind: domain.KindCancelled, Err: ctx.Err()}
		}
		return &analysis.Statistics{Year: req.Year, TotalPosts: 1}, nil
	}}
	s, _, _ := newService(t, reports, nil)

	type result struct {
		stats *analysis.Statistics
		err   error
	}
	first := make(chan result)
	go func() {
		stats, err := s.Wrapped(ctx, "s1", "alice@example.social", 2023, utc, func(gateway.Progress) {
			staleEvents++
		})
		first <- result{stats, err}
	}()

	<-started
	stats, err := s.Wrapped(ctx, "s1", "alice@example.social", 2024, utc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Year != 2024 {
		t.Errorf("expected the 2024 report, got %d", stats.Year)
	}

	r := <-first
	if !errors.Is(r.err, domain.ErrCancelled) || r.stats != nil {
		t.Errorf("expected the superseded request to be cancelled, got %v", r.err)
	}
	if staleEvents != 0 {
		t.Errorf("superseded request reported %d progress events", staleEvents)
	}
}

func TestWrappedCacheHitSupersedesFetch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	reports := &fakeReports{
		byYear: map[int]*analysis.Statistics{2023: {Year: 2023, TotalPosts: 7}},
		generate: func(ctx context.Context, req report.Request, onProgress gateway.ProgressFunc) (*analysis.Statistics, error) {
			close(started)
			<-release
			return &analysis.Statistics{Year: req.Year}, nil
		},
	}
	s, _, _ := newService(t, reports, nil)

	type result struct {
		stats *analysis.Statistics
		err   error
	}
	first := make(chan result)
	go func() {
		stats, err := s.Wrapped(ctx, "s1", "alice@example.social", 2024, utc, nil)
		first <- result{stats, err}
	}()

	<-started
	stats, err := s.Wrapped(ctx, "s1", "alice@example.social", 2023, utc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Year != 2023 {
		t.Errorf("expected the cached 2023 report, got %d", stats.Year)
	}

	close(release)
	r := <-first
	if !errors.Is(r.err, domain.ErrCancelled) || r.stats != nil {
		t.Errorf("expected the older fetch to be discarded, got %+v, %v", r.stats, r.err)
	}
	if n := s.Tracker.Active(); n != 0 {
		t.Errorf("expected every token to be released, %d still active", n)
	}
}

func TestWrappedOtherSessionNotCancelled(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	reports := &fakeReports{generate: func(ctx context.Context, req report.Request, onProgress gateway.ProgressFunc) (*analysis.Statistics, error) {
		if req.Year == 2023 {
			close(started)
			select {
			case <-release:
			case <-ctx.Done():
				return nil, &domain.Error{Kind: domain.KindCancelled, Err: ctx.Err()}
			}
		}
		return &analysis.Statistics{Year: req.Year}, nil
	}}
	s, _, _ := newService(t, reports, nil)

	errs := make(chan error)
	go func() {
		_, err := s.Wrapped(ctx, "s1", "alice@example.social", 2023, utc, nil)
		errs <- err
	}()

	<-started
	if _, err := s.Wrapped(ctx, "s2", "alice@example.social", 2024, utc, nil); err != nil {
		t.Fatal(err)
	}
	close(release)
	if err := <-errs; err != nil {
		t.Errorf("a request from another session must not cancel this one, got %v", err)
	}
}

func TestWrappedErrors(t *testing.T) {
	rateLimited := &domain.Error{Kind: domain.KindRateLimited, Status: 429, Attempts: 4}

	cases := []struct {
		name     string
		handle   string
		year     int
		tz       service.Timezone
		expected error
	}{
		{"invalid handle", "alice", 2024, utc, domain.ErrInvalidHandle},
		{"disallowed host", "alice@127.0.0.1", 2024, utc, domain.ErrDisallowedHost},
		{"future year", "alice@example.social", 2026, utc, service.ErrInvalidInput},
		{"ancient year", "alice@example.social", 1999, utc, service.ErrInvalidInput},
		{"unknown mode", "alice@example.social", 2024, service.Timezone{Mode: "mars"}, service.ErrInvalidInput},
		{"unknown location", "alice@example.social", 2024, service.Timezone{Mode: "local", Location: "Nowhere/City"}, service.ErrInvalidInput},
		{"fetch failure", "alice@example.social", 2024, utc, domain.ErrRateLimited},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			reports := &fakeReports{generate: func(context.Context, report.Request, gateway.ProgressFunc) (*analysis.Statistics, error) {
				return nil, rateLimited
			}}
			s, _, _ := newService(t, reports, nil)

			_, err := s.Wrapped(ctx, "s1", c.handle, c.year, c.tz, nil)
			if !errors.Is(err, c.expected) {
				t.Errorf("expected %v, got %v", c.expected, err)
			}
		})
	}
}

func TestAvailableYears(t *testing.T) {
	s, _, g := newService(t, &fakeReports{}, nil)

	account := domain.Account{ID: "7", Username: "alice"}
	h := domain.Handle{Username: "alice", Instance: "example.social"}
	years := gateway.Years{Years: []int{2025, 2024}, Default: 2025}

	gomock.InOrder(
		g.EXPECT().LookupAccount(gomock.Any(), h).Return(account, nil),
		g.EXPECT().AvailableYears(gomock.Any(), "example.social", account, domain.Zone{Mode: domain.UTC}).Return(years, nil),
	)

	got, err := s.AvailableYears(ctx, "alice@example.social", utc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(years, got); diff != "" {
		t.Error(diff)
	}
}

func TestAvailableYearsUnknownAccount(t *testing.T) {
	s, _, g := newService(t, &fakeReports{}, nil)

	g.EXPECT().LookupAccount(gomock.Any(), gomock.Any()).
		Return(domain.Account{}, &domain.Error{Kind: domain.KindAccountNotFound, Status: 404})

	if _, err := s.AvailableYears(ctx, "ghost@example.social", utc); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected account not found, got %v", err)
	}
}

func TestEnqueueWrapped(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	q := &fakeQueue{}
	s, _, _ := newService(t, &fakeReports{}, q)
	s.Location = berlin

	if _, err := s.EnqueueWrapped(ctx, "alice@example.social", 2024, service.Timezone{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.EnqueueWrapped(ctx, "bob@example.social", 2023, utc); err != nil {
		t.Fatal(err)
	}

	expected := []queue.ReportJob{
		{Handle: "alice@example.social", Year: 2024, Mode: "local", Location: "Europe/Berlin"},
		{Handle: "bob@example.social", Year: 2023, Mode: "utc"},
	}
	if diff := cmp.Diff(expected, q.jobs); diff != "" {
		t.Error(diff)
	}
}

func TestJobStatus(t *testing.T) {
	s, d, _ := newService(t, &fakeReports{}, nil)

	key := domain.ReportKey{Acct: "alice@example.social", Year: 2024, Zone: "utc"}
	job := db.Job{Key: key, State: db.JobDone, UpdatedAt: now}
	d.EXPECT().GetJobState(gomock.Any(), key).Return(job, nil)

	got, err := s.JobStatus(ctx, "Alice@Example.Social", 2024, utc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(job, got); diff != "" {
		t.Error(diff)
	}
}
