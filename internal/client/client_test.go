package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sidereusnuntius/tootwrapped/internal/domain"
)

var ctx = context.Background()

// recorder replaces the client's wait function so backoff delays are observed instead of slept.
type recorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recorder) wait(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func newTestClient(rec *recorder, opts ...Option) *HttpClient {
	c := New(opts...)
	c.wait = rec.wait
	return c
}

func TestLookupAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/accounts/lookup" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if acct := r.URL.Query().Get("acct"); acct != "alice" {
			t.Errorf("unexpected acct %q", acct)
		}
		w.Write([]byte(`{"id":"42","username":"alice","acct":"alice","display_name":"Alice :wave:","created_at":"2019-03-01T10:00:00.000Z","emojis":[{"shortcode":"wave","url":"https://x/w.png","static_url":"https://x/ws.png"}]}`))
	}))
	defer server.Close()

	c := newTestClient(&recorder{})
	account, err := c.LookupAccount(ctx, server.URL, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if account.ID != "42" || account.DisplayName != "Alice :wave:" {
		t.Errorf("unexpected account %+v", account)
	}
	if account.CreatedAt.Year() != 2019 {
		t.Errorf("unexpected creation date %s", account.CreatedAt)
	}
	if len(account.Emojis) != 1 || account.Emojis[0].StaticURL != "https://x/ws.png" {
		t.Errorf("unexpected emojis %+v", account.Emojis)
	}
}

func TestLookupAccountNotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"Record not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(&recorder{})
	_, err := c.LookupAccount(ctx, server.URL, "ghost")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("404 must not be retried, got %d calls", n)
	}
}

func TestRetryAfterHonored(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	rec := &recorder{}
	c := newTestClient(rec)
	statuses, err := c.Statuses(ctx, server.URL, "1", "", 40)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 0 {
		t.Errorf("expected empty page, got %d", len(statuses))
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("expected exactly one retry, got %d calls", n)
	}
	if len(rec.delays) != 1 || rec.delays[0] != 2*time.Second {
		t.Errorf("expected a single 2s delay, got %v", rec.delays)
	}
}

func TestRetryAfterTooLong(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "86400")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	rec := &recorder{}
	c := newTestClient(rec, WithMaxRetryAfter(30*time.Second))
	_, err := c.Statuses(ctx, server.URL, "1", "", 40)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}

	var e *domain.Error
	errors.As(err, &e)
	if e.Attempts != 1 || e.Status != http.StatusTooManyRequests {
		t.Errorf("unexpected detail %+v", e)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected a single call, got %d", n)
	}
	if len(rec.delays) != 0 {
		t.Errorf("expected no wait, got %v", rec.delays)
	}
}

func TestBreakersBounded(t *testing.T) {
	c := New(WithBreakerLimit(2))

	first := c.breaker("a.social")
	if c.breaker("a.social") != first {
		t.Error("expected the breaker of a host to be reused")
	}
	c.breaker("b.social")
	c.breaker("c.social")

	if n := c.breakers.Len(); n != 2 {
		t.Errorf("expected 2 breakers, got %d", n)
	}
	if c.breakers.Contains("a.social") {
		t.Error("expected the least recently used breaker to be evicted")
	}
	if c.breaker("a.social") == first {
		t.Error("expected a fresh breaker after eviction")
	}
}

func TestRateLimitExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	rec := &recorder{}
	c := newTestClient(rec)
	_, err := c.Statuses(ctx, server.URL, "1", "", 40)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}

	var e *domain.Error
	errors.As(err, &e)
	if e.Attempts != DefaultMaxRetries+1 || e.Status != http.StatusTooManyRequests {
		t.Errorf("unexpected detail %+v", e)
	}
	if n := calls.Load(); int(n) != DefaultMaxRetries+1 {
		t.Errorf("expected %d calls, got %d", DefaultMaxRetries+1, n)
	}

	expected := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(rec.delays) != len(expected) {
		t.Fatalf("expected delays %v, got %v", expected, rec.delays)
	}
	for i := range expected {
		if rec.delays[i] != expected[i] {
			t.Errorf("delay %d: expected %s, got %s", i, expected[i], rec.delays[i])
		}
	}
}

func TestAPIErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(&recorder{})
	_, err := c.Statuses(ctx, server.URL, "1", "", 40)
	var e *domain.Error
	if !errors.As(err, &e) || e.Kind != domain.KindAPI || e.Status != http.StatusForbidden {
		t.Fatalf("expected api error with status 403, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected one call, got %d", n)
	}
}

func TestTimeoutRetriedAsNetworkError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	rec := &recorder{}
	c := newTestClient(rec, WithTimeout(20*time.Millisecond), WithRetries(1, time.Millisecond))
	_, err := c.Statuses(ctx, server.URL, "1", "", 40)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if len(rec.delays) != 1 {
		t.Errorf("expected one backoff, got %v", rec.delays)
	}
}

func TestCancelledNotRetried(t *testing.T) {
	var calls atomic.Int32
	cctx, cancel := context.WithCancel(ctx)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cancel()
		<-r.Context().Done()
	}))
	defer server.Close()

	rec := &recorder{}
	c := newTestClient(rec)
	_, err := c.LookupAccount(cctx, server.URL, "alice")
	if !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected one call, got %d", n)
	}
	if len(rec.delays) != 0 {
		t.Errorf("cancellation must not back off, got %v", rec.delays)
	}
}

func TestAlreadyCancelled(t *testing.T) {
	cctx, cancel := context.WithCancel(ctx)
	cancel()

	c := newTestClient(&recorder{})
	_, err := c.LookupAccount(cctx, "https://mastodon.example", "alice")
	if !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("expected cancelled, got %v", err)
	}
}

func TestRetryAfterParsing(t *testing.T) {
	def := 3 * time.Second
	cases := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{"absent", "", def},
		{"seconds", "5", 5 * time.Second},
		{"zero", "0", 0},
		{"negative", "-4", 0},
		{"garbage", "soon", def},
		{"past date", "Mon, 02 Jan 2006 15:04:05 GMT", 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := http.Header{}
			if c.value != "" {
				h.Set("Retry-After", c.value)
			}
			if got := retryAfter(h, def); got != c.expected {
				t.Errorf("expected %s, got %s", c.expected, got)
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	cases := map[string]string{
		"mastodon.social":         "https://mastodon.social",
		"https://mastodon.social": "https://mastodon.social",
		"http://127.0.0.1:9000/":  "http://127.0.0.1:9000",
	}
	for in, expected := range cases {
		if got := BaseURL(in); got != expected {
			t.Errorf("%s: expected %s, got %s", in, expected, got)
		}
	}
}
