// Package client talks to the REST API of a Mastodon compatible instance. Every call carries its own timeout,
// retries rate limited and failed requests with exponential backoff and reports failures as *domain.Error values.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tootwrapped/internal/domain"
	"github.com/sidereusnuntius/tootwrapped/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	DefaultTimeout        = 15 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = time.Second
	DefaultUserAgent      = "tootwrapped/1.0"
	DefaultMaxRetryAfter  = time.Minute
	DefaultBreakerLimit   = 1024

	maxBodySize = 8 << 20
)

// HttpClient performs unauthenticated reads against remote instances. It is safe for concurrent use.
type HttpClient struct {
	client         *http.Client
	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	maxRetryAfter  time.Duration
	userAgent      string
	metrics        *metrics.Collector

	// Hosts come from user input, so only the most recently used breakers are kept.
	breakerLimit int
	breakersMu   sync.Mutex
	breakers     *lru.Cache[string, *gobreaker.CircuitBreaker[*response]]

	// wait blocks for d or until ctx is done. Replaced in tests to observe backoff delays.
	wait func(ctx context.Context, d time.Duration) error
}

type Option func(*HttpClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HttpClient) {
		c.client = hc
	}
}

// WithTimeout sets the per request timeout. It applies to each attempt independently of the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *HttpClient) {
		c.timeout = d
	}
}

// WithRetries sets how many times a rate limited or failed request is retried and the first backoff delay,
// which doubles on every further attempt.
func WithRetries(max int, base time.Duration) Option {
	return func(c *HttpClient) {
		c.maxRetries = max
		c.retryBaseDelay = base
	}
}

// WithMaxRetryAfter caps how long a rate limited request waits before its next attempt. A longer delay asked for
// by the instance fails the request as rate limited instead.
func WithMaxRetryAfter(d time.Duration) Option {
	return func(c *HttpClient) {
		c.maxRetryAfter = d
	}
}

// WithBreakerLimit sets how many per host circuit breakers are kept.
func WithBreakerLimit(n int) Option {
	return func(c *HttpClient) {
		if n > 0 {
			c.breakerLimit = n
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *HttpClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(c *HttpClient) {
		c.metrics = m
	}
}

func New(opts ...Option) *HttpClient {
	c := &HttpClient{
		client:         &http.Client{},
		timeout:        DefaultTimeout,
		maxRetries:     DefaultMaxRetries,
		retryBaseDelay: DefaultRetryBaseDelay,
		maxRetryAfter:  DefaultMaxRetryAfter,
		userAgent:      DefaultUserAgent,
		breakerLimit:   DefaultBreakerLimit,
		wait:           sleep,
	}
	for _, opt := range opts {
		opt(c)
	}

	// NewWithEvict only fails on a non positive size, which WithBreakerLimit rules out.
	c.breakers, _ = lru.NewWithEvict(c.breakerLimit, func(host string, _ *gobreaker.CircuitBreaker[*response]) {
		c.metrics.ForgetBreaker(host)
	})
	return c
}

// BaseURL turns an instance domain into the API base URL, keeping an explicit scheme when one is given.
func BaseURL(instance string) string {
	if strings.HasPrefix(instance, "http://") || strings.HasPrefix(instance, "https://") {
		return strings.TrimSuffix(instance, "/")
	}
	return "https://" + strings.TrimSuffix(instance, "/")
}

// LookupAccount resolves a username local to instance.
func (c *HttpClient) LookupAccount(ctx context.Context, instance, username string) (account domain.Account, err error) {
	reqURL := BaseURL(instance) + "/api/v1/accounts/lookup?acct=" + url.QueryEscape(username)
	err = c.get(ctx, "lookup", reqURL, &account)
	return
}

// Statuses fetches one page of an account's statuses, newest first. An empty maxID requests the newest page.
func (c *HttpClient) Statuses(ctx context.Context, instance, accountID, maxID string, limit int) (statuses []domain.Status, err error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("exclude_replies", "false")
	params.Set("exclude_reblogs", "false")
	if maxID != "" {
		params.Set("max_id", maxID)
	}

	reqURL := fmt.Sprintf("%s/api/v1/accounts/%s/statuses?%s", BaseURL(instance), url.PathEscape(accountID), params.Encode())
	err = c.get(ctx, "statuses", reqURL, &statuses)
	return
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// get runs the retry loop for one logical request and decodes a successful body into out. The loop state is the
// attempt counter; cancellation is checked before every attempt and during every backoff wait.
func (c *HttpClient) get(ctx context.Context, endpoint, reqURL string, out any) error {
	host := hostOf(reqURL)

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return &domain.Error{Kind: domain.KindCancelled, Host: host, Attempts: attempt, Err: err}
		}

		res, err := c.breaker(host).Execute(func() (*response, error) {
			return c.fetch(ctx, reqURL)
		})

		var failure *domain.Error
		var delay time.Duration
		var reason string

		switch {
		case err != nil && ctx.Err() != nil:
			c.metrics.RemoteRequest(endpoint, "cancelled")
			return &domain.Error{Kind: domain.KindCancelled, Host: host, Attempts: attempt + 1, Err: ctx.Err()}
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			c.metrics.RemoteRequest(endpoint, "rejected")
			return &domain.Error{Kind: domain.KindNetwork, Host: host, Attempts: attempt + 1, Err: err}
		case err != nil:
			c.metrics.RemoteRequest(endpoint, "network_error")
			failure = &domain.Error{Kind: domain.KindNetwork, Host: host, Err: err}
			delay = c.backoff(attempt)
			reason = "network"
		case res.status == http.StatusTooManyRequests:
			c.metrics.RemoteRequest(endpoint, "rate_limited")
			failure = &domain.Error{Kind: domain.KindRateLimited, Host: host, Status: res.status}
			delay = retryAfter(res.header, c.backoff(attempt))
			reason = "rate_limited"
			if c.maxRetryAfter > 0 && delay > c.maxRetryAfter {
				log.Warn().Str("host", host).Dur("delay", delay).Msg("rate limit delay too long, giving up")
				failure.Attempts = attempt + 1
				return failure
			}
		case res.status == http.StatusNotFound:
			c.metrics.RemoteRequest(endpoint, "not_found")
			return &domain.Error{Kind: domain.KindAccountNotFound, Host: host, Status: res.status, Attempts: attempt + 1}
		case res.status < 200 || res.status >= 300:
			c.metrics.RemoteRequest(endpoint, "api_error")
			log.Error().Str("host", host).Int("status", res.status).Bytes("response", snippet(res.body)).Msg("remote api error")
			return &domain.Error{Kind: domain.KindAPI, Host: host, Status: res.status, Attempts: attempt + 1}
		default:
			c.metrics.RemoteRequest(endpoint, "ok")
			if err := json.Unmarshal(res.body, out); err != nil {
				log.Error().Err(err).Str("host", host).Msg("response body unmarshaling error")
				return &domain.Error{Kind: domain.KindAPI, Host: host, Status: res.status, Attempts: attempt + 1, Err: err}
			}
			return nil
		}

		failure.Attempts = attempt + 1
		if attempt >= c.maxRetries {
			return failure
		}

		c.metrics.Retry(reason)
		log.Debug().
			Str("host", host).
			Str("reason", reason).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("retrying remote request")

		if err := c.wait(ctx, delay); err != nil {
			return &domain.Error{Kind: domain.KindCancelled, Host: host, Attempts: attempt + 1, Err: err}
		}
	}
}

// fetch performs a single attempt. The attempt has its own deadline; either it or the caller's context aborts
// the request.
func (c *HttpClient) fetch(ctx context.Context, reqURL string) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	return &response{status: res.StatusCode, header: res.Header, body: body}, nil
}

func (c *HttpClient) backoff(attempt int) time.Duration {
	return c.retryBaseDelay * time.Duration(1<<uint(attempt))
}

// breaker returns the circuit breaker of a host, creating it on first use. Only transport failures count against
// it; HTTP error statuses are handled by the retry loop. Breakers of hosts not used for a while are evicted.
func (c *HttpClient) breaker(host string) *gobreaker.CircuitBreaker[*response] {
	c.breakersMu.Lock()
	defer c.breakersMu.Unlock()

	if cb, ok := c.breakers.Get(host); ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("host", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			c.metrics.BreakerState(name, float64(to))
		},
	})
	c.breakers.Add(host, cb)
	return cb
}

// retryAfter honors a Retry-After header given in seconds or as an HTTP date, falling back to def.
func retryAfter(h http.Header, def time.Duration) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
		return 0
	}
	return def
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func hostOf(reqURL string) string {
	u, err := url.Parse(reqURL)
	if err != nil {
		return reqURL
	}
	return u.Host
}

func snippet(b []byte) []byte {
	if len(b) > 512 {
		return b[:512]
	}
	return b
}
