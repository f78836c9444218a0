package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tootwrapped"

// Collector holds every Prometheus metric of the service. All methods are safe to call on a nil *Collector, which
// records nothing; tests and tools that do not care about metrics simply pass nil.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	remoteRequests  *prometheus.CounterVec
	remoteRetries   *prometheus.CounterVec
	pagesFetched    prometheus.Counter
	reports         *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
}

func New() (*Collector, error) {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for inbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"method", "route", "status"}),
		remoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Requests sent to remote instances, by outcome.",
		}, []string{"endpoint", "outcome"}),
		remoteRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "retries_total",
			Help:      "Retries of remote requests, by reason.",
		}, []string{"reason"}),
		pagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "status_pages_total",
			Help:      "Pages of statuses fetched from remote instances.",
		}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "generated_total",
			Help:      "Report generations, by outcome.",
		}, []string{"outcome"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "remote",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per instance (0 closed, 1 half open, 2 open).",
		}, []string{"instance"}),
	}

	collectors := []prometheus.Collector{
		c.requestDuration,
		c.requestTotal,
		c.remoteRequests,
		c.remoteRetries,
		c.pagesFetched,
		c.reports,
		c.breakerState,
	}
	for _, col := range collectors {
		if err := registry.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics. The chi route pattern is used as the
// label so that handles in paths do not explode cardinality.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := strconv.Itoa(rw.status)

		c.requestTotal.WithLabelValues(r.Method, route, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

func (c *Collector) RemoteRequest(endpoint, outcome string) {
	if c == nil {
		return
	}
	c.remoteRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (c *Collector) Retry(reason string) {
	if c == nil {
		return
	}
	c.remoteRetries.WithLabelValues(reason).Inc()
}

func (c *Collector) PageFetched() {
	if c == nil {
		return
	}
	c.pagesFetched.Inc()
}

func (c *Collector) Report(outcome string) {
	if c == nil {
		return
	}
	c.reports.WithLabelValues(outcome).Inc()
}

func (c *Collector) BreakerState(instance string, state float64) {
	if c == nil {
		return
	}
	c.breakerState.WithLabelValues(instance).Set(state)
}

// ForgetBreaker drops the breaker state of an instance that is no longer tracked.
func (c *Collector) ForgetBreaker(instance string) {
	if c == nil {
		return
	}
	c.breakerState.DeleteLabelValues(instance)
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// Flush lets server-sent event handlers keep streaming through the instrumentation wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
