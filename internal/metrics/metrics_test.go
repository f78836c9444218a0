package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.RemoteRequest("statuses", "ok")
	c.Retry("rate_limited")
	c.PageFetched()
	c.Report("generated")
	c.BreakerState("example.social", 2)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	c.InstrumentHandler(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected the wrapped handler to run, got %d", rec.Code)
	}
}

func TestInstrumentHandler(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}

	router := chi.NewRouter()
	router.Use(c.InstrumentHandler)
	router.Get("/api/years/{handle}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, target := range []string{"/api/years/alice@example.social", "/api/years/bob@example.social"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}
	c.Report("no_data")
	c.PageFetched()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	expected := []string{
		`tootwrapped_http_requests_total{method="GET",route="/api/years/{handle}",status="404"} 2`,
		`tootwrapped_reports_generated_total{outcome="no_data"} 1`,
		`tootwrapped_remote_status_pages_total 1`,
	}
	for _, line := range expected {
		if !strings.Contains(body, line) {
			t.Errorf("missing %q in\n%s", line, body)
		}
	}
	if strings.Contains(body, "alice") {
		t.Error("handles must not appear in route labels")
	}
}

func TestFlushPassesThrough(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatal(err)
	}

	flushed := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("instrumented writer does not implement http.Flusher")
		}
		f.Flush()
		flushed = true
	})
	rec := httptest.NewRecorder()
	c.InstrumentHandler(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !flushed || !rec.Flushed {
		t.Error("expected the flush to reach the recorder")
	}
}
