package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tootwrapped/internal/db"
	"github.com/sidereusnuntius/tootwrapped/internal/domain"
	"github.com/sidereusnuntius/tootwrapped/internal/gateway"
	"github.com/sidereusnuntius/tootwrapped/internal/service"
)

type JobBody struct {
	State     db.JobState `json:"state"`
	ErrorKind string      `json:"error_kind,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Years lists the years a report can be generated for.
func Years(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		years, err := handler.service.AvailableYears(r.Context(), handleParam(r), timezone(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, years)
	}
}

// Wrapped answers with the report once it is ready.
func Wrapped(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := yearParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := r.Context()
		sid, _ := GetSession(ctx)
		stats, err := handler.service.Wrapped(ctx, sid, handleParam(r), year, timezone(r), nil)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// WrappedEvents streams the generation of a report as server sent events: progress events while the statuses
// are fetched, followed by a single report or error event. A superseded request ends the stream silently.
func WrappedEvents(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := yearParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		send := func(event string, v any) {
			data, err := json.Marshal(v)
			if err != nil {
				log.Error().Err(err).Str("event", event).Msg("failed to encode event")
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
			flusher.Flush()
		}

		ctx := r.Context()
		sid, _ := GetSession(ctx)
		stats, err := handler.service.Wrapped(ctx, sid, handleParam(r), year, timezone(r), func(p gateway.Progress) {
			switch p := p.(type) {
			case gateway.Stage:
				send("progress", map[string]string{"stage": string(p)})
			case gateway.Count:
				send("progress", p)
			}
		})
		if err != nil {
			status, body := describe(err)
			if status == http.StatusNoContent {
				return
			}
			send("error", body)
			return
		}

		send("report", stats)
	}
}

// EnqueueWrapped schedules the report to be generated in the background.
func EnqueueWrapped(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := yearParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		job, err := handler.service.EnqueueWrapped(r.Context(), handleParam(r), year, timezone(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, jobBody(job))
	}
}

func JobStatus(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := yearParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		job, err := handler.service.JobStatus(r.Context(), handleParam(r), year, timezone(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, jobBody(job))
	}
}

func jobBody(job db.Job) JobBody {
	body := JobBody{State: job.State, UpdatedAt: job.UpdatedAt}
	if job.ErrorKind != domain.KindUnknown {
		body.ErrorKind = job.ErrorKind.String()
	}
	return body
}

func handleParam(r *http.Request) string {
	raw := chi.URLParam(r, "handle")
	if h, err := url.PathUnescape(raw); err == nil {
		return h
	}
	return raw
}

func yearParam(r *http.Request) (int, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return 0, fmt.Errorf("%w: year must be a number", service.ErrInvalidInput)
	}
	return year, nil
}

func timezone(r *http.Request) service.Timezone {
	q := r.URL.Query()
	return service.Timezone{
		Mode:     q.Get("tz"),
		Location: q.Get("location"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
