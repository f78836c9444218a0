package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Mount(r chi.Router) {
	r.Use(SessionMiddleware(h))

	r.Route(ApiPath, func(r chi.Router) {
		r.Get(YearsPath, Years(h))

		r.Route(WrappedPath, func(r chi.Router) {
			r.Get("/", Wrapped(h))
			r.Post("/", EnqueueWrapped(h))
			r.Get("/events", WrappedEvents(h))
			r.Get("/status", JobStatus(h))
		})
	})

	r.Get(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}
