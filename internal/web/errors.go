package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tootwrapped/internal/db"
	"github.com/sidereusnuntius/tootwrapped/internal/domain"
	"github.com/sidereusnuntius/tootwrapped/internal/service"
)

// ErrorBody is the JSON form of every failed request. Status and Attempts describe the last response of the
// remote instance, when there was one; the client builds the message shown to the user from Kind.
type ErrorBody struct {
	Kind     string `json:"kind"`
	Status   int    `json:"status,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
	Host     string `json:"host,omitempty"`
}

var kindStatus = map[domain.Kind]int{
	domain.KindInvalidHandle:   http.StatusBadRequest,
	domain.KindDisallowedHost:  http.StatusForbidden,
	domain.KindAccountNotFound: http.StatusNotFound,
	domain.KindNoDataForYear:   http.StatusNotFound,
	domain.KindRateLimited:     http.StatusTooManyRequests,
	domain.KindNetwork:         http.StatusBadGateway,
	domain.KindAPI:             http.StatusBadGateway,
	domain.KindCancelled:       http.StatusNoContent,
}

// describe maps err to the HTTP status of the response and its body.
func describe(err error) (int, ErrorBody) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, ErrorBody{Kind: "invalid_input"}
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Kind: "not_found"}
	}

	var e *domain.Error
	if !errors.As(err, &e) {
		log.Error().Err(err).Msg("unexpected error")
		return http.StatusInternalServerError, ErrorBody{Kind: "internal"}
	}

	status, ok := kindStatus[e.Kind]
	if !ok {
		log.Error().Err(err).Msg("unexpected error")
		return http.StatusInternalServerError, ErrorBody{Kind: "internal"}
	}

	return status, ErrorBody{
		Kind:     e.Kind.String(),
		Status:   e.Status,
		Attempts: e.Attempts,
		Host:     e.Host,
	}
}

// writeError answers with the error's status. A cancelled request gets an empty 204.
func writeError(w http.ResponseWriter, err error) {
	status, body := describe(err)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, body)
}
