package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionKey is the session entry holding the id that groups the report requests of one browser.
const SessionKey = "sid"

type key struct{}

func GetSession(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(key{}).(string)
	return s, ok && s != ""
}

// SessionMiddleware gives every browser a stable session id, creating the cookie on its first request.
func SessionMiddleware(handler *Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := handler.SessionManager.Load(r)
			id, err := session.GetString(SessionKey)
			if err != nil {
				log.Debug().Err(err).Msg("unreadable session")
			}

			if id == "" {
				id = uuid.NewString()
				if err = session.PutString(w, SessionKey, id); err != nil {
					log.Error().Err(err).Msg("failed to store session id")
				}
			}

			ctx := context.WithValue(r.Context(), key{}, id)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs every request at debug level.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
