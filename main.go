package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tootwrapped/internal/client"
	"github.com/sidereusnuntius/tootwrapped/internal/config"
	db "github.com/sidereusnuntius/tootwrapped/internal/db/impl"
	"github.com/sidereusnuntius/tootwrapped/internal/gateway"
	"github.com/sidereusnuntius/tootwrapped/internal/initialization"
	"github.com/sidereusnuntius/tootwrapped/internal/metrics"
	"github.com/sidereusnuntius/tootwrapped/internal/queue"
	"github.com/sidereusnuntius/tootwrapped/internal/report"
	service "github.com/sidereusnuntius/tootwrapped/internal/service/impl"
	"github.com/sidereusnuntius/tootwrapped/internal/session"
	"github.com/sidereusnuntius/tootwrapped/internal/web"
)

type Clock struct{}

func (c Clock) Now() time.Time {
	return time.Now()
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read configuration")
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	loc := time.Local
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("unknown timezone")
		}
	}

	d, err := initialization.OpenDB(cfg.DbUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer d.Close()
	log.Info().Msg("database connection established")

	if err = initialization.SetupDB(d, cfg.MigrationsFolder, cfg.DbUrl); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	q, err := initialization.InitQueue(&cfg, d)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to set up the task queue")
	}

	m, err := metrics.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := client.New(
		client.WithTimeout(cfg.Fetch.RequestTimeout),
		client.WithRetries(cfg.Fetch.MaxRetries, cfg.Fetch.RetryBaseDelay),
		client.WithMaxRetryAfter(cfg.Fetch.MaxRetryAfter),
		client.WithUserAgent(cfg.Fetch.UserAgent),
		client.WithMetrics(m),
	)
	gw := gateway.New(httpClient, gateway.Config{
		PageSize:  cfg.Fetch.PageSize,
		MaxPages:  cfg.Fetch.MaxPages,
		PageDelay: cfg.Fetch.PageDelay,
	}, Clock{}, m)

	dd := db.New(d)
	generator := report.New(gw, dd, Clock{}, cfg.Cache.TTL, m)
	reports := queue.New(ctx, dd, generator, Clock{}, q)
	if err = reports.SchedulePurge(cfg.Cache.PurgeInterval); err != nil {
		log.Error().Err(err).Msg("failed to schedule report purge")
	}

	svc := service.New(dd, gw, generator, reports, session.NewTracker(), Clock{}, loc)

	manager := scs.NewCookieManager(sessionKey(cfg.SessionKey))
	handler := web.New(&cfg, svc, manager)

	router := chi.NewRouter()
	router.Use(m.InstrumentHandler)
	if cfg.Debug {
		router.Use(web.RequestLogger)
	}
	handler.Mount(router)
	router.Handle("/metrics", m.Handler())

	s := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
		q.Stop(shutdown)
	}()

	log.Info().Uint16("port", cfg.Port).Msg("started server")
	if err = s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// sessionKey returns the configured key, or a random one that lasts until the next restart.
func sessionKey(configured string) string {
	if configured != "" {
		return configured
	}
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msg("failed to generate a session key")
	}
	log.Warn().Msg("no session_key configured, sessions will not survive a restart")
	return base64.StdEncoding.EncodeToString(b)
}
