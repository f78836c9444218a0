package web

import (
	"github.com/alexedwards/scs"
	"github.com/sidereusnuntius/tootwrapped/internal/config"
	"github.com/sidereusnuntius/tootwrapped/internal/service"
)

const (
	ApiPath     = "/api"
	YearsPath   = "/years/{handle}"
	WrappedPath = "/wrapped/{handle}/{year}"
	HealthPath  = "/healthz"
)

type Handler struct {
	Config         *config.Configuration
	service        service.Service
	SessionManager *scs.Manager
}

func New(config *config.Configuration, service service.Service, manager *scs.Manager) Handler {
	return Handler{
		Config:         config,
		service:        service,
		SessionManager: manager,
	}
}
