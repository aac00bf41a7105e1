package handler

import (
	"github.com/emzola/bibliodesk/config"
	"github.com/emzola/bibliodesk/internal/jsonlog"
	"github.com/emzola/bibliodesk/service"
	"github.com/jellydator/ttlcache/v3"
)

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// Handler defines Handler layer.
type Handler struct {
	config  config.Config
	logger  *jsonlog.Logger
	flashes *ttlcache.Cache[string, Flash]
	service service.Service
}

// New creates a new instance of Handler. flashes holds pending notifications
// keyed by console session.
func New(cfg config.Config, logger *jsonlog.Logger, flashes *ttlcache.Cache[string, Flash], service service.Service) *Handler {
	return &Handler{
		config:  cfg,
		logger:  logger,
		flashes: flashes,
		service: service,
	}
}
