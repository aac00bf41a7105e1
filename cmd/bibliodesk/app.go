package main

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/emzola/bibliodesk/cache"
	"github.com/emzola/bibliodesk/clients"
	"github.com/emzola/bibliodesk/config"
	"github.com/emzola/bibliodesk/handler"
	"github.com/emzola/bibliodesk/internal/jsonlog"
	"github.com/emzola/bibliodesk/repository"
	"github.com/emzola/bibliodesk/service"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	logger  *jsonlog.Logger
	wg      *sync.WaitGroup
	store   *cache.Store
	flashes *ttlcache.Cache[string, handler.Flash]
	repo    repository.Repository
	service service.Service
	handler *handler.Handler
	started bool
}

// newApp builds every layer from the config file named by the --config flag.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Decode(cfgFile)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger := jsonlog.New(os.Stdout, jsonlog.ParseLevel(level))

	// Shared resources: waitgroup, query cache and flash store
	var wg sync.WaitGroup
	store := cache.New(cache.Options{
		KeepUnusedFor: cfg.Cache.KeepUnusedFor,
		RefetchAfter:  cfg.Cache.RefetchAfter,
		Logger:        logger.With(map[string]string{"component": "cache"}),
	})
	flashes := ttlcache.New(ttlcache.WithTTL[string, handler.Flash](time.Minute))

	uploader, err := clients.NewS3Uploader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var up service.Uploader
	if uploader != nil {
		up = uploader
	}

	// Application layers
	limiter := rate.NewLimiter(rate.Limit(cfg.API.RPS), cfg.API.Burst)
	repo := repository.New(clients.NewHTTPClient(cfg), cfg.API.BaseURL, limiter)
	svc := service.New(cfg, &wg, logger.With(map[string]string{"component": "service"}), repo, store, up)
	h := handler.New(cfg, logger, flashes, svc)

	return &app{
		config:  cfg,
		logger:  logger,
		wg:      &wg,
		store:   store,
		flashes: flashes,
		repo:    repo,
		service: svc,
		handler: h,
	}, nil
}

// start runs the expiry loops of the process-wide caches.
func (a *app) start() {
	a.started = true
	go a.store.Start()
	go a.flashes.Start()
}

// stop tears down the process-wide caches.
func (a *app) stop() {
	a.store.Stop()
	if a.started {
		a.flashes.Stop()
		a.started = false
	}
}
