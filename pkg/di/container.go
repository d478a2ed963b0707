// Package di wires the application's dependencies together.
package di

import (
	"net/http"

	"github.com/asoma0710/message-search-engine/internal/cache"
	"github.com/asoma0710/message-search-engine/internal/refresh"
	"github.com/asoma0710/message-search-engine/internal/search"
	"github.com/asoma0710/message-search-engine/internal/service"
	"github.com/asoma0710/message-search-engine/internal/upstream"
	"github.com/asoma0710/message-search-engine/pkg/config"
	"github.com/asoma0710/message-search-engine/pkg/health"
	"github.com/asoma0710/message-search-engine/pkg/logger"
)

// Container holds all the dependencies for the application
type Container struct {
	Config         *config.Config
	Logger         *logger.Logger
	Upstream       *upstream.Client
	Cache          *cache.SnapshotCache
	Executor       *search.Executor
	MessageService *service.MessageService
	Refresher      *refresh.Refresher
	Health         *health.Checker
}

// New creates a new dependency injection container
func New(loggerConfig logger.Config) *Container {
	cfg := config.Get()

	log := logger.New(loggerConfig)

	client := upstream.NewClient(log)

	snapshots := cache.New(client, cache.Options{
		TTL:     cfg.Cache.TTL,
		MaxSize: cfg.Cache.MaxSize,
	}, log)

	executor := search.NewExecutor(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)

	messageService := service.NewMessageService(snapshots, executor)

	refresher := refresh.New(snapshots, cfg.Cache.RefreshInterval, cfg.Cache.PreloadOnStart, log)

	checker := health.NewChecker(log, cfg.Health.CheckInterval)
	checker.RegisterUpstreamCheck(
		cfg.Upstream.BaseURL+"/messages/?skip=0&limit=1",
		&http.Client{Timeout: cfg.Upstream.Timeout},
	)
	checker.RegisterCacheCheck(snapshots.Expired)

	return &Container{
		Config:         cfg,
		Logger:         log,
		Upstream:       client,
		Cache:          snapshots,
		Executor:       executor,
		MessageService: messageService,
		Refresher:      refresher,
		Health:         checker,
	}
}
