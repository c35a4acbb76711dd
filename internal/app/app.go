package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fvaskate/agency-api/internal/config"
	"github.com/fvaskate/agency-api/internal/domain/event"
	"github.com/fvaskate/agency-api/internal/domain/media"
	"github.com/fvaskate/agency-api/internal/domain/roster"
	"github.com/fvaskate/agency-api/internal/infrastructure/media/cloudinary"
	"github.com/fvaskate/agency-api/internal/infrastructure/repository/appwrite"
	"github.com/fvaskate/agency-api/internal/infrastructure/repository/memory"
	"github.com/fvaskate/agency-api/internal/interfaces/httpapi"
	"github.com/fvaskate/agency-api/internal/platform/logging"
	"github.com/fvaskate/agency-api/internal/platform/resilience"
	"github.com/fvaskate/agency-api/internal/usecase"
)

// App bundles the HTTP server with the content store whose lifecycle it owns.
type App struct {
	Server *http.Server

	store  *usecase.ContentStore
	logger *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	memberRepo, eventRepo := buildRepositories(cfg, logger)
	uploader := buildUploader(cfg, logger)

	var seed []roster.Member
	if cfg.SeedEnabled {
		seed = memory.SeedTeamMembers()
	}

	store := usecase.NewContentStore(memberRepo, eventRepo, uploader, seed, logger)
	reconciler := usecase.NewReconcileService(memberRepo, eventRepo, logger)

	handler := httpapi.NewHandler(store, reconciler, logger)
	handler.SetReconcileWorkers(cfg.ReconcileMaxWorkers)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.AdminToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{Server: server, store: store, logger: logger}, nil
}

// Init performs the initial fetch-and-seed pass. A failure leaves the store
// serving its failed snapshot rather than aborting startup; the document
// store may come back and a later refresh recovers.
func (a *App) Init(ctx context.Context) error {
	return a.store.Init(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	a.store.Dispose()
	return a.Server.Shutdown(ctx)
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (roster.Repository, event.Repository) {
	if !cfg.AppwriteEnabled {
		logger.Info("document store disabled, using in-memory repositories")
		return memory.NewMemberRepository(nil), memory.NewEventRepository(nil)
	}

	client := appwrite.NewClient(appwrite.ClientConfig{
		BaseURL:    cfg.AppwriteBaseURL,
		ProjectID:  cfg.AppwriteProjectID,
		APIKey:     cfg.AppwriteAPIKey,
		DatabaseID: cfg.AppwriteDatabaseID,
		Timeout:    cfg.AppwriteTimeout,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AppwriteCircuitEnabled,
			FailureThreshold: cfg.AppwriteCircuitFailureCount,
			OpenTimeout:      cfg.AppwriteCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AppwriteCircuitHalfOpenMaxReq,
		},
	})

	return appwrite.NewMemberRepository(client, cfg.AppwriteTeamCollectionID),
		appwrite.NewEventRepository(client, cfg.AppwriteEventsCollectionID)
}

func buildUploader(cfg config.Config, logger *logging.Logger) media.Uploader {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryUploadPreset == "" {
		logger.Info("media uploads disabled", "reason", "cloudinary cloud name or upload preset missing")
		return media.Disabled{}
	}

	return cloudinary.NewClient(cloudinary.ClientConfig{
		BaseURL:      cfg.CloudinaryBaseURL,
		CloudName:    cfg.CloudinaryCloudName,
		UploadPreset: cfg.CloudinaryUploadPreset,
		Timeout:      cfg.CloudinaryTimeout,
		Logger:       logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CloudinaryCircuitEnabled,
			FailureThreshold: cfg.CloudinaryCircuitFailureCount,
			OpenTimeout:      cfg.CloudinaryCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CloudinaryCircuitHalfOpenMax,
		},
	})
}
