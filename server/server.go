// Package server wires configuration, storage, services and handlers into
// a runnable HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nutrisnap-backend/config"
	"nutrisnap-backend/handlers"
	"nutrisnap-backend/metrics"
	"nutrisnap-backend/repository"
	"nutrisnap-backend/service"
	"nutrisnap-backend/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server is a configured NutriSnap API server
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.Storage
	engine  *gin.Engine
	metrics *metrics.Metrics
}

// New opens the configured storage and builds the router
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	store, err := storage.NewStorage(ctx, cfg.StorageBackend())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", zap.String("type", cfg.Storage.Type))

	var keyOpts []repository.APIKeyOption
	if cfg.Storage.Secret != "" {
		sealer, err := repository.NewSealer(cfg.Storage.Secret)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize key sealing: %w", err)
		}
		keyOpts = append(keyOpts, repository.WithSealer(sealer))
	} else {
		logger.Warn("STORAGE_SECRET not set, API keys are stored unencrypted")
	}

	m := metrics.New()
	generator := NewGenerator(cfg, logger)

	settings := repository.NewSettingsRepository(store, logger)
	preferences := repository.NewPreferencesRepository(store, logger)
	favorites := repository.NewFavoriteRepository(store, logger)
	history := repository.NewHistoryRepository(store, logger)
	apiKeys := repository.NewAPIKeyRepository(store, logger, keyOpts...)
	resolver := handlers.NewKeyResolver(apiKeys, cfg.Gemini.APIKey)

	vision := service.NewVisionService(
		service.VisionWithGenerator(generator),
		service.VisionWithModel(cfg.Gemini.VisionModel),
		service.VisionWithLogger(logger),
		service.VisionWithMetrics(m),
	)
	recipes := service.NewRecipeService(
		service.RecipeWithGenerator(generator),
		service.RecipeWithModel(cfg.Gemini.RecipeModel),
		service.RecipeWithDefaultCount(cfg.Recipes.DefaultCount),
		service.RecipeWithMinResults(cfg.Recipes.MinResults),
		service.RecipeWithLogger(logger),
		service.RecipeWithMetrics(m),
	)
	keyService := service.NewKeyService(generator, logger, m)

	engine := handlers.Router{
		Generation: handlers.NewGenerationHandler(vision, recipes, settings, preferences, history, resolver,
			handlers.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
			handlers.WithGenerationLogger(logger),
		),
		Keys:        handlers.NewKeyHandler(keyService, apiKeys, settings, resolver),
		Preferences: handlers.NewPreferencesHandler(preferences, settings),
		Library:     handlers.NewLibraryHandler(favorites, history),
		Metrics:     m,
		Logger:      logger,
	}.Engine()

	return &Server{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		engine:  engine,
		metrics: m,
	}, nil
}

// NewGenerator returns the model transport selected by gemini.transport
func NewGenerator(cfg *config.Config, logger *zap.Logger) service.Generator {
	if cfg.Gemini.Transport == config.TransportSDK {
		logger.Info("Using generative-ai-go transport", zap.String("baseURL", cfg.Gemini.BaseURL))
		return service.NewSDKGenerator(
			service.SDKWithBaseURL(cfg.Gemini.BaseURL),
			service.SDKWithTimeout(cfg.Gemini.Timeout),
			service.SDKWithLogger(logger),
		)
	}
	return service.NewRESTGenerator(
		service.RESTWithBaseURL(cfg.Gemini.BaseURL),
		service.RESTWithTimeout(cfg.Gemini.Timeout),
		service.RESTWithLogger(logger),
	)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Server.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("port", s.cfg.Server.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the storage backend
func (s *Server) Close() error {
	return s.store.Close()
}
