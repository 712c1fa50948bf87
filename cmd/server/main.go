package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nutrisnap-backend/config"
	"nutrisnap-backend/logger"
	"nutrisnap-backend/server"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Loads .env from the current directory, then the project root
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Log.Development,
	})

	err = run(cfg, zl)
	if err != nil {
		zl.Error("Server stopped", zap.Error(err))
	}
	_ = zl.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until a signal arrives; deferred cleanup runs before it returns
func run(cfg *config.Config, zl *zap.Logger) error {
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, zl)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer srv.Close()

	if cfg.Gemini.APIKey == "" {
		zl.Warn("GEMINI_API_KEY not set, clients must supply their own key")
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
