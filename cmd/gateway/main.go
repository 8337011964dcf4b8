package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/brightops/bright-gateway/internal/ai"
	"github.com/brightops/bright-gateway/internal/audit"
	"github.com/brightops/bright-gateway/internal/auth"
	"github.com/brightops/bright-gateway/internal/config"
	"github.com/brightops/bright-gateway/internal/provider/openai"
	"github.com/brightops/bright-gateway/internal/server"
	"github.com/brightops/bright-gateway/internal/storage"
	"github.com/brightops/bright-gateway/internal/telemetry"
	"github.com/brightops/bright-gateway/internal/tenant"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdown, err := telemetry.InitTracer("bright-gateway", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	store, err := storage.New(storage.Config{Driver: cfg.Database.Driver, DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	recorder := audit.NewRecorder(store, logger)
	identity := auth.NewIdentityClient(cfg.Identity.BaseURL, cfg.Identity.APIKey)
	resolver := tenant.NewResolver(auth.NewDecoder(cfg.Auth.JWTSecret, identity))

	var providerOpts []openai.ClientOption
	if cfg.OpenAI.BaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	completer := openai.NewClient(cfg.OpenAI.APIKey, providerOpts...)

	srv := server.New(cfg.Server.Port, server.Deps{
		Logger:   logger,
		Store:    store,
		Recorder: recorder,
		Resolver: resolver,
		Identity: identity,
		AI:       ai.NewService(completer, cfg.OpenAI.Model, recorder),
		Roles:    tenant.DefaultRoleAccess(),
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("gateway shutdown complete")
}
