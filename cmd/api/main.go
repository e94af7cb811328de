package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/korero-app/korero-backend/internal/api"
	"github.com/korero-app/korero-backend/internal/auth"
	"github.com/korero-app/korero-backend/internal/config"
	"github.com/korero-app/korero-backend/internal/entities"
	"github.com/korero-app/korero-backend/internal/log"
	"github.com/korero-app/korero-backend/internal/metrics"
	"github.com/korero-app/korero-backend/internal/service"
	"github.com/korero-app/korero-backend/internal/store"
	"github.com/korero-app/korero-backend/internal/store/memory"
	"github.com/korero-app/korero-backend/internal/store/postgres"
	"github.com/korero-app/korero-backend/internal/store/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting Korero API server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"store", cfg.Store.Backend,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("korero-api")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	// Setup storage backend
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatalw("Failed to setup store", "backend", cfg.Store.Backend, "error", err)
	}
	defer st.Close()

	if err := st.Ping(ctx); err != nil {
		logger.Fatalw("Store ping failed", "backend", cfg.Store.Backend, "error", err)
	}
	logger.Infow("Store connection established", "backend", cfg.Store.Backend)

	st = store.Instrumented(st, metricsObj)

	// Token codec
	tokens, err := auth.NewTokens(cfg.Auth.TokenSecret)
	if err != nil {
		logger.Fatalw("Failed to setup token codec", "error", err)
	}

	// Entity services
	profileSvc := service.NewProfileService(st, logger)
	postSvc := service.NewPostService(st, logger)
	commentSvc := service.NewCommentService(st, logger)
	likeSvc := service.NewLikeService(st, logger)

	// HTTP surface
	handler := api.NewHandler(profileSvc, postSvc, commentSvc, likeSvc, st, logger)
	mw := api.NewMiddleware(logger, metricsObj)
	router := handler.Routes(mw, tokens, metricsHandler, cfg.Security.RateLimitRPM)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	schemas := entities.Schemas()
	switch cfg.Store.Backend {
	case "redis":
		return redis.New(cfg.Store.RedisAddr, schemas...)
	case "postgres":
		return postgres.New(ctx, cfg.Store.PostgresDSN, schemas...)
	default:
		return memory.New(schemas...), nil
	}
}
