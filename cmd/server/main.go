// Package main provides the entry point for the quiz service HTTP server.
// It wires configuration, observability, the database, the cache, and the
// API routes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizgen/internal/config"
	"quizgen/internal/database"
	"quizgen/internal/handlers"
	"quizgen/internal/observability"
	"quizgen/internal/services"
	contextutils "quizgen/internal/utils"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "quizgen")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if tp != nil {
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error()})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error()})
			}
		}
	}()

	logger.Info(ctx, "Starting quiz service", map[string]interface{}{
		"port":     cfg.Server.Port,
		"logLevel": cfg.Server.LogLevel,
	})

	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDB(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to initialize database", err, nil)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Error closing database", map[string]interface{}{"error": err.Error()})
		}
	}()

	cacheClient := services.NewRedisCache(&cfg.Redis, logger)
	quizCache := services.NewQuizCache(cacheClient, cfg.Redis.TTL, logger)

	completionService := services.NewCompletionService(cfg, logger)
	emailService := services.NewEmailService(cfg, logger)
	userService := services.NewUserService(db, logger)
	quizService := services.NewQuizService(db, completionService, quizCache, logger)
	resultService := services.NewResultService(db, quizService, logger)
	feedbackService := services.NewFeedbackService(completionService, emailService, logger)

	router := handlers.NewRouter(cfg, userService, quizService, resultService, feedbackService, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := router.Run(":" + cfg.Server.Port); err != nil {
			serverErr <- contextutils.WrapError(err, "server failed")
		}
	}()

	select {
	case <-shutdownCh:
		logger.Info(ctx, "Received shutdown signal, shutting down gracefully", nil)
	case err := <-serverErr:
		logger.Error(ctx, "Server failed", err, nil)
		os.Exit(1)
	}

	logger.Info(ctx, "Shutdown completed successfully", nil)
}
