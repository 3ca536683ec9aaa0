package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iammorganparry/backlog/internal/api"
	"github.com/iammorganparry/backlog/internal/backlog"
	"github.com/iammorganparry/backlog/internal/config"
	"github.com/iammorganparry/backlog/internal/inference"
	"github.com/iammorganparry/backlog/internal/models"
	"github.com/iammorganparry/backlog/internal/store"
)

func main() {
	// Logger
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// State store
	states, err := store.OpenDriver(cfg.StoreDriver, cfg.DBPath)
	if err != nil {
		logger.Error("failed to open state store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer states.Close()

	// Seed
	var seed []models.Issue
	if cfg.SeedFile != "" {
		seed, err = backlog.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			logger.Error("failed to load seed file", "path", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
		logger.Info("loaded seed issues", "path", cfg.SeedFile, "count", len(seed))
	}

	// Inference
	ollamaClient := inference.NewOllamaClient(cfg.OllamaBaseURL, cfg.ChatModel, cfg.ChatFormat, cfg.ChatTimeout)
	if err := ollamaClient.HealthCheck(context.Background()); err != nil {
		logger.Warn("ollama not available at startup, chat requests will fail until it is", "error", err)
	}

	// Backlog service
	svc := backlog.NewService(states, ollamaClient, backlog.Options{
		Seed:        seed,
		NoteLimit:   cfg.NoteLimit,
		RecentNotes: cfg.RecentNotes,
		AutoCleanup: cfg.AutoCleanup,
	}, logger)

	// Router
	router := api.NewRouter(svc, states, ollamaClient, logger)

	// Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ChatTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("backlog server starting",
			"addr", addr,
			"store", cfg.StoreDriver,
			"model", ollamaClient.Model(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
