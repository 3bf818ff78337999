package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"problem_tracker/internal/api"
	"problem_tracker/internal/api/middleware"
	"problem_tracker/internal/app/service"
	"problem_tracker/internal/domain/repository"
	"problem_tracker/internal/platform/config"
	"problem_tracker/internal/platform/database"
	"problem_tracker/internal/platform/logger"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// 3. Initialize Database
	ctx := context.Background()
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	zlog.Info("Database connected")

	if cfg.Database.AutoSchema {
		if err := database.ApplySchema(db, zlog); err != nil {
			zlog.Fatal("Failed to apply schema", zap.Error(err))
		}
	}

	// 4. Initialize Repositories
	repos := service.Repositories{
		Users:     repository.NewPgUserRepository(db),
		Problems:  repository.NewPgProblemRepository(db),
		Solutions: repository.NewPgSolutionRepository(db),
		Resources: repository.NewPgResourceRepository(db),
		Tags:      repository.NewPgTagRepository(db),
		Links:     repository.NewPgLinkRepository(db),
		Usage:     repository.NewPgUsageRanker(db),
	}

	// 5. Initialize Services
	services := service.NewServices(repos, database.NewTxRunner(db), zlog)

	// 6. Initialize Router & HTTP Server
	opts := api.Options{RequestTimeout: cfg.RequestTimeout}
	if cfg.MetricsEnabled {
		opts.Metrics = middleware.NewMetrics()
	}
	router := api.NewRouter(services, db, zlog.Named("http"), opts)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		zlog.Info("Server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Could not listen", zap.String("port", cfg.APIPort), zap.Error(err))
		}
	}()

	<-stop // Wait for interrupt signal

	zlog.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
		return
	}
	zlog.Info("Server stopped gracefully")
}
