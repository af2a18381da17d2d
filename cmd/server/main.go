package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskman/internal/cache"
	"taskman/internal/config"
	"taskman/internal/controller"
	"taskman/internal/database"
	"taskman/internal/queue"
	"taskman/internal/ratelimit"
	"taskman/internal/repository"
	"taskman/internal/routes"
	"taskman/internal/worker"
	"taskman/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	ctx := context.Background()
	config.Get()

	db := database.InitDB(ctx)
	if db == nil {
		logger.Error(ctx, "Database not available; exiting")
		os.Exit(1)
	}
	if err := database.MigrateOrCreateSchema(ctx); err != nil {
		logger.Error(ctx, "Schema migration failed", "error", err)
		os.Exit(1)
	}

	// Pre-warm Redis (optional; cache and rate limiter fail open)
	cache.Client(ctx)

	// Pre-warm Kafka producer and ensure topic exists
	queue.Producer(ctx)
	queue.EnsureTopic(ctx)

	// Audit worker consumes task events in the background until shutdown
	workerCtx, stopWorker := context.WithCancel(ctx)
	go worker.Run(workerCtx)

	tasks := controller.NewTaskController(repository.NewTaskRepository(db))
	auth := controller.NewAuthController(repository.NewUserRepository(db))

	server := &http.Server{
		Addr:         ":" + config.Get().HTTPPort,
		Handler:      routes.Router(tasks, auth, ratelimit.NewLoginLimiter(), ratelimit.NewAPILimiter()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", config.Get().HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")
	stopWorker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	logger.Info(ctx, "Server stopped")
}
