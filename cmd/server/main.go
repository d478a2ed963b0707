package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asoma0710/message-search-engine/pkg/config"
	"github.com/asoma0710/message-search-engine/pkg/di"
	"github.com/asoma0710/message-search-engine/pkg/logger"
	"github.com/asoma0710/message-search-engine/pkg/observability"
	"github.com/asoma0710/message-search-engine/pkg/router"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.New()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting message search engine", "version", os.Getenv("APP_VERSION"))

	// Set up tracing and the Prometheus meter provider
	shutdownTracing := observability.SetupTracing("message-search-engine")
	defer shutdownTracing()
	observability.SetupMetrics()

	// Initialize dependency injection container
	container := di.New(logConfig)

	// Initialize and setup router
	r := router.New(container)
	r.SetupRoutes()

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Preload the cache and keep it warm in the background
	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	go container.Refresher.Run(refreshCtx)

	// Periodic component health checks
	container.Health.Start()

	// Start the server in a goroutine
	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal
	<-quit
	log.Info("Shutting down server...")

	stopRefresh()

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	log.Info("Server exited gracefully")
}
