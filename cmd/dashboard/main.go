package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/config"
	"github.com/brandsignal/attribution-dashboard/internal/dashboard"
	"github.com/brandsignal/attribution-dashboard/internal/feed"
	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/brandsignal/attribution-dashboard/internal/scheduler"
	"github.com/brandsignal/attribution-dashboard/internal/sources"
	"github.com/brandsignal/attribution-dashboard/internal/state"
	"github.com/brandsignal/attribution-dashboard/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// logSink feeds store events into the notification service. The dashboard is
// headless, so render hooks only log at debug level; API clients read
// snapshots instead.
type logSink struct {
	notifier notifications.Notifier
}

func (s logSink) Notify(level notifications.Level, message string) {
	s.notifier.Notify(level, message)
}

func (s logSink) Render() {
	logrus.Debug("State changed, snapshot updated")
}

func (s logSink) RenderFeed() {
	logrus.Debug("Live feed changed, snapshot updated")
}

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting Attribution Dashboard")

	// Initialize local state persistence
	fileStore, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		logrus.Fatalf("Failed to initialize local storage: %v", err)
	}

	// Initialize notification service
	notificationService := notifications.NewService(cfg)

	// Initialize the state store and load persisted state
	store := state.NewStore(fileStore, cfg.StateKey, logSink{notifier: notificationService})
	store.Load()

	if store.Snapshot().Brand.Name == "" && cfg.BrandName != "" {
		store.SetBrand(models.BrandConfig{
			Name:     cfg.BrandName,
			Website:  cfg.BrandWebsite,
			Keywords: cfg.BrandKeywords,
		})
	}

	// Initialize backend API client
	client := sources.NewClient(cfg.BackendURL, cfg.RequestTimeout)

	// Initialize live feed engine
	feedEngine := feed.NewEngine(store, client, notificationService,
		store.Snapshot().Brand.Name, cfg.DaysBack, cfg.FeedPollInterval)

	// Initialize dashboard service
	dashboardService := dashboard.NewService(cfg, store, feedEngine, client,
		notificationService, notificationService)

	// Mirror backups to Azure when a storage account is configured
	if cfg.StorageAccount != "" {
		azureStore, err := storage.NewAzureStore(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Warnf("Failed to initialize Azure backup storage: %v", err)
		} else {
			dashboardService.UseBackupStorage(azureStore)
		}
	}

	// Root context cancelled on shutdown stops the feed poller
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the feed and begin polling if it is active
	feedEngine.Initialize(ctx)
	if store.FeedActive() {
		feedEngine.Start(ctx)
	}

	// Initialize scheduler
	schedulerService := scheduler.NewService(cfg, dashboardService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up HTTP server
	router := newRouter(ctx, store, feedEngine, dashboardService, client)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	cancel()
	feedEngine.Stop()

	// Create a deadline for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
