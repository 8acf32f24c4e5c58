package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/config"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/monitoring"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/notifications"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/scheduler"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/sources"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/storage"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/store"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting competitor monitoring service")

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	watchlists := store.NewWatchlistStore(db)
	profiles := store.NewProfileStore(db)
	alerts := store.NewAlertStore(db)

	// Snapshot storage backs the reviews-platform source; without it
	// the google adapter stays disabled and social monitoring runs on.
	var snapshots storage.SnapshotStore
	if cfg.StorageAccount != "" {
		snapshots, err = storage.NewAzureStorage(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize snapshot storage: %v", err)
		}
	} else {
		logrus.Warn("AZURE_STORAGE_ACCOUNT not set - review monitoring disabled")
	}

	adapters := monitoring.NewAdapters(cfg,
		sources.NewGoogleSource(cfg.ScraperAPIURL, cfg.ScraperAPIKey, snapshots),
		sources.NewInstagramSource(cfg.ScraperAPIURL, cfg.ScraperAPIKey),
		sources.NewTikTokSource(cfg.ScraperAPIURL, cfg.ScraperAPIKey),
		sources.NewYouTubeSource(cfg.ScraperAPIURL, cfg.ScraperAPIKey),
	)

	monitoringService := monitoring.NewService(cfg, watchlists, profiles, alerts, adapters)
	notificationService := notifications.NewService(cfg)

	schedulerService := scheduler.NewService(cfg, monitoringService, notificationService, alerts)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(monitoringService)).Methods("GET")
	router.HandleFunc("/trigger", triggerHandler(monitoringService)).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(monitoringService.GetMetrics()))
	}
}

// triggerHandler runs a monitoring invocation synchronously and returns
// the run result, so admin backfills see their errors immediately.
func triggerHandler(monitoringService *monitoring.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := models.RunOptions{
			InitialBaseline: r.URL.Query().Get("initial_baseline") == "true",
		}
		if raw := r.URL.Query().Get("watchlist_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				http.Error(w, `{"error":"invalid watchlist_id"}`, http.StatusBadRequest)
				return
			}
			opts.WatchlistID = &id
		}

		result := monitoringService.Run(r.Context(), opts)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(result)
	}
}
