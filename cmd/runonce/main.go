package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/config"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/monitoring"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/sources"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/storage"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/store"
)

// One-shot monitoring run from the command line. Useful for manual
// backfills and for verifying a deployment without waiting for cron.
func main() {
	watchlistFlag := flag.String("watchlist", "", "restrict the run to a single watchlist entry id")
	baselineFlag := flag.Bool("baseline", false, "force the initial-baseline path for every profile")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	var snapshots storage.SnapshotStore
	if cfg.StorageAccount != "" {
		snapshots, err = storage.NewAzureStorage(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			log.Fatalf("Failed to initialize snapshot storage: %v", err)
		}
	}

	adapters := monitoring.NewAdapters(cfg,
		sources.NewGoogleSource(cfg.ScraperAPIURL, cfg.ScraperAPIKey, snapshots),
		sources.NewInstagramSource(cfg.ScraperAPIURL, cfg.ScraperAPIKey),
		sources.NewTikTokSource(cfg.ScraperAPIURL, cfg.ScraperAPIKey),
		sources.NewYouTubeSource(cfg.ScraperAPIURL, cfg.ScraperAPIKey),
	)

	service := monitoring.NewService(cfg,
		store.NewWatchlistStore(db),
		store.NewProfileStore(db),
		store.NewAlertStore(db),
		adapters,
	)

	opts := models.RunOptions{InitialBaseline: *baselineFlag}
	if *watchlistFlag != "" {
		id, err := uuid.Parse(*watchlistFlag)
		if err != nil {
			log.Fatalf("Invalid watchlist id %q: %v", *watchlistFlag, err)
		}
		opts.WatchlistID = &id
	}

	result := service.Run(context.Background(), opts)

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
