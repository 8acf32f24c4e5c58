package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/config"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/store"
)

// Seeds a watchlist entry plus its social profiles, e.g.:
//
//	seed -user <uuid> -place ChIJxxx -name "Joe's Pizza" \
//	     -profiles instagram=joespizza,tiktok=joespizza,google=
func main() {
	userFlag := flag.String("user", "", "owning user id (uuid)")
	placeFlag := flag.String("place", "", "competitor place identifier")
	nameFlag := flag.String("name", "", "competitor display name")
	profilesFlag := flag.String("profiles", "", "comma-separated network=handle pairs")
	flag.Parse()

	// .env is optional; real environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		log.Fatalf("Invalid -user: %v", err)
	}
	if *nameFlag == "" {
		log.Fatal("-name is required")
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ctx := context.Background()
	watchlists := store.NewWatchlistStore(db)
	profiles := store.NewProfileStore(db)

	entry := &models.WatchlistEntry{
		UserID:  userID,
		PlaceID: *placeFlag,
		Name:    *nameFlag,
		Active:  true,
	}
	if err := watchlists.Create(ctx, entry); err != nil {
		log.Fatalf("Failed to create watchlist entry: %v", err)
	}
	fmt.Printf("Created watchlist entry %s\n", entry.ID)

	if *profilesFlag == "" {
		return
	}

	for _, pair := range strings.Split(*profilesFlag, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			log.Fatalf("Invalid -profiles pair %q, want network=handle", pair)
		}

		profile := &models.SocialProfile{
			WatchlistID: entry.ID,
			Network:     models.Network(parts[0]),
			Handle:      parts[1],
		}
		if err := profiles.Create(ctx, profile); err != nil {
			log.Fatalf("Failed to create %s profile: %v", parts[0], err)
		}
		fmt.Printf("Created %s profile %s\n", parts[0], profile.ID)
	}
}
