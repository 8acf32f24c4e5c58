package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Network identifies one of the monitored data sources
type Network string

const (
	NetworkGoogle    Network = "google"
	NetworkInstagram Network = "instagram"
	NetworkTikTok    Network = "tiktok"
	NetworkYouTube   Network = "youtube"
)

// AlertType classifies an emitted alert
type AlertType string

const (
	AlertNewReview      AlertType = "new_review"
	AlertNegativeReview AlertType = "negative_review"
	AlertNewPost        AlertType = "new_post"
	AlertTrendingPost   AlertType = "trending_post"
)

// WatchlistEntry represents a competitor business a user is tracking.
// Entries are deactivated rather than deleted when tracking stops.
type WatchlistEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	PlaceID   string    `gorm:"column:place_id;not null" json:"place_id"`
	Name      string    `gorm:"not null" json:"name"`
	Active    bool      `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profiles []SocialProfile `gorm:"foreignKey:WatchlistID" json:"profiles,omitempty"`
}

func (WatchlistEntry) TableName() string {
	return "watchlist_entries"
}

// SocialProfile is one (watchlist entry, network) pair configured for
// monitoring. LastSeenExternalID is the watermark: nil until baseline
// establishment, afterwards the id of the newest content item observed.
// Mutated exclusively by the diff engine, and only ever advances.
type SocialProfile struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WatchlistID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"watchlist_id"`
	Network            Network    `gorm:"not null" json:"network"`
	Handle             string     `gorm:"not null" json:"handle"`
	LastSeenExternalID *string    `gorm:"column:last_seen_external_id" json:"last_seen_external_id"`
	LastCheckedAt      *time.Time `gorm:"column:last_checked_at" json:"last_checked_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (SocialProfile) TableName() string {
	return "social_profiles"
}

// Alert is an emitted notification. Alerts are never mutated after
// creation; they form the audit trail consumed by downstream delivery.
type Alert struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	WatchlistID uuid.UUID         `gorm:"type:uuid;not null;index" json:"watchlist_id"`
	Type        AlertType         `gorm:"not null;index" json:"type"`
	Title       string            `gorm:"not null" json:"title"`
	Message     string            `json:"message"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}

func (Alert) TableName() string {
	return "alerts"
}

// Keys used in the Alert metadata bag.
const (
	MetaNetwork         = "network"
	MetaExternalID      = "externalId"
	MetaRating          = "rating"
	MetaLikes           = "likes"
	MetaComments        = "comments"
	MetaShares          = "shares"
	MetaViews           = "views"
	MetaPostedAgo       = "postedAgo"
	MetaURL             = "url"
	MetaInitialBaseline = "initialBaseline"
)

// RunOptions scopes a single monitoring invocation.
type RunOptions struct {
	// WatchlistID restricts the run to a single watchlist entry.
	WatchlistID *uuid.UUID `json:"watchlist_id,omitempty"`
	// InitialBaseline forces every profile through the baseline path
	// regardless of its watermark. Used for one-time backfills/seeding.
	InitialBaseline bool `json:"initial_baseline"`
}

// RunResult summarizes a monitoring invocation. Processed counts
// watchlist entries attempted, not profiles.
type RunResult struct {
	Processed     int      `json:"processed"`
	AlertsCreated int      `json:"alerts_created"`
	Errors        []string `json:"errors"`
}

// Digest is a periodic summary of persisted alerts, built for
// downstream delivery. The monitoring core never produces one.
type Digest struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Period      string                 `json:"period"`
	TotalAlerts int                    `json:"total_alerts"`
	Alerts      []Alert                `json:"alerts"`
	Summary     map[string]interface{} `json:"summary"`
}
