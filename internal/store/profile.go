package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
)

// ProfileStore defines the contract for social profile persistence.
// The watermark column is written only through AdvanceWatermark so the
// advance-only invariant is enforced in one place.
type ProfileStore interface {
	Create(ctx context.Context, profile *models.SocialProfile) error
	ListByWatchlist(ctx context.Context, watchlistID uuid.UUID) ([]models.SocialProfile, error)

	// AdvanceWatermark sets the profile's watermark to next and stamps
	// last_checked_at, but only if the stored watermark still equals
	// expected (nil meaning unbaselined). Returns false when the
	// compare failed, i.e. a concurrent run already advanced it.
	AdvanceWatermark(ctx context.Context, id uuid.UUID, expected *string, next string, checkedAt time.Time) (bool, error)

	// TouchChecked stamps last_checked_at without touching the
	// watermark. Used on empty fetches and failure paths so a profile
	// is not retried every cycle.
	TouchChecked(ctx context.Context, id uuid.UUID, checkedAt time.Time) error
}

type profileStore struct {
	db *gorm.DB
}

// NewProfileStore creates a gorm-backed profile store
func NewProfileStore(db *gorm.DB) ProfileStore {
	return &profileStore{db: db}
}

func (s *profileStore) Create(ctx context.Context, profile *models.SocialProfile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(profile).Error
}

func (s *profileStore) ListByWatchlist(ctx context.Context, watchlistID uuid.UUID) ([]models.SocialProfile, error) {
	var profiles []models.SocialProfile
	err := s.db.WithContext(ctx).
		Where("watchlist_id = ?", watchlistID).
		Order("created_at").
		Find(&profiles).Error
	return profiles, err
}

func (s *profileStore) AdvanceWatermark(ctx context.Context, id uuid.UUID, expected *string, next string, checkedAt time.Time) (bool, error) {
	tx := s.db.WithContext(ctx).
		Model(&models.SocialProfile{}).
		Where("id = ?", id)

	if expected == nil {
		tx = tx.Where("last_seen_external_id IS NULL")
	} else {
		tx = tx.Where("last_seen_external_id = ?", *expected)
	}

	res := tx.Updates(map[string]interface{}{
		"last_seen_external_id": next,
		"last_checked_at":       checkedAt,
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *profileStore) TouchChecked(ctx context.Context, id uuid.UUID, checkedAt time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.SocialProfile{}).
		Where("id = ?", id).
		Update("last_checked_at", checkedAt).Error
}
