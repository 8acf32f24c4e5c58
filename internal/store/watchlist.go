package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
)

// WatchlistStore defines the contract for watchlist entry persistence
type WatchlistStore interface {
	Create(ctx context.Context, entry *models.WatchlistEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WatchlistEntry, error)
	ListActive(ctx context.Context) ([]models.WatchlistEntry, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type watchlistStore struct {
	db *gorm.DB
}

// NewWatchlistStore creates a gorm-backed watchlist store
func NewWatchlistStore(db *gorm.DB) WatchlistStore {
	return &watchlistStore{db: db}
}

func (s *watchlistStore) Create(ctx context.Context, entry *models.WatchlistEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *watchlistStore) GetByID(ctx context.Context, id uuid.UUID) (*models.WatchlistEntry, error) {
	var entry models.WatchlistEntry
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("watchlist entry %s not found", id)
		}
		return nil, err
	}
	return &entry, nil
}

func (s *watchlistStore) ListActive(ctx context.Context) ([]models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	err := s.db.WithContext(ctx).Where("active = ?", true).Order("created_at").Find(&entries).Error
	return entries, err
}

func (s *watchlistStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&models.WatchlistEntry{}).
		Where("id = ?", id).
		Update("active", false).Error
}
