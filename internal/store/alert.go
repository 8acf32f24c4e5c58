package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
)

// AlertStore defines the contract for alert persistence. Alerts are
// insert-only; there is deliberately no update or delete.
type AlertStore interface {
	Create(ctx context.Context, alert *models.Alert) error
	ListByWatchlistAndType(ctx context.Context, watchlistID uuid.UUID, alertType models.AlertType) ([]models.Alert, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]models.Alert, error)
}

type alertStore struct {
	db *gorm.DB
}

// NewAlertStore creates a gorm-backed alert store
func NewAlertStore(db *gorm.DB) AlertStore {
	return &alertStore{db: db}
}

func (s *alertStore) Create(ctx context.Context, alert *models.Alert) error {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	return s.db.WithContext(ctx).Create(alert).Error
}

func (s *alertStore) ListByWatchlistAndType(ctx context.Context, watchlistID uuid.UUID, alertType models.AlertType) ([]models.Alert, error) {
	var alerts []models.Alert
	err := s.db.WithContext(ctx).
		Where("watchlist_id = ? AND type = ?", watchlistID, alertType).
		Find(&alerts).Error
	return alerts, err
}

func (s *alertStore) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Alert, error) {
	var alerts []models.Alert
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&alerts).Error
	return alerts, err
}
