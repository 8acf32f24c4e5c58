package monitoring

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
)

var errNotFound = errors.New("watchlist entry not found")

// In-memory fakes for the engine's collaborators.

type fakeProfileStore struct {
	profiles   map[uuid.UUID]*models.SocialProfile
	casFail    bool
	advanceErr error
	touchErr   error
	touched    int
}

func newFakeProfileStore(profiles ...*models.SocialProfile) *fakeProfileStore {
	f := &fakeProfileStore{profiles: make(map[uuid.UUID]*models.SocialProfile)}
	for _, p := range profiles {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeProfileStore) Create(ctx context.Context, profile *models.SocialProfile) error {
	f.profiles[profile.ID] = profile
	return nil
}

func (f *fakeProfileStore) ListByWatchlist(ctx context.Context, watchlistID uuid.UUID) ([]models.SocialProfile, error) {
	var out []models.SocialProfile
	for _, p := range f.profiles {
		if p.WatchlistID == watchlistID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProfileStore) AdvanceWatermark(ctx context.Context, id uuid.UUID, expected *string, next string, checkedAt time.Time) (bool, error) {
	if f.advanceErr != nil {
		return false, f.advanceErr
	}
	if f.casFail {
		return false, nil
	}

	profile, ok := f.profiles[id]
	if !ok {
		return false, nil
	}
	if (expected == nil) != (profile.LastSeenExternalID == nil) {
		return false, nil
	}
	if expected != nil && *expected != *profile.LastSeenExternalID {
		return false, nil
	}

	watermark := next
	profile.LastSeenExternalID = &watermark
	profile.LastCheckedAt = &checkedAt
	return true, nil
}

func (f *fakeProfileStore) TouchChecked(ctx context.Context, id uuid.UUID, checkedAt time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched++
	if profile, ok := f.profiles[id]; ok {
		profile.LastCheckedAt = &checkedAt
	}
	return nil
}

type fakeAlertStore struct {
	alerts    []models.Alert
	createErr error
}

func (f *fakeAlertStore) Create(ctx context.Context, alert *models.Alert) error {
	if f.createErr != nil {
		return f.createErr
	}
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	f.alerts = append(f.alerts, *alert)
	return nil
}

func (f *fakeAlertStore) ListByWatchlistAndType(ctx context.Context, watchlistID uuid.UUID, alertType models.AlertType) ([]models.Alert, error) {
	var out []models.Alert
	for _, a := range f.alerts {
		if a.WatchlistID == watchlistID && a.Type == alertType {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlertStore) ListCreatedSince(ctx context.Context, since time.Time) ([]models.Alert, error) {
	var out []models.Alert
	for _, a := range f.alerts {
		if !a.CreatedAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlertStore) byType(alertType models.AlertType) []models.Alert {
	var out []models.Alert
	for _, a := range f.alerts {
		if a.Type == alertType {
			out = append(out, a)
		}
	}
	return out
}

type fakeWatchlistStore struct {
	entries []models.WatchlistEntry
	listErr error
}

func (f *fakeWatchlistStore) Create(ctx context.Context, entry *models.WatchlistEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeWatchlistStore) GetByID(ctx context.Context, id uuid.UUID) (*models.WatchlistEntry, error) {
	for i := range f.entries {
		if f.entries[i].ID == id {
			return &f.entries[i], nil
		}
	}
	return nil, errNotFound
}

func (f *fakeWatchlistStore) ListActive(ctx context.Context) ([]models.WatchlistEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.WatchlistEntry
	for _, e := range f.entries {
		if e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeWatchlistStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries[i].Active = false
		}
	}
	return nil
}

// stubAdapter is a scripted NetworkAdapter
type stubAdapter struct {
	network           models.Network
	novelty           models.AlertType
	items             []Item
	err               error
	itemsByHandle     map[string][]Item
	errByHandle       map[string]error
	severityThreshold float64
	trendingMetric    string
}

func (s *stubAdapter) Network() models.Network {
	return s.network
}

func (s *stubAdapter) NoveltyAlertType() models.AlertType {
	return s.novelty
}

func (s *stubAdapter) FetchItems(ctx context.Context, entry *models.WatchlistEntry, profile *models.SocialProfile) ([]Item, error) {
	if s.errByHandle != nil {
		if err, ok := s.errByHandle[profile.Handle]; ok {
			return nil, err
		}
	}
	if s.itemsByHandle != nil {
		if items, ok := s.itemsByHandle[profile.Handle]; ok {
			return items, nil
		}
	}
	return s.items, s.err
}

func (s *stubAdapter) SeverityAlertType(item Item) (models.AlertType, bool) {
	if s.severityThreshold > 0 && item.Rating > 0 && item.Rating <= s.severityThreshold {
		return models.AlertNegativeReview, true
	}
	return "", false
}

func (s *stubAdapter) TrendingMetric() (string, bool) {
	return s.trendingMetric, s.trendingMetric != ""
}
