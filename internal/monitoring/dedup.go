package monitoring

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/store"
)

// Deduplicator guards baseline-alert creation. Steady-state alerts are
// never deduplicated here; the advancing watermark already is the dedup
// mechanism for those.
type Deduplicator struct {
	alerts store.AlertStore
}

// NewDeduplicator creates a new baseline-alert deduplicator
func NewDeduplicator(alerts store.AlertStore) *Deduplicator {
	return &Deduplicator{alerts: alerts}
}

// Exists reports whether a baseline alert was already emitted for the
// (watchlist, network) pair, so repeated baseline runs stay idempotent.
func (d *Deduplicator) Exists(ctx context.Context, userID, watchlistID uuid.UUID, network models.Network, alertType models.AlertType) (bool, error) {
	existing, err := d.alerts.ListByWatchlistAndType(ctx, watchlistID, alertType)
	if err != nil {
		return false, fmt.Errorf("failed to query existing alerts: %w", err)
	}

	for _, alert := range existing {
		if alert.UserID != userID || alert.Metadata == nil {
			continue
		}
		baseline, _ := alert.Metadata[models.MetaInitialBaseline].(bool)
		net, _ := alert.Metadata[models.MetaNetwork].(string)
		if baseline && net == string(network) {
			return true, nil
		}
	}
	return false, nil
}
