package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/storage"
)

// GoogleSource reads competitor reviews from the reviews platform. It
// triggers a fresh analysis upstream (best effort) and then loads the
// previously-stored raw snapshot for the place, since review scraping
// completes asynchronously.
type GoogleSource struct {
	baseURL   string
	apiKey    string
	client    *resty.Client
	snapshots storage.SnapshotStore
}

// NewGoogleSource creates a new reviews-platform source
func NewGoogleSource(baseURL, apiKey string, snapshots storage.SnapshotStore) *GoogleSource {
	return &GoogleSource{
		baseURL:   baseURL,
		apiKey:    apiKey,
		client:    resty.New().SetTimeout(30 * time.Second),
		snapshots: snapshots,
	}
}

func (g *GoogleSource) Network() models.Network {
	return models.NetworkGoogle
}

func (g *GoogleSource) IsEnabled() bool {
	return g.snapshots != nil
}

func (g *GoogleSource) Analyze(ctx context.Context, placeID string) (*Result, error) {
	if !g.IsEnabled() {
		return nil, fmt.Errorf("google source disabled - no snapshot store configured")
	}

	g.triggerRefresh(ctx, placeID)

	data, err := g.snapshots.Retrieve(SnapshotKey(placeID))
	if err != nil {
		return nil, fmt.Errorf("failed to load review snapshot for place %s: %w", placeID, err)
	}

	rawData, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode review snapshot for place %s: %w", placeID, err)
	}

	return &Result{RawData: rawData}, nil
}

// triggerRefresh asks the scraping provider to re-analyze the place.
// The refreshed snapshot lands on a later cycle, so failures here only
// warn.
func (g *GoogleSource) triggerRefresh(ctx context.Context, placeID string) {
	if g.baseURL == "" {
		return
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+g.apiKey).
		SetQueryParam("placeId", placeID).
		Post(g.baseURL + "/v1/google/reviews/refresh")

	if err != nil {
		logrus.Warnf("Failed to trigger review refresh for place %s: %v", placeID, err)
		return
	}
	if resp.StatusCode() >= 300 {
		logrus.Warnf("Review refresh for place %s returned status %d", placeID, resp.StatusCode())
	}
}

// SnapshotKey is the blob key under which a place's raw review
// snapshot is stored.
func SnapshotKey(placeID string) string {
	return fmt.Sprintf("snapshots/google/%s.json", placeID)
}

// decodeSnapshot accepts either a bare review array or an object
// wrapping one; upstream has stored both shapes over time.
func decodeSnapshot(data []byte) (map[string]interface{}, error) {
	var asObject map[string]interface{}
	if err := json.Unmarshal(data, &asObject); err == nil {
		return asObject, nil
	}

	var asArray []interface{}
	if err := json.Unmarshal(data, &asArray); err == nil {
		return map[string]interface{}{"reviews": asArray}, nil
	}

	return nil, fmt.Errorf("snapshot is neither a review array nor an object")
}
