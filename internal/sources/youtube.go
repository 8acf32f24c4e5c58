package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
)

// YouTubeSource calls the scraping provider's YouTube channel analyzer
type YouTubeSource struct {
	baseURL string
	apiKey  string
	client  *resty.Client
}

// NewYouTubeSource creates a new YouTube source
func NewYouTubeSource(baseURL, apiKey string) *YouTubeSource {
	return &YouTubeSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  resty.New().SetTimeout(60 * time.Second),
	}
}

func (y *YouTubeSource) Network() models.Network {
	return models.NetworkYouTube
}

func (y *YouTubeSource) IsEnabled() bool {
	return y.baseURL != "" && y.apiKey != ""
}

func (y *YouTubeSource) Analyze(ctx context.Context, handle string) (*Result, error) {
	if !y.IsEnabled() {
		logrus.Debug("YouTube source disabled - missing credentials")
		return nil, fmt.Errorf("youtube source disabled")
	}

	resp, err := y.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+y.apiKey).
		SetQueryParam("channel", handle).
		Get(y.baseURL + "/v1/youtube/channel")

	if err != nil {
		return nil, fmt.Errorf("youtube analyzer request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("youtube analyzer returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var result Result
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse youtube analyzer response: %w", err)
	}

	return &result, nil
}
