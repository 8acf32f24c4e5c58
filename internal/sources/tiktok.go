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

// TikTokSource calls the scraping provider's TikTok analyzer
type TikTokSource struct {
	baseURL string
	apiKey  string
	client  *resty.Client
}

// NewTikTokSource creates a new TikTok source
func NewTikTokSource(baseURL, apiKey string) *TikTokSource {
	return &TikTokSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  resty.New().SetTimeout(60 * time.Second),
	}
}

func (t *TikTokSource) Network() models.Network {
	return models.NetworkTikTok
}

func (t *TikTokSource) IsEnabled() bool {
	return t.baseURL != "" && t.apiKey != ""
}

func (t *TikTokSource) Analyze(ctx context.Context, handle string) (*Result, error) {
	if !t.IsEnabled() {
		logrus.Debug("TikTok source disabled - missing credentials")
		return nil, fmt.Errorf("tiktok source disabled")
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+t.apiKey).
		SetQueryParam("uniqueId", handle).
		Get(t.baseURL + "/v1/tiktok/profile")

	if err != nil {
		return nil, fmt.Errorf("tiktok analyzer request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("tiktok analyzer returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var result Result
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse tiktok analyzer response: %w", err)
	}

	return &result, nil
}
