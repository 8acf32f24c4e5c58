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

// InstagramSource calls the scraping provider's Instagram analyzer
type InstagramSource struct {
	baseURL string
	apiKey  string
	client  *resty.Client
}

// NewInstagramSource creates a new Instagram source
func NewInstagramSource(baseURL, apiKey string) *InstagramSource {
	return &InstagramSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  resty.New().SetTimeout(60 * time.Second),
	}
}

func (i *InstagramSource) Network() models.Network {
	return models.NetworkInstagram
}

func (i *InstagramSource) IsEnabled() bool {
	return i.baseURL != "" && i.apiKey != ""
}

func (i *InstagramSource) Analyze(ctx context.Context, handle string) (*Result, error) {
	if !i.IsEnabled() {
		logrus.Debug("Instagram source disabled - missing credentials")
		return nil, fmt.Errorf("instagram source disabled")
	}

	resp, err := i.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+i.apiKey).
		SetQueryParam("username", handle).
		Get(i.baseURL + "/v1/instagram/profile")

	if err != nil {
		return nil, fmt.Errorf("instagram analyzer request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("instagram analyzer returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var result Result
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse instagram analyzer response: %w", err)
	}

	return &result, nil
}
