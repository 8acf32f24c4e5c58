package monitoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/config"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/sources"
)

// stubAnalyzer returns a canned payload for any handle
type stubAnalyzer struct {
	network    models.Network
	enabled    bool
	result     *sources.Result
	err        error
	lastHandle string
}

func (s *stubAnalyzer) Network() models.Network { return s.network }
func (s *stubAnalyzer) IsEnabled() bool         { return s.enabled }

func (s *stubAnalyzer) Analyze(ctx context.Context, handle string) (*sources.Result, error) {
	s.lastHandle = handle
	return s.result, s.err
}

func newInstagramAdapter(result *sources.Result) (*adapter, *stubAnalyzer) {
	analyzer := &stubAnalyzer{network: models.NetworkInstagram, enabled: true, result: result}
	return &adapter{cfg: instagramAdapterConfig(), source: analyzer}, analyzer
}

func TestAdapter_FetchItemsExtractsCandidateFields(t *testing.T) {
	a, _ := newInstagramAdapter(&sources.Result{
		RawData: map[string]interface{}{
			"posts": []interface{}{
				map[string]interface{}{
					// alternate field spellings for the same concepts
					"shortcode":     "Cxyz",
					"taken_at":      float64(1700000000), // epoch seconds
					"caption":       "grand opening!",
					"like_count":    float64(250),
					"comment_count": float64(12),
				},
			},
		},
	})

	entry := testEntry()
	profile := testProfile(entry, models.NetworkInstagram, "")

	items, err := a.FetchItems(context.Background(), entry, profile)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "Cxyz", item.ID)
	assert.Equal(t, int64(1700000000000), item.TimestampMS)
	assert.Equal(t, "grand opening!", item.Text)
	assert.Equal(t, int64(250), item.Metric(models.MetaLikes))
	assert.Equal(t, int64(12), item.Metric(models.MetaComments))
	// payload carried no URL: the deep-link fallback kicks in
	assert.Equal(t, "https://www.instagram.com/p/Cxyz/", item.URL)
}

func TestAdapter_FetchItemsMergesArraysSortsAndDedupes(t *testing.T) {
	a, _ := newInstagramAdapter(&sources.Result{
		RawData: map[string]interface{}{
			"posts": []interface{}{
				map[string]interface{}{"id": "p1", "timestamp": float64(1000000000)},
				map[string]interface{}{"id": "p3", "timestamp": float64(1000000200)},
			},
			"reels": []interface{}{
				map[string]interface{}{"id": "p2", "timestamp": float64(1000000100)},
				// same item surfaced through a second array
				map[string]interface{}{"id": "p3", "timestamp": float64(1000000200)},
			},
		},
	})

	entry := testEntry()
	profile := testProfile(entry, models.NetworkInstagram, "")

	items, err := a.FetchItems(context.Background(), entry, profile)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "p3", items[0].ID)
	assert.Equal(t, "p2", items[1].ID)
	assert.Equal(t, "p1", items[2].ID)
}

func TestAdapter_FetchItemsReadsProfileSection(t *testing.T) {
	a, _ := newInstagramAdapter(&sources.Result{
		Profile: map[string]interface{}{
			"latestPosts": []interface{}{
				map[string]interface{}{"id": "p1", "timestamp": float64(1000000000), "url": "https://example.com/p1"},
			},
		},
	})

	entry := testEntry()
	profile := testProfile(entry, models.NetworkInstagram, "")

	items, err := a.FetchItems(context.Background(), entry, profile)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://example.com/p1", items[0].URL)
}

func TestAdapter_GoogleFetchesByPlaceID(t *testing.T) {
	cfg := &config.Config{NegativeReviewThreshold: 3}
	analyzer := &stubAnalyzer{
		network: models.NetworkGoogle,
		enabled: true,
		result: &sources.Result{
			RawData: map[string]interface{}{
				"data": map[string]interface{}{
					"reviews": []interface{}{
						map[string]interface{}{
							"review_id":    "r1",
							"published_at": "2024-04-01T12:00:00Z",
							"stars":        float64(2),
							"text":         "cold food",
						},
					},
				},
			},
		},
	}
	a := &adapter{cfg: googleAdapterConfig(cfg), source: analyzer}

	entry := testEntry()
	profile := testProfile(entry, models.NetworkGoogle, "")
	profile.Handle = ""

	items, err := a.FetchItems(context.Background(), entry, profile)
	require.NoError(t, err)

	// the reviews platform is queried by place id, not profile handle
	assert.Equal(t, entry.PlaceID, analyzer.lastHandle)

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "r1", item.ID)
	assert.Equal(t, float64(2), item.Rating)
	assert.Equal(t, "cold food", item.Text)

	alertType, escalate := a.SeverityAlertType(item)
	assert.True(t, escalate)
	assert.Equal(t, models.AlertNegativeReview, alertType)

	_, trendingEnabled := a.TrendingMetric()
	assert.False(t, trendingEnabled)
}

func TestAdapter_SeverityAlertType(t *testing.T) {
	cfg := &config.Config{NegativeReviewThreshold: 3}
	a := &adapter{cfg: googleAdapterConfig(cfg)}

	tests := []struct {
		name     string
		rating   float64
		escalate bool
	}{
		{"Rating at threshold escalates", 3, true},
		{"Rating below threshold escalates", 1, true},
		{"Rating above threshold does not", 4, false},
		{"Missing rating does not", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, escalate := a.SeverityAlertType(Item{Rating: tt.rating})
			assert.Equal(t, tt.escalate, escalate)
		})
	}
}

func TestAdapter_FetchItemsErrorsWithoutHandle(t *testing.T) {
	a, _ := newInstagramAdapter(&sources.Result{})

	entry := testEntry()
	profile := testProfile(entry, models.NetworkInstagram, "")
	profile.Handle = ""

	_, err := a.FetchItems(context.Background(), entry, profile)
	assert.Error(t, err)
}

func TestNewAdapters_SkipsDisabledAnalyzers(t *testing.T) {
	cfg := &config.Config{NegativeReviewThreshold: 3}

	instagram := &stubAnalyzer{network: models.NetworkInstagram, enabled: true}
	tiktok := &stubAnalyzer{network: models.NetworkTikTok, enabled: false}

	adapters := NewAdapters(cfg, instagram, tiktok)

	assert.Contains(t, adapters, models.NetworkInstagram)
	assert.NotContains(t, adapters, models.NetworkTikTok)
}

func TestFirstTimestampMillis(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]interface{}
		keys     []string
		expected int64
	}{
		{
			name:     "Epoch seconds are normalized to milliseconds",
			raw:      map[string]interface{}{"timestamp": float64(1700000000)},
			keys:     []string{"timestamp"},
			expected: 1700000000000,
		},
		{
			name:     "Epoch milliseconds pass through",
			raw:      map[string]interface{}{"timestamp": float64(1700000000000)},
			keys:     []string{"timestamp"},
			expected: 1700000000000,
		},
		{
			name:     "RFC3339 strings parse",
			raw:      map[string]interface{}{"publishedAt": "2023-11-14T22:13:20Z"},
			keys:     []string{"publishedAt"},
			expected: 1700000000000,
		},
		{
			name:     "Later candidates are tried in order",
			raw:      map[string]interface{}{"create_time": float64(1700000000)},
			keys:     []string{"createTime", "create_time"},
			expected: 1700000000000,
		},
		{
			name:     "No usable candidate yields zero",
			raw:      map[string]interface{}{"timestamp": "not a date"},
			keys:     []string{"timestamp"},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, firstTimestampMillis(tt.raw, tt.keys))
		})
	}
}

func TestLookupPath(t *testing.T) {
	m := map[string]interface{}{
		"result": map[string]interface{}{
			"reviews": []interface{}{"a"},
		},
	}

	arr, ok := lookupArray(m, "result.reviews")
	require.True(t, ok)
	assert.Len(t, arr, 1)

	_, ok = lookupArray(m, "result.missing")
	assert.False(t, ok)

	_, ok = lookupArray(m, "reviews")
	assert.False(t, ok)
}

func TestFirstNumber(t *testing.T) {
	m := map[string]interface{}{
		"likes":  "1234",
		"rating": float64(4.5),
	}

	v, ok := firstNumber(m, []string{"likesCount", "likes"})
	require.True(t, ok)
	assert.Equal(t, float64(1234), v)

	v, ok = firstNumber(m, []string{"rating"})
	require.True(t, ok)
	assert.Equal(t, 4.5, v)

	_, ok = firstNumber(m, []string{"absent"})
	assert.False(t, ok)
}
