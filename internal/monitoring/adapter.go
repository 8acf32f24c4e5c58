package monitoring

import (
	"context"
	"fmt"
	"sort"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/config"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/sources"
)

// Item is the canonical content item a network adapter extracts from an
// analyzer payload. ID may be empty when upstream reported no usable
// identifier.
type Item struct {
	ID          string
	TimestampMS int64
	Metrics     map[string]int64
	Rating      float64
	Text        string
	URL         string
}

// Metric returns a named engagement count, zero when absent
func (it Item) Metric(name string) int64 {
	return it.Metrics[name]
}

// NetworkAdapter is the capability interface the diff engine is written
// against. One generic implementation serves all networks; only the
// per-network field configuration differs.
type NetworkAdapter interface {
	Network() models.Network
	NoveltyAlertType() models.AlertType
	FetchItems(ctx context.Context, entry *models.WatchlistEntry, profile *models.SocialProfile) ([]Item, error)
	// SeverityAlertType reports an escalation alert type for an item
	// (negative reviews), layered on top of plain novelty detection.
	SeverityAlertType(item Item) (models.AlertType, bool)
	// TrendingMetric names the primary engagement metric used for the
	// trending escalation; ok=false disables it for this network.
	TrendingMetric() (string, bool)
}

// adapterConfig is the data-driven description of one network's payload
// shape: candidate item-array paths and ordered field-name candidates.
type adapterConfig struct {
	network     models.Network
	noveltyType models.AlertType

	// usePlaceID fetches by the watchlist entry's place identifier
	// instead of the profile handle (reviews platform).
	usePlaceID bool

	itemPaths    []string
	idFields     []string
	timeFields   []string
	textFields   []string
	urlFields    []string
	ratingFields []string

	// metricFields maps canonical metric names to candidate field names
	metricFields map[string][]string

	trendingMetric    string
	severityThreshold float64

	// itemURL builds a deep link when the payload carries none
	itemURL func(handle, id string) string
}

type adapter struct {
	cfg    adapterConfig
	source sources.Analyzer
}

var _ NetworkAdapter = (*adapter)(nil)

func (a *adapter) Network() models.Network {
	return a.cfg.network
}

func (a *adapter) NoveltyAlertType() models.AlertType {
	return a.cfg.noveltyType
}

func (a *adapter) SeverityAlertType(item Item) (models.AlertType, bool) {
	if a.cfg.severityThreshold > 0 && item.Rating > 0 && item.Rating <= a.cfg.severityThreshold {
		return models.AlertNegativeReview, true
	}
	return "", false
}

func (a *adapter) TrendingMetric() (string, bool) {
	return a.cfg.trendingMetric, a.cfg.trendingMetric != ""
}

func (a *adapter) FetchItems(ctx context.Context, entry *models.WatchlistEntry, profile *models.SocialProfile) ([]Item, error) {
	handle := profile.Handle
	if a.cfg.usePlaceID && entry != nil && entry.PlaceID != "" {
		handle = entry.PlaceID
	}
	if handle == "" {
		return nil, fmt.Errorf("profile %s has no handle configured", profile.ID)
	}

	result, err := a.source.Analyze(ctx, handle)
	if err != nil {
		return nil, err
	}

	raws := a.collectRawItems(result)

	items := make([]Item, 0, len(raws))
	for _, raw := range raws {
		items = append(items, a.extractItem(handle, raw))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TimestampMS > items[j].TimestampMS
	})

	return dedupeItems(items), nil
}

// collectRawItems merges every candidate item array found in the
// analyzer payload. A source may spread content across several arrays
// (posts, reels, long-form video) that all feed one timeline.
func (a *adapter) collectRawItems(result *sources.Result) []map[string]interface{} {
	var raws []map[string]interface{}
	for _, section := range []map[string]interface{}{result.RawData, result.Profile} {
		if section == nil {
			continue
		}
		for _, path := range a.cfg.itemPaths {
			arr, ok := lookupArray(section, path)
			if !ok {
				continue
			}
			for _, entry := range arr {
				if obj, ok := entry.(map[string]interface{}); ok {
					raws = append(raws, obj)
				}
			}
		}
	}
	return raws
}

func (a *adapter) extractItem(handle string, raw map[string]interface{}) Item {
	item := Item{
		ID:          firstString(raw, a.cfg.idFields),
		TimestampMS: firstTimestampMillis(raw, a.cfg.timeFields),
		Text:        firstString(raw, a.cfg.textFields),
		URL:         firstString(raw, a.cfg.urlFields),
		Metrics:     make(map[string]int64),
	}

	if len(a.cfg.ratingFields) > 0 {
		if rating, ok := firstNumber(raw, a.cfg.ratingFields); ok {
			item.Rating = rating
		}
	}

	for name, candidates := range a.cfg.metricFields {
		if v, ok := firstNumber(raw, candidates); ok {
			item.Metrics[name] = int64(v)
		}
	}

	if item.URL == "" && item.ID != "" && a.cfg.itemURL != nil {
		item.URL = a.cfg.itemURL(handle, item.ID)
	}

	return item
}

// dedupeItems drops repeated ids, keeping the first (newest) instance.
// The same item can surface through more than one candidate array.
func dedupeItems(items []Item) []Item {
	seen := make(map[string]bool)
	unique := items[:0]
	for _, item := range items {
		if item.ID != "" {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
		}
		unique = append(unique, item)
	}
	return unique
}

// NewAdapters builds one adapter per enabled analyzer, keyed by network
func NewAdapters(cfg *config.Config, analyzers ...sources.Analyzer) map[models.Network]NetworkAdapter {
	configs := map[models.Network]adapterConfig{
		models.NetworkGoogle:    googleAdapterConfig(cfg),
		models.NetworkInstagram: instagramAdapterConfig(),
		models.NetworkTikTok:    tiktokAdapterConfig(),
		models.NetworkYouTube:   youtubeAdapterConfig(),
	}

	adapters := make(map[models.Network]NetworkAdapter)
	for _, analyzer := range analyzers {
		if !analyzer.IsEnabled() {
			continue
		}
		adapterCfg, ok := configs[analyzer.Network()]
		if !ok {
			continue
		}
		adapters[analyzer.Network()] = &adapter{cfg: adapterCfg, source: analyzer}
	}
	return adapters
}

func googleAdapterConfig(cfg *config.Config) adapterConfig {
	return adapterConfig{
		network:      models.NetworkGoogle,
		noveltyType:  models.AlertNewReview,
		usePlaceID:   true,
		itemPaths:    []string{"reviews", "data.reviews", "result.reviews"},
		idFields:     []string{"reviewId", "review_id", "id"},
		timeFields:   []string{"publishedAt", "published_at", "time", "timestamp"},
		textFields:   []string{"text", "snippet", "review_text"},
		urlFields:    []string{"reviewUrl", "review_url", "url", "link"},
		ratingFields: []string{"stars", "rating", "starRating"},

		severityThreshold: cfg.NegativeReviewThreshold,
	}
}

func instagramAdapterConfig() adapterConfig {
	return adapterConfig{
		network:     models.NetworkInstagram,
		noveltyType: models.AlertNewPost,
		itemPaths:   []string{"posts", "reels", "igtv", "latestPosts"},
		idFields:    []string{"id", "shortcode", "code"},
		timeFields:  []string{"timestamp", "taken_at", "takenAt", "taken_at_timestamp"},
		textFields:  []string{"caption", "text"},
		urlFields:   []string{"url", "permalink"},
		metricFields: map[string][]string{
			models.MetaLikes:    {"likesCount", "like_count", "likes"},
			models.MetaComments: {"commentsCount", "comment_count", "comments"},
			models.MetaViews:    {"videoViewCount", "video_view_count", "plays"},
		},
		trendingMetric: models.MetaLikes,
		itemURL: func(handle, id string) string {
			return fmt.Sprintf("https://www.instagram.com/p/%s/", id)
		},
	}
}

func tiktokAdapterConfig() adapterConfig {
	return adapterConfig{
		network:     models.NetworkTikTok,
		noveltyType: models.AlertNewPost,
		itemPaths:   []string{"videos", "items", "posts"},
		idFields:    []string{"id", "videoId", "video_id"},
		timeFields:  []string{"createTime", "create_time", "timestamp"},
		textFields:  []string{"desc", "description", "title"},
		urlFields:   []string{"url", "webVideoUrl", "shareUrl"},
		metricFields: map[string][]string{
			models.MetaLikes:    {"diggCount", "digg_count", "likes"},
			models.MetaComments: {"commentCount", "comment_count", "comments"},
			models.MetaShares:   {"shareCount", "share_count", "shares"},
			models.MetaViews:    {"playCount", "play_count", "views"},
		},
		trendingMetric: models.MetaLikes,
		itemURL: func(handle, id string) string {
			return fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", handle, id)
		},
	}
}

func youtubeAdapterConfig() adapterConfig {
	return adapterConfig{
		network:     models.NetworkYouTube,
		noveltyType: models.AlertNewPost,
		itemPaths:   []string{"videos", "latestVideos", "uploads"},
		idFields:    []string{"videoId", "video_id", "id"},
		timeFields:  []string{"publishedAt", "published_at", "timestamp", "date"},
		textFields:  []string{"title", "description"},
		urlFields:   []string{"url", "link"},
		metricFields: map[string][]string{
			models.MetaLikes:    {"likeCount", "like_count", "likes"},
			models.MetaComments: {"commentCount", "comment_count", "comments"},
			models.MetaViews:    {"viewCount", "view_count", "views"},
		},
		trendingMetric: models.MetaViews,
		itemURL: func(handle, id string) string {
			return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
		},
	}
}
