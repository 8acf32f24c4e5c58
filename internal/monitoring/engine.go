package monitoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/store"
)

// Engine runs the baseline/diff algorithm for one profile at a time.
//
// A profile moves UNBASELINED -> BASELINED -> MONITORING. The first run
// records the newest item's id as the watermark; every later run
// compares the fetched list against the watermark, emits alerts for
// strictly newer items, and advances the watermark. The watermark write
// is an optimistic compare-and-swap: a failed compare means another
// invocation is already processing the profile, and the run skips it
// instead of double-emitting.
type Engine struct {
	profiles store.ProfileStore
	alerts   store.AlertStore
	dedup    *Deduplicator

	trendingMultiplier float64
	trendingWindow     int

	now func() time.Time
}

// NewEngine creates a new baseline/diff engine
func NewEngine(profiles store.ProfileStore, alerts store.AlertStore, trendingMultiplier float64, trendingWindow int) *Engine {
	return &Engine{
		profiles:           profiles,
		alerts:             alerts,
		dedup:              NewDeduplicator(alerts),
		trendingMultiplier: trendingMultiplier,
		trendingWindow:     trendingWindow,
		now:                time.Now,
	}
}

// Process fetches the profile's current content and routes it through
// the baseline or steady-state path. It returns the number of alerts
// created. Fetch and persistence failures still advance last_checked_at
// so a broken profile is not retried every single cycle.
func (e *Engine) Process(ctx context.Context, entry *models.WatchlistEntry, profile *models.SocialProfile, adapter NetworkAdapter, forceBaseline bool) (int, error) {
	items, err := adapter.FetchItems(ctx, entry, profile)
	if err != nil {
		e.touchChecked(ctx, profile)
		return 0, fmt.Errorf("fetch failed: %w", err)
	}

	if profile.LastSeenExternalID == nil || forceBaseline {
		return e.establishBaseline(ctx, entry, profile, adapter, items)
	}
	return e.detectNewContent(ctx, entry, profile, adapter, items)
}

// establishBaseline records the newest item's id as the watermark and
// emits at most one initialBaseline alert per (watchlist, network) so
// the user sees what day one looked like.
func (e *Engine) establishBaseline(ctx context.Context, entry *models.WatchlistEntry, profile *models.SocialProfile, adapter NetworkAdapter, items []Item) (int, error) {
	now := e.now()

	if len(items) == 0 {
		e.touchChecked(ctx, profile)
		return 0, nil
	}

	newest := items[0]
	if newest.ID == "" {
		// nothing usable to baseline on; checked-at still advances
		logrus.Warnf("Profile %s (%s): newest item has no identifier, skipping baseline", profile.ID, profile.Network)
		e.touchChecked(ctx, profile)
		return 0, nil
	}

	ok, err := e.profiles.AdvanceWatermark(ctx, profile.ID, profile.LastSeenExternalID, newest.ID, now)
	if err != nil {
		logrus.Errorf("Failed to set watermark for profile %s: %v", profile.ID, err)
		e.touchChecked(ctx, profile)
		return 0, fmt.Errorf("watermark write failed: %w", err)
	}
	if !ok {
		logrus.Warnf("Profile %s is being processed by another run, skipping baseline", profile.ID)
		return 0, nil
	}

	exists, err := e.dedup.Exists(ctx, entry.UserID, entry.ID, adapter.Network(), adapter.NoveltyAlertType())
	if err != nil {
		return 0, err
	}
	if exists {
		logrus.Debugf("Baseline alert already exists for watchlist %s on %s", entry.ID, adapter.Network())
		return 0, nil
	}

	alert := e.buildAlert(entry, adapter, newest, adapter.NoveltyAlertType(), true)
	if err := e.alerts.Create(ctx, alert); err != nil {
		logrus.Errorf("Failed to create baseline alert for watchlist %s: %v", entry.ID, err)
		return 0, fmt.Errorf("alert write failed: %w", err)
	}
	return 1, nil
}

// detectNewContent is the steady-state path: emit one alert per item
// strictly newer than the watermark (plus severity and trending
// escalations), then advance the watermark to the current newest item.
func (e *Engine) detectNewContent(ctx context.Context, entry *models.WatchlistEntry, profile *models.SocialProfile, adapter NetworkAdapter, items []Item) (int, error) {
	now := e.now()

	if len(items) == 0 {
		e.touchChecked(ctx, profile)
		return 0, nil
	}

	watermark := *profile.LastSeenExternalID
	newest := items[0]

	if newest.ID == "" {
		logrus.Warnf("Profile %s (%s): newest item has no identifier, skipping diff", profile.ID, profile.Network)
		e.touchChecked(ctx, profile)
		return 0, nil
	}
	if newest.ID == watermark {
		e.touchChecked(ctx, profile)
		return 0, nil
	}

	fresh := itemsSinceWatermark(items, watermark)

	// The watermark advances even when fresh is empty: the previous
	// newest item may simply have been retired from the feed. Claiming
	// it before emitting keeps overlapping runs from double-alerting.
	ok, err := e.profiles.AdvanceWatermark(ctx, profile.ID, &watermark, newest.ID, now)
	if err != nil {
		logrus.Errorf("Failed to advance watermark for profile %s: %v", profile.ID, err)
		e.touchChecked(ctx, profile)
		return 0, fmt.Errorf("watermark write failed: %w", err)
	}
	if !ok {
		logrus.Warnf("Profile %s is being processed by another run, skipping", profile.ID)
		return 0, nil
	}

	created := 0
	var writeErrs []string

	// oldest first, so alert order follows publication order
	for i := len(fresh) - 1; i >= 0; i-- {
		item := fresh[i]

		alert := e.buildAlert(entry, adapter, item, adapter.NoveltyAlertType(), false)
		if err := e.alerts.Create(ctx, alert); err != nil {
			logrus.Errorf("Failed to create alert for watchlist %s item %s: %v", entry.ID, item.ID, err)
			writeErrs = append(writeErrs, err.Error())
			continue
		}
		created++

		if severityType, escalate := adapter.SeverityAlertType(item); escalate {
			escalation := e.buildAlert(entry, adapter, item, severityType, false)
			if err := e.alerts.Create(ctx, escalation); err != nil {
				logrus.Errorf("Failed to create %s alert for watchlist %s item %s: %v", severityType, entry.ID, item.ID, err)
				writeErrs = append(writeErrs, err.Error())
				continue
			}
			created++
		}
	}

	// Trending is evaluated only on the newest item, and only when it
	// is itself new content.
	if metric, enabled := adapter.TrendingMetric(); enabled && len(fresh) > 0 && fresh[0].ID == newest.ID {
		if e.isTrending(items, metric) {
			trending := e.buildAlert(entry, adapter, newest, models.AlertTrendingPost, false)
			if err := e.alerts.Create(ctx, trending); err != nil {
				logrus.Errorf("Failed to create trending alert for watchlist %s: %v", entry.ID, err)
				writeErrs = append(writeErrs, err.Error())
			} else {
				created++
			}
		}
	}

	if len(writeErrs) > 0 {
		return created, fmt.Errorf("alert writes failed: %s", strings.Join(writeErrs, "; "))
	}
	return created, nil
}

// itemsSinceWatermark identifies every item strictly newer than the
// watermark item. When the watermark item is no longer present in the
// fetched window, every differing item is conservatively treated as new.
func itemsSinceWatermark(items []Item, watermark string) []Item {
	anchorTS := int64(-1)
	for _, item := range items {
		if item.ID != "" && item.ID == watermark {
			anchorTS = item.TimestampMS
			break
		}
	}

	var fresh []Item
	if anchorTS >= 0 {
		for _, item := range items {
			if item.TimestampMS > anchorTS {
				fresh = append(fresh, item)
			}
		}
	} else {
		for _, item := range items {
			if item.ID != watermark {
				fresh = append(fresh, item)
			}
		}
	}
	return fresh
}

// isTrending compares the newest item's primary engagement metric
// against the mean of the items immediately preceding it.
func (e *Engine) isTrending(items []Item, metric string) bool {
	if len(items) < e.trendingWindow+1 {
		return false
	}

	newest := items[0]
	var sum int64
	for _, item := range items[1 : 1+e.trendingWindow] {
		sum += item.Metric(metric)
	}
	mean := float64(sum) / float64(e.trendingWindow)

	return float64(newest.Metric(metric)) > e.trendingMultiplier*mean
}

func (e *Engine) buildAlert(entry *models.WatchlistEntry, adapter NetworkAdapter, item Item, alertType models.AlertType, initialBaseline bool) *models.Alert {
	network := adapter.Network()
	age := relativeAge(item.TimestampMS, e.now())

	metadata := datatypes.JSONMap{
		models.MetaNetwork:         string(network),
		models.MetaExternalID:      item.ID,
		models.MetaPostedAgo:       age,
		models.MetaURL:             item.URL,
		models.MetaInitialBaseline: initialBaseline,
	}
	if item.Rating > 0 {
		metadata[models.MetaRating] = item.Rating
	}
	for _, key := range []string{models.MetaLikes, models.MetaComments, models.MetaShares, models.MetaViews} {
		if v, ok := item.Metrics[key]; ok {
			metadata[key] = v
		}
	}

	title, message := alertCopy(alertType, entry.Name, network, item, age, initialBaseline)

	return &models.Alert{
		UserID:      entry.UserID,
		WatchlistID: entry.ID,
		Type:        alertType,
		Title:       title,
		Message:     message,
		Metadata:    metadata,
		CreatedAt:   e.now(),
	}
}

func alertCopy(alertType models.AlertType, name string, network models.Network, item Item, age string, initialBaseline bool) (string, string) {
	snippet := item.Text
	if len(snippet) > 120 {
		snippet = snippet[:120] + "..."
	}

	switch alertType {
	case models.AlertNewReview:
		title := fmt.Sprintf("New review for %s", name)
		message := fmt.Sprintf("%s received a %.0f-star review %s", name, item.Rating, age)
		if initialBaseline {
			title = fmt.Sprintf("Latest review for %s", name)
			message = fmt.Sprintf("Most recent review of %s: %.0f stars, %s", name, item.Rating, age)
		}
		if snippet != "" {
			message += fmt.Sprintf(": \"%s\"", snippet)
		}
		return title, message

	case models.AlertNegativeReview:
		message := fmt.Sprintf("%s received a %.0f-star review %s", name, item.Rating, age)
		if snippet != "" {
			message += fmt.Sprintf(": \"%s\"", snippet)
		}
		return fmt.Sprintf("Negative review for %s", name), message

	case models.AlertTrendingPost:
		return fmt.Sprintf("Trending %s post from %s", network, name),
			fmt.Sprintf("A %s post by %s from %s is taking off with %s likes and %s comments",
				network, name, age, formatCount(item.Metric(models.MetaLikes)), formatCount(item.Metric(models.MetaComments)))

	default: // new_post
		title := fmt.Sprintf("New %s post from %s", network, name)
		if initialBaseline {
			title = fmt.Sprintf("Latest %s post from %s", network, name)
		}
		message := fmt.Sprintf("%s posted on %s %s (%s likes, %s comments)",
			name, network, age, formatCount(item.Metric(models.MetaLikes)), formatCount(item.Metric(models.MetaComments)))
		return title, message
	}
}

// touchChecked stamps last_checked_at when the watermark itself does
// not move (empty fetches, failure paths). Best effort.
func (e *Engine) touchChecked(ctx context.Context, profile *models.SocialProfile) {
	if err := e.profiles.TouchChecked(ctx, profile.ID, e.now()); err != nil {
		logrus.Errorf("Failed to update last_checked_at for profile %s: %v", profile.ID, err)
	}
}
