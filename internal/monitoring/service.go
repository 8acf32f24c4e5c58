package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/config"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/store"
)

// Service orchestrates a monitoring run across watchlist entries and
// their social profiles
type Service struct {
	config     *config.Config
	watchlists store.WatchlistStore
	profiles   store.ProfileStore
	adapters   map[models.Network]NetworkAdapter
	engine     *Engine
	metrics    *Metrics
	mu         sync.RWMutex
}

// Metrics holds monitoring run metrics
type Metrics struct {
	LastRun         time.Time      `json:"last_run"`
	LastRunDuration string         `json:"last_run_duration"`
	Processed       int            `json:"processed"`
	AlertsCreated   int            `json:"alerts_created"`
	NetworkAlerts   map[string]int `json:"network_alerts"`
	ErrorCount      int            `json:"error_count"`
}

// NewService creates a new monitoring service
func NewService(cfg *config.Config, watchlists store.WatchlistStore, profiles store.ProfileStore, alerts store.AlertStore, adapters map[models.Network]NetworkAdapter) *Service {
	return &Service{
		config:     cfg,
		watchlists: watchlists,
		profiles:   profiles,
		adapters:   adapters,
		engine:     NewEngine(profiles, alerts, cfg.TrendingMultiplier, cfg.TrendingWindow),
		metrics: &Metrics{
			NetworkAlerts: make(map[string]int),
		},
	}
}

// Run performs one monitoring invocation. Failures while processing a
// single profile are collected into the result's Errors and never abort
// the run; only a failure to enumerate watchlist entries is fatal, and
// even that is reported through Errors.
func (s *Service) Run(ctx context.Context, opts models.RunOptions) *models.RunResult {
	start := time.Now()
	result := &models.RunResult{Errors: []string{}}

	logrus.Infof("Starting monitoring run (initialBaseline=%v)", opts.InitialBaseline)

	s.mu.Lock()
	s.metrics.NetworkAlerts = make(map[string]int)
	s.mu.Unlock()

	entries, err := s.loadEntries(ctx, opts)
	if err != nil {
		logrus.Errorf("Failed to load watchlist entries: %v", err)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to load watchlist entries: %v", err))
		s.updateMetrics(result, time.Since(start))
		return result
	}

	for i := range entries {
		entry := &entries[i]
		result.Processed++

		profiles, err := s.profiles.ListByWatchlist(ctx, entry.ID)
		if err != nil {
			logrus.Errorf("Failed to load profiles for watchlist %s: %v", entry.ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: failed to load profiles: %v", entry.Name, err))
			continue
		}

		for j := range profiles {
			profile := &profiles[j]

			adapter, ok := s.adapters[profile.Network]
			if !ok {
				logrus.Warnf("No adapter for network %q on profile %s, skipping", profile.Network, profile.ID)
				continue
			}

			created, err := s.engine.Process(ctx, entry, profile, adapter, opts.InitialBaseline)
			result.AlertsCreated += created
			if created > 0 {
				s.countNetworkAlerts(profile.Network, created)
			}
			if err != nil {
				logrus.Errorf("Error processing %s/%s: %v", entry.Name, profile.Network, err)
				result.Errors = append(result.Errors, fmt.Sprintf("%s/%s: %v", entry.Name, profile.Network, err))
			}
		}
	}

	s.updateMetrics(result, time.Since(start))
	logrus.Infof("Monitoring run completed in %v: %d entries, %d alerts, %d errors",
		time.Since(start), result.Processed, result.AlertsCreated, len(result.Errors))
	return result
}

func (s *Service) loadEntries(ctx context.Context, opts models.RunOptions) ([]models.WatchlistEntry, error) {
	if opts.WatchlistID != nil {
		entry, err := s.watchlists.GetByID(ctx, *opts.WatchlistID)
		if err != nil {
			return nil, err
		}
		return []models.WatchlistEntry{*entry}, nil
	}
	return s.watchlists.ListActive(ctx)
}

func (s *Service) countNetworkAlerts(network models.Network, created int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.NetworkAlerts[string(network)] += created
}

func (s *Service) updateMetrics(result *models.RunResult, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.LastRun = time.Now()
	s.metrics.LastRunDuration = duration.String()
	s.metrics.Processed = result.Processed
	s.metrics.AlertsCreated = result.AlertsCreated
	s.metrics.ErrorCount = len(result.Errors)
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
