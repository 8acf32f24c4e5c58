package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/config"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/monitoring"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/notifications"
	"github.com/ibrhmmrana/hunter2.0-sub000/internal/store"
)

// Service owns the periodic triggers. The monitoring core never
// schedules itself; this is the external cron that invokes it.
type Service struct {
	config            *config.Config
	monitoringService *monitoring.Service
	notifier          notifications.NotificationInterface
	alerts            store.AlertStore
	cron              *cron.Cron

	lastDigest time.Time
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, monitoringService *monitoring.Service, notifier notifications.NotificationInterface, alerts store.AlertStore) *Service {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logrus.Warnf("Invalid TIMEZONE %q, falling back to UTC: %v", cfg.TimeZone, err)
		loc = time.UTC
	}

	return &Service{
		config:            cfg,
		monitoringService: monitoringService,
		notifier:          notifier,
		alerts:            alerts,
		cron:              cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		lastDigest:        time.Now(),
	}
}

// Start begins the scheduled monitoring
func (s *Service) Start() error {
	var cronExpression string

	switch s.config.MonitorSchedule {
	case "hourly":
		cronExpression = "0 0 * * * *"
	case "daily":
		// Run daily at 9 AM in the configured timezone
		cronExpression = "0 0 9 * * *"
	default:
		cronExpression = "0 0 * * * *"
	}

	_, err := s.cron.AddFunc(cronExpression, func() {
		logrus.Info("Starting scheduled monitoring run")
		result := s.monitoringService.Run(context.Background(), models.RunOptions{})
		if len(result.Errors) > 0 {
			logrus.Errorf("Scheduled monitoring run finished with %d errors", len(result.Errors))
		}
	})
	if err != nil {
		return err
	}

	// Daily digest of persisted alerts at 8 AM in the configured timezone
	_, err = s.cron.AddFunc("0 0 8 * * *", func() {
		if err := s.sendDigest(); err != nil {
			logrus.Errorf("Alert digest failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %s monitoring schedule (plus daily alert digest)", s.config.MonitorSchedule)
	return nil
}

func (s *Service) sendDigest() error {
	since := s.lastDigest

	alerts, err := s.alerts.ListCreatedSince(context.Background(), since)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		logrus.Info("No alerts since last digest, skipping")
		s.lastDigest = time.Now()
		return nil
	}

	digest := notifications.BuildDigest(alerts, "daily")
	if err := s.notifier.SendDigest(digest); err != nil {
		return err
	}

	s.lastDigest = time.Now()
	logrus.Infof("Sent alert digest covering %d alerts", len(alerts))
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
