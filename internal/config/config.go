package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Database configuration
	DatabaseURL string

	// Schedule configuration
	MonitorSchedule string // "hourly" or "daily"
	TimeZone        string

	// Azure Storage configuration (raw review snapshots)
	StorageAccount   string
	StorageContainer string

	// Scraper/analyzer API configuration
	ScraperAPIURL string
	ScraperAPIKey string

	// Digest notification configuration
	TeamsWebhookURL string
	DigestEmails    []string
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string

	// Alerting thresholds
	NegativeReviewThreshold float64 // rating at or below which a negative_review alert fires
	TrendingMultiplier      float64 // newest engagement must exceed multiplier x prior mean
	TrendingWindow          int     // number of prior items averaged for the trending check
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		DatabaseURL: getEnv("DATABASE_URL", "hunter.db"),

		MonitorSchedule: getEnv("MONITOR_SCHEDULE", "hourly"),
		TimeZone:        getEnv("TIMEZONE", "UTC"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "snapshots"),

		ScraperAPIURL: getEnv("SCRAPER_API_URL", ""),
		ScraperAPIKey: getEnv("SCRAPER_API_KEY", ""),

		TeamsWebhookURL: getEnv("TEAMS_WEBHOOK_URL", ""),
		DigestEmails:    getSliceEnv("DIGEST_EMAILS", nil),
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getIntEnv("SMTP_PORT", 587),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),

		NegativeReviewThreshold: getFloatEnv("NEGATIVE_REVIEW_THRESHOLD", 3),
		TrendingMultiplier:      getFloatEnv("TRENDING_MULTIPLIER", 2),
		TrendingWindow:          getIntEnv("TRENDING_WINDOW", 3),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.MonitorSchedule != "hourly" && c.MonitorSchedule != "daily" {
		return fmt.Errorf("MONITOR_SCHEDULE must be 'hourly' or 'daily'")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if len(c.DigestEmails) > 0 {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when DIGEST_EMAILS is set")
		}
	}

	if c.TrendingWindow < 1 {
		return fmt.Errorf("TRENDING_WINDOW must be at least 1")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
