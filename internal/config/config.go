package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the dashboard
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Backend API the dashboard polls
	BackendURL     string
	RequestTimeout time.Duration
	DaysBack       int

	// Live feed
	FeedPollInterval time.Duration

	// Schedule configuration
	RefreshSchedule string // "daily" or "weekly"
	TimeZone        string

	// Local state persistence
	DataDir  string
	StateKey string

	// Azure Storage backup (optional)
	StorageAccount   string
	StorageContainer string

	// Report email (optional)
	ReportEmail  string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	// Notification webhook (optional)
	WebhookURL string

	// API keys and credentials
	SearchConsoleKey  string
	AnalyticsKey      string
	AnalyticsGA4Key   string
	ScrapeCreatorsKey string
	ExaSearchKey      string

	// Brand configuration
	BrandName     string
	BrandWebsite  string
	BrandKeywords []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		BackendURL:     getEnv("BACKEND_URL", "http://localhost:5000"),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 30*time.Second),
		DaysBack:       getIntEnv("DAYS_BACK", 30),

		FeedPollInterval: getDurationEnv("FEED_POLL_INTERVAL", 30*time.Second),

		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "daily"),
		TimeZone:        getEnv("TIMEZONE", "UTC"),

		DataDir:  getEnv("DATA_DIR", "data"),
		StateKey: getEnv("STATE_KEY", "attribution-dashboard-state.json"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "attribution"),

		ReportEmail:  getEnv("REPORT_EMAIL", ""),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getIntEnv("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		WebhookURL: getEnv("NOTIFICATION_WEBHOOK_URL", ""),

		SearchConsoleKey:  getEnv("GSC_API_KEY", ""),
		AnalyticsKey:      getEnv("GA_API_KEY", ""),
		AnalyticsGA4Key:   getEnv("GA4_API_KEY", ""),
		ScrapeCreatorsKey: getEnv("SCRAPE_CREATORS_API_KEY", ""),
		ExaSearchKey:      getEnv("EXA_SEARCH_API_KEY", ""),

		BrandName:     getEnv("BRAND_NAME", "YourBrand"),
		BrandWebsite:  getEnv("BRAND_WEBSITE", ""),
		BrandKeywords: getSliceEnv("BRAND_KEYWORDS", nil),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.RefreshSchedule != "daily" && c.RefreshSchedule != "weekly" {
		return fmt.Errorf("REFRESH_SCHEDULE must be 'daily' or 'weekly'")
	}

	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}

	if c.FeedPollInterval < time.Second {
		return fmt.Errorf("FEED_POLL_INTERVAL must be at least 1s")
	}

	if c.ReportEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when REPORT_EMAIL is set")
		}
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

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
