package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL      string
	TelegramToken    string // optional: empty disables reminder delivery
	NotifyChatID     int64  // chat that receives fired reminders
	LogLevel         string
	Environment      string
	CronSpecRefresh  string // periodic reminder refresh for all domains
	CronSpecRollover string // daily bill cycle rollover check
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	// Delivery settings are optional on purpose: without them the gateway
	// reports itself unavailable and scheduling degrades to a no-op.
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	if chatIDStr := os.Getenv("NOTIFY_CHAT_ID"); chatIDStr != "" {
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFY_CHAT_ID: %w", err)
		}
		cfg.NotifyChatID = chatID
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecRefresh = os.Getenv("CRON_SPEC_REFRESH")
	if cfg.CronSpecRefresh == "" {
		cfg.CronSpecRefresh = "0 6 * * *" // Default: 06:00 daily
	}

	cfg.CronSpecRollover = os.Getenv("CRON_SPEC_ROLLOVER")
	if cfg.CronSpecRollover == "" {
		cfg.CronSpecRollover = "30 0 * * *" // Default: 00:30 daily
	}

	return cfg, nil
}
