package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Storage backends
const (
	BackendMemory     = "memory"
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
)

// Config holds the application configuration
type Config struct {
	// Telegram bot (optional: without a token only the HTTP API runs)
	TelegramToken string
	WebhookMode   bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL    string // URL for webhook (required if WebhookMode is true)

	// HTTP server
	Port string

	// Logging
	LogLevel    string
	Development bool

	// Storage
	StorageBackend string
	SQLitePath     string

	// ClickHouse configuration
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		if config.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required when WEBHOOK_MODE is true")
		}
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	config.Port = os.Getenv("PORT")
	if config.Port == "" {
		config.Port = "8080"
	}
	if _, err := strconv.Atoi(config.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	config.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	config.Development = os.Getenv("APP_ENV") == "development"

	config.StorageBackend = strings.ToLower(os.Getenv("STORAGE_BACKEND"))
	if config.StorageBackend == "" {
		config.StorageBackend = BackendSQLite
	}

	switch config.StorageBackend {
	case BackendMemory:
	case BackendSQLite:
		config.SQLitePath = os.Getenv("SQLITE_PATH")
		if config.SQLitePath == "" {
			config.SQLitePath = "./data/library.db"
		}
	case BackendClickHouse:
		if err := config.loadClickHouse(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want memory, sqlite or clickhouse)", config.StorageBackend)
	}

	return config, nil
}

func (c *Config) loadClickHouse() error {
	c.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
	if c.ClickHouseHost == "" {
		return fmt.Errorf("CLICKHOUSE_HOST is required when STORAGE_BACKEND is clickhouse")
	}

	portStr := os.Getenv("CLICKHOUSE_PORT")
	if portStr == "" {
		c.ClickHousePort = 9000 // Default ClickHouse native port
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
		}
		c.ClickHousePort = port
	}

	c.ClickHouseDatabase = os.Getenv("CLICKHOUSE_DATABASE")
	if c.ClickHouseDatabase == "" {
		c.ClickHouseDatabase = "default"
	}

	c.ClickHouseUser = os.Getenv("CLICKHOUSE_USER")
	if c.ClickHouseUser == "" {
		c.ClickHouseUser = "default"
	}

	c.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
	// Password is optional, can be empty

	c.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	return nil
}
