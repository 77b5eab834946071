package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Log       LogConfig
	Reporting ReportingConfig
	Sheets    SheetsConfig
	Webhook   WebhookConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port        string   `env:"APP_PORT" envDefault:"8080"`
	APIPrefix   string   `env:"API_PREFIX" envDefault:"/api"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI                    string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DBName                 string        `env:"MONGODB_DB_NAME" envDefault:"hrms_lite_db"`
	TLS                    bool          `env:"MONGODB_TLS" envDefault:"true"`
	TLSAllowInvalidCerts   bool          `env:"MONGODB_TLS_ALLOW_INVALID_CERTS" envDefault:"false"`
	ServerSelectionTimeout time.Duration `env:"MONGODB_SERVER_SELECTION_TIMEOUT" envDefault:"10s"`
	ConnectTimeout         time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"20s"`
	MaxPoolSize            uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"50"`
}

// LogConfig controls the zap logger and its optional rotating file output.
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"false"`
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	Enabled      bool   `env:"REPORT_ENABLED" envDefault:"true"`
	CronSchedule string `env:"REPORT_CRON_SCHEDULE" envDefault:"0 20 * * *"`
	Timezone     string `env:"TIMEZONE" envDefault:"UTC"`
}

// SheetsConfig contains configuration required to push digests to Google Sheets.
// Both fields must be set for the sheet sink to be enabled.
type SheetsConfig struct {
	CredentialsPath string `env:"GOOGLE_SHEETS_CREDENTIALS_PATH"`
	SpreadsheetID   string `env:"GOOGLE_SHEET_DATABASE_ID"`
	DigestRange     string `env:"GOOGLE_SHEET_DIGEST_RANGE" envDefault:"Digest!A:F"`
}

// Enabled reports whether the sheet sink is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// WebhookConfig configures the optional digest webhook.
type WebhookConfig struct {
	URL     string        `env:"DIGEST_WEBHOOK_URL"`
	Token   string        `env:"DIGEST_WEBHOOK_TOKEN"`
	Timeout time.Duration `env:"DIGEST_WEBHOOK_TIMEOUT" envDefault:"15s"`
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and parsable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("API_PREFIX must start with '/', got %q", c.Server.APIPrefix)
	}
	c.Server.APIPrefix = strings.TrimSuffix(c.Server.APIPrefix, "/")

	if len(c.Server.CORSOrigins) == 0 {
		return errors.New("CORS_ORIGINS must not be empty")
	}
	for i, origin := range c.Server.CORSOrigins {
		origin = strings.TrimSpace(origin)
		c.Server.CORSOrigins[i] = origin
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("CORS_ORIGINS entry %q must be '*' or an http(s) origin", origin)
		}
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	case c.MongoDB.ServerSelectionTimeout <= 0:
		return errors.New("MONGODB_SERVER_SELECTION_TIMEOUT must be positive")
	case c.MongoDB.ConnectTimeout <= 0:
		return errors.New("MONGODB_CONNECT_TIMEOUT must be positive")
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Reporting.Timezone, err)
	}

	if c.Reporting.Enabled {
		if c.Reporting.CronSchedule == "" {
			return errors.New("REPORT_CRON_SCHEDULE must be provided")
		}
		if _, err := cron.ParseStandard(c.Reporting.CronSchedule); err != nil {
			return fmt.Errorf("REPORT_CRON_SCHEDULE %q: %w", c.Reporting.CronSchedule, err)
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	return nil
}

// Location resolves the configured reporting timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
