package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Server.APIPrefix)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "hrms_lite_db", cfg.MongoDB.DBName)
	assert.True(t, cfg.MongoDB.TLS)
	assert.Equal(t, 10*time.Second, cfg.MongoDB.ServerSelectionTimeout)
	assert.Equal(t, 20*time.Second, cfg.MongoDB.ConnectTimeout)
	assert.False(t, cfg.Sheets.Enabled())
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "API_PREFIX=/hr/v1/\nCORS_ORIGINS=http://localhost:3000, https://hr.example.com\nMONGODB_DB_NAME=hr_test\nTIMEZONE=Asia/Kolkata\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Cleanup(func() {
		for _, key := range []string{"API_PREFIX", "CORS_ORIGINS", "MONGODB_DB_NAME", "TIMEZONE"} {
			_ = os.Unsetenv(key)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/hr/v1", cfg.Server.APIPrefix)
	assert.Equal(t, []string{"http://localhost:3000", "https://hr.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "hr_test", cfg.MongoDB.DBName)
	assert.Equal(t, "Asia/Kolkata", cfg.Location().String())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(c *Config){
		"missing port":       func(c *Config) { c.Server.Port = "" },
		"relative prefix":    func(c *Config) { c.Server.APIPrefix = "api" },
		"bad origin":         func(c *Config) { c.Server.CORSOrigins = []string{"localhost:3000"} },
		"missing uri":        func(c *Config) { c.MongoDB.URI = "" },
		"bad level":          func(c *Config) { c.Log.Level = "loud" },
		"bad timezone":       func(c *Config) { c.Reporting.Timezone = "Mars/Olympus" },
		"bad cron":           func(c *Config) { c.Reporting.CronSchedule = "every day" },
		"half sheets config": func(c *Config) { c.Sheets.SpreadsheetID = "sheet-id" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateSkipsCronWhenReportingDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.Reporting.Enabled = false
	cfg.Reporting.CronSchedule = "not a schedule"

	assert.NoError(t, cfg.Validate())
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", APIPrefix: "/api", CORSOrigins: []string{"*"}},
		MongoDB: MongoDBConfig{
			URI:                    "mongodb://localhost:27017",
			DBName:                 "hrms_lite_db",
			ServerSelectionTimeout: time.Second,
			ConnectTimeout:         time.Second,
		},
		Log:       LogConfig{Level: "info"},
		Reporting: ReportingConfig{Enabled: true, CronSchedule: "0 20 * * *", Timezone: "UTC"},
	}
}
